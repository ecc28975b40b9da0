// Package store implements the high-level timeseries database: named
// observation and stress series with metadata, transfer-function models
// referencing them, and the operations to create, solve and check those
// models. All persistence goes through a connectors.Connector, so the same
// store works on top of any backend.
package store
