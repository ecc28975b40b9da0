// Package connectors provides the pluggable storage backends of aquastore.
// A Connector persists three libraries per store: observation series
// ("oseries"), stress series ("stresses") and model records ("models").
// Backends: in-process memory, JSON flat files, SQLite and BadgerDB.
package connectors
