// Package telemetry provides structured logging and Prometheus metrics for
// the store and its command line tools.
package telemetry
