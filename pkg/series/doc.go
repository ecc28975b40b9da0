// Package series provides the core timeseries value types used throughout
// aquastore: a named, time-indexed sequence of float64 observations and the
// free-form metadata attached to it (spatial coordinates, stress kind).
package series
