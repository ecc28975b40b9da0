// Package models implements transfer models for observation series: an
// observation series is explained as a constant plus the convolution of one
// or more stress series with a parametric response function. The package
// covers the persisted model form (Record), simulation, least-squares
// fitting, fit statistics, and reliability checks over fitted models.
package models
