package models

import (
	"fmt"
	"math"
)

// response evaluates the step response of a stress term. Parameter vectors
// are laid out as documented per implementation; the gain is always the
// first parameter.
type response interface {
	// Step returns the step response at time t (days since the stress
	// was switched on).
	Step(t float64, p []float64) float64

	// Gain returns the steady-state response to a unit stress.
	Gain(p []float64) float64

	// TMax returns the time (days) at which the step response reaches
	// the given fraction of the gain.
	TMax(p []float64, cutoff float64) float64

	// NParams returns the number of parameters.
	NParams() int
}

// newResponse maps a response type to its implementation.
func newResponse(t ResponseType) (response, error) {
	switch t {
	case ResponseExponential:
		return exponentialResponse{}, nil
	case ResponseGamma:
		return gammaResponse{}, nil
	default:
		return nil, fmt.Errorf("unknown response type %q", t)
	}
}

// exponentialResponse is the scaled exponential step response
// A * (1 - exp(-t/a)) with parameters p = [A, a].
type exponentialResponse struct{}

func (exponentialResponse) Step(t float64, p []float64) float64 {
	if t <= 0 {
		return 0
	}
	return p[0] * (1 - math.Exp(-t/p[1]))
}

func (exponentialResponse) Gain(p []float64) float64 { return p[0] }

func (exponentialResponse) TMax(p []float64, cutoff float64) float64 {
	return -p[1] * math.Log(1-cutoff)
}

func (exponentialResponse) NParams() int { return 2 }

// gammaResponse is the gamma step response A * P(n, t/a), with P the
// regularized lower incomplete gamma function and parameters p = [A, a, n].
type gammaResponse struct{}

func (gammaResponse) Step(t float64, p []float64) float64 {
	if t <= 0 {
		return 0
	}
	return p[0] * regIncompleteGamma(p[2], t/p[1])
}

func (gammaResponse) Gain(p []float64) float64 { return p[0] }

func (g gammaResponse) TMax(p []float64, cutoff float64) float64 {
	// bisection on the monotone step response
	lo, hi := 0.0, p[1]
	for regIncompleteGamma(p[2], hi/p[1]) < cutoff {
		hi *= 2
		if hi > 1e7 {
			return hi
		}
	}
	for i := 0; i < 100; i++ {
		mid := (lo + hi) / 2
		if regIncompleteGamma(p[2], mid/p[1]) < cutoff {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

func (gammaResponse) NParams() int { return 3 }

// blockResponse returns the daily block response for n steps: the increase
// of the step response over each one-day interval.
func blockResponse(r response, p []float64, n int) []float64 {
	block := make([]float64, n)
	prev := 0.0
	for i := 0; i < n; i++ {
		cur := r.Step(float64(i+1), p)
		block[i] = cur - prev
		prev = cur
	}
	return block
}

// regIncompleteGamma computes the regularized lower incomplete gamma
// function P(a, x), using the series expansion for x < a+1 and the
// continued fraction for larger x.
func regIncompleteGamma(a, x float64) float64 {
	if x <= 0 || a <= 0 {
		return 0
	}
	if x < a+1 {
		// series representation
		ap := a
		sum := 1.0 / a
		del := sum
		for i := 0; i < 200; i++ {
			ap++
			del *= x / ap
			sum += del
			if math.Abs(del) < math.Abs(sum)*1e-12 {
				break
			}
		}
		return sum * math.Exp(-x+a*math.Log(x)-logGamma(a))
	}
	// continued fraction representation
	const tiny = 1e-300
	b := x + 1 - a
	c := 1 / tiny
	d := 1 / b
	h := d
	for i := 1; i < 200; i++ {
		an := -float64(i) * (float64(i) - a)
		b += 2
		d = an*d + b
		if math.Abs(d) < tiny {
			d = tiny
		}
		c = b + an/c
		if math.Abs(c) < tiny {
			c = tiny
		}
		d = 1 / d
		del := d * c
		h *= del
		if math.Abs(del-1) < 1e-12 {
			break
		}
	}
	q := math.Exp(-x+a*math.Log(x)-logGamma(a)) * h
	return 1 - q
}

func logGamma(a float64) float64 {
	lg, _ := math.Lgamma(a)
	return lg
}
