package models

import (
	"math"
	"testing"
)

func TestExponentialStep(t *testing.T) {
	r := exponentialResponse{}
	p := []float64{2, 50}

	if got := r.Step(0, p); got != 0 {
		t.Errorf("Step(0) = %v, want 0", got)
	}
	// at t = a the step reaches 1 - 1/e of the gain
	want := 2 * (1 - math.Exp(-1))
	if got := r.Step(50, p); math.Abs(got-want) > 1e-12 {
		t.Errorf("Step(a) = %v, want %v", got, want)
	}
	if got := r.Step(1e6, p); math.Abs(got-r.Gain(p)) > 1e-9 {
		t.Errorf("Step(inf) = %v, want gain %v", got, r.Gain(p))
	}

	// TMax is where the step reaches the cutoff fraction of the gain
	tmax := r.TMax(p, 0.95)
	frac := r.Step(tmax, p) / r.Gain(p)
	if math.Abs(frac-0.95) > 1e-9 {
		t.Errorf("Step(TMax)/Gain = %v, want 0.95", frac)
	}
}

func TestGammaStep(t *testing.T) {
	r := gammaResponse{}

	// with n = 1 the gamma response reduces to the exponential response
	pg := []float64{2, 50, 1}
	pe := []float64{2, 50}
	e := exponentialResponse{}
	for _, tt := range []float64{1, 10, 50, 200, 1000} {
		if got, want := r.Step(tt, pg), e.Step(tt, pe); math.Abs(got-want) > 1e-9 {
			t.Errorf("gamma Step(%v) = %v, exponential = %v", tt, got, want)
		}
	}

	// monotone, bounded by the gain
	p := []float64{3, 20, 2.5}
	prev := 0.0
	for tt := 1.0; tt < 500; tt += 7 {
		cur := r.Step(tt, p)
		if cur < prev {
			t.Fatalf("gamma step decreased at t=%v", tt)
		}
		if cur > r.Gain(p)+1e-9 {
			t.Fatalf("gamma step exceeds gain at t=%v", tt)
		}
		prev = cur
	}

	tmax := r.TMax(p, 0.95)
	frac := r.Step(tmax, p) / r.Gain(p)
	if math.Abs(frac-0.95) > 1e-6 {
		t.Errorf("Step(TMax)/Gain = %v, want 0.95", frac)
	}
}

func TestBlockResponseSumsToGain(t *testing.T) {
	r := exponentialResponse{}
	p := []float64{2, 10}
	block := blockResponse(r, p, 200)

	sum := 0.0
	for _, b := range block {
		if b < 0 {
			t.Fatal("block response has negative entries")
		}
		sum += b
	}
	// 200 days is far past TMax for a=10, so the block sums to the gain
	if math.Abs(sum-r.Gain(p)) > 1e-6 {
		t.Errorf("block sum = %v, want %v", sum, r.Gain(p))
	}
}

func TestRegIncompleteGamma(t *testing.T) {
	// P(1, x) = 1 - exp(-x)
	for _, x := range []float64{0.1, 1, 3, 10} {
		want := 1 - math.Exp(-x)
		if got := regIncompleteGamma(1, x); math.Abs(got-want) > 1e-9 {
			t.Errorf("P(1, %v) = %v, want %v", x, got, want)
		}
	}
	// P(0.5, x) = erf(sqrt(x))
	for _, x := range []float64{0.25, 1, 4} {
		want := math.Erf(math.Sqrt(x))
		if got := regIncompleteGamma(0.5, x); math.Abs(got-want) > 1e-9 {
			t.Errorf("P(0.5, %v) = %v, want %v", x, got, want)
		}
	}
	if got := regIncompleteGamma(2, 0); got != 0 {
		t.Errorf("P(2, 0) = %v, want 0", got)
	}
}

func TestNewResponse(t *testing.T) {
	if _, err := newResponse(ResponseExponential); err != nil {
		t.Errorf("newResponse(exponential) error: %v", err)
	}
	if _, err := newResponse(ResponseGamma); err != nil {
		t.Errorf("newResponse(gamma) error: %v", err)
	}
	if _, err := newResponse("fourier"); err == nil {
		t.Error("newResponse(unknown) should fail")
	}
}
