package models

import (
	"math"
	"testing"
)

func TestACF(t *testing.T) {
	// a perfectly periodic series has acf 1 at its period
	values := make([]float64, 100)
	for i := range values {
		if i%2 == 0 {
			values[i] = 1
		} else {
			values[i] = -1
		}
	}
	acf := ACF(values, 4)
	if acf[0] != 1 {
		t.Errorf("acf[0] = %v, want 1", acf[0])
	}
	if acf[1] > -0.9 {
		t.Errorf("acf[1] = %v, want close to -1 for alternating series", acf[1])
	}
	if acf[2] < 0.9 {
		t.Errorf("acf[2] = %v, want close to 1 for alternating series", acf[2])
	}

	if got := ACF([]float64{1, 1, 1}, 2); got != nil {
		t.Error("ACF of a constant series should be nil")
	}
}

func TestChiSquaredCDF(t *testing.T) {
	// with 2 degrees of freedom the chi-squared CDF is 1 - exp(-x/2)
	for _, x := range []float64{0.5, 2, 6} {
		want := 1 - math.Exp(-x/2)
		if got := chiSquaredCDF(x, 2); math.Abs(got-want) > 1e-9 {
			t.Errorf("chiSquaredCDF(%v, 2) = %v, want %v", x, got, want)
		}
	}
	if got := chiSquaredCDF(-1, 2); got != 0 {
		t.Errorf("chiSquaredCDF(-1, 2) = %v, want 0", got)
	}
	// chi-squared 95th percentile with 10 dof is about 18.31
	if got := chiSquaredCDF(18.31, 10); math.Abs(got-0.95) > 0.001 {
		t.Errorf("chiSquaredCDF(18.31, 10) = %v, want ~0.95", got)
	}
}

func TestLjungBox(t *testing.T) {
	// strongly autocorrelated residuals: a slow sine
	n := 200
	smooth := make([]float64, n)
	for i := range smooth {
		smooth[i] = math.Sin(float64(i) / 20)
	}
	lb := LjungBox(smooth, 10, 0)
	if lb == nil {
		t.Fatal("LjungBox returned nil")
	}
	if lb.PValue > 1e-6 {
		t.Errorf("LjungBox p-value = %v for a sine, want ~0", lb.PValue)
	}

	// white-ish residuals from a hash of the index
	white := make([]float64, n)
	for i := range white {
		v := math.Sin(float64(i+1)*12.9898) * 43758.5453
		white[i] = v - math.Floor(v) - 0.5
	}
	lb = LjungBox(white, 10, 0)
	if lb == nil {
		t.Fatal("LjungBox returned nil")
	}
	if lb.PValue < 0.01 {
		t.Errorf("LjungBox p-value = %v for white noise, want > 0.01", lb.PValue)
	}

	if got := LjungBox([]float64{1, 2}, 10, 0); got != nil {
		t.Error("LjungBox on a tiny sample should return nil")
	}
}

func TestRunsTest(t *testing.T) {
	// perfectly alternating signs: far more runs than expected
	alternating := make([]float64, 100)
	for i := range alternating {
		if i%2 == 0 {
			alternating[i] = 1
		} else {
			alternating[i] = -1
		}
	}
	rt := RunsTest(alternating)
	if rt == nil {
		t.Fatal("RunsTest returned nil")
	}
	if rt.PValue > 1e-6 {
		t.Errorf("RunsTest p-value = %v for alternating signs, want ~0", rt.PValue)
	}
	if rt.Runs != 100 {
		t.Errorf("RunsTest runs = %d, want 100", rt.Runs)
	}

	// all one sign: test undefined
	if got := RunsTest([]float64{1, 2, 3}); got != nil {
		t.Error("RunsTest with one sign should return nil")
	}
}

func TestRunsTestDropsZeros(t *testing.T) {
	signs := []float64{1, -1, 1, 1, -1, 1, -1, -1, 1, -1}
	withZeros := make([]float64, 0, 2*len(signs))
	for _, v := range signs {
		withZeros = append(withZeros, v, 0)
	}

	a := RunsTest(signs)
	b := RunsTest(withZeros)
	if a == nil || b == nil {
		t.Fatal("RunsTest returned nil")
	}
	if a.Runs != b.Runs || a.Expected != b.Expected || a.Statistic != b.Statistic {
		t.Errorf("zeros changed the test: %+v vs %+v", a, b)
	}

	// zeros alone carry no sign
	if got := RunsTest([]float64{0, 0, 0}); got != nil {
		t.Error("RunsTest over zeros should return nil")
	}
}

func TestFitStatistics(t *testing.T) {
	obs := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	fit := fitStatistics(obs, 0.5, 2)

	if fit.RMSE <= 0 {
		t.Error("RMSE should be positive")
	}
	if fit.R2 <= 0.9 {
		t.Errorf("R2 = %v, want > 0.9 for small sse", fit.R2)
	}
	if fit.EVP < 90 || fit.EVP > 100 {
		t.Errorf("EVP = %v, want in (90, 100]", fit.EVP)
	}
	// BIC penalizes parameters harder than AIC for n >= 8
	if fit.BIC <= fit.AIC {
		t.Errorf("BIC = %v should exceed AIC = %v", fit.BIC, fit.AIC)
	}
}
