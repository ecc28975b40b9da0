package models

import (
	"math"
)

// fitStatistics derives goodness-of-fit statistics from the calibration
// observations, the residual sum of squares and the number of fitted
// parameters.
func fitStatistics(obs []float64, sse float64, k int) FitResult {
	n := len(obs)
	mean := 0.0
	for _, v := range obs {
		mean += v
	}
	mean /= float64(n)
	tss := 0.0
	for _, v := range obs {
		d := v - mean
		tss += d * d
	}

	variance := sse / float64(n-k)
	if n <= k {
		variance = sse / float64(n)
	}

	fit := FitResult{
		RMSE:     math.Sqrt(sse / float64(n)),
		Variance: variance,
	}
	if tss > 0 {
		fit.R2 = 1 - sse/tss
		fit.EVP = math.Max(0, fit.R2) * 100
	}

	// Gaussian log-likelihood and information criteria.
	if variance > 0 {
		nf := float64(n)
		fit.LogLik = -nf/2*math.Log(2*math.Pi) - nf/2*math.Log(variance) - sse/(2*variance)
	} else {
		fit.LogLik = math.Inf(1)
	}
	fit.AIC = -2*fit.LogLik + 2*float64(k)
	fit.BIC = -2*fit.LogLik + float64(k)*math.Log(float64(n))
	return fit
}

// ACF computes the autocorrelation function of values up to maxLag.
// Element 0 is always 1.
func ACF(values []float64, maxLag int) []float64 {
	n := len(values)
	if maxLag >= n {
		maxLag = n - 1
	}
	if maxLag < 0 || n == 0 {
		return nil
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(n)
	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	if variance == 0 {
		return nil
	}
	acf := make([]float64, maxLag+1)
	for k := 0; k <= maxLag; k++ {
		sum := 0.0
		for i := k; i < n; i++ {
			sum += (values[i] - mean) * (values[i-k] - mean)
		}
		acf[k] = sum / variance
	}
	return acf
}

// LjungBoxResult reports the Ljung-Box portmanteau test.
type LjungBoxResult struct {
	Statistic float64
	PValue    float64
	Lags      int
	DOF       int
}

// LjungBox tests residuals for autocorrelation up to the given lag. fitdf
// is the number of fitted model parameters, subtracted from the degrees of
// freedom. A small p-value indicates significant autocorrelation.
func LjungBox(residuals []float64, lags, fitdf int) *LjungBoxResult {
	n := len(residuals)
	if n < 10 || lags < 1 {
		return nil
	}
	if lags >= n {
		lags = n - 1
	}
	acf := ACF(residuals, lags)
	if acf == nil {
		return nil
	}
	q := 0.0
	for k := 1; k <= lags; k++ {
		q += (acf[k] * acf[k]) / float64(n-k)
	}
	q *= float64(n * (n + 2))

	dof := lags - fitdf
	if dof < 1 {
		dof = 1
	}
	return &LjungBoxResult{
		Statistic: q,
		PValue:    1 - chiSquaredCDF(q, dof),
		Lags:      lags,
		DOF:       dof,
	}
}

// RunsTestResult reports the Wald-Wolfowitz runs test.
type RunsTestResult struct {
	Runs      int
	Expected  float64
	Statistic float64
	PValue    float64
}

// RunsTest checks residuals for randomness by counting sign runs. Zero
// residuals carry no sign and are dropped. A small p-value indicates the
// residuals are not random.
func RunsTest(residuals []float64) *RunsTestResult {
	var nPos, nNeg, runs int
	prev := 0
	for _, v := range residuals {
		if v == 0 {
			continue
		}
		sign := 1
		if v < 0 {
			sign = -1
		}
		if sign > 0 {
			nPos++
		} else {
			nNeg++
		}
		if sign != prev {
			runs++
			prev = sign
		}
	}
	if nPos == 0 || nNeg == 0 {
		return nil
	}
	np, nn := float64(nPos), float64(nNeg)
	n := np + nn
	expected := 2*np*nn/n + 1
	variance := 2 * np * nn * (2*np*nn - n) / (n * n * (n - 1))
	if variance <= 0 {
		return nil
	}
	z := (float64(runs) - expected) / math.Sqrt(variance)
	return &RunsTestResult{
		Runs:      runs,
		Expected:  expected,
		Statistic: z,
		PValue:    math.Erfc(math.Abs(z) / math.Sqrt2),
	}
}

// chiSquaredCDF evaluates the chi-squared CDF with k degrees of freedom.
func chiSquaredCDF(x float64, k int) float64 {
	if x < 0 {
		return 0
	}
	return regIncompleteGamma(float64(k)/2, x/2)
}
