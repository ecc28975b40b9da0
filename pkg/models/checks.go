package models

import (
	"fmt"
	"math"
)

// CheckOptions configures the reliability checks run over a solved model.
type CheckOptions struct {
	// R2Threshold is the minimum coefficient of determination.
	R2Threshold float64

	// AutocorrAlpha is the significance level for the Ljung-Box test on
	// the residuals; the check fails when autocorrelation is significant.
	AutocorrAlpha float64

	// AutocorrLags is the number of lags for the Ljung-Box test.
	AutocorrLags int

	// ResponseCutoff defines the response time t_cutoff that must fall
	// within half the calibration period.
	ResponseCutoff float64

	// GainSigma is the multiple of the gain standard error the gain
	// estimate must exceed.
	GainSigma float64
}

// DefaultCheckOptions returns the default reliability criteria.
func DefaultCheckOptions() CheckOptions {
	return CheckOptions{
		R2Threshold:    0.7,
		AutocorrAlpha:  0.05,
		AutocorrLags:   10,
		ResponseCutoff: 0.95,
		GainSigma:      2,
	}
}

// CheckResult is the outcome of a single reliability check.
type CheckResult struct {
	Name      string  `json:"name"`
	Statistic float64 `json:"statistic"`
	Threshold float64 `json:"threshold"`
	Passed    bool    `json:"passed"`
}

// Report collects the reliability checks of one model.
type Report struct {
	Model   string        `json:"model"`
	Results []CheckResult `json:"results"`
}

// Passed reports whether every check passed.
func (r Report) Passed() bool {
	for _, c := range r.Results {
		if !c.Passed {
			return false
		}
	}
	return len(r.Results) > 0
}

// Check runs the reliability checks against a solved model: fit quality,
// residual autocorrelation, response time within the calibration period,
// and gain significance.
func (m *Model) Check(opts CheckOptions) (Report, error) {
	rep := Report{Model: m.Record.Name}
	if m.Record.Fit == nil {
		return rep, fmt.Errorf("model %q: not solved", m.Record.Name)
	}

	rep.Results = append(rep.Results, CheckResult{
		Name:      "r2 >= threshold",
		Statistic: m.Record.Fit.R2,
		Threshold: opts.R2Threshold,
		Passed:    m.Record.Fit.R2 >= opts.R2Threshold,
	})

	res, err := m.Residuals()
	if err != nil {
		return rep, err
	}
	if lb := LjungBox(res.Values, opts.AutocorrLags, len(m.Record.Parameters)); lb != nil {
		rep.Results = append(rep.Results, CheckResult{
			Name:      "residual autocorrelation",
			Statistic: lb.PValue,
			Threshold: opts.AutocorrAlpha,
			Passed:    lb.PValue > opts.AutocorrAlpha,
		})
	}

	tmin, tmax, _ := m.calibration()
	calibDays := tmax.Sub(tmin).Hours() / 24
	for _, term := range m.Record.Stresses {
		r, err := newResponse(term.Response)
		if err != nil {
			return rep, err
		}
		p := m.termParams(term)
		tmem := r.TMax(p, opts.ResponseCutoff)
		rep.Results = append(rep.Results, CheckResult{
			Name:      fmt.Sprintf("response time: %s", term.Name),
			Statistic: tmem,
			Threshold: calibDays / 2,
			Passed:    tmem < calibDays/2,
		})

		gp := m.Record.Parameter(term.Name + "_A")
		rep.Results = append(rep.Results, CheckResult{
			Name:      fmt.Sprintf("gain significance: %s", term.Name),
			Statistic: math.Abs(gp.Optimal),
			Threshold: opts.GainSigma * gp.Stderr,
			Passed:    gp.Stderr > 0 && math.Abs(gp.Optimal) > opts.GainSigma*gp.Stderr,
		})
	}
	return rep, nil
}

// ResponseTime returns the time (days) for a stress term's response to
// reach the given fraction of its gain.
func (m *Model) ResponseTime(stress string, cutoff float64) (float64, error) {
	for _, term := range m.Record.Stresses {
		if term.Name != stress {
			continue
		}
		r, err := newResponse(term.Response)
		if err != nil {
			return 0, err
		}
		return r.TMax(m.termParams(term), cutoff), nil
	}
	return 0, fmt.Errorf("model %q: no stress %q", m.Record.Name, stress)
}
