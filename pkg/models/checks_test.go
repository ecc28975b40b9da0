package models

import (
	"testing"
)

func TestCheckSolvedModel(t *testing.T) {
	m := syntheticModel(t)
	if _, err := m.Solve(DefaultFitOptions()); err != nil {
		t.Fatalf("Solve() error: %v", err)
	}

	opts := DefaultCheckOptions()
	// the injected noise is white but finite, keep the test robust
	opts.AutocorrAlpha = 0.01

	report, err := m.Check(opts)
	if err != nil {
		t.Fatalf("Check() error: %v", err)
	}
	if len(report.Results) != 4 {
		t.Fatalf("Check() returned %d results, want 4", len(report.Results))
	}
	if !report.Passed() {
		for _, c := range report.Results {
			if !c.Passed {
				t.Errorf("check %q failed: statistic=%v threshold=%v", c.Name, c.Statistic, c.Threshold)
			}
		}
	}
}

func TestCheckUnsolvedModel(t *testing.T) {
	m := syntheticModel(t)
	if _, err := m.Check(DefaultCheckOptions()); err == nil {
		t.Error("Check() on an unsolved model should fail")
	}
}

func TestCheckFailsOnShortCalibration(t *testing.T) {
	m := syntheticModel(t)
	if _, err := m.Solve(DefaultFitOptions()); err != nil {
		t.Fatalf("Solve() error: %v", err)
	}

	// force the recovered time scale far past half the calibration period
	m.Record.Parameter("prec1_a").Optimal = 1e4

	report, err := m.Check(DefaultCheckOptions())
	if err != nil {
		t.Fatalf("Check() error: %v", err)
	}
	if report.Passed() {
		t.Error("Check() should fail when the response outlives half the calibration period")
	}
}

func TestResponseTime(t *testing.T) {
	m := syntheticModel(t)
	if _, err := m.Solve(DefaultFitOptions()); err != nil {
		t.Fatalf("Solve() error: %v", err)
	}

	rt, err := m.ResponseTime("prec1", 0.95)
	if err != nil {
		t.Fatalf("ResponseTime() error: %v", err)
	}
	// about three time scales for an exponential response
	if rt < 50 || rt > 500 {
		t.Errorf("ResponseTime() = %v, want within (50, 500) for a ~ %v", rt, truthScale)
	}

	if _, err := m.ResponseTime("nope", 0.95); err == nil {
		t.Error("ResponseTime() for unknown stress should fail")
	}
}
