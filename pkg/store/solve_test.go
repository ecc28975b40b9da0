package store

import (
	"context"
	"testing"
	"time"

	"github.com/aquastore/aquastore/pkg/connectors"
	"github.com/aquastore/aquastore/pkg/models"
)

func TestSolveModels(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedSolvable(t, st)

	report, err := st.SolveModels(ctx, nil, DefaultSolveOptions())
	if err != nil {
		t.Fatalf("SolveModels() error: %v", err)
	}
	if report.RunID == "" {
		t.Error("report has no run ID")
	}
	if len(report.Results) != 1 {
		t.Fatalf("got %d results, want 1", len(report.Results))
	}
	res := report.Results[0]
	if res.Err != nil {
		t.Fatalf("solve failed: %v", res.Err)
	}
	if res.Model != "well1" {
		t.Errorf("result model = %q", res.Model)
	}
	if res.Fit == nil || !res.Fit.Converged {
		t.Fatal("solver did not converge")
	}
	if res.Fit.R2 < 0.95 {
		t.Errorf("R2 = %v, want > 0.95", res.Fit.R2)
	}
	if len(report.Failed()) != 0 {
		t.Errorf("Failed() = %v, want none", report.Failed())
	}

	// The solved record is written back by default.
	rec, err := st.GetModelRecord(ctx, "well1")
	if err != nil {
		t.Fatalf("GetModelRecord() error: %v", err)
	}
	if rec.Fit == nil || !rec.Fit.Converged {
		t.Error("stored record has no fit result")
	}
	stats, err := st.Statistics(ctx, []string{"well1"})
	if err != nil {
		t.Fatalf("Statistics() error: %v", err)
	}
	if stats["well1"] == nil {
		t.Error("Statistics() missing fit for solved model")
	}
}

func TestSolveModelsWithoutStore(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedSolvable(t, st)

	opts := DefaultSolveOptions()
	opts.Store = false
	report, err := st.SolveModels(ctx, []string{"well1"}, opts)
	if err != nil {
		t.Fatalf("SolveModels() error: %v", err)
	}
	if report.Results[0].Err != nil {
		t.Fatalf("solve failed: %v", report.Results[0].Err)
	}

	rec, err := st.GetModelRecord(ctx, "well1")
	if err != nil {
		t.Fatalf("GetModelRecord() error: %v", err)
	}
	if rec.Fit != nil {
		t.Error("record was stored despite Store being disabled")
	}
}

func TestSolveModelsReportsFailures(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedSolvable(t, st)

	// A model whose stress was deleted after storing cannot be hydrated.
	start := time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)
	aux := dailySeries(t, "aux", start, patternValues(1250))
	if err := st.AddStress(ctx, aux, "prec", nil, false); err != nil {
		t.Fatalf("AddStress() error: %v", err)
	}
	rec := models.NewRecord("broken", "obs1")
	if err := rec.AddStress(models.StressTerm{Name: "aux", Kind: "prec", Response: models.ResponseExponential}); err != nil {
		t.Fatalf("AddStress() error: %v", err)
	}
	if err := st.AddModel(ctx, rec, false); err != nil {
		t.Fatalf("AddModel() error: %v", err)
	}
	if err := st.Connector().DeleteSeries(ctx, connectors.LibraryStresses, "aux"); err != nil {
		t.Fatalf("DeleteSeries() error: %v", err)
	}

	report, err := st.SolveModels(ctx, []string{"broken", "well1"}, SolveOptions{Parallel: 2})
	if err != nil {
		t.Fatalf("SolveModels() error: %v", err)
	}
	failed := report.Failed()
	if len(failed) != 1 || failed[0].Model != "broken" {
		t.Fatalf("Failed() = %v, want only broken", failed)
	}
	if !connectors.IsNotFound(failed[0].Err) {
		t.Errorf("failure = %v, want not-found", failed[0].Err)
	}
	// Results keep the requested order even with parallel workers.
	if report.Results[0].Model != "broken" || report.Results[1].Model != "well1" {
		t.Errorf("result order = %v", report.Results)
	}
}
