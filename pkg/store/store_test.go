package store

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/aquastore/aquastore/pkg/connectors"
	"github.com/aquastore/aquastore/pkg/models"
	"github.com/aquastore/aquastore/pkg/series"
)

// newTestStore creates a store over an in-memory connector.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	st, err := New("test", connectors.NewMemory("test"), Options{})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

// dailySeries builds a daily series of the given length.
func dailySeries(t *testing.T, name string, start time.Time, values []float64) *series.Series {
	t.Helper()

	timestamps := make([]time.Time, len(values))
	for i := range values {
		timestamps[i] = start.AddDate(0, 0, i)
	}
	s, err := series.New(name, timestamps, values)
	if err != nil {
		t.Fatalf("failed to build series: %v", err)
	}
	return s
}

// patternValues returns daily values with a repeating rainfall-like pattern.
func patternValues(n int) []float64 {
	values := make([]float64, n)
	for i := range values {
		switch {
		case i%3 == 0:
			values[i] = 8
		case i%5 == 0:
			values[i] = 3
		}
	}
	return values
}

// hashNoise returns deterministic white noise in [-0.05, 0.05).
func hashNoise(i int) float64 {
	v := math.Sin(float64(i+1)*12.9898) * 43758.5453
	return 0.1 * (v - math.Floor(v) - 0.5)
}

// seedSolvable populates the store with a precipitation stress and an
// observation series generated from a known exponential model, plus the
// matching unsolved model record. Metadata places the stress next to the
// observation well.
func seedSolvable(t *testing.T, st *Store) {
	t.Helper()
	ctx := context.Background()

	precStart := time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)
	prec := dailySeries(t, "prec1", precStart, patternValues(1250))
	if err := st.AddStress(ctx, prec, "prec", series.Metadata{
		series.MetaX: 100.0, series.MetaY: 110.0,
	}, false); err != nil {
		t.Fatalf("AddStress() error: %v", err)
	}

	obsStart := time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC)
	placeholder := dailySeries(t, "obs1", obsStart, make([]float64, 700))

	truth := models.NewRecord("truth", "obs1")
	if err := truth.AddStress(models.StressTerm{Name: "prec1", Kind: "prec", Response: models.ResponseExponential}); err != nil {
		t.Fatalf("AddStress() error: %v", err)
	}
	truth.Parameter("constant_d").Initial = 5
	truth.Parameter("prec1_A").Initial = 2
	truth.Parameter("prec1_a").Initial = 50

	truthModel, err := models.New(truth, placeholder, map[string]*series.Series{"prec1": prec})
	if err != nil {
		t.Fatalf("failed to build truth model: %v", err)
	}
	sim, err := truthModel.Simulate()
	if err != nil {
		t.Fatalf("failed to simulate: %v", err)
	}
	values := make([]float64, len(sim.Values))
	for i, v := range sim.Values {
		values[i] = v + hashNoise(i)
	}
	obs, err := series.New("obs1", sim.Timestamps, values)
	if err != nil {
		t.Fatalf("failed to build oseries: %v", err)
	}
	if err := st.AddOseries(ctx, obs, series.Metadata{
		series.MetaX: 100.0, series.MetaY: 100.0,
	}, false); err != nil {
		t.Fatalf("AddOseries() error: %v", err)
	}

	rec := models.NewRecord("well1", "obs1")
	if err := rec.AddStress(models.StressTerm{Name: "prec1", Kind: "prec", Response: models.ResponseExponential}); err != nil {
		t.Fatalf("AddStress() error: %v", err)
	}
	if err := st.AddModel(ctx, rec, false); err != nil {
		t.Fatalf("AddModel() error: %v", err)
	}
}

func TestStoreSeriesCRUD(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	obs := dailySeries(t, "obs1", start, []float64{1, 2, 3})
	if err := st.AddOseries(ctx, obs, series.Metadata{"screen_depth": 12.5}, false); err != nil {
		t.Fatalf("AddOseries() error: %v", err)
	}

	got, meta, err := st.GetOseries(ctx, "obs1")
	if err != nil {
		t.Fatalf("GetOseries() error: %v", err)
	}
	if !got.Equal(obs) {
		t.Error("retrieved oseries differs")
	}
	if meta["screen_depth"] != 12.5 {
		t.Errorf("metadata = %v", meta)
	}

	names, err := st.OseriesNames(ctx)
	if err != nil || len(names) != 1 {
		t.Fatalf("OseriesNames() = %v, %v", names, err)
	}

	if err := st.DeleteOseries(ctx, "obs1"); err != nil {
		t.Fatalf("DeleteOseries() error: %v", err)
	}
	if _, _, err := st.GetOseries(ctx, "obs1"); !connectors.IsNotFound(err) {
		t.Errorf("GetOseries() after delete = %v, want not-found", err)
	}
}

func TestAddStressRequiresKind(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	prec := dailySeries(t, "prec1", start, []float64{1, 0, 2})

	if err := st.AddStress(ctx, prec, "", nil, false); !connectors.IsValidation(err) {
		t.Errorf("AddStress() without kind = %v, want validation error", err)
	}

	if err := st.AddStress(ctx, prec, "prec", nil, false); err != nil {
		t.Fatalf("AddStress() error: %v", err)
	}
	meta, err := st.StressMetadata(ctx, "prec1")
	if err != nil {
		t.Fatalf("StressMetadata() error: %v", err)
	}
	if meta.Kind() != "prec" {
		t.Errorf("stored kind = %q, want prec", meta.Kind())
	}
}

func TestStressNamesFilterByKind(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	for name, kind := range map[string]string{
		"prec1": "prec", "prec2": "prec", "evap1": "evap",
	} {
		if err := st.AddStress(ctx, dailySeries(t, name, start, []float64{1, 2}), kind, nil, false); err != nil {
			t.Fatalf("AddStress(%s) error: %v", name, err)
		}
	}

	names, err := st.StressNames(ctx, "prec")
	if err != nil {
		t.Fatalf("StressNames() error: %v", err)
	}
	if len(names) != 2 {
		t.Errorf("StressNames(prec) = %v, want 2 entries", names)
	}
	all, err := st.StressNames(ctx, "")
	if err != nil || len(all) != 3 {
		t.Errorf("StressNames() = %v, %v, want 3 entries", all, err)
	}
}

func TestAddModelValidatesReferences(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	rec := models.NewRecord("m1", "missing_obs")
	if err := st.AddModel(ctx, rec, false); !connectors.IsNotFound(err) {
		t.Errorf("AddModel() with dangling oseries = %v, want not-found", err)
	}

	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := st.AddOseries(ctx, dailySeries(t, "obs1", start, []float64{1, 2}), nil, false); err != nil {
		t.Fatalf("AddOseries() error: %v", err)
	}

	rec = models.NewRecord("m1", "obs1")
	if err := rec.AddStress(models.StressTerm{Name: "missing_prec", Response: models.ResponseExponential}); err != nil {
		t.Fatalf("AddStress() error: %v", err)
	}
	if err := st.AddModel(ctx, rec, false); !connectors.IsNotFound(err) {
		t.Errorf("AddModel() with dangling stress = %v, want not-found", err)
	}

	rec = models.NewRecord("m1", "obs1")
	if err := st.AddModel(ctx, rec, false); err != nil {
		t.Fatalf("AddModel() error: %v", err)
	}
}

func TestCounts(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedSolvable(t, st)

	counts, err := st.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts() error: %v", err)
	}
	want := map[connectors.Library]int{
		connectors.LibraryOseries:  1,
		connectors.LibraryStresses: 1,
		connectors.LibraryModels:   1,
	}
	for lib, n := range want {
		if counts[lib] != n {
			t.Errorf("Counts()[%s] = %d, want %d", lib, counts[lib], n)
		}
	}
}

func TestModelsForOseries(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedSolvable(t, st)

	dependent, err := st.ModelsForOseries(ctx, "obs1")
	if err != nil {
		t.Fatalf("ModelsForOseries() error: %v", err)
	}
	if len(dependent) != 1 || dependent[0] != "well1" {
		t.Errorf("ModelsForOseries() = %v, want [well1]", dependent)
	}

	none, err := st.ModelsForOseries(ctx, "other")
	if err != nil || len(none) != 0 {
		t.Errorf("ModelsForOseries(other) = %v, %v", none, err)
	}
}

func TestSetParameters(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedSolvable(t, st)

	if err := st.SetParameters(ctx, "well1", map[string]float64{"prec1_a": 42}); err != nil {
		t.Fatalf("SetParameters() error: %v", err)
	}
	rec, err := st.GetModelRecord(ctx, "well1")
	if err != nil {
		t.Fatalf("GetModelRecord() error: %v", err)
	}
	if rec.Parameter("prec1_a").Initial != 42 {
		t.Errorf("parameter initial = %v, want 42", rec.Parameter("prec1_a").Initial)
	}

	if err := st.SetParameters(ctx, "well1", map[string]float64{"nope": 1}); !connectors.IsValidation(err) {
		t.Errorf("SetParameters() with unknown name = %v, want validation error", err)
	}
}

func TestParametersAndStatistics(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedSolvable(t, st)

	params, err := st.Parameters(ctx, nil)
	if err != nil {
		t.Fatalf("Parameters() error: %v", err)
	}
	if len(params["well1"]) == 0 {
		t.Error("Parameters() missing well1")
	}

	stats, err := st.Statistics(ctx, []string{"well1"})
	if err != nil {
		t.Fatalf("Statistics() error: %v", err)
	}
	if stats["well1"] != nil {
		t.Error("Statistics() for unsolved model should be nil")
	}
}
