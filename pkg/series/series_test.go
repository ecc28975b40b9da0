package series

import (
	"math"
	"testing"
	"time"
)

// makeSeries builds a daily series starting at 2020-01-01.
func makeSeries(t *testing.T, name string, values []float64) *Series {
	t.Helper()

	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	timestamps := make([]time.Time, len(values))
	for i := range values {
		timestamps[i] = start.AddDate(0, 0, i)
	}
	s, err := New(name, timestamps, values)
	if err != nil {
		t.Fatalf("failed to create series: %v", err)
	}
	return s
}

func TestNewValidation(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		seriesName string
		timestamps []time.Time
		values     []float64
		wantErr    bool
	}{
		{
			name:       "valid",
			seriesName: "well1",
			timestamps: []time.Time{start, start.AddDate(0, 0, 1)},
			values:     []float64{1, 2},
		},
		{
			name:       "empty",
			seriesName: "well1",
			wantErr:    true,
		},
		{
			name:       "length mismatch",
			seriesName: "well1",
			timestamps: []time.Time{start},
			values:     []float64{1, 2},
			wantErr:    true,
		},
		{
			name:       "unsorted timestamps",
			seriesName: "well1",
			timestamps: []time.Time{start.AddDate(0, 0, 1), start},
			values:     []float64{1, 2},
			wantErr:    true,
		},
		{
			name:       "duplicate timestamps",
			seriesName: "well1",
			timestamps: []time.Time{start, start},
			values:     []float64{1, 2},
			wantErr:    true,
		},
		{
			name:       "non-finite value",
			seriesName: "well1",
			timestamps: []time.Time{start, start.AddDate(0, 0, 1)},
			values:     []float64{1, math.NaN()},
			wantErr:    true,
		},
		{
			name:       "invalid name",
			seriesName: "well 1",
			timestamps: []time.Time{start},
			values:     []float64{1},
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.seriesName, tt.timestamps, tt.values)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestStatistics(t *testing.T) {
	s := makeSeries(t, "well1", []float64{1, 2, 3, 4, 5})

	if got := s.Mean(); got != 3 {
		t.Errorf("Mean() = %v, want 3", got)
	}
	if got := s.Min(); got != 1 {
		t.Errorf("Min() = %v, want 1", got)
	}
	if got := s.Max(); got != 5 {
		t.Errorf("Max() = %v, want 5", got)
	}
	// sample variance of 1..5 is 2.5
	if got := s.Variance(); math.Abs(got-2.5) > 1e-12 {
		t.Errorf("Variance() = %v, want 2.5", got)
	}
	if got := s.Std(); math.Abs(got-math.Sqrt(2.5)) > 1e-12 {
		t.Errorf("Std() = %v, want sqrt(2.5)", got)
	}
}

func TestSlice(t *testing.T) {
	s := makeSeries(t, "well1", []float64{1, 2, 3, 4, 5})
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	sliced := s.Slice(start.AddDate(0, 0, 1), start.AddDate(0, 0, 3))
	if sliced.Len() != 3 {
		t.Fatalf("Slice() length = %d, want 3", sliced.Len())
	}
	if sliced.Values[0] != 2 || sliced.Values[2] != 4 {
		t.Errorf("Slice() values = %v, want [2 3 4]", sliced.Values)
	}

	// zero bounds keep the full range
	full := s.Slice(time.Time{}, time.Time{})
	if full.Len() != s.Len() {
		t.Errorf("Slice() with zero bounds length = %d, want %d", full.Len(), s.Len())
	}

	// disjoint window yields an empty series
	empty := s.Slice(start.AddDate(1, 0, 0), start.AddDate(2, 0, 0))
	if empty.Len() != 0 {
		t.Errorf("Slice() outside range length = %d, want 0", empty.Len())
	}
}

func TestAt(t *testing.T) {
	s := makeSeries(t, "well1", []float64{1, 2, 3})
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	if v, ok := s.At(start.AddDate(0, 0, 1)); !ok || v != 2 {
		t.Errorf("At(day 2) = %v, %v, want 2, true", v, ok)
	}
	if _, ok := s.At(start.Add(12 * time.Hour)); ok {
		t.Error("At() between samples should report not found")
	}
}

func TestDiff(t *testing.T) {
	s := makeSeries(t, "well1", []float64{1, 3, 6})
	d := s.Diff()
	if d.Len() != 2 {
		t.Fatalf("Diff() length = %d, want 2", d.Len())
	}
	if d.Values[0] != 2 || d.Values[1] != 3 {
		t.Errorf("Diff() values = %v, want [2 3]", d.Values)
	}
}

func TestCopyIsDeep(t *testing.T) {
	s := makeSeries(t, "well1", []float64{1, 2})
	c := s.Copy()
	c.Values[0] = 99
	if s.Values[0] == 99 {
		t.Error("Copy() shares the values slice with the original")
	}
	if !s.Equal(makeSeries(t, "other", []float64{1, 2})) {
		t.Error("Equal() should ignore names")
	}
}

func TestValidateName(t *testing.T) {
	valid := []string{"well1", "gw.well-1", "A_b.c-2"}
	for _, name := range valid {
		if err := ValidateName(name); err != nil {
			t.Errorf("ValidateName(%q) = %v, want nil", name, err)
		}
	}
	invalid := []string{"", "with space", "-leading", "slash/name", "tab\tname"}
	for _, name := range invalid {
		if err := ValidateName(name); err == nil {
			t.Errorf("ValidateName(%q) = nil, want error", name)
		}
	}
}

func TestCleanName(t *testing.T) {
	if got := CleanName("my well #1"); ValidateName(got) != nil {
		t.Errorf("CleanName() produced invalid name %q", got)
	}
}

func TestMetadataXY(t *testing.T) {
	m := Metadata{MetaX: 100.5, MetaY: 200}
	x, y, ok := m.XY()
	if !ok || x != 100.5 || y != 200 {
		t.Errorf("XY() = %v, %v, %v, want 100.5, 200, true", x, y, ok)
	}

	// JSON round-trips numbers as float64, but ints must work too
	m = Metadata{MetaX: 5, MetaY: 6}
	if _, _, ok := m.XY(); !ok {
		t.Error("XY() should accept integer coordinates")
	}

	if _, _, ok := (Metadata{MetaX: 1}).XY(); ok {
		t.Error("XY() with missing y should report not ok")
	}
	if (Metadata{MetaKind: "prec"}).Kind() != "prec" {
		t.Error("Kind() should return the kind value")
	}
}
