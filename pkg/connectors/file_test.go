package connectors

import (
	"context"
	"testing"
	"time"

	"github.com/aquastore/aquastore/pkg/series"
)

// reopenFile opens a file connector over an existing directory.
func reopenFile(t *testing.T, dir string, compress bool) *File {
	t.Helper()

	c, err := NewFile("test", FileConfig{Path: dir, Compress: compress})
	if err != nil {
		t.Fatalf("failed to open file connector: %v", err)
	}
	return c
}

func TestFileCompressionToggle(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	plain := reopenFile(t, dir, false)
	if err := plain.AddSeries(ctx, LibraryOseries, testSeries(t, "obs1"), false); err != nil {
		t.Fatalf("AddSeries() error: %v", err)
	}
	plain.Close()

	// Reopen compressed and overwrite with new values; the plain document
	// must not shadow the compressed one.
	compressed := reopenFile(t, dir, true)
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	updated, err := series.New("obs1", []time.Time{start}, []float64{9.9})
	if err != nil {
		t.Fatalf("failed to build series: %v", err)
	}
	if err := compressed.AddSeries(ctx, LibraryOseries, &SeriesRecord{Series: updated}, true); err != nil {
		t.Fatalf("AddSeries() with overwrite error: %v", err)
	}

	got, err := compressed.GetSeries(ctx, LibraryOseries, "obs1")
	if err != nil {
		t.Fatalf("GetSeries() error: %v", err)
	}
	if got.Series.Values[0] != 9.9 {
		t.Errorf("read back value = %v, want 9.9", got.Series.Values[0])
	}
	names, err := compressed.Names(ctx, LibraryOseries)
	if err != nil {
		t.Fatalf("Names() error: %v", err)
	}
	if len(names) != 1 {
		t.Errorf("Names() = %v, want a single entry", names)
	}
	compressed.Close()

	// And back again: a plain overwrite replaces the compressed document.
	plain = reopenFile(t, dir, false)
	defer plain.Close()
	reverted, err := series.New("obs1", []time.Time{start}, []float64{4.2})
	if err != nil {
		t.Fatalf("failed to build series: %v", err)
	}
	if err := plain.AddSeries(ctx, LibraryOseries, &SeriesRecord{Series: reverted}, true); err != nil {
		t.Fatalf("AddSeries() with overwrite error: %v", err)
	}
	got, err = plain.GetSeries(ctx, LibraryOseries, "obs1")
	if err != nil {
		t.Fatalf("GetSeries() error: %v", err)
	}
	if got.Series.Values[0] != 4.2 {
		t.Errorf("read back value = %v, want 4.2", got.Series.Values[0])
	}
}

func TestFileCompressionToggleModels(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	plain := reopenFile(t, dir, false)
	if err := plain.AddModel(ctx, testModel(t, "m1"), false); err != nil {
		t.Fatalf("AddModel() error: %v", err)
	}
	plain.Close()

	compressed := reopenFile(t, dir, true)
	defer compressed.Close()
	rec := testModel(t, "m1")
	rec.Parameter("prec1_a").Initial = 77
	if err := compressed.AddModel(ctx, rec, true); err != nil {
		t.Fatalf("AddModel() with overwrite error: %v", err)
	}

	got, err := compressed.GetModel(ctx, "m1")
	if err != nil {
		t.Fatalf("GetModel() error: %v", err)
	}
	if got.Parameter("prec1_a").Initial != 77 {
		t.Errorf("read back initial = %v, want 77", got.Parameter("prec1_a").Initial)
	}
}
