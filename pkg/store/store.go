package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/aquastore/aquastore/pkg/connectors"
	"github.com/aquastore/aquastore/pkg/series"
	"github.com/aquastore/aquastore/pkg/telemetry"
)

// Options configures a store.
type Options struct {
	// Logger receives structured log output. Nil means no logging.
	Logger *telemetry.Logger

	// Metrics receives operation counters. Nil means no metrics.
	Metrics *telemetry.Metrics
}

// Store is a named timeseries database on top of a storage backend.
type Store struct {
	name    string
	conn    connectors.Connector
	log     *telemetry.Logger
	metrics *telemetry.Metrics
}

// New creates a store over the given connector.
func New(name string, conn connectors.Connector, opts Options) (*Store, error) {
	if name == "" {
		return nil, fmt.Errorf("store name is required")
	}
	if conn == nil {
		return nil, fmt.Errorf("store connector is required")
	}
	log := opts.Logger
	if log == nil {
		log = telemetry.Nop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics, _ = telemetry.NewMetrics(telemetry.MetricsConfig{})
	}
	return &Store{
		name:    name,
		conn:    conn,
		log:     log.NewComponentLogger("store"),
		metrics: metrics,
	}, nil
}

// Name returns the store name.
func (s *Store) Name() string { return s.name }

// Connector returns the underlying storage backend.
func (s *Store) Connector() connectors.Connector { return s.conn }

// Metrics returns the metrics collector of the store.
func (s *Store) Metrics() *telemetry.Metrics { return s.metrics }

// Close closes the underlying storage backend.
func (s *Store) Close() error { return s.conn.Close() }

// record tracks one operation in logs and metrics.
func (s *Store) record(lib connectors.Library, op, name string) {
	s.metrics.RecordItemOperation(string(lib), op)
	s.log.WithLibrary(string(lib)).WithItem(name).Debug(op)
}

// AddOseries stores an observation series with its metadata.
func (s *Store) AddOseries(ctx context.Context, sr *series.Series, meta series.Metadata, overwrite bool) error {
	rec := &connectors.SeriesRecord{Series: sr, Metadata: meta}
	if err := s.conn.AddSeries(ctx, connectors.LibraryOseries, rec, overwrite); err != nil {
		return err
	}
	s.record(connectors.LibraryOseries, "add", sr.Name)
	return nil
}

// AddStress stores a stress series. Every stress carries a kind ("prec",
// "evap", "well", ...) used to look up stresses for model building; the kind
// is stored in the metadata under the "kind" key.
func (s *Store) AddStress(ctx context.Context, sr *series.Series, kind string, meta series.Metadata, overwrite bool) error {
	if kind == "" {
		return connectors.NewValidationError("stress %q: kind is required", sr.Name)
	}
	if meta == nil {
		meta = series.Metadata{}
	} else {
		meta = meta.Copy()
	}
	meta[series.MetaKind] = kind
	rec := &connectors.SeriesRecord{Series: sr, Metadata: meta}
	if err := s.conn.AddSeries(ctx, connectors.LibraryStresses, rec, overwrite); err != nil {
		return err
	}
	s.record(connectors.LibraryStresses, "add", sr.Name)
	return nil
}

// GetOseries retrieves an observation series and its metadata.
func (s *Store) GetOseries(ctx context.Context, name string) (*series.Series, series.Metadata, error) {
	rec, err := s.conn.GetSeries(ctx, connectors.LibraryOseries, name)
	if err != nil {
		return nil, nil, err
	}
	s.record(connectors.LibraryOseries, "get", name)
	return rec.Series, rec.Metadata, nil
}

// GetStress retrieves a stress series.
func (s *Store) GetStress(ctx context.Context, name string) (*series.Series, series.Metadata, error) {
	rec, err := s.conn.GetSeries(ctx, connectors.LibraryStresses, name)
	if err != nil {
		return nil, nil, err
	}
	s.record(connectors.LibraryStresses, "get", name)
	return rec.Series, rec.Metadata, nil
}

// DeleteOseries removes an observation series. Models referencing it stay in
// the store but can no longer be simulated; they are named in a warning.
func (s *Store) DeleteOseries(ctx context.Context, name string) error {
	if err := s.conn.DeleteSeries(ctx, connectors.LibraryOseries, name); err != nil {
		return err
	}
	s.record(connectors.LibraryOseries, "delete", name)
	if dependent, err := s.ModelsForOseries(ctx, name); err == nil && len(dependent) > 0 {
		s.log.WithItem(name).Warnf("deleted oseries still referenced by models: %s",
			strings.Join(dependent, ", "))
	}
	return nil
}

// DeleteStress removes a stress series.
func (s *Store) DeleteStress(ctx context.Context, name string) error {
	if err := s.conn.DeleteSeries(ctx, connectors.LibraryStresses, name); err != nil {
		return err
	}
	s.record(connectors.LibraryStresses, "delete", name)
	return nil
}

// OseriesNames lists the observation series names, sorted.
func (s *Store) OseriesNames(ctx context.Context) ([]string, error) {
	return s.conn.Names(ctx, connectors.LibraryOseries)
}

// StressNames lists the stress series names, sorted. When kind is non-empty
// only stresses of that kind are returned.
func (s *Store) StressNames(ctx context.Context, kind string) ([]string, error) {
	names, err := s.conn.Names(ctx, connectors.LibraryStresses)
	if err != nil || kind == "" {
		return names, err
	}
	var filtered []string
	for _, name := range names {
		meta, err := s.conn.SeriesMetadata(ctx, connectors.LibraryStresses, name)
		if err != nil {
			return nil, err
		}
		if meta.Kind() == kind {
			filtered = append(filtered, name)
		}
	}
	return filtered, nil
}

// ModelNames lists the model names, sorted.
func (s *Store) ModelNames(ctx context.Context) ([]string, error) {
	return s.conn.Names(ctx, connectors.LibraryModels)
}

// OseriesMetadata retrieves the metadata of an observation series.
func (s *Store) OseriesMetadata(ctx context.Context, name string) (series.Metadata, error) {
	return s.conn.SeriesMetadata(ctx, connectors.LibraryOseries, name)
}

// StressMetadata retrieves the metadata of a stress series.
func (s *Store) StressMetadata(ctx context.Context, name string) (series.Metadata, error) {
	return s.conn.SeriesMetadata(ctx, connectors.LibraryStresses, name)
}

// Counts returns the number of items per library and updates the item count
// gauges.
func (s *Store) Counts(ctx context.Context) (map[connectors.Library]int, error) {
	counts := make(map[connectors.Library]int, 3)
	for _, lib := range connectors.Libraries() {
		names, err := s.conn.Names(ctx, lib)
		if err != nil {
			return nil, err
		}
		counts[lib] = len(names)
		s.metrics.SetItemCount(string(lib), float64(len(names)))
	}
	return counts, nil
}

// ModelsForOseries lists the models whose observation series is the given
// oseries name.
func (s *Store) ModelsForOseries(ctx context.Context, oseries string) ([]string, error) {
	names, err := s.conn.Names(ctx, connectors.LibraryModels)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, name := range names {
		rec, err := s.conn.GetModel(ctx, name)
		if err != nil {
			return nil, err
		}
		if rec.Oseries == oseries {
			out = append(out, name)
		}
	}
	return out, nil
}
