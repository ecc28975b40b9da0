package connectors

import (
	"context"
	"sort"
	"sync"

	"github.com/aquastore/aquastore/pkg/models"
	"github.com/aquastore/aquastore/pkg/series"
)

// Memory is an in-process connector backed by maps. It is safe for
// concurrent use and keeps no state between processes.
type Memory struct {
	name string

	mu      sync.RWMutex
	series  map[Library]map[string]*SeriesRecord
	records map[string]*models.Record
}

// NewMemory creates an in-memory connector.
func NewMemory(name string) *Memory {
	libs := make(map[Library]map[string]*SeriesRecord)
	for _, lib := range SeriesLibraries() {
		libs[lib] = make(map[string]*SeriesRecord)
	}
	return &Memory{
		name:    name,
		series:  libs,
		records: make(map[string]*models.Record),
	}
}

// Name implements Connector.
func (m *Memory) Name() string { return m.name }

// Type implements Connector.
func (m *Memory) Type() string { return "memory" }

// Close implements Connector.
func (m *Memory) Close() error { return nil }

// AddSeries implements Connector.
func (m *Memory) AddSeries(_ context.Context, lib Library, rec *SeriesRecord, overwrite bool) error {
	if err := validateSeriesAdd(lib, rec); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	name := rec.Series.Name
	if _, ok := m.series[lib][name]; ok && !overwrite {
		return NewExistsError(lib, name)
	}
	m.series[lib][name] = rec.Copy()
	return nil
}

// GetSeries implements Connector.
func (m *Memory) GetSeries(_ context.Context, lib Library, name string) (*SeriesRecord, error) {
	if !lib.HoldsSeries() {
		return nil, NewValidationError("library %q does not hold series", lib)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.series[lib][name]
	if !ok {
		return nil, NewNotFoundError(lib, name)
	}
	return rec.Copy(), nil
}

// DeleteSeries implements Connector.
func (m *Memory) DeleteSeries(_ context.Context, lib Library, name string) error {
	if !lib.HoldsSeries() {
		return NewValidationError("library %q does not hold series", lib)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.series[lib][name]; !ok {
		return NewNotFoundError(lib, name)
	}
	delete(m.series[lib], name)
	return nil
}

// SeriesMetadata implements Connector.
func (m *Memory) SeriesMetadata(ctx context.Context, lib Library, name string) (series.Metadata, error) {
	rec, err := m.GetSeries(ctx, lib, name)
	if err != nil {
		return nil, err
	}
	return rec.Metadata, nil
}

// AddModel implements Connector.
func (m *Memory) AddModel(_ context.Context, rec *models.Record, overwrite bool) error {
	if err := validateModelAdd(rec); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[rec.Name]; ok && !overwrite {
		return NewExistsError(LibraryModels, rec.Name)
	}
	m.records[rec.Name] = rec.Copy()
	return nil
}

// GetModel implements Connector.
func (m *Memory) GetModel(_ context.Context, name string) (*models.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[name]
	if !ok {
		return nil, NewNotFoundError(LibraryModels, name)
	}
	return rec.Copy(), nil
}

// DeleteModel implements Connector.
func (m *Memory) DeleteModel(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[name]; !ok {
		return NewNotFoundError(LibraryModels, name)
	}
	delete(m.records, name)
	return nil
}

// Names implements Connector.
func (m *Memory) Names(_ context.Context, lib Library) ([]string, error) {
	if !lib.Valid() {
		return nil, NewValidationError("unknown library %q", lib)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var names []string
	if lib == LibraryModels {
		for name := range m.records {
			names = append(names, name)
		}
	} else {
		for name := range m.series[lib] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}
