package connectors

import (
	"context"

	"github.com/aquastore/aquastore/pkg/models"
	"github.com/aquastore/aquastore/pkg/series"
)

// Library identifies one of the item collections held by a connector.
type Library string

const (
	// LibraryOseries holds observation series.
	LibraryOseries Library = "oseries"

	// LibraryStresses holds stress series.
	LibraryStresses Library = "stresses"

	// LibraryModels holds model records.
	LibraryModels Library = "models"
)

// Libraries returns all libraries of a store.
func Libraries() []Library {
	return []Library{LibraryOseries, LibraryStresses, LibraryModels}
}

// SeriesLibraries returns the libraries holding timeseries.
func SeriesLibraries() []Library {
	return []Library{LibraryOseries, LibraryStresses}
}

// Valid reports whether the library name is known.
func (l Library) Valid() bool {
	return l == LibraryOseries || l == LibraryStresses || l == LibraryModels
}

// HoldsSeries reports whether the library stores timeseries items.
func (l Library) HoldsSeries() bool {
	return l == LibraryOseries || l == LibraryStresses
}

// SeriesRecord couples a stored series with its metadata.
type SeriesRecord struct {
	Series   *series.Series  `json:"series"`
	Metadata series.Metadata `json:"metadata,omitempty"`
}

// Copy creates a deep copy of the record.
func (r *SeriesRecord) Copy() *SeriesRecord {
	if r == nil {
		return nil
	}
	return &SeriesRecord{
		Series:   r.Series.Copy(),
		Metadata: r.Metadata.Copy(),
	}
}

// Connector mediates access to one storage backend. Implementations must
// return copies: mutating a record obtained from a connector never changes
// stored state. Adding an existing name without overwrite fails with an
// "already exists" error; reading or deleting a missing item fails with a
// "not found" error (see IsNotFound and IsExists).
type Connector interface {
	// Name returns the user-supplied connector name.
	Name() string

	// Type returns the backend type, e.g. "memory" or "sqlite".
	Type() string

	// Close releases backend resources.
	Close() error

	// AddSeries stores a series under rec.Series.Name in a series library.
	AddSeries(ctx context.Context, lib Library, rec *SeriesRecord, overwrite bool) error

	// GetSeries retrieves a series and its metadata.
	GetSeries(ctx context.Context, lib Library, name string) (*SeriesRecord, error)

	// DeleteSeries removes a series and its metadata.
	DeleteSeries(ctx context.Context, lib Library, name string) error

	// SeriesMetadata retrieves only the metadata of a series.
	SeriesMetadata(ctx context.Context, lib Library, name string) (series.Metadata, error)

	// AddModel stores a model record under rec.Name.
	AddModel(ctx context.Context, rec *models.Record, overwrite bool) error

	// GetModel retrieves a model record.
	GetModel(ctx context.Context, name string) (*models.Record, error)

	// DeleteModel removes a model record.
	DeleteModel(ctx context.Context, name string) error

	// Names lists the item names in a library, sorted.
	Names(ctx context.Context, lib Library) ([]string, error)
}

// validateSeriesAdd performs the checks shared by all backends before a
// series write.
func validateSeriesAdd(lib Library, rec *SeriesRecord) error {
	if !lib.HoldsSeries() {
		return NewValidationError("library %q does not hold series", lib)
	}
	if rec == nil || rec.Series == nil {
		return NewValidationError("nil series record")
	}
	if err := rec.Series.Validate(); err != nil {
		return &Error{Class: ClassValidation, Library: lib, Name: rec.Series.Name, Err: err}
	}
	return nil
}

// validateModelAdd performs the checks shared by all backends before a
// model write.
func validateModelAdd(rec *models.Record) error {
	if rec == nil {
		return NewValidationError("nil model record")
	}
	if err := rec.Validate(); err != nil {
		return &Error{Class: ClassValidation, Library: LibraryModels, Name: rec.Name, Err: err}
	}
	return nil
}
