package store

import (
	"context"
	"fmt"

	"github.com/aquastore/aquastore/pkg/connectors"
	"github.com/aquastore/aquastore/pkg/models"
	"github.com/aquastore/aquastore/pkg/series"
)

// AddModel stores a model record. Every referenced series must exist: a
// record pointing at a missing oseries or stress is rejected with a
// "not found" error so the store never holds dangling references.
func (s *Store) AddModel(ctx context.Context, rec *models.Record, overwrite bool) error {
	if rec == nil {
		return connectors.NewValidationError("nil model record")
	}
	if _, err := s.conn.SeriesMetadata(ctx, connectors.LibraryOseries, rec.Oseries); err != nil {
		return fmt.Errorf("model %q references oseries %q: %w", rec.Name, rec.Oseries, err)
	}
	for _, term := range rec.Stresses {
		if _, err := s.conn.SeriesMetadata(ctx, connectors.LibraryStresses, term.Name); err != nil {
			return fmt.Errorf("model %q references stress %q: %w", rec.Name, term.Name, err)
		}
	}
	if err := s.conn.AddModel(ctx, rec, overwrite); err != nil {
		return err
	}
	s.record(connectors.LibraryModels, "add", rec.Name)
	return nil
}

// GetModelRecord retrieves a stored model record without loading its series.
func (s *Store) GetModelRecord(ctx context.Context, name string) (*models.Record, error) {
	rec, err := s.conn.GetModel(ctx, name)
	if err != nil {
		return nil, err
	}
	s.record(connectors.LibraryModels, "get", name)
	return rec, nil
}

// GetModel retrieves a model record and loads every series it references,
// returning a model ready to simulate or solve.
func (s *Store) GetModel(ctx context.Context, name string) (*models.Model, error) {
	rec, err := s.GetModelRecord(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, rec)
}

// hydrate loads the series referenced by a record.
func (s *Store) hydrate(ctx context.Context, rec *models.Record) (*models.Model, error) {
	orec, err := s.conn.GetSeries(ctx, connectors.LibraryOseries, rec.Oseries)
	if err != nil {
		return nil, fmt.Errorf("model %q: load oseries: %w", rec.Name, err)
	}
	stresses := make(map[string]*series.Series, len(rec.Stresses))
	for _, term := range rec.Stresses {
		srec, err := s.conn.GetSeries(ctx, connectors.LibraryStresses, term.Name)
		if err != nil {
			return nil, fmt.Errorf("model %q: load stress %q: %w", rec.Name, term.Name, err)
		}
		stresses[term.Name] = srec.Series
	}
	return models.New(rec, orec.Series, stresses)
}

// DeleteModel removes a model record.
func (s *Store) DeleteModel(ctx context.Context, name string) error {
	if err := s.conn.DeleteModel(ctx, name); err != nil {
		return err
	}
	s.record(connectors.LibraryModels, "delete", name)
	return nil
}

// CreateModelOptions configures CreateModel.
type CreateModelOptions struct {
	// ModelName overrides the model name, which defaults to the oseries
	// name.
	ModelName string

	// AddRecharge attaches the nearest precipitation and evaporation
	// stresses to the model.
	AddRecharge bool

	// Response is the response type of attached stresses. Defaults to
	// exponential.
	Response models.ResponseType

	// PrecKind and EvapKind are the stress kinds looked up when
	// AddRecharge is set. They default to "prec" and "evap".
	PrecKind string
	EvapKind string
}

// CreateModel builds a model record for an observation series. With
// AddRecharge it locates the nearest precipitation and evaporation stresses
// using the x/y metadata of the series. The model is returned but not stored;
// pass it to AddModel to persist it.
func (s *Store) CreateModel(ctx context.Context, oseries string, opts CreateModelOptions) (*models.Record, error) {
	if _, err := s.conn.SeriesMetadata(ctx, connectors.LibraryOseries, oseries); err != nil {
		return nil, err
	}
	name := opts.ModelName
	if name == "" {
		name = oseries
	}
	rec := models.NewRecord(name, oseries)

	if opts.AddRecharge {
		response := opts.Response
		if response == "" {
			response = models.ResponseExponential
		}
		precKind := opts.PrecKind
		if precKind == "" {
			precKind = "prec"
		}
		evapKind := opts.EvapKind
		if evapKind == "" {
			evapKind = "evap"
		}
		for _, kind := range []string{precKind, evapKind} {
			nearest, err := s.NearestStresses(ctx, oseries, kind, 1)
			if err != nil {
				return nil, err
			}
			if len(nearest) == 0 {
				return nil, connectors.NewValidationError(
					"no stress of kind %q with x/y metadata near oseries %q", kind, oseries)
			}
			if err := rec.AddStress(models.StressTerm{
				Name:     nearest[0].Name,
				Kind:     kind,
				Response: response,
			}); err != nil {
				return nil, err
			}
		}
	}

	s.log.WithModel(name).WithItem(oseries).Debug("created model")
	return rec, nil
}

// SetParameters overwrites the initial values of the named model's
// parameters, which the solver uses as starting point. Unknown parameter
// names are rejected.
func (s *Store) SetParameters(ctx context.Context, model string, values map[string]float64) error {
	rec, err := s.conn.GetModel(ctx, model)
	if err != nil {
		return err
	}
	for name, value := range values {
		p := rec.Parameter(name)
		if p == nil {
			return connectors.NewValidationError("model %q has no parameter %q", model, name)
		}
		p.Initial = value
	}
	return s.conn.AddModel(ctx, rec, true)
}

// Parameters returns the parameter tables of the named models, keyed by
// model name. With no names given, all models are included.
func (s *Store) Parameters(ctx context.Context, names []string) (map[string][]models.Parameter, error) {
	names, err := s.resolveModelNames(ctx, names)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]models.Parameter, len(names))
	for _, name := range names {
		rec, err := s.conn.GetModel(ctx, name)
		if err != nil {
			return nil, err
		}
		params := make([]models.Parameter, len(rec.Parameters))
		copy(params, rec.Parameters)
		out[name] = params
	}
	return out, nil
}

// Statistics returns the fit statistics of the named models, keyed by model
// name. Unsolved models map to nil. With no names given, all models are
// included.
func (s *Store) Statistics(ctx context.Context, names []string) (map[string]*models.FitResult, error) {
	names, err := s.resolveModelNames(ctx, names)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*models.FitResult, len(names))
	for _, name := range names {
		rec, err := s.conn.GetModel(ctx, name)
		if err != nil {
			return nil, err
		}
		out[name] = rec.Fit
	}
	return out, nil
}

// resolveModelNames defaults an empty name list to all stored models.
func (s *Store) resolveModelNames(ctx context.Context, names []string) ([]string, error) {
	if len(names) > 0 {
		return names, nil
	}
	return s.conn.Names(ctx, connectors.LibraryModels)
}
