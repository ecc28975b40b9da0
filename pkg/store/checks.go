package store

import (
	"context"

	"github.com/aquastore/aquastore/pkg/models"
)

// CheckModels runs the reliability checks on the named models and returns
// the reports keyed by model name. With no names given, all stored models
// are checked. Models that cannot be loaded or have not been solved are
// reported as errors.
func (s *Store) CheckModels(ctx context.Context, names []string, opts models.CheckOptions) (map[string]models.Report, error) {
	names, err := s.resolveModelNames(ctx, names)
	if err != nil {
		return nil, err
	}
	reports := make(map[string]models.Report, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		model, err := s.GetModel(ctx, name)
		if err != nil {
			return nil, err
		}
		report, err := model.Check(opts)
		if err != nil {
			return nil, err
		}
		reports[name] = report
	}
	return reports, nil
}
