package store

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aquastore/aquastore/pkg/models"
	"github.com/aquastore/aquastore/pkg/telemetry"
)

// SolveOptions configures SolveModels.
type SolveOptions struct {
	// Parallel is the number of worker goroutines. Zero means one per CPU.
	Parallel int

	// Fit holds the solver settings, zero values mean defaults.
	Fit models.FitOptions

	// Store writes solved records back to the store. Enabled by default
	// through DefaultSolveOptions.
	Store bool
}

// DefaultSolveOptions returns the solve defaults.
func DefaultSolveOptions() SolveOptions {
	return SolveOptions{
		Fit:   models.DefaultFitOptions(),
		Store: true,
	}
}

// SolveResult is the outcome of solving one model.
type SolveResult struct {
	Model string
	Fit   *models.FitResult
	Err   error
}

// SolveReport summarizes one solve run.
type SolveReport struct {
	// RunID identifies the run in logs.
	RunID    string
	Results  []SolveResult
	Duration time.Duration
}

// Failed returns the results of models that failed to solve.
func (r *SolveReport) Failed() []SolveResult {
	var failed []SolveResult
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// SolveModels solves the named models in parallel. With no names given, all
// stored models are solved. A model that fails does not stop the run; its
// error is reported in the result. Results follow the order of the name list.
func (s *Store) SolveModels(ctx context.Context, names []string, opts SolveOptions) (*SolveReport, error) {
	names, err := s.resolveModelNames(ctx, names)
	if err != nil {
		return nil, err
	}

	parallel := opts.Parallel
	if parallel <= 0 {
		parallel = runtime.NumCPU()
	}
	if parallel > len(names) {
		parallel = len(names)
	}

	runID := uuid.NewString()
	log := s.log.WithRunID(runID)
	log.Infof("solving %d models with %d workers", len(names), parallel)

	report := &SolveReport{
		RunID:   runID,
		Results: make([]SolveResult, len(names)),
	}
	start := time.Now()

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < parallel; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				report.Results[i] = s.solveOne(ctx, names[i], opts, log)
			}
		}()
	}

	for i := range names {
		select {
		case jobs <- i:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return report, ctx.Err()
		}
	}
	close(jobs)
	wg.Wait()

	report.Duration = time.Since(start)
	log.Infof("solve run finished in %s, %d failed", report.Duration, len(report.Failed()))
	return report, nil
}

// solveOne loads, solves and optionally stores one model.
func (s *Store) solveOne(ctx context.Context, name string, opts SolveOptions, log *telemetry.Logger) SolveResult {
	s.metrics.RecordSolveStarted()
	start := time.Now()

	result := SolveResult{Model: name}
	model, err := s.GetModel(ctx, name)
	if err != nil {
		result.Err = err
	} else {
		result.Fit, result.Err = model.Solve(opts.Fit)
	}

	status := "ok"
	if result.Err != nil {
		status = "error"
		log.WithModel(name).WithError(result.Err).Warn("solve failed")
	} else if opts.Store {
		if err := s.conn.AddModel(ctx, model.Record, true); err != nil {
			result.Err = err
			status = "error"
		}
	}
	s.metrics.RecordSolveCompleted(status, time.Since(start))
	return result
}
