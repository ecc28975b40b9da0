package models

import (
	"fmt"
	"time"

	"github.com/aquastore/aquastore/pkg/series"
)

// defaultWarmup is the spin-up period (days) simulated before the
// calibration window when the record does not set one.
const defaultWarmup = 365

// Model is a solvable model: a record together with the series data it
// references. Models are built by the store, which loads the referenced
// series from a connector.
type Model struct {
	Record   *Record
	Oseries  *series.Series
	Stresses map[string]*series.Series
}

// New creates a model from a record and its referenced series data.
func New(rec *Record, oseries *series.Series, stresses map[string]*series.Series) (*Model, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	if oseries == nil {
		return nil, fmt.Errorf("model %q: missing oseries data", rec.Name)
	}
	for _, term := range rec.Stresses {
		if stresses[term.Name] == nil {
			return nil, fmt.Errorf("model %q: missing data for stress %q", rec.Name, term.Name)
		}
	}
	return &Model{
		Record:   rec,
		Oseries:  oseries,
		Stresses: stresses,
	}, nil
}

// calibration returns the effective calibration window and warmup.
func (m *Model) calibration() (tmin, tmax time.Time, warmup int) {
	tmin = m.Record.Settings.Tmin
	tmax = m.Record.Settings.Tmax
	if tmin.IsZero() {
		tmin = m.Oseries.First()
	}
	if tmax.IsZero() {
		tmax = m.Oseries.Last()
	}
	warmup = m.Record.Settings.Warmup
	if warmup <= 0 {
		warmup = defaultWarmup
	}
	return tmin, tmax, warmup
}

// simGrid is the daily simulation grid. Observations inside the calibration
// window are mapped to grid indices.
type simGrid struct {
	start   time.Time
	days    int
	obsIdx  []int
	obsTime []time.Time
	obs     []float64
}

// dayIndex converts a timestamp to whole days since the grid start.
func (g *simGrid) dayIndex(t time.Time) int {
	return int(t.Sub(g.start).Hours() / 24)
}

// buildGrid lays out the daily grid from tmin-warmup through tmax and maps
// the observations in the calibration window onto it.
func (m *Model) buildGrid() (*simGrid, error) {
	tmin, tmax, warmup := m.calibration()
	if tmax.Before(tmin) {
		return nil, fmt.Errorf("model %q: tmax before tmin", m.Record.Name)
	}

	start := day(tmin).AddDate(0, 0, -warmup)
	days := int(day(tmax).Sub(start).Hours()/24) + 1

	g := &simGrid{start: start, days: days}
	obs := m.Oseries.Slice(tmin, tmax)
	for i := range obs.Values {
		g.obsIdx = append(g.obsIdx, g.dayIndex(day(obs.Timestamps[i])))
		g.obsTime = append(g.obsTime, obs.Timestamps[i])
		g.obs = append(g.obs, obs.Values[i])
	}
	if len(g.obs) == 0 {
		return nil, fmt.Errorf("model %q: no observations in calibration period", m.Record.Name)
	}
	return g, nil
}

// stressGrid resamples a stress series onto the daily grid. Days without a
// stress observation contribute zero.
func (m *Model) stressGrid(name string, g *simGrid) []float64 {
	s := m.Stresses[name]
	out := make([]float64, g.days)
	for i, t := range s.Timestamps {
		idx := g.dayIndex(day(t))
		if idx >= 0 && idx < g.days {
			out[idx] = s.Values[i]
		}
	}
	return out
}

// unitContribution convolves a gridded stress with the unit-gain block
// response of r. p carries the full response parameters; the gain entry is
// ignored. cutoff truncates the block response length.
func unitContribution(stress []float64, r response, p []float64, cutoff float64) []float64 {
	unit := make([]float64, len(p))
	copy(unit, p)
	unit[0] = 1

	blockLen := int(r.TMax(unit, cutoff)) + 1
	if blockLen > len(stress) {
		blockLen = len(stress)
	}
	block := blockResponse(r, unit, blockLen)

	out := make([]float64, len(stress))
	for i, v := range stress {
		if v == 0 {
			continue
		}
		end := i + blockLen
		if end > len(stress) {
			end = len(stress)
		}
		for j := i; j < end; j++ {
			out[j] += v * block[j-i]
		}
	}
	return out
}

// paramValue returns the value to simulate with: the optimal value once the
// model has been solved, the initial value otherwise.
func (m *Model) paramValue(name string) float64 {
	p := m.Record.Parameter(name)
	if p == nil {
		return 0
	}
	if m.Record.Fit != nil {
		return p.Optimal
	}
	return p.Initial
}

// termParams collects the response parameter vector of a term.
func (m *Model) termParams(term StressTerm) []float64 {
	p := []float64{
		m.paramValue(term.Name + "_A"),
		m.paramValue(term.Name + "_a"),
	}
	if term.Response == ResponseGamma {
		p = append(p, m.paramValue(term.Name+"_n"))
	}
	return p
}

// Simulate evaluates the model at the observation timestamps within the
// calibration window, using optimal parameters when solved and initial
// parameters otherwise.
func (m *Model) Simulate() (*series.Series, error) {
	g, err := m.buildGrid()
	if err != nil {
		return nil, err
	}

	sim := make([]float64, g.days)
	d := m.paramValue("constant_d")
	for i := range sim {
		sim[i] = d
	}
	for _, term := range m.Record.Stresses {
		r, err := newResponse(term.Response)
		if err != nil {
			return nil, err
		}
		p := m.termParams(term)
		contrib := unitContribution(m.stressGrid(term.Name, g), r, p, defaultCutoff)
		gain := p[0]
		for i := range sim {
			sim[i] += gain * contrib[i]
		}
	}

	values := make([]float64, len(g.obsIdx))
	timestamps := make([]time.Time, len(g.obsIdx))
	for i, idx := range g.obsIdx {
		values[i] = sim[idx]
		timestamps[i] = g.obsTime[i]
	}
	return &series.Series{
		Name:       m.Record.Name + "_sim",
		Timestamps: timestamps,
		Values:     values,
	}, nil
}

// Residuals returns observed minus simulated values at the observation
// timestamps.
func (m *Model) Residuals() (*series.Series, error) {
	sim, err := m.Simulate()
	if err != nil {
		return nil, err
	}
	g, err := m.buildGrid()
	if err != nil {
		return nil, err
	}
	values := make([]float64, len(g.obs))
	for i := range g.obs {
		values[i] = g.obs[i] - sim.Values[i]
	}
	return &series.Series{
		Name:       m.Record.Name + "_residuals",
		Timestamps: sim.Timestamps,
		Values:     values,
	}, nil
}

// day truncates a timestamp to midnight UTC.
func day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
