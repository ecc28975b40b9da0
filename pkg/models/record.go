package models

import (
	"fmt"
	"time"

	"github.com/aquastore/aquastore/pkg/series"
)

// ResponseType identifies the response function of a stress term.
type ResponseType string

const (
	ResponseExponential ResponseType = "exponential"
	ResponseGamma       ResponseType = "gamma"
)

// Valid reports whether the response type is known.
func (r ResponseType) Valid() bool {
	return r == ResponseExponential || r == ResponseGamma
}

// StressTerm couples a stored stress series to a response function.
type StressTerm struct {
	// Name references a series in the stresses library.
	Name string `json:"name"`

	// Kind is the stress kind, e.g. "prec", "evap" or "well".
	Kind string `json:"kind,omitempty"`

	// Response selects the response function.
	Response ResponseType `json:"response"`
}

// Parameter is one entry of a model's parameter table.
type Parameter struct {
	Name    string  `json:"name"`
	Initial float64 `json:"initial"`
	Optimal float64 `json:"optimal"`
	Lower   float64 `json:"lower"`
	Upper   float64 `json:"upper"`
	Vary    bool    `json:"vary"`
	Stderr  float64 `json:"stderr,omitempty"`
}

// Settings holds the calibration settings of a model.
type Settings struct {
	// Tmin and Tmax bound the calibration period. Zero values default to
	// the observation series range when the model is solved.
	Tmin time.Time `json:"tmin,omitempty"`
	Tmax time.Time `json:"tmax,omitempty"`

	// Warmup is the number of days simulated before Tmin so that slow
	// responses have spun up at the start of the calibration period.
	Warmup int `json:"warmup,omitempty"`
}

// FitResult holds the goodness-of-fit statistics of a solved model.
type FitResult struct {
	EVP        float64   `json:"evp"`
	R2         float64   `json:"r2"`
	RMSE       float64   `json:"rmse"`
	AIC        float64   `json:"aic"`
	BIC        float64   `json:"bic"`
	LogLik     float64   `json:"loglik"`
	Variance   float64   `json:"variance"`
	Iterations int       `json:"iterations"`
	Converged  bool      `json:"converged"`
	SolvedAt   time.Time `json:"solved_at"`
}

// Record is the persisted form of a model. It references series by name
// rather than embedding their data, so a record can only be simulated after
// the referenced series have been loaded from the store.
type Record struct {
	Name       string       `json:"name"`
	Oseries    string       `json:"oseries"`
	Stresses   []StressTerm `json:"stresses,omitempty"`
	Parameters []Parameter  `json:"parameters"`
	Settings   Settings     `json:"settings"`
	Fit        *FitResult   `json:"fit,omitempty"`
	Created    time.Time    `json:"created"`
	Updated    time.Time    `json:"updated"`
}

// NewRecord creates an unsolved model record for an observation series,
// with the constant parameter initialized.
func NewRecord(name, oseries string) *Record {
	now := time.Now().UTC()
	return &Record{
		Name:    name,
		Oseries: oseries,
		Parameters: []Parameter{
			{Name: "constant_d", Lower: -1e5, Upper: 1e5, Vary: true},
		},
		Created: now,
		Updated: now,
	}
}

// AddStress appends a stress term and its default parameters to the record.
func (r *Record) AddStress(term StressTerm) error {
	if err := series.ValidateName(term.Name); err != nil {
		return err
	}
	if !term.Response.Valid() {
		return fmt.Errorf("model %q: unknown response type %q", r.Name, term.Response)
	}
	for _, st := range r.Stresses {
		if st.Name == term.Name {
			return fmt.Errorf("model %q: stress %q already present", r.Name, term.Name)
		}
	}
	r.Stresses = append(r.Stresses, term)
	r.Parameters = append(r.Parameters, defaultParameters(term)...)
	r.Updated = time.Now().UTC()
	return nil
}

// defaultParameters returns the initial parameter table entries for a term.
func defaultParameters(term StressTerm) []Parameter {
	params := []Parameter{
		{Name: term.Name + "_A", Initial: 1, Lower: -1e4, Upper: 1e4, Vary: true},
		{Name: term.Name + "_a", Initial: 10, Lower: 0.01, Upper: 5e3, Vary: true},
	}
	if term.Response == ResponseGamma {
		params = append(params,
			Parameter{Name: term.Name + "_n", Initial: 1, Lower: 0.1, Upper: 10, Vary: true})
	}
	return params
}

// Parameter returns a pointer to the named parameter, or nil.
func (r *Record) Parameter(name string) *Parameter {
	for i := range r.Parameters {
		if r.Parameters[i].Name == name {
			return &r.Parameters[i]
		}
	}
	return nil
}

// Validate checks the internal consistency of the record.
func (r *Record) Validate() error {
	if err := series.ValidateName(r.Name); err != nil {
		return fmt.Errorf("model name: %w", err)
	}
	if r.Oseries == "" {
		return fmt.Errorf("model %q: missing oseries reference", r.Name)
	}
	for _, term := range r.Stresses {
		if !term.Response.Valid() {
			return fmt.Errorf("model %q: stress %q has unknown response %q", r.Name, term.Name, term.Response)
		}
		for _, pname := range parameterNames(term) {
			if r.Parameter(pname) == nil {
				return fmt.Errorf("model %q: missing parameter %q", r.Name, pname)
			}
		}
	}
	if r.Parameter("constant_d") == nil {
		return fmt.Errorf("model %q: missing parameter %q", r.Name, "constant_d")
	}
	for _, p := range r.Parameters {
		if p.Lower > p.Upper {
			return fmt.Errorf("model %q: parameter %q has lower bound above upper bound", r.Name, p.Name)
		}
	}
	return nil
}

// parameterNames lists the parameter table entries a term contributes.
func parameterNames(term StressTerm) []string {
	names := []string{term.Name + "_A", term.Name + "_a"}
	if term.Response == ResponseGamma {
		names = append(names, term.Name+"_n")
	}
	return names
}

// Copy creates a deep copy of the record.
func (r *Record) Copy() *Record {
	out := *r
	out.Stresses = make([]StressTerm, len(r.Stresses))
	copy(out.Stresses, r.Stresses)
	out.Parameters = make([]Parameter, len(r.Parameters))
	copy(out.Parameters, r.Parameters)
	if r.Fit != nil {
		fit := *r.Fit
		out.Fit = &fit
	}
	return &out
}
