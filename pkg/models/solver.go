package models

import (
	"fmt"
	"math"
	"time"
)

// defaultCutoff truncates response functions at this fraction of the gain.
const defaultCutoff = 0.999

// FitOptions controls the solver.
type FitOptions struct {
	// MaxIterations bounds the outer coordinate-descent loop.
	MaxIterations int

	// Tolerance is the relative sum-of-squares improvement below which
	// the solver stops.
	Tolerance float64
}

// DefaultFitOptions returns the default solver configuration.
func DefaultFitOptions() FitOptions {
	return FitOptions{
		MaxIterations: 25,
		Tolerance:     1e-7,
	}
}

// Solve calibrates the model parameters against the observations inside the
// calibration window and stores the result on the record. The gains and the
// constant are linear in the simulation, so for fixed response time scales
// they are solved exactly by ordinary least squares; the remaining shape
// parameters are found by coordinate descent with golden-section line
// searches inside their bounds. Parameters with Vary false are held at their
// initial value (clamped to the bounds): shape parameters are skipped by the
// line search, and fixed gains or a fixed constant are moved out of the
// regression into the offset.
func (m *Model) Solve(opts FitOptions) (*FitResult, error) {
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultFitOptions().MaxIterations
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = DefaultFitOptions().Tolerance
	}

	g, err := m.buildGrid()
	if err != nil {
		return nil, err
	}

	terms := m.Record.Stresses
	responses := make([]response, len(terms))
	stressGrids := make([][]float64, len(terms))
	for i, term := range terms {
		r, err := newResponse(term.Response)
		if err != nil {
			return nil, err
		}
		responses[i] = r
		stressGrids[i] = m.stressGrid(term.Name, g)
	}

	// shape holds the nonlinear parameters per term: [a] or [a, n].
	shape := make([][]float64, len(terms))
	shapeNames := make([][]string, len(terms))
	for i, term := range terms {
		names := []string{term.Name + "_a"}
		if term.Response == ResponseGamma {
			names = append(names, term.Name+"_n")
		}
		shapeNames[i] = names
		shape[i] = make([]float64, len(names))
		for j, name := range names {
			p := m.Record.Parameter(name)
			shape[i][j] = clamp(p.Initial, p.Lower, p.Upper)
		}
	}

	// Fixed gains and a fixed constant keep their clamped initial value and
	// contribute to the offset; the remaining ones become design columns.
	gainCol := make([]int, len(terms))
	fixedGain := make([]float64, len(terms))
	nLinear := 0
	for ti, term := range terms {
		gp := m.Record.Parameter(term.Name + "_A")
		if gp.Vary {
			gainCol[ti] = nLinear
			nLinear++
		} else {
			gainCol[ti] = -1
			fixedGain[ti] = clamp(gp.Initial, gp.Lower, gp.Upper)
		}
	}
	cp := m.Record.Parameter("constant_d")
	constCol := -1
	fixedConst := 0.0
	if cp.Vary {
		constCol = nLinear
		nLinear++
	} else {
		fixedConst = clamp(cp.Initial, cp.Lower, cp.Upper)
	}

	nFree := nLinear
	for ti := range terms {
		for _, name := range shapeNames[ti] {
			if m.Record.Parameter(name).Vary {
				nFree++
			}
		}
	}
	if len(g.obs) <= nFree {
		return nil, fmt.Errorf("model %q: %d observations cannot constrain %d parameters",
			m.Record.Name, len(g.obs), nFree)
	}

	// evaluate builds the design matrix for the current shape parameters,
	// solves the linear subproblem and returns the residual sum of squares.
	evaluate := func() (beta []float64, cov [][]float64, sse float64, err error) {
		contribs := make([][]float64, len(terms))
		for ti := range terms {
			p := append([]float64{1}, shape[ti]...)
			contribs[ti] = unitContribution(stressGrids[ti], responses[ti], p, defaultCutoff)
		}
		y := make([]float64, len(g.obs))
		for i, idx := range g.obsIdx {
			y[i] = g.obs[i] - fixedConst
			for ti := range terms {
				if gainCol[ti] < 0 {
					y[i] -= fixedGain[ti] * contribs[ti][idx]
				}
			}
		}
		var x [][]float64
		if nLinear > 0 {
			x = make([][]float64, len(g.obs))
			for i, idx := range g.obsIdx {
				row := make([]float64, nLinear)
				for ti := range terms {
					if gainCol[ti] >= 0 {
						row[gainCol[ti]] = contribs[ti][idx]
					}
				}
				if constCol >= 0 {
					row[constCol] = 1
				}
				x[i] = row
			}
			beta, cov, err = leastSquares(x, y)
			if err != nil {
				return nil, nil, 0, err
			}
		}
		for i := range y {
			pred := 0.0
			for j := range beta {
				pred += x[i][j] * beta[j]
			}
			r := y[i] - pred
			sse += r * r
		}
		return beta, cov, sse, nil
	}

	_, _, sse, err := evaluate()
	if err != nil {
		return nil, err
	}

	iterations := 0
	converged := false
	for iter := 0; iter < opts.MaxIterations; iter++ {
		iterations = iter + 1
		prev := sse
		for ti := range terms {
			for j, name := range shapeNames[ti] {
				p := m.Record.Parameter(name)
				if !p.Vary {
					continue
				}
				shape[ti][j] = goldenSection(p.Lower, p.Upper, func(v float64) float64 {
					shape[ti][j] = v
					_, _, s, gerr := evaluate()
					if gerr != nil {
						return math.Inf(1)
					}
					return s
				})
			}
		}
		_, _, sse, err = evaluate()
		if err != nil {
			return nil, err
		}
		if prev-sse < opts.Tolerance*math.Max(prev, 1) {
			converged = true
			break
		}
	}

	beta, cov, sse, err := evaluate()
	if err != nil {
		return nil, err
	}

	// write optimal values and standard errors back to the record
	n := len(g.obs)
	var sigma2 float64
	if nLinear > 0 {
		sigma2 = sse / float64(n-nLinear)
	}
	for ti, term := range terms {
		gp := m.Record.Parameter(term.Name + "_A")
		if gainCol[ti] >= 0 {
			gp.Optimal = beta[gainCol[ti]]
			gp.Stderr = math.Sqrt(sigma2 * cov[gainCol[ti]][gainCol[ti]])
		} else {
			gp.Optimal = fixedGain[ti]
			gp.Stderr = 0
		}
		for j, name := range shapeNames[ti] {
			sp := m.Record.Parameter(name)
			sp.Optimal = shape[ti][j]
			sp.Stderr = 0
		}
	}
	if constCol >= 0 {
		cp.Optimal = beta[constCol]
		cp.Stderr = math.Sqrt(sigma2 * cov[constCol][constCol])
	} else {
		cp.Optimal = fixedConst
		cp.Stderr = 0
	}

	fit := fitStatistics(g.obs, sse, nFree)
	fit.Iterations = iterations
	fit.Converged = converged
	fit.SolvedAt = time.Now().UTC()
	m.Record.Fit = &fit
	m.Record.Updated = fit.SolvedAt
	return &fit, nil
}

// goldenSection minimizes f on [lo, hi].
func goldenSection(lo, hi float64, f func(float64) float64) float64 {
	const phi = 0.6180339887498949
	tol := 1e-6 * (hi - lo)
	a, b := lo, hi
	c := b - phi*(b-a)
	d := a + phi*(b-a)
	fc, fd := f(c), f(d)
	for i := 0; i < 100 && b-a > tol; i++ {
		if fc < fd {
			b, d, fd = d, c, fc
			c = b - phi*(b-a)
			fc = f(c)
		} else {
			a, c, fc = c, d, fd
			d = a + phi*(b-a)
			fd = f(d)
		}
	}
	mid := (a + b) / 2
	// leave the closure's view of the parameter at the returned value
	f(mid)
	return mid
}

// leastSquares solves min ||y - X b|| via the normal equations and returns
// the coefficient vector and the unscaled covariance matrix (X'X)^-1.
func leastSquares(x [][]float64, y []float64) ([]float64, [][]float64, error) {
	n := len(x)
	if n == 0 {
		return nil, nil, fmt.Errorf("least squares: no rows")
	}
	k := len(x[0])

	// normal equations: (X'X) b = X'y
	xtx := make([][]float64, k)
	xty := make([]float64, k)
	for i := 0; i < k; i++ {
		xtx[i] = make([]float64, k)
		for j := 0; j < k; j++ {
			s := 0.0
			for r := 0; r < n; r++ {
				s += x[r][i] * x[r][j]
			}
			xtx[i][j] = s
		}
		s := 0.0
		for r := 0; r < n; r++ {
			s += x[r][i] * y[r]
		}
		xty[i] = s
	}

	inv, err := invert(xtx)
	if err != nil {
		return nil, nil, err
	}
	beta := make([]float64, k)
	for i := 0; i < k; i++ {
		for j := 0; j < k; j++ {
			beta[i] += inv[i][j] * xty[j]
		}
	}
	return beta, inv, nil
}

// invert inverts a small symmetric positive matrix by Gauss-Jordan
// elimination with partial pivoting.
func invert(m [][]float64) ([][]float64, error) {
	k := len(m)
	a := make([][]float64, k)
	inv := make([][]float64, k)
	for i := range m {
		a[i] = make([]float64, k)
		copy(a[i], m[i])
		inv[i] = make([]float64, k)
		inv[i][i] = 1
	}
	for col := 0; col < k; col++ {
		pivot := col
		for r := col + 1; r < k; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(a[pivot][col]) < 1e-300 {
			return nil, fmt.Errorf("least squares: singular design matrix")
		}
		a[col], a[pivot] = a[pivot], a[col]
		inv[col], inv[pivot] = inv[pivot], inv[col]
		p := a[col][col]
		for j := 0; j < k; j++ {
			a[col][j] /= p
			inv[col][j] /= p
		}
		for r := 0; r < k; r++ {
			if r == col {
				continue
			}
			f := a[r][col]
			if f == 0 {
				continue
			}
			for j := 0; j < k; j++ {
				a[r][j] -= f * a[col][j]
				inv[r][j] -= f * inv[col][j]
			}
		}
	}
	return inv, nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
