// Package lsq fits small dense nonlinear least-squares problems with
// gonum's optimize package.
//
// The objective is F(x) = 0.5 * ||r(x)||^2 for a residual vector r: R^n -> R^m
// with m >= n. The gradient Jᵀr and the Gauss-Newton Hessian JᵀJ are built
// from the caller's analytic Jacobian and handed to optimize.Newton, which
// adds a multiple of the identity whenever JᵀJ is not positive definite and
// globalizes every step with a line search.
package lsq

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

// Errors returned by Solve.
var (
	ErrInvalidProblem   = errors.New("lsq: invalid problem")
	ErrSingularJacobian = errors.New("lsq: singular Jacobian at initial parameters")
	ErrNotConverged     = errors.New("lsq: iteration budget exhausted")
	ErrNonFinite        = errors.New("lsq: non-finite residual")
)

const (
	defaultEps1       = 1e-12
	defaultEps2       = 1e-12
	defaultIterations = 500

	// stallIterations is how many iterations without relative improvement
	// above Eps2 end the solve.
	stallIterations = 3

	// stallGradient bounds the gradient at which a line search that can no
	// longer move is accepted as converged.
	stallGradient = 1e-6

	// maxCond bounds the condition number of the column-scaled JᵀJ at the seed.
	maxCond = 1e13
)

// Problem describes a least-squares problem.
type Problem struct {
	// Dim is the number of parameters (n).
	Dim int
	// Size is the number of residuals (m).
	Size int
	// Func writes the residuals at x into dst (len m).
	Func func(dst, x []float64)
	// Jac writes the m×n Jacobian of Func at x into dst.
	Jac func(dst *mat.Dense, x []float64)
	// InitParams is the starting point (len n).
	InitParams []float64
	// Eps1 is the gradient stopping tolerance (infinity norm). Zero selects 1e-12.
	Eps1 float64
	// Eps2 is the relative objective stopping tolerance. Zero selects 1e-12.
	Eps2 float64
}

// Settings bounds the solver effort.
type Settings struct {
	// Iterations is the maximum number of major iterations. Zero selects 500.
	Iterations int
}

// StopReason tells which criterion ended a successful solve.
type StopReason int

const (
	StopGradient StopReason = iota + 1
	StopObjective
	StopStep
)

func (r StopReason) String() string {
	switch r {
	case StopGradient:
		return "gradient"
	case StopObjective:
		return "objective"
	case StopStep:
		return "step"
	default:
		return "unknown"
	}
}

// Result is the outcome of a converged solve.
type Result struct {
	X          []float64
	Residuals  []float64
	Cost       float64 // 0.5 * sum of squared residuals
	Iterations int
	Reason     StopReason
}

func (p *Problem) validate() error {
	switch {
	case p.Dim <= 0:
		return fmt.Errorf("%w: dim %d", ErrInvalidProblem, p.Dim)
	case p.Size < p.Dim:
		return fmt.Errorf("%w: %d residuals for %d parameters", ErrInvalidProblem, p.Size, p.Dim)
	case p.Func == nil || p.Jac == nil:
		return fmt.Errorf("%w: Func and Jac are required", ErrInvalidProblem)
	case len(p.InitParams) != p.Dim:
		return fmt.Errorf("%w: %d initial parameters, want %d", ErrInvalidProblem, len(p.InitParams), p.Dim)
	}

	return nil
}

// Solve minimizes the problem starting at p.InitParams. It fails with
// ErrSingularJacobian when the seed Jacobian is rank deficient and with
// ErrNotConverged when the iteration budget runs out or the solver stops
// away from a stationary point; in neither case is a partial result
// returned.
func Solve(p Problem, s *Settings) (*Result, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	eps1 := p.Eps1
	if eps1 <= 0 {
		eps1 = defaultEps1
	}
	eps2 := p.Eps2
	if eps2 <= 0 {
		eps2 = defaultEps2
	}
	maxIter := defaultIterations
	if s != nil && s.Iterations > 0 {
		maxIter = s.Iterations
	}

	n, m := p.Dim, p.Size
	e := newEvaluator(p)

	seed := append([]float64(nil), p.InitParams...)
	r := e.residuals(seed)
	if !allFinite(r) {
		return nil, fmt.Errorf("%w at initial parameters", ErrNonFinite)
	}

	a := mat.NewSymDense(n, nil)
	e.hess(a, seed)
	if err := checkConditioning(a); err != nil {
		return nil, err
	}

	problem := optimize.Problem{
		Func: e.cost,
		Grad: e.grad,
		Hess: e.hess,
	}
	settings := &optimize.Settings{
		MajorIterations: maxIter,
		Converger: &optimize.FunctionConverge{
			Relative:   eps2,
			Iterations: stallIterations,
		},
	}
	method := &optimize.Newton{GradStopThreshold: eps1}

	res, err := optimize.Minimize(problem, seed, settings, method)
	if res == nil {
		return nil, fmt.Errorf("%w: %w", ErrNotConverged, err)
	}

	x := res.Location.X
	reason, ok := stopReason(res, err)
	if !ok {
		if err == nil {
			err = errors.New(res.Status.String())
		}
		return nil, fmt.Errorf("%w after %d iterations (cost %g): %w",
			ErrNotConverged, res.Stats.MajorIterations, res.Location.F, err)
	}

	residuals := make([]float64, m)
	p.Func(residuals, x)
	if !allFinite(residuals) {
		return nil, fmt.Errorf("%w at the solution", ErrNonFinite)
	}

	return &Result{
		X:          x,
		Residuals:  residuals,
		Cost:       0.5 * floats.Dot(residuals, residuals),
		Iterations: res.Stats.MajorIterations,
		Reason:     reason,
	}, nil
}

// stopReason maps the optimizer outcome onto a StopReason. A line search
// that can no longer move counts as converged only at a near-stationary
// point.
func stopReason(res *optimize.Result, err error) (StopReason, bool) {
	if err != nil {
		if !errors.Is(err, optimize.ErrNoProgress) && !errors.Is(err, optimize.ErrLinesearcherFailure) {
			return 0, false
		}
		g := res.Location.Gradient
		if len(g) == 0 || floats.Norm(g, math.Inf(1)) > stallGradient {
			return 0, false
		}
		return StopStep, true
	}

	switch res.Status {
	case optimize.GradientThreshold:
		return StopGradient, true
	case optimize.FunctionConvergence:
		return StopObjective, true
	case optimize.StepConvergence, optimize.MethodConverge, optimize.Success:
		return StopStep, true
	default:
		return 0, false
	}
}

// evaluator turns the residual and Jacobian callbacks into the objective,
// gradient and Gauss-Newton Hessian optimize expects.
type evaluator struct {
	p   Problem
	r   []float64
	jac *mat.Dense
}

func newEvaluator(p Problem) *evaluator {
	return &evaluator{
		p:   p,
		r:   make([]float64, p.Size),
		jac: mat.NewDense(p.Size, p.Dim, nil),
	}
}

func (e *evaluator) residuals(x []float64) []float64 {
	e.p.Func(e.r, x)
	return e.r
}

func (e *evaluator) jacobian(x []float64) *mat.Dense {
	e.jac.Zero()
	e.p.Jac(e.jac, x)
	return e.jac
}

func (e *evaluator) cost(x []float64) float64 {
	r := e.residuals(x)
	if !allFinite(r) {
		return math.Inf(1)
	}
	return 0.5 * floats.Dot(r, r)
}

func (e *evaluator) grad(dst, x []float64) {
	r := e.residuals(x)
	g := mat.NewVecDense(len(dst), dst)
	g.MulVec(e.jacobian(x).T(), mat.NewVecDense(len(r), r))
}

func (e *evaluator) hess(dst *mat.SymDense, x []float64) {
	dst.SymOuterK(1, e.jacobian(x).T())
}

// checkConditioning reports ErrSingularJacobian when JᵀJ, scaled to unit
// diagonal, is not positive definite or is too badly conditioned.
func checkConditioning(a *mat.SymDense) error {
	n := a.SymmetricDim()
	scale := make([]float64, n)
	for i := range scale {
		d := a.At(i, i)
		if !(d > 0) || math.IsInf(d, 0) {
			return fmt.Errorf("%w: parameter %d has no influence on the residuals", ErrSingularJacobian, i)
		}
		scale[i] = 1 / math.Sqrt(d)
	}

	scaled := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			scaled.SetSym(i, j, a.At(i, j)*scale[i]*scale[j])
		}
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(scaled); !ok {
		return fmt.Errorf("%w: normal matrix is not positive definite", ErrSingularJacobian)
	}
	if c := chol.Cond(); c > maxCond || math.IsNaN(c) {
		return fmt.Errorf("%w: condition number %g", ErrSingularJacobian, c)
	}

	return nil
}

func allFinite(x []float64) bool {
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
