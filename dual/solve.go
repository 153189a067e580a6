// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dual implements the one-dimensional semismooth Newton iteration shared by
// the projectors of this module.
//
// A projection onto a convex set is reduced to the root λ* of a scalar merit
// function F(λ). The iteration
//
//	λₖ₊₁ = λₖ + pₖdₖ
//
// uses a safeguarded Newton direction dₖ supplied by the caller, and a step pₖ that is
// either fixed to one (unsafeguarded) or chosen by armijo backtracking on a potential
// Θ with Θ′ = F (globalized).
package dual

import (
	"errors"
	"math"
)

// Value is the merit value F(λ) together with the auxiliary quantity used by the
// newton step: a generalized derivative for semismooth merits, a true derivative
// for smooth ones.
type Value struct {
	F float64
	G float64
}

// Merit evaluates the merit function at λ.
type Merit interface {
	Eval(lambda float64) (Value, error)
}

// Potential evaluates Θ(λ) whose derivative is the merit function.
type Potential interface {
	Theta(lambda float64) float64
}

// Direction computes the newton direction dₖ at iterate k.
// Implementations must guard every division and report ErrDegenerateSubgradient
// instead of producing NaN or ±Inf.
type Direction interface {
	Direction(k int, lambda float64, v Value) (float64, error)
}

// MeritFunc adapts an ordinary function to Merit.
type MeritFunc func(lambda float64) (Value, error)

func (f MeritFunc) Eval(lambda float64) (Value, error) { return f(lambda) }

// PotentialFunc adapts an ordinary function to Potential.
type PotentialFunc func(lambda float64) float64

func (f PotentialFunc) Theta(lambda float64) float64 { return f(lambda) }

// DirectionFunc adapts an ordinary function to Direction.
type DirectionFunc func(k int, lambda float64, v Value) (float64, error)

func (f DirectionFunc) Direction(k int, lambda float64, v Value) (float64, error) {
	return f(k, lambda, v)
}

// Iterate is passed to Problem.Monitor once per evaluated iterate.
type Iterate struct {
	K      int
	Lambda float64
	Value
}

// Armijo specifies the backtracking search on the potential:
//
//	Θ(λₖ + pdₖ) ≤ Θ(λₖ) + pσFₖdₖ
//
// with p starting at one and shrinking by β.
type Armijo struct {
	Sigma         float64 // sufficient decrease factor, defaults to DefaultSigma
	Beta          float64 // shrink factor, defaults to DefaultBeta
	MaxBacktracks int     // defaults to DefaultMaxBacktracks
}

// Problem specifies the stopping rule and step acceptance policy of the solver.
type Problem struct {
	// The iteration stop when |F(λₖ)| < Tolerance.
	Tolerance float64
	// The iteration fails with ErrNonConvergence after MaxIterations steps.
	// Zero selects DefaultMaxIterations.
	MaxIterations int
	// Search enables the armijo backtracking. A nil Search takes full steps.
	Search *Armijo
	// Monotone fails the solve once an iterate decreases after reaching the region
	// below the root, where the unsafeguarded iteration is known to increase.
	Monotone bool
	// Monitor is called with every evaluated iterate (optional).
	Monitor func(Iterate)
}

// New creates a solver for given problem.
func (p *Problem) New(logger *Logger) (solver *Solver, err error) {

	tol, maxIter := p.Tolerance, p.MaxIterations
	if maxIter == 0 {
		maxIter = DefaultMaxIterations
	}

	var search *Armijo
	if p.Search != nil {
		s := *p.Search
		if s.Sigma == zero {
			s.Sigma = DefaultSigma
		}
		if s.Beta == zero {
			s.Beta = DefaultBeta
		}
		if s.MaxBacktracks == 0 {
			s.MaxBacktracks = DefaultMaxBacktracks
		}
		search = &s
	}

	switch {
	case math.IsNaN(tol) || math.IsInf(tol, 0) || tol <= zero:
		err = errors.New("tolerance must be a finite number greater than 0")
	case maxIter < 0:
		err = errors.New("max iteration must not less than 0")
	case search != nil && (search.Sigma <= zero || search.Sigma >= one):
		err = errors.New("armijo sigma must lie in (0,1)")
	case search != nil && (search.Beta <= zero || search.Beta >= one):
		err = errors.New("armijo beta must lie in (0,1)")
	case search != nil && search.MaxBacktracks < 0:
		err = errors.New("armijo backtracks must not less than 0")
	}

	if err != nil {
		err = wrapInvalid(err)
		return
	}

	solver = &Solver{
		tol:      tol,
		maxIter:  maxIter,
		search:   search,
		monotone: p.Monotone,
		monitor:  p.Monitor,
		logger:   logger.normalize(),
	}
	return
}

// Solver runs the newton iteration. It holds no per-solve state and may be shared
// by concurrent goroutines provided the Monitor and Logger writers are thread-safe.
type Solver struct {
	tol      float64
	maxIter  int
	search   *Armijo
	monotone bool
	monitor  func(Iterate)
	logger   Logger
}

// Globalized reports whether the solver performs the armijo search.
func (s *Solver) Globalized() bool {
	return s.search != nil
}

// Tolerance returns the stopping tolerance on |F|.
func (s *Solver) Tolerance() float64 {
	return s.tol
}

// Result contains the final result of the newton iteration.
type Result struct {
	OK      bool    // Whether the iteration was converged.
	Lambda  float64 // Final dual variable.
	F, G    float64 // Merit value and auxiliary quantity at Lambda.
	Summary         // Iteration summary.
}

// Summary contains a summary of the newton iteration.
type Summary struct {
	Status       Status // Final status after iteration.
	NumIter      int    // Number of newton steps taken.
	NumEval      int    // Number of merit evaluations.
	NumTheta     int    // Number of potential evaluations.
	NumBacktrack int    // Number of step halvings across all line searches.
}

// Solve runs the iteration from lambda0. The potential is only required when the
// armijo search is enabled.
//
// The returned Result is never nil; on failure it describes the last iterate and the
// error wraps one of ErrInvalidInput, ErrDegenerateSubgradient, ErrDomainViolation or
// ErrNonConvergence.
func (s *Solver) Solve(m Merit, d Direction, p Potential, lambda0 float64) (*Result, error) {

	var err error
	switch {
	case m == nil:
		err = errors.New("merit function is required")
	case d == nil:
		err = errors.New("newton direction is required")
	case s.search != nil && p == nil:
		err = errors.New("potential is required by armijo search")
	case math.IsNaN(lambda0) || math.IsInf(lambda0, 0):
		err = errors.New("initial guess must be finite")
	}
	if err != nil {
		return &Result{Lambda: lambda0}, wrapInvalid(err)
	}

	driver := newtonDriver{
		solver:    s,
		merit:     m,
		direction: d,
		potential: p,
		lambda:    lambda0,
	}

	status, err := driver.mainLoop()
	driver.sum.Status = status
	return &Result{
		OK:      status == Converged,
		Lambda:  driver.lambda,
		F:       driver.val.F,
		G:       driver.val.G,
		Summary: driver.sum,
	}, err
}
