// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package l1ball computes the euclidean projection onto the ℓ1 ball
//
//	𝚖𝚒𝚗 ½‖ x - y ‖₂²  subject to  ‖ x ‖₁ ≤ r
//
// by a semismooth newton iteration on the scalar multiplier λ of the constraint,
// followed by the soft-threshold reconstruction xᵢ = 𝚜𝚒𝚐𝚗(yᵢ)𝚖𝚊𝚡(|yᵢ| - λ, 0).
package l1ball

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/curioloop/projector/dual"
)

// Problem specifies the projection onto the ℓ1 ball.
type Problem struct {
	N             int     // The problem dimension
	Radius        float64 // Ball radius, zero selects the unit ball
	Tolerance     float64 // The iteration stop when |F(λₖ)| < Tolerance
	MaxIterations int     // Zero selects dual.DefaultMaxIterations
	// Globalized runs every solve with the armijo search.
	Globalized bool
	// Armijo overrides the search parameters of globalized solves (optional).
	Armijo *dual.Armijo
	// Src drives the sampled initial guess.
	Src Sampler
	// Monitor is called with every evaluated iterate (optional).
	Monitor func(dual.Iterate)
}

// New creates a projector for given problem.
func (p *Problem) New(logger *dual.Logger) (projector *Projector, err error) {

	r := p.Radius
	if r == zero {
		r = one
	}

	switch {
	case p.N <= 0:
		err = errors.New("problem dimension must greater than 0")
	case math.IsNaN(r) || math.IsInf(r, 0) || r < zero:
		err = errors.New("radius must be a finite number greater than 0")
	case p.Src == nil:
		err = errors.New("random source is required")
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dual.ErrInvalidInput, err)
	}

	search := p.Armijo
	if search == nil {
		search = &dual.Armijo{}
	}

	base := dual.Problem{
		Tolerance:     p.Tolerance,
		MaxIterations: p.MaxIterations,
		Monitor:       p.Monitor,
	}

	fast := base
	watched := base
	watched.Monotone = true
	global := base
	global.Search = search

	projector = &Projector{n: p.N, radius: r, src: p.Src, globalized: p.Globalized}
	if projector.fast, err = fast.New(logger); err != nil {
		return nil, err
	}
	if projector.watched, err = watched.New(logger); err != nil {
		return nil, err
	}
	if projector.global, err = global.New(logger); err != nil {
		return nil, err
	}
	projector.logger = logger
	return
}

// Projector projects vectors of a fixed dimension onto the ℓ1 ball.
// It shares its Sampler between calls, so concurrent goroutines need separate projectors.
type Projector struct {
	n          int
	radius     float64
	globalized bool
	src        Sampler
	logger     *dual.Logger

	fast    *dual.Solver // unsafeguarded
	watched *dual.Solver // unsafeguarded with monotone watchdog, for warm starts
	global  *dual.Solver // armijo
}

// Result contains the final result of the projection.
type Result struct {
	OK       bool    // Whether the iteration was converged.
	Lambda   float64 // Final multiplier, the next warm start.
	Norm1    float64 // ‖ x ‖₁ of the projection.
	Warm     bool    // Whether the warm start was consumed.
	Fallback bool    // Whether the warm solve was rejected and redone with armijo search.
	dual.Summary
}

// Fit projects y onto the ball and writes the projection into x.
// A non-nil warm holds the multiplier of a previous projection; it is used as λ₀
// when finite and non-negative.
//
// The unsafeguarded iteration is only known to converge monotonically from below
// the optimal multiplier, which a warm start from an unrelated vector may violate.
// Warm solves therefore run with a monotone watchdog and are redone once with the
// armijo search from a cold guess when the watchdog or the iteration cap fires.
func (p *Projector) Fit(y, x []float64, warm *float64) (*Result, error) {

	switch {
	case len(y) != p.n:
		return nil, fmt.Errorf("%w: y dimension %d not match %d", dual.ErrInvalidInput, len(y), p.n)
	case len(x) != p.n:
		return nil, fmt.Errorf("%w: x dimension %d not match %d", dual.ErrInvalidInput, len(x), p.n)
	case !finite(y):
		return nil, fmt.Errorf("%w: y contains NaN or Inf", dual.ErrInvalidInput)
	}

	// y inside the ball is its own projection, F(λ₀) may already pass the
	// tolerance at any small λ₀ > 0 so the loop cannot be trusted to reach λ = 0.
	if norm := floats.Norm(y, 1); norm <= p.radius {
		p.logger.Log(dual.LogLast, "The point is inside the ball.\n")
		copy(x, y)
		return &Result{OK: true, Norm1: norm, Summary: dual.Summary{Status: dual.Converged}}, nil
	}

	m := &merit{y: y, radius: p.radius}
	cold := Sampled{Src: p.src}

	var guess Guess = cold
	solver := p.fast
	used := false
	if warm != nil {
		w := Warm{Lambda: *warm, Cold: cold}
		if used = w.Usable(); used {
			solver = p.watched
		}
		guess = w
	}
	if p.globalized {
		solver = p.global
	}

	r, err := solver.Solve(m, m, m, guess.Initial(y))
	res := &Result{Warm: used}

	if err != nil && used && !p.globalized && errors.Is(err, dual.ErrNonConvergence) {
		p.logger.Log(dual.LogLast, "Warm start %g rejected (%v); restart with armijo search.\n", *warm, err)
		res.Fallback = true
		r, err = p.global.Solve(m, m, m, cold.Initial(y))
	}

	res.OK, res.Lambda, res.Summary = r.OK, r.Lambda, r.Summary
	if err != nil {
		return res, err
	}

	softThreshold(y, x, r.Lambda)
	res.Norm1 = floats.Norm(x, 1)
	return res, nil
}

// Project projects y onto the ball from a cold start and returns the multiplier.
func (p *Projector) Project(y, x []float64) (float64, error) {
	r, err := p.Fit(y, x, nil)
	if err != nil {
		return math.NaN(), err
	}
	return r.Lambda, nil
}

// ProjectL1Ball projects y onto the unit ℓ1 ball with the unsafeguarded newton
// iteration. A non-nil warm is the multiplier of a previous call.
// It returns the projection and its multiplier.
func ProjectL1Ball(y []float64, tol float64, warm *float64, src Sampler) ([]float64, float64, error) {
	return project(Problem{N: len(y), Tolerance: tol, Src: src}, y, warm)
}

// ProjectL1BallGlobalized projects y onto the unit ℓ1 ball with the armijo
// globalized newton iteration.
func ProjectL1BallGlobalized(y []float64, tol float64, src Sampler) ([]float64, float64, error) {
	return project(Problem{N: len(y), Tolerance: tol, Src: src, Globalized: true}, y, nil)
}

func project(p Problem, y []float64, warm *float64) ([]float64, float64, error) {
	proj, err := p.New(nil)
	if err != nil {
		return nil, math.NaN(), err
	}
	x := make([]float64, len(y))
	r, err := proj.Fit(y, x, warm)
	if err != nil {
		return nil, math.NaN(), err
	}
	return x, r.Lambda, nil
}

func finite(y []float64) bool {
	return !floats.HasNaN(y) && !math.IsInf(floats.Max(y), 1) && !math.IsInf(floats.Min(y), -1)
}
