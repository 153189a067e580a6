// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package logbarrier computes the euclidean projection of (y, α) ∈ ℝⁿ⁺¹ onto the
// epigraph of the barrier f(x) = -∑ 𝚕𝚘𝚐 xᵢ
//
//	𝚖𝚒𝚗 ½‖ x - y ‖₂² + ½(t - α)²  subject to  -∑ 𝚕𝚘𝚐 xᵢ ≤ t
//
// The optimality conditions give xᵢ = (yᵢ + √(yᵢ²+4λ))/2 and t = α + λ, where the
// multiplier λ is the root of F(λ) = λ + α + ∑ 𝚕𝚘𝚐 xᵢ(λ), found by a newton
// iteration that never leaves the domain λ > 0.
package logbarrier

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/curioloop/projector/dual"
)

// Problem specifies the projection onto the epigraph.
type Problem struct {
	N             int     // The problem dimension
	Tolerance     float64 // The iteration stop when |F(λₖ)| < Tolerance
	MaxIterations int     // Zero selects dual.DefaultMaxIterations
	// Monitor is called with every evaluated iterate (optional).
	Monitor func(dual.Iterate)
}

// New creates a projector for given problem.
func (p *Problem) New(logger *dual.Logger) (projector *Projector, err error) {

	if p.N <= 0 {
		return nil, fmt.Errorf("%w: problem dimension must greater than 0", dual.ErrInvalidInput)
	}

	spec := dual.Problem{
		Tolerance:     p.Tolerance,
		MaxIterations: p.MaxIterations,
		Monitor:       p.Monitor,
	}
	solver, err := spec.New(logger)
	if err != nil {
		return nil, err
	}

	projector = &Projector{
		n:      p.N,
		guess:  math.Sqrt(float64(p.N)),
		solver: solver,
		logger: logger,
	}
	return
}

// Projector projects points of a fixed dimension onto the epigraph.
// It holds no mutable state and may be shared by concurrent goroutines.
type Projector struct {
	n      int
	guess  float64 // λ₀ = √n
	solver *dual.Solver
	logger *dual.Logger
}

// Result contains the final result of the projection.
type Result struct {
	OK       bool    // Whether the iteration was converged.
	Lambda   float64 // Final multiplier.
	T        float64 // Epigraph coordinate t = α + λ of the projection.
	Interior bool    // Whether (y, α) already belonged to the epigraph.
	dual.Summary
}

// Fit projects (y, α) onto the epigraph and writes the x part of the projection into x.
func (p *Projector) Fit(y []float64, alpha float64, x []float64) (*Result, error) {

	switch {
	case len(y) != p.n:
		return nil, fmt.Errorf("%w: y dimension %d not match %d", dual.ErrInvalidInput, len(y), p.n)
	case len(x) != p.n:
		return nil, fmt.Errorf("%w: x dimension %d not match %d", dual.ErrInvalidInput, len(x), p.n)
	case !finite(y) || math.IsNaN(alpha) || math.IsInf(alpha, 0):
		return nil, fmt.Errorf("%w: y or α contains NaN or Inf", dual.ErrInvalidInput)
	}

	if interior(y, alpha) {
		p.logger.Log(dual.LogLast, "The point is inside the epigraph.\n")
		copy(x, y)
		return &Result{OK: true, T: alpha, Interior: true, Summary: dual.Summary{Status: dual.Converged}}, nil
	}

	m := &merit{y: y, alpha: alpha}
	r, err := p.solver.Solve(m, m, nil, p.guess)
	res := &Result{OK: r.OK, Lambda: r.Lambda, T: alpha + r.Lambda, Summary: r.Summary}
	if err != nil {
		return res, err
	}

	if err = reconstruct(y, x, r.Lambda); err != nil {
		res.OK = false
		return res, err
	}
	return res, nil
}

// ProjectLogBarrierEpigraph projects (y, α) onto the epigraph of -∑ 𝚕𝚘𝚐 xᵢ.
// It returns the x part of the projection and the multiplier λ; the t part is α + λ.
func ProjectLogBarrierEpigraph(y []float64, alpha, tol float64) ([]float64, float64, error) {
	p := Problem{N: len(y), Tolerance: tol}
	proj, err := p.New(nil)
	if err != nil {
		return nil, math.NaN(), err
	}
	x := make([]float64, len(y))
	r, err := proj.Fit(y, alpha, x)
	if err != nil {
		return nil, math.NaN(), err
	}
	return x, r.Lambda, nil
}

// reconstruct writes xᵢ = (yᵢ + √(yᵢ²+4λ))/2 into x.
func reconstruct(y, x []float64, lambda float64) error {
	if len(x) != len(y) {
		panic("bound check error")
	}
	for i, v := range y {
		disc := v*v + four*lambda
		if disc < zero {
			return fmt.Errorf("%w: y[%d]²+4λ = %g at λ=%g", dual.ErrDomainViolation, i, disc, lambda)
		}
		if x[i] = positiveRoot(v, math.Sqrt(disc), lambda); !(x[i] > zero) {
			return fmt.Errorf("%w: x[%d] = %g at λ=%g", dual.ErrDomainViolation, i, x[i], lambda)
		}
	}
	return nil
}

// interior reports whether yᵢ > 0 and -∑ 𝚕𝚘𝚐 yᵢ ≤ α, in which case the projection
// is (y, α) itself with λ = 0.
func interior(y []float64, alpha float64) bool {
	if floats.Min(y) <= zero {
		return false
	}
	sum := alpha
	for _, v := range y {
		sum += math.Log(v)
	}
	return sum >= zero
}

func finite(y []float64) bool {
	return !floats.HasNaN(y) && !math.IsInf(floats.Max(y), 1) && !math.IsInf(floats.Min(y), -1)
}
