// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logbarrier

import (
	"fmt"
	"math"

	"github.com/curioloop/projector/dual"
)

const (
	zero = 0.0
	one  = 1.0
	two  = 2.0
	four = 4.0
)

// merit is the derivative of the dual potential of the projection of (y, α) onto
// the epigraph of f(x) = -∑ 𝚕𝚘𝚐 xᵢ:
//
//	F(λ) = λ + α + ∑ 𝚕𝚘𝚐 xᵢ(λ)
//	F′(λ) = 1 + 2∑ 1/(yᵢ√(yᵢ²+4λ) + yᵢ² + 4λ)
//
// where xᵢ(λ) = (yᵢ + √(yᵢ²+4λ))/2 is the positive root of x² - yᵢx - λ = 0.
// F is smooth and increasing on its domain, so F′ is a true derivative.
type merit struct {
	y     []float64
	alpha float64
}

// Eval computes (F, F′). Every coordinate is checked for yᵢ² + 4λ ≥ 0 and xᵢ(λ) > 0.
func (m *merit) Eval(lambda float64) (dual.Value, error) {
	sum, curv := zero, zero
	for i, v := range m.y {
		disc := v*v + four*lambda
		if disc < zero {
			return dual.Value{}, fmt.Errorf("%w: y[%d]²+4λ = %g at λ=%g",
				dual.ErrDomainViolation, i, disc, lambda)
		}
		root := math.Sqrt(disc)
		xi := positiveRoot(v, root, lambda)
		if !(xi > zero) {
			return dual.Value{}, fmt.Errorf("%w: x[%d] = %g at λ=%g",
				dual.ErrDomainViolation, i, xi, lambda)
		}
		sum += math.Log(xi)
		// yᵢ√(yᵢ²+4λ) + yᵢ² + 4λ = 2xᵢ√(yᵢ²+4λ)
		curv += one / (two * xi * root)
	}
	return dual.Value{F: lambda + m.alpha + sum, G: one + two*curv}, nil
}

// Direction keeps every iterate strictly inside the domain λ > 0:
//
//	dₖ = -F/F′                   if F(λₖ) < 0
//	dₖ = 𝚖𝚊𝚡(-λₖ + εₖ, -F/F′)    otherwise
//
// with the vanishing margin εₖ = 2⁻⁽ᵏ⁺¹⁾.
func (m *merit) Direction(k int, lambda float64, v dual.Value) (float64, error) {
	if !(v.G > zero) {
		return zero, fmt.Errorf("%w: F′ = %g at λ=%g", dual.ErrDegenerateSubgradient, v.G, lambda)
	}
	d := -v.F / v.G
	if v.F < zero {
		return d, nil
	}
	eps := math.Ldexp(one, -(k + 1))
	return math.Max(-lambda+eps, d), nil
}

// positiveRoot evaluates (y + √(y²+4λ))/2 given root = √(y²+4λ),
// avoiding the cancellation of y + root when y < 0.
func positiveRoot(y, root, lambda float64) float64 {
	if y >= zero {
		return (y + root) / two
	}
	return two * lambda / (root - y)
}
