// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package l1ball

import (
	"fmt"
	"math"

	"github.com/curioloop/projector/dual"
)

const (
	zero = 0.0
	one  = 1.0
	half = 0.5
)

// merit is the derivative of the dual potential of the projection onto the ball
// of radius r:
//
//	F(λ) = r - ∑ 𝚖𝚊𝚡(|yᵢ| - λ, 0)
//	g(λ) = |{ i : |yᵢ| > λ }|
//
// g is a Bouligand subgradient of F at λ.
type merit struct {
	y      []float64
	radius float64
}

// Eval computes (F, g). When λ = 0 and F(0) > 0 the point lies inside the ball and
// the optimal multiplier sits on the boundary λ = 0, so F is reported as exactly 0.
func (m *merit) Eval(lambda float64) (dual.Value, error) {
	sum, count := zero, 0
	for _, v := range m.y {
		if ab := math.Abs(v); ab > lambda {
			sum += ab - lambda
			count++
		}
	}
	f := m.radius - sum
	if lambda == zero && f > zero {
		f = zero
	}
	return dual.Value{F: f, G: float64(count)}, nil
}

// Theta is the potential whose derivative is F:
//
//	Θ(λ) = λ(r - ∑ 𝚖𝚊𝚡(|yᵢ| - λ, 0)) - ½∑ (yᵢ - 𝚜𝚒𝚐𝚗(yᵢ)𝚖𝚊𝚡(|yᵢ| - λ, 0))²
func (m *merit) Theta(lambda float64) float64 {
	sum, sqr := zero, zero
	for _, v := range m.y {
		s := math.Max(math.Abs(v)-lambda, zero)
		r := v - math.Copysign(s, v)
		sum += s
		sqr += r * r
	}
	return lambda*(m.radius-sum) - half*sqr
}

// Direction is the projected newton direction dₖ = 𝚖𝚊𝚡(-λₖ, -F/g) keeping λ ≥ 0.
//
// g vanishes only when λₖ ≥ 𝚖𝚊𝚡|yᵢ|, where F = r > 0 and -F/g tends to -∞:
// the direction is then the clamped limit -λₖ.
func (m *merit) Direction(k int, lambda float64, v dual.Value) (float64, error) {
	if v.G == zero {
		if v.F > zero {
			return -lambda, nil
		}
		return zero, fmt.Errorf("%w: no coordinate exceeds λ=%g while F=%g",
			dual.ErrDegenerateSubgradient, lambda, v.F)
	}
	return math.Max(-lambda, -v.F/v.G), nil
}
