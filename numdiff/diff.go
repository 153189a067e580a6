// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package numdiff estimates derivatives of scalar functions of the dual multiplier
// by finite differences, keeping every evaluation inside a closed interval.
package numdiff

import (
	"errors"
	"math"
)

var sqrtEps = math.Sqrt(math.Nextafter(1, 2) - 1)
var cubeEps = math.Pow(math.Nextafter(1, 2)-1, float64(1)/3)

type Method int

const (
	// Forward use the first order accuracy forward difference.
	Forward Method = iota
	// Central use central difference in interior points and the second order accuracy
	// forward or backward difference near the boundary.
	Central
)

// Bound is the closed interval [lo, hi] the object may be evaluated on.
// NaN stands for an infinite end.
type Bound [2]float64

// ApproxSpec represents a finite difference estimate of f′(x₀).
//
// # Reference:
//
//   - https://en.wikipedia.org/wiki/Finite_difference
//   - https://github.com/scipy/scipy/blob/main/scipy/optimize/_numdiff.py
type ApproxSpec struct {
	// Function of which to estimate the derivative.
	Object func(x float64) float64
	// Finite difference method to use.
	Method Method
	// Interval the object is defined on (optional).
	Bound *Bound
	// Relative step size used to compute absolute step size.
	// The default absolute step size is h = eps * sign(x0) * max(1, abs(x0)),
	// otherwise h = RelStep * sign(x0) * abs(x0) when RelStep is provided.
	RelStep float64
	// Absolute step size to use, possibly adjusted to fit into the bound.
	// For Central method the sign of AbsStep is ignored.
	AbsStep float64
	// Don't check if x0 is out of bound.
	NotChkBnd bool
}

// Check the parameters.
func (as *ApproxSpec) Check(x0 float64) (err error) {

	switch {
	case as.Method != Forward && as.Method != Central:
		err = errors.New("unknown method")
	case as.Object == nil:
		err = errors.New("object function is required")
	case math.IsNaN(x0) || math.IsInf(x0, 0):
		err = errors.New("x0 must be finite")
	}
	if err != nil || as.Bound == nil {
		return
	}

	lb, ub := as.bound()
	switch {
	case lb > ub:
		err = errors.New("invalid bound range")
	case !as.NotChkBnd && (x0 < lb || x0 > ub):
		err = errors.New("x0 violates bound constraints")
	}
	return
}

// Diff calculate approximation of f′(x0) by finite differences.
func (as *ApproxSpec) Diff(x0 float64) (float64, error) {

	if err := as.Check(x0); err != nil {
		return math.NaN(), err
	}

	h := as.absoluteStep(x0)
	h, oneSide := as.adjustToBound(x0, h)

	fun := as.Object
	f0 := fun(x0)
	switch {
	case as.Method == Forward:
		return (fun(x0+h) - f0) / h, nil
	case oneSide:
		return (4*fun(x0+h) - 3*f0 - fun(x0+2*h)) / (2 * h), nil
	default:
		return (fun(x0+h) - fun(x0-h)) / (2 * h), nil
	}
}

func (as *ApproxSpec) bound() (lb, ub float64) {
	lb, ub = math.Inf(-1), math.Inf(1)
	if b := as.Bound; b != nil {
		if !math.IsNaN(b[0]) {
			lb = b[0]
		}
		if !math.IsNaN(b[1]) {
			ub = b[1]
		}
	}
	return
}

func (as *ApproxSpec) absoluteStep(x0 float64) float64 {

	var eps float64
	switch as.Method {
	case Forward:
		eps = sqrtEps
	case Central:
		eps = cubeEps
	default:
		panic("unknown method")
	}

	if as.AbsStep == 0 && as.RelStep == 0 {
		return math.Copysign(eps, x0) * math.Max(1.0, math.Abs(x0))
	}

	s := as.AbsStep
	if s == 0 {
		s = math.Copysign(as.RelStep, x0) * math.Abs(x0)
	}
	if (x0+s)-x0 == 0 {
		s = math.Copysign(eps, x0) * math.Max(1.0, math.Abs(x0))
	}
	return s
}

// adjustToBound shrinks or flips the step h so that every evaluation stays in the bound.
// It reports whether the central method must fall back to a one-sided difference.
func (as *ApproxSpec) adjustToBound(x0, h float64) (float64, bool) {

	if as.Method == Central {
		h = math.Abs(h)
	}

	lb, ub := as.bound()
	if math.IsInf(lb, -1) && math.IsInf(ub, 1) {
		return h, false
	}
	ld, ud := x0-lb, ub-x0

	if as.Method == Forward {
		x := x0 + h
		violated := x < lb || x > ub
		fitting := math.Abs(h) < math.Max(ld, ud)
		if violated && fitting {
			h = -h
		} else if !fitting {
			if ud >= ld {
				h = ud
			} else {
				h = -ld
			}
		}
		return h, false
	}

	oneSide := false
	central := ld >= h && ud >= h
	if !central {
		if ud >= ld {
			h = math.Min(h, 0.5*ud)
		} else {
			h = -math.Min(h, 0.5*ld)
		}
		oneSide = true
	}
	minDist := math.Min(ud, ld)
	if !central && math.Abs(h) <= minDist {
		h = minDist
		oneSide = false
	}
	return h, oneSide
}
