// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dual

import (
	"errors"
	"fmt"
	"math"
)

// slack tolerated on the monotone check, in units of machine epsilon.
const monotoneSlack = 4

var epsilon = math.Nextafter(1, 2) - 1

// newtonDriver holds the state of one solve. It lives on the stack of Solve.
type newtonDriver struct {
	solver    *Solver
	merit     Merit
	direction Direction
	potential Potential

	lambda float64
	val    Value
	below  bool // an iterate with F < 0 was seen
	sum    Summary
}

// evaluate computes F(λₖ) and its auxiliary quantity.
func (d *newtonDriver) evaluate() (err error) {
	d.val, err = d.merit.Eval(d.lambda)
	d.sum.NumEval++
	if err == nil && math.IsNaN(d.val.F) {
		err = fmt.Errorf("%w: merit is NaN at λ=%g", ErrDomainViolation, d.lambda)
	}
	return
}

// nextStep computes the accepted step pₖdₖ from λₖ.
func (d *newtonDriver) nextStep() (step float64, status Status, err error) {

	dk, err := d.direction.Direction(d.sum.NumIter, d.lambda, d.val)
	if err != nil {
		return zero, classify(err), err
	}
	if math.IsNaN(dk) || math.IsInf(dk, 0) {
		err = fmt.Errorf("%w: non-finite newton direction at λ=%g", ErrDegenerateSubgradient, d.lambda)
		return zero, DegenerateStep, err
	}

	p := one
	if d.solver.search != nil {
		if p, err = d.lineSearch(dk); err != nil {
			return zero, LineSearchFailed, err
		}
	}
	return p * dk, Running, nil
}

// lineSearch finds the armijo step p along dₖ:
//
//	Θ(λₖ + pdₖ) ≤ Θ(λₖ) + pσFₖdₖ
func (d *newtonDriver) lineSearch(dk float64) (p float64, err error) {

	search, log := d.solver.search, &d.solver.logger
	pot, lambda := d.potential, d.lambda

	theta0 := pot.Theta(lambda)
	slope := search.Sigma * d.val.F * dk
	d.sum.NumTheta++

	p = one
	for back := 0; ; back++ {
		theta := pot.Theta(lambda + p*dk)
		d.sum.NumTheta++
		if log.enable(LogTrace) {
			log.log("  LINE SEARCH %3d    p= %10.3e    Θ= %12.5e    Θ₀+pσFd= %12.5e\n",
				back, p, theta, theta0+p*slope)
		}
		if !(theta > theta0+p*slope) {
			return
		}
		if back >= search.MaxBacktracks {
			err = fmt.Errorf("%w: armijo search exhausted %d backtracks at λ=%g",
				ErrNonConvergence, back, lambda)
			return
		}
		p *= search.Beta
		d.sum.NumBacktrack++
	}
}

// mainLoop is the main execution loop of the iteration process.
func (d *newtonDriver) mainLoop() (status Status, err error) {

	spec := d.solver
	log := &spec.logger

	d.printInit()

	for status = Running; status == Running; {

		if err = d.evaluate(); err != nil {
			status = classify(err)
			break
		}

		if spec.monitor != nil {
			spec.monitor(Iterate{K: d.sum.NumIter, Lambda: d.lambda, Value: d.val})
		}
		d.printIter()

		if math.Abs(d.val.F) < spec.tol {
			status = Converged
			break
		}
		if d.sum.NumIter >= spec.maxIter {
			status = ExceedMaxIter
			err = fmt.Errorf("%w: %d iterations, |F| = %.3e at λ=%g",
				ErrNonConvergence, d.sum.NumIter, math.Abs(d.val.F), d.lambda)
			break
		}

		var step float64
		if step, status, err = d.nextStep(); err != nil {
			break
		}

		next := d.lambda + step
		d.below = d.below || d.val.F < zero
		if spec.monotone && d.below && next < d.lambda-monotoneSlack*epsilon*math.Max(one, d.lambda) {
			status = NotMonotone
			err = fmt.Errorf("%w: iterates not monotone, λ decreased from %g to %g",
				ErrNonConvergence, d.lambda, next)
			break
		}

		if log.enable(LogTrace) {
			log.log("  STEP %12.5e    λₖ₊₁= %12.5e\n", step, next)
		}
		d.lambda = next
		d.sum.NumIter++
	}

	d.printExit(status, err)
	return
}

// classify maps an error of a merit or direction to the final status.
func classify(err error) Status {
	switch {
	case errors.Is(err, ErrDegenerateSubgradient):
		return DegenerateStep
	case errors.Is(err, ErrDomainViolation):
		return DomainFailure
	case errors.Is(err, ErrNonConvergence):
		return ExceedMaxIter
	default:
		return Abnormal
	}
}

func (d *newtonDriver) printInit() {
	log := &d.solver.logger
	if !log.enable(LogEval) {
		return
	}
	search := "full step"
	if s := d.solver.search; s != nil {
		search = fmt.Sprintf("armijo σ=%.1e β=%.2f", s.Sigma, s.Beta)
	}
	log.log("NEWTON    λ₀= %12.5e    tol= %8.2e    maxit= %d    %s\n",
		d.lambda, d.solver.tol, d.solver.maxIter, search)
	log.out("   k  nf  nθ          λ            F            G\n")
}

func (d *newtonDriver) printIter() {
	log := &d.solver.logger
	if !log.enable(LogEval) {
		return
	}
	log.log("At iterate %5d    λ= %12.5e    F= %12.5e\n", d.sum.NumIter, d.lambda, d.val.F)
	log.out("%4d %3d %3d %12.5e %12.5e %12.5e\n",
		d.sum.NumIter, d.sum.NumEval, d.sum.NumTheta, d.lambda, d.val.F, d.val.G)
}

func (d *newtonDriver) printExit(status Status, err error) {
	log := &d.solver.logger
	if !log.enable(LogLast) {
		return
	}
	log.log("\n   Tit   Tnf   Tnθ  Back        λ           F\n")
	log.log("%6d %5d %5d %5d %12.5e %11.4e\n",
		d.sum.NumIter, d.sum.NumEval, d.sum.NumTheta, d.sum.NumBacktrack, d.lambda, d.val.F)
	log.log("\n%s\n", status)
	if err != nil {
		log.log(" %v\n", err)
	}
}
