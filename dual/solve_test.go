// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dual

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"
)

// F(λ) = λ² - 2 with root √2
var square = MeritFunc(func(lambda float64) (Value, error) {
	return Value{F: lambda*lambda - 2, G: 2 * lambda}, nil
})

var newtonStep = DirectionFunc(func(k int, lambda float64, v Value) (float64, error) {
	if v.G == zero {
		return zero, ErrDegenerateSubgradient
	}
	return -v.F / v.G, nil
})

// F(λ) = atan(λ): the plain newton iteration diverges from |λ₀| > 1.39
var arctan = MeritFunc(func(lambda float64) (Value, error) {
	return Value{F: math.Atan(lambda), G: one / (one + lambda*lambda)}, nil
})

var arctanTheta = PotentialFunc(func(lambda float64) float64 {
	return lambda*math.Atan(lambda) - half*math.Log(one+lambda*lambda)
})

func mustNew(t *testing.T, p Problem, log *Logger) *Solver {
	s, err := p.New(log)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestSolveSquareRoot(t *testing.T) {

	s := mustNew(t, Problem{Tolerance: 1e-12}, nil)
	r, err := s.Solve(square, newtonStep, nil, 1)

	switch {
	case err != nil:
		t.Fatal(err)
	case !r.OK || r.Status != Converged:
		t.Fatal("TestSolveSquareRoot: Not Converge")
	case math.Abs(r.Lambda-math.Sqrt2) > 1e-12:
		t.Fatal("TestSolveSquareRoot: Bad Root")
	case r.NumIter > 6:
		t.Fatal("TestSolveSquareRoot: Too Many Iterations")
	case r.NumEval != r.NumIter+1:
		t.Fatal("TestSolveSquareRoot: Unexpected Evaluations")
	case r.NumTheta != 0:
		t.Fatal("TestSolveSquareRoot: Unexpected Potential Evaluations")
	}
}

func TestSolveDivergeWithoutSearch(t *testing.T) {

	s := mustNew(t, Problem{Tolerance: 1e-8, MaxIterations: 5}, nil)
	r, err := s.Solve(arctan, newtonStep, nil, 2)

	switch {
	case !errors.Is(err, ErrNonConvergence):
		t.Fatalf("TestSolveDivergeWithoutSearch: unexpected error %v", err)
	case r.OK || r.Status != ExceedMaxIter:
		t.Fatal("TestSolveDivergeWithoutSearch: Unexpected Status")
	case r.NumIter != 5:
		t.Fatal("TestSolveDivergeWithoutSearch: Unexpected Iterations")
	case math.Abs(r.Lambda) < 2:
		t.Fatal("TestSolveDivergeWithoutSearch: Expect Divergence")
	}
}

func TestSolveArmijoGlobalize(t *testing.T) {

	s := mustNew(t, Problem{Tolerance: 1e-10, Search: &Armijo{}}, nil)
	if !s.Globalized() {
		t.Fatal("TestSolveArmijoGlobalize: Search Disabled")
	}
	r, err := s.Solve(arctan, newtonStep, arctanTheta, 2)

	switch {
	case err != nil:
		t.Fatal(err)
	case !r.OK:
		t.Fatal("TestSolveArmijoGlobalize: Not Converge")
	case math.Abs(r.Lambda) > 1e-8:
		t.Fatal("TestSolveArmijoGlobalize: Bad Root")
	case r.NumBacktrack == 0:
		t.Fatal("TestSolveArmijoGlobalize: Expect Backtracking")
	case r.NumTheta <= r.NumIter:
		t.Fatal("TestSolveArmijoGlobalize: Unexpected Potential Evaluations")
	}
}

func TestSolveArmijoExhausted(t *testing.T) {

	// an ascent direction never satisfies the sufficient decrease condition
	ascent := DirectionFunc(func(k int, lambda float64, v Value) (float64, error) {
		return v.F / v.G, nil
	})

	s := mustNew(t, Problem{Tolerance: 1e-10, Search: &Armijo{MaxBacktracks: 3}}, nil)
	r, err := s.Solve(arctan, ascent, arctanTheta, 2)

	switch {
	case !errors.Is(err, ErrNonConvergence):
		t.Fatalf("TestSolveArmijoExhausted: unexpected error %v", err)
	case r.Status != LineSearchFailed:
		t.Fatal("TestSolveArmijoExhausted: Unexpected Status")
	case r.NumBacktrack != 3:
		t.Fatal("TestSolveArmijoExhausted: Unexpected Backtracks")
	}
}

func TestSolveMonotoneWatchdog(t *testing.T) {

	linear := MeritFunc(func(lambda float64) (Value, error) {
		return Value{F: lambda - 1, G: 1}, nil
	})
	// doubled newton step overshoots the root from below, then falls back under it
	overshoot := DirectionFunc(func(k int, lambda float64, v Value) (float64, error) {
		return -2 * v.F / v.G, nil
	})

	var trace []float64
	p := Problem{
		Tolerance:     1e-6,
		MaxIterations: 10,
		Monotone:      true,
		Monitor:       func(it Iterate) { trace = append(trace, it.Lambda) },
	}
	r, err := mustNew(t, p, nil).Solve(linear, overshoot, nil, 0)

	switch {
	case !errors.Is(err, ErrNonConvergence):
		t.Fatalf("TestSolveMonotoneWatchdog: unexpected error %v", err)
	case r.Status != NotMonotone:
		t.Fatal("TestSolveMonotoneWatchdog: Unexpected Status")
	case len(trace) != 2 || trace[0] != 0 || trace[1] != 2:
		t.Fatalf("TestSolveMonotoneWatchdog: Unexpected Trace %v", trace)
	}

	// without the watchdog the iteration oscillates until the cap
	p.Monotone = false
	r, err = mustNew(t, p, nil).Solve(linear, overshoot, nil, 0)
	if !errors.Is(err, ErrNonConvergence) || r.Status != ExceedMaxIter {
		t.Fatal("TestSolveMonotoneWatchdog: Expect Iteration Limit")
	}
}

func TestSolveFailures(t *testing.T) {

	s := mustNew(t, Problem{Tolerance: 1e-8}, nil)

	// G = 0 at λ = 0
	r, err := s.Solve(square, newtonStep, nil, 0)
	switch {
	case !errors.Is(err, ErrDegenerateSubgradient):
		t.Fatalf("TestSolveFailures: unexpected error %v", err)
	case r.Status != DegenerateStep:
		t.Fatal("TestSolveFailures: Unexpected Status")
	}

	outside := MeritFunc(func(lambda float64) (Value, error) {
		return Value{}, ErrDomainViolation
	})
	r, err = s.Solve(outside, newtonStep, nil, 1)
	switch {
	case !errors.Is(err, ErrDomainViolation):
		t.Fatalf("TestSolveFailures: unexpected error %v", err)
	case r.Status != DomainFailure || r.NumEval != 1:
		t.Fatal("TestSolveFailures: Unexpected Status")
	}

	broken := MeritFunc(func(lambda float64) (Value, error) {
		return Value{}, errors.New("table lookup failed")
	})
	r, err = s.Solve(broken, newtonStep, nil, 1)
	switch {
	case err == nil || err.Error() != "table lookup failed":
		t.Fatalf("TestSolveFailures: unexpected error %v", err)
	case r.OK || r.Status != Abnormal:
		t.Fatalf("TestSolveFailures: Unexpected Status %s", r.Status)
	}

	infinite := DirectionFunc(func(k int, lambda float64, v Value) (float64, error) {
		return math.Inf(-1), nil
	})
	if _, err = s.Solve(square, infinite, nil, 1); !errors.Is(err, ErrDegenerateSubgradient) {
		t.Fatalf("TestSolveFailures: unexpected error %v", err)
	}

	if _, err = s.Solve(square, newtonStep, nil, math.NaN()); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("TestSolveFailures: unexpected error %v", err)
	}

	g := mustNew(t, Problem{Tolerance: 1e-8, Search: &Armijo{}}, nil)
	if _, err = g.Solve(square, newtonStep, nil, 1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("TestSolveFailures: unexpected error %v", err)
	}
}

func TestProblemCheck(t *testing.T) {

	bad := []Problem{
		{Tolerance: 0},
		{Tolerance: -1},
		{Tolerance: math.NaN()},
		{Tolerance: math.Inf(1)},
		{Tolerance: 1e-3, MaxIterations: -1},
		{Tolerance: 1e-3, Search: &Armijo{Sigma: 1.5}},
		{Tolerance: 1e-3, Search: &Armijo{Beta: -0.5}},
		{Tolerance: 1e-3, Search: &Armijo{MaxBacktracks: -2}},
	}
	for i, p := range bad {
		if _, err := p.New(nil); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("TestProblemCheck: case %d accepted", i)
		}
	}

	s := mustNew(t, Problem{Tolerance: 1e-3, Search: &Armijo{}}, nil)
	switch {
	case s.maxIter != DefaultMaxIterations:
		t.Fatal("TestProblemCheck: Bad Default Iterations")
	case s.search.Sigma != DefaultSigma || s.search.Beta != DefaultBeta:
		t.Fatal("TestProblemCheck: Bad Default Armijo")
	case s.search.MaxBacktracks != DefaultMaxBacktracks:
		t.Fatal("TestProblemCheck: Bad Default Backtracks")
	case s.Tolerance() != 1e-3:
		t.Fatal("TestProblemCheck: Bad Tolerance")
	}
}

func TestLogger(t *testing.T) {

	var msg, out bytes.Buffer
	log := &Logger{Level: LogTrace, Msg: &msg, Out: &out}

	s := mustNew(t, Problem{Tolerance: 1e-10, Search: &Armijo{}}, log)
	if _, err := s.Solve(arctan, newtonStep, arctanTheta, 2); err != nil {
		t.Fatal(err)
	}

	text := msg.String()
	switch {
	case !strings.Contains(text, "NEWTON"):
		t.Fatal("TestLogger: Missing Header")
	case !strings.Contains(text, "LINE SEARCH"):
		t.Fatal("TestLogger: Missing Line Search Trace")
	case !strings.Contains(text, Converged.String()):
		t.Fatal("TestLogger: Missing Exit Status")
	case out.Len() == 0:
		t.Fatal("TestLogger: Missing Output Table")
	}

	msg.Reset()
	quiet := mustNew(t, Problem{Tolerance: 1e-10}, &Logger{Level: LogNoop, Msg: &msg, Out: &out})
	if _, err := quiet.Solve(square, newtonStep, nil, 1); err != nil || msg.Len() != 0 {
		t.Fatal("TestLogger: Unexpected Output")
	}
}
