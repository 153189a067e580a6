// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dual

const (
	zero = 0.0
	one  = 1.0
	half = 0.5
)

const (
	// DefaultMaxIterations caps the Newton loop when Problem.MaxIterations is zero.
	DefaultMaxIterations = 1000
	// DefaultSigma is the sufficient decrease factor of the armijo search.
	DefaultSigma = 1e-4
	// DefaultBeta is the step shrink factor of the armijo search.
	DefaultBeta = 0.5
	// DefaultMaxBacktracks caps the step halvings within one armijo search.
	DefaultMaxBacktracks = 60
)

// Status reports why the Newton loop stopped.
type Status int

const (
	// Running the loop has not terminated yet.
	Running Status = iota
	// Converged |F(λₖ)| < tolerance.
	Converged
	// ExceedMaxIter more than max iterations without meeting the tolerance.
	ExceedMaxIter
	// NotMonotone an iterate decreased after the sequence reached the region below the root.
	NotMonotone
	// LineSearchFailed armijo search exhausted its backtracks.
	LineSearchFailed
	// DegenerateStep the newton direction required a division by a zero subgradient.
	DegenerateStep
	// DomainFailure the merit function was evaluated outside its domain.
	DomainFailure
	// Abnormal the merit or direction failed with an error of its own.
	Abnormal
)

func (s Status) String() string {
	switch s {
	case Running:
		return "RUNNING"
	case Converged:
		return "CONVERGENCE: |F| < TOL"
	case ExceedMaxIter:
		return "STOP: TOTAL NO. of ITERATIONS REACHED LIMIT"
	case NotMonotone:
		return "STOP: ITERATES NOT MONOTONE BELOW THE ROOT"
	case LineSearchFailed:
		return "ABNORMAL_TERMINATION_IN_LNSRCH"
	case DegenerateStep:
		return "ABNORMAL_TERMINATION: ZERO SUBGRADIENT"
	case DomainFailure:
		return "ABNORMAL_TERMINATION: MERIT OUTSIDE DOMAIN"
	case Abnormal:
		return "ABNORMAL_TERMINATION: MERIT ERROR"
	default:
		return "UNKNOWN STATUS"
	}
}
