// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dual

import (
	"errors"
	"fmt"
)

// Every projector in this module reports failures through these sentinels.
// Callers match them with errors.Is; context is attached with fmt.Errorf("...: %w", ErrX).
var (
	// ErrInvalidInput is returned for an empty vector, a non-positive tolerance
	// or non-finite problem data.
	ErrInvalidInput = errors.New("dual: invalid input")

	// ErrDegenerateSubgradient is returned when a newton step would divide by a
	// zero generalized derivative.
	ErrDegenerateSubgradient = errors.New("dual: degenerate subgradient")

	// ErrDomainViolation is returned when a merit function is evaluated outside
	// its domain. Safeguarded solvers never trigger it on valid input.
	ErrDomainViolation = errors.New("dual: domain violation")

	// ErrNonConvergence is returned when the tolerance is not met within the
	// iteration cap, or the iterates stop behaving as the theory predicts.
	ErrNonConvergence = errors.New("dual: no convergence")
)

func wrapInvalid(err error) error {
	return fmt.Errorf("%w: %v", ErrInvalidInput, err)
}
