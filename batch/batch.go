// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package batch runs independent projections concurrently.
//
// Projections share no mutable state, so a batch is split over workers that each
// own a projector (and therefore a random source) while writing into disjoint
// caller-owned output buffers.
package batch

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/curioloop/projector/dual"
)

// Projector writes the projection of y into x and returns the multiplier.
type Projector interface {
	Project(y, x []float64) (float64, error)
}

// ProjectorFunc adapts an ordinary function to Projector.
type ProjectorFunc func(y, x []float64) (float64, error)

func (f ProjectorFunc) Project(y, x []float64) (float64, error) { return f(y, x) }

// Factory creates the projector used by one worker. It is called once per worker,
// from that worker's goroutine.
type Factory func(worker int) (Projector, error)

// Run projects ys[i] into xs[i] for every i using up to workers goroutines and
// returns the multipliers. Zero workers selects runtime.GOMAXPROCS(0).
//
// The first failure cancels the remaining items; the returned error wraps it with
// the index of the failing vector.
func Run(ctx context.Context, ys, xs [][]float64, workers int, factory Factory) ([]float64, error) {

	var err error
	switch {
	case len(ys) != len(xs):
		err = fmt.Errorf("input count %d not match output count %d", len(ys), len(xs))
	case workers < 0:
		err = errors.New("worker count must not less than 0")
	case factory == nil:
		err = errors.New("projector factory is required")
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dual.ErrInvalidInput, err)
	}

	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, len(ys))

	lambdas := make([]float64, len(ys))
	if len(ys) == 0 {
		return lambdas, nil
	}

	g, gctx := errgroup.WithContext(ctx)

	items := make(chan int)
	g.Go(func() error {
		defer close(items)
		for i := range ys {
			select {
			case items <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for w := range workers {
		g.Go(func() error {
			proj, err := factory(w)
			if err != nil {
				return fmt.Errorf("worker %d: %w", w, err)
			}
			for i := range items {
				if err := gctx.Err(); err != nil {
					return err
				}
				if lambdas[i], err = proj.Project(ys[i], xs[i]); err != nil {
					return fmt.Errorf("vector %d: %w", i, err)
				}
			}
			return nil
		})
	}

	if err = g.Wait(); err != nil {
		return nil, err
	}
	return lambdas, nil
}
