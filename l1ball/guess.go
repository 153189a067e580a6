// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package l1ball

import "math"

// Sampler is the source of randomness for the initial guess.
// *rand.Rand from math/rand/v2 satisfies it. A Sampler is not required to be
// thread-safe, so each goroutine needs its own.
type Sampler interface {
	IntN(n int) int
}

// Guess produces the initial dual variable λ₀ ≥ 0 for the vector y.
type Guess interface {
	Initial(y []float64) float64
}

// Sampled draws ⌈√n·𝚕𝚗 n⌉ coordinates of y with replacement and takes the
// largest absolute value. It usually lands below the optimal multiplier, where the
// unsafeguarded newton iteration increases monotonically.
type Sampled struct {
	Src Sampler
}

// SampleCount returns the number of coordinates drawn by Sampled for dimension n.
func SampleCount(n int) int {
	if n <= 1 {
		return 1
	}
	c := math.Ceil(math.Sqrt(float64(n)) * math.Log(float64(n)))
	return max(1, int(c))
}

func (s Sampled) Initial(y []float64) float64 {
	n, mx := len(y), zero
	for range SampleCount(n) {
		if v := math.Abs(y[s.Src.IntN(n)]); v > mx {
			mx = v
		}
	}
	return mx
}

// Warm reuses the multiplier of a previous projection. Negative or non-finite
// values mean "no previous solve" and defer to Cold.
type Warm struct {
	Lambda float64
	Cold   Guess
}

// Usable reports whether Lambda is consumed instead of the cold guess.
func (w Warm) Usable() bool {
	return w.Lambda >= zero && !math.IsInf(w.Lambda, 1)
}

func (w Warm) Initial(y []float64) float64 {
	if w.Usable() {
		return w.Lambda
	}
	return w.Cold.Initial(y)
}
