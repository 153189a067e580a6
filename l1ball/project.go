// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package l1ball

// softThreshold writes the projection for the multiplier λ into x:
//
//	xᵢ = 𝚜𝚒𝚐𝚗(yᵢ)𝚖𝚊𝚡(|yᵢ| - λ, 0)
func softThreshold(y, x []float64, lambda float64) {
	if len(x) != len(y) {
		panic("bound check error")
	}
	for i, v := range y {
		switch {
		case v-lambda > zero:
			x[i] = v - lambda
		case v+lambda < zero:
			x[i] = v + lambda
		default:
			x[i] = zero
		}
	}
}
