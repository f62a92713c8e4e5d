// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package templ

import (
	"gonum.org/v1/gonum/interp"
)

// CubicPad returns x extended by npre samples before and npost samples after.
// The padded regions are cubic Hermite segments that start from the edge
// value and slope of x and reach zero value with zero slope at the outer
// ends, so the padded waveform decays to zero without a discontinuity.
func CubicPad(x []float64, npre, npost int) []float64 {
	n := len(x)
	y := make([]float64, npre+n+npost)
	copy(y[npre:], x)
	if n == 0 {
		return y
	}
	if npre > 0 {
		sl := 0.0
		if n > 1 {
			sl = x[1] - x[0]
		}
		var pc interp.PiecewiseCubic
		pc.FitWithDerivatives([]float64{0, float64(npre)}, []float64{0, x[0]}, []float64{0, sl})
		for i := 0; i < npre; i++ {
			y[i] = pc.Predict(float64(i))
		}
	}
	if npost > 0 {
		sl := 0.0
		if n > 1 {
			sl = x[n-1] - x[n-2]
		}
		last := npre + n - 1
		end := last + npost
		var pc interp.PiecewiseCubic
		pc.FitWithDerivatives([]float64{float64(last), float64(end)}, []float64{x[n-1], 0}, []float64{sl, 0})
		for i := last + 1; i <= end; i++ {
			y[i] = pc.Predict(float64(i))
		}
	}
	return y
}

// EdgePad returns x extended by npre copies of its first value and npost
// copies of its last value
func EdgePad(x []float64, npre, npost int) []float64 {
	n := len(x)
	y := make([]float64, npre+n+npost)
	copy(y[npre:], x)
	if n == 0 {
		return y
	}
	for i := 0; i < npre; i++ {
		y[i] = x[0]
	}
	for i := npre + n; i < len(y); i++ {
		y[i] = x[n-1]
	}
	return y
}
