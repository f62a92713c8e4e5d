// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package templ

import (
	"math"
)

// KaiserBeta is the shape parameter of the Kaiser window used for the
// anti-aliasing filter in ResamplePoly
const KaiserBeta = 5.0

// RatioInts returns the reduced integer up / down factors converting rate
// from into rate to.  Rates are rounded to the nearest Hz.
func RatioInts(from, to float64) (up, down int) {
	up = int(math.Round(to))
	down = int(math.Round(from))
	g := gcd(up, down)
	return up / g, down / g
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	if a == 0 {
		return 1
	}
	return a
}

// ResamplePoly resamples x by the rational factor up / down using a polyphase
// FIR filter: zero-insertion upsampling, a Kaiser-windowed sinc low-pass at
// the lower of the two Nyquist frequencies, and decimation.  The filter
// delay is compensated so the output is aligned with the input.
// Output length is ceil(len(x) * up / down).  If up == down (after
// reduction) a copy of x is returned.
func ResamplePoly(x []float64, up, down int) []float64 {
	g := gcd(up, down)
	up /= g
	down /= g
	if up == down {
		return append([]float64(nil), x...)
	}
	h, hl := LowpassFIR(up, down)
	nin := len(x)
	nout := (nin*up + down - 1) / down
	y := make([]float64, nout)
	for m := range y {
		c := m*down + hl
		nmin := (c - 2*hl + up - 1) / up
		if c-2*hl < 0 {
			nmin = 0
		}
		nmax := c / up
		if nmax > nin-1 {
			nmax = nin - 1
		}
		sum := 0.0
		for n := nmin; n <= nmax; n++ {
			sum += x[n] * h[c-n*up]
		}
		y[m] = sum
	}
	return y
}

// LowpassFIR returns the polyphase anti-aliasing filter for resampling by
// up / down, and its half length.  The filter has 2*half+1 taps with half =
// 10 * max(up, down), cutoff at 1 / max(up, down) of the upsampled Nyquist
// rate, unit DC gain, scaled by up to preserve amplitude across zero insertion.
func LowpassFIR(up, down int) ([]float64, int) {
	mx := up
	if down > mx {
		mx = down
	}
	fc := 1 / float64(mx)
	hl := 10 * mx
	n := 2*hl + 1
	h := make([]float64, n)
	w := KaiserWindow(n, KaiserBeta)
	sum := 0.0
	for k := range h {
		h[k] = fc * sinc(fc*float64(k-hl)) * w[k]
		sum += h[k]
	}
	scl := float64(up) / sum
	for k := range h {
		h[k] *= scl
	}
	return h, hl
}

// KaiserWindow returns the n-point Kaiser window with shape parameter beta
func KaiserWindow(n int, beta float64) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	den := besselI0(beta)
	for k := range w {
		r := 2*float64(k)/float64(n-1) - 1
		w[k] = besselI0(beta*math.Sqrt(1-r*r)) / den
	}
	return w
}

// sinc is the normalized sinc function sin(pi x) / (pi x)
func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	px := math.Pi * x
	return math.Sin(px) / px
}

// besselI0 is the zeroth order modified Bessel function of the first kind,
// by power series
func besselI0(x float64) float64 {
	sum := 1.0
	term := 1.0
	hx := 0.5 * x
	for k := 1; k < 200; k++ {
		term *= (hx / float64(k)) * (hx / float64(k))
		sum += term
		if term < 1e-17*sum {
			break
		}
	}
	return sum
}
