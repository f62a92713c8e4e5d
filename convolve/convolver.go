// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package convolve

import (
	"gonum.org/v1/gonum/dsp/fourier"
)

// Convolver computes the contribution of a task over samples [from, to),
// from only the spikes in that range, in "same" mode: a spike at sample k
// with a kernel of length L writes samples [k - (L-1)/2, k - (L-1)/2 + L).
// out is [NOut * (to - from)], row major by output electrode, and is
// accumulated into (not cleared).
type Convolver interface {
	Conv(cx *Context, tk *Task, from, to int, out []float64)
}

// Direct accumulates the kernel of every spike into the output
type Direct struct {
}

func (cv *Direct) Conv(cx *Context, tk *Task, from, to int, out []float64) {
	n := to - from
	nel := tk.Kern.NEl()
	ln := tk.Kern.NSamp()
	off := (ln - 1) / 2
	var buf []float64
	if tk.Drift != nil && cx.Interp {
		buf = make([]float64, nel*ln)
	}
	st, ed := tk.Spikes.Range(from, to)
	for s := st; s < ed; s++ {
		k := tk.Spikes[s]
		wv := tk.SpikeWave(cx, s, k, buf)
		i0 := k - off - from
		j0, j1 := 0, ln
		if i0 < 0 {
			j0 = -i0
		}
		if i0+ln > n {
			j1 = n - i0
		}
		if tk.Source {
			addRow(out[:n], wv[tk.El*ln:(tk.El+1)*ln], tk.Amp.Gain(s, tk.El), i0, j0, j1)
			continue
		}
		for e := 0; e < nel; e++ {
			addRow(out[e*n:(e+1)*n], wv[e*ln:(e+1)*ln], tk.Amp.Gain(s, e), i0, j0, j1)
		}
	}
}

// addRow adds g * w[j0:j1] into row starting at i0 + j0
func addRow(row, w []float64, g float64, i0, j0, j1 int) {
	for j := j0; j < j1; j++ {
		row[i0+j] += g * w[j]
	}
}

// FFT convolves the dense raster with the kernel in the frequency domain.
// Only stationary tasks qualify; all others are passed to Direct.
type FFT struct {
	Direct Direct
}

func (cv *FFT) Conv(cx *Context, tk *Task, from, to int, out []float64) {
	if !tk.Stationary() {
		cv.Direct.Conv(cx, tk, from, to, out)
		return
	}
	n := to - from
	st, ed := tk.Spikes.Range(from, to)
	if st == ed {
		return
	}
	ln := tk.Kern.NSamp()
	off := (ln - 1) / 2
	nfft := 1
	for nfft < n+ln-1 {
		nfft <<= 1
	}
	ft := fourier.NewFFT(nfft)
	x := make([]float64, nfft)
	for s := st; s < ed; s++ {
		x[tk.Spikes[s]-from] += 1
	}
	xc := ft.Coefficients(nil, x)
	wv := tk.Kern.Wave(0, -1)
	h := make([]float64, nfft)
	hc := make([]complex128, len(xc))
	y := make([]float64, nfft)
	conv := func(e int, row []float64) {
		for i := range h {
			h[i] = 0
		}
		copy(h, wv[e*ln:(e+1)*ln])
		ft.Coefficients(hc, h)
		for i := range hc {
			hc[i] *= xc[i]
		}
		ft.Sequence(y, hc)
		norm := 1 / float64(nfft)
		for i := 0; i < n; i++ {
			row[i] += y[i+off] * norm
		}
	}
	if tk.Source {
		conv(tk.El, out[:n])
		return
	}
	for e := 0; e < tk.Kern.NEl(); e++ {
		conv(e, out[e*n:(e+1)*n])
	}
}
