// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package convolve assembles recordings by convolving each cell's spike raster
with its template.

A Task describes one cell: its raster, its kernel (template plus optional
jitter variants), the jitter variant and amplitude gain of every spike, and
for drifting cells its trajectory.  A Convolver computes the contribution of
a task over a range of samples; Direct iterates over spikes and FFT
convolves the dense raster for stationary kernels.  The Assembler runs
tasks on a pool of worker threads and sums their contributions into the
recording in cell order, optionally in time chunks.
*/
package convolve

import (
	"fmt"
	"math"

	"github.com/emer/spikesynth/ampmod"
	"github.com/emer/spikesynth/drift"
	"github.com/emer/spikesynth/spikes"
	"github.com/emer/spikesynth/templ"
)

// Kernel is the waveform source of a cell: its template and, optionally,
// jittered variants of it
type Kernel struct {
	Tmp *templ.Template
	Jit *templ.JitterSet
}

// NEl returns the number of electrodes
func (kn *Kernel) NEl() int { return kn.Tmp.NEl() }

// NSamp returns the kernel length in samples
func (kn *Kernel) NSamp() int { return kn.Tmp.NSamp() }

// Wave returns the [electrodes * samples] waveform of given position and
// jitter variant.  A negative jitter, or no jitter set, gives the template itself.
func (kn *Kernel) Wave(pos, jit int) []float64 {
	if jit < 0 || kn.Jit == nil {
		return kn.Tmp.Pos(pos)
	}
	return kn.Jit.Variant(pos, jit)
}

// Task is the convolution work for one cell
type Task struct {
	Cell   int               `desc:"index of the cell in the recording"`
	Spikes spikes.Raster     `desc:"spike sample indexes"`
	Jitter []int             `desc:"jitter variant used by each spike -- nil uses the unjittered template"`
	Amp    *ampmod.Trace     `desc:"amplitude gain of each spike -- nil means unit gain"`
	Kern   Kernel            `desc:"waveform source"`
	Drift  *drift.Trajectory `desc:"drift trajectory -- nil for static cells, which use position 0"`
	Source bool              `desc:"compute only electrode El, as a single output row (ground-truth source signal)"`
	El     int               `desc:"electrode computed for a Source task"`
}

// NOut returns the number of output rows
func (tk *Task) NOut() int {
	if tk.Source {
		return 1
	}
	return tk.Kern.NEl()
}

// Stationary returns true if every spike uses the same unscaled kernel
func (tk *Task) Stationary() bool {
	return tk.Drift == nil && tk.Jitter == nil && tk.Amp == nil
}

// Validate checks the task against the recording electrode count
func (tk *Task) Validate(nel int) error {
	if tk.Kern.Tmp == nil {
		return fmt.Errorf("convolve: cell %d: no template", tk.Cell)
	}
	if tk.Kern.NEl() != nel {
		return &templ.DimensionMismatchError{What: fmt.Sprintf("cell %d template electrodes", tk.Cell), Got: tk.Kern.NEl(), Want: nel}
	}
	if tk.Source && (tk.El < 0 || tk.El >= nel) {
		return &templ.DimensionMismatchError{What: fmt.Sprintf("cell %d source electrode", tk.Cell), Got: tk.El, Want: nel - 1}
	}
	if tk.Jitter != nil {
		if len(tk.Jitter) != len(tk.Spikes) {
			return &templ.DimensionMismatchError{What: fmt.Sprintf("cell %d jitter picks", tk.Cell), Got: len(tk.Jitter), Want: len(tk.Spikes)}
		}
		if tk.Kern.Jit == nil {
			return fmt.Errorf("convolve: cell %d: jitter picks without a jitter set", tk.Cell)
		}
	}
	if tk.Amp != nil {
		if tk.Amp.Len() != len(tk.Spikes) {
			return &templ.DimensionMismatchError{What: fmt.Sprintf("cell %d amplitude trace", tk.Cell), Got: tk.Amp.Len(), Want: len(tk.Spikes)}
		}
		if tk.Amp.NEl != 1 && tk.Amp.NEl != nel {
			return &templ.DimensionMismatchError{What: fmt.Sprintf("cell %d amplitude electrodes", tk.Cell), Got: tk.Amp.NEl, Want: nel}
		}
	}
	return nil
}

// Context holds the recording-wide settings needed to resolve kernels
type Context struct {
	FS     float64 `desc:"sampling rate in Hz"`
	TStart float64 `desc:"time of sample 0 in seconds"`
	Step   float64 `desc:"drift kernel update step in seconds"`
	Interp bool    `desc:"blend bracketing spatial samples for drifting cells"`
}

// StepTime returns the start time of the drift step containing sample k
func (cx *Context) StepTime(k int) float64 {
	t := float64(k) / cx.FS
	if cx.Step <= 0 {
		return cx.TStart
	}
	return cx.TStart + math.Floor(t/cx.Step)*cx.Step
}

// SpikeWave returns the kernel of spike s at sample k.  Blended drift kernels
// are written into buf, which must hold electrodes * samples values.
func (tk *Task) SpikeWave(cx *Context, s, k int, buf []float64) []float64 {
	jit := -1
	if tk.Jitter != nil {
		jit = tk.Jitter[s]
	}
	if tk.Drift == nil {
		return tk.Kern.Wave(0, jit)
	}
	bl := tk.Drift.Kernel(cx.StepTime(k), cx.Interp)
	return tk.Kern.BlendWave(bl, jit, buf)
}

// BlendWave returns the waveform of blend bl for given jitter variant,
// writing into buf when two positions are combined
func (kn *Kernel) BlendWave(bl drift.Blend, jit int, buf []float64) []float64 {
	if bl.A == bl.B || bl.W == 0 {
		return kn.Wave(bl.A, jit)
	}
	wa := kn.Wave(bl.A, jit)
	wb := kn.Wave(bl.B, jit)
	for i := range buf {
		buf[i] = (1-bl.W)*wa[i] + bl.W*wb[i]
	}
	return buf
}
