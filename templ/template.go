// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package templ holds extracellular action potential templates and the
operations that condition them for convolution: polyphase resampling to the
recording rate, cubic edge padding that decays smoothly to zero, and the
generation of sub-sample jittered variants.

A Template stores its waveforms as an etensor.Float64 of shape
[positions, electrodes, samples].  Static cells have one position; drifting
cells carry a sequence of spatial samples along their drift path.

The package also computes per-electrode mixing features and the set of
spatially overlapping template pairs.
*/
package templ

import (
	"fmt"

	"github.com/emer/etable/etensor"
	"github.com/goki/mat32"
)

// Template is the multi-electrode extracellular waveform of one cell
type Template struct {
	Waves     *etensor.Float64 `desc:"waveforms, shape [positions, electrodes, samples]"`
	Locs      []mat32.Vec3     `desc:"soma location in um for each position"`
	Rot       mat32.Vec3       `desc:"rotation of the cell model in degrees around x, y, z (metadata only)"`
	Cat       Category         `desc:"morphological category"`
	Class     Class            `desc:"excitatory / inhibitory class"`
	Amp       float64          `desc:"peak amplitude: magnitude of the most negative sample at the first position"`
	FS        float64          `desc:"sampling rate of Waves in Hz"`
	Resampled bool             `desc:"true if the waveforms were resampled during conditioning"`
}

// NewTemplate returns a zero template with given dimensions
func NewTemplate(npos, nel, nsamp int, fs float64) *Template {
	tp := &Template{FS: fs}
	tp.Waves = etensor.NewFloat64([]int{npos, nel, nsamp}, nil, []string{"Pos", "El", "Samp"})
	tp.Locs = make([]mat32.Vec3, npos)
	return tp
}

// NPos returns the number of spatial positions
func (tp *Template) NPos() int { return tp.Waves.Dim(0) }

// NEl returns the number of electrodes
func (tp *Template) NEl() int { return tp.Waves.Dim(1) }

// NSamp returns the number of samples per waveform
func (tp *Template) NSamp() int { return tp.Waves.Dim(2) }

// Dur returns the waveform duration in seconds
func (tp *Template) Dur() float64 { return float64(tp.NSamp()) / tp.FS }

// Pos returns the [electrodes * samples] block for given position, as a slice
// into Waves
func (tp *Template) Pos(pos int) []float64 {
	sz := tp.NEl() * tp.NSamp()
	return tp.Waves.Values[pos*sz : (pos+1)*sz]
}

// Wave returns the waveform of given position and electrode, as a slice into Waves
func (tp *Template) Wave(pos, el int) []float64 {
	ns := tp.NSamp()
	st := (pos*tp.NEl() + el) * ns
	return tp.Waves.Values[st : st+ns]
}

// Loc returns the initial location
func (tp *Template) Loc() mat32.Vec3 { return tp.Locs[0] }

// DriftDir returns the unit vector from the first to the last position, and the
// total path length.  Static templates return a zero vector and length.
func (tp *Template) DriftDir() (mat32.Vec3, float32) {
	if len(tp.Locs) < 2 {
		return mat32.Vec3{}, 0
	}
	d := tp.Locs[len(tp.Locs)-1].Sub(tp.Locs[0])
	ln := d.Length()
	if ln == 0 {
		return mat32.Vec3{}, 0
	}
	return d.DivScalar(ln), ln
}

// UpdateAmp sets Amp from the waveforms at the first position
func (tp *Template) UpdateAmp() {
	mn := 0.0
	for _, v := range tp.Pos(0) {
		if v < mn {
			mn = v
		}
	}
	tp.Amp = -mn
}

// Clone returns a deep copy of the template
func (tp *Template) Clone() *Template {
	ct := *tp
	ct.Waves = tp.Waves.Clone().(*etensor.Float64)
	ct.Locs = append([]mat32.Vec3(nil), tp.Locs...)
	return &ct
}

// DimensionMismatchError is returned when templates, probes or recordings
// disagree on electrode or sample counts
type DimensionMismatchError struct {
	What string
	Got  int
	Want int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("templ: dimension mismatch: %s: got %d, want %d", e.What, e.Got, e.Want)
}

// Pool is the set of available templates that cells are selected from
type Pool struct {
	Templates []*Template `desc:"the templates"`
	Probe     string      `desc:"name of the probe geometry the templates were computed for"`
}

// Len returns the number of templates
func (pl *Pool) Len() int { return len(pl.Templates) }

// Validate checks that all templates have nel electrodes, the same sample
// count, and one location per position
func (pl *Pool) Validate(nel int) error {
	if len(pl.Templates) == 0 {
		return &DimensionMismatchError{What: "pool size", Got: 0, Want: 1}
	}
	ns := pl.Templates[0].NSamp()
	for i, tp := range pl.Templates {
		if tp.NEl() != nel {
			return &DimensionMismatchError{What: fmt.Sprintf("template %d electrodes", i), Got: tp.NEl(), Want: nel}
		}
		if tp.NSamp() != ns {
			return &DimensionMismatchError{What: fmt.Sprintf("template %d samples", i), Got: tp.NSamp(), Want: ns}
		}
		if len(tp.Locs) != tp.NPos() {
			return &DimensionMismatchError{What: fmt.Sprintf("template %d locations", i), Got: len(tp.Locs), Want: tp.NPos()}
		}
	}
	return nil
}
