// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package templ

import (
	"math"

	"github.com/emer/etable/etensor"
	"golang.org/x/exp/rand"
)

// Params are the template conditioning parameters
type Params struct {
	FS       float64 `def:"32000" min:"1" desc:"target recording sampling rate in Hz"`
	Dur      float64 `def:"0.007" desc:"duration of the unpadded template in seconds -- resampled templates are cropped to FS * Dur samples"`
	PadPre   float64 `def:"0.003" desc:"duration of cubic padding before the template, in seconds"`
	PadPost  float64 `def:"0.003" desc:"duration of cubic padding after the template, in seconds"`
	NJitters int     `def:"10" min:"1" desc:"number of jittered variants generated per template and position"`
	Upsample int     `def:"8" min:"1" desc:"upsampling factor used to shift templates by a fraction of a sample"`
	JitterSD float64 `def:"1" desc:"standard deviation of the jitter shift in recording samples"`

	NPre  int `inactive:"+" desc:"number of samples of PadPre at FS"`
	NPost int `inactive:"+" desc:"number of samples of PadPost at FS"`
	NDur  int `inactive:"+" desc:"number of samples of Dur at FS"`
}

func (tp *Params) Defaults() {
	tp.FS = 32000
	tp.Dur = 0.007
	tp.PadPre = 0.003
	tp.PadPost = 0.003
	tp.NJitters = 10
	tp.Upsample = 8
	tp.JitterSD = 1
	tp.Update()
}

func (tp *Params) Update() {
	tp.NPre = int(tp.PadPre * tp.FS)
	tp.NPost = int(tp.PadPost * tp.FS)
	tp.NDur = int(math.Round(tp.Dur * tp.FS))
}

// NSamp returns the sample count of a conditioned template
func (tp *Params) NSamp() int {
	return tp.NDur + tp.NPre + tp.NPost
}

// Condition returns a conditioned copy of tmp: resampled to FS when its rate
// differs, cropped to NDur samples, and cubic-padded by NPre and NPost samples.
func (tp *Params) Condition(tmp *Template) *Template {
	npos, nel := tmp.NPos(), tmp.NEl()
	ct := NewTemplate(npos, nel, tp.NSamp(), tp.FS)
	copy(ct.Locs, tmp.Locs)
	ct.Rot, ct.Cat, ct.Class = tmp.Rot, tmp.Cat, tmp.Class
	up, down := RatioInts(tmp.FS, tp.FS)
	ct.Resampled = up != down
	// pad in source samples so the resampling filter sees a continued edge
	spre := int(tp.PadPre * tmp.FS)
	spost := int(tp.PadPost * tmp.FS)
	off := spre * up / down
	for p := 0; p < npos; p++ {
		for e := 0; e < nel; e++ {
			w := tmp.Wave(p, e)
			var rs []float64
			if ct.Resampled {
				rs = ResamplePoly(EdgePad(w, spre, spost), up, down)
				rs = rs[off:]
			} else {
				rs = w
			}
			crop := make([]float64, tp.NDur)
			copy(crop, rs)
			copy(ct.Wave(p, e), CubicPad(crop, tp.NPre, tp.NPost))
		}
	}
	ct.UpdateAmp()
	return ct
}

// JitterSet holds jittered variants of one template, as an etensor of shape
// [positions, jitters, electrodes, samples]
type JitterSet struct {
	Waves *etensor.Float64 `desc:"jittered waveforms, shape [positions, jitters, electrodes, samples]"`
	Shift []int            `desc:"shift applied to each jitter, in upsampled samples, for each position and jitter"`
}

// NJitters returns the number of variants per position
func (js *JitterSet) NJitters() int { return js.Waves.Dim(1) }

// Variant returns the [electrodes * samples] block of jitter j at position pos
func (js *JitterSet) Variant(pos, j int) []float64 {
	sz := js.Waves.Dim(2) * js.Waves.Dim(3)
	st := (pos*js.Waves.Dim(1) + j) * sz
	return js.Waves.Values[st : st+sz]
}

// Jitter generates NJitters variants of each position of tmp.  Each variant
// upsamples the waveforms by Upsample, shifts them by an integer number of
// upsampled samples drawn from a Gaussian with JitterSD recording samples,
// filling with zeros, and decimates back.  rngs gives one generator per position.
func (tp *Params) Jitter(tmp *Template, rngs []*rand.Rand) *JitterSet {
	npos, nel, ns := tmp.NPos(), tmp.NEl(), tmp.NSamp()
	nj := tp.NJitters
	js := &JitterSet{}
	js.Waves = etensor.NewFloat64([]int{npos, nj, nel, ns}, nil, []string{"Pos", "Jitter", "El", "Samp"})
	js.Shift = make([]int, npos*nj)
	up := tp.Upsample
	for p := 0; p < npos; p++ {
		ups := make([][]float64, nel)
		for e := 0; e < nel; e++ {
			ups[e] = ResamplePoly(tmp.Wave(p, e), up, 1)
		}
		for j := 0; j < nj; j++ {
			shift := int(rngs[p].NormFloat64() * tp.JitterSD * float64(up))
			js.Shift[p*nj+j] = shift
			vr := js.Variant(p, j)
			for e := 0; e < nel; e++ {
				dn := ResamplePoly(ShiftZero(ups[e], shift), 1, up)
				copy(vr[e*ns:(e+1)*ns], dn)
			}
		}
	}
	return js
}

// ShiftZero returns x delayed by shift samples (advanced if negative),
// with vacated samples set to zero
func ShiftZero(x []float64, shift int) []float64 {
	n := len(x)
	y := make([]float64, n)
	switch {
	case shift >= n || -shift >= n:
	case shift >= 0:
		copy(y[shift:], x[:n-shift])
	default:
		copy(y, x[-shift:])
	}
	return y
}
