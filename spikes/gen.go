// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spikes

import (
	"math"

	"github.com/emer/spikesynth/templ"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Params are the spike train generation parameters
type Params struct {
	RateExc     float64 `def:"5" min:"0" desc:"mean firing rate of excitatory cells in Hz"`
	RateExcSD   float64 `def:"1" min:"0" desc:"standard deviation across cells of the excitatory firing rate in Hz"`
	RateInh     float64 `def:"15" min:"0" desc:"mean firing rate of inhibitory cells in Hz"`
	RateInhSD   float64 `def:"2" min:"0" desc:"standard deviation across cells of the inhibitory firing rate in Hz"`
	RateInt     float64 `def:"10" min:"0" desc:"firing rate of intermittent cells within bursts, in Hz"`
	MinRate     float64 `def:"0.5" min:"0" desc:"lower bound on the per-cell firing rate in Hz"`
	Ref         float64 `def:"0.005" min:"0" desc:"absolute refractory period in seconds"`
	TInt        float64 `def:"10" desc:"mean duration of the quiet intervals of intermittent cells, in seconds"`
	TIntSD      float64 `def:"2" desc:"standard deviation of the quiet interval duration, in seconds"`
	TBurst      float64 `def:"5" desc:"mean duration of the burst intervals of intermittent cells, in seconds"`
	TBurstSD    float64 `def:"0.5" desc:"standard deviation of the burst interval duration, in seconds"`
	MinInterval float64 `def:"0.1" desc:"lower bound on burst and quiet interval durations, in seconds"`
}

func (sp *Params) Defaults() {
	sp.RateExc = 5
	sp.RateExcSD = 1
	sp.RateInh = 15
	sp.RateInhSD = 2
	sp.RateInt = 10
	sp.MinRate = 0.5
	sp.Ref = 0.005
	sp.TInt = 10
	sp.TIntSD = 2
	sp.TBurst = 5
	sp.TBurstSD = 0.5
	sp.MinInterval = 0.1
}

// CellRate draws the firing rate of a cell of given class
func (sp *Params) CellRate(cls templ.Class, intermittent bool, rng *rand.Rand) float64 {
	mu, sd := sp.RateExc, sp.RateExcSD
	if cls == templ.Inhibitory {
		mu, sd = sp.RateInh, sp.RateInhSD
	}
	if intermittent {
		mu = sp.RateInt
	}
	r := mu
	if sd > 0 {
		r = distuv.Normal{Mu: mu, Sigma: sd, Src: rng}.Rand()
	}
	return math.Max(r, sp.MinRate)
}

// EffRate returns the rate of the exponential ISI distribution that, after
// adding the refractory period, gives a mean rate of r
func (sp *Params) EffRate(r float64) float64 {
	if r*sp.Ref >= 1 {
		return r
	}
	return r / (1 - r*sp.Ref)
}

// Poisson returns spike times in [tstart, tstop) of a Poisson process at
// rate r with absolute refractory period Ref: exponential ISI candidates
// shorter than Ref are rejected and redrawn.
func (sp *Params) Poisson(r, tstart, tstop float64, rng *rand.Rand) []float64 {
	if r <= 0 {
		return nil
	}
	ex := distuv.Exponential{Rate: sp.EffRate(r), Src: rng}
	var times []float64
	t := tstart
	for {
		isi := ex.Rand()
		for isi < sp.Ref {
			isi = ex.Rand()
		}
		t += isi
		if t >= tstop {
			break
		}
		times = append(times, t)
	}
	return times
}

// Bursts returns alternating burst intervals covering [tstart, tstop),
// starting with a burst; the quiet intervals between them are not returned.
func (sp *Params) Bursts(tstart, tstop float64, rng *rand.Rand) [][2]float64 {
	bd := distuv.Normal{Mu: sp.TBurst, Sigma: sp.TBurstSD, Src: rng}
	qd := distuv.Normal{Mu: sp.TInt, Sigma: sp.TIntSD, Src: rng}
	var bursts [][2]float64
	t := tstart
	for t < tstop {
		b := math.Max(bd.Rand(), sp.MinInterval)
		bursts = append(bursts, [2]float64{t, math.Min(t+b, tstop)})
		t += b + math.Max(qd.Rand(), sp.MinInterval)
	}
	return bursts
}

// Gate returns the spikes of times that fall within one of the bursts
func Gate(times []float64, bursts [][2]float64) []float64 {
	var gt []float64
	bi := 0
	for _, t := range times {
		for bi < len(bursts) && t >= bursts[bi][1] {
			bi++
		}
		if bi == len(bursts) {
			break
		}
		if t >= bursts[bi][0] {
			gt = append(gt, t)
		}
	}
	return gt
}

// Generate returns the train of one cell: the rate is drawn with rateRng,
// spike times with trainRng, and for intermittent cells the burst intervals
// with intRng.
func (sp *Params) Generate(cls templ.Class, intermittent bool, tstart, tstop float64, rateRng, trainRng, intRng *rand.Rand) *Train {
	tr := &Train{TStart: tstart, TStop: tstop, Class: cls, Intermittent: intermittent}
	tr.Rate = sp.CellRate(cls, intermittent, rateRng)
	tr.Times = sp.Poisson(tr.Rate, tstart, tstop, trainRng)
	if intermittent {
		tr.Bursts = sp.Bursts(tstart, tstop, intRng)
		tr.Times = Gate(tr.Times, tr.Bursts)
	}
	tr.Overlap = make([]OverlapType, len(tr.Times))
	return tr
}
