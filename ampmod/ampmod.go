// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package ampmod computes per-spike amplitude modulation of spike waveforms.

In ISI mode a spike that follows a burst of closely spaced spikes is
attenuated by a power law of the mean inter-spike interval of the burst,
emulating the amplitude decrease seen during high-frequency firing, while
isolated spikes get a gain near one.  All modes add Gaussian gain noise.
*/
package ampmod

import (
	"math"

	"github.com/emer/spikesynth/spikes"
	"github.com/goki/ki/kit"
	"golang.org/x/exp/rand"
)

// ModTypes are the amplitude modulation modes
type ModTypes int32

//go:generate stringer -type=ModTypes

var KiT_ModTypes = kit.Enums.AddEnum(ModTypesN, kit.NotBitFlag, nil)

func (ev ModTypes) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *ModTypes) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

func (ev ModTypes) MarshalText() ([]byte, error) { return []byte(ev.String()), nil }
func (ev *ModTypes) UnmarshalText(b []byte) error { return ev.FromString(string(b)) }

const (
	// ModNone applies no modulation: all gains are 1
	ModNone ModTypes = iota

	// ModISI scales the whole template by an ISI-dependent gain with noise
	ModISI

	// ModTemplate scales the whole template by a noisy gain, independent of ISI
	ModTemplate

	// ModElectrode scales each electrode by an independent noisy gain
	ModElectrode

	ModTypesN
)

// Params are the amplitude modulation parameters
type Params struct {
	Mode    ModTypes `desc:"modulation mode"`
	Mean    float64  `def:"1" desc:"mean gain of isolated spikes"`
	SD      float64  `def:"0.05" desc:"standard deviation of the gain noise, relative to the gain"`
	Exp     float64  `def:"0.3" desc:"exponent of the power law relating mean burst ISI to gain"`
	NSpikes int      `def:"5" min:"0" desc:"maximum number of preceding spikes counted as a burst"`
	MemISI  float64  `def:"0.01" desc:"ISIs at or below this duration in seconds are part of a burst"`
}

func (mp *Params) Defaults() {
	mp.Mode = ModNone
	mp.Mean = 1
	mp.SD = 0.05
	mp.Exp = 0.3
	mp.NSpikes = 5
	mp.MemISI = 0.01
}

// Trace is the amplitude gain of each spike of a train
type Trace struct {
	NEl  int       `desc:"number of gains per spike: 1, or the number of electrodes in electrode mode"`
	Vals []float64 `desc:"gains, spike major: Vals[s*NEl+e]"`
	Cons []int     `desc:"number of consecutive preceding burst spikes, per spike"`
}

// Len returns the number of spikes
func (tc *Trace) Len() int {
	if tc.NEl == 0 {
		return 0
	}
	return len(tc.Vals) / tc.NEl
}

// Gain returns the gain of spike s on electrode el.  A nil trace has unit gain.
func (tc *Trace) Gain(s, el int) float64 {
	if tc == nil {
		return 1
	}
	if tc.NEl == 1 {
		return tc.Vals[s]
	}
	return tc.Vals[s*tc.NEl+el]
}

// Spike returns the gains of spike s, one per NEl
func (tc *Trace) Spike(s int) []float64 {
	return tc.Vals[s*tc.NEl : (s+1)*tc.NEl]
}

// Slice returns the trace of spikes [st, ed)
func (tc *Trace) Slice(st, ed int) *Trace {
	if tc == nil {
		return nil
	}
	sl := &Trace{NEl: tc.NEl, Vals: tc.Vals[st*tc.NEl : ed*tc.NEl]}
	if tc.Cons != nil {
		sl.Cons = tc.Cons[st:ed]
	}
	return sl
}

// Compute returns the trace for tr with nel electrodes.  ModNone returns nil.
func (mp *Params) Compute(tr *spikes.Train, nel int, rng *rand.Rand) *Trace {
	switch mp.Mode {
	case ModISI:
		return mp.ISI(tr.Times, mp.NSpikes, 1, rng)
	case ModTemplate:
		return mp.ISI(tr.Times, 0, 1, rng)
	case ModElectrode:
		return mp.ISI(tr.Times, 0, nel, rng)
	}
	return nil
}

// ISI computes the ISI-dependent gains of times with up to nspk burst
// spikes, with nel independent gains per spike.  For nspk = 0 the gains are
// Mean plus noise.  A spike preceded by c consecutive ISIs within MemISI
// (c <= nspk) gets gain a + a*SD*z, with a = (mean ISI / c)^Exp / MemISI^Exp
// computed over those c intervals.
func (mp *Params) ISI(times []float64, nspk, nel int, rng *rand.Rand) *Trace {
	n := len(times)
	tc := &Trace{NEl: nel, Vals: make([]float64, n*nel), Cons: make([]int, n)}
	for s := 0; s < n; s++ {
		c := 0
		sum := 0.0
		for c < nspk && s-c > 0 {
			isi := times[s-c] - times[s-c-1]
			if isi > mp.MemISI {
				break
			}
			sum += isi
			c++
		}
		tc.Cons[s] = c
		gv := tc.Spike(s)
		if c == 0 {
			for e := range gv {
				gv[e] = mp.Mean + mp.SD*rng.NormFloat64()
			}
			continue
		}
		a := math.Pow(sum/float64(c)/float64(c), mp.Exp) / math.Pow(mp.MemISI, mp.Exp)
		for e := range gv {
			gv[e] = a + a*mp.SD*rng.NormFloat64()
		}
	}
	return tc
}
