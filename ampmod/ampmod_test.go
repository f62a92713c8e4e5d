// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ampmod

import (
	"math"
	"testing"

	"github.com/emer/spikesynth/spikes"
	"golang.org/x/exp/rand"
)

const difTol = 1.0e-12

func TestModes(t *testing.T) {
	tr := &spikes.Train{Times: []float64{0.1, 0.2, 0.203, 0.206, 0.5}, TStop: 1}
	mp := Params{}
	mp.Defaults()
	if tc := mp.Compute(tr, 4, rand.New(rand.NewSource(1))); tc != nil {
		t.Errorf("ModNone should give nil trace\n")
	}
	var nilTrace *Trace
	if g := nilTrace.Gain(3, 2); g != 1 {
		t.Errorf("nil trace gain: %v\n", g)
	}
	mp.Mode = ModTemplate
	tc := mp.Compute(tr, 4, rand.New(rand.NewSource(1)))
	if tc.Len() != tr.Len() || len(tc.Vals) != tr.Len() {
		t.Errorf("template mode length err: %v\n", len(tc.Vals))
	}
	for s, c := range tc.Cons {
		if c != 0 {
			t.Errorf("template mode counted burst spikes: spike: %v, cons: %v\n", s, c)
		}
	}
	mp.Mode = ModElectrode
	tc = mp.Compute(tr, 4, rand.New(rand.NewSource(1)))
	if tc.Len() != tr.Len() || len(tc.Vals) != 4*tr.Len() {
		t.Errorf("electrode mode length err: %v\n", len(tc.Vals))
	}
	sl := tc.Slice(1, 3)
	if sl.Len() != 2 || sl.Gain(0, 3) != tc.Gain(1, 3) {
		t.Errorf("slice err\n")
	}
}

func TestISI(t *testing.T) {
	mp := Params{}
	mp.Defaults()
	mp.SD = 0
	times := []float64{0.1, 0.105, 0.110, 0.115, 0.5, 0.512}
	tc := mp.ISI(times, mp.NSpikes, 1, rand.New(rand.NewSource(1)))
	cons := []int{0, 1, 2, 3, 0, 0}
	for s, c := range cons {
		if tc.Cons[s] != c {
			t.Errorf("cons err: spike: %v, %v != %v\n", s, tc.Cons[s], c)
		}
	}
	for s, c := range cons {
		want := mp.Mean
		if c > 0 {
			want = math.Pow(0.005/float64(c)/mp.MemISI, mp.Exp)
		}
		if dif := math.Abs(tc.Vals[s] - want); dif > 1.0e-9 {
			t.Errorf("gain err: spike: %v, gain: %v, want: %v, dif: %v\n", s, tc.Vals[s], want, dif)
		}
	}
	// gain decreases along the burst
	for s := 2; s < 4; s++ {
		if tc.Vals[s] >= tc.Vals[s-1] {
			t.Errorf("gain not decreasing in burst: %v\n", tc.Vals[:4])
		}
	}
}

func TestDeterminism(t *testing.T) {
	mp := Params{}
	mp.Defaults()
	mp.Mode = ModISI
	tr := &spikes.Train{Times: []float64{0.1, 0.104, 0.2, 0.3, 0.302, 0.304}, TStop: 1}
	a := mp.Compute(tr, 1, rand.New(rand.NewSource(7)))
	b := mp.Compute(tr, 1, rand.New(rand.NewSource(7)))
	for i := range a.Vals {
		if math.Abs(a.Vals[i]-b.Vals[i]) > difTol {
			t.Errorf("not deterministic at %v\n", i)
		}
	}
}
