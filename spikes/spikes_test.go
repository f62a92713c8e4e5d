// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spikes

import (
	"math"
	"testing"

	"github.com/emer/spikesynth/templ"
	"golang.org/x/exp/rand"
)

func newRng(seed uint64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func TestRefractory(t *testing.T) {
	sp := Params{}
	sp.Defaults()
	sp.RateInh = 60 // push against the refractory floor
	for c := 0; c < 20; c++ {
		cls := templ.Class(c % 2)
		tr := sp.Generate(cls, false, 0, 20, newRng(uint64(c)), newRng(uint64(100+c)), newRng(uint64(200+c)))
		for i, isi := range tr.ISIs() {
			if isi < sp.Ref {
				t.Errorf("refractory err: cell: %v, idx: %v, isi: %v\n", c, i, isi)
			}
		}
		for _, st := range tr.Times {
			if st < tr.TStart || st >= tr.TStop {
				t.Errorf("spike out of range: %v\n", st)
			}
		}
		if len(tr.Overlap) != tr.Len() {
			t.Errorf("overlap labels length: %v != %v\n", len(tr.Overlap), tr.Len())
		}
	}
}

func TestPoissonCount(t *testing.T) {
	sp := Params{}
	sp.Defaults()
	rates := []float64{5, 15, 40}
	dur := 100.0
	for i, r := range rates {
		times := sp.Poisson(r, 0, dur, newRng(uint64(i+1)))
		n := float64(len(times))
		exp := r * dur
		// 5 standard deviations of a Poisson count
		if dif := math.Abs(n - exp); dif > 5*math.Sqrt(exp) {
			t.Errorf("count err: rate: %v, n: %v, expected: %v, dif: %v\n", r, n, exp, dif)
		}
	}
}

func TestIntermittent(t *testing.T) {
	sp := Params{}
	sp.Defaults()
	sp.TInt = 2
	sp.TBurst = 1
	sp.TIntSD = 0.2
	sp.TBurstSD = 0.1
	tr := sp.Generate(templ.Excitatory, true, 0, 30, newRng(1), newRng(2), newRng(3))
	if len(tr.Bursts) < 5 {
		t.Fatalf("too few bursts: %v\n", len(tr.Bursts))
	}
	for _, st := range tr.Times {
		in := false
		for _, b := range tr.Bursts {
			if st >= b[0] && st < b[1] {
				in = true
				break
			}
		}
		if !in {
			t.Errorf("spike outside bursts: %v\n", st)
		}
	}
	for i := 1; i < len(tr.Bursts); i++ {
		if gap := tr.Bursts[i][0] - tr.Bursts[i-1][1]; gap < sp.MinInterval {
			t.Errorf("quiet interval too short: %v\n", gap)
		}
	}
}

func TestRaster(t *testing.T) {
	tr := &Train{Times: []float64{0.0001, 0.00049, 0.0010001}, TStop: 0.002}
	rs := tr.Raster(1000)
	want := Raster{0, 0, 1}
	for i := range want {
		if rs[i] != want[i] {
			t.Errorf("raster err: idx: %v, %v != %v\n", i, rs[i], want[i])
		}
	}
	tr.Times = []float64{0.0002, 0.00052, 0.0014}
	rs = tr.Raster(10000)
	d := rs.Dense(20)
	for i, v := range d {
		w := 0.0
		if i == 2 || i == 5 || i == 14 {
			w = 1
		}
		if v != w {
			t.Errorf("dense err: idx: %v, %v != %v\n", i, v, w)
		}
	}
	st, ed := rs.Range(3, 14)
	if st != 1 || ed != 2 {
		t.Errorf("range err: %v, %v\n", st, ed)
	}
}

func genPair(sp *Params) []*Train {
	a := sp.Generate(templ.Excitatory, false, 0, 10, newRng(1), newRng(2), nil)
	b := sp.Generate(templ.Inhibitory, false, 0, 10, newRng(3), newRng(4), nil)
	return []*Train{a, b}
}

func aligned(a, b *Train, fs float64) int {
	bs := map[int]bool{}
	for _, s := range b.Raster(fs) {
		bs[s] = true
	}
	n := 0
	for _, s := range a.Raster(fs) {
		if bs[s] {
			n++
		}
	}
	return n
}

func TestSyncZero(t *testing.T) {
	sp := Params{}
	sp.Defaults()
	trs := genPair(&sp)
	a0 := append([]float64(nil), trs[0].Times...)
	b0 := append([]float64(nil), trs[1].Times...)
	n := AddSynchrony(trs, [2]int{0, 1}, 0, 32000, sp.Ref, newRng(9))
	if n != 0 {
		t.Errorf("inserted %v spikes at rate 0\n", n)
	}
	for i, tr := range trs {
		orig := a0
		if i == 1 {
			orig = b0
		}
		if tr.Len() != len(orig) {
			t.Fatalf("train %v length changed: %v != %v\n", i, tr.Len(), len(orig))
		}
		for s := range orig {
			if tr.Times[s] != orig[s] {
				t.Errorf("train %v changed at %v\n", i, s)
			}
		}
		if len(tr.SyncWith) != 0 || tr.NSync != 0 {
			t.Errorf("train %v annotated at rate 0\n", i)
		}
	}
}

func TestSync(t *testing.T) {
	sp := Params{}
	sp.Defaults()
	fs := 32000.0
	trs := genPair(&sp)
	sparse := trs[0]
	if trs[1].Len() < sparse.Len() {
		sparse = trs[1]
	}
	rate := 0.5
	target := int(math.Round(rate * float64(sparse.Len())))
	AddSynchrony(trs, [2]int{0, 1}, rate, fs, sp.Ref, newRng(9))
	if n := aligned(trs[0], trs[1], fs); n != target {
		t.Errorf("synchronous count err: %v != %v\n", n, target)
	}
	for i, tr := range trs {
		for k, isi := range tr.ISIs() {
			if isi < sp.Ref {
				t.Errorf("refractory violated after sync: train: %v, idx: %v, isi: %v\n", i, k, isi)
			}
		}
		if len(tr.SyncWith) != 1 || tr.SyncWith[0] != 1-i {
			t.Errorf("SyncWith err: train %v: %v\n", i, tr.SyncWith)
		}
		if len(tr.Overlap) != tr.Len() {
			t.Errorf("overlap labels not extended: %v\n", i)
		}
	}
	// saturates silently
	trs = genPair(&sp)
	AddSynchrony(trs, [2]int{0, 1}, 10, fs, sp.Ref, newRng(9))
	if n := aligned(trs[0], trs[1], fs); n > sparse.Len() {
		t.Errorf("more synchronous spikes than sparse spikes: %v\n", n)
	}
}

func TestAnnotateOverlap(t *testing.T) {
	trs := []*Train{
		{Times: []float64{0.1, 0.5, 0.9}},
		{Times: []float64{0.103, 0.7}},
		{Times: []float64{0.504}},
	}
	pairs := templ.OverlapSet{{0, 2}}
	AnnotateOverlap(trs, 0.005, pairs)
	want := [][]OverlapType{
		{TempOverlap, SpatioTempOverlap, NoOverlap},
		{TempOverlap, NoOverlap},
		{SpatioTempOverlap},
	}
	for i, w := range want {
		for s := range w {
			if trs[i].Overlap[s] != w[s] {
				t.Errorf("overlap err: train: %v, spike: %v, %v != %v\n", i, s, trs[i].Overlap[s], w[s])
			}
		}
	}
	cnt := trs[0].OverlapCounts()
	if cnt[NoOverlap] != 1 || cnt[TempOverlap] != 1 || cnt[SpatioTempOverlap] != 1 {
		t.Errorf("counts err: %v\n", cnt)
	}
}
