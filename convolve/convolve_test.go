// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package convolve

import (
	"errors"
	"math"
	"testing"

	"github.com/emer/etable/etensor"
	"github.com/emer/spikesynth/ampmod"
	"github.com/emer/spikesynth/drift"
	"github.com/emer/spikesynth/spikes"
	"github.com/emer/spikesynth/templ"
	"github.com/goki/mat32"
	"golang.org/x/exp/rand"
)

const difTol = 1.0e-9

// rampTemplate has distinct values on every electrode and sample of every position
func rampTemplate(npos, nel, ns int) *templ.Template {
	tp := templ.NewTemplate(npos, nel, ns, 1000)
	for i := range tp.Waves.Values {
		tp.Waves.Values[i] = float64(i%7) - 3 + 0.1*float64(i)
	}
	for p := 0; p < npos; p++ {
		tp.Locs[p] = mat32.Vec3{X: 20, Z: float32(10 * p)}
	}
	tp.UpdateAmp()
	return tp
}

func randJitters(tp *templ.Template, nj int, rng *rand.Rand) *templ.JitterSet {
	js := &templ.JitterSet{}
	js.Waves = etensor.NewFloat64([]int{tp.NPos(), nj, tp.NEl(), tp.NSamp()}, nil, nil)
	for i := range js.Waves.Values {
		js.Waves.Values[i] = rng.NormFloat64()
	}
	return js
}

// randTask returns a task with jitter picks and per-electrode gains
func randTask(cell int, tp *templ.Template, js *templ.JitterSet, nsamp int, rng *rand.Rand) *Task {
	tk := &Task{Cell: cell, Kern: Kernel{Tmp: tp, Jit: js}}
	for k := rng.Intn(20); k < nsamp; k += 5 + rng.Intn(40) {
		tk.Spikes = append(tk.Spikes, k)
	}
	tk.Jitter = make([]int, len(tk.Spikes))
	tk.Amp = &ampmod.Trace{NEl: tp.NEl(), Vals: make([]float64, len(tk.Spikes)*tp.NEl())}
	for s := range tk.Spikes {
		tk.Jitter[s] = rng.Intn(js.NJitters())
		for e := 0; e < tp.NEl(); e++ {
			tk.Amp.Vals[s*tp.NEl()+e] = 1 + 0.1*rng.NormFloat64()
		}
	}
	return tk
}

func TestSingleSpike(t *testing.T) {
	nel, ns, n := 2, 5, 30
	tp := rampTemplate(1, nel, ns)
	for _, k := range []int{10, 0, 29} {
		as := NewAssembler(nel, n, 1000, 1)
		rec, err := as.Run([]*Task{{Spikes: spikes.Raster{k}, Kern: Kernel{Tmp: tp}}})
		if err != nil {
			t.Fatal(err)
		}
		off := (ns - 1) / 2
		for e := 0; e < nel; e++ {
			wv := tp.Wave(0, e)
			for i := 0; i < n; i++ {
				want := 0.0
				if j := i - k + off; j >= 0 && j < ns {
					want = wv[j]
				}
				if got := rec.Values[e*n+i]; got != want {
					t.Errorf("support err: spike: %v, el: %v, samp: %v, got: %v, want: %v\n", k, e, i, got, want)
				}
			}
		}
	}
}

func TestChunked(t *testing.T) {
	nel, n := 3, 100
	tp := rampTemplate(1, nel, 5)
	// spikes at least 2 samples from the chunk boundaries at 25, 50, 75
	tk := &Task{Spikes: spikes.Raster{3, 10, 37, 60, 61, 88, 97}, Kern: Kernel{Tmp: tp}}
	whole := NewAssembler(nel, n, 1000, 1)
	rw, err := whole.Run([]*Task{tk})
	if err != nil {
		t.Fatal(err)
	}
	ch := NewAssembler(nel, n, 1000, 1)
	ch.ChunkDur = 0.025
	if nc := len(ch.Chunks()); nc != 4 {
		t.Errorf("chunks err: %v\n", ch.Chunks())
	}
	rc, err := ch.Run([]*Task{tk})
	if err != nil {
		t.Fatal(err)
	}
	for i := range rw.Values {
		if rw.Values[i] != rc.Values[i] {
			t.Errorf("chunked err: idx: %v, whole: %v, chunked: %v\n", i, rw.Values[i], rc.Values[i])
		}
	}
}

func TestChunkIndependence(t *testing.T) {
	tp := rampTemplate(1, 1, 5)
	as := NewAssembler(1, 40, 1000, 1)
	as.ChunkDur = 0.02
	// spike at the last sample of the first chunk does not leak into the second
	rec, err := as.Run([]*Task{{Spikes: spikes.Raster{19}, Kern: Kernel{Tmp: tp}}})
	if err != nil {
		t.Fatal(err)
	}
	for i := 20; i < 40; i++ {
		if rec.Values[i] != 0 {
			t.Errorf("leak err: samp: %v, val: %v\n", i, rec.Values[i])
		}
	}
}

func TestFFT(t *testing.T) {
	nel, n := 4, 500
	tp := rampTemplate(1, nel, 33)
	rng := rand.New(rand.NewSource(3))
	tk := &Task{Kern: Kernel{Tmp: tp}}
	for k := 0; k < n; k += 1 + rng.Intn(30) {
		tk.Spikes = append(tk.Spikes, k)
	}
	dr := NewAssembler(nel, n, 1000, 1)
	rd, err := dr.Run([]*Task{tk})
	if err != nil {
		t.Fatal(err)
	}
	fa := NewAssembler(nel, n, 1000, 1)
	fa.Conv = &FFT{}
	rf, err := fa.Run([]*Task{tk})
	if err != nil {
		t.Fatal(err)
	}
	for i := range rd.Values {
		if dif := math.Abs(rd.Values[i] - rf.Values[i]); dif > 1.0e-6 {
			t.Errorf("fft err: idx: %v, direct: %v, fft: %v, dif: %v\n", i, rd.Values[i], rf.Values[i], dif)
		}
	}
}

func TestThreads(t *testing.T) {
	nel, n := 4, 2000
	rng := rand.New(rand.NewSource(11))
	var tasks []*Task
	for c := 0; c < 9; c++ {
		tp := rampTemplate(1, nel, 21)
		tasks = append(tasks, randTask(c, tp, randJitters(tp, 5, rng), n, rng))
	}
	one := NewAssembler(nel, n, 1000, 1)
	one.ChunkDur = 0.3
	r1, err := one.Run(tasks)
	if err != nil {
		t.Fatal(err)
	}
	for _, nthr := range []int{2, 4, 16} {
		mt := NewAssembler(nel, n, 1000, nthr)
		mt.ChunkDur = 0.3
		rm, err := mt.Run(tasks)
		if err != nil {
			t.Fatal(err)
		}
		for i := range r1.Values {
			if r1.Values[i] != rm.Values[i] {
				t.Errorf("threads err: nthr: %v, idx: %v, %v != %v\n", nthr, i, r1.Values[i], rm.Values[i])
				break
			}
		}
	}
}

func TestSources(t *testing.T) {
	nel, n := 3, 300
	rng := rand.New(rand.NewSource(5))
	tp := rampTemplate(1, nel, 11)
	tk := randTask(0, tp, randJitters(tp, 4, rng), n, rng)
	as := NewAssembler(nel, n, 1000, 2)
	rec, err := as.Run([]*Task{tk})
	if err != nil {
		t.Fatal(err)
	}
	st := *tk
	st.Source = true
	st.El = 2
	src, err := as.RunEach([]*Task{&st})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < n; i++ {
		if src.Values[i] != rec.Values[2*n+i] {
			t.Errorf("source err: idx: %v, %v != %v\n", i, src.Values[i], rec.Values[2*n+i])
		}
	}
	if _, err := as.RunEach([]*Task{tk}); err == nil {
		t.Errorf("RunEach accepted a non-source task\n")
	}
}

func TestMismatch(t *testing.T) {
	tp := rampTemplate(1, 3, 5)
	as := NewAssembler(2, 50, 1000, 1)
	_, err := as.Run([]*Task{{Spikes: spikes.Raster{10}, Kern: Kernel{Tmp: tp}}})
	var dm *templ.DimensionMismatchError
	if !errors.As(err, &dm) {
		t.Fatalf("expected DimensionMismatchError, got: %v\n", err)
	}
	if dm.Got != 3 || dm.Want != 2 {
		t.Errorf("mismatch err: %+v\n", dm)
	}
	tp = rampTemplate(1, 2, 5)
	tk := &Task{Spikes: spikes.Raster{10, 20}, Jitter: []int{0}, Kern: Kernel{Tmp: tp, Jit: randJitters(tp, 2, rand.New(rand.NewSource(1)))}}
	if _, err := as.Run([]*Task{tk}); !errors.As(err, &dm) {
		t.Errorf("expected jitter DimensionMismatchError, got: %v\n", err)
	}
	if _, err := as.Run([]*Task{{Spikes: spikes.Raster{60}, Kern: Kernel{Tmp: tp}}}); err == nil {
		t.Errorf("spike outside the recording accepted\n")
	}
}

func TestDriftZeroSpeed(t *testing.T) {
	nel, n := 3, 3000
	rng := rand.New(rand.NewSource(8))
	tp := rampTemplate(4, nel, 11)
	tk := randTask(0, tp, randJitters(tp, 3, rng), n, rng)
	as := NewAssembler(nel, n, 1000, 1)
	as.Ctx.Step = 0.5
	rs, err := as.Run([]*Task{tk})
	if err != nil {
		t.Fatal(err)
	}
	dp := drift.Params{}
	dp.Defaults()
	dp.Speed = 0
	dt := *tk
	dt.Drift = dp.Trajectory(tp)
	rd, err := as.Run([]*Task{&dt})
	if err != nil {
		t.Fatal(err)
	}
	for i := range rs.Values {
		if rs.Values[i] != rd.Values[i] {
			t.Errorf("drift v=0 err: idx: %v, %v != %v\n", i, rs.Values[i], rd.Values[i])
			break
		}
	}
	di := as.Drifting(&dt, dp.Steps(0, 3), 3)
	if len(di.Mixing) != 3 || di.Final.A != 0 {
		t.Errorf("drift info err: %+v\n", di)
	}
	ft := tp.Features(0)
	for e := range ft {
		if di.Mixing[2][e] != ft[e] || di.FinalTmp.Waves.Values[e] != tp.Waves.Values[e] {
			t.Errorf("drift features err: el: %v\n", e)
		}
	}
}

func TestDriftMoves(t *testing.T) {
	nel := 2
	tp := rampTemplate(4, nel, 5)
	dp := drift.Params{}
	dp.Defaults()
	dp.Speed = 600 // 10 um/s, 10 um between positions
	tk := &Task{Kern: Kernel{Tmp: tp}}
	tk.Drift = dp.Trajectory(tp)
	as := NewAssembler(nel, 4000, 1000, 1)
	as.Ctx.Step = 1
	di := as.Drifting(tk, dp.Steps(0, 4), 4)
	for i, t0 := range di.Steps {
		want := tp.Features(int(t0))
		for e := range want {
			if di.Mixing[i][e] != want[e] {
				t.Errorf("drift mixing err: step: %v, el: %v, %v != %v\n", i, e, di.Mixing[i][e], want[e])
			}
		}
	}
	if di.Final.A != 3 || math.Abs(float64(di.FinalLoc.Z)-30) > 1.0e-4 {
		t.Errorf("drift final err: %+v, loc: %v\n", di.Final, di.FinalLoc)
	}
	// the final location is that of the kernel in use, not the continuous position
	di = as.Drifting(tk, dp.Steps(0, 2), 2)
	if di.Final.A != 1 || di.FinalLoc != tp.Locs[1] || di.FinalTmp.Locs[0] != tp.Locs[1] {
		t.Errorf("drift final loc err: %+v, loc: %v, tmp loc: %v\n", di.Final, di.FinalLoc, di.FinalTmp.Locs[0])
	}
	// spikes late in the run use the last position
	tk.Spikes = spikes.Raster{3500}
	rec, err := as.Run([]*Task{tk})
	if err != nil {
		t.Fatal(err)
	}
	wv := tp.Wave(3, 1)
	if got := rec.Values[4000+3500]; got != wv[2] {
		t.Errorf("drift kernel err: %v != %v\n", got, wv[2])
	}
}
