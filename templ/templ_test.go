// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package templ

import (
	"math"
	"testing"

	"github.com/emer/spikesynth/probe"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
)

// difTol is the numerical difference tolerance for exact operations
const difTol = 1.0e-12

func testPool(t *testing.T, ncells, npos int) *Pool {
	geom, err := probe.Std.Geometry("SqMEA-2-20um")
	if err != nil {
		t.Fatal(err)
	}
	gp := GenParams{}
	gp.Defaults()
	gp.NCells = ncells
	gp.NPos = npos
	return gp.GenPool(geom, rand.New(rand.NewSource(1)))
}

func TestCategoryClass(t *testing.T) {
	exc := map[Category]bool{STPC: true, TTPC1: true, TTPC2: true, UTPC: true}
	for c := BP; c < CategoryN; c++ {
		want := Inhibitory
		if exc[c] {
			want = Excitatory
		}
		if c.Class() != want {
			t.Errorf("Class err: cat: %v, class: %v, want: %v\n", c, c.Class(), want)
		}
	}
	var c Category
	if err := c.FromString("TTPC2"); err != nil || c != TTPC2 {
		t.Errorf("FromString err: %v, %v\n", c, err)
	}
}

func TestResampleIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	x := make([]float64, 100)
	for i := range x {
		x[i] = rng.NormFloat64()
	}
	for _, r := range [][2]int{{1, 1}, {4, 4}, {32000, 32000}} {
		y := ResamplePoly(x, r[0], r[1])
		if len(y) != len(x) {
			t.Fatalf("identity length err: %v != %v\n", len(y), len(x))
		}
		for i := range x {
			if math.Abs(y[i]-x[i]) > difTol {
				t.Errorf("identity err: up/down: %v, idx: %v, y: %v, x: %v\n", r, i, y[i], x[i])
			}
		}
	}
}

func TestResampleRates(t *testing.T) {
	up, down := RatioInts(100000, 32000)
	if up != 8 || down != 25 {
		t.Errorf("RatioInts err: %v / %v, want 8 / 25\n", up, down)
	}
	n := 400
	x := make([]float64, n)
	for i := range x {
		x[i] = math.Sin(2 * math.Pi * 0.01 * float64(i))
	}
	y := ResamplePoly(x, 2, 1)
	if len(y) != 2*n {
		t.Fatalf("upsample length err: %v != %v\n", len(y), 2*n)
	}
	// interior samples away from the filter edges
	for m := 60; m < n-60; m++ {
		if dif := math.Abs(y[2*m] - x[m]); dif > 1.0e-2 {
			t.Errorf("upsample err: idx: %v, y: %v, x: %v, dif: %v\n", m, y[2*m], x[m], dif)
		}
	}
	z := ResamplePoly(y, 1, 2)
	if len(z) != n {
		t.Fatalf("downsample length err: %v != %v\n", len(z), n)
	}
	for m := 60; m < n-60; m++ {
		if dif := math.Abs(z[m] - x[m]); dif > 1.0e-2 {
			t.Errorf("round trip err: idx: %v, z: %v, x: %v, dif: %v\n", m, z[m], x[m], dif)
		}
	}
	y = ResamplePoly(x, 8, 25)
	if len(y) != (n*8+24)/25 {
		t.Errorf("rational length err: %v\n", len(y))
	}
}

func TestCubicPad(t *testing.T) {
	x := []float64{-1, -3, -5, -2, 0.5, 1, 0.8}
	npre, npost := 10, 12
	y := CubicPad(x, npre, npost)
	if len(y) != len(x)+npre+npost {
		t.Fatalf("length err: %v\n", len(y))
	}
	if y[0] != 0 || y[len(y)-1] != 0 {
		t.Errorf("outer ends not zero: %v, %v\n", y[0], y[len(y)-1])
	}
	for i, v := range x {
		if y[npre+i] != v {
			t.Errorf("interior changed: idx: %v, y: %v, x: %v\n", i, y[npre+i], v)
		}
	}
	// continuity at the joins: step is bounded by the edge slope
	if dif := math.Abs(y[npre-1] - x[0]); dif > math.Abs(x[1]-x[0])+math.Abs(x[0])/float64(npre) {
		t.Errorf("pre join discontinuity: %v vs %v\n", y[npre-1], x[0])
	}
	if dif := math.Abs(y[npre+len(x)] - x[len(x)-1]); dif > math.Abs(x[6]-x[5])+math.Abs(x[6])/float64(npost) {
		t.Errorf("post join discontinuity: %v vs %v\n", y[npre+len(x)], x[len(x)-1])
	}
}

func TestCondition(t *testing.T) {
	pl := testPool(t, 4, 1)
	cp := Params{}
	cp.Defaults()
	for i, tmp := range pl.Templates {
		ct := cp.Condition(tmp)
		if ct.Resampled {
			t.Errorf("template %v resampled at equal rates\n", i)
		}
		if ct.NSamp() != cp.NSamp() || ct.NEl() != tmp.NEl() {
			t.Errorf("shape err: %v x %v\n", ct.NEl(), ct.NSamp())
		}
		for e := 0; e < tmp.NEl(); e++ {
			w := tmp.Wave(0, e)
			cw := ct.Wave(0, e)
			for s := range w {
				if math.Abs(cw[cp.NPre+s]-w[s]) > difTol {
					t.Errorf("identity condition err: el: %v, samp: %v\n", e, s)
					break
				}
			}
		}
	}

	// resample from 100 kHz
	hp := GenParams{}
	hp.Defaults()
	hp.NCells = 2
	hp.FS = 100000
	geom, _ := probe.Std.Geometry("SqMEA-2-20um")
	hpl := hp.GenPool(geom, rand.New(rand.NewSource(2)))
	for _, tmp := range hpl.Templates {
		ct := cp.Condition(tmp)
		if !ct.Resampled {
			t.Errorf("template not flagged as resampled\n")
		}
		if ct.NSamp() != cp.NSamp() {
			t.Errorf("resampled length err: %v != %v\n", ct.NSamp(), cp.NSamp())
		}
		if dif := math.Abs(ct.Amp-tmp.Amp) / tmp.Amp; dif > 0.05 {
			t.Errorf("resampled amplitude err: %v vs %v\n", ct.Amp, tmp.Amp)
		}
	}
}

func TestJitterZeroShift(t *testing.T) {
	pl := testPool(t, 3, 2)
	cp := Params{}
	cp.Defaults()
	cp.JitterSD = 0
	for _, tmp := range pl.Templates {
		ct := cp.Condition(tmp)
		rngs := []*rand.Rand{rand.New(rand.NewSource(1)), rand.New(rand.NewSource(2))}
		js := cp.Jitter(ct, rngs)
		if js.NJitters() != cp.NJitters {
			t.Fatalf("NJitters: %v\n", js.NJitters())
		}
		for p := 0; p < ct.NPos(); p++ {
			for j := 0; j < cp.NJitters; j++ {
				if js.Shift[p*cp.NJitters+j] != 0 {
					t.Errorf("nonzero shift with zero SD\n")
				}
				vr := js.Variant(p, j)
				orig := ct.Pos(p)
				for i := range vr {
					if dif := math.Abs(vr[i] - orig[i]); dif > 0.01*ct.Amp {
						t.Errorf("zero shift err: pos: %v, jit: %v, idx: %v, dif: %v\n", p, j, i, dif)
						break
					}
				}
			}
		}
	}
}

func TestJitterEnergy(t *testing.T) {
	pl := testPool(t, 3, 1)
	cp := Params{}
	cp.Defaults()
	for c, tmp := range pl.Templates {
		ct := cp.Condition(tmp)
		js := cp.Jitter(ct, []*rand.Rand{rand.New(rand.NewSource(uint64(c + 10)))})
		if js.Waves.Dim(2) != ct.NEl() || js.Waves.Dim(3) != ct.NSamp() {
			t.Errorf("jitter shape err: %v\n", js.Waves.Shapes())
		}
		en := floats.Dot(ct.Pos(0), ct.Pos(0))
		for j := 0; j < cp.NJitters; j++ {
			vr := js.Variant(0, j)
			ej := floats.Dot(vr, vr)
			if dif := math.Abs(ej-en) / en; dif > 0.05 {
				t.Errorf("energy err: cell: %v, jit: %v, shift: %v, rel dif: %v\n", c, j, js.Shift[j], dif)
			}
		}
	}
}

func TestOverlapping(t *testing.T) {
	mk := func(pk []float64) *Template {
		tp := NewTemplate(1, len(pk), 5, 32000)
		for e, a := range pk {
			tp.Wave(0, e)[2] = -a
		}
		tp.UpdateAmp()
		return tp
	}
	a := mk([]float64{100, 10, 5, 1})
	b := mk([]float64{80, 100, 5, 1}) // large on a's peak
	c := mk([]float64{1, 5, 10, 100}) // far from both
	ov := FindOverlapping([]*Template{a, b, c}, 0.6)
	if len(ov) != 1 || ov[0] != [2]int{0, 1} {
		t.Errorf("overlap err: %v\n", ov)
	}
	if !ov.Has(1, 0) || ov.Has(0, 2) {
		t.Errorf("Has err\n")
	}
	if a.PeakElectrode(0) != 0 || c.PeakElectrode(0) != 3 {
		t.Errorf("PeakElectrode err\n")
	}
	if a.Amp != 100 {
		t.Errorf("Amp err: %v\n", a.Amp)
	}
}
