// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package templ

import (
	"math"

	"github.com/emer/etable/minmax"
	"github.com/emer/spikesynth/probe"
	"github.com/goki/mat32"
	"golang.org/x/exp/rand"
)

// GenParams parameterize a synthetic template pool: biphasic spikes whose
// amplitude falls off with distance from the soma to each electrode.
// Synthetic pools stand in for biophysically simulated templates in tests,
// examples and benchmarks.
type GenParams struct {
	NCells   int        `def:"60" desc:"number of templates to generate"`
	ExcFrac  float64    `def:"0.7" desc:"fraction of templates with an excitatory category"`
	FS       float64    `def:"32000" desc:"sampling rate of the generated templates in Hz"`
	Dur      float64    `def:"0.007" desc:"template duration in seconds"`
	X        minmax.F64 `desc:"range of soma distance from the probe plane in um"`
	Margin   float32    `def:"10" desc:"extra distance beyond the probe edge for soma y, z placement, in um"`
	Amp      minmax.F64 `desc:"range of peak amplitude at zero distance, in uV"`
	R0       float64    `def:"20" desc:"distance in um at which amplitude falls to half"`
	NPos     int        `def:"1" min:"1" desc:"number of positions per template -- more than 1 generates drifting templates"`
	PosStep  float32    `def:"5" desc:"distance between positions along the drift path, in um"`
	DriftDir float32    `def:"90" desc:"mean drift direction angle in the y-z plane, in degrees (0 = +y, 90 = +z)"`
	DirJit   float32    `def:"10" desc:"uniform jitter of drift direction around DriftDir, in degrees"`
}

func (gp *GenParams) Defaults() {
	gp.NCells = 60
	gp.ExcFrac = 0.7
	gp.FS = 32000
	gp.Dur = 0.007
	gp.X.Set(10, 80)
	gp.Margin = 10
	gp.Amp.Set(80, 400)
	gp.R0 = 20
	gp.NPos = 1
	gp.PosStep = 5
	gp.DriftDir = 90
	gp.DirJit = 10
}

// GenPool generates a synthetic template pool for given probe
func (gp *GenParams) GenPool(geom *probe.Geometry, rng *rand.Rand) *Pool {
	pl := &Pool{Probe: geom.Name}
	ymin, ymax, zmin, zmax := extent(geom)
	ns := int(math.Round(gp.Dur * gp.FS))
	for c := 0; c < gp.NCells; c++ {
		var cat Category
		if rng.Float64() < gp.ExcFrac {
			cat = STPC + Category(rng.Intn(int(CategoryN-STPC)))
		} else {
			cat = Category(rng.Intn(int(STPC)))
		}
		loc := mat32.Vec3{
			X: float32(gp.X.Min + rng.Float64()*gp.X.Range()),
			Y: ymin - gp.Margin + rng.Float32()*(ymax-ymin+2*gp.Margin),
			Z: zmin - gp.Margin + rng.Float32()*(zmax-zmin+2*gp.Margin),
		}
		amp := gp.Amp.Min + rng.Float64()*gp.Amp.Range()
		ang := mat32.DegToRad(gp.DriftDir + (2*rng.Float32()-1)*gp.DirJit)
		dir := mat32.Vec3{X: 0, Y: mat32.Cos(ang), Z: mat32.Sin(ang)}
		tp := NewTemplate(gp.NPos, geom.NEl(), ns, gp.FS)
		tp.Cat = cat
		tp.Class = cat.Class()
		for p := 0; p < gp.NPos; p++ {
			tp.Locs[p] = loc.Add(dir.MulScalar(float32(p) * gp.PosStep))
			gp.genWaves(tp, p, geom, amp)
		}
		tp.UpdateAmp()
		pl.Templates = append(pl.Templates, tp)
	}
	return pl
}

// genWaves fills the waveforms of position pos for a cell of given amplitude
func (gp *GenParams) genWaves(tp *Template, pos int, geom *probe.Geometry, amp float64) {
	ns := tp.NSamp()
	// inhibitory cells have narrower spikes
	wid := 0.00025
	if tp.Class == Inhibitory {
		wid = 0.00015
	}
	t0 := 0.4 * gp.Dur
	for e := range geom.Pos {
		d := float64(tp.Locs[pos].DistTo(geom.Pos[e]))
		a := amp / (1 + (d/gp.R0)*(d/gp.R0))
		dl := d * 1e-7 // propagation delay, 0.1 ms per mm
		w := tp.Wave(pos, e)
		for i := 0; i < ns; i++ {
			t := float64(i)/gp.FS - t0 - dl
			na := math.Exp(-0.5 * (t / wid) * (t / wid))
			tr := (t - 3*wid) / (3 * wid)
			k := 0.35 * math.Exp(-0.5*tr*tr)
			w[i] = a * (k - na)
		}
	}
}

// extent returns the y and z bounds of the probe electrodes
func extent(geom *probe.Geometry) (ymin, ymax, zmin, zmax float32) {
	ymin, zmin = mat32.Infinity, mat32.Infinity
	ymax, zmax = -mat32.Infinity, -mat32.Infinity
	for _, p := range geom.Pos {
		ymin = mat32.Min(ymin, p.Y)
		ymax = mat32.Max(ymax, p.Y)
		zmin = mat32.Min(zmin, p.Z)
		zmax = mat32.Max(zmax, p.Z)
	}
	return
}
