// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package drift models the slow displacement of cells relative to the probe.

A cell moves at constant speed along the path of its pre-computed spatial
template samples, starting at the drift onset, and stops at the last sample.
The kernel used for convolution is updated at fixed time steps, either by
snapping to the nearest spatial sample or by blending the two samples that
bracket the current position.
*/
package drift

import (
	"math"

	"github.com/emer/spikesynth/templ"
	"github.com/goki/mat32"
)

// Params are the drift parameters
type Params struct {
	Speed  float64 `def:"10" min:"0" desc:"drift speed in um per minute"`
	Onset  float64 `def:"0" min:"0" desc:"time in seconds at which cells start drifting"`
	Step   float64 `def:"1" min:"0" desc:"time step in seconds between kernel updates"`
	Interp bool    `desc:"blend the two spatial samples bracketing the position instead of using the nearest one"`
}

func (dp *Params) Defaults() {
	dp.Speed = 10
	dp.Onset = 0
	dp.Step = 1
}

// Steps returns the start times of the kernel update steps in [tstart, tstop)
func (dp *Params) Steps(tstart, tstop float64) []float64 {
	var st []float64
	if dp.Step <= 0 {
		return []float64{tstart}
	}
	for i := 0; ; i++ {
		t := tstart + float64(i)*dp.Step
		if t >= tstop {
			break
		}
		st = append(st, t)
	}
	return st
}

// Trajectory is the linear drift path of one cell
type Trajectory struct {
	Init    mat32.Vec3   `desc:"initial location in um"`
	Dir     mat32.Vec3   `desc:"unit drift direction"`
	Speed   float64      `desc:"speed in um per second"`
	Onset   float64      `desc:"drift onset time in seconds"`
	MaxDist float64      `desc:"distance to the last spatial sample in um -- drift stops there"`
	PathD   []float64    `desc:"distance along the path of each spatial sample, from the first"`
	Locs    []mat32.Vec3 `desc:"spatial sample locations"`
}

// Trajectory returns the drift trajectory for the template.  The cell moves
// along its own template path, whose direction cell selection keeps within
// the angular tolerance of the preferred direction.
func (dp *Params) Trajectory(tp *templ.Template) *Trajectory {
	dir, ln := tp.DriftDir()
	tj := &Trajectory{Init: tp.Loc(), Dir: dir, Speed: dp.Speed / 60, Onset: dp.Onset, MaxDist: float64(ln)}
	tj.Locs = tp.Locs
	tj.PathD = make([]float64, len(tp.Locs))
	for i, l := range tp.Locs {
		tj.PathD[i] = float64(l.DistTo(tp.Locs[0]))
	}
	return tj
}

// Vel returns the velocity vector in um per second
func (tj *Trajectory) Vel() mat32.Vec3 {
	return tj.Dir.MulScalar(float32(tj.Speed))
}

// Dist returns the distance travelled at time t, clamped to MaxDist
func (tj *Trajectory) Dist(t float64) float64 {
	return math.Min(math.Max(0, t-tj.Onset)*tj.Speed, tj.MaxDist)
}

// Pos returns the location at time t
func (tj *Trajectory) Pos(t float64) mat32.Vec3 {
	return tj.Init.Add(tj.Dir.MulScalar(float32(tj.Dist(t))))
}

// Nearest returns the index of the spatial sample nearest to the location at time t
func (tj *Trajectory) Nearest(t float64) int {
	pos := tj.Pos(t)
	best := 0
	bd := float32(math.MaxFloat32)
	for i, l := range tj.Locs {
		if d := l.DistTo(pos); d < bd {
			bd = d
			best = i
		}
	}
	return best
}

// Blend is a weighted combination of two spatial samples: (1-W) * A + W * B
type Blend struct {
	A, B int
	W    float64
}

// Bracket returns the blend of the spatial samples bracketing the location at time t
func (tj *Trajectory) Bracket(t float64) Blend {
	d := tj.Dist(t)
	np := len(tj.PathD)
	if np == 1 || d <= tj.PathD[0] {
		return Blend{A: 0, B: 0}
	}
	for i := 1; i < np; i++ {
		if d <= tj.PathD[i] {
			seg := tj.PathD[i] - tj.PathD[i-1]
			if seg <= 0 {
				return Blend{A: i, B: i}
			}
			return Blend{A: i - 1, B: i, W: (d - tj.PathD[i-1]) / seg}
		}
	}
	return Blend{A: np - 1, B: np - 1}
}

// BlendLoc returns the location of the blend of two spatial samples
func (tj *Trajectory) BlendLoc(bl Blend) mat32.Vec3 {
	a, b := tj.Locs[bl.A], tj.Locs[bl.B]
	return a.Add(b.Sub(a).MulScalar(float32(bl.W)))
}

// Kernel returns the blend used as the convolution kernel at time t:
// a single sample unless interp is set
func (tj *Trajectory) Kernel(t float64, interp bool) Blend {
	if interp {
		return tj.Bracket(t)
	}
	n := tj.Nearest(t)
	return Blend{A: n, B: n}
}
