// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package cellsel selects the cells of a recording from a template pool.

Candidates are filtered by peak amplitude, distance from the probe and, for
drifting recordings, drift direction.  Excitatory cells are then drawn at
random, followed by inhibitory cells, and a candidate is accepted only if it
is farther than MinDist from every cell accepted so far.  The selection is
fully determined by the generator passed in.
*/
package cellsel

import (
	"fmt"
	"sort"

	"github.com/emer/etable/minmax"
	"github.com/emer/spikesynth/templ"
	"github.com/goki/mat32"
	"golang.org/x/exp/rand"
)

// Params are the cell selection parameters
type Params struct {
	NExc    int        `def:"7" min:"0" desc:"number of excitatory cells"`
	NInh    int        `def:"3" min:"0" desc:"number of inhibitory cells"`
	NInt    int        `def:"0" min:"0" desc:"number of intermittent cells, chosen among the selected cells"`
	BoundX  minmax.F64 `desc:"allowed range of soma distance from the probe plane (x) in um -- a zero range imposes no bound"`
	MinAmp  float64    `def:"50" desc:"minimum template peak amplitude in uV"`
	MinDist float64    `def:"25" desc:"accepted cells must be farther apart than this distance in um"`
	Drift   bool       `desc:"select drifting templates: only cells whose drift direction is within AngTol of PrefDir are eligible"`
	PrefDir float32    `def:"90" viewif:"Drift" desc:"preferred drift direction angle in the y-z plane, in degrees (0 = +y, 90 = +z)"`
	AngTol  float32    `def:"15" viewif:"Drift" desc:"tolerance on the angle between a cell's drift direction and PrefDir, in degrees"`
}

func (sp *Params) Defaults() {
	sp.NExc = 7
	sp.NInh = 3
	sp.NInt = 0
	sp.BoundX.Set(10, 60)
	sp.MinAmp = 50
	sp.MinDist = 25
	sp.PrefDir = 90
	sp.AngTol = 15
}

// NCells returns the total number of cells to select
func (sp *Params) NCells() int {
	return sp.NExc + sp.NInh
}

// PrefVec returns the unit vector of the preferred drift direction
func (sp *Params) PrefVec() mat32.Vec3 {
	ang := mat32.DegToRad(sp.PrefDir)
	return mat32.Vec3{X: 0, Y: mat32.Cos(ang), Z: mat32.Sin(ang)}
}

// Eligible returns true if the template passes the amplitude, spatial and
// drift direction filters
func (sp *Params) Eligible(tp *templ.Template) bool {
	if tp.Amp < sp.MinAmp {
		return false
	}
	if sp.BoundX.Range() > 0 {
		x := float64(tp.Loc().X)
		if x < sp.BoundX.Min || x > sp.BoundX.Max {
			return false
		}
	}
	if sp.Drift {
		dir, ln := tp.DriftDir()
		if ln == 0 {
			return false
		}
		ang := mat32.RadToDeg(mat32.Acos(mat32.Clamp(dir.Dot(sp.PrefVec()), -1, 1)))
		if ang > sp.AngTol {
			return false
		}
	}
	return true
}

// Selection is the result of cell selection: indexes into the template pool
type Selection struct {
	Exc []int `desc:"selected excitatory cells, in draw order"`
	Inh []int `desc:"selected inhibitory cells, in draw order"`
	Int []int `desc:"positions in All of the intermittent cells, in ascending order"`
}

// All returns the excitatory followed by the inhibitory cells
func (sl *Selection) All() []int {
	all := make([]int, 0, len(sl.Exc)+len(sl.Inh))
	all = append(all, sl.Exc...)
	return append(all, sl.Inh...)
}

// IsInt returns true if the cell at position i of All is intermittent
func (sl *Selection) IsInt(i int) bool {
	for _, ii := range sl.Int {
		if ii == i {
			return true
		}
	}
	return false
}

// InsufficientCellsError is returned when the pool cannot supply the
// requested number of cells of a class under the selection constraints
type InsufficientCellsError struct {
	Class     templ.Class
	Requested int
	Found     int
}

func (e *InsufficientCellsError) Error() string {
	return fmt.Sprintf("cellsel: insufficient %v cells: requested %d, found %d", e.Class, e.Requested, e.Found)
}

// Select draws the cells from the pool
func (sp *Params) Select(pl *templ.Pool, rng *rand.Rand) (*Selection, error) {
	var cand [templ.ClassN][]int
	for i, tp := range pl.Templates {
		if sp.Eligible(tp) {
			cand[tp.Class] = append(cand[tp.Class], i)
		}
	}
	sl := &Selection{}
	var acc []mat32.Vec3
	var err error
	sl.Exc, acc, err = sp.draw(pl, cand[templ.Excitatory], templ.Excitatory, sp.NExc, acc, rng)
	if err != nil {
		return nil, err
	}
	sl.Inh, _, err = sp.draw(pl, cand[templ.Inhibitory], templ.Inhibitory, sp.NInh, acc, rng)
	if err != nil {
		return nil, err
	}
	if sp.NInt > 0 {
		nc := sp.NCells()
		if sp.NInt > nc {
			return nil, &InsufficientCellsError{Class: templ.Excitatory, Requested: sp.NInt, Found: nc}
		}
		perm := rng.Perm(nc)[:sp.NInt]
		sl.Int = append(sl.Int, perm...)
		sort.Ints(sl.Int)
	}
	return sl, nil
}

// draw draws n cells from cand, rejecting those within MinDist of any
// location in acc, and returns the accepted cells and the extended acc
func (sp *Params) draw(pl *templ.Pool, cand []int, cls templ.Class, n int, acc []mat32.Vec3, rng *rand.Rand) ([]int, []mat32.Vec3, error) {
	rem := append([]int(nil), cand...)
	var sel []int
	for len(sel) < n {
		if len(rem) == 0 {
			return nil, acc, &InsufficientCellsError{Class: cls, Requested: n, Found: len(sel)}
		}
		ri := rng.Intn(len(rem))
		ci := rem[ri]
		rem = append(rem[:ri], rem[ri+1:]...)
		loc := pl.Templates[ci].Loc()
		ok := true
		for _, al := range acc {
			if float64(loc.DistTo(al)) <= sp.MinDist {
				ok = false
				break
			}
		}
		if ok {
			sel = append(sel, ci)
			acc = append(acc, loc)
		}
	}
	return sel, acc, nil
}
