// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spikes

import (
	"math"
	"sort"

	"github.com/emer/spikesynth/templ"
	"golang.org/x/exp/rand"
)

// AddSynchrony makes the trains of pair partially synchronous.  The target
// number of synchronous spikes is rate times the spike count of the sparser
// train; spikes of the sparser train already sharing a sample with the
// denser train count toward it.  The remainder is inserted into the denser
// train at the times of randomly chosen spikes of the sparser train, skipping
// those that would violate the refractory period ref.  If not enough such
// spikes exist, fewer are inserted.  A rate of 0 leaves both trains
// unchanged.  Returns the number of inserted spikes.
func AddSynchrony(trains []*Train, pair [2]int, rate, fs, ref float64, rng *rand.Rand) int {
	if rate <= 0 {
		return 0
	}
	si, di := pair[0], pair[1]
	if trains[si].Len() > trains[di].Len() {
		si, di = di, si
	}
	sp, dn := trains[si], trains[di]
	target := int(math.Round(rate * float64(sp.Len())))

	dset := make(map[int]bool, dn.Len())
	for _, s := range dn.Raster(fs) {
		dset[s] = true
	}
	aligned := 0
	var cand []float64
	for _, t := range sp.Times {
		if dset[dn.Sample(t, fs)] {
			aligned++
			continue
		}
		if !dn.violates(t, ref) {
			cand = append(cand, t)
		}
	}
	sp.SyncWith = append(sp.SyncWith, di)
	dn.SyncWith = append(dn.SyncWith, si)
	need := target - aligned
	if need <= 0 || len(cand) == 0 {
		return 0
	}
	if need > len(cand) {
		need = len(cand)
	}
	perm := rng.Perm(len(cand))
	for _, ci := range perm[:need] {
		dn.insert(cand[ci])
	}
	dn.NSync += need
	return need
}

// violates returns true if a spike at t would be within ref of an existing spike
func (tr *Train) violates(t, ref float64) bool {
	i := sort.SearchFloat64s(tr.Times, t)
	if i < len(tr.Times) && tr.Times[i]-t < ref {
		return true
	}
	if i > 0 && t-tr.Times[i-1] < ref {
		return true
	}
	return false
}

// insert adds a spike at t, keeping Times sorted
func (tr *Train) insert(t float64) {
	i := sort.SearchFloat64s(tr.Times, t)
	tr.Times = append(tr.Times, 0)
	copy(tr.Times[i+1:], tr.Times[i:])
	tr.Times[i] = t
	tr.Overlap = append(tr.Overlap, NoOverlap)
}

// AnnotateOverlap labels each spike of each train that is within window of a
// spike of another train: SpatioTempOverlap if the two cells are in pairs,
// TempOverlap otherwise.
func AnnotateOverlap(trains []*Train, window float64, pairs templ.OverlapSet) {
	for _, tr := range trains {
		tr.Overlap = make([]OverlapType, tr.Len())
	}
	for i, tr := range trains {
		for j, ot := range trains {
			if i == j || ot.Len() == 0 {
				continue
			}
			lab := TempOverlap
			if pairs.Has(i, j) {
				lab = SpatioTempOverlap
			}
			for s, t := range tr.Times {
				if tr.Overlap[s] >= lab {
					continue
				}
				k := sort.SearchFloat64s(ot.Times, t-window)
				if k < len(ot.Times) && ot.Times[k] <= t+window {
					tr.Overlap[s] = lab
				}
			}
		}
	}
}

// OverlapCounts returns the number of spikes with each overlap label
func (tr *Train) OverlapCounts() [OverlapTypeN]int {
	var n [OverlapTypeN]int
	for _, ov := range tr.Overlap {
		n[ov]++
	}
	return n
}
