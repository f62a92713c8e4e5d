// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package templ

import (
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Features returns the mixing feature of each electrode at given position:
// the magnitude of the negative (sodium) peak of the waveform.
func (tp *Template) Features(pos int) []float64 {
	return WaveFeatures(tp.Pos(pos), tp.NEl())
}

// WaveFeatures returns the mixing features of an [electrodes * samples]
// waveform, such as a drift blend of two positions
func WaveFeatures(wv []float64, nel int) []float64 {
	ln := len(wv) / nel
	ft := make([]float64, nel)
	for e := range ft {
		ft[e] = -floats.Min(wv[e*ln : (e+1)*ln])
	}
	return ft
}

// PeakElectrode returns the electrode with the largest mixing feature at given position
func (tp *Template) PeakElectrode(pos int) int {
	return floats.MaxIdx(tp.Features(pos))
}

// OverlapSet is a sorted list of unordered cell index pairs, with the
// smaller index first
type OverlapSet [][2]int

// Has returns true if the pair (a, b) in either order is in the set
func (ov OverlapSet) Has(a, b int) bool {
	if a > b {
		a, b = b, a
	}
	i := sort.Search(len(ov), func(i int) bool {
		return ov[i][0] > a || (ov[i][0] == a && ov[i][1] >= b)
	})
	return i < len(ov) && ov[i][0] == a && ov[i][1] == b
}

// Overlapping returns true if tb has a large amplitude on the peak electrode
// of ta: the minimum of tb on that electrode is below thr times the global
// minimum of tb.  Only the first position of each template is used.
func Overlapping(ta, tb *Template, thr float64) bool {
	pk := ta.PeakElectrode(0)
	onpk := floats.Min(tb.Wave(0, pk))
	glob := floats.Min(tb.Pos(0))
	return onpk < thr*glob
}

// FindOverlapping returns the pairs of templates that overlap in either order
func FindOverlapping(tmps []*Template, thr float64) OverlapSet {
	var ov OverlapSet
	for i := range tmps {
		for j := i + 1; j < len(tmps); j++ {
			if Overlapping(tmps[i], tmps[j], thr) || Overlapping(tmps[j], tmps[i], thr) {
				ov = append(ov, [2]int{i, j})
			}
		}
	}
	return ov
}
