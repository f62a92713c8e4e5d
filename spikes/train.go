// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package spikes generates the ground-truth spike trains of a recording.

Trains are renewal processes with an absolute refractory period, optionally
gated into alternating burst and quiet intervals for intermittent cells.
Trains of spatially overlapping cells can be made partially synchronous, and
all trains are annotated with the spikes that overlap in time with spikes of
other cells.
*/
package spikes

import (
	"math"
	"sort"

	"github.com/emer/spikesynth/templ"
	"github.com/goki/ki/kit"
	"github.com/goki/mat32"
)

// OverlapType labels a spike by its temporal overlap with spikes of other cells
type OverlapType int32

//go:generate stringer -type=OverlapType

var KiT_OverlapType = kit.Enums.AddEnum(OverlapTypeN, kit.NotBitFlag, nil)

func (ev OverlapType) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *OverlapType) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// NoOverlap means no spike of another cell is within the overlap window
	NoOverlap OverlapType = iota

	// TempOverlap means a spike of another cell is within the overlap window
	TempOverlap

	// SpatioTempOverlap means a spike of a spatially overlapping cell is
	// within the overlap window
	SpatioTempOverlap

	OverlapTypeN
)

// Train is the spike train of one cell, with its ground-truth annotations
type Train struct {
	Times        []float64      `desc:"spike times in seconds, strictly increasing, within [TStart, TStop)"`
	TStart       float64        `desc:"start time of the train in seconds"`
	TStop        float64        `desc:"stop time of the train in seconds (exclusive)"`
	Cell         int            `desc:"index of the cell's template in the pool"`
	Cat          templ.Category `desc:"cell category"`
	Class        templ.Class    `desc:"excitatory / inhibitory class"`
	Loc          mat32.Vec3     `desc:"initial soma location in um"`
	Rate         float64        `desc:"target mean firing rate in Hz"`
	SNR          float64        `desc:"peak amplitude of the template relative to the noise level"`
	Intermittent bool           `desc:"true for intermittent (bursting) cells"`
	Bursts       [][2]float64   `desc:"burst intervals [start, stop) for intermittent cells"`
	SyncWith     []int          `desc:"indexes of the trains this train was synchronized with"`
	NSync        int            `desc:"number of synchronous spikes inserted into this train"`
	Overlap      []OverlapType  `desc:"temporal overlap label of each spike"`
}

// Len returns the number of spikes
func (tr *Train) Len() int { return len(tr.Times) }

// Dur returns the duration of the train
func (tr *Train) Dur() float64 { return tr.TStop - tr.TStart }

// MeanRate returns the observed firing rate
func (tr *Train) MeanRate() float64 {
	if tr.Dur() <= 0 {
		return 0
	}
	return float64(len(tr.Times)) / tr.Dur()
}

// ISIs returns the inter-spike intervals
func (tr *Train) ISIs() []float64 {
	if len(tr.Times) < 2 {
		return nil
	}
	isi := make([]float64, len(tr.Times)-1)
	for i := range isi {
		isi[i] = tr.Times[i+1] - tr.Times[i]
	}
	return isi
}

// Sample returns the nearest sample index of time t at rate fs
func (tr *Train) Sample(t, fs float64) int {
	return int(math.Round((t - tr.TStart) * fs))
}

// Raster returns the nearest-sample indexes of the spikes at rate fs
func (tr *Train) Raster(fs float64) Raster {
	rs := make(Raster, len(tr.Times))
	for i, t := range tr.Times {
		rs[i] = tr.Sample(t, fs)
	}
	return rs
}

// Raster is the ascending list of sample indexes at which a cell spikes
type Raster []int

// Dense returns the binary indicator signal of length n
func (rs Raster) Dense(n int) []float64 {
	d := make([]float64, n)
	for _, s := range rs {
		if s >= 0 && s < n {
			d[s] = 1
		}
	}
	return d
}

// Range returns the positions [st, ed) of the spikes with samples in [from, to)
func (rs Raster) Range(from, to int) (st, ed int) {
	st = sort.SearchInts(rs, from)
	ed = sort.SearchInts(rs, to)
	return
}
