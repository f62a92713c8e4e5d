// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package synth

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/emer/spikesynth/ampmod"
	"github.com/emer/spikesynth/cellsel"
	"github.com/emer/spikesynth/drift"
	"github.com/emer/spikesynth/noise"
	"github.com/emer/spikesynth/probe"
	"github.com/emer/spikesynth/spikes"
	"github.com/emer/spikesynth/templ"
)

// MetaGeneral is the recording-wide part of Meta
type MetaGeneral struct {
	FS       float64    `desc:"sampling rate in Hz"`
	Dur      float64    `desc:"duration in seconds"`
	NSamp    int        `desc:"number of samples"`
	Seed     int64      `desc:"master seed"`
	Probe    string     `desc:"probe geometry name"`
	Pitch    [2]float32 `desc:"electrode pitch in um"`
	Dim      [2]int     `desc:"electrode grid dimensions"`
	NEl      int        `desc:"number of electrodes"`
	Drifting bool       `desc:"cells drift"`
}

// MetaExecution records how the recording was assembled.  Chunking and the
// convolution method affect the samples, so they are needed to reproduce it.
type MetaExecution struct {
	NThreads    int     `desc:"number of convolution threads"`
	ChunkDur    float64 `desc:"configured assembly chunk duration in seconds"`
	MaxChunkMem string  `desc:"configured assembly chunk memory bound"`
	AsmChunkDur float64 `desc:"assembly chunk duration actually used -- 0 for the whole recording"`
	FFT         bool    `desc:"stationary cells convolved in the frequency domain"`
	Sources     bool    `desc:"per-cell source signals computed"`
}

// MetaSynchrony records spatial overlap and synchrony
type MetaSynchrony struct {
	OverlapThr float64  `desc:"spatial overlap threshold"`
	SyncRate   float64  `desc:"synchrony rate"`
	Pairs      [][2]int `desc:"spatially overlapping cell pairs"`
	NSync      []int    `desc:"number of synchronous spikes added to each cell"`
}

// MetaCells records which templates were used
type MetaCells struct {
	PoolIdx      []int        `desc:"pool index of each cell"`
	Cats         []string     `desc:"category of each cell"`
	Intermittent []int        `desc:"cell indexes of the intermittent cells"`
	Resampled    bool         `desc:"templates were resampled to the recording rate"`
	Locs         [][3]float32 `desc:"initial location of each cell in um"`
	LocsFinal    [][3]float32 `desc:"final location of each drifting cell in um"`
}

// Meta is the metadata of a recording, written along with it as TOML so
// that the run can be identified and reproduced
type Meta struct {
	General    MetaGeneral    `toml:"general"`
	Execution  MetaExecution  `toml:"execution"`
	Cells      MetaCells      `toml:"cells"`
	Selection  cellsel.Params `toml:"selection"`
	Templates  templ.Params   `toml:"templates"`
	Spikegen   spikes.Params  `toml:"spikegen"`
	Synchrony  MetaSynchrony  `toml:"synchrony"`
	Modulation ampmod.Params  `toml:"modulation"`
	Drift      drift.Params   `toml:"drift"`
	Noise      noise.Params   `toml:"noise"`
}

// NewMeta returns the metadata of rs recorded on geom
func NewMeta(rs *Result, geom *probe.Geometry, asmChunk float64) *Meta {
	pr := &rs.Params
	md := &Meta{}
	md.General = MetaGeneral{FS: pr.FS, Dur: pr.Dur, NSamp: rs.NSamp, Seed: pr.Seed, Probe: geom.Name,
		Pitch: [2]float32{geom.Pitch.X, geom.Pitch.Y}, Dim: geom.Dim, NEl: geom.NEl(), Drifting: pr.Drifting}
	md.Execution = MetaExecution{NThreads: pr.NThreads, ChunkDur: pr.ChunkDur, MaxChunkMem: pr.MaxChunkMem,
		AsmChunkDur: asmChunk, FFT: pr.FFT, Sources: pr.Sources}
	md.Selection = pr.Cells
	md.Templates = pr.Templ
	md.Spikegen = pr.Spikes
	md.Modulation = pr.Amp
	md.Drift = pr.Drift
	md.Noise = pr.Noise
	md.Synchrony = MetaSynchrony{OverlapThr: pr.OverlapThr, SyncRate: pr.SyncRate, Pairs: rs.Overlap}
	mc := &md.Cells
	mc.PoolIdx = rs.Cells
	mc.Intermittent = rs.Sel.Int
	for i, tr := range rs.Trains {
		md.Synchrony.NSync = append(md.Synchrony.NSync, tr.NSync)
		mc.Cats = append(mc.Cats, tr.Cat.String())
		mc.Locs = append(mc.Locs, [3]float32{tr.Loc.X, tr.Loc.Y, tr.Loc.Z})
		if rs.Templates[i].Resampled {
			mc.Resampled = true
		}
	}
	for _, l := range rs.LocsFinal {
		mc.LocsFinal = append(mc.LocsFinal, [3]float32{l.X, l.Y, l.Z})
	}
	return md
}

// Write writes the metadata as TOML to filename
func (md *Meta) Write(filename string) error {
	fp, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer fp.Close()
	if err := toml.NewEncoder(fp).Encode(md); err != nil {
		return fmt.Errorf("synth: writing %s: %w", filename, err)
	}
	return nil
}

// ReadMeta reads metadata written by Meta.Write
func ReadMeta(filename string) (*Meta, error) {
	md := &Meta{}
	if _, err := toml.DecodeFile(filename, md); err != nil {
		return nil, fmt.Errorf("synth: reading %s: %w", filename, err)
	}
	return md, nil
}

// Params returns run parameters that reproduce the recording from the same
// template pool.  ChunkDur is set to the chunk duration that was used, so a
// memory bound that chose it is not re-evaluated.
func (md *Meta) Params() *Params {
	pr := &Params{}
	pr.Defaults()
	pr.Seed = md.General.Seed
	pr.Dur = md.General.Dur
	pr.FS = md.General.FS
	pr.Probe = md.General.Probe
	pr.Drifting = md.General.Drifting
	ex := &md.Execution
	pr.NThreads = ex.NThreads
	pr.ChunkDur = ex.AsmChunkDur
	pr.MaxChunkMem = ex.MaxChunkMem
	pr.FFT = ex.FFT
	pr.Sources = ex.Sources
	pr.OverlapThr = md.Synchrony.OverlapThr
	pr.SyncRate = md.Synchrony.SyncRate
	pr.Cells = md.Selection
	pr.Templ = md.Templates
	pr.Spikes = md.Spikegen
	pr.Amp = md.Modulation
	pr.Drift = md.Drift
	pr.Noise = md.Noise
	pr.Update()
	return pr
}
