// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package synth

import (
	"fmt"
	"math"

	"github.com/c2h5oh/datasize"
	"github.com/emer/spikesynth/ampmod"
	"github.com/emer/spikesynth/cellsel"
	"github.com/emer/spikesynth/drift"
	"github.com/emer/spikesynth/noise"
	"github.com/emer/spikesynth/spikes"
	"github.com/emer/spikesynth/templ"
)

// Params are all the parameters of a synthesis run
type Params struct {
	Seed        int64   `desc:"master random seed -- every stochastic stage derives its own generator from it"`
	Dur         float64 `def:"10" min:"0" desc:"recording duration in seconds"`
	FS          float64 `def:"32000" min:"1" desc:"recording sampling rate in Hz"`
	Probe       string  `def:"SqMEA-10-15um" desc:"name of the probe geometry"`
	NThreads    int     `def:"1" min:"1" desc:"number of parallel threads used for convolution"`
	ChunkDur    float64 `def:"0" min:"0" desc:"duration in seconds of independently assembled recording chunks -- 0 assembles the whole recording at once unless MaxChunkMem is set"`
	MaxChunkMem string  `desc:"memory bound for one assembly chunk, e.g. 512MB -- sets ChunkDur when ChunkDur is 0"`
	OverlapThr  float64 `def:"0.6" min:"0" max:"1" desc:"fraction of a template's peak that another template must reach on its peak electrode to be spatially overlapping"`
	SyncRate    float64 `def:"0" min:"0" desc:"fraction of the sparser train's spikes made synchronous for each spatially overlapping pair -- 0 adds no synchrony"`
	Drifting    bool    `desc:"cells drift along their template positions"`
	Sources     bool    `desc:"compute the ground-truth source signal of each cell on its peak electrode"`
	FFT         bool    `desc:"convolve stationary cells in the frequency domain"`
	Verbose     bool    `desc:"log the progress of each stage"`

	Cells  cellsel.Params `view:"inline" desc:"cell selection"`
	Templ  templ.Params   `view:"inline" desc:"template conditioning"`
	Spikes spikes.Params  `view:"inline" desc:"spike train generation"`
	Amp    ampmod.Params  `view:"inline" desc:"amplitude modulation"`
	Drift  drift.Params   `view:"inline" viewif:"Drifting" desc:"drift"`
	Noise  noise.Params   `view:"inline" desc:"noise and filtering"`
}

func (pr *Params) Defaults() {
	pr.Seed = 0
	pr.Dur = 10
	pr.FS = 32000
	pr.Probe = "SqMEA-10-15um"
	pr.NThreads = 1
	pr.ChunkDur = 0
	pr.OverlapThr = 0.6
	pr.SyncRate = 0
	pr.Cells.Defaults()
	pr.Templ.Defaults()
	pr.Spikes.Defaults()
	pr.Amp.Defaults()
	pr.Drift.Defaults()
	pr.Noise.Defaults()
	pr.Update()
}

// Update propagates the recording-wide settings to the component params
func (pr *Params) Update() {
	pr.Templ.FS = pr.FS
	pr.Templ.Update()
	pr.Cells.Drift = pr.Drifting
}

// ConfigurationError is returned for an invalid or missing parameter
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("synth: invalid configuration: %s: %s", e.Field, e.Reason)
}

func cfgErr(field, format string, args ...any) error {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Validate checks the parameters, returning a *ConfigurationError for the
// first invalid one
func (pr *Params) Validate() error {
	switch {
	case !finite(pr.Dur) || pr.Dur <= 0:
		return cfgErr("Dur", "duration must be a positive number of seconds, got %v", pr.Dur)
	case !finite(pr.FS) || pr.FS <= 0:
		return cfgErr("FS", "sampling rate must be positive, got %v", pr.FS)
	case pr.Probe == "":
		return cfgErr("Probe", "no probe geometry named")
	case pr.NThreads < 0:
		return cfgErr("NThreads", "must be >= 0, got %v", pr.NThreads)
	case pr.ChunkDur < 0:
		return cfgErr("ChunkDur", "must be >= 0, got %v", pr.ChunkDur)
	case pr.OverlapThr <= 0 || pr.OverlapThr > 1:
		return cfgErr("OverlapThr", "must be in (0, 1], got %v", pr.OverlapThr)
	case !finite(pr.SyncRate) || pr.SyncRate < 0:
		return cfgErr("SyncRate", "must be >= 0, got %v", pr.SyncRate)
	case pr.Cells.NExc < 0 || pr.Cells.NInh < 0 || pr.Cells.NInt < 0:
		return cfgErr("Cells", "cell counts must be >= 0, got %d / %d / %d", pr.Cells.NExc, pr.Cells.NInh, pr.Cells.NInt)
	case pr.Cells.NCells() == 0:
		return cfgErr("Cells", "no cells requested")
	case pr.Cells.NInt > pr.Cells.NCells():
		return cfgErr("Cells.NInt", "%d intermittent cells exceed %d cells", pr.Cells.NInt, pr.Cells.NCells())
	case pr.Templ.Dur <= 0 || pr.Templ.PadPre < 0 || pr.Templ.PadPost < 0:
		return cfgErr("Templ", "template duration must be positive and padding >= 0")
	case pr.Templ.NJitters < 0:
		return cfgErr("Templ.NJitters", "must be >= 0, got %v", pr.Templ.NJitters)
	case pr.Templ.Upsample < 1:
		return cfgErr("Templ.Upsample", "must be >= 1, got %v", pr.Templ.Upsample)
	case pr.Spikes.Ref < 0:
		return cfgErr("Spikes.Ref", "refractory period must be >= 0, got %v", pr.Spikes.Ref)
	case pr.Spikes.RateExc <= 0 || pr.Spikes.RateInh <= 0 || pr.Spikes.MinRate <= 0:
		return cfgErr("Spikes", "firing rates must be positive")
	case pr.Spikes.Ref > 0 && pr.Spikes.MinRate*pr.Spikes.Ref >= 1:
		return cfgErr("Spikes.MinRate", "rate %v not achievable with refractory period %v", pr.Spikes.MinRate, pr.Spikes.Ref)
	case pr.Cells.NInt > 0 && (pr.Spikes.RateInt <= 0 || pr.Spikes.TInt <= 0 || pr.Spikes.TBurst <= 0):
		return cfgErr("Spikes", "intermittent rate and interval durations must be positive")
	case pr.Amp.Mode < 0 || pr.Amp.Mode >= ampmod.ModTypesN:
		return cfgErr("Amp.Mode", "unknown modulation mode %d", pr.Amp.Mode)
	case pr.Amp.Mode == ampmod.ModISI && (pr.Amp.MemISI <= 0 || pr.Amp.NSpikes < 0):
		return cfgErr("Amp", "ISI modulation needs MemISI > 0 and NSpikes >= 0")
	case pr.Drifting && (pr.Drift.Speed < 0 || pr.Drift.Step <= 0):
		return cfgErr("Drift", "speed must be >= 0 and step > 0")
	case pr.Noise.Mode < 0 || pr.Noise.Mode >= noise.ModesN:
		return cfgErr("Noise.Mode", "unknown noise mode %d", pr.Noise.Mode)
	case !finite(pr.Noise.Level) || pr.Noise.Level < 0:
		return cfgErr("Noise.Level", "must be >= 0, got %v", pr.Noise.Level)
	case pr.Noise.ChunkDur < 0:
		return cfgErr("Noise.ChunkDur", "must be >= 0, got %v", pr.Noise.ChunkDur)
	case pr.Noise.Filter && (pr.Noise.Order < 1 || pr.Noise.Band.Min <= 0 || pr.Noise.Band.Max <= pr.Noise.Band.Min):
		return cfgErr("Noise.Band", "filter needs order >= 1 and 0 < Min < Max, got %d, [%v, %v]", pr.Noise.Order, pr.Noise.Band.Min, pr.Noise.Band.Max)
	}
	if _, err := pr.ChunkMem(); err != nil {
		return err
	}
	return nil
}

// ChunkMem returns MaxChunkMem parsed, 0 if not set
func (pr *Params) ChunkMem() (datasize.ByteSize, error) {
	var bs datasize.ByteSize
	if pr.MaxChunkMem == "" {
		return 0, nil
	}
	if err := bs.UnmarshalText([]byte(pr.MaxChunkMem)); err != nil {
		return 0, cfgErr("MaxChunkMem", "%v", err)
	}
	if bs == 0 {
		return 0, cfgErr("MaxChunkMem", "must be positive")
	}
	return bs, nil
}

// AssemblyChunkDur returns the assembly chunk duration for ncells cells on
// nel electrodes: ChunkDur if set, otherwise the longest duration, in whole
// milliseconds, whose per-cell contributions and accumulator fit in
// MaxChunkMem, or 0 for no chunking.
func (pr *Params) AssemblyChunkDur(ncells, nel int) float64 {
	if pr.ChunkDur > 0 {
		return pr.ChunkDur
	}
	bs, err := pr.ChunkMem()
	if err != nil || bs == 0 {
		return 0
	}
	perSec := 8 * float64(nel) * float64(ncells+1) * pr.FS
	cd := math.Floor(1000*float64(bs.Bytes())/perSec) / 1000
	if cd <= 0 {
		cd = 0.001
	}
	if cd >= pr.Dur {
		return 0
	}
	return cd
}
