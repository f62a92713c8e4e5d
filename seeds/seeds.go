// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package seeds derives independent, reproducible random generators for each
stochastic stage of recording synthesis.

Every stage gets its own generator keyed by the master seed, the stage and
any number of indexes (cell, jitter position, chunk), so that the values
drawn by one stage never depend on how many values another stage consumed,
or on the order in which worker threads run.
*/
package seeds

import (
	"github.com/goki/ki/kit"
	"golang.org/x/exp/rand"
)

// Stages are the stochastic steps of a synthesis run that own a generator
type Stages int32

//go:generate stringer -type=Stages

var KiT_Stages = kit.Enums.AddEnum(StagesN, kit.NotBitFlag, nil)

func (ev Stages) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *Stages) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// Select draws the cells from the template pool
	Select Stages = iota

	// Jitter generates the jittered template variants, per cell and position
	Jitter

	// Rate draws the per-cell firing rate
	Rate

	// Train generates the spike times, per cell
	Train

	// Intermittent draws the burst / quiet intervals, per cell
	Intermittent

	// Sync injects synchronous spikes, per overlapping pair
	Sync

	// Amp draws the amplitude modulation noise, per cell
	Amp

	// JitterPick chooses the jitter variant used by every spike, per cell
	JitterPick

	// Noise generates the additive noise, per noise chunk
	Noise

	StagesN
)

// Derive returns the seed for given stage and indexes under the master seed.
// It is a pure function: identical arguments always give the same seed.
func Derive(master int64, stage Stages, idx ...int) uint64 {
	h := mix(uint64(master) ^ 0x9e3779b97f4a7c15)
	h = mix(h ^ (uint64(stage) + 1))
	for _, ix := range idx {
		h = mix(h ^ (uint64(int64(ix)) + 0x632be59bd9b4e019))
	}
	return h
}

// New returns a new generator for given stage and indexes under the master seed
func New(master int64, stage Stages, idx ...int) *rand.Rand {
	return rand.New(rand.NewSource(Derive(master, stage, idx...)))
}

// mix is the splitmix64 finalizer
func mix(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
