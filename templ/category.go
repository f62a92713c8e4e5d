// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package templ

import "github.com/goki/ki/kit"

// Category is the morphological cell type of a template, using the
// layer 5 cortical cell taxonomy
type Category int32

//go:generate stringer -type=Category

var KiT_Category = kit.Enums.AddEnum(CategoryN, kit.NotBitFlag, nil)

func (ev Category) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *Category) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

func (ev Category) MarshalText() ([]byte, error) { return []byte(ev.String()), nil }
func (ev *Category) UnmarshalText(b []byte) error { return ev.FromString(string(b)) }

// The cell categories
const (
	// BP is a bipolar cell
	BP Category = iota

	// BTC is a bitufted cell
	BTC

	// ChC is a chandelier cell
	ChC

	// DBC is a double bouquet cell
	DBC

	// LBC is a large basket cell
	LBC

	// MC is a Martinotti cell
	MC

	// NBC is a nest basket cell
	NBC

	// NGC is a neurogliaform cell
	NGC

	// SBC is a small basket cell
	SBC

	// STPC is a slender tufted pyramidal cell
	STPC

	// TTPC1 is a thick tufted pyramidal cell with a late bifurcating apical tuft
	TTPC1

	// TTPC2 is a thick tufted pyramidal cell with an early bifurcating apical tuft
	TTPC2

	// UTPC is an untufted pyramidal cell
	UTPC

	CategoryN
)

// Class returns the binary excitatory / inhibitory class of the category:
// the pyramidal types are excitatory, all others inhibitory.
func (ev Category) Class() Class {
	switch ev {
	case STPC, TTPC1, TTPC2, UTPC:
		return Excitatory
	}
	return Inhibitory
}

// Class is the binary excitatory / inhibitory class of a cell
type Class int32

//go:generate stringer -type=Class

var KiT_Class = kit.Enums.AddEnum(ClassN, kit.NotBitFlag, nil)

func (ev Class) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *Class) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

func (ev Class) MarshalText() ([]byte, error) { return []byte(ev.String()), nil }
func (ev *Class) UnmarshalText(b []byte) error { return ev.FromString(string(b)) }

const (
	Excitatory Class = iota
	Inhibitory
	ClassN
)
