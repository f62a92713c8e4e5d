// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package probe describes the geometry of multi-electrode arrays (MEAs):
electrode positions, pitch, shape and size.

Geometries are looked up by name through the Provider interface.  Library is
a simple map-based Provider, and Std holds a few square-grid arrays that are
convenient for testing and examples.  Electrodes lie in the x = 0 plane, with
y and z spanning the array, so that x measures the distance of a cell from
the probe.
*/
package probe

import (
	"fmt"
	"sort"

	"github.com/goki/mat32"
)

// Geometry holds the electrode layout of one probe
type Geometry struct {
	Name  string       `desc:"name of the probe, used for lookup"`
	Pos   []mat32.Vec3 `desc:"electrode center positions in um -- x = 0 plane"`
	Pitch mat32.Vec2   `desc:"inter-electrode pitch along y (X) and z (Y) in um"`
	Dim   [2]int       `desc:"number of electrodes along y and z"`
	Shape string       `desc:"electrode shape: square or circle"`
	Size  float32      `desc:"electrode size (half side or radius) in um"`
}

// Provider returns the geometry for a named probe
type Provider interface {
	Geometry(name string) (*Geometry, error)
}

// GeometryNotFoundError is returned when a probe name is unknown to a Provider
type GeometryNotFoundError struct {
	Name string
}

func (e *GeometryNotFoundError) Error() string {
	return fmt.Sprintf("probe: geometry not found: %q", e.Name)
}

// NEl returns the number of electrodes
func (g *Geometry) NEl() int {
	return len(g.Pos)
}

// MinPitch returns the smaller of the two pitches
func (g *Geometry) MinPitch() float32 {
	return mat32.Min(g.Pitch.X, g.Pitch.Y)
}

// Dist returns the distance between electrodes i and j
func (g *Geometry) Dist(i, j int) float32 {
	return g.Pos[i].DistTo(g.Pos[j])
}

// NewGrid returns a square-grid MEA centered at the origin, with ny x nz
// electrodes at given pitch.  Electrodes are ordered with z varying fastest.
func NewGrid(name string, ny, nz int, pitch, size float32) *Geometry {
	g := &Geometry{Name: name, Pitch: mat32.Vec2{X: pitch, Y: pitch}, Dim: [2]int{ny, nz}, Shape: "square", Size: size}
	g.Pos = make([]mat32.Vec3, ny*nz)
	oy := 0.5 * float32(ny-1) * pitch
	oz := 0.5 * float32(nz-1) * pitch
	for iy := 0; iy < ny; iy++ {
		for iz := 0; iz < nz; iz++ {
			g.Pos[iy*nz+iz] = mat32.Vec3{X: 0, Y: float32(iy)*pitch - oy, Z: float32(iz)*pitch - oz}
		}
	}
	return g
}

// Library is a map-based Provider
type Library map[string]*Geometry

// Geometry returns the named geometry, or a *GeometryNotFoundError
func (lb Library) Geometry(name string) (*Geometry, error) {
	g, ok := lb[name]
	if !ok {
		return nil, &GeometryNotFoundError{Name: name}
	}
	return g, nil
}

// Add adds geometry to the library under its own name
func (lb Library) Add(g *Geometry) {
	lb[g.Name] = g
}

// Names returns the sorted list of geometry names
func (lb Library) Names() []string {
	nms := make([]string, 0, len(lb))
	for nm := range lb {
		nms = append(nms, nm)
	}
	sort.Strings(nms)
	return nms
}

// Std is the built-in library of square MEAs
var Std = Library{
	"SqMEA-10-15um": NewGrid("SqMEA-10-15um", 10, 10, 15, 5),
	"SqMEA-5-30um":  NewGrid("SqMEA-5-30um", 5, 5, 30, 7.5),
	"SqMEA-4-20um":  NewGrid("SqMEA-4-20um", 4, 4, 20, 5),
	"SqMEA-2-20um":  NewGrid("SqMEA-2-20um", 2, 2, 20, 5),
}
