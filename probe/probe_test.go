// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package probe

import (
	"errors"
	"testing"

	"github.com/goki/mat32"
)

const difTol = float32(1.0e-5)

func TestGrid(t *testing.T) {
	g, err := Std.Geometry("SqMEA-5-30um")
	if err != nil {
		t.Fatal(err)
	}
	if g.NEl() != 25 {
		t.Errorf("NEl: %v != 25\n", g.NEl())
	}
	if g.MinPitch() != 30 {
		t.Errorf("MinPitch: %v != 30\n", g.MinPitch())
	}
	// adjacent along z
	if dif := mat32.Abs(g.Dist(0, 1) - 30); dif > difTol {
		t.Errorf("Dist(0,1) err: %v, dif: %v\n", g.Dist(0, 1), dif)
	}
	// adjacent along y
	if dif := mat32.Abs(g.Dist(0, 5) - 30); dif > difTol {
		t.Errorf("Dist(0,5) err: %v, dif: %v\n", g.Dist(0, 5), dif)
	}
	// center electrode at origin
	c := g.Pos[12]
	if c.Length() > difTol {
		t.Errorf("center not at origin: %v\n", c)
	}
}

func TestNotFound(t *testing.T) {
	_, err := Std.Geometry("NoSuchProbe")
	var gerr *GeometryNotFoundError
	if !errors.As(err, &gerr) {
		t.Fatalf("expected GeometryNotFoundError, got: %v\n", err)
	}
	if gerr.Name != "NoSuchProbe" {
		t.Errorf("wrong name in error: %v\n", gerr.Name)
	}
}
