// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package seeds

import "testing"

func TestDerive(t *testing.T) {
	a := Derive(42, Train, 3)
	b := Derive(42, Train, 3)
	if a != b {
		t.Errorf("Derive not deterministic: %v != %v\n", a, b)
	}
	others := []uint64{
		Derive(43, Train, 3),
		Derive(42, Rate, 3),
		Derive(42, Train, 4),
		Derive(42, Train, 3, 0),
		Derive(42, Train),
	}
	for i, o := range others {
		if o == a {
			t.Errorf("Derive collision err: idx: %v, seed: %v\n", i, o)
		}
	}
}

func TestNew(t *testing.T) {
	r1 := New(7, Noise, 1)
	r2 := New(7, Noise, 1)
	for i := 0; i < 100; i++ {
		v1 := r1.Float64()
		v2 := r2.Float64()
		if v1 != v2 {
			t.Errorf("New streams differ: idx: %v, %v != %v\n", i, v1, v2)
		}
	}
}
