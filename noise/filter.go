// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package noise

import (
	"math"
	"math/cmplx"
	"sort"
)

// SOS is a cascade of second-order IIR sections, each
// [b0, b1, b2, a0, a1, a2] with a0 = 1
type SOS [][6]float64

// Highpass returns a Butterworth high-pass of given order and cutoff fc in Hz
func Highpass(order int, fc, fs float64) SOS {
	wc := prewarp(fc, fs)
	poles := make([]complex128, order)
	for i, p := range buttap(order) {
		poles[i] = complex(wc, 0) / p
	}
	return bilinear(make([]complex128, order), poles, 0, fs, -1)
}

// Bandpass returns a Butterworth band-pass of given order between lo and hi Hz.
// The result has 2 * order poles.
func Bandpass(order int, lo, hi, fs float64) SOS {
	w1 := prewarp(lo, fs)
	w2 := prewarp(hi, fs)
	bw := complex(w2-w1, 0)
	w0 := math.Sqrt(w1 * w2)
	w0sq := complex(w0*w0, 0)
	poles := make([]complex128, 0, 2*order)
	for _, p := range buttap(order) {
		pb := p * bw
		d := cmplx.Sqrt(pb*pb - 4*w0sq)
		poles = append(poles, (pb+d)/2, (pb-d)/2)
	}
	// analog center w0 maps to digital 2 atan(w0 / 2fs)
	wd := 2 * math.Atan(w0/(2*fs))
	return bilinear(make([]complex128, order), poles, order, fs, wd)
}

// buttap returns the poles of the analog Butterworth prototype with unit cutoff
func buttap(order int) []complex128 {
	ps := make([]complex128, order)
	for i := range ps {
		m := float64(-order + 1 + 2*i)
		ps[i] = -cmplx.Exp(complex(0, math.Pi*m/float64(2*order)))
	}
	return ps
}

// prewarp returns the analog frequency in rad/s that the bilinear
// transform maps to f Hz
func prewarp(f, fs float64) float64 {
	return 2 * fs * math.Tan(math.Pi*f/fs)
}

// bilinear maps analog zeros and poles to the z plane and groups them into
// sections.  Analog zeros at infinity (ninf of them) map to z = -1.  The
// gain is normalized to 1 at digital frequency wref (radians per sample),
// or at z = -1 (Nyquist) if wref < 0.
func bilinear(zeros, poles []complex128, ninf int, fs float64, wref float64) SOS {
	fs2 := complex(2*fs, 0)
	var zz []complex128
	for _, z := range zeros {
		zz = append(zz, (fs2+z)/(fs2-z))
	}
	var pz []complex128
	for _, p := range poles {
		pz = append(pz, (fs2+p)/(fs2-p))
	}
	// interleave zeros at z = 1 and z = -1 so each section gets one of each
	dz := make([]complex128, 0, len(zz)+ninf)
	for i := 0; i < len(zz) || i < ninf; i++ {
		if i < len(zz) {
			dz = append(dz, zz[i])
		}
		if i < ninf {
			dz = append(dz, -1)
		}
	}
	sos := groupSections(dz, pz)
	zr := cmplx.Exp(complex(0, wref))
	if wref < 0 {
		zr = -1
	}
	g := 1 / cmplx.Abs(sos.response(zr))
	for k := 0; k < 3; k++ {
		sos[0][k] *= g
	}
	return sos
}

const imagTol = 1.0e-10

// groupSections pairs complex conjugate poles, then real poles, into
// sections, assigning zeros to sections in order
func groupSections(zeros, poles []complex128) SOS {
	var cpx []complex128
	var rl []float64
	for _, p := range poles {
		switch {
		case imag(p) > imagTol:
			cpx = append(cpx, p)
		case imag(p) < -imagTol: // conjugate of a pole in cpx
		default:
			rl = append(rl, real(p))
		}
	}
	sort.Float64s(rl)
	var sos SOS
	zi := 0
	nextZero := func() float64 {
		if zi >= len(zeros) {
			return 0
		}
		z := real(zeros[zi])
		zi++
		return z
	}
	for _, p := range cpx {
		z1, z2 := nextZero(), nextZero()
		sos = append(sos, [6]float64{1, -(z1 + z2), z1 * z2, 1, -2 * real(p), real(p)*real(p) + imag(p)*imag(p)})
	}
	for i := 0; i+1 < len(rl); i += 2 {
		z1, z2 := nextZero(), nextZero()
		sos = append(sos, [6]float64{1, -(z1 + z2), z1 * z2, 1, -(rl[i] + rl[i+1]), rl[i] * rl[i+1]})
	}
	if len(rl)%2 == 1 {
		z1 := nextZero()
		sos = append(sos, [6]float64{1, -z1, 0, 1, -rl[len(rl)-1], 0})
	}
	return sos
}

// response returns the complex frequency response at z
func (sos SOS) response(z complex128) complex128 {
	zi := 1 / z
	h := complex(1, 0)
	for _, s := range sos {
		num := complex(s[0], 0) + complex(s[1], 0)*zi + complex(s[2], 0)*zi*zi
		den := complex(s[3], 0) + complex(s[4], 0)*zi + complex(s[5], 0)*zi*zi
		h *= num / den
	}
	return h
}

// Gain returns the magnitude response at f Hz for rate fs
func (sos SOS) Gain(f, fs float64) float64 {
	return cmplx.Abs(sos.response(cmplx.Exp(complex(0, 2*math.Pi*f/fs))))
}

// zi returns the steady-state section states for a unit step input
func (sos SOS) zi() [][2]float64 {
	zs := make([][2]float64, len(sos))
	scale := 1.0
	for i, s := range sos {
		g := (s[0] + s[1] + s[2]) / (s[3] + s[4] + s[5])
		zs[i] = [2]float64{scale * (g - s[0]), scale * (s[2] - s[5]*g)}
		scale *= g
	}
	return zs
}

// Filter runs the cascade over x (transposed direct form II) starting from
// states zs scaled by x0, returning the output
func (sos SOS) Filter(x []float64, zs [][2]float64, x0 float64) []float64 {
	y := append([]float64(nil), x...)
	for i, s := range sos {
		var z1, z2 float64
		if zs != nil {
			z1, z2 = zs[i][0]*x0, zs[i][1]*x0
		}
		for n, xv := range y {
			yv := s[0]*xv + z1
			z1 = s[1]*xv - s[4]*yv + z2
			z2 = s[2]*xv - s[5]*yv
			y[n] = yv
		}
	}
	return y
}

// FiltFilt filters x forward and backward for zero phase distortion,
// padding both ends by odd extension
func (sos SOS) FiltFilt(x []float64) []float64 {
	n := len(x)
	if n == 0 {
		return nil
	}
	pad := 3 * (2*len(sos) + 1)
	if pad > n-1 {
		pad = n - 1
	}
	ext := make([]float64, n+2*pad)
	for i := 0; i < pad; i++ {
		ext[i] = 2*x[0] - x[pad-i]
		ext[n+pad+i] = 2*x[n-1] - x[n-2-i]
	}
	copy(ext[pad:], x)
	zs := sos.zi()
	y := sos.Filter(ext, zs, ext[0])
	reverse(y)
	y = sos.Filter(y, zs, y[0])
	reverse(y)
	return y[pad : pad+n]
}

func reverse(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}
