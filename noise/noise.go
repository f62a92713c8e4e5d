// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package noise adds background noise to recordings and band-pass filters them.

Noise is either independent Gaussian noise on each electrode, or a
multivariate Gaussian whose covariance falls off with inter-electrode
distance.  It is generated in fixed-duration chunks, each from its own
generator, to bound memory.  Filtering is a zero-phase Butterworth band-pass
that degrades to a high-pass at the lower cutoff when the upper cutoff is not
below the Nyquist frequency.
*/
package noise

import (
	"fmt"
	"math"

	"github.com/emer/etable/etensor"
	"github.com/emer/etable/minmax"
	"github.com/emer/spikesynth/probe"
	"github.com/emer/spikesynth/seeds"
	"github.com/goki/ki/kit"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
)

// Modes are the noise models
type Modes int32

//go:generate stringer -type=Modes

var KiT_Modes = kit.Enums.AddEnum(ModesN, kit.NotBitFlag, nil)

func (ev Modes) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *Modes) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

func (ev Modes) MarshalText() ([]byte, error) { return []byte(ev.String()), nil }
func (ev *Modes) UnmarshalText(b []byte) error { return ev.FromString(string(b)) }

const (
	// Uncorrelated is independent Gaussian noise on every electrode
	Uncorrelated Modes = iota

	// DistCorrelated is Gaussian noise whose correlation between two
	// electrodes is half the minimum pitch divided by their distance
	DistCorrelated

	ModesN
)

// Params are the noise and filter parameters
type Params struct {
	Mode     Modes      `desc:"noise model"`
	Level    float64    `def:"10" min:"0" desc:"rms noise level in uV -- 0 adds no noise"`
	ChunkDur float64    `def:"2" min:"0" desc:"duration in seconds of independently generated noise chunks -- 0 generates the whole duration at once"`
	Filter   bool       `def:"true" desc:"band-pass filter the recording after adding noise"`
	Band     minmax.F64 `desc:"filter cutoff frequencies in Hz"`
	Order    int        `def:"3" min:"1" desc:"Butterworth filter order"`
}

func (np *Params) Defaults() {
	np.Mode = Uncorrelated
	np.Level = 10
	np.ChunkDur = 2
	np.Filter = true
	np.Band.Set(300, 6000)
	np.Order = 3
}

// NumericalDegradationError is returned when the filter band cannot be
// realized at the sampling rate
type NumericalDegradationError struct {
	Band    minmax.F64
	Nyquist float64
}

func (e *NumericalDegradationError) Error() string {
	return fmt.Sprintf("noise: filter band [%g, %g] Hz not realizable below Nyquist %g Hz", e.Band.Min, e.Band.Max, e.Nyquist)
}

// Covariance returns the distance-correlated covariance of the electrodes:
// 1 on the diagonal and 0.5 * minimum pitch / distance elsewhere
func Covariance(geom *probe.Geometry) *mat.SymDense {
	nel := geom.NEl()
	cov := mat.NewSymDense(nel, nil)
	mp := float64(geom.MinPitch())
	for i := 0; i < nel; i++ {
		cov.SetSym(i, i, 1)
		for j := i + 1; j < nel; j++ {
			cov.SetSym(i, j, 0.5*mp/float64(geom.Dist(i, j)))
		}
	}
	return cov
}

// sampler draws one correlated sample per electrode
type sampler struct {
	norm *distmv.Normal
	tr   *mat.Dense
	z    []float64
}

// newSampler returns a sampler of cov.  If cov is not positive definite its
// negative eigenvalues are clipped to zero.
func newSampler(cov *mat.SymDense, rng *rand.Rand) (*sampler, error) {
	nel := cov.SymmetricDim()
	if norm, ok := distmv.NewNormal(make([]float64, nel), cov, rng); ok {
		return &sampler{norm: norm}, nil
	}
	var es mat.EigenSym
	if !es.Factorize(cov, true) {
		return nil, fmt.Errorf("noise: eigendecomposition of the noise covariance failed")
	}
	vals := es.Values(nil)
	var vecs mat.Dense
	es.VectorsTo(&vecs)
	for j, v := range vals {
		sv := math.Sqrt(math.Max(v, 0))
		for i := 0; i < nel; i++ {
			vecs.Set(i, j, vecs.At(i, j)*sv)
		}
	}
	return &sampler{tr: &vecs, z: make([]float64, nel)}, nil
}

func (sm *sampler) sample(x []float64, rng *rand.Rand) {
	if sm.norm != nil {
		sm.norm.Rand(x)
		return
	}
	for i := range sm.z {
		sm.z[i] = rng.NormFloat64()
	}
	xv := mat.NewVecDense(len(x), x)
	xv.MulVec(sm.tr, mat.NewVecDense(len(sm.z), sm.z))
}

// Chunks returns the sample ranges [from, to) of the noise chunks
func (np *Params) Chunks(nsamp int, fs float64) [][2]int {
	if np.ChunkDur <= 0 {
		return [][2]int{{0, nsamp}}
	}
	var ch [][2]int
	for c := 0; ; c++ {
		from := int(math.Round(float64(c) * np.ChunkDur * fs))
		if from >= nsamp {
			break
		}
		to := int(math.Min(math.Round(float64(c+1)*np.ChunkDur*fs), float64(nsamp)))
		ch = append(ch, [2]int{from, to})
	}
	return ch
}

// Generate returns [electrodes, samples] noise for geom at rate fs.  Chunk c
// is drawn from seeds.New(seed, seeds.Noise, c).  Returns nil for Level 0.
func (np *Params) Generate(geom *probe.Geometry, nsamp int, fs float64, seed int64) (*etensor.Float64, error) {
	if np.Level <= 0 {
		return nil, nil
	}
	nel := geom.NEl()
	ns := etensor.NewFloat64([]int{nel, nsamp}, nil, []string{"El", "Samp"})
	var cov *mat.SymDense
	if np.Mode == DistCorrelated {
		cov = Covariance(geom)
	}
	x := make([]float64, nel)
	for c, ch := range np.Chunks(nsamp, fs) {
		rng := seeds.New(seed, seeds.Noise, c)
		if np.Mode == Uncorrelated {
			for e := 0; e < nel; e++ {
				row := ns.Values[e*nsamp : (e+1)*nsamp]
				for i := ch[0]; i < ch[1]; i++ {
					row[i] = np.Level * rng.NormFloat64()
				}
			}
			continue
		}
		sm, err := newSampler(cov, rng)
		if err != nil {
			return nil, err
		}
		for i := ch[0]; i < ch[1]; i++ {
			sm.sample(x, rng)
			for e := 0; e < nel; e++ {
				ns.Values[e*nsamp+i] = np.Level * x[e]
			}
		}
	}
	return ns, nil
}

// Design returns the filter sections for rate fs: band-pass over Band, or
// high-pass at Band.Min when Band.Max is not below Nyquist
func (np *Params) Design(fs float64) (SOS, error) {
	nyq := fs / 2
	switch {
	case np.Band.Min <= 0 || np.Band.Min >= nyq:
		return nil, &NumericalDegradationError{Band: np.Band, Nyquist: nyq}
	case np.Band.Max >= nyq:
		return Highpass(np.Order, np.Band.Min, fs), nil
	}
	return Bandpass(np.Order, np.Band.Min, np.Band.Max, fs), nil
}

// Apply adds noise to rec, returning the noise, then filters rec in place
// if Filter is set
func (np *Params) Apply(rec *etensor.Float64, geom *probe.Geometry, fs float64, seed int64) (*etensor.Float64, error) {
	var sos SOS
	if np.Filter {
		var err error
		if sos, err = np.Design(fs); err != nil {
			return nil, err
		}
	}
	nsamp := rec.Dim(1)
	ns, err := np.Generate(geom, nsamp, fs, seed)
	if err != nil {
		return nil, err
	}
	if ns != nil {
		for i, v := range ns.Values {
			rec.Values[i] += v
		}
	}
	if sos == nil {
		return ns, nil
	}
	for e := 0; e < rec.Dim(0); e++ {
		row := rec.Values[e*nsamp : (e+1)*nsamp]
		copy(row, sos.FiltFilt(row))
	}
	return ns, nil
}
