// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package synth

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/emer/etable/etable"
	"github.com/emer/etable/etensor"
	"github.com/emer/spikesynth/cellsel"
	"github.com/emer/spikesynth/spikes"
	"github.com/emer/spikesynth/templ"
	"github.com/goki/gi/gi"
	"github.com/goki/mat32"
)

// Result is a synthesized recording with its ground truth
type Result struct {
	Params         Params             `desc:"parameters of the run, after Update"`
	Probe          string             `desc:"name of the probe geometry"`
	NSamp          int                `desc:"number of samples"`
	Recording      *etensor.Float64   `desc:"final recording [El, Samp] in uV: clean signal plus noise, filtered"`
	Clean          *etensor.Float64   `desc:"noise-free unfiltered recording [El, Samp]"`
	Noise          *etensor.Float64   `desc:"added noise [El, Samp] -- nil for zero noise level"`
	Sources        *etensor.Float64   `desc:"per-cell signal on its peak electrode [Cell, Samp] -- only when Params.Sources"`
	Sel            *cellsel.Selection `desc:"selected pool indexes by class"`
	Cells          []int              `desc:"pool index of each cell, in cell order"`
	Templates      []*templ.Template  `desc:"conditioned template of each cell"`
	TemplatesFinal []*templ.Template  `desc:"single-position template of each drifting cell at the end of the run"`
	Trains         []*spikes.Train    `desc:"spike train of each cell"`
	Overlap        templ.OverlapSet   `desc:"spatially overlapping cell pairs"`
	Picks          [][]int            `desc:"jitter variant used by each spike, per cell -- nil without jitter"`
	Gains          [][]float64        `desc:"amplitude gain of each spike averaged over electrodes, per cell"`
	Mixing         *etensor.Float64   `desc:"mixing features [Cell, El]: negative peak of each cell's template on each electrode"`
	Steps          []float64          `desc:"drift step start times"`
	MixingSteps    *etensor.Float64   `desc:"mixing features at each drift step [Cell, Step, El]"`
	LocsFinal      []mat32.Vec3       `desc:"location of each drifting cell at the end of the run"`
	Meta           *Meta              `desc:"metadata written along with the recording"`
}

// NCells returns the number of cells
func (rs *Result) NCells() int { return len(rs.Trains) }

// NEl returns the number of electrodes
func (rs *Result) NEl() int { return rs.Recording.Dim(0) }

// SpikeTable returns one row per spike of every cell, in cell then time order
func (rs *Result) SpikeTable() *etable.Table {
	n := 0
	for _, tr := range rs.Trains {
		n += tr.Len()
	}
	dt := &etable.Table{}
	dt.SetMetaData("name", "Spikes")
	dt.SetMetaData("desc", "ground-truth spike times of each cell")
	dt.SetMetaData("precision", "6")
	sch := etable.Schema{
		{"Cell", etensor.INT64, nil, nil},
		{"PoolIdx", etensor.INT64, nil, nil},
		{"Time", etensor.FLOAT64, nil, nil},
		{"Sample", etensor.INT64, nil, nil},
		{"Overlap", etensor.STRING, nil, nil},
		{"Jitter", etensor.INT64, nil, nil},
		{"Gain", etensor.FLOAT64, nil, nil},
	}
	dt.SetFromSchema(sch, n)
	row := 0
	for i, tr := range rs.Trains {
		for s, t := range tr.Times {
			dt.SetCellFloat("Cell", row, float64(i))
			dt.SetCellFloat("PoolIdx", row, float64(tr.Cell))
			dt.SetCellFloat("Time", row, t)
			k := tr.Sample(t, rs.Params.FS)
			if k >= rs.NSamp {
				k = rs.NSamp - 1
			}
			dt.SetCellFloat("Sample", row, float64(k))
			dt.SetCellString("Overlap", row, tr.Overlap[s].String())
			jit := -1
			if rs.Picks != nil && rs.Picks[i] != nil {
				jit = rs.Picks[i][s]
			}
			dt.SetCellFloat("Jitter", row, float64(jit))
			gn := 1.0
			if rs.Gains != nil {
				gn = rs.Gains[i][s]
			}
			dt.SetCellFloat("Gain", row, gn)
			row++
		}
	}
	return dt
}

// CellTable returns one row per cell with its identity, location, firing
// statistics and mixing features
func (rs *Result) CellTable() *etable.Table {
	nc := rs.NCells()
	nel := rs.Mixing.Dim(1)
	drifting := rs.LocsFinal != nil
	dt := &etable.Table{}
	dt.SetMetaData("name", "Cells")
	dt.SetMetaData("desc", "ground-truth properties of each cell")
	dt.SetMetaData("precision", "6")
	sch := etable.Schema{
		{"Cell", etensor.INT64, nil, nil},
		{"PoolIdx", etensor.INT64, nil, nil},
		{"Cat", etensor.STRING, nil, nil},
		{"Class", etensor.STRING, nil, nil},
		{"Intermittent", etensor.INT64, nil, nil},
		{"Loc", etensor.FLOAT32, []int{3}, []string{"XYZ"}},
		{"Rate", etensor.FLOAT64, nil, nil},
		{"NSpikes", etensor.INT64, nil, nil},
		{"NSync", etensor.INT64, nil, nil},
		{"Amp", etensor.FLOAT64, nil, nil},
		{"SNR", etensor.FLOAT64, nil, nil},
		{"PeakEl", etensor.INT64, nil, nil},
		{"Mixing", etensor.FLOAT64, []int{nel}, []string{"El"}},
	}
	if drifting {
		sch = append(sch, etable.Column{"LocFinal", etensor.FLOAT32, []int{3}, []string{"XYZ"}})
	}
	dt.SetFromSchema(sch, nc)
	loc := dt.ColByName("Loc").(*etensor.Float32)
	mix := dt.ColByName("Mixing").(*etensor.Float64)
	for i, tr := range rs.Trains {
		tp := rs.Templates[i]
		dt.SetCellFloat("Cell", i, float64(i))
		dt.SetCellFloat("PoolIdx", i, float64(tr.Cell))
		dt.SetCellString("Cat", i, tp.Cat.String())
		dt.SetCellString("Class", i, tp.Class.String())
		itm := 0.0
		if tr.Intermittent {
			itm = 1
		}
		dt.SetCellFloat("Intermittent", i, itm)
		setVec3(loc, i, tr.Loc)
		dt.SetCellFloat("Rate", i, tr.Rate)
		dt.SetCellFloat("NSpikes", i, float64(tr.Len()))
		dt.SetCellFloat("NSync", i, float64(tr.NSync))
		dt.SetCellFloat("Amp", i, tp.Amp)
		dt.SetCellFloat("SNR", i, tr.SNR)
		dt.SetCellFloat("PeakEl", i, float64(tp.PeakElectrode(0)))
		copy(mix.Values[i*nel:(i+1)*nel], rs.Mixing.Values[i*nel:(i+1)*nel])
	}
	if drifting {
		lf := dt.ColByName("LocFinal").(*etensor.Float32)
		for i, l := range rs.LocsFinal {
			setVec3(lf, i, l)
		}
	}
	return dt
}

func setVec3(col *etensor.Float32, row int, v mat32.Vec3) {
	col.Values[row*3] = v.X
	col.Values[row*3+1] = v.Y
	col.Values[row*3+2] = v.Z
}

// SignalTable returns a table with one row per sample of an [N, Samp]
// signal, with all N values of the sample in a single tensor column
func SignalTable(name string, sig *etensor.Float64) *etable.Table {
	nr, ns := sig.Dim(0), sig.Dim(1)
	dt := &etable.Table{}
	dt.SetMetaData("name", name)
	dt.SetMetaData("precision", "6")
	sch := etable.Schema{
		{name, etensor.FLOAT64, []int{nr}, []string{"Row"}},
	}
	dt.SetFromSchema(sch, ns)
	col := dt.ColByName(name).(*etensor.Float64)
	for r := 0; r < nr; r++ {
		for s, v := range sig.Values[r*ns : (r+1)*ns] {
			col.Values[s*nr+r] = v
		}
	}
	return dt
}

// Save writes the result into dir, which is created if needed: the
// metadata as rec_info.toml, the spike and cell tables, and if signals is
// true the recording, clean signal and sources as tab-separated tables.
func (rs *Result) Save(dir string, signals bool) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	if err := rs.Meta.Write(filepath.Join(dir, "rec_info.toml")); err != nil {
		return err
	}
	tabs := map[string]*etable.Table{
		"spiketrains.tsv": rs.SpikeTable(),
		"cells.tsv":       rs.CellTable(),
	}
	if signals {
		tabs["recording.tsv"] = SignalTable("Recording", rs.Recording)
		tabs["clean.tsv"] = SignalTable("Clean", rs.Clean)
		if rs.Sources != nil {
			tabs["sources.tsv"] = SignalTable("Sources", rs.Sources)
		}
	}
	for fn, dt := range tabs {
		if err := dt.SaveCSV(gi.FileName(filepath.Join(dir, fn)), etable.Tab, etable.Headers); err != nil {
			return fmt.Errorf("synth: saving %s: %w", fn, err)
		}
	}
	return nil
}
