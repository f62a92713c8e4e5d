// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package synth runs the recording synthesis pipeline: it selects cells from a
template pool, conditions their templates, generates spike trains with
synchrony and amplitude modulation, assembles the clean recording by
convolution (with drift if enabled), and adds noise and filtering.

A run either returns a complete Result with its ground truth, or an error
and no output.  All randomness derives from Params.Seed through the seeds
package, so a run is reproducible from its parameters and pool.
*/
package synth

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"

	"github.com/emer/emergent/timer"
	"github.com/emer/etable/etensor"
	"github.com/emer/spikesynth/ampmod"
	"github.com/emer/spikesynth/convolve"
	"github.com/emer/spikesynth/probe"
	"github.com/emer/spikesynth/seeds"
	"github.com/emer/spikesynth/spikes"
	"github.com/emer/spikesynth/templ"
	"github.com/goki/mat32"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
)

// Synth holds the state of one synthesis run
type Synth struct {
	Params   Params                 `desc:"run parameters"`
	Pool     *templ.Pool            `desc:"template pool that cells are selected from"`
	Geom     *probe.Geometry        `desc:"probe geometry"`
	Asm      *convolve.Assembler    `desc:"signal assembler and worker pool"`
	FunTimes map[string]*timer.Time `view:"-" desc:"timers for each stage of the pipeline"`
}

// Run synthesizes one recording from pool on the probe named in pr
func Run(ctx context.Context, pool *templ.Pool, prov probe.Provider, pr *Params) (*Result, error) {
	sy, err := New(pool, prov, pr)
	if err != nil {
		return nil, err
	}
	return sy.Run(ctx)
}

// New validates the parameters, resolves the probe and checks the pool
func New(pool *templ.Pool, prov probe.Provider, pr *Params) (*Synth, error) {
	sy := &Synth{Params: *pr, Pool: pool, FunTimes: make(map[string]*timer.Time)}
	sy.Params.Update()
	if err := sy.Params.Validate(); err != nil {
		return nil, err
	}
	if pool == nil {
		return nil, cfgErr("Pool", "no template pool")
	}
	geom, err := prov.Geometry(sy.Params.Probe)
	if err != nil {
		return nil, fmt.Errorf("synth: %w", err)
	}
	sy.Geom = geom
	if err := pool.Validate(geom.NEl()); err != nil {
		return nil, fmt.Errorf("synth: template pool for probe %s: %w", geom.Name, err)
	}
	return sy, nil
}

// NSamp returns the number of recording samples
func (sy *Synth) NSamp() int {
	return int(math.Round(sy.Params.Dur * sy.Params.FS))
}

func (sy *Synth) logf(format string, args ...any) {
	if sy.Params.Verbose {
		log.Printf(format, args...)
	}
}

// Run executes the pipeline.  The context is checked between stages.
func (sy *Synth) Run(ctx context.Context) (*Result, error) {
	pr := &sy.Params
	nel := sy.Geom.NEl()
	nsamp := sy.NSamp()
	rs := &Result{Params: *pr, Probe: sy.Geom.Name, NSamp: nsamp}

	sy.FunTimerStart("Select")
	sel, err := pr.Cells.Select(sy.Pool, seeds.New(pr.Seed, seeds.Select))
	sy.FunTimerStop("Select")
	if err != nil {
		return nil, fmt.Errorf("synth: selecting cells: %w", err)
	}
	rs.Sel = sel
	rs.Cells = sel.All()
	ncells := len(rs.Cells)
	sy.logf("selected %d cells: exc %v, inh %v, intermittent %v\n", ncells, sel.Exc, sel.Inh, sel.Int)

	sy.Asm = convolve.NewAssembler(nel, nsamp, pr.FS, pr.NThreads)
	sy.Asm.ChunkDur = pr.AssemblyChunkDur(ncells, nel)
	sy.Asm.Ctx.Step = pr.Drift.Step
	sy.Asm.Ctx.Interp = pr.Drift.Interp
	if pr.FFT {
		sy.Asm.Conv = &convolve.FFT{}
	}
	if sy.Asm.NThreads > 1 {
		sy.Asm.StartThreads()
		defer sy.Asm.StopThreads()
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	jits := sy.condition(rs)
	rs.Overlap = templ.FindOverlapping(rs.Templates, pr.OverlapThr)
	sy.logf("conditioned %d templates, %d overlapping pairs\n", ncells, len(rs.Overlap))

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sy.FunTimerStart("Trains")
	sy.trains(rs)
	sy.FunTimerStop("Trains")

	tasks := sy.tasks(rs, jits)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sy.logf("assembling %d samples on %d electrodes, chunk dur: %v\n", nsamp, nel, sy.Asm.ChunkDur)
	sy.FunTimerStart("Assemble")
	rec, err := sy.Asm.Run(tasks)
	sy.FunTimerStop("Assemble")
	if err != nil {
		return nil, fmt.Errorf("synth: assembling recording: %w", err)
	}
	sy.mixing(rs, tasks)

	if pr.Sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sy.FunTimerStart("Sources")
		src := make([]*convolve.Task, ncells)
		for i, tk := range tasks {
			st := *tk
			st.Source = true
			st.El = rs.Templates[i].PeakElectrode(0)
			src[i] = &st
		}
		rs.Sources, err = sy.Asm.RunEach(src)
		sy.FunTimerStop("Sources")
		if err != nil {
			return nil, fmt.Errorf("synth: computing sources: %w", err)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rs.Clean = rec.Clone().(*etensor.Float64)
	sy.FunTimerStart("Noise")
	rs.Noise, err = pr.Noise.Apply(rec, sy.Geom, pr.FS, pr.Seed)
	sy.FunTimerStop("Noise")
	if err != nil {
		return nil, fmt.Errorf("synth: noise and filter: %w", err)
	}
	rs.Recording = rec
	if pr.Noise.Level > 0 {
		for i, tr := range rs.Trains {
			tr.SNR = rs.Templates[i].Amp / pr.Noise.Level
		}
	}
	rs.Meta = NewMeta(rs, sy.Geom, sy.Asm.ChunkDur)
	return rs, nil
}

// condition conditions the templates of the selected cells and generates
// their jitter sets, one cell per task on the worker threads
func (sy *Synth) condition(rs *Result) []*templ.JitterSet {
	pr := &sy.Params
	ncells := len(rs.Cells)
	rs.Templates = make([]*templ.Template, ncells)
	jits := make([]*templ.JitterSet, ncells)
	sy.Asm.ThrTaskFun(ncells, func(i int) {
		ct := pr.Templ.Condition(sy.Pool.Templates[rs.Cells[i]])
		rs.Templates[i] = ct
		if pr.Templ.NJitters == 0 {
			return
		}
		rngs := make([]*rand.Rand, ct.NPos())
		for p := range rngs {
			rngs[p] = seeds.New(pr.Seed, seeds.Jitter, i, p)
		}
		jits[i] = pr.Templ.Jitter(ct, rngs)
	}, "Condition")
	return jits
}

// trains generates the spike trains, injects synchrony between spatially
// overlapping pairs and labels overlapping spikes
func (sy *Synth) trains(rs *Result) {
	pr := &sy.Params
	ncells := len(rs.Cells)
	rs.Trains = make([]*spikes.Train, ncells)
	for i := range rs.Trains {
		tp := rs.Templates[i]
		intRng := seeds.New(pr.Seed, seeds.Intermittent, i)
		tr := pr.Spikes.Generate(tp.Class, rs.Sel.IsInt(i), 0, pr.Dur,
			seeds.New(pr.Seed, seeds.Rate, i), seeds.New(pr.Seed, seeds.Train, i), intRng)
		tr.Cell = rs.Cells[i]
		tr.Cat = tp.Cat
		tr.Loc = tp.Loc()
		rs.Trains[i] = tr
	}
	if pr.SyncRate > 0 {
		for k, pair := range rs.Overlap {
			n := spikes.AddSynchrony(rs.Trains, pair, pr.SyncRate, pr.FS, pr.Spikes.Ref, seeds.New(pr.Seed, seeds.Sync, k))
			sy.logf("synchrony %v: %d spikes added\n", pair, n)
		}
	}
	spikes.AnnotateOverlap(rs.Trains, pr.Templ.Dur, rs.Overlap)
}

// tasks builds the convolution task of each cell: its raster, jitter picks,
// amplitude trace and drift trajectory
func (sy *Synth) tasks(rs *Result, jits []*templ.JitterSet) []*convolve.Task {
	pr := &sy.Params
	nel := sy.Geom.NEl()
	nsamp := rs.NSamp
	tasks := make([]*convolve.Task, len(rs.Trains))
	rs.Picks = make([][]int, len(rs.Trains))
	rs.Gains = make([][]float64, len(rs.Trains))
	for i, tr := range rs.Trains {
		tk := &convolve.Task{Cell: i, Kern: convolve.Kernel{Tmp: rs.Templates[i], Jit: jits[i]}}
		tk.Spikes = tr.Raster(pr.FS)
		for s, k := range tk.Spikes {
			if k >= nsamp {
				tk.Spikes[s] = nsamp - 1
			}
		}
		if jits[i] != nil {
			rng := seeds.New(pr.Seed, seeds.JitterPick, i)
			nj := jits[i].NJitters()
			tk.Jitter = make([]int, len(tk.Spikes))
			for s := range tk.Jitter {
				tk.Jitter[s] = rng.Intn(nj)
			}
		}
		tk.Amp = pr.Amp.Compute(tr, nel, seeds.New(pr.Seed, seeds.Amp, i))
		if pr.Drifting {
			tk.Drift = pr.Drift.Trajectory(rs.Templates[i])
		}
		rs.Picks[i] = tk.Jitter
		rs.Gains[i] = spikeGains(tk.Amp, len(tk.Spikes))
		tasks[i] = tk
	}
	return tasks
}

// mixing records the mixing features of each cell, and for drifting cells
// the features at each drift step and the final templates and locations
func (sy *Synth) mixing(rs *Result, tasks []*convolve.Task) {
	pr := &sy.Params
	nel := sy.Geom.NEl()
	ncells := len(rs.Templates)
	rs.Mixing = etensor.NewFloat64([]int{ncells, nel}, nil, []string{"Cell", "El"})
	for i, tp := range rs.Templates {
		copy(rs.Mixing.Values[i*nel:(i+1)*nel], tp.Features(0))
	}
	if !pr.Drifting {
		return
	}
	steps := pr.Drift.Steps(0, pr.Dur)
	rs.Steps = steps
	rs.MixingSteps = etensor.NewFloat64([]int{ncells, len(steps), nel}, nil, []string{"Cell", "Step", "El"})
	rs.TemplatesFinal = make([]*templ.Template, ncells)
	rs.LocsFinal = make([]mat32.Vec3, ncells)
	for i, tk := range tasks {
		di := sy.Asm.Drifting(tk, steps, pr.Dur)
		for s, ft := range di.Mixing {
			copy(rs.MixingSteps.Values[(i*len(steps)+s)*nel:], ft)
		}
		rs.TemplatesFinal[i] = di.FinalTmp
		rs.LocsFinal[i] = di.FinalLoc
	}
}

// spikeGains returns the gain of each of n spikes averaged over
// electrodes, 1 for a nil trace
func spikeGains(tc *ampmod.Trace, n int) []float64 {
	g := make([]float64, n)
	for s := range g {
		if tc == nil {
			g[s] = 1
			continue
		}
		g[s] = stat.Mean(tc.Spike(s), nil)
	}
	return g
}

//////////////////////////////////////////////////////////////////////////////////////
//  Timers

// FunTimerStart starts the timer of a pipeline stage -- ensures creation of timer
func (sy *Synth) FunTimerStart(fun string) {
	ft, ok := sy.FunTimes[fun]
	if !ok {
		ft = &timer.Time{}
		sy.FunTimes[fun] = ft
	}
	ft.Start()
}

// FunTimerStop stops the timer of a pipeline stage -- timer must already exist
func (sy *Synth) FunTimerStop(fun string) {
	sy.FunTimes[fun].Stop()
}

// TimerReport reports the time spent in each pipeline stage, followed by the
// assembler report
func (sy *Synth) TimerReport() {
	fmt.Printf("TimerReport: Synth\n")
	fmt.Printf("\tStage Name\tTotal Secs\tPct\n")
	fnms := make([]string, 0, len(sy.FunTimes))
	for k := range sy.FunTimes {
		fnms = append(fnms, k)
	}
	sort.Strings(fnms)
	tot := 0.0
	for _, fn := range fnms {
		tot += sy.FunTimes[fn].TotalSecs()
	}
	for _, fn := range fnms {
		secs := sy.FunTimes[fn].TotalSecs()
		fmt.Printf("\t%v \t%6.4g\t%6.4g\n", fn, secs, 100*(secs/tot))
	}
	fmt.Printf("\tTotal   \t%6.4g\n\n", tot)
	if sy.Asm != nil {
		sy.Asm.TimerReport()
	}
}
