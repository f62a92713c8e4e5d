// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package convolve

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/emer/emergent/timer"
	"github.com/emer/etable/etensor"
	"github.com/emer/spikesynth/drift"
	"github.com/emer/spikesynth/templ"
	"github.com/goki/mat32"
	"gonum.org/v1/gonum/floats"
)

// JobChan is a channel of thread jobs, called with the thread number
type JobChan chan func(th int)

// Assembler sums the contributions of cell tasks into a recording, running
// the tasks on a pool of worker threads
type Assembler struct {
	NThreads int                    `def:"1" min:"1" desc:"number of parallel threads (go routines) that compute task contributions"`
	NEl      int                    `desc:"number of electrodes"`
	NSamp    int                    `desc:"number of samples in the recording"`
	ChunkDur float64                `desc:"duration in seconds of independently assembled chunks -- 0 assembles the whole duration at once"`
	Conv     Convolver              `desc:"per-task convolution method -- Direct if nil"`
	Ctx      Context                `desc:"kernel resolution settings"`
	ThrChans []JobChan              `view:"-" desc:"job channels, per thread"`
	ThrTimes []timer.Time           `view:"-" desc:"timers for each thread, so you can see how evenly the workload is being distributed"`
	FunTimes map[string]*timer.Time `view:"-" desc:"timers for each major function (step of processing)"`
	WaitGp   sync.WaitGroup         `view:"-" desc:"wait group for synchronizing threaded calls"`
	running  bool
}

// NewAssembler returns an assembler for nel electrodes and nsamp samples at rate fs
func NewAssembler(nel, nsamp int, fs float64, nthr int) *Assembler {
	as := &Assembler{NEl: nel, NSamp: nsamp, NThreads: nthr}
	as.Ctx.FS = fs
	as.Build()
	return as
}

// Build allocates the thread channels and timers, which are reset
func (as *Assembler) Build() {
	if as.NThreads < 1 {
		as.NThreads = 1
	}
	as.ThrChans = make([]JobChan, as.NThreads)
	as.ThrTimes = make([]timer.Time, as.NThreads)
	as.FunTimes = make(map[string]*timer.Time)
}

// Chunks returns the sample ranges [from, to) that are assembled independently
func (as *Assembler) Chunks() [][2]int {
	if as.ChunkDur <= 0 {
		return [][2]int{{0, as.NSamp}}
	}
	var ch [][2]int
	for c := 0; ; c++ {
		from := int(math.Round(float64(c) * as.ChunkDur * as.Ctx.FS))
		if from >= as.NSamp {
			break
		}
		to := int(math.Round(float64(c+1) * as.ChunkDur * as.Ctx.FS))
		if to > as.NSamp {
			to = as.NSamp
		}
		ch = append(ch, [2]int{from, to})
	}
	return ch
}

func (as *Assembler) convolver() Convolver {
	if as.Conv == nil {
		return &Direct{}
	}
	return as.Conv
}

// Validate checks every task, returning the first error in task order
func (as *Assembler) Validate(tasks []*Task) error {
	for _, tk := range tasks {
		if err := tk.Validate(as.NEl); err != nil {
			return err
		}
		if n := len(tk.Spikes); n > 0 && (tk.Spikes[0] < 0 || tk.Spikes[n-1] >= as.NSamp) {
			return fmt.Errorf("convolve: cell %d: spike samples outside [0, %d)", tk.Cell, as.NSamp)
		}
	}
	return nil
}

// Run returns the [electrodes, samples] sum of the task contributions.
// Within each chunk the contributions are computed in parallel and added
// in task order, so the result does not depend on NThreads.
func (as *Assembler) Run(tasks []*Task) (*etensor.Float64, error) {
	if err := as.Validate(tasks); err != nil {
		return nil, err
	}
	rec := etensor.NewFloat64([]int{as.NEl, as.NSamp}, nil, []string{"El", "Samp"})
	as.runChunks(tasks, "Assemble", func(ti, from, n int, ct []float64) {
		for e := 0; e < as.NEl; e++ {
			floats.Add(rec.Values[e*as.NSamp+from:e*as.NSamp+from+n], ct[e*n:(e+1)*n])
		}
	})
	return rec, nil
}

// RunEach returns the [tasks, samples] contributions of single-row (Source) tasks
func (as *Assembler) RunEach(tasks []*Task) (*etensor.Float64, error) {
	if err := as.Validate(tasks); err != nil {
		return nil, err
	}
	for _, tk := range tasks {
		if !tk.Source {
			return nil, fmt.Errorf("convolve: cell %d: RunEach requires a source task", tk.Cell)
		}
	}
	src := etensor.NewFloat64([]int{len(tasks), as.NSamp}, nil, []string{"Cell", "Samp"})
	as.runChunks(tasks, "Sources", func(ti, from, n int, ct []float64) {
		copy(src.Values[ti*as.NSamp+from:ti*as.NSamp+from+n], ct)
	})
	return src, nil
}

// runChunks computes the contributions of all tasks chunk by chunk, calling
// reduce on each in task order
func (as *Assembler) runChunks(tasks []*Task, funame string, reduce func(ti, from, n int, ct []float64)) {
	cv := as.convolver()
	if as.NThreads > 1 && !as.running {
		as.StartThreads()
		defer as.StopThreads()
	}
	cts := make([][]float64, len(tasks))
	for _, ch := range as.Chunks() {
		from, to := ch[0], ch[1]
		n := to - from
		as.ThrTaskFun(len(tasks), func(ti int) {
			tk := tasks[ti]
			ct := cts[ti]
			if len(ct) != tk.NOut()*n {
				ct = make([]float64, tk.NOut()*n)
			} else {
				for i := range ct {
					ct[i] = 0
				}
			}
			cv.Conv(&as.Ctx, tk, from, to, ct)
			cts[ti] = ct
		}, funame)
		for ti := range tasks {
			reduce(ti, from, n, cts[ti])
		}
	}
}

// DriftInfo records how the kernel of a drifting cell changed over a run
type DriftInfo struct {
	Steps    []float64       `desc:"start time of each kernel update step"`
	Mixing   [][]float64     `desc:"mixing features (negative peak per electrode) at each step"`
	Final    drift.Blend     `desc:"kernel blend in use at the end of the run"`
	FinalLoc mat32.Vec3      `desc:"location of the kernel in use at the end of the run"`
	FinalTmp *templ.Template `desc:"single-position template in use at the end of the run"`
}

// Drifting returns the kernel history of a drifting task over the given
// step times, ending at tstop
func (as *Assembler) Drifting(tk *Task, steps []float64, tstop float64) *DriftInfo {
	nel := tk.Kern.NEl()
	ln := tk.Kern.NSamp()
	buf := make([]float64, nel*ln)
	di := &DriftInfo{Steps: steps, Mixing: make([][]float64, len(steps))}
	for i, t := range steps {
		wv := tk.Kern.BlendWave(tk.Drift.Kernel(t, as.Ctx.Interp), -1, buf)
		di.Mixing[i] = templ.WaveFeatures(wv, nel)
	}
	last := tstop
	if len(steps) > 0 {
		last = steps[len(steps)-1]
	}
	di.Final = tk.Drift.Kernel(last, as.Ctx.Interp)
	di.FinalLoc = tk.Drift.BlendLoc(di.Final)
	ft := templ.NewTemplate(1, nel, ln, tk.Kern.Tmp.FS)
	copy(ft.Waves.Values, tk.Kern.BlendWave(di.Final, -1, buf))
	ft.Locs[0] = di.FinalLoc
	ft.Rot = tk.Kern.Tmp.Rot
	ft.Cat = tk.Kern.Tmp.Cat
	ft.Class = tk.Kern.Tmp.Class
	ft.Resampled = tk.Kern.Tmp.Resampled
	ft.UpdateAmp()
	di.FinalTmp = ft
	return di
}

//////////////////////////////////////////////////////////////////////////////////////
//  Threading infrastructure

// StartThreads starts up the computation threads, which monitor the channels for work
func (as *Assembler) StartThreads() {
	if len(as.ThrChans) != as.NThreads {
		as.Build()
	}
	for th := 0; th < as.NThreads; th++ {
		as.ThrChans[th] = make(JobChan)
		go as.ThrWorker(th, as.ThrChans[th])
	}
	as.running = true
}

// StopThreads stops the computation threads
func (as *Assembler) StopThreads() {
	for th := 0; th < as.NThreads; th++ {
		close(as.ThrChans[th])
	}
	as.running = false
}

// ThrWorker is the worker function run by the worker threads
func (as *Assembler) ThrWorker(tt int, ch JobChan) {
	for fun := range ch {
		as.ThrTimes[tt].Start()
		fun(tt)
		as.ThrTimes[tt].Stop()
		as.WaitGp.Done()
	}
}

// ThrTaskFun calls fun on task indexes [0, n), using threaded (go routine worker)
// computation if NThreads > 1.  Thread th processes tasks th, th + NThreads, ...
func (as *Assembler) ThrTaskFun(n int, fun func(ti int), funame string) {
	as.FunTimerStart(funame)
	if as.NThreads <= 1 || !as.running {
		for ti := 0; ti < n; ti++ {
			fun(ti)
		}
	} else {
		job := func(th int) {
			for ti := th; ti < n; ti += as.NThreads {
				fun(ti)
			}
		}
		for th := 0; th < as.NThreads; th++ {
			as.WaitGp.Add(1)
			as.ThrChans[th] <- job
		}
		as.WaitGp.Wait()
	}
	as.FunTimerStop(funame)
}

// TimerReport reports the amount of time spent in each function, and in each thread
func (as *Assembler) TimerReport() {
	fmt.Printf("TimerReport: Assembler, NThreads: %v\n", as.NThreads)
	fmt.Printf("\tFunction Name\tTotal Secs\tPct\n")
	fnms := make([]string, 0, len(as.FunTimes))
	for k := range as.FunTimes {
		fnms = append(fnms, k)
	}
	sort.Strings(fnms)
	pcts := make([]float64, len(fnms))
	tot := 0.0
	for i, fn := range fnms {
		pcts[i] = as.FunTimes[fn].TotalSecs()
		tot += pcts[i]
	}
	for i, fn := range fnms {
		fmt.Printf("\t%v \t%6.4g\t%6.4g\n", fn, pcts[i], 100*(pcts[i]/tot))
	}
	fmt.Printf("\tTotal   \t%6.4g\n", tot)

	if as.NThreads <= 1 {
		return
	}
	fmt.Printf("\n\tThr\tTotal Secs\tPct\n")
	pcts = make([]float64, as.NThreads)
	tot = 0.0
	for th := 0; th < as.NThreads; th++ {
		pcts[th] = as.ThrTimes[th].TotalSecs()
		tot += pcts[th]
	}
	for th := 0; th < as.NThreads; th++ {
		fmt.Printf("\t%v \t%6.4g\t%6.4g\n", th, pcts[th], 100*(pcts[th]/tot))
	}
}

// FunTimerStart starts function timer for given function name -- ensures creation of timer
func (as *Assembler) FunTimerStart(fun string) {
	if as.FunTimes == nil {
		as.FunTimes = make(map[string]*timer.Time)
	}
	ft, ok := as.FunTimes[fun]
	if !ok {
		ft = &timer.Time{}
		as.FunTimes[fun] = ft
	}
	ft.Start()
}

// FunTimerStop stops function timer -- timer must already exist
func (as *Assembler) FunTimerStop(fun string) {
	ft := as.FunTimes[fun]
	ft.Stop()
}
