// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package spikesynth is the overall repository for synthesizing extracellular
recordings on multi-electrode arrays, with full ground truth: spike times,
templates, locations and mixing features of every cell.

This top-level of the repository has no functional code -- everything is organized
into the following sub-repositories:

* synth: the synthesis pipeline and its parameters, results and metadata.
Start here: synth.Run turns a template pool and a probe into a recording.

* probe: MEA geometries and the named Provider lookup.

* templ: cell templates and template pools, template conditioning (resampling,
padding, jitter), spatial overlap, and a synthetic pool generator.

* cellsel: selection of excitatory and inhibitory cells from a pool.

* spikes: spike train generation, intermittent bursting, synchrony and
temporal overlap annotation.

* ampmod: ISI-dependent and random amplitude modulation of spikes.

* drift: drift trajectories of cells along their template positions.

* convolve: assembly of the recording as the sum of convolved cell
contributions, chunked and multi-threaded.

* noise: correlated or independent background noise and Butterworth filtering.

* seeds: reproducible per-stage random generators derived from one seed.

* examples: genrec generates batches of recordings (with MPI), and bench
times the synthesis.
*/
package spikesynth
