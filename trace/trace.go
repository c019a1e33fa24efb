// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package trace records wire states over simulated time and renders them as
// VCD files or waveform plots.
//
package trace

import (
	"github.com/db47h/gatesim"
	"github.com/pkg/errors"
)

// A Sample is the state of all watched wires at a given time.
//
type Sample struct {
	Time   uint64
	States []gatesim.Signal
}

// A Recorder samples a set of watched wires of a circuit.
//
type Recorder struct {
	c       *gatesim.Circuit
	names   []string
	wires   []gatesim.WireID
	samples []Sample
}

// NewRecorder returns a recorder for c.
//
func NewRecorder(c *gatesim.Circuit) *Recorder {
	return &Recorder{c: c}
}

// Watch adds a wire to the watch list. It must be called before the first
// sample is taken.
//
func (r *Recorder) Watch(name string, w gatesim.WireID) error {
	if len(r.samples) > 0 {
		return errors.New("cannot watch wires once recording has started")
	}
	if _, err := r.c.WireState(w); err != nil {
		return err
	}
	r.names = append(r.names, name)
	r.wires = append(r.wires, w)
	return nil
}

// Names returns the names of the watched wires.
//
func (r *Recorder) Names() []string { return r.names }

// Sample records the current state of the watched wires. Sampling twice at
// the same simulated time replaces the previous sample.
//
func (r *Recorder) Sample() error {
	s := Sample{Time: r.c.Time(), States: make([]gatesim.Signal, len(r.wires))}
	for i, w := range r.wires {
		st, err := r.c.WireState(w)
		if err != nil {
			return errors.Wrap(err, r.names[i])
		}
		s.States[i] = st
	}
	if n := len(r.samples); n > 0 && r.samples[n-1].Time == s.Time {
		r.samples[n-1] = s
		return nil
	}
	r.samples = append(r.samples, s)
	return nil
}

// Step runs n steps, sampling after each one. The returned result is the one
// of Circuit.StepN.
//
func (r *Recorder) Step(n int) (gatesim.Result, error) {
	if len(r.samples) == 0 {
		if err := r.Sample(); err != nil {
			return gatesim.Result{Time: r.c.Time()}, err
		}
	}
	return r.c.StepFunc(n, func(uint64) error { return r.Sample() })
}

// Samples returns the recorded samples.
//
func (r *Recorder) Samples() []Sample { return r.samples }

// Reset discards all samples.
//
func (r *Recorder) Reset() { r.samples = nil }
