// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package gatelib

import "github.com/db47h/gatesim"

// input normalizes an input signal: a floating input reads as Unknown.
func input(s gatesim.Signal) gatesim.Signal {
	if s == gatesim.HiZ {
		return gatesim.Unknown
	}
	return s
}

// logic accumulates input signals for a reduction. Like wire resolution, it
// only depends on the set of values seen (and the parity of One's), not on the
// order of the inputs.
type logic struct {
	seen   uint8
	parity bool
}

func (l *logic) add(s gatesim.Signal) {
	s = input(s)
	l.seen |= 1 << s
	if s == gatesim.One {
		l.parity = !l.parity
	}
}

func (l logic) has(s gatesim.Signal) bool {
	return l.seen&(1<<s) != 0
}

func (l logic) defined() bool {
	return !l.has(gatesim.Unknown) && !l.has(gatesim.Conflict)
}

// undefined returns the state propagated by undefined inputs: Unknown
// dominates Conflict.
func (l logic) undefined() gatesim.Signal {
	if l.has(gatesim.Unknown) {
		return gatesim.Unknown
	}
	return gatesim.Conflict
}

func (l logic) and() gatesim.Signal {
	switch {
	case l.has(gatesim.Zero):
		return gatesim.Zero
	case l.defined():
		return gatesim.One
	}
	return l.undefined()
}

func (l logic) or() gatesim.Signal {
	switch {
	case l.has(gatesim.One):
		return gatesim.One
	case l.defined():
		return gatesim.Zero
	}
	return l.undefined()
}

func (l logic) xor() gatesim.Signal {
	if l.defined() {
		return gatesim.FromBool(l.parity)
	}
	return l.undefined()
}

func not(s gatesim.Signal) gatesim.Signal {
	switch s = input(s); s {
	case gatesim.Zero:
		return gatesim.One
	case gatesim.One:
		return gatesim.Zero
	}
	return s
}

// value returns the value of a bus, pin 0 being the lsb. If any pin is not
// defined, ok is false and bad is the state to propagate.
func value(f *gatesim.Frame, pins []int) (v uint64, bad gatesim.Signal, ok bool) {
	var l logic
	for bit, p := range pins {
		s := f.Get(p)
		l.add(s)
		if s == gatesim.One {
			v |= 1 << uint(bit)
		}
	}
	if !l.defined() {
		return 0, l.undefined(), false
	}
	return v, gatesim.Zero, true
}

// setValue sets the pins of a bus to the given value.
func setValue(f *gatesim.Frame, pins []int, v uint64) {
	for bit, p := range pins {
		f.Set(p, gatesim.FromBool(v&(1<<uint(bit)) != 0))
	}
}

// fill sets all the pins of a bus to s.
func fill(f *gatesim.Frame, pins []int, s gatesim.Signal) {
	for _, p := range pins {
		f.Set(p, s)
	}
}

// edge tracks the level of a clock input between steps.
type edge struct {
	prev gatesim.Signal
}

func newEdge() edge { return edge{prev: gatesim.Unknown} }

// rising samples the clock level and returns true on a Zero to One
// transition. Undefined levels never make an edge. The sampled level is
// latched in f and only becomes the previous level once f is committed.
func (e *edge) rising(f *gatesim.Frame, s gatesim.Signal) bool {
	s = input(s)
	r := e.prev == gatesim.Zero && s == gatesim.One
	f.Latch(func() { e.prev = s })
	return r
}
