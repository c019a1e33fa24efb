// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package gatesim

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
)

// Direction tells apart input and output pins.
//
type Direction uint8

// Pin directions.
//
const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	if d == Output {
		return "output"
	}
	return "input"
}

// An Updater evaluates a mounted gate: it reads input pins with f.Get and
// writes output pins with f.Set. Output pins that are not set keep their
// previous value.
//
// Sequential gates keep their private state in the closure. They compute the
// next state when f.Tick() returns true and store it with f.Latch, so that a
// step that fails leaves it untouched.
//
type Updater func(f *Frame)

// A MountFn mounts a part into socket s. MountFn's should query the socket for
// assigned pin numbers and return a closure around these pin numbers.
//
// For example, a buffer can be defined like this:
//
//	buf := &Part{
//		Inputs:  []string{"IN"},
//		Outputs: []string{"OUT"},
//		Mount: func(s *Socket) Updater {
//			in, out := s.Pin("IN"), s.Pin("OUT")
//			return func(f *Frame) { f.Set(out, f.Get(in)) }
//		}}
//
type MountFn func(s *Socket) Updater

// A Part is a configured gate: its pinout and behavior. Parts are built by
// Kind constructors from the gate parameters.
//
type Part struct {
	// Input and output pin names. All names must be distinct.
	Inputs  []string
	Outputs []string
	// Sequential is set for parts that carry state across steps.
	Sequential bool
	// Memory is the addressable storage of memory parts, nil otherwise.
	Memory *Memory
	// Mount function (see MountFn).
	Mount MountFn
}

// BusPinName returns the name of the given bit of a bus.
//
func BusPinName(name string, bit int) string {
	return name + "[" + strconv.Itoa(bit) + "]"
}

// BusPins returns the pin names of a bus of the given width. A one bit bus is
// a single pin named after the bus.
//
func BusPins(name string, bits int) []string {
	if bits == 1 {
		return []string{name}
	}
	ps := make([]string, bits)
	for i := range ps {
		ps[i] = BusPinName(name, i)
	}
	return ps
}

// A Socket maps a part's pin names to pin numbers.
//
type Socket struct {
	m map[string]int
}

// Pin returns the pin number allocated to the given pin name.
// This function panics if the pin does not exist.
//
func (s *Socket) Pin(name string) int {
	n, ok := s.m[name]
	if !ok {
		panic("pin " + name + " does not exist")
	}
	return n
}

// Bus returns the pin numbers of the named bus, see BusPins.
// This function panics if the bus does not exist.
//
func (s *Socket) Bus(name string, bits int) []int {
	names := BusPins(name, bits)
	out := make([]int, len(names))
	for i, n := range names {
		out[i] = s.Pin(n)
	}
	return out
}

// Frame is the view of a gate's pins given to its Updater.
//
type Frame struct {
	cur     []Signal // pin states
	nxt     []Signal // output pin states being computed
	latches []func() // state updates applied on commit
	tick    bool
	time    uint64
}

// Get returns the current state of pin n.
//
func (f *Frame) Get(n int) Signal { return f.cur[n] }

// Set sets the state s of output pin n.
//
func (f *Frame) Set(n int, s Signal) { f.nxt[n] = s }

// Tick returns true if the evaluation advances simulated time, i.e. sequential
// parts may update their state. It returns false while settling.
//
func (f *Frame) Tick() bool { return f.tick }

// Time returns the simulated time at the end of the current evaluation.
//
func (f *Frame) Time() uint64 { return f.time }

// Latch registers fn to be called when the outputs of the evaluation are
// committed. Sequential parts update their private state from fn. If the
// evaluation is discarded, fn is never called.
//
func (f *Frame) Latch(fn func()) { f.latches = append(f.latches, fn) }

// An Instance is a mounted part with its own pin states. Circuits mount one
// instance per gate; it can also be used standalone to test behaviors.
//
type Instance struct {
	part   *Part
	pins   map[string]int
	nIn    int
	frame  Frame
	update Updater
}

// NewInstance mounts p. All pins start Unknown.
//
func NewInstance(p *Part) (*Instance, error) {
	if p.Mount == nil {
		return nil, errors.New("part has no mount function")
	}
	n := len(p.Inputs) + len(p.Outputs)
	pins := make(map[string]int, n)
	for i, name := range p.Inputs {
		pins[name] = i
	}
	for i, name := range p.Outputs {
		pins[name] = len(p.Inputs) + i
	}
	if len(pins) != n {
		return nil, errors.New("duplicate pin names in part")
	}
	i := &Instance{
		part: p,
		pins: pins,
		nIn:  len(p.Inputs),
		frame: Frame{
			cur: make([]Signal, n),
			nxt: make([]Signal, n),
		},
	}
	for k := range i.frame.cur {
		i.frame.cur[k] = Unknown
	}
	i.update = p.Mount(&Socket{m: pins})
	if i.update == nil {
		return nil, errors.New("mount function returned a nil updater")
	}
	return i, nil
}

// Part returns the mounted part.
//
func (i *Instance) Part() *Part { return i.part }

// Pin returns the number and direction of the named pin.
//
func (i *Instance) Pin(name string) (n int, dir Direction, ok bool) {
	n, ok = i.pins[name]
	if n >= i.nIn {
		dir = Output
	}
	return n, dir, ok
}

// SetInput sets the state of the named input pin.
//
func (i *Instance) SetInput(name string, s Signal) error {
	n, dir, ok := i.Pin(name)
	if !ok || dir != Input {
		return errors.Wrapf(ErrUnknownPin, "input %s", name)
	}
	i.frame.cur[n] = s
	return nil
}

// Get returns the state of the named pin.
//
func (i *Instance) Get(name string) (Signal, error) {
	n, ok := i.pins[name]
	if !ok {
		return Unknown, errors.Wrapf(ErrUnknownPin, "pin %s", name)
	}
	return i.frame.cur[n], nil
}

// Eval evaluates the instance and commits its outputs.
//
func (i *Instance) Eval(tick bool) error {
	if err := i.eval(tick, 0); err != nil {
		return err
	}
	i.commit()
	return nil
}

// eval runs the updater. Outputs are computed in the nxt buffer and are only
// visible after commit.
//
func (i *Instance) eval(tick bool, t uint64) (err error) {
	f := &i.frame
	copy(f.nxt[i.nIn:], f.cur[i.nIn:])
	f.latches = f.latches[:0]
	f.tick = tick
	f.time = t
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
			} else {
				err = errors.New(fmt.Sprint(r))
			}
		}
	}()
	i.update(f)
	return nil
}

func (i *Instance) commit() {
	f := &i.frame
	copy(f.cur[i.nIn:], f.nxt[i.nIn:])
	for _, fn := range f.latches {
		fn()
	}
	f.latches = f.latches[:0]
}

// output returns the current state of pin n.
//
func (i *Instance) output(n int) Signal { return i.frame.cur[n] }
