// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package simtest

import (
	"testing"

	"github.com/db47h/gatesim"
	"github.com/db47h/gatesim/gatelib"
)

// A Bench is a circuit holding a gate under test. Each input pin of the gate
// is driven by a DRIVER gate through its own wire and each output pin drives
// its own wire.
//
type Bench struct {
	C    *gatesim.Circuit
	Gate gatesim.GateID

	tb      testing.TB
	drivers map[string]gatesim.GateID
	wires   map[string]gatesim.WireID
}

// NewBench builds a bench around a new gate. A nil registry defaults to
// gatelib.NewRegistry().
//
func NewBench(tb testing.TB, reg *gatesim.Registry, kind string, params map[string]string, opts ...gatesim.Option) *Bench {
	tb.Helper()
	c, err := gatesim.NewCircuit(registry(reg), opts...)
	if err != nil {
		tb.Fatal(err)
	}
	g, err := c.CreateGate(kind, params)
	if err != nil {
		tb.Fatal(err)
	}
	gi, err := c.Gate(g)
	if err != nil {
		tb.Fatal(err)
	}
	b := &Bench{
		C:       c,
		Gate:    g,
		tb:      tb,
		drivers: make(map[string]gatesim.GateID),
		wires:   make(map[string]gatesim.WireID),
	}
	for _, n := range gi.Inputs {
		d, err := c.CreateGate(gatelib.KindDriver, nil)
		if err != nil {
			tb.Fatal(err)
		}
		w := c.CreateWire()
		if err = c.ConnectOutput(d, "OUT", w); err != nil {
			tb.Fatal(err)
		}
		if err = c.ConnectInput(g, n, w); err != nil {
			tb.Fatal(err)
		}
		b.drivers[n] = d
		b.wires[n] = w
	}
	for _, n := range gi.Outputs {
		w := c.CreateWire()
		if err = c.ConnectOutput(g, n, w); err != nil {
			tb.Fatal(err)
		}
		b.wires[n] = w
	}
	return b
}

// Set sets the value driven on an input pin, then settles the circuit so that
// the new value is visible on the input wire before the next step.
//
func (b *Bench) Set(pin string, v bool) {
	b.tb.Helper()
	d, ok := b.drivers[pin]
	if !ok {
		b.tb.Fatalf("no input pin %s", pin)
	}
	n := "0"
	if v {
		n = "1"
	}
	if err := b.C.SetParameter(d, gatelib.ParamOutputNum, n); err != nil {
		b.tb.Fatal(err)
	}
	b.Settle()
}

// SetBus sets the value driven on the pins of an input bus.
//
func (b *Bench) SetBus(bus string, bits int, v uint64) {
	b.tb.Helper()
	for i, n := range gatesim.BusPins(bus, bits) {
		b.Set(n, v&(1<<uint(i)) != 0)
	}
}

// Float disconnects the driver of an input pin, leaving its wire floating.
//
func (b *Bench) Float(pin string) {
	b.tb.Helper()
	d, ok := b.drivers[pin]
	if !ok {
		b.tb.Fatalf("no input pin %s", pin)
	}
	if err := b.C.DisconnectOutput(d, "OUT"); err != nil {
		b.tb.Fatal(err)
	}
	b.Settle()
}

// Wire returns the wire connected to the named pin of the gate under test.
//
func (b *Bench) Wire(pin string) gatesim.WireID {
	b.tb.Helper()
	w, ok := b.wires[pin]
	if !ok {
		b.tb.Fatalf("no pin %s", pin)
	}
	return w
}

// Get returns the state of the wire connected to the named pin.
//
func (b *Bench) Get(pin string) gatesim.Signal {
	b.tb.Helper()
	s, err := b.C.WireState(b.Wire(pin))
	if err != nil {
		b.tb.Fatal(err)
	}
	return s
}

// GetBus returns the value of an output bus. It fails the test if any pin is
// not ZERO or ONE.
//
func (b *Bench) GetBus(bus string, bits int) uint64 {
	b.tb.Helper()
	var v uint64
	for i, n := range gatesim.BusPins(bus, bits) {
		switch s := b.Get(n); s {
		case gatesim.One:
			v |= 1 << uint(i)
		case gatesim.Zero:
		default:
			b.tb.Fatalf("pin %s is %v", n, s)
		}
	}
	return v
}

// Settle settles the circuit and fails the test if it does not stabilize.
//
func (b *Bench) Settle() gatesim.Result {
	b.tb.Helper()
	r, err := b.C.Settle()
	if err != nil {
		b.tb.Fatal(err)
	}
	if !r.Settled {
		b.tb.Fatal("circuit did not settle")
	}
	return r
}

// Step runs n steps.
//
func (b *Bench) Step(n int) gatesim.Result {
	b.tb.Helper()
	r, err := b.C.StepN(n)
	if err != nil {
		b.tb.Fatal(err)
	}
	return r
}

// Driver returns the DRIVER gate connected to the named input pin.
//
func (b *Bench) Driver(pin string) gatesim.GateID {
	b.tb.Helper()
	d, ok := b.drivers[pin]
	if !ok {
		b.tb.Fatalf("no input pin %s", pin)
	}
	return d
}
