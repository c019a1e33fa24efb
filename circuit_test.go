// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package gatesim_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/db47h/gatesim"
	"github.com/db47h/gatesim/gatelib"
	"github.com/db47h/gatesim/internal/logging"
	"github.com/db47h/gatesim/simtest"
	"github.com/pkg/errors"
)

func newCircuit(t *testing.T, opts ...gatesim.Option) *gatesim.Circuit {
	t.Helper()
	c, err := gatesim.NewCircuit(gatelib.NewRegistry(), opts...)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func createGate(t *testing.T, c *gatesim.Circuit, kind string, params map[string]string) gatesim.GateID {
	t.Helper()
	id, err := c.CreateGate(kind, params)
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func connect(t *testing.T, c *gatesim.Circuit, g gatesim.GateID, pin string, dir gatesim.Direction, w gatesim.WireID) {
	t.Helper()
	if err := c.Connect(g, pin, dir, w); err != nil {
		t.Fatal(err)
	}
}

func driver(t *testing.T, c *gatesim.Circuit, v string) (gatesim.GateID, gatesim.WireID) {
	t.Helper()
	g := createGate(t, c, gatelib.KindDriver, map[string]string{gatelib.ParamOutputNum: v})
	w := c.CreateWire()
	connect(t, c, g, "OUT", gatesim.Output, w)
	return g, w
}

func wireState(t *testing.T, c *gatesim.Circuit, w gatesim.WireID) gatesim.Signal {
	t.Helper()
	s, err := c.WireState(w)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func settle(t *testing.T, c *gatesim.Circuit) gatesim.Result {
	t.Helper()
	r, err := c.Settle()
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestCircuit_structuralErrors(t *testing.T) {
	c := newCircuit(t)
	and := createGate(t, c, gatelib.KindAnd, nil)
	w1, w2 := c.CreateWire(), c.CreateWire()
	connect(t, c, and, "IN_0", gatesim.Input, w1)

	td := []struct {
		name string
		err  error
		fn   func() error
	}{
		{"kind", gatesim.ErrUnknownGateKind, func() error { _, err := c.CreateGate("FLUX_CAPACITOR", nil); return err }},
		{"param", gatesim.ErrInvalidParameter, func() error {
			_, err := c.CreateGate(gatelib.KindAnd, map[string]string{gatelib.ParamWidth: "0"})
			return err
		}},
		{"pin", gatesim.ErrUnknownPin, func() error { return c.ConnectInput(and, "IN_2", w2) }},
		{"direction", gatesim.ErrUnknownPin, func() error { return c.ConnectOutput(and, "IN_1", w2) }},
		{"connected", gatesim.ErrPinAlreadyConnected, func() error { return c.ConnectInput(and, "IN_0", w2) }},
		{"gate", gatesim.ErrUnknownGate, func() error { return c.ConnectInput(42, "IN_0", w2) }},
		{"wire", gatesim.ErrUnknownWire, func() error { return c.ConnectInput(and, "IN_1", 42) }},
		{"deleteGate", gatesim.ErrUnknownGate, func() error { return c.DeleteGate(42) }},
		{"deleteWire", gatesim.ErrUnknownWire, func() error { return c.DeleteWire(42) }},
		{"gateID", gatesim.ErrDuplicateID, func() error { return c.AddGate(and, gatelib.KindOr, nil) }},
		{"wireID", gatesim.ErrDuplicateID, func() error { return c.AddWire(w1) }},
		{"setParameter", gatesim.ErrInvalidParameter, func() error { return c.SetParameter(and, gatelib.ParamInputBits, "x") }},
		{"unknownParameter", gatesim.ErrInvalidParameter, func() error { return c.SetParameter(and, "SPEED", "1") }},
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			err := d.fn()
			if !errors.Is(err, d.err) {
				t.Fatalf("expected %v, got %v", d.err, err)
			}
		})
	}

	// the graph is unchanged
	if c.Size() != 1 || len(c.Wires()) != 2 {
		t.Fatalf("unexpected topology: %d gates, %d wires", c.Size(), len(c.Wires()))
	}
	gi, err := c.Gate(and)
	if err != nil {
		t.Fatal(err)
	}
	if len(gi.Params) != 0 || len(gi.Connections) != 1 || gi.Connections[0] != (gatesim.Connection{Pin: "IN_0", Dir: gatesim.Input, Wire: w1}) {
		t.Fatalf("gate changed after failed operations: %+v", gi)
	}
	// connecting a pin to its own wire is a no-op
	if err = c.ConnectInput(and, "IN_0", w1); err != nil {
		t.Fatal(err)
	}
}

func TestCircuit_paramErrorNamesParameter(t *testing.T) {
	c := newCircuit(t)
	_, err := c.CreateGate(gatelib.KindClock, map[string]string{gatelib.ParamHalfCycle: "-3"})
	var pe *gatesim.ParamError
	if !errors.As(err, &pe) {
		t.Fatalf("expected a ParamError, got %v", err)
	}
	if pe.Name != gatelib.ParamHalfCycle || pe.Value != "-3" {
		t.Fatalf("wrong parameter reported: %+v", pe)
	}
}

func TestCircuit_ids(t *testing.T) {
	c := newCircuit(t)
	if err := c.AddGate(10, gatelib.KindNot, nil); err != nil {
		t.Fatal(err)
	}
	if id := createGate(t, c, gatelib.KindNot, nil); id != 11 {
		t.Fatalf("expected id 11, got %d", id)
	}
	if err := c.AddWire(5); err != nil {
		t.Fatal(err)
	}
	if w := c.CreateWire(); w != 6 {
		t.Fatalf("expected wire id 6, got %d", w)
	}
	if s := wireState(t, c, 5); s != gatesim.HiZ {
		t.Fatalf("new wire: expected HI_Z, got %v", s)
	}
	gi, _ := c.Gate(10)
	if gi.Kind != gatelib.KindNot {
		t.Fatalf("expected kind NOT, got %s", gi.Kind)
	}
}

func TestCircuit_conflict(t *testing.T) {
	c := newCircuit(t)
	d0, w := driver(t, c, "0")
	d1 := createGate(t, c, gatelib.KindDriver, map[string]string{gatelib.ParamOutputNum: "1"})
	connect(t, c, d1, "OUT", gatesim.Output, w)
	empty := c.CreateWire()

	if _, err := c.Step(); err != nil {
		t.Fatal(err)
	}
	if s := wireState(t, c, w); s != gatesim.Conflict {
		t.Fatalf("expected CONFLICT, got %v", s)
	}
	if s := wireState(t, c, empty); s != gatesim.HiZ {
		t.Fatalf("expected HI_Z, got %v", s)
	}

	// agreeing drivers
	if err := c.SetParameter(d0, gatelib.ParamOutputNum, "1"); err != nil {
		t.Fatal(err)
	}
	settle(t, c)
	if s := wireState(t, c, w); s != gatesim.One {
		t.Fatalf("expected ONE, got %v", s)
	}

	wi := c.Wires()[0]
	if len(wi.Drivers) != 2 || wi.Drivers[0] != (gatesim.PinRef{Gate: d0, Pin: "OUT"}) {
		t.Fatalf("unexpected drivers: %v", wi.Drivers)
	}

	// removing all drivers leaves the wire floating
	if err := c.DisconnectOutput(d0, "OUT"); err != nil {
		t.Fatal(err)
	}
	if err := c.DeleteGate(d1); err != nil {
		t.Fatal(err)
	}
	if s := wireState(t, c, w); s != gatesim.HiZ {
		t.Fatalf("expected HI_Z, got %v", s)
	}
	// disconnecting twice is a no-op
	if err := c.DisconnectOutput(d0, "OUT"); err != nil {
		t.Fatal(err)
	}
}

func TestCircuit_setParameterPins(t *testing.T) {
	c := newCircuit(t)
	and := createGate(t, c, gatelib.KindAnd, map[string]string{gatelib.ParamInputBits: "3"})
	_, a := driver(t, c, "1")
	_, b := driver(t, c, "1")
	_, cc := driver(t, c, "0")
	out := c.CreateWire()
	connect(t, c, and, "IN_0", gatesim.Input, a)
	connect(t, c, and, "IN_1", gatesim.Input, b)
	connect(t, c, and, "IN_2", gatesim.Input, cc)
	connect(t, c, and, "OUT", gatesim.Output, out)
	settle(t, c)
	if s := wireState(t, c, out); s != gatesim.Zero {
		t.Fatalf("expected ZERO, got %v", s)
	}

	// shrinking drops IN_2
	if err := c.SetParameter(and, gatelib.ParamInputBits, "2"); err != nil {
		t.Fatal(err)
	}
	if s := wireState(t, c, out); s != gatesim.Unknown {
		t.Fatalf("expected UNKNOWN before settling, got %v", s)
	}
	settle(t, c)
	if s := wireState(t, c, out); s != gatesim.One {
		t.Fatalf("expected ONE, got %v", s)
	}
	for _, wi := range c.Wires() {
		if wi.ID == cc && len(wi.Loads) != 0 {
			t.Fatalf("IN_2 still connected: %v", wi.Loads)
		}
	}
	gi, _ := c.Gate(and)
	if len(gi.Connections) != 3 {
		t.Fatalf("expected 3 connections, got %v", gi.Connections)
	}

	// widening keeps existing connections; IN_2 is back but floating
	if err := c.SetParameter(and, gatelib.ParamInputBits, "3"); err != nil {
		t.Fatal(err)
	}
	settle(t, c)
	if s := wireState(t, c, out); s != gatesim.Unknown {
		t.Fatalf("expected UNKNOWN with a floating input, got %v", s)
	}
	if s, _ := c.PinState(and, "IN_2"); s != gatesim.HiZ {
		t.Fatalf("expected IN_2 floating, got %v", s)
	}

	// a failed update keeps the previous configuration
	if err := c.SetParameter(and, gatelib.ParamInputBits, "65"); err == nil {
		t.Fatal("expected error")
	}
	gi, _ = c.Gate(and)
	if gi.Params[gatelib.ParamInputBits] != "3" || len(gi.Inputs) != 3 {
		t.Fatalf("configuration changed: %+v", gi)
	}
}

func TestCircuit_deleteWire(t *testing.T) {
	c := newCircuit(t)
	d, w := driver(t, c, "1")
	not := createGate(t, c, gatelib.KindNot, nil)
	connect(t, c, not, "IN", gatesim.Input, w)
	if err := c.DeleteWire(w); err != nil {
		t.Fatal(err)
	}
	for _, g := range []gatesim.GateID{d, not} {
		gi, _ := c.Gate(g)
		if len(gi.Connections) != 0 {
			t.Fatalf("gate %d still connected: %v", g, gi.Connections)
		}
	}
	if _, err := c.WireState(w); !errors.Is(err, gatesim.ErrUnknownWire) {
		t.Fatalf("expected ErrUnknownWire, got %v", err)
	}
	// pins are free again
	w2 := c.CreateWire()
	connect(t, c, not, "IN", gatesim.Input, w2)
	connect(t, c, d, "OUT", gatesim.Output, w2)
}

func TestCircuit_deleteGate(t *testing.T) {
	c := newCircuit(t)
	_, w := driver(t, c, "1")
	n1 := createGate(t, c, gatelib.KindNot, nil)
	n2 := createGate(t, c, gatelib.KindNot, nil)
	w2, w3 := c.CreateWire(), c.CreateWire()
	connect(t, c, n1, "IN", gatesim.Input, w)
	connect(t, c, n1, "OUT", gatesim.Output, w2)
	connect(t, c, n2, "IN", gatesim.Input, w2)
	connect(t, c, n2, "OUT", gatesim.Output, w3)
	settle(t, c)

	if err := c.DeleteGate(n1); err != nil {
		t.Fatal(err)
	}
	for _, wi := range c.Wires() {
		switch wi.ID {
		case w:
			if len(wi.Loads) != 0 {
				t.Fatalf("wire %d: stale loads %v", w, wi.Loads)
			}
		case w2:
			if len(wi.Drivers) != 0 || len(wi.Loads) != 1 {
				t.Fatalf("wire %d: unexpected drivers %v, loads %v", w2, wi.Drivers, wi.Loads)
			}
			if wi.State != gatesim.HiZ {
				t.Fatalf("wire %d: expected HI_Z, got %v", w2, wi.State)
			}
		}
	}
	for _, id := range c.Order() {
		if id == n1 {
			t.Fatal("deleted gate still in evaluation order")
		}
	}
	r := step(t, c)
	if s := simtest.Changes(r)[w3]; s != gatesim.Unknown {
		t.Fatalf("expected OUT of the floating inverter to change to UNKNOWN, got %v", r.Changed)
	}

	// delete a gate that only has loads
	if err := c.DeleteGate(n2); err != nil {
		t.Fatal(err)
	}
	if wi := c.Wires()[1]; wi.ID != w2 || len(wi.Loads) != 0 {
		t.Fatalf("unexpected wire %+v", wi)
	}
	step(t, c)
}

func TestCircuit_reportStructuralChanges(t *testing.T) {
	c := newCircuit(t)
	_, w := driver(t, c, "0")
	d1 := createGate(t, c, gatelib.KindDriver, map[string]string{gatelib.ParamOutputNum: "1"})
	connect(t, c, d1, "OUT", gatesim.Output, w)
	if s := simtest.Changes(step(t, c))[w]; s != gatesim.Conflict {
		t.Fatalf("expected CONFLICT, got %v", s)
	}
	if err := c.DisconnectOutput(d1, "OUT"); err != nil {
		t.Fatal(err)
	}
	r := settle(t, c)
	if s, ok := simtest.Changes(r)[w]; !ok || s != gatesim.Zero {
		t.Fatalf("disconnected driver: expected change to ZERO, got %v", r.Changed)
	}
	if r = step(t, c); len(r.Changed) != 0 {
		t.Fatalf("unexpected changes %v", r.Changed)
	}

	and := createGate(t, c, gatelib.KindAnd, nil)
	_, a := driver(t, c, "1")
	out := c.CreateWire()
	connect(t, c, and, "IN_0", gatesim.Input, a)
	connect(t, c, and, "IN_1", gatesim.Input, a)
	connect(t, c, and, "OUT", gatesim.Output, out)
	settle(t, c)
	if s := wireState(t, c, out); s != gatesim.One {
		t.Fatalf("expected ONE, got %v", s)
	}
	if err := c.SetParameter(and, gatelib.ParamInputBits, "3"); err != nil {
		t.Fatal(err)
	}
	r = settle(t, c)
	if s, ok := simtest.Changes(r)[out]; !ok || s != gatesim.Unknown {
		t.Fatalf("reconfigured gate: expected change to UNKNOWN, got %v", r.Changed)
	}
	if r = settle(t, c); len(r.Changed) != 0 {
		t.Fatalf("unexpected changes %v", r.Changed)
	}
}

func TestCircuit_memoryNamespace(t *testing.T) {
	c := newCircuit(t)
	rom := createGate(t, c, gatelib.KindROM, map[string]string{gatelib.ParamAddressBits: "4", "@2": "7"})
	if err := c.SetParameter(rom, "@0x5", "0x3"); err != nil {
		t.Fatal(err)
	}
	if v, _ := c.ReadMemory(rom, 5); v != 3 {
		t.Fatalf("expected 3, got %d", v)
	}
	cells, _ := c.MemoryCells(rom)
	if len(cells) != 2 || cells[0] != (gatesim.Cell{Addr: 2, Value: 7}) || cells[1] != (gatesim.Cell{Addr: 5, Value: 3}) {
		t.Fatalf("unexpected cells %v", cells)
	}
	gi, _ := c.Gate(rom)
	if _, ok := gi.Params["@2"]; ok || len(gi.Memory) != 2 {
		t.Fatalf("memory cells should not be listed as parameters: %+v", gi)
	}

	// zero clears a cell
	if err := c.SetParameter(rom, "@2", "0"); err != nil {
		t.Fatal(err)
	}
	if cells, _ = c.MemoryCells(rom); len(cells) != 1 {
		t.Fatalf("expected 1 cell, got %v", cells)
	}

	for _, d := range []struct{ name, value string }{{"@16", "1"}, {"@1", "256"}, {"@z", "1"}, {"@1", "one"}} {
		if err := c.SetParameter(rom, d.name, d.value); !errors.Is(err, gatesim.ErrInvalidParameter) {
			t.Errorf("%s=%s: expected ErrInvalidParameter, got %v", d.name, d.value, err)
		}
	}
	not := createGate(t, c, gatelib.KindNot, nil)
	if err := c.SetParameter(not, "@0", "1"); !errors.Is(err, gatesim.ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
	if _, err := c.ReadMemory(not, 0); err == nil {
		t.Fatal("expected error reading memory of a NOT gate")
	}
}

func TestCircuit_logging(t *testing.T) {
	var buf bytes.Buffer
	c := newCircuit(t, gatesim.WithLogger(logging.NewWriter(&buf, slog.LevelDebug)))
	g := createGate(t, c, gatelib.KindNot, nil)
	w := c.CreateWire()
	connect(t, c, g, "OUT", gatesim.Output, w)
	out := buf.String()
	for _, s := range []string{"gate created", "kind=NOT", "pin connected"} {
		if !strings.Contains(out, s) {
			t.Errorf("log does not contain %q:\n%s", s, out)
		}
	}
}
