// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package gatesim_test

import (
	"reflect"
	"strconv"
	"testing"

	"github.com/db47h/gatesim"
	"github.com/db47h/gatesim/gatelib"
	"github.com/db47h/gatesim/simtest"
	"github.com/pkg/errors"
)

// jkCircuit builds a JK flip flop with J=1, K=0 clocked by a CLOCK with
// HALF_CYCLE=1.
func jkCircuit(t *testing.T, opts ...gatesim.Option) (c *gatesim.Circuit, clk, q gatesim.WireID) {
	c = newCircuit(t, opts...)
	_, j := driver(t, c, "1")
	_, k := driver(t, c, "0")
	cg := createGate(t, c, gatelib.KindClock, map[string]string{gatelib.ParamHalfCycle: "1"})
	clk = c.CreateWire()
	connect(t, c, cg, "OUT", gatesim.Output, clk)
	ff := createGate(t, c, gatelib.KindJKFF, nil)
	q, nq := c.CreateWire(), c.CreateWire()
	connect(t, c, ff, "J", gatesim.Input, j)
	connect(t, c, ff, "K", gatesim.Input, k)
	connect(t, c, ff, "CLK", gatesim.Input, clk)
	connect(t, c, ff, "Q", gatesim.Output, q)
	connect(t, c, ff, "NQ", gatesim.Output, nq)
	return c, clk, q
}

func step(t *testing.T, c *gatesim.Circuit) gatesim.Result {
	t.Helper()
	r, err := c.Step()
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestStep_time(t *testing.T) {
	c1, _, _ := jkCircuit(t)
	if tm := c1.Time(); tm != 0 {
		t.Fatalf("expected time 0, got %d", tm)
	}
	if r := step(t, c1); r.Time != 1 || c1.Time() != 1 {
		t.Fatalf("expected time 1, got %d", r.Time)
	}
	for i := 1; i < 10; i++ {
		step(t, c1)
	}
	if tm := c1.Time(); tm != 10 {
		t.Fatalf("expected time 10, got %d", tm)
	}

	c2, _, _ := jkCircuit(t)
	r, err := c2.StepN(10)
	if err != nil {
		t.Fatal(err)
	}
	if r.Time != 10 || c2.Time() != 10 {
		t.Fatalf("expected time 10, got %d", r.Time)
	}
	if s1, s2 := simtest.States(c1), simtest.States(c2); !reflect.DeepEqual(s1, s2) {
		t.Fatalf("final states differ:\n%v\n%v", s1, s2)
	}

	// settling does not advance time
	settle(t, c2)
	if c2.Time() != 10 {
		t.Fatalf("settle changed time to %d", c2.Time())
	}
	if _, err = c2.StepN(-1); err == nil {
		t.Fatal("expected error for a negative step count")
	}
	if r, _ = c2.StepN(0); r.Time != 10 || len(r.Changed) != 0 {
		t.Fatalf("StepN(0): unexpected result %+v", r)
	}
}

func TestStep_clock(t *testing.T) {
	c := newCircuit(t)
	g := createGate(t, c, gatelib.KindClock, map[string]string{gatelib.ParamHalfCycle: "2"})
	w := c.CreateWire()
	connect(t, c, g, "OUT", gatesim.Output, w)
	var (
		prev    = wireState(t, c, w)
		toggles int
	)
	for i := 0; i < 10; i++ {
		r := step(t, c)
		s := wireState(t, c, w)
		ch := simtest.Changes(r)
		if _, ok := ch[w]; ok != (s != prev) {
			t.Fatalf("step %d: diff %v does not match state change %v -> %v", r.Time, r.Changed, prev, s)
		}
		if prev.Defined() && s != prev {
			toggles++
		}
		prev = s
	}
	if toggles < 2 {
		t.Fatalf("clock toggled %d times in 10 steps", toggles)
	}
}

func TestStep_jkff(t *testing.T) {
	c, _, q := jkCircuit(t)
	for i := 0; i < 10; i++ {
		step(t, c)
		if wireState(t, c, q) == gatesim.One {
			// rising edge seen at step 4: CLK is sampled from the wire states
			// of the previous step.
			if c.Time() != 4 {
				t.Fatalf("Q=ONE at step %d, expected 4", c.Time())
			}
			return
		}
	}
	t.Fatal("Q did not reach ONE in 10 steps")
}

func TestSettle_mux(t *testing.T) {
	c := newCircuit(t)
	mux := createGate(t, c, gatelib.KindMux, nil)
	for pin, v := range map[string]string{"IN_0": "0", "IN_1": "1", "SEL_0": "1"} {
		_, w := driver(t, c, v)
		connect(t, c, mux, pin, gatesim.Input, w)
	}
	out := c.CreateWire()
	connect(t, c, mux, "OUT", gatesim.Output, out)
	r := settle(t, c)
	if !r.Settled || r.Time != 0 {
		t.Fatalf("unexpected result %+v", r)
	}
	if s := wireState(t, c, out); s != gatesim.One {
		t.Fatalf("expected OUT=ONE, got %v", s)
	}
	if _, ok := simtest.Changes(r)[out]; !ok {
		t.Fatalf("OUT not reported as changed: %v", r.Changed)
	}
}

func TestSettle_idempotent(t *testing.T) {
	c, _, _ := jkCircuit(t)
	if r := settle(t, c); len(r.Changed) == 0 {
		t.Fatal("first settle should report changes")
	}
	r := settle(t, c)
	if !r.Settled || len(r.Changed) != 0 {
		t.Fatalf("second settle: unexpected result %+v", r)
	}
}

func TestSettle_sequential(t *testing.T) {
	c, clk, q := jkCircuit(t)
	settle(t, c)
	if s := wireState(t, c, clk); s != gatesim.Zero {
		t.Fatalf("expected CLK=ZERO, got %v", s)
	}
	for i := 0; i < 5; i++ {
		settle(t, c)
	}
	if s := wireState(t, c, clk); s != gatesim.Zero {
		t.Fatalf("settle advanced the clock: CLK=%v", s)
	}
	if s := wireState(t, c, q); s != gatesim.Zero {
		t.Fatalf("expected Q=ZERO, got %v", s)
	}
}

func TestSettle_oscillator(t *testing.T) {
	c := newCircuit(t)
	d, en := driver(t, c, "0")
	nand := createGate(t, c, gatelib.KindNand, nil)
	loop := c.CreateWire()
	connect(t, c, nand, "IN_0", gatesim.Input, en)
	connect(t, c, nand, "IN_1", gatesim.Input, loop)
	connect(t, c, nand, "OUT", gatesim.Output, loop)
	if r := settle(t, c); !r.Settled {
		t.Fatal("disabled oscillator should settle")
	}
	if err := c.SetParameter(d, gatelib.ParamOutputNum, "1"); err != nil {
		t.Fatal(err)
	}
	r := settle(t, c)
	if r.Settled {
		t.Fatal("enabled oscillator should not settle")
	}
	if r.Time != 0 {
		t.Fatalf("settle advanced time to %d", r.Time)
	}
}

func TestStepN_coalesce(t *testing.T) {
	c, clk, _ := jkCircuit(t)
	settle(t, c)
	// CLK goes ONE then back to ZERO
	r, err := c.StepN(2)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := simtest.Changes(r)[clk]; ok {
		t.Fatalf("CLK reported as changed: %v", r.Changed)
	}
	r, err = c.StepN(1)
	if err != nil {
		t.Fatal(err)
	}
	if s, ok := simtest.Changes(r)[clk]; !ok || s != gatesim.One {
		t.Fatalf("CLK not reported as changed to ONE: %v", r.Changed)
	}
	for i := 1; i < len(r.Changed); i++ {
		if r.Changed[i-1].ID >= r.Changed[i].ID {
			t.Fatalf("changes not sorted by wire id: %v", r.Changed)
		}
	}
}

func TestOrder(t *testing.T) {
	c := newCircuit(t)
	// create gates in reverse dependency order
	not2 := createGate(t, c, gatelib.KindNot, nil)
	not1 := createGate(t, c, gatelib.KindNot, nil)
	d, w := driver(t, c, "1")
	w2 := c.CreateWire()
	connect(t, c, not1, "IN", gatesim.Input, w)
	connect(t, c, not1, "OUT", gatesim.Output, w2)
	connect(t, c, not2, "IN", gatesim.Input, w2)
	exp := []gatesim.GateID{d, not1, not2}
	if o := c.Order(); !reflect.DeepEqual(o, exp) {
		t.Fatalf("expected order %v, got %v", exp, o)
	}
	// gates in a loop are ordered by id
	connect(t, c, not2, "OUT", gatesim.Output, w)
	exp = []gatesim.GateID{d, not2, not1}
	if o := c.Order(); !reflect.DeepEqual(o, exp) {
		t.Fatalf("expected order %v with loop, got %v", exp, o)
	}
}

// chain builds a clock feeding a chain of n NOT gates with taps into XOR
// gates.
func chain(t *testing.T, n int, opts ...gatesim.Option) *gatesim.Circuit {
	c := newCircuit(t, opts...)
	cg := createGate(t, c, gatelib.KindClock, map[string]string{gatelib.ParamHalfCycle: "3"})
	prev := c.CreateWire()
	connect(t, c, cg, "OUT", gatesim.Output, prev)
	first := prev
	for i := 0; i < n; i++ {
		not := createGate(t, c, gatelib.KindNot, nil)
		w := c.CreateWire()
		connect(t, c, not, "IN", gatesim.Input, prev)
		connect(t, c, not, "OUT", gatesim.Output, w)
		if i%3 == 0 {
			x := createGate(t, c, gatelib.KindXor, nil)
			connect(t, c, x, "IN_0", gatesim.Input, first)
			connect(t, c, x, "IN_1", gatesim.Input, w)
			connect(t, c, x, "OUT", gatesim.Output, c.CreateWire())
		}
		prev = w
	}
	return c
}

func TestStep_workers(t *testing.T) {
	c1 := chain(t, 40)
	c2 := chain(t, 40, gatesim.WithWorkers(4))
	for i := 0; i < 30; i++ {
		r1, r2 := step(t, c1), step(t, c2)
		if !reflect.DeepEqual(r1, r2) {
			t.Fatalf("step %d: results differ:\n%v\n%v", i+1, r1, r2)
		}
	}
}

var boomKind = &gatesim.Kind{
	Name: "BOOM",
	New: func(p *gatesim.Params) (*gatesim.Part, error) {
		return &gatesim.Part{
			Inputs:  []string{"IN"},
			Outputs: []string{"OUT"},
			Mount: func(s *gatesim.Socket) gatesim.Updater {
				in, out := s.Pin("IN"), s.Pin("OUT")
				return func(f *gatesim.Frame) {
					if f.Get(in) == gatesim.One {
						panic("boom at " + strconv.FormatUint(f.Time(), 10))
					}
					f.Set(out, f.Get(in))
				}
			},
		}, nil
	},
}

func TestStep_evalError(t *testing.T) {
	for _, workers := range []int{1, 2} {
		reg := gatelib.NewRegistry()
		if err := reg.Register(boomKind); err != nil {
			t.Fatal(err)
		}
		c, err := gatesim.NewCircuit(reg, gatesim.WithWorkers(workers))
		if err != nil {
			t.Fatal(err)
		}
		_, w := driver(t, c, "1")
		b := createGate(t, c, "BOOM", nil)
		// padding so that the parallel path is taken
		for i := 0; i < 4; i++ {
			driver(t, c, "0")
		}
		out := c.CreateWire()
		connect(t, c, b, "IN", gatesim.Input, w)
		connect(t, c, b, "OUT", gatesim.Output, out)

		r, err := c.StepN(5)
		var ee *gatesim.EvalError
		if !errors.As(err, &ee) {
			t.Fatalf("workers=%d: expected an EvalError, got %v", workers, err)
		}
		if ee.Gate != b || ee.Kind != "BOOM" {
			t.Fatalf("workers=%d: wrong gate reported: %v", workers, ee)
		}
		// step 1 ran, step 2 failed and was not committed
		if r.Time != 1 || c.Time() != 1 {
			t.Fatalf("workers=%d: expected time 1, got %d", workers, r.Time)
		}
		if s := wireState(t, c, out); s != gatesim.Unknown {
			t.Fatalf("workers=%d: expected OUT=UNKNOWN, got %v", workers, s)
		}
		if s := wireState(t, c, w); s != gatesim.One {
			t.Fatalf("workers=%d: expected IN=ONE, got %v", workers, s)
		}
	}
}

func TestStep_evalErrorKeepsSequentialState(t *testing.T) {
	for _, workers := range []int{1, 2} {
		reg := gatelib.NewRegistry()
		if err := reg.Register(boomKind); err != nil {
			t.Fatal(err)
		}
		c, err := gatesim.NewCircuit(reg, gatesim.WithWorkers(workers))
		if err != nil {
			t.Fatal(err)
		}
		cg := createGate(t, c, gatelib.KindClock, map[string]string{gatelib.ParamHalfCycle: "1"})
		clk := c.CreateWire()
		connect(t, c, cg, "OUT", gatesim.Output, clk)
		b := createGate(t, c, "BOOM", nil)
		connect(t, c, b, "IN", gatesim.Input, clk)
		connect(t, c, b, "OUT", gatesim.Output, c.CreateWire())
		for i := 0; i < 4; i++ {
			driver(t, c, "0")
		}

		// BOOM fails as soon as it reads CLK=ONE, at step 2
		if _, err = c.StepN(5); err == nil {
			t.Fatalf("workers=%d: expected an error", workers)
		}
		if c.Time() != 1 || wireState(t, c, clk) != gatesim.One {
			t.Fatalf("workers=%d: expected CLK=ONE at time 1, got %v at %d", workers, wireState(t, c, clk), c.Time())
		}
		if err = c.DisconnectInput(b, "IN"); err != nil {
			t.Fatal(err)
		}
		r := settle(t, c)
		if _, ok := simtest.Changes(r)[clk]; ok || wireState(t, c, clk) != gatesim.One {
			t.Fatalf("workers=%d: clock state changed by the failed step: %v", workers, r.Changed)
		}
		// retrying runs the step that failed
		r = step(t, c)
		if s := simtest.Changes(r)[clk]; r.Time != 2 || s != gatesim.Zero {
			t.Fatalf("workers=%d: expected CLK=ZERO at time 2, got %v at %d", workers, r.Changed, r.Time)
		}
	}
}
