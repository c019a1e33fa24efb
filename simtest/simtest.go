// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package simtest provides utility functions for testing gates and circuits.
//
package simtest

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"testing"

	"github.com/db47h/gatesim"
	"github.com/db47h/gatesim/gatelib"
)

func registry(r *gatesim.Registry) *gatesim.Registry {
	if r == nil {
		return gatelib.NewRegistry()
	}
	return r
}

// NewInstance configures and mounts a standalone gate of the given kind.
// A nil registry defaults to gatelib.NewRegistry().
//
func NewInstance(tb testing.TB, reg *gatesim.Registry, kind string, params map[string]string) *gatesim.Instance {
	tb.Helper()
	k, err := registry(reg).Lookup(kind)
	if err != nil {
		tb.Fatal(err)
	}
	p, err := k.Configure(params)
	if err != nil {
		tb.Fatal(err)
	}
	i, err := gatesim.NewInstance(p)
	if err != nil {
		tb.Fatal(err)
	}
	return i
}

// Eval sets the inputs of a standalone instance, evaluates it once and returns
// the state of all its outputs.
//
func Eval(tb testing.TB, i *gatesim.Instance, inputs map[string]gatesim.Signal, tick bool) map[string]gatesim.Signal {
	tb.Helper()
	for n, s := range inputs {
		if err := i.SetInput(n, s); err != nil {
			tb.Fatal(err)
		}
	}
	if err := i.Eval(tick); err != nil {
		tb.Fatal(err)
	}
	out := make(map[string]gatesim.Signal, len(i.Part().Outputs))
	for _, n := range i.Part().Outputs {
		s, err := i.Get(n)
		if err != nil {
			tb.Fatal(err)
		}
		out[n] = s
	}
	return out
}

func inputString(names []string, in map[string]gatesim.Signal) string {
	var b strings.Builder
	for _, n := range names {
		if b.Len() > 0 {
			b.WriteString(", ")
		}
		b.WriteString(n)
		b.WriteRune('=')
		b.WriteString(in[n].String())
	}
	return b.String()
}

// TruthTable checks a combinational gate against a truth table. Each row
// lists input values in the order of the gate's input pins, followed by the
// expected output values in the order of its output pins.
//
func TruthTable(t *testing.T, i *gatesim.Instance, rows [][]gatesim.Signal) {
	t.Helper()
	p := i.Part()
	for _, row := range rows {
		if len(row) != len(p.Inputs)+len(p.Outputs) {
			t.Fatalf("bad row length %d, expected %d", len(row), len(p.Inputs)+len(p.Outputs))
		}
		in := make(map[string]gatesim.Signal, len(p.Inputs))
		for k, n := range p.Inputs {
			in[n] = row[k]
		}
		out := Eval(t, i, in, false)
		for k, n := range p.Outputs {
			if exp := row[len(p.Inputs)+k]; out[n] != exp {
				t.Errorf("%s => %s = %v, got %v", inputString(p.Inputs, in), n, exp, out[n])
			}
		}
	}
}

func randSignal(r *rand.Rand) gatesim.Signal {
	return gatesim.FromBool(r.Int63()&(1<<62) != 0)
}

// ComparePart takes two gate instances and compares their outputs given the
// same random defined inputs. Both instances must have the same pinout.
//
func ComparePart(t *testing.T, i1, i2 *gatesim.Instance, iter int) {
	t.Helper()
	p1, p2 := i1.Part(), i2.Part()
	if fmt.Sprint(p1.Inputs) != fmt.Sprint(p2.Inputs) {
		t.Fatalf("inputs differ: %v != %v", p1.Inputs, p2.Inputs)
	}
	if fmt.Sprint(p1.Outputs) != fmt.Sprint(p2.Outputs) {
		t.Fatalf("outputs differ: %v != %v", p1.Outputs, p2.Outputs)
	}

	r := rand.New(rand.NewSource(int64(len(p1.Inputs))))
	in := make(map[string]gatesim.Signal, len(p1.Inputs))
	try := func() {
		o1 := Eval(t, i1, in, true)
		o2 := Eval(t, i2, in, true)
		for _, n := range p1.Outputs {
			if o1[n] != o2[n] {
				t.Fatalf("\nExpected %s => %s=%v\nGot %v", inputString(p1.Inputs, in), n, o1[n], o2[n])
			}
		}
	}

	// try all 0, then all 1
	for _, s := range []gatesim.Signal{gatesim.Zero, gatesim.One} {
		for _, n := range p1.Inputs {
			in[n] = s
		}
		try()
	}
	for k := 0; k < iter; k++ {
		for _, n := range p1.Inputs {
			in[n] = randSignal(r)
		}
		try()
	}
}

// Changes converts the changed wire list of a step result to a map.
//
func Changes(r gatesim.Result) map[gatesim.WireID]gatesim.Signal {
	m := make(map[gatesim.WireID]gatesim.Signal, len(r.Changed))
	for _, ws := range r.Changed {
		m[ws.ID] = ws.State
	}
	return m
}

// States returns the state of all wires of a circuit.
//
func States(c *gatesim.Circuit) map[gatesim.WireID]gatesim.Signal {
	ws := c.Wires()
	m := make(map[gatesim.WireID]gatesim.Signal, len(ws))
	for _, w := range ws {
		m[w.ID] = w.State
	}
	return m
}

// Keys returns the sorted keys of a wire state map.
//
func Keys(m map[gatesim.WireID]gatesim.Signal) []gatesim.WireID {
	ks := make([]gatesim.WireID, 0, len(m))
	for k := range m {
		ks = append(ks, k)
	}
	sort.Slice(ks, func(i, j int) bool { return ks[i] < ks[j] })
	return ks
}
