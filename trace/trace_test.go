// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package trace_test

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/db47h/gatesim"
	"github.com/db47h/gatesim/gatelib"
	"github.com/db47h/gatesim/trace"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"
)

// clockCircuit returns a circuit with a CLOCK (HALF_CYCLE=1) and its inverse.
func clockCircuit(t *testing.T) (*gatesim.Circuit, gatesim.WireID, gatesim.WireID) {
	c, err := gatesim.NewCircuit(gatelib.NewRegistry())
	require.NoError(t, err)
	clk, err := c.CreateGate(gatelib.KindClock, nil)
	require.NoError(t, err)
	not, err := c.CreateGate(gatelib.KindNot, nil)
	require.NoError(t, err)
	w, nw := c.CreateWire(), c.CreateWire()
	require.NoError(t, c.ConnectOutput(clk, "OUT", w))
	require.NoError(t, c.ConnectInput(not, "IN", w))
	require.NoError(t, c.ConnectOutput(not, "OUT", nw))
	_, err = c.Settle()
	require.NoError(t, err)
	return c, w, nw
}

func TestRecorder(t *testing.T) {
	c, w, nw := clockCircuit(t)
	r := trace.NewRecorder(c)
	require.NoError(t, r.Watch("clk", w))
	require.NoError(t, r.Watch("nclk", nw))
	require.Error(t, r.Watch("bad", 42))

	res, err := r.Step(4)
	require.NoError(t, err)
	require.Equal(t, uint64(4), res.Time)
	// CLK toggled 4 times and is back to ZERO, the inverter lags one step
	// behind
	require.Equal(t, []gatesim.WireState{{ID: nw, State: gatesim.Zero}}, res.Changed)

	s := r.Samples()
	require.Len(t, s, 5)
	exp := []gatesim.Signal{gatesim.Zero, gatesim.One, gatesim.Zero, gatesim.One, gatesim.Zero}
	for i, e := range exp {
		require.Equal(t, uint64(i), s[i].Time)
		require.Equal(t, e, s[i].States[0], "clk at %d", i)
	}
	require.Equal(t, gatesim.One, s[1].States[1])
	require.Equal(t, gatesim.Zero, s[2].States[1])

	require.Error(t, r.Watch("late", w))

	res, err = r.Step(1)
	require.NoError(t, err)
	require.Equal(t, []gatesim.WireState{{ID: w, State: gatesim.One}, {ID: nw, State: gatesim.One}}, res.Changed)

	// resampling at the same time replaces the last sample
	require.NoError(t, r.Sample())
	require.Len(t, r.Samples(), 6)
	r.Reset()
	require.Empty(t, r.Samples())
}

func TestWriteVCD(t *testing.T) {
	c, w, _ := clockCircuit(t)
	r := trace.NewRecorder(c)
	require.NoError(t, r.Watch("clk", w))
	_, err := r.Step(2)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.WriteVCD(&buf, "top", ""))
	require.Equal(t, strings.Join([]string{
		"$version gatesim $end",
		"$timescale 1ns $end",
		"$scope module top $end",
		"$var wire 1 ! clk $end",
		"$upscope $end",
		"$enddefinitions $end",
		"#0",
		"$dumpvars",
		"0!",
		"$end",
		"#1",
		"1!",
		"#2",
		"0!",
		"",
	}, "\n"), buf.String())
}

func TestWriteVCD_undefined(t *testing.T) {
	c, err := gatesim.NewCircuit(gatelib.NewRegistry())
	require.NoError(t, err)
	short := c.CreateWire()
	for _, v := range []string{"0", "1"} {
		d, err := c.CreateGate(gatelib.KindDriver, map[string]string{gatelib.ParamOutputNum: v})
		require.NoError(t, err)
		require.NoError(t, c.ConnectOutput(d, "OUT", short))
	}
	not, err := c.CreateGate(gatelib.KindNot, nil)
	require.NoError(t, err)
	unknown := c.CreateWire()
	require.NoError(t, c.ConnectOutput(not, "OUT", unknown))
	_, err = c.Settle()
	require.NoError(t, err)

	r := trace.NewRecorder(c)
	require.NoError(t, r.Watch("short", short))
	require.NoError(t, r.Watch("unknown", unknown))
	require.NoError(t, r.Sample())
	require.Equal(t, []gatesim.Signal{gatesim.Conflict, gatesim.Unknown}, r.Samples()[0].States)

	var buf bytes.Buffer
	require.NoError(t, r.WriteVCD(&buf, "top", ""))
	require.Contains(t, buf.String(), "$dumpvars\nx!\nx\"\n$end\n")
}

func TestPlot(t *testing.T) {
	c, w, nw := clockCircuit(t)
	r := trace.NewRecorder(c)
	_, err := r.Plot("empty")
	require.Error(t, err)

	require.NoError(t, r.Watch("clk", w))
	require.NoError(t, r.Watch("nclk", nw))
	_, err = r.Step(8)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.WritePlot(&buf, "clock", "svg", 4*vg.Inch, 2*vg.Inch))
	require.Contains(t, buf.String(), "<svg")

	name := filepath.Join(t.TempDir(), "clock.png")
	require.NoError(t, r.SavePlot(name, "clock", 4*vg.Inch, 2*vg.Inch))
	require.FileExists(t, name)
}
