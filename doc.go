/*
Package gatesim provides a discrete-event digital logic simulation engine.

A Circuit is a set of gates connected by wires. Each gate has a kind, selected
from a Registry, and a set of string parameters parsed by the kind into a Part:
a pinout and an evaluation closure. Wires carry one of five signal states
(Zero, One, HiZ, Conflict, Unknown) resolved from all the output pins driving
them.

The simulation is synchronous: Step evaluates every gate once from the wire
states of the previous step, then resolves all wires and increments the
simulated time. Settle re-evaluates combinational logic until it is stable
without advancing time, which is what callers want after changing the topology
or a parameter.

The package gatesim/gatelib provides the standard gate kinds:

	reg := gatelib.NewRegistry()
	c, _ := gatesim.NewCircuit(reg)
	clk, _ := c.CreateGate("CLOCK", map[string]string{"HALF_CYCLE": "2"})
	w := c.CreateWire()
	_ = c.ConnectOutput(clk, "OUT", w)
	r, _ := c.StepN(10)
	// r.Changed lists the wires that changed during the 10 steps.

Circuit methods are not safe for concurrent use; callers serialize structural
changes and simulation steps.
*/
package gatesim
