// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package gatesim

import (
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// WireState is the resolved state of a wire.
//
type WireState struct {
	ID    WireID
	State Signal
}

// Result is the outcome of Step, StepN or Settle.
//
type Result struct {
	// Time is the simulated time after the operation.
	Time uint64
	// Changed lists the wires whose state differs from the state reported by
	// the previous Result, sorted by wire id. Wires created since then are
	// compared to HiZ. Changes made by structural mutations in between, like
	// disconnecting a driver or reconfiguring a gate, are included. A wire
	// that changed and changed back is not listed.
	Changed []WireState
	// Settled is set by Settle when the circuit reached a stable state.
	Settled bool
}

// report lists the wires whose state differs from their last reported state
// and marks them as reported.
//
func report(ws []*wire) []WireState {
	var out []WireState
	for _, w := range ws {
		if w.state != w.reported {
			out = append(out, WireState{w.id, w.state})
			w.reported = w.state
		}
	}
	return out
}

// Step advances the simulation by one step. See StepN.
//
func (c *Circuit) Step() (Result, error) {
	return c.StepN(1)
}

// StepN advances the simulation by n steps.
//
// During a step, every gate is evaluated once from the wire states of the
// previous step, then all wires are resolved from the new gate outputs and the
// simulated time is incremented. Clocks and other sequential gates advance
// their state exactly once per step.
//
// If a gate fails to evaluate, the failing step is not committed: wire
// states, gate outputs and the state of sequential gates are left as they were
// after the previous step. StepN then returns the result of the steps already
// run along with the error.
//
func (c *Circuit) StepN(n int) (Result, error) {
	return c.StepFunc(n, nil)
}

// StepFunc is like StepN but calls fn after each committed step, e.g. to
// sample wire states. If fn returns an error, stepping stops and that error is
// returned.
//
func (c *Circuit) StepFunc(n int, fn func(t uint64) error) (Result, error) {
	if n < 0 {
		return Result{Time: c.time}, errors.Errorf("invalid step count %d", n)
	}
	var err error
	for i := 0; i < n; i++ {
		if err = c.tick(); err != nil {
			err = errors.Wrapf(err, "step %d", c.time+1)
			break
		}
		if fn != nil {
			if err = fn(c.time); err != nil {
				break
			}
		}
	}
	return Result{Time: c.time, Changed: report(c.wireList())}, err
}

func (c *Circuit) tick() error {
	order := c.evalOrder()
	t := c.time + 1
	if err := c.evalAll(order, t); err != nil {
		c.log.Error("step failed", "time", t, "error", err)
		return err
	}
	for _, g := range order {
		g.commit()
	}
	for _, w := range c.wireList() {
		w.state = w.resolve()
	}
	c.time = t
	return nil
}

func (c *Circuit) evalGate(g *gate, tick bool, t uint64) error {
	g.load()
	if err := g.eval(tick, t); err != nil {
		return &EvalError{Gate: g.id, Kind: g.name, Err: err}
	}
	return nil
}

// evalAll evaluates all gates without committing their outputs. Gates only
// read wire states and write their own frame, so chunks of the evaluation
// order can run in parallel.
//
func (c *Circuit) evalAll(order []*gate, t uint64) error {
	if c.workers < 2 || len(order) < 2*c.workers {
		for _, g := range order {
			if err := c.evalGate(g, true, t); err != nil {
				return err
			}
		}
		return nil
	}

	size := len(order) / c.workers
	if size*c.workers < len(order) {
		size++
	}
	var eg errgroup.Group
	errs := make([]error, 0, c.workers)
	for p := order; len(p) > 0; {
		l := size
		if l > len(p) {
			l = len(p)
		}
		chunk, i := p[:l], len(errs)
		errs = append(errs, nil)
		eg.Go(func() error {
			for _, g := range chunk {
				if err := c.evalGate(g, true, t); err != nil {
					errs[i] = err
					return err
				}
			}
			return nil
		})
		p = p[l:]
	}
	if eg.Wait() == nil {
		return nil
	}
	// report the first failure in evaluation order.
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Settle re-evaluates all gates without advancing time or the state of
// sequential gates, until wire states are stable. Unlike Step, gate outputs
// propagate to their loads immediately, in evaluation order.
//
// Settling stops after the pass limit set by WithSettleLimit. This only
// happens for circuits with combinational loops that never stabilize, in which
// case Result.Settled is false.
//
func (c *Circuit) Settle() (Result, error) {
	order := c.evalOrder()
	limit := c.settleLimit
	if limit <= 0 {
		limit = len(order) + 2
	}
	settled := false
	for pass := 0; pass < limit && !settled; pass++ {
		settled = true
		for _, g := range order {
			if err := c.evalGate(g, false, c.time); err != nil {
				c.log.Error("settle failed", "time", c.time, "error", err)
				return Result{Time: c.time, Changed: report(c.wireList())}, err
			}
			g.commit()
			for _, w := range g.conns[g.nIn:] {
				if w == nil {
					continue
				}
				if s := w.resolve(); s != w.state {
					w.state = s
					settled = false
				}
			}
		}
	}
	if !settled {
		c.log.Warn("circuit did not settle", "passes", limit, "time", c.time)
	}
	return Result{Time: c.time, Changed: report(c.wireList()), Settled: settled}, nil
}
