// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package gatelib

import "github.com/db47h/gatesim"

// noParams returns a constructor for kinds without parameters.
func noParams(part func() *gatesim.Part) func(p *gatesim.Params) (*gatesim.Part, error) {
	return func(p *gatesim.Params) (*gatesim.Part, error) {
		if err := p.Err(); err != nil {
			return nil, err
		}
		return part(), nil
	}
}

// JKFF returns an edge triggered JK flip flop.
//
//	Inputs: J, K, CLK
//	Outputs: Q, NQ
//	Function: on a rising edge of CLK:
//		J=1, K=0: Q = 1
//		J=0, K=1: Q = 0
//		J=0, K=0: Q holds
//		J=1, K=1: Q toggles
//	An undefined J or K at a rising edge makes Q undefined. Q starts at ZERO.
//
var jkffKind = &gatesim.Kind{
	Name: KindJKFF,
	Doc:  "edge triggered JK flip flop",
	New: noParams(func() *gatesim.Part {
		return &gatesim.Part{
			Inputs:     []string{pJ, pK, pClk},
			Outputs:    []string{pQ, pNQ},
			Sequential: true,
			Mount: func(s *gatesim.Socket) gatesim.Updater {
				j, k, clk := s.Pin(pJ), s.Pin(pK), s.Pin(pClk)
				q, nq := s.Pin(pQ), s.Pin(pNQ)
				state := gatesim.Zero
				e := newEdge()
				return func(f *gatesim.Frame) {
					next := state
					if f.Tick() && e.rising(f, f.Get(clk)) {
						jv, kv := input(f.Get(j)), input(f.Get(k))
						switch {
						case !jv.Defined() || !kv.Defined():
							var l logic
							l.add(jv)
							l.add(kv)
							next = l.undefined()
						case jv == gatesim.One && kv == gatesim.One:
							next = not(state)
						case jv == gatesim.One:
							next = gatesim.One
						case kv == gatesim.One:
							next = gatesim.Zero
						}
						f.Latch(func() { state = next })
					}
					f.Set(q, next)
					f.Set(nq, not(next))
				}
			},
		}
	}),
}

// DFF returns an edge triggered data flip flop.
//
//	Inputs: D, CLK
//	Outputs: Q, NQ
//	Function: on a rising edge of CLK, Q = D. Q starts at ZERO.
//
var dffKind = &gatesim.Kind{
	Name: KindDFF,
	Doc:  "edge triggered data flip flop",
	New: noParams(func() *gatesim.Part {
		return &gatesim.Part{
			Inputs:     []string{pD, pClk},
			Outputs:    []string{pQ, pNQ},
			Sequential: true,
			Mount: func(s *gatesim.Socket) gatesim.Updater {
				d, clk := s.Pin(pD), s.Pin(pClk)
				q, nq := s.Pin(pQ), s.Pin(pNQ)
				state := gatesim.Zero
				e := newEdge()
				return func(f *gatesim.Frame) {
					next := state
					// raising edge?
					if f.Tick() && e.rising(f, f.Get(clk)) {
						next = input(f.Get(d))
						f.Latch(func() { state = next })
					}
					f.Set(q, next)
					f.Set(nq, not(next))
				}
			},
		}
	}),
}
