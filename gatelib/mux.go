// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package gatelib

import "github.com/db47h/gatesim"

func selectPins(sel int) []string {
	ps := make([]string, sel)
	for i := range ps {
		ps[i] = indexed(pSel, i)
	}
	return ps
}

func selectBus(s *gatesim.Socket, sel int) []int {
	out := make([]int, sel)
	for i := range out {
		out[i] = s.Pin(indexed(pSel, i))
	}
	return out
}

// MUX returns a multiplexer.
//
//	Inputs: IN_0 .. IN_{2^SELECT_BITS-1} (WIDTH bits each), SEL_0 .. SEL_{SELECT_BITS-1}
//	Outputs: OUT (WIDTH bits)
//	Function: OUT = IN_{SEL}, SEL_0 being the lsb of the selector.
//
var muxKind = &gatesim.Kind{
	Name:   KindMux,
	Doc:    "multiplexer: OUT = IN_{SEL}",
	Params: []string{ParamSelectBits, ParamWidth},
	New: func(p *gatesim.Params) (*gatesim.Part, error) {
		sel := p.Int(ParamSelectBits, 1, 1, 16)
		bits := width(p)
		if err := p.Err(); err != nil {
			return nil, err
		}
		n := 1 << uint(sel)
		var ins []string
		for i := 0; i < n; i++ {
			ins = append(ins, gatesim.BusPins(indexed(pIn, i), bits)...)
		}
		return &gatesim.Part{
			Inputs:  append(ins, selectPins(sel)...),
			Outputs: gatesim.BusPins(pOut, bits),
			Mount: func(s *gatesim.Socket) gatesim.Updater {
				ins := make([][]int, n)
				for i := range ins {
					ins[i] = s.Bus(indexed(pIn, i), bits)
				}
				sp, out := selectBus(s, sel), s.Bus(pOut, bits)
				return func(f *gatesim.Frame) {
					i, bad, ok := value(f, sp)
					if !ok {
						fill(f, out, bad)
						return
					}
					for bit, o := range out {
						f.Set(o, input(f.Get(ins[i][bit])))
					}
				}
			},
		}, nil
	},
}

// DEMUX returns a demultiplexer.
//
//	Inputs: IN (WIDTH bits), SEL_0 .. SEL_{SELECT_BITS-1}
//	Outputs: OUT_0 .. OUT_{2^SELECT_BITS-1} (WIDTH bits each)
//	Function: OUT_{SEL} = IN, all other outputs are ZERO.
//
var demuxKind = &gatesim.Kind{
	Name:   KindDemux,
	Doc:    "demultiplexer: OUT_{SEL} = IN, other outputs ZERO",
	Params: []string{ParamSelectBits, ParamWidth},
	New: func(p *gatesim.Params) (*gatesim.Part, error) {
		sel := p.Int(ParamSelectBits, 1, 1, 16)
		bits := width(p)
		if err := p.Err(); err != nil {
			return nil, err
		}
		n := 1 << uint(sel)
		var outs []string
		for i := 0; i < n; i++ {
			outs = append(outs, gatesim.BusPins(indexed(pOut, i), bits)...)
		}
		return &gatesim.Part{
			Inputs:  append(gatesim.BusPins(pIn, bits), selectPins(sel)...),
			Outputs: outs,
			Mount: func(s *gatesim.Socket) gatesim.Updater {
				in, sp := s.Bus(pIn, bits), selectBus(s, sel)
				outs := make([][]int, n)
				for i := range outs {
					outs[i] = s.Bus(indexed(pOut, i), bits)
				}
				return func(f *gatesim.Frame) {
					idx, bad, ok := value(f, sp)
					for i, out := range outs {
						switch {
						case !ok:
							fill(f, out, bad)
						case uint64(i) == idx:
							for bit, o := range out {
								f.Set(o, input(f.Get(in[bit])))
							}
						default:
							fill(f, out, gatesim.Zero)
						}
					}
				}
			},
		}, nil
	},
}
