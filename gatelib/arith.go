// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package gatelib

import "github.com/db47h/gatesim"

// ADDER returns a ripple carry adder.
//
//	Inputs: A, B (WIDTH bits), CIN
//	Outputs: SUM (WIDTH bits), COUT
//	Function: SUM = lsb(A + B + CIN)
//	          COUT = carry out of the msb
//
// An undefined input bit makes the matching SUM bit undefined, and the carry
// from that bit on unless it is decided by the other operands.
//
var adderKind = &gatesim.Kind{
	Name:   KindAdder,
	Doc:    "ripple carry adder: SUM = A + B + CIN",
	Params: []string{ParamWidth},
	New: func(p *gatesim.Params) (*gatesim.Part, error) {
		bits := width(p)
		if err := p.Err(); err != nil {
			return nil, err
		}
		return &gatesim.Part{
			Inputs:  append(append(gatesim.BusPins(pA, bits), gatesim.BusPins(pB, bits)...), pCin),
			Outputs: append(gatesim.BusPins(pSum, bits), pCout),
			Mount: func(s *gatesim.Socket) gatesim.Updater {
				a, b, cin := s.Bus(pA, bits), s.Bus(pB, bits), s.Pin(pCin)
				sum, cout := s.Bus(pSum, bits), s.Pin(pCout)
				return func(f *gatesim.Frame) {
					c := input(f.Get(cin))
					for i, o := range sum {
						va, vb := f.Get(a[i]), f.Get(b[i])
						var half, bit, gen, prop, carry logic
						half.add(va)
						half.add(vb)
						axb := half.xor()
						bit.add(axb)
						bit.add(c)
						gen.add(va)
						gen.add(vb)
						prop.add(axb)
						prop.add(c)
						carry.add(gen.and())
						carry.add(prop.and())
						f.Set(o, bit.xor())
						c = carry.or()
					}
					f.Set(cout, c)
				}
			},
		}, nil
	},
}
