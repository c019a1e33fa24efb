// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package gatelib

import "github.com/db47h/gatesim"

// width returns the WIDTH parameter, the bit width of the buses of a gate.
func width(p *gatesim.Params) int {
	return p.Int(ParamWidth, 1, 1, 64)
}

// reduction gates
type reduce func(l logic) gatesim.Signal

func (fn reduce) mount(n, bits int) gatesim.MountFn {
	return func(s *gatesim.Socket) gatesim.Updater {
		ins := make([][]int, n)
		for i := range ins {
			ins[i] = s.Bus(indexed(pIn, i), bits)
		}
		out := s.Bus(pOut, bits)
		return func(f *gatesim.Frame) {
			for bit, o := range out {
				var l logic
				for _, in := range ins {
					l.add(f.Get(in[bit]))
				}
				f.Set(o, fn(l))
			}
		}
	}
}

func newGate(name, doc string, fn reduce) *gatesim.Kind {
	return &gatesim.Kind{
		Name:   name,
		Doc:    doc,
		Params: []string{ParamInputBits, ParamWidth},
		New: func(p *gatesim.Params) (*gatesim.Part, error) {
			n := p.Int(ParamInputBits, 2, 1, 64)
			bits := width(p)
			if err := p.Err(); err != nil {
				return nil, err
			}
			var ins []string
			for i := 0; i < n; i++ {
				ins = append(ins, gatesim.BusPins(indexed(pIn, i), bits)...)
			}
			return &gatesim.Part{
				Inputs:  ins,
				Outputs: gatesim.BusPins(pOut, bits),
				Mount:   fn.mount(n, bits),
			}, nil
		},
	}
}

//	Inputs: IN_0 .. IN_{INPUT_BITS-1}, each WIDTH bits
//	Outputs: OUT, WIDTH bits
var (
	and = newGate(KindAnd, "OUT = IN_0 & IN_1 & ...",
		func(l logic) gatesim.Signal { return l.and() })
	or = newGate(KindOr, "OUT = IN_0 | IN_1 | ...",
		func(l logic) gatesim.Signal { return l.or() })
	xor = newGate(KindXor, "OUT = IN_0 ^ IN_1 ^ ...",
		func(l logic) gatesim.Signal { return l.xor() })
	equivalence = newGate(KindEquivalence, "OUT = !(IN_0 ^ IN_1 ^ ...)",
		func(l logic) gatesim.Signal { return not(l.xor()) })
	nand = newGate(KindNand, "OUT = !(IN_0 & IN_1 & ...)",
		func(l logic) gatesim.Signal { return not(l.and()) })
	nor = newGate(KindNor, "OUT = !(IN_0 | IN_1 | ...)",
		func(l logic) gatesim.Signal { return not(l.or()) })
)

// unary gates
func newUnary(name, doc string, fn func(gatesim.Signal) gatesim.Signal) *gatesim.Kind {
	return &gatesim.Kind{
		Name:   name,
		Doc:    doc,
		Params: []string{ParamWidth},
		New: func(p *gatesim.Params) (*gatesim.Part, error) {
			bits := width(p)
			if err := p.Err(); err != nil {
				return nil, err
			}
			return &gatesim.Part{
				Inputs:  gatesim.BusPins(pIn, bits),
				Outputs: gatesim.BusPins(pOut, bits),
				Mount: func(s *gatesim.Socket) gatesim.Updater {
					in, out := s.Bus(pIn, bits), s.Bus(pOut, bits)
					return func(f *gatesim.Frame) {
						for i, o := range out {
							f.Set(o, fn(f.Get(in[i])))
						}
					}
				},
			}, nil
		},
	}
}

var (
	notKind    = newUnary(KindNot, "OUT = !IN", not)
	bufferKind = newUnary(KindBuffer, "OUT = IN", input)
)

// TRISTATE
//
//	Inputs: IN (WIDTH bits), EN
//	Outputs: OUT (WIDTH bits)
//	Function: if EN { OUT = IN } else { OUT = HI_Z }
//
var tristateKind = &gatesim.Kind{
	Name:   KindTristate,
	Doc:    "tri-state buffer: OUT = IN when EN is ONE, HI_Z when EN is ZERO",
	Params: []string{ParamWidth},
	New: func(p *gatesim.Params) (*gatesim.Part, error) {
		bits := width(p)
		if err := p.Err(); err != nil {
			return nil, err
		}
		return &gatesim.Part{
			Inputs:  append(gatesim.BusPins(pIn, bits), pEn),
			Outputs: gatesim.BusPins(pOut, bits),
			Mount: func(s *gatesim.Socket) gatesim.Updater {
				in, en, out := s.Bus(pIn, bits), s.Pin(pEn), s.Bus(pOut, bits)
				return func(f *gatesim.Frame) {
					switch e := input(f.Get(en)); e {
					case gatesim.One:
						for i, o := range out {
							f.Set(o, input(f.Get(in[i])))
						}
					case gatesim.Zero:
						fill(f, out, gatesim.HiZ)
					default:
						fill(f, out, e)
					}
				}
			},
		}, nil
	},
}
