// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package gatelib

import (
	"strconv"

	"github.com/db47h/gatesim"
)

// DRIVER is a constant signal source.
//
//	Outputs: OUT (OUTPUT_BITS bits)
//	Function: OUT = OUTPUT_NUM
//
var driverKind = &gatesim.Kind{
	Name:   KindDriver,
	Doc:    "constant source: OUT = OUTPUT_NUM",
	Params: []string{ParamOutputBits, ParamOutputNum},
	New: func(p *gatesim.Params) (*gatesim.Part, error) {
		bits := p.Int(ParamOutputBits, 1, 1, 64)
		v := p.Uint64(ParamOutputNum, 0)
		if p.Err() == nil && v&^gatesim.Mask(bits) != 0 {
			raw, _ := p.Lookup(ParamOutputNum)
			p.Fail(ParamOutputNum, raw, "does not fit in "+strconv.Itoa(bits)+" bits")
		}
		if err := p.Err(); err != nil {
			return nil, err
		}
		return &gatesim.Part{
			Outputs: gatesim.BusPins(pOut, bits),
			Mount: func(s *gatesim.Socket) gatesim.Updater {
				out := s.Bus(pOut, bits)
				return func(f *gatesim.Frame) { setValue(f, out, v) }
			},
		}, nil
	},
}

// CLOCK is a free running oscillator. It starts at ZERO and toggles every
// HALF_CYCLE steps. Settling does not advance it.
//
//	Outputs: OUT
//
var clockKind = &gatesim.Kind{
	Name:   KindClock,
	Doc:    "oscillator toggling OUT every HALF_CYCLE steps",
	Params: []string{ParamHalfCycle},
	New: func(p *gatesim.Params) (*gatesim.Part, error) {
		half := p.Int(ParamHalfCycle, 1, 1, 1<<30)
		if err := p.Err(); err != nil {
			return nil, err
		}
		return &gatesim.Part{
			Outputs:    []string{pOut},
			Sequential: true,
			Mount: func(s *gatesim.Socket) gatesim.Updater {
				out := s.Pin(pOut)
				var (
					level bool
					phase int
				)
				return func(f *gatesim.Frame) {
					lv := level
					if f.Tick() {
						ph := phase + 1
						if ph >= half {
							ph = 0
							lv = !lv
						}
						f.Latch(func() { phase, level = ph, lv })
					}
					f.Set(out, gatesim.FromBool(lv))
				}
			},
		}, nil
	},
}
