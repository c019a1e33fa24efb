// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package gatelib

import "github.com/db47h/gatesim"

func geometry(p *gatesim.Params) (addr, data int, err error) {
	addr = p.Int(ParamAddressBits, 8, 1, 48)
	data = p.Int(ParamDataBits, 8, 1, 64)
	return addr, data, p.Err()
}

// ROM returns a read only memory. Its contents are set through the memory
// parameters of the gate (see gatesim.MemoryParamPrefix).
//
//	Inputs: ADDR (ADDRESS_BITS bits)
//	Outputs: DATA_OUT (DATA_BITS bits)
//	Function: DATA_OUT = mem[ADDR]
//
var romKind = &gatesim.Kind{
	Name:   KindROM,
	Doc:    "read only memory: DATA_OUT = mem[ADDR]",
	Params: []string{ParamAddressBits, ParamDataBits},
	New: func(p *gatesim.Params) (*gatesim.Part, error) {
		ab, db, err := geometry(p)
		if err != nil {
			return nil, err
		}
		mem := gatesim.NewMemory(ab, db)
		return &gatesim.Part{
			Inputs:  gatesim.BusPins(pAddr, ab),
			Outputs: gatesim.BusPins(pDataOut, db),
			Memory:  mem,
			Mount: func(s *gatesim.Socket) gatesim.Updater {
				addr, out := s.Bus(pAddr, ab), s.Bus(pDataOut, db)
				return func(f *gatesim.Frame) {
					a, bad, ok := value(f, addr)
					if !ok {
						fill(f, out, bad)
						return
					}
					setValue(f, out, mem.Read(a))
				}
			},
		}, nil
	},
}

// RAM returns a random access memory with synchronous writes.
//
//	Inputs: ADDR (ADDRESS_BITS bits), DATA_IN (DATA_BITS bits), WE, CLK
//	Outputs: DATA_OUT (DATA_BITS bits)
//	Function: on a rising edge of CLK, if WE { mem[ADDR] = DATA_IN }
//		DATA_OUT = mem[ADDR]
//	Writes with an undefined address or data are ignored.
//
var ramKind = &gatesim.Kind{
	Name:   KindRAM,
	Doc:    "random access memory, written on the rising edge of CLK when WE is ONE",
	Params: []string{ParamAddressBits, ParamDataBits},
	New: func(p *gatesim.Params) (*gatesim.Part, error) {
		ab, db, err := geometry(p)
		if err != nil {
			return nil, err
		}
		mem := gatesim.NewMemory(ab, db)
		ins := append(gatesim.BusPins(pAddr, ab), gatesim.BusPins(pDataIn, db)...)
		return &gatesim.Part{
			Inputs:     append(ins, pWE, pClk),
			Outputs:    gatesim.BusPins(pDataOut, db),
			Sequential: true,
			Memory:     mem,
			Mount: func(s *gatesim.Socket) gatesim.Updater {
				addr, data := s.Bus(pAddr, ab), s.Bus(pDataIn, db)
				we, clk := s.Pin(pWE), s.Pin(pClk)
				out := s.Bus(pDataOut, db)
				e := newEdge()
				return func(f *gatesim.Frame) {
					a, bad, ok := value(f, addr)
					if f.Tick() && e.rising(f, f.Get(clk)) && ok && input(f.Get(we)) == gatesim.One {
						if v, _, dok := value(f, data); dok {
							// a and v fit the memory geometry.
							f.Latch(func() { _ = mem.Write(a, v) })
							setValue(f, out, v)
							return
						}
					}
					if !ok {
						fill(f, out, bad)
						return
					}
					setValue(f, out, mem.Read(a))
				}
			},
		}, nil
	},
}
