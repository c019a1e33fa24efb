// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package gatelib provides the standard gate kinds for gatesim.
//
// Multi-bit pins follow the gatesim bus naming: a bus OUT of width 4 has pins
// OUT[0] (lsb) to OUT[3]; a bus of width 1 is the single pin OUT. Numbered
// operands are named IN_0, IN_1, etc.
//
// Combinational gates read floating (HiZ) inputs as Unknown. Unless a
// controlling input decides the output (a Zero on AND/NAND, a One on OR/NOR),
// an Unknown input makes the output Unknown, else a Conflict input makes it
// Conflict.
//
package gatelib

import (
	"strconv"

	"github.com/db47h/gatesim"
)

// Kind names.
//
const (
	KindAnd         = "AND"
	KindOr          = "OR"
	KindXor         = "XOR"
	KindEquivalence = "EQUIVALENCE"
	KindXnor        = "XNOR" // alias of EQUIVALENCE
	KindNand        = "NAND"
	KindNor         = "NOR"
	KindNot         = "NOT"
	KindBuffer      = "BUFFER"
	KindTristate    = "TRISTATE"
	KindDriver      = "DRIVER"
	KindClock       = "CLOCK"
	KindJKFF        = "JKFF"
	KindDFF         = "DFF"
	KindMux         = "MUX"
	KindDemux       = "DEMUX"
	KindROM         = "ROM"
	KindRAM         = "RAM"
	KindAdder       = "ADDER"
)

// Parameter names.
//
const (
	ParamInputBits   = "INPUT_BITS"
	ParamWidth       = "WIDTH"
	ParamOutputBits  = "OUTPUT_BITS"
	ParamOutputNum   = "OUTPUT_NUM"
	ParamHalfCycle   = "HALF_CYCLE"
	ParamSelectBits  = "SELECT_BITS"
	ParamAddressBits = "ADDRESS_BITS"
	ParamDataBits    = "DATA_BITS"
)

// common pin names
const (
	pIn      = "IN"
	pOut     = "OUT"
	pEn      = "EN"
	pSel     = "SEL"
	pClk     = "CLK"
	pJ       = "J"
	pK       = "K"
	pD       = "D"
	pQ       = "Q"
	pNQ      = "NQ"
	pAddr    = "ADDR"
	pDataIn  = "DATA_IN"
	pDataOut = "DATA_OUT"
	pWE      = "WE"
	pA       = "A"
	pB       = "B"
	pCin     = "CIN"
	pSum     = "SUM"
	pCout    = "COUT"
)

// indexed returns the name of the i-th numbered pin or bus, e.g. IN_0.
func indexed(name string, i int) string {
	return name + "_" + strconv.Itoa(i)
}

// Kinds returns all gate kinds of this package.
//
func Kinds() []*gatesim.Kind {
	return []*gatesim.Kind{
		and, or, xor, equivalence, nand, nor,
		notKind, bufferKind, tristateKind,
		driverKind, clockKind,
		jkffKind, dffKind,
		muxKind, demuxKind,
		romKind, ramKind,
		adderKind,
	}
}

// Register adds all gate kinds of this package to r.
//
func Register(r *gatesim.Registry) error {
	if err := r.Register(Kinds()...); err != nil {
		return err
	}
	return r.Alias(KindXnor, KindEquivalence)
}

// NewRegistry returns a new registry with all gate kinds of this package.
//
func NewRegistry() *gatesim.Registry {
	r, err := gatesim.NewRegistry()
	if err == nil {
		err = Register(r)
	}
	if err != nil {
		panic(err)
	}
	return r
}
