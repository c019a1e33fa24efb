// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package netlist reads and writes circuit topologies in YAML.
//
// A netlist lists named wires and gates. Gate pins are connected to wires by
// name with a connection string:
//
//	name: jk
//	gates:
//	  - kind: DRIVER
//	    params: {OUTPUT_NUM: 1}
//	    pins: OUT=j
//	  - kind: DRIVER
//	    pins: OUT=gnd
//	  - kind: CLOCK
//	    params: {HALF_CYCLE: 1}
//	    pins: OUT=clk
//	  - kind: JKFF
//	    pins: J=j, K=gnd, CLK=clk, Q=q
//	  - kind: ROM
//	    params: {ADDRESS_BITS: 2, DATA_BITS: 4}
//	    memory: {0: 0x5, 3: 0xf}
//	    pins: ADDR[0..1]=a[0..1], DATA_OUT[0..3]=d[0..3]
//
// Wires do not need to be declared unless they must have a fixed id. Parameter
// values may be any YAML scalar; they are converted to the strings expected by
// gatesim.
//
package netlist

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Netlist is the serialized form of a circuit.
//
type Netlist struct {
	Name  string `yaml:"name,omitempty"`
	Wires []Wire `yaml:"wires,omitempty"`
	Gates []Gate `yaml:"gates"`
}

// Wire declares a named wire. An ID of 0 lets the circuit assign one.
//
type Wire struct {
	ID   int64  `yaml:"id,omitempty"`
	Name string `yaml:"name"`
}

// Gate describes a gate: its kind, parameters, memory contents and pin to wire
// connections. An ID of 0 lets the circuit assign one.
//
type Gate struct {
	ID     int64                  `yaml:"id,omitempty"`
	Name   string                 `yaml:"name,omitempty"`
	Kind   string                 `yaml:"kind"`
	Params map[string]interface{} `yaml:"params,omitempty"`
	Memory map[uint64]uint64      `yaml:"memory,omitempty"`
	Pins   string                 `yaml:"pins,omitempty"`
}

// Parse decodes a YAML netlist. Unknown fields are rejected.
//
func Parse(data []byte) (*Netlist, error) {
	return Decode(bytes.NewReader(data))
}

// Decode reads a YAML netlist from r.
//
func Decode(r io.Reader) (*Netlist, error) {
	var n Netlist
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&n); err != nil {
		if err == io.EOF {
			return &n, nil
		}
		return nil, errors.Wrap(err, "parse netlist")
	}
	for i := range n.Gates {
		if n.Gates[i].Kind == "" {
			return nil, errors.Errorf("gate #%d: missing kind", i)
		}
	}
	return &n, nil
}

// ReadFile reads the netlist in the named file.
//
func ReadFile(name string) (*Netlist, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	n, err := Decode(f)
	return n, errors.Wrap(err, name)
}

// Write encodes n as YAML.
//
func Write(w io.Writer, n *Netlist) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(n); err != nil {
		return errors.Wrap(err, "write netlist")
	}
	return enc.Close()
}
