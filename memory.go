// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package gatesim

import (
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// MemoryParamPrefix prefixes the per-address parameters of memory gates:
// SetParameter(id, "@0x10", "255") stores 255 at address 16.
//
const MemoryParamPrefix = "@"

// A Cell is a memory location and its value.
//
type Cell struct {
	Addr  uint64
	Value uint64
}

// Memory is the sparse storage of addressable memory gates. Only cells
// holding a non-zero value are stored.
//
type Memory struct {
	addrBits int
	dataBits int
	cells    map[uint64]uint64
}

// NewMemory returns an empty memory with the given address and data widths.
//
func NewMemory(addrBits, dataBits int) *Memory {
	return &Memory{addrBits: addrBits, dataBits: dataBits, cells: make(map[uint64]uint64)}
}

// AddressBits returns the width of the address bus.
//
func (m *Memory) AddressBits() int { return m.addrBits }

// DataBits returns the width of a memory cell.
//
func (m *Memory) DataBits() int { return m.dataBits }

// Len returns the number of non-zero cells.
//
func (m *Memory) Len() int { return len(m.cells) }

// Read returns the value stored at addr.
//
func (m *Memory) Read(addr uint64) uint64 {
	return m.cells[addr]
}

// Write stores v at addr. It fails with ErrInvalidParameter if either value
// does not fit the memory geometry.
//
func (m *Memory) Write(addr, v uint64) error {
	if addr&^Mask(m.addrBits) != 0 {
		return errors.Wrapf(ErrInvalidParameter, "address %#x out of range for %d address bits", addr, m.addrBits)
	}
	if v&^Mask(m.dataBits) != 0 {
		return errors.Wrapf(ErrInvalidParameter, "value %#x does not fit in %d data bits", v, m.dataBits)
	}
	if v == 0 {
		delete(m.cells, addr)
	} else {
		m.cells[addr] = v
	}
	return nil
}

// Cells returns all non-zero cells sorted by address.
//
func (m *Memory) Cells() []Cell {
	cs := make([]Cell, 0, len(m.cells))
	for a, v := range m.cells {
		cs = append(cs, Cell{a, v})
	}
	sort.Slice(cs, func(i, j int) bool { return cs[i].Addr < cs[j].Addr })
	return cs
}

// copyFrom copies the cells of o that fit in m.
//
func (m *Memory) copyFrom(o *Memory) {
	for a, v := range o.cells {
		if a&^Mask(m.addrBits) == 0 && v&^Mask(m.dataBits) == 0 {
			m.cells[a] = v
		}
	}
}

// parseMemoryParam parses a "@addr" = "value" parameter.
//
func parseMemoryParam(kind, name, value string) (addr, v uint64, err error) {
	addr, err = strconv.ParseUint(strings.TrimPrefix(name, MemoryParamPrefix), 0, 64)
	if err != nil {
		return 0, 0, &ParamError{Kind: kind, Name: name, Value: value, Reason: "invalid memory address"}
	}
	v, err = strconv.ParseUint(strings.TrimSpace(value), 0, 64)
	if err != nil {
		return 0, 0, &ParamError{Kind: kind, Name: name, Value: value, Reason: "invalid memory value"}
	}
	return addr, v, nil
}
