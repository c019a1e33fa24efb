// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package netlist

import (
	"strconv"

	"github.com/db47h/gatesim"
	"github.com/db47h/gatesim/internal/connspec"
)

// Export describes the topology of c: gates with their kind, parameters,
// memory contents and connections, and all wires. Wire and gate names are
// taken from b if not nil; other wires are named w<id>, or w<id>_<n> if
// that name is taken.
//
// Sequential state is not exported: a circuit built from the result starts
// from the default state of its gates.
//
func Export(c *gatesim.Circuit, b *Binding) *Netlist {
	var (
		wnames map[gatesim.WireID]string
		gnames = make(map[gatesim.GateID]string)
	)
	if b != nil {
		wnames = b.wireNames()
		for n, id := range b.Gates {
			gnames[id] = n
		}
	}
	// unnamed wires are named w<id>, with a numbered suffix if that name is
	// already bound to another wire.
	used := make(map[string]bool, len(wnames))
	for _, name := range wnames {
		used[name] = true
	}
	ws := c.Wires()
	names := make(map[gatesim.WireID]string, len(ws))
	n := new(Netlist)
	for _, w := range ws {
		name, ok := wnames[w.ID]
		if !ok {
			base := "w" + strconv.FormatInt(int64(w.ID), 10)
			name = base
			for i := 1; used[name]; i++ {
				name = base + "_" + strconv.Itoa(i)
			}
			used[name] = true
		}
		names[w.ID] = name
		n.Wires = append(n.Wires, Wire{ID: int64(w.ID), Name: name})
	}
	for _, gi := range c.Gates() {
		g := Gate{
			ID:   int64(gi.ID),
			Name: gnames[gi.ID],
			Kind: gi.Kind,
		}
		if len(gi.Params) > 0 {
			g.Params = make(map[string]interface{}, len(gi.Params))
			for k, v := range gi.Params {
				g.Params[k] = v
			}
		}
		if len(gi.Memory) > 0 {
			g.Memory = make(map[uint64]uint64, len(gi.Memory))
			for _, cell := range gi.Memory {
				g.Memory[cell.Addr] = cell.Value
			}
		}
		conns := make([]connspec.Conn, len(gi.Connections))
		for i, cn := range gi.Connections {
			conns[i] = connspec.Conn{Pin: cn.Pin, Wire: names[cn.Wire]}
		}
		g.Pins = connspec.Format(conns)
		n.Gates = append(n.Gates, g)
	}
	return n
}
