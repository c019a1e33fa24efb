// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package netlist

import (
	"sort"
	"strconv"

	"github.com/db47h/gatesim"
	"github.com/db47h/gatesim/internal/connspec"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

// Binding maps the names used in a netlist to circuit ids.
//
type Binding struct {
	Wires map[string]gatesim.WireID
	Gates map[string]gatesim.GateID // named gates only
}

func newBinding() *Binding {
	return &Binding{
		Wires: make(map[string]gatesim.WireID),
		Gates: make(map[string]gatesim.GateID),
	}
}

// Wire returns the id of the named wire.
//
func (b *Binding) Wire(name string) (gatesim.WireID, error) {
	id, ok := b.Wires[name]
	if !ok {
		return 0, errors.Wrap(gatesim.ErrUnknownWire, name)
	}
	return id, nil
}

// WireNames returns the wire names sorted by wire id.
//
func (b *Binding) WireNames() []string {
	ns := make([]string, 0, len(b.Wires))
	for n := range b.Wires {
		ns = append(ns, n)
	}
	sort.Slice(ns, func(i, j int) bool { return b.Wires[ns[i]] < b.Wires[ns[j]] })
	return ns
}

// wireNames returns the reverse mapping of b.Wires.
//
func (b *Binding) wireNames() map[gatesim.WireID]string {
	m := make(map[gatesim.WireID]string, len(b.Wires))
	for n, id := range b.Wires {
		m[id] = n
	}
	return m
}

// Params converts YAML parameter values to gatesim parameter strings.
//
func Params(in map[string]interface{}) (map[string]string, error) {
	if len(in) == 0 {
		return nil, nil
	}
	var out map[string]string
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &out,
	})
	if err != nil {
		return nil, err
	}
	if err = dec.Decode(in); err != nil {
		return nil, errors.Wrap(gatesim.ErrInvalidParameter, err.Error())
	}
	return out, nil
}

// Build adds the wires and gates of n to c and returns the name bindings.
//
// Build should be given an empty circuit: on error, c holds the part of the
// netlist built so far.
//
func Build(c *gatesim.Circuit, n *Netlist) (*Binding, error) {
	b := newBinding()
	for _, w := range n.Wires {
		if w.Name == "" {
			return nil, errors.New("wire without name")
		}
		if _, ok := b.Wires[w.Name]; ok {
			return nil, errors.Errorf("wire %s declared twice", w.Name)
		}
		if w.ID != 0 {
			if err := c.AddWire(gatesim.WireID(w.ID)); err != nil {
				return nil, errors.Wrapf(err, "wire %s", w.Name)
			}
			b.Wires[w.Name] = gatesim.WireID(w.ID)
		}
	}
	// wires without a fixed id are created after all fixed ids are taken.
	for _, w := range n.Wires {
		if w.ID == 0 {
			b.Wires[w.Name] = c.CreateWire()
		}
	}

	for i := range n.Gates {
		g := &n.Gates[i]
		ctx := "gate #" + strconv.Itoa(i) + " (" + g.Kind + ")"
		if g.Name != "" {
			ctx = "gate " + g.Name + " (" + g.Kind + ")"
		}
		params, err := Params(g.Params)
		if err != nil {
			return nil, errors.Wrap(err, ctx)
		}
		if len(g.Memory) > 0 {
			if params == nil {
				params = make(map[string]string, len(g.Memory))
			}
			for a, v := range g.Memory {
				params[gatesim.MemoryParamPrefix+"0x"+strconv.FormatUint(a, 16)] = strconv.FormatUint(v, 10)
			}
		}
		var id gatesim.GateID
		if g.ID != 0 {
			id = gatesim.GateID(g.ID)
			err = c.AddGate(id, g.Kind, params)
		} else {
			id, err = c.CreateGate(g.Kind, params)
		}
		if err != nil {
			return nil, errors.Wrap(err, ctx)
		}
		if g.Name != "" {
			if _, ok := b.Gates[g.Name]; ok {
				return nil, errors.Errorf("%s: duplicate gate name", ctx)
			}
			b.Gates[g.Name] = id
		}

		conns, err := connspec.Parse(g.Pins)
		if err != nil {
			return nil, errors.Wrap(err, ctx)
		}
		gi, err := c.Gate(id)
		if err != nil {
			return nil, err
		}
		for _, cn := range conns {
			wid, ok := b.Wires[cn.Wire]
			if !ok {
				wid = c.CreateWire()
				b.Wires[cn.Wire] = wid
			}
			if err = c.Connect(id, cn.Pin, direction(gi, cn.Pin), wid); err != nil {
				return nil, errors.Wrap(err, ctx)
			}
		}
	}
	return b, nil
}

func direction(gi gatesim.GateInfo, pin string) gatesim.Direction {
	for _, o := range gi.Outputs {
		if o == pin {
			return gatesim.Output
		}
	}
	return gatesim.Input
}

// Load builds a new circuit from n.
//
func Load(n *Netlist, reg *gatesim.Registry, opts ...gatesim.Option) (*gatesim.Circuit, *Binding, error) {
	c, err := gatesim.NewCircuit(reg, opts...)
	if err != nil {
		return nil, nil, err
	}
	b, err := Build(c, n)
	if err != nil {
		return nil, nil, err
	}
	return c, b, nil
}
