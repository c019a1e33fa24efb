// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package gatesim

import (
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

func byID(ns []graph.Node) {
	sort.Slice(ns, func(i, j int) bool { return ns[i].ID() < ns[j].ID() })
}

// prepare rebuilds the evaluation order and the sorted wire list after a
// topology change.
//
// Gates are sorted topologically along wires (drivers before loads). Ties are
// broken by gate id. Gates in feedback loops are evaluated where the loop sits
// in the order, by increasing id.
//
func (c *Circuit) prepare() {
	if c.sorted {
		return
	}

	g := simple.NewDirectedGraph()
	for id := range c.gates {
		g.AddNode(simple.Node(id))
	}
	for _, w := range c.wires {
		for _, d := range w.drivers {
			for _, l := range w.loads {
				// simple graphs do not support self loops. A gate feeding
				// itself does not constrain the order anyway.
				if d.g == l.g {
					continue
				}
				g.SetEdge(g.NewEdge(simple.Node(d.g.id), simple.Node(l.g.id)))
			}
		}
	}

	nodes, err := topo.SortStabilized(g, byID)
	var loops topo.Unorderable
	if err != nil {
		// only possible error: cycles, returned as nil entries in nodes.
		loops, _ = err.(topo.Unorderable)
	}
	order := make([]*gate, 0, len(c.gates))
	for _, n := range nodes {
		if n != nil {
			order = append(order, c.gates[GateID(n.ID())])
			continue
		}
		if len(loops) == 0 {
			continue
		}
		for _, m := range loops[0] {
			order = append(order, c.gates[GateID(m.ID())])
		}
		loops = loops[1:]
	}
	c.order = order

	wl := make([]*wire, 0, len(c.wires))
	for _, w := range c.wires {
		wl = append(wl, w)
	}
	sort.Slice(wl, func(i, j int) bool { return wl[i].id < wl[j].id })
	c.wl = wl
	c.sorted = true
}

func (c *Circuit) evalOrder() []*gate {
	c.prepare()
	return c.order
}

func (c *Circuit) wireList() []*wire {
	c.prepare()
	return c.wl
}

// Order returns the gate ids in evaluation order.
//
func (c *Circuit) Order() []GateID {
	order := c.evalOrder()
	ids := make([]GateID, len(order))
	for i, g := range order {
		ids[i] = g.id
	}
	return ids
}
