// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package gatesim

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/db47h/gatesim/internal/logging"
	"github.com/pkg/errors"
)

// GateID identifies a gate in a circuit.
//
type GateID int64

// WireID identifies a wire in a circuit.
//
type WireID int64

// a pinRef is a pin of a gate, identified by its pin number.
type pinRef struct {
	g   *gate
	pin int
}

type wire struct {
	id       WireID
	state    Signal
	reported Signal // state as of the last Result
	drivers  []pinRef
	loads    []pinRef
}

func (w *wire) resolve() Signal {
	var r resolver
	for _, d := range w.drivers {
		r.add(d.g.output(d.pin))
	}
	return r.result()
}

func removeRef(refs []pinRef, g *gate, pin int) []pinRef {
	for i, r := range refs {
		if r.g == g && r.pin == pin {
			return append(refs[:i], refs[i+1:]...)
		}
	}
	return refs
}

type gate struct {
	*Instance
	id     GateID
	kind   *Kind
	name   string            // kind name as requested
	params map[string]string // raw parameters, memory cells excluded
	conns  []*wire           // wire connected to each pin, nil if none
}

// load copies the state of the wires connected to g's inputs into its frame.
// Unconnected inputs read HiZ.
//
func (g *gate) load() {
	for n := 0; n < g.nIn; n++ {
		if w := g.conns[n]; w != nil {
			g.frame.cur[n] = w.state
		} else {
			g.frame.cur[n] = HiZ
		}
	}
}

// Circuit is the mutable topology of a simulation (gates, wires and their
// connections) together with its scheduler state.
//
// Circuit methods must not be called concurrently.
//
type Circuit struct {
	reg   *Registry
	log   *slog.Logger
	gates map[GateID]*gate
	wires map[WireID]*wire

	nextGate GateID
	nextWire WireID

	// evaluation order and wire list, rebuilt after topology changes.
	order  []*gate
	wl     []*wire
	sorted bool

	time        uint64
	workers     int
	settleLimit int
}

// NewCircuit returns an empty circuit using the gate kinds in reg.
//
func NewCircuit(reg *Registry, opts ...Option) (*Circuit, error) {
	if reg == nil {
		return nil, errors.New("nil registry")
	}
	c := &Circuit{
		reg:      reg,
		log:      logging.NewNop(),
		gates:    make(map[GateID]*gate),
		wires:    make(map[WireID]*wire),
		nextGate: 1,
		nextWire: 1,
		workers:  1,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Registry returns the registry used by c.
//
func (c *Circuit) Registry() *Registry { return c.reg }

func (c *Circuit) invalidate() {
	c.sorted = false
	c.order = nil
	c.wl = nil
}

func (c *Circuit) gate(id GateID) (*gate, error) {
	g, ok := c.gates[id]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownGate, "gate %d", id)
	}
	return g, nil
}

func (c *Circuit) wire(id WireID) (*wire, error) {
	w, ok := c.wires[id]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownWire, "wire %d", id)
	}
	return w, nil
}

func copyParams(raw map[string]string) map[string]string {
	m := make(map[string]string, len(raw))
	for k, v := range raw {
		m[k] = v
	}
	return m
}

// build configures and mounts a new instance of kind k.
//
func build(k *Kind, raw map[string]string) (*Instance, error) {
	p, err := k.Configure(raw)
	if err != nil {
		return nil, err
	}
	i, err := NewInstance(p)
	if err != nil {
		return nil, errors.Wrap(err, k.Name)
	}
	return i, nil
}

// CreateGate adds a new gate of the given kind and returns its id.
//
func (c *Circuit) CreateGate(kind string, params map[string]string) (GateID, error) {
	id := c.nextGate
	if err := c.AddGate(id, kind, params); err != nil {
		return 0, err
	}
	return id, nil
}

// AddGate adds a new gate of the given kind with a caller assigned id.
//
// It fails with ErrUnknownGateKind if the kind is not registered, with
// ErrInvalidParameter if params are not valid for that kind and with
// ErrDuplicateID if the id is already in use.
//
func (c *Circuit) AddGate(id GateID, kind string, params map[string]string) error {
	if _, ok := c.gates[id]; ok {
		return errors.Wrapf(ErrDuplicateID, "gate %d", id)
	}
	k, err := c.reg.Lookup(kind)
	if err != nil {
		return err
	}
	inst, err := build(k, params)
	if err != nil {
		return err
	}
	g := &gate{
		Instance: inst,
		id:       id,
		kind:     k,
		name:     strings.ToUpper(kind),
		params:   make(map[string]string, len(params)),
		conns:    make([]*wire, len(inst.frame.cur)),
	}
	for n, v := range params {
		if !strings.HasPrefix(n, MemoryParamPrefix) {
			g.params[n] = v
		}
	}
	c.gates[id] = g
	if id >= c.nextGate {
		c.nextGate = id + 1
	}
	c.invalidate()
	c.log.Debug("gate created", "gate", id, "kind", g.name)
	return nil
}

// CreateWire adds a new wire and returns its id.
//
func (c *Circuit) CreateWire() WireID {
	id := c.nextWire
	// cannot fail: nextWire is always above any id in use.
	_ = c.AddWire(id)
	return id
}

// AddWire adds a new wire with a caller assigned id. A new wire has no
// drivers and is therefore in the HiZ state.
//
func (c *Circuit) AddWire(id WireID) error {
	if _, ok := c.wires[id]; ok {
		return errors.Wrapf(ErrDuplicateID, "wire %d", id)
	}
	c.wires[id] = &wire{id: id, state: HiZ, reported: HiZ}
	if id >= c.nextWire {
		c.nextWire = id + 1
	}
	c.invalidate()
	c.log.Debug("wire created", "wire", id)
	return nil
}

// pin returns the pin number of the named pin if it has the given direction.
//
func (g *gate) pin(name string, dir Direction) (int, error) {
	n, d, ok := g.Pin(name)
	if !ok || d != dir {
		return 0, errors.Wrapf(ErrUnknownPin, "gate %d (%s): no %s pin %s", g.id, g.name, dir, name)
	}
	return n, nil
}

// Connect links a pin of a gate to a wire.
//
// It fails with ErrUnknownPin if the gate has no such pin in that direction
// and with ErrPinAlreadyConnected if the pin is connected to another wire.
// Connecting a pin to the wire it is already connected to is a no-op.
//
func (c *Circuit) Connect(gid GateID, pin string, dir Direction, wid WireID) error {
	g, err := c.gate(gid)
	if err != nil {
		return err
	}
	w, err := c.wire(wid)
	if err != nil {
		return err
	}
	n, err := g.pin(pin, dir)
	if err != nil {
		return err
	}
	if cw := g.conns[n]; cw != nil {
		if cw == w {
			return nil
		}
		return errors.Wrapf(ErrPinAlreadyConnected, "gate %d pin %s connected to wire %d", gid, pin, cw.id)
	}
	c.attach(g, n, w)
	c.log.Debug("pin connected", "gate", gid, "pin", pin, "dir", dir.String(), "wire", wid)
	return nil
}

// ConnectInput links an input pin to a wire.
//
func (c *Circuit) ConnectInput(gid GateID, pin string, wid WireID) error {
	return c.Connect(gid, pin, Input, wid)
}

// ConnectOutput links an output pin to a wire. The wire state is updated
// immediately from the current value of the pin.
//
func (c *Circuit) ConnectOutput(gid GateID, pin string, wid WireID) error {
	return c.Connect(gid, pin, Output, wid)
}

func (c *Circuit) attach(g *gate, n int, w *wire) {
	g.conns[n] = w
	if n >= g.nIn {
		w.drivers = append(w.drivers, pinRef{g, n})
		w.state = w.resolve()
	} else {
		w.loads = append(w.loads, pinRef{g, n})
	}
	c.invalidate()
}

func (c *Circuit) detach(g *gate, n int) {
	w := g.conns[n]
	if w == nil {
		return
	}
	g.conns[n] = nil
	if n >= g.nIn {
		w.drivers = removeRef(w.drivers, g, n)
		w.state = w.resolve()
	} else {
		w.loads = removeRef(w.loads, g, n)
	}
	c.invalidate()
}

// Disconnect unlinks a pin from its wire. Disconnecting an unconnected pin is
// a no-op.
//
func (c *Circuit) Disconnect(gid GateID, pin string, dir Direction) error {
	g, err := c.gate(gid)
	if err != nil {
		return err
	}
	n, err := g.pin(pin, dir)
	if err != nil {
		return err
	}
	if g.conns[n] != nil {
		c.log.Debug("pin disconnected", "gate", gid, "pin", pin, "wire", g.conns[n].id)
		c.detach(g, n)
	}
	return nil
}

// DisconnectInput unlinks an input pin from its wire.
//
func (c *Circuit) DisconnectInput(gid GateID, pin string) error {
	return c.Disconnect(gid, pin, Input)
}

// DisconnectOutput unlinks an output pin from its wire.
//
func (c *Circuit) DisconnectOutput(gid GateID, pin string) error {
	return c.Disconnect(gid, pin, Output)
}

// SetParameter changes a gate parameter. The gate is reconfigured from its
// updated parameter set: connections on pins that no longer exist are severed,
// sequential state is reset and the outputs are Unknown until the next Settle
// or Step. Memory cells that fit the new geometry are kept.
//
// Parameters named "@addr" write a memory cell of a memory gate instead (see
// MemoryParamPrefix) and do not reconfigure it.
//
// On error, the gate keeps its previous configuration.
//
func (c *Circuit) SetParameter(gid GateID, name, value string) error {
	g, err := c.gate(gid)
	if err != nil {
		return err
	}
	if strings.HasPrefix(name, MemoryParamPrefix) {
		m := g.Part().Memory
		if m == nil {
			return &ParamError{Kind: g.name, Name: name, Value: value, Reason: "gate has no memory"}
		}
		addr, v, err := parseMemoryParam(g.name, name, value)
		if err != nil {
			return err
		}
		if err = m.Write(addr, v); err != nil {
			return &ParamError{Kind: g.name, Name: name, Value: value, Reason: err.Error()}
		}
		return nil
	}

	raw := copyParams(g.params)
	raw[name] = value
	inst, err := build(g.kind, raw)
	if err != nil {
		return err
	}
	if om, nm := g.Part().Memory, inst.Part().Memory; om != nil && nm != nil {
		nm.copyFrom(om)
	}

	// sever everything, swap the instance, then reconnect the pins that
	// still exist.
	type conn struct {
		name string
		dir  Direction
		w    *wire
	}
	var conns []conn
	old := g.Instance
	for n, w := range g.conns {
		if w == nil {
			continue
		}
		pins := old.part.Inputs
		dir := Input
		pn := n
		if n >= old.nIn {
			pins, dir, pn = old.part.Outputs, Output, n-old.nIn
		}
		conns = append(conns, conn{pins[pn], dir, w})
		c.detach(g, n)
	}
	g.Instance = inst
	g.params = raw
	g.conns = make([]*wire, len(inst.frame.cur))
	for _, cn := range conns {
		n, err := g.pin(cn.name, cn.dir)
		if err != nil {
			c.log.Debug("pin removed by reconfiguration", "gate", gid, "pin", cn.name, "wire", cn.w.id)
			continue
		}
		c.attach(g, n, cn.w)
	}
	c.invalidate()
	c.log.Debug("parameter set", "gate", gid, "name", name, "value", value)
	return nil
}

// DeleteGate disconnects all pins of a gate and removes it.
//
func (c *Circuit) DeleteGate(gid GateID) error {
	g, err := c.gate(gid)
	if err != nil {
		return err
	}
	for n := range g.conns {
		c.detach(g, n)
	}
	delete(c.gates, gid)
	c.invalidate()
	c.log.Debug("gate deleted", "gate", gid)
	return nil
}

// DeleteWire disconnects all pins connected to a wire and removes it.
//
func (c *Circuit) DeleteWire(wid WireID) error {
	w, err := c.wire(wid)
	if err != nil {
		return err
	}
	for _, r := range w.drivers {
		r.g.conns[r.pin] = nil
	}
	for _, r := range w.loads {
		r.g.conns[r.pin] = nil
	}
	delete(c.wires, wid)
	c.invalidate()
	c.log.Debug("wire deleted", "wire", wid)
	return nil
}

// WireState returns the resolved state of a wire.
//
func (c *Circuit) WireState(wid WireID) (Signal, error) {
	w, err := c.wire(wid)
	if err != nil {
		return Unknown, err
	}
	return w.state, nil
}

// PinState returns the state of a gate pin. Connected input pins report the
// state of their wire, unconnected ones HiZ.
//
func (c *Circuit) PinState(gid GateID, pin string) (Signal, error) {
	g, err := c.gate(gid)
	if err != nil {
		return Unknown, err
	}
	n, dir, ok := g.Pin(pin)
	if !ok {
		return Unknown, errors.Wrapf(ErrUnknownPin, "gate %d (%s): no pin %s", gid, g.name, pin)
	}
	if dir == Output {
		return g.output(n), nil
	}
	if w := g.conns[n]; w != nil {
		return w.state, nil
	}
	return HiZ, nil
}

// Time returns the simulated time, i.e. the number of steps run so far.
//
func (c *Circuit) Time() uint64 { return c.time }

// Size returns the gate count in the circuit.
//
func (c *Circuit) Size() int { return len(c.gates) }

// A Connection is a pin of a gate and the wire it is linked to.
//
type Connection struct {
	Pin  string
	Dir  Direction
	Wire WireID
}

// GateInfo describes a gate.
//
type GateInfo struct {
	ID          GateID
	Kind        string
	Params      map[string]string
	Inputs      []string
	Outputs     []string
	Sequential  bool
	Connections []Connection // in pin order
	Memory      []Cell       // nil for gates without memory
}

func (g *gate) info() GateInfo {
	p := g.Part()
	gi := GateInfo{
		ID:         g.id,
		Kind:       g.name,
		Params:     copyParams(g.params),
		Inputs:     append([]string(nil), p.Inputs...),
		Outputs:    append([]string(nil), p.Outputs...),
		Sequential: p.Sequential,
	}
	for n, w := range g.conns {
		if w == nil {
			continue
		}
		if n < g.nIn {
			gi.Connections = append(gi.Connections, Connection{p.Inputs[n], Input, w.id})
		} else {
			gi.Connections = append(gi.Connections, Connection{p.Outputs[n-g.nIn], Output, w.id})
		}
	}
	if p.Memory != nil {
		gi.Memory = p.Memory.Cells()
	}
	return gi
}

// Gate returns a description of a gate.
//
func (c *Circuit) Gate(gid GateID) (GateInfo, error) {
	g, err := c.gate(gid)
	if err != nil {
		return GateInfo{}, err
	}
	return g.info(), nil
}

// Gates returns a description of all gates, sorted by id.
//
func (c *Circuit) Gates() []GateInfo {
	ids := make([]GateID, 0, len(c.gates))
	for id := range c.gates {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]GateInfo, len(ids))
	for i, id := range ids {
		out[i] = c.gates[id].info()
	}
	return out
}

// A PinRef names a gate pin.
//
type PinRef struct {
	Gate GateID
	Pin  string
}

// WireInfo describes a wire.
//
type WireInfo struct {
	ID      WireID
	State   Signal
	Drivers []PinRef
	Loads   []PinRef
}

func pinRefs(refs []pinRef) []PinRef {
	out := make([]PinRef, len(refs))
	for i, r := range refs {
		p := r.g.Part()
		name := ""
		if r.pin < r.g.nIn {
			name = p.Inputs[r.pin]
		} else {
			name = p.Outputs[r.pin-r.g.nIn]
		}
		out[i] = PinRef{r.g.id, name}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Gate != out[j].Gate {
			return out[i].Gate < out[j].Gate
		}
		return out[i].Pin < out[j].Pin
	})
	return out
}

// Wires returns a description of all wires, sorted by id.
//
func (c *Circuit) Wires() []WireInfo {
	ws := c.wireList()
	out := make([]WireInfo, len(ws))
	for i, w := range ws {
		out[i] = WireInfo{
			ID:      w.id,
			State:   w.state,
			Drivers: pinRefs(w.drivers),
			Loads:   pinRefs(w.loads),
		}
	}
	return out
}

func (c *Circuit) memory(gid GateID) (*Memory, error) {
	g, err := c.gate(gid)
	if err != nil {
		return nil, err
	}
	m := g.Part().Memory
	if m == nil {
		return nil, errors.Wrapf(ErrInvalidParameter, "gate %d (%s) has no memory", gid, g.name)
	}
	return m, nil
}

// ReadMemory returns the value stored at addr in a memory gate.
//
func (c *Circuit) ReadMemory(gid GateID, addr uint64) (uint64, error) {
	m, err := c.memory(gid)
	if err != nil {
		return 0, err
	}
	return m.Read(addr), nil
}

// WriteMemory stores v at addr in a memory gate. This is the inspection and
// editing interface of memory gates: it does not go through pins and does not
// require a step to take effect on stored contents.
//
func (c *Circuit) WriteMemory(gid GateID, addr, v uint64) error {
	m, err := c.memory(gid)
	if err != nil {
		return err
	}
	return errors.Wrapf(m.Write(addr, v), "gate %d", gid)
}

// MemoryCells returns the non-zero cells of a memory gate, sorted by address.
//
func (c *Circuit) MemoryCells(gid GateID) ([]Cell, error) {
	m, err := c.memory(gid)
	if err != nil {
		return nil, err
	}
	return m.Cells(), nil
}
