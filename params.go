// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package gatesim

import (
	"strconv"
	"strings"
)

// Params gives typed access to the string parameters of a gate. Parsing
// errors are sticky: once a getter fails, subsequent getters return their
// default value and Err returns the first error.
//
// Kind constructors are expected to read all their parameters then check Err:
//
//	bits := p.Int("WIDTH", 1, 1, 64)
//	n := p.Int("INPUT_BITS", 2, 1, 64)
//	if err := p.Err(); err != nil {
//		return nil, err
//	}
//
type Params struct {
	kind string
	raw  map[string]string
	err  error
}

// NewParams wraps the raw parameters of a gate of the given kind.
//
func NewParams(kind string, raw map[string]string) *Params {
	return &Params{kind: kind, raw: raw}
}

// Kind returns the name of the gate kind being configured.
//
func (p *Params) Kind() string { return p.kind }

// Lookup returns the raw value of the named parameter.
//
func (p *Params) Lookup(name string) (string, bool) {
	v, ok := p.raw[name]
	return v, ok
}

// Err returns the first error encountered by a getter.
//
func (p *Params) Err() error { return p.err }

// Fail records a parameter error, unless one is already recorded.
//
func (p *Params) Fail(name, value, reason string) {
	if p.err == nil {
		p.err = &ParamError{Kind: p.kind, Name: name, Value: value, Reason: reason}
	}
}

// Int returns the named parameter as an int in the range [min, max], or def
// if the parameter is not set.
//
func (p *Params) Int(name string, def, min, max int) int {
	v, ok := p.raw[name]
	if !ok || p.err != nil {
		return def
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 0, 0)
	if err != nil {
		p.Fail(name, v, "not an integer")
		return def
	}
	if int(n) < min || int(n) > max {
		p.Fail(name, v, "out of range ["+strconv.Itoa(min)+", "+strconv.Itoa(max)+"]")
		return def
	}
	return int(n)
}

// Uint64 returns the named parameter as an unsigned integer, or def if the
// parameter is not set. Prefixes 0x, 0b and 0o are accepted.
//
func (p *Params) Uint64(name string, def uint64) uint64 {
	v, ok := p.raw[name]
	if !ok || p.err != nil {
		return def
	}
	n, err := strconv.ParseUint(strings.TrimSpace(v), 0, 64)
	if err != nil {
		p.Fail(name, v, "not an unsigned integer")
		return def
	}
	return n
}

// Bool returns the named parameter as a boolean, or def if the parameter is
// not set.
//
func (p *Params) Bool(name string, def bool) bool {
	v, ok := p.raw[name]
	if !ok || p.err != nil {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		p.Fail(name, v, "not a boolean")
		return def
	}
	return b
}

// Mask returns a mask for the given number of bits, 1 <= bits <= 64.
//
func Mask(bits int) uint64 {
	if bits >= 64 {
		return ^uint64(0)
	}
	return 1<<uint(bits) - 1
}
