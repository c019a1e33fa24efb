// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package gatesim

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// A Signal is the state of a pin or wire.
//
// The numeric values are stable and can be used as wire-state codes by
// presentation layers.
//
type Signal uint8

// Signal values.
//
const (
	Zero     Signal = iota // logic low
	One                    // logic high
	HiZ                    // high impedance: no driver asserts a value
	Conflict               // contending drivers disagree
	Unknown                // not yet evaluated or indeterminate
)

var signalNames = [...]string{
	Zero:     "ZERO",
	One:      "ONE",
	HiZ:      "HI_Z",
	Conflict: "CONFLICT",
	Unknown:  "UNKNOWN",
}

func (s Signal) String() string {
	if int(s) < len(signalNames) {
		return signalNames[s]
	}
	return "Signal(" + strconv.Itoa(int(s)) + ")"
}

// Defined returns true if s is Zero or One.
//
func (s Signal) Defined() bool {
	return s == Zero || s == One
}

// Bool returns true if s is One.
//
func (s Signal) Bool() bool { return s == One }

// FromBool converts a boolean to Zero or One.
//
func FromBool(b bool) Signal {
	if b {
		return One
	}
	return Zero
}

// ParseSignal parses a signal name (ZERO, ONE, HI_Z, CONFLICT, UNKNOWN),
// its numeric code, or one of the short forms 0, 1, Z, X (Conflict), U
// (Unknown). Parsing is case insensitive.
//
// The short forms are not VCD values: VCD has no distinct Conflict and Unknown
// states and writers like trace.WriteVCD use x for both.
//
func ParseSignal(s string) (Signal, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "0", "ZERO", "FALSE":
		return Zero, nil
	case "1", "ONE", "TRUE":
		return One, nil
	case "2", "Z", "HI_Z", "HIZ":
		return HiZ, nil
	case "3", "X", "CONFLICT":
		return Conflict, nil
	case "4", "U", "UNKNOWN":
		return Unknown, nil
	}
	return Unknown, errors.Errorf("invalid signal %q", s)
}

// resolver accumulates the driver values of a wire. It only records which
// values have been seen, so the result does not depend on the order in which
// drivers are added.
//
type resolver uint8

func (r *resolver) add(s Signal) {
	if s != HiZ {
		*r |= 1 << s
	}
}

func (r resolver) result() Signal {
	switch {
	case r == 0:
		return HiZ
	case r&(1<<Conflict) != 0, r&(1<<Zero|1<<One) == 1<<Zero|1<<One:
		return Conflict
	case r&(1<<Unknown) != 0:
		return Unknown
	case r&(1<<One) != 0:
		return One
	}
	return Zero
}

// Resolve computes the state of a wire from the values asserted by all of its
// drivers:
//
//	- HiZ drivers do not contribute. No contributing driver yields HiZ.
//	- A Conflict driver or two drivers disagreeing on a defined value yield Conflict.
//	- Otherwise any Unknown driver yields Unknown.
//	- Otherwise all drivers agree and their value is returned.
//
func Resolve(drivers ...Signal) Signal {
	var r resolver
	for _, s := range drivers {
		r.add(s)
	}
	return r.result()
}
