// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package gatesim

import (
	"fmt"

	"github.com/pkg/errors"
)

// Structural and parameter errors. Functions of this package wrap them with
// context; use errors.Is to test for them.
//
var (
	ErrUnknownGateKind     = errors.New("unknown gate kind")
	ErrInvalidParameter    = errors.New("invalid parameter")
	ErrUnknownPin          = errors.New("unknown pin")
	ErrPinAlreadyConnected = errors.New("pin already connected")
	ErrUnknownGate         = errors.New("unknown gate")
	ErrUnknownWire         = errors.New("unknown wire")
	ErrDuplicateID         = errors.New("duplicate id")
)

// ParamError reports a malformed or out of range gate parameter.
//
type ParamError struct {
	Kind   string // gate kind
	Name   string // parameter name
	Value  string // offending value
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%s: parameter %s=%q: %s", e.Kind, e.Name, e.Value, e.Reason)
}

// Cause returns ErrInvalidParameter.
//
func (e *ParamError) Cause() error { return ErrInvalidParameter }

// Unwrap returns ErrInvalidParameter.
//
func (e *ParamError) Unwrap() error { return ErrInvalidParameter }

// EvalError reports a gate behavior that failed during evaluation. The step
// during which it happened is not committed.
//
type EvalError struct {
	Gate GateID
	Kind string
	Err  error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("gate %d (%s): evaluation failed: %v", e.Gate, e.Kind, e.Err)
}

func (e *EvalError) Cause() error  { return e.Err }
func (e *EvalError) Unwrap() error { return e.Err }
