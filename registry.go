// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package gatesim

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// A Kind describes a gate kind: its name, the parameters it accepts and a
// constructor building a Part from parameter values.
//
type Kind struct {
	// Kind name, upper case.
	Name string
	// Short description.
	Doc string
	// Accepted parameter names. Any other parameter is rejected, except
	// memory parameters on parts with a Memory.
	Params []string
	// New parses the parameters and returns the configured part.
	New func(p *Params) (*Part, error)
}

func (k *Kind) accepts(name string) bool {
	for _, n := range k.Params {
		if n == name {
			return true
		}
	}
	return false
}

// Configure validates raw parameter names and builds a part. Memory
// parameters (see MemoryParamPrefix) initialize the memory of the part.
//
func (k *Kind) Configure(raw map[string]string) (*Part, error) {
	var mem map[string]string
	for name, v := range raw {
		if strings.HasPrefix(name, MemoryParamPrefix) {
			if mem == nil {
				mem = make(map[string]string)
			}
			mem[name] = v
			continue
		}
		if !k.accepts(name) {
			return nil, &ParamError{Kind: k.Name, Name: name, Value: v, Reason: "unknown parameter"}
		}
	}
	p, err := k.New(NewParams(k.Name, raw))
	if err != nil {
		return nil, err
	}
	if len(mem) > 0 {
		if p.Memory == nil {
			for name, v := range mem {
				return nil, &ParamError{Kind: k.Name, Name: name, Value: v, Reason: "gate has no memory"}
			}
		}
		for name, v := range mem {
			addr, val, err := parseMemoryParam(k.Name, name, v)
			if err != nil {
				return nil, err
			}
			if err = p.Memory.Write(addr, val); err != nil {
				return nil, &ParamError{Kind: k.Name, Name: name, Value: v, Reason: err.Error()}
			}
		}
	}
	return p, nil
}

// A Registry holds the gate kinds known to a circuit. A registry is built once
// and shared by the circuits using it; it must not be modified once in use.
//
type Registry struct {
	kinds map[string]*Kind
}

// NewRegistry returns a registry with the given kinds.
//
func NewRegistry(kinds ...*Kind) (*Registry, error) {
	r := &Registry{kinds: make(map[string]*Kind)}
	if err := r.Register(kinds...); err != nil {
		return nil, err
	}
	return r, nil
}

// Register adds kinds to the registry. Kind names must be unique.
//
func (r *Registry) Register(kinds ...*Kind) error {
	for _, k := range kinds {
		if k == nil || k.Name == "" || k.New == nil {
			return errors.New("invalid kind definition")
		}
		name := strings.ToUpper(k.Name)
		if _, ok := r.kinds[name]; ok {
			return errors.Errorf("kind %s already registered", name)
		}
		r.kinds[name] = k
	}
	return nil
}

// Alias registers an alternate name for an existing kind.
//
func (r *Registry) Alias(alias, name string) error {
	k, err := r.Lookup(name)
	if err != nil {
		return err
	}
	alias = strings.ToUpper(alias)
	if _, ok := r.kinds[alias]; ok {
		return errors.Errorf("kind %s already registered", alias)
	}
	r.kinds[alias] = k
	return nil
}

// Lookup returns the named kind. Names are case insensitive.
//
func (r *Registry) Lookup(name string) (*Kind, error) {
	k, ok := r.kinds[strings.ToUpper(name)]
	if !ok {
		return nil, errors.Wrap(ErrUnknownGateKind, name)
	}
	return k, nil
}

// Names returns the sorted list of registered kind names, aliases included.
//
func (r *Registry) Names() []string {
	ns := make([]string, 0, len(r.kinds))
	for n := range r.kinds {
		ns = append(ns, n)
	}
	sort.Strings(ns)
	return ns
}
