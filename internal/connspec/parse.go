// Package connspec parses pin to wire connection strings used by netlists.
//
// A connection string is a comma separated list of pin=wire assignments:
//
//	IN_0=a, IN_1=b, OUT[0..3]=sum[4..7]
//
// Both sides may name a single pin or wire, an indexed bus bit (name[i]) or a
// bus range (name[i..j], ascending or descending). Ranges are expanded to their
// individual bits and paired in order. A single wire on the right hand side may
// be assigned to several pins.
package connspec

import (
	"strconv"
	"strings"

	"github.com/db47h/gatesim"
	"github.com/pkg/errors"
)

// A Conn connects a gate pin to a named wire.
type Conn struct {
	Pin  string
	Wire string
}

type ref struct {
	name       string
	pos        int
	start, end int // bus range, start == -1 for a plain name
}

func (r ref) expand() []string {
	if r.start < 0 {
		return []string{r.name}
	}
	step := 1
	if r.end < r.start {
		step = -1
	}
	out := make([]string, 0, (r.end-r.start)*step+1)
	for i := r.start; ; i += step {
		out = append(out, gatesim.BusPinName(r.name, i))
		if i == r.end {
			break
		}
	}
	return out
}

type parser struct {
	input string
	l     *lexer
	i     item
}

func parseError(in string, pos int, msg string) error {
	return errors.Errorf("in %q at pos %d: %s", in, pos+1, msg)
}

func (p *parser) unexpected(what string) error {
	return parseError(p.input, p.i.pos, what+", got "+p.i.String())
}

func (p *parser) index() (int, error) {
	if p.i.typ != Int {
		return 0, p.unexpected("integer value expected")
	}
	n, err := strconv.Atoi(p.i.value)
	if err != nil {
		return 0, parseError(p.input, p.i.pos, err.Error())
	}
	p.i = p.l.lex()
	return n, nil
}

// ref parses name, name[i] or name[i..j].
func (p *parser) ref() (ref, error) {
	if p.i.typ != Ident {
		return ref{}, p.unexpected("name expected")
	}
	r := ref{name: p.i.value, pos: p.i.pos, start: -1, end: -1}
	p.i = p.l.lex()
	if p.i.typ != BracketOpen {
		return r, nil
	}
	p.i = p.l.lex()
	var err error
	if r.start, err = p.index(); err != nil {
		return r, err
	}
	r.end = r.start
	if p.i.typ == Range {
		p.i = p.l.lex()
		if r.end, err = p.index(); err != nil {
			return r, err
		}
	}
	if p.i.typ != BracketClose {
		return r, p.unexpected("closing ']' expected after index or range")
	}
	p.i = p.l.lex()
	return r, nil
}

// Parse parses a connection string. Pins appear at most once in the result.
func Parse(s string) ([]Conn, error) {
	p := &parser{input: s, l: newLexer(s)}
	var (
		out  []Conn
		seen = make(map[string]bool)
	)
	p.i = p.l.lex()
	for p.i.typ != EOF {
		lhs, err := p.ref()
		if err != nil {
			return nil, err
		}
		if p.i.typ != Equal {
			return nil, p.unexpected("'=' expected")
		}
		p.i = p.l.lex()
		rhs, err := p.ref()
		if err != nil {
			return nil, err
		}
		switch p.i.typ {
		case Comma:
			p.i = p.l.lex()
			if p.i.typ == EOF {
				return nil, p.unexpected("pin name expected after ','")
			}
		case EOF:
		default:
			return nil, p.unexpected("',' expected")
		}

		pins, wires := lhs.expand(), rhs.expand()
		switch {
		case len(pins) == len(wires):
		case len(wires) == 1:
			// many to one
			for len(wires) < len(pins) {
				wires = append(wires, wires[0])
			}
		default:
			return nil, parseError(s, lhs.pos, "pin count mismatch: "+strconv.Itoa(len(pins))+" pins, "+strconv.Itoa(len(wires))+" wires")
		}
		for i, pin := range pins {
			if seen[pin] {
				return nil, parseError(s, lhs.pos, "pin "+pin+" assigned more than once")
			}
			seen[pin] = true
			out = append(out, Conn{pin, wires[i]})
		}
	}
	return out, nil
}

// splitBit splits a bus bit name into its bus name and index.
func splitBit(name string) (bus string, bit int, ok bool) {
	i := strings.IndexByte(name, '[')
	if i <= 0 || !strings.HasSuffix(name, "]") {
		return name, 0, false
	}
	n, err := strconv.Atoi(name[i+1 : len(name)-1])
	if err != nil {
		return name, 0, false
	}
	return name[:i], n, true
}

func formatRef(bus string, start, end int) string {
	if start == end {
		return gatesim.BusPinName(bus, start)
	}
	return bus + "[" + strconv.Itoa(start) + ".." + strconv.Itoa(end) + "]"
}

// Format formats connections as a connection string. Runs of consecutive bus
// bits connected to consecutive bits of a wire bus are written as ranges.
func Format(conns []Conn) string {
	var b strings.Builder
	for i := 0; i < len(conns); {
		c := conns[i]
		n := 1
		pb, ps, pok := splitBit(c.Pin)
		wb, ws, wok := splitBit(c.Wire)
		if pok && wok {
			for ; i+n < len(conns); n++ {
				nb, np, ok1 := splitBit(conns[i+n].Pin)
				mb, mw, ok2 := splitBit(conns[i+n].Wire)
				if !ok1 || !ok2 || nb != pb || mb != wb || np != ps+n || mw != ws+n {
					break
				}
			}
		}
		if b.Len() > 0 {
			b.WriteString(", ")
		}
		if n > 1 {
			b.WriteString(formatRef(pb, ps, ps+n-1))
			b.WriteByte('=')
			b.WriteString(formatRef(wb, ws, ws+n-1))
		} else {
			b.WriteString(c.Pin)
			b.WriteByte('=')
			b.WriteString(c.Wire)
		}
		i += n
	}
	return b.String()
}
