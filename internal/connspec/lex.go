package connspec

import (
	"strconv"
	"unicode"
	"unicode/utf8"
)

// Token types.
const (
	EOF tokenType = iota
	Raw
	Ident
	BracketOpen
	BracketClose
	Comma
	Int
	Range
	Equal
)

type tokenType int

var tokenNames = [...]string{
	EOF:          "end of input",
	Raw:          "character",
	Ident:        "identifier",
	BracketOpen:  "'['",
	BracketClose: "']'",
	Comma:        "','",
	Int:          "integer",
	Range:        "'..'",
	Equal:        "'='",
}

func (t tokenType) String() string { return tokenNames[t] }

type item struct {
	typ   tokenType
	pos   int
	value string
}

func (i item) String() string {
	switch i.typ {
	case Ident, Int, Raw:
		return i.typ.String() + " " + strconv.Quote(i.value)
	}
	return i.typ.String()
}

type stateFn func(l *lexer) stateFn

// lexer splits a connection string into tokens. State functions emit at most
// one item per call.
type lexer struct {
	input string
	start int // start of the current item
	pos   int // next rune
	width int // width of the last rune read
	items []item
	state stateFn
}

func newLexer(input string) *lexer {
	return &lexer{input: input, state: lexInit}
}

const eof = -1

func (l *lexer) next() rune {
	if l.pos >= len(l.input) {
		l.width = 0
		return eof
	}
	r, w := utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += w
	l.width = w
	return r
}

func (l *lexer) backup() { l.pos -= l.width }

func (l *lexer) emit(t tokenType) {
	l.items = append(l.items, item{t, l.start, l.input[l.start:l.pos]})
	l.start = l.pos
}

func (l *lexer) ignore() { l.start = l.pos }

func (l *lexer) acceptWhile(f func(rune) bool) {
	for f(l.next()) {
	}
	l.backup()
}

// lex returns the next item.
func (l *lexer) lex() item {
	for len(l.items) == 0 {
		l.state = l.state(l)
	}
	i := l.items[0]
	l.items = l.items[1:]
	return i
}

func isDigit(r rune) bool { return '0' <= r && r <= '9' }

func isIdent(r rune) bool { return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) }

func lexInit(l *lexer) stateFn {
	r := l.next()
	switch {
	case r == eof:
		return lexEOF
	case unicode.IsSpace(r):
		l.acceptWhile(unicode.IsSpace)
		l.ignore()
	case unicode.IsLetter(r) || r == '_':
		l.acceptWhile(isIdent)
		l.emit(Ident)
	case isDigit(r):
		l.acceptWhile(isDigit)
		l.emit(Int)
	case r == '[':
		l.emit(BracketOpen)
	case r == ']':
		l.emit(BracketClose)
	case r == ',':
		l.emit(Comma)
	case r == '=':
		l.emit(Equal)
	case r == '.':
		if l.next() == '.' {
			l.emit(Range)
			break
		}
		l.backup()
		fallthrough
	default:
		l.emit(Raw)
		return lexEOF
	}
	return lexInit
}

// lexEOF places the lexer in End-Of-File state.
// Once in this state, the lexer will only emit EOF.
func lexEOF(l *lexer) stateFn {
	l.start = l.pos
	l.emit(EOF)
	return lexEOF
}
