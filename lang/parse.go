// Package lang reads and writes the textual graph description: element
// declarations "name :: Type(config);" and connection statements
// "a [1] -> [0] b;" with optional port numbers and -> chains.
package lang

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jackzhao-mj/click/graph"
)

// ParseError describes a syntax error with its position.
type ParseError struct {
	Line, Col int
	Msg       string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d:%d: %s", e.Line, e.Col, e.Msg)
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent           // element names, type names
	tokNumber          // port numbers
	tokColonColon      // ::
	tokArrow           // ->
	tokLBracket        // [
	tokRBracket        // ]
	tokSemicolon       // ;
	tokConfig          // parenthesized configuration text, parens stripped
)

type token struct {
	kind      tokenKind
	text      string
	line, col int
}

type lexer struct {
	src       []byte
	pos       int
	line, col int
}

func newLexer(src []byte) *lexer {
	return &lexer{src: src, line: 1, col: 1}
}

func (lx *lexer) errorf(line, col int, format string, args ...any) *ParseError {
	return &ParseError{Line: line, Col: col, Msg: fmt.Sprintf(format, args...)}
}

func (lx *lexer) advance() byte {
	ch := lx.src[lx.pos]
	lx.pos++
	if ch == '\n' {
		lx.line++
		lx.col = 1
	} else {
		lx.col++
	}
	return ch
}

func (lx *lexer) skipSpaceAndComments() error {
	for lx.pos < len(lx.src) {
		ch := lx.src[lx.pos]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			lx.advance()
		case ch == '/' && lx.pos+1 < len(lx.src) && lx.src[lx.pos+1] == '/':
			for lx.pos < len(lx.src) && lx.src[lx.pos] != '\n' {
				lx.advance()
			}
		case ch == '/' && lx.pos+1 < len(lx.src) && lx.src[lx.pos+1] == '*':
			line, col := lx.line, lx.col
			lx.advance()
			lx.advance()
			for {
				if lx.pos >= len(lx.src) {
					return lx.errorf(line, col, "unterminated block comment")
				}
				if lx.src[lx.pos] == '*' && lx.pos+1 < len(lx.src) && lx.src[lx.pos+1] == '/' {
					lx.advance()
					lx.advance()
					break
				}
				lx.advance()
			}
		default:
			return nil
		}
	}
	return nil
}

func isIdentByte(ch byte) bool {
	return ch == '_' || ch == '@' ||
		(ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')
}

func (lx *lexer) next() (token, error) {
	if err := lx.skipSpaceAndComments(); err != nil {
		return token{}, err
	}
	if lx.pos >= len(lx.src) {
		return token{kind: tokEOF, line: lx.line, col: lx.col}, nil
	}
	line, col := lx.line, lx.col
	ch := lx.src[lx.pos]
	switch {
	case ch >= '0' && ch <= '9':
		start := lx.pos
		for lx.pos < len(lx.src) && lx.src[lx.pos] >= '0' && lx.src[lx.pos] <= '9' {
			lx.advance()
		}
		return token{kind: tokNumber, text: string(lx.src[start:lx.pos]), line: line, col: col}, nil
	case isIdentByte(ch):
		start := lx.pos
		for lx.pos < len(lx.src) && isIdentByte(lx.src[lx.pos]) {
			lx.advance()
		}
		return token{kind: tokIdent, text: string(lx.src[start:lx.pos]), line: line, col: col}, nil
	case ch == ':':
		if lx.pos+1 < len(lx.src) && lx.src[lx.pos+1] == ':' {
			lx.advance()
			lx.advance()
			return token{kind: tokColonColon, text: "::", line: line, col: col}, nil
		}
		return token{}, lx.errorf(line, col, "unexpected ':'")
	case ch == '-':
		if lx.pos+1 < len(lx.src) && lx.src[lx.pos+1] == '>' {
			lx.advance()
			lx.advance()
			return token{kind: tokArrow, text: "->", line: line, col: col}, nil
		}
		return token{}, lx.errorf(line, col, "unexpected '-'")
	case ch == '[':
		lx.advance()
		return token{kind: tokLBracket, text: "[", line: line, col: col}, nil
	case ch == ']':
		lx.advance()
		return token{kind: tokRBracket, text: "]", line: line, col: col}, nil
	case ch == ';':
		lx.advance()
		return token{kind: tokSemicolon, text: ";", line: line, col: col}, nil
	case ch == '(':
		lx.advance()
		start := lx.pos
		depth := 1
		for lx.pos < len(lx.src) {
			switch lx.src[lx.pos] {
			case '(':
				depth++
			case ')':
				depth--
				if depth == 0 {
					text := strings.TrimSpace(string(lx.src[start:lx.pos]))
					lx.advance()
					return token{kind: tokConfig, text: text, line: line, col: col}, nil
				}
			}
			lx.advance()
		}
		return token{}, lx.errorf(line, col, "unterminated configuration")
	}
	return token{}, lx.errorf(line, col, "unexpected character %q", string(ch))
}

type parser struct {
	lx     *lexer
	tok    token
	router *graph.Router
}

func (p *parser) advance() error {
	tok, err := p.lx.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) errorf(format string, args ...any) error {
	return &ParseError{Line: p.tok.line, Col: p.tok.col, Msg: fmt.Sprintf(format, args...)}
}

// Parse reads a textual graph description into a fresh Router.
func Parse(src []byte) (*graph.Router, error) {
	p := &parser{lx: newLexer(src), router: graph.NewRouter()}
	if err := p.advance(); err != nil {
		return nil, err
	}
	for p.tok.kind != tokEOF {
		if err := p.statement(); err != nil {
			return nil, err
		}
	}
	return p.router, nil
}

// statement parses either a declaration or a connection chain, both of which
// open with an element name.
func (p *parser) statement() error {
	if p.tok.kind != tokIdent {
		return p.errorf("expected element name, got %q", p.tok.text)
	}
	name := p.tok.text
	if err := p.advance(); err != nil {
		return err
	}

	if p.tok.kind == tokColonColon {
		return p.declaration(name)
	}
	return p.connectionChain(name)
}

// declaration parses "name :: Type" with an optional "(config)".
func (p *parser) declaration(name string) error {
	if err := p.advance(); err != nil { // over ::
		return err
	}
	if p.tok.kind != tokIdent {
		return p.errorf("expected type name after '::'")
	}
	typeName := p.tok.text
	if err := p.advance(); err != nil {
		return err
	}
	config := ""
	if p.tok.kind == tokConfig {
		config = p.tok.text
		if err := p.advance(); err != nil {
			return err
		}
	}
	if prev := p.router.Lookup(name); prev != nil {
		return p.errorf("element %q declared twice", name)
	}
	p.router.GetElement(name, typeName, config)
	return p.expectSemicolon()
}

// connectionChain parses "a [p] -> [q] b [p2] -> ... ;".
func (p *parser) connectionChain(firstName string) error {
	from, err := p.endpoint(firstName)
	if err != nil {
		return err
	}
	fromPort := 0
	if p.tok.kind == tokLBracket {
		if fromPort, err = p.portNumber(); err != nil {
			return err
		}
	}
	for {
		if p.tok.kind != tokArrow {
			return p.errorf("expected '->', got %q", p.tok.text)
		}
		if err := p.advance(); err != nil {
			return err
		}
		toPort := 0
		if p.tok.kind == tokLBracket {
			if toPort, err = p.portNumber(); err != nil {
				return err
			}
		}
		if p.tok.kind != tokIdent {
			return p.errorf("expected element name after '->'")
		}
		to, err := p.endpoint(p.tok.text)
		if err != nil {
			return err
		}
		if err := p.advance(); err != nil {
			return err
		}
		p.router.AddConnection(graph.Port{Elem: from, Port: fromPort}, graph.Port{Elem: to, Port: toPort})

		from, fromPort = to, 0
		if p.tok.kind == tokLBracket {
			if fromPort, err = p.portNumber(); err != nil {
				return err
			}
		}
		if p.tok.kind == tokSemicolon {
			return p.advance()
		}
	}
}

// endpoint resolves a connection endpoint name; the element must have been
// declared.
func (p *parser) endpoint(name string) (*graph.Element, error) {
	e := p.router.Lookup(name)
	if e == nil {
		return nil, p.errorf("undeclared element %q", name)
	}
	return e, nil
}

// portNumber parses "[n]". The opening bracket is the current token.
func (p *parser) portNumber() (int, error) {
	if err := p.advance(); err != nil { // over [
		return 0, err
	}
	if p.tok.kind != tokNumber {
		return 0, p.errorf("expected port number")
	}
	n, err := strconv.Atoi(p.tok.text)
	if err != nil {
		return 0, p.errorf("bad port number %q", p.tok.text)
	}
	if err := p.advance(); err != nil {
		return 0, err
	}
	if p.tok.kind != tokRBracket {
		return 0, p.errorf("expected ']'")
	}
	return n, p.advance()
}

func (p *parser) expectSemicolon() error {
	if p.tok.kind != tokSemicolon {
		return p.errorf("expected ';', got %q", p.tok.text)
	}
	return p.advance()
}
