// Copyright © 2018 The ELPS authors

package rdparser

import (
	"io"
	"strconv"

	"github.com/luthersystems/mal/lisp"
	"github.com/luthersystems/mal/parser/token"
)

type reader struct {
}

// NewReader returns a lisp.Reader to use in a lisp.Runtime.  The returned
// reader also implements lisp.ExpressionReader.
func NewReader() lisp.Reader {
	return &reader{}
}

// Read implements lisp.Reader.
func (*reader) Read(name string, r io.Reader) ([]*lisp.LVal, error) {
	s := token.NewScanner(name, r)
	p := New(s)
	return p.ParseProgram()
}

// ReadExpression implements lisp.ExpressionReader.
func (*reader) ReadExpression(name string, r io.Reader) (*lisp.LVal, error) {
	s := token.NewScanner(name, r)
	p := New(s)
	p.ignoreHashBang()
	return p.Parse()
}

// Parser is a lisp parser.
type Parser struct {
	parsing bool
	src     *TokenSource
}

// NewFromSource initializes and returns a Parser that reads tokens from src.
func NewFromSource(src *TokenSource) *Parser {
	return &Parser{
		src: src,
	}
}

// New initializes and returns a new Parser that reads tokens from scanner.
func New(scanner *token.Scanner) *Parser {
	return NewFromSource(NewTokenSource(scanner))
}

// Parse is a generic entry point that is similar to ParseExpression but is
// capable of handling EOF before reading an expression.
func (p *Parser) Parse() (*lisp.LVal, error) {
	p.ignoreComments()
	if p.src.IsEOF() {
		return nil, io.EOF
	}
	expr := p.ParseExpression()
	if expr.Type == lisp.LError {
		return nil, lisp.GoError(expr)
	}
	return expr, nil
}

// ParseProgram parses a series of expressions potentially preceded by a
// hash-bang, `#!`.
func (p *Parser) ParseProgram() ([]*lisp.LVal, error) {
	var exprs []*lisp.LVal

	p.ignoreHashBang()

	for {
		expr, err := p.Parse()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
	}

	return exprs, nil
}

// ParseExpression parses a single expression.  Unlike Parse, ParseExpression
// requires an expression to be present in the input stream and will report
// unexpected EOF tokens encountered.
func (p *Parser) ParseExpression() *lisp.LVal {
	fn := p.parseExpression()

	// Flag that an expression is in progress so an Interactive parser can
	// choose a continuation prompt.
	if !p.parsing {
		p.parsing = true
		defer func() { p.parsing = false }()
	}

	return fn(p)
}

func (p *Parser) ignoreHashBang() {
	p.src.AcceptType(token.HASH_BANG)
}

func (p *Parser) parseExpression() func(p *Parser) *lisp.LVal {
	p.ignoreComments()
	switch p.PeekType() {
	case token.INT:
		return (*Parser).ParseLiteralInt
	case token.STRING:
		return (*Parser).ParseLiteralString
	case token.QUOTE:
		return (*Parser).ParseQuote
	case token.DEREF:
		return (*Parser).ParseDeref
	case token.SYMBOL:
		return (*Parser).ParseSymbol
	case token.PAREN_L:
		return (*Parser).ParseConsExpression
	case token.EOF:
		return func(p *Parser) *lisp.LVal {
			p.ReadToken()
			return p.errorf("unexpected end of input")
		}
	case token.ERROR, token.INVALID:
		return func(p *Parser) *lisp.LVal {
			p.ReadToken()
			return p.errorf("%s", p.TokenText())
		}
	default:
		return func(p *Parser) *lisp.LVal {
			p.ReadToken()
			return p.errorf("unexpected token: %v", p.TokenType())
		}
	}
}

func (p *Parser) ParseLiteralInt() *lisp.LVal {
	if !p.Accept(token.INT) {
		return p.errorf("invalid integer literal: %v", p.PeekType())
	}
	text := p.TokenText()
	x, err := strconv.Atoi(text)
	if err != nil {
		return p.errorf("integer literal overflows int: %v", text)
	}
	return p.Int(x)
}

func (p *Parser) ParseLiteralString() *lisp.LVal {
	if !p.Accept(token.STRING) {
		return p.errorf("invalid string literal: %v", p.PeekType())
	}
	s, err := token.UnquoteString(p.TokenText())
	if err != nil {
		return p.errorf("invalid string literal %s: %v", p.TokenText(), err)
	}
	return p.String(s)
}

func (p *Parser) ParseQuote() *lisp.LVal {
	if !p.Accept(token.QUOTE) {
		return p.errorf("invalid quote: %v", p.PeekType())
	}
	loc := p.Location()
	return wrap(loc, "quote", p.ParseExpression())
}

func (p *Parser) ParseDeref() *lisp.LVal {
	if !p.Accept(token.DEREF) {
		return p.errorf("invalid deref: %v", p.PeekType())
	}
	loc := p.Location()
	return wrap(loc, "deref", p.ParseExpression())
}

// ParseSymbol parses a symbol token.  The names nil, true, and false are
// read as literal values rather than symbols.
func (p *Parser) ParseSymbol() *lisp.LVal {
	if !p.Accept(token.SYMBOL) {
		return p.errorf("invalid symbol: %v", p.PeekType())
	}
	switch text := p.TokenText(); text {
	case "nil":
		return p.tokenLVal(lisp.Nil())
	case "true":
		return p.tokenLVal(lisp.Bool(true))
	case "false":
		return p.tokenLVal(lisp.Bool(false))
	default:
		return p.Symbol(text)
	}
}

func (p *Parser) ParseConsExpression() *lisp.LVal {
	if !p.Accept(token.PAREN_L) {
		return p.errorf("invalid list: %v", p.PeekType())
	}
	open := p.src.Token
	expr := p.SExpr(nil)
	for {
		p.ignoreComments()
		if p.src.IsEOF() {
			err := p.errorf("unmatched %s", open.Text)
			err.Source = open.Source
			return err
		}
		if p.Accept(token.PAREN_R) {
			break
		}
		x := p.ParseExpression()
		if x.Type == lisp.LError {
			return x
		}
		expr.Cells = append(expr.Cells, x)
	}
	return expr
}

func (p *Parser) ignoreComments() {
	for p.Accept(token.COMMENT) {
	}
}

func (p *Parser) ReadToken() *token.Token {
	p.src.Scan()
	return p.src.Token
}

func (p *Parser) TokenText() string {
	return p.src.Token.Text
}

func (p *Parser) TokenType() token.Type {
	return p.src.Token.Type
}

func (p *Parser) Location() *token.Location {
	return p.src.Token.Source
}

func (p *Parser) PeekType() token.Type {
	return p.src.Peek().Type
}

func (p *Parser) PeekLocation() *token.Location {
	return p.src.Peek().Source
}

func (p *Parser) String(s string) *lisp.LVal {
	return p.tokenLVal(lisp.String(s))
}

func (p *Parser) Symbol(sym string) *lisp.LVal {
	return p.tokenLVal(lisp.Symbol(sym))
}

func (p *Parser) Int(x int) *lisp.LVal {
	return p.tokenLVal(lisp.Int(x))
}

func (p *Parser) SExpr(cells []*lisp.LVal) *lisp.LVal {
	return p.tokenLVal(lisp.SExpr(cells))
}

// wrap returns the list (op v) for reader shorthand located at loc.
func wrap(loc *token.Location, op string, v *lisp.LVal) *lisp.LVal {
	if v.Type == lisp.LError {
		return v
	}
	sym := lisp.Symbol(op)
	sym.Source = loc
	expr := lisp.SExpr([]*lisp.LVal{sym, v})
	expr.Source = loc
	return expr
}

func (p *Parser) tokenLVal(v *lisp.LVal) *lisp.LVal {
	v.Source = p.Location()
	return v
}

func (p *Parser) Accept(typ ...token.Type) bool {
	return p.src.AcceptType(typ...)
}

func (p *Parser) errorf(format string, v ...interface{}) *lisp.LVal {
	err := lisp.ErrorConditionf(lisp.CondSyntaxError, format, v...)
	err.Source = p.Location()
	return err
}
