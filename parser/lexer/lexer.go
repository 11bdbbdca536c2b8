// Copyright © 2018 The ELPS authors

package lexer

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/luthersystems/mal/parser/token"
)

type LexFn func(*Lexer) []*token.Token

// Runes that terminate a symbol.  Commas are whitespace.
const delimiters = "()[]{}'\"`,;@"

type Lexer struct {
	scanner *token.Scanner
	lex     LexFn
}

func New(s *token.Scanner) *Lexer {
	lex := &Lexer{
		scanner: s,
		lex:     (*Lexer).readStart,
	}
	return lex
}

// ReadToken returns the next token in the stream.  At the end of the stream
// every call returns a token.EOF token.
func (lex *Lexer) ReadToken() []*token.Token {
	return lex.lex(lex)
}

// readStart allows a #! line at the very beginning of the stream.
func (lex *Lexer) readStart() []*token.Token {
	lex.lex = (*Lexer).readToken
	if c, ok := lex.scanner.Peek(); !ok || c != '#' {
		return lex.readToken()
	}
	lex.scanner.AcceptRune('#')
	if !lex.scanner.AcceptRune('!') {
		lex.scanner.AcceptSeq(isSymbol)
		return lex.emitText(token.SYMBOL)
	}
	lex.scanner.AcceptSeq(func(c rune) bool { return c != '\n' })
	return lex.emitText(token.HASH_BANG)
}

func (lex *Lexer) readToken() []*token.Token {
	lex.skipWhitespace()
	if !lex.scanner.Accept(func(c rune) bool { return true }) {
		if lex.scanner.EOF() {
			return lex.emit(token.EOF, "")
		}
		return lex.emitError(lex.scanner.ScanRune())
	}
	switch c := lex.scanner.Rune(); {
	case c == '(':
		return lex.emitText(token.PAREN_L)
	case c == ')':
		return lex.emitText(token.PAREN_R)
	case c == '\'':
		return lex.emitText(token.QUOTE)
	case c == '@':
		return lex.emitText(token.DEREF)
	case c == ';':
		lex.scanner.AcceptSeq(func(c rune) bool { return c != '\n' })
		return lex.emitText(token.COMMENT)
	case c == '"':
		return lex.readString()
	case c == '-' && token.IsDigit(lex.peekRune()):
		return lex.readNumber()
	case token.IsDigit(c):
		return lex.readNumber()
	case isSymbol(c):
		lex.scanner.AcceptSeq(isSymbol)
		return lex.emitText(token.SYMBOL)
	default:
		return lex.errorf("unexpected text starting with %q", c)
	}
}

func (lex *Lexer) readString() []*token.Token {
	for {
		if !lex.scanner.Accept(func(c rune) bool { return true }) {
			if lex.scanner.EOF() {
				return lex.errorf("unterminated string literal")
			}
			return lex.emitError(lex.scanner.ScanRune())
		}
		switch lex.scanner.Rune() {
		case '"':
			return lex.emitText(token.STRING)
		case '\\':
			// the escaped character is checked by the parser
			if !lex.scanner.Accept(func(c rune) bool { return true }) {
				return lex.errorf("unterminated string literal")
			}
		}
	}
}

func (lex *Lexer) readNumber() []*token.Token {
	lex.scanner.AcceptSeqDigit()
	if isSymbol(lex.peekRune()) {
		lex.scanner.AcceptSeq(isSymbol)
		return lex.errorf("invalid number %q", lex.scanner.Text())
	}
	// the returned text may overflow int, that is found out at parse time
	return lex.emitText(token.INT)
}

func (lex *Lexer) skipWhitespace() {
	lex.scanner.AcceptSeq(isSpace)
	lex.scanner.Ignore()
}

func (lex *Lexer) emit(typ token.Type, text string) []*token.Token {
	tok := []*token.Token{{
		Type:   typ,
		Text:   text,
		Source: lex.scanner.LocStart(),
	}}
	lex.scanner.Ignore()
	return tok
}

func (lex *Lexer) emitText(typ token.Type) []*token.Token {
	return []*token.Token{lex.scanner.EmitToken(typ)}
}

func (lex *Lexer) emitError(err error) []*token.Token {
	if err == nil || err == io.EOF {
		return lex.emit(token.ERROR, "unexpected EOF")
	}
	return lex.emit(token.ERROR, err.Error())
}

func (lex *Lexer) errorf(format string, v ...interface{}) []*token.Token {
	return lex.emitError(fmt.Errorf(format, v...))
}

func (lex *Lexer) peekRune() rune {
	r, _ := lex.scanner.Peek()
	return r
}

func isSpace(c rune) bool {
	return c == ',' || unicode.IsSpace(c)
}

func isSymbol(c rune) bool {
	return !isSpace(c) && unicode.IsPrint(c) && !strings.ContainsRune(delimiters, c)
}
