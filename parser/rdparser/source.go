// Copyright © 2018 The ELPS authors

package rdparser

import (
	"github.com/luthersystems/mal/parser/lexer"
	"github.com/luthersystems/mal/parser/token"
)

// TokenStream produces the tokens of a mal program.  A *lexer.Lexer is the
// usual TokenStream.  The REPL supplies tokens one line at a time.
type TokenStream interface {
	// ReadToken returns one or more tokens, never an empty slice.  At the
	// end of input it returns a token.EOF token, and it keeps returning one
	// if called again.
	ReadToken() []*token.Token
}

// TokenGenerator adapts a function to a TokenStream.
type TokenGenerator func() []*token.Token

// ReadToken calls fn.
func (fn TokenGenerator) ReadToken() []*token.Token {
	return fn()
}

// TokenSource gives the parser one token of lookahead over a TokenStream.
// Tokens delivered together by the stream are queued and handed out in
// order.
type TokenSource struct {
	stream TokenStream
	queue  []*token.Token
	// Token is the token most recently consumed by Scan or AcceptType.
	Token *token.Token
}

// NewTokenStreamSource returns a TokenSource reading from stream.
func NewTokenStreamSource(stream TokenStream) *TokenSource {
	return &TokenSource{stream: stream}
}

// NewTokenSource returns a TokenSource which lexes the text of scanner.
func NewTokenSource(scanner *token.Scanner) *TokenSource {
	return NewTokenStreamSource(lexer.New(scanner))
}

// Peek returns the next token without consuming it.
func (s *TokenSource) Peek() *token.Token {
	if len(s.queue) == 0 {
		s.queue = s.stream.ReadToken()
		if len(s.queue) == 0 {
			panic("token stream returned no tokens")
		}
	}
	return s.queue[0]
}

// IsEOF reports whether the stream is exhausted.
func (s *TokenSource) IsEOF() bool {
	return s.Peek().Type == token.EOF
}

// Scan consumes the next token.  At the end of input Scan leaves the EOF
// token in Token and returns false.
func (s *TokenSource) Scan() bool {
	if s.IsEOF() {
		s.Token = s.Peek()
		return false
	}
	s.next()
	return true
}

// AcceptType consumes the next token if its type is one of types.
func (s *TokenSource) AcceptType(types ...token.Type) bool {
	next := s.Peek().Type
	for _, typ := range types {
		if next == typ {
			s.next()
			return true
		}
	}
	return false
}

func (s *TokenSource) next() {
	s.Token = s.Peek()
	s.queue[0] = nil
	s.queue = s.queue[1:]
}
