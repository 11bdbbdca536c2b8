// Copyright © 2018 The ELPS authors

package lisp

import (
	"io"
)

// Reader abstracts a parser implementation so that it may be implemented in a
// separate package as an optional/swappable component.
type Reader interface {
	// Read the contents of r and return the sequence of LVals that it
	// contains.  The returned LVals should be evaluated in order, as if
	// inside a do form.
	Read(name string, r io.Reader) ([]*LVal, error)
}

// ExpressionReader is implemented by readers that can read a single
// expression without consuming the rest of the stream.  At the end of the
// stream ReadExpression returns io.EOF.
type ExpressionReader interface {
	ReadExpression(name string, r io.Reader) (*LVal, error)
}

// ReaderFunc adapts a function to the Reader interface.
type ReaderFunc func(name string, r io.Reader) ([]*LVal, error)

// Read implements Reader.
func (fn ReaderFunc) Read(name string, r io.Reader) ([]*LVal, error) {
	return fn(name, r)
}

// readerError converts an error returned by a Reader into an LError.
// Readers return *ErrorVal for syntax errors, which are passed through
// unchanged.  Other errors become syntax errors.
func readerError(err error) *LVal {
	if lerr, ok := err.(*ErrorVal); ok {
		return (*LVal)(lerr)
	}
	return ErrorCondition(CondSyntaxError, err)
}
