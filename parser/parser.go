// Copyright © 2018 The ELPS authors

// Package parser selects a lisp.Reader implementation.
package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/luthersystems/mal/lisp"
	"github.com/luthersystems/mal/parser/rdparser"
	"github.com/luthersystems/mal/parser/regexparser"
)

// Reader names accepted by NewReaderNamed.
const (
	ReaderRD     = "rd"
	ReaderParsec = "parsec"
)

// NewReader returns a new lisp.Reader
func NewReader() lisp.Reader {
	return rdparser.NewReader()
}

// NewReaderNamed returns the lisp.Reader with the given name.  An empty name
// selects the default reader.
func NewReaderNamed(name string) (lisp.Reader, error) {
	switch name {
	case "", ReaderRD:
		return rdparser.NewReader(), nil
	case ReaderParsec:
		return regexparser.NewReader(), nil
	default:
		return nil, fmt.Errorf("unknown parser: %q", name)
	}
}

// ReadString reads exactly one form from text with the default reader.
// Content after the first complete form is not consumed.  Text containing no
// form is a syntax error.
func ReadString(text string) (*lisp.LVal, error) {
	r := rdparser.NewReader().(lisp.ExpressionReader)
	v, err := r.ReadExpression("input", strings.NewReader(text))
	if err == io.EOF {
		return nil, lisp.GoError(lisp.ErrorConditionf(lisp.CondSyntaxError, "no expression to read"))
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}
