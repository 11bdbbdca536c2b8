// Copyright © 2018 The ELPS authors

package regexparser

import (
	"io"
	"strings"
	"testing"

	"github.com/luthersystems/mal/lisp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLVal(t *testing.T) {
	tests := []struct {
		source string
		output []string
	}{
		{``, nil},
		{`  ; just a comment`, nil},
		{`12`, []string{`12`}},
		{`-7 -`, []string{`-7`, `-`}},
		{`abc def!`, []string{`abc`, `def!`}},
		{`nil true false`, []string{`nil`, `true`, `false`}},
		{`"a\"b\n"`, []string{`"a\"b\n"`}},
		{`(1, 2, 3)`, []string{`(1 2 3)`}},
		{`'x @a`, []string{`(quote x)`, `(deref a)`}},
		{`'(1 (2 "x") ; trailing
			3)`, []string{`(quote (1 (2 "x") 3))`}},
		{"#!/usr/bin/env mal\n(+ 1 2)\n", []string{`(+ 1 2)`}},
	}
	for i, test := range tests {
		vals, err := ParseLVal("test", []byte(test.source))
		if !assert.NoError(t, err, "test %d", i) {
			continue
		}
		var out []string
		for _, v := range vals {
			assert.NotNil(t, v.Source, "test %d", i)
			out = append(out, v.String())
		}
		assert.Equal(t, test.output, out, "test %d", i)
	}
}

func TestParseLValLocation(t *testing.T) {
	vals, err := ParseLVal("test", []byte("(a\n  (bc))"))
	require.NoError(t, err)
	require.Len(t, vals, 1)
	assert.Equal(t, "test:1:1", vals[0].Source.String())
	assert.Equal(t, "test:1:2", vals[0].Cells[0].Source.String())
	assert.Equal(t, "test:2:3", vals[0].Cells[1].Source.String())
	assert.Equal(t, "test:2:4", vals[0].Cells[1].Cells[0].Source.String())
}

func TestParseLValErrors(t *testing.T) {
	tests := []struct {
		source string
		errmsg string
	}{
		{`(1 2 3`, `test:1:1: syntax-error: unmatched (`},
		{`(1 "ab\q")`, `test:1:4: syntax-error: invalid string literal "ab\q": invalid syntax`},
		{`(+ 12ab)`, `test:1:4: syntax-error: invalid number "12ab"`},
		{`99999999999999999999`, `test:1:1: syntax-error: integer literal overflows int: 99999999999999999999`},
		{"(1)\n)", `test:2:1: syntax-error: unexpected text starting with ")"`},
	}
	for i, test := range tests {
		_, err := ParseLVal("test", []byte(test.source))
		if !assert.Error(t, err, "test %d", i) {
			continue
		}
		assert.Equal(t, test.errmsg, err.Error(), "test %d", i)
		lerr, ok := err.(*lisp.ErrorVal)
		if assert.True(t, ok, "test %d", i) {
			assert.Equal(t, lisp.CondSyntaxError, lerr.Condition())
		}
	}
}

func TestReadExpression(t *testing.T) {
	r := NewReader().(lisp.ExpressionReader)
	v, err := r.ReadExpression("test", strings.NewReader("(+ 1 2) (unused"))
	require.NoError(t, err)
	assert.Equal(t, `(+ 1 2)`, v.String())

	_, err = r.ReadExpression("test", strings.NewReader(" ; nothing\n"))
	assert.Equal(t, io.EOF, err)
}
