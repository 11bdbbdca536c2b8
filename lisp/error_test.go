// Copyright © 2018 The ELPS authors

package lisp_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/luthersystems/mal/lisp"
	"github.com/luthersystems/mal/maltest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrors(t *testing.T) {
	tests := maltest.TestSuite{
		{"unbound", maltest.TestSequence{
			{"fnord", "test:1:1: unbound-symbol: fnord", ""},
			{"(fnord 1)", "test:1:2: unbound-symbol: fnord", ""},
			{"(+ 1 (fnord))", "test:1:7: unbound-symbol: fnord", ""},
			{"(do (fnord))", "test:1:6: unbound-symbol: fnord", ""},
		}},
		{"not callable", maltest.TestSequence{
			{"(1 2)", "test:1:1: not-callable: not a function: 1", ""},
			{`("f")`, `test:1:1: not-callable: not a function: "f"`, ""},
		}},
		{"arity", maltest.TestSequence{
			{"((fn* (a) a))", "test:1:1: arity-error: function expects 1 arguments (got 0)", ""},
			{"(def! sq (fn* (x) (* x x)))", "#<function>", ""},
			{"(sq 1 2)", "test:1:1: arity-error: sq expects 1 arguments (got 2)", ""},
			{"((fn* (a & b) a))", "test:1:1: arity-error: function expects at least 1 arguments (got 0)", ""},
			{"(= 1)", "test:1:1: arity-error: = expects 2 arguments (got 1)", ""},
			{"(apply = '(1))", "test:1:1: arity-error: = expects 2 arguments (got 1)", ""},
		}},
		{"type", maltest.TestSequence{
			{`(+ 1 "a")`, "test:1:1: type-error: +: argument is not a int: string", ""},
			{"(deref 1)", "test:1:1: type-error: deref: argument is not a atom: int", ""},
			{"(first 1)", "test:1:1: type-error: first: argument is not a list: int", ""},
		}},
		{"division", maltest.TestSequence{
			{"(/ 1 0)", "test:1:1: division-by-zero: division by zero", ""},
			{"(/ 4 2 0)", "test:1:1: division-by-zero: division by zero", ""},
		}},
		{"index", maltest.TestSequence{
			{"(nth '(1 2) 5)", "test:1:1: index-error: nth: index out of range: 5", ""},
			{"(nth '(1 2) -1)", "test:1:1: index-error: nth: index out of range: -1", ""},
			{"(nth '(1 2) 1)", "2", ""},
		}},
		{"malformed forms", maltest.TestSequence{
			{"(if 1 2 3 4)", "test:1:1: syntax-error: if expects at most three arguments (got 4)", ""},
			{"(let* (a) a)", "test:1:1: syntax-error: let* bindings have an odd number of forms: 1", ""},
			{"(let* (1 2) 1)", "test:1:1: syntax-error: let* binding is not a symbol: 1", ""},
			{"(cond true)", "test:1:1: syntax-error: cond has a test without an expression: true", ""},
			{"(fn* (1) 1)", "test:1:1: syntax-error: parameter is not a symbol: 1", ""},
			{"(fn* (a &) 1)", "test:1:1: syntax-error: & must precede exactly one parameter", ""},
			{"(def! 1 2)", "test:1:1: syntax-error: def! first argument is not a symbol: int", ""},
			{"(quote)", "test:1:1: syntax-error: quote expects one argument (got 0)", ""},
		}},
		{"recovery", maltest.TestSequence{
			{"(fnord)", "test:1:2: unbound-symbol: fnord", ""},
			{"(+ 1 2)", "3", ""},
		}},
	}
	maltest.RunTestSuite(t, tests)
}

func TestErrorVal(t *testing.T) {
	env, err := maltest.NewEnv(t)
	require.NoError(t, err)
	env.LoadString("test", "(def! inner (fn* (x) (+ x \"a\")))")
	env.LoadString("test", "(def! outer (fn* () (inner 1)))")
	v := env.EvalString("(outer)")
	require.Equal(t, lisp.LError, v.Type)
	assert.True(t, lisp.IsCondition(v, lisp.CondTypeError))
	assert.False(t, lisp.IsCondition(v, lisp.CondArityError))
	assert.False(t, lisp.IsCondition(lisp.Int(1), lisp.CondTypeError))

	lerr, ok := lisp.GoError(v).(*lisp.ErrorVal)
	require.True(t, ok)
	assert.Equal(t, lisp.CondTypeError, lerr.Condition())
	assert.Equal(t, "+", lerr.FunName())
	assert.Equal(t, "+: argument is not a int: string", lerr.ErrorMessage())

	stack := v.CallStack()
	require.NotNil(t, stack)
	assert.Equal(t, 3, stack.Height())
	assert.Equal(t, 0, env.Runtime.Stack.Height())

	var buf bytes.Buffer
	_, err = lerr.WriteTrace(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "type-error: +: argument is not a int: string\n")
	assert.Contains(t, buf.String(), "Stack Trace [3 frames -- entrypoint last]:")
	assert.Contains(t, buf.String(), "height 2: test:1:22: +")
	assert.Contains(t, buf.String(), "height 1: test:1:21: inner")
	assert.Contains(t, buf.String(), "height 0: input:1:1: outer")
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	v := lisp.ErrorCondition("custom", cause)
	err := lisp.GoError(v)
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "custom: boom", err.Error())
	assert.Nil(t, lisp.GoError(lisp.Nil()))

	v = lisp.ErrorConditionf(lisp.CondSyntaxError, "bad %s", "thing")
	assert.Nil(t, errors.Unwrap(lisp.GoError(v)))
	assert.Equal(t, "syntax-error: bad thing", v.String())
}
