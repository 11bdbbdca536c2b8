// Copyright © 2018 The ELPS authors

package lisp_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/luthersystems/mal/lisp"
	"github.com/luthersystems/mal/maltest"
	"github.com/luthersystems/mal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvGetPut(t *testing.T) {
	root := lisp.NewEnv(nil)
	child := lisp.NewEnv(root)
	assert.Equal(t, root, child.Root())
	assert.Equal(t, root, root.Root())
	assert.NotEqual(t, root.ID, child.ID)

	root.Put(lisp.Symbol("x"), lisp.Int(1))
	assert.Equal(t, "1", child.Get(lisp.Symbol("x")).String())

	child.Put(lisp.Symbol("x"), lisp.Int(2))
	assert.Equal(t, "2", child.Get(lisp.Symbol("x")).String())
	assert.Equal(t, "1", root.Get(lisp.Symbol("x")).String())

	v := child.Get(lisp.Symbol("y"))
	assert.True(t, lisp.IsCondition(v, lisp.CondUnboundSymbol))
	assert.Equal(t, "unbound-symbol: y", v.String())

	v = root.Get(lisp.Int(1))
	assert.True(t, lisp.IsCondition(v, lisp.CondTypeError))
	v = root.Put(lisp.String("x"), lisp.Int(1))
	assert.True(t, lisp.IsCondition(v, lisp.CondTypeError))
}

func TestEnvLambda(t *testing.T) {
	env := lisp.NewEnv(nil)
	fun := env.Lambda(lisp.Formals("a", lisp.VarArgSymbol, "b"), lisp.Symbol("b"))
	require.Equal(t, lisp.LFun, fun.Type)
	assert.True(t, fun.IsClosure())
	assert.Equal(t, env, fun.Env())
	assert.Equal(t, "#<function>", fun.String())

	v := env.Lambda(lisp.Int(1), lisp.Nil())
	assert.True(t, lisp.IsCondition(v, lisp.CondSyntaxError))
	v = env.Lambda(lisp.Formals(lisp.VarArgSymbol), lisp.Nil())
	assert.True(t, lisp.IsCondition(v, lisp.CondSyntaxError))
	v = env.Lambda(lisp.Formals(lisp.VarArgSymbol, "a", "b"), lisp.Nil())
	assert.True(t, lisp.IsCondition(v, lisp.CondSyntaxError))
}

func TestInitializeUserEnv(t *testing.T) {
	root := lisp.NewEnv(nil)
	v := lisp.InitializeUserEnv(lisp.NewEnv(root))
	assert.Equal(t, lisp.LError, v.Type)

	v = lisp.InitializeUserEnv(root, lisp.WithMaximumStackHeight(-1))
	assert.True(t, lisp.IsCondition(v, lisp.CondTypeError))
}

func TestEnvLoad(t *testing.T) {
	env := lisp.NewEnv(nil)
	lisp.InitializeUserEnv(env)
	v := env.LoadString("test", "(+ 1 2)")
	assert.Equal(t, "error: no reader for environment runtime", v.String())
	v = env.EvalString("(+ 1 2)")
	assert.Equal(t, lisp.LError, v.Type)

	env, err := maltest.NewEnv(t)
	require.NoError(t, err)
	v = env.LoadString("test", "(def! a 1) (def! b 2) (+ a b)")
	assert.Equal(t, "3", v.String())
	v = env.LoadString("test", "")
	assert.Equal(t, "nil", v.String())
	v = env.LoadString("test", "(def! c 1) (fnord) (def! d 1)")
	assert.Equal(t, "test:1:13: unbound-symbol: fnord", v.String())
	assert.Equal(t, "1", env.EvalString("c").String())
	assert.True(t, lisp.IsCondition(env.EvalString("d"), lisp.CondUnboundSymbol))
	v = env.LoadString("test", "(1 2")
	assert.Equal(t, "test:1:1: syntax-error: unmatched (", v.String())
}

func TestEnvEvalString(t *testing.T) {
	env, err := maltest.NewEnv(t)
	require.NoError(t, err)
	assert.Equal(t, "3", env.EvalString("(+ 1 2) (fnord)").String())

	v := env.EvalString("  ; only a comment")
	assert.True(t, lisp.IsCondition(v, lisp.CondSyntaxError), v.String())

	v = env.EvalString("fnord")
	assert.Equal(t, "input:1:1: unbound-symbol: fnord", v.String())
}

// A reader that does not implement lisp.ExpressionReader.
func TestEnvEvalStringReader(t *testing.T) {
	r := parser.NewReader()
	env, err := maltest.NewEnv(t, lisp.WithReader(lisp.ReaderFunc(r.Read)))
	require.NoError(t, err)
	assert.Equal(t, "3", env.EvalString("(+ 1 2) (fnord)").String())
	v := env.EvalString("")
	assert.True(t, lisp.IsCondition(v, lisp.CondSyntaxError), v.String())
}

func TestWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	env, err := maltest.NewEnv(t, lisp.WithContext(ctx))
	require.NoError(t, err)
	assert.Equal(t, "1", env.EvalString("1").String())
	v := env.EvalString("(+ 1 2)")
	assert.True(t, lisp.IsCondition(v, lisp.CondContextCancelled), v.String())
	assert.ErrorIs(t, lisp.GoError(v), context.Canceled)
	assert.Equal(t, 0, env.Runtime.Stack.Height())
}

type countingProfiler struct {
	enabled bool
	started []string
	done    int
}

func (p *countingProfiler) IsEnabled() bool { return p.enabled }
func (p *countingProfiler) Enable() error   { p.enabled = true; return nil }
func (p *countingProfiler) Complete() error { p.enabled = false; return nil }

func (p *countingProfiler) Start(fun *lisp.LVal) func() {
	p.started = append(p.started, fun.FunData().Name)
	return func() { p.done++ }
}

func TestWithProfiler(t *testing.T) {
	p := &countingProfiler{}
	env, err := maltest.NewEnv(t, lisp.WithProfiler(p))
	require.NoError(t, err)

	env.EvalString("(+ 1 2)")
	assert.Empty(t, p.started)

	require.NoError(t, p.Enable())
	env.EvalString("(+ 1 (* 2 3))")
	assert.Equal(t, []string{"*", "+"}, p.started)
	assert.Equal(t, 2, p.done)

	require.NoError(t, p.Complete())
	env.EvalString("(+ 1 2)")
	assert.Len(t, p.started, 2)
}

func TestWithStderr(t *testing.T) {
	var buf strings.Builder
	env := lisp.NewEnv(nil)
	lisp.InitializeUserEnv(env, lisp.WithStderr(&buf))
	_, err := io.WriteString(env.Runtime.Stderr, "x")
	require.NoError(t, err)
	assert.Equal(t, "x", buf.String())
}

func TestGoValue(t *testing.T) {
	env, err := maltest.NewEnv(t)
	require.NoError(t, err)
	v := env.EvalString(`(list 1 "a" 'b nil true '(2))`)
	assert.Equal(t, []interface{}{1, "a", "b", nil, true, []interface{}{2}}, lisp.GoValue(v))
	assert.True(t, lisp.True(lisp.Int(0)))
	assert.False(t, lisp.True(lisp.Nil()))
	assert.True(t, lisp.Not(lisp.Bool(false)))
}
