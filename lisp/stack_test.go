// Copyright © 2018 The ELPS authors

package lisp_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/luthersystems/mal/lisp"
	"github.com/luthersystems/mal/maltest"
	"github.com/luthersystems/mal/parser"
	"github.com/luthersystems/mal/parser/token"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStackExhaustion(t *testing.T) {
	env, err := maltest.NewEnv(t, lisp.WithMaximumStackHeight(50))
	require.NoError(t, err)

	v := env.EvalString("((fn* (f) (f f)) (fn* (f) (f f)))")
	require.Equal(t, lisp.LError, v.Type)
	assert.True(t, lisp.IsCondition(v, lisp.CondStackExhausted), v.String())
	assert.Contains(t, v.String(), "stack height exceeded maximum: 51")
	assert.Equal(t, 50, v.CallStack().Height())
	assert.Equal(t, 0, env.Runtime.Stack.Height())

	v = env.EvalString("(+ 1 2)")
	assert.Equal(t, "3", v.String())

	env.LoadString("test", "(def! ping (fn* (n) (pong n)))")
	env.LoadString("test", "(def! pong (fn* (n) (ping n)))")
	v = env.EvalString("(ping 0)")
	assert.True(t, lisp.IsCondition(v, lisp.CondStackExhausted), v.String())
	assert.Equal(t, 0, env.Runtime.Stack.Height())

	v = env.EvalString("(ping)")
	assert.True(t, lisp.IsCondition(v, lisp.CondArityError), v.String())
}

func TestStackExhaustionThroughEval(t *testing.T) {
	env, err := maltest.NewEnv(t, lisp.WithMaximumStackHeight(50))
	require.NoError(t, err)

	env.LoadString("test", "(def! e '(eval e))")
	v := env.EvalString("(eval e)")
	require.Equal(t, lisp.LError, v.Type)
	assert.True(t, lisp.IsCondition(v, lisp.CondStackExhausted), v.String())
	assert.Contains(t, v.String(), "stack height exceeded maximum: 51")
	assert.Equal(t, "eval", v.CallStack().Top().FunName())
	assert.Equal(t, 0, env.Runtime.Stack.Height())

	assert.Equal(t, "3", env.EvalString("(eval '(+ 1 2))").String())
}

func TestStackHeightWithinLimit(t *testing.T) {
	env, err := maltest.NewEnv(t, lisp.WithMaximumStackHeight(50))
	require.NoError(t, err)
	env.LoadString("test", "(def! down (fn* (n) (if (= n 0) 0 (down (- n 1)))))")
	// down plus the comparison and subtraction builtins it calls
	assert.Equal(t, "0", env.EvalString("(down 48)").String())
	v := env.EvalString("(down 60)")
	assert.True(t, lisp.IsCondition(v, lisp.CondStackExhausted), v.String())
}

func TestStackExhaustedLogged(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	env := lisp.NewEnv(nil)
	lerr := lisp.InitializeUserEnv(env,
		lisp.WithReader(parser.NewReader()),
		lisp.WithMaximumStackHeight(10),
		lisp.WithLogger(logger),
	)
	require.Equal(t, lisp.LNil, lerr.Type)

	env.LoadString("test", "(def! boom (fn* () (boom)))")
	v := env.EvalString("(boom)")
	require.True(t, lisp.IsCondition(v, lisp.CondStackExhausted))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.DebugLevel, entry.Level)
	assert.Equal(t, "call stack exhausted", entry.Message)
	assert.Equal(t, "boom", entry.Data["function"])
	assert.Equal(t, 10, entry.Data["height"])
}

func TestCallStack(t *testing.T) {
	s := &lisp.CallStack{MaxHeight: 2}
	assert.Nil(t, s.Top())
	assert.Equal(t, 0, s.Height())

	loc := &token.Location{File: "test", Line: 1, Col: 1}
	require.NoError(t, s.PushFID(loc, "fn1", "f"))
	require.NoError(t, s.PushFID(nil, "fn2", ""))
	err := s.PushFID(nil, "fn3", "h")
	require.Error(t, err)
	assert.Equal(t, "stack height exceeded maximum: 3", err.Error())
	assert.Equal(t, 2, s.Height())

	assert.Equal(t, "fn2", s.Top().FunName())
	cp := s.Copy()
	f := s.Pop()
	assert.Equal(t, "fn2", f.FID)
	assert.Equal(t, "test:1:1: f", s.Top().String())
	assert.Equal(t, 2, cp.Height())

	s.Pop()
	assert.Panics(t, func() { s.Pop() })
}

func TestCallStackDebugPrint(t *testing.T) {
	s := &lisp.CallStack{}
	for i := 0; i < 25; i++ {
		require.NoError(t, s.PushFID(nil, "fn1", "loop"))
	}
	var buf bytes.Buffer
	_, err := s.DebugPrint(&buf)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 22)
	assert.Equal(t, "Stack Trace [25 frames -- entrypoint last]:", lines[0])
	assert.Equal(t, "  height 24: loop", lines[1])
	assert.Equal(t, "  height 5: loop", lines[20])
	assert.Equal(t, "  ... 5 frames elided", lines[21])
}
