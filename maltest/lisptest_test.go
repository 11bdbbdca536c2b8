// Copyright © 2018 The ELPS authors

package maltest

import (
	"testing"

	"github.com/luthersystems/mal/lisp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunTestSuite(t *testing.T) {
	RunTestSuite(t, TestSuite{
		{"arithmetic", TestSequence{
			{"(+ 1 2)", "3", ""},
			{"(def! x 4)", "4", ""},
			{"(* x x)", "16", ""},
		}},
		{"isolated", TestSequence{
			{"x", "test:1:1: unbound-symbol: x", ""},
		}},
	})
}

func TestNewEnv(t *testing.T) {
	env, err := NewEnv(t)
	require.NoError(t, err)
	assert.Equal(t, MaxStackHeight, env.Runtime.Stack.MaxHeight)
	v := env.LoadString("test", "(def! sq (fn* (x) (* x x))) (sq 5)")
	assert.Equal(t, "25", v.String())
}

func TestRunFile(t *testing.T) {
	v := RunFile(t, "testdata/closures.mal")
	require.NotNil(t, v)
	assert.Equal(t, lisp.LNil, v.Type)
}

func TestLogger(t *testing.T) {
	log := NewLogger(t)
	n, err := log.Write([]byte("one\ntwo\nthr"))
	assert.NoError(t, err)
	assert.Equal(t, 11, n)
	assert.Equal(t, "thr", string(log.buf))
	log.Flush()
	assert.Empty(t, log.buf)
}
