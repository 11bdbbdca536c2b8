// Copyright © 2018 The ELPS authors

package repl

import (
	"testing"

	"github.com/luthersystems/mal/lisp"
	"github.com/luthersystems/mal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymbolCompleter(t *testing.T) {
	env := lisp.NewEnv(nil)
	rc := lisp.InitializeUserEnv(env,
		lisp.WithReader(parser.NewReader()),
	)
	require.False(t, rc.Type == lisp.LError, rc.String())

	c := &symbolCompleter{env: env}

	// "de" matches the def! special form and the deref builtin.
	candidates, offset := c.Do([]rune("(de"), 3)
	assert.Equal(t, 2, offset)
	assert.Equal(t, [][]rune{[]rune("f!"), []rune("ref")}, candidates)

	// quote and deref prefixes delimit the word
	candidates, offset = c.Do([]rune("@at"), 3)
	assert.Equal(t, 2, offset)
	assert.Contains(t, candidates, []rune("om"))

	// user definitions complete from child frames too
	env.Put(lisp.Symbol("my-value"), lisp.Int(1))
	child := lisp.NewEnv(env)
	child.Put(lisp.Symbol("my-local"), lisp.Int(2))
	c = &symbolCompleter{env: child}
	candidates, offset = c.Do([]rune("(+ my-"), 6)
	assert.Equal(t, 3, offset)
	assert.Equal(t, [][]rune{[]rune("local"), []rune("value")}, candidates)

	// "zzz-nonexistent" should have no completions.
	candidates, _ = c.Do([]rune("(zzz-nonexistent"), 16)
	assert.Empty(t, candidates)

	candidates, offset = c.Do([]rune("( "), 2)
	assert.Empty(t, candidates)
	assert.Equal(t, 0, offset)
}
