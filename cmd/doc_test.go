// Copyright © 2024 The ELPS authors

package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/luthersystems/mal/docs"
	"github.com/luthersystems/mal/lisp"
	"github.com/luthersystems/mal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runDoc(t *testing.T, args []string, opts ...Option) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := DocCommand(append(opts, WithOutput(&stdout, &stderr))...)
	cmd.SetArgs(args)
	cmd.SetOut(&stderr)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestDocCommand_DefaultFlags(t *testing.T) {
	cmd := DocCommand()
	assert.Equal(t, "doc [flags] [NAME]", cmd.Use)

	for _, name := range []string{"source-file", "short", "guide"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag: %s", name)
	}
}

func TestDocCommand_SpecialForm(t *testing.T) {
	out, _, err := runDoc(t, []string{"let*"})
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.True(t, len(lines) > 2, out)
	assert.Equal(t, "special form (let* bindings expr)", lines[0])
	for _, line := range lines[1:] {
		assert.True(t, strings.HasPrefix(line, "  "), "doc line is not indented: %q", line)
		assert.LessOrEqual(t, len(line), docWidth+2, "doc line is not wrapped: %q", line)
	}
	assert.Contains(t, out, "Each expression can")
}

func TestDocCommand_Builtin(t *testing.T) {
	out, _, err := runDoc(t, []string{"swap!"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "builtin (swap! a fun & args)\n"), out)
}

func TestDocCommand_Unbound(t *testing.T) {
	_, _, err := runDoc(t, []string{"fnord"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unbound-symbol: fnord")
}

func TestDocCommand_Index(t *testing.T) {
	out, _, err := runDoc(t, []string{"-s"})
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	assert.Len(t, lines, len(lisp.SpecialForms())+len(lisp.DefaultBuiltins()))
	assert.Equal(t, "(cond & clauses)", lines[0])
	assert.Contains(t, lines, "(+ & x)")

	out, _, err = runDoc(t, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "special form (quote expr)\n  Returns expr without evaluating it.")
	assert.Contains(t, out, "\n\nbuiltin (nth lis n)\n")
}

func TestDocCommand_SourceFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lib.mal")
	src := "(def! answer 42)\n(def! add (fn* (a b) (+ a b)))\n"
	require.NoError(t, os.WriteFile(path, []byte(src), 0600))

	out, _, err := runDoc(t, []string{"-f", path, "add"})
	require.NoError(t, err)
	assert.Equal(t, "function (add a b)\n", out)

	out, _, err = runDoc(t, []string{"-f", path, "-s"})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "(add a b)\nanswer = 42\n"), out)
}

func TestDocCommand_SourceFileError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.mal")
	require.NoError(t, os.WriteFile(path, []byte("(def! x (fnord))\n"), 0600))

	_, stderr, err := runDoc(t, []string{"-f", path, "x"})
	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, stderr, "error: unbound-symbol: fnord")
	assert.Contains(t, stderr, "(def! x (fnord))")
}

func TestDocCommand_WithEnv(t *testing.T) {
	env := lisp.NewEnv(nil)
	rc := lisp.InitializeUserEnv(env, lisp.WithReader(parser.NewReader()))
	require.False(t, rc.Type == lisp.LError, rc.String())
	rc = env.EvalString("(def! greeting \"hello\")")
	require.False(t, rc.Type == lisp.LError, rc.String())

	var cfg cmdConfig
	WithEnv(env)(&cfg)
	assert.Same(t, env, cfg.env, "WithEnv should store the env in cmdConfig")

	out, _, err := runDoc(t, []string{"greeting"}, WithEnv(env))
	require.NoError(t, err)
	assert.Equal(t, "value greeting = \"hello\"\n", out)
}

func TestDocCommand_Guide(t *testing.T) {
	out, _, err := runDoc(t, []string{"--guide"})
	require.NoError(t, err)
	assert.Equal(t, docs.LangGuide, out)
	assert.True(t, strings.HasPrefix(out, "# mal language guide\n"))
	for _, op := range lisp.SpecialForms() {
		assert.Contains(t, out, "("+op.Name()+" ", "guide does not describe %s", op.Name())
	}
}

func TestCleanDocstring(t *testing.T) {
	assert.Equal(t, "", cleanDocstring("\n\t\t"))
	assert.Equal(t, "  Returns x.", cleanDocstring("\n\t\tReturns\n\t\tx."))
}
