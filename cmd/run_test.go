// Copyright © 2018 The ELPS authors

package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/luthersystems/mal/lisp"
	"github.com/luthersystems/mal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testProgram = `(def! add-it (fn* (x y) (+ x y)))
(def! recurse-it (fn* (x) (if (> x 3) (recurse-it (- x 1)) (add-it x 3))))
(add-it (add-it 3 (recurse-it 5)) 8)
`

func runRun(t *testing.T, args []string, opts ...Option) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := RunCommand(append(opts, WithOutput(&stdout, &stderr))...)
	cmd.SetArgs(args)
	cmd.SetOut(&stderr)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeProgram(t *testing.T, name, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0600))
	return path
}

func TestRunExpressions(t *testing.T) {
	out, stderr, err := runRun(t, []string{"-p", "-e", "(def! x 2)", "(* x 21)", `(str "x=" x)`})
	require.NoError(t, err, stderr)
	assert.Equal(t, "2\n42\n\"x=2\"\n", out)

	out, _, err = runRun(t, []string{"-e", "(+ 1 2)"})
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestRunFile(t *testing.T) {
	path := writeProgram(t, "prog.mal", testProgram)
	out, stderr, err := runRun(t, []string{"-p", path})
	require.NoError(t, err, stderr)
	assert.Equal(t, "#<function>\n#<function>\n17\n", out)
}

func TestRunFileMissing(t *testing.T) {
	_, _, err := runRun(t, []string{filepath.Join(t.TempDir(), "missing.mal")})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, errReported)
}

func TestRunCondition(t *testing.T) {
	path := writeProgram(t, "bad.mal", "(def! f (fn* (x) (+ x \"a\")))\n(prn 1)\n")
	out, stderr, err := runRun(t, []string{"-p", path})
	assert.ErrorIs(t, err, errReported)
	assert.Equal(t, "#<function>\n", out)
	assert.Contains(t, stderr, "error: unbound-symbol: prn\n")
	assert.Contains(t, stderr, "--> "+path+":2:2")
	assert.Contains(t, stderr, "(prn 1)")
	assert.Contains(t, stderr, "^^^")
}

func TestRunStopsAtFirstCondition(t *testing.T) {
	out, stderr, err := runRun(t, []string{"-p", "-e", "(f 1)", "(+ 1 1)"})
	assert.ErrorIs(t, err, errReported)
	assert.Equal(t, "", out)
	assert.Contains(t, stderr, "error: unbound-symbol: f")
	assert.Contains(t, stderr, "--> expr1:1:2")
}

func TestRunCallStackNotes(t *testing.T) {
	_, stderr, err := runRun(t, []string{"-e", "(def! g (fn* () (nth '(1) 3)))", "(g)"})
	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, stderr, "error: index-error: nth: index out of range: 3")
	assert.Contains(t, stderr, "= note: in nth at expr1:1:")
	assert.Contains(t, stderr, "= note: in g at expr2:1:")
}

func TestRunSyntaxError(t *testing.T) {
	out, stderr, err := runRun(t, []string{"-p", "-e", "(+ 1 2"})
	assert.ErrorIs(t, err, errReported)
	assert.Equal(t, "", out)
	assert.Contains(t, stderr, "syntax-error")
}

func TestRunStackExhausted(t *testing.T) {
	_, stderr, err := runRun(t, []string{"-e", "((fn* (a) (a a)) (fn* (a) (a a)))"})
	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, stderr, "error: stack-exhausted: stack height exceeded maximum: 10001")
}

func TestRunWithEnv(t *testing.T) {
	env := lisp.NewEnv(nil)
	rc := lisp.InitializeUserEnv(env, lisp.WithReader(parser.NewReader()))
	require.False(t, rc.Type == lisp.LError, rc.String())
	env.Put(lisp.Symbol("answer"), lisp.Int(42))

	out, _, err := runRun(t, []string{"-p", "-e", "answer"}, WithEnv(env))
	require.NoError(t, err)
	assert.Equal(t, "42\n", out)
}

func TestRunCallgrind(t *testing.T) {
	path := writeProgram(t, "prog.mal", testProgram)
	profile := filepath.Join(t.TempDir(), "prog.callgrind")
	_, stderr, err := runRun(t, []string{"--callgrind", profile, "--profile-closures-only", path})
	require.NoError(t, err, stderr)

	b, err := os.ReadFile(profile)
	require.NoError(t, err)
	assert.Contains(t, string(b), "fn=(2) add-it\n")
	assert.Contains(t, string(b), "fn=(3) recurse-it\n")
	assert.NotContains(t, string(b), "fn=(4) +\n")
	assert.Contains(t, string(b), "\nsummary ")
}

func TestRunCPUProfile(t *testing.T) {
	path := writeProgram(t, "prog.mal", testProgram)
	profile := filepath.Join(t.TempDir(), "cpu.pprof")
	out, stderr, err := runRun(t, []string{"--cpuprofile", profile, "-p", path})
	require.NoError(t, err, stderr)
	assert.Contains(t, out, "17\n")

	info, err := os.Stat(profile)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())
}

func TestRunTraceOpenTelemetry(t *testing.T) {
	path := writeProgram(t, "prog.mal", testProgram)
	_, stderr, err := runRun(t, []string{"--trace", "otel", "--profile-filter", "^add-", path})
	require.NoError(t, err, stderr)
	assert.Contains(t, stderr, "msg=span")
	assert.Contains(t, stderr, "span=add-it")
	assert.Contains(t, stderr, "profiler=otel")
	assert.NotContains(t, stderr, "span=recurse-it")
}

func TestRunTraceOpenCensus(t *testing.T) {
	path := writeProgram(t, "prog.mal", testProgram)
	_, stderr, err := runRun(t, []string{"--trace", "opencensus", "--profile-closures-only", path})
	require.NoError(t, err, stderr)
	assert.Contains(t, stderr, "span=recurse-it")
	assert.Contains(t, stderr, "profiler=opencensus")
	assert.Contains(t, stderr, "parent_id=")
}

func TestRunProfileFlagErrors(t *testing.T) {
	_, _, err := runRun(t, []string{"--trace", "zipkin", "-e", "1"})
	assert.EqualError(t, err, `unknown trace format: "zipkin"`)

	_, _, err = runRun(t, []string{"--callgrind", "a", "--cpuprofile", "b", "-e", "1"})
	assert.Error(t, err)

	_, _, err = runRun(t, []string{"--trace", "otel", "--profile-filter", "(", "-e", "1"})
	assert.ErrorContains(t, err, "invalid profile filter")
}
