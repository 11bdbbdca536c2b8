// Copyright © 2018 The ELPS authors

package maltest

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/luthersystems/mal/lisp"
	"github.com/luthersystems/mal/parser"
	"github.com/sirupsen/logrus"
)

// MaxStackHeight is the stack limit used by test environments.
const MaxStackHeight = 1000

func BenchmarkParse(path string, r func() lisp.Reader) func(*testing.B) {
	return func(b *testing.B) {
		buf, err := os.ReadFile(path) //#nosec G304
		if err != nil {
			b.Fatalf("Unable to read source file %v: %v", path, err)
		}
		b.SetBytes(int64(len(buf)))
		for i := 0; i < b.N; i++ {
			_, err := r().Read("test", bytes.NewReader(buf))
			if err != nil {
				b.Fatalf("Parse failure: %v", err)
			}
		}
	}
}

// NewEnv returns an initialized root environment whose Stderr and logger
// write to the test log.
func NewEnv(t testing.TB, config ...lisp.Config) (*lisp.LEnv, error) {
	logger := NewLogger(t)
	log := logrus.New()
	log.SetOutput(logger)
	log.SetLevel(logrus.DebugLevel)
	env := lisp.NewEnv(nil)
	config = append([]lisp.Config{
		lisp.WithMaximumStackHeight(MaxStackHeight),
		lisp.WithReader(parser.NewReader()),
		lisp.WithStderr(logger),
		lisp.WithLogger(log),
	}, config...)
	err := lisp.GoError(lisp.InitializeUserEnv(env, config...))
	if err != nil {
		return nil, err
	}
	return env, nil
}

// RunFile loads the source file at path into a fresh environment and reports
// any condition raised as a test failure.
func RunFile(t *testing.T, path string) *lisp.LVal {
	source, err := os.ReadFile(path) //#nosec G304
	if err != nil {
		t.Errorf("Unable to read test file: %v", err)
		return nil
	}
	env, err := NewEnv(t)
	if err != nil {
		t.Errorf("failed to initialize lisp environment: %v", err)
		return nil
	}
	defer env.Runtime.Stderr.(*Logger).Flush()
	v := env.Load(filepath.Base(path), bytes.NewReader(source))
	if v.Type == lisp.LError {
		LispError(t, lisp.GoError(v))
	}
	return v
}

// LispError reports err as a test failure, including the lisp call stack
// when err is a lisp condition.
func LispError(t testing.TB, err error) {
	lerr, ok := err.(*lisp.ErrorVal)
	if !ok {
		t.Error(err)
		return
	}
	var buf bytes.Buffer
	_, ioerr := lerr.WriteTrace(&buf)
	if ioerr != nil {
		t.Errorf("io error: %v", ioerr)
		t.Error(err)
		return
	}
	t.Error(buf.String())
}

// TestSequence is a sequence of lisp expressions which are evaluated sequentially
// by a lisp.LEnv.
type TestSequence []struct {
	Expr   string // a lisp expression
	Result string // the evaluated result
	Output string // debug output written to Runtime.Stderr
}

// TestSuite is a set of named TestSequences
type TestSuite []struct {
	Name string
	TestSequence
}

// RunTestSuite runs each TestSequence in tests on isolated lisp.LEnvs.
func RunTestSuite(t *testing.T, tests TestSuite) {
	for i, test := range tests {
		env := lisp.NewEnv(nil)
		var exprBuf bytes.Buffer
		err := lisp.GoError(lisp.InitializeUserEnv(env,
			lisp.WithMaximumStackHeight(MaxStackHeight),
			lisp.WithReader(parser.NewReader()),
			lisp.WithStderr(io.MultiWriter(NewLogger(t), &exprBuf)),
		))
		if err != nil {
			t.Errorf("test %d %q: %v", i, test.Name, err)
			continue
		}
		for j, expr := range test.TestSequence {
			exprBuf.Reset()
			v, err := env.Runtime.Reader.Read("test", strings.NewReader(expr.Expr))
			if err != nil {
				t.Errorf("test %d %q: expr %d: parse error: %v", i, test.Name, j, err)
				continue
			}
			if len(v) == 0 {
				t.Errorf("test %d %q: expr %d: no expression parsed", i, test.Name, j)
				continue
			}
			if len(v) != 1 {
				t.Errorf("test %d %q: expr %d: more than one expression parsed (%d)", i, test.Name, j, len(v))
				continue
			}
			result := env.Eval(v[0]).String()
			if result != expr.Result {
				t.Errorf("test %d %q: expr %d: expected result %s (got %s)", i, test.Name, j, expr.Result, result)
			}
			if exprBuf.String() != expr.Output {
				t.Errorf("test %d %q: expr %d: expected debug output %q (got %q)", i, test.Name, j, expr.Output, exprBuf.String())
			}
		}
	}
}

// RunBenchmark runs a standard benchmark that executes expressions parsed from
// source.
func RunBenchmark(b *testing.B, source string) {
	b.StopTimer()
	p := parser.NewReader()
	exprs, err := p.Read("benchmark", strings.NewReader(source))
	if err != nil {
		b.Fatalf("parse error: %v", err)
	}
	for i := 0; i < b.N; i++ {
		env := lisp.NewEnv(nil)
		err := lisp.GoError(lisp.InitializeUserEnv(env,
			lisp.WithReader(p),
			lisp.WithStderr(io.Discard),
		))
		if err != nil {
			b.Fatal(err)
		}
		b.StartTimer()
		for i, expr := range exprs {
			lerr := env.Eval(expr)
			if lerr.Type == lisp.LError {
				b.Fatalf("expr %d: %v", i, lerr)
			}
		}
		b.StopTimer()
	}
}
