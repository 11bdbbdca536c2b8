// Copyright © 2018 The ELPS authors

package lisp

import (
	"context"
	"io"
	"os"
	"strconv"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Runtime is an object underlying a family of tree of LEnv values.  It is
// responsible for holding shared environment state, generating identifiers,
// and writing debugging output to a stream (typically os.Stderr).
type Runtime struct {
	Stderr   io.Writer
	Stack    *CallStack
	Reader   Reader
	Profiler Profiler
	Logger   logrus.FieldLogger
	ctx      context.Context
	numenv   atomicCounter
	numfun   atomicCounter
}

// StandardRuntime returns a new Runtime with Stderr set to os.Stderr, a call
// stack limited to DefaultMaxStackHeight frames, and a logger that discards
// its output.
func StandardRuntime() *Runtime {
	return &Runtime{
		Stderr: os.Stderr,
		Stack:  &CallStack{MaxHeight: DefaultMaxStackHeight},
		Logger: discardLogger(),
	}
}

// Context returns the context that bounds evaluation.  It is never nil.
func (r *Runtime) Context() context.Context {
	if r.ctx == nil {
		return context.Background()
	}
	return r.ctx
}

// GenEnvID returns a fresh identifier for an environment frame.
func (r *Runtime) GenEnvID() uint {
	return r.numenv.Add(1)
}

// GenFID returns a fresh identifier for an anonymous function.
func (r *Runtime) GenFID() string {
	return "fn" + strconv.FormatUint(uint64(r.numfun.Add(1)), 10)
}

func (r *Runtime) logger() logrus.FieldLogger {
	if r.Logger == nil {
		r.Logger = discardLogger()
	}
	return r.Logger
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type atomicCounter uint64

func (c *atomicCounter) Add(n uint) uint {
	return uint(atomic.AddUint64((*uint64)(c), uint64(n)))
}
