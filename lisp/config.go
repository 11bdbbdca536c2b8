// Copyright © 2018 The ELPS authors

package lisp

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"
)

// Config is a function that configures a root environment or its runtime.
type Config func(env *LEnv) *LVal

// WithMaximumStackHeight returns a Config that will prevent an execution
// environment from allowing the call stack height to exceed n.  Application
// beyond the limit raises a CondStackExhausted error.  A value of 0 removes
// the limit, leaving runaway recursion to the Go runtime.
func WithMaximumStackHeight(n int) Config {
	return func(env *LEnv) *LVal {
		if n < 0 {
			return ErrorConditionf(CondTypeError, "negative stack height: %d", n)
		}
		env.Runtime.Stack.MaxHeight = n
		return Nil()
	}
}

// WithReader returns a Config that makes environments use r to parse source
// streams.  There is no default Reader for an environment.
func WithReader(r Reader) Config {
	return func(env *LEnv) *LVal {
		env.Runtime.Reader = r
		return Nil()
	}
}

// WithStderr returns a Config that makes environments write debugging output
// to w instead of the default, os.Stderr.
func WithStderr(w io.Writer) Config {
	return func(env *LEnv) *LVal {
		env.Runtime.Stderr = w
		return Nil()
	}
}

// WithContext returns a Config that bounds evaluation by ctx.  The context is
// checked at each function application; once it is done evaluation returns a
// CondContextCancelled error.
func WithContext(ctx context.Context) Config {
	return func(env *LEnv) *LVal {
		env.Runtime.ctx = ctx
		return Nil()
	}
}

// WithProfiler returns a Config that notifies p around every function
// application.
func WithProfiler(p Profiler) Config {
	return func(env *LEnv) *LVal {
		env.Runtime.Profiler = p
		return Nil()
	}
}

// WithLogger returns a Config that makes the runtime log events to l.
func WithLogger(l logrus.FieldLogger) Config {
	return func(env *LEnv) *LVal {
		env.Runtime.Logger = l
		return Nil()
	}
}
