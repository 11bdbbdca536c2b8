// Copyright © 2018 The ELPS authors

package profiler

import (
	"regexp"

	"github.com/luthersystems/mal/lisp"
)

// SkipFilter returns true for functions which should not be traced.
type SkipFilter func(fun *lisp.LVal) bool

func defaultSkipFilter(fun *lisp.LVal) bool {
	return fun.Type != lisp.LFun
}

// WithSkipFilter sets the filter for tracing spans.
func WithSkipFilter(skipFilter SkipFilter) Option {
	return func(p *profiler) {
		p.skipFilter = skipFilter
	}
}

// WithBuiltinFilter skips builtin functions so that only closures defined in
// lisp are traced.
func WithBuiltinFilter() Option {
	return WithSkipFilter(builtinSkipFilter)
}

func builtinSkipFilter(fun *lisp.LVal) bool {
	return !fun.IsClosure()
}

// WithNameFilter traces only functions whose name matches pattern.
// Anonymous functions never match.
func WithNameFilter(pattern *regexp.Regexp) Option {
	return WithSkipFilter(func(fun *lisp.LVal) bool {
		fd := fun.FunData()
		if fd == nil || fd.Name == "" {
			return true
		}
		return !pattern.MatchString(fd.Name)
	})
}
