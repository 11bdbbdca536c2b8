// Copyright © 2018 The ELPS authors

package profiler

import (
	"fmt"
	"regexp"

	"github.com/luthersystems/mal/lisp"
)

// FunLabeler provides an alternative name for a function label in the trace.
type FunLabeler func(runtime *lisp.Runtime, fun *lisp.LVal) string

// WithFunLabeler sets the labeler for tracing spans.
func WithFunLabeler(funLabeler FunLabeler) Option {
	return func(p *profiler) {
		p.funLabeler = funLabeler
	}
}

// WithLabels labels spans for the named functions with the given labels.
// Functions not present in labels keep their own name.
func WithLabels(labels map[string]string) Option {
	clean := make(map[string]string, len(labels))
	for name, label := range labels {
		clean[name] = sanitizeLabel(label)
	}
	return WithFunLabeler(func(_ *lisp.Runtime, fun *lisp.LVal) string {
		return clean[defaultFunName(fun)]
	})
}

// WithSourceLabeler labels closures with the location of their definition,
// e.g. "fib@fib.mal:3".
func WithSourceLabeler() Option {
	return WithFunLabeler(sourceFunLabeler)
}

func sourceFunLabeler(_ *lisp.Runtime, fun *lisp.LVal) string {
	loc := getSourceLoc(fun)
	if loc == nil {
		return ""
	}
	return fmt.Sprintf("%s@%s:%d", defaultFunName(fun), loc.File, loc.Line)
}

var (
	sanitizeRegExp   = regexp.MustCompile(`[\s_]+`)
	validLabelRegExp = regexp.MustCompile(`[[:graph:]]*`)
)

func sanitizeLabel(userLabel string) string {
	if userLabel == "" {
		return ""
	}

	// Replace spaces with underscores
	userLabel = sanitizeRegExp.ReplaceAllString(userLabel, "_")

	// Find the first valid label match
	matches := validLabelRegExp.FindStringSubmatch(userLabel)
	if len(matches) > 0 {
		return matches[0]
	}

	return ""
}
