// Copyright © 2018 The ELPS authors

// Package profiler contains lisp.Profiler implementations which annotate
// function applications for external tracing and profiling tools.
package profiler

import (
	"fmt"

	"github.com/luthersystems/mal/lisp"
	"github.com/luthersystems/mal/parser/token"
)

// profiler is a minimal lisp.Profiler
type profiler struct {
	runtime    *lisp.Runtime
	enabled    bool
	skipFilter SkipFilter
	funLabeler FunLabeler
}

var _ lisp.Profiler = &profiler{}

func (p *profiler) IsEnabled() bool {
	return p.enabled
}

type Option func(*profiler)

func (p *profiler) applyConfigs(opts ...Option) {
	for _, opt := range opts {
		opt(p)
	}
}

func (p *profiler) Enable() error {
	if p.enabled {
		return fmt.Errorf("profiler already enabled")
	}
	p.enabled = true
	return nil
}

func (p *profiler) Complete() error {
	p.enabled = false
	return nil
}

func (p *profiler) Start(fun *lisp.LVal) func() {
	return func() {}
}

// defaultFunName returns the name a function was bound to, or its FID when
// the function was never named.
func defaultFunName(fun *lisp.LVal) string {
	fd := fun.FunData()
	if fd == nil {
		return ""
	}
	if fd.Name != "" {
		return fd.Name
	}
	return fd.FID
}

// prettyFunName returns a pretty name and original name for a fun. If there is
// no pretty name, then the pretty name is the original name.
func (p *profiler) prettyFunName(fun *lisp.LVal) (string, string) {
	origLabel := defaultFunName(fun)
	if origLabel == "" {
		return "", ""
	}
	prettyLabel := origLabel
	if p.funLabeler != nil {
		prettyLabel = p.funLabeler(p.runtime, fun)
	}
	if prettyLabel == "" {
		prettyLabel = origLabel
	}
	return prettyLabel, origLabel
}

// skipTrace is a helper function to decide whether to skip tracing.
func (p *profiler) skipTrace(v *lisp.LVal) bool {
	return !p.enabled || defaultSkipFilter(v) || p.skipFilter != nil && p.skipFilter(v)
}

// getSourceLoc returns the location where fun was defined.  Builtins have no
// source location.
func getSourceLoc(fun *lisp.LVal) *token.Location {
	if fun.Source != nil {
		return fun.Source
	}
	if fun.IsClosure() && len(fun.Cells) > 0 && fun.Cells[0].Source != nil {
		return fun.Cells[0].Source
	}
	return nil
}
