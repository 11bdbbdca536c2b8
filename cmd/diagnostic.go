// Copyright © 2024 The ELPS authors

package cmd

import (
	"errors"
	"io"

	"github.com/luthersystems/mal/diagnostic"
	"github.com/luthersystems/mal/lisp"
	"github.com/luthersystems/mal/repl"
	"github.com/spf13/viper"
)

func colorMode() (diagnostic.ColorMode, error) {
	return diagnostic.ParseColorMode(viper.GetString("color"))
}

func newRenderer(sources map[string]string) *diagnostic.Renderer {
	mode, err := colorMode()
	if err != nil {
		mode = diagnostic.ColorNever
	}
	return &diagnostic.Renderer{
		Color:        mode,
		SourceReader: diagnostic.MemorySource(sources),
	}
}

// renderLispError renders a lisp error with diagnostic formatting to w.
func renderLispError(w io.Writer, lerr *lisp.LVal, sources map[string]string) {
	_ = newRenderer(sources).Render(w, repl.ErrorDiagnostic(lerr))
}

// renderError renders err to w.  Errors carrying a lisp condition are shown
// with their source location.
func renderError(w io.Writer, err error, sources map[string]string) {
	lerr := &lisp.ErrorVal{}
	if errors.As(err, &lerr) {
		renderLispError(w, (*lisp.LVal)(lerr), sources)
		return
	}
	_ = newRenderer(sources).Render(w, diagnostic.Diagnostic{Message: err.Error()})
}
