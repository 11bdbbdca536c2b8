// Copyright © 2024 The ELPS authors

package repl

import (
	"github.com/luthersystems/mal/diagnostic"
	"github.com/luthersystems/mal/lisp"
)

// ErrorDiagnostic converts an LError value to a Diagnostic for display.  The
// error location becomes the diagnostic span and each named call stack frame
// becomes a note, innermost first.
func ErrorDiagnostic(lerr *lisp.LVal) diagnostic.Diagnostic {
	ev := (*lisp.ErrorVal)(lerr)
	d := diagnostic.Diagnostic{
		Severity: diagnostic.SeverityError,
		Message:  ev.Condition() + ": " + ev.ErrorMessage(),
	}

	if lerr.Source != nil && lerr.Source.Pos >= 0 && lerr.Source.Line > 0 {
		span := diagnostic.Span{
			File: lerr.Source.File,
			Line: lerr.Source.Line,
			Col:  lerr.Source.Col,
		}
		if lerr.Source.Path != "" {
			span.File = lerr.Source.Path
		}
		d.Spans = append(d.Spans, span)
	}

	stack := lerr.CallStack()
	if stack != nil {
		for i := len(stack.Frames) - 1; i >= 0; i-- {
			frame := &stack.Frames[i]
			name := frame.FunName()
			if name == "" {
				continue
			}
			loc := "unknown"
			if frame.Source != nil {
				loc = frame.Source.String()
			}
			d.Notes = append(d.Notes, "in "+name+" at "+loc)
		}
	}

	return d
}
