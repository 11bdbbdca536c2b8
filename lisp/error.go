// Copyright © 2018 The ELPS authors

package lisp

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
)

// ErrorVal implements the error interface so that errors can be first class
// lisp objects.  The condition name is stored in the Str field and the error
// message in the Cells slice.
type ErrorVal LVal

// Error implements the error interface.  The condition name precedes the
// message and the source location, when known, precedes both.
func (e *ErrorVal) Error() string {
	if e.Source != nil {
		return fmt.Sprintf("%s: %s", e.Source, e.baseMessage())
	}
	return e.baseMessage()
}

func (e *ErrorVal) baseMessage() string {
	return fmt.Sprintf("%s: %s", e.Str, e.ErrorMessage())
}

// Condition returns the error condition name (e.g. "unbound-symbol").
func (e *ErrorVal) Condition() string {
	return e.Str
}

// FunName returns the name of the function on the top of the call stack
// when the error occurred.
func (e *ErrorVal) FunName() string {
	stack := (*LVal)(e).CallStack()
	if stack == nil {
		return ""
	}
	return stack.Top().FunName()
}

// ErrorMessage returns the underlying message in the error.
func (e *ErrorVal) ErrorMessage() string {
	if len(e.Cells) > 0 {
		switch v := e.Cells[0].Native.(type) {
		case error:
			return v.Error()
		}
	}
	return errorCellMessage(e.Cells)
}

// Unwrap returns a native Go error wrapped by the condition, if any.
func (e *ErrorVal) Unwrap() error {
	if len(e.Cells) > 0 {
		if err, ok := e.Cells[0].Native.(error); ok {
			return err
		}
	}
	return nil
}

// WriteTrace writes the error and a stack trace to w
func (e *ErrorVal) WriteTrace(w io.Writer) (int, error) {
	bw := bufio.NewWriter(w)
	var n int
	var err error
	wrote := func(_n int, _err error) bool {
		n += _n
		err = _err
		return err == nil
	}
	if !wrote(bw.WriteString(e.Error())) {
		return n, err
	}
	if !wrote(bw.WriteString("\n")) {
		return n, err
	}
	stack := (*LVal)(e).CallStack()
	if stack != nil {
		if !wrote(stack.DebugPrint(bw)) {
			return n, err
		}
	}
	return n, bw.Flush()
}

func errorCellMessage(ecells []*LVal) string {
	var buf bytes.Buffer
	for i, cell := range ecells {
		if i > 0 {
			buf.WriteString(" ")
		}
		if cell.Type == LString {
			buf.WriteString(cell.Str)
		} else {
			buf.WriteString(cell.String())
		}
	}
	return buf.String()
}
