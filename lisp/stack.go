// Copyright © 2018 The ELPS authors

package lisp

import (
	"fmt"
	"io"

	"github.com/luthersystems/mal/parser/token"
)

// DefaultMaxStackHeight is the stack height used by StandardRuntime.  Each
// frame costs several Go frames of recursive evaluation, so the limit keeps
// runaway recursion well inside the goroutine stack.
const DefaultMaxStackHeight = 10000

// CallStack is a function call stack.  Every function application pushes a
// frame, there is no tail call elimination.
type CallStack struct {
	Frames    []CallFrame
	MaxHeight int
}

// CallFrame is one frame in the CallStack
type CallFrame struct {
	Source *token.Location
	FID    string
	Name   string
}

// FunName returns the name of the function called in f, falling back to its
// FID for anonymous functions.
func (f *CallFrame) FunName() string {
	if f == nil {
		return ""
	}
	if f.Name != "" {
		return f.Name
	}
	return f.FID
}

func (f *CallFrame) String() string {
	if f.Source != nil {
		return fmt.Sprintf("%s: %s", f.Source, f.FunName())
	}
	return f.FunName()
}

// Copy creates a copy of the current stack so that it can be attach to a
// runtime error.
func (s *CallStack) Copy() *CallStack {
	frames := make([]CallFrame, len(s.Frames))
	copy(frames, s.Frames)
	return &CallStack{
		MaxHeight: s.MaxHeight,
		Frames:    frames,
	}
}

// Top returns the CallFrame at the top of the stack or nil if none exists.
func (s *CallStack) Top() *CallFrame {
	if s == nil || len(s.Frames) == 0 {
		return nil
	}
	return &s.Frames[len(s.Frames)-1]
}

// Height returns the number of frames in s.
func (s *CallStack) Height() int {
	return len(s.Frames)
}

// PushFID pushes a new stack frame with the given FID onto s.  If the push
// would exceed s.MaxHeight a *StackOverflowError is returned and the stack is
// left unchanged.
func (s *CallStack) PushFID(src *token.Location, fid string, name string) error {
	if s.MaxHeight > 0 && s.MaxHeight <= len(s.Frames) {
		return &StackOverflowError{Height: len(s.Frames) + 1}
	}
	s.Frames = append(s.Frames, CallFrame{
		Source: src,
		FID:    fid,
		Name:   name,
	})
	return nil
}

// Pop removes the top CallFrame from the stack and returns it.
func (s *CallStack) Pop() CallFrame {
	if len(s.Frames) < 1 {
		panic("pop called on an empty stack")
	}
	f := s.Frames[len(s.Frames)-1]
	s.Frames[len(s.Frames)-1] = CallFrame{}
	s.Frames = s.Frames[:len(s.Frames)-1]
	return f
}

// DebugPrint prints s
func (s *CallStack) DebugPrint(w io.Writer) (int, error) {
	n, err := fmt.Fprintf(w, "Stack Trace [%d frames -- entrypoint last]:\n", len(s.Frames))
	if err != nil {
		return n, err
	}
	frames := s.Frames
	elided := 0
	if len(frames) > maxDebugFrames {
		// the interesting frames are at the top of a runaway recursion
		elided = len(frames) - maxDebugFrames
		frames = frames[elided:]
	}
	indent := "  "
	for i := len(frames) - 1; i >= 0; i-- {
		_n, err := fmt.Fprintf(w, "%sheight %d: %s\n", indent, i+elided, frames[i].String())
		n += _n
		if err != nil {
			return n, err
		}
	}
	if elided > 0 {
		_n, err := fmt.Fprintf(w, "%s... %d frames elided\n", indent, elided)
		n += _n
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

const maxDebugFrames = 20

// StackOverflowError is returned by CallStack.PushFID when the stack is full.
type StackOverflowError struct {
	Height int
}

func (e *StackOverflowError) Error() string {
	return fmt.Sprintf("stack height exceeded maximum: %v", e.Height)
}
