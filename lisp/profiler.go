// Copyright © 2018 The ELPS authors

package lisp

// Version of the interpreter reported by the command line.
const Version = "0.3"

// Profiler observes function applications.
type Profiler interface {
	// Is the profiler enabled?
	IsEnabled() bool
	// Enable the profiler
	Enable() error
	// End the profiling session
	Complete() error
	// Start marks the application of fun and returns a function that marks
	// its return.
	Start(fun *LVal) func()
}
