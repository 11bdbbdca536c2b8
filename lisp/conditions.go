// Copyright © 2024 The ELPS authors

package lisp

// Condition names carried in the Str field of LError values.  These are
// stable API for programmatic error classification.
const (
	// CondSyntaxError is raised by readers for malformed source text and by
	// special forms given malformed arguments.
	CondSyntaxError = "syntax-error"
	// CondUnboundSymbol is raised when a symbol is not bound in any frame.
	CondUnboundSymbol = "unbound-symbol"
	// CondArityError is raised when a function receives the wrong number of
	// arguments.
	CondArityError = "arity-error"
	// CondNotCallable is raised when the head of an application is not a
	// function.
	CondNotCallable = "not-callable"
	// CondTypeError is raised when a builtin receives an argument of the
	// wrong type.
	CondTypeError = "type-error"
	// CondStackExhausted is raised when function application exceeds the
	// maximum call stack height.
	CondStackExhausted = "stack-exhausted"
	// CondIndexError is raised when a sequence index is out of range.
	CondIndexError = "index-error"
	// CondDivisionByZero is raised by integer division by zero.
	CondDivisionByZero = "division-by-zero"
	// CondContextCancelled is raised when the evaluation context is done.
	CondContextCancelled = "context-cancelled"
)

// IsCondition returns true if v is an error with the given condition name.
func IsCondition(v *LVal, condition string) bool {
	return v.Type == LError && v.Str == condition
}
