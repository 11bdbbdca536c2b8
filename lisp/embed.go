// Copyright © 2018 The ELPS authors

package lisp

// True interprets v as a boolean and returns the result.  Only nil and false
// are false; every other value, including 0 and the empty list, is true.
func True(v *LVal) bool {
	switch v.Type {
	case LNil:
		return false
	case LBool:
		return v.Int != 0
	default:
		return true
	}
}

// Not interprets v as a boolean value and returns its negation.
func Not(v *LVal) bool {
	return !True(v)
}

// GoValue converts v to its natural representation in Go.  Lists are turned
// into slices and symbols into strings.  The value Nil() is converted to nil.
// Functions and atoms are returned as is.
func GoValue(v *LVal) interface{} {
	switch v.Type {
	case LNil:
		return nil
	case LError:
		return (error)((*ErrorVal)(v))
	case LBool:
		return v.Int != 0
	case LSymbol, LString:
		return v.Str
	case LInt:
		return v.Int
	case LSExpr:
		s := make([]interface{}, len(v.Cells))
		for i := range v.Cells {
			s[i] = GoValue(v.Cells[i])
		}
		return s
	case LNative:
		return v.Native
	}
	return v
}

// GoError returns an error that represents v.  If v is not LError then nil is
// returned.
func GoError(v *LVal) error {
	if v.Type != LError {
		return nil
	}
	return (*ErrorVal)(v)
}
