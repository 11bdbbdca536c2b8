// Copyright © 2018 The ELPS authors

package lisp

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/luthersystems/mal/parser/token"
)

// LType is the type of an LVal
type LType uint

// Possible LType values
const (
	// LInvalid (0) is not a valid lisp type.
	LInvalid LType = iota
	// LNil is the unit value.  It is distinct from the empty list.
	LNil
	// LBool values store 1 (true) or 0 (false) in the LVal.Int field.
	LBool
	// LInt values store an int in the LVal.Int field.
	LInt
	// LString values store a string in the LVal.Str field.
	LString
	// LSymbol values store the symbol name in the LVal.Str field.
	LSymbol
	// LSExpr values are lists and store their elements in LVal.Cells.
	LSExpr
	// LFun values store an *LFunData in LVal.Native.  A closure uses the
	// LVal.Cells field to store the following items:
	//		[0] a list of parameter symbols
	//		[1] the body expression
	//
	// A builtin has no Cells.  Its Go implementation is LFunData.Builtin.
	LFun
	// LAtom values are mutable reference cells.  The content is held in
	// LVal.Cells[0] and an atom must never be copied because its identity is
	// its pointer.
	LAtom
	// LError values use the LVal.Cells slice to store the error message (a
	// string or a native Go error) and store the condition name in LVal.Str.
	// A copy of the call stack at the time of their creation is held in
	// LVal.Native.
	LError
	// LNative values store a Go value in the LVal.Native field.  They never
	// appear in evaluated programs and are used to carry Go errors inside
	// LError values.
	LNative
	// LTypeMax is not a real type but represents a value numerically greater
	// than all valid LType values.
	LTypeMax
)

var lvalTypeStrings = []string{
	LInvalid: "INVALID",
	LNil:     "nil",
	LBool:    "bool",
	LInt:     "int",
	LString:  "string",
	LSymbol:  "symbol",
	LSExpr:   "list",
	LFun:     "function",
	LAtom:    "atom",
	LError:   "error",
	LNative:  "native",
}

func (t LType) String() string {
	if t >= LType(len(lvalTypeStrings)) {
		return lvalTypeStrings[LInvalid]
	}
	return lvalTypeStrings[t]
}

// LFunData is the data shared by closures and builtins.
type LFunData struct {
	// Builtin is non-nil for functions implemented in Go.
	Builtin LBuiltin
	// Env is the environment captured by a closure.  It is a live reference,
	// never a snapshot.
	Env *LEnv
	// FID uniquely identifies the function within its runtime.
	FID string
	// Name is the symbol the function was first bound to, if any.
	Name string
	// Docstring documents builtins.
	Docstring string
}

// LVal is a lisp value
type LVal struct {
	// Native is generic storage for data which cannot be represented as an
	// LVal (and thus can't be stored in Cells).
	Native interface{}

	// Source is the values originating location in source code.  Programs
	// should not modify the contents of Source as the reference may be shared
	// by multiple LVals.
	Source *token.Location

	// Str used by LSymbol, LString and LError values
	Str string

	// Cells used by many values as a storage space for lisp objects.
	Cells []*LVal

	// Type is the native type for a value in lisp.
	Type LType

	// Int is used by LInt and LBool values.
	Int int
}

// Nil returns an LVal representing nil.
func Nil() *LVal {
	return &LVal{Type: LNil}
}

// Bool returns an LVal with the given boolean value.
func Bool(b bool) *LVal {
	v := &LVal{Type: LBool}
	if b {
		v.Int = 1
	}
	return v
}

// Int returns an LVal representing the number x.
func Int(x int) *LVal {
	return &LVal{
		Type: LInt,
		Int:  x,
	}
}

// String returns an LVal representing the string str.
func String(str string) *LVal {
	return &LVal{
		Type: LString,
		Str:  str,
	}
}

// Symbol returns an LVal representing the symbol s.
func Symbol(s string) *LVal {
	return &LVal{
		Type: LSymbol,
		Str:  s,
	}
}

// SExpr returns a list containing cells.  The cells slice is not copied.
func SExpr(cells []*LVal) *LVal {
	return &LVal{
		Type:  LSExpr,
		Cells: cells,
	}
}

// Atom returns a new mutable reference cell holding v.
func Atom(v *LVal) *LVal {
	return &LVal{
		Type:  LAtom,
		Cells: []*LVal{v},
	}
}

// Native returns an LVal containing a native Go value.
func Native(v interface{}) *LVal {
	return &LVal{
		Type:   LNative,
		Native: v,
	}
}

// Fun returns an LVal representing a builtin function implemented in Go.
func Fun(fid string, fn LBuiltin) *LVal {
	return &LVal{
		Type: LFun,
		Native: &LFunData{
			Builtin: fn,
			FID:     fid,
			Name:    fid,
		},
	}
}

// Quote returns the list (quote v).
func Quote(v *LVal) *LVal {
	return SExpr([]*LVal{Symbol("quote"), v})
}

// Formals returns a list of parameter symbols.
func Formals(argSymbols ...string) *LVal {
	cells := make([]*LVal, len(argSymbols))
	for i := range argSymbols {
		cells[i] = Symbol(argSymbols[i])
	}
	return SExpr(cells)
}

// Error returns an LError representing err.  Errors store their message in
// Cells and their condition type in Str.
//
// Errors generated during expression evaluation typically have a non-nil
// call stack.  The LEnv.Errorf() method is typically the preferred method
// for creating error LVal objects because it records the stack.
func Error(err error) *LVal {
	return ErrorCondition("error", err)
}

// ErrorCondition returns an LError representing err and having the given
// condition type.
func ErrorCondition(condition string, err error) *LVal {
	return &LVal{
		Type:  LError,
		Str:   condition,
		Cells: []*LVal{Native(err)},
	}
}

// ErrorConditionf returns an LError with a formatted error message.
func ErrorConditionf(condition string, format string, v ...interface{}) *LVal {
	return &LVal{
		Type:  LError,
		Str:   condition,
		Cells: []*LVal{String(fmt.Sprintf(format, v...))},
	}
}

// CallStack returns the call stack captured by an LError value.
func (v *LVal) CallStack() *CallStack {
	if v.Type != LError {
		return nil
	}
	stack, _ := v.Native.(*CallStack)
	return stack
}

// SetCallStack attaches stack to an LError value.
func (v *LVal) SetCallStack(stack *CallStack) {
	if v.Type != LError {
		panic("not an error: " + v.Type.String())
	}
	v.Native = stack
}

// FunData returns the function data of an LFun value, or nil.
func (v *LVal) FunData() *LFunData {
	if v.Type != LFun {
		return nil
	}
	fd, _ := v.Native.(*LFunData)
	return fd
}

// Builtin returns the Go implementation of a builtin function, or nil.
func (v *LVal) Builtin() LBuiltin {
	fd := v.FunData()
	if fd == nil {
		return nil
	}
	return fd.Builtin
}

// IsClosure returns true if v is a function defined with fn*.
func (v *LVal) IsClosure() bool {
	return v.Type == LFun && v.Builtin() == nil
}

// Env returns the environment captured by a closure.
func (v *LVal) Env() *LEnv {
	fd := v.FunData()
	if fd == nil {
		return nil
	}
	return fd.Env
}

// Docstring returns the documentation attached to a builtin.
func (v *LVal) Docstring() string {
	fd := v.FunData()
	if fd == nil {
		return ""
	}
	return fd.Docstring
}

// Len returns the number of elements in a list, the number of characters in
// a string, or zero for nil.  Len returns -1 for other types.
func (v *LVal) Len() int {
	switch v.Type {
	case LNil:
		return 0
	case LSExpr:
		return len(v.Cells)
	case LString:
		return len([]rune(v.Str))
	default:
		return -1
	}
}

// IsNil returns true if v is the nil value.
func (v *LVal) IsNil() bool {
	return v.Type == LNil
}

// Deref returns the content of an atom.
func (v *LVal) Deref() *LVal {
	if v.Type != LAtom {
		panic("not an atom: " + v.Type.String())
	}
	return v.Cells[0]
}

// Reset replaces the content of an atom and returns the new content.  Every
// holder of the atom observes the change.
func (v *LVal) Reset(x *LVal) *LVal {
	if v.Type != LAtom {
		panic("not an atom: " + v.Type.String())
	}
	v.Cells[0] = x
	return x
}

// Equal returns true if v and other are structurally equal.  Values with
// different types are never equal, so the symbol + is not equal to the string
// "+".  Atoms and functions are equal only to themselves.
func (v *LVal) Equal(other *LVal) bool {
	if v.Type != other.Type {
		return false
	}
	switch v.Type {
	case LNil:
		return true
	case LBool, LInt:
		return v.Int == other.Int
	case LString, LSymbol:
		return v.Str == other.Str
	case LSExpr:
		if len(v.Cells) != len(other.Cells) {
			return false
		}
		for i := range v.Cells {
			if !v.Cells[i].Equal(other.Cells[i]) {
				return false
			}
		}
		return true
	default:
		return v == other
	}
}

func (v *LVal) String() string {
	return v.str(true, nil)
}

// ReadableString renders v.  When readably is false strings are written
// without quotes or escapes.
func ReadableString(v *LVal, readably bool) string {
	return v.str(readably, nil)
}

// str renders v.  The atoms enclosing v are held in path so that an atom
// which refers to itself, directly or through a list, prints as #<atom ...>
// instead of recursing.
func (v *LVal) str(readably bool, path []*LVal) string {
	switch v.Type {
	case LNil:
		return "nil"
	case LBool:
		if v.Int != 0 {
			return "true"
		}
		return "false"
	case LInt:
		return strconv.Itoa(v.Int)
	case LString:
		if !readably {
			return v.Str
		}
		return quoteString(v.Str)
	case LSymbol:
		return v.Str
	case LSExpr:
		return exprString(v.Cells, readably, path)
	case LFun:
		if v.Builtin() != nil {
			return fmt.Sprintf("#<builtin %s>", v.FunData().Name)
		}
		return "#<function>"
	case LAtom:
		for _, a := range path {
			if a == v {
				return "#<atom ...>"
			}
		}
		return fmt.Sprintf("#<atom %s>", v.Cells[0].str(readably, append(path, v)))
	case LError:
		return GoError(v).Error()
	case LNative:
		return fmt.Sprintf("#<native value: %T>", v.Native)
	default:
		return fmt.Sprintf("#<%s %#v>", v.Type, v)
	}
}

func exprString(cells []*LVal, readably bool, path []*LVal) string {
	var buf bytes.Buffer
	buf.WriteString("(")
	for i, c := range cells {
		if i > 0 {
			buf.WriteString(" ")
		}
		buf.WriteString(c.str(readably, path))
	}
	buf.WriteString(")")
	return buf.String()
}

var stringEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\t", `\t`,
)

func quoteString(s string) string {
	return `"` + stringEscaper.Replace(s) + `"`
}
