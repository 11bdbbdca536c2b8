// Copyright © 2018 The ELPS authors

package lisp

import (
	"bytes"
	"strings"
)

// LBuiltin is a function that performs executes a lisp function.
type LBuiltin func(env *LEnv, args *LVal) *LVal

// LBuiltinDef is a built-in function
type LBuiltinDef interface {
	Name() string
	Formals() *LVal
	Eval(env *LEnv, args *LVal) *LVal
}

// Documented is implemented by builtins and special forms that carry
// documentation.
type Documented interface {
	Docstring() string
}

type langBuiltin struct {
	name    string
	formals *LVal
	fun     LBuiltin
	docs    string
}

func (fun *langBuiltin) Name() string {
	return fun.name
}

func (fun *langBuiltin) Formals() *LVal {
	return fun.formals
}

func (fun *langBuiltin) Eval(env *LEnv, args *LVal) *LVal {
	return fun.fun(env, args)
}

func (fun *langBuiltin) Docstring() string {
	return fun.docs
}

// builtinDocstring returns the documentation for f with source indentation
// and line breaks collapsed.
func builtinDocstring(f LBuiltinDef) string {
	d, ok := f.(Documented)
	if !ok {
		return ""
	}
	return strings.Join(strings.Fields(d.Docstring()), " ")
}

// DefaultBuiltins returns the core library.
func DefaultBuiltins() []LBuiltinDef {
	ops := make([]LBuiltinDef, len(langBuiltins))
	for i := range ops {
		ops[i] = langBuiltins[i]
	}
	return ops
}

var langBuiltins = []*langBuiltin{
	{"+", Formals(VarArgSymbol, "x"), builtinAdd, `
		Returns the sum of its arguments.  With no arguments returns 0.`},
	{"-", Formals(VarArgSymbol, "x"), builtinSub, `
		With one argument returns its negation.  Otherwise subtracts each
		remaining argument from the first, left to right.  With no arguments
		returns 0.`},
	{"*", Formals(VarArgSymbol, "x"), builtinMul, `
		Returns the product of its arguments.  With no arguments returns 1.`},
	{"/", Formals("x", VarArgSymbol, "rest"), builtinDiv, `
		Divides x by each remaining argument, left to right, truncating
		toward zero.  Division by zero is a division-by-zero error.`},
	{"=", Formals("a", "b"), builtinEqual, `
		Returns true if a and b are structurally equal.  Values of different
		types are never equal, so the symbol a is not equal to the string "a".
		Lists are equal when they have equal elements.  Atoms and functions
		are equal only to themselves.`},
	{"<", Formals("a", "b"), builtinLT, `Returns true if a is less than b.`},
	{"<=", Formals("a", "b"), builtinLEq, `Returns true if a is less than or equal to b.`},
	{">", Formals("a", "b"), builtinGT, `Returns true if a is greater than b.`},
	{">=", Formals("a", "b"), builtinGEq, `Returns true if a is greater than or equal to b.`},
	{"list", Formals(VarArgSymbol, "x"), builtinList, `Returns a list containing its arguments.`},
	{"list?", Formals("x"), builtinIsList, `Returns true if x is a list.`},
	{"empty?", Formals("x"), builtinIsEmpty, `
		Returns true if x is nil, an empty list, or an empty string.`},
	{"count", Formals("x"), builtinCount, `
		Returns the number of elements in a list or characters in a string.
		The count of nil is 0.`},
	{"cons", Formals("x", "lis"), builtinCons, `
		Returns a new list with x prepended to lis.`},
	{"concat", Formals(VarArgSymbol, "lists"), builtinConcat, `
		Returns a new list containing the elements of each argument in
		order.`},
	{"first", Formals("lis"), builtinFirst, `
		Returns the first element of lis, or nil if lis is empty or nil.`},
	{"rest", Formals("lis"), builtinRest, `
		Returns a list of all but the first element of lis.  The rest of an
		empty list or nil is the empty list.`},
	{"nth", Formals("lis", "n"), builtinNth, `
		Returns the element of lis at the zero-based index n.`},
	{"apply", Formals("fun", VarArgSymbol, "args"), builtinApply, `
		Calls fun with the given arguments.  The last argument must be a list
		and its elements are passed as individual arguments.`},
	{"not", Formals("x"), builtinNot, `Returns true if x is nil or false.`},
	{"nil?", Formals("x"), builtinIsNil, `Returns true if x is nil.`},
	{"true?", Formals("x"), builtinIsTrue, `Returns true if x is the boolean true.`},
	{"false?", Formals("x"), builtinIsFalse, `Returns true if x is the boolean false.`},
	{"symbol?", Formals("x"), builtinIsSymbol, `Returns true if x is a symbol.`},
	{"string?", Formals("x"), builtinIsString, `Returns true if x is a string.`},
	{"number?", Formals("x"), builtinIsNumber, `Returns true if x is a number.`},
	{"fn?", Formals("x"), builtinIsFun, `Returns true if x is a function or builtin.`},
	{"symbol", Formals("name"), builtinSymbol, `Returns the symbol named by the string name.`},
	{"str", Formals(VarArgSymbol, "x"), builtinStr, `
		Returns the concatenation of its arguments rendered as text.  Strings
		are included without quotes.`},
	{"pr-str", Formals(VarArgSymbol, "x"), builtinPrStr, `
		Returns its arguments rendered readably, separated by spaces.`},
	{"read-string", Formals("text"), builtinReadString, `
		Reads the first expression in the string text and returns it
		without evaluating it.`},
	{"atom", Formals("x"), builtinAtom, `
		Returns a new atom, a mutable reference, holding x.`},
	{"atom?", Formals("x"), builtinIsAtom, `Returns true if x is an atom.`},
	{"deref", Formals("a"), builtinDeref, `
		Returns the value held by atom a.  The reader expands @a into
		(deref a).`},
	{"reset!", Formals("a", "x"), builtinReset, `
		Replaces the value held by atom a with x and returns x.`},
	{"swap!", Formals("a", "fun", VarArgSymbol, "args"), builtinSwap, `
		Replaces the value held by atom a with the result of calling fun with
		the current value followed by args.  Returns the new value.`},
}

func (env *LEnv) typeError(name string, want LType, got *LVal) *LVal {
	return env.ErrorConditionf(CondTypeError, "%s: argument is not a %v: %v", name, want, got.Type)
}

func (env *LEnv) intArgs(name string, args []*LVal) *LVal {
	for _, c := range args {
		if c.Type != LInt {
			return env.typeError(name, LInt, c)
		}
	}
	return nil
}

func builtinAdd(env *LEnv, args *LVal) *LVal {
	if lerr := env.intArgs("+", args.Cells); lerr != nil {
		return lerr
	}
	sum := 0
	for _, c := range args.Cells {
		sum += c.Int
	}
	return Int(sum)
}

func builtinSub(env *LEnv, args *LVal) *LVal {
	if lerr := env.intArgs("-", args.Cells); lerr != nil {
		return lerr
	}
	switch len(args.Cells) {
	case 0:
		return Int(0)
	case 1:
		return Int(-args.Cells[0].Int)
	}
	diff := args.Cells[0].Int
	for _, c := range args.Cells[1:] {
		diff -= c.Int
	}
	return Int(diff)
}

func builtinMul(env *LEnv, args *LVal) *LVal {
	if lerr := env.intArgs("*", args.Cells); lerr != nil {
		return lerr
	}
	prod := 1
	for _, c := range args.Cells {
		prod *= c.Int
	}
	return Int(prod)
}

func builtinDiv(env *LEnv, args *LVal) *LVal {
	if lerr := env.intArgs("/", args.Cells); lerr != nil {
		return lerr
	}
	if len(args.Cells) == 1 {
		if args.Cells[0].Int == 0 {
			return env.ErrorConditionf(CondDivisionByZero, "division by zero")
		}
		return Int(1 / args.Cells[0].Int)
	}
	quo := args.Cells[0].Int
	for _, c := range args.Cells[1:] {
		if c.Int == 0 {
			return env.ErrorConditionf(CondDivisionByZero, "division by zero")
		}
		quo /= c.Int
	}
	return Int(quo)
}

func builtinEqual(env *LEnv, args *LVal) *LVal {
	return Bool(args.Cells[0].Equal(args.Cells[1]))
}

func builtinCompare(name string, cmp func(a, b int) bool) LBuiltin {
	return func(env *LEnv, args *LVal) *LVal {
		if lerr := env.intArgs(name, args.Cells); lerr != nil {
			return lerr
		}
		return Bool(cmp(args.Cells[0].Int, args.Cells[1].Int))
	}
}

var (
	builtinLT  = builtinCompare("<", func(a, b int) bool { return a < b })
	builtinLEq = builtinCompare("<=", func(a, b int) bool { return a <= b })
	builtinGT  = builtinCompare(">", func(a, b int) bool { return a > b })
	builtinGEq = builtinCompare(">=", func(a, b int) bool { return a >= b })
)

func builtinList(env *LEnv, args *LVal) *LVal {
	cells := make([]*LVal, len(args.Cells))
	copy(cells, args.Cells)
	return SExpr(cells)
}

func builtinIsList(env *LEnv, args *LVal) *LVal {
	return Bool(args.Cells[0].Type == LSExpr)
}

func builtinIsEmpty(env *LEnv, args *LVal) *LVal {
	x := args.Cells[0]
	switch x.Type {
	case LNil, LSExpr, LString:
		return Bool(x.Len() == 0)
	default:
		return env.ErrorConditionf(CondTypeError, "empty?: argument is not a sequence: %v", x.Type)
	}
}

func builtinCount(env *LEnv, args *LVal) *LVal {
	x := args.Cells[0]
	switch x.Type {
	case LNil, LSExpr, LString:
		return Int(x.Len())
	default:
		return env.ErrorConditionf(CondTypeError, "count: argument is not a sequence: %v", x.Type)
	}
}

// seqArg returns the elements of a list argument.  Nil is treated as the
// empty list.
func (env *LEnv) seqArg(name string, x *LVal) ([]*LVal, *LVal) {
	switch x.Type {
	case LNil:
		return nil, nil
	case LSExpr:
		return x.Cells, nil
	default:
		return nil, env.typeError(name, LSExpr, x)
	}
}

func builtinCons(env *LEnv, args *LVal) *LVal {
	tail, lerr := env.seqArg("cons", args.Cells[1])
	if lerr != nil {
		return lerr
	}
	cells := make([]*LVal, 0, len(tail)+1)
	cells = append(cells, args.Cells[0])
	cells = append(cells, tail...)
	return SExpr(cells)
}

func builtinConcat(env *LEnv, args *LVal) *LVal {
	var cells []*LVal
	for _, lis := range args.Cells {
		elems, lerr := env.seqArg("concat", lis)
		if lerr != nil {
			return lerr
		}
		cells = append(cells, elems...)
	}
	if cells == nil {
		cells = []*LVal{}
	}
	return SExpr(cells)
}

func builtinFirst(env *LEnv, args *LVal) *LVal {
	elems, lerr := env.seqArg("first", args.Cells[0])
	if lerr != nil {
		return lerr
	}
	if len(elems) == 0 {
		return Nil()
	}
	return elems[0]
}

func builtinRest(env *LEnv, args *LVal) *LVal {
	elems, lerr := env.seqArg("rest", args.Cells[0])
	if lerr != nil {
		return lerr
	}
	if len(elems) == 0 {
		return SExpr([]*LVal{})
	}
	cells := make([]*LVal, len(elems)-1)
	copy(cells, elems[1:])
	return SExpr(cells)
}

func builtinNth(env *LEnv, args *LVal) *LVal {
	elems, lerr := env.seqArg("nth", args.Cells[0])
	if lerr != nil {
		return lerr
	}
	n := args.Cells[1]
	if n.Type != LInt {
		return env.typeError("nth", LInt, n)
	}
	if n.Int < 0 || n.Int >= len(elems) {
		return env.ErrorConditionf(CondIndexError, "nth: index out of range: %d", n.Int)
	}
	return elems[n.Int]
}

func builtinApply(env *LEnv, args *LVal) *LVal {
	fun := args.Cells[0]
	if fun.Type != LFun {
		return env.ErrorConditionf(CondNotCallable, "apply: not a function: %v", fun)
	}
	cells := make([]*LVal, 0, len(args.Cells))
	if len(args.Cells) > 1 {
		cells = append(cells, args.Cells[1:len(args.Cells)-1]...)
		last, lerr := env.seqArg("apply", args.Cells[len(args.Cells)-1])
		if lerr != nil {
			return lerr
		}
		cells = append(cells, last...)
	}
	return env.FunCall(fun, SExpr(cells))
}

func builtinNot(env *LEnv, args *LVal) *LVal {
	return Bool(Not(args.Cells[0]))
}

func builtinIsNil(env *LEnv, args *LVal) *LVal {
	return Bool(args.Cells[0].Type == LNil)
}

func builtinIsTrue(env *LEnv, args *LVal) *LVal {
	x := args.Cells[0]
	return Bool(x.Type == LBool && x.Int != 0)
}

func builtinIsFalse(env *LEnv, args *LVal) *LVal {
	x := args.Cells[0]
	return Bool(x.Type == LBool && x.Int == 0)
}

func builtinIsSymbol(env *LEnv, args *LVal) *LVal {
	return Bool(args.Cells[0].Type == LSymbol)
}

func builtinIsString(env *LEnv, args *LVal) *LVal {
	return Bool(args.Cells[0].Type == LString)
}

func builtinIsNumber(env *LEnv, args *LVal) *LVal {
	return Bool(args.Cells[0].Type == LInt)
}

func builtinIsFun(env *LEnv, args *LVal) *LVal {
	return Bool(args.Cells[0].Type == LFun)
}

func builtinSymbol(env *LEnv, args *LVal) *LVal {
	name := args.Cells[0]
	if name.Type != LString {
		return env.typeError("symbol", LString, name)
	}
	return Symbol(name.Str)
}

func builtinStr(env *LEnv, args *LVal) *LVal {
	var buf bytes.Buffer
	for _, c := range args.Cells {
		buf.WriteString(ReadableString(c, false))
	}
	return String(buf.String())
}

func builtinPrStr(env *LEnv, args *LVal) *LVal {
	var buf bytes.Buffer
	for i, c := range args.Cells {
		if i > 0 {
			buf.WriteString(" ")
		}
		buf.WriteString(ReadableString(c, true))
	}
	return String(buf.String())
}

func builtinReadString(env *LEnv, args *LVal) *LVal {
	text := args.Cells[0]
	if text.Type != LString {
		return env.typeError("read-string", LString, text)
	}
	return env.ReadString(text.Str)
}

func builtinAtom(env *LEnv, args *LVal) *LVal {
	return Atom(args.Cells[0])
}

func builtinIsAtom(env *LEnv, args *LVal) *LVal {
	return Bool(args.Cells[0].Type == LAtom)
}

func builtinDeref(env *LEnv, args *LVal) *LVal {
	a := args.Cells[0]
	if a.Type != LAtom {
		return env.typeError("deref", LAtom, a)
	}
	return a.Deref()
}

func builtinReset(env *LEnv, args *LVal) *LVal {
	a := args.Cells[0]
	if a.Type != LAtom {
		return env.typeError("reset!", LAtom, a)
	}
	return a.Reset(args.Cells[1])
}

func builtinSwap(env *LEnv, args *LVal) *LVal {
	a, fun := args.Cells[0], args.Cells[1]
	if a.Type != LAtom {
		return env.typeError("swap!", LAtom, a)
	}
	if fun.Type != LFun {
		return env.ErrorConditionf(CondNotCallable, "swap!: not a function: %v", fun)
	}
	cells := make([]*LVal, 0, len(args.Cells)-1)
	cells = append(cells, a.Deref())
	cells = append(cells, args.Cells[2:]...)
	v := env.FunCall(fun, SExpr(cells))
	if v.Type == LError {
		return v
	}
	return a.Reset(v)
}
