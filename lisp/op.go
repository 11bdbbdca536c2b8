// Copyright © 2018 The ELPS authors

package lisp

import "sort"

// specialForm is evaluator-native syntax.  A special form receives the
// unevaluated tail of the list that invoked it.
type specialForm struct {
	name    string
	formals *LVal
	fun     func(env *LEnv, args []*LVal) *LVal
	docs    string
}

func (op *specialForm) Name() string {
	return op.name
}

func (op *specialForm) Formals() *LVal {
	return op.formals
}

func (op *specialForm) Docstring() string {
	return op.docs
}

// The set of special forms is closed.  Any list whose head is one of these
// symbols is evaluated by the form, regardless of bindings in scope.
var specialForms = map[string]*specialForm{}

var langSpecialForms = []*specialForm{
	{"quote", Formals("expr"), opQuote, `
		Returns expr without evaluating it.  The reader expands 'expr into
		(quote expr).`},
	{"if", Formals("condition", "then", "else"), opIf, `
		Evaluates condition and, if the result is true, evaluates and returns
		then.  Otherwise evaluates and returns else.  Only nil and false are
		false, the number 0 is true.  A missing branch evaluates to nil, as
		does an if with no condition.`},
	{"def!", Formals("symbol", "expr"), opDef, `
		Evaluates expr and binds the result to symbol in the current scope.
		Returns the bound value.`},
	{"let*", Formals("bindings", "expr"), opLetSeq, `
		Creates a new scope and binds each symbol in bindings, a list of
		alternating symbols and expressions, in order.  Each expression can
		reference symbols bound earlier in the list.  Returns the value of
		expr evaluated in the new scope.`},
	{"do", Formals(VarArgSymbol, "exprs"), opDo, `
		Evaluates each expression in order in the current scope and returns
		the value of the last one.  An empty do returns nil.`},
	{"fn*", Formals("params", "expr"), opLambda, `
		Returns a function which binds params to its arguments and evaluates
		expr.  The function captures the scope in which it is created, not
		the scope in which it is called.  A parameter preceded by & is bound
		to the list of remaining arguments.`},
	{"cond", Formals(VarArgSymbol, "clauses"), opCond, `
		Takes alternating tests and expressions.  Evaluates each test in order
		and returns the value of the expression paired with the first true
		test.  Returns nil if no test is true.`},
	{"eval", Formals("expr"), opEval, `
		Evaluates expr in the current scope and then evaluates the result in
		the root scope.  Local bindings are not visible to the second
		evaluation.`},
}

func init() {
	for _, op := range langSpecialForms {
		specialForms[op.name] = op
	}
}

// SpecialForms returns the documented special forms, sorted by name.
func SpecialForms() []LBuiltinDef {
	ops := make([]LBuiltinDef, 0, len(langSpecialForms))
	for _, op := range langSpecialForms {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i].Name() < ops[j].Name() })
	return ops
}

// IsSpecialForm returns true if name is the head of a special form.
func IsSpecialForm(name string) bool {
	_, ok := specialForms[name]
	return ok
}

func (op *specialForm) Eval(env *LEnv, args *LVal) *LVal {
	return op.fun(env, args.Cells)
}

func opQuote(env *LEnv, args []*LVal) *LVal {
	if len(args) != 1 {
		return ErrorConditionf(CondSyntaxError, "quote expects one argument (got %d)", len(args))
	}
	return args[0]
}

func opIf(env *LEnv, args []*LVal) *LVal {
	if len(args) > 3 {
		return ErrorConditionf(CondSyntaxError, "if expects at most three arguments (got %d)", len(args))
	}
	if len(args) == 0 {
		return Nil()
	}
	c := env.Eval(args[0])
	if c.Type == LError {
		return c
	}
	if True(c) {
		if len(args) < 2 {
			return Nil()
		}
		return env.Eval(args[1])
	}
	if len(args) < 3 {
		return Nil()
	}
	return env.Eval(args[2])
}

func opDef(env *LEnv, args []*LVal) *LVal {
	if len(args) != 2 {
		return ErrorConditionf(CondSyntaxError, "def! expects two arguments (got %d)", len(args))
	}
	sym := args[0]
	if sym.Type != LSymbol {
		return ErrorConditionf(CondSyntaxError, "def! first argument is not a symbol: %v", sym.Type)
	}
	v := env.Eval(args[1])
	if v.Type == LError {
		return v
	}
	if fd := v.FunData(); fd != nil && fd.Name == "" {
		// anonymous functions take the first name they are bound to
		fd.Name = sym.Str
	}
	env.Put(sym, v)
	return v
}

func opLetSeq(env *LEnv, args []*LVal) *LVal {
	if len(args) != 2 {
		return ErrorConditionf(CondSyntaxError, "let* expects two arguments (got %d)", len(args))
	}
	bindings := args[0]
	if bindings.Type != LSExpr {
		return ErrorConditionf(CondSyntaxError, "let* bindings are not a list: %v", bindings.Type)
	}
	if len(bindings.Cells)%2 != 0 {
		return ErrorConditionf(CondSyntaxError, "let* bindings have an odd number of forms: %d", len(bindings.Cells))
	}
	letenv := newEnvN(env, len(bindings.Cells)/2)
	for i := 0; i < len(bindings.Cells); i += 2 {
		sym := bindings.Cells[i]
		if sym.Type != LSymbol {
			return ErrorConditionf(CondSyntaxError, "let* binding is not a symbol: %v", sym)
		}
		v := letenv.Eval(bindings.Cells[i+1])
		if v.Type == LError {
			return v
		}
		letenv.Put(sym, v)
	}
	return letenv.Eval(args[1])
}

func opDo(env *LEnv, args []*LVal) *LVal {
	ret := Nil()
	for _, expr := range args {
		ret = env.Eval(expr)
		if ret.Type == LError {
			return ret
		}
	}
	return ret
}

func opLambda(env *LEnv, args []*LVal) *LVal {
	if len(args) != 2 {
		return ErrorConditionf(CondSyntaxError, "fn* expects two arguments (got %d)", len(args))
	}
	return env.Lambda(args[0], args[1])
}

func opCond(env *LEnv, args []*LVal) *LVal {
	if len(args)%2 != 0 {
		return ErrorConditionf(CondSyntaxError, "cond has a test without an expression: %v", args[len(args)-1])
	}
	for i := 0; i < len(args); i += 2 {
		test := env.Eval(args[i])
		if test.Type == LError {
			return test
		}
		if True(test) {
			return env.Eval(args[i+1])
		}
	}
	return Nil()
}

func opEval(env *LEnv, args []*LVal) *LVal {
	if len(args) != 1 {
		return ErrorConditionf(CondSyntaxError, "eval expects one argument (got %d)", len(args))
	}
	expr := env.Eval(args[0])
	if expr.Type == LError {
		return expr
	}
	root := env.Root()
	if root != env {
		env.Runtime.logger().WithField("expr", expr.String()).Debug("eval in root scope")
	}
	return root.Eval(expr)
}
