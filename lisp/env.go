// Copyright © 2018 The ELPS authors

package lisp

import (
	"fmt"
	"io"
	"strings"

	"github.com/luthersystems/mal/parser/token"
	"github.com/sirupsen/logrus"
)

// VarArgSymbol separates required parameters from the parameter bound to the
// list of remaining arguments, as in (fn* (x & more) more).
const VarArgSymbol = "&"

// InitializeUserEnv installs the special forms documentation and the core
// library into the root environment env and applies config.
func InitializeUserEnv(env *LEnv, config ...Config) *LVal {
	if env.Parent != nil {
		return env.Errorf("not a root environment")
	}
	env.AddBuiltins()
	for _, fn := range config {
		lerr := fn(env)
		if lerr.Type == LError {
			return lerr
		}
	}
	return Nil()
}

// LEnv is a lisp environment.  Each LEnv is one scope frame.
type LEnv struct {
	Loc     *token.Location
	Scope   map[string]*LVal
	Parent  *LEnv
	Runtime *Runtime
	ID      uint
}

// NewEnvRuntime initializes a new root LEnv that uses the runtime rt.  When
// rt is nil StandardRuntime() called to create a new Runtime for the returned
// LEnv.  It is an error to use the same runtime object in multiple calls to
// NewEnvRuntime.
func NewEnvRuntime(rt *Runtime) *LEnv {
	if rt == nil {
		rt = StandardRuntime()
	}
	if rt.Stack == nil {
		rt.Stack = &CallStack{MaxHeight: DefaultMaxStackHeight}
	}
	return &LEnv{
		ID:      rt.GenEnvID(),
		Scope:   make(map[string]*LVal),
		Runtime: rt,
	}
}

// NewEnv returns initializes and returns a new LEnv.  A nil parent creates a
// root environment with its own runtime.
func NewEnv(parent *LEnv) *LEnv {
	if parent == nil {
		return NewEnvRuntime(nil)
	}
	return newEnvN(parent, 0)
}

// newEnvN creates a child LEnv with its Scope map pre-sized to hold n
// bindings.
func newEnvN(parent *LEnv, n int) *LEnv {
	return &LEnv{
		ID:      parent.Runtime.GenEnvID(),
		Loc:     parent.Loc,
		Scope:   make(map[string]*LVal, n),
		Parent:  parent,
		Runtime: parent.Runtime,
	}
}

// Root returns the root environment of env, the frame with no parent.
func (env *LEnv) Root() *LEnv {
	for env.Parent != nil {
		env = env.Parent
	}
	return env
}

// LoadString reads all expressions in exprs and evaluates them in order.
func (env *LEnv) LoadString(name, exprs string) *LVal {
	return env.Load(name, strings.NewReader(exprs))
}

// Load reads LVals from r and evaluates them as if in a do form.  The value
// returned by the last evaluated LVal will be retured.  If
// env.Runtime.Reader has not been set then an error will be returned by Load.
func (env *LEnv) Load(name string, r io.Reader) *LVal {
	if env.Runtime.Reader == nil {
		return env.Errorf("no reader for environment runtime")
	}
	exprs, err := env.Runtime.Reader.Read(name, r)
	if err != nil {
		return readerError(err)
	}
	ret := Nil()
	for _, expr := range exprs {
		ret = env.Eval(expr)
		if ret.Type == LError {
			return ret
		}
	}
	return ret
}

// EvalString reads exactly one expression from text and evaluates it in env.
// Text following the first expression is ignored.  Reading nothing is a
// syntax error.
func (env *LEnv) EvalString(text string) *LVal {
	expr := env.ReadString(text)
	if expr.Type == LError {
		return expr
	}
	return env.Eval(expr)
}

// ReadString reads the first expression in text using env.Runtime.Reader.
func (env *LEnv) ReadString(text string) *LVal {
	if env.Runtime.Reader == nil {
		return env.Errorf("no reader for environment runtime")
	}
	if r, ok := env.Runtime.Reader.(ExpressionReader); ok {
		expr, err := r.ReadExpression("input", strings.NewReader(text))
		if err == io.EOF {
			return ErrorConditionf(CondSyntaxError, "no expression to read")
		}
		if err != nil {
			return readerError(err)
		}
		return expr
	}
	exprs, err := env.Runtime.Reader.Read("input", strings.NewReader(text))
	if err != nil {
		return readerError(err)
	}
	if len(exprs) == 0 {
		return ErrorConditionf(CondSyntaxError, "no expression to read")
	}
	return exprs[0]
}

// Get takes an LSymbol k and returns the LVal it is bound to in env or any
// of its ancestors.  The innermost binding wins.  An unbound symbol is a
// CondUnboundSymbol error.
func (env *LEnv) Get(k *LVal) *LVal {
	if k.Type != LSymbol {
		return env.ErrorConditionf(CondTypeError, "key is not a symbol: %v", k.Type)
	}
	for e := env; e != nil; e = e.Parent {
		if v, ok := e.Scope[k.Str]; ok {
			return v
		}
	}
	lerr := env.ErrorConditionf(CondUnboundSymbol, "%s", k.Str)
	if k.Source != nil {
		lerr.Source = k.Source
	}
	return lerr
}

// Put takes an LSymbol k and binds it to v in env's own frame.  Enclosing
// frames are never modified.
func (env *LEnv) Put(k, v *LVal) *LVal {
	if k.Type != LSymbol {
		return env.ErrorConditionf(CondTypeError, "key is not a symbol: %v", k.Type)
	}
	if v == nil {
		panic("nil value")
	}
	env.Scope[k.Str] = v
	return Nil()
}

// Lambda returns a closure that captures env.  Formals must be a list of
// symbols in which VarArgSymbol may precede the final symbol.
func (env *LEnv) Lambda(formals *LVal, body *LVal) *LVal {
	if formals.Type != LSExpr {
		return ErrorConditionf(CondSyntaxError, "parameters are not a list: %v", formals.Type)
	}
	for i, sym := range formals.Cells {
		if sym.Type != LSymbol {
			return ErrorConditionf(CondSyntaxError, "parameter is not a symbol: %v", sym)
		}
		if sym.Str == VarArgSymbol && i != len(formals.Cells)-2 {
			return ErrorConditionf(CondSyntaxError, "%s must precede exactly one parameter", VarArgSymbol)
		}
	}
	return &LVal{
		Type:   LFun,
		Source: body.Source,
		Native: &LFunData{
			Env: env,
			FID: env.Runtime.GenFID(),
		},
		Cells: []*LVal{formals, body},
	}
}

// AddBuiltins binds funs in env.  If no funs are given the default builtins
// are bound.
func (env *LEnv) AddBuiltins(funs ...LBuiltinDef) {
	if len(funs) == 0 {
		funs = DefaultBuiltins()
	}
	for _, f := range funs {
		env.Put(Symbol(f.Name()), env.builtin(f))
	}
}

func (env *LEnv) builtin(f LBuiltinDef) *LVal {
	v := Fun(f.Name(), f.Eval)
	v.Cells = []*LVal{f.Formals()}
	v.FunData().Docstring = builtinDocstring(f)
	return v
}

// Errorf returns an LError value with a formatted error message.
//
// Unlike the exported function, the Errorf method returns an LVal with a copy
// env.Runtime.Stack.
func (env *LEnv) Errorf(format string, v ...interface{}) *LVal {
	return env.ErrorConditionf("error", format, v...)
}

// ErrorConditionf returns an LError value with the given condition type and a
// a formatted error message rendered using fmt.Sprintf.
func (env *LEnv) ErrorConditionf(condition string, format string, v ...interface{}) *LVal {
	lerr := ErrorConditionf(condition, format, v...)
	env.ErrorAssociate(lerr)
	return lerr
}

// ErrorCondition returns an LError with the given condition type that wraps
// err.
func (env *LEnv) ErrorCondition(condition string, err error) *LVal {
	lerr := ErrorCondition(condition, err)
	env.ErrorAssociate(lerr)
	return lerr
}

// ErrorAssociate associates the LError value lerr with env's current call
// stack and source location.  ErrorAssociate panics if lerr is not LError.
func (env *LEnv) ErrorAssociate(lerr *LVal) {
	if lerr.Type != LError {
		panic("not an error: " + lerr.Type.String())
	}
	if lerr.CallStack() == nil {
		lerr.SetCallStack(env.Runtime.Stack.Copy())
	}
	if lerr.Source == nil {
		lerr.Source = env.Loc
		if top := env.Runtime.Stack.Top(); top != nil && top.Source != nil {
			lerr.Source = top.Source
		}
	}
}

// Eval evaluates v in the context (scope) of env and returns the resulting
// LVal.  Eval does not modify v.
func (env *LEnv) Eval(v *LVal) *LVal {
	switch v.Type {
	case LSymbol:
		return env.Get(v)
	case LSExpr:
		if len(v.Cells) == 0 {
			return v
		}
		return env.EvalSExpr(v)
	default:
		return v
	}
}

// EvalSExpr evaluates a non-empty list.  A list whose head names a special
// form is handed to the form unevaluated.  Any other list is a function
// application.
func (env *LEnv) EvalSExpr(s *LVal) *LVal {
	head := s.Cells[0]
	if head.Type == LSymbol {
		if op, ok := specialForms[head.Str]; ok {
			return env.specialFormCall(op, s)
		}
	}
	fun := env.Eval(head)
	if fun.Type == LError {
		return fun
	}
	args := make([]*LVal, 0, len(s.Cells)-1)
	for _, c := range s.Cells[1:] {
		x := env.Eval(c)
		if x.Type == LError {
			return x
		}
		args = append(args, x)
	}
	if fun.Type != LFun {
		lerr := env.ErrorConditionf(CondNotCallable, "not a function: %v", fun)
		lerr.Source = s.Source
		return lerr
	}
	return env.call(s.Source, fun, SExpr(args))
}

// specialFormCall evaluates a special form.  Errors raised by the form itself
// have no call stack yet and are attributed to the form's location.
func (env *LEnv) specialFormCall(op *specialForm, s *LVal) *LVal {
	if op.name == "eval" {
		// eval evaluates data built at run time, so it can recurse without
		// any function application and must count against the stack height.
		err := env.Runtime.Stack.PushFID(s.Source, op.name, op.name)
		if err != nil {
			return env.stackExhausted(s.Source, op.name, err)
		}
		defer env.Runtime.Stack.Pop()
	}
	r := op.fun(env, s.Cells[1:])
	if r.Type == LError && r.CallStack() == nil {
		if r.Source == nil {
			r.Source = s.Source
		}
		env.ErrorAssociate(r)
	}
	return r
}

// FunCall invokes function fun with the argument list args.  Builtins use
// FunCall to apply function arguments.
func (env *LEnv) FunCall(fun, args *LVal) *LVal {
	if fun.Type != LFun {
		return env.ErrorConditionf(CondNotCallable, "not a function: %v", fun)
	}
	var src *token.Location
	if top := env.Runtime.Stack.Top(); top != nil {
		src = top.Source
	}
	return env.call(src, fun, args)
}

func (env *LEnv) trace(fun *LVal) func() {
	p := env.Runtime.Profiler
	if p == nil || !p.IsEnabled() {
		return func() {}
	}
	return p.Start(fun)
}

// call pushes a frame for fun, binds args, and evaluates the function body.
// The frame is popped when call returns, including when evaluation fails, so
// a stack exhausted by runaway recursion is empty again once the error has
// propagated to the top level.
func (env *LEnv) call(src *token.Location, fun, args *LVal) *LVal {
	if err := env.Runtime.Context().Err(); err != nil {
		lerr := env.ErrorCondition(CondContextCancelled, err)
		lerr.Source = src
		return lerr
	}
	fd := fun.FunData()
	err := env.Runtime.Stack.PushFID(src, fd.FID, fd.Name)
	if err != nil {
		return env.stackExhausted(src, fd.Name, err)
	}
	defer env.Runtime.Stack.Pop()
	defer env.trace(fun)()

	fenv, lerr := env.bind(fun, args)
	if lerr != nil {
		return lerr
	}
	if fd.Builtin != nil {
		r := fd.Builtin(env, args)
		if r == nil {
			panic(fmt.Sprintf("nil LVal returned from builtin %s", fd.Name))
		}
		return r
	}
	return fenv.Eval(fun.Cells[1])
}

func (env *LEnv) stackExhausted(src *token.Location, name string, err error) *LVal {
	env.Runtime.logger().WithFields(logrus.Fields{
		"function": name,
		"height":   env.Runtime.Stack.Height(),
	}).Debug("call stack exhausted")
	lerr := env.ErrorCondition(CondStackExhausted, err)
	lerr.Source = src
	return lerr
}

// bind checks the arity of a call to fun and, for closures, returns a new
// frame whose parent is the closure's captured environment, not env.
func (env *LEnv) bind(fun, args *LVal) (*LEnv, *LVal) {
	if len(fun.Cells) == 0 {
		// builtins constructed without formals check their own arguments
		return nil, nil
	}
	formals := fun.Cells[0].Cells
	nreq := len(formals)
	variadic := nreq >= 2 && formals[nreq-2].Str == VarArgSymbol
	if variadic {
		nreq -= 2
	}
	if len(args.Cells) < nreq || (!variadic && len(args.Cells) > nreq) {
		return nil, env.arityError(fun, nreq, variadic, len(args.Cells))
	}
	if fun.Builtin() != nil {
		return nil, nil
	}
	fenv := newEnvN(fun.Env(), len(formals))
	for i := 0; i < nreq; i++ {
		fenv.Scope[formals[i].Str] = args.Cells[i]
	}
	if variadic {
		rest := make([]*LVal, len(args.Cells)-nreq)
		copy(rest, args.Cells[nreq:])
		fenv.Scope[formals[len(formals)-1].Str] = SExpr(rest)
	}
	return fenv, nil
}

func (env *LEnv) arityError(fun *LVal, nreq int, variadic bool, got int) *LVal {
	name := fun.FunData().Name
	if name == "" {
		name = "function"
	}
	if variadic {
		return env.ErrorConditionf(CondArityError, "%s expects at least %d arguments (got %d)", name, nreq, got)
	}
	return env.ErrorConditionf(CondArityError, "%s expects %d arguments (got %d)", name, nreq, got)
}
