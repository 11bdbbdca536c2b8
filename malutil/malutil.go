// Copyright © 2018 The ELPS authors

// Package malutil helps Go programs embed the interpreter by defining their
// own builtins and libraries.
package malutil

import (
	"strings"

	"github.com/luthersystems/mal/lisp"
)

// Function is a helper to construct builtins.
func Function(name string, formals *lisp.LVal, fun lisp.LBuiltin) *Builtin {
	return &Builtin{formals: formals, fun: fun, name: name}
}

// DocFunction is like Function but attaches documentation to the builtin.
func DocFunction(name string, formals *lisp.LVal, fun lisp.LBuiltin, doc string) *Builtin {
	return &Builtin{formals: formals, fun: fun, name: name, doc: doc}
}

// Builtin captures Go functions that are callable from lisp.
type Builtin struct {
	formals *lisp.LVal
	fun     lisp.LBuiltin
	name    string
	doc     string
}

var _ lisp.LBuiltinDef = &Builtin{}
var _ lisp.Documented = &Builtin{}

// Name returns the name of a function.
func (fun *Builtin) Name() string {
	return fun.name
}

// Formals returns the formal arguments of a function.
func (fun *Builtin) Formals() *lisp.LVal {
	return fun.formals
}

// Eval evaluates a function on an environment.
func (fun *Builtin) Eval(env *lisp.LEnv, args *lisp.LVal) *lisp.LVal {
	return fun.fun(env, args)
}

// Docstring returns the function documentation.
func (fun *Builtin) Docstring() string {
	return fun.doc
}

// Loader is a generic function to initialize a root LEnv.  A chain of
// loaders may be formed to load several libraries.
type Loader func(env *lisp.LEnv) *lisp.LVal

func nopLoader(env *lisp.LEnv) *lisp.LVal {
	return lisp.Nil()
}

// Library is a set of definitions implemented in Go, lisp, or both.
type Library interface {
	LibraryName() string
}

// LibraryInit allows initialization of a library before its definitions are
// installed.
type LibraryInit interface {
	Library
	LibraryInit(env *lisp.LEnv) *lisp.LVal
}

func libraryInit(l Library) Loader {
	_l, ok := l.(LibraryInit)
	if !ok {
		return nopLoader
	}
	return _l.LibraryInit
}

// LibraryBuiltins retrieves the builtins exposed by a library.
type LibraryBuiltins interface {
	Library
	Builtins() []lisp.LBuiltinDef
}

func libraryBuiltins(l Library) []lisp.LBuiltinDef {
	_l, ok := l.(LibraryBuiltins)
	if !ok {
		return nil
	}
	return _l.Builtins()
}

// LibraryPrelude returns lisp source which is evaluated after a library's
// builtins are bound.  Prelude definitions may use those builtins.
type LibraryPrelude interface {
	Library
	Prelude() string
}

func libraryPrelude(l Library) string {
	_l, ok := l.(LibraryPrelude)
	if !ok {
		return ""
	}
	return _l.Prelude()
}

// LoadAll returns a Loader which runs each of fn in order, stopping at the
// first error.
func LoadAll(fn ...Loader) Loader {
	return func(env *lisp.LEnv) *lisp.LVal {
		for _, fn := range fn {
			lerr := fn(env)
			if lerr.Type == lisp.LError {
				return lerr
			}
		}
		return lisp.Nil()
	}
}

// LibraryLoader loads multiple libraries.
func LibraryLoader(ls ...Library) Loader {
	loaders := make([]Loader, len(ls))
	for i := range ls {
		loaders[i] = LoadLibrary(ls[i])
	}
	return LoadAll(loaders...)
}

// LoadLibrary loads a library into the root of env.  The prelude of the
// library is read with the environment's Reader using the library name as
// the source name.
func LoadLibrary(l Library) Loader {
	return func(env *lisp.LEnv) *lisp.LVal {
		env = env.Root()
		e := libraryInit(l)(env)
		if e.Type == lisp.LError {
			return e
		}
		if fns := libraryBuiltins(l); len(fns) > 0 {
			env.AddBuiltins(fns...)
		}
		prelude := libraryPrelude(l)
		if strings.TrimSpace(prelude) == "" {
			return lisp.Nil()
		}
		e = env.LoadString(l.LibraryName(), prelude)
		if e.Type == lisp.LError {
			return e
		}
		return lisp.Nil()
	}
}

// Config returns a lisp.Config which loads fn during InitializeUserEnv.
// It should follow any WithReader option when libraries have a prelude.
func Config(fn Loader) lisp.Config {
	return func(env *lisp.LEnv) *lisp.LVal {
		return fn(env)
	}
}
