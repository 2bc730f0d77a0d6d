package interp

import "github.com/caivega/cascadelang/lang/ast"

// env is a lexical scope: a frame of bindings plus a pointer to its
// enclosing scope. Functions close over the env active at their
// definition site, giving CascadeLang closures (spec.md §6).
type env struct {
	vars   map[string]interface{}
	parent *env
}

func newEnv(parent *env) *env {
	return &env{vars: make(map[string]interface{}), parent: parent}
}

func (e *env) get(name string) (interface{}, bool) {
	for s := e; s != nil; s = s.parent {
		if v, ok := s.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// define binds name in this frame, shadowing any outer binding.
func (e *env) define(name string, val interface{}) {
	e.vars[name] = val
}

// assign rewrites the nearest existing binding for name, or defines it in
// this frame if none exists (CascadeLang has no separate "global" rule:
// assigning an unbound identifier at the top level simply creates it).
func (e *env) assign(name string, val interface{}) {
	for s := e; s != nil; s = s.parent {
		if _, ok := s.vars[name]; ok {
			s.vars[name] = val
			return
		}
	}
	e.vars[name] = val
}

// function is a callable value: a declaration plus the environment it
// closed over. Callables are never representable as a graph.Value and so
// can never be stored in a heap field, matching spec.md's value model.
type function struct {
	decl    *ast.FuncDecl
	closure *env
}
