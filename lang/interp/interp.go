// Package interp tree-walks a *ast.Program against a graph.Heap and
// schema.Registry, lowering every field/index write to graph.Heap.SetField
// with the mandatoriness flag the cascade algorithm depends on (spec.md
// §4.5).
package interp

import (
	"fmt"
	"strconv"

	"github.com/caivega/cascadelang/graph"
	"github.com/caivega/cascadelang/lang"
	"github.com/caivega/cascadelang/lang/ast"
	"github.com/caivega/cascadelang/lang/token"
	"github.com/caivega/cascadelang/schema"
)

// Printer receives the rendered text of every print statement. New installs
// a Printer that discards its input — callers (cmd/cascadelang, lang/repl)
// set this to os.Stdout-backed behavior via SetPrint.
type Printer func(string)

// Interp evaluates CascadeLang programs. It holds no heap state of its own:
// every composite value lives in the bound graph.Heap.
type Interp struct {
	Heap     *graph.Heap
	Registry *schema.Registry
	global   *env
	print    Printer
}

// New creates an interpreter bound to a fresh heap and registry, suitable
// for one batch run or one REPL session.
func New() *Interp {
	reg := schema.NewRegistry()
	return &Interp{
		Heap:     graph.NewHeap(reg),
		Registry: reg,
		global:   newEnv(nil),
		print:    func(string) {},
	}
}

// SetPrint installs the sink for `print` statement output.
func (in *Interp) SetPrint(p Printer) { in.print = p }

// controlSignal distinguishes a `return` unwinding the call stack from
// ordinary statement completion, without the allocation cost of a custom
// error type on the hot path.
type controlSignal int

const (
	ctrlNone controlSignal = iota
	ctrlReturn
)

// Run evaluates every top-level statement of prog against the interpreter's
// global scope.
func (in *Interp) Run(prog *ast.Program) error {
	_, _, err := in.execBlock(prog.Stmts, in.global)
	return err
}

// RunLine evaluates a single REPL statement against the persistent global
// scope, returning the printed representation of a bare expression
// statement's value (empty string for any other statement kind).
func (in *Interp) RunLine(stmt ast.Stmt) (string, error) {
	if es, ok := stmt.(*ast.ExprStmt); ok {
		v, err := in.eval(es.X, in.global)
		if err != nil {
			return "", err
		}
		if val, ok := v.(graph.Value); ok {
			return val.String(), nil
		}
		return "<function>", nil
	}
	_, _, err := in.exec(stmt, in.global)
	return "", err
}

func (in *Interp) execBlock(stmts []ast.Stmt, e *env) (interface{}, controlSignal, error) {
	for _, st := range stmts {
		val, sig, err := in.exec(st, e)
		if err != nil {
			return nil, ctrlNone, err
		}
		if sig == ctrlReturn {
			return val, ctrlReturn, nil
		}
	}
	return nil, ctrlNone, nil
}

func (in *Interp) exec(st ast.Stmt, e *env) (interface{}, controlSignal, error) {
	switch n := st.(type) {
	case *ast.StructDecl:
		fields := make([]schema.FieldDescriptor, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = schema.FieldDescriptor{Name: f.Name, Mandatory: f.Mandatory}
		}
		in.Registry.DefineType(n.Name, fields)
		return nil, ctrlNone, nil

	case *ast.LetStmt:
		v, err := in.eval(n.Value, e)
		if err != nil {
			return nil, ctrlNone, err
		}
		e.define(n.Name, v)
		return nil, ctrlNone, nil

	case *ast.AssignStmt:
		if err := in.execAssign(n, e); err != nil {
			return nil, ctrlNone, err
		}
		return nil, ctrlNone, nil

	case *ast.ExprStmt:
		_, err := in.eval(n.X, e)
		return nil, ctrlNone, err

	case *ast.IfStmt:
		cond, err := in.eval(n.Cond, e)
		if err != nil {
			return nil, ctrlNone, err
		}
		b, err := in.requireBool(cond, n.Pos())
		if err != nil {
			return nil, ctrlNone, err
		}
		if b {
			return in.execBlock(n.Then, newEnv(e))
		}
		if n.Else != nil {
			return in.execBlock(n.Else, newEnv(e))
		}
		return nil, ctrlNone, nil

	case *ast.WhileStmt:
		for {
			cond, err := in.eval(n.Cond, e)
			if err != nil {
				return nil, ctrlNone, err
			}
			b, err := in.requireBool(cond, n.Pos())
			if err != nil {
				return nil, ctrlNone, err
			}
			if !b {
				return nil, ctrlNone, nil
			}
			val, sig, err := in.execBlock(n.Body, newEnv(e))
			if err != nil {
				return nil, ctrlNone, err
			}
			if sig == ctrlReturn {
				return val, ctrlReturn, nil
			}
		}

	case *ast.FuncDecl:
		e.define(n.Name, &function{decl: n, closure: e})
		return nil, ctrlNone, nil

	case *ast.ReturnStmt:
		if n.Value == nil {
			return graph.Null, ctrlReturn, nil
		}
		v, err := in.eval(n.Value, e)
		if err != nil {
			return nil, ctrlNone, err
		}
		return v, ctrlReturn, nil

	case *ast.PrintStmt:
		v, err := in.eval(n.X, e)
		if err != nil {
			return nil, ctrlNone, err
		}
		in.print(in.render(v))
		return nil, ctrlNone, nil

	case *ast.AssertStmt:
		cond, err := in.eval(n.Cond, e)
		if err != nil {
			return nil, ctrlNone, err
		}
		b, err := in.requireBool(cond, n.Pos())
		if err != nil {
			return nil, ctrlNone, err
		}
		if b {
			return nil, ctrlNone, nil
		}
		msg := ""
		if n.Msg != nil {
			mv, err := in.eval(n.Msg, e)
			if err != nil {
				return nil, ctrlNone, err
			}
			msg = in.render(mv)
		}
		return nil, ctrlNone, &lang.AssertionError{Pos: n.Pos(), Msg: msg}

	default:
		return nil, ctrlNone, fmt.Errorf("interp: unhandled statement %T", st)
	}
}

func (in *Interp) render(v interface{}) string {
	if val, ok := v.(graph.Value); ok {
		return val.String()
	}
	return "<function>"
}

func (in *Interp) requireBool(v interface{}, pos lang.Position) (bool, error) {
	val, ok := v.(graph.Value)
	if !ok || val.Kind() != graph.KindBool {
		return false, &lang.TypeError{Pos: pos, Msg: "condition is not a boolean"}
	}
	return val.BoolVal(), nil
}

func (in *Interp) execAssign(n *ast.AssignStmt, e *env) error {
	val, err := in.eval(n.Value, e)
	if err != nil {
		return err
	}
	gv, ok := val.(graph.Value)
	if !ok {
		return &lang.TypeError{Pos: n.Pos(), Msg: "cannot store a function value in a field or variable"}
	}

	switch target := n.Target.(type) {
	case *ast.Ident:
		e.assign(target.Name, val)
		return nil

	case *ast.FieldExpr:
		id, err := in.evalObjectID(target.X, e)
		if err != nil {
			return err
		}
		handle, _ := in.Heap.GetObject(id)
		mandatory := in.Registry.IsFieldMandatory(handle.TypeName, target.Name)
		in.Heap.SetField(id, target.Name, gv, mandatory)
		return nil

	case *ast.IndexExpr:
		id, err := in.evalObjectID(target.X, e)
		if err != nil {
			return err
		}
		idxVal, err := in.eval(target.Index, e)
		if err != nil {
			return err
		}
		idx, err := in.requireIndex(idxVal, target.Pos())
		if err != nil {
			return err
		}
		handle, live := in.Heap.GetObject(id)
		if live && !handle.IsArray {
			return &lang.TypeError{Pos: target.Pos(), Msg: "not an array"}
		}
		field := strconv.Itoa(idx)
		mandatory := in.Registry.IsFieldMandatory(handle.TypeName, field)
		in.Heap.ArraySet(id, idx, gv, mandatory)
		return nil
	}
	return &lang.TypeError{Pos: n.Pos(), Msg: "invalid assignment target"}
}

func (in *Interp) requireIndex(v interface{}, pos lang.Position) (int, error) {
	val, ok := v.(graph.Value)
	if !ok || val.Kind() != graph.KindNumber {
		return 0, &lang.TypeError{Pos: pos, Msg: "array index must be a number"}
	}
	return int(val.Num()), nil
}

// evalObjectID evaluates x and requires it to be a live or dead object
// reference, returning its identifier. Field/index access on a non-object
// (or null) is a type error (spec.md §7).
func (in *Interp) evalObjectID(x ast.Expr, e *env) (graph.ID, error) {
	v, err := in.eval(x, e)
	if err != nil {
		return graph.None, err
	}
	gv, ok := v.(graph.Value)
	if !ok || !gv.IsObject() {
		return graph.None, &lang.TypeError{Pos: x.Pos(), Msg: "not an object"}
	}
	return gv.ObjID(), nil
}

func (in *Interp) eval(x ast.Expr, e *env) (interface{}, error) {
	switch n := x.(type) {
	case *ast.NullLit:
		return graph.Null, nil
	case *ast.NumberLit:
		return graph.Number(n.Value), nil
	case *ast.StringLit:
		return graph.String(n.Value), nil
	case *ast.BoolLit:
		return graph.Bool(n.Value), nil

	case *ast.Ident:
		v, ok := e.get(n.Name)
		if !ok {
			return nil, &lang.ReferenceError{Pos: n.Pos(), Name: n.Name}
		}
		return v, nil

	case *ast.ObjectLit:
		fields, err := in.evalFields(n.Fields, e)
		if err != nil {
			return nil, err
		}
		id := in.Heap.CreateObject("", false, fields)
		return graph.Object(id), nil

	case *ast.NewExpr:
		fields, err := in.evalFields(n.Fields, e)
		if err != nil {
			return nil, err
		}
		id := in.Heap.CreateObject(n.TypeName, true, fields)
		return graph.Object(id), nil

	case *ast.ArrayLit:
		elems := make([]graph.Value, len(n.Elements))
		for i, el := range n.Elements {
			v, err := in.eval(el, e)
			if err != nil {
				return nil, err
			}
			gv, ok := v.(graph.Value)
			if !ok {
				return nil, &lang.TypeError{Pos: el.Pos(), Msg: "cannot store a function value in an array"}
			}
			elems[i] = gv
		}
		id := in.Heap.CreateArray(elems)
		return graph.Object(id), nil

	case *ast.FieldExpr:
		id, err := in.evalObjectID(n.X, e)
		if err != nil {
			return nil, err
		}
		return in.Heap.GetField(id, n.Name), nil

	case *ast.IndexExpr:
		id, err := in.evalObjectID(n.X, e)
		if err != nil {
			return nil, err
		}
		if h, live := in.Heap.GetObject(id); live && !h.IsArray {
			return nil, &lang.TypeError{Pos: n.Pos(), Msg: "not an array"}
		}
		idxVal, err := in.eval(n.Index, e)
		if err != nil {
			return nil, err
		}
		idx, err := in.requireIndex(idxVal, n.Pos())
		if err != nil {
			return nil, err
		}
		return in.Heap.GetField(id, strconv.Itoa(idx)), nil

	case *ast.CallExpr:
		return in.evalCall(n, e)

	case *ast.UnaryExpr:
		return in.evalUnary(n, e)

	case *ast.BinaryExpr:
		return in.evalBinary(n, e)
	}
	return nil, fmt.Errorf("interp: unhandled expression %T", x)
}

func (in *Interp) evalFields(lits []ast.ObjectLitField, e *env) (map[string]graph.Value, error) {
	out := make(map[string]graph.Value, len(lits))
	for _, f := range lits {
		v, err := in.eval(f.Value, e)
		if err != nil {
			return nil, err
		}
		gv, ok := v.(graph.Value)
		if !ok {
			return nil, &lang.TypeError{Pos: f.Value.Pos(), Msg: "cannot store a function value in a field"}
		}
		out[f.Name] = gv
	}
	return out, nil
}

// builtinPush names the one built-in method CascadeLang exposes on
// array objects: arr.push(x). It is dispatched from evalCall since the
// grammar has no separate method-call node.
const builtinPush = "push"

func (in *Interp) evalCall(n *ast.CallExpr, e *env) (interface{}, error) {
	if fe, ok := n.Callee.(*ast.FieldExpr); ok && fe.Name == builtinPush {
		id, err := in.evalObjectID(fe.X, e)
		if err != nil {
			return nil, err
		}
		if len(n.Args) != 1 {
			return nil, &lang.TypeError{Pos: n.Pos(), Msg: "push takes exactly one argument"}
		}
		v, err := in.eval(n.Args[0], e)
		if err != nil {
			return nil, err
		}
		gv, ok := v.(graph.Value)
		if !ok {
			return nil, &lang.TypeError{Pos: n.Pos(), Msg: "cannot push a function value"}
		}
		in.Heap.ArrayPush(id, gv)
		return graph.Null, nil
	}

	callee, err := in.eval(n.Callee, e)
	if err != nil {
		return nil, err
	}
	fn, ok := callee.(*function)
	if !ok {
		return nil, &lang.TypeError{Pos: n.Pos(), Msg: "call of a non-function value"}
	}
	if len(n.Args) != len(fn.decl.Params) {
		return nil, &lang.TypeError{Pos: n.Pos(), Msg: "wrong number of arguments"}
	}
	callEnv := newEnv(fn.closure)
	for i, p := range fn.decl.Params {
		v, err := in.eval(n.Args[i], e)
		if err != nil {
			return nil, err
		}
		callEnv.define(p, v)
	}
	val, sig, err := in.execBlock(fn.decl.Body, callEnv)
	if err != nil {
		return nil, err
	}
	if sig == ctrlReturn {
		return val, nil
	}
	return graph.Null, nil
}

func (in *Interp) evalUnary(n *ast.UnaryExpr, e *env) (interface{}, error) {
	v, err := in.eval(n.X, e)
	if err != nil {
		return nil, err
	}
	gv, ok := v.(graph.Value)
	if !ok {
		return nil, &lang.TypeError{Pos: n.Pos(), Msg: "operator applied to a function value"}
	}
	switch n.Op {
	case token.BANG:
		if gv.Kind() != graph.KindBool {
			return nil, &lang.TypeError{Pos: n.Pos(), Msg: "! requires a boolean operand"}
		}
		return graph.Bool(!gv.BoolVal()), nil
	case token.MINUS:
		if gv.Kind() != graph.KindNumber {
			return nil, &lang.TypeError{Pos: n.Pos(), Msg: "unary - requires a number operand"}
		}
		return graph.Number(-gv.Num()), nil
	}
	return nil, &lang.TypeError{Pos: n.Pos(), Msg: "unknown unary operator"}
}

func (in *Interp) evalBinary(n *ast.BinaryExpr, e *env) (interface{}, error) {
	switch n.Op {
	case token.AND, token.OR:
		return in.evalShortCircuit(n, e)
	}

	lv, err := in.eval(n.Left, e)
	if err != nil {
		return nil, err
	}
	rv, err := in.eval(n.Right, e)
	if err != nil {
		return nil, err
	}
	l, ok := lv.(graph.Value)
	if !ok {
		return nil, &lang.TypeError{Pos: n.Pos(), Msg: "operator applied to a function value"}
	}
	r, ok := rv.(graph.Value)
	if !ok {
		return nil, &lang.TypeError{Pos: n.Pos(), Msg: "operator applied to a function value"}
	}

	switch n.Op {
	case token.EQ:
		return graph.Bool(valuesEqual(l, r)), nil
	case token.NEQ:
		return graph.Bool(!valuesEqual(l, r)), nil
	case token.PLUS:
		if l.Kind() == graph.KindString && r.Kind() == graph.KindString {
			return graph.String(l.Str() + r.Str()), nil
		}
		if l.Kind() == graph.KindNumber && r.Kind() == graph.KindNumber {
			return graph.Number(l.Num() + r.Num()), nil
		}
		return nil, &lang.TypeError{Pos: n.Pos(), Msg: "+ requires two numbers or two strings"}
	case token.MINUS, token.STAR, token.SLASH, token.LT, token.GT, token.LE, token.GE:
		if l.Kind() != graph.KindNumber || r.Kind() != graph.KindNumber {
			return nil, &lang.TypeError{Pos: n.Pos(), Msg: "operator requires two numbers"}
		}
		return arithOrCompare(n.Op, l.Num(), r.Num()), nil
	}
	return nil, &lang.TypeError{Pos: n.Pos(), Msg: "unknown binary operator"}
}

func (in *Interp) evalShortCircuit(n *ast.BinaryExpr, e *env) (interface{}, error) {
	lv, err := in.eval(n.Left, e)
	if err != nil {
		return nil, err
	}
	l, ok := lv.(graph.Value)
	if !ok || l.Kind() != graph.KindBool {
		return nil, &lang.TypeError{Pos: n.Pos(), Msg: "logical operator requires boolean operands"}
	}
	if n.Op == token.AND && !l.BoolVal() {
		return graph.Bool(false), nil
	}
	if n.Op == token.OR && l.BoolVal() {
		return graph.Bool(true), nil
	}
	rv, err := in.eval(n.Right, e)
	if err != nil {
		return nil, err
	}
	r, ok := rv.(graph.Value)
	if !ok || r.Kind() != graph.KindBool {
		return nil, &lang.TypeError{Pos: n.Pos(), Msg: "logical operator requires boolean operands"}
	}
	return graph.Bool(r.BoolVal()), nil
}

func arithOrCompare(op token.Kind, l, r float64) graph.Value {
	switch op {
	case token.MINUS:
		return graph.Number(l - r)
	case token.STAR:
		return graph.Number(l * r)
	case token.SLASH:
		return graph.Number(l / r)
	case token.LT:
		return graph.Bool(l < r)
	case token.GT:
		return graph.Bool(l > r)
	case token.LE:
		return graph.Bool(l <= r)
	case token.GE:
		return graph.Bool(l >= r)
	}
	return graph.Null
}

func valuesEqual(l, r graph.Value) bool {
	if l.Kind() != r.Kind() {
		return false
	}
	switch l.Kind() {
	case graph.KindNull:
		return true
	case graph.KindNumber:
		return l.Num() == r.Num()
	case graph.KindBool:
		return l.BoolVal() == r.BoolVal()
	case graph.KindString:
		return l.Str() == r.Str()
	case graph.KindObject:
		return l.ObjID() == r.ObjID()
	}
	return false
}
