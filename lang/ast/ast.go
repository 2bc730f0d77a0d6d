// Package ast defines CascadeLang's abstract syntax tree node types
// (spec.md §6).
package ast

import (
	"github.com/caivega/cascadelang/lang"
	"github.com/caivega/cascadelang/lang/token"
)

// Node is implemented by every AST node; it carries the node's source
// position for error reporting.
type Node interface {
	Pos() lang.Position
}

type base struct{ P lang.Position }

func (b base) Pos() lang.Position { return b.P }

// SetPos records the source position of a node. Promoted onto every
// concrete node type via the embedded base, so the parser can tag a node
// right after constructing it without each node type exposing base itself.
func (b *base) SetPos(p lang.Position) { b.P = p }

// Program is the root node: a sequence of top-level statements.
type Program struct {
	base
	Stmts []Stmt
}

// Stmt is implemented by every statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is implemented by every expression node.
type Expr interface {
	Node
	exprNode()
}

func (base) stmtNode() {}

// FieldSpec is one field of a struct declaration.
type FieldSpec struct {
	Name      string
	Mandatory bool
}

// StructDecl declares a named type with mandatory/optional fields.
type StructDecl struct {
	base
	Name   string
	Fields []FieldSpec
}

// LetStmt binds a new local variable.
type LetStmt struct {
	base
	Name  string
	Value Expr
}

// LValue is implemented by the three assignable expression forms: plain
// identifier, field access, and index access.
type LValue interface {
	Expr
	lvalueNode()
}

// AssignStmt assigns Value to Target, which must be an LValue.
type AssignStmt struct {
	base
	Target LValue
	Value  Expr
}

// ExprStmt is a bare expression evaluated for its side effects (e.g. a call).
type ExprStmt struct {
	base
	X Expr
}

// IfStmt is a conditional with an optional else branch.
type IfStmt struct {
	base
	Cond Expr
	Then []Stmt
	Else []Stmt // nil if no else branch
}

// WhileStmt is a condition-guarded loop.
type WhileStmt struct {
	base
	Cond Expr
	Body []Stmt
}

// FuncDecl declares a named function.
type FuncDecl struct {
	base
	Name   string
	Params []string
	Body   []Stmt
}

// ReturnStmt returns from the enclosing function, optionally with a value.
type ReturnStmt struct {
	base
	Value Expr // nil for a bare return
}

// PrintStmt prints the value of X.
type PrintStmt struct {
	base
	X Expr
}

// AssertStmt raises lang.AssertionError if Cond evaluates to false; a
// non-boolean Cond is a lang.TypeError.
// Msg is nil when the call was written as a single-argument `assert(cond)`.
type AssertStmt struct {
	base
	Cond Expr
	Msg  Expr
}

func (*StructDecl) stmtNode()  {}
func (*LetStmt) stmtNode()     {}
func (*AssignStmt) stmtNode()  {}
func (*ExprStmt) stmtNode()    {}
func (*IfStmt) stmtNode()      {}
func (*WhileStmt) stmtNode()   {}
func (*FuncDecl) stmtNode()    {}
func (*ReturnStmt) stmtNode()  {}
func (*PrintStmt) stmtNode()   {}
func (*AssertStmt) stmtNode()  {}

// Ident is a bare variable reference, and an LValue when assigned to.
type Ident struct {
	base
	Name string
}

// NullLit, NumberLit, StringLit, BoolLit are the literal expression forms.
type NullLit struct{ base }
type NumberLit struct {
	base
	Value float64
}
type StringLit struct {
	base
	Value string
}
type BoolLit struct {
	base
	Value bool
}

// ObjectLit is an untyped `{ field: expr, ... }` literal.
type ObjectLit struct {
	base
	Fields []ObjectLitField
}

// ObjectLitField is one field of an ObjectLit.
type ObjectLitField struct {
	Name  string
	Value Expr
}

// NewExpr is a `new TypeName { field: expr, ... }` constructor.
type NewExpr struct {
	base
	TypeName string
	Fields   []ObjectLitField
}

// ArrayLit is a `[expr, ...]` literal.
type ArrayLit struct {
	base
	Elements []Expr
}

// FieldExpr is `X.Name`, an LValue.
type FieldExpr struct {
	base
	X    Expr
	Name string
}

// IndexExpr is `X[Index]`, an LValue.
type IndexExpr struct {
	base
	X     Expr
	Index Expr
}

// CallExpr is `Callee(Args...)`.
type CallExpr struct {
	base
	Callee Expr
	Args   []Expr
}

// UnaryExpr is `!X` or `-X`.
type UnaryExpr struct {
	base
	Op token.Kind
	X  Expr
}

// BinaryExpr is a binary operator expression.
type BinaryExpr struct {
	base
	Op    token.Kind
	Left  Expr
	Right Expr
}

func (*Ident) exprNode()      {}
func (*NullLit) exprNode()    {}
func (*NumberLit) exprNode()  {}
func (*StringLit) exprNode()  {}
func (*BoolLit) exprNode()    {}
func (*ObjectLit) exprNode()  {}
func (*NewExpr) exprNode()    {}
func (*ArrayLit) exprNode()   {}
func (*FieldExpr) exprNode()  {}
func (*IndexExpr) exprNode()  {}
func (*CallExpr) exprNode()   {}
func (*UnaryExpr) exprNode()  {}
func (*BinaryExpr) exprNode() {}

func (*Ident) lvalueNode()     {}
func (*FieldExpr) lvalueNode() {}
func (*IndexExpr) lvalueNode() {}

// NewProgram builds the root node at pos; the parser tags every other node
// with SetPos after constructing it.
func NewProgram(pos lang.Position) *Program { return &Program{base: base{pos}} }
