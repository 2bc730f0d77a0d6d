package parser_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/caivega/cascadelang/lang/ast"
	"github.com/caivega/cascadelang/lang/parser"
	"github.com/caivega/cascadelang/lang/token"
)

func TestParseStructDeclDefaultsToMandatory(t *testing.T) {
	prog, err := parser.Parse(`struct Node { next, optional label }`)
	require.NoError(t, err)
	require.Len(t, prog.Stmts, 1)
	sd, ok := prog.Stmts[0].(*ast.StructDecl)
	require.True(t, ok)
	require.Equal(t, "Node", sd.Name)
	require.Equal(t, []ast.FieldSpec{
		{Name: "next", Mandatory: true},
		{Name: "label", Mandatory: false},
	}, sd.Fields)
}

func TestParseLetAndAssignField(t *testing.T) {
	prog, err := parser.Parse(`
		let a = new Node { next: null }
		a.next = null
	`)
	require.NoError(t, err)
	require.Len(t, prog.Stmts, 2)
	let, ok := prog.Stmts[0].(*ast.LetStmt)
	require.True(t, ok)
	require.Equal(t, "a", let.Name)
	newExpr, ok := let.Value.(*ast.NewExpr)
	require.True(t, ok)
	require.Equal(t, "Node", newExpr.TypeName)

	assign, ok := prog.Stmts[1].(*ast.AssignStmt)
	require.True(t, ok)
	fe, ok := assign.Target.(*ast.FieldExpr)
	require.True(t, ok)
	require.Equal(t, "next", fe.Name)
	_, ok = assign.Value.(*ast.NullLit)
	require.True(t, ok)
}

func TestParseIndexAssignment(t *testing.T) {
	prog, err := parser.Parse(`
		let arr = [1, 2, 3]
		arr[0] = null
	`)
	require.NoError(t, err)
	assign := prog.Stmts[1].(*ast.AssignStmt)
	_, ok := assign.Target.(*ast.IndexExpr)
	require.True(t, ok)
}

func TestOperatorPrecedence(t *testing.T) {
	prog, err := parser.Parse(`let x = 1 + 2 * 3 == 7 && true`)
	require.NoError(t, err)
	let := prog.Stmts[0].(*ast.LetStmt)
	top, ok := let.Value.(*ast.BinaryExpr)
	require.True(t, ok)
	require.Equal(t, token.AND, top.Op)
	eq, ok := top.Left.(*ast.BinaryExpr)
	require.True(t, ok)
	require.Equal(t, token.EQ, eq.Op)
	add, ok := eq.Left.(*ast.BinaryExpr)
	require.True(t, ok)
	require.Equal(t, token.PLUS, add.Op)
	mul, ok := add.Right.(*ast.BinaryExpr)
	require.True(t, ok)
	require.Equal(t, token.STAR, mul.Op)
}

func TestIfWhileFuncReturn(t *testing.T) {
	src := `
		fn add(a, b) {
			return a + b
		}
		let i = 0
		while (i < 3) {
			if (i == 1) {
				print i
			} else {
				print 0
			}
			i = i + 1
		}
	`
	prog, err := parser.Parse(src)
	require.NoError(t, err)
	require.Len(t, prog.Stmts, 3)
	_, ok := prog.Stmts[0].(*ast.FuncDecl)
	require.True(t, ok)
	_, ok = prog.Stmts[2].(*ast.WhileStmt)
	require.True(t, ok)
}

func TestAssignToCallExprIsError(t *testing.T) {
	_, err := parser.Parse(`foo() = 1`)
	require.Error(t, err)
}

func TestAssertWithAndWithoutMessage(t *testing.T) {
	prog, err := parser.Parse(`
		assert(true)
		assert(false, "boom")
	`)
	require.NoError(t, err)
	a0 := prog.Stmts[0].(*ast.AssertStmt)
	require.Nil(t, a0.Msg)
	a1 := prog.Stmts[1].(*ast.AssertStmt)
	require.NotNil(t, a1.Msg)
}

func TestObjectLitAndArrayLit(t *testing.T) {
	prog, err := parser.Parse(`let o = { x: 1, y: "s" }`)
	require.NoError(t, err)
	let := prog.Stmts[0].(*ast.LetStmt)
	obj, ok := let.Value.(*ast.ObjectLit)
	require.True(t, ok)
	require.Len(t, obj.Fields, 2)
}

func TestUnexpectedTokenIsParseError(t *testing.T) {
	_, err := parser.Parse(`let = 1`)
	require.Error(t, err)
}
