// Package parser builds a CascadeLang AST from a token stream via
// recursive-descent, Pratt-style precedence climbing.
package parser

import (
	"fmt"
	"strconv"

	"github.com/caivega/cascadelang/lang"
	"github.com/caivega/cascadelang/lang/ast"
	"github.com/caivega/cascadelang/lang/lexer"
	"github.com/caivega/cascadelang/lang/token"
)

// Parser consumes a token stream and produces an *ast.Program.
type Parser struct {
	toks []token.Token
	pos  int
}

// Parse lexes and parses src in one call.
func Parse(src string) (*ast.Program, error) {
	toks, err := lexer.Tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &Parser{toks: toks}
	return p.parseProgram()
}

func (p *Parser) cur() token.Token     { return p.toks[p.pos] }
func (p *Parser) peekKind() token.Kind { return p.toks[p.pos].Kind }

func (p *Parser) advance() token.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) pos_() lang.Position {
	t := p.cur()
	return lang.Position{Line: t.Line, Col: t.Col}
}

func (p *Parser) expect(k token.Kind) (token.Token, error) {
	if p.peekKind() != k {
		return token.Token{}, p.errf("expected %s, got %s", k, p.peekKind())
	}
	return p.advance(), nil
}

func (p *Parser) errf(format string, args ...interface{}) error {
	return &lang.ParseError{Pos: p.pos_(), Msg: fmt.Sprintf(format, args...)}
}

func (p *Parser) parseProgram() (*ast.Program, error) {
	pos := p.pos_()
	prog := ast.NewProgram(pos)
	for p.peekKind() != token.EOF {
		st, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		prog.Stmts = append(prog.Stmts, st)
	}
	return prog, nil
}

func (p *Parser) parseBlock() ([]ast.Stmt, error) {
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	var stmts []ast.Stmt
	for p.peekKind() != token.RBRACE {
		if p.peekKind() == token.EOF {
			return nil, p.errf("unexpected EOF in block")
		}
		st, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, st)
	}
	p.advance() // }
	return stmts, nil
}

func (p *Parser) parseStmt() (ast.Stmt, error) {
	switch p.peekKind() {
	case token.STRUCT:
		return p.parseStructDecl()
	case token.LET:
		return p.parseLetStmt()
	case token.IF:
		return p.parseIfStmt()
	case token.WHILE:
		return p.parseWhileStmt()
	case token.FN:
		return p.parseFuncDecl()
	case token.RETURN:
		return p.parseReturnStmt()
	case token.PRINT:
		return p.parsePrintStmt()
	case token.ASSERT:
		return p.parseAssertStmt()
	default:
		return p.parseSimpleStmt()
	}
}

func (p *Parser) parseStructDecl() (ast.Stmt, error) {
	pos := p.pos_()
	p.advance() // struct
	nameTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	var fields []ast.FieldSpec
	for p.peekKind() != token.RBRACE {
		mandatory := true
		switch p.peekKind() {
		case token.OPTIONAL:
			mandatory = false
			p.advance()
		case token.MANDATORY:
			mandatory = true
			p.advance()
		}
		fTok, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		fields = append(fields, ast.FieldSpec{Name: fTok.Lit, Mandatory: mandatory})
		if p.peekKind() == token.COMMA {
			p.advance()
		}
	}
	p.advance() // }
	n := &ast.StructDecl{Name: nameTok.Lit, Fields: fields}
	n.SetPos(pos)
	return n, nil
}

func (p *Parser) parseLetStmt() (ast.Stmt, error) {
	pos := p.pos_()
	p.advance() // let
	nameTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ASSIGN); err != nil {
		return nil, err
	}
	val, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	p.consumeSemi()
	n := &ast.LetStmt{Name: nameTok.Lit, Value: val}
	n.SetPos(pos)
	return n, nil
}

func (p *Parser) consumeSemi() {
	if p.peekKind() == token.SEMI {
		p.advance()
	}
}

func (p *Parser) parseIfStmt() (ast.Stmt, error) {
	pos := p.pos_()
	p.advance() // if
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	var elseStmts []ast.Stmt
	if p.peekKind() == token.ELSE {
		p.advance()
		if p.peekKind() == token.IF {
			nested, err := p.parseIfStmt()
			if err != nil {
				return nil, err
			}
			elseStmts = []ast.Stmt{nested}
		} else {
			elseStmts, err = p.parseBlock()
			if err != nil {
				return nil, err
			}
		}
	}
	n := &ast.IfStmt{Cond: cond, Then: then, Else: elseStmts}
	n.SetPos(pos)
	return n, nil
}

func (p *Parser) parseWhileStmt() (ast.Stmt, error) {
	pos := p.pos_()
	p.advance() // while
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	n := &ast.WhileStmt{Cond: cond, Body: body}
	n.SetPos(pos)
	return n, nil
}

func (p *Parser) parseFuncDecl() (ast.Stmt, error) {
	pos := p.pos_()
	p.advance() // fn
	nameTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var params []string
	for p.peekKind() != token.RPAREN {
		pt, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		params = append(params, pt.Lit)
		if p.peekKind() == token.COMMA {
			p.advance()
		}
	}
	p.advance() // )
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	n := &ast.FuncDecl{Name: nameTok.Lit, Params: params, Body: body}
	n.SetPos(pos)
	return n, nil
}

func (p *Parser) parseReturnStmt() (ast.Stmt, error) {
	pos := p.pos_()
	p.advance() // return
	if p.peekKind() == token.SEMI || p.peekKind() == token.RBRACE {
		p.consumeSemi()
		n := &ast.ReturnStmt{}
		n.SetPos(pos)
		return n, nil
	}
	val, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	p.consumeSemi()
	n := &ast.ReturnStmt{Value: val}
	n.SetPos(pos)
	return n, nil
}

func (p *Parser) parsePrintStmt() (ast.Stmt, error) {
	pos := p.pos_()
	p.advance() // print
	hasParen := p.peekKind() == token.LPAREN
	if hasParen {
		p.advance()
	}
	val, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if hasParen {
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
	}
	p.consumeSemi()
	n := &ast.PrintStmt{X: val}
	n.SetPos(pos)
	return n, nil
}

func (p *Parser) parseAssertStmt() (ast.Stmt, error) {
	pos := p.pos_()
	p.advance() // assert
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	var msg ast.Expr
	if p.peekKind() == token.COMMA {
		p.advance()
		msg, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	p.consumeSemi()
	n := &ast.AssertStmt{Cond: cond, Msg: msg}
	n.SetPos(pos)
	return n, nil
}

// parseSimpleStmt handles assignment and bare expression statements, since
// both start with an expression and only disambiguate after parsing it.
func (p *Parser) parseSimpleStmt() (ast.Stmt, error) {
	pos := p.pos_()
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.peekKind() == token.ASSIGN {
		p.advance()
		lv, ok := expr.(ast.LValue)
		if !ok {
			return nil, &lang.ParseError{Pos: pos, Msg: "invalid assignment target"}
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		p.consumeSemi()
		n := &ast.AssignStmt{Target: lv, Value: val}
		n.SetPos(pos)
		return n, nil
	}
	p.consumeSemi()
	n := &ast.ExprStmt{X: expr}
	n.SetPos(pos)
	return n, nil
}

// --- expression parsing: precedence climbing ---

func (p *Parser) parseExpr() (ast.Expr, error) { return p.parseOr() }

func (p *Parser) parseOr() (ast.Expr, error) {
	pos := p.pos_()
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peekKind() == token.OR {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		n := &ast.BinaryExpr{Op: token.OR, Left: left, Right: right}
		n.SetPos(pos)
		left = n
	}
	return left, nil
}

func (p *Parser) parseAnd() (ast.Expr, error) {
	pos := p.pos_()
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.peekKind() == token.AND {
		p.advance()
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		n := &ast.BinaryExpr{Op: token.AND, Left: left, Right: right}
		n.SetPos(pos)
		left = n
	}
	return left, nil
}

func (p *Parser) parseEquality() (ast.Expr, error) {
	pos := p.pos_()
	left, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	for p.peekKind() == token.EQ || p.peekKind() == token.NEQ {
		op := p.advance().Kind
		right, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		n := &ast.BinaryExpr{Op: op, Left: left, Right: right}
		n.SetPos(pos)
		left = n
	}
	return left, nil
}

func (p *Parser) parseRelational() (ast.Expr, error) {
	pos := p.pos_()
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for p.peekKind() == token.LT || p.peekKind() == token.GT || p.peekKind() == token.LE || p.peekKind() == token.GE {
		op := p.advance().Kind
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		n := &ast.BinaryExpr{Op: op, Left: left, Right: right}
		n.SetPos(pos)
		left = n
	}
	return left, nil
}

func (p *Parser) parseAdditive() (ast.Expr, error) {
	pos := p.pos_()
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.peekKind() == token.PLUS || p.peekKind() == token.MINUS {
		op := p.advance().Kind
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		n := &ast.BinaryExpr{Op: op, Left: left, Right: right}
		n.SetPos(pos)
		left = n
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (ast.Expr, error) {
	pos := p.pos_()
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.peekKind() == token.STAR || p.peekKind() == token.SLASH {
		op := p.advance().Kind
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		n := &ast.BinaryExpr{Op: op, Left: left, Right: right}
		n.SetPos(pos)
		left = n
	}
	return left, nil
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	if p.peekKind() == token.BANG || p.peekKind() == token.MINUS {
		pos := p.pos_()
		op := p.advance().Kind
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		n := &ast.UnaryExpr{Op: op, X: x}
		n.SetPos(pos)
		return n, nil
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (ast.Expr, error) {
	pos := p.pos_()
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peekKind() {
		case token.DOT:
			p.advance()
			nameTok, err := p.expect(token.IDENT)
			if err != nil {
				return nil, err
			}
			n := &ast.FieldExpr{X: expr, Name: nameTok.Lit}
			n.SetPos(pos)
			expr = n
		case token.LBRACKET:
			p.advance()
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RBRACKET); err != nil {
				return nil, err
			}
			n := &ast.IndexExpr{X: expr, Index: idx}
			n.SetPos(pos)
			expr = n
		case token.LPAREN:
			p.advance()
			var args []ast.Expr
			for p.peekKind() != token.RPAREN {
				a, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				args = append(args, a)
				if p.peekKind() == token.COMMA {
					p.advance()
				}
			}
			p.advance() // )
			n := &ast.CallExpr{Callee: expr, Args: args}
			n.SetPos(pos)
			expr = n
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	pos := p.pos_()
	switch p.peekKind() {
	case token.NUMBER:
		tok := p.advance()
		f, err := strconv.ParseFloat(tok.Lit, 64)
		if err != nil {
			return nil, &lang.ParseError{Pos: pos, Msg: "invalid number literal " + tok.Lit}
		}
		n := &ast.NumberLit{Value: f}
		n.SetPos(pos)
		return n, nil
	case token.STRING:
		tok := p.advance()
		n := &ast.StringLit{Value: tok.Lit}
		n.SetPos(pos)
		return n, nil
	case token.TRUE:
		p.advance()
		n := &ast.BoolLit{Value: true}
		n.SetPos(pos)
		return n, nil
	case token.FALSE:
		p.advance()
		n := &ast.BoolLit{Value: false}
		n.SetPos(pos)
		return n, nil
	case token.NULL:
		p.advance()
		n := &ast.NullLit{}
		n.SetPos(pos)
		return n, nil
	case token.IDENT:
		tok := p.advance()
		n := &ast.Ident{Name: tok.Lit}
		n.SetPos(pos)
		return n, nil
	case token.LPAREN:
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return e, nil
	case token.LBRACE:
		return p.parseObjectLit(pos)
	case token.LBRACKET:
		return p.parseArrayLit(pos)
	case token.NEW:
		return p.parseNewExpr(pos)
	}
	return nil, p.errf("unexpected token %s", p.peekKind())
}

func (p *Parser) parseObjectLit(pos lang.Position) (ast.Expr, error) {
	p.advance() // {
	fields, err := p.parseObjectLitFields()
	if err != nil {
		return nil, err
	}
	n := &ast.ObjectLit{Fields: fields}
	n.SetPos(pos)
	return n, nil
}

func (p *Parser) parseObjectLitFields() ([]ast.ObjectLitField, error) {
	var fields []ast.ObjectLitField
	for p.peekKind() != token.RBRACE {
		nameTok, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.COLON); err != nil {
			return nil, err
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		fields = append(fields, ast.ObjectLitField{Name: nameTok.Lit, Value: val})
		if p.peekKind() == token.COMMA {
			p.advance()
		}
	}
	p.advance() // }
	return fields, nil
}

func (p *Parser) parseArrayLit(pos lang.Position) (ast.Expr, error) {
	p.advance() // [
	var elems []ast.Expr
	for p.peekKind() != token.RBRACKET {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
		if p.peekKind() == token.COMMA {
			p.advance()
		}
	}
	p.advance() // ]
	n := &ast.ArrayLit{Elements: elems}
	n.SetPos(pos)
	return n, nil
}

func (p *Parser) parseNewExpr(pos lang.Position) (ast.Expr, error) {
	p.advance() // new
	nameTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	fields, err := p.parseObjectLitFields()
	if err != nil {
		return nil, err
	}
	n := &ast.NewExpr{TypeName: nameTok.Lit, Fields: fields}
	n.SetPos(pos)
	return n, nil
}
