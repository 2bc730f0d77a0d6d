// Package lexer turns CascadeLang source text into a stream of tokens.
package lexer

import (
	"strings"

	"github.com/caivega/cascadelang/lang"
	"github.com/caivega/cascadelang/lang/token"
)

// Lexer is a single-pass, rune-at-a-time scanner over source text.
type Lexer struct {
	src  []rune
	pos  int
	line int
	col  int
}

// New creates a Lexer over src.
func New(src string) *Lexer {
	return &Lexer{src: []rune(src), pos: 0, line: 1, col: 1}
}

func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekAt(off int) rune {
	if l.pos+off >= len(l.src) {
		return 0
	}
	return l.src[l.pos+off]
}

func (l *Lexer) advance() rune {
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *Lexer) atEnd() bool { return l.pos >= len(l.src) }

func (l *Lexer) skipSpaceAndComments() {
	for !l.atEnd() {
		r := l.peek()
		switch {
		case r == ' ' || r == '\t' || r == '\r' || r == '\n':
			l.advance()
		case r == '/' && l.peekAt(1) == '/':
			for !l.atEnd() && l.peek() != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }
func isAlpha(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
func isAlnum(r rune) bool { return isAlpha(r) || isDigit(r) }

// Next returns the next token, or raises *lang.LexError on an unterminated
// string or unexpected character.
func (l *Lexer) Next() (token.Token, error) {
	l.skipSpaceAndComments()
	if l.atEnd() {
		return token.Token{Kind: token.EOF, Line: l.line, Col: l.col}, nil
	}

	line, col := l.line, l.col
	r := l.peek()

	switch {
	case isDigit(r):
		return l.lexNumber(line, col)
	case isAlpha(r):
		return l.lexIdent(line, col)
	case r == '"':
		return l.lexString(line, col)
	}

	two := func(second rune, twoKind, oneKind token.Kind) token.Token {
		l.advance()
		if l.peek() == second {
			l.advance()
			return token.Token{Kind: twoKind, Line: line, Col: col}
		}
		return token.Token{Kind: oneKind, Line: line, Col: col}
	}

	switch r {
	case '{':
		l.advance()
		return token.Token{Kind: token.LBRACE, Line: line, Col: col}, nil
	case '}':
		l.advance()
		return token.Token{Kind: token.RBRACE, Line: line, Col: col}, nil
	case '(':
		l.advance()
		return token.Token{Kind: token.LPAREN, Line: line, Col: col}, nil
	case ')':
		l.advance()
		return token.Token{Kind: token.RPAREN, Line: line, Col: col}, nil
	case '[':
		l.advance()
		return token.Token{Kind: token.LBRACKET, Line: line, Col: col}, nil
	case ']':
		l.advance()
		return token.Token{Kind: token.RBRACKET, Line: line, Col: col}, nil
	case ',':
		l.advance()
		return token.Token{Kind: token.COMMA, Line: line, Col: col}, nil
	case ':':
		l.advance()
		return token.Token{Kind: token.COLON, Line: line, Col: col}, nil
	case '.':
		l.advance()
		return token.Token{Kind: token.DOT, Line: line, Col: col}, nil
	case ';':
		l.advance()
		return token.Token{Kind: token.SEMI, Line: line, Col: col}, nil
	case '+':
		l.advance()
		return token.Token{Kind: token.PLUS, Line: line, Col: col}, nil
	case '-':
		l.advance()
		return token.Token{Kind: token.MINUS, Line: line, Col: col}, nil
	case '*':
		l.advance()
		return token.Token{Kind: token.STAR, Line: line, Col: col}, nil
	case '/':
		l.advance()
		return token.Token{Kind: token.SLASH, Line: line, Col: col}, nil
	case '=':
		return two('=', token.EQ, token.ASSIGN), nil
	case '!':
		return two('=', token.NEQ, token.BANG), nil
	case '<':
		return two('=', token.LE, token.LT), nil
	case '>':
		return two('=', token.GE, token.GT), nil
	case '&':
		l.advance()
		if l.peek() == '&' {
			l.advance()
			return token.Token{Kind: token.AND, Line: line, Col: col}, nil
		}
		return token.Token{}, &lang.LexError{Pos: lang.Position{Line: line, Col: col}, Msg: "unexpected character '&'"}
	case '|':
		l.advance()
		if l.peek() == '|' {
			l.advance()
			return token.Token{Kind: token.OR, Line: line, Col: col}, nil
		}
		return token.Token{}, &lang.LexError{Pos: lang.Position{Line: line, Col: col}, Msg: "unexpected character '|'"}
	}

	l.advance()
	return token.Token{}, &lang.LexError{
		Pos: lang.Position{Line: line, Col: col},
		Msg: "unexpected character " + string(r),
	}
}

func (l *Lexer) lexNumber(line, col int) (token.Token, error) {
	var sb strings.Builder
	for !l.atEnd() && isDigit(l.peek()) {
		sb.WriteRune(l.advance())
	}
	if l.peek() == '.' && isDigit(l.peekAt(1)) {
		sb.WriteRune(l.advance())
		for !l.atEnd() && isDigit(l.peek()) {
			sb.WriteRune(l.advance())
		}
	}
	return token.Token{Kind: token.NUMBER, Lit: sb.String(), Line: line, Col: col}, nil
}

func (l *Lexer) lexIdent(line, col int) (token.Token, error) {
	var sb strings.Builder
	for !l.atEnd() && isAlnum(l.peek()) {
		sb.WriteRune(l.advance())
	}
	lit := sb.String()
	return token.Token{Kind: token.Lookup(lit), Lit: lit, Line: line, Col: col}, nil
}

func (l *Lexer) lexString(line, col int) (token.Token, error) {
	l.advance() // opening quote
	var sb strings.Builder
	for {
		if l.atEnd() {
			return token.Token{}, &lang.LexError{Pos: lang.Position{Line: line, Col: col}, Msg: "unterminated string"}
		}
		r := l.advance()
		if r == '"' {
			break
		}
		if r == '\\' {
			if l.atEnd() {
				return token.Token{}, &lang.LexError{Pos: lang.Position{Line: line, Col: col}, Msg: "unterminated string"}
			}
			esc := l.advance()
			switch esc {
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			case '"':
				sb.WriteRune('"')
			case '\\':
				sb.WriteRune('\\')
			default:
				sb.WriteRune(esc)
			}
			continue
		}
		sb.WriteRune(r)
	}
	return token.Token{Kind: token.STRING, Lit: sb.String(), Line: line, Col: col}, nil
}

// Tokenize scans all of src into a token slice terminated by an EOF token.
func Tokenize(src string) ([]token.Token, error) {
	l := New(src)
	var out []token.Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
		if tok.Kind == token.EOF {
			return out, nil
		}
	}
}
