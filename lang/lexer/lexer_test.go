package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/caivega/cascadelang/lang/lexer"
	"github.com/caivega/cascadelang/lang/token"
)

func kinds(t *testing.T, src string) []token.Kind {
	toks, err := lexer.Tokenize(src)
	require.NoError(t, err)
	out := make([]token.Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestKeywordsAndPunctuation(t *testing.T) {
	got := kinds(t, `struct Foo { mandatory bar, optional baz }`)
	require.Equal(t, []token.Kind{
		token.STRUCT, token.IDENT, token.LBRACE,
		token.MANDATORY, token.IDENT, token.COMMA,
		token.OPTIONAL, token.IDENT, token.RBRACE,
		token.EOF,
	}, got)
}

func TestNumberAndOperators(t *testing.T) {
	toks, err := lexer.Tokenize("1 2.5 == != <= >= && || !")
	require.NoError(t, err)
	require.Equal(t, token.NUMBER, toks[0].Kind)
	require.Equal(t, "1", toks[0].Lit)
	require.Equal(t, token.NUMBER, toks[1].Kind)
	require.Equal(t, "2.5", toks[1].Lit)
	require.Equal(t, token.EQ, toks[2].Kind)
	require.Equal(t, token.NEQ, toks[3].Kind)
	require.Equal(t, token.LE, toks[4].Kind)
	require.Equal(t, token.GE, toks[5].Kind)
	require.Equal(t, token.AND, toks[6].Kind)
	require.Equal(t, token.OR, toks[7].Kind)
	require.Equal(t, token.BANG, toks[8].Kind)
}

func TestStringEscapes(t *testing.T) {
	toks, err := lexer.Tokenize(`"a\nb\tc\"d\\e"`)
	require.NoError(t, err)
	require.Equal(t, "a\nb\tc\"d\\e", toks[0].Lit)
}

func TestLineComment(t *testing.T) {
	got := kinds(t, "let x = 1 // trailing comment\nlet y = 2")
	require.Equal(t, []token.Kind{
		token.LET, token.IDENT, token.ASSIGN, token.NUMBER,
		token.LET, token.IDENT, token.ASSIGN, token.NUMBER,
		token.EOF,
	}, got)
}

func TestUnterminatedStringErrors(t *testing.T) {
	_, err := lexer.Tokenize(`"unterminated`)
	require.Error(t, err)
}

func TestUnexpectedCharacterErrors(t *testing.T) {
	_, err := lexer.Tokenize("@")
	require.Error(t, err)
}

func TestSingleAmpersandErrors(t *testing.T) {
	_, err := lexer.Tokenize("&")
	require.Error(t, err)
}

func TestLineColumnTracking(t *testing.T) {
	toks, err := lexer.Tokenize("let x\n= 1")
	require.NoError(t, err)
	// "=" is on line 2.
	var assign token.Token
	for _, tok := range toks {
		if tok.Kind == token.ASSIGN {
			assign = tok
		}
	}
	require.Equal(t, 2, assign.Line)
}
