package token_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"j5.nz/surefire/config/token"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, tk := range toks {
		out[i] = tk.Kind
	}
	return out
}

func TestTokenizeSectionAndDecl(t *testing.T) {
	toks, err := token.New("t.cfg", []byte("[Nav]\nU32 foo\n")).Tokenize()
	require.NoError(t, err)
	require.Equal(t, []token.Kind{
		token.SECTION, token.NEWLINE,
		token.IDENT, token.IDENT, token.NEWLINE,
		token.EOF,
	}, kinds(toks))
	require.Equal(t, "Nav", toks[0].Text)
}

func TestTokenizeLegacyRegionSection(t *testing.T) {
	toks, err := token.New("t.cfg", []byte("[REGION/Nav]\n")).Tokenize()
	require.NoError(t, err)
	require.Equal(t, "REGION/Nav", toks[0].Text)
}

func TestTokenizeLabelAndAnnotation(t *testing.T) {
	toks, err := token.New("t.cfg", []byte("U32 x @READ_ONLY\n.ENTRY\n")).Tokenize()
	require.NoError(t, err)
	require.Equal(t, []token.Kind{
		token.IDENT, token.IDENT, token.ANNOTATION, token.NEWLINE,
		token.LABEL, token.NEWLINE,
		token.EOF,
	}, kinds(toks))
	require.Equal(t, "READ_ONLY", toks[2].Text)
	require.Equal(t, "ENTRY", toks[4].Text)
}

func TestTokenizeAliasAnnotationValue(t *testing.T) {
	toks, err := token.New("t.cfg", []byte("U32 x @ALIAS=G\n")).Tokenize()
	require.NoError(t, err)
	require.Equal(t, []token.Kind{
		token.IDENT, token.IDENT, token.ANNOTATION, token.OPERATOR, token.IDENT, token.NEWLINE,
		token.EOF,
	}, kinds(toks))
	require.Equal(t, "ALIAS", toks[2].Text)
	require.Equal(t, "=", toks[3].Text)
	require.Equal(t, "G", toks[4].Text)
}

func TestTokenizeOperatorsAndConstants(t *testing.T) {
	toks, err := token.New("t.cfg", []byte("a == b != c <= d >= e -> f AND g OR NOT h true FALSE")).Tokenize()
	require.NoError(t, err)
	var ops []string
	for _, tk := range toks {
		if tk.Kind == token.OPERATOR {
			ops = append(ops, tk.Text)
		}
	}
	require.Equal(t, []string{"==", "!=", "<=", ">=", "->", "AND", "OR", "NOT"}, ops)

	var consts []string
	for _, tk := range toks {
		if tk.Kind == token.CONSTANT {
			consts = append(consts, tk.Text)
		}
	}
	require.Equal(t, []string{"true", "FALSE"}, consts)
}

func TestTokenizeParensBracesCommaColon(t *testing.T) {
	toks, err := token.New("t.cfg", []byte("ROLL_AVG(x, 5): y = 1 { z = 2 }")).Tokenize()
	require.NoError(t, err)
	ks := kinds(toks)
	require.Contains(t, ks, token.LPAREN)
	require.Contains(t, ks, token.RPAREN)
	require.Contains(t, ks, token.COMMA)
	require.Contains(t, ks, token.COLON)
	require.Contains(t, ks, token.LBRACE)
	require.Contains(t, ks, token.RBRACE)
}

func TestTokenizeAlwaysEndsWithEOFEvenOnError(t *testing.T) {
	toks, err := token.New("t.cfg", []byte("U32 x\n$$$\n")).Tokenize()
	require.Error(t, err)
	require.NotEmpty(t, toks)
	require.Equal(t, token.EOF, toks[len(toks)-1].Kind)
}
