package exprparse_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"j5.nz/surefire/config/ast"
	"j5.nz/surefire/config/exprparse"
	"j5.nz/surefire/config/token"
	"j5.nz/surefire/errs"
)

func lex(t *testing.T, src string) []token.Token {
	t.Helper()
	toks, err := token.New("t.expr", []byte(src)).Tokenize()
	require.NoError(t, err)
	// drop the trailing EOF token; Parse takes exactly one fragment
	return toks[:len(toks)-1]
}

func TestParsePrecedence(t *testing.T) {
	e, err := exprparse.Parse("t.expr", lex(t, "1 + 2 * 3"), 0, 0)
	require.NoError(t, err)
	require.Equal(t, ast.ExprBinOp, e.Kind)
	require.Equal(t, "+", e.Op)
	require.Equal(t, ast.ExprConst, e.L.Kind)
	require.Equal(t, ast.ExprBinOp, e.R.Kind)
	require.Equal(t, "*", e.R.Op)
}

func TestParseDoubleInequalityRewrite(t *testing.T) {
	e, err := exprparse.Parse("t.expr", lex(t, "a < b < c"), 0, 0)
	require.NoError(t, err)
	require.Equal(t, ast.ExprBinOp, e.Kind)
	require.Equal(t, "AND", e.Op)
	require.Equal(t, "<", e.L.Op)
	require.Equal(t, "a", e.L.L.Name)
	require.Equal(t, "b", e.L.R.Name)
	require.Equal(t, "<", e.R.Op)
	require.Equal(t, "b", e.R.L.Name, "the shared middle operand is reused, not re-parsed")
	require.Equal(t, "c", e.R.R.Name)
}

func TestParseUnaryRightAssociative(t *testing.T) {
	e, err := exprparse.Parse("t.expr", lex(t, "NOT NOT x"), 0, 0)
	require.NoError(t, err)
	require.Equal(t, ast.ExprUnary, e.Kind)
	require.Equal(t, "NOT", e.Op)
	require.Equal(t, ast.ExprUnary, e.L.Kind)
}

func TestParseCall(t *testing.T) {
	e, err := exprparse.Parse("t.expr", lex(t, "ROLL_AVG(x, 5)"), 0, 0)
	require.NoError(t, err)
	require.Equal(t, ast.ExprCall, e.Kind)
	require.Equal(t, "ROLL_AVG", e.Name)
	require.Len(t, e.Args, 2)
}

func TestParseParenGrouping(t *testing.T) {
	e, err := exprparse.Parse("t.expr", lex(t, "(1 + 2) * 3"), 0, 0)
	require.NoError(t, err)
	require.Equal(t, "*", e.Op)
	require.Equal(t, "+", e.L.Op)
}

func TestParseEmptyExpression(t *testing.T) {
	_, err := exprparse.Parse("t.expr", nil, 3, 4)
	require.Error(t, err)
	require.True(t, errs.Is(err, errs.ExpEmpty))
}

func TestParseUnbalancedParen(t *testing.T) {
	_, err := exprparse.Parse("t.expr", lex(t, "(1 + 2"), 0, 0)
	require.Error(t, err)
	require.True(t, errs.Is(err, errs.ExpParen))
}

func TestParseDisallowedToken(t *testing.T) {
	_, err := exprparse.Parse("t.expr", lex(t, "+"), 0, 0)
	require.Error(t, err)
	require.True(t, errs.Is(err, errs.ExpTok))
}

func TestParseTrailingGarbageIsSyntaxError(t *testing.T) {
	_, err := exprparse.Parse("t.expr", lex(t, "1 2"), 0, 0)
	require.Error(t, err)
	require.True(t, errs.Is(err, errs.ExpSyntax))
}

func TestParseNumberAndBoolHelpers(t *testing.T) {
	f, err := exprparse.ParseNumber("3.5")
	require.NoError(t, err)
	require.Equal(t, 3.5, f)

	f, err = exprparse.ParseNumber("TRUE")
	require.NoError(t, err)
	require.Equal(t, 1.0, f)

	require.True(t, exprparse.IsBoolLiteral("FALSE"))
	require.False(t, exprparse.IsBoolLiteral("x"))
	require.True(t, exprparse.BoolLiteralValue("true"))
	require.False(t, exprparse.BoolLiteralValue("FALSE"))
}
