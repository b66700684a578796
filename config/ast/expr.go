// Package ast defines Surefire's untyped parse tree: the expression
// AST the tokenizer-fed parsers produce and the
// state-vector / state-machine config parse trees. None
// of these types carry resolved types or bound elements — that is
// the assembler's job; ast is pure syntax plus position.
package ast

// ExprKind distinguishes an expression AST node's shape.
type ExprKind int

const (
	ExprConst ExprKind = iota
	ExprIdent
	ExprBinOp
	ExprUnary
	ExprCall
)

// Expr is one untyped expression AST node. Not every field is
// meaningful for every Kind: Const uses Text; Ident uses Name; BinOp
// uses Op/L/R; Unary uses Op/L; Call uses Name/Args.
type Expr struct {
	Kind ExprKind
	Line int
	Col  int

	Text string // ExprConst: raw literal text ("true", "3.14", "42")
	Name string // ExprIdent / ExprCall: identifier or function name

	Op string // ExprBinOp / ExprUnary: operator spelling
	L  *Expr  // ExprBinOp left operand; ExprUnary operand
	R  *Expr  // ExprBinOp right operand

	Args []*Expr // ExprCall arguments
}
