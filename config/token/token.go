// Package token implements Surefire's line/column-aware tokenizer: a
// lexer producing a flat stream of typed tokens for both
// config-language flavors (state-vector and state-machine) and for
// expression fragments embedded in either.
package token

import "fmt"

// Kind identifies a token's lexical category.
type Kind int

const (
	EOF Kind = iota
	SECTION    // "[" NAME ("/" NAME)? "]"
	LABEL      // "." NAME
	IDENT
	OPERATOR   // == != <= < >= > = -> + - * / AND/and OR/or NOT/not
	CONSTANT   // numeric literal or true/false/TRUE/FALSE
	COLON
	NEWLINE
	LPAREN
	RPAREN
	LBRACE
	RBRACE
	COMMA
	ANNOTATION // "@" NAME
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case SECTION:
		return "SECTION"
	case LABEL:
		return "LABEL"
	case IDENT:
		return "IDENT"
	case OPERATOR:
		return "OPERATOR"
	case CONSTANT:
		return "CONSTANT"
	case COLON:
		return "COLON"
	case NEWLINE:
		return "NEWLINE"
	case LPAREN:
		return "LPAREN"
	case RPAREN:
		return "RPAREN"
	case LBRACE:
		return "LBRACE"
	case RBRACE:
		return "RBRACE"
	case COMMA:
		return "COMMA"
	case ANNOTATION:
		return "ANNOTATION"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Token is one lexical unit: its kind, literal text, and 1-indexed
// source position.
type Token struct {
	Kind Kind
	Text string
	Line int
	Col  int
}

func (t Token) String() string {
	if t.Text != "" {
		return fmt.Sprintf("%s(%q)", t.Kind, t.Text)
	}
	return t.Kind.String()
}
