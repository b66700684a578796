// Package errs defines Surefire's stable, externally visible error
// codes and the positioned diagnostic type
// every fallible core operation returns.
package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// Code is one stable error code, grouped by subsystem (state vector,
// tokenizer, expression parser, assembler, config parser, runtime)
// plus the general codes shared across subsystems.
type Code int

const (
	// General / API misuse.
	Null Code = iota
	TypeMismatch
	SizeMismatch
	Uninitialized
	KeyNotFound
	Empty
	Unreachable

	// StateVector construction.
	NullElementArray
	NullElement
	NullRegion
	LayoutMismatch

	// Tokenizer.
	TokenizeInvalid

	// ExpressionParser.
	ExpEmpty
	ExpParen
	ExpTok
	ExpSyntax

	// Assembler.
	SVElem
	ElemDupe
	NoG
	NoS
	GType
	SType
	LocalRefsSV
	UseBeforeInit
	SelfRef
	LocalRoll
	ElemRO
	TrExit
	ExcElem
	ExcOvfl
	ExcArity
	ExcWin
	ExcFunc

	// ConfigParser.
	CfgSyntax
	CfgDupe
	CfgEmptyRegion

	// Runtime.
	NonMonotonicTime
)

var codeNames = map[Code]string{
	Null:              "NULL",
	TypeMismatch:      "TYPE_MISMATCH",
	SizeMismatch:      "SIZE_MISMATCH",
	Uninitialized:     "UNINITIALIZED",
	KeyNotFound:       "KEY_NOT_FOUND",
	Empty:             "EMPTY",
	Unreachable:       "UNREACHABLE",
	NullElementArray:  "NULL_ELEMENT_ARRAY",
	NullElement:       "NULL_ELEMENT",
	NullRegion:        "NULL_REGION",
	LayoutMismatch:    "LAYOUT_MISMATCH",
	TokenizeInvalid:   "TOKENIZE_INVALID",
	ExpEmpty:          "EXP_EMPTY",
	ExpParen:          "EXP_PAREN",
	ExpTok:            "EXP_TOK",
	ExpSyntax:         "EXP_SYNTAX",
	SVElem:            "SV_ELEM",
	ElemDupe:          "ELEM_DUPE",
	NoG:               "NO_G",
	NoS:               "NO_S",
	GType:             "G_TYPE",
	SType:             "S_TYPE",
	LocalRefsSV:       "LOCAL_REFS_SV",
	UseBeforeInit:     "USE_BEFORE_INIT",
	SelfRef:           "SELF_REF",
	LocalRoll:         "LOCAL_ROLL",
	ElemRO:            "ELEM_RO",
	TrExit:            "TR_EXIT",
	ExcElem:           "EXC_ELEM",
	ExcOvfl:           "EXC_OVFL",
	ExcArity:          "EXC_ARITY",
	ExcWin:            "EXC_WIN",
	ExcFunc:           "EXC_FUNC",
	CfgSyntax:         "CFG_SYNTAX",
	CfgDupe:           "CFG_DUPE",
	CfgEmptyRegion:    "CFG_EMPTY_REGION",
	NonMonotonicTime:  "NON_MONOTONIC_TIME",
}

func (c Code) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("CODE(%d)", int(c))
}

// Error is the single result type every fallible Surefire operation
// returns. Compile-time diagnostics carry a 1-indexed Line/Col; a
// file-global diagnostic (e.g. "no states") uses -1, -1.
type Error struct {
	Code Code
	Msg  string
	File string
	Line int
	Col  int
	// cause carries an internal Go stack trace (via pkg/errors) for
	// debugging; it is never part of the stable Code/Msg surface.
	cause error
}

func (e *Error) Error() string {
	if e.Line < 0 {
		return fmt.Sprintf("%s: %s", e.Code, e.Msg)
	}
	loc := e.File
	if loc == "" {
		loc = "<config>"
	}
	return fmt.Sprintf("%s:%d:%d: %s: %s", loc, e.Line, e.Col, e.Code, e.Msg)
}

// Unwrap exposes the internal cause, if any, to errors.Is/As.
func (e *Error) Unwrap() error { return e.cause }

// New builds a file-global diagnostic (line/col -1, -1).
func New(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...), Line: -1, Col: -1, cause: errors.WithStack(fmt.Errorf(format, args...))}
}

// At builds a positioned diagnostic.
func At(code Code, file string, line, col int, format string, args ...interface{}) *Error {
	msg := fmt.Sprintf(format, args...)
	return &Error{Code: code, Msg: msg, File: file, Line: line, Col: col, cause: errors.WithStack(fmt.Errorf(format, args...))}
}

// Is reports whether err is, or wraps, a *Error with the given code.
// For an accumulated multi-diagnostic error every diagnostic in the
// chain is checked, not only the first.
func Is(err error, code Code) bool {
	for ; err != nil; err = errors.Unwrap(err) {
		var e *Error
		if errors.As(err, &e) && e.Code == code {
			return true
		}
	}
	return false
}
