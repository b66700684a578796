package token

import (
	"github.com/hashicorp/go-multierror"

	"j5.nz/surefire/errs"
)

var keywordOperators = map[string]bool{
	"AND": true, "and": true,
	"OR": true, "or": true,
	"NOT": true, "not": true,
}

var boolConstants = map[string]bool{
	"true": true, "false": true, "TRUE": true, "FALSE": true,
}

// Lexer tokenizes Surefire config-language source using a
// byte-at-a-time scanner with explicit peek/advance/line/col
// tracking, generalized to this grammar's token set.
type Lexer struct {
	file string
	src  []byte
	pos  int
	line int
	col  int
}

// New builds a Lexer over src. file is used only to annotate
// diagnostics.
func New(file string, src []byte) *Lexer {
	return &Lexer{file: file, src: src, pos: 0, line: 1, col: 1}
}

func (l *Lexer) atEnd() bool { return l.pos >= len(l.src) }

func (l *Lexer) peek() byte {
	if l.atEnd() {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekAt(off int) byte {
	p := l.pos + off
	if p >= len(l.src) {
		return 0
	}
	return l.src[p]
}

func (l *Lexer) advance() byte {
	ch := l.src[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return ch
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isIdentChar(ch byte) bool { return isLetter(ch) || isDigit(ch) }

// Tokenize scans the whole source and returns its token stream. Any
// unrecognized characters are reported as TokenizeInvalid diagnostics,
// accumulated into a single *multierror.Error so one pass reports
// every bad character rather than stopping at the first.
// The returned token stream always ends with a single EOF token and
// is usable even when err is non-nil, for parsers that want to report
// further downstream context.
func (l *Lexer) Tokenize() ([]Token, error) {
	var toks []Token
	var errAcc *multierror.Error
	for {
		l.skipInsignificant()
		if l.atEnd() {
			toks = append(toks, Token{Kind: EOF, Line: l.line, Col: l.col})
			break
		}
		line, col := l.line, l.col
		ch := l.peek()
		switch {
		case ch == '\n':
			l.advance()
			toks = append(toks, Token{Kind: NEWLINE, Line: line, Col: col})
		case ch == '[':
			tok, err := l.scanSection()
			if err != nil {
				errAcc = multierror.Append(errAcc, err)
				continue
			}
			toks = append(toks, tok)
		case ch == '.' && isLetter(l.peekAt(1)):
			toks = append(toks, l.scanLabel())
		case ch == '@':
			toks = append(toks, l.scanAnnotation())
		case isLetter(ch):
			toks = append(toks, l.scanIdentOrKeyword())
		case isDigit(ch) || (ch == '.' && isDigit(l.peekAt(1))):
			toks = append(toks, l.scanNumber())
		case ch == ':':
			l.advance()
			toks = append(toks, Token{Kind: COLON, Text: ":", Line: line, Col: col})
		case ch == '(':
			l.advance()
			toks = append(toks, Token{Kind: LPAREN, Text: "(", Line: line, Col: col})
		case ch == ')':
			l.advance()
			toks = append(toks, Token{Kind: RPAREN, Text: ")", Line: line, Col: col})
		case ch == '{':
			l.advance()
			toks = append(toks, Token{Kind: LBRACE, Text: "{", Line: line, Col: col})
		case ch == '}':
			l.advance()
			toks = append(toks, Token{Kind: RBRACE, Text: "}", Line: line, Col: col})
		case ch == ',':
			l.advance()
			toks = append(toks, Token{Kind: COMMA, Text: ",", Line: line, Col: col})
		case isOperatorStart(ch):
			toks = append(toks, l.scanOperator())
		default:
			l.advance()
			errAcc = multierror.Append(errAcc, errs.At(errs.TokenizeInvalid, l.file, line, col, "unrecognized character %q", ch))
		}
	}
	if errAcc != nil {
		return toks, errAcc.ErrorOrNil()
	}
	return toks, nil
}

// skipInsignificant elides whitespace other than newlines and strips
// '#'-to-end-of-line comments; newlines themselves are
// preserved for the caller to tokenize as NEWLINE.
func (l *Lexer) skipInsignificant() {
	for !l.atEnd() {
		ch := l.peek()
		if ch == ' ' || ch == '\t' || ch == '\r' {
			l.advance()
		} else if ch == '#' {
			for !l.atEnd() && l.peek() != '\n' {
				l.advance()
			}
		} else {
			return
		}
	}
}

func (l *Lexer) scanSection() (Token, error) {
	line, col := l.line, l.col
	l.advance() // consume '['
	start := l.pos
	for !l.atEnd() && l.peek() != ']' && l.peek() != '\n' {
		l.advance()
	}
	if l.atEnd() || l.peek() != ']' {
		return Token{}, errs.At(errs.TokenizeInvalid, l.file, line, col, "unterminated section header")
	}
	text := string(l.src[start:l.pos])
	l.advance() // consume ']'
	return Token{Kind: SECTION, Text: text, Line: line, Col: col}, nil
}

func (l *Lexer) scanLabel() Token {
	line, col := l.line, l.col
	l.advance() // consume '.'
	start := l.pos
	for !l.atEnd() && isIdentChar(l.peek()) {
		l.advance()
	}
	return Token{Kind: LABEL, Text: string(l.src[start:l.pos]), Line: line, Col: col}
}

func (l *Lexer) scanAnnotation() Token {
	line, col := l.line, l.col
	l.advance() // consume '@'
	start := l.pos
	for !l.atEnd() && isIdentChar(l.peek()) {
		l.advance()
	}
	return Token{Kind: ANNOTATION, Text: string(l.src[start:l.pos]), Line: line, Col: col}
}

func (l *Lexer) scanIdentOrKeyword() Token {
	line, col := l.line, l.col
	start := l.pos
	for !l.atEnd() && isIdentChar(l.peek()) {
		l.advance()
	}
	text := string(l.src[start:l.pos])
	switch {
	case keywordOperators[text]:
		return Token{Kind: OPERATOR, Text: text, Line: line, Col: col}
	case boolConstants[text]:
		return Token{Kind: CONSTANT, Text: text, Line: line, Col: col}
	default:
		return Token{Kind: IDENT, Text: text, Line: line, Col: col}
	}
}

func (l *Lexer) scanNumber() Token {
	line, col := l.line, l.col
	start := l.pos
	for !l.atEnd() && isDigit(l.peek()) {
		l.advance()
	}
	if l.peek() == '.' && isDigit(l.peekAt(1)) {
		l.advance()
		for !l.atEnd() && isDigit(l.peek()) {
			l.advance()
		}
	}
	return Token{Kind: CONSTANT, Text: string(l.src[start:l.pos]), Line: line, Col: col}
}

func isOperatorStart(ch byte) bool {
	switch ch {
	case '=', '!', '<', '>', '-', '+', '*', '/':
		return true
	}
	return false
}

func (l *Lexer) scanOperator() Token {
	line, col := l.line, l.col
	two := string([]byte{l.peek(), l.peekAt(1)})
	switch two {
	case "==", "!=", "<=", ">=", "->":
		l.advance()
		l.advance()
		return Token{Kind: OPERATOR, Text: two, Line: line, Col: col}
	}
	one := l.advance()
	return Token{Kind: OPERATOR, Text: string(one), Line: line, Col: col}
}
