package cfgparse

import (
	"github.com/hashicorp/go-multierror"

	"j5.nz/surefire/config/ast"
	"j5.nz/surefire/config/exprparse"
	"j5.nz/surefire/config/token"
)

// ParseStateMachine tokenizes and parses the state-machine config
// flavor: an optional "[STATE_VECTOR]" section, an optional "[LOCAL]"
// section, and one "[StateName]" section per state, each holding
// .ENTRY/.STEP/.EXIT labels.
func ParseStateMachine(file string, src []byte) (*ast.StateMachineConfig, error) {
	toks, lexErr := token.New(file, src).Tokenize()
	c := newCursor(file, toks)
	if lexErr != nil {
		c.errs = multierror.Append(c.errs, lexErr)
	}
	cfg := &ast.StateMachineConfig{}
	c.skipNewlines()
	for !c.atEOF() {
		secTok, ok := c.expectKind(token.SECTION, "a section header")
		if !ok {
			c.advance()
			c.skipNewlines()
			continue
		}
		c.skipNewlines()
		switch secTok.Text {
		case "STATE_VECTOR":
			for c.peek().Kind == token.IDENT {
				decl, ok := c.parseElemDecl()
				if !ok {
					break
				}
				cfg.SVBindings = append(cfg.SVBindings, decl)
			}
		case "LOCAL":
			for c.peek().Kind == token.IDENT {
				decl, ok := c.parseLocalDecl()
				if !ok {
					break
				}
				cfg.Locals = append(cfg.Locals, decl)
			}
		default:
			state := c.parseStateSection(secTok)
			cfg.States = append(cfg.States, state)
		}
	}
	if c.errs != nil {
		return cfg, c.errs.ErrorOrNil()
	}
	return cfg, nil
}

// parseLocalDecl parses "TYPE NAME = expr { @READ_ONLY }".
func (c *cursor) parseLocalDecl() (ast.LocalDecl, bool) {
	typeTok, ok := c.expectKind(token.IDENT, "a type name")
	if !ok {
		return ast.LocalDecl{}, false
	}
	nameTok, ok := c.expectKind(token.IDENT, "a local element name")
	if !ok {
		return ast.LocalDecl{}, false
	}
	eqTok, ok := c.expectOperator("=")
	if !ok {
		return ast.LocalDecl{}, false
	}
	exprToks := c.scanUntilNewlineOrAnnotation()
	init, err := exprparse.Parse(c.file, exprToks, eqTok.Line, eqTok.Col+1)
	if err != nil {
		c.errs = multierror.Append(c.errs, err)
	}
	anns := c.parseAnnotations()
	readOnly := false
	for _, a := range anns {
		if a.Name == "READ_ONLY" {
			readOnly = true
		}
	}
	c.skipNewlines()
	return ast.LocalDecl{Type: typeTok.Text, Name: nameTok.Text, Init: init, ReadOnly: readOnly, Line: typeTok.Line, Col: typeTok.Col}, true
}

func (c *cursor) expectOperator(text string) (token.Token, bool) {
	tok := c.peek()
	if tok.Kind != token.OPERATOR || tok.Text != text {
		c.fail(tok, "expected %q, got %s", text, tok)
		return token.Token{}, false
	}
	return c.advance(), true
}

// scanUntilNewlineOrAnnotation collects tokens up to (not including)
// the next NEWLINE, ANNOTATION, or EOF, tracking paren depth so a
// function call's own newlines (none exist in this grammar, but
// commas do) don't confuse the boundary.
func (c *cursor) scanUntilNewlineOrAnnotation() []token.Token {
	var out []token.Token
	depth := 0
	for {
		tok := c.peek()
		if tok.Kind == token.EOF {
			break
		}
		if depth == 0 && (tok.Kind == token.NEWLINE || tok.Kind == token.ANNOTATION) {
			break
		}
		if tok.Kind == token.LPAREN {
			depth++
		} else if tok.Kind == token.RPAREN {
			depth--
		}
		out = append(out, c.advance())
	}
	return out
}

func (c *cursor) parseStateSection(secTok token.Token) ast.StateSection {
	state := ast.StateSection{Name: secTok.Text, Line: secTok.Line, Col: secTok.Col}
	for c.peek().Kind == token.LABEL {
		labTok := c.advance()
		c.skipNewlines()
		stmts := c.parseStmtList(token.LABEL, token.SECTION)
		state.Labels = append(state.Labels, ast.Label{Name: labTok.Text, Stmts: stmts, Line: labTok.Line, Col: labTok.Col})
	}
	return state
}

// parseStmtList parses statements until the next token is one of the
// given stop kinds, EOF, or RBRACE (the end of a brace block).
func (c *cursor) parseStmtList(stopKinds ...token.Kind) []*ast.Stmt {
	var stmts []*ast.Stmt
	for {
		c.skipNewlines()
		k := c.peek().Kind
		if k == token.EOF || k == token.RBRACE {
			break
		}
		stop := false
		for _, s := range stopKinds {
			if k == s {
				stop = true
				break
			}
		}
		if stop {
			break
		}
		stmt := c.parseStmt()
		if stmt == nil {
			c.advance()
			continue
		}
		stmts = append(stmts, stmt)
	}
	return stmts
}

// scanStmtHead collects the tokens of one statement's leading
// expression/assignment, tracking paren depth, stopping at (and not
// consuming) the first depth-0 COLON, LBRACE, NEWLINE, RBRACE, EOF,
// SECTION, or LABEL token.
func (c *cursor) scanStmtHead() []token.Token {
	var out []token.Token
	depth := 0
	for {
		tok := c.peek()
		if depth == 0 {
			switch tok.Kind {
			case token.COLON, token.LBRACE, token.NEWLINE, token.RBRACE, token.EOF, token.SECTION, token.LABEL:
				return out
			}
		}
		if tok.Kind == token.LPAREN {
			depth++
		} else if tok.Kind == token.RPAREN {
			depth--
		}
		out = append(out, c.advance())
	}
}

func isElseKeyword(t token.Token) bool {
	return t.Kind == token.IDENT && t.Text == "ELSE"
}

// parseStmt parses one statement: assignment, transition, or guarded
// (single-statement or brace-block form, with optional ELSE).
func (c *cursor) parseStmt() *ast.Stmt {
	start := c.peek()
	if start.Kind == token.OPERATOR && start.Text == "->" {
		c.advance()
		destTok, ok := c.expectKind(token.IDENT, "a destination state name")
		if !ok {
			return nil
		}
		c.consumeStmtEnd()
		return &ast.Stmt{Kind: ast.StmtTransition, Dest: destTok.Text, Line: start.Line, Col: start.Col}
	}

	head := c.scanStmtHead()
	term := c.peek()
	switch term.Kind {
	case token.COLON, token.LBRACE:
		return c.finishGuarded(start, head, term)
	default:
		if len(head) == 0 {
			c.fail(term, "expected a statement, got %s", term)
			return nil
		}
		if len(head) < 2 || head[0].Kind != token.IDENT || head[1].Kind != token.OPERATOR || head[1].Text != "=" {
			c.fail(head[0], "malformed statement")
			c.consumeStmtEnd()
			return nil
		}
		value, err := exprparse.Parse(c.file, head[2:], head[1].Line, head[1].Col+1)
		if err != nil {
			c.errs = multierror.Append(c.errs, err)
		}
		c.consumeStmtEnd()
		return &ast.Stmt{Kind: ast.StmtAssign, Target: head[0].Text, Value: value, Line: start.Line, Col: start.Col}
	}
}

// consumeStmtEnd swallows a run of NEWLINE terminators, if present;
// RBRACE/SECTION/LABEL/EOF terminators are left for the caller.
func (c *cursor) consumeStmtEnd() {
	if c.peek().Kind == token.NEWLINE {
		c.skipNewlines()
	}
}

func (c *cursor) finishGuarded(start token.Token, head []token.Token, term token.Token) *ast.Stmt {
	guard, err := exprparse.Parse(c.file, head, start.Line, start.Col)
	if err != nil {
		c.errs = multierror.Append(c.errs, err)
	}
	braced := term.Kind == token.LBRACE
	c.advance() // consume ':' or '{'
	stmt := &ast.Stmt{Kind: ast.StmtGuarded, Guard: guard, Braced: braced, Line: start.Line, Col: start.Col}
	if braced {
		c.skipNewlines()
		stmt.ThenBlock = c.parseStmtList()
		c.expectKind(token.RBRACE, "'}'")
	} else {
		stmt.Then = c.parseStmt()
	}
	c.skipNewlines()
	if isElseKeyword(c.peek()) {
		c.advance()
		stmt.HasElse = true
		switch c.peek().Kind {
		case token.LBRACE:
			c.advance()
			c.skipNewlines()
			stmt.ElseBlock = c.parseStmtList()
			c.expectKind(token.RBRACE, "'}'")
			stmt.ElseBraced = true
		case token.COLON:
			c.advance()
			stmt.ElseStmt = c.parseStmt()
		default:
			c.fail(c.peek(), "expected ':' or '{' after ELSE")
		}
	}
	c.consumeStmtEnd()
	return stmt
}
