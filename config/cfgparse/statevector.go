package cfgparse

import (
	"github.com/hashicorp/go-multierror"

	"j5.nz/surefire/config/ast"
	"j5.nz/surefire/config/token"
)

// ParseStateVector tokenizes and parses the state-vector config
// flavor: a sequence of "[Name]" or legacy "[REGION/Name]" sections,
// each containing element declarations.
func ParseStateVector(file string, src []byte) (*ast.StateVectorConfig, error) {
	toks, lexErr := token.New(file, src).Tokenize()
	c := newCursor(file, toks)
	if lexErr != nil {
		c.errs = multierror.Append(c.errs, lexErr)
	}
	cfg := &ast.StateVectorConfig{}
	c.skipNewlines()
	for !c.atEOF() {
		secTok, ok := c.expectKind(token.SECTION, "a \"[Name]\" section header")
		if !ok {
			c.advance()
			c.skipNewlines()
			continue
		}
		c.skipNewlines()
		region := ast.RegionSection{Name: splitSectionName(secTok.Text), Line: secTok.Line, Col: secTok.Col}
		for c.peek().Kind == token.IDENT {
			decl, ok := c.parseElemDecl()
			if !ok {
				break
			}
			region.Elements = append(region.Elements, decl)
		}
		cfg.Regions = append(cfg.Regions, region)
	}
	if c.errs != nil {
		return cfg, c.errs.ErrorOrNil()
	}
	return cfg, nil
}
