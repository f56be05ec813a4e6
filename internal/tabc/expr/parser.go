package expr

type parserState struct {
	tokens []token
	pos    int
}

// Validate reports whether text is a well-formed arithmetic expression:
// numbers, identifiers, calls, parentheses, unary +/- and binary + - * / %.
func Validate(text string) error {
	state, err := newParser(text)
	if err != nil {
		return err
	}

	if state.current().typ == tokenEOF {
		return expressionError("expression is empty")
	}

	if err := state.parseExpression(); err != nil {
		return err
	}

	return state.expectEOF()
}

// ValidateArguments reports whether text is an empty or comma-separated list
// of expressions, as found between the parentheses of a call.
func ValidateArguments(text string) error {
	state, err := newParser(text)
	if err != nil {
		return err
	}

	if state.current().typ == tokenEOF {
		return nil
	}

	if err := state.parseArguments(); err != nil {
		return err
	}

	return state.expectEOF()
}

func newParser(text string) (*parserState, error) {
	tokens, err := lex(text)
	if err != nil {
		return nil, err
	}

	return &parserState{tokens: tokens}, nil
}

func (p *parserState) expectEOF() error {
	if tok := p.current(); tok.typ != tokenEOF {
		return expressionError("unexpected %q at position %d", tok.literal, tok.pos)
	}
	return nil
}

func (p *parserState) parseExpression() error {
	return p.parseAdditive()
}

func (p *parserState) parseAdditive() error {
	if err := p.parseMultiplicative(); err != nil {
		return err
	}

	for p.current().typ == tokenPlus || p.current().typ == tokenMinus {
		p.advance()
		if err := p.parseMultiplicative(); err != nil {
			return err
		}
	}

	return nil
}

func (p *parserState) parseMultiplicative() error {
	if err := p.parseUnary(); err != nil {
		return err
	}

	for {
		typ := p.current().typ
		if typ != tokenStar && typ != tokenSlash && typ != tokenPercent {
			return nil
		}

		p.advance()
		if err := p.parseUnary(); err != nil {
			return err
		}
	}
}

func (p *parserState) parseUnary() error {
	if typ := p.current().typ; typ == tokenPlus || typ == tokenMinus {
		p.advance()
		return p.parseUnary()
	}

	return p.parsePrimary()
}

func (p *parserState) parsePrimary() error {
	tok := p.current()
	switch tok.typ {
	case tokenNumber:
		p.advance()
		return nil
	case tokenIdentifier:
		p.advance()
		if p.current().typ != tokenLParen {
			return nil
		}
		p.advance()
		if p.current().typ != tokenRParen {
			if err := p.parseArguments(); err != nil {
				return err
			}
		}
		return p.expectClose()
	case tokenLParen:
		p.advance()
		if err := p.parseExpression(); err != nil {
			return err
		}
		return p.expectClose()
	case tokenEOF:
		return expressionError("unexpected end of expression at position %d", tok.pos)
	default:
		return expressionError("unexpected %q at position %d", tok.literal, tok.pos)
	}
}

func (p *parserState) parseArguments() error {
	if err := p.parseExpression(); err != nil {
		return err
	}

	for p.current().typ == tokenComma {
		p.advance()
		if err := p.parseExpression(); err != nil {
			return err
		}
	}

	return nil
}

func (p *parserState) expectClose() error {
	if p.current().typ != tokenRParen {
		return expressionError("missing closing ')' at position %d", p.current().pos)
	}
	p.advance()
	return nil
}

func (p *parserState) current() token {
	if p.pos >= len(p.tokens) {
		return token{typ: tokenEOF, pos: len(p.tokens)}
	}
	return p.tokens[p.pos]
}

func (p *parserState) advance() token {
	tok := p.current()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}
