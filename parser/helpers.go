package parser

import (
	"strconv"

	"github.com/robinvdvleuten/macrascript/ast"
)

// Token navigation helpers. The cursor always rests on a significant token:
// NEWLINE tokens are stepped over as soon as the cursor reaches them, so
// p.pos stays an index into the raw token sequence.

// peek returns the current token, or a zero EOF token past the end.
func (p *Parser) peek() Token {
	if p.isAtEnd() {
		return Token{Type: EOF}
	}
	return p.tokens[p.pos]
}

// isAtEnd checks if we've consumed all tokens.
func (p *Parser) isAtEnd() bool {
	return p.pos >= len(p.tokens)
}

// check returns true if the current token is of the given type.
func (p *Parser) check(typ TokenType) bool {
	return !p.isAtEnd() && p.tokens[p.pos].Type == typ
}

// match advances past the current token if it has the given type.
func (p *Parser) match(typ TokenType) bool {
	if p.check(typ) {
		p.advance()
		return true
	}
	return false
}

// advance consumes the current token and returns it.
func (p *Parser) advance() Token {
	tok := p.peek()
	if !p.isAtEnd() {
		p.pos++
		p.skipNewlines()
	}
	return tok
}

func (p *Parser) skipNewlines() {
	for p.pos < len(p.tokens) && p.tokens[p.pos].Type == NEWLINE {
		p.pos++
	}
}

// expect consumes a token of the given type, or returns a syntax error
// naming what was expected.
func (p *Parser) expect(typ TokenType, expected string) (Token, error) {
	if !p.check(typ) {
		return Token{}, p.error(expected)
	}
	return p.advance(), nil
}

// parseInteger consumes an INTEGER token and converts it. Literals that do
// not fit in an int are rejected at the literal's position.
func (p *Parser) parseInteger(expected string) (int, error) {
	if !p.check(INTEGER) {
		return 0, p.error(expected)
	}

	n, err := strconv.Atoi(p.peek().Value)
	if err != nil {
		return 0, p.error("INTEGER in range")
	}

	p.advance()
	return n, nil
}

// error builds a syntax error at the current cursor.
func (p *Parser) error(expected string) *SyntaxError {
	tok := p.peek()
	return &SyntaxError{
		Index:    p.pos,
		Expected: expected,
		Found:    tok.String(),
		Pos:      p.position(),
	}
}

// position returns the source position of the current token. Past the end
// it points just after the last token.
func (p *Parser) position() ast.Position {
	if !p.isAtEnd() {
		return p.tokens[p.pos].Pos
	}
	if len(p.tokens) == 0 {
		return ast.Position{Filename: p.filename, Line: 1, Column: 1}
	}

	last := p.tokens[len(p.tokens)-1]
	if last.Pos.IsZero() {
		return ast.Position{Filename: p.filename}
	}
	pos := advancePos(last.Pos, last.Value)
	if pos.Filename == "" {
		pos.Filename = p.filename
	}
	return pos
}
