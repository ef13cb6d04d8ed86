package parser

import (
	"fmt"

	"github.com/robinvdvleuten/macrascript/ast"
)

// LexicalError reports a character that matches none of the token rules.
type LexicalError struct {
	Char rune
	Pos  ast.Position
}

func (e *LexicalError) Error() string {
	msg := fmt.Sprintf("unexpected character %q", e.Char)
	if e.Pos.IsZero() {
		return msg
	}
	return fmt.Sprintf("%s: %s", e.Pos, msg)
}

func (e *LexicalError) GetPosition() ast.Position {
	return e.Pos
}

// SyntaxError reports a token (or the end of input) that does not satisfy
// the active grammar production.
//
// Index is the cursor position in the token sequence. Found is the lexeme of
// the offending token, or "EOF" when the tokens ran out.
type SyntaxError struct {
	Index    int
	Expected string
	Found    string
	Pos      ast.Position
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at position %d: expected %s, found '%s'", e.Index, e.Expected, e.Found)
}

func (e *SyntaxError) GetPosition() ast.Position {
	return e.Pos
}
