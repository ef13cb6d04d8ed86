package parser

// Lexer turns MacraScript source into tokens.
//
// Tokens are recognised by an ordered list of regular expressions: at every
// input position the first rule that matches wins. Keywords therefore come
// before the identifier rule, and hex colors before color names. Spaces and
// tabs are matched and dropped; newlines are kept as NEWLINE tokens.

import (
	"unicode/utf8"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/robinvdvleuten/macrascript/ast"
)

var (
	definition = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Keyword", Pattern: `\b(?:START|END|PATTERN|ALPHA|NORMAL|THREADS|WIDTH|HEIGHT|COLORS|ROW|KNOT|LEFT|RIGHT|REPEAT)\b`},

		{Name: "Color", Pattern: `"[A-Fa-f0-9]{6}"`},
		{Name: "ColorName", Pattern: `"[a-zA-Z]+"`},
		{Name: "Integer", Pattern: `\d+`},
		{Name: "Identifier", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},

		{Name: "Colon", Pattern: `:`},
		{Name: "Comma", Pattern: `,`},
		{Name: "LBrace", Pattern: `\{`},
		{Name: "RBrace", Pattern: `\}`},
		{Name: "LParen", Pattern: `\(`},
		{Name: "RParen", Pattern: `\)`},

		{Name: "Newline", Pattern: `\r?\n`},
		{Name: "Skip", Pattern: `[ \t]+`},
	})

	symbols = definition.Symbols()

	ruleTypes = map[lexer.TokenType]TokenType{
		symbols["Color"]:      COLOR,
		symbols["ColorName"]:  COLOR_NAME,
		symbols["Integer"]:    INTEGER,
		symbols["Identifier"]: IDENTIFIER,
		symbols["Colon"]:      COLON,
		symbols["Comma"]:      COMMA,
		symbols["LBrace"]:     LBRACE,
		symbols["RBrace"]:     RBRACE,
		symbols["LParen"]:     LPAREN,
		symbols["RParen"]:     RPAREN,
		symbols["Newline"]:    NEWLINE,
	}

	keywordRule = symbols["Keyword"]
	skipRule    = symbols["Skip"]
)

// Lexer tokenizes MacraScript source. It holds no state between calls to
// ScanAll, so scanning the same source twice yields identical tokens.
type Lexer struct {
	source   []byte
	filename string
}

// NewLexer creates a new lexer for the given source. The filename is only
// used to stamp token positions.
func NewLexer(source []byte, filename string) *Lexer {
	return &Lexer{
		source:   source,
		filename: filename,
	}
}

// Lex tokenizes a source string without a filename.
func Lex(source string) ([]Token, error) {
	return NewLexer([]byte(source), "").ScanAll()
}

// ScanAll lexes the entire source and returns all significant tokens.
// Scanning stops at the first character no rule accepts; in that case a
// *LexicalError is returned together with no tokens.
func (l *Lexer) ScanAll() ([]Token, error) {
	src := string(l.source)

	lex, err := definition.LexString(l.filename, src)
	if err != nil {
		return nil, err
	}

	// Roughly one token per four bytes of typical MacraScript
	tokens := make([]Token, 0, len(src)/4+1)
	pos := ast.Position{Filename: l.filename, Line: 1, Column: 1}

	for {
		tok, err := lex.Next()
		if err != nil {
			return nil, l.lexicalError(src, pos, err)
		}
		if tok.EOF() {
			break
		}

		switch tok.Type {
		case skipRule:
			// dropped
		case keywordRule:
			typ := keywords[tok.Value]
			if gluedToWord(tokens, pos) {
				typ = IDENTIFIER
			}
			tokens = append(tokens, Token{Type: typ, Value: tok.Value, Pos: pos})
		default:
			tokens = append(tokens, Token{Type: ruleTypes[tok.Type], Value: tok.Value, Pos: pos})
		}

		pos = advancePos(pos, tok.Value)
	}

	return tokens, nil
}

// gluedToWord reports whether the token starting at pos directly follows an
// INTEGER or IDENTIFIER. A keyword there has no word boundary before it, so
// it is an ordinary identifier: "3END" is INTEGER then IDENTIFIER.
func gluedToWord(tokens []Token, pos ast.Position) bool {
	if len(tokens) == 0 {
		return false
	}
	prev := tokens[len(tokens)-1]
	if prev.Type != INTEGER && prev.Type != IDENTIFIER {
		return false
	}
	return prev.Pos.Offset+len(prev.Value) == pos.Offset
}

// lexicalError builds the error for the character at pos, which is the
// first byte no rule matched. Rules only ever match ASCII, so the offset
// reached by summing token lengths always lands on the offending character.
func (l *Lexer) lexicalError(src string, pos ast.Position, cause error) error {
	if pos.Offset >= len(src) {
		return cause
	}
	ch, _ := utf8.DecodeRuneInString(src[pos.Offset:])
	return &LexicalError{Char: ch, Pos: pos}
}

// advancePos moves pos past the lexeme.
func advancePos(pos ast.Position, lexeme string) ast.Position {
	pos.Offset += len(lexeme)
	if lexeme[len(lexeme)-1] == '\n' {
		pos.Line++
		pos.Column = 1
	} else {
		pos.Column += len(lexeme)
	}
	return pos
}
