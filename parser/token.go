package parser

import "github.com/robinvdvleuten/macrascript/ast"

// TokenType represents the lexical category of a token.
type TokenType uint8

const (
	// EOF is never part of a token sequence. The parser reports it when the
	// cursor runs past the last token.
	EOF TokenType = iota

	// Keywords
	START   // START
	END     // END
	PATTERN // PATTERN
	ALPHA   // ALPHA
	NORMAL  // NORMAL
	THREADS // THREADS
	WIDTH   // WIDTH
	HEIGHT  // HEIGHT
	COLORS  // COLORS
	ROW     // ROW
	KNOT    // KNOT
	LEFT    // LEFT
	RIGHT   // RIGHT
	REPEAT  // REPEAT

	// Literals
	COLOR      // "FF0000"
	COLOR_NAME // "red"
	INTEGER    // 42
	IDENTIFIER // any other word

	// Symbols
	COLON  // :
	COMMA  // ,
	LBRACE // {
	RBRACE // }
	LPAREN // (
	RPAREN // )

	NEWLINE // \n
)

var tokenNames = map[TokenType]string{
	EOF: "EOF",

	START:   "START",
	END:     "END",
	PATTERN: "PATTERN",
	ALPHA:   "ALPHA",
	NORMAL:  "NORMAL",
	THREADS: "THREADS",
	WIDTH:   "WIDTH",
	HEIGHT:  "HEIGHT",
	COLORS:  "COLORS",
	ROW:     "ROW",
	KNOT:    "KNOT",
	LEFT:    "LEFT",
	RIGHT:   "RIGHT",
	REPEAT:  "REPEAT",

	COLOR:      "COLOR",
	COLOR_NAME: "COLOR_NAME",
	INTEGER:    "INTEGER",
	IDENTIFIER: "IDENTIFIER",

	COLON:  "COLON",
	COMMA:  "COMMA",
	LBRACE: "LBRACE",
	RBRACE: "RBRACE",
	LPAREN: "LPAREN",
	RPAREN: "RPAREN",

	NEWLINE: "NEWLINE",
}

var keywords = map[string]TokenType{
	"START":   START,
	"END":     END,
	"PATTERN": PATTERN,
	"ALPHA":   ALPHA,
	"NORMAL":  NORMAL,
	"THREADS": THREADS,
	"WIDTH":   WIDTH,
	"HEIGHT":  HEIGHT,
	"COLORS":  COLORS,
	"ROW":     ROW,
	"KNOT":    KNOT,
	"LEFT":    LEFT,
	"RIGHT":   RIGHT,
	"REPEAT":  REPEAT,
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// IsKeyword reports whether t is one of the reserved words.
func (t TokenType) IsKeyword() bool {
	return t >= START && t <= REPEAT
}

// Token is a classified lexeme. Value holds the exact matched text, quotes
// included for color literals.
type Token struct {
	Type  TokenType
	Value string
	Pos   ast.Position
}

// Tok builds a token without a source position. It is mostly useful for
// feeding hand-written token sequences to the parser.
//
// Example:
//
//	tokens := []parser.Token{parser.Tok(parser.START, "START"), ...}
func Tok(typ TokenType, value string) Token {
	return Token{Type: typ, Value: value}
}

func (t Token) String() string {
	if t.Type == EOF {
		return "EOF"
	}
	return t.Value
}
