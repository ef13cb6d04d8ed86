package parser

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/robinvdvleuten/macrascript/ast"
)

func tokenTypes(tokens []Token) []TokenType {
	types := []TokenType{}
	for _, tok := range tokens {
		types = append(types, tok.Type)
	}
	return types
}

func TestLexerTokenTypes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []TokenType
	}{
		{
			name:  "empty",
			input: "",
			want:  []TokenType{},
		},
		{
			name:  "only blanks",
			input: " \t  ",
			want:  []TokenType{},
		},
		{
			name:  "keywords",
			input: "START END PATTERN ALPHA NORMAL THREADS WIDTH HEIGHT COLORS ROW KNOT LEFT RIGHT REPEAT",
			want: []TokenType{
				START, END, PATTERN, ALPHA, NORMAL, THREADS, WIDTH,
				HEIGHT, COLORS, ROW, KNOT, LEFT, RIGHT, REPEAT,
			},
		},
		{
			name:  "symbols",
			input: ": , { } ( )",
			want:  []TokenType{COLON, COMMA, LBRACE, RBRACE, LPAREN, RPAREN},
		},
		{
			name:  "symbols without spaces",
			input: "ROW:(1,2)",
			want:  []TokenType{ROW, COLON, LPAREN, INTEGER, COMMA, INTEGER, RPAREN},
		},
		{
			name:  "hex color",
			input: `"FF00aa"`,
			want:  []TokenType{COLOR},
		},
		{
			name:  "color name",
			input: `"red"`,
			want:  []TokenType{COLOR_NAME},
		},
		{
			name:  "six hex letters lex as hex color",
			input: `"facade"`,
			want:  []TokenType{COLOR},
		},
		{
			name:  "integer",
			input: "0 42 007",
			want:  []TokenType{INTEGER, INTEGER, INTEGER},
		},
		{
			name:  "identifiers",
			input: "foo _bar start STARTX ROW_2",
			want:  []TokenType{IDENTIFIER, IDENTIFIER, IDENTIFIER, IDENTIFIER, IDENTIFIER},
		},
		{
			name:  "newlines are kept",
			input: "START\nEND\n",
			want:  []TokenType{START, NEWLINE, END, NEWLINE},
		},
		{
			name:  "crlf is one newline",
			input: "START\r\nEND",
			want:  []TokenType{START, NEWLINE, END},
		},
		{
			name:  "integer glued to keyword",
			input: "4START",
			want:  []TokenType{INTEGER, IDENTIFIER},
		},
		{
			name:  "keyword after integer with space",
			input: "4 START",
			want:  []TokenType{INTEGER, START},
		},
		{
			name:  "keyword after color is bounded",
			input: `"red"END`,
			want:  []TokenType{COLOR_NAME, END},
		},
		{
			name:  "keyword after symbol is bounded",
			input: "(LEFT)",
			want:  []TokenType{LPAREN, LEFT, RPAREN},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Lex(tt.input)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, tokenTypes(tokens))
		})
	}
}

func TestLexerKeepsRawLexemes(t *testing.T) {
	tokens, err := Lex(`COLORS: ("FF0000", "red")`)
	assert.NoError(t, err)

	values := []string{}
	for _, tok := range tokens {
		values = append(values, tok.Value)
	}
	assert.Equal(t, []string{"COLORS", ":", "(", `"FF0000"`, ",", `"red"`, ")"}, values)
}

func TestLexerPositions(t *testing.T) {
	tokens, err := NewLexer([]byte("START\n  ALPHA\r\nTHREADS:4"), "band.macra").ScanAll()
	assert.NoError(t, err)

	expected := []Token{
		{Type: START, Value: "START", Pos: ast.Position{Filename: "band.macra", Offset: 0, Line: 1, Column: 1}},
		{Type: NEWLINE, Value: "\n", Pos: ast.Position{Filename: "band.macra", Offset: 5, Line: 1, Column: 6}},
		{Type: ALPHA, Value: "ALPHA", Pos: ast.Position{Filename: "band.macra", Offset: 8, Line: 2, Column: 3}},
		{Type: NEWLINE, Value: "\r\n", Pos: ast.Position{Filename: "band.macra", Offset: 13, Line: 2, Column: 8}},
		{Type: THREADS, Value: "THREADS", Pos: ast.Position{Filename: "band.macra", Offset: 15, Line: 3, Column: 1}},
		{Type: COLON, Value: ":", Pos: ast.Position{Filename: "band.macra", Offset: 22, Line: 3, Column: 8}},
		{Type: INTEGER, Value: "4", Pos: ast.Position{Filename: "band.macra", Offset: 23, Line: 3, Column: 9}},
	}
	assert.Equal(t, expected, tokens)
}

func TestLexerErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		char  rune
		pos   ast.Position
		msg   string
	}{
		{
			name:  "hash",
			input: "START #",
			char:  '#',
			pos:   ast.Position{Offset: 6, Line: 1, Column: 7},
			msg:   "1:7: unexpected character '#'",
		},
		{
			name:  "second line",
			input: "START\nALPHA @",
			char:  '@',
			pos:   ast.Position{Offset: 12, Line: 2, Column: 7},
			msg:   "2:7: unexpected character '@'",
		},
		{
			name:  "short hex color",
			input: `COLORS: ("FF00")`,
			char:  '"',
			pos:   ast.Position{Offset: 9, Line: 1, Column: 10},
			msg:   `1:10: unexpected character '"'`,
		},
		{
			name:  "non ascii",
			input: "START é",
			char:  'é',
			pos:   ast.Position{Offset: 6, Line: 1, Column: 7},
			msg:   "1:7: unexpected character 'é'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Lex(tt.input)
			assert.Zero(t, tokens)

			var lexErr *LexicalError
			assert.True(t, errors.As(err, &lexErr))
			assert.Equal(t, tt.char, lexErr.Char)
			assert.Equal(t, tt.pos, lexErr.Pos)
			assert.EqualError(t, err, tt.msg)
		})
	}
}

func TestLexerErrorStopsBeforeLaterTokens(t *testing.T) {
	tokens, err := Lex("START ALPHA # THREADS: 4")
	assert.Error(t, err)
	assert.Zero(t, tokens)
}

func TestLexerDeterministic(t *testing.T) {
	source := []byte("START\nNORMAL\nTHREADS: 4\nCOLORS: (\"red\")\nPATTERN {\n  KNOT LEFT (1, 2) REPEAT 3\n}\nEND\n")
	lexer := NewLexer(source, "knots.macra")

	first, err := lexer.ScanAll()
	assert.NoError(t, err)
	second, err := lexer.ScanAll()
	assert.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestTokenTypeString(t *testing.T) {
	assert.Equal(t, "COLOR_NAME", COLOR_NAME.String())
	assert.Equal(t, "EOF", EOF.String())
	assert.Equal(t, "UNKNOWN", TokenType(200).String())
	assert.True(t, REPEAT.IsKeyword())
	assert.False(t, INTEGER.IsKeyword())
	assert.Equal(t, "EOF", Token{}.String())
	assert.Equal(t, `"red"`, Tok(COLOR_NAME, `"red"`).String())
}
