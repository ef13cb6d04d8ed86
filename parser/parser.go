package parser

// Parser implements a predictive recursive-descent parser for MacraScript.
//
// Grammar:
//
//	<S>               -> "START" <PATTERN_TYPE> <PATTERN_CONFIG> <PATTERN_DATA> "END"
//	<PATTERN_TYPE>    -> "ALPHA" | "NORMAL"
//	<PATTERN_CONFIG>  -> <THREADS_DEF> ["WIDTH" ":" INTEGER] ["HEIGHT" ":" INTEGER] <COLORS_DEF>
//	<THREADS_DEF>     -> "THREADS" ":" INTEGER
//	<COLORS_DEF>      -> "COLORS" ":" "(" <COLOR_LIST> ")"
//	<COLOR_LIST>      -> (COLOR | COLOR_NAME) ("," (COLOR | COLOR_NAME))*
//	<PATTERN_DATA>    -> "PATTERN" "{" <ROW>* "}"             (ALPHA)
//	                   | "PATTERN" "{" <KNOT_INSTRUCTION>* "}" (NORMAL)
//	<ROW>             -> "ROW" ":" "(" INTEGER ("," INTEGER)* ")"
//	<KNOT_INSTRUCTION> -> "KNOT" ("LEFT" | "RIGHT") "(" INTEGER "," INTEGER ")" ["REPEAT" INTEGER]
//
// Every decision is made on the current token alone and the cursor only ever
// moves forward. The first violation aborts the parse.

import (
	"context"
	"fmt"
	"strings"

	"github.com/robinvdvleuten/macrascript/ast"
	"github.com/robinvdvleuten/macrascript/telemetry"
)

// Parser consumes a token sequence with a single forward cursor.
// A Parser is single-use: create a new one for every token sequence.
type Parser struct {
	tokens   []Token
	pos      int
	filename string
	tracer   func(TraceEvent)
}

// Option configures a Parser.
type Option func(*Parser)

// WithFilename sets the filename reported for errors at the end of input.
// Positions of lexed tokens already carry the lexer's filename.
func WithFilename(filename string) Option {
	return func(p *Parser) {
		p.filename = filename
	}
}

// New creates a parser over tokens.
func New(tokens []Token, opts ...Option) *Parser {
	p := &Parser{tokens: tokens}
	for _, opt := range opts {
		opt(p)
	}
	p.skipNewlines()
	return p
}

// Parse parses the token sequence into a document. On failure the partially
// built document is discarded and a *SyntaxError is returned.
func (p *Parser) Parse() (*ast.Document, error) {
	doc := &ast.Document{}

	if err := p.parseStart(); err != nil {
		return nil, err
	}
	if err := p.parsePatternType(doc); err != nil {
		return nil, err
	}
	if err := p.parseThreads(doc); err != nil {
		return nil, err
	}
	if err := p.parseDimensions(doc); err != nil {
		return nil, err
	}
	if err := p.parseColors(doc); err != nil {
		return nil, err
	}
	if err := p.parsePatternData(doc); err != nil {
		return nil, err
	}
	if err := p.parseEnd(); err != nil {
		return nil, err
	}

	return doc, nil
}

// ParseString lexes and parses MacraScript source.
func ParseString(ctx context.Context, source string, opts ...Option) (*ast.Document, error) {
	return ParseBytesWithFilename(ctx, "", []byte(source), opts...)
}

// ParseBytes lexes and parses MacraScript source.
func ParseBytes(ctx context.Context, data []byte, opts ...Option) (*ast.Document, error) {
	return ParseBytesWithFilename(ctx, "", data, opts...)
}

// ParseBytesWithFilename lexes and parses MacraScript source, stamping all
// positions with filename. Lex and parse timings are recorded on the
// telemetry collector carried by ctx, if any.
func ParseBytesWithFilename(ctx context.Context, filename string, data []byte, opts ...Option) (*ast.Document, error) {
	lexTimer := telemetry.StartTimer(ctx, "parser.lex")
	tokens, err := NewLexer(data, filename).ScanAll()
	lexTimer.End()
	if err != nil {
		return nil, err
	}

	parseTimer := telemetry.StartTimer(ctx, fmt.Sprintf("parser.parse (%d tokens)", len(tokens)))
	defer parseTimer.End()

	opts = append([]Option{WithFilename(filename)}, opts...)
	return New(tokens, opts...).Parse()
}

// parseStart parses: START
func (p *Parser) parseStart() error {
	if _, err := p.expect(START, "START"); err != nil {
		return err
	}
	p.trace("start", "")
	return nil
}

// parsePatternType parses: ALPHA | NORMAL
//
// The recorded type later selects the body grammar.
func (p *Parser) parsePatternType(doc *ast.Document) error {
	switch {
	case p.match(ALPHA):
		doc.Type = ast.Alpha
	case p.match(NORMAL):
		doc.Type = ast.Normal
	default:
		return p.error("ALPHA or NORMAL")
	}
	p.trace("pattern_type", doc.Type.String())
	return nil
}

// parseThreads parses: THREADS : INTEGER
func (p *Parser) parseThreads(doc *ast.Document) error {
	if _, err := p.expect(THREADS, "THREADS"); err != nil {
		return err
	}
	if _, err := p.expect(COLON, "':' after THREADS"); err != nil {
		return err
	}
	threads, err := p.parseInteger("INTEGER after THREADS:")
	if err != nil {
		return err
	}
	doc.Threads = threads
	p.trace("threads", fmt.Sprint(threads))
	return nil
}

// parseDimensions parses: [WIDTH : INTEGER] [HEIGHT : INTEGER]
func (p *Parser) parseDimensions(doc *ast.Document) error {
	if p.check(WIDTH) {
		width, err := p.parseDimension(WIDTH)
		if err != nil {
			return err
		}
		doc.Width = &width
		p.trace("width", fmt.Sprint(width))
	}

	if p.check(HEIGHT) {
		height, err := p.parseDimension(HEIGHT)
		if err != nil {
			return err
		}
		doc.Height = &height
		p.trace("height", fmt.Sprint(height))
	}

	return nil
}

func (p *Parser) parseDimension(keyword TokenType) (int, error) {
	p.advance()
	if _, err := p.expect(COLON, fmt.Sprintf("':' after %s", keyword)); err != nil {
		return 0, err
	}
	return p.parseInteger(fmt.Sprintf("INTEGER after %s:", keyword))
}

// parseColors parses: COLORS : ( COLOR_LIST )
func (p *Parser) parseColors(doc *ast.Document) error {
	if _, err := p.expect(COLORS, "COLORS"); err != nil {
		return err
	}
	if _, err := p.expect(COLON, "':' after COLORS"); err != nil {
		return err
	}
	if _, err := p.expect(LPAREN, "'(' after COLORS:"); err != nil {
		return err
	}

	colors, err := p.parseColorList()
	if err != nil {
		return err
	}
	doc.Colors = colors

	if _, err := p.expect(RPAREN, "')' after color list"); err != nil {
		return err
	}
	p.trace("colors", fmt.Sprintf("%d colors", len(colors)))
	return nil
}

// parseColorList parses: COLOR ("," COLOR)*
//
// Duplicates are kept in source order.
func (p *Parser) parseColorList() ([]ast.Color, error) {
	first, err := p.parseColor("COLOR or COLOR_NAME")
	if err != nil {
		return nil, err
	}
	colors := []ast.Color{first}

	for p.match(COMMA) {
		color, err := p.parseColor("COLOR or COLOR_NAME after comma")
		if err != nil {
			return nil, err
		}
		colors = append(colors, color)
	}

	return colors, nil
}

func (p *Parser) parseColor(expected string) (ast.Color, error) {
	tok := p.peek()
	if tok.Type != COLOR && tok.Type != COLOR_NAME {
		return ast.Color{}, p.error(expected)
	}
	p.advance()

	return ast.Color{
		Value: strings.Trim(tok.Value, `"`),
		Hex:   tok.Type == COLOR,
	}, nil
}

// parsePatternData dispatches on the pattern type recorded by
// parsePatternType.
func (p *Parser) parsePatternData(doc *ast.Document) error {
	if _, err := p.expect(PATTERN, "PATTERN"); err != nil {
		return err
	}
	if _, err := p.expect(LBRACE, "'{' after PATTERN"); err != nil {
		return err
	}

	switch doc.Type {
	case ast.Alpha:
		data, err := p.parseAlphaData()
		if err != nil {
			return err
		}
		doc.Data = data
		p.trace("pattern_data", fmt.Sprintf("%d rows", len(data.Rows)))

	case ast.Normal:
		data, err := p.parseNormalData()
		if err != nil {
			return err
		}
		doc.Data = data
		p.trace("pattern_data", fmt.Sprintf("%d knots", len(data.Knots)))
	}

	return nil
}

// parseAlphaData parses: ROW* }
func (p *Parser) parseAlphaData() (*ast.AlphaData, error) {
	data := &ast.AlphaData{}

	for p.check(ROW) {
		row, err := p.parseRow()
		if err != nil {
			return nil, err
		}
		data.Rows = append(data.Rows, row)
	}

	if _, err := p.expect(RBRACE, "ROW or '}'"); err != nil {
		return nil, err
	}
	return data, nil
}

// parseRow parses: ROW : ( INTEGER ("," INTEGER)* )
func (p *Parser) parseRow() (ast.Row, error) {
	p.advance()
	if _, err := p.expect(COLON, "':' after ROW"); err != nil {
		return nil, err
	}
	if _, err := p.expect(LPAREN, "'(' after ROW:"); err != nil {
		return nil, err
	}

	first, err := p.parseInteger("INTEGER")
	if err != nil {
		return nil, err
	}
	row := ast.Row{first}

	for p.match(COMMA) {
		index, err := p.parseInteger("INTEGER after comma")
		if err != nil {
			return nil, err
		}
		row = append(row, index)
	}

	if _, err := p.expect(RPAREN, "')' after color sequence"); err != nil {
		return nil, err
	}
	p.trace("row", fmt.Sprintf("%d cells", len(row)))
	return row, nil
}

// parseNormalData parses: KNOT_INSTRUCTION* }
func (p *Parser) parseNormalData() (*ast.NormalData, error) {
	data := &ast.NormalData{}

	for p.check(KNOT) {
		knot, err := p.parseKnot()
		if err != nil {
			return nil, err
		}
		data.Knots = append(data.Knots, knot)
	}

	if _, err := p.expect(RBRACE, "KNOT or '}'"); err != nil {
		return nil, err
	}
	return data, nil
}

// parseKnot parses: KNOT (LEFT | RIGHT) ( INTEGER , INTEGER ) [REPEAT INTEGER]
func (p *Parser) parseKnot() (ast.KnotInstruction, error) {
	knot := ast.KnotInstruction{Repeat: 1}
	p.advance()

	switch {
	case p.match(LEFT):
		knot.Direction = ast.Left
	case p.match(RIGHT):
		knot.Direction = ast.Right
	default:
		return knot, p.error("LEFT or RIGHT direction")
	}

	if _, err := p.expect(LPAREN, "'(' after direction"); err != nil {
		return knot, err
	}
	first, err := p.parseInteger("INTEGER for first thread")
	if err != nil {
		return knot, err
	}
	if _, err := p.expect(COMMA, "',' between thread positions"); err != nil {
		return knot, err
	}
	second, err := p.parseInteger("INTEGER for second thread")
	if err != nil {
		return knot, err
	}
	if _, err := p.expect(RPAREN, "')' after thread positions"); err != nil {
		return knot, err
	}
	knot.Threads = [2]int{first, second}

	if p.match(REPEAT) {
		repeat, err := p.parseInteger("INTEGER after REPEAT")
		if err != nil {
			return knot, err
		}
		knot.Repeat = repeat
	}

	p.trace("knot", fmt.Sprintf("%s (%d, %d) x%d", knot.Direction, first, second, knot.Repeat))
	return knot, nil
}

// parseEnd parses: END, which must be the last token.
func (p *Parser) parseEnd() error {
	if _, err := p.expect(END, "END"); err != nil {
		return err
	}
	if !p.isAtEnd() {
		return p.error("no extra tokens expected after END")
	}
	p.trace("end", "")
	return nil
}
