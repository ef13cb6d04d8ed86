// Package formatter prints documents back as canonical MacraScript.
//
// Every declaration goes on its own line and the pattern body is indented.
// With row alignment enabled the cells of ALPHA rows line up in columns and
// knot directions are padded so the thread pairs line up:
//
//	PATTERN {
//	  ROW: ( 1,  2, 2)
//	  ROW: (10, 11, 2)
//	}
package formatter

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/robinvdvleuten/macrascript/ast"
	"github.com/robinvdvleuten/macrascript/telemetry"
)

// DefaultIndentation is the default indentation for rows and knots.
const DefaultIndentation = 2

var (
	// ErrNoColors is returned for documents with an empty palette, which
	// would not parse back.
	ErrNoColors = errors.New("document has no colors")

	// ErrNoPatternData is returned for documents without a body.
	ErrNoPatternData = errors.New("document has no pattern data")

	// ErrTypeMismatch is returned when the body does not match the declared
	// pattern type.
	ErrTypeMismatch = errors.New("pattern type does not match pattern data")

	// ErrInvalidColor is returned for palette entries that are neither six
	// hex digits nor a letters-only name.
	ErrInvalidColor = errors.New("color cannot be written as MacraScript")

	// ErrNegativeNumber is returned for negative counts, cells or threads.
	// Integer literals are unsigned.
	ErrNegativeNumber = errors.New("negative number cannot be written as MacraScript")
)

// Formatter handles formatting of MacraScript documents.
type Formatter struct {
	// Indentation is the number of spaces before each row or knot.
	Indentation int

	// AlignRows pads row cells and knot directions into columns.
	AlignRows bool
}

// Option is a functional option for configuring a Formatter.
type Option func(*Formatter)

// WithIndentation sets the number of spaces rows and knots are indented by.
func WithIndentation(spaces int) Option {
	return func(f *Formatter) {
		f.Indentation = spaces
	}
}

// WithAlignRows enables or disables column alignment of the pattern body.
func WithAlignRows(align bool) Option {
	return func(f *Formatter) {
		f.AlignRows = align
	}
}

// New creates a new Formatter with the given options.
func New(opts ...Option) *Formatter {
	f := &Formatter{Indentation: DefaultIndentation}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format writes doc to w. The output always parses back to an equal
// document.
func (f *Formatter) Format(ctx context.Context, doc *ast.Document, w io.Writer) error {
	timer := telemetry.StartTimer(ctx, "formatter.format")
	defer timer.End()

	if err := validate(doc); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)

	bw.WriteString("START\n")
	bw.WriteString(doc.Type.String())
	bw.WriteByte('\n')

	fmt.Fprintf(bw, "THREADS: %d\n", doc.Threads)
	if doc.Width != nil {
		fmt.Fprintf(bw, "WIDTH: %d\n", *doc.Width)
	}
	if doc.Height != nil {
		fmt.Fprintf(bw, "HEIGHT: %d\n", *doc.Height)
	}
	f.formatColors(bw, doc.Colors)

	bw.WriteString("PATTERN {\n")
	switch data := doc.Data.(type) {
	case *ast.AlphaData:
		f.formatRows(bw, data.Rows)
	case *ast.NormalData:
		f.formatKnots(bw, data.Knots)
	}
	bw.WriteString("}\n")
	bw.WriteString("END\n")

	return bw.Flush()
}

// validate rejects documents the grammar cannot express.
func validate(doc *ast.Document) error {
	if len(doc.Colors) == 0 {
		return ErrNoColors
	}
	if doc.Data == nil {
		return ErrNoPatternData
	}
	if t := doc.Data.PatternType(); t != doc.Type {
		return fmt.Errorf("%w: %s document with %s data", ErrTypeMismatch, doc.Type, t)
	}
	if err := nonNegative("THREADS", doc.Threads); err != nil {
		return err
	}
	if doc.Width != nil {
		if err := nonNegative("WIDTH", *doc.Width); err != nil {
			return err
		}
	}
	if doc.Height != nil {
		if err := nonNegative("HEIGHT", *doc.Height); err != nil {
			return err
		}
	}
	for _, c := range doc.Colors {
		if c.Hex != ast.IsHexColor(c.Value) || (!c.Hex && !isColorName(c.Value)) {
			return fmt.Errorf("%w: %q", ErrInvalidColor, c.Value)
		}
	}
	for i, row := range doc.Rows() {
		if len(row) == 0 {
			return fmt.Errorf("row %d has no cells", i+1)
		}
		for _, cell := range row {
			if err := nonNegative(fmt.Sprintf("row %d cell", i+1), cell); err != nil {
				return err
			}
		}
	}
	for i, knot := range doc.Knots() {
		if knot.Direction != ast.Left && knot.Direction != ast.Right {
			return fmt.Errorf("knot %d has no direction", i+1)
		}
		for _, thread := range knot.Threads {
			if err := nonNegative(fmt.Sprintf("knot %d thread", i+1), thread); err != nil {
				return err
			}
		}
		if err := nonNegative(fmt.Sprintf("knot %d REPEAT", i+1), knot.Repeat); err != nil {
			return err
		}
	}
	return nil
}

func nonNegative(what string, n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %s is %d", ErrNegativeNumber, what, n)
	}
	return nil
}

// isColorName matches the letters-only names a quoted color may hold.
func isColorName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

// FormatString returns doc as MacraScript source.
func (f *Formatter) FormatString(ctx context.Context, doc *ast.Document) (string, error) {
	var sb strings.Builder
	if err := f.Format(ctx, doc, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (f *Formatter) formatColors(w *bufio.Writer, colors []ast.Color) {
	w.WriteString("COLORS: (")
	for i, c := range colors {
		if i > 0 {
			w.WriteString(", ")
		}
		w.WriteByte('"')
		w.WriteString(c.Value)
		w.WriteByte('"')
	}
	w.WriteString(")\n")
}

func (f *Formatter) formatRows(w *bufio.Writer, rows []ast.Row) {
	var widths []int
	if f.AlignRows {
		widths = columnWidths(rows)
	}

	indent := strings.Repeat(" ", f.Indentation)
	for _, row := range rows {
		w.WriteString(indent)
		w.WriteString("ROW: (")
		for i, cell := range row {
			if i > 0 {
				w.WriteString(", ")
			}
			s := strconv.Itoa(cell)
			if widths != nil {
				s = runewidth.FillLeft(s, widths[i])
			}
			w.WriteString(s)
		}
		w.WriteString(")\n")
	}
}

// columnWidths returns the widest cell of every column across all rows.
func columnWidths(rows []ast.Row) []int {
	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			width := runewidth.StringWidth(strconv.Itoa(cell))
			if i >= len(widths) {
				widths = append(widths, width)
			} else if width > widths[i] {
				widths[i] = width
			}
		}
	}
	return widths
}

func (f *Formatter) formatKnots(w *bufio.Writer, knots []ast.KnotInstruction) {
	dirWidth := 0
	if f.AlignRows {
		for _, k := range knots {
			dirWidth = max(dirWidth, runewidth.StringWidth(k.Direction.String()))
		}
	}

	indent := strings.Repeat(" ", f.Indentation)
	for _, k := range knots {
		w.WriteString(indent)
		w.WriteString("KNOT ")
		w.WriteString(runewidth.FillRight(k.Direction.String(), dirWidth))
		fmt.Fprintf(w, " (%d, %d)", k.Threads[0], k.Threads[1])
		if k.Repeat != 1 {
			fmt.Fprintf(w, " REPEAT %d", k.Repeat)
		}
		w.WriteByte('\n')
	}
}
