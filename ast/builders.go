package ast

// Constructor functions for building documents from code, for example when
// generating MacraScript from an image or writing tests against the parser.
// Builders perform no validation beyond what their signatures enforce.

// DocumentOption configures optional document fields.
type DocumentOption func(*Document)

// WithWidth sets the declared width.
func WithWidth(width int) DocumentOption {
	return func(d *Document) {
		d.Width = &width
	}
}

// WithHeight sets the declared height.
func WithHeight(height int) DocumentOption {
	return func(d *Document) {
		d.Height = &height
	}
}

// WithColors appends palette entries, classifying each value as a hex code
// or a color name.
//
// Example:
//
//	doc := ast.NewAlphaDocument(4, rows, ast.WithColors("red", "00FF00"))
func WithColors(values ...string) DocumentOption {
	return func(d *Document) {
		for _, v := range values {
			d.Colors = append(d.Colors, NewColor(v))
		}
	}
}

// NewColor creates a palette entry. Six character values made only of hex
// digits are treated as hex codes, everything else as a color name.
func NewColor(value string) Color {
	return Color{Value: value, Hex: IsHexColor(value)}
}

// IsHexColor reports whether s is exactly six hexadecimal digits.
func IsHexColor(s string) bool {
	if len(s) != 6 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') && (c < 'A' || c > 'F') {
			return false
		}
	}
	return true
}

// NewRow creates an ALPHA row from palette indices.
func NewRow(indices ...int) Row {
	return Row(indices)
}

// NewKnot creates a knot instruction. A repeat below one is stored as one,
// matching the default the parser applies when REPEAT is omitted.
func NewKnot(direction Direction, first, second, repeat int) KnotInstruction {
	if repeat < 1 {
		repeat = 1
	}
	return KnotInstruction{
		Direction: direction,
		Threads:   [2]int{first, second},
		Repeat:    repeat,
	}
}

// NewAlphaDocument creates an ALPHA document with the given rows.
//
// Example:
//
//	doc := ast.NewAlphaDocument(4,
//		[]ast.Row{ast.NewRow(1, 2)},
//		ast.WithColors("red", "blue"),
//	)
func NewAlphaDocument(threads int, rows []Row, opts ...DocumentOption) *Document {
	d := &Document{
		Type:    Alpha,
		Threads: threads,
		Data:    &AlphaData{Rows: rows},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewNormalDocument creates a NORMAL document with the given knots.
func NewNormalDocument(threads int, knots []KnotInstruction, opts ...DocumentOption) *Document {
	d := &Document{
		Type:    Normal,
		Threads: threads,
		Data:    &NormalData{Knots: knots},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}
