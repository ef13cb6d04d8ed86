// Package ast declares the types used to represent parsed MacraScript patterns.
//
// A MacraScript file describes one macramé bracelet: how many threads it uses,
// an optional width and height, a color palette and the pattern body. The body
// is either a grid of palette indices (ALPHA patterns) or a sequence of
// directional knot instructions (NORMAL patterns). The Document type can be
// produced by the parser package or constructed programmatically with the
// builders in this package.
package ast

import (
	"golang.org/x/exp/slices"
)

// PatternType selects which body grammar a document uses.
type PatternType uint8

const (
	// Alpha patterns describe the bracelet as rows of palette indices.
	Alpha PatternType = iota + 1
	// Normal patterns describe the bracelet as a sequence of knots.
	Normal
)

func (t PatternType) String() string {
	switch t {
	case Alpha:
		return "ALPHA"
	case Normal:
		return "NORMAL"
	default:
		return "UNKNOWN"
	}
}

// Direction is the direction a knot is tied in.
type Direction uint8

const (
	Left Direction = iota + 1
	Right
)

func (d Direction) String() string {
	switch d {
	case Left:
		return "LEFT"
	case Right:
		return "RIGHT"
	default:
		return "UNKNOWN"
	}
}

// Color is a single palette entry with its surrounding quotes removed.
//
// Example palette entries:
//
//	"FF0000"  → Color{Value: "FF0000", Hex: true}
//	"red"     → Color{Value: "red"}
type Color struct {
	Value string
	Hex   bool // Value is a six digit hex code rather than a color name
}

func (c Color) String() string {
	return c.Value
}

// Document is a parsed MacraScript pattern.
//
// Width and Height are nil when the source omits them; a declared value of
// zero is kept as a pointer to zero. Data is *AlphaData for ALPHA documents
// and *NormalData for NORMAL documents.
//
// Example:
//
//	START ALPHA
//	THREADS: 4
//	WIDTH: 2
//	COLORS: ("red", "0000FF")
//	PATTERN {
//	  ROW: (1, 2)
//	}
//	END
type Document struct {
	Type    PatternType
	Threads int
	Width   *int
	Height  *int
	Colors  []Color
	Data    PatternData
}

// PatternData is the body of a document. It is implemented only by *AlphaData
// and *NormalData, so a type switch over those two cases is exhaustive.
type PatternData interface {
	PatternType() PatternType
	patternData()
}

// Row is one line of an ALPHA pattern: palette indices from left to right.
type Row []int

// AlphaData holds the rows of an ALPHA pattern in source order.
type AlphaData struct {
	Rows []Row
}

var _ PatternData = &AlphaData{}

func (*AlphaData) PatternType() PatternType { return Alpha }
func (*AlphaData) patternData()             {}

// KnotInstruction is one step of a NORMAL pattern.
//
// Example:
//
//	KNOT LEFT (1, 2) REPEAT 3
type KnotInstruction struct {
	Direction Direction
	Threads   [2]int
	Repeat    int
}

// NormalData holds the knot instructions of a NORMAL pattern in source order.
type NormalData struct {
	Knots []KnotInstruction
}

var _ PatternData = &NormalData{}

func (*NormalData) PatternType() PatternType { return Normal }
func (*NormalData) patternData()             {}

// Rows returns the rows of an ALPHA document, or nil for any other document.
func (d *Document) Rows() []Row {
	if data, ok := d.Data.(*AlphaData); ok {
		return data.Rows
	}
	return nil
}

// Knots returns the knot instructions of a NORMAL document, or nil for any
// other document.
func (d *Document) Knots() []KnotInstruction {
	if data, ok := d.Data.(*NormalData); ok {
		return data.Knots
	}
	return nil
}

// Clone returns a deep copy of the document. Documents handed to concurrent
// readers (such as the preview server) are cloned so callers cannot mutate
// shared state.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}

	c := &Document{
		Type:    d.Type,
		Threads: d.Threads,
		Width:   cloneInt(d.Width),
		Height:  cloneInt(d.Height),
		Colors:  slices.Clone(d.Colors),
	}

	switch data := d.Data.(type) {
	case *AlphaData:
		rows := make([]Row, len(data.Rows))
		for i, row := range data.Rows {
			rows[i] = slices.Clone(row)
		}
		c.Data = &AlphaData{Rows: rows}
	case *NormalData:
		c.Data = &NormalData{Knots: slices.Clone(data.Knots)}
	}

	return c
}

// PaletteIndices returns the distinct palette indices referenced by the rows
// of an ALPHA document in ascending order.
func (d *Document) PaletteIndices() []int {
	var indices []int
	for _, row := range d.Rows() {
		indices = append(indices, row...)
	}
	slices.Sort(indices)
	return slices.Compact(indices)
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}
