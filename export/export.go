// Package export converts parsed documents into data formats for tools that
// do not speak MacraScript, such as pattern renderers.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/robinvdvleuten/macrascript/ast"
	"github.com/robinvdvleuten/macrascript/telemetry"
	"gopkg.in/yaml.v3"
)

// Format is an export encoding.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// Formats lists the supported formats.
var Formats = []Format{JSON, YAML}

// UnmarshalText accepts a format name case-insensitively, which lets the
// configuration file and command line flags name formats directly.
func (f *Format) UnmarshalText(text []byte) error {
	switch Format(strings.ToLower(string(text))) {
	case JSON:
		*f = JSON
	case YAML, "yml":
		*f = YAML
	default:
		return fmt.Errorf("unknown export format %q (want json or yaml)", text)
	}
	return nil
}

func (f Format) String() string { return string(f) }

// Pattern is the exported shape of a document.
//
// Exactly one of Rows and Knots is set, matching Type. The set one is encoded
// even when empty, so an ALPHA pattern without rows still has "rows": [].
type Pattern struct {
	Type    string   `json:"type" yaml:"type"`
	Threads int      `json:"threads" yaml:"threads"`
	Width   *int     `json:"width,omitempty" yaml:"width,omitempty"`
	Height  *int     `json:"height,omitempty" yaml:"height,omitempty"`
	Colors  []Color  `json:"colors" yaml:"colors"`
	Rows    *[][]int `json:"rows,omitempty" yaml:"rows,omitempty,flow"`
	Knots   *[]Knot  `json:"knots,omitempty" yaml:"knots,omitempty"`
}

type Color struct {
	Value string `json:"value" yaml:"value"`
	Hex   bool   `json:"hex" yaml:"hex"`
}

type Knot struct {
	Direction string `json:"direction" yaml:"direction"`
	Threads   [2]int `json:"threads" yaml:"threads,flow"`
	Repeat    int    `json:"repeat" yaml:"repeat"`
}

// FromDocument builds the exported shape of doc.
func FromDocument(doc *ast.Document) *Pattern {
	p := &Pattern{
		Type:    doc.Type.String(),
		Threads: doc.Threads,
		Width:   doc.Width,
		Height:  doc.Height,
		Colors:  make([]Color, 0, len(doc.Colors)),
	}

	for _, c := range doc.Colors {
		p.Colors = append(p.Colors, Color{Value: c.Value, Hex: c.Hex})
	}

	switch data := doc.Data.(type) {
	case *ast.AlphaData:
		rows := make([][]int, 0, len(data.Rows))
		for _, row := range data.Rows {
			rows = append(rows, []int(row))
		}
		p.Rows = &rows
	case *ast.NormalData:
		knots := make([]Knot, 0, len(data.Knots))
		for _, k := range data.Knots {
			knots = append(knots, Knot{
				Direction: k.Direction.String(),
				Threads:   k.Threads,
				Repeat:    k.Repeat,
			})
		}
		p.Knots = &knots
	}

	return p
}

// Write encodes doc to w in the given format.
func Write(ctx context.Context, w io.Writer, doc *ast.Document, format Format) error {
	timer := telemetry.StartTimer(ctx, "export."+format.String())
	defer timer.End()

	pattern := FromDocument(doc)

	switch format {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(pattern)

	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(pattern); err != nil {
			return err
		}
		return enc.Close()

	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}
