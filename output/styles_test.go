package output

import (
	"bytes"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/robinvdvleuten/macrascript/ast"
)

func TestNewStyles(t *testing.T) {
	var buf bytes.Buffer
	styles := NewStyles(&buf)

	assert.NotZero(t, styles)
	assert.Equal(t, "plain", styles.Number("plain"))
}

func TestStylesContainText(t *testing.T) {
	var buf bytes.Buffer
	styles := NewStyles(&buf)

	tests := []struct {
		name  string
		style func(string) string
		input string
	}{
		{"Success", styles.Success, "parsed"},
		{"Error", styles.Error, "unexpected character"},
		{"Keyword", styles.Keyword, "START"},
		{"Number", styles.Number, "42"},
		{"Dim", styles.Dim, "secondary"},
		{"Warning", styles.Warning, "careful"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, tt.style(tt.input), tt.input)
		})
	}
}

func TestStylesTiming(t *testing.T) {
	var buf bytes.Buffer
	styles := NewStyles(&buf)

	assert.Contains(t, styles.Timing("5ms", false), "5ms")
	assert.Contains(t, styles.Timing("1.20s", true), "1.20s")
}

func TestStylesSwatch(t *testing.T) {
	var buf bytes.Buffer
	styles := NewStyles(&buf)

	// Named colors pass through untouched.
	assert.Equal(t, "red", styles.Swatch("red", ast.NewColor("red")))

	// Non-terminal writers use the ASCII profile, so hex swatches carry no
	// escape codes either.
	assert.Contains(t, styles.Swatch("FF0000", ast.NewColor("FF0000")), "FF0000")
}
