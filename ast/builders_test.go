package ast

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestNewColor(t *testing.T) {
	tests := []struct {
		name  string
		value string
		hex   bool
	}{
		{"Name", "red", false},
		{"UpperHex", "FF00AA", true},
		{"LowerHex", "ff00aa", true},
		{"HexLettersOnly", "FACADE", true},
		{"TooShort", "FFF", false},
		{"NonHexLetters", "orange", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewColor(tt.value)
			assert.Equal(t, tt.value, c.Value)
			assert.Equal(t, tt.hex, c.Hex)
		})
	}
}

func TestNewKnot(t *testing.T) {
	t.Run("KeepsRepeat", func(t *testing.T) {
		k := NewKnot(Left, 1, 2, 3)
		assert.Equal(t, KnotInstruction{Direction: Left, Threads: [2]int{1, 2}, Repeat: 3}, k)
	})

	t.Run("DefaultsRepeat", func(t *testing.T) {
		k := NewKnot(Right, 4, 5, 0)
		assert.Equal(t, 1, k.Repeat)
	})
}

func TestNewAlphaDocument(t *testing.T) {
	doc := NewAlphaDocument(4,
		[]Row{NewRow(1, 2), NewRow(2, 1)},
		WithColors("red", "0000FF"),
		WithWidth(2),
	)

	assert.Equal(t, Alpha, doc.Type)
	assert.Equal(t, 4, doc.Threads)
	assert.Equal(t, 2, *doc.Width)
	assert.True(t, doc.Height == nil, "height should stay absent")
	assert.Equal(t, []Color{{Value: "red"}, {Value: "0000FF", Hex: true}}, doc.Colors)
	assert.Equal(t, []Row{{1, 2}, {2, 1}}, doc.Rows())
	assert.Equal(t, 0, len(doc.Knots()))
}

func TestNewNormalDocument(t *testing.T) {
	doc := NewNormalDocument(6,
		[]KnotInstruction{NewKnot(Left, 1, 2, 1), NewKnot(Right, 2, 3, 4)},
		WithColors("blue"),
		WithHeight(0),
	)

	assert.Equal(t, Normal, doc.Type)
	assert.Equal(t, 0, *doc.Height, "declared zero height is kept")
	assert.Equal(t, 2, len(doc.Knots()))
	assert.Equal(t, 0, len(doc.Rows()))
}
