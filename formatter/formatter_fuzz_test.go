package formatter

import (
	"context"
	"os"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/robinvdvleuten/macrascript/parser"
)

func FuzzFormatter(f *testing.F) {
	for _, name := range []string{"../testdata/bracelet.macra", "../testdata/chevron.macra"} {
		data, err := os.ReadFile(name)
		if err != nil {
			f.Fatal(err)
		}
		f.Add(string(data), false)
	}
	f.Add(`START ALPHA THREADS: 0 COLORS: ("red") PATTERN { } END`, true)
	f.Add(`START NORMAL THREADS: 4 COLORS: ("a","b") PATTERN { KNOT RIGHT (1, 2) REPEAT 0 } END`, true)

	f.Fuzz(func(t *testing.T, source string, align bool) {
		ctx := context.Background()

		doc, err := parser.ParseString(ctx, source)
		if err != nil {
			return
		}

		out, err := New(WithAlignRows(align)).FormatString(ctx, doc)
		assert.NoError(t, err)

		reparsed, err := parser.ParseString(ctx, out)
		assert.NoError(t, err)
		assert.Equal(t, doc, reparsed)

		// Formatting is idempotent.
		again, err := New(WithAlignRows(align)).FormatString(ctx, reparsed)
		assert.NoError(t, err)
		assert.Equal(t, out, again)
	})
}
