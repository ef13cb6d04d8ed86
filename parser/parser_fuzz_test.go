package parser

import (
	"context"
	"errors"
	"os"
	"testing"
)

func FuzzParser(f *testing.F) {
	for _, name := range []string{"../testdata/bracelet.macra", "../testdata/chevron.macra"} {
		data, err := os.ReadFile(name)
		if err != nil {
			f.Fatal(err)
		}
		f.Add(string(data))
	}
	f.Add(`START ALPHA THREADS: 4 COLORS: ("red") PATTERN { } END`)
	f.Add(`START NORMAL THREADS: 4 COLORS: ("red") PATTERN { ROW: (1) } END`)
	f.Add(`START ALPHA THREADS: 99999999999999999999999`)
	f.Add("")

	f.Fuzz(func(t *testing.T, input string) {
		doc, err := ParseString(context.Background(), input)
		if err != nil {
			var lexErr *LexicalError
			var synErr *SyntaxError
			if !errors.As(err, &lexErr) && !errors.As(err, &synErr) {
				t.Fatalf("unexpected error type %T: %v", err, err)
			}
			if doc != nil {
				t.Fatal("document returned alongside error")
			}
			return
		}

		if doc.Data == nil {
			t.Fatal("parsed document has no pattern data")
		}
		if doc.Data.PatternType() != doc.Type {
			t.Fatalf("pattern data %s does not match declared type %s", doc.Data.PatternType(), doc.Type)
		}
		if len(doc.Colors) == 0 {
			t.Fatal("parsed document has an empty palette")
		}
	})
}
