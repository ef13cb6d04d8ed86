package errors_test

import (
	"context"
	"fmt"

	"github.com/robinvdvleuten/macrascript/errors"
	"github.com/robinvdvleuten/macrascript/parser"
)

// Example showing how to use TextFormatter for CLI output
func ExampleTextFormatter() {
	source := []byte("START\nNORMAL\nTHREADS: 4\nCOLORS: (\"red\")\nPATTERN {\n  ROW: (1, 2)\n}\nEND\n")

	_, err := parser.ParseBytesWithFilename(context.Background(), "band.macra", source)

	formatter := errors.NewTextFormatter(errors.WithSource(source), errors.WithContextLines(1))
	fmt.Print(formatter.Format(err))
	// Output:
	// band.macra:6:3: syntax error at position 17: expected KNOT or '}', found 'ROW'
	//
	//    PATTERN {
	//      ROW: (1, 2)
	//      ^
}

// Example showing how to use JSONFormatter for API/web output
func ExampleJSONFormatter() {
	_, err := parser.ParseString(context.Background(), "START #")

	fmt.Println(errors.NewJSONFormatter().Format(err))
	// Output:
	// {"type":"lexical","message":"1:7: unexpected character '#'","position":{"offset":6,"line":1,"column":7},"details":{"char":"#"}}
}
