// Package errors renders MacraScript lexical and syntax errors for different
// consumers: the command line gets plain text with a source excerpt, the
// preview server gets structured JSON.
//
// The error types themselves live in the parser package; this package only
// handles presentation.
package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/robinvdvleuten/macrascript/ast"
	"github.com/robinvdvleuten/macrascript/parser"
)

// Formatter formats errors for output in different formats.
type Formatter interface {
	// Format formats a single error.
	Format(err error) string

	// FormatAll formats multiple errors.
	FormatAll(errs []error) string
}

// positioned is implemented by errors that know where in the source they
// occurred.
type positioned interface {
	error
	GetPosition() ast.Position
}

// TextFormatter formats errors for command-line output.
type TextFormatter struct {
	source       []byte
	contextLines int
}

// TextFormatterOption is an option for configuring TextFormatter.
type TextFormatterOption func(*TextFormatter)

// WithSource sets the source text used to print an excerpt under the
// message.
func WithSource(source []byte) TextFormatterOption {
	return func(tf *TextFormatter) {
		tf.source = source
	}
}

// WithContextLines sets how many lines before the offending line are shown.
func WithContextLines(n int) TextFormatterOption {
	return func(tf *TextFormatter) {
		tf.contextLines = n
	}
}

// NewTextFormatter creates a new text formatter.
func NewTextFormatter(opts ...TextFormatterOption) *TextFormatter {
	tf := &TextFormatter{contextLines: 2}
	for _, opt := range opts {
		opt(tf)
	}
	return tf
}

// Format formats a single error. Positioned errors are prefixed with their
// location and, when source is available, followed by an excerpt with a
// caret under the offending column.
func (tf *TextFormatter) Format(err error) string {
	var pos ast.Position
	message := err.Error()

	var lexErr *parser.LexicalError
	var synErr *parser.SyntaxError
	var posErr positioned

	switch {
	case stderrors.As(err, &lexErr):
		// The lexical error message already carries its position.
		pos = lexErr.Pos
		message = lexErr.Error()
	case stderrors.As(err, &synErr):
		pos = synErr.Pos
		message = prefixPosition(pos, synErr.Error())
	case stderrors.As(err, &posErr):
		pos = posErr.GetPosition()
		message = prefixPosition(pos, posErr.Error())
	default:
		return message
	}

	if tf.source == nil || pos.Line == 0 {
		return message
	}
	return tf.formatWithSourceContext(pos, message)
}

// FormatAll formats multiple errors, separating them with blank lines.
func (tf *TextFormatter) FormatAll(errs []error) string {
	parts := make([]string, 0, len(errs))
	for _, err := range errs {
		parts = append(parts, tf.Format(err))
	}
	return strings.Join(parts, "\n\n")
}

func prefixPosition(pos ast.Position, message string) string {
	if pos.IsZero() {
		return message
	}
	return pos.String() + ": " + message
}

// formatWithSourceContext writes the message followed by the offending line
// and the lines before it, indented by three spaces, with a caret under the
// error column.
//
//	band.macra:3:10: syntax error at position 6: expected INTEGER after THREADS:, found 'x'
//
//	   START
//	   ALPHA
//	   THREADS: x
//	            ^
func (tf *TextFormatter) formatWithSourceContext(pos ast.Position, message string) string {
	var buf bytes.Buffer
	buf.WriteString(message)
	buf.WriteString("\n\n")

	lines := strings.Split(string(tf.source), "\n")
	errLine := pos.Line - 1

	// End-of-input errors may point one past a trailing newline.
	if errLine >= len(lines) {
		errLine = len(lines) - 1
	}

	start := max(errLine-tf.contextLines, 0)
	for i := start; i <= errLine; i++ {
		line := strings.TrimSuffix(lines[i], "\r")
		buf.WriteString("   ")
		buf.WriteString(line)
		buf.WriteByte('\n')
	}

	if errLine == pos.Line-1 && pos.Column > 0 {
		line := strings.TrimSuffix(lines[errLine], "\r")
		buf.WriteString("   ")
		buf.WriteString(caretPadding(line, pos.Column))
		buf.WriteString("^\n")
	}

	return buf.String()
}

// caretPadding returns the blanks that put a caret under the byte column
// col of line. Tabs are kept so the caret lines up in any terminal, wide
// runes take two cells.
func caretPadding(line string, col int) string {
	prefix := line
	if col-1 < len(line) {
		prefix = line[:col-1]
	}

	var sb strings.Builder
	for _, r := range prefix {
		if r == '\t' {
			sb.WriteByte('\t')
			continue
		}
		sb.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	return sb.String()
}

// JSONFormatter formats errors as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// ErrorJSON represents an error in JSON format.
type ErrorJSON struct {
	Type     string         `json:"type"`
	Message  string         `json:"message"`
	Position *PositionJSON  `json:"position,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
}

// PositionJSON represents a source position in JSON format.
type PositionJSON struct {
	Filename string `json:"filename,omitempty"`
	Offset   int    `json:"offset"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
}

// Format formats a single error as JSON.
func (jf *JSONFormatter) Format(err error) string {
	data, _ := json.Marshal(jf.ToJSON(err))
	return string(data)
}

// FormatAll formats multiple errors as a JSON array.
func (jf *JSONFormatter) FormatAll(errs []error) string {
	data, _ := json.MarshalIndent(jf.FormatAllToSlice(errs), "", "  ")
	return string(data)
}

// FormatAllToSlice returns errors as a slice of ErrorJSON structs.
func (jf *JSONFormatter) FormatAllToSlice(errs []error) []ErrorJSON {
	result := make([]ErrorJSON, 0, len(errs))
	for _, err := range errs {
		result = append(result, jf.ToJSON(err))
	}
	return result
}

// ToJSON converts an error to ErrorJSON.
func (jf *JSONFormatter) ToJSON(err error) ErrorJSON {
	errJSON := ErrorJSON{
		Type:    "error",
		Message: err.Error(),
	}

	var lexErr *parser.LexicalError
	var synErr *parser.SyntaxError
	var posErr positioned

	switch {
	case stderrors.As(err, &lexErr):
		errJSON.Type = "lexical"
		errJSON.Position = positionJSON(lexErr.Pos)
		errJSON.Details = map[string]any{
			"char": string(lexErr.Char),
		}
	case stderrors.As(err, &synErr):
		errJSON.Type = "syntax"
		errJSON.Position = positionJSON(synErr.Pos)
		errJSON.Details = map[string]any{
			"index":    synErr.Index,
			"expected": synErr.Expected,
			"found":    synErr.Found,
		}
	case stderrors.As(err, &posErr):
		errJSON.Position = positionJSON(posErr.GetPosition())
	}

	return errJSON
}

func positionJSON(pos ast.Position) *PositionJSON {
	if pos.IsZero() {
		return nil
	}
	return &PositionJSON{
		Filename: pos.Filename,
		Offset:   pos.Offset,
		Line:     pos.Line,
		Column:   pos.Column,
	}
}
