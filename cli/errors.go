package cli

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/robinvdvleuten/macrascript/ast"
	"github.com/robinvdvleuten/macrascript/errors"
)

var (
	errCaretStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"})
	errContextStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#808080", Dark: "#808080"})
	errLineNoStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#5FAFFF", Dark: "#5FAFFF"})
)

// CommandError is returned by a command that has already reported its
// failure on stderr. main exits with its code and prints nothing more.
type CommandError struct {
	code int
}

// NewCommandError returns a CommandError that exits with code.
func NewCommandError(code int) *CommandError {
	return &CommandError{code: code}
}

func (e *CommandError) Error() string {
	return "exit status " + strconv.Itoa(e.code)
}

// ExitCode is the process exit status.
func (e *CommandError) ExitCode() int {
	return e.code
}

// ErrorRenderer renders errors with terminal styling and source context.
type ErrorRenderer struct {
	source []byte
}

// NewErrorRenderer creates a renderer with source content for context.
func NewErrorRenderer(source []byte) *ErrorRenderer {
	return &ErrorRenderer{source: source}
}

// Render formats a single error with styling and context.
func (r *ErrorRenderer) Render(err error) string {
	message := errors.NewTextFormatter().Format(err)

	e, ok := err.(interface{ GetPosition() ast.Position })
	if !ok || r.source == nil || e.GetPosition().Line < 1 {
		return errorStyle.Render(message)
	}

	return r.renderWithSourceContext(e.GetPosition(), message)
}

// RenderAll formats multiple errors, separating them with blank lines.
func (r *ErrorRenderer) RenderAll(errs []error) string {
	if len(errs) == 0 {
		return ""
	}

	var buf strings.Builder
	for i, err := range errs {
		buf.WriteString(r.Render(err))

		if i < len(errs)-1 {
			buf.WriteString("\n\n")
		}
	}

	return buf.String()
}

// renderWithSourceContext shows up to two lines before the error line and
// puts a caret under the offending column.
func (r *ErrorRenderer) renderWithSourceContext(pos ast.Position, message string) string {
	var buf strings.Builder

	buf.WriteString(errorStyle.Render(message))
	buf.WriteString("\n\n")

	sourceLines := strings.Split(strings.ReplaceAll(string(r.source), "\r\n", "\n"), "\n")

	endLine := pos.Line - 1
	if endLine >= len(sourceLines) {
		endLine = len(sourceLines) - 1
	}
	startLine := endLine - 2
	if startLine < 0 {
		startLine = 0
	}

	gutter := len(strconv.Itoa(endLine + 1))

	for i := startLine; i <= endLine; i++ {
		lineNo := strconv.Itoa(i + 1)
		buf.WriteString(errLineNoStyle.Render(strings.Repeat(" ", gutter-len(lineNo)) + lineNo))
		buf.WriteString(" | ")
		buf.WriteString(errContextStyle.Render(sourceLines[i]))
		buf.WriteByte('\n')

		if i == pos.Line-1 && pos.Column > 0 {
			buf.WriteString(strings.Repeat(" ", gutter))
			buf.WriteString(" | ")
			buf.WriteString(caretPadding(sourceLines[i], pos.Column))
			buf.WriteString(errCaretStyle.Render("^"))
			buf.WriteByte('\n')
		}
	}

	return strings.TrimRight(buf.String(), "\n")
}

// caretPadding returns the whitespace that lines a caret up with the given
// 1-based byte column. Tabs are kept so the caret lines up however the
// terminal expands them.
func caretPadding(line string, col int) string {
	if col-1 < len(line) {
		line = line[:col-1]
	}

	var pad strings.Builder
	for _, r := range line {
		if r == '\t' {
			pad.WriteByte('\t')
			continue
		}
		pad.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	return pad.String()
}
