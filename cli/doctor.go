package cli

import (
	"fmt"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/alecthomas/repr"

	"github.com/robinvdvleuten/macrascript/ast"
	"github.com/robinvdvleuten/macrascript/output"
	"github.com/robinvdvleuten/macrascript/parser"
)

// DoctorCmd provides doctor utilities for debugging MacraScript files.
type DoctorCmd struct {
	Lex LexCmd `cmd:"" help:"Show lexical tokens from a MacraScript file."`
	Ast AstCmd `cmd:"" help:"Dump the parsed document structure."`
}

// LexCmd shows lexical tokens from a MacraScript file.
type LexCmd struct {
	File FileOrStdin `help:"MacraScript input filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
}

// Run executes the lex command.
func (cmd *LexCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := cmd.File.EnsureContents(); err != nil {
		return err
	}

	content, err := cmd.File.Source()
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	tokens, err := parser.NewLexer(content, cmd.File.Filename).ScanAll()
	if err != nil {
		_, _ = fmt.Fprintln(ctx.Stderr, NewErrorRenderer(content).Render(err))
		return NewCommandError(1)
	}

	styles := output.NewStyles(ctx.Stdout)

	// Format: TYPE line:col "content", with a swatch after hex colors
	for _, token := range tokens {
		value := fmt.Sprintf("%q", token.Value)
		switch {
		case token.Type.IsKeyword():
			value = styles.Keyword(value)
		case token.Type == parser.INTEGER:
			value = styles.Number(value)
		}

		line := fmt.Sprintf("%-10s %d:%d    %s",
			token.Type.String(),
			token.Pos.Line,
			token.Pos.Column,
			value)

		if token.Type == parser.COLOR {
			color := ast.NewColor(strings.Trim(token.Value, `"`))
			line += " " + styles.Swatch("■", color)
		}

		_, _ = fmt.Fprintln(ctx.Stdout, line)
	}

	return nil
}

// AstCmd dumps the parsed document.
type AstCmd struct {
	File FileOrStdin `help:"MacraScript input filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
}

// Run executes the ast command.
func (cmd *AstCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := cmd.File.EnsureContents(); err != nil {
		return err
	}

	logger, err := globals.NewLogger(ctx.Stderr)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	runCtx, reportTelemetry := globals.StartTelemetry(ctx.Stderr, "macra doctor ast")
	defer reportTelemetry()

	result, err := cmd.File.Load(runCtx, globals.NewLoader(logger))
	if err != nil {
		reportLoadError(ctx.Stderr, err)
		return NewCommandError(1)
	}

	repr.New(ctx.Stdout, repr.Indent("  ")).Println(result.Document)
	return nil
}
