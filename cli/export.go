package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/macrascript/export"
)

type ExportCmd struct {
	File   FileOrStdin   `help:"MacraScript input filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
	Format export.Format `help:"Output format (json or yaml)." short:"f" default:"json"`
	Output string        `help:"Write to this file instead of stdout." short:"o" type:"path"`
}

func (cmd *ExportCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := cmd.File.EnsureContents(); err != nil {
		return err
	}

	logger, err := globals.NewLogger(ctx.Stderr)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	runCtx, reportTelemetry := globals.StartTelemetry(ctx.Stderr, "macra export")
	defer reportTelemetry()

	result, err := cmd.File.Load(runCtx, globals.NewLoader(logger))
	if err != nil {
		reportLoadError(ctx.Stderr, err)
		_, _ = fmt.Fprintln(ctx.Stderr)
		printError(ctx.Stderr, "parse error")
		return NewCommandError(1)
	}

	var w io.Writer = ctx.Stdout
	if cmd.Output != "" {
		f, err := os.Create(cmd.Output)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", cmd.Output, err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	if err := export.Write(runCtx, w, result.Document, cmd.Format); err != nil {
		return fmt.Errorf("failed to export: %w", err)
	}

	if cmd.Output != "" {
		printSuccess(ctx.Stderr, fmt.Sprintf("Exported %s to %s", cmd.File.Filename, pathStyle.Render(cmd.Output)))
	}
	return nil
}
