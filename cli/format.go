package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"github.com/robinvdvleuten/macrascript/formatter"
)

type FormatCmd struct {
	File   FileOrStdin `help:"MacraScript input filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
	Write  bool        `help:"Rewrite the file in place instead of printing it." short:"w"`
	Yes    bool        `help:"Rewrite without asking for confirmation." short:"y"`
	Indent int         `help:"Spaces to indent the pattern body with." default:"2"`
	Align  bool        `help:"Align ROW columns." negatable:""`
}

func (cmd *FormatCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := cmd.File.EnsureContents(); err != nil {
		return err
	}
	if cmd.Indent < 0 {
		return fmt.Errorf("--indent must not be negative, got %d", cmd.Indent)
	}

	logger, err := globals.NewLogger(ctx.Stderr)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	runCtx, reportTelemetry := globals.StartTelemetry(ctx.Stderr, "macra format")
	defer reportTelemetry()

	result, err := cmd.File.Load(runCtx, globals.NewLoader(logger))
	if err != nil {
		reportLoadError(ctx.Stderr, err)
		_, _ = fmt.Fprintln(ctx.Stderr)
		printError(ctx.Stderr, "parse error")
		return NewCommandError(1)
	}

	f := formatter.New(
		formatter.WithIndentation(cmd.Indent),
		formatter.WithAlignRows(cmd.Align),
	)

	var buf bytes.Buffer
	if err := f.Format(runCtx, result.Document, &buf); err != nil {
		return err
	}

	if !cmd.Write || cmd.File.IsStdin() {
		_, err := ctx.Stdout.Write(buf.Bytes())
		return err
	}

	if bytes.Equal(buf.Bytes(), result.Source) {
		printInfof(ctx.Stdout, "%s is already formatted", pathStyle.Render(cmd.File.Filename))
		return nil
	}

	// Only ask when someone can answer.
	if !cmd.Yes && isTerminal() {
		confirmed, err := promptYesNo(fmt.Sprintf("Rewrite %s?", cmd.File.Filename))
		if err != nil {
			return err
		}
		if !confirmed {
			printInfof(ctx.Stdout, "Left %s unchanged", pathStyle.Render(cmd.File.Filename))
			return nil
		}
	}

	info, err := os.Stat(cmd.File.Filename)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", cmd.File.Filename, err)
	}
	if err := os.WriteFile(cmd.File.Filename, buf.Bytes(), info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to write %s: %w", cmd.File.Filename, err)
	}
	logger.Info("formatted file", zap.String("file", cmd.File.GetAbsoluteFilename()), zap.Int("bytes", buf.Len()))

	printSuccess(ctx.Stdout, fmt.Sprintf("Formatted %s", pathStyle.Render(cmd.File.Filename)))
	return nil
}
