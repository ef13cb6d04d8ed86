package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"github.com/robinvdvleuten/macrascript/ast"
	"github.com/robinvdvleuten/macrascript/loader"
)

type CheckCmd struct {
	Files []string `help:"MacraScript input filenames (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
}

func (cmd *CheckCmd) Run(ctx *kong.Context, globals *Globals) error {
	logger, err := globals.NewLogger(ctx.Stderr)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	runCtx, reportTelemetry := globals.StartTelemetry(ctx.Stderr, "macra check")
	defer reportTelemetry()

	ldr := globals.NewLoader(logger)

	var outcomes []loader.Outcome
	if len(cmd.Files) == 0 || (len(cmd.Files) == 1 && cmd.Files[0] == "-") {
		var in FileOrStdin
		if err := in.EnsureContents(); err != nil {
			return err
		}
		result, err := in.Load(runCtx, ldr)
		outcomes = []loader.Outcome{{Filename: in.Filename, Result: result, Err: err}}
	} else {
		outcomes = ldr.LoadAll(runCtx, cmd.Files)
	}

	failed := 0
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			failed++
			logger.Debug("check failed", zap.String("file", outcome.Filename), zap.Error(outcome.Err))
			reportLoadError(ctx.Stderr, outcome.Err)
			_, _ = fmt.Fprintln(ctx.Stderr)
			continue
		}
		doc := outcome.Result.Document
		printInfof(ctx.Stdout, "%s: %s", pathStyle.Render(outcome.Filename), summarize(doc))
		if missing := unknownColors(doc); len(missing) > 0 {
			printWarningf(ctx.Stderr, "%s: rows use %s %s but the palette has %s",
				outcome.Filename, pluralWord(len(missing), "color"), joinInts(missing), plural(len(doc.Colors), "color"))
		}
	}

	if failed > 0 {
		if len(outcomes) == 1 {
			printError(ctx.Stderr, "parse error")
		} else {
			printError(ctx.Stderr, fmt.Sprintf("%d of %d files failed", failed, len(outcomes)))
		}
		reportTelemetry()
		return NewCommandError(1)
	}

	printSuccess(ctx.Stdout, "Check passed")

	return nil
}

// summarize describes a document in one line, e.g.
// "ALPHA, 8 threads, 3 colors, 6 rows".
func summarize(doc *ast.Document) string {
	body := plural(len(doc.Knots()), "knot")
	if doc.Type == ast.Alpha {
		body = plural(len(doc.Rows()), "row")
	}
	return fmt.Sprintf("%s, %s, %s, %s",
		doc.Type, plural(doc.Threads, "thread"), plural(len(doc.Colors), "color"), body)
}

// unknownColors returns the palette indices used by an ALPHA document's rows
// that point past the end of its palette. Indices count from 1.
func unknownColors(doc *ast.Document) []int {
	var missing []int
	for _, index := range doc.PaletteIndices() {
		if index > len(doc.Colors) {
			missing = append(missing, index)
		}
	}
	return missing
}

func plural(n int, noun string) string {
	return fmt.Sprintf("%d %s", n, pluralWord(n, noun))
}

func pluralWord(n int, noun string) string {
	if n == 1 {
		return noun
	}
	return noun + "s"
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}
