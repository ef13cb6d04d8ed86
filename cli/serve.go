package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/macrascript/ast"
	"github.com/robinvdvleuten/macrascript/formatter"
	"github.com/robinvdvleuten/macrascript/web"
)

type ServeCmd struct {
	File     string        `help:"MacraScript file to serve." arg:""`
	Host     string        `help:"Host to listen on." default:"127.0.0.1"`
	Port     int           `help:"Port to listen on." default:"8080"`
	Watch    bool          `help:"Reload when the file changes on disk." default:"true" negatable:""`
	ReadOnly bool          `help:"Enable read-only mode (no write operations allowed)." short:"r"`
	Debounce time.Duration `help:"How long to wait for file changes to settle." default:"100ms"`
	Create   bool          `help:"Automatically create file if it doesn't exist (no confirmation prompt)." short:"c"`
}

func (cmd *ServeCmd) Run(ctx *kong.Context, globals *Globals) error {
	logger, err := globals.NewLogger(ctx.Stderr)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	runCtx, reportTelemetry := globals.StartTelemetry(ctx.Stderr, "macra serve")
	defer reportTelemetry()

	runCtx, stop := signal.NotifyContext(runCtx, os.Interrupt)
	defer stop()

	patternFile, err := filepath.Abs(cmd.File)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	if _, err := os.Stat(patternFile); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access file: %w", err)
		}
		if err := cmd.create(runCtx, ctx, patternFile); err != nil {
			return err
		}
	}

	version := Version
	if version == "" {
		version = "dev"
	}
	commitSHA := CommitSHA
	if commitSHA == "" {
		commitSHA = "local"
	}

	server := web.NewWithVersion(cmd.Port, patternFile, version, commitSHA)
	server.Host = cmd.Host
	server.ReadOnly = cmd.ReadOnly
	server.WatchEnabled = cmd.Watch
	server.Debounce = cmd.Debounce
	server.Logger = logger
	server.Loader = globals.NewLoader(logger)

	printInfof(ctx.Stdout, "Starting server on %s", server.Addr())
	printInfof(ctx.Stdout, "Serving pattern: %s", pathStyle.Render(patternFile))

	if cmd.ReadOnly {
		printInfof(ctx.Stdout, "Server running in READ-ONLY mode")
	}

	return server.Start(runCtx)
}

// create writes a starter pattern to path, asking first unless --create
// was given.
func (cmd *ServeCmd) create(ctx context.Context, kctx *kong.Context, path string) error {
	shouldCreate := cmd.Create

	if !shouldCreate {
		confirmed, err := promptYesNo(fmt.Sprintf("File %q does not exist. Create it?", path))
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		shouldCreate = confirmed
	}

	if !shouldCreate {
		return fmt.Errorf("file does not exist: %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	source, err := formatter.New().FormatString(ctx, starterPattern())
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	printInfof(kctx.Stdout, "Created starter pattern: %s", pathStyle.Render(path))
	return nil
}

// starterPattern is a two color, four thread chevron.
func starterPattern() *ast.Document {
	return ast.NewNormalDocument(4, []ast.KnotInstruction{
		ast.NewKnot(ast.Left, 1, 2, 1),
		ast.NewKnot(ast.Right, 4, 3, 1),
		ast.NewKnot(ast.Left, 2, 3, 2),
	}, ast.WithColors("red", "FFFFFF"))
}
