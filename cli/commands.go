package cli

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/robinvdvleuten/macrascript/config"
	"github.com/robinvdvleuten/macrascript/loader"
	"github.com/robinvdvleuten/macrascript/output"
	"github.com/robinvdvleuten/macrascript/parser"
	"github.com/robinvdvleuten/macrascript/telemetry"
)

var (
	Version   = ""
	CommitSHA = ""
)

// Globals defines global flags available to all commands.
type Globals struct {
	Config    kong.ConfigFlag `help:"Read flag defaults from a TOML file." placeholder:"FILE"`
	Telemetry bool            `help:"Show timing telemetry for operations."`
	LogLevel  string          `help:"Log level (${enum})." enum:"debug,info,warn,error" default:"warn"`
	Trace     bool            `help:"Log every completed grammar production."`
	MaxSize   int64           `help:"Reject files larger than this many bytes (0 disables the limit)." default:"0"`
}

type Commands struct {
	Globals

	Check  CheckCmd  `cmd:"" help:"Parse and check MacraScript files."`
	Format FormatCmd `cmd:"" help:"Print a MacraScript file in canonical form."`
	Export ExportCmd `cmd:"" help:"Export a parsed pattern as JSON or YAML."`
	Doctor DoctorCmd `cmd:"" help:"Doctor utilities for debugging MacraScript files."`
	Serve  ServeCmd  `cmd:"" help:"Start a local preview server."`
}

// ConfigLoader is a kong.ConfigurationLoader for macra.toml files. Values
// from the file become flag defaults; flags given on the command line win.
func ConfigLoader(r io.Reader) (kong.Resolver, error) {
	cfg, err := config.Decode(r)
	if err != nil {
		return nil, err
	}
	return kong.ResolverFunc(func(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
		if v, ok := cfg.Lookup(flag.Name); ok {
			return v, nil
		}
		return nil, nil
	}), nil
}

// NewLogger builds a console logger writing to w. Tracing forces the debug
// level so trace events are visible.
func (g *Globals) NewLogger(w io.Writer) (*zap.Logger, error) {
	level := g.LogLevel
	if g.Trace {
		level = "debug"
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.TimeKey = ""
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(w),
		lvl,
	)
	return zap.New(core), nil
}

// NewLoader builds a loader honouring the global flags.
func (g *Globals) NewLoader(logger *zap.Logger) *loader.Loader {
	opts := []loader.Option{loader.WithMaxSize(g.MaxSize)}
	if g.Trace {
		opts = append(opts, loader.WithParserOptions(parser.WithTracer(func(ev parser.TraceEvent) {
			logger.Debug("parsed",
				zap.String("production", ev.Production),
				zap.Int("index", ev.Index),
				zap.String("detail", ev.Detail),
			)
		})))
	}
	return loader.New(opts...)
}

// StartTelemetry returns a context carrying a timing collector when
// --telemetry is set, and a function that prints the report to w. The
// function is safe to call more than once.
func (g *Globals) StartTelemetry(w io.Writer, name string) (context.Context, func()) {
	ctx := context.Background()
	if !g.Telemetry {
		return ctx, func() {}
	}

	collector := telemetry.NewTimingCollector(telemetry.WithStyles(output.NewStyles(w)))
	ctx = telemetry.WithCollector(ctx, collector)

	rootTimer := collector.Start(name)
	ctx = telemetry.WithRootTimer(ctx, rootTimer)

	var once sync.Once
	return ctx, func() {
		once.Do(func() {
			rootTimer.End()
			_, _ = fmt.Fprintln(w)
			collector.Report(w)
		})
	}
}
