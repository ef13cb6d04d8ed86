// Package loader reads MacraScript files and parses them with positions
// tagged by filename.
//
// Example usage:
//
//	ldr := loader.New()
//	result, err := ldr.Load(ctx, "bracelet.macra")
//
//	// Check many files at once, four at a time
//	outcomes := loader.New(loader.WithConcurrency(4)).LoadAll(ctx, files)
package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/robinvdvleuten/macrascript/ast"
	"github.com/robinvdvleuten/macrascript/parser"
	"github.com/robinvdvleuten/macrascript/telemetry"
	"golang.org/x/sync/errgroup"
)

// Result is a successfully loaded document together with its source.
type Result struct {
	// Filename is the name the file was loaded under. Positions in
	// Document and in errors use the same name.
	Filename string
	Source   []byte
	Document *ast.Document
}

// Error is returned when source was read but did not parse. It keeps the
// source so callers can render the offending line.
type Error struct {
	Filename string
	Source   []byte
	Err      error
}

func (e *Error) Error() string { return e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// Outcome is the result of loading one file with LoadAll.
type Outcome struct {
	Filename string
	Result   *Result
	Err      error
}

// Loader handles loading and parsing of MacraScript files.
//
// Configure the loader using functional options passed to New:
//
//	loader := New(WithMaxSize(1 << 20))
type Loader struct {
	// MaxSize rejects files larger than this many bytes. Zero means no limit.
	MaxSize int64

	// Concurrency bounds how many files LoadAll parses at once.
	Concurrency int

	parserOpts []parser.Option
}

// Option configures how files are loaded.
type Option func(*Loader)

// WithMaxSize rejects files larger than n bytes.
func WithMaxSize(n int64) Option {
	return func(l *Loader) {
		l.MaxSize = n
	}
}

// WithConcurrency sets how many files LoadAll parses at once.
func WithConcurrency(n int) Option {
	return func(l *Loader) {
		l.Concurrency = n
	}
}

// WithParserOptions passes options, such as a tracer, to every parse.
func WithParserOptions(opts ...parser.Option) Option {
	return func(l *Loader) {
		l.parserOpts = append(l.parserOpts, opts...)
	}
}

// New creates a new Loader with the given options.
func New(opts ...Option) *Loader {
	l := &Loader{
		Concurrency: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.Concurrency < 1 {
		l.Concurrency = 1
	}
	return l
}

// Load reads and parses a single file.
func (l *Loader) Load(ctx context.Context, filename string) (*Result, error) {
	timer := telemetry.StartTimer(ctx, "loader.load "+filepath.Base(filename))
	defer timer.End()

	if l.MaxSize > 0 {
		info, err := os.Stat(filename)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", filename, err)
		}
		if info.Size() > l.MaxSize {
			return nil, fmt.Errorf("%s is %d bytes, larger than the %d byte limit", filename, info.Size(), l.MaxSize)
		}
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}

	return l.LoadBytes(telemetry.WithRootTimer(ctx, timer), filename, data)
}

// LoadBytes parses in-memory source as if it had been read from filename.
func (l *Loader) LoadBytes(ctx context.Context, filename string, data []byte) (*Result, error) {
	if l.MaxSize > 0 && int64(len(data)) > l.MaxSize {
		return nil, fmt.Errorf("%s is %d bytes, larger than the %d byte limit", filename, len(data), l.MaxSize)
	}

	doc, err := parser.ParseBytesWithFilename(ctx, filename, data, l.parserOpts...)
	if err != nil {
		return nil, &Error{Filename: filename, Source: data, Err: err}
	}

	return &Result{Filename: filename, Source: data, Document: doc}, nil
}

// LoadAll loads every file, at most Concurrency at a time. Outcomes are in
// the order of filenames. A failing file does not stop the others; a
// cancelled context does.
func (l *Loader) LoadAll(ctx context.Context, filenames []string) []Outcome {
	outcomes := make([]Outcome, len(filenames))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.Concurrency)

	for i, filename := range filenames {
		outcomes[i].Filename = filename

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				outcomes[i].Err = err
				return err
			}
			outcomes[i].Result, outcomes[i].Err = l.Load(gctx, filename)
			return nil
		})
	}

	_ = g.Wait()
	return outcomes
}
