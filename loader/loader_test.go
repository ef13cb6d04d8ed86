package loader

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/robinvdvleuten/macrascript/ast"
	"github.com/robinvdvleuten/macrascript/parser"
	"github.com/robinvdvleuten/macrascript/telemetry"
)

const validSource = "START\nALPHA\nTHREADS: 4\nCOLORS: (\"red\", \"blue\")\nPATTERN {\n  ROW: (1, 2)\n}\nEND\n"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSingleFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "band.macra", validSource)

	result, err := New().Load(context.Background(), path)
	assert.NoError(t, err)

	assert.Equal(t, path, result.Filename)
	assert.Equal(t, validSource, string(result.Source))
	assert.Equal(t, ast.NewAlphaDocument(4,
		[]ast.Row{ast.NewRow(1, 2)},
		ast.WithColors("red", "blue"),
	), result.Document)
}

func TestLoadNestsParserTimers(t *testing.T) {
	path := writeFile(t, t.TempDir(), "band.macra", validSource)

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	collector := telemetry.NewTimingCollector(telemetry.WithClock(func() time.Time {
		now = now.Add(time.Millisecond)
		return now
	}))
	root := collector.Start("macra check")
	ctx := telemetry.WithRootTimer(telemetry.WithCollector(context.Background(), collector), root)

	_, err := New().Load(ctx, path)
	assert.NoError(t, err)
	root.End()

	var buf bytes.Buffer
	collector.Report(&buf)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, 4, len(lines))
	assert.True(t, strings.HasPrefix(lines[1], "└─ loader.load band.macra: "), lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "   ├─ parser.lex: "), lines[2])
	assert.True(t, strings.HasPrefix(lines[3], "   └─ parser.parse ("), lines[3])
}

func TestLoadMissingFile(t *testing.T) {
	_, err := New().Load(context.Background(), filepath.Join(t.TempDir(), "missing.macra"))
	assert.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadSyntaxError(t *testing.T) {
	source := "START\nNORMAL\nTHREADS: 4\nCOLORS: (\"red\")\nPATTERN {\n  ROW: (1)\n}\nEND\n"
	path := writeFile(t, t.TempDir(), "band.macra", source)

	_, err := New().Load(context.Background(), path)

	var loadErr *Error
	assert.True(t, errors.As(err, &loadErr))
	assert.Equal(t, path, loadErr.Filename)
	assert.Equal(t, source, string(loadErr.Source))

	var synErr *parser.SyntaxError
	assert.True(t, errors.As(err, &synErr))
	assert.Equal(t, path, synErr.Pos.Filename)
	assert.Equal(t, 6, synErr.Pos.Line)
	assert.Equal(t, synErr.Error(), err.Error())
}

func TestLoadMaxSize(t *testing.T) {
	path := writeFile(t, t.TempDir(), "band.macra", validSource)

	_, err := New(WithMaxSize(10)).Load(context.Background(), path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "larger than the 10 byte limit")

	_, err = New(WithMaxSize(10)).LoadBytes(context.Background(), "<stdin>", []byte(validSource))
	assert.Contains(t, err.Error(), "larger than the 10 byte limit")

	_, err = New(WithMaxSize(int64(len(validSource)))).Load(context.Background(), path)
	assert.NoError(t, err)
}

func TestLoadBytes(t *testing.T) {
	result, err := New().LoadBytes(context.Background(), "<stdin>", []byte(validSource))
	assert.NoError(t, err)
	assert.Equal(t, "<stdin>", result.Filename)
	assert.Equal(t, 4, result.Document.Threads)
}

func TestLoadParserOptions(t *testing.T) {
	var productions []string
	ldr := New(WithParserOptions(parser.WithTracer(func(e parser.TraceEvent) {
		productions = append(productions, e.Production)
	})))

	_, err := ldr.LoadBytes(context.Background(), "band.macra", []byte(validSource))
	assert.NoError(t, err)
	assert.Equal(t, []string{"start", "pattern_type", "threads", "colors", "row", "pattern_data", "end"}, productions)
}

func TestLoadAll(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.macra", validSource)
	bad := writeFile(t, dir, "bad.macra", "START #")
	missing := filepath.Join(dir, "missing.macra")

	outcomes := New(WithConcurrency(2)).LoadAll(context.Background(), []string{good, bad, missing, good})
	assert.Equal(t, 4, len(outcomes))

	assert.Equal(t, good, outcomes[0].Filename)
	assert.NoError(t, outcomes[0].Err)
	assert.Equal(t, 4, outcomes[0].Result.Document.Threads)

	var lexErr *parser.LexicalError
	assert.True(t, errors.As(outcomes[1].Err, &lexErr))
	assert.Zero(t, outcomes[1].Result)

	assert.True(t, errors.Is(outcomes[2].Err, os.ErrNotExist))

	assert.NoError(t, outcomes[3].Err)
}

func TestLoadAllCancelled(t *testing.T) {
	path := writeFile(t, t.TempDir(), "band.macra", validSource)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcomes := New().LoadAll(ctx, []string{path})
	assert.True(t, errors.Is(outcomes[0].Err, context.Canceled))
}

func TestNewConcurrencyFloor(t *testing.T) {
	assert.Equal(t, 1, New(WithConcurrency(0)).Concurrency)
}
