package telemetry

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/robinvdvleuten/macrascript/output"
)

// stepClock advances by step on every call.
func stepClock(step time.Duration) func() time.Time {
	var mu sync.Mutex
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(step)
		return now
	}
}

func TestNoOpCollector(t *testing.T) {
	collector := noOpCollector{}

	timer := collector.Start("test")
	timer.Child("child").End()
	timer.End()

	var buf bytes.Buffer
	collector.Report(&buf)
	assert.Equal(t, "", buf.String())
}

func TestFromContextReturnsNoOpWhenMissing(t *testing.T) {
	collector := FromContext(context.Background())
	_, ok := collector.(noOpCollector)
	assert.True(t, ok)
}

func TestWithCollector(t *testing.T) {
	collector := NewTimingCollector()
	ctx := WithCollector(context.Background(), collector)

	retrieved, ok := FromContext(ctx).(*TimingCollector)
	assert.True(t, ok)
	assert.True(t, retrieved == collector)
}

func TestTimingCollectorHierarchical(t *testing.T) {
	collector := NewTimingCollector(WithClock(stepClock(time.Millisecond)))

	root := collector.Start("macra check")
	lex := root.Child("parser.lex")
	lex.End()
	parse := root.Child("parser.parse")
	parse.End()
	root.End()

	var buf bytes.Buffer
	collector.Report(&buf)

	expected := strings.Join([]string{
		"macra check: 5ms",
		"├─ parser.lex: 1ms",
		"└─ parser.parse: 1ms",
		"",
	}, "\n")
	assert.Equal(t, expected, buf.String())
}

func TestTimingCollectorDeepNesting(t *testing.T) {
	collector := NewTimingCollector(WithClock(stepClock(time.Millisecond)))

	t1 := collector.Start("Level 1")
	t2 := t1.Child("Level 2")
	t3 := t2.Child("Level 3")
	t3.End()
	t2.End()
	t1.End()

	var buf bytes.Buffer
	collector.Report(&buf)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, 3, len(lines))
	assert.Equal(t, "   └─ Level 3: 1ms", lines[2])
}

func TestTimingCollectorSequentialStartsNest(t *testing.T) {
	collector := NewTimingCollector(WithClock(stepClock(time.Millisecond)))

	outer := collector.Start("outer")
	inner := collector.Start("inner")
	inner.End()
	sibling := collector.Start("sibling")
	sibling.End()
	outer.End()

	var buf bytes.Buffer
	collector.Report(&buf)

	assert.Contains(t, buf.String(), "├─ inner")
	assert.Contains(t, buf.String(), "└─ sibling")
}

func TestTimingCollectorUnfinishedTimer(t *testing.T) {
	collector := NewTimingCollector(WithClock(stepClock(time.Millisecond)))
	root := collector.Start("root")
	root.Child("never ended")
	root.End()

	var buf bytes.Buffer
	collector.Report(&buf)
	assert.Contains(t, buf.String(), "└─ never ended: 0ms")
}

func TestStartTimer(t *testing.T) {
	t.Run("WithoutCollector", func(t *testing.T) {
		timer := StartTimer(context.Background(), "parser.lex")
		_, ok := timer.(noOpTimer)
		assert.True(t, ok)
	})

	t.Run("NestsUnderRootTimer", func(t *testing.T) {
		collector := NewTimingCollector(WithClock(stepClock(time.Millisecond)))
		ctx := WithCollector(context.Background(), collector)

		root := collector.Start("root")
		ctx = WithRootTimer(ctx, root)
		StartTimer(ctx, "parser.lex").End()
		root.End()

		var buf bytes.Buffer
		collector.Report(&buf)
		assert.Contains(t, buf.String(), "└─ parser.lex: 1ms")
	})

	t.Run("StartsOnCollector", func(t *testing.T) {
		collector := NewTimingCollector(WithClock(stepClock(time.Millisecond)))
		ctx := WithCollector(context.Background(), collector)

		StartTimer(ctx, "standalone").End()

		var buf bytes.Buffer
		collector.Report(&buf)
		assert.Equal(t, "standalone: 1ms\n", buf.String())
	})
}

func TestReportWithStyles(t *testing.T) {
	var buf bytes.Buffer
	collector := NewTimingCollector(
		WithClock(stepClock(150*time.Millisecond)),
		WithStyles(output.NewStyles(&buf)),
	)

	root := collector.Start("serve reload")
	root.Child("parser.parse").End()
	root.End()

	collector.Report(&buf)
	assert.Contains(t, buf.String(), "serve reload")
	assert.Contains(t, buf.String(), "parser.parse: 150ms")
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		duration time.Duration
		want     string
	}{
		{1 * time.Millisecond, "1ms"},
		{10 * time.Millisecond, "10ms"},
		{999 * time.Millisecond, "999ms"},
		{1 * time.Second, "1.00s"},
		{1500 * time.Millisecond, "1.50s"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDuration(tt.duration))
	}
}

func TestTimingCollectorEmptyReport(t *testing.T) {
	var buf bytes.Buffer
	NewTimingCollector().Report(&buf)
	assert.Equal(t, "", buf.String())
}
