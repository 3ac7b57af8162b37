package observability

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextValues(t *testing.T) {
	ctx := context.Background()
	ctx = WithRunID(ctx, "run-1")
	ctx = WithStage(ctx, "index")
	ctx = WithComponentVersion(ctx, "spec", "1.0")

	lc := GetContext(ctx)
	assert.Equal(t, LogContext{RunID: "run-1", Stage: "index", Component: "spec", Version: "1.0"}, lc)
}

func TestStageOverridesPrevious(t *testing.T) {
	ctx := WithStage(context.Background(), "index")
	ctx = WithStage(ctx, "style")
	assert.Equal(t, "style", GetContext(ctx).Stage)
}

func TestEmptyContext(t *testing.T) {
	assert.Empty(t, Attrs(context.Background()))
	assert.Equal(t, LogContext{}, GetContext(context.Background()))
}

func TestInfoContextIncludesAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	ctx := WithComponentVersion(WithRunID(context.Background(), "run-9"), "spec", "2.0")

	InfoContext(ctx, logger, "Indexed", slog.Int("count", 3))

	out := buf.String()
	assert.Contains(t, out, "msg=Indexed")
	assert.Contains(t, out, "run_id=run-9")
	assert.Contains(t, out, "component=spec")
	assert.Contains(t, out, "version=2.0")
	assert.Contains(t, out, "count=3")
}

func TestDebugContextRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	DebugContext(context.Background(), logger, "hidden")
	assert.Empty(t, buf.String())

	WarnContext(context.Background(), logger, "shown")
	ErrorContext(context.Background(), logger, "also shown")
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "level=ERROR")
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	require.Same(t, base, Logger(context.Background(), base))

	ctx := WithStage(context.Background(), "loft")
	Logger(ctx, base).Info("generated")
	assert.Contains(t, buf.String(), "stage=loft")
}
