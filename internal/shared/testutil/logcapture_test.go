package testutil

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wilbersoares/projeto-fatec/internal/infrastructure"
)

func TestCaptureHandler(t *testing.T) {
	logger, h := NewCaptureLogger(t)

	ctx := infrastructure.WithTraceID(context.Background(), "trace-1")
	ctx = infrastructure.WithSessionID(ctx, "sess-1")

	logger.With(slog.String("component", "session_store")).
		InfoContext(ctx, "session created", slog.Int("active_sessions", 2))
	logger.WithGroup("dataset").Warn("rows dropped", slog.Int("count", 3))

	records := h.Records()
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, slog.LevelInfo, first.Level)
	assert.Equal(t, "session_store", first.Attrs["component"])
	assert.Equal(t, int64(2), first.Attrs["active_sessions"])
	assert.Equal(t, "trace-1", first.Attrs["trace_id"])
	assert.Equal(t, "sess-1", first.Attrs["session_id"])

	assert.Equal(t, int64(3), records[1].Attrs["dataset.count"])

	r := AssertLogged(t, h, slog.LevelWarn, "dropped")
	assert.Equal(t, "rows dropped", r.Message)

	_, ok := h.Find(slog.LevelError, "dropped")
	assert.False(t, ok)
	AssertNoErrors(t, h)
}
