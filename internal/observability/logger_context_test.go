package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextWithLoggerAndLoggerFromContext(t *testing.T) {
	lg := slog.Default()
	base := context.Background()

	ctx := ContextWithLogger(base, lg)
	assert.NotEqual(t, base, ctx)
	assert.Same(t, lg, LoggerFromContext(ctx))

	assert.Equal(t, base, ContextWithLogger(base, nil))
	assert.NotNil(t, LoggerFromContext(context.Background()))
	//nolint:staticcheck // nil context is tolerated on purpose
	assert.NotNil(t, LoggerFromContext(nil))
}

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := ContextWithRequestID(context.Background(), "req-123")
	assert.Equal(t, "req-123", RequestIDFromContext(ctx))
	assert.Equal(t, "", RequestIDFromContext(context.Background()))

	base := context.Background()
	assert.Equal(t, base, ContextWithRequestID(base, ""))
}

func TestOp_TagsOperation(t *testing.T) {
	var buf bytes.Buffer
	lg := slog.New(slog.NewJSONHandler(&buf, nil))
	ctx := ContextWithLogger(context.Background(), lg)

	Op(ctx, "resume.analyze", slog.String("user_id", "u1")).Info("stored")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "resume.analyze", line["op"])
	assert.Equal(t, "u1", line["user_id"])
	assert.Equal(t, "stored", line["msg"])
}
