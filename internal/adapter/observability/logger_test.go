package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/internx/internx/internal/config"
)

func TestSetupLogger_DevAndProd(t *testing.T) {
	lg := SetupLogger(config.Config{AppEnv: "dev", OTELServiceName: "svc"})
	if lg == nil {
		t.Fatalf("nil logger")
	}
	lg2 := SetupLogger(config.Config{AppEnv: "prod", OTELServiceName: "svc"})
	if lg2 == nil {
		t.Fatalf("nil logger prod")
	}
}

func TestNewLogger_FieldsAndLevel(t *testing.T) {
	var buf bytes.Buffer
	lg := newLogger(config.Config{AppEnv: "prod", OTELServiceName: "internx-api"}, &buf)
	assert.False(t, lg.Enabled(context.Background(), slog.LevelDebug))

	lg.Info("hello", slog.String("k", "v"))
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "internx-api", line["service"])
	assert.Equal(t, "prod", line["env"])
	assert.Equal(t, "v", line["k"])

	dev := newLogger(config.Config{AppEnv: "dev"}, &buf)
	assert.True(t, dev.Enabled(context.Background(), slog.LevelDebug))
}
