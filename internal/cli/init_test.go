package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vanta/internal/config"
	"vanta/internal/log"
	"vanta/internal/store"
)

func TestSetupLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	cfg := config.Default()
	cfg.LogFormat = "json"
	cfg.LogLevel = "warn"

	var buf bytes.Buffer
	logger, err := SetupLogger(cfg, &buf, log.ComponentCLI)
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("kept")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "kept", rec["msg"])
	assert.Equal(t, log.ComponentCLI, rec[log.FieldComponent])

	cfg.LogLevel = "loud"
	_, err = SetupLogger(cfg, &buf, log.ComponentCLI)
	assert.Error(t, err)
}

func TestOpenBackend(t *testing.T) {
	cfg := config.Default()
	cfg.DataDirectory = t.TempDir()

	res, err := OpenBackend(context.Background(), cfg, log.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { res.Cleanup() })
	require.NoError(t, res.Ping(context.Background()))

	recs, err := res.Adapters.Transactions.List(context.Background(), store.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, recs)

	cfg.DataBackend = "carrier-pigeon"
	_, err = OpenBackend(context.Background(), cfg, log.Nop())
	assert.Error(t, err)
}
