package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerAddsComponentOnce(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Format: "json", Output: &buf}).WithComponent(ComponentWorker)
	l.Info("hello", FieldResource, "bills")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "worker", rec[FieldComponent])
	assert.Equal(t, "bills", rec[FieldResource])
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte(`"component"`)))
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)

	lvl, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, lvl)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestMiddlewareCarriesRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Format: "json", Output: &buf})

	h := Middleware(base)(RequestIDMiddleware(func(*http.Request) string { return "req-1" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			FromContext(r.Context()).InfoContext(r.Context(), "inside")
		})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "req-1", rec[FieldRequestID])
}

func TestFromContextFallback(t *testing.T) {
	assert.Equal(t, "unknown", FromContext(context.Background()).Component())
}

func TestStructuredLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Format: "json", Output: &buf}))
	req := httptest.NewRequest(http.MethodPost, "/api/bills?x=1", nil)

	sl.LogHTTPEnd(context.Background(), req, http.StatusInternalServerError, 12, "10.0.0.1")
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "ERROR", rec["level"])
	assert.Equal(t, float64(500), rec[FieldStatusCode])

	buf.Reset()
	sl.LogError(context.Background(), "boom", errors.New("bad"), ComponentAPI, OpCreate, NewFields().WithRecord("bills", 3))
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "bad", rec[FieldError])
	assert.Equal(t, float64(3), rec[FieldRecordID])
}

func TestRecordChangedAndRejected(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Format: "json", Output: &buf}))

	sl.LogRecordChanged(context.Background(), OpUpdate, "bills", 3, "alice")
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "alice", rec[FieldSubject])
	assert.Equal(t, OpUpdate, rec[FieldOperation])

	buf.Reset()
	rec = nil
	sl.LogRecordChanged(context.Background(), OpDelete, "bills", 3, "")
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.NotContains(t, rec, FieldSubject)

	buf.Reset()
	rec = nil
	sl.LogRejected(context.Background(), ComponentRateLimit, "10.0.0.1", errors.New("rate limit exceeded"))
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "WARN", rec["level"])
	assert.Equal(t, ComponentRateLimit, rec[FieldComponent])
	assert.Equal(t, "10.0.0.1", rec[FieldClientIP])
}
