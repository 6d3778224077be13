package slogx_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/reels/pkg/slogx"
)

func jsonLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, nil))
}

func lastRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	var rec map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &rec))
	return rec
}

func TestForPrefersContextLogger(t *testing.T) {
	var base, scoped bytes.Buffer
	ctx := slogx.WithContext(t.Context(), jsonLogger(&scoped))

	slogx.For(ctx, jsonLogger(&base), "op", "logout").Info("hello")

	assert.Zero(t, base.Len())
	assert.Equal(t, "logout", lastRecord(t, &scoped)["op"])
}

func TestForFallsBackToBase(t *testing.T) {
	var base bytes.Buffer

	slogx.For(t.Context(), jsonLogger(&base), "op", "resolve_session").Info("hello")

	assert.Equal(t, "resolve_session", lastRecord(t, &base)["op"])
}

func TestWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	ctx := slogx.WithRequestID(slogx.WithContext(t.Context(), jsonLogger(&buf)), "01J0000000000000000000000")

	slogx.FromContext(ctx).Info("hello")

	assert.Equal(t, "01J0000000000000000000000", lastRecord(t, &buf)["request_id"])
}

func TestHTTPMiddlewareKeepsIncomingRequestID(t *testing.T) {
	var buf bytes.Buffer
	var seen *slog.Logger

	h := slogx.HTTPMiddleware(jsonLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = slogx.FromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/livez", nil)
	req.Header.Set(slogx.RequestIDHeader, "req-123")
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, seen)
	rec := lastRecord(t, &buf)
	assert.Equal(t, "req-123", rec["request_id"])
	assert.EqualValues(t, http.StatusTeapot, rec["status"])
}

func TestTransportStampsRequestID(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get(slogx.RequestIDHeader)
	}))
	t.Cleanup(srv.Close)

	client := &http.Client{Transport: &slogx.Transport{Logger: slogx.Discard()}}
	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	assert.Len(t, got, 26)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, slogx.ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, slogx.ParseLevel("warning"))
	assert.Equal(t, slog.LevelInfo, slogx.ParseLevel("verbose"))
}
