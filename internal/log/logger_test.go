package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerStampsComponentOnce(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Component: ComponentHTTP, Output: &buf})

	logger.WithComponent(ComponentStorage).Info("stored", FieldCount, 3)

	out := buf.String()
	if strings.Count(out, "component=") != 1 {
		t.Fatalf("expected exactly one component attribute, got %q", out)
	}
	if !strings.Contains(out, "component=storage") || !strings.Contains(out, "count=3") {
		t.Errorf("unexpected log line %q", out)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelWarn, Output: &buf})

	logger.Info("hidden")
	logger.Warn("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Error("info record should be filtered at warn level")
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Error("warn record missing")
	}
}

func TestMiddlewareAndRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Output: &buf, Component: ComponentHTTP})

	var handler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		FromContext(r.Context()).InfoContext(r.Context(), "inside")
	})
	handler = RequestIDMiddleware(func(*http.Request) string { return "req-42" })(handler)
	handler = Middleware(logger)(handler)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !strings.Contains(buf.String(), "request_id=req-42") {
		t.Errorf("request id not propagated: %q", buf.String())
	}
}

func TestFromContextFallback(t *testing.T) {
	if got := FromContext(context.Background()).Component(); got != "unknown" {
		t.Errorf("Component() = %q, want unknown", got)
	}
}

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Level: slog.LevelInfo, Output: &buf, Component: ComponentTransaction}))
	ctx := context.Background()

	sl.LogTransactionRecorded(ctx, "2025-10-21", "Expense", "Food", 120000, "mem:2")
	sl.LogError(ctx, "append failed", errors.New("disk full"), OpAppend, nil)

	out := buf.String()
	for _, want := range []string{"category=Food", "amount_cents=120000", "ref=mem:2", "error=\"disk full\"", "operation=append"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}

	buf.Reset()
	r := httptest.NewRequest(http.MethodPost, "/transactions", nil)
	sl.LogHTTPEnd(ctx, r, http.StatusUnprocessableEntity, 3, "127.0.0.1")
	if !strings.Contains(buf.String(), "level=WARN") || !strings.Contains(buf.String(), "status_code=422") {
		t.Errorf("unexpected HTTP end line %q", buf.String())
	}
}
