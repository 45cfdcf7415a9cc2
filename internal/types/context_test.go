package types

import (
	"context"
	"io"
	"log/slog"
	"testing"
)

func TestWithRequestID_GetRequestID(t *testing.T) {
	t.Run("round-trip stores and retrieves request ID", func(t *testing.T) {
		id := "req-abc-123"
		ctx := WithRequestID(context.Background(), id)
		if got := GetRequestID(ctx); got != id {
			t.Errorf("got %q, want %q", got, id)
		}
	})

	t.Run("returns empty string when no request ID in context", func(t *testing.T) {
		if got := GetRequestID(context.Background()); got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
	})
}

func TestWithLogger_LoggerFromContext(t *testing.T) {
	t.Run("round-trip stores and retrieves logger", func(t *testing.T) {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		ctx := WithLogger(context.Background(), logger)
		if got := LoggerFromContext(ctx); got != logger {
			t.Error("expected the stored logger back")
		}
	})

	t.Run("returns nil when no logger in context", func(t *testing.T) {
		if got := LoggerFromContext(context.Background()); got != nil {
			t.Error("expected nil logger for empty context")
		}
	})
}

func TestContextKeysArePrivate(t *testing.T) {
	// A plain string key must not collide with the typed contextKey.
	ctx := context.WithValue(context.Background(), "request_id", "should-not-match")
	if got := GetRequestID(ctx); got != "" {
		t.Errorf("expected empty string due to key type mismatch, got %q", got)
	}

	ctx = context.WithValue(context.Background(), "logger", slog.Default())
	if l := LoggerFromContext(ctx); l != nil {
		t.Error("expected nil logger due to key type mismatch")
	}
}
