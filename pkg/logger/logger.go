package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

var Log *slog.Logger = slog.Default()

type ctxKey string

const (
	requestIDKey ctxKey = "RequestID"
	userIDKey    ctxKey = "UserID"
)

// Init installs the process-wide JSON logger at the given level ("debug", "info", "warn", "error").
func Init(level string) {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	Log = slog.New(handler)
	slog.SetDefault(Log)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithRequest stores request scoped identifiers so FromContext can attach them.
func WithRequest(ctx context.Context, requestID, userID string) context.Context {
	if requestID != "" {
		ctx = context.WithValue(ctx, requestIDKey, requestID)
	}
	if userID != "" {
		ctx = context.WithValue(ctx, userIDKey, userID)
	}
	return ctx
}

// FromContext returns Log decorated with the request id and user id found in ctx.
// gin.Context works too because its Value falls back to the keys set with c.Set.
func FromContext(ctx context.Context) *slog.Logger {
	l := Log
	if ctx == nil {
		return l
	}
	if id, ok := ctx.Value(requestIDKey).(string); ok && id != "" {
		l = l.With("request_id", id)
	} else if id, ok := ctx.Value(string(requestIDKey)).(string); ok && id != "" {
		l = l.With("request_id", id)
	}
	if uid, ok := ctx.Value(userIDKey).(string); ok && uid != "" {
		l = l.With("user_id", uid)
	} else if uid, ok := ctx.Value(string(userIDKey)).(string); ok && uid != "" {
		l = l.With("user_id", uid)
	}
	return l
}
