package events

import (
	"context"
	"log/slog"
	"sync"
)

var (
	mu      sync.RWMutex
	emitter = logEmitter
)

// Emit publishes n on topic through the installed emitter.
func Emit(ctx context.Context, topic string, n Notification) {
	if n.RequestID == "" {
		n.RequestID = RequestFromContext(ctx)
	}
	mu.RLock()
	f := emitter
	mu.RUnlock()
	f(ctx, topic, n)
}

// SetCustomEmitter replaces the emitter. Nil silences notifications.
func SetCustomEmitter(f func(ctx context.Context, topic string, n Notification)) {
	mu.Lock()
	defer mu.Unlock()
	if f == nil {
		emitter = func(context.Context, string, Notification) {}
		return
	}
	emitter = f
}

// ResetEmitter restores the default slog emitter.
func ResetEmitter() {
	SetCustomEmitter(logEmitter)
}

func logEmitter(ctx context.Context, topic string, n Notification) {
	attrs := []any{"topic", topic, "id", n.ID}
	if n.RequestID != "" {
		attrs = append(attrs, "request", n.RequestID)
	}
	for k, v := range n.Metadata {
		attrs = append(attrs, k, v)
	}

	switch n.Level {
	case LevelError:
		slog.ErrorContext(ctx, n.Message, attrs...)
	case LevelWarn:
		slog.WarnContext(ctx, n.Message, attrs...)
	default:
		slog.InfoContext(ctx, n.Message, attrs...)
	}
}
