package events

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelWarn    Level = "warn"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Topics a notification can be published on.
const (
	TopicGenerate = "events:generate"
	TopicHistory  = "events:history"
	TopicPresence = "events:presence"
	TopicBackup   = "events:backup"
)

// Notification is a short user-facing message, the CLI's toast.
type Notification struct {
	ID        string            `json:"id"`
	Level     Level             `json:"level"`
	Message   string            `json:"message"`
	Timestamp time.Time         `json:"timestamp"`
	RequestID string            `json:"requestId,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

type contextKey string

const requestContextKey contextKey = "clickhelper/events/request"

// WithRequest returns a derived context annotated with the given request id
// so emitters can correlate notifications of one dispatch.
func WithRequest(ctx context.Context, requestID string) context.Context {
	if strings.TrimSpace(requestID) == "" {
		return ctx
	}
	return context.WithValue(ctx, requestContextKey, requestID)
}

// RequestFromContext extracts the request id associated with ctx.
func RequestFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(requestContextKey).(string); ok {
		return v
	}
	return ""
}

func New(level Level, message string) Notification {
	return Notification{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   message,
		Timestamp: time.Now(),
	}
}

func NewInfo(message string) Notification {
	return New(LevelInfo, message)
}

func NewWarn(message string) Notification {
	return New(LevelWarn, message)
}

func NewError(message string) Notification {
	return New(LevelError, message)
}

func NewSuccess(message string) Notification {
	return New(LevelSuccess, message)
}

// With returns a copy of n carrying one more metadata pair.
func (n Notification) With(key, value string) Notification {
	meta := make(map[string]string, len(n.Metadata)+1)
	for k, v := range n.Metadata {
		meta[k] = v
	}
	meta[key] = value
	n.Metadata = meta
	return n
}
