// Package logging provides the slog handler used across the service.
package logging

import (
	"context"
	"io"
	"log/slog"
)

type contextKey string

const slogAttrs contextKey = "slogAttrs"

// ContextHandler adds slog attributes carried in the context to every
// record, so request-scoped fields (room, session) appear on all log
// lines without threading a logger through every call.
type ContextHandler struct {
	slog.Handler
}

// NewContextHandler wraps an slog.Handler with context-attr enrichment.
func NewContextHandler(h slog.Handler) ContextHandler {
	return ContextHandler{Handler: h}
}

// Handle enriches the record with attributes stored via WithAttrs.
func (h ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs, ok := ctx.Value(slogAttrs).([]slog.Attr); ok {
		for _, a := range attrs {
			r.AddAttrs(a)
		}
	}
	return h.Handler.Handle(ctx, r)
}

// WithAttrs stores attributes in the context for ContextHandler to pick up.
func WithAttrs(ctx context.Context, attr ...slog.Attr) context.Context {
	if v, ok := ctx.Value(slogAttrs).([]slog.Attr); ok {
		v = append(v, attr...)
		return context.WithValue(ctx, slogAttrs, v)
	}
	return context.WithValue(ctx, slogAttrs, attr)
}

// NewLogger creates a logger writing text records to w at the given
// level. Tests pass io.Discard.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	handler := NewContextHandler(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
	return slog.New(handler)
}
