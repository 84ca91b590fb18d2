// Package logging carries diagram correlation ids through a context and
// onto slog records.
package logging

import (
	"context"
	"io"
	"log/slog"
)

type ctxKey int

const (
	diagramIDKey ctxKey = iota
	nodeIDKey
	gestureKey
)

// WithDiagramID returns a context with the diagram ID set.
func WithDiagramID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, diagramIDKey, id)
}

// WithNodeID returns a context with the node ID set.
func WithNodeID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, nodeIDKey, id)
}

// WithGesture returns a context with the active gesture set.
func WithGesture(ctx context.Context, g string) context.Context {
	return context.WithValue(ctx, gestureKey, g)
}

// DiagramID extracts the diagram ID from the context, or "" if absent.
func DiagramID(ctx context.Context) string {
	v, _ := ctx.Value(diagramIDKey).(string)
	return v
}

// NodeID extracts the node ID from the context, or "" if absent.
func NodeID(ctx context.Context) string {
	v, _ := ctx.Value(nodeIDKey).(string)
	return v
}

// Gesture extracts the gesture from the context, or "" if absent.
func Gesture(ctx context.Context) string {
	v, _ := ctx.Value(gestureKey).(string)
	return v
}

func attrs(ctx context.Context) []slog.Attr {
	var out []slog.Attr
	if v := DiagramID(ctx); v != "" {
		out = append(out, slog.String("diagram_id", v))
	}
	if v := NodeID(ctx); v != "" {
		out = append(out, slog.String("node_id", v))
	}
	if v := Gesture(ctx); v != "" {
		out = append(out, slog.String("gesture", v))
	}
	return out
}

// LogWith returns a logger enriched with correlation IDs from the context.
// Only non-empty values are added as attributes.
func LogWith(ctx context.Context, logger *slog.Logger) *slog.Logger {
	for _, a := range attrs(ctx) {
		logger = logger.With(a)
	}
	return logger
}

// CorrelationHandler wraps an slog.Handler, injecting correlation IDs from
// the context into every record logged with a *Context method.
type CorrelationHandler struct {
	inner slog.Handler
}

// NewCorrelationHandler wraps the given handler.
func NewCorrelationHandler(inner slog.Handler) *CorrelationHandler {
	return &CorrelationHandler{inner: inner}
}

func (h *CorrelationHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *CorrelationHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(attrs(ctx)...)
	return h.inner.Handle(ctx, r)
}

func (h *CorrelationHandler) WithAttrs(as []slog.Attr) slog.Handler {
	return &CorrelationHandler{inner: h.inner.WithAttrs(as)}
}

func (h *CorrelationHandler) WithGroup(name string) slog.Handler {
	return &CorrelationHandler{inner: h.inner.WithGroup(name)}
}

// New returns a text logger writing to w at level, with correlation ids.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(NewCorrelationHandler(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
