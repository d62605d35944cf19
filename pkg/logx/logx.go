// Package logx contains slog handler middlewares and client request logging.
package logx

import (
	"context"

	"golang.org/x/exp/slog"
)

// HandleFunc is a function that handles a record.
type HandleFunc func(context.Context, slog.Record) error

// Middleware is a middleware for logging handler.
type Middleware func(HandleFunc) HandleFunc

// Chain is a slog.Handler that passes every record through
// the middlewares before the wrapped handler.
type Chain struct {
	Middleware []Middleware
	slog.Handler
}

// Handle runs the chain of middleware and the handler.
func (c *Chain) Handle(ctx context.Context, rec slog.Record) error {
	return c.wrap(c.Handler.Handle)(ctx, rec)
}

func (c *Chain) wrap(h HandleFunc) HandleFunc {
	for i := len(c.Middleware) - 1; i >= 0; i-- {
		h = c.Middleware[i](h)
	}
	return h
}

// WithGroup returns a new Chain with the given group.
func (c *Chain) WithGroup(group string) slog.Handler { return c.derive(c.Handler.WithGroup(group)) }

// WithAttrs returns a new Chain with the given attributes.
func (c *Chain) WithAttrs(attrs []slog.Attr) slog.Handler { return c.derive(c.Handler.WithAttrs(attrs)) }

func (c *Chain) derive(h slog.Handler) *Chain {
	return &Chain{Middleware: c.Middleware, Handler: h}
}

type attrsKey struct{}

// ContextWithAttrs returns a context carrying the attributes, in addition
// to the ones the parent carries. ContextAttrs adds them to every record
// logged with the context.
func ContextWithAttrs(parent context.Context, attrs ...slog.Attr) context.Context {
	prev := AttrsFromContext(parent)
	merged := make([]slog.Attr, 0, len(prev)+len(attrs))
	merged = append(append(merged, prev...), attrs...)
	return context.WithValue(parent, attrsKey{}, merged)
}

// AttrsFromContext returns the attributes carried by the context.
func AttrsFromContext(ctx context.Context) []slog.Attr {
	attrs, _ := ctx.Value(attrsKey{}).([]slog.Attr)
	return attrs
}

// ContextAttrs adds attributes from context to every record.
func ContextAttrs(next HandleFunc) HandleFunc {
	return func(ctx context.Context, rec slog.Record) error {
		if attrs := AttrsFromContext(ctx); len(attrs) > 0 {
			rec.AddAttrs(attrs...)
		}
		return next(ctx, rec)
	}
}

// NoOp returns a handler that discards all records.
func NoOp() slog.Handler { return noOp{} }

type noOp struct{}

func (noOp) Enabled(context.Context, slog.Level) bool  { return false }
func (noOp) Handle(context.Context, slog.Record) error { return nil }
func (n noOp) WithAttrs([]slog.Attr) slog.Handler      { return n }
func (n noOp) WithGroup(string) slog.Handler           { return n }
