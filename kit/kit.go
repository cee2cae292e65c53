// Package kit provides the transport-agnostic endpoint plumbing shared
// by the HTTP API and the MCP surface: a uniform endpoint shape,
// middleware chaining, and request-scoped context values.
package kit

import (
	"context"
	"log/slog"
	"time"
)

// Endpoint is the uniform shape of every exposed operation: typed
// request in, typed response out, both behind any so middleware can
// wrap without knowing the concrete types.
type Endpoint func(ctx context.Context, req any) (any, error)

// Middleware wraps an Endpoint with cross-cutting behavior.
type Middleware func(Endpoint) Endpoint

// Chain composes middlewares so the first argument is outermost.
func Chain(mws ...Middleware) Middleware {
	return func(next Endpoint) Endpoint {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		return next
	}
}

// Logging returns a middleware that records every call with its
// transport, request ID, duration and outcome.
func Logging(logger *slog.Logger, op string) Middleware {
	return func(next Endpoint) Endpoint {
		return func(ctx context.Context, req any) (any, error) {
			start := time.Now()
			resp, err := next(ctx, req)
			attrs := []any{
				"op", op,
				"transport", GetTransport(ctx),
				"request_id", GetRequestID(ctx),
				"duration", time.Since(start),
			}
			if err != nil {
				logger.Error("endpoint failed", append(attrs, "error", err)...)
			} else {
				logger.Info("endpoint ok", attrs...)
			}
			return resp, err
		}
	}
}
