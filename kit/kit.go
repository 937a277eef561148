// Package kit is the transport-neutral handler plumbing shared by the HTTP
// and MCP surfaces: an Endpoint is one operation, Middleware wraps it.
package kit

import (
	"context"
	"log/slog"
	"time"

	"github.com/hazyhaar/shadowroot/idgen"
)

// Endpoint handles one decoded request.
type Endpoint func(ctx context.Context, req any) (any, error)

// Middleware wraps an Endpoint.
type Middleware func(Endpoint) Endpoint

// Chain composes middlewares so the first one is outermost.
func Chain(mws ...Middleware) Middleware {
	return func(next Endpoint) Endpoint {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		return next
	}
}

var newRequestID = idgen.Prefixed("req_", idgen.Default)

// WithRequestIDs assigns a request ID to calls that arrive without one.
func WithRequestIDs() Middleware {
	return func(next Endpoint) Endpoint {
		return func(ctx context.Context, req any) (any, error) {
			if GetRequestID(ctx) == "" {
				ctx = WithRequestID(ctx, newRequestID())
			}
			return next(ctx, req)
		}
	}
}

// WithLogging logs each call with its transport, request ID and duration.
func WithLogging(logger *slog.Logger, op string) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
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
				logger.Warn("kit: call failed", append(attrs, "error", err)...)
				return resp, err
			}
			logger.Debug("kit: call", attrs...)
			return resp, nil
		}
	}
}
