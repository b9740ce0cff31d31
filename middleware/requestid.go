package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/mcpcall/protocol"
)

// RequestIDHeader is the metadata key the request id is sent under.
const RequestIDHeader = "X-Request-ID"

type contextKey string

const requestIDKey contextKey = "requestID"

// RequestID returns middleware that tags each call with a correlation id.
// The id is stored in the context and added to the call metadata under
// RequestIDHeader. An id already present in the context is reused.
//
// The correlation id is independent of the JSON-RPC id field. Over a
// WebSocket transport the header travels with the opening handshake only,
// so later calls on the same connection log ids the server never received.
func RequestID() Middleware {
	return RequestIDWithGenerator(uuid.NewString)
}

// RequestIDWithGenerator returns middleware that uses a custom ID generator.
func RequestIDWithGenerator(generator func() string) Middleware {
	return func(next Invoker) Invoker {
		return func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			id := RequestIDFromContext(ctx)
			if id == "" {
				id = generator()
				ctx = ContextWithRequestID(ctx, id)
			}
			ctx = protocol.WithMetadataValue(ctx, RequestIDHeader, id)
			return next(ctx, req)
		}
	}
}

// RequestIDFromContext returns the request ID from the context, or empty string if not set.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// ContextWithRequestID returns a new context with the request ID set.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}
