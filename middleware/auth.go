package middleware

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcpcall/protocol"
)

// TokenSource returns the credential to attach to a call.
type TokenSource func(ctx context.Context) (string, error)

// StaticToken returns a TokenSource that always yields token.
func StaticToken(token string) TokenSource {
	return func(context.Context) (string, error) {
		return token, nil
	}
}

// BearerAuth returns middleware that sends "Authorization: Bearer <token>"
// with every call. An empty token sends no header. When source fails the
// call is not sent and the error matches protocol.CodeUnauthorized.
func BearerAuth(source TokenSource) Middleware {
	return func(next Invoker) Invoker {
		return func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			token, err := source(ctx)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", protocol.NewUnauthorized("auth token unavailable"), err)
			}
			if token != "" {
				ctx = protocol.WithMetadataValue(ctx, "Authorization", "Bearer "+token)
			}
			return next(ctx, req)
		}
	}
}

// Header returns middleware that attaches a fixed metadata entry to every call.
func Header(key, value string) Middleware {
	return func(next Invoker) Invoker {
		return func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			return next(protocol.WithMetadataValue(ctx, key, value), req)
		}
	}
}
