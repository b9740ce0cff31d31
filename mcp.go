// Package mcpcall is a minimal JSON-RPC 2.0 client for MCP endpoints.
//
// A call sends one request and waits for one response:
//
//	c, err := mcpcall.Dial("http://localhost:8000/mcp")
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	result, err := c.Call(ctx, "get_capabilities", nil)
//
// Failures are one of three types, distinguishable with errors.As:
//   - *TransportError: the server could not be reached, timed out, or
//     answered with a non-2xx status
//   - *ProtocolError: the response was not a JSON-RPC envelope
//   - *RemoteError: the server returned a JSON-RPC error object
//
// The client package holds the full API; this package re-exports the
// common parts.
package mcpcall

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/felixgeelhaar/mcpcall/client"
	"github.com/felixgeelhaar/mcpcall/middleware"
)

// Re-export core types for convenience

// Client performs JSON-RPC calls against one endpoint.
type Client = client.Client

// Option configures a Client.
type Option = client.Option

// CallOption configures a single call.
type CallOption = client.CallOption

// Error types
type TransportError = client.TransportError
type ProtocolError = client.ProtocolError
type RemoteError = client.RemoteError

// Middleware types
type Middleware = middleware.Middleware
type Logger = middleware.Logger

// DefaultTimeout bounds a call unless overridden.
const DefaultTimeout = client.DefaultTimeout

// WithTimeout sets the default per-call timeout.
func WithTimeout(d time.Duration) Option {
	return client.WithTimeout(d)
}

// WithMiddleware wraps every call with the given middleware.
func WithMiddleware(m ...Middleware) Option {
	return client.WithMiddleware(m...)
}

// WithLogger logs every call with request ids attached.
func WithLogger(l Logger) Option {
	return client.WithMiddleware(middleware.DefaultStack(l)...)
}

// Timeout bounds a single call.
func Timeout(d time.Duration) CallOption {
	return client.Timeout(d)
}

// Dial creates a client for rawURL. http and https URLs use one POST per
// call; ws and wss URLs use a WebSocket that is opened on the first call.
func Dial(rawURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}

	switch u.Scheme {
	case "http", "https":
		return client.NewHTTP(client.HTTPConfig{URL: rawURL}, opts...)
	case "ws", "wss":
		t, err := client.NewWebSocketTransport(rawURL)
		if err != nil {
			return nil, err
		}
		return client.New(t, opts...), nil
	}
	return nil, fmt.Errorf("unsupported url scheme %q", u.Scheme)
}

// Call dials baseURL, performs one call and closes the connection.
// A zero timeout means DefaultTimeout.
func Call(ctx context.Context, baseURL, method string, params any, timeout time.Duration) (any, error) {
	var opts []Option
	if timeout > 0 {
		opts = append(opts, WithTimeout(timeout))
	}

	c, err := Dial(baseURL, opts...)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	return c.Call(ctx, method, params)
}
