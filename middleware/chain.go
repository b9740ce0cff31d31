// Package middleware provides interceptors that wrap outgoing MCP calls.
package middleware

import (
	"context"

	"github.com/felixgeelhaar/mcpcall/protocol"
)

// Invoker sends a request and returns the server's response.
// The innermost Invoker of a chain is the client's transport.
type Invoker func(ctx context.Context, req *protocol.Request) (*protocol.Response, error)

// Middleware wraps an Invoker with additional behavior.
type Middleware func(next Invoker) Invoker

// Chain composes multiple middleware into a single middleware.
// Middleware are applied in order, so Chain(m1, m2, m3) results in
// m1 wrapping m2 wrapping m3 wrapping the final invoker.
func Chain(middlewares ...Middleware) Middleware {
	return func(final Invoker) Invoker {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}

// MiddlewareChain provides a fluent API for building middleware chains.
type MiddlewareChain struct {
	middlewares []Middleware
}

// Use creates a new middleware chain starting with the given middleware.
func Use(middlewares ...Middleware) *MiddlewareChain {
	return &MiddlewareChain{
		middlewares: middlewares,
	}
}

// Append adds middleware to the chain and returns the updated chain.
func (c *MiddlewareChain) Append(middlewares ...Middleware) *MiddlewareChain {
	c.middlewares = append(c.middlewares, middlewares...)
	return c
}

// Middlewares returns the middleware collected so far.
func (c *MiddlewareChain) Middlewares() []Middleware {
	return c.middlewares
}

// Then applies the middleware chain to an invoker and returns the wrapped invoker.
func (c *MiddlewareChain) Then(invoker Invoker) Invoker {
	return Chain(c.middlewares...)(invoker)
}
