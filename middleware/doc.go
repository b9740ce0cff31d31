// Package middleware provides interceptors for outgoing MCP calls.
//
// Each middleware wraps the next Invoker in the chain. The innermost Invoker
// is the client's transport, so middleware sees the fully built request
// envelope before it is sent and the decoded response envelope after.
//
// # Basic Usage
//
//	c := client.New(transport,
//	    client.WithMiddleware(
//	        middleware.RequestID(),
//	        middleware.Logging(middleware.NewSlogLogger(logger)),
//	    ),
//	)
//
// # Available Middleware
//
//   - RequestID: tags calls with a correlation id sent as X-Request-ID
//   - Logging: logs method, id and timing of every call
//   - RateLimit: token bucket throttling; calls over the limit fail locally
//   - SizeLimit: refuses to send oversized params
//   - BearerAuth, Header: attach transport metadata
//   - OTel: client spans and call metrics
//
// The client itself never logs. Install Logging to get call logs.
//
// Nothing in this package retries a call.
package middleware
