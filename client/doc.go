// Package client provides a JSON-RPC 2.0 client for MCP endpoints.
//
// A Client builds one request envelope per call, hands it to a Transport,
// and turns the reply into a result or a typed error. Nothing is retried.
//
// # Basic Usage
//
//	c, err := client.NewHTTP(client.HTTPConfig{
//	    URL:     "http://localhost:8000/mcp",
//	    Timeout: 30 * time.Second,
//	})
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	result, err := c.Call(ctx, "get_capabilities", nil)
//
// # Errors
//
// Every failed call returns one of:
//
//   - *TransportError: network failure, timeout, or a non-2xx HTTP status
//   - *ProtocolError: the body was not valid JSON or not a response object
//   - *RemoteError: the server answered with a JSON-RPC error object
//
// Helpers wrap these with context, so use errors.As or IsTransport,
// IsProtocol and IsRemote.
//
// # Request IDs
//
// By default every call is sent with id 1. Use WithIDGenerator with
// NewCounterID or UUIDID to vary it, and WithStrictID to reject responses
// that do not echo it.
//
// # Timeouts
//
// Each call is bounded by the client timeout (30s unless configured) or by
// the Timeout call option:
//
//	c.Call(ctx, "execute_command", params, client.Timeout(5*time.Second))
package client
