package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/felixgeelhaar/mcpcall/middleware"
	"github.com/felixgeelhaar/mcpcall/protocol"
)

// DefaultTimeout bounds a call when neither the client nor the call sets a timeout.
const DefaultTimeout = 30 * time.Second

// emptyResult is returned when the server omits result or sends null.
var emptyResult = json.RawMessage(`{}`)

// Transport sends one request and returns the decoded response envelope.
// Implementations report failures as *TransportError or *ProtocolError.
type Transport interface {
	// Send sends a request and waits for a response.
	Send(ctx context.Context, req *protocol.Request) (*protocol.Response, error)
	// Close releases the transport's resources.
	Close() error
}

// Client is an MCP client that performs single-shot JSON-RPC calls.
// A Client is safe for concurrent use if its Transport is.
type Client struct {
	transport Transport
	invoke    middleware.Invoker
	opts      clientOptions

	mu         sync.RWMutex
	serverInfo *ServerInfo
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	timeout    time.Duration
	ids        IDGenerator
	strictID   bool
	middleware []middleware.Middleware
}

// WithTimeout sets the timeout applied to each call that does not set its own.
// Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) {
		o.timeout = d
	}
}

// WithIDGenerator sets how JSON-RPC ids are produced. The default is FixedID(1).
func WithIDGenerator(gen IDGenerator) Option {
	return func(o *clientOptions) {
		o.ids = gen
	}
}

// WithStrictID makes a call fail with a ProtocolError when the server does not
// echo the request id.
func WithStrictID() Option {
	return func(o *clientOptions) {
		o.strictID = true
	}
}

// WithMiddleware wraps the transport with the given middleware, outermost first.
func WithMiddleware(mw ...middleware.Middleware) Option {
	return func(o *clientOptions) {
		o.middleware = append(o.middleware, mw...)
	}
}

// CallOption configures a single call.
type CallOption func(*callOptions)

type callOptions struct {
	timeout time.Duration
}

// Timeout bounds a single call. A call that exceeds it fails with a
// *TransportError whose Timeout method reports true. Zero disables the
// client's default for this call.
func Timeout(d time.Duration) CallOption {
	return func(o *callOptions) {
		o.timeout = d
	}
}

// New creates a new MCP client with the given transport.
func New(transport Transport, opts ...Option) *Client {
	options := clientOptions{
		timeout: DefaultTimeout,
		ids:     FixedID(1),
	}

	for _, opt := range opts {
		opt(&options)
	}

	return &Client{
		transport: transport,
		invoke:    middleware.Chain(options.middleware...)(transport.Send),
		opts:      options,
	}
}

// Call invokes method with params and returns the decoded result.
// A nil params value is sent as {}. A missing or null result yields an empty map.
// Numbers in the result are json.Number values holding the literal as sent.
//
// Failures are reported as *TransportError, *ProtocolError or *RemoteError.
func (c *Client) Call(ctx context.Context, method string, params any, opts ...CallOption) (any, error) {
	raw, err := c.CallRaw(ctx, method, params, opts...)
	if err != nil {
		return nil, err
	}

	result, err := decodeResult(raw)
	if err != nil {
		return nil, &ProtocolError{Reason: ReasonInvalidJSON, Err: err}
	}
	return result, nil
}

// CallInto invokes method and decodes the result into out.
func (c *Client) CallInto(ctx context.Context, method string, params any, out any, opts ...CallOption) error {
	raw, err := c.CallRaw(ctx, method, params, opts...)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &ProtocolError{Reason: ReasonUnexpectedResult, Err: err}
	}
	return nil
}

// CallRaw invokes method and returns the undecoded result.
func (c *Client) CallRaw(ctx context.Context, method string, params any, opts ...CallOption) (json.RawMessage, error) {
	co := callOptions{timeout: c.opts.timeout}
	for _, opt := range opts {
		opt(&co)
	}

	req, err := protocol.NewRequest(c.opts.ids.NextID(), method, params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}

	if co.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, co.timeout)
		defer cancel()
	}

	resp, err := c.invoke(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, &ProtocolError{Reason: ReasonInvalidEnvelope}
	}

	if c.opts.strictID && !idMatches(req, resp) {
		return nil, &ProtocolError{
			Reason: ReasonIDMismatch,
			Err:    fmt.Errorf("sent %s, got %s", req.ID, resp.ID),
		}
	}

	if resp.Error != nil {
		return nil, newRemoteError(resp.Error)
	}

	if !resp.HasResult() {
		return emptyResult, nil
	}
	return resp.Result, nil
}

// idMatches allows a null id on error responses, which servers send when
// they could not read the request id.
func idMatches(req *protocol.Request, resp *protocol.Response) bool {
	if protocol.SameID(req.ID, resp.ID) {
		return true
	}
	if resp.Error != nil {
		return len(resp.ID) == 0 || protocol.SameID(resp.ID, json.RawMessage("null"))
	}
	return false
}

// ServerInfo returns the info cached by the last successful Initialize.
func (c *Client) ServerInfo() *ServerInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.serverInfo
}

// Close closes the underlying transport.
func (c *Client) Close() error {
	return c.transport.Close()
}
