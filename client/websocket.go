package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/felixgeelhaar/mcpcall/protocol"
)

// WebSocketTransport sends each request as one text frame and reads one
// frame back. The connection is dialed on first use and reused.
// Calls are serialized; only one request is on the wire at a time.
//
// Request metadata becomes headers of the opening handshake only, so values
// that change per call, such as X-Request-ID, reach the server once per
// connection. A changed Authorization value closes the connection and dials
// a new one with the new credential.
type WebSocketTransport struct {
	url             string
	dialer          *websocket.Dialer
	header          http.Header
	maxResponseSize int64

	mu       sync.Mutex
	conn     *websocket.Conn
	dialAuth string
	closed   bool
}

// WebSocketOption configures a WebSocketTransport.
type WebSocketOption func(*WebSocketTransport)

// WithDialer sets the dialer used to open the connection.
func WithDialer(d *websocket.Dialer) WebSocketOption {
	return func(t *WebSocketTransport) {
		if d != nil {
			t.dialer = d
		}
	}
}

// WithHandshakeHeader adds a header sent with the opening handshake.
func WithHandshakeHeader(key, value string) WebSocketOption {
	return func(t *WebSocketTransport) {
		t.header.Set(key, value)
	}
}

// WithWebSocketMaxResponseSize caps the size of a response frame.
func WithWebSocketMaxResponseSize(n int64) WebSocketOption {
	return func(t *WebSocketTransport) {
		if n > 0 {
			t.maxResponseSize = n
		}
	}
}

// NewWebSocketTransport creates a transport for a ws:// or wss:// endpoint.
func NewWebSocketTransport(rawURL string, opts ...WebSocketOption) (*WebSocketTransport, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}

	t := &WebSocketTransport{
		url: u.String(),
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: 10 * time.Second,
		},
		header:          make(http.Header),
		maxResponseSize: DefaultMaxResponseSize,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t, nil
}

// Send writes req and waits for the next frame from the server.
func (t *WebSocketTransport) Send(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil, &TransportError{Err: ErrTransportClosed}
	}

	conn, err := t.connect(ctx)
	if err != nil {
		return nil, err
	}

	deadline, _ := ctx.Deadline()
	_ = conn.SetWriteDeadline(deadline)
	_ = conn.SetReadDeadline(deadline)

	// Unblock reads when ctx is canceled without a deadline.
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetReadDeadline(time.Now())
	})
	defer stop()

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		t.dropLocked()
		return nil, &TransportError{Err: t.ctxErr(ctx, err)}
	}

	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.dropLocked()
		if errors.Is(err, websocket.ErrReadLimit) {
			return nil, &ProtocolError{Reason: ReasonTooLarge, Err: err}
		}
		return nil, &TransportError{Err: t.ctxErr(ctx, err)}
	}

	return decodeResponse(msg)
}

// connect returns the open connection, dialing if needed. Caller holds t.mu.
func (t *WebSocketTransport) connect(ctx context.Context) (*websocket.Conn, error) {
	header := t.header.Clone()
	for k, v := range protocol.MetadataFromContext(ctx) {
		header.Set(k, v)
	}
	auth := header.Get("Authorization")

	if t.conn != nil {
		if auth == t.dialAuth {
			return t.conn, nil
		}
		t.dropLocked()
	}

	conn, resp, err := t.dialer.DialContext(ctx, t.url, header)
	if err != nil {
		te := &TransportError{Err: t.ctxErr(ctx, err)}
		if resp != nil {
			te.StatusCode = resp.StatusCode
			te.Status = resp.Status
			_ = resp.Body.Close()
		}
		return nil, te
	}

	conn.SetReadLimit(t.maxResponseSize)
	t.conn = conn
	t.dialAuth = auth
	return conn, nil
}

// ctxErr prefers the context error so timeouts are recognizable.
func (t *WebSocketTransport) ctxErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %v", ctxErr, err)
	}
	if deadline, ok := ctx.Deadline(); ok && !time.Now().Before(deadline) {
		return fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
	}
	return err
}

// dropLocked discards a connection after a failed exchange so the next
// call dials a fresh one. Caller holds t.mu.
func (t *WebSocketTransport) dropLocked() {
	if t.conn != nil {
		_ = t.conn.Close()
		t.conn = nil
	}
}

// Close sends a close frame and shuts the connection.
func (t *WebSocketTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true

	if t.conn == nil {
		return nil
	}

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = t.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	err := t.conn.Close()
	t.conn = nil
	return err
}
