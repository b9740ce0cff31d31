package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/felixgeelhaar/mcpcall/protocol"
)

// DefaultMaxResponseSize caps the response body read by HTTPTransport.
const DefaultMaxResponseSize = 10 << 20

// HTTPConfig is the explicit configuration for an HTTP client.
type HTTPConfig struct {
	// URL is the JSON-RPC endpoint, e.g. http://localhost:8000/mcp.
	URL string
	// Timeout is the default per-call timeout. Zero means DefaultTimeout.
	Timeout time.Duration
	// Headers are sent with every request.
	Headers map[string]string
	// HTTPClient overrides the HTTP client. Nil uses a new http.Client.
	HTTPClient *http.Client
	// MaxResponseSize overrides DefaultMaxResponseSize when positive.
	MaxResponseSize int64
}

// HTTPTransport sends each request as a single HTTP POST.
type HTTPTransport struct {
	url             string
	client          *http.Client
	header          http.Header
	maxResponseSize int64
}

// HTTPOption configures an HTTPTransport.
type HTTPOption func(*HTTPTransport)

// WithHTTPClient sets the HTTP client used to send requests.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(t *HTTPTransport) {
		if c != nil {
			t.client = c
		}
	}
}

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) HTTPOption {
	return func(t *HTTPTransport) {
		t.header.Set(key, value)
	}
}

// WithMaxResponseSize caps the response body size. Larger bodies fail with
// a ProtocolError.
func WithMaxResponseSize(n int64) HTTPOption {
	return func(t *HTTPTransport) {
		if n > 0 {
			t.maxResponseSize = n
		}
	}
}

// NewHTTPTransport creates a transport posting to rawURL.
func NewHTTPTransport(rawURL string, opts ...HTTPOption) (*HTTPTransport, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("url %q has no host", rawURL)
	}

	t := &HTTPTransport{
		url:             u.String(),
		client:          &http.Client{},
		header:          make(http.Header),
		maxResponseSize: DefaultMaxResponseSize,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t, nil
}

// URL returns the endpoint the transport posts to.
func (t *HTTPTransport) URL() string {
	return t.url
}

// Send posts req and decodes the response.
// The status code is checked before the body is read.
func (t *HTTPTransport) Send(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	for k, vs := range t.header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	for k, v := range protocol.MetadataFromContext(ctx) {
		httpReq.Header.Set(k, v)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, &TransportError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, t.maxResponseSize+1))
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(data)) > t.maxResponseSize {
		return nil, &ProtocolError{
			Reason: ReasonTooLarge,
			Err:    fmt.Errorf("body exceeds %d bytes", t.maxResponseSize),
		}
	}

	return decodeResponse(data)
}

// Close releases idle connections held by the HTTP client.
func (t *HTTPTransport) Close() error {
	t.client.CloseIdleConnections()
	return nil
}

// NewHTTP creates a client that posts to cfg.URL.
func NewHTTP(cfg HTTPConfig, opts ...Option) (*Client, error) {
	httpOpts := []HTTPOption{
		WithHTTPClient(cfg.HTTPClient),
		WithMaxResponseSize(cfg.MaxResponseSize),
	}
	for k, v := range cfg.Headers {
		httpOpts = append(httpOpts, WithHeader(k, v))
	}

	t, err := NewHTTPTransport(cfg.URL, httpOpts...)
	if err != nil {
		return nil, err
	}

	if cfg.Timeout > 0 {
		opts = append([]Option{WithTimeout(cfg.Timeout)}, opts...)
	}
	return New(t, opts...), nil
}
