// Package e2e provides end-to-end compliance tests for the JSON-RPC client.
package e2e

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"sync"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/felixgeelhaar/mcpcall/client"
	"github.com/felixgeelhaar/mcpcall/mcptest"
	"github.com/felixgeelhaar/mcpcall/middleware"
	"github.com/felixgeelhaar/mcpcall/protocol"
)

// transports dials the same fake server over each supported transport.
var transports = map[string]func(t *testing.T, srv *mcptest.Server, opts ...client.Option) *client.Client{
	"http": func(t *testing.T, srv *mcptest.Server, opts ...client.Option) *client.Client {
		c, err := client.NewHTTP(client.HTTPConfig{URL: srv.URL()}, opts...)
		if err != nil {
			t.Fatalf("NewHTTP() error = %v", err)
		}
		t.Cleanup(func() { _ = c.Close() })
		return c
	},
	"websocket": func(t *testing.T, srv *mcptest.Server, opts ...client.Option) *client.Client {
		tr, err := client.NewWebSocketTransport(srv.WebSocketURL())
		if err != nil {
			t.Fatalf("NewWebSocketTransport() error = %v", err)
		}
		c := client.New(tr, opts...)
		t.Cleanup(func() { _ = c.Close() })
		return c
	},
}

func forEachTransport(t *testing.T, fn func(t *testing.T, dial func(*mcptest.Server, ...client.Option) *client.Client)) {
	for name, dial := range transports {
		t.Run(name, func(t *testing.T) {
			fn(t, func(srv *mcptest.Server, opts ...client.Option) *client.Client {
				return dial(t, srv, opts...)
			})
		})
	}
}

// TestCompliance_RequestEnvelope checks the exact members of an outgoing request.
func TestCompliance_RequestEnvelope(t *testing.T) {
	forEachTransport(t, func(t *testing.T, dial func(*mcptest.Server, ...client.Option) *client.Client) {
		srv := mcptest.NewServer(t)
		srv.HandleResult("get_capabilities", map[string]any{})
		c := dial(srv)

		if _, err := c.Call(context.Background(), "get_capabilities", nil); err != nil {
			t.Fatalf("Call() error = %v", err)
		}

		var body map[string]json.RawMessage
		if err := json.Unmarshal(srv.LastRequest().Body, &body); err != nil {
			t.Fatalf("decode: %v", err)
		}

		want := map[string]string{
			"jsonrpc": `"2.0"`,
			"id":      `1`,
			"method":  `"get_capabilities"`,
			"params":  `{}`,
		}
		got := make(map[string]string, len(body))
		for k, v := range body {
			got[k] = string(v)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("request = %v, want %v", got, want)
		}
	})
}

// TestCompliance_Responses checks how each kind of response is surfaced.
func TestCompliance_Responses(t *testing.T) {
	forEachTransport(t, func(t *testing.T, dial func(*mcptest.Server, ...client.Option) *client.Client) {
		t.Run("result", func(t *testing.T) {
			srv := mcptest.NewServer(t)
			srv.ReplyRaw(http.StatusOK, `{"jsonrpc":"2.0","id":1,"result":{"ok":true}}`)

			got, err := dial(srv).Call(context.Background(), "x", nil)
			if err != nil {
				t.Fatalf("Call() error = %v", err)
			}
			if !reflect.DeepEqual(got, map[string]any{"ok": true}) {
				t.Errorf("Call() = %#v", got)
			}
		})

		t.Run("error object", func(t *testing.T) {
			srv := mcptest.NewServer(t)
			srv.ReplyRaw(http.StatusOK, `{"jsonrpc":"2.0","id":1,"error":{"code":-32601,"message":"not found"}}`)

			_, err := dial(srv).Call(context.Background(), "x", nil)

			var remote *client.RemoteError
			if !errors.As(err, &remote) {
				t.Fatalf("expected *RemoteError, got %T: %v", err, err)
			}
			if remote.Message != "not found" {
				t.Errorf("Message = %q", remote.Message)
			}
		})

		t.Run("not json", func(t *testing.T) {
			srv := mcptest.NewServer(t)
			srv.ReplyRaw(http.StatusOK, `not json`)

			_, err := dial(srv).Call(context.Background(), "x", nil)
			if !client.IsProtocol(err) {
				t.Errorf("expected protocol error, got %T: %v", err, err)
			}
		})

		t.Run("empty result", func(t *testing.T) {
			srv := mcptest.NewServer(t)
			srv.ReplyRaw(http.StatusOK, `{"jsonrpc":"2.0","id":1}`)

			got, err := dial(srv).Call(context.Background(), "x", nil)
			if err != nil {
				t.Fatalf("Call() error = %v", err)
			}
			if !reflect.DeepEqual(got, map[string]any{}) {
				t.Errorf("Call() = %#v, want empty map", got)
			}
		})
	})
}

// TestCompliance_HTTPStatus checks that a failing status wins over the body.
func TestCompliance_HTTPStatus(t *testing.T) {
	srv := mcptest.NewServer(t)
	srv.ReplyRaw(http.StatusInternalServerError, `{"jsonrpc":"2.0","id":1,"result":{"ok":true}}`)

	_, err := transports["http"](t, srv).Call(context.Background(), "x", nil)

	var te *client.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TransportError, got %T: %v", err, err)
	}
	if te.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d", te.StatusCode)
	}
}

// TestCompliance_Timeout checks that a slow server surfaces as a transport timeout.
func TestCompliance_Timeout(t *testing.T) {
	forEachTransport(t, func(t *testing.T, dial func(*mcptest.Server, ...client.Option) *client.Client) {
		srv := mcptest.NewServer(t, mcptest.WithLatency(2*time.Second))
		srv.HandleResult("slow", "done")

		_, err := dial(srv).Call(context.Background(), "slow", nil, client.Timeout(50*time.Millisecond))

		var te *client.TransportError
		if !errors.As(err, &te) || !te.Timeout() {
			t.Errorf("expected transport timeout, got %T: %v", err, err)
		}
	})
}

// TestCompliance_StrictIDs checks id echoing with a counter under concurrency.
func TestCompliance_StrictIDs(t *testing.T) {
	srv := mcptest.NewServer(t)
	srv.HandleResult("ping", map[string]any{})
	c := transports["http"](t, srv, client.WithIDGenerator(client.NewCounterID()), client.WithStrictID())

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := c.Ping(context.Background()); err != nil {
				t.Errorf("Ping() error = %v", err)
			}
		}()
	}
	wg.Wait()

	seen := make(map[string]bool)
	for _, req := range srv.Requests() {
		seen[string(req.ID)] = true
	}
	if len(seen) != 10 {
		t.Errorf("distinct ids = %d, want 10", len(seen))
	}
}

// TestCompliance_MiddlewareStack runs a full client-side stack against a live server.
func TestCompliance_MiddlewareStack(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	srv := mcptest.NewServer(t)
	srv.HandleResult("chat", map[string]any{"reply": "hi"})

	stack := middleware.Use(middleware.DefaultStack(middleware.NopLogger{})...).
		Append(
			middleware.OTel(middleware.WithTracerProvider(tp), middleware.WithMeterProvider(mp)),
			middleware.BearerAuth(middleware.StaticToken("s3cret")),
			middleware.RateLimit(2, 2, middleware.WithRateLimitInterval(time.Hour)),
		)

	forEachTransport(t, func(t *testing.T, dial func(*mcptest.Server, ...client.Option) *client.Client) {
		exporter.Reset()
		c := dial(srv, client.WithMiddleware(stack.Middlewares()...))

		if _, err := c.Chat(context.Background(), "hello"); err != nil {
			t.Fatalf("Chat() error = %v", err)
		}

		spans := exporter.GetSpans()
		if len(spans) != 1 || spans[0].Name != "mcp.chat" {
			t.Errorf("spans = %v", spans)
		}
	})

	if got := srv.Requests()[0].Header.Get("Authorization"); got != "Bearer s3cret" {
		t.Errorf("Authorization = %q", got)
	}
	if srv.Requests()[0].Header.Get(middleware.RequestIDHeader) == "" {
		t.Error("expected request id header")
	}

	// Both transports share the limiter; the third call is refused locally.
	c := transports["http"](t, srv, client.WithMiddleware(stack.Middlewares()...))
	_, err := c.Chat(context.Background(), "again")
	if !errors.Is(err, protocol.NewRateLimited("")) {
		t.Errorf("expected rate limited, got %v", err)
	}
	if n := len(srv.Requests()); n != 2 {
		t.Errorf("requests = %d, want 2", n)
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(rm.ScopeMetrics) == 0 {
		t.Error("expected metrics to be recorded")
	}
}
