// Package mcptest provides an in-process MCP endpoint for tests.
//
// The server speaks JSON-RPC 2.0 over HTTP POST at /mcp and over WebSocket
// at /ws, with canned or programmable method handlers:
//
//	srv := mcptest.NewServer(t)
//	srv.HandleResult("get_capabilities", map[string]any{"tools": true})
//
//	c, _ := client.NewHTTP(client.HTTPConfig{URL: srv.URL()})
//	result, err := c.Call(ctx, "get_capabilities", nil)
package mcptest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/felixgeelhaar/mcpcall/protocol"
)

// HandlerFunc answers one method. Returning a *protocol.Error produces an
// error response with that code; any other error becomes an internal error.
type HandlerFunc func(ctx context.Context, params json.RawMessage) (any, error)

// Recorded is a request as the server received it.
type Recorded struct {
	Method string
	ID     json.RawMessage
	Params json.RawMessage
	Body   []byte
	Header http.Header
}

type rawReply struct {
	status int
	body   string
}

// Server is a fake MCP endpoint backed by httptest.
type Server struct {
	srv      *httptest.Server
	upgrader websocket.Upgrader

	mu       sync.Mutex
	handlers map[string]HandlerFunc
	requests []Recorded
	reply    *rawReply
	latency  time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithHandler registers a handler at construction time.
func WithHandler(method string, fn HandlerFunc) Option {
	return func(s *Server) {
		s.handlers[method] = fn
	}
}

// WithLatency delays every reply by d, or until the request is canceled.
func WithLatency(d time.Duration) Option {
	return func(s *Server) {
		s.latency = d
	}
}

// NewServer starts a server that is closed when the test ends.
func NewServer(t testing.TB, opts ...Option) *Server {
	t.Helper()

	s := &Server{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		handlers: make(map[string]HandlerFunc),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.srv = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)

	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	r.Post("/mcp", s.handleHTTP)
	r.Get("/ws", s.handleWebSocket)

	return r
}

// URL returns the HTTP JSON-RPC endpoint.
func (s *Server) URL() string {
	return s.srv.URL + "/mcp"
}

// WebSocketURL returns the WebSocket JSON-RPC endpoint.
func (s *Server) WebSocketURL() string {
	return "ws" + strings.TrimPrefix(s.srv.URL, "http") + "/ws"
}

// BaseURL returns the server root.
func (s *Server) BaseURL() string {
	return s.srv.URL
}

// Close shuts the server down. It is safe to call more than once.
func (s *Server) Close() {
	s.srv.CloseClientConnections()
	s.srv.Close()
}

// Handle registers fn for method, replacing any previous handler.
func (s *Server) Handle(method string, fn HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[method] = fn
}

// HandleResult makes method always succeed with result.
func (s *Server) HandleResult(method string, result any) {
	s.Handle(method, func(context.Context, json.RawMessage) (any, error) {
		return result, nil
	})
}

// HandleError makes method always fail with the given JSON-RPC error.
func (s *Server) HandleError(method string, code int, message string) {
	s.Handle(method, func(context.Context, json.RawMessage) (any, error) {
		return nil, &protocol.Error{Code: code, Message: message}
	})
}

// ReplyRaw makes every subsequent reply use status and body verbatim,
// bypassing the handlers. Over WebSocket only the body is used.
func (s *Server) ReplyRaw(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reply = &rawReply{status: status, body: body}
}

// ResetReply undoes ReplyRaw.
func (s *Server) ResetReply() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reply = nil
}

// Requests returns a copy of every request received so far.
func (s *Server) Requests() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Recorded, len(s.requests))
	copy(out, s.requests)
	return out
}

// LastRequest returns the most recent request. It panics if there is none.
func (s *Server) LastRequest() Recorded {
	reqs := s.Requests()
	if len(reqs) == 0 {
		panic("mcptest: no requests received")
	}
	return reqs[len(reqs)-1]
}

func (s *Server) record(body []byte, header http.Header) (*protocol.Request, error) {
	rec := Recorded{Body: body, Header: header.Clone()}

	var req protocol.Request
	err := json.Unmarshal(body, &req)
	if err == nil {
		rec.Method = req.Method
		rec.ID = req.ID
		rec.Params = req.Params
	}

	s.mu.Lock()
	s.requests = append(s.requests, rec)
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *Server) currentReply() *rawReply {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reply
}

func (s *Server) wait(ctx context.Context) {
	if s.latency <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(s.latency):
	}
}

// dispatch runs the handler for req and builds the response envelope.
func (s *Server) dispatch(ctx context.Context, req *protocol.Request) *protocol.Response {
	s.mu.Lock()
	fn, ok := s.handlers[req.Method]
	s.mu.Unlock()

	if !ok {
		return protocol.NewErrorResponse(req.ID, protocol.NewMethodNotFound("method not found: "+req.Method))
	}

	result, err := fn(ctx, req.Params)
	if err != nil {
		var rpcErr *protocol.Error
		if errors.As(err, &rpcErr) {
			return protocol.NewErrorResponse(req.ID, rpcErr)
		}
		return protocol.NewErrorResponse(req.ID, protocol.NewInternalError(err.Error()))
	}
	return protocol.NewResponse(req.ID, result)
}

func (s *Server) handleHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	req, decodeErr := s.record(body, r.Header)
	s.wait(r.Context())

	if reply := s.currentReply(); reply != nil {
		w.WriteHeader(reply.status)
		_, _ = io.WriteString(w, reply.body)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if decodeErr != nil {
		resp := protocol.NewErrorResponse(nil, protocol.NewParseError("Invalid JSON"))
		_ = json.NewEncoder(w).Encode(resp)
		return
	}

	_ = json.NewEncoder(w).Encode(s.dispatch(r.Context(), req))
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}

		req, decodeErr := s.record(msg, r.Header)
		s.wait(r.Context())

		var out []byte
		switch reply := s.currentReply(); {
		case reply != nil:
			out = []byte(reply.body)
		case decodeErr != nil:
			out, _ = json.Marshal(protocol.NewErrorResponse(nil, protocol.NewParseError("Invalid JSON")))
		default:
			out, err = json.Marshal(s.dispatch(r.Context(), req))
			if err != nil {
				out = []byte(fmt.Sprintf(`{"jsonrpc":"2.0","error":{"code":%d,"message":%q}}`,
					protocol.CodeInternalError, err.Error()))
			}
		}

		if err := conn.WriteMessage(websocket.TextMessage, out); err != nil {
			return
		}
	}
}
