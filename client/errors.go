package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/mcpcall/protocol"
)

// DefaultRemoteMessage is used when a server error carries no message.
const DefaultRemoteMessage = "Unknown error"

// Reasons reported by ProtocolError.
const (
	ReasonInvalidJSON      = "invalid JSON"
	ReasonInvalidEnvelope  = "invalid response envelope"
	ReasonIDMismatch       = "response id mismatch"
	ReasonTooLarge         = "response too large"
	ReasonUnexpectedResult = "unexpected result type"
)

// ErrTransportClosed is wrapped by TransportError when Send is called after Close.
var ErrTransportClosed = errors.New("transport closed")

// TransportError reports a failure to exchange bytes with the server:
// a network error, a timeout, or a non-2xx HTTP status.
// StatusCode is zero when no HTTP response was received.
type TransportError struct {
	StatusCode int
	Status     string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Status != "":
		return fmt.Sprintf("mcp transport: unexpected status %s", e.Status)
	case e.StatusCode != 0:
		return fmt.Sprintf("mcp transport: unexpected status %d", e.StatusCode)
	case e.Err != nil:
		return "mcp transport: " + e.Err.Error()
	default:
		return "mcp transport: unknown failure"
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the failure was caused by a deadline.
func (e *TransportError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

// ProtocolError reports a response that could not be understood.
type ProtocolError struct {
	Reason string
	Err    error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("mcp protocol: %s: %v", e.Reason, e.Err)
	}
	return "mcp protocol: " + e.Reason
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// RemoteError is a JSON-RPC error object returned by the server.
type RemoteError struct {
	Code    int
	Message string
	Data    any
}

func newRemoteError(e *protocol.Error) *RemoteError {
	msg := e.Message
	if msg == "" {
		msg = DefaultRemoteMessage
	}
	return &RemoteError{Code: e.Code, Message: msg, Data: e.Data}
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("mcp remote: %s (code: %d)", e.Message, e.Code)
}

// Is matches another RemoteError or a *protocol.Error by code, so
// errors.Is(err, protocol.NewMethodNotFound("")) works on call results.
func (e *RemoteError) Is(target error) bool {
	switch t := target.(type) {
	case *RemoteError:
		return e.Code == t.Code
	case *protocol.Error:
		return e.Code == t.Code
	}
	return false
}

// IsTransport reports whether err contains a *TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsProtocol reports whether err contains a *ProtocolError.
func IsProtocol(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}

// IsRemote reports whether err contains a *RemoteError.
func IsRemote(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}
