package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// JSONRPCVersion is the JSON-RPC protocol version.
const JSONRPCVersion = "2.0"

// emptyParams is sent when a call carries no parameters.
var emptyParams = json.RawMessage(`{}`)

// Request represents a JSON-RPC 2.0 request.
// Params is always serialized; a call without parameters sends an empty object.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

// NewRequest builds a request envelope. A nil params value becomes {}.
func NewRequest(id json.RawMessage, method string, params any) (*Request, error) {
	raw := emptyParams
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("marshal params: %w", err)
		}
		if !isNull(data) {
			raw = data
		}
	}

	return &Request{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Method:  method,
		Params:  raw,
	}, nil
}

// MarshalJSON keeps params present even when the field was left empty.
func (r Request) MarshalJSON() ([]byte, error) {
	type plain Request
	p := plain(r)
	if len(p.Params) == 0 {
		p.Params = emptyParams
	}
	return json.Marshal(p)
}

// Response represents a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// IsError reports whether the response carries an error member.
func (r *Response) IsError() bool {
	return r.Error != nil
}

// HasResult reports whether the response carries a non-null result.
func (r *Response) HasResult() bool {
	return len(r.Result) > 0 && !isNull(r.Result)
}

// NewResponse creates a successful response.
// If result cannot be encoded, an internal error response is returned instead.
func NewResponse(id json.RawMessage, result any) *Response {
	data, err := json.Marshal(result)
	if err != nil {
		return NewErrorResponse(id, NewInternalError(fmt.Sprintf("marshal result: %v", err)))
	}
	return &Response{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Result:  data,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(id json.RawMessage, err *Error) *Response {
	return &Response{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Error:   err,
	}
}

// SameID reports whether two encoded ids denote the same value.
// 1 and 1.0 are not considered equal; "1" and 1 are not equal either.
func SameID(a, b json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(a), bytes.TrimSpace(b))
}

func isNull(data []byte) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}
