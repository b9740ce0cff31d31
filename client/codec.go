package client

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/felixgeelhaar/mcpcall/protocol"
)

// decodeResponse parses a response body. Anything that is not valid JSON is
// ReasonInvalidJSON; valid JSON that is not a response object is
// ReasonInvalidEnvelope.
func decodeResponse(data []byte) (*protocol.Response, error) {
	if !json.Valid(data) {
		return nil, &ProtocolError{Reason: ReasonInvalidJSON}
	}

	if trimmed := bytes.TrimSpace(data); trimmed[0] != '{' {
		return nil, &ProtocolError{Reason: ReasonInvalidEnvelope}
	}

	var resp protocol.Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, &ProtocolError{Reason: ReasonInvalidEnvelope, Err: err}
	}
	return &resp, nil
}

// decodeResult decodes a result into generic values. Numbers are kept as
// json.Number so integers beyond 2^53 survive unchanged.
func decodeResult(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var result any
	if err := dec.Decode(&result); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("trailing data after result")
	}
	return result, nil
}
