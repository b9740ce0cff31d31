package client

import (
	"encoding/json"
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator produces the JSON-RPC id for each call.
type IDGenerator interface {
	NextID() json.RawMessage
}

// IDGeneratorFunc adapts a function to IDGenerator.
type IDGeneratorFunc func() json.RawMessage

// NextID calls f().
func (f IDGeneratorFunc) NextID() json.RawMessage {
	return f()
}

// FixedID returns a generator that sends the same integer id on every call.
// FixedID(1) is the client default.
func FixedID(id int64) IDGenerator {
	raw := json.RawMessage(strconv.FormatInt(id, 10))
	return IDGeneratorFunc(func() json.RawMessage { return raw })
}

// CounterID hands out increasing integer ids starting at 1.
// It is safe for concurrent use.
type CounterID struct {
	n atomic.Int64
}

// NewCounterID creates a counter starting at 1.
func NewCounterID() *CounterID {
	return &CounterID{}
}

// NextID implements IDGenerator.
func (c *CounterID) NextID() json.RawMessage {
	return json.RawMessage(strconv.FormatInt(c.n.Add(1), 10))
}

// UUIDID returns a generator that sends a random UUID string per call.
func UUIDID() IDGenerator {
	return IDGeneratorFunc(func() json.RawMessage {
		return json.RawMessage(strconv.Quote(uuid.NewString()))
	})
}
