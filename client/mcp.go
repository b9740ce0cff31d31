package client

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcpcall/protocol"
)

// ServerInfo contains what the server reported during initialize.
type ServerInfo struct {
	Name            string
	Version         string
	ProtocolVersion string
	Capabilities    map[string]any
}

// Supports reports whether the server advertised the named capability.
func (s *ServerInfo) Supports(capability string) bool {
	if s == nil {
		return false
	}
	_, ok := s.Capabilities[capability]
	return ok
}

// Resource describes a resource exposed by the server.
type Resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
}

type initializeResult struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    map[string]any `json:"capabilities"`
	ServerInfo      struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	} `json:"serverInfo"`
}

// Initialize performs the initialize call and caches the reported server info.
func (c *Client) Initialize(ctx context.Context, opts ...CallOption) (*ServerInfo, error) {
	var result initializeResult
	if err := c.CallInto(ctx, protocol.MethodInitialize, map[string]any{}, &result, opts...); err != nil {
		return nil, fmt.Errorf("initialize: %w", err)
	}

	info := &ServerInfo{
		Name:            result.ServerInfo.Name,
		Version:         result.ServerInfo.Version,
		ProtocolVersion: result.ProtocolVersion,
		Capabilities:    result.Capabilities,
	}
	if info.Capabilities == nil {
		info.Capabilities = map[string]any{}
	}

	c.mu.Lock()
	c.serverInfo = info
	c.mu.Unlock()

	return info, nil
}

// Capabilities asks the server which methods it supports.
func (c *Client) Capabilities(ctx context.Context, opts ...CallOption) (any, error) {
	result, err := c.Call(ctx, protocol.MethodGetCapabilities, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("get capabilities: %w", err)
	}
	return result, nil
}

// SendMessage sends a message through the server.
func (c *Client) SendMessage(ctx context.Context, message string, opts ...CallOption) (any, error) {
	result, err := c.Call(ctx, protocol.MethodSendMessage, map[string]any{"content": message}, opts...)
	if err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}
	return result, nil
}

// ExecuteCommand asks the server to execute a command.
func (c *Client) ExecuteCommand(ctx context.Context, command string, opts ...CallOption) (any, error) {
	result, err := c.Call(ctx, protocol.MethodExecuteCommand, map[string]any{"command": command}, opts...)
	if err != nil {
		return nil, fmt.Errorf("execute command: %w", err)
	}
	return result, nil
}

// Chat sends a chat message to the server.
func (c *Client) Chat(ctx context.Context, message string, opts ...CallOption) (any, error) {
	result, err := c.Call(ctx, protocol.MethodChat, map[string]any{"message": message}, opts...)
	if err != nil {
		return nil, fmt.Errorf("chat: %w", err)
	}
	return result, nil
}

// ListResources returns the resources the server exposes.
func (c *Client) ListResources(ctx context.Context, opts ...CallOption) ([]Resource, error) {
	var result struct {
		Resources []Resource `json:"resources"`
	}
	if err := c.CallInto(ctx, protocol.MethodResourcesList, map[string]any{}, &result, opts...); err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	if result.Resources == nil {
		return []Resource{}, nil
	}
	return result.Resources, nil
}

// ExecuteTool runs the named tool with params, which should encode as a JSON
// object: a map, a struct, or a json.RawMessage holding one.
func (c *Client) ExecuteTool(ctx context.Context, name string, params any, opts ...CallOption) (any, error) {
	if name == "" {
		return nil, fmt.Errorf("execute tool: empty tool name")
	}
	result, err := c.Call(ctx, protocol.ToolMethod(name), params, opts...)
	if err != nil {
		return nil, fmt.Errorf("execute tool %q: %w", name, err)
	}
	return result, nil
}

// Ping checks that the server answers.
func (c *Client) Ping(ctx context.Context, opts ...CallOption) error {
	if _, err := c.CallRaw(ctx, protocol.MethodPing, nil, opts...); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}
