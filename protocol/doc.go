// Package protocol defines the JSON-RPC 2.0 message types and error codes
// used to talk to an MCP endpoint.
//
// # Request and Response Types
//
//	type Request struct {
//	    JSONRPC string          `json:"jsonrpc"`
//	    ID      json.RawMessage `json:"id"`
//	    Method  string          `json:"method"`
//	    Params  json.RawMessage `json:"params"`
//	}
//
//	type Response struct {
//	    JSONRPC string          `json:"jsonrpc"`
//	    ID      json.RawMessage `json:"id,omitempty"`
//	    Result  json.RawMessage `json:"result,omitempty"`
//	    Error   *Error          `json:"error,omitempty"`
//	}
//
// Requests always carry params. NewRequest turns a nil params value into {}.
//
// # Error Codes
//
//	CodeParseError     = -32700  // Invalid JSON
//	CodeInvalidRequest = -32600  // Invalid Request object
//	CodeMethodNotFound = -32601  // Method not found
//	CodeInvalidParams  = -32602  // Invalid method parameters
//	CodeInternalError  = -32603  // Internal server error
//
// # Method Constants
//
//	MethodInitialize      = "initialize"
//	MethodGetCapabilities = "get_capabilities"
//	MethodSendMessage     = "send_message"
//	MethodExecuteCommand  = "execute_command"
//	MethodChat            = "chat"
//	MethodResourcesList   = "resources/list"
//	MethodPing            = "ping"
//
// Tools are invoked with ToolMethod(name), which yields "tools/<name>".
package protocol
