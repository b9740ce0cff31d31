package protocol

// Methods exposed by the MCP endpoint the client talks to.
const (
	MethodInitialize      = "initialize"
	MethodGetCapabilities = "get_capabilities"
	MethodSendMessage     = "send_message"
	MethodExecuteCommand  = "execute_command"
	MethodChat            = "chat"
	MethodResourcesList   = "resources/list"
	MethodPing            = "ping"
)

// ToolMethodPrefix is prepended to a tool name to form its method, e.g. "tools/search".
const ToolMethodPrefix = "tools/"

// ToolMethod returns the method name used to execute the named tool.
func ToolMethod(name string) string {
	return ToolMethodPrefix + name
}
