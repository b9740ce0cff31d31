package protocol

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "method not found",
			err:  &Error{Code: CodeMethodNotFound, Message: "not found"},
			want: "mcp: not found (code: -32601)",
		},
		{
			name: "parse error",
			err:  &Error{Code: CodeParseError, Message: "invalid JSON"},
			want: "mcp: invalid JSON (code: -32700)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestError_Is(t *testing.T) {
	err1 := NewInternalError("test")
	err2 := NewInternalError("different message")
	err3 := NewInvalidParams("test")

	if !errors.Is(err1, err2) {
		t.Error("errors with same code should match with errors.Is")
	}

	if errors.Is(err1, err3) {
		t.Error("errors with different codes should not match with errors.Is")
	}
}

func TestError_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantCode int
		wantMsg  string
		wantData any
	}{
		{
			name:     "object with data",
			input:    `{"code":-32602,"message":"bad","data":"field q"}`,
			wantCode: CodeInvalidParams,
			wantMsg:  "bad",
			wantData: "field q",
		},
		{
			name:     "bare number",
			input:    `500`,
			wantData: float64(500),
		},
		{
			name:     "bare string",
			input:    `"server exploded"`,
			wantData: "server exploded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e Error
			if err := json.Unmarshal([]byte(tt.input), &e); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if e.Code != tt.wantCode {
				t.Errorf("Code = %d, want %d", e.Code, tt.wantCode)
			}
			if e.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", e.Message, tt.wantMsg)
			}
			if e.Data != tt.wantData {
				t.Errorf("Data = %v, want %v", e.Data, tt.wantData)
			}
		})
	}
}

func TestError_UnmarshalJSON_Malformed(t *testing.T) {
	var e Error
	if err := e.UnmarshalJSON([]byte(`{"code":"x"}`)); err == nil {
		t.Fatal("expected error for non-numeric code")
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		code int
	}{
		{"parse", NewParseError("invalid JSON"), CodeParseError},
		{"invalid request", NewInvalidRequest("missing method"), CodeInvalidRequest},
		{"method not found", NewMethodNotFound("unknown/method"), CodeMethodNotFound},
		{"invalid params", NewInvalidParams("missing required field"), CodeInvalidParams},
		{"internal", NewInternalError("boom"), CodeInternalError},
		{"unauthorized", NewUnauthorized("no token"), CodeUnauthorized},
		{"rate limited", NewRateLimited("slow down"), CodeRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Code = %d, want %d", tt.err.Code, tt.code)
			}
		})
	}
}

func TestError_WithData(t *testing.T) {
	data := map[string]string{"field": "query", "reason": "required"}
	err := NewInvalidParams("validation failed").WithData(data)

	dataMap, ok := err.Data.(map[string]string)
	if !ok {
		t.Fatalf("Data type = %T, want map[string]string", err.Data)
	}

	if dataMap["field"] != "query" {
		t.Errorf("Data[field] = %q, want %q", dataMap["field"], "query")
	}
}
