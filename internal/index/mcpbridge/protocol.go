// Package mcpbridge implements the generic tool-invocation boundary to an
// external code-index server: JSON-RPC 2.0 over a stdio subprocess, with
// tool calls addressed by server name + tool name + parameter bag.
package mcpbridge

import (
	"encoding/json"
)

// Message represents a JSON-RPC 2.0 message
type Message struct {
	Jsonrpc string          `json:"jsonrpc"`
	Id      interface{}     `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  interface{}     `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError represents a JSON-RPC 2.0 error
type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Error implements the error interface
func (e *RPCError) Error() string {
	return e.Message
}

// Standard JSON-RPC error codes
const (
	ParseError     = -32700
	InvalidRequest = -32600
	MethodNotFound = -32601
	InvalidParams  = -32602
	InternalError  = -32603
)

// NewRequest creates a request message
func NewRequest(id interface{}, method string, params interface{}) *Message {
	return &Message{
		Jsonrpc: "2.0",
		Id:      id,
		Method:  method,
		Params:  params,
	}
}

// NewNotification creates a notification message (no id)
func NewNotification(method string, params interface{}) *Message {
	return &Message{
		Jsonrpc: "2.0",
		Method:  method,
		Params:  params,
	}
}

// IsResponse checks if the message is a response (has id and either result or error)
func (m *Message) IsResponse() bool {
	return m.Id != nil && (m.Result != nil || m.Error != nil)
}

// toolCallParams is the parameter bag for a tools/call request.
type toolCallParams struct {
	Name      string      `json:"name"`
	Arguments interface{} `json:"arguments"`
}

// toolCallResult is the wrapper some servers put around tool output.
type toolCallResult struct {
	Content []toolContent `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

type toolContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}
