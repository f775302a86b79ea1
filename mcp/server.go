package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// ToolSource supplies the tools the server advertises and executes.
type ToolSource interface {
	// Schemas returns the descriptors advertised by tools/list.
	Schemas() []Tool

	// Call executes a named tool. Every outcome, including an unknown
	// tool name, is reported inside the result, never as a protocol
	// error.
	Call(ctx context.Context, name string, args map[string]any) ToolCallResult
}

// Server dispatches MCP requests to a ToolSource.
type Server struct {
	name    string
	version string
	tools   ToolSource
	logger  *slog.Logger
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLogger sets the server's logger.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a server that identifies itself with the given name
// and version during the initialize handshake.
func NewServer(name, version string, tools ToolSource, opts ...ServerOption) *Server {
	s := &Server{
		name:    name,
		version: version,
		tools:   tools,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Handle processes one JSON-RPC message and returns the response, or nil
// when the message is a notification and nothing is owed to the client.
func (s *Server) Handle(ctx context.Context, data []byte) *JSONRPCResponse {
	var req JSONRPCRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.logger.Warn("mcp: unparseable request", "error", err)
		return errorResponse(nil, ErrCodeParse, fmt.Sprintf("parse error: %v", err))
	}

	if req.IsNotification() {
		// notifications/initialized and anything else the client sends
		// without an id; nothing is owed back.
		s.logger.Debug("mcp: notification", "method", req.Method)
		return nil
	}

	if req.Method == "" {
		return errorResponse(req.ID, ErrCodeInvalidRequest, "invalid request: missing method")
	}

	s.logger.Debug("mcp: request", "method", req.Method)

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)

	case "ping":
		return resultResponse(req.ID, struct{}{})

	case "tools/list":
		return resultResponse(req.ID, ToolsListResult{Tools: s.tools.Schemas()})

	case "tools/call":
		return s.handleToolCall(ctx, req)

	default:
		return errorResponse(req.ID, ErrCodeMethodNotFound, fmt.Sprintf("method not found: %s", req.Method))
	}
}

func (s *Server) handleInitialize(req JSONRPCRequest) *JSONRPCResponse {
	var params InitializeParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return errorResponse(req.ID, ErrCodeInvalidParams, fmt.Sprintf("invalid params: %v", err))
		}
	}

	s.logger.Info("mcp: client connected",
		"client", params.ClientInfo.Name,
		"version", params.ClientInfo.Version,
		"protocol", params.ProtocolVersion)

	return resultResponse(req.ID, InitializeResult{
		ProtocolVersion: ProtocolVersion,
		ServerInfo: ServerInfo{
			Name:    s.name,
			Version: s.version,
		},
		Capabilities: Capabilities{
			Tools: &ToolsCapability{},
		},
	})
}

func (s *Server) handleToolCall(ctx context.Context, req JSONRPCRequest) *JSONRPCResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, ErrCodeInvalidParams, fmt.Sprintf("invalid params: %v", err))
	}
	if params.Name == "" {
		return errorResponse(req.ID, ErrCodeInvalidParams, "invalid params: missing tool name")
	}

	result := s.tools.Call(ctx, params.Name, params.Arguments)
	return resultResponse(req.ID, result)
}

func resultResponse(id json.RawMessage, v any) *JSONRPCResponse {
	data, err := json.Marshal(v)
	if err != nil {
		return errorResponse(id, ErrCodeInternal, fmt.Sprintf("marshal result: %v", err))
	}
	return &JSONRPCResponse{JSONRPC: "2.0", ID: id, Result: data}
}

func errorResponse(id json.RawMessage, code int, message string) *JSONRPCResponse {
	return &JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &JSONRPCError{Code: code, Message: message},
	}
}
