// Package mcp exposes the coordinator over the Model Context Protocol so
// editor agents and other MCP clients can talk to the project assistant.
// This is the composition root for the protocol surface: tools are
// constructed here and injected with the coordinator they wrap.
package mcp

import (
	"go.uber.org/zap"

	"github.com/mark3labs/mcp-go/server"

	"worklens/internal/agent"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates the MCP server with every tool registered.
func New(coordinator *agent.Coordinator, logger *zap.Logger, opts ...Option) *server.MCPServer {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := server.NewMCPServer(
		"worklens",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	chat := NewChatTool(coordinator, logger)
	for _, opt := range opts {
		opt(chat)
	}
	s.AddTool(chat.Definition(), chat.Handle)

	caps := NewCapabilitiesTool(coordinator)
	s.AddTool(caps.Definition(), caps.Handle)

	return s
}

// ServeStdio runs the server on stdin/stdout until the client disconnects.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}
