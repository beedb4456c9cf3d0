// Package mcp exposes the drift analysis engine to MCP clients.
package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/cadencelabs/driftwatch/internal/analysis/engine"
)

const (
	// serverName identifies this MCP server to clients.
	serverName = "DriftWatch MCP"
	// serverVersion identifies the MCP server version.
	serverVersion = "0.1.0"
)

// Server hosts the MCP tool surface over an in-process engine.
type Server struct {
	mcpServer *mcp.Server
}

// New creates an MCP server with the drift analysis tools registered.
func New(eng *engine.Engine) (*Server, error) {
	if eng == nil {
		return nil, fmt.Errorf("engine is required")
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	mcp.AddTool(mcpServer, AnalyzeBatchTool(), AnalyzeBatchHandler(eng))
	mcp.AddTool(mcpServer, UnitStatusTool(), UnitStatusHandler(eng))
	mcp.AddTool(mcpServer, ResetBaselineTool(), ResetBaselineHandler(eng))

	return &Server{mcpServer: mcpServer}, nil
}

// Run serves MCP over stdio and blocks until the transport closes or ctx
// ends. Context cancellation is a clean shutdown.
func (s *Server) Run(ctx context.Context) error {
	return s.serveWithTransport(ctx, &mcp.StdioTransport{})
}

func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}
