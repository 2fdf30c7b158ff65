// Package mcp exposes a session's tool catalogue over the Model Context
// Protocol so MCP-capable agent runtimes can drive a generation session
// without a bespoke integration.
package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/Weavly/AppLoom/internal/domain/tool"
	"github.com/Weavly/AppLoom/internal/registry"
)

// Invoker is the slice of a session the MCP surface needs.
type Invoker interface {
	Invoke(ctx context.Context, name string, args any) tool.Result
	Manifest() []registry.Descriptor
}

// ServerConfig identifies the MCP server to connecting clients.
type ServerConfig struct {
	Name    string
	Version string
}

// Server bridges MCP tool calls onto a session.
type Server struct {
	cfg       ServerConfig
	inv       Invoker
	mcpServer *mcpserver.MCPServer
	log       *slog.Logger
}

// NewServer builds an MCP server with one MCP tool per session tool.
func NewServer(cfg ServerConfig, inv Invoker, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		cfg: cfg,
		inv: inv,
		mcpServer: mcpserver.NewMCPServer(cfg.Name, cfg.Version,
			mcpserver.WithToolCapabilities(true),
		),
		log: log,
	}
	s.registerTools()
	return s
}

// MCPServer returns the underlying mcp-go server, chiefly for tests.
func (s *Server) MCPServer() *mcpserver.MCPServer { return s.mcpServer }

// ServeStdio serves the MCP protocol on stdin/stdout until the client
// disconnects or ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	srv := mcpserver.NewStdioServer(s.mcpServer)
	s.log.Info("mcp server listening on stdio", "name", s.cfg.Name, "version", s.cfg.Version)
	return srv.Listen(ctx, os.Stdin, os.Stdout)
}

// registerTools mirrors the session manifest onto the MCP server. Argument
// shapes are validated by the tools themselves, so each MCP tool accepts an
// open object and forwards it untouched.
func (s *Server) registerTools() {
	for _, d := range s.inv.Manifest() {
		t := mcplib.NewTool(d.Name,
			mcplib.WithDescription(d.Description),
		)
		s.mcpServer.AddTools(mcpserver.ServerTool{
			Tool:    t,
			Handler: s.handlerFor(d.Name),
		})
	}
}

func (s *Server) handlerFor(name string) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
		res := s.inv.Invoke(ctx, name, req.GetArguments())
		if !res.Success {
			msg := "tool invocation failed"
			if res.Error != nil {
				msg = res.Error.Message
			}
			return mcplib.NewToolResultError(msg), nil
		}
		data, err := json.Marshal(res.Output)
		if err != nil {
			return mcplib.NewToolResultErrorFromErr("failed to marshal tool output", err), nil
		}
		return mcplib.NewToolResultText(string(data)), nil
	}
}
