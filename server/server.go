// Package server wires the operation dispatcher into an MCP server over
// stdio. This is the composition root for the transport: tool declarations
// and envelope serialization live here, all operation semantics live in
// package tool.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/wrenlabs/docsmith/tool"
)

// Options configures the MCP server.
type Options struct {
	Name       string
	Version    string
	Dispatcher *tool.Dispatcher
	Logger     *slog.Logger
}

// New builds an MCP server exposing every registered operation as a tool.
func New(opts Options) (*mcpserver.MCPServer, error) {
	if opts.Dispatcher == nil {
		return nil, errors.New("server: dispatcher is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	name := opts.Name
	if name == "" {
		name = "docsmith"
	}
	version := opts.Version
	if version == "" {
		version = "dev"
	}

	s := mcpserver.NewMCPServer(
		name,
		version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithRecovery(),
	)

	defs := definitions()
	registered := make(map[string]bool, len(defs))
	for _, def := range defs {
		s.AddTool(def, handlerFor(opts.Dispatcher, def.Name))
		registered[def.Name] = true
	}

	// Every dispatcher operation must have a matching declaration; a gap
	// here would silently hide an operation from clients.
	for _, op := range opts.Dispatcher.Operations() {
		if !registered[op] {
			return nil, fmt.Errorf("server: operation %q has no tool declaration", op)
		}
	}

	logger.Info("mcp server configured", "name", name, "version", version, "tools", len(defs))
	return s, nil
}

// Run serves MCP over stdin/stdout until the stream closes.
func Run(s *mcpserver.MCPServer) error {
	return mcpserver.ServeStdio(s)
}

// handlerFor adapts one dispatcher operation to the MCP handler signature.
// Failures travel inside the envelope; the SDK error return stays nil so
// clients always receive the structured error block.
func handlerFor(d *tool.Dispatcher, operation string) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		env := d.Dispatch(ctx, operation, req.GetArguments())
		payload, err := json.Marshal(env)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encode response: %v", err)), nil
		}
		if !env.Success {
			return mcp.NewToolResultError(string(payload)), nil
		}
		return mcp.NewToolResultText(string(payload)), nil
	}
}
