// Package mcp serves the type catalog over the Model Context Protocol.
package mcp

import (
	"sync"

	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/tscanon/pkg/catalog"
	"github.com/gnana997/tscanon/pkg/checker"
	"github.com/gnana997/tscanon/pkg/mcplog"
)

const serverVersion = "0.1.0-dev"

// Server implements the MCP server for tscanon, exposing catalog queries and
// on-demand conversion as tools.
type Server struct {
	mcpServer *server.MCPServer

	mu    sync.RWMutex
	query *catalog.QueryService

	checker *checker.Checker // may be nil; convert_source then builds its own parser
	logger  *mcplog.Logger   // may be nil (logging disabled)
}

// NewServer creates a new MCP server backed by the given QueryService, an
// optional Checker and an optional call logger.
func NewServer(qs *catalog.QueryService, chk *checker.Checker, logger *mcplog.Logger) *Server {
	s := &Server{query: qs, checker: chk, logger: logger}

	opts := []server.ServerOption{
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	}
	if logger != nil {
		opts = append(opts, server.WithToolHandlerMiddleware(s.loggingMiddleware()))
	}

	s.mcpServer = server.NewMCPServer("tscanon", serverVersion, opts...)

	s.mcpServer.AddTools(
		server.ServerTool{Tool: listTypesTool(), Handler: s.handleListTypes},
		server.ServerTool{Tool: getTypeTool(), Handler: s.handleGetType},
		server.ServerTool{Tool: listErrorsTool(), Handler: s.handleListErrors},
		server.ServerTool{Tool: convertSourceTool(), Handler: s.handleConvertSource},
	)

	return s
}

// SetCatalog replaces the catalog served by the query tools. Used by the
// watcher after files change.
func (s *Server) SetCatalog(cat *catalog.Catalog) {
	qs := catalog.NewQueryService(cat, cat.BuildIndex())
	s.mu.Lock()
	s.query = qs
	s.mu.Unlock()
}

func (s *Server) queryService() *catalog.QueryService {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
