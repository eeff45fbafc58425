// Package mcpserver exposes the Python analyzers as MCP tools over stdio.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/panbanda/pylens/internal/service/analysis"
	"github.com/panbanda/pylens/pkg/config"
)

// Server wraps the MCP server and registers all pylens analysis tools.
type Server struct {
	server *mcp.Server
	svc    *analysis.Service
}

// Option configures a Server.
type Option func(*Server)

// WithConfig analyzes with cfg instead of the discovered configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Server) {
		s.svc = analysis.New(analysis.WithConfig(cfg))
	}
}

// NewServer creates a new MCP server with all pylens tools registered.
func NewServer(version string, opts ...Option) *Server {
	if version == "" {
		version = "dev"
	}
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "pylens",
			Version: version,
		},
		nil,
	)

	s := &Server{server: server}
	for _, opt := range opts {
		opt(s)
	}
	if s.svc == nil {
		s.svc = analysis.New()
	}
	s.registerTools()
	s.registerPrompts()
	return s
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// registerTools adds the analyzer tools to the server.
func (s *Server) registerTools() {
	// Combined report
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_code",
		Description: describeCode(),
	}, s.handleAnalyzeCode)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_complexity",
		Description: describeComplexity(),
	}, s.handleAnalyzeComplexity)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_architecture",
		Description: describeArchitecture(),
	}, s.handleAnalyzeArchitecture)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_naming",
		Description: describeNaming(),
	}, s.handleAnalyzeNaming)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_duplication",
		Description: describeDuplication(),
	}, s.handleAnalyzeDuplication)
}
