package mcpserver

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/panbanda/pylens/internal/output"
	"github.com/panbanda/pylens/internal/service/analysis"
	"github.com/panbanda/pylens/pkg/config"
)

// AnalyzeInput is the base input for all analyze tools.
type AnalyzeInput struct {
	Path   string `json:"path,omitempty" jsonschema:"Directory or Python file to analyze. Defaults to the current directory."`
	Format string `json:"format,omitempty" jsonschema:"Output format: markdown (default), json, or toon."`
}

// CodeInput adds the combined report options.
type CodeInput struct {
	AnalyzeInput
	Focus     string `json:"focus,omitempty" jsonschema:"Analyzers to run: all (default), complexity, architecture, naming, or duplication."`
	Threshold int    `json:"threshold,omitempty" jsonschema:"Minimum complexity score to report. Default 1."`
}

// ComplexityInput adds complexity-specific options.
type ComplexityInput struct {
	AnalyzeInput
	Threshold int `json:"threshold,omitempty" jsonschema:"Minimum complexity score to report. Default 1."`
}

func getPath(input AnalyzeInput) string {
	if input.Path == "" {
		return "."
	}
	return input.Path
}

func getFormat(input AnalyzeInput) output.Format {
	switch strings.ToLower(input.Format) {
	case "json":
		return output.FormatJSON
	case "toon":
		return output.FormatTOON
	default:
		return output.FormatMarkdown
	}
}

// toolResult renders r as the tool's text content. Input errors such as a
// missing path keep their one-line message and are flagged as errors.
func toolResult(r output.Renderable, format output.Format) (*mcp.CallToolResult, any, error) {
	text, err := output.Render(r, format)
	if err != nil {
		return nil, nil, err
	}
	result := &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
	if n, ok := r.(*output.Notice); ok && n.Level == "error" {
		result.IsError = true
	}
	return result, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

func (s *Server) handleAnalyzeCode(ctx context.Context, req *mcp.CallToolRequest, input CodeInput) (*mcp.CallToolResult, any, error) {
	if input.Focus != "" && !slices.Contains(config.Focuses, input.Focus) {
		return toolError(fmt.Sprintf("focus %q must be one of %s", input.Focus, strings.Join(config.Focuses, ", ")))
	}

	r, err := s.svc.Analyze(ctx, getPath(input.AnalyzeInput), analysis.Options{
		Focus:    input.Focus,
		MinScore: input.Threshold,
	})
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(r, getFormat(input.AnalyzeInput))
}

func (s *Server) handleAnalyzeComplexity(ctx context.Context, req *mcp.CallToolRequest, input ComplexityInput) (*mcp.CallToolResult, any, error) {
	r, err := s.svc.Complexity(ctx, getPath(input.AnalyzeInput), input.Threshold)
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(r, getFormat(input.AnalyzeInput))
}

func (s *Server) handleAnalyzeArchitecture(ctx context.Context, req *mcp.CallToolRequest, input AnalyzeInput) (*mcp.CallToolResult, any, error) {
	r, err := s.svc.Architecture(ctx, getPath(input))
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(r, getFormat(input))
}

func (s *Server) handleAnalyzeNaming(ctx context.Context, req *mcp.CallToolRequest, input AnalyzeInput) (*mcp.CallToolResult, any, error) {
	r, err := s.svc.Naming(ctx, getPath(input))
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(r, getFormat(input))
}

func (s *Server) handleAnalyzeDuplication(ctx context.Context, req *mcp.CallToolRequest, input AnalyzeInput) (*mcp.CallToolResult, any, error) {
	r, err := s.svc.Duplication(ctx, getPath(input))
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(r, getFormat(input))
}
