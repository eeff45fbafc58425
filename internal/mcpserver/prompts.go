package mcpserver

import (
	"bytes"
	"context"
	"embed"
	"path"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"gopkg.in/yaml.v3"
)

//go:embed prompts/*.md
var promptFiles embed.FS

// promptFrontmatter is parsed from YAML frontmatter in prompt files.
type promptFrontmatter struct {
	Description string `yaml:"description"`
	Arguments   []struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
		Required    bool   `yaml:"required"`
	} `yaml:"arguments"`
}

// promptDefaults fills arguments the client leaves empty.
var promptDefaults = map[string]string{
	"path": ".",
}

// registerPrompts discovers and registers all prompts from embedded markdown files.
func (s *Server) registerPrompts() {
	for _, p := range loadPrompts() {
		s.server.AddPrompt(p.prompt, makePromptHandler(p.prompt.Description, p.body))
	}
}

type promptFile struct {
	prompt *mcp.Prompt
	body   string
}

func loadPrompts() []promptFile {
	entries, err := promptFiles.ReadDir("prompts")
	if err != nil {
		return nil
	}

	var prompts []promptFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		content, err := promptFiles.ReadFile(path.Join("prompts", entry.Name()))
		if err != nil {
			continue
		}

		fm, body := parseFrontmatter(content)
		prompt := &mcp.Prompt{
			Name:        strings.TrimSuffix(entry.Name(), ".md"),
			Description: fm.Description,
		}
		for _, arg := range fm.Arguments {
			prompt.Arguments = append(prompt.Arguments, &mcp.PromptArgument{
				Name:        arg.Name,
				Description: arg.Description,
				Required:    arg.Required,
			})
		}
		prompts = append(prompts, promptFile{prompt: prompt, body: body})
	}
	return prompts
}

// parseFrontmatter splits YAML frontmatter from the prompt body.
func parseFrontmatter(content []byte) (promptFrontmatter, string) {
	var fm promptFrontmatter
	if !bytes.HasPrefix(content, []byte("---\n")) {
		return fm, string(content)
	}

	rest := content[4:]
	end := bytes.Index(rest, []byte("\n---\n"))
	if end == -1 {
		return fm, string(content)
	}
	if err := yaml.Unmarshal(rest[:end], &fm); err != nil {
		return promptFrontmatter{}, string(content)
	}
	return fm, strings.TrimPrefix(string(rest[end+5:]), "\n")
}

// substituteArgs replaces {{name}} placeholders with request arguments or
// their defaults.
func substituteArgs(body string, args map[string]string) string {
	for key, def := range promptDefaults {
		val := args[key]
		if val == "" {
			val = def
		}
		body = strings.ReplaceAll(body, "{{"+key+"}}", val)
	}
	return body
}

func makePromptHandler(description, body string) mcp.PromptHandler {
	return func(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		var args map[string]string
		if req != nil && req.Params != nil {
			args = req.Params.Arguments
		}
		return &mcp.GetPromptResult{
			Description: description,
			Messages: []*mcp.PromptMessage{
				{
					Role:    "user",
					Content: &mcp.TextContent{Text: substituteArgs(body, args)},
				},
			},
		}, nil
	}
}
