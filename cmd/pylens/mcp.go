package main

import (
	"fmt"

	"github.com/panbanda/pylens/internal/mcpserver"
	"github.com/urfave/cli/v2"
)

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Start MCP (Model Context Protocol) server for LLM tool integration",
		Description: `Starts an MCP server over stdio transport that exposes the pylens
analyzers as tools that LLM clients can invoke.

To use with an MCP client, add to its config:
  {
    "mcpServers": {
      "pylens": {
        "command": "pylens",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - analyze_code          Combined report with prioritized recommendations
  - analyze_complexity    Function complexity scores
  - analyze_architecture  Circular imports and layer violations
  - analyze_naming        Function naming conventions
  - analyze_duplication   Duplicated and same-name functions`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "manifest",
				Usage: "Print the server.json manifest and exit",
			},
		},
		Action: runMCPCmd,
	}
}

func runMCPCmd(c *cli.Context) error {
	if c.Bool("manifest") {
		data, err := mcpserver.GenerateManifest(version)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(c.App.Writer, string(data))
		return err
	}

	loaded, err := loadConfig(c)
	if err != nil {
		return err
	}
	server := mcpserver.NewServer(version, mcpserver.WithConfig(loaded.Config))
	return server.Run(c.Context)
}
