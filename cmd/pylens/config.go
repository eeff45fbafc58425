package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/pelletier/go-toml"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

func configCmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Subcommands: []*cli.Command{
			{
				Name:  "validate",
				Usage: "Validate a configuration file",
				Description: `Validates a pylens configuration file against the schema and checks
its values.

Examples:
  pylens config validate                      # Validates default config locations
  pylens --config pylens.toml config validate # Validates a specific file`,
				Action: runConfigValidate,
			},
			{
				Name:  "show",
				Usage: "Show the effective configuration",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "yaml",
						Usage: "Print as YAML instead of TOML",
					},
				},
				Action: runConfigShow,
			},
		},
	}
}

func runConfigValidate(c *cli.Context) error {
	result, err := loadConfig(c)
	if err != nil {
		color.New(color.FgRed).Fprintln(c.App.Writer, "Configuration validation failed:")
		fmt.Fprintf(c.App.Writer, "  - %s\n", err)
		return err
	}

	if result.Source != "" {
		color.New(color.FgGreen).Fprintf(c.App.Writer, "Configuration valid: %s\n", result.Source)
	} else {
		color.New(color.FgYellow).Fprintln(c.App.Writer, "No config file found. Default configuration is valid.")
	}
	return nil
}

func runConfigShow(c *cli.Context) error {
	result, err := loadConfig(c)
	if err != nil {
		return err
	}

	if result.Source != "" {
		fmt.Fprintf(c.App.Writer, "# Configuration from: %s\n\n", result.Source)
	} else {
		fmt.Fprintln(c.App.Writer, "# Default configuration (no config file found)")
	}

	var content []byte
	if c.Bool("yaml") {
		content, err = yaml.Marshal(result.Config)
	} else {
		content, err = toml.Marshal(result.Config)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, err = c.App.Writer.Write(content)
	return err
}
