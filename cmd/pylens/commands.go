package main

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/panbanda/pylens/internal/output"
	"github.com/panbanda/pylens/internal/service/analysis"
	"github.com/panbanda/pylens/pkg/config"
	"github.com/urfave/cli/v2"
)

func analyzeCmd() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Run the selected analyzers and print a combined report",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "focus",
				Usage: "Analyzers to run: " + strings.Join(config.Focuses, ", ") + " (default from config, else all)",
			},
			&cli.IntFlag{
				Name:  "threshold",
				Usage: "Minimum complexity score to report (default from config, else 1)",
			},
		},
		Action: runAnalyzeCmd,
	}
}

func runAnalyzeCmd(c *cli.Context) error {
	focus := c.String("focus")
	if focus != "" && !slices.Contains(config.Focuses, focus) {
		return fmt.Errorf("--focus must be one of %s (got %q)", strings.Join(config.Focuses, ", "), focus)
	}
	if c.Int("threshold") < 0 {
		return fmt.Errorf("--threshold must be >= 0 (got %d)", c.Int("threshold"))
	}

	return runReport(c, func(ctx context.Context, svc *analysis.Service, path string) (output.Renderable, error) {
		return svc.Analyze(ctx, path, analysis.Options{Focus: focus, MinScore: c.Int("threshold")})
	})
}

func complexityCmd() *cli.Command {
	return &cli.Command{
		Name:      "complexity",
		Aliases:   []string{"cx"},
		Usage:     "Score functions by cyclomatic complexity, length, nesting and parameters",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "threshold",
				Usage: "Minimum complexity score to report (default from config, else 1)",
			},
		},
		Action: func(c *cli.Context) error {
			if c.Int("threshold") < 0 {
				return fmt.Errorf("--threshold must be >= 0 (got %d)", c.Int("threshold"))
			}
			return runReport(c, func(ctx context.Context, svc *analysis.Service, path string) (output.Renderable, error) {
				return svc.Complexity(ctx, path, c.Int("threshold"))
			})
		},
	}
}

func namingCmd() *cli.Command {
	return &cli.Command{
		Name:      "naming",
		Usage:     "Check function names against Python conventions",
		ArgsUsage: "[path]",
		Action: func(c *cli.Context) error {
			return runReport(c, func(ctx context.Context, svc *analysis.Service, path string) (output.Renderable, error) {
				return svc.Naming(ctx, path)
			})
		},
	}
}

func architectureCmd() *cli.Command {
	return &cli.Command{
		Name:      "architecture",
		Aliases:   []string{"arch"},
		Usage:     "Report circular imports and layer violations",
		ArgsUsage: "[path]",
		Action: func(c *cli.Context) error {
			return runReport(c, func(ctx context.Context, svc *analysis.Service, path string) (output.Renderable, error) {
				return svc.Architecture(ctx, path)
			})
		},
	}
}

func duplicatesCmd() *cli.Command {
	return &cli.Command{
		Name:      "duplicates",
		Aliases:   []string{"dup"},
		Usage:     "Find duplicated function bodies and same-name functions across files",
		ArgsUsage: "[path]",
		Action: func(c *cli.Context) error {
			return runReport(c, func(ctx context.Context, svc *analysis.Service, path string) (output.Renderable, error) {
				return svc.Duplication(ctx, path)
			})
		},
	}
}
