package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"syscall"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		color.Red("Error: %v", err)
		stop()
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:     "pylens",
		Usage:    "Python code quality analysis",
		Version:  version,
		Metadata: make(map[string]any),
		Description: `pylens analyzes Python source for function complexity, import cycles,
clean-architecture layer violations, naming conventions and duplicated
function bodies. Source is parsed with tree-sitter; no Python runtime is
needed.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{"PYLENS_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: markdown, text, json, toon (default from config, else markdown)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write output to file",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Report files that could not be parsed",
			},
			&cli.BoolFlag{
				Name:  "no-progress",
				Usage: "Disable the progress bar",
			},
			&cli.StringFlag{
				Name:  "pprof",
				Usage: "Enable pprof profiling and write to specified prefix (creates <prefix>.cpu.pprof and <prefix>.mem.pprof)",
			},
		},
		Before: startProfile,
		After:  stopProfile,
		Commands: []*cli.Command{
			analyzeCmd(),
			complexityCmd(),
			namingCmd(),
			architectureCmd(),
			duplicatesCmd(),
			mcpCmd(),
			configCmd(),
		},
	}
}

func startProfile(c *cli.Context) error {
	pprofPrefix := c.String("pprof")
	if pprofPrefix == "" {
		return nil
	}
	cpuFile, err := os.Create(pprofPrefix + ".cpu.pprof")
	if err != nil {
		return fmt.Errorf("failed to create CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(cpuFile); err != nil {
		cpuFile.Close()
		return fmt.Errorf("failed to start CPU profile: %w", err)
	}
	c.App.Metadata["pprofCPU"] = cpuFile
	return nil
}

func stopProfile(c *cli.Context) error {
	pprofPrefix := c.String("pprof")
	if pprofPrefix == "" {
		return nil
	}

	pprof.StopCPUProfile()
	if cpuFile, ok := c.App.Metadata["pprofCPU"].(*os.File); ok {
		cpuFile.Close()
		color.Green("CPU profile written to %s.cpu.pprof", pprofPrefix)
	}

	memFile, err := os.Create(pprofPrefix + ".mem.pprof")
	if err != nil {
		return fmt.Errorf("failed to create memory profile: %w", err)
	}
	defer memFile.Close()

	runtime.GC()
	if err := pprof.WriteHeapProfile(memFile); err != nil {
		return fmt.Errorf("failed to write memory profile: %w", err)
	}
	color.Green("Memory profile written to %s.mem.pprof", pprofPrefix)
	return nil
}
