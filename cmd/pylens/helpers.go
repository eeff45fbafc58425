package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/panbanda/pylens/internal/fileproc"
	"github.com/panbanda/pylens/internal/output"
	"github.com/panbanda/pylens/internal/progress"
	"github.com/panbanda/pylens/internal/service/analysis"
	"github.com/panbanda/pylens/pkg/analyzer"
	"github.com/panbanda/pylens/pkg/config"
	"github.com/panbanda/pylens/pkg/parser"
	"github.com/urfave/cli/v2"
)

// getPath returns the first positional argument, defaulting to ".".
func getPath(c *cli.Context) string {
	if c.Args().Len() > 0 {
		return c.Args().First()
	}
	return "."
}

// loadConfig loads --config when set, else the first standard config file
// in the working directory, else defaults.
func loadConfig(c *cli.Context) (*config.LoadResult, error) {
	var opts []config.LoadOption
	if path := c.String("config"); path != "" {
		opts = append(opts, config.WithPath(path))
	}
	return config.LoadConfig(opts...)
}

// formatFor resolves the output format from the flag, then the config.
func formatFor(c *cli.Context, cfg *config.Config) output.Format {
	if f := c.String("format"); f != "" {
		return output.ParseFormat(f)
	}
	return output.ParseFormat(cfg.Output.Format)
}

// showProgress reports whether a progress bar should be drawn on stderr.
func showProgress(c *cli.Context) bool {
	if c.Bool("no-progress") {
		return false
	}
	return isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
}

// analysisFunc runs one service operation on a path.
type analysisFunc func(ctx context.Context, svc *analysis.Service, path string) (output.Renderable, error)

// runReport loads config, runs fn with an optional progress bar and writes
// the result in the selected format.
func runReport(c *cli.Context, fn analysisFunc) error {
	loaded, err := loadConfig(c)
	if err != nil {
		return err
	}
	cfg := loaded.Config
	svc := analysis.New(analysis.WithConfig(cfg))

	ctx := c.Context
	var bar *progress.Bar
	if showProgress(c) {
		bar = progress.New()
		ctx = analyzer.WithTracker(ctx, bar.Tracker())
	}

	result, err := fn(ctx, svc, getPath(c))
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if c.Bool("verbose") {
		reportSkipped(c.App.ErrWriter, analysis.Skipped(result))
	}

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()
	return formatter.Output(result)
}

// newFormatter writes to --output when set, else to the app's writer.
func newFormatter(c *cli.Context, cfg *config.Config) (*output.Formatter, error) {
	format := formatFor(c, cfg)
	if path := c.String("output"); path != "" {
		return output.NewFormatter(format, path, false)
	}
	return output.NewWriterFormatter(format, c.App.Writer, cfg.Output.Color), nil
}

// reportSkipped lists the files that produced no result. Files the parser
// rejected are unparsable; anything else failed to be read.
func reportSkipped(w io.Writer, skipped []fileproc.ProcessingError) {
	if w == nil {
		w = os.Stderr
	}
	warn := color.New(color.FgYellow)
	for _, f := range skipped {
		if parser.IsUnparsable(f.Err) {
			warn.Fprintf(w, "Skipped unparsable file: %s\n", f.Path)
			continue
		}
		warn.Fprintf(w, "Skipped unreadable file: %s (%v)\n", f.Path, f.Err)
	}
}
