package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration options for pylens.
type Config struct {
	// Analysis settings
	Analysis AnalysisConfig `koanf:"analysis" toml:"analysis" yaml:"analysis"`

	// File exclusion patterns
	Exclude ExcludeConfig `koanf:"exclude" toml:"exclude" yaml:"exclude"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output" yaml:"output"`
}

// AnalysisConfig controls which analyzers run and how.
type AnalysisConfig struct {
	Focus       string `koanf:"focus" toml:"focus" yaml:"focus"`
	MinScore    int    `koanf:"min_score" toml:"min_score" yaml:"min_score"`
	MaxFileSize int64  `koanf:"max_file_size" toml:"max_file_size" yaml:"max_file_size"`
	Workers     int    `koanf:"workers" toml:"workers" yaml:"workers"`
}

// ExcludeConfig defines file exclusion patterns applied on top of the
// built-in __pycache__ and hidden-path rules.
type ExcludeConfig struct {
	Patterns  []string `koanf:"patterns" toml:"patterns" yaml:"patterns"`
	Gitignore bool     `koanf:"gitignore" toml:"gitignore" yaml:"gitignore"`
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format string `koanf:"format" toml:"format" yaml:"format"` // markdown, text, json, toon
	Color  bool   `koanf:"color" toml:"color" yaml:"color"`
}

// Focus values accepted by analysis.focus.
var Focuses = []string{"all", "complexity", "architecture", "naming", "duplication"}

// Formats accepted by output.format.
var Formats = []string{"markdown", "md", "text", "json", "toon"}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Focus:       "all",
			MinScore:    1,
			MaxFileSize: 0,
			Workers:     0,
		},
		Exclude: ExcludeConfig{
			Patterns:  []string{},
			Gitignore: false,
		},
		Output: OutputConfig{
			Format: "markdown",
			Color:  true,
		},
	}
}

// Load loads configuration from a file. The raw document is checked against
// the embedded schema before it is merged over the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".toml":
		parser = toml.Parser()
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	if err := validateRaw(k.Raw()); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// configNames are the standard config file names, in search order.
var configNames = []string{
	"pylens.toml",
	"pylens.yaml",
	"pylens.yml",
	"pylens.json",
	".pylens.toml",
	".pylens.yaml",
	".pylens.yml",
	".pylens.json",
}

// LoadResult is a loaded config and the file it came from.
// Source is empty when defaults were used.
type LoadResult struct {
	Config *Config
	Source string
}

type loadOptions struct {
	path string
	dirs []string
}

// LoadOption configures LoadConfig.
type LoadOption func(*loadOptions)

// WithPath loads an explicit config file instead of searching.
func WithPath(path string) LoadOption {
	return func(o *loadOptions) {
		o.path = path
	}
}

// WithSearchDirs overrides the directories searched for standard config names.
func WithSearchDirs(dirs ...string) LoadOption {
	return func(o *loadOptions) {
		o.dirs = dirs
	}
}

// LoadConfig loads an explicit file or the first standard config file found.
// Unlike LoadOrDefault it reports errors in a config file that exists.
func LoadConfig(opts ...LoadOption) (*LoadResult, error) {
	o := &loadOptions{dirs: []string{"."}}
	for _, opt := range opts {
		opt(o)
	}

	if o.path != "" {
		cfg, err := Load(o.path)
		if err != nil {
			return nil, err
		}
		return &LoadResult{Config: cfg, Source: o.path}, nil
	}

	for _, dir := range o.dirs {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			cfg, err := Load(path)
			if err != nil {
				return nil, err
			}
			return &LoadResult{Config: cfg, Source: path}, nil
		}
	}

	return &LoadResult{Config: DefaultConfig()}, nil
}

// LoadOrDefault tries to load config from standard locations or returns defaults.
func LoadOrDefault() *Config {
	result, err := LoadConfig()
	if err != nil {
		return DefaultConfig()
	}
	return result.Config
}

// Validate checks semantic constraints the schema cannot express.
func (c *Config) Validate() error {
	if !slices.Contains(Focuses, c.Analysis.Focus) {
		return fmt.Errorf("analysis.focus %q must be one of %s", c.Analysis.Focus, strings.Join(Focuses, ", "))
	}
	if c.Analysis.MinScore < 0 {
		return fmt.Errorf("analysis.min_score must be >= 0, got %d", c.Analysis.MinScore)
	}
	if c.Analysis.MaxFileSize < 0 {
		return fmt.Errorf("analysis.max_file_size must be >= 0, got %d", c.Analysis.MaxFileSize)
	}
	if c.Analysis.Workers < 0 {
		return fmt.Errorf("analysis.workers must be >= 0, got %d", c.Analysis.Workers)
	}
	if !slices.Contains(Formats, strings.ToLower(c.Output.Format)) {
		return fmt.Errorf("output.format %q must be one of %s", c.Output.Format, strings.Join(Formats, ", "))
	}
	return nil
}
