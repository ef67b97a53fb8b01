package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/openmined/assetextract/internal/assets"
)

const (
	DefaultTable  = assets.LatestSelector
	DefaultOutput = "./assets/"
	EnvPrefix     = "ASSETEXTRACT"
)

var (
	home, _ = os.UserHomeDir()
	// SearchPaths are checked in order for a config file named `config`.
	SearchPaths = []string{
		filepath.Join(home, ".config", "assetextract"),
		filepath.Join(home, ".assetextract"),
	}
)

// ErrConfig reports conflicting options or a filter that does not compile.
var ErrConfig = errors.New("invalid configuration")

// Config is everything one extraction run needs.
type Config struct {
	Root          string
	Table         string
	Output        string
	List          bool
	Format        string
	Regex         string
	Glob          string
	Exclude       []string
	ExcludeFrom   string
	Verbosity     int
	Quiet         bool
	LogFile       string
	PreserveTimes bool
}

// Validate rejects option combinations that are mutually exclusive. Output is
// only considered set when it is non-empty; OutputDir supplies the default.
func (c *Config) Validate() error {
	if c.Root == "" {
		return fmt.Errorf("%w: asset folder is required", ErrConfig)
	}
	if c.List && c.Output != "" {
		return fmt.Errorf("%w: --output and --list are mutually exclusive", ErrConfig)
	}
	if c.Regex != "" && c.Glob != "" {
		return fmt.Errorf("%w: --regex and --glob are mutually exclusive", ErrConfig)
	}
	if c.Verbosity > 0 && c.Quiet {
		return fmt.Errorf("%w: --verbose and --quiet are mutually exclusive", ErrConfig)
	}
	if _, err := assets.ParseListFormat(c.Format); err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}
	return nil
}

func (c *Config) TableSelector() string {
	if c.Table == "" {
		return DefaultTable
	}
	return c.Table
}

func (c *Config) OutputDir() string {
	if c.Output == "" {
		return DefaultOutput
	}
	return c.Output
}

func (c *Config) ListFormat() assets.ListFormat {
	f, _ := assets.ParseListFormat(c.Format)
	return f
}

// Filters compiles the include pattern (regex or glob) and the exclusion rules.
func (c *Config) Filters() ([]assets.Filter, error) {
	var filters []assets.Filter

	switch {
	case c.Regex != "":
		f, err := assets.NewRegexFilter(c.Regex)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfig, err)
		}
		filters = append(filters, f)
	case c.Glob != "":
		f, err := assets.NewGlobFilter(c.Glob)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfig, err)
		}
		filters = append(filters, f)
	}

	excludes := append([]string(nil), c.Exclude...)
	if c.ExcludeFrom != "" {
		lines, err := assets.ReadExcludeFile(c.ExcludeFrom)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfig, err)
		}
		excludes = append(excludes, lines...)
	}
	if len(excludes) > 0 {
		filters = append(filters, assets.NewExcludeFilter(excludes...))
	}

	return filters, nil
}
