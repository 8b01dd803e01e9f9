package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pevans/tempo/scraper"
)

var ErrInvalidDuration = errors.New("invalid duration")

// Config is the resolved configuration of the CLI. Values are layered:
// defaults, then the config file, then TEMPO_* environment variables, then
// command-line flags.
type Config struct {
	OutputDir   string
	MarkdownDir string
	Delay       time.Duration
	Timeout     time.Duration
	UserAgent   string
	RunsDSN     string
	Addr        string
	Site        scraper.Config
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		OutputDir:   "output",
		MarkdownDir: "markdown",
		Delay:       time.Second,
		Timeout:     30 * time.Second,
		RunsDSN:     defaultRunsDSN(),
		Addr:        ":8080",
		Site:        scraper.DefaultConfig(),
	}
}

func defaultRunsDSN() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "tempo-runs.db"
	}
	return filepath.Join(homeDir, ".tempo", "runs.db")
}

// Load resolves defaults, the config file and the environment.
func Load() (*Config, error) {
	cfg := Default()

	fc, err := LoadConfigFile()
	if err != nil {
		return nil, err
	}
	if fc != nil {
		if err := cfg.ApplyFile(fc); err != nil {
			return nil, err
		}
	}

	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyFile overlays the non-empty values of a config file.
func (c *Config) ApplyFile(fc *FileConfig) error {
	setString(&c.OutputDir, fc.Output.Dir)
	setString(&c.MarkdownDir, fc.Output.MarkdownDir)
	setString(&c.UserAgent, fc.Scrape.UserAgent)
	setString(&c.RunsDSN, fc.Storage.Runs.DSN)
	setString(&c.Addr, fc.Server.Addr)

	if err := setDuration(&c.Delay, fc.Scrape.Delay, "scrape.delay"); err != nil {
		return err
	}
	if err := setDuration(&c.Timeout, fc.Scrape.Timeout, "scrape.timeout"); err != nil {
		return err
	}

	c.Site = c.Site.Merge(fc.Selectors)
	return nil
}

// ApplyEnv overlays TEMPO_* environment variables read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	setString(&c.OutputDir, getenv("TEMPO_OUTPUT_DIR"))
	setString(&c.UserAgent, getenv("TEMPO_USER_AGENT"))
	setString(&c.RunsDSN, getenv("TEMPO_RUNS_DSN"))

	if err := setDuration(&c.Delay, getenv("TEMPO_DELAY"), "TEMPO_DELAY"); err != nil {
		return err
	}
	return setDuration(&c.Timeout, getenv("TEMPO_TIMEOUT"), "TEMPO_TIMEOUT")
}

// ParseDuration accepts a Go duration ("1500ms") or a plain number of
// seconds ("1.5"). Negative values are rejected.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)

	d, err := time.ParseDuration(s)
	if err != nil {
		seconds, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
		}
		d = time.Duration(seconds * float64(time.Second))
	}

	if d < 0 {
		return 0, fmt.Errorf("%w: %q is negative", ErrInvalidDuration, s)
	}
	return d, nil
}

func setString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func setDuration(dst *time.Duration, value, name string) error {
	if value == "" {
		return nil
	}

	d, err := ParseDuration(value)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = d
	return nil
}
