package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pevans/tempo/scraper"
	"gopkg.in/yaml.v3"
)

// FileConfig represents the structure of ~/.tempo/config.yaml.
type FileConfig struct {
	Output struct {
		Dir         string `yaml:"dir"`
		MarkdownDir string `yaml:"markdown_dir"`
	} `yaml:"output"`
	Scrape struct {
		Delay     string `yaml:"delay"`
		Timeout   string `yaml:"timeout"`
		UserAgent string `yaml:"user_agent"`
	} `yaml:"scrape"`
	Storage struct {
		Runs struct {
			DSN string `yaml:"dsn"`
		} `yaml:"runs"`
	} `yaml:"storage"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Selectors scraper.Config `yaml:"selectors"`
}

// ConfigPath returns $TEMPO_CONFIG, or ~/.tempo/config.yaml when unset.
func ConfigPath() (string, error) {
	if path := os.Getenv("TEMPO_CONFIG"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".tempo", "config.yaml"), nil
}

// LoadConfigFile loads the config file at ConfigPath. Returns nil if the
// file doesn't exist (not an error).
func LoadConfigFile() (*FileConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return ReadConfigFile(path)
}

// ReadConfigFile parses the config file at path. Returns nil if the file
// doesn't exist; returns an error if it exists but cannot be parsed.
func ReadConfigFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}
