// Package config loads server configuration from the environment and an
// optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	projectConfigName = "docsmith.yaml"
	homeConfigName    = "config.yaml"

	// EnvRootDir overrides the documents root directory.
	EnvRootDir = "WORD_FILES_PATH"
)

// Config is the full server configuration.
type Config struct {
	// RootDir is the directory document names resolve under.
	RootDir string `yaml:"root_dir"`
	// SofficePath locates the external converter binary.
	SofficePath string `yaml:"soffice_path"`
	// HistoryDB enables the SQLite conversion-history store when set.
	HistoryDB string `yaml:"history_db"`
	// HistoryRetention prunes conversion history older than this window.
	// Zero disables pruning.
	HistoryRetention Duration `yaml:"history_retention"`
	// HistorySchedule is the cron expression driving the retention sweep.
	HistorySchedule string `yaml:"history_schedule"`
}

// Duration decodes Go duration strings ("24h", "90m") from YAML.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		RootDir:     "word_files",
		SofficePath: "soffice",
	}
}

// Load assembles configuration with file values overriding built-in defaults
// and environment values overriding both. A .env file in the working
// directory is folded into the environment first.
func Load(explicitPath string) (Config, error) {
	// Missing .env is the common case and not an error.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load .env: %w", err)
	}

	cfg := Default()

	path, found, err := discoverPath(explicitPath)
	if err != nil {
		return Config{}, err
	}
	if found {
		if err := readFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if root := strings.TrimSpace(os.Getenv(EnvRootDir)); root != "" {
		cfg.RootDir = root
	}
	return cfg, nil
}

func discoverPath(explicitPath string) (string, bool, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", false, fmt.Errorf("config: resolve working directory: %w", err)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", false, fmt.Errorf("config: resolve user home: %w", err)
	}
	return DiscoverPathFrom(explicitPath, cwd, homeDir)
}

// DiscoverPathFrom resolves the config file location with first-match
// semantics: an explicit path must exist, otherwise the working directory is
// checked before the user's home config.
func DiscoverPathFrom(explicitPath, cwd, homeDir string) (string, bool, error) {
	candidates := make([]string, 0, 2)
	if clean := strings.TrimSpace(explicitPath); clean != "" {
		candidates = append(candidates, filepath.Clean(clean))
	} else {
		candidates = append(candidates, filepath.Join(cwd, projectConfigName))
		candidates = append(candidates, filepath.Join(homeDir, ".docsmith", homeConfigName))
	}

	for i, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, true, nil
		}
		if errors.Is(err, os.ErrNotExist) {
			if i == 0 && strings.TrimSpace(explicitPath) != "" {
				return "", false, fmt.Errorf("config: file %q not found", candidate)
			}
			continue
		}
		if err != nil {
			return "", false, fmt.Errorf("config: checking path %q: %w", candidate, err)
		}
	}
	return "", false, nil
}

func readFile(path string, cfg *Config) error {
	// #nosec G304 -- path resolved from explicit local config discovery.
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: reading %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: parsing %q: %w", path, err)
	}
	return nil
}
