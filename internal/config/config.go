// Package config loads the optional per-project pkgver configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/jaxxstorm/pkgver"
	"github.com/jaxxstorm/pkgver/internal/logger"
)

// DefaultConfigFiles are searched, in order, in the project directory.
var DefaultConfigFiles = []string{
	".pkgver.yaml",
	".pkgver.yml",
	"pkgver.yaml",
	"pkgver.yml",
}

// Config is the project configuration. Every field is optional.
type Config struct {
	// TargetVersion is the next version the project intends to release
	TargetVersion string `yaml:"target_version"`
	// PackageName must match the Name header of PKG-INFO or METADATA
	PackageName string `yaml:"package_name"`
	// TagPattern is a regex selecting the tags considered as releases
	TagPattern string `yaml:"tag_pattern"`
	// TagPrefix is stripped from tag names, e.g. "v" or "sdk/v"
	TagPrefix string `yaml:"tag_prefix"`
	// CacheFile is the versioninfo cache path, relative to the project
	CacheFile string `yaml:"cache_file"`
	// LogLevel sets the logging verbosity: debug, info, warn, error
	LogLevel string `yaml:"log_level"`
}

// NewDefault returns a configuration with default values.
func NewDefault() *Config {
	return &Config{
		CacheFile: pkgver.DefaultVersionInfoFile,
		LogLevel:  "warn",
	}
}

// Load reads the configuration for the project in dir. An explicit path
// must exist; otherwise DefaultConfigFiles are searched and, when none is
// present, the defaults are returned.
func Load(dir, path string) (*Config, error) {
	configPath, err := resolveConfigPath(dir, path)
	if err != nil {
		return nil, err
	}

	cfg := NewDefault()
	if configPath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", configPath, err)
	}

	return cfg, nil
}

func resolveConfigPath(dir, path string) (string, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("config file not found: %s", path)
		}
		return path, nil
	}

	for _, name := range DefaultConfigFiles {
		p := filepath.Join(dir, name)
		_, err := os.Stat(p)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("checking config file %s: %w", p, err)
		}
	}

	return "", nil
}

// Validate checks the configuration for errors.
func Validate(cfg *Config) error {
	if cfg.TargetVersion != "" {
		if _, err := pkgver.Parse(cfg.TargetVersion); err != nil {
			return fmt.Errorf("target_version: %w", err)
		}
	}

	if cfg.TagPattern != "" {
		if _, err := regexp.Compile(cfg.TagPattern); err != nil {
			return fmt.Errorf("tag_pattern: %w", err)
		}
	}

	if cfg.LogLevel != "" && !logger.ValidLevel(cfg.LogLevel) {
		return fmt.Errorf("log_level: unknown level %q (valid: debug, info, warn, error)", cfg.LogLevel)
	}

	return nil
}
