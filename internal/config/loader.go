package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Loader defines the interface for loading configuration files.
type Loader interface {
	// Load loads configuration from the specified file path.
	Load(path string) (*Config, error)
	// LoadOrDefault loads configuration or returns defaults if file doesn't exist.
	LoadOrDefault(path string) (*Config, error)
	// Validate validates the configuration.
	Validate(config *Config) error
}

// FileLoader implements the Loader interface for file-based configuration loading.
type FileLoader struct{}

// NewLoader creates a new FileLoader instance.
func NewLoader() Loader {
	return &FileLoader{}
}

// Load loads configuration from the specified file path. Fields absent from
// the file keep their default values.
func (l *FileLoader) Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, newFileError(ConfigNotFound, path, "configuration file not found", err)
		}
		return nil, newFileError(ConfigReadFailed, path, "failed to read configuration file", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, newFileError(ConfigInvalid, path, "invalid JSON syntax", err)
	}

	// Explicit zero values fall back to defaults
	mergeConfig(cfg, DefaultConfig())

	if err := l.Validate(cfg); err != nil {
		var cfgErr *ConfigError
		if errors.As(err, &cfgErr) {
			cfgErr.File = path
		}
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault loads configuration or returns defaults if file doesn't exist.
func (l *FileLoader) LoadOrDefault(path string) (*Config, error) {
	cfg, err := l.Load(path)
	if err != nil {
		// If file not found, return defaults
		var cfgErr *ConfigError
		if errors.As(err, &cfgErr) && cfgErr.Type == ConfigNotFound {
			return DefaultConfig(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// Validate validates the configuration.
func (l *FileLoader) Validate(config *Config) error {
	return Validate(config)
}

// mergeConfig merges missing fields from defaults into cfg.
func mergeConfig(cfg, defaults *Config) {
	// Engine
	if cfg.Engine.PackageName == "" {
		cfg.Engine.PackageName = defaults.Engine.PackageName
	}

	// Server
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaults.Server.Addr
	}
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = defaults.Server.LogLevel
	}
	if cfg.Server.LogFormat == "" {
		cfg.Server.LogFormat = defaults.Server.LogFormat
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = defaults.Server.MaxBodyBytes
	}

	// Render
	if cfg.Render.Concurrency == 0 {
		cfg.Render.Concurrency = defaults.Render.Concurrency
	}
}

// ExpandPath expands ~ to home directory and evaluates relative paths.
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	// Expand ~ to home directory
	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		if len(path) == 1 {
			return homeDir, nil
		}
		if path[1] == filepath.Separator {
			return filepath.Join(homeDir, path[2:]), nil
		}
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	return absPath, nil
}
