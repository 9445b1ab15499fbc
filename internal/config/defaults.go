package config

import (
	"os"
	"path/filepath"
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			Debug:       false,
			LineEnding:  "",
			PackageName: "generated",
			Format:      true,
		},
		Output: OutputConfig{
			Color: true,
			Quiet: false,
		},
		Cache: CacheConfig{
			Enabled:    true,
			MaxEntries: 64,
		},
		Server: ServerConfig{
			Addr:         "127.0.0.1:8420",
			LogLevel:     "info",
			LogFormat:    "text",
			MaxBodyBytes: 1 << 20,
		},
		Render: RenderConfig{
			Concurrency: 4,
		},
	}
}

// DefaultConfigPath returns the default configuration file path.
func DefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config", "dcg", "config.json")
}
