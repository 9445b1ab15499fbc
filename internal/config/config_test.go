package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig returned nil")
	}

	// Test engine defaults
	if cfg.Engine.PackageName != "generated" {
		t.Errorf("Expected PackageName=generated, got %s", cfg.Engine.PackageName)
	}
	if !cfg.Engine.Format {
		t.Error("Format should be enabled by default")
	}
	if cfg.Engine.LineEnding != "" {
		t.Errorf("Expected empty LineEnding, got %q", cfg.Engine.LineEnding)
	}

	// Test cache defaults
	if !cfg.Cache.Enabled {
		t.Error("Cache should be enabled by default")
	}
	if cfg.Cache.MaxEntries != 64 {
		t.Errorf("Expected MaxEntries=64, got %d", cfg.Cache.MaxEntries)
	}

	// Test output defaults
	if !cfg.Output.Color {
		t.Error("Color output should be enabled by default")
	}

	// Test server defaults
	if cfg.Server.LogLevel != "info" || cfg.Server.LogFormat != "text" {
		t.Errorf("Unexpected server logging defaults %+v", cfg.Server)
	}

	if cfg.Render.Concurrency != 4 {
		t.Errorf("Expected Concurrency=4, got %d", cfg.Render.Concurrency)
	}

	if err := Validate(cfg); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath()
	if path == "" {
		t.Skip("no home directory")
	}
	if filepath.Base(path) != "config.json" || filepath.Base(filepath.Dir(path)) != "dcg" {
		t.Errorf("Unexpected config path %s", path)
	}
}

func TestLoadConfig(t *testing.T) {
	loader := NewLoader()

	t.Run("valid config", func(t *testing.T) {
		tmpDir := t.TempDir()
		cfgPath := filepath.Join(tmpDir, "config.json")

		cfg := DefaultConfig()
		cfg.Cache.MaxEntries = 8
		cfg.Engine.PackageName = "pages"

		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			t.Fatalf("Failed to marshal config: %v", err)
		}

		if err := os.WriteFile(cfgPath, data, 0644); err != nil {
			t.Fatalf("Failed to write config: %v", err)
		}

		loadedCfg, err := loader.Load(cfgPath)
		if err != nil {
			t.Fatalf("Failed to load config: %v", err)
		}

		if loadedCfg.Cache.MaxEntries != 8 {
			t.Errorf("Expected MaxEntries=8, got %d", loadedCfg.Cache.MaxEntries)
		}
		if loadedCfg.Engine.PackageName != "pages" {
			t.Errorf("Expected PackageName=pages, got %s", loadedCfg.Engine.PackageName)
		}
	})

	t.Run("partial config keeps defaults", func(t *testing.T) {
		tmpDir := t.TempDir()
		cfgPath := filepath.Join(tmpDir, "config.json")

		data := `{"output": {"quiet": true}, "server": {"log_format": ""}, "render": {"concurrency": 0}}`
		if err := os.WriteFile(cfgPath, []byte(data), 0644); err != nil {
			t.Fatalf("Failed to write config: %v", err)
		}

		cfg, err := loader.Load(cfgPath)
		if err != nil {
			t.Fatalf("Failed to load config: %v", err)
		}
		if !cfg.Output.Quiet {
			t.Error("Expected Quiet=true")
		}
		if !cfg.Output.Color {
			t.Error("Expected Color to keep its default")
		}
		if cfg.Server.LogFormat != "text" {
			t.Errorf("Expected LogFormat=text, got %s", cfg.Server.LogFormat)
		}
		if cfg.Render.Concurrency != 4 {
			t.Errorf("Expected Concurrency=4, got %d", cfg.Render.Concurrency)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loader.Load("/nonexistent/config.json")
		if err == nil {
			t.Fatal("Expected error for missing file")
		}

		cfgErr, ok := err.(*ConfigError)
		if !ok {
			t.Fatalf("Expected ConfigError, got %T", err)
		}
		if cfgErr.Type != ConfigNotFound {
			t.Errorf("Expected ConfigNotFound, got %v", cfgErr.Type)
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		tmpDir := t.TempDir()
		cfgPath := filepath.Join(tmpDir, "config.json")

		if err := os.WriteFile(cfgPath, []byte("{ invalid json }"), 0644); err != nil {
			t.Fatalf("Failed to write invalid config: %v", err)
		}

		_, err := loader.Load(cfgPath)
		if err == nil {
			t.Fatal("Expected error for invalid JSON")
		}

		cfgErr, ok := err.(*ConfigError)
		if !ok {
			t.Fatalf("Expected ConfigError, got %T", err)
		}
		if cfgErr.Type != ConfigInvalid {
			t.Errorf("Expected ConfigInvalid, got %v", cfgErr.Type)
		}
	})

	t.Run("invalid values", func(t *testing.T) {
		tmpDir := t.TempDir()
		cfgPath := filepath.Join(tmpDir, "config.json")

		if err := os.WriteFile(cfgPath, []byte(`{"server": {"log_level": "loud"}}`), 0644); err != nil {
			t.Fatalf("Failed to write config: %v", err)
		}

		_, err := loader.Load(cfgPath)
		var cfgErr *ConfigError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("Expected ConfigError, got %v", err)
		}
		if cfgErr.Type != ConfigValidationFailed || cfgErr.Field != "server.log_level" {
			t.Errorf("Unexpected error %v", err)
		}
		if cfgErr.File != cfgPath {
			t.Errorf("Expected file %s, got %s", cfgPath, cfgErr.File)
		}
	})
}

func TestLoadOrDefault(t *testing.T) {
	loader := NewLoader()

	t.Run("returns defaults for missing file", func(t *testing.T) {
		cfg, err := loader.LoadOrDefault("/nonexistent/config.json")
		if err != nil {
			t.Fatalf("LoadOrDefault should not error on missing file: %v", err)
		}

		if cfg == nil {
			t.Fatal("Expected default config, got nil")
		}

		if cfg.Cache.MaxEntries != 64 {
			t.Errorf("Expected default MaxEntries=64, got %d", cfg.Cache.MaxEntries)
		}
	})

	t.Run("propagates invalid config", func(t *testing.T) {
		tmpDir := t.TempDir()
		cfgPath := filepath.Join(tmpDir, "config.json")

		if err := os.WriteFile(cfgPath, []byte("not json"), 0644); err != nil {
			t.Fatalf("Failed to write config: %v", err)
		}

		if _, err := loader.LoadOrDefault(cfgPath); err == nil {
			t.Error("Expected error for invalid config")
		}
	})
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"bad line ending", func(c *Config) { c.Engine.LineEnding = "\t" }, "engine.line_ending"},
		{"bad package name", func(c *Config) { c.Engine.PackageName = "my-pkg" }, "engine.package_name"},
		{"negative max entries", func(c *Config) { c.Cache.MaxEntries = -1 }, "cache.max_entries"},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }, "server.addr"},
		{"bad log level", func(c *Config) { c.Server.LogLevel = "trace" }, "server.log_level"},
		{"bad log format", func(c *Config) { c.Server.LogFormat = "xml" }, "server.log_format"},
		{"zero body limit", func(c *Config) { c.Server.MaxBodyBytes = 0 }, "server.max_body_bytes"},
		{"zero concurrency", func(c *Config) { c.Render.Concurrency = 0 }, "render.concurrency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)

			err := NewLoader().Validate(cfg)
			cfgErr, ok := err.(*ConfigError)
			if !ok {
				t.Fatalf("Expected ConfigError, got %v", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("Expected field %s, got %s", tt.field, cfgErr.Field)
			}
		})
	}

	t.Run("crlf line ending", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Engine.LineEnding = "\r\n"
		if err := Validate(cfg); err != nil {
			t.Errorf("Expected valid config, got %v", err)
		}
	})

	if err := Validate(nil); err == nil {
		t.Error("Expected error for nil config")
	}
}

func TestExpandPath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"empty path", "", false},
		{"absolute path", "/tmp/test", false},
		{"relative path", "./test", false},
		{"home directory", "~", false},
		{"home subdirectory", "~/test", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expanded, err := ExpandPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ExpandPath() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.path != "" && !tt.wantErr && expanded == "" {
				t.Errorf("ExpandPath() returned empty string for non-empty path")
			}
		})
	}
}

func TestConfigError(t *testing.T) {
	tests := []struct {
		name     string
		err      *ConfigError
		expected string
	}{
		{
			name:     "file error",
			err:      newFileError(ConfigNotFound, "config.json", "file not found", nil),
			expected: "config config.json: file not found",
		},
		{
			name:     "field error without file",
			err:      fieldError("render.concurrency", "too low: %d", 0),
			expected: "config: render.concurrency: too low: 0",
		},
		{
			name:     "field error with file",
			err:      &ConfigError{Type: ConfigValidationFailed, File: "config.json", Field: "server.addr", Message: "listen address is required"},
			expected: "config config.json: server.addr: listen address is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}

	t.Run("unwrap", func(t *testing.T) {
		cause := errors.New("boom")
		err := newFileError(ConfigReadFailed, "config.json", "failed to read configuration file", cause)
		if !errors.Is(err, cause) {
			t.Error("Unwrap() should return the cause")
		}
		if err.Type.String() != "read failed" {
			t.Errorf("Unexpected type name %q", err.Type.String())
		}
	})
}
