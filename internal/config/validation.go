package config

import "go/token"

var validLineEndings = map[string]bool{"": true, "\n": true, "\r\n": true, "\r": true}

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

var validLogFormats = map[string]bool{"text": true, "json": true}

// Validate reports the first setting of config that cannot be used.
func Validate(config *Config) error {
	if config == nil {
		return &ConfigError{Type: ConfigValidationFailed, Message: "configuration cannot be nil"}
	}

	if !validLineEndings[config.Engine.LineEnding] {
		return fieldError("engine.line_ending", "unsupported line ending %q (expected \\n, \\r\\n or \\r)", config.Engine.LineEnding)
	}
	if !token.IsIdentifier(config.Engine.PackageName) {
		return fieldError("engine.package_name", "%q is not a valid Go package name", config.Engine.PackageName)
	}
	if config.Cache.MaxEntries < 0 {
		return fieldError("cache.max_entries", "max entries cannot be negative, got %d", config.Cache.MaxEntries)
	}
	if config.Server.Addr == "" {
		return fieldError("server.addr", "listen address is required")
	}
	if !validLogLevels[config.Server.LogLevel] {
		return fieldError("server.log_level", "invalid log level %q (must be debug, info, warn, or error)", config.Server.LogLevel)
	}
	if !validLogFormats[config.Server.LogFormat] {
		return fieldError("server.log_format", "invalid log format %q (must be text or json)", config.Server.LogFormat)
	}
	if config.Server.MaxBodyBytes < 1 {
		return fieldError("server.max_body_bytes", "max body bytes must be positive, got %d", config.Server.MaxBodyBytes)
	}
	if config.Render.Concurrency < 1 {
		return fieldError("render.concurrency", "concurrency must be at least 1, got %d", config.Render.Concurrency)
	}
	return nil
}
