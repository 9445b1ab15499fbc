package config

// Config represents the global dcg configuration.
type Config struct {
	// Engine configuration for parsing and source generation.
	Engine EngineConfig `json:"engine"`
	// Output configuration for display.
	Output OutputConfig `json:"output"`
	// Cache configuration for compiled units.
	Cache CacheConfig `json:"cache"`
	// Server configuration for dcg serve.
	Server ServerConfig `json:"server"`
	// Render configuration for manifest runs.
	Render RenderConfig `json:"render"`
}

// EngineConfig represents the default engine options.
type EngineConfig struct {
	// Debug emits line markers pointing back at the template.
	Debug bool `json:"debug"`
	// LineEnding forces the output line ending; empty means detect from the source.
	LineEnding string `json:"line_ending"`
	// PackageName is the package clause of generated units.
	PackageName string `json:"package_name"`
	// Format runs gofmt over generated source.
	Format bool `json:"format"`
}

// OutputConfig represents output and display settings.
type OutputConfig struct {
	// Color enables colored terminal output.
	Color bool `json:"color"`
	// Quiet suppresses non-error output.
	Quiet bool `json:"quiet"`
}

// CacheConfig represents compiled unit cache settings.
type CacheConfig struct {
	// Enabled indicates whether compiled units are reused.
	Enabled bool `json:"enabled"`
	// MaxEntries bounds the number of cached units (0 = unbounded).
	MaxEntries int `json:"max_entries"`
}

// ServerConfig represents HTTP server settings.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `json:"addr"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level"`
	// LogFormat is text or json.
	LogFormat string `json:"log_format"`
	// MaxBodyBytes limits request bodies.
	MaxBodyBytes int64 `json:"max_body_bytes"`
}

// RenderConfig represents manifest rendering settings.
type RenderConfig struct {
	// Concurrency is the number of templates rendered in parallel.
	Concurrency int `json:"concurrency"`
}
