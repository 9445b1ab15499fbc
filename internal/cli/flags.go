package cli

import (
	"fmt"
	"go/token"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tacogips/dcg/internal/config"
	"github.com/tacogips/dcg/internal/manifest"
	"github.com/tacogips/dcg/internal/template/engine"
)

// Common flag names and descriptions
const (
	// Flag names
	FlagOutput      = "output"
	FlagConfig      = "config"
	FlagNoColor     = "no-color"
	FlagQuiet       = "quiet"
	FlagDebug       = "debug"
	FlagLineMarkers = "line-markers"
	FlagLineEnding  = "line-ending"
	FlagPackage     = "package"
	FlagNoFormat    = "no-format"
	FlagArtifact    = "artifact"
	FlagParam       = "param"
	FlagOut         = "out"
	FlagInteractive = "interactive"
	FlagPersist     = "persist"
	FlagOnly        = "only"
	FlagConcurrency = "concurrency"
	FlagRecursive   = "recursive"
	FlagNoCompile   = "no-compile"
	FlagAddr        = "addr"
	FlagLogLevel    = "log-level"
	FlagLogFormat   = "log-format"

	// Flag descriptions
	DescOutput      = "Write the generated source to this file instead of stdout"
	DescConfig      = "Path to config file"
	DescNoColor     = "Disable colored output"
	DescQuiet       = "Suppress non-error output"
	DescDebug       = "Enable debug logging"
	DescLineMarkers = "Emit //line markers pointing back at the template"
	DescLineEnding  = "Line ending of static text: lf, crlf, cr or auto"
	DescPackage     = "Package name of the generated unit"
	DescNoFormat    = "Do not gofmt the generated source"
	DescArtifact    = "Persist the source next to the template as <n>.<name>.generated.go"
	DescParam       = "Parameter value as name=value (repeatable)"
	DescOut         = "Route an output key to a file as key=path (repeatable, _main_ is the main output)"
	DescInteractive = "Prompt for parameters without a value"
	DescPersist     = "Persist generated sources next to their templates"
	DescOnly        = "Render only the named manifest template (repeatable)"
	DescConcurrency = "Number of templates rendered in parallel (0 uses the config)"
	DescRecursive   = "Check subdirectories"
	DescNoCompile   = "Stop after source generation"
	DescAddr        = "Listen address"
	DescLogLevel    = "Log level: debug, info, warn or error"
	DescLogFormat   = "Log format: text or json"
)

// lineEndings maps --line-ending values to terminators.
var lineEndings = map[string]string{
	"auto": "",
	"lf":   "\n",
	"crlf": "\r\n",
	"cr":   "\r",
}

// parseLineEnding converts a --line-ending value.
func parseLineEnding(name string) (string, error) {
	le, ok := lineEndings[strings.ToLower(name)]
	if !ok {
		return "", fmt.Errorf("invalid line ending %q (expected lf, crlf, cr or auto)", name)
	}
	return le, nil
}

// parseOutputs converts key=path arguments into output routes, keeping
// their order.
func parseOutputs(values []string) ([]manifest.Output, error) {
	outputs := make([]manifest.Output, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		key, path, ok := strings.Cut(v, "=")
		key, path = strings.TrimSpace(key), strings.TrimSpace(path)
		if !ok || key == "" || path == "" {
			return nil, fmt.Errorf("invalid output %q, expected key=path", v)
		}
		if seen[key] {
			return nil, fmt.Errorf("output %q given twice", key)
		}
		seen[key] = true
		outputs = append(outputs, manifest.Output{Key: key, Path: path})
	}
	return outputs, nil
}

// engineFlags are the source generation flags shared by several commands.
type engineFlags struct {
	lineMarkers bool
	lineEnding  string
	packageName string
	noFormat    bool
}

func (f *engineFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.lineMarkers, FlagLineMarkers, false, DescLineMarkers)
	cmd.Flags().StringVar(&f.lineEnding, FlagLineEnding, "", DescLineEnding)
	cmd.Flags().StringVar(&f.packageName, FlagPackage, "", DescPackage)
	cmd.Flags().BoolVar(&f.noFormat, FlagNoFormat, false, DescNoFormat)
}

// options merges the flags over the engine configuration.
func (f *engineFlags) options(cfg *config.Config) (engine.Options, error) {
	opts := engine.Options{
		Debug:       cfg.Engine.Debug || f.lineMarkers,
		LineEnding:  cfg.Engine.LineEnding,
		PackageName: cfg.Engine.PackageName,
		Format:      cfg.Engine.Format && !f.noFormat,
	}
	if f.lineEnding != "" {
		le, err := parseLineEnding(f.lineEnding)
		if err != nil {
			return engine.Options{}, err
		}
		opts.LineEnding = le
	}
	if f.packageName != "" {
		if !token.IsIdentifier(f.packageName) {
			return engine.Options{}, fmt.Errorf("%q is not a valid Go package name", f.packageName)
		}
		opts.PackageName = f.packageName
	}
	return opts, nil
}
