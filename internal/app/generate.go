package app

import (
	"context"
	"path/filepath"

	"github.com/tacogips/dcg/internal/debug"
	"github.com/tacogips/dcg/internal/template/engine"
	"github.com/tacogips/dcg/internal/template/generator"
)

// GenerateOptions contains options for generating the source of a unit.
type GenerateOptions struct {
	// Path is the template file.
	Path string
	// Engine configures parsing and source generation.
	Engine engine.Options
	// OutputPath, when set, receives the generated source.
	OutputPath string
	// Artifact persists the source next to the template under the first
	// free "<n>.<template>.generated.go" name.
	Artifact bool
}

// GenerateResult holds the outcome of Generate.
type GenerateResult struct {
	// Result is the engine result.
	Result *engine.Result
	// OutputPath is the file the source was written to, if any.
	OutputPath string
	// ArtifactPath is the persisted artifact, if any.
	ArtifactPath string
}

// Generate turns a template file into Go source and optionally writes it.
func Generate(ctx context.Context, opts GenerateOptions) (*GenerateResult, error) {
	debug.DebugSection("[app] Generate workflow start")
	debug.DebugValue("[app] Template", opts.Path)
	debug.DebugValue("[app] OutputPath", opts.OutputPath)
	debug.DebugValue("[app] Artifact", opts.Artifact)

	if opts.Path == "" {
		return nil, NewValidationError("template path cannot be empty", nil)
	}

	res, err := engine.ParseFile(ctx, opts.Path, opts.Engine)
	if err != nil {
		debug.Debug("[app] Generation failed: %v", err)
		return nil, NewGenerateError("failed to generate "+opts.Path, err)
	}
	debug.DebugSource("[app] Generated source", res.Source)

	result := &GenerateResult{Result: res}
	writer := generator.NewFileWriter()

	if opts.OutputPath != "" {
		if err := writer.WriteFile(opts.OutputPath, []byte(res.Source)); err != nil {
			return nil, NewOutputError("failed to write generated source", err)
		}
		result.OutputPath = opts.OutputPath
	}

	if opts.Artifact {
		path, err := writer.WriteArtifact(filepath.Dir(opts.Path), opts.Path, []byte(res.Source))
		if err != nil {
			return nil, NewOutputError("failed to persist artifact", err)
		}
		result.ArtifactPath = path
	}

	debug.Debug("[app] Generate workflow completed successfully")
	return result, nil
}

// GenerateSource turns template text held in memory into Go source.
func GenerateSource(ctx context.Context, source string, opts engine.Options) (*engine.Result, error) {
	res, err := engine.Parse(ctx, source, opts)
	if err != nil {
		return nil, NewGenerateError("failed to generate source", err)
	}
	return res, nil
}
