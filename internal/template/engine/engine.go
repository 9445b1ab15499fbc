// Package engine turns template text into the Go source of an executable unit.
package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tacogips/dcg/internal/debug"
	"github.com/tacogips/dcg/internal/template/generator"
	"github.com/tacogips/dcg/internal/template/model"
	"github.com/tacogips/dcg/internal/template/parser"
)

// Options configures a parse.
type Options struct {
	// Debug emits //line markers into the generated source.
	Debug bool
	// SourceName identifies the template in errors and markers.
	SourceName string
	// LineEnding terminates static text lines. Empty detects it from the
	// source, falling back to "\n".
	LineEnding string
	// BaseDir resolves relative @reference paths.
	BaseDir string
	// PackageName is the package clause of the generated unit.
	PackageName string
	// Format runs go/format over the generated source.
	Format bool
}

// Result is a parsed and generated template.
type Result struct {
	// Source is the generated Go source.
	Source string
	// References are the package directories the unit imports from.
	References []string
	// Imports are the user imports of the unit.
	Imports []string
	// Parameters are the entry point parameters in order.
	Parameters []model.Parameter
	// OutputKeys are the writer keys used by @output blocks.
	OutputKeys []string
	// Sections are the section names in declaration order.
	Sections []string
	// LineEnding is the terminator used for static lines.
	LineEnding string
	// Template is the parsed directive tree.
	Template *model.Template
}

// Parse parses source and generates the Go source of its unit.
func Parse(ctx context.Context, source string, opts Options) (*Result, error) {
	lineEnding := opts.LineEnding
	if lineEnding == "" {
		lineEnding = parser.DetectLineEnding(source, parser.DefaultLineEnding)
	}
	debug.Debug("[engine] Parse: source=%q lineEnding=%q", opts.SourceName, lineEnding)

	p := parser.NewParser(parser.Options{
		SourceName: opts.SourceName,
		LineEnding: lineEnding,
		BaseDir:    opts.BaseDir,
	})
	tmpl, err := p.Parse(ctx, source)
	if err != nil {
		return nil, err
	}

	gen, err := generator.NewGenerator().Generate(ctx, tmpl, generator.GenerateOptions{
		Debug:       opts.Debug,
		SourceName:  opts.SourceName,
		PackageName: opts.PackageName,
		LineEnding:  lineEnding,
		Format:      opts.Format,
	})
	if err != nil {
		return nil, err
	}

	result := &Result{
		Source:     gen.Source,
		References: tmpl.Head.References,
		Imports:    tmpl.Head.Imports,
		Parameters: tmpl.Head.Parameters,
		OutputKeys: tmpl.OutputKeys(),
		LineEnding: lineEnding,
		Template:   tmpl,
	}
	for _, id := range tmpl.Sections() {
		result.Sections = append(result.Sections, tmpl.Node(id).Name)
	}

	debug.DebugValue("[engine] parameters", len(result.Parameters))
	debug.DebugValue("[engine] output keys", result.OutputKeys)
	return result, nil
}

// ParseFile reads a template file and parses it. The path becomes the
// source name and its directory the reference base unless opts set them.
func ParseFile(ctx context.Context, path string, opts Options) (*Result, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", path, err)
	}
	if opts.SourceName == "" {
		opts.SourceName = path
	}
	if opts.BaseDir == "" {
		opts.BaseDir = filepath.Dir(path)
	}
	return Parse(ctx, string(content), opts)
}
