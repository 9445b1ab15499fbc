package app

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/tacogips/dcg/internal/debug"
	"github.com/tacogips/dcg/internal/manifest"
	"github.com/tacogips/dcg/internal/params"
	"github.com/tacogips/dcg/internal/template/engine"
	"github.com/tacogips/dcg/internal/template/model"
)

// RunOptions contains options for rendering the templates of a manifest.
type RunOptions struct {
	// Manifest is the decoded manifest.
	Manifest *manifest.Manifest
	// Names selects templates by name. Empty runs all of them.
	Names []string
	// Concurrency is the number of templates rendered in parallel.
	Concurrency int
	// Engine holds the engine defaults. Debug and LineEnding of a manifest
	// entry override them.
	Engine engine.Options
	// Persist writes generated sources next to their templates.
	Persist bool
}

// RunResult holds the outcome of RunManifest.
type RunResult struct {
	// Templates are the rendered templates in manifest order.
	Templates []TemplateRun
}

// TemplateRun is one rendered manifest entry.
type TemplateRun struct {
	// Name is the manifest entry name.
	Name string
	// Files are the output files written, in manifest order.
	Files []string
	// Cached is set when the compiled unit came from the cache.
	Cached bool
}

// RunManifest renders manifest templates in parallel. Outputs of a template
// are written only after it rendered successfully. The first failure
// cancels the remaining templates.
func (r *Renderer) RunManifest(ctx context.Context, opts RunOptions) (*RunResult, error) {
	debug.DebugSection("[app] RunManifest workflow start")

	if opts.Manifest == nil {
		return nil, NewValidationError("manifest cannot be nil", nil)
	}
	entries, err := selectTemplates(opts.Manifest, opts.Names)
	if err != nil {
		return nil, err
	}
	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	debug.DebugValue("[app] Templates", len(entries))
	debug.DebugValue("[app] Concurrency", concurrency)

	runs := make([]TemplateRun, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, entry := range entries {
		g.Go(func() error {
			run, err := r.runTemplate(gctx, entry, opts)
			if err != nil {
				return fmt.Errorf("template %s: %w", entry.Name, err)
			}
			runs[i] = *run
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		debug.Debug("[app] RunManifest failed: %v", err)
		return nil, err
	}

	debug.Debug("[app] RunManifest workflow completed successfully")
	return &RunResult{Templates: runs}, nil
}

func (r *Renderer) runTemplate(ctx context.Context, entry *manifest.Template, opts RunOptions) (*TemplateRun, error) {
	engOpts := opts.Engine
	engOpts.SourceName = ""
	engOpts.BaseDir = ""
	engOpts.Debug = engOpts.Debug || entry.Debug
	if entry.LineEnding != "" {
		engOpts.LineEnding = entry.LineEnding
	}

	c, err := r.Compile(ctx, CompileOptions{Path: entry.Source, Engine: engOpts, Persist: opts.Persist})
	if err != nil {
		return nil, err
	}

	args, err := params.FromCtyObject(c.Result.Parameters, entry.Params)
	if err != nil {
		return nil, NewParameterError("invalid manifest params", err)
	}

	files, err := r.InvokeToFiles(ctx, c, entry.Outputs, io.Discard, args...)
	if err != nil {
		return nil, err
	}

	run := &TemplateRun{Name: entry.Name, Files: files, Cached: c.Cached}
	debug.Debug("[app] Rendered %s into %d files", entry.Name, len(run.Files))
	return run, nil
}

// selectTemplates returns the named entries in manifest order, or all of
// them when names is empty.
func selectTemplates(m *manifest.Manifest, names []string) ([]*manifest.Template, error) {
	if len(names) == 0 {
		return m.Templates, nil
	}

	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		if m.Template(name) == nil {
			return nil, NewValidationError(fmt.Sprintf("manifest %s has no template %q", m.Path, name), nil)
		}
		wanted[name] = true
	}

	var entries []*manifest.Template
	for _, t := range m.Templates {
		if wanted[t.Name] {
			entries = append(entries, t)
		}
	}
	return entries, nil
}

// InvokeToFiles runs a compiled template with every output routed to a
// file. The main output goes to main unless outputs name it. Files are
// written only after the template rendered successfully, and every output
// key the template uses must be routed.
func (r *Renderer) InvokeToFiles(ctx context.Context, c *Compiled, outputs []manifest.Output, main io.Writer, args ...interface{}) ([]string, error) {
	routed := make(map[string]bool, len(outputs))
	for _, o := range outputs {
		routed[o.Key] = true
	}
	for _, key := range c.Result.OutputKeys {
		if !routed[key] {
			return nil, NewValidationError(fmt.Sprintf("output %q has no destination file", key), nil)
		}
	}

	if main == nil {
		main = io.Discard
	}
	buffers := make(map[string]*bytes.Buffer, len(outputs))
	writers := map[string]io.Writer{model.MainOutputKey: main}
	for _, o := range outputs {
		buf := &bytes.Buffer{}
		buffers[o.Key] = buf
		writers[o.Key] = buf
	}

	if err := r.Invoke(ctx, c, writers, args...); err != nil {
		return nil, err
	}

	files := make([]string, 0, len(outputs))
	for _, o := range outputs {
		if err := r.files.WriteFile(o.Path, buffers[o.Key].Bytes()); err != nil {
			return nil, NewOutputError("failed to write output "+o.Key, err)
		}
		files = append(files, o.Path)
	}
	return files, nil
}
