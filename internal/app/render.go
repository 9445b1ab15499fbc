package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/tacogips/dcg/internal/debug"
	"github.com/tacogips/dcg/internal/host"
	"github.com/tacogips/dcg/internal/template/engine"
	"github.com/tacogips/dcg/internal/template/generator"
	"github.com/tacogips/dcg/internal/template/model"
)

// maxCompileAttempts bounds the artifact counter when compiling with
// persistence.
const maxCompileAttempts = 1000

// RendererOptions configures a Renderer.
type RendererOptions struct {
	// Compiler compiles generated units. Defaults to host.NewCompiler().
	Compiler host.Compiler
	// Cache reuses compiled units across calls.
	Cache bool
	// CacheMaxEntries bounds the cache (0 = unbounded).
	CacheMaxEntries int
}

// Renderer compiles templates and runs them. It is safe for concurrent use.
type Renderer struct {
	compiler host.Compiler
	cache    *unitCache
	files    generator.Writer
}

// NewRenderer creates a new Renderer.
func NewRenderer(opts RendererOptions) *Renderer {
	r := &Renderer{
		compiler: opts.Compiler,
		files:    generator.NewFileWriter(),
	}
	if r.compiler == nil {
		r.compiler = host.NewCompiler()
	}
	if opts.Cache {
		r.cache = newUnitCache(opts.CacheMaxEntries)
	}
	return r
}

// CompileOptions contains options for compiling a template.
type CompileOptions struct {
	// Path is the template file. When empty Source is used.
	Path string
	// Source is template text held in memory.
	Source string
	// Engine configures parsing and source generation.
	Engine engine.Options
	// Persist writes the generated source next to the template as
	// "<n>.<template>.generated.go" before compiling.
	Persist bool
}

// Compiled is a compiled template.
type Compiled struct {
	// Unit is the executable unit.
	Unit host.Unit
	// Result is the engine result the unit was compiled from.
	Result *engine.Result
	// Key is the cache key of the unit.
	Key string
	// Cached is set when the unit came from the cache.
	Cached bool
}

// Compile parses, generates and compiles a template, reusing a cached unit
// when one exists for the same source, references and debug flag.
func (r *Renderer) Compile(ctx context.Context, opts CompileOptions) (*Compiled, error) {
	debug.DebugSection("[app] Compile workflow start")
	debug.DebugValue("[app] Template", opts.Path)
	debug.DebugValue("[app] Persist", opts.Persist)

	var (
		res *engine.Result
		err error
	)
	if opts.Path != "" {
		res, err = engine.ParseFile(ctx, opts.Path, opts.Engine)
	} else {
		res, err = engine.Parse(ctx, opts.Source, opts.Engine)
	}
	if err != nil {
		debug.Debug("[app] Generation failed: %v", err)
		return nil, NewGenerateError("failed to generate unit", err)
	}

	key, err := UnitKey(res.Source, res.References, opts.Engine.Debug)
	if err != nil {
		return nil, NewCompileError("failed to compute unit key", err)
	}

	if r.cache != nil {
		if u, ok := r.cache.get(key); ok {
			debug.Debug("[app] Using cached unit %s", shortKey(key))
			return &Compiled{Unit: u, Result: res, Key: key, Cached: true}, nil
		}
	}

	u, err := r.compileUnit(ctx, opts, res)
	if err != nil {
		debug.Debug("[app] Compilation failed: %v", err)
		return nil, err
	}

	if r.cache != nil {
		r.cache.put(key, u)
	}
	debug.Debug("[app] Compile workflow completed successfully")
	return &Compiled{Unit: u, Result: res, Key: key}, nil
}

func (r *Renderer) compileUnit(ctx context.Context, opts CompileOptions, res *engine.Result) (host.Unit, error) {
	sourceName := opts.Engine.SourceName
	if sourceName == "" {
		sourceName = opts.Path
	}
	copts := host.CompileOptions{
		Source:      res.Source,
		References:  res.References,
		PackageName: opts.Engine.PackageName,
		SourceName:  sourceName,
	}

	if !opts.Persist {
		u, err := r.compiler.Compile(ctx, copts)
		if err != nil {
			return nil, NewCompileError("failed to compile unit", err)
		}
		return u, nil
	}

	dir, base := ".", generator.ArtifactBase("")
	if opts.Path != "" {
		dir, base = filepath.Dir(opts.Path), generator.ArtifactBase(opts.Path)
	}
	if err := r.files.CreateDir(dir); err != nil {
		return nil, NewOutputError("failed to create artifact directory", err)
	}

	for n := 1; n <= maxCompileAttempts; n++ {
		copts.ArtifactPath = filepath.Join(dir, generator.ArtifactName(n, base))
		u, err := r.compiler.Compile(ctx, copts)
		if err == nil {
			return u, nil
		}
		var cErr *host.CompileError
		if errors.As(err, &cErr) && cErr.IsLocked() {
			debug.Debug("[app] Artifact %s locked, retrying", copts.ArtifactPath)
			continue
		}
		return nil, NewCompileError("failed to compile unit", err)
	}
	return nil, NewCompileError(fmt.Sprintf("no free artifact name after %d attempts", maxCompileAttempts), nil)
}

// Invoke runs a compiled template. writers maps writer keys to outputs.
func (r *Renderer) Invoke(ctx context.Context, c *Compiled, writers map[string]io.Writer, params ...interface{}) error {
	if err := c.Unit.Invoke(ctx, writers, params...); err != nil {
		return NewRenderError("failed to render template", err)
	}
	return nil
}

// RenderOptions contains options for rendering a template.
type RenderOptions struct {
	CompileOptions
	// Writers maps writer keys to outputs.
	Writers map[string]io.Writer
	// Params are the parameter values in declaration order.
	Params []interface{}
}

// Render compiles a template and runs it against the given writers.
func (r *Renderer) Render(ctx context.Context, opts RenderOptions) (*Compiled, error) {
	c, err := r.Compile(ctx, opts.CompileOptions)
	if err != nil {
		return nil, err
	}
	if err := r.Invoke(ctx, c, opts.Writers, opts.Params...); err != nil {
		return nil, err
	}
	return c, nil
}

// RenderString compiles a template and returns its main output.
func (r *Renderer) RenderString(ctx context.Context, opts CompileOptions, params ...interface{}) (string, error) {
	var b strings.Builder
	_, err := r.Render(ctx, RenderOptions{
		CompileOptions: opts,
		Writers:        map[string]io.Writer{model.MainOutputKey: &b},
		Params:         params,
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

// CachedUnits returns the number of cached units.
func (r *Renderer) CachedUnits() int {
	if r.cache == nil {
		return 0
	}
	return r.cache.len()
}
