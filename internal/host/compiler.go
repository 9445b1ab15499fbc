// Package host compiles generated units with an embedded Go interpreter and
// invokes them.
package host

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/tacogips/dcg/internal/debug"
	"github.com/tacogips/dcg/internal/template/generator"
)

// Compiler compiles generated source into callable units.
type Compiler interface {
	// Compile interprets the source and resolves its entry point.
	Compile(ctx context.Context, opts CompileOptions) (Unit, error)
}

// CompileOptions configures a compilation.
type CompileOptions struct {
	// Source is the generated Go source.
	Source string
	// References are package directories the source may import by their
	// base name.
	References []string
	// PackageName is the package clause of Source. Defaults to
	// generator.DefaultPackageName.
	PackageName string
	// SourceName is the template the source was generated from. It is
	// attached to runtime errors.
	SourceName string
	// ArtifactPath, when set, is claimed exclusively and receives Source
	// before compiling. A taken path fails with a locked CompileError.
	ArtifactPath string
}

// YaegiCompiler implements Compiler with the yaegi interpreter. Every
// compilation uses a fresh interpreter.
type YaegiCompiler struct {
	// TempDir holds the staged reference packages. Empty uses os.TempDir.
	TempDir string
}

// NewCompiler creates a new YaegiCompiler.
func NewCompiler() *YaegiCompiler {
	return &YaegiCompiler{}
}

// Compile interprets the source and resolves its entry point.
func (c *YaegiCompiler) Compile(ctx context.Context, opts CompileOptions) (Unit, error) {
	pkg := opts.PackageName
	if pkg == "" {
		pkg = generator.DefaultPackageName
	}
	debug.Debug("[host] Compile: source=%q references=%d artifact=%q", opts.SourceName, len(opts.References), opts.ArtifactPath)

	if opts.ArtifactPath != "" {
		if err := generator.ClaimArtifact(opts.ArtifactPath, []byte(opts.Source)); err != nil {
			if generator.IsArtifactLocked(err) {
				return nil, &CompileError{
					Diagnostics: []Diagnostic{{File: opts.ArtifactPath, Message: "artifact is locked", Code: CodeLocked}},
					Locked:      true,
					Cause:       err,
				}
			}
			return nil, err
		}
	}

	goPath, cleanup, err := c.stageReferences(opts.References)
	defer cleanup()
	if err != nil {
		return nil, err
	}

	i := interp.New(interp.Options{GoPath: goPath})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("failed to load standard library symbols: %w", err)
	}

	if _, err := i.EvalWithContext(ctx, opts.Source); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &CompileError{Diagnostics: parseDiagnostics(err), Cause: err}
	}

	entry := pkg + "." + generator.EntryPoint
	fn, err := i.EvalWithContext(ctx, entry)
	if err != nil {
		return nil, &CompileError{Diagnostics: parseDiagnostics(err), Cause: err}
	}
	if fn.Kind() != reflect.Func || fn.Type().NumIn() == 0 {
		return nil, &CompileError{
			Diagnostics: []Diagnostic{{Message: entry + " is not an entry point", Code: CodeCompile}},
		}
	}

	debug.Debug("[host] Compile: completed, entry=%s params=%d", entry, fn.Type().NumIn()-1)
	return &unit{
		fn:         fn,
		source:     opts.Source,
		sourceName: opts.SourceName,
		artifact:   opts.ArtifactPath,
	}, nil
}

// stageReferences mirrors every reference directory into a temporary
// GOPATH so the interpreter can import it by base name.
func (c *YaegiCompiler) stageReferences(refs []string) (string, func(), error) {
	if len(refs) == 0 {
		return "", func() {}, nil
	}

	root, err := os.MkdirTemp(c.TempDir, "dcg-gopath-")
	if err != nil {
		return "", func() {}, fmt.Errorf("failed to create reference staging dir: %w", err)
	}
	cleanup := func() {
		_ = os.RemoveAll(root)
	}

	for _, ref := range refs {
		info, err := os.Stat(ref)
		if err != nil || !info.IsDir() {
			return root, cleanup, &CompileError{
				Diagnostics: []Diagnostic{{File: ref, Message: "reference is not a package directory", Code: CodeReference}},
				Cause:       err,
			}
		}
		dst := filepath.Join(root, "src", filepath.Base(ref))
		debug.Debug("[host] Staging reference %s -> %s", ref, dst)
		if err := generator.CopyDir(ref, dst); err != nil {
			return root, cleanup, fmt.Errorf("failed to stage reference %s: %w", ref, err)
		}
	}
	return root, cleanup, nil
}
