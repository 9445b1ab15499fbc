package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tacogips/dcg/internal/host"
	"github.com/tacogips/dcg/internal/template/engine"
	"github.com/tacogips/dcg/internal/template/generator"
	"github.com/tacogips/dcg/internal/template/parser"
)

// TemplateExtension marks template files when checking a directory.
const TemplateExtension = ".dcg"

// Check stages.
const (
	StageRead     = "read"
	StageParse    = "parse"
	StageGenerate = "generate"
	StageCompile  = "compile"
)

// CheckTemplateOptions holds options for template validation.
type CheckTemplateOptions struct {
	// Path is the file or directory path to check.
	Path string
	// Recursive indicates whether to check subdirectories.
	Recursive bool
	// Engine configures parsing and source generation. Debug is always on
	// so compile diagnostics point into the template.
	Engine engine.Options
	// SkipCompile stops after source generation.
	SkipCompile bool
}

// CheckResult holds the results of template validation.
type CheckResult struct {
	// FilesChecked is the number of files checked.
	FilesChecked int
	// FilesWithErrors is the number of files with validation errors.
	FilesWithErrors int
	// Errors is the list of validation errors found.
	Errors []CheckError
}

// CheckError represents a validation error in a template file.
type CheckError struct {
	// File is the file path where the error occurred.
	File string
	// Line is the line number (0 if not applicable).
	Line int
	// Message is the error message.
	Message string
	// Stage is the step that failed: read, parse, generate or compile.
	Stage string
}

// String formats the error as "file:line: [stage] message".
func (e CheckError) String() string {
	loc := e.File
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", e.File, e.Line)
	}
	if loc == "" {
		return fmt.Sprintf("[%s] %s", e.Stage, e.Message)
	}
	return fmt.Sprintf("%s: [%s] %s", loc, e.Stage, e.Message)
}

// CheckTemplate validates template files without executing them: they are
// parsed, turned into source and compiled.
func (r *Renderer) CheckTemplate(ctx context.Context, opts CheckTemplateOptions) (*CheckResult, error) {
	result := &CheckResult{
		Errors: []CheckError{},
	}

	absPath, err := filepath.Abs(opts.Path)
	if err != nil {
		return nil, NewValidationError("failed to get absolute path", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("path not found: %s", absPath), err)
	}

	if info.IsDir() {
		err = r.checkDirectory(ctx, absPath, opts, result)
	} else {
		err = r.checkFile(ctx, absPath, opts, result)
	}
	if err != nil {
		return nil, err
	}

	return result, nil
}

// checkDirectory checks every template file in a directory.
func (r *Renderer) checkDirectory(ctx context.Context, dirPath string, opts CheckTemplateOptions, result *CheckResult) error {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return NewValidationError(fmt.Sprintf("failed to read directory: %s", dirPath), err)
	}

	for _, entry := range entries {
		fullPath := filepath.Join(dirPath, entry.Name())

		// Skip hidden files and directories
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		if entry.IsDir() {
			if opts.Recursive {
				if err := r.checkDirectory(ctx, fullPath, opts, result); err != nil {
					return err
				}
			}
			continue
		}

		if entry.Type().IsRegular() && filepath.Ext(entry.Name()) == TemplateExtension {
			if err := r.checkFile(ctx, fullPath, opts, result); err != nil {
				return err
			}
		}
	}

	return nil
}

// checkFile validates a single template file.
func (r *Renderer) checkFile(ctx context.Context, filePath string, opts CheckTemplateOptions, result *CheckResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	result.FilesChecked++

	content, err := os.ReadFile(filePath)
	if err != nil {
		result.FilesWithErrors++
		result.Errors = append(result.Errors, CheckError{File: filePath, Message: err.Error(), Stage: StageRead})
		return nil
	}

	engOpts := opts.Engine
	engOpts.SourceName = filePath
	engOpts.BaseDir = filepath.Dir(filePath)

	errs, err := r.CheckSource(ctx, string(content), engOpts, !opts.SkipCompile)
	if err != nil {
		return err
	}
	if len(errs) > 0 {
		result.FilesWithErrors++
		result.Errors = append(result.Errors, errs...)
	}
	return nil
}

// CheckSource validates template text held in memory. When compile is
// false it stops after source generation. The returned error is only set
// when ctx is done.
func (r *Renderer) CheckSource(ctx context.Context, source string, opts engine.Options, compile bool) ([]CheckError, error) {
	opts.Debug = true
	file := opts.SourceName

	res, err := engine.Parse(ctx, source, opts)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return []CheckError{classifyGenerateError(file, err)}, nil
	}
	if !compile {
		return nil, nil
	}

	_, err = r.compiler.Compile(ctx, host.CompileOptions{
		Source:      res.Source,
		References:  res.References,
		PackageName: opts.PackageName,
		SourceName:  file,
	})
	if err == nil {
		return nil, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	var cErr *host.CompileError
	if !errors.As(err, &cErr) {
		return []CheckError{{File: file, Message: err.Error(), Stage: StageCompile}}, nil
	}
	errs := make([]CheckError, 0, len(cErr.Diagnostics))
	for _, d := range cErr.Diagnostics {
		// Positions outside line markers keep the generated file name.
		f := d.File
		if f == "" {
			f = file
		}
		errs = append(errs, CheckError{File: f, Line: d.Line, Message: d.Message, Stage: StageCompile})
	}
	return errs, nil
}

func classifyGenerateError(file string, err error) CheckError {
	var pErr *parser.ParseError
	if errors.As(err, &pErr) {
		return CheckError{File: file, Line: pErr.Line, Message: pErr.Message, Stage: StageParse}
	}
	var gErr *generator.GeneratorError
	if errors.As(err, &gErr) {
		return CheckError{File: file, Line: gErr.Line, Message: gErr.Message, Stage: StageGenerate}
	}
	return CheckError{File: file, Message: err.Error(), Stage: StageGenerate}
}
