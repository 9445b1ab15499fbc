package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/tacogips/dcg/internal/template/engine"
)

func TestCheckTemplate(t *testing.T) {
	dir := t.TempDir()
	good := writeTemplate(t, dir, "good.dcg", "@param n: int\n@! for i := 0; i < n; i++ {\n@(i)\n@! }\n")
	parseBad := writeTemplate(t, dir, "parse.dcg", "ok\n@code\nx := 1\n")
	compileBad := writeTemplate(t, dir, "compile.dcg", "line 1\n@(missing)\n")
	writeTemplate(t, dir, "notes.txt", "@code\n")
	writeTemplate(t, dir, ".hidden.dcg", "@code\n")
	nested := writeTemplate(t, dir, filepath.Join("sub", "nested.dcg"), "@end_text\n")

	r := NewRenderer(RendererOptions{})
	ctx := context.Background()

	tests := []struct {
		name           string
		opts           CheckTemplateOptions
		validateResult func(t *testing.T, result *CheckResult)
	}{
		{
			name: "valid template file",
			opts: CheckTemplateOptions{Path: good},
			validateResult: func(t *testing.T, result *CheckResult) {
				if result.FilesChecked != 1 {
					t.Errorf("Expected 1 file checked, got %d", result.FilesChecked)
				}
				if result.FilesWithErrors != 0 || len(result.Errors) != 0 {
					t.Errorf("Expected no errors, got %v", result.Errors)
				}
			},
		},
		{
			name: "parse error",
			opts: CheckTemplateOptions{Path: parseBad},
			validateResult: func(t *testing.T, result *CheckResult) {
				if len(result.Errors) != 1 {
					t.Fatalf("Expected 1 error, got %v", result.Errors)
				}
				e := result.Errors[0]
				if e.Stage != StageParse || e.Line != 2 || e.File != parseBad {
					t.Errorf("Unexpected error %+v", e)
				}
			},
		},
		{
			name: "compile error at template line",
			opts: CheckTemplateOptions{Path: compileBad},
			validateResult: func(t *testing.T, result *CheckResult) {
				if result.FilesWithErrors != 1 || len(result.Errors) == 0 {
					t.Fatalf("Expected compile errors, got %v", result.Errors)
				}
				e := result.Errors[0]
				if e.Stage != StageCompile || e.Line != 2 || e.File != compileBad {
					t.Errorf("Unexpected error %+v", e)
				}
			},
		},
		{
			name: "skip compile",
			opts: CheckTemplateOptions{Path: compileBad, SkipCompile: true},
			validateResult: func(t *testing.T, result *CheckResult) {
				if len(result.Errors) != 0 {
					t.Errorf("Expected no errors without compilation, got %v", result.Errors)
				}
			},
		},
		{
			name: "directory",
			opts: CheckTemplateOptions{Path: dir, SkipCompile: true},
			validateResult: func(t *testing.T, result *CheckResult) {
				if result.FilesChecked != 3 {
					t.Errorf("Expected 3 files checked, got %d", result.FilesChecked)
				}
				if result.FilesWithErrors != 1 {
					t.Errorf("Expected 1 file with errors, got %d: %v", result.FilesWithErrors, result.Errors)
				}
			},
		},
		{
			name: "recursive directory",
			opts: CheckTemplateOptions{Path: dir, Recursive: true, SkipCompile: true},
			validateResult: func(t *testing.T, result *CheckResult) {
				if result.FilesChecked != 4 || result.FilesWithErrors != 2 {
					t.Errorf("Expected 4 checked and 2 failing, got %d and %d", result.FilesChecked, result.FilesWithErrors)
				}
				last := result.Errors[len(result.Errors)-1]
				if last.File != nested || last.Stage != StageParse {
					t.Errorf("Unexpected nested error %+v", last)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := r.CheckTemplate(ctx, tt.opts)
			if err != nil {
				t.Fatalf("CheckTemplate failed: %v", err)
			}
			tt.validateResult(t, result)
		})
	}

	t.Run("missing path", func(t *testing.T) {
		_, err := r.CheckTemplate(ctx, CheckTemplateOptions{Path: filepath.Join(dir, "missing")})
		var appErr *AppError
		if !errors.As(err, &appErr) || appErr.Type != ValidationFailed {
			t.Errorf("Expected ValidationFailed, got %v", err)
		}
	})

	t.Run("canceled", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()
		if _, err := r.CheckTemplate(canceled, CheckTemplateOptions{Path: good}); !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	})
}

func TestCheckSource(t *testing.T) {
	r := NewRenderer(RendererOptions{})
	ctx := context.Background()

	tests := []struct {
		name    string
		source  string
		compile bool
		stage   string
		line    int
	}{
		{"valid", "x @(1)\n", true, "", 0},
		{"reserved parameter", "@param dcgX: int\n", false, StageGenerate, 1},
		{"unclosed section", "@section A\nx\n", false, StageParse, 1},
		{"undefined", "a\nb\n@(nope)\n", true, StageCompile, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs, err := r.CheckSource(ctx, tt.source, engine.Options{SourceName: "inline.dcg"}, tt.compile)
			if err != nil {
				t.Fatalf("CheckSource failed: %v", err)
			}
			if tt.stage == "" {
				if len(errs) != 0 {
					t.Errorf("Expected no errors, got %v", errs)
				}
				return
			}
			if len(errs) == 0 {
				t.Fatal("Expected errors")
			}
			if errs[0].Stage != tt.stage || errs[0].Line != tt.line {
				t.Errorf("Expected %s error at line %d, got %+v", tt.stage, tt.line, errs[0])
			}
		})
	}
}

func TestCheckError_String(t *testing.T) {
	tests := []struct {
		err      CheckError
		expected string
	}{
		{CheckError{File: "a.dcg", Line: 3, Message: "boom", Stage: StageParse}, "a.dcg:3: [parse] boom"},
		{CheckError{File: "a.dcg", Message: "boom", Stage: StageRead}, "a.dcg: [read] boom"},
		{CheckError{Message: "boom", Stage: StageCompile}, "[compile] boom"},
	}
	for _, tt := range tests {
		if got := tt.err.String(); got != tt.expected {
			t.Errorf("expected %q, got %q", tt.expected, got)
		}
	}
}
