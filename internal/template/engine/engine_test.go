package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tacogips/dcg/internal/template/parser"
)

// TestParse tests the combined parse and generate pass
func TestParse(t *testing.T) {
	input := `@import strconv
@param count: int
@output toc
@+ Entry(count)
@end_output
@section Entry(n: int)
entry @(strconv.Itoa(n))
@end_section
`
	result, err := Parse(context.Background(), input, Options{SourceName: "page.dcg"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(result.Source, "func Generate(dcgWriters map[string]io.Writer, count int) (dcgErr error) {") {
		t.Errorf("unexpected source:\n%s", result.Source)
	}
	if strings.Join(result.Imports, ",") != "strconv" {
		t.Errorf("expected imports [strconv], got %v", result.Imports)
	}
	if len(result.Parameters) != 1 || result.Parameters[0].Name != "count" || result.Parameters[0].Type != "int" {
		t.Errorf("unexpected parameters %+v", result.Parameters)
	}
	if strings.Join(result.OutputKeys, ",") != "toc" {
		t.Errorf("expected output keys [toc], got %v", result.OutputKeys)
	}
	if strings.Join(result.Sections, ",") != "Entry" {
		t.Errorf("expected sections [Entry], got %v", result.Sections)
	}
	if result.Template == nil {
		t.Error("expected parsed template")
	}
}

// TestParse_LineEnding tests line ending detection and override
func TestParse_LineEnding(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		lineEnding string
		expected   string
		fragment   string
	}{
		{
			name:     "detected crlf",
			input:    "a\r\nb",
			expected: "\r\n",
			fragment: `dcg.PrintTo("_main_", "a\r\n")`,
		},
		{
			name:     "detected lf",
			input:    "a\nb",
			expected: "\n",
			fragment: `dcg.PrintTo("_main_", "b\n")`,
		},
		{
			name:     "no terminator defaults to lf",
			input:    "a",
			expected: "\n",
			fragment: `dcg.PrintTo("_main_", "a\n")`,
		},
		{
			name:       "explicit override",
			input:      "a\nb",
			lineEnding: "\r\n",
			expected:   "\r\n",
			fragment:   `dcg.PrintTo("_main_", "a\r\n")`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Parse(context.Background(), tt.input, Options{LineEnding: tt.lineEnding})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.LineEnding != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result.LineEnding)
			}
			if !strings.Contains(result.Source, tt.fragment) {
				t.Errorf("expected fragment %s in:\n%s", tt.fragment, result.Source)
			}
		})
	}
}

// TestParse_Error tests that parse errors are returned unchanged
func TestParse_Error(t *testing.T) {
	_, err := Parse(context.Background(), "@code\n", Options{SourceName: "page.dcg"})
	var parseErr *parser.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %T: %v", err, err)
	}
	if parseErr.Type != parser.UnclosedBlock || parseErr.File != "page.dcg" || parseErr.Line != 1 {
		t.Errorf("unexpected error %+v", parseErr)
	}
}

// TestParseFile tests reading templates from disk
func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "helpers"), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	path := filepath.Join(dir, "page.dcg")
	if err := os.WriteFile(path, []byte("@reference helpers\nhello\n"), 0644); err != nil {
		t.Fatalf("failed to write template: %v", err)
	}

	result, err := ParseFile(context.Background(), path, Options{Debug: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.References) != 1 || result.References[0] != filepath.Join(dir, "helpers") {
		t.Errorf("expected reference resolved against template dir, got %v", result.References)
	}
	if !strings.Contains(result.Source, "//line "+path+":2\n") {
		t.Errorf("expected marker naming the template file in:\n%s", result.Source)
	}
}

// TestParseFile_Missing tests the error for an unreadable template
func TestParseFile_Missing(t *testing.T) {
	_, err := ParseFile(context.Background(), filepath.Join(t.TempDir(), "missing.dcg"), Options{})
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}
