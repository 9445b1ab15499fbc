package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/zclconf/go-cty/cty"
)

// TestParse tests decoding of a complete manifest
func TestParse(t *testing.T) {
	src := `
template "page" {
  source      = "page.dcg"
  debug       = true
  line_ending = "\r\n"
  params      = { title = "Home", count = 3 }
  output "_main_" { path = "out/page.html" }
  output "toc"    { path = "/abs/toc.html" }
}

template "plain" {
  source = "plain.dcg"
}
`
	m, err := Parse([]byte(src), filepath.Join("site", DefaultFileName))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.Templates) != 2 {
		t.Fatalf("expected 2 templates, got %d", len(m.Templates))
	}

	page := m.Template("page")
	if page == nil {
		t.Fatal("expected template page")
	}
	if page.Source != filepath.Join("site", "page.dcg") {
		t.Errorf("expected source resolved against manifest dir, got %q", page.Source)
	}
	if !page.Debug || page.LineEnding != "\r\n" {
		t.Errorf("unexpected flags debug=%v lineEnding=%q", page.Debug, page.LineEnding)
	}
	if title := page.Params.GetAttr("title"); !title.RawEquals(cty.StringVal("Home")) {
		t.Errorf("unexpected title %#v", title)
	}

	expectedOutputs := []Output{
		{Key: "_main_", Path: filepath.Join("site", "out", "page.html")},
		{Key: "toc", Path: "/abs/toc.html"},
	}
	if len(page.Outputs) != len(expectedOutputs) {
		t.Fatalf("expected %d outputs, got %d", len(expectedOutputs), len(page.Outputs))
	}
	for i, o := range expectedOutputs {
		if page.Outputs[i] != o {
			t.Errorf("output %d: expected %+v, got %+v", i, o, page.Outputs[i])
		}
	}

	plain := m.Template("plain")
	if plain.Debug || plain.LineEnding != "" || !plain.Params.IsNull() || len(plain.Outputs) != 0 {
		t.Errorf("unexpected defaults %+v", plain)
	}
	if m.Template("missing") != nil {
		t.Error("expected nil for unknown template")
	}
}

// TestParse_Env tests environment variable access
func TestParse_Env(t *testing.T) {
	t.Setenv("DCG_TEST_TITLE", "from env")
	src := `template "page" {
  source = "page.dcg"
  params = { title = env.DCG_TEST_TITLE }
}`
	m, err := Parse([]byte(src), DefaultFileName)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if title := m.Templates[0].Params.GetAttr("title"); !title.RawEquals(cty.StringVal("from env")) {
		t.Errorf("unexpected title %#v", title)
	}
}

// TestParse_Errors tests manifest validation
func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		errType ManifestErrorType
	}{
		{
			name:    "syntax error",
			src:     `template "page" {`,
			errType: ManifestParseFailed,
		},
		{
			name:    "missing source",
			src:     `template "page" {}`,
			errType: ManifestDecodeFailed,
		},
		{
			name:    "unknown attribute",
			src:     "template \"page\" {\n  source = \"a\"\n  colour = \"red\"\n}\n",
			errType: ManifestDecodeFailed,
		},
		{
			name:    "duplicate template",
			src:     "template \"a\" {\n  source = \"a\"\n}\ntemplate \"a\" {\n  source = \"b\"\n}\n",
			errType: ManifestInvalid,
		},
		{
			name:    "empty source",
			src:     `template "a" { source = "" }`,
			errType: ManifestInvalid,
		},
		{
			name:    "params not an object",
			src:     "template \"a\" {\n  source = \"a\"\n  params = \"x\"\n}\n",
			errType: ManifestInvalid,
		},
		{
			name:    "duplicate output",
			src:     "template \"a\" {\n  source = \"a\"\n  output \"k\" { path = \"1\" }\n  output \"k\" { path = \"2\" }\n}\n",
			errType: ManifestInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), DefaultFileName)
			var mErr *ManifestError
			if !errors.As(err, &mErr) {
				t.Fatalf("expected ManifestError, got %v", err)
			}
			if mErr.Type != tt.errType {
				t.Errorf("expected type %d, got %d: %v", tt.errType, mErr.Type, err)
			}
		})
	}
}

// TestLoad tests loading a manifest from disk
func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFileName)
	if err := os.WriteFile(path, []byte("template \"a\" {\n  source = \"a.dcg\"\n}\n"), 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}

	m, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Dir != dir || m.Templates[0].Source != filepath.Join(dir, "a.dcg") {
		t.Errorf("unexpected manifest %+v", m)
	}

	if _, err := Load(filepath.Join(dir, "missing.hcl")); err == nil {
		t.Error("expected error for missing manifest")
	}
}
