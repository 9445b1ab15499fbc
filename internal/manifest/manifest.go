// Package manifest loads dcg.hcl files describing templates to render.
package manifest

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/tacogips/dcg/internal/debug"
)

// DefaultFileName is the manifest looked up when no path is given.
const DefaultFileName = "dcg.hcl"

// Manifest is a decoded manifest file.
type Manifest struct {
	// Path is the manifest file.
	Path string
	// Dir is the directory relative paths are resolved against.
	Dir string
	// Templates are the template entries in file order.
	Templates []*Template
}

// Template is one template entry.
type Template struct {
	// Name is the block label.
	Name string
	// Source is the template path, resolved against the manifest directory.
	Source string
	// Debug compiles with line markers.
	Debug bool
	// LineEnding overrides line ending detection when non-empty.
	LineEnding string
	// Params holds the parameter values as an HCL object (null if absent).
	Params cty.Value
	// Outputs map writer keys to files, in file order.
	Outputs []Output
}

// Output routes one writer key to a file.
type Output struct {
	// Key is the writer key ("_main_" for the main output).
	Key string
	// Path is the output file, resolved against the manifest directory.
	Path string
}

// hclManifestFile represents the top-level structure of a manifest for decoding.
type hclManifestFile struct {
	Templates []*hclTemplate `hcl:"template,block"`
}

type hclTemplate struct {
	Name       string      `hcl:"name,label"`
	Source     string      `hcl:"source"`
	Debug      *bool       `hcl:"debug,optional"`
	LineEnding *string     `hcl:"line_ending,optional"`
	Params     cty.Value   `hcl:"params,optional"`
	Outputs    []hclOutput `hcl:"output,block"`
}

type hclOutput struct {
	Key  string `hcl:"key,label"`
	Path string `hcl:"path"`
}

// Load parses and decodes the manifest at path. Expressions may read
// environment variables through env.NAME.
func Load(path string) (*Manifest, error) {
	debug.Debug("[manifest] Loading manifest: %s", path)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, newManifestError(ManifestParseFailed, "failed to parse manifest", path, diags)
	}
	return decode(path, file.Body)
}

// Parse decodes manifest source held in memory. filename is used in
// diagnostics and as the base for relative paths.
func Parse(src []byte, filename string) (*Manifest, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, newManifestError(ManifestParseFailed, "failed to parse manifest", filename, diags)
	}
	return decode(filename, file.Body)
}

func decode(path string, body hcl.Body) (*Manifest, error) {
	var parsed hclManifestFile
	diags := gohcl.DecodeBody(body, evalContext(), &parsed)
	if diags.HasErrors() {
		return nil, newManifestError(ManifestDecodeFailed, "failed to decode manifest", path, diags)
	}

	m := &Manifest{Path: path, Dir: filepath.Dir(path)}
	seen := make(map[string]bool)
	for _, t := range parsed.Templates {
		if seen[t.Name] {
			return nil, newManifestError(ManifestInvalid, "duplicate template "+t.Name, path, nil)
		}
		seen[t.Name] = true

		entry, err := m.entry(t)
		if err != nil {
			return nil, err
		}
		m.Templates = append(m.Templates, entry)
	}

	debug.Debug("[manifest] Loaded %d templates from %s", len(m.Templates), path)
	return m, nil
}

func (m *Manifest) entry(t *hclTemplate) (*Template, error) {
	if strings.TrimSpace(t.Source) == "" {
		return nil, newManifestError(ManifestInvalid, "template "+t.Name+" has an empty source", m.Path, nil)
	}

	entry := &Template{
		Name:   t.Name,
		Source: m.resolve(t.Source),
		Params: t.Params,
	}
	if t.Debug != nil {
		entry.Debug = *t.Debug
	}
	if t.LineEnding != nil {
		entry.LineEnding = *t.LineEnding
	}
	if !t.Params.IsNull() {
		if ty := t.Params.Type(); !ty.IsObjectType() && !ty.IsMapType() {
			return nil, newManifestError(ManifestInvalid, "template "+t.Name+" params must be an object", m.Path, nil)
		}
	}

	keys := make(map[string]bool)
	for _, o := range t.Outputs {
		if o.Key == "" {
			return nil, newManifestError(ManifestInvalid, "template "+t.Name+" has an output with an empty key", m.Path, nil)
		}
		if keys[o.Key] {
			return nil, newManifestError(ManifestInvalid, "template "+t.Name+" routes output "+o.Key+" twice", m.Path, nil)
		}
		keys[o.Key] = true
		entry.Outputs = append(entry.Outputs, Output{Key: o.Key, Path: m.resolve(o.Path)})
	}
	return entry, nil
}

// Template returns the entry with the given name, or nil.
func (m *Manifest) Template(name string) *Template {
	for _, t := range m.Templates {
		if t.Name == name {
			return t
		}
	}
	return nil
}

func (m *Manifest) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(m.Dir, path)
}

// evalContext exposes the process environment as env.NAME.
func evalContext() *hcl.EvalContext {
	env := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		if name, value, ok := strings.Cut(kv, "="); ok && name != "" {
			env[name] = cty.StringVal(value)
		}
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(env),
		},
	}
}
