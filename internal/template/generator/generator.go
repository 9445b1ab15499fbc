package generator

import (
	"context"
	"go/format"
	"go/token"
	"strings"

	"github.com/tacogips/dcg/internal/debug"
	"github.com/tacogips/dcg/internal/template/model"
)

// DefaultPackageName is the package clause of generated units.
const DefaultPackageName = "generated"

// EntryPoint is the name of the exported function of generated units.
const EntryPoint = "Generate"

// ReservedPrefix starts every identifier the generated scaffolding declares.
// Template parameters and section parameters may not use it.
const ReservedPrefix = "dcg"

// Generator lowers a parsed template into Go source.
type Generator interface {
	// Generate emits the source of an executable unit for tmpl.
	Generate(ctx context.Context, tmpl *model.Template, opts GenerateOptions) (*GenerateResult, error)
}

// GenerateOptions configures source generation.
type GenerateOptions struct {
	// Debug emits //line markers mapping generated statements to template lines.
	Debug bool

	// SourceName is the template identifier used in //line markers.
	SourceName string

	// PackageName is the package clause. Defaults to DefaultPackageName.
	PackageName string

	// LineEnding terminates lines written by multi-line evaluations. Defaults to "\n".
	LineEnding string

	// Format runs go/format over the result. Ignored when Debug is set
	// because formatting would indent the //line markers.
	Format bool
}

// GenerateResult contains the generated source.
type GenerateResult struct {
	// Source is the Go source of the unit.
	Source string

	// Formatted reports whether Source went through go/format.
	Formatted bool
}

// DefaultGenerator implements Generator.
type DefaultGenerator struct{}

// NewGenerator creates a new DefaultGenerator.
func NewGenerator() Generator {
	return &DefaultGenerator{}
}

// Generate emits the source of an executable unit for tmpl.
func (g *DefaultGenerator) Generate(ctx context.Context, tmpl *model.Template, opts GenerateOptions) (*GenerateResult, error) {
	if opts.PackageName == "" {
		opts.PackageName = DefaultPackageName
	}
	if opts.LineEnding == "" {
		opts.LineEnding = "\n"
	}
	debug.Debug("[generator] Generate: package=%s debug=%v source=%q", opts.PackageName, opts.Debug, opts.SourceName)

	if !token.IsIdentifier(opts.PackageName) {
		return nil, newGeneratorError(GeneratorProcessFailed, "invalid package name "+opts.PackageName, opts.SourceName, nil)
	}
	if err := checkIdentifiers(tmpl, opts.SourceName); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e := newEmitter(tmpl, opts)
	if err := e.emit(); err != nil {
		return nil, err
	}

	result := &GenerateResult{Source: e.String()}
	if opts.Format && !opts.Debug {
		formatted, err := format.Source([]byte(result.Source))
		if err != nil {
			// Unformattable output is still handed to the compiler, which
			// reports the problem with better positions.
			debug.Debug("[generator] go/format failed: %v", err)
		} else {
			result.Source = string(formatted)
			result.Formatted = true
		}
	}

	debug.Debug("[generator] Generate: completed, size=%d bytes", len(result.Source))
	return result, nil
}

// checkIdentifiers rejects parameters that collide with the scaffolding.
func checkIdentifiers(tmpl *model.Template, file string) error {
	for _, p := range tmpl.Head.Parameters {
		if strings.HasPrefix(p.Name, ReservedPrefix) {
			return newGeneratorErrorAt(GeneratorReservedIdentifier,
				"parameter "+p.Name+" uses the reserved prefix "+ReservedPrefix, file, p.Line)
		}
	}
	for _, id := range tmpl.Sections() {
		sec := tmpl.Node(id)
		for _, p := range sec.Params {
			if strings.HasPrefix(p.Name, ReservedPrefix) {
				return newGeneratorErrorAt(GeneratorReservedIdentifier,
					"section "+sec.Name+" parameter "+p.Name+" uses the reserved prefix "+ReservedPrefix, file, sec.Line)
			}
		}
	}
	return nil
}

// SectionMethod returns the method name a section is lowered to.
func SectionMethod(name string) string {
	return ReservedPrefix + "Section_" + name
}
