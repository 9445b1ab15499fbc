package generator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tacogips/dcg/internal/template/model"
)

// GeneratedFileName names the generated unit in //line markers that restore
// positions after a block of template-mapped statements.
const GeneratedFileName = "dcg_generated.go"

var defaultImports = []string{`"fmt"`, `"io"`, `"strings"`}

// emitter accumulates the source of one generated unit.
type emitter struct {
	tmpl *model.Template
	opts GenerateOptions
	b    strings.Builder

	// pending is true when the next start-of-line static text begins a new
	// output line and therefore receives indentation.
	pending bool
	// marked is true when a template //line marker was written since the
	// last position reset.
	marked bool
}

func newEmitter(tmpl *model.Template, opts GenerateOptions) *emitter {
	return &emitter{tmpl: tmpl, opts: opts, pending: true}
}

func (e *emitter) String() string {
	return e.b.String()
}

func (e *emitter) printf(format string, args ...interface{}) {
	fmt.Fprintf(&e.b, format, args...)
}

func (e *emitter) emit() error {
	e.header()
	e.globals()
	e.templateType()
	e.entryPoint()
	if err := e.body(); err != nil {
		return err
	}
	for _, id := range e.tmpl.Sections() {
		if err := e.section(id); err != nil {
			return err
		}
	}
	e.reset()
	e.b.WriteString(runtimeSource)
	return nil
}

func (e *emitter) header() {
	e.b.WriteString("// Code generated by dcg. DO NOT EDIT.\n")
	if e.opts.SourceName != "" {
		e.printf("// Source: %s\n", e.opts.SourceName)
	}
	e.printf("\npackage %s\n\nimport (\n", e.opts.PackageName)
	for _, spec := range e.imports() {
		e.printf("\t%s\n", spec)
	}
	e.b.WriteString(")\n\n")
}

// imports returns the import specs of the unit. Bare paths are quoted; specs
// already containing a quote (aliased imports) are kept as written.
func (e *emitter) imports() []string {
	specs := append([]string(nil), defaultImports...)
	seen := make(map[string]bool)
	for _, s := range specs {
		seen[s] = true
	}
	for _, imp := range e.tmpl.Head.Imports {
		spec := strings.TrimSpace(imp)
		if spec == "" {
			continue
		}
		if !strings.Contains(spec, `"`) {
			spec = strconv.Quote(spec)
		}
		if seen[spec] {
			continue
		}
		seen[spec] = true
		specs = append(specs, spec)
	}
	return specs
}

func (e *emitter) globals() {
	for _, g := range e.tmpl.Head.Globals {
		e.marker(g.Line)
		e.b.WriteString(g.Text)
		e.b.WriteString("\n")
	}
}

func (e *emitter) templateType() {
	e.reset()
	e.b.WriteString("type dcgTemplate struct {\n\tdcgOut *dcgWriter\n")
	for _, p := range e.tmpl.Head.Parameters {
		e.marker(p.Line)
		e.printf("\t%s %s\n", p.Name, p.Type)
	}
	e.b.WriteString("}\n\n")
}

func (e *emitter) entryPoint() {
	e.reset()
	params := e.tmpl.Head.Parameters

	e.printf("// %s renders the template into dcgWriters. Output outside any\n", EntryPoint)
	e.printf("// @output block goes to the %q writer.\n", model.MainOutputKey)
	e.printf("func %s(dcgWriters map[string]io.Writer", EntryPoint)
	for _, p := range params {
		e.printf(", %s %s", p.Name, p.Type)
	}
	e.b.WriteString(") (dcgErr error) {\n")

	e.printf("\tdcgT := &dcgTemplate{dcgOut: newDcgWriter(dcgWriters, %s)", strconv.Quote(e.opts.LineEnding))
	for _, p := range params {
		e.printf(", %s: %s", p.Name, p.Name)
	}
	e.b.WriteString("}\n")

	e.b.WriteString("\tdefer func() {\n")
	e.b.WriteString("\t\tif r := recover(); r != nil {\n")
	e.b.WriteString("\t\t\tif err, ok := r.(error); ok {\n")
	e.b.WriteString("\t\t\t\tdcgErr = err\n")
	e.b.WriteString("\t\t\t\treturn\n")
	e.b.WriteString("\t\t\t}\n")
	e.b.WriteString("\t\t\tdcgErr = fmt.Errorf(\"dcg: panic: %v\", r)\n")
	e.b.WriteString("\t\t}\n")
	e.b.WriteString("\t}()\n")
	e.b.WriteString("\tdcgT.generate()\n")
	e.b.WriteString("\treturn dcgT.dcgOut.flush()\n")
	e.b.WriteString("}\n\n")
}

func (e *emitter) body() error {
	e.reset()
	e.b.WriteString("func (dcgT *dcgTemplate) generate() {\n")
	e.prologue(nil)
	if err := e.walkChildren(e.tmpl.Body(), strconv.Quote(model.MainOutputKey), false); err != nil {
		return err
	}
	e.b.WriteString("}\n\n")
	return nil
}

func (e *emitter) section(id model.NodeID) error {
	n := e.tmpl.Node(id)
	e.reset()
	e.pending = true

	shadowed := make(map[string]bool)
	e.marker(n.Line)
	e.printf("func (dcgT *dcgTemplate) %s(", SectionMethod(n.Name))
	for _, p := range n.Params {
		e.printf("%s %s, ", p.Name, p.Type)
		shadowed[p.Name] = true
	}
	e.b.WriteString("dcgIndent string, dcgKey string) {\n")
	e.reset()

	e.prologue(shadowed)
	if err := e.walkChildren(id, "dcgKey", true); err != nil {
		return err
	}
	e.b.WriteString("}\n\n")
	return nil
}

// prologue binds the output helper and every template parameter not
// shadowed by a section parameter to a local.
func (e *emitter) prologue(shadowed map[string]bool) {
	e.b.WriteString("\tdcg := dcgT.dcgOut\n\t_ = dcg\n")
	for _, p := range e.tmpl.Head.Parameters {
		if shadowed[p.Name] {
			continue
		}
		e.printf("\t%s := dcgT.%s\n\t_ = %s\n", p.Name, p.Name, p.Name)
	}
}

func (e *emitter) walkChildren(id model.NodeID, key string, inSection bool) error {
	for _, c := range e.tmpl.Children(id) {
		if err := e.node(c, key, inSection); err != nil {
			return err
		}
	}
	return nil
}

// node emits one directive. key is the Go expression selecting the writer.
// Inside a section body key is the dcgKey argument and indentation is
// relative to dcgIndent.
func (e *emitter) node(id model.NodeID, key string, inSection bool) error {
	n := e.tmpl.Node(id)
	switch n.Kind {
	case model.KindStaticText:
		e.staticText(id, n, key, inSection)
	case model.KindEvaluation:
		e.marker(n.Line)
		e.printf("\tdcg.PrintTo(%s, %s)\n", key, n.Text)
	case model.KindMultiLineEvaluation:
		e.marker(n.Line)
		e.printf("\tdcg.printLines(%s, %s, %s)\n", e.indentExpr(e.tmpl.Indentation(id)+n.Indent, inSection), key, n.Text)
		e.pending = true
	case model.KindDynamicText, model.KindExecution:
		e.marker(n.Line)
		e.b.WriteString(n.Text)
		e.b.WriteString("\n")
	case model.KindCode, model.KindText, model.KindBetween:
		return e.walkChildren(id, key, inSection)
	case model.KindOutput:
		return e.walkChildren(id, strconv.Quote(n.Key), false)
	case model.KindSectionReference:
		return e.sectionReference(id, n, key, inSection)
	case model.KindSectionDefinition:
		// Lowered to methods after the body.
	}
	return nil
}

func (e *emitter) staticText(id model.NodeID, n *model.Node, key string, inSection bool) {
	text := n.Text
	lead := n.StartOfLine && e.pending
	if lead {
		text = e.tmpl.Indentation(id) + text
	}
	e.pending = n.NewLine

	if (lead && inSection) || text != "" {
		e.marker(n.Line)
	}
	if lead && inSection {
		e.printf("\tdcg.PrintTo(%s, dcgIndent)\n", key)
	}
	if text != "" {
		e.printf("\tdcg.PrintTo(%s, %s)\n", key, strconv.Quote(text))
	}
}

func (e *emitter) sectionReference(id model.NodeID, n *model.Node, key string, inSection bool) error {
	if _, ok := e.tmpl.Section(n.Name); !ok {
		return newGeneratorErrorAt(GeneratorUnknownSection, "undefined section "+n.Name, e.opts.SourceName, n.Line)
	}
	e.marker(n.Line)
	e.printf("\tdcgT.%s(%s%s, %s)\n",
		SectionMethod(n.Name),
		sectionArgs(n.Args),
		e.indentExpr(e.tmpl.Indentation(id)+n.Indent, inSection),
		key)
	return nil
}

// sectionArgs turns "(a, b)" into "a, b, " ready to be followed by the
// indentation and key arguments.
func sectionArgs(args string) string {
	if len(args) < 2 {
		return ""
	}
	inner := strings.TrimSpace(args[1 : len(args)-1])
	if inner == "" {
		return ""
	}
	return inner + ", "
}

func (e *emitter) indentExpr(indent string, inSection bool) string {
	if !inSection {
		return strconv.Quote(indent)
	}
	if indent == "" {
		return "dcgIndent"
	}
	return "dcgIndent+" + strconv.Quote(indent)
}

// marker maps the next generated line to a template line in debug mode.
func (e *emitter) marker(line int) {
	if !e.opts.Debug || line <= 0 {
		return
	}
	e.marked = true
	e.printf("//line %s:%d\n", e.opts.SourceName, line)
}

// reset points positions back at the generated unit after template markers.
func (e *emitter) reset() {
	if !e.marked {
		return
	}
	e.marked = false
	line := strings.Count(e.b.String(), "\n") + 2
	e.printf("//line %s:%d\n", GeneratedFileName, line)
}
