package parser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/tacogips/dcg/internal/debug"
	"github.com/tacogips/dcg/internal/template/model"
)

// DefaultLineEnding is the terminator appended to static lines when none is configured.
const DefaultLineEnding = "\n"

// Parser turns template source into a directive tree.
type Parser interface {
	// Parse consumes the whole source and returns the parsed template.
	Parse(ctx context.Context, source string) (*model.Template, error)
}

// Options configures a parser.
type Options struct {
	// SourceName identifies the template in errors (usually its file path).
	SourceName string
	// LineEnding is appended after every static text line. Defaults to "\n".
	LineEnding string
	// BaseDir resolves relative @reference paths. Empty keeps them as written.
	BaseDir string
}

// DefaultParser implements Parser.
type DefaultParser struct {
	opts Options
}

// NewParser creates a new DefaultParser.
func NewParser(opts Options) Parser {
	if opts.LineEnding == "" {
		opts.LineEnding = DefaultLineEnding
	}
	return &DefaultParser{opts: opts}
}

// Parse consumes the whole source and returns the parsed template.
func (p *DefaultParser) Parse(ctx context.Context, source string) (*model.Template, error) {
	lines := SplitLines(source)
	debug.Debug("[parser] Parse: source=%q lines=%d", p.opts.SourceName, len(lines))

	st := newState(p.opts)
	for _, line := range lines {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		st.lineNo++
		if err := st.parseLine(line); err != nil {
			return nil, st.locate(err)
		}
	}
	if err := st.finish(); err != nil {
		return nil, st.locate(err)
	}

	debug.Debug("[parser] Parse: completed, nodes=%d sections=%d", st.tmpl.Len(), len(st.sections))
	return st.tmpl, nil
}

// state is the mutable parser state for a single parse.
type state struct {
	opts     Options
	tmpl     *model.Template
	lineNo   int
	contexts *contextStack
	outputs  outputStack
	current  model.NodeID
	inGlobal bool
	sections map[string]int
}

func newState(opts Options) *state {
	tmpl := model.NewTemplate()
	return &state{
		opts:     opts,
		tmpl:     tmpl,
		contexts: newContextStack(),
		current:  tmpl.Body(),
		sections: make(map[string]int),
	}
}

// locate attributes err to the current line and source.
func (s *state) locate(err error) error {
	var perr *ParseError
	if !errors.As(err, &perr) {
		return err
	}
	if perr.Line == 0 {
		perr.Line = s.lineNo
	}
	if perr.File == "" {
		perr.File = s.opts.SourceName
	}
	debug.Debug("[parser] error: %v", perr)
	return perr
}

func (s *state) node() *model.Node {
	return s.tmpl.Node(s.current)
}

func (s *state) append(n model.Node) model.NodeID {
	return s.tmpl.Append(s.current, n)
}

// open appends n and makes it the current directive.
func (s *state) open(n model.Node) model.NodeID {
	s.current = s.append(n)
	return s.current
}

// close makes the parent of the current directive current.
func (s *state) close() {
	s.current = s.tmpl.Parent(s.current)
}

func (s *state) parseLine(line string) error {
	if s.contexts.peek().mode == dynamicMode {
		return s.parseDynamicLine(line)
	}
	handled, err := s.parseHeaderLine(line)
	if err != nil || handled {
		return err
	}
	return s.parseBodyLine(line)
}

// finish validates the state at end of input.
func (s *state) finish() error {
	if s.inGlobal {
		return newParseErrorWithDirective(UnclosedBlock, "@global block is not closed", globalStartDirective)
	}
	if s.contexts.depth() > 0 {
		f := s.contexts.peek()
		kind := s.tmpl.Node(f.opener).Kind
		return &ParseError{
			Type:      UnclosedBlock,
			Message:   fmt.Sprintf("%s block opened at line %d is not closed", kind, f.line),
			Line:      f.line,
			Directive: openerDirective(kind),
		}
	}
	if n := s.node(); n.Kind == model.KindSectionDefinition {
		return &ParseError{
			Type:      UnclosedBlock,
			Message:   fmt.Sprintf("section %s opened at line %d is not closed", n.Name, n.Line),
			Line:      n.Line,
			Directive: sectionStartDirective,
		}
	}
	return nil
}

// stripOutputIndentation removes the indentation of the innermost @output block.
func (s *state) stripOutputIndentation(line string) (string, error) {
	f, ok := s.outputs.peek()
	if !ok || f.spaces == "" {
		return line, nil
	}
	if !strings.HasPrefix(line, f.spaces) {
		return "", newParseErrorWithDirective(IndentationMismatch,
			fmt.Sprintf("line must start with the indentation of output %q", f.key), outputStartDirective)
	}
	return line[len(f.spaces):], nil
}

// stripIndentation removes the output indentation, then the indentation
// required by the innermost context frame.
func (s *state) stripIndentation(line string) (string, error) {
	line, err := s.stripOutputIndentation(line)
	if err != nil {
		return "", err
	}
	f := s.contexts.peek()
	if f.spaces == "" {
		return line, nil
	}
	if !strings.HasPrefix(line, f.spaces) {
		kind := s.tmpl.Node(f.opener).Kind
		return "", newParseErrorWithDirective(IndentationMismatch,
			fmt.Sprintf("line must start with the indentation of the %s block opened at line %d", kind, f.line),
			openerDirective(kind))
	}
	return line[len(f.spaces):], nil
}

// openerDirective returns the keyword opening blocks of the given kind.
func openerDirective(kind model.Kind) string {
	switch kind {
	case model.KindCode:
		return codeStartDirective
	case model.KindText:
		return textStartDirective
	case model.KindBetween:
		return betweenStartDirective
	case model.KindOutput:
		return outputStartDirective
	case model.KindSectionDefinition:
		return sectionStartDirective
	default:
		return ""
	}
}

func trimLeft(line string) string {
	return strings.TrimLeftFunc(line, unicode.IsSpace)
}

func trimRight(line string) string {
	return strings.TrimRightFunc(line, unicode.IsSpace)
}
