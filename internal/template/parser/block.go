package parser

import (
	"fmt"
	"strings"

	"github.com/tacogips/dcg/internal/debug"
	"github.com/tacogips/dcg/internal/template/model"
)

// parseBodyLine dispatches a static-mode line that is not a header directive.
// The first matching directive wins.
func (s *state) parseBodyLine(line string) error {
	trimmed := strings.TrimSpace(line)
	left := trimLeft(line)

	switch {
	case trimmed == textEndDirective:
		return s.parseTextEnd()
	case trimmed == codeStartDirective:
		stripped, err := s.stripIndentation(line)
		if err != nil {
			return err
		}
		return s.parseCodeStart(stripped)
	case trimmed == sectionEndDirective:
		return s.parseSectionEnd()
	case trimmed == outputEndDirective:
		return s.parseOutputEnd()
	case trimmed == codeEndDirective:
		return newParseErrorWithDirective(UnexpectedDirective, "@end_code without matching @code", codeEndDirective)
	case trimmed == textStartDirective:
		return newParseErrorWithDirective(UnexpectedDirective, "@text is only allowed inside a @code block", textStartDirective)
	case strings.HasPrefix(left, executionDirective):
		return s.parseExecution(line)
	case strings.HasPrefix(left, sectionStartDirective):
		return s.parseSectionStart(line)
	case strings.HasPrefix(left, sectionRefDirective):
		stripped, err := s.stripIndentation(line)
		if err != nil {
			return err
		}
		return s.parseSectionRef(stripped)
	case strings.HasPrefix(left, multilineEvalDirective):
		stripped, err := s.stripIndentation(line)
		if err != nil {
			return err
		}
		return s.parseMultilineEvaluation(stripped)
	case strings.HasPrefix(left, outputStartDirective):
		return s.parseOutputStart(line)
	}

	stripped, err := s.stripIndentation(line)
	if err != nil {
		return err
	}
	return s.parseTextLine(stripped)
}

// parseDynamicLine handles a line inside a @code or between block.
func (s *state) parseDynamicLine(line string) error {
	line, err := s.stripOutputIndentation(line)
	if err != nil {
		return err
	}

	trimmed := strings.TrimSpace(line)
	left := trimLeft(line)

	switch {
	case trimmed == codeEndDirective:
		return s.parseCodeEnd()
	case trimmed == textStartDirective:
		return s.parseTextStart(line)
	case strings.HasPrefix(left, betweenEndDirective):
		return s.parseBetweenEnd(line)
	case strings.HasPrefix(left, sectionStartDirective):
		return newParseErrorWithDirective(SectionNotTopLevel, "@section must be defined at the top level", sectionStartDirective)
	}

	s.append(model.Node{Kind: model.KindDynamicText, Text: line, Line: s.lineNo})
	return nil
}

func (s *state) parseCodeStart(line string) error {
	spaces := line[:strings.Index(line, codeStartDirective)]
	id := s.open(model.Node{Kind: model.KindCode, Indent: spaces, Line: s.lineNo})
	s.contexts.push(contextFrame{
		mode:   dynamicMode,
		spaces: leadingWhitespace(line),
		opener: id,
		line:   s.lineNo,
	})
	debug.Debug("[parser] line %d: @code indent=%q", s.lineNo, spaces)
	return nil
}

func (s *state) parseCodeEnd() error {
	if s.contexts.depth() == 0 || s.contexts.peek().mode != dynamicMode || s.node().Kind != model.KindCode {
		return newParseErrorWithDirective(UnexpectedDirective, "@end_code without matching @code", codeEndDirective)
	}
	s.contexts.pop()
	s.close()
	return nil
}

func (s *state) parseTextStart(line string) error {
	spaces := leadingWhitespace(line)
	id := s.open(model.Node{Kind: model.KindText, Indent: spaces, Line: s.lineNo})
	s.contexts.push(contextFrame{
		mode:   staticMode,
		spaces: spaces,
		opener: id,
		line:   s.lineNo,
	})
	return nil
}

func (s *state) parseTextEnd() error {
	if s.contexts.depth() == 0 || s.contexts.peek().mode != staticMode || s.node().Kind != model.KindText {
		return newParseErrorWithDirective(UnexpectedDirective, "@end_text without matching @text", textEndDirective)
	}
	s.contexts.pop()
	s.close()
	return nil
}

func (s *state) parseBetweenEnd(line string) error {
	if s.contexts.depth() == 0 || s.contexts.peek().mode != dynamicMode || s.node().Kind != model.KindBetween {
		return newParseErrorWithDirective(UnexpectedDirective, "@} without matching @{", betweenEndDirective)
	}
	s.contexts.pop()
	s.close()

	rest := line[strings.Index(line, betweenEndDirective)+len(betweenEndDirective):]
	return s.parseTextLine(rest)
}

func (s *state) parseOutputStart(line string) error {
	left := trimLeft(line)
	after := left[len(outputStartDirective):]
	if after != "" && after[0] != ' ' && after[0] != '\t' {
		return newParseErrorWithDirective(InvalidDirectiveSyntax, "malformed @output directive", line)
	}
	key := strings.TrimSpace(after)
	if key == "" {
		return newParseErrorWithDirective(EmptyOutputKey, "@output requires a writer key", outputStartDirective)
	}

	spaces := leadingWhitespace(line)
	id := s.open(model.Node{Kind: model.KindOutput, Key: key, Indent: spaces, Line: s.lineNo})
	s.outputs.push(outputFrame{key: key, spaces: spaces})
	s.contexts.push(contextFrame{mode: staticMode, opener: id, line: s.lineNo})
	debug.Debug("[parser] line %d: @output %q", s.lineNo, key)
	return nil
}

func (s *state) parseOutputEnd() error {
	if _, ok := s.outputs.peek(); !ok || s.node().Kind != model.KindOutput {
		return newParseErrorWithDirective(UnexpectedDirective, "@end_output without matching @output", outputEndDirective)
	}
	s.outputs.pop()
	s.contexts.pop()
	s.close()
	return nil
}

func (s *state) parseSectionStart(line string) error {
	left := trimLeft(line)
	after := left[len(sectionStartDirective):]
	def := strings.TrimSpace(after)
	if def == "" || (after[0] != ' ' && after[0] != '\t') {
		return newParseErrorWithDirective(InvalidDirectiveSyntax, "malformed @section definition", line)
	}
	if s.current != s.tmpl.Body() {
		return newParseErrorWithDirective(SectionNotTopLevel, "@section must be defined at the top level", line)
	}

	name, params, ok := parseSectionHeader(def)
	if !ok {
		return newParseErrorWithDirective(InvalidDirectiveSyntax, "malformed @section definition", line)
	}
	if first, exists := s.sections[name]; exists {
		return newParseErrorWithDirective(DuplicateSection,
			fmt.Sprintf("section %s is already defined at line %d", name, first), line)
	}
	s.sections[name] = s.lineNo

	s.open(model.Node{Kind: model.KindSectionDefinition, Name: name, Params: params, Line: s.lineNo})
	debug.Debug("[parser] line %d: @section %s params=%d", s.lineNo, name, len(params))
	return nil
}

func (s *state) parseSectionEnd() error {
	if s.node().Kind != model.KindSectionDefinition {
		return newParseErrorWithDirective(UnexpectedDirective, "@end_section without matching @section", sectionEndDirective)
	}
	s.close()
	return nil
}

func (s *state) parseSectionRef(line string) error {
	idx := strings.Index(line, sectionRefDirective)
	name, args, ok := parseSectionRef(line[idx+len(sectionRefDirective):])
	if !ok {
		return newParseErrorWithDirective(InvalidDirectiveSyntax, "malformed @+ section reference", line)
	}
	s.append(model.Node{
		Kind:   model.KindSectionReference,
		Name:   name,
		Args:   args,
		Indent: line[:idx],
		Line:   s.lineNo,
	})
	return nil
}

func (s *state) parseMultilineEvaluation(line string) error {
	idx := strings.Index(line, multilineEvalDirective)
	expr := strings.TrimSpace(line[idx+len(multilineEvalDirective):])
	if expr == "" {
		return newParseErrorWithDirective(InvalidDirectiveSyntax, "@= requires an expression", line)
	}
	s.append(model.Node{
		Kind:   model.KindMultiLineEvaluation,
		Text:   expr,
		Indent: line[:idx],
		Line:   s.lineNo,
	})
	return nil
}

func (s *state) parseExecution(line string) error {
	idx := strings.Index(line, executionDirective)
	s.append(model.Node{
		Kind: model.KindExecution,
		Text: line[idx+len(executionDirective):],
		Line: s.lineNo,
	})
	return nil
}
