package parser

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/tacogips/dcg/internal/debug"
	"github.com/tacogips/dcg/internal/template/model"
)

// parseHeaderLine handles @reference, @import, @param, global blocks,
// comments and lone marker lines. It reports whether the line was consumed.
func (s *state) parseHeaderLine(line string) (bool, error) {
	switch {
	case strings.HasPrefix(line, referenceDirective):
		return true, s.parseReference(line)
	case strings.HasPrefix(line, importDirective):
		return true, s.parseImport(line)
	case strings.HasPrefix(line, paramDirective):
		return true, s.parseParam(line)
	case trimRight(line) == globalStartDirective:
		return true, s.parseGlobalStart()
	case trimRight(line) == globalEndDirective:
		return true, s.parseGlobalEnd()
	case strings.HasPrefix(trimLeft(line), commentDirective), strings.TrimSpace(line) == markerDirective:
		return true, nil
	case s.inGlobal:
		s.tmpl.Head.AppendGlobal(line)
		return true, nil
	}
	return false, nil
}

func (s *state) parseReference(line string) error {
	if !hasArgument(line, referenceDirective) {
		return newParseErrorWithDirective(InvalidDirectiveSyntax, "@reference requires a path", line)
	}
	ref := strings.TrimSpace(line[len(referenceDirective)+1:])
	if ref == "" {
		return newParseErrorWithDirective(InvalidDirectiveSyntax, "@reference requires a path", line)
	}

	resolved := ref
	if s.opts.BaseDir != "" && !filepath.IsAbs(ref) {
		candidate := filepath.Join(s.opts.BaseDir, ref)
		if _, err := os.Stat(candidate); err == nil {
			resolved = candidate
		}
	}

	if s.tmpl.Head.AddReference(resolved) {
		debug.Debug("[parser] reference: %s", resolved)
	}
	return nil
}

func (s *state) parseImport(line string) error {
	if !hasArgument(line, importDirective) {
		return newParseErrorWithDirective(InvalidDirectiveSyntax, "@import requires an import path", line)
	}
	name := strings.TrimSpace(line[len(importDirective)+1:])
	if name == "" {
		return newParseErrorWithDirective(InvalidDirectiveSyntax, "@import requires an import path", line)
	}
	s.tmpl.Head.AddImport(name)
	return nil
}

func (s *state) parseParam(line string) error {
	if !hasArgument(line, paramDirective) {
		return newParseErrorWithDirective(InvalidDirectiveSyntax, "@param requires \"name: type\"", line)
	}
	name, typ, ok := parseParamDecl(line[len(paramDirective):])
	if !ok {
		return newParseErrorWithDirective(InvalidDirectiveSyntax, "@param requires \"name: type\" with a valid Go type", line)
	}

	p := model.Parameter{Name: name, Type: typ, Line: s.lineNo}
	if !s.tmpl.Head.AddParameter(p) {
		return newParseErrorWithDirective(DuplicateParameter, "parameter "+p.Name+" is already declared", line)
	}
	debug.Debug("[parser] param: %s %s", p.Name, p.Type)
	return nil
}

func (s *state) parseGlobalStart() error {
	if s.inGlobal {
		return newParseErrorWithDirective(UnexpectedDirective, "@global blocks cannot be nested", globalStartDirective)
	}
	s.inGlobal = true
	s.tmpl.Head.StartGlobal(s.lineNo + 1)
	return nil
}

func (s *state) parseGlobalEnd() error {
	if !s.inGlobal {
		return newParseErrorWithDirective(UnexpectedDirective, "@end_global without matching @global", globalEndDirective)
	}
	s.inGlobal = false
	return nil
}
