package parser

import (
	"go/ast"
	goparser "go/parser"
	"go/token"
	"regexp"
	"strings"

	"github.com/tacogips/dcg/internal/template/model"
)

// Directive keywords. Header directives are only recognized at column 0.
const (
	markerDirective        = "@"
	referenceDirective     = "@reference"
	importDirective        = "@import"
	paramDirective         = "@param"
	globalStartDirective   = "@global"
	globalEndDirective     = "@end_global"
	commentDirective       = "@#"
	codeStartDirective     = "@code"
	codeEndDirective       = "@end_code"
	textStartDirective     = "@text"
	textEndDirective       = "@end_text"
	outputStartDirective   = "@output"
	outputEndDirective     = "@end_output"
	sectionStartDirective  = "@section"
	sectionEndDirective    = "@end_section"
	sectionRefDirective    = "@+"
	executionDirective     = "@!"
	multilineEvalDirective = "@="
	betweenStartDirective  = "@{"
	betweenEndDirective    = "@}"
	evaluationStart        = "@("
	escapedMarker          = "@@"
)

var (
	// trailingMarkerPattern matches an unescaped @ at the end of a line
	// (only whitespace after it), which suppresses the line terminator.
	trailingMarkerPattern = regexp.MustCompile(`[^@](?:@@)*@\s*$`)

	// betweenStartPattern matches an unescaped @{ ending a line.
	betweenStartPattern = regexp.MustCompile(`(?:^|[^@])(?:@@)*@\{[ \t]*$`)

	// identPattern matches a section name.
	identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*`)

	// sectionRefPattern splits "@+" arguments into a name and the rest.
	sectionRefPattern = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_]*)(.*)$`)
)

// hasArgument reports whether line continues after directive with a space
// followed by at least one more character.
func hasArgument(line, directive string) bool {
	return len(line) > len(directive)+1 && line[len(directive)] == ' '
}

// parseSectionHeader parses "Name" or "Name(p1: T1, p2: T2)".
func parseSectionHeader(def string) (string, []model.SectionParam, bool) {
	name := identPattern.FindString(def)
	if name == "" {
		return "", nil, false
	}

	rest := strings.TrimSpace(def[len(name):])
	if rest == "" {
		return name, nil, true
	}
	if !strings.HasPrefix(rest, "(") || !strings.HasSuffix(rest, ")") {
		return "", nil, false
	}

	inner := strings.TrimSpace(rest[1 : len(rest)-1])
	if inner == "" {
		return name, nil, true
	}

	var params []model.SectionParam
	for _, part := range splitTopLevel(inner) {
		pname, ptype, ok := parseParamDecl(part)
		if !ok {
			return "", nil, false
		}
		params = append(params, model.SectionParam{Name: pname, Type: ptype})
	}
	return name, params, true
}

// parseParamDecl splits "name: type". The name must be an identifier and
// the type the whole remainder, a valid Go type expression.
func parseParamDecl(decl string) (string, string, bool) {
	name, typ, ok := strings.Cut(decl, ":")
	name, typ = strings.TrimSpace(name), strings.TrimSpace(typ)
	if !ok || !token.IsIdentifier(name) || !isTypeExpr(typ) {
		return "", "", false
	}
	return name, typ, true
}

// isTypeExpr reports whether typ parses as a Go type.
func isTypeExpr(typ string) bool {
	if typ == "" {
		return false
	}
	expr, err := goparser.ParseExpr(typ)
	if err != nil {
		return false
	}
	return isTypeNode(expr)
}

func isTypeNode(expr ast.Expr) bool {
	switch e := expr.(type) {
	case *ast.Ident, *ast.ArrayType, *ast.MapType, *ast.ChanType,
		*ast.FuncType, *ast.InterfaceType, *ast.StructType:
		return true
	case *ast.SelectorExpr:
		_, ok := e.X.(*ast.Ident)
		return ok
	case *ast.StarExpr:
		return isTypeNode(e.X)
	case *ast.ParenExpr:
		return isTypeNode(e.X)
	case *ast.IndexExpr:
		return isTypeNode(e.X) && isTypeNode(e.Index)
	case *ast.IndexListExpr:
		if !isTypeNode(e.X) {
			return false
		}
		for _, idx := range e.Indices {
			if !isTypeNode(idx) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// splitTopLevel splits s at commas outside parentheses, brackets and braces.
func splitTopLevel(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

// parseSectionRef parses "Name" or "Name(args)" after the @+ keyword. The
// argument text is returned verbatim, parentheses included.
func parseSectionRef(text string) (string, string, bool) {
	m := sectionRefPattern.FindStringSubmatch(text)
	if m == nil {
		return "", "", false
	}
	rest := strings.TrimSpace(m[2])
	if rest != "" && (!strings.HasPrefix(rest, "(") || !strings.HasSuffix(rest, ")")) {
		return "", "", false
	}
	return m[1], rest, true
}

// leadingWhitespace returns the run of spaces and tabs starting line.
func leadingWhitespace(line string) string {
	i := 0
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	return line[:i]
}
