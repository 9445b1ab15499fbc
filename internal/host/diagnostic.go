package host

import (
	"errors"
	"go/scanner"
	"regexp"
	"strconv"
	"strings"
)

// positionPattern matches "file:line:col: message" and "line:col: message".
var positionPattern = regexp.MustCompile(`^(?:(.*?):)?(\d+):(\d+): (.*)$`)

// parseDiagnostics turns an interpreter error into diagnostics. Scanner
// errors keep their structured positions; other errors are split per line
// and parsed textually.
func parseDiagnostics(err error) []Diagnostic {
	var list scanner.ErrorList
	if errors.As(err, &list) && len(list) > 0 {
		diags := make([]Diagnostic, 0, len(list))
		for _, e := range list {
			diags = append(diags, Diagnostic{
				File:    e.Pos.Filename,
				Line:    e.Pos.Line,
				Column:  e.Pos.Column,
				Message: e.Msg,
				Code:    CodeSyntax,
			})
		}
		return diags
	}

	var diags []Diagnostic
	for _, line := range strings.Split(err.Error(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		diags = append(diags, parseDiagnosticLine(line))
	}
	if len(diags) == 0 {
		diags = append(diags, Diagnostic{Message: err.Error(), Code: CodeCompile})
	}
	return diags
}

func parseDiagnosticLine(line string) Diagnostic {
	m := positionPattern.FindStringSubmatch(line)
	if m == nil {
		return Diagnostic{Message: line, Code: CodeCompile}
	}
	lineNo, _ := strconv.Atoi(m[2])
	col, _ := strconv.Atoi(m[3])
	return Diagnostic{
		File:    m[1],
		Line:    lineNo,
		Column:  col,
		Message: m[4],
		Code:    CodeCompile,
	}
}
