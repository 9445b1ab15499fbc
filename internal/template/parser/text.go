package parser

import (
	"strings"

	"github.com/tacogips/dcg/internal/template/model"
)

// evaluationMatch is one inline @( expr ) found on a text line.
type evaluationMatch struct {
	start int
	end   int
	expr  string
}

// parseTextLine splits a static line into StaticText and Evaluation nodes
// and opens a between block when the line ends with @{.
func (s *state) parseTextLine(line string) error {
	opensBetween := betweenStartPattern.MatchString(line)

	text := line + s.opts.LineEnding
	newLine := true
	if opensBetween {
		text = line[:strings.LastIndex(line, betweenStartDirective)]
		newLine = false
	}
	if trailingMarkerPattern.MatchString(text) {
		text = text[:strings.LastIndex(text, markerDirective)]
		newLine = false
	}

	matches, err := findEvaluations(text)
	if err != nil {
		return err
	}

	index := 0
	for i, m := range matches {
		s.appendStatic(text[index:m.start], i == 0, false)
		s.append(model.Node{Kind: model.KindEvaluation, Text: m.expr, Line: s.lineNo})
		index = m.end
	}
	s.appendStatic(text[index:], len(matches) == 0, newLine)

	if opensBetween {
		id := s.open(model.Node{Kind: model.KindBetween, Line: s.lineNo})
		s.contexts.push(contextFrame{mode: dynamicMode, opener: id, line: s.lineNo})
	}
	return nil
}

// appendStatic adds a StaticText chunk with escaped markers collapsed. Empty
// chunks are kept because they carry the start-of-line flag.
func (s *state) appendStatic(text string, startOfLine, newLine bool) {
	s.append(model.Node{
		Kind:        model.KindStaticText,
		Text:        strings.ReplaceAll(text, escapedMarker, markerDirective),
		Line:        s.lineNo,
		StartOfLine: startOfLine,
		NewLine:     newLine,
	})
}

// findEvaluations scans line for inline @( expr ) directives. An @( only
// opens a directive when the number of markers seen since the previous
// directive (including its own) is odd; otherwise it is escaped.
func findEvaluations(line string) ([]evaluationMatch, error) {
	var matches []evaluationMatch
	markers := 0

	for i := 0; i < len(line); i++ {
		if line[i] != '@' {
			continue
		}
		markers++
		if i+1 >= len(line) || line[i+1] != '(' || markers%2 == 0 {
			continue
		}

		end := matchingParen(line, i+2)
		if end < 0 {
			return nil, newParseErrorWithDirective(UnmatchedParenthesis,
				"inline evaluation is missing its closing parenthesis", strings.TrimRight(line[i:], "\r\n"))
		}
		matches = append(matches, evaluationMatch{
			start: i,
			end:   end + 1,
			expr:  line[i+2 : end],
		})
		markers = 0
		i = end
	}
	return matches, nil
}

// matchingParen returns the index of the ")" closing a parenthesis opened
// just before from, or -1.
func matchingParen(line string, from int) int {
	depth := 0
	for j := from; j < len(line); j++ {
		switch line[j] {
		case '(':
			depth++
		case ')':
			if depth == 0 {
				return j
			}
			depth--
		}
	}
	return -1
}
