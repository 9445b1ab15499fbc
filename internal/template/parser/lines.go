package parser

import "strings"

// SplitLines splits source on "\r\n", "\r" or "\n". A terminator at the end
// of the source does not produce a trailing empty line.
func SplitLines(source string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(source); i++ {
		switch source[i] {
		case '\n':
			lines = append(lines, source[start:i])
			start = i + 1
		case '\r':
			lines = append(lines, source[start:i])
			if i+1 < len(source) && source[i+1] == '\n' {
				i++
			}
			start = i + 1
		}
	}
	if start < len(source) {
		lines = append(lines, source[start:])
	}
	return lines
}

// DetectLineEnding returns the first line terminator used in source, or
// fallback when source has none.
func DetectLineEnding(source, fallback string) string {
	i := strings.IndexAny(source, "\r\n")
	if i < 0 {
		return fallback
	}
	if source[i] == '\n' {
		return "\n"
	}
	if i+1 < len(source) && source[i+1] == '\n' {
		return "\r\n"
	}
	return "\r"
}
