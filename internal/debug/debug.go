// Package debug provides the global debug switch and the [DEBUG] logger used
// across dcg packages.
package debug

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

var (
	mu      sync.RWMutex
	enabled bool
	noColor bool
	out     io.Writer = os.Stderr
)

// ANSI color codes
const (
	colorReset = "\033[0m"
	colorCyan  = "\033[36m"
	colorGray  = "\033[90m"
)

// SetDebug enables or disables debug mode
func SetDebug(enable bool) {
	mu.Lock()
	defer mu.Unlock()
	enabled = enable
}

// IsEnabled returns whether debug mode is enabled
func IsEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// SetNoColor enables or disables colored output
func SetNoColor(disable bool) {
	mu.Lock()
	defer mu.Unlock()
	noColor = disable
}

// SetOutput redirects debug output and returns the previous writer.
// A nil writer restores stderr.
func SetOutput(w io.Writer) io.Writer {
	mu.Lock()
	defer mu.Unlock()
	prev := out
	if w == nil {
		w = os.Stderr
	}
	out = w
	return prev
}

// emit writes one debug record. colored and plain are the body with and
// without ANSI codes.
func emit(colored, plain string) {
	mu.RLock()
	on, useColor, w := enabled, !noColor, out
	mu.RUnlock()
	if !on {
		return
	}

	timestamp := time.Now().Format("15:04:05.000")
	if useColor {
		fmt.Fprintf(w, "%s[DEBUG]%s %s%s%s %s\n", colorCyan, colorReset, colorGray, timestamp, colorReset, colored)
	} else {
		fmt.Fprintf(w, "[DEBUG] %s %s\n", timestamp, plain)
	}
}

// Debug prints a debug message with timestamp
func Debug(format string, args ...interface{}) {
	if !IsEnabled() {
		return
	}
	msg := fmt.Sprintf(format, args...)
	emit(msg, msg)
}

// Debugf is an alias for Debug
func Debugf(format string, args ...interface{}) {
	Debug(format, args...)
}

// DebugSection prints a section header for debug output
func DebugSection(section string) {
	if !IsEnabled() {
		return
	}
	emit(
		fmt.Sprintf("%s=== %s ===%s", colorCyan, section, colorReset),
		fmt.Sprintf("=== %s ===", section),
	)
}

// DebugValue prints key=value style debug info
func DebugValue(key string, value interface{}) {
	if !IsEnabled() {
		return
	}
	emit(
		fmt.Sprintf("%s%s%s = %v", colorCyan, key, colorReset, value),
		fmt.Sprintf("%s = %v", key, value),
	)
}

// DebugJSON prints structured data as JSON for debugging
func DebugJSON(key string, v interface{}) {
	if !IsEnabled() {
		return
	}

	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		Debug("Failed to marshal %s to JSON: %v", key, err)
		return
	}

	emit(
		fmt.Sprintf("%s%s%s:\n%s", colorCyan, key, colorReset, jsonBytes),
		fmt.Sprintf("%s:\n%s", key, jsonBytes),
	)
}

// DebugSource prints source text with 1-based line numbers, the way
// compiler diagnostics refer to it.
func DebugSource(key, source string) {
	if !IsEnabled() {
		return
	}

	lines := strings.Split(strings.TrimSuffix(source, "\n"), "\n")
	width := len(fmt.Sprint(len(lines)))
	var b strings.Builder
	for i, line := range lines {
		fmt.Fprintf(&b, "%*d | %s\n", width, i+1, strings.TrimSuffix(line, "\r"))
	}
	body := strings.TrimSuffix(b.String(), "\n")

	emit(
		fmt.Sprintf("%s%s%s:\n%s", colorCyan, key, colorReset, body),
		fmt.Sprintf("%s:\n%s", key, body),
	)
}
