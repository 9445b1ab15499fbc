package debug

import (
	"bytes"
	"strings"
	"testing"
)

// capture enables plain debug output into a buffer for the duration of the test.
func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := SetOutput(&buf)
	SetDebug(true)
	SetNoColor(true)
	t.Cleanup(func() {
		SetOutput(prev)
		SetDebug(false)
		SetNoColor(false)
	})
	return &buf
}

func TestSetDebug(t *testing.T) {
	// Initially disabled
	SetDebug(false)
	if IsEnabled() {
		t.Error("Debug should be disabled initially")
	}

	// Enable
	SetDebug(true)
	if !IsEnabled() {
		t.Error("Debug should be enabled")
	}

	// Disable again
	SetDebug(false)
	if IsEnabled() {
		t.Error("Debug should be disabled again")
	}
}

func TestDebugOutput(t *testing.T) {
	buf := capture(t)

	Debug("test message %s", "arg")
	output := buf.String()

	if !strings.HasPrefix(output, "[DEBUG] ") {
		t.Errorf("Output should start with [DEBUG] prefix, got: %s", output)
	}
	if !strings.Contains(output, "test message arg") {
		t.Errorf("Output should contain message, got: %s", output)
	}
	// Should contain timestamp
	if !strings.Contains(output, ":") {
		t.Errorf("Output should contain timestamp, got: %s", output)
	}
}

func TestDebugDisabled(t *testing.T) {
	buf := capture(t)
	SetDebug(false)

	Debug("this should not appear")
	DebugSection("hidden")
	DebugValue("k", "v")
	DebugJSON("j", 1)
	DebugSource("s", "x")

	if buf.Len() != 0 {
		t.Errorf("Debug output should be empty when disabled, got: %s", buf.String())
	}
}

func TestDebugColor(t *testing.T) {
	buf := capture(t)
	SetNoColor(false)

	Debug("colored")
	if !strings.Contains(buf.String(), colorCyan+"[DEBUG]"+colorReset) {
		t.Errorf("Expected colored prefix, got: %q", buf.String())
	}
}

func TestDebugFormats(t *testing.T) {
	tests := []struct {
		name     string
		log      func()
		expected string
	}{
		{"section", func() { DebugSection("Parse") }, "=== Parse ==="},
		{"value", func() { DebugValue("lines", 3) }, "lines = 3"},
		{"json", func() { DebugJSON("keys", []string{"_main_"}) }, "keys:\n[\n  \"_main_\"\n]"},
		{"debugf", func() { Debugf("%d sections", 2) }, "2 sections"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := capture(t)
			tt.log()
			if !strings.Contains(buf.String(), tt.expected) {
				t.Errorf("expected %q in output, got %q", tt.expected, buf.String())
			}
		})
	}
}

func TestDebugJSON_MarshalError(t *testing.T) {
	buf := capture(t)

	DebugJSON("fn", func() {})
	if !strings.Contains(buf.String(), "Failed to marshal fn to JSON") {
		t.Errorf("expected marshal failure message, got %q", buf.String())
	}
}

func TestDebugSource(t *testing.T) {
	lines := make([]string, 10)
	for i := range lines {
		lines[i] = "l"
	}
	buf := capture(t)

	DebugSource("generated", strings.Join(lines, "\r\n")+"\r\n")
	output := buf.String()

	if !strings.Contains(output, "generated:\n 1 | l\n") {
		t.Errorf("expected padded first line, got %q", output)
	}
	if !strings.Contains(output, "10 | l\n") {
		t.Errorf("expected line 10, got %q", output)
	}
	if strings.Contains(output, "\r") || strings.Contains(output, "11 |") {
		t.Errorf("unexpected trailing content in %q", output)
	}
}
