package cli

import (
	"fmt"
	"io"
	"os"
)

// ANSI color codes
const (
	colorReset   = "\033[0m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorMagenta = "\033[35m"
)

// msgOut receives status messages. Stdout is reserved for rendered output
// and generated source.
var msgOut io.Writer = os.Stderr

// paint wraps s in color unless colors are disabled.
func paint(color, s string) string {
	if globalNoColor {
		return s
	}
	return color + s + colorReset
}

// status prints msg behind a colored symbol. Errors are printed even in
// quiet mode.
func status(symbol, color, msg string, always bool) {
	if globalQuiet && !always {
		return
	}
	fmt.Fprintf(msgOut, "%s %s\n", paint(color, symbol), msg)
}

// printInfo prints an informational message
func printInfo(msg string) {
	if globalQuiet {
		return
	}
	fmt.Fprintln(msgOut, msg)
}

func printSuccess(msg string) { status("✓", colorGreen, msg, false) }

func printWarning(msg string) { status("⚠", colorYellow, msg, false) }

// printErrorMsg prints an error message (different from printError which takes error type)
func printErrorMsg(msg string) { status("✗", colorRed, msg, true) }

// printHeader prints a section header
func printHeader(title string) {
	if globalQuiet {
		return
	}
	fmt.Fprintf(msgOut, "\n%s\n", paint(colorMagenta, "=== "+title+" ==="))
}
