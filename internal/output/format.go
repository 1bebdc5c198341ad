// Package output provides terminal formatting and display utilities for
// gradaudit.
package output

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

var (
	green   = color.New(color.FgGreen)
	yellow  = color.New(color.FgYellow)
	red     = color.New(color.FgRed)
	boldRed = color.New(color.FgRed, color.Bold)
	bold    = color.New(color.Bold)
	faint   = color.New(color.Faint)
	cyan    = color.New(color.FgCyan)
)

// DisableColor disables colored output.
func DisableColor() {
	color.NoColor = true
}

// EnableColor enables colored output.
func EnableColor() {
	color.NoColor = false
}

// IsColorEnabled returns whether color output is enabled. Color is off by
// default when stdout is not a terminal.
func IsColorEnabled() bool {
	return !color.NoColor
}

// RegistrationColor returns the color for a registration status.
func RegistrationColor(status string) *color.Color {
	switch strings.ToUpper(status) {
	case "OK":
		return green
	case "OVER", "UNDER":
		return yellow
	case "PROBLEM":
		return boldRed
	default:
		return faint
	}
}

// SeverityColor returns the color for a diagnostic severity name.
func SeverityColor(severity string) *color.Color {
	switch strings.ToLower(severity) {
	case "critical":
		return boldRed
	case "error":
		return red
	case "warning":
		return yellow
	case "info":
		return cyan
	default:
		return faint
	}
}

// Registration returns the status text in its color.
func Registration(status string) string {
	return RegistrationColor(status).Sprint(status)
}

// Severity returns the severity tag, e.g. "[warning]", in its color.
func Severity(severity string) string {
	return SeverityColor(severity).Sprint("[" + severity + "]")
}

// ProgressBar creates a visual progress bar.
func ProgressBar(percent float64, width int) string {
	filled := int(percent / 100.0 * float64(width))
	filled = max(0, min(filled, width))

	bar := "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
	switch {
	case percent >= 80:
		return green.Sprint(bar)
	case percent >= 50:
		return yellow.Sprint(bar)
	default:
		return red.Sprint(bar)
	}
}

// Header creates a formatted header line.
func Header(text string, width int) string {
	return bold.Sprint(rule(text, "=", width))
}

// SubHeader creates a formatted subheader line.
func SubHeader(text string, width int) string {
	return faint.Sprint(rule(text, "-", width))
}

func rule(text, fill string, width int) string {
	padding := max(0, (width-len(text)-2)/2)
	line := strings.Repeat(fill, padding) + " " + text + " " + strings.Repeat(fill, padding)
	if len(line) < width {
		line += strings.Repeat(fill, width-len(line))
	}
	return line
}

// Checkmark returns a colored checkmark or X.
func Checkmark(ok bool) string {
	if ok {
		return green.Sprint("✓")
	}
	return red.Sprint("✗")
}

// Credits formats "earned/required" with the earned part colored by
// completion.
func Credits(earned, required int) string {
	text := fmt.Sprintf("%d/%d", earned, required)
	switch {
	case earned >= required:
		return green.Sprint(text)
	case earned*2 >= required:
		return yellow.Sprint(text)
	default:
		return text
	}
}

// Truncate truncates text to a maximum width with ellipsis.
func Truncate(text string, maxWidth int) string {
	runes := []rune(text)
	if len(runes) <= maxWidth {
		return text
	}
	if maxWidth <= 3 {
		return string(runes[:maxWidth])
	}
	return string(runes[:maxWidth-3]) + "..."
}

// Pass renders a passing tag.
func Pass(text string) string { return green.Sprint(text) }

// Warn renders a warning tag.
func Warn(text string) string { return yellow.Sprint(text) }

// Fail renders a failure tag.
func Fail(text string) string { return red.Sprint(text) }
