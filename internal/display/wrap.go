package display

import (
	"strings"

	"github.com/muesli/reflow/wordwrap"
)

// DefaultWidth is the column notification text is wrapped at.
const DefaultWidth = 60

// Wrap word-wraps text to width columns. A width of zero or less uses
// DefaultWidth. Words longer than the width are left whole.
func Wrap(text string, width int) string {
	if width <= 0 {
		width = DefaultWidth
	}
	return wordwrap.String(strings.TrimSpace(text), width)
}

// Capitalize returns s with its first character uppercased.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
