// Package display formats text for plain-text clients.
package display

import (
	"strings"

	"github.com/muesli/reflow/wordwrap"
)

const DefaultWidth = 80

// Wrap word-wraps text to DefaultWidth. Existing line breaks are kept.
func Wrap(text string) string {
	return WrapWidth(text, DefaultWidth)
}

// WrapWidth word-wraps text to width columns. A width below one disables wrapping.
func WrapWidth(text string, width int) string {
	if width < 1 {
		return text
	}
	return wordwrap.String(text, width)
}

// Lines ends every line of text with a newline, so a reply never runs into
// the next prompt.
func Lines(text string) string {
	if text == "" || strings.HasSuffix(text, "\n") {
		return text
	}
	return text + "\n"
}
