package textutil

import (
	"strings"
	"unicode"
)

// SanitizeTerminalText makes backend-supplied text safe to draw: control
// characters cannot start escape sequences and invisible formatting runes
// cannot reorder or hide neighbouring text. Line breaks and tabs become
// spaces.
func SanitizeTerminalText(text string) string {
	for _, r := range text {
		if requiresSanitization(r) {
			return sanitize(text)
		}
	}
	return text
}

// SingleLine sanitizes text and collapses whitespace runs into one space.
func SingleLine(text string) string {
	return strings.Join(strings.Fields(SanitizeTerminalText(text)), " ")
}

func requiresSanitization(r rune) bool {
	if r == '\t' || r == '\n' || r == '\r' {
		return true
	}
	if isFormattingRune(r) {
		return true
	}
	return (r >= 0 && r < 0x20) || r == 0x7f || (r >= 0x80 && r < 0xa0)
}

func sanitize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case isFormattingRune(r):
			// dropped
		case r == '\t', r == '\n', r == '\r':
			b.WriteByte(' ')
		case r < 0x20 || r == 0x7f || (r >= 0x80 && r < 0xa0):
			b.WriteByte('?')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// HasFormattingRunes reports whether text contains bidi or zero-width
// formatting runes.
func HasFormattingRunes(text string) bool {
	for _, r := range text {
		if isFormattingRune(r) {
			return true
		}
	}
	return false
}

// isFormattingRune matches the Unicode Cf category (bidi overrides,
// zero-width joiners, soft hyphens, BOM) plus the line and paragraph
// separators.
func isFormattingRune(r rune) bool {
	return unicode.Is(unicode.Cf, r) || r == 0x2028 || r == 0x2029 || r == 0x180e
}
