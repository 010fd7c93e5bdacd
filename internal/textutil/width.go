package textutil

import (
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

const ellipsis = "…"

// DisplayWidth reports the number of terminal cells text occupies.
func DisplayWidth(text string) int {
	return runewidth.StringWidth(text)
}

// Truncate shortens text to at most width cells, marking the cut with an
// ellipsis.
func Truncate(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(text) <= width {
		return text
	}
	return runewidth.Truncate(text, width, ellipsis)
}

// PadRight truncates or pads text with spaces to exactly width cells.
func PadRight(text string, width int) string {
	text = Truncate(text, width)
	if gap := width - runewidth.StringWidth(text); gap > 0 {
		return text + strings.Repeat(" ", gap)
	}
	return text
}

// Wrap breaks text into lines of at most width cells. Breaks prefer spaces;
// words wider than a line are split by cell.
func Wrap(text string, width int) []string {
	text = SingleLine(text)
	if text == "" {
		return nil
	}
	if width <= 0 {
		return []string{text}
	}

	var lines []string
	var line strings.Builder
	lineWidth := 0
	flush := func() {
		lines = append(lines, line.String())
		line.Reset()
		lineWidth = 0
	}

	for _, word := range strings.Split(text, " ") {
		wordWidth := runewidth.StringWidth(word)
		if lineWidth > 0 && lineWidth+1+wordWidth <= width {
			line.WriteByte(' ')
			line.WriteString(word)
			lineWidth += 1 + wordWidth
			continue
		}
		if lineWidth > 0 {
			flush()
		}
		for wordWidth > width {
			head := runewidth.Truncate(word, width, "")
			if head == "" {
				// a single rune wider than the line
				_, size := utf8.DecodeRuneInString(word)
				head = word[:size]
			}
			lines = append(lines, head)
			word = word[len(head):]
			wordWidth = runewidth.StringWidth(word)
		}
		line.WriteString(word)
		lineWidth = wordWidth
	}
	if lineWidth > 0 {
		flush()
	}
	return lines
}
