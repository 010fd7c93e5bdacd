package render

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	statepkg "github.com/kk-code-lab/medfind/internal/state"
	textutil "github.com/kk-code-lab/medfind/internal/textutil"
)

type helpOverlayEntry struct {
	keys string
	desc string
}

type helpOverlaySection struct {
	title   string
	entries []helpOverlayEntry
}

func buildHelpOverlayLines(state *statepkg.AppState) []string {
	sections := []helpOverlaySection{
		{
			title: "Search bar",
			entries: []helpOverlayEntry{
				{keys: "/ or i", desc: "Focus the search bar"},
				{keys: "↑/↓", desc: "Move through suggestions"},
				{keys: "↵", desc: "Search, or use the selected suggestion"},
				{keys: "Esc", desc: "Close suggestions, then leave the input"},
				{keys: "Ctrl+T", desc: "Switch keyword / natural language"},
				{keys: "Ctrl+G", desc: "Next keyword category"},
				{keys: "Ctrl+W / Ctrl+U", desc: "Delete word / clear"},
			},
		},
		{
			title: "Pages",
			entries: []helpOverlayEntry{
				{keys: "↑/↓ or j/k", desc: "Move selection or scroll"},
				{keys: "↵", desc: "Open selection"},
				{keys: "n/p, PgDn/PgUp", desc: "Next / previous results page"},
				{keys: "b or ⌫", desc: "Back"},
				{keys: "r", desc: "Reload page"},
			},
		},
		{
			title: "Recent searches",
			entries: []helpOverlayEntry{
				{keys: "d", desc: "Remove selected entry"},
				{keys: "D", desc: "Clear all"},
			},
		},
		{
			title: "Actions",
			entries: []helpOverlayEntry{
				{keys: "y", desc: "Copy drug name or query to clipboard"},
				{keys: "o", desc: "Open drug image in browser"},
			},
		},
		{
			title: "Exit",
			entries: []helpOverlayEntry{
				{keys: "q", desc: "Quit"},
				{keys: "Ctrl+C", desc: "Quit immediately"},
				{keys: "Ctrl+Z", desc: "Suspend"},
				{keys: "?", desc: "Close this help"},
			},
		},
	}

	lines := make([]string, 0, 32)
	for i, section := range sections {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, section.title)
		for _, entry := range section.entries {
			lines = append(lines, formatHelpOverlayEntry(entry))
		}
	}

	return lines
}

func formatHelpOverlayEntry(entry helpOverlayEntry) string {
	key := textutil.SanitizeTerminalText(entry.keys)
	desc := textutil.SanitizeTerminalText(entry.desc)
	return fmt.Sprintf("  %-16s %s", key, desc)
}

func (r *Renderer) drawHelpOverlay(state *statepkg.AppState, w, h int) {
	baseStyle := tcell.StyleDefault.Background(r.theme.Background).Foreground(r.theme.Foreground)
	for y := 0; y < h; y++ {
		r.fillRow(0, y, w, baseStyle)
	}

	title := " Help "
	headerStyle := baseStyle.Background(r.theme.HeaderBg).Foreground(r.theme.HeaderFg).Bold(true)
	r.fillRow(0, 0, w, headerStyle)
	titleStart := 0
	titleWidth := r.measureTextWidth(title)
	if w > titleWidth {
		titleStart = (w - titleWidth) / 2
	}
	r.drawTextLine(titleStart, 0, w-titleStart, title, headerStyle)

	lines := buildHelpOverlayLines(state)
	row := 2
	maxRow := h - 1
	for _, line := range lines {
		if row >= maxRow {
			break
		}
		style := baseStyle
		if line != "" && !strings.HasPrefix(line, " ") {
			style = style.Foreground(r.theme.TitleFg).Bold(true)
		}
		text := r.truncateTextToWidth(strings.TrimRight(line, " "), w-4)
		r.drawTextLine(2, row, w-4, text, style)
		row++
	}

	if h > 1 {
		footer := r.truncateTextToWidth("? toggle · Esc/q close", w)
		r.fillRow(0, h-1, w, headerStyle)
		r.drawTextLine(0, h-1, w, footer, headerStyle)
	}
}
