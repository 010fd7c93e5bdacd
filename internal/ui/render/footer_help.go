package render

import (
	"strings"

	"github.com/kk-code-lab/medfind/internal/query"
	statepkg "github.com/kk-code-lab/medfind/internal/state"
)

// buildFooterHelpText returns the contextual footer hint string with leading/trailing padding.
func buildFooterHelpText(state *statepkg.AppState) string {
	parts := buildFooterHelpSegments(state)
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, "  ") + " "
}

// buildFooterHelpSegments assembles context-aware help hints for the footer.
func buildFooterHelpSegments(state *statepkg.AppState) []string {
	if state == nil {
		return nil
	}

	segments := contextualHelpSegments(state)
	segments = append(segments, persistentHelpSegments(state)...)

	return segments
}

func contextualHelpSegments(state *statepkg.AppState) []string {
	switch {
	case state.InputFocused && state.SuggestionsVisible():
		return []string{
			"↑↓: select",
			"↵: search",
			"Esc: close list",
		}
	case state.InputFocused:
		segments := []string{"↵: search", "Esc/Tab: leave input"}
		if state.Mode == query.ModeKeyword {
			segments = append(segments, "^G: category")
		}
		return segments
	}

	switch state.View {
	case statepkg.ViewResults:
		return []string{
			"↑↓: select",
			"↵: open",
			"n/p: page",
			"b: back",
			"/: search",
		}
	case statepkg.ViewDetail:
		return []string{
			"↑↓/Pg: scroll",
			"y: copy name",
			"o: open image",
			"b: back",
		}
	default:
		segments := []string{"/: search"}
		if len(state.Recent) > 0 {
			segments = append(segments, "↑↓: recent", "↵: use", "d: remove", "D: clear all")
		}
		return segments
	}
}

func persistentHelpSegments(state *statepkg.AppState) []string {
	if state.InputFocused {
		return []string{"^T: mode"}
	}
	return []string{"^T: mode", "?: help", "q: quit"}
}
