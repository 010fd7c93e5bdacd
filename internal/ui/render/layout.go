package render

import statepkg "github.com/kk-code-lab/medfind/internal/state"

// Screen rows. The body starts at statepkg.BodyTop and ends above the
// status line.
const (
	headerRow    = 0
	modeRow      = 1
	inputRow     = 2
	dropdownTop  = 3
	inputPadding = 1

	maxDropdownRows = 8
	inputPrompt     = "› "
	recentTitleRows = 1
)

// DropdownRows is the number of suggestion rows drawn under the input.
func DropdownRows(state *statepkg.AppState) int {
	if state == nil || !state.SuggestionsVisible() {
		return 0
	}
	rows := len(state.Suggestions)
	if rows > maxDropdownRows {
		rows = maxDropdownRows
	}
	if limit := state.ScreenHeight - dropdownTop - 1; rows > limit {
		rows = limit
	}
	if rows < 0 {
		return 0
	}
	return rows
}

// dropdownOffset keeps the selected suggestion inside the visible rows.
func dropdownOffset(state *statepkg.AppState, rows int) int {
	if rows <= 0 || state.SelectedSuggestion < rows {
		return 0
	}
	return state.SelectedSuggestion - rows + 1
}

// SuggestionAt maps a screen row to the suggestion drawn on it.
func SuggestionAt(state *statepkg.AppState, y int) (int, bool) {
	rows := DropdownRows(state)
	rel := y - dropdownTop
	if rel < 0 || rel >= rows {
		return 0, false
	}
	return rel + dropdownOffset(state, rows), true
}

// ResultAt maps a screen row to the result drawn on it.
func ResultAt(state *statepkg.AppState, y int) (int, bool) {
	if state == nil || state.View != statepkg.ViewResults || y < statepkg.BodyTop {
		return 0, false
	}
	slot := (y - statepkg.BodyTop) / statepkg.ResultRowHeight
	if slot >= state.VisibleResultRows() {
		return 0, false
	}
	index := state.ResultScroll + slot
	if index >= len(state.Results) {
		return 0, false
	}
	return index, true
}

// RecentAt maps a screen row to the recent entry drawn on it.
func RecentAt(state *statepkg.AppState, y int) (int, bool) {
	if state == nil || state.View != statepkg.ViewHome {
		return 0, false
	}
	index := y - statepkg.BodyTop - recentTitleRows
	if index < 0 || index >= len(state.Recent) || index >= state.BodyHeight()-recentTitleRows {
		return 0, false
	}
	return index, true
}

// InputAt reports whether row y is the search input.
func InputAt(y int) bool {
	return y == inputRow
}

func bodyBottom(h int) int {
	return h - 1
}
