package state

import (
	"context"
	"slices"
	"unicode"

	"github.com/kk-code-lab/medfind/internal/query"
	"github.com/kk-code-lab/medfind/internal/search"
)

func (r *StateReducer) insertChar(state *AppState, ch rune) {
	if !state.InputFocused || !unicode.IsPrint(ch) {
		return
	}
	runes := []rune(state.Query)
	if state.Mode == query.ModeFreeform && len(runes) >= query.MaxFreeformLength {
		return
	}
	state.LastError = nil
	state.Notice = ""

	pos := clampCursor(state.CursorPos, len(runes))
	next := make([]rune, 0, len(runes)+1)
	next = append(next, runes[:pos]...)
	next = append(next, ch)
	next = append(next, runes[pos:]...)
	state.Query = string(next)
	state.CursorPos = pos + 1
	r.syncSuggestions(state)
}

func (r *StateReducer) deleteBackward(state *AppState) {
	runes := []rune(state.Query)
	pos := clampCursor(state.CursorPos, len(runes))
	if pos == 0 {
		return
	}
	state.Query = string(append(runes[:pos-1:pos-1], runes[pos:]...))
	state.CursorPos = pos - 1
	r.syncSuggestions(state)
}

func (r *StateReducer) deleteForward(state *AppState) {
	runes := []rune(state.Query)
	pos := clampCursor(state.CursorPos, len(runes))
	if pos >= len(runes) {
		return
	}
	state.Query = string(append(runes[:pos:pos], runes[pos+1:]...))
	state.CursorPos = pos
	r.syncSuggestions(state)
}

func (r *StateReducer) deleteWord(state *AppState) {
	runes := []rune(state.Query)
	pos := clampCursor(state.CursorPos, len(runes))
	start := previousWordBoundary(runes, pos)
	if start == pos {
		return
	}
	state.Query = string(append(runes[:start:start], runes[pos:]...))
	state.CursorPos = start
	r.syncSuggestions(state)
}

// setQuery replaces the text and moves the cursor to its end.
func (r *StateReducer) setQuery(state *AppState, text string) {
	state.Query = text
	state.CursorPos = len([]rune(text))
	r.syncSuggestions(state)
}

func moveCursor(state *AppState, direction string) {
	runes := []rune(state.Query)
	pos := clampCursor(state.CursorPos, len(runes))
	switch direction {
	case "left":
		if pos > 0 {
			pos--
		}
	case "right":
		if pos < len(runes) {
			pos++
		}
	case "word-left":
		pos = previousWordBoundary(runes, pos)
	case "word-right":
		pos = nextWordBoundary(runes, pos)
	case "home":
		pos = 0
	case "end":
		pos = len(runes)
	}
	state.CursorPos = pos
}

func clampCursor(pos, length int) int {
	if pos < 0 {
		return 0
	}
	if pos > length {
		return length
	}
	return pos
}

func isSearchWordChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func previousWordBoundary(runes []rune, pos int) int {
	if pos <= 0 {
		return 0
	}
	if pos > len(runes) {
		pos = len(runes)
	}

	i := pos - 1
	for i >= 0 && !isSearchWordChar(runes[i]) {
		i--
	}
	for i >= 0 && isSearchWordChar(runes[i]) {
		i--
	}
	return i + 1
}

func nextWordBoundary(runes []rune, pos int) int {
	if pos >= len(runes) {
		return len(runes)
	}
	if pos < 0 {
		pos = 0
	}

	i := pos
	for i < len(runes) && !isSearchWordChar(runes[i]) {
		i++
	}
	for i < len(runes) && isSearchWordChar(runes[i]) {
		i++
	}
	return i
}

// ===== SUGGESTION FETCHER WIRING =====

type unavailableSource struct{}

func (unavailableSource) Suggest(context.Context, query.RequestDescriptor) ([]string, error) {
	return nil, errNoBackend
}

// ensureFetcher returns the fetcher of the current search widget, creating it
// on first use. Its events are posted through the dispatch hook that is
// installed at creation time.
func (r *StateReducer) ensureFetcher(state *AppState) *search.DebouncedFetcher {
	if state.fetcher != nil {
		return state.fetcher
	}
	var source search.SuggestionSource = unavailableSource{}
	if r.services.Backend != nil {
		source = r.services.Backend
	}
	dispatch := state.getDispatch()
	post := func(ev search.Event) {
		if dispatch != nil {
			dispatch(SuggestEventAction{Event: ev})
		}
	}
	state.fetcher = search.NewDebouncedFetcher(source, post,
		search.WithClock(r.services.Clock),
		search.WithDelay(r.services.Debounce),
		search.WithContext(r.services.Context),
	)
	return state.fetcher
}

// syncSuggestions feeds the current search bar into the fetcher.
func (r *StateReducer) syncSuggestions(state *AppState) {
	f := r.ensureFetcher(state)
	f.Update(search.Input{
		Text:     state.Query,
		Category: state.Category,
		Mode:     state.Mode,
		Focused:  state.InputFocused,
	})
	adoptSuggestions(state)
}

// adoptSuggestions copies the fetcher's displayed list. The selection is
// reset whenever the list changes.
func adoptSuggestions(state *AppState) {
	f := state.fetcher
	if f == nil {
		return
	}
	next := f.Suggestions()
	if !slices.Equal(next, state.Suggestions) {
		state.SelectedSuggestion = -1
	}
	state.Suggestions = next
	state.SuggestStatus = f.Status()
}

func (r *StateReducer) applySuggestEvent(state *AppState, ev search.Event) {
	f := state.fetcher
	if f == nil || ev == nil {
		return
	}
	f.HandleEvent(ev)
	adoptSuggestions(state)
}

// resetSearchWidget tears the search widget down. Its cache goes with it.
func resetSearchWidget(state *AppState) {
	if state.fetcher != nil {
		state.fetcher.Close()
		state.fetcher = nil
	}
	state.Suggestions = nil
	state.SelectedSuggestion = -1
	state.SuggestStatus = search.FetchIdle
	state.InputFocused = false
}
