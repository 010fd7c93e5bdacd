package state

import (
	"strings"

	"github.com/kk-code-lab/medfind/internal/query"
	"github.com/kk-code-lab/medfind/internal/recent"
)

func (r *StateReducer) focus(state *AppState) {
	if state.InputFocused {
		return
	}
	state.InputFocused = true
	state.CursorPos = clampCursor(state.CursorPos, len([]rune(state.Query)))
	r.syncSuggestions(state)
}

func (r *StateReducer) blur(state *AppState) {
	if !state.InputFocused {
		return
	}
	state.InputFocused = false
	if state.fetcher != nil {
		state.fetcher.Blur()
	}
	state.Suggestions = nil
	state.SelectedSuggestion = -1
	adoptSuggestions(state)
}

// toggleMode switches between keyword and freeform search. The text is
// cleared because the two modes accept different input.
func (r *StateReducer) toggleMode(state *AppState) {
	state.Mode = state.Mode.Toggle()
	r.setQuery(state, "")
}

// cycleCategory moves to the next keyword category. Freeform search has no
// category.
func (r *StateReducer) cycleCategory(state *AppState) {
	if state.Mode != query.ModeKeyword {
		return
	}
	state.Category = state.Category.Next()
	r.setQuery(state, "")
}

// navigateSuggestions moves the highlight within [-1, len-1] without
// wrapping. -1 means the text field itself.
func navigateSuggestions(state *AppState, direction string) {
	if !state.SuggestionsVisible() {
		state.SelectedSuggestion = -1
		return
	}
	prev := state.SelectedSuggestion
	switch direction {
	case "down":
		if prev < len(state.Suggestions)-1 {
			state.SelectedSuggestion = prev + 1
		}
	case "up":
		if prev > 0 {
			state.SelectedSuggestion = prev - 1
		} else {
			state.SelectedSuggestion = -1
		}
	}
}

func (r *StateReducer) acceptSuggestion(state *AppState, index int) error {
	if index < 0 || index >= len(state.Suggestions) {
		return nil
	}
	text := state.Suggestions[index]
	state.Query = text
	state.CursorPos = len([]rune(text))
	return r.submit(state, text)
}

func (r *StateReducer) enter(state *AppState) error {
	if !state.InputFocused {
		return r.activateSelection(state)
	}
	if state.Mode == query.ModeKeyword && state.SelectedSuggestion >= 0 {
		return r.acceptSuggestion(state, state.SelectedSuggestion)
	}
	return r.submit(state, state.Query)
}

// escape closes the innermost open thing: help, then the dropdown, then the
// input focus. The typed text is kept.
func (r *StateReducer) escape(state *AppState) {
	switch {
	case state.HelpVisible:
		state.HelpVisible = false
	case state.InputFocused && len(state.Suggestions) > 0:
		if state.fetcher != nil {
			state.fetcher.Dismiss()
		}
		state.Suggestions = nil
		state.SelectedSuggestion = -1
		adoptSuggestions(state)
	case state.InputFocused:
		r.blur(state)
	}
}

// submit records text as a recent search and navigates to its results. A
// failure to persist the recent list is reported but does not block the
// navigation.
func (r *StateReducer) submit(state *AppState, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	q, err := query.New(state.Mode, state.Category, text)
	if err != nil {
		logger.Errorf("submitting %q: %v", text, err)
		return err
	}
	target, err := query.BuildSubmissionTarget(q.Mode(), q.Category(), q.Trimmed())
	if err != nil {
		logger.Errorf("submitting %q: %v", text, err)
		return err
	}

	entries, recordErr := r.services.Recent.Record(recent.EntryFor(q.Mode(), q.Category(), q.Trimmed()))
	state.Recent = entries
	state.RecentIndex = -1
	if recordErr != nil {
		logger.Warnf("recording recent search: %v", recordErr)
	}

	r.blur(state)
	if err := r.navigate(state, target); err != nil {
		return err
	}
	return recordErr
}
