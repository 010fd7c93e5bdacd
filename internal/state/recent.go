package state

import "github.com/kk-code-lab/medfind/internal/recent"

func (r *StateReducer) reloadRecent(state *AppState) {
	state.Recent = r.services.Recent.Load()
	clampRecentIndex(state)
}

// selectRecent fills the search bar from a recent entry without submitting
// it.
func (r *StateReducer) selectRecent(state *AppState, index int) {
	if index < 0 || index >= len(state.Recent) {
		return
	}
	entry := state.Recent[index]
	state.RecentIndex = index
	state.Mode = entry.SearchMode()
	if category, ok := entry.Category(); ok {
		state.Category = category
	}
	state.InputFocused = true
	r.setQuery(state, entry.Query)
}

func (r *StateReducer) removeRecent(state *AppState, queryText string) error {
	if queryText == "" {
		entry, ok := state.SelectedRecent()
		if !ok {
			return nil
		}
		queryText = entry.Query
	}
	entries, err := r.services.Recent.Remove(queryText)
	state.Recent = entries
	clampRecentIndex(state)
	if err != nil {
		logger.Warnf("removing recent search %q: %v", queryText, err)
		return err
	}
	state.Notice = "removed " + queryText
	return nil
}

func (r *StateReducer) clearRecent(state *AppState) error {
	if err := r.services.Recent.Clear(); err != nil {
		logger.Warnf("%v", err)
		return err
	}
	state.Recent = []recent.Entry{}
	state.RecentIndex = -1
	state.Notice = "recent searches cleared"
	return nil
}

func clampRecentIndex(state *AppState) {
	if state.RecentIndex >= len(state.Recent) {
		state.RecentIndex = len(state.Recent) - 1
	}
	if state.RecentIndex < -1 {
		state.RecentIndex = -1
	}
}
