package state

import (
	"github.com/kk-code-lab/medfind/internal/backend"
	"github.com/kk-code-lab/medfind/internal/query"
	"github.com/kk-code-lab/medfind/internal/search"
)

// Action is the base interface for all state mutations
type Action interface{}

// ===== SEARCH BAR ACTIONS =====

type InputFocusAction struct{}
type InputBlurAction struct{}
type InputCharAction struct {
	Char rune
}
type InputBackspaceAction struct{}
type InputDeleteAction struct{}
type InputDeleteWordAction struct{}
type InputClearAction struct{}
type InputMoveCursorAction struct {
	Direction string // "left", "right", "word-left", "word-right", "home", "end"
}

type ToggleModeAction struct{}
type CycleCategoryAction struct{}

// ===== SUGGESTION ACTIONS =====

type SuggestNavigateAction struct {
	Direction string // "up" or "down"
}
type SuggestAcceptAction struct {
	Index int
}

// SuggestEventAction carries a fetcher timer or response back to the loop.
type SuggestEventAction struct {
	Event search.Event
}

// EnterAction and EscapeAction are the keyboard contract of the search bar;
// unfocused, Enter activates the highlighted row of the current view.
type EnterAction struct{}
type EscapeAction struct{}

// SubmitAction submits the current text regardless of the selection.
type SubmitAction struct{}

// ===== PAGE ACTIONS =====

type OpenPageAction struct {
	Target query.NavigationTarget
}
type NavigateBackAction struct{}

type ResultsLoadedAction struct {
	Seq  uint64
	Page backend.ResultPage
	Err  error
}
type DetailLoadedAction struct {
	Seq    uint64
	Detail backend.DrugDetail
	Err    error
}

// MoveSelectionAction moves the highlighted row of the current view, or
// scrolls the detail page.
type MoveSelectionAction struct {
	Delta int
}
type ActivateSelectionAction struct{}
type ResultsOpenAction struct {
	Index int
}
type ResultsPageAction struct {
	Delta int
}
type ReloadPageAction struct{}

// ===== RECENT SEARCH ACTIONS =====

type RecentReloadAction struct{}
type RecentSelectAction struct {
	Index int
}

// RecentRemoveAction removes the entry with Query, or the highlighted entry
// when Query is empty.
type RecentRemoveAction struct {
	Query string
}
type RecentClearAction struct{}

// ===== VIEW ACTIONS =====

type ResizeAction struct {
	Width  int
	Height int
}

type HelpToggleAction struct{}
type NoticeAction struct {
	Text string
	Err  error
}

// ===== APPLICATION ACTIONS =====

type QuitAction struct{}
type SuspendAction struct{}
type CopyAction struct{}      // y - copy the drug name or query to the clipboard
type OpenImageAction struct{} // o - open the drug image in a browser
