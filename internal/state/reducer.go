package state

import (
	"context"
	"errors"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/kk-code-lab/medfind/internal/backend"
	"github.com/kk-code-lab/medfind/internal/log"
	"github.com/kk-code-lab/medfind/internal/query"
	"github.com/kk-code-lab/medfind/internal/recent"
	"github.com/kk-code-lab/medfind/internal/search"
)

var logger = log.ForComponent("state")

var errNoBackend = errors.New("no backend configured")

// Backend is everything the reducer asks of the drug API.
type Backend interface {
	search.SuggestionSource
	Results(ctx context.Context, req query.RequestDescriptor) (backend.ResultPage, error)
	Detail(ctx context.Context, drugID string) (backend.DrugDetail, error)
}

// Navigator receives every page change. It is expected to post an
// OpenPageAction for accepted targets.
type Navigator interface {
	Navigate(target query.NavigationTarget) error
}

// BackNavigator is implemented by navigators that keep history. Back reports
// false when there is nothing to go back to.
type BackNavigator interface {
	Back() bool
}

// Services are the collaborators of the reducer. Zero values are usable: with
// no Navigator pages open in place, with no Recent store entries live in
// memory.
type Services struct {
	Backend   Backend
	Recent    *recent.Store
	Navigator Navigator
	Clock     clock.Clock
	Debounce  time.Duration
	Context   context.Context
}

// StateReducer handles all state mutations
type StateReducer struct {
	services Services
}

// NewStateReducer creates a new reducer
func NewStateReducer(services Services) *StateReducer {
	if services.Recent == nil {
		services.Recent = recent.NewStore(nil)
	}
	if services.Clock == nil {
		services.Clock = clock.New()
	}
	if services.Debounce <= 0 {
		services.Debounce = search.DefaultDebounceDelay
	}
	if services.Context == nil {
		services.Context = context.Background()
	}
	return &StateReducer{services: services}
}

// Recent returns the store the reducer records submissions into.
func (r *StateReducer) Recent() *recent.Store {
	return r.services.Recent
}

// Reduce applies an action to state. Errors are also left in
// state.LastError so the status line can show them.
func (r *StateReducer) Reduce(state *AppState, action Action) (*AppState, error) {
	if clearsFeedback(action) {
		state.LastError = nil
		state.Notice = ""
	}

	err := r.reduce(state, action)
	if err != nil {
		state.LastError = err
	}
	return state, err
}

func (r *StateReducer) reduce(state *AppState, action Action) error {
	switch a := action.(type) {
	// Search bar
	case InputCharAction:
		r.insertChar(state, a.Char)
	case InputBackspaceAction:
		r.deleteBackward(state)
	case InputDeleteAction:
		r.deleteForward(state)
	case InputDeleteWordAction:
		r.deleteWord(state)
	case InputClearAction:
		r.setQuery(state, "")
	case InputMoveCursorAction:
		moveCursor(state, a.Direction)
	case InputFocusAction:
		r.focus(state)
	case InputBlurAction:
		r.blur(state)
	case ToggleModeAction:
		r.toggleMode(state)
	case CycleCategoryAction:
		r.cycleCategory(state)

	// Suggestions and submission
	case SuggestNavigateAction:
		navigateSuggestions(state, a.Direction)
	case SuggestAcceptAction:
		return r.acceptSuggestion(state, a.Index)
	case SuggestEventAction:
		r.applySuggestEvent(state, a.Event)
	case EnterAction:
		return r.enter(state)
	case EscapeAction:
		r.escape(state)
	case SubmitAction:
		return r.submit(state, state.Query)

	// Pages
	case OpenPageAction:
		return r.openPage(state, a.Target)
	case NavigateBackAction:
		return r.navigateBack(state)
	case ReloadPageAction:
		r.reloadPage(state)
	case ResultsLoadedAction:
		applyResults(state, a)
	case DetailLoadedAction:
		applyDetail(state, a)
	case MoveSelectionAction:
		moveSelection(state, a.Delta)
	case ActivateSelectionAction:
		return r.activateSelection(state)
	case ResultsOpenAction:
		return r.openResult(state, a.Index)
	case ResultsPageAction:
		r.changeResultsPage(state, a.Delta)

	// Recent searches
	case RecentReloadAction:
		r.reloadRecent(state)
	case RecentSelectAction:
		r.selectRecent(state, a.Index)
	case RecentRemoveAction:
		return r.removeRecent(state, a.Query)
	case RecentClearAction:
		return r.clearRecent(state)

	// View
	case ResizeAction:
		state.ScreenWidth = a.Width
		state.ScreenHeight = a.Height
		ensureResultVisible(state)
		clampDetailScroll(state)
	case HelpToggleAction:
		state.HelpVisible = !state.HelpVisible
	case NoticeAction:
		state.Notice = a.Text
		state.LastError = a.Err
	}
	return nil
}

// clearsFeedback reports whether action comes from the user and so replaces
// the previous notice or error. Async completions leave the status line
// alone, and typed characters clear it only once accepted.
func clearsFeedback(action Action) bool {
	switch action.(type) {
	case SuggestEventAction, ResultsLoadedAction, DetailLoadedAction,
		RecentReloadAction, ResizeAction, NoticeAction, InputCharAction:
		return false
	}
	return true
}

// runAsync runs job off the loop and posts its action back. Without a
// dispatch hook the job runs inline, which is what tests rely on.
func (r *StateReducer) runAsync(state *AppState, job func() Action) {
	dispatch := state.getDispatch()
	if dispatch == nil {
		_ = r.reduce(state, job())
		return
	}
	go func() {
		dispatch(job())
	}()
}

func (r *StateReducer) navigate(state *AppState, target query.NavigationTarget) error {
	if r.services.Navigator == nil {
		return r.openPage(state, target)
	}
	if err := r.services.Navigator.Navigate(target); err != nil {
		logger.Errorf("navigating to %s: %v", target, err)
		return err
	}
	return nil
}

func (r *StateReducer) navigateBack(state *AppState) error {
	if back, ok := r.services.Navigator.(BackNavigator); ok && back.Back() {
		return nil
	}
	if state.View == ViewHome {
		return nil
	}
	return r.navigate(state, query.HomeTarget())
}
