package state

import (
	"github.com/kk-code-lab/medfind/internal/backend"
	"github.com/kk-code-lab/medfind/internal/query"
	"github.com/kk-code-lab/medfind/internal/recent"
	"github.com/kk-code-lab/medfind/internal/search"
)

// View selects what the body of the screen shows.
type View int

const (
	ViewHome View = iota
	ViewResults
	ViewDetail
)

func (v View) String() string {
	switch v {
	case ViewHome:
		return "home"
	case ViewResults:
		return "results"
	case ViewDetail:
		return "detail"
	}
	return "unknown"
}

type LoadStatus int

const (
	LoadIdle LoadStatus = iota
	LoadLoading
	LoadReady
	LoadFailed
)

// Screen rows reserved around the body: header, mode/category bar, input,
// separator above and the status line below.
const (
	BodyTop        = 4
	bodyChromeRows = BodyTop + 1
	// ResultRowHeight is the number of rows a result occupies.
	ResultRowHeight = 2
)

// ===== STATE DEFINITIONS =====

// AppState is the single source of truth
type AppState struct {
	// Search bar
	Query              string
	CursorPos          int // rune index into Query
	Mode               query.Mode
	Category           query.Category
	InputFocused       bool
	Suggestions        []string
	SelectedSuggestion int // -1 when nothing is selected
	SuggestStatus      search.FetchStatus
	fetcher            *search.DebouncedFetcher

	// Current page
	View   View
	Target query.NavigationTarget
	Page   query.Page

	// Results page
	Results         []backend.Result
	ResultsPage     int // one-based, as displayed
	ResultsTotal    int
	ResultsHasTotal bool
	ResultsStatus   LoadStatus
	ResultsError    error
	ResultIndex     int
	ResultScroll    int
	resultsSeq      uint64

	// Detail page
	Detail          *backend.DrugDetail
	DetailStatus    LoadStatus
	DetailError     error
	DetailScroll    int
	DetailMaxScroll int // set by the renderer once the detail is laid out
	detailSeq       uint64

	// Recent searches, newest first
	Recent      []recent.Entry
	RecentIndex int // -1 when nothing is selected

	HelpVisible bool
	PageSize    int

	// Dimensions
	ScreenWidth  int
	ScreenHeight int

	// Status line
	Notice    string
	LastError error

	dispatchAction func(Action)
}

// NewAppState returns the state of an empty home page.
func NewAppState(mode query.Mode, category query.Category, pageSize int) *AppState {
	if mode.Validate() != nil {
		mode = query.ModeKeyword
	}
	if category.Validate() != nil {
		category = query.CategorySymptom
	}
	if pageSize <= 0 {
		pageSize = query.DefaultPageSize
	}
	return &AppState{
		Mode:               mode,
		Category:           category,
		SelectedSuggestion: -1,
		View:               ViewHome,
		Target:             query.HomeTarget(),
		Page:               query.Page{Kind: query.PageHome},
		ResultsPage:        1,
		RecentIndex:        -1,
		PageSize:           pageSize,
		Recent:             []recent.Entry{},
	}
}

// ===== HELPER METHODS =====

func (s *AppState) setDispatch(fn func(Action)) {
	s.dispatchAction = fn
}

func (s *AppState) getDispatch() func(Action) {
	return s.dispatchAction
}

// SetDispatch installs the hook used by timers and network calls to post
// actions back to the event loop. Without it loads run synchronously.
func (s *AppState) SetDispatch(fn func(Action)) {
	s.setDispatch(fn)
}

// Fetcher returns the suggestion fetcher of the current search widget, or
// nil before the first keystroke.
func (s *AppState) Fetcher() *search.DebouncedFetcher {
	return s.fetcher
}

// SuggestionsVisible reports whether the dropdown is open.
func (s *AppState) SuggestionsVisible() bool {
	return s.InputFocused && s.Mode == query.ModeKeyword && len(s.Suggestions) > 0
}

// SelectedSuggestionText returns the highlighted suggestion, if any.
func (s *AppState) SelectedSuggestionText() (string, bool) {
	if s.SelectedSuggestion < 0 || s.SelectedSuggestion >= len(s.Suggestions) {
		return "", false
	}
	return s.Suggestions[s.SelectedSuggestion], true
}

// SelectedRecent returns the highlighted recent entry, if any.
func (s *AppState) SelectedRecent() (recent.Entry, bool) {
	if s.RecentIndex < 0 || s.RecentIndex >= len(s.Recent) {
		return recent.Entry{}, false
	}
	return s.Recent[s.RecentIndex], true
}

// SelectedResult returns the highlighted result, if any.
func (s *AppState) SelectedResult() (backend.Result, bool) {
	if s.ResultIndex < 0 || s.ResultIndex >= len(s.Results) {
		return backend.Result{}, false
	}
	return s.Results[s.ResultIndex], true
}

// BodyHeight is the number of rows available below the search bar.
func (s *AppState) BodyHeight() int {
	if h := s.ScreenHeight - bodyChromeRows; h > 0 {
		return h
	}
	return 1
}

// VisibleResultRows is how many results fit in the body at once. One body
// row is kept for the page indicator.
func (s *AppState) VisibleResultRows() int {
	if rows := (s.BodyHeight() - 1) / ResultRowHeight; rows > 0 {
		return rows
	}
	return 1
}

// PageCount returns the number of result pages when the backend reported a
// total.
func (s *AppState) PageCount() (int, bool) {
	if !s.ResultsHasTotal || s.PageSize <= 0 {
		return 0, false
	}
	pages := (s.ResultsTotal + s.PageSize - 1) / s.PageSize
	if pages < 1 {
		pages = 1
	}
	return pages, true
}

// HasNextPage reports whether paging forward can yield more results.
func (s *AppState) HasNextPage() bool {
	if pages, ok := s.PageCount(); ok {
		return s.ResultsPage < pages
	}
	return s.ResultsStatus == LoadReady && len(s.Results) >= s.PageSize
}
