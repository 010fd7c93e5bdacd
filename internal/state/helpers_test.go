package state

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/kk-code-lab/medfind/internal/backend"
	"github.com/kk-code-lab/medfind/internal/query"
	"github.com/kk-code-lab/medfind/internal/recent"
	"github.com/kk-code-lab/medfind/internal/search"
)

type fakeBackend struct {
	mu           sync.Mutex
	suggestions  map[string][]string
	suggestCalls []query.RequestDescriptor
	pages        []backend.ResultPage // served in order; the last one repeats
	resultsErr   error
	resultsCalls []query.RequestDescriptor
	detail       backend.DrugDetail
	detailErr    error
	detailCalls  []string
}

func (f *fakeBackend) Suggest(_ context.Context, req query.RequestDescriptor) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.suggestCalls = append(f.suggestCalls, req)
	if list, ok := f.suggestions[req.Params.Get("q")]; ok {
		return list, nil
	}
	return nil, fmt.Errorf("no suggestions for %q", req.Params.Get("q"))
}

func (f *fakeBackend) Results(_ context.Context, req query.RequestDescriptor) (backend.ResultPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resultsCalls = append(f.resultsCalls, req)
	if f.resultsErr != nil {
		return backend.ResultPage{}, f.resultsErr
	}
	if len(f.pages) == 0 {
		return backend.ResultPage{Results: []backend.Result{}}, nil
	}
	page := f.pages[0]
	if len(f.pages) > 1 {
		f.pages = f.pages[1:]
	}
	return page, nil
}

func (f *fakeBackend) Detail(_ context.Context, drugID string) (backend.DrugDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailCalls = append(f.detailCalls, drugID)
	if f.detailErr != nil {
		return backend.DrugDetail{}, f.detailErr
	}
	return f.detail, nil
}

func (f *fakeBackend) suggestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.suggestCalls)
}

func (f *fakeBackend) lastResultsRequest() query.RequestDescriptor {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.resultsCalls) == 0 {
		return query.RequestDescriptor{}
	}
	return f.resultsCalls[len(f.resultsCalls)-1]
}

type recordingNavigator struct {
	targets []query.NavigationTarget
	err     error
	canBack bool
	backs   int
}

func (n *recordingNavigator) Navigate(target query.NavigationTarget) error {
	if n.err != nil {
		return n.err
	}
	n.targets = append(n.targets, target)
	return nil
}

func (n *recordingNavigator) Back() bool {
	n.backs++
	return n.canBack
}

func (n *recordingNavigator) last() query.NavigationTarget {
	if len(n.targets) == 0 {
		return query.NavigationTarget{}
	}
	return n.targets[len(n.targets)-1]
}

type harness struct {
	t       *testing.T
	clock   *clock.Mock
	backend *fakeBackend
	nav     *recordingNavigator
	store   *recent.Store
	reducer *StateReducer
	state   *AppState
	actions chan Action
}

type harnessOption func(*harness, *Services)

// withoutNavigator makes pages open in place.
func withoutNavigator() harnessOption {
	return func(h *harness, s *Services) {
		h.nav = nil
		s.Navigator = nil
	}
}

func withStore(store *recent.Store) harnessOption {
	return func(h *harness, s *Services) {
		h.store = store
		s.Recent = store
	}
}

// withDispatch routes async work through the actions channel instead of
// running it inline.
func withDispatch() harnessOption {
	return func(h *harness, _ *Services) {
		h.actions = make(chan Action, 16)
	}
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()
	h := &harness{
		t:       t,
		clock:   clock.NewMock(),
		backend: &fakeBackend{suggestions: map[string][]string{}},
		nav:     &recordingNavigator{},
		store:   recent.NewStore(nil),
	}
	services := Services{
		Backend:   h.backend,
		Recent:    h.store,
		Navigator: h.nav,
		Clock:     h.clock,
	}
	for _, opt := range opts {
		opt(h, &services)
	}
	h.reducer = NewStateReducer(services)
	h.state = NewAppState(query.ModeKeyword, query.CategorySymptom, query.DefaultPageSize)
	h.state.ScreenWidth = 80
	h.state.ScreenHeight = 24
	if h.actions != nil {
		actions := h.actions
		h.state.SetDispatch(func(a Action) { actions <- a })
	}
	return h
}

func (h *harness) reduce(action Action) error {
	h.t.Helper()
	_, err := h.reducer.Reduce(h.state, action)
	return err
}

func (h *harness) typeText(text string) {
	h.t.Helper()
	for _, ch := range text {
		_ = h.reduce(InputCharAction{Char: ch})
	}
}

func (h *harness) focus() {
	h.t.Helper()
	_ = h.reduce(InputFocusAction{})
}

func (h *harness) elapse() {
	h.clock.Add(search.DefaultDebounceDelay)
}

func (h *harness) next() Action {
	h.t.Helper()
	select {
	case a := <-h.actions:
		return a
	case <-time.After(2 * time.Second):
		h.t.Fatal("timed out waiting for an async action")
		return nil
	}
}

// pump applies the next async action.
func (h *harness) pump() {
	h.t.Helper()
	_ = h.reduce(h.next())
}

// showSuggestions types text and drives the debounce and response so that
// the dropdown shows list.
func (h *harness) showSuggestions(text string, list []string) {
	h.t.Helper()
	h.backend.mu.Lock()
	h.backend.suggestions[text] = list
	h.backend.mu.Unlock()

	h.focus()
	h.typeText(text)
	h.elapse()
	h.pump() // timer
	h.pump() // response
}

func results(names ...string) []backend.Result {
	out := make([]backend.Result, 0, len(names))
	for i, name := range names {
		out = append(out, backend.Result{
			DrugID:   backend.ID(fmt.Sprintf("D%d", i+1)),
			DrugName: name,
			Company:  "제약",
		})
	}
	return out
}

func fullPage(total int) backend.ResultPage {
	names := make([]string, query.DefaultPageSize)
	for i := range names {
		names[i] = fmt.Sprintf("약%d", i+1)
	}
	return backend.ResultPage{Results: results(names...), Total: total, HasTotal: true}
}

type failingBlobs struct {
	*recent.MemoryBlobStore
	setErr error
}

func (f failingBlobs) Set(key, value string) error {
	if f.setErr != nil {
		return f.setErr
	}
	return f.MemoryBlobStore.Set(key, value)
}
