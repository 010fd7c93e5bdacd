package search

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kk-code-lab/medfind/internal/query"
)

type fakeSource struct {
	mu      sync.Mutex
	calls   []query.RequestDescriptor
	results map[string][]string
	err     error
	gate    chan struct{}
}

func (s *fakeSource) Suggest(ctx context.Context, req query.RequestDescriptor) ([]string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, req)
	gate, err := s.gate, s.err
	out := s.results[req.Params.Get("q")]
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *fakeSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *fakeSource) lastCall() query.RequestDescriptor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[len(s.calls)-1]
}

type fetcherHarness struct {
	t      *testing.T
	clock  *clock.Mock
	events chan Event
	source *fakeSource
	f      *DebouncedFetcher
}

func newFetcherHarness(t *testing.T) *fetcherHarness {
	t.Helper()
	h := &fetcherHarness{
		t:      t,
		clock:  clock.NewMock(),
		events: make(chan Event, 16),
		source: &fakeSource{results: map[string][]string{
			"두통":  {"두통", "두근거림"},
			"두통약": {"두통약"},
		}},
	}
	h.f = NewDebouncedFetcher(h.source, func(ev Event) { h.events <- ev }, WithClock(h.clock))
	t.Cleanup(h.f.Close)
	return h
}

func (h *fetcherHarness) typed(text string) {
	h.f.Update(Input{Text: text, Category: query.CategorySymptom, Mode: query.ModeKeyword, Focused: true})
}

func (h *fetcherHarness) next() Event {
	h.t.Helper()
	select {
	case ev := <-h.events:
		return ev
	case <-time.After(2 * time.Second):
		h.t.Fatal("timed out waiting for fetcher event")
		return nil
	}
}

func (h *fetcherHarness) expectQuiet() {
	h.t.Helper()
	select {
	case ev := <-h.events:
		h.t.Fatalf("unexpected event %#v", ev)
	case <-time.After(30 * time.Millisecond):
	}
}

// elapse advances the clock past the quiet period, delivers the timer event
// and, when a request is issued, its response.
func (h *fetcherHarness) elapse() {
	h.t.Helper()
	h.clock.Add(DefaultDebounceDelay)
	fired := h.next()
	require.IsType(h.t, TimerFired{}, fired)
	h.f.HandleEvent(fired)
	if h.f.Status() == FetchInFlight {
		h.f.HandleEvent(h.next())
	}
}

func TestFetcherDebouncesToSingleRequest(t *testing.T) {
	h := newFetcherHarness(t)

	h.typed("두")
	h.clock.Add(100 * time.Millisecond)
	h.typed("두통")
	assert.Equal(t, FetchScheduled, h.f.Status())

	h.clock.Add(DefaultDebounceDelay - time.Millisecond)
	h.expectQuiet()
	assert.Equal(t, 0, h.source.callCount())

	h.clock.Add(time.Millisecond)
	fired := h.next()
	h.f.HandleEvent(fired)
	assert.Equal(t, FetchInFlight, h.f.Status())
	h.f.HandleEvent(h.next())

	assert.Equal(t, 1, h.source.callCount())
	assert.Equal(t, "GET /autocomplete/symptom?q=%EB%91%90%ED%86%B5", h.source.lastCall().String())
	assert.Equal(t, FetchResolved, h.f.Status())
	assert.Equal(t, []string{"두통", "두근거림"}, h.f.Suggestions())
	assert.Equal(t, []string{"symptom:두통"}, h.f.Cache().Keys())
	cached, _ := h.f.Cache().Get(query.CategorySymptom, "두통")
	assert.Equal(t, []string{"두통", "두근거림"}, cached)
}

func TestFetcherCacheHitSkipsNetwork(t *testing.T) {
	h := newFetcherHarness(t)
	h.typed("두통")
	h.elapse()
	require.Equal(t, 1, h.source.callCount())

	h.f.Blur()
	assert.Equal(t, FetchIdle, h.f.Status())
	assert.Empty(t, h.f.Suggestions())

	h.typed("두통")
	assert.Equal(t, FetchResolved, h.f.Status())
	assert.False(t, h.f.Pending())
	assert.Equal(t, []string{"두통", "두근거림"}, h.f.Suggestions())

	h.clock.Add(time.Second)
	h.expectQuiet()
	assert.Equal(t, 1, h.source.callCount())
}

func TestFetcherStaleResponseIsCachedButNotShown(t *testing.T) {
	h := newFetcherHarness(t)
	h.source.gate = make(chan struct{})

	h.typed("두통")
	h.clock.Add(DefaultDebounceDelay)
	h.f.HandleEvent(h.next())
	require.Equal(t, FetchInFlight, h.f.Status())

	h.typed("두통약")
	close(h.source.gate)
	changed := h.f.HandleEvent(h.next())

	assert.False(t, changed)
	assert.Empty(t, h.f.Suggestions())
	assert.Equal(t, FetchScheduled, h.f.Status())
	_, ok := h.f.Cache().Get(query.CategorySymptom, "두통")
	assert.True(t, ok)

	h.typed("두통")
	assert.Equal(t, []string{"두통", "두근거림"}, h.f.Suggestions())
	assert.Equal(t, 1, h.source.callCount())
}

// startGated types text and fires the timer, leaving the request blocked on
// the source's gate.
func (h *fetcherHarness) startGated(text string) {
	h.t.Helper()
	h.source.gate = make(chan struct{})
	h.typed(text)
	h.clock.Add(DefaultDebounceDelay)
	h.f.HandleEvent(h.next())
	require.Equal(h.t, FetchInFlight, h.f.Status())
}

func TestFetcherDismissCachesLateResponseWithoutShowing(t *testing.T) {
	h := newFetcherHarness(t)
	h.startGated("두통")

	h.f.Dismiss()
	assert.Equal(t, FetchIdle, h.f.Status())
	close(h.source.gate)
	assert.False(t, h.f.HandleEvent(h.next()))

	assert.Equal(t, FetchIdle, h.f.Status())
	assert.Empty(t, h.f.Suggestions())
	assert.Equal(t, 1, h.f.Cache().Len())
}

func TestFetcherDismissThenFailureLeavesIdle(t *testing.T) {
	h := newFetcherHarness(t)
	h.source.err = errors.New("boom")
	h.startGated("두통")

	h.f.Dismiss()
	close(h.source.gate)
	assert.False(t, h.f.HandleEvent(h.next()))

	assert.Equal(t, FetchIdle, h.f.Status())
	assert.Empty(t, h.f.Suggestions())
	assert.Equal(t, 0, h.f.Cache().Len())
}

func TestFetcherBlurWhileInFlightCachesButHides(t *testing.T) {
	h := newFetcherHarness(t)
	h.startGated("두통")

	h.f.Blur()
	close(h.source.gate)
	assert.False(t, h.f.HandleEvent(h.next()))

	assert.Empty(t, h.f.Suggestions())
	assert.Equal(t, []string{"symptom:두통"}, h.f.Cache().Keys())

	h.f.Focus()
	assert.Equal(t, FetchResolved, h.f.Status())
	assert.Equal(t, []string{"두통", "두근거림"}, h.f.Suggestions())
	assert.False(t, h.f.Pending())
	assert.Equal(t, 1, h.source.callCount())
}

func TestFetcherErrorShowsEmptyListAndSkipsCache(t *testing.T) {
	h := newFetcherHarness(t)
	h.source.err = errors.New("connection refused")

	h.typed("두통")
	h.elapse()

	assert.Equal(t, FetchErrored, h.f.Status())
	assert.NotNil(t, h.f.Suggestions())
	assert.Empty(t, h.f.Suggestions())
	assert.Equal(t, 0, h.f.Cache().Len())
}

func TestFetcherIdleWhenInputNotApplicable(t *testing.T) {
	h := newFetcherHarness(t)

	h.typed("두통")
	h.elapse()
	require.NotEmpty(t, h.f.Suggestions())

	h.typed("   ")
	assert.Equal(t, FetchIdle, h.f.Status())
	assert.Empty(t, h.f.Suggestions())

	h.f.Update(Input{Text: "머리가 아파요", Mode: query.ModeFreeform, Focused: true})
	assert.Equal(t, FetchIdle, h.f.Status())
	assert.False(t, h.f.Pending())

	h.clock.Add(time.Second)
	h.expectQuiet()
	assert.Equal(t, 1, h.source.callCount())
}

func TestFetcherIgnoresSupersededAndForeignTimers(t *testing.T) {
	h := newFetcherHarness(t)

	h.typed("두")
	h.typed("두통")

	assert.False(t, h.f.HandleEvent(TimerFired{Fetcher: h.f.ID(), Seq: 1}))
	assert.False(t, h.f.HandleEvent(TimerFired{Fetcher: h.f.ID() + 1000, Seq: 2}))
	assert.Equal(t, FetchScheduled, h.f.Status())
	assert.Equal(t, 0, h.source.callCount())
}

func TestFetcherCloseStopsPendingTimer(t *testing.T) {
	h := newFetcherHarness(t)

	h.typed("두통")
	require.True(t, h.f.Pending())
	h.f.Close()

	assert.True(t, h.f.Closed())
	assert.False(t, h.f.Pending())
	h.clock.Add(time.Second)
	h.expectQuiet()
	assert.False(t, h.f.HandleEvent(TimerFired{Fetcher: h.f.ID(), Seq: 1}))
}

func TestFetcherInvalidCategoryErrorsWithoutRequest(t *testing.T) {
	h := newFetcherHarness(t)

	h.f.Update(Input{Text: "두통", Category: query.Category("bogus"), Mode: query.ModeKeyword, Focused: true})
	h.elapse()

	assert.Equal(t, FetchErrored, h.f.Status())
	assert.Equal(t, 0, h.source.callCount())
}

func TestFetcherDelayOption(t *testing.T) {
	h := newFetcherHarness(t)
	assert.Equal(t, DefaultDebounceDelay, h.f.Delay())

	f := NewDebouncedFetcher(h.source, func(Event) {}, WithClock(h.clock), WithDelay(50*time.Millisecond))
	defer f.Close()
	assert.Equal(t, 50*time.Millisecond, f.Delay())
}

func TestFetchStatusString(t *testing.T) {
	assert.Equal(t, "in-flight", FetchInFlight.String())
	assert.Equal(t, "stale", FetchStaleDiscarded.String())
	assert.Equal(t, "unknown", FetchStatus(99).String())
}
