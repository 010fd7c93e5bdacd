package search

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/kk-code-lab/medfind/internal/log"
	"github.com/kk-code-lab/medfind/internal/query"
)

// DefaultDebounceDelay is the quiet period before a suggestion request fires.
const DefaultDebounceDelay = 300 * time.Millisecond

var logger = log.ForComponent("fetcher")

type FetchStatus int

const (
	FetchIdle FetchStatus = iota
	FetchScheduled
	FetchInFlight
	FetchResolved
	FetchStaleDiscarded
	FetchErrored
)

func (s FetchStatus) String() string {
	switch s {
	case FetchIdle:
		return "idle"
	case FetchScheduled:
		return "scheduled"
	case FetchInFlight:
		return "in-flight"
	case FetchResolved:
		return "resolved"
	case FetchStaleDiscarded:
		return "stale"
	case FetchErrored:
		return "errored"
	}
	return "unknown"
}

// SuggestionSource performs autocomplete calls.
type SuggestionSource interface {
	Suggest(ctx context.Context, req query.RequestDescriptor) ([]string, error)
}

// Input is the search bar state the fetcher reacts to.
type Input struct {
	Text     string
	Category query.Category
	Mode     query.Mode
	Focused  bool
}

func (in Input) wantsSuggestions() bool {
	return in.Focused && in.Mode == query.ModeKeyword && in.Text != ""
}

// Event is produced off the owner's goroutine and must be handed back through
// HandleEvent on it.
type Event interface {
	FetcherID() uint64
}

// TimerFired reports that a debounce period elapsed.
type TimerFired struct {
	Fetcher uint64
	Seq     uint64
}

// Response carries the outcome of one suggestion request.
type Response struct {
	Fetcher     uint64
	Seq         uint64
	Category    query.Category
	Text        string
	Suggestions []string
	Err         error
}

func (e TimerFired) FetcherID() uint64 { return e.Fetcher }
func (e Response) FetcherID() uint64   { return e.Fetcher }

var fetcherIDs atomic.Uint64

// DebouncedFetcher turns search bar changes into at most one pending
// suggestion request and decides which responses are displayed.
//
// All methods must be called from one goroutine. Timer callbacks and
// network calls never touch fetcher state directly; they post Events which
// the owner feeds back through HandleEvent.
type DebouncedFetcher struct {
	id     uint64
	clock  clock.Clock
	delay  time.Duration
	cache  *SuggestionCache
	source SuggestionSource
	post   func(Event)
	ctx    context.Context
	cancel context.CancelFunc

	timer     *clock.Timer
	seq       uint64
	scheduled uint64
	requested uint64

	current   Input
	status    FetchStatus
	displayed []string
	dismissed bool
	closed    bool
}

type FetcherOption func(*DebouncedFetcher)

func WithClock(c clock.Clock) FetcherOption {
	return func(f *DebouncedFetcher) {
		if c != nil {
			f.clock = c
		}
	}
}

func WithDelay(d time.Duration) FetcherOption {
	return func(f *DebouncedFetcher) {
		if d > 0 {
			f.delay = d
		}
	}
}

func WithCache(cache *SuggestionCache) FetcherOption {
	return func(f *DebouncedFetcher) {
		if cache != nil {
			f.cache = cache
		}
	}
}

// WithContext sets the parent context of every suggestion request.
func WithContext(ctx context.Context) FetcherOption {
	return func(f *DebouncedFetcher) {
		if ctx != nil {
			f.ctx = ctx
		}
	}
}

func NewDebouncedFetcher(source SuggestionSource, post func(Event), opts ...FetcherOption) *DebouncedFetcher {
	f := &DebouncedFetcher{
		id:     fetcherIDs.Add(1),
		clock:  clock.New(),
		delay:  DefaultDebounceDelay,
		source: source,
		post:   post,
		ctx:    context.Background(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.cache == nil {
		f.cache = NewSuggestionCache(MaxCacheEntries)
	}
	f.ctx, f.cancel = context.WithCancel(f.ctx)
	return f
}

func (f *DebouncedFetcher) ID() uint64              { return f.id }
func (f *DebouncedFetcher) Status() FetchStatus     { return f.status }
func (f *DebouncedFetcher) Cache() *SuggestionCache { return f.cache }
func (f *DebouncedFetcher) Delay() time.Duration    { return f.delay }
func (f *DebouncedFetcher) Closed() bool            { return f.closed }
func (f *DebouncedFetcher) Pending() bool           { return f.timer != nil }
func (f *DebouncedFetcher) Current() Input          { return f.current }
func (f *DebouncedFetcher) Suggestions() []string   { return cloneStrings(f.displayed) }

func (f *DebouncedFetcher) matches(category query.Category, text string) bool {
	return f.current.Category == category && f.current.Text == text
}

// Update reacts to a text, category, mode or focus change. A cached result
// for the new input is shown immediately; otherwise the debounce timer is
// restarted.
func (f *DebouncedFetcher) Update(in Input) {
	if f.closed {
		return
	}
	in.Text = strings.TrimSpace(in.Text)
	f.current = in
	f.dismissed = false

	if !in.wantsSuggestions() {
		f.idle()
		return
	}
	if cached, ok := f.cache.Get(in.Category, in.Text); ok {
		f.stopTimer()
		f.resolve(cached)
		return
	}
	f.schedule()
}

// Focus re-evaluates the current text with focus regained.
func (f *DebouncedFetcher) Focus() {
	in := f.current
	in.Focused = true
	f.Update(in)
}

// Blur drops focus and the displayed list.
func (f *DebouncedFetcher) Blur() {
	in := f.current
	in.Focused = false
	f.Update(in)
}

// Dismiss hides the current list without touching the input and returns the
// fetcher to idle. Responses that arrive afterwards for the same text are
// cached but not shown.
func (f *DebouncedFetcher) Dismiss() {
	if f.closed {
		return
	}
	f.stopTimer()
	f.displayed = nil
	f.dismissed = true
	if f.status == FetchScheduled || f.status == FetchInFlight {
		f.status = FetchIdle
	}
}

// Close stops the timer and cancels outstanding requests. Later events are
// ignored.
func (f *DebouncedFetcher) Close() {
	if f.closed {
		return
	}
	f.stopTimer()
	f.closed = true
	f.displayed = nil
	f.status = FetchIdle
	f.cancel()
}

// HandleEvent applies a timer or response event. It reports whether the
// displayed list may have changed.
func (f *DebouncedFetcher) HandleEvent(ev Event) bool {
	if f.closed || ev == nil || ev.FetcherID() != f.id {
		return false
	}
	switch e := ev.(type) {
	case TimerFired:
		return f.fire(e.Seq)
	case Response:
		return f.receive(e)
	}
	return false
}

func (f *DebouncedFetcher) schedule() {
	f.stopTimer()
	f.seq++
	seq := f.seq
	f.scheduled = seq
	f.status = FetchScheduled
	id := f.id
	f.timer = f.clock.AfterFunc(f.delay, func() {
		f.post(TimerFired{Fetcher: id, Seq: seq})
	})
	logger.Debugf("scheduled #%d %s in %s", seq, CacheKey(f.current.Category, f.current.Text), f.delay)
}

func (f *DebouncedFetcher) stopTimer() {
	if f.timer == nil {
		return
	}
	f.timer.Stop()
	f.timer = nil
	f.scheduled = 0
}

func (f *DebouncedFetcher) idle() {
	f.stopTimer()
	f.displayed = nil
	f.status = FetchIdle
}

func (f *DebouncedFetcher) resolve(suggestions []string) {
	f.displayed = suggestions
	f.status = FetchResolved
}

func (f *DebouncedFetcher) fire(seq uint64) bool {
	if seq == 0 || seq != f.scheduled {
		return false
	}
	f.timer = nil
	f.scheduled = 0

	in := f.current
	if !in.wantsSuggestions() || f.dismissed {
		return false
	}
	if cached, ok := f.cache.Get(in.Category, in.Text); ok {
		f.resolve(cached)
		return true
	}

	req, err := query.BuildSuggestionRequest(in.Category, in.Text)
	if err != nil {
		logger.Errorf("suggestion request: %v", err)
		f.displayed = []string{}
		f.status = FetchErrored
		return true
	}

	f.requested = seq
	f.status = FetchInFlight
	id, ctx, source, post := f.id, f.ctx, f.source, f.post
	logger.Debugf("fetching #%d %s", seq, req)
	go func() {
		suggestions, err := source.Suggest(ctx, req)
		post(Response{
			Fetcher:     id,
			Seq:         seq,
			Category:    in.Category,
			Text:        in.Text,
			Suggestions: suggestions,
			Err:         err,
		})
	}()
	return false
}

func (f *DebouncedFetcher) receive(resp Response) bool {
	current := f.current.wantsSuggestions() && !f.dismissed && f.matches(resp.Category, resp.Text)
	latest := resp.Seq == f.requested && f.status == FetchInFlight

	if resp.Err != nil {
		logger.Warnf("suggestions for %s: %v", CacheKey(resp.Category, resp.Text), resp.Err)
		if !latest {
			return false
		}
		if !current {
			f.status = FetchStaleDiscarded
			return false
		}
		f.displayed = []string{}
		f.status = FetchErrored
		return true
	}

	suggestions := resp.Suggestions
	if suggestions == nil {
		suggestions = []string{}
	}
	f.cache.Put(resp.Category, resp.Text, suggestions)

	if !current {
		if latest {
			f.status = FetchStaleDiscarded
		}
		logger.Debugf("discarded stale #%d %s", resp.Seq, CacheKey(resp.Category, resp.Text))
		return false
	}
	// An older response for the same key still reflects what is typed.
	if f.status == FetchScheduled {
		f.displayed = cloneStrings(suggestions)
		return true
	}
	f.resolve(cloneStrings(suggestions))
	return true
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
