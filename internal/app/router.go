package app

import (
	"fmt"
	"sync"

	"github.com/kk-code-lab/medfind/internal/query"
	statepkg "github.com/kk-code-lab/medfind/internal/state"
)

// maxHistory bounds the back stack.
const maxHistory = 50

// Router is the page-routing collaborator of the reducer. Accepted targets
// are pushed onto a back stack and posted to the loop as OpenPageAction.
type Router struct {
	mu       sync.Mutex
	history  []query.NavigationTarget
	dispatch func(statepkg.Action)
}

// NewRouter starts with start as the only history entry.
func NewRouter(start query.NavigationTarget, dispatch func(statepkg.Action)) *Router {
	if start.IsZero() {
		start = query.HomeTarget()
	}
	return &Router{
		history:  []query.NavigationTarget{start},
		dispatch: dispatch,
	}
}

// Navigate validates target, records it and opens it. Navigating to the
// current page reloads it without growing the history.
func (r *Router) Navigate(target query.NavigationTarget) error {
	if _, err := query.ParseTarget(target); err != nil {
		return fmt.Errorf("navigating to %s: %w", target, err)
	}

	r.mu.Lock()
	if top := r.history[len(r.history)-1]; top.String() != target.String() {
		r.history = append(r.history, target)
		if len(r.history) > maxHistory {
			r.history = append(r.history[:0:0], r.history[len(r.history)-maxHistory:]...)
		}
	}
	r.mu.Unlock()

	r.open(target)
	return nil
}

// Back reopens the previous page. It reports false at the start of history.
func (r *Router) Back() bool {
	r.mu.Lock()
	if len(r.history) < 2 {
		r.mu.Unlock()
		return false
	}
	r.history = r.history[:len(r.history)-1]
	target := r.history[len(r.history)-1]
	r.mu.Unlock()

	r.open(target)
	return true
}

// Current returns the page at the top of the history.
func (r *Router) Current() query.NavigationTarget {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.history[len(r.history)-1]
}

// Depth is the number of pages in the history.
func (r *Router) Depth() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.history)
}

func (r *Router) open(target query.NavigationTarget) {
	logger.Debugf("open %s", target)
	if r.dispatch != nil {
		r.dispatch(statepkg.OpenPageAction{Target: target})
	}
}
