package state

import (
	"fmt"

	"github.com/kk-code-lab/medfind/internal/backend"
	"github.com/kk-code-lab/medfind/internal/query"
)

// openPage switches the view to target. Every page gets a fresh search
// widget, so suggestions cached on the previous page are gone.
func (r *StateReducer) openPage(state *AppState, target query.NavigationTarget) error {
	page, err := query.ParseTarget(target)
	if err != nil {
		logger.Errorf("opening %s: %v", target, err)
		return err
	}
	resetSearchWidget(state)
	state.Target = target
	state.Page = page
	state.HelpVisible = false

	switch page.Kind {
	case query.PageHome:
		state.View = ViewHome
		state.Query = ""
		state.CursorPos = 0
		r.reloadRecent(state)
		state.RecentIndex = -1

	case query.PageResults:
		state.View = ViewResults
		state.Mode = page.Mode
		if page.Mode == query.ModeKeyword {
			state.Category = page.Category
		}
		state.Query = page.Text
		state.CursorPos = len([]rune(page.Text))
		state.ResultsPage = 1
		r.loadResults(state)

	case query.PageDetail:
		state.View = ViewDetail
		r.loadDetail(state)
	}
	logger.Debugf("opened %s page %s", state.View, target)
	return nil
}

func (r *StateReducer) reloadPage(state *AppState) {
	switch state.View {
	case ViewHome:
		r.reloadRecent(state)
	case ViewResults:
		r.loadResults(state)
	case ViewDetail:
		r.loadDetail(state)
	}
}

// ===== RESULTS =====

func (r *StateReducer) loadResults(state *AppState) {
	state.resultsSeq++
	seq := state.resultsSeq
	state.Results = nil
	state.ResultIndex = 0
	state.ResultScroll = 0
	state.ResultsError = nil
	state.ResultsStatus = LoadLoading

	page := state.Page
	req, err := query.BuildResultsRequest(page.Mode, page.Category, page.Text,
		query.PageIndex(state.ResultsPage), state.PageSize)
	if err != nil {
		applyResults(state, ResultsLoadedAction{Seq: seq, Err: err})
		return
	}
	if r.services.Backend == nil {
		applyResults(state, ResultsLoadedAction{Seq: seq, Err: errNoBackend})
		return
	}

	source, ctx := r.services.Backend, r.services.Context
	r.runAsync(state, func() Action {
		result, err := source.Results(ctx, req)
		return ResultsLoadedAction{Seq: seq, Page: result, Err: err}
	})
}

func applyResults(state *AppState, a ResultsLoadedAction) {
	if a.Seq != state.resultsSeq || state.View != ViewResults {
		logger.Debugf("dropping stale results #%d (current #%d)", a.Seq, state.resultsSeq)
		return
	}
	if a.Err != nil {
		logger.Warnf("loading results for %s: %v", state.Target, a.Err)
		state.ResultsStatus = LoadFailed
		state.ResultsError = fmt.Errorf("could not load results: %w", a.Err)
		return
	}
	state.Results = a.Page.Results
	if state.Results == nil {
		state.Results = []backend.Result{}
	}
	state.ResultsTotal = a.Page.Total
	state.ResultsHasTotal = a.Page.HasTotal
	state.ResultsStatus = LoadReady
	state.ResultIndex = 0
	state.ResultScroll = 0
}

// changeResultsPage moves by delta pages. Paging stops at page one and at
// the last page when the backend reported a total; without a total a short
// page is taken to be the last one.
func (r *StateReducer) changeResultsPage(state *AppState, delta int) {
	if state.View != ViewResults || delta == 0 {
		return
	}
	next := state.ResultsPage + delta
	if next < 1 {
		return
	}
	if delta > 0 {
		if pages, ok := state.PageCount(); ok {
			if next > pages {
				return
			}
		} else if !state.HasNextPage() {
			return
		}
	}
	state.ResultsPage = next
	r.loadResults(state)
}

func (r *StateReducer) openResult(state *AppState, index int) error {
	if state.View != ViewResults || index < 0 || index >= len(state.Results) {
		return nil
	}
	state.ResultIndex = index
	ensureResultVisible(state)
	target, err := query.BuildDetailTarget(state.Results[index].DrugID.String())
	if err != nil {
		return err
	}
	return r.navigate(state, target)
}

func ensureResultVisible(state *AppState) {
	rows := state.VisibleResultRows()
	if state.ResultIndex < state.ResultScroll {
		state.ResultScroll = state.ResultIndex
	}
	if state.ResultIndex >= state.ResultScroll+rows {
		state.ResultScroll = state.ResultIndex - rows + 1
	}
	if state.ResultScroll < 0 {
		state.ResultScroll = 0
	}
}

// ===== DETAIL =====

func (r *StateReducer) loadDetail(state *AppState) {
	state.detailSeq++
	seq := state.detailSeq
	state.Detail = nil
	state.DetailError = nil
	state.DetailScroll = 0
	state.DetailMaxScroll = 0
	state.DetailStatus = LoadLoading

	drugID := state.Page.DrugID
	if r.services.Backend == nil {
		applyDetail(state, DetailLoadedAction{Seq: seq, Err: errNoBackend})
		return
	}
	source, ctx := r.services.Backend, r.services.Context
	r.runAsync(state, func() Action {
		detail, err := source.Detail(ctx, drugID)
		return DetailLoadedAction{Seq: seq, Detail: detail, Err: err}
	})
}

func applyDetail(state *AppState, a DetailLoadedAction) {
	if a.Seq != state.detailSeq || state.View != ViewDetail {
		logger.Debugf("dropping stale detail #%d (current #%d)", a.Seq, state.detailSeq)
		return
	}
	if a.Err != nil {
		logger.Warnf("loading detail %s: %v", state.Page.DrugID, a.Err)
		state.DetailStatus = LoadFailed
		state.DetailError = fmt.Errorf("could not load drug %s: %w", state.Page.DrugID, a.Err)
		return
	}
	detail := a.Detail
	state.Detail = &detail
	state.DetailStatus = LoadReady
}

func clampDetailScroll(state *AppState) {
	if state.DetailScroll > state.DetailMaxScroll {
		state.DetailScroll = state.DetailMaxScroll
	}
	if state.DetailScroll < 0 {
		state.DetailScroll = 0
	}
}

// ===== SELECTION =====

// moveSelection moves the highlighted row of the current view by delta, or
// scrolls the detail page.
func moveSelection(state *AppState, delta int) {
	switch state.View {
	case ViewHome:
		if len(state.Recent) == 0 {
			state.RecentIndex = -1
			return
		}
		next := state.RecentIndex + delta
		if state.RecentIndex < 0 && delta > 0 {
			next = 0
		}
		state.RecentIndex = clampIndex(next, len(state.Recent))

	case ViewResults:
		if len(state.Results) == 0 {
			return
		}
		state.ResultIndex = clampIndex(state.ResultIndex+delta, len(state.Results))
		ensureResultVisible(state)

	case ViewDetail:
		state.DetailScroll += delta
		clampDetailScroll(state)
	}
}

func clampIndex(index, length int) int {
	if index < 0 {
		return 0
	}
	if index >= length {
		return length - 1
	}
	return index
}

func (r *StateReducer) activateSelection(state *AppState) error {
	switch state.View {
	case ViewHome:
		if state.RecentIndex >= 0 {
			r.selectRecent(state, state.RecentIndex)
		}
	case ViewResults:
		return r.openResult(state, state.ResultIndex)
	}
	return nil
}
