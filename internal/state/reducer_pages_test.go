package state

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kk-code-lab/medfind/internal/backend"
	"github.com/kk-code-lab/medfind/internal/query"
)

func keywordTarget(t *testing.T, category query.Category, text string) query.NavigationTarget {
	t.Helper()
	target, err := query.BuildSubmissionTarget(query.ModeKeyword, category, text)
	require.NoError(t, err)
	return target
}

func TestOpenResultsPageResetsWidgetAndLoadsFirstPage(t *testing.T) {
	h := newHarness(t, withDispatch())
	h.showSuggestions("두", []string{"두통"})
	widget := h.state.Fetcher()
	h.backend.pages = []backend.ResultPage{fullPage(25)}

	require.NoError(t, h.reduce(OpenPageAction{Target: keywordTarget(t, query.CategoryIngredient, "아세트아미노펜")}))

	assert.True(t, widget.Closed())
	assert.Nil(t, h.state.Fetcher())
	assert.False(t, h.state.InputFocused)
	assert.Empty(t, h.state.Suggestions)
	assert.Equal(t, ViewResults, h.state.View)
	assert.Equal(t, "아세트아미노펜", h.state.Query)
	assert.Equal(t, query.CategoryIngredient, h.state.Category)
	assert.Equal(t, LoadLoading, h.state.ResultsStatus)

	h.pump()
	assert.Equal(t, LoadReady, h.state.ResultsStatus)
	assert.Len(t, h.state.Results, query.DefaultPageSize)
	assert.Equal(t, 25, h.state.ResultsTotal)
	assert.Equal(t, 1, h.state.ResultsPage)

	req := h.backend.lastResultsRequest()
	assert.Equal(t, "/search/ingredient", req.Path)
	assert.Equal(t, "0", req.Params.Get("page"))
	assert.Equal(t, "10", req.Params.Get("size"))
}

func TestNewWidgetStartsWithEmptyCache(t *testing.T) {
	h := newHarness(t, withDispatch())
	h.showSuggestions("두", []string{"두통"})
	require.NoError(t, h.reduce(OpenPageAction{Target: query.HomeTarget()}))

	h.focus()
	h.typeText("두")
	assert.Equal(t, "scheduled", h.state.SuggestStatus.String())
}

func TestFreeformResultsPostJSON(t *testing.T) {
	h := newHarness(t)
	target, err := query.BuildSubmissionTarget(query.ModeFreeform, "", "머리가 아파요")
	require.NoError(t, err)

	require.NoError(t, h.reduce(OpenPageAction{Target: target}))
	assert.Equal(t, query.ModeFreeform, h.state.Mode)

	req := h.backend.lastResultsRequest()
	assert.Equal(t, "POST", req.Method)
	assert.Equal(t, "/search", req.Path)
	assert.JSONEq(t, `{"query":"머리가 아파요","page":0,"size":10}`, string(req.Body))
}

func TestStaleResultsAreDropped(t *testing.T) {
	h := newHarness(t, withDispatch())
	h.backend.pages = []backend.ResultPage{
		{Results: results("first")},
		{Results: results("second")},
	}
	require.NoError(t, h.reduce(OpenPageAction{Target: keywordTarget(t, query.CategoryName, "타이레놀")}))
	require.NoError(t, h.reduce(ReloadPageAction{}))

	var latest, stale ResultsLoadedAction
	for i := 0; i < 2; i++ {
		loaded, ok := h.next().(ResultsLoadedAction)
		require.True(t, ok)
		if loaded.Seq == 2 {
			latest = loaded
		} else {
			stale = loaded
		}
	}
	require.Equal(t, uint64(1), stale.Seq)

	require.NoError(t, h.reduce(latest))
	require.NoError(t, h.reduce(stale))
	assert.Equal(t, latest.Page.Results, h.state.Results)
}

func TestResultsFailureShowsInlineError(t *testing.T) {
	h := newHarness(t)
	h.backend.resultsErr = errors.New("connection refused")

	require.NoError(t, h.reduce(OpenPageAction{Target: keywordTarget(t, query.CategoryName, "타이레놀")}))
	assert.Equal(t, LoadFailed, h.state.ResultsStatus)
	assert.ErrorContains(t, h.state.ResultsError, "could not load results")
	assert.ErrorContains(t, h.state.ResultsError, "connection refused")
	assert.NoError(t, h.state.LastError)
}

func TestPagingWithTotalStopsAtBounds(t *testing.T) {
	h := newHarness(t)
	h.backend.pages = []backend.ResultPage{fullPage(25)}
	require.NoError(t, h.reduce(OpenPageAction{Target: keywordTarget(t, query.CategorySymptom, "두통")}))

	require.NoError(t, h.reduce(ResultsPageAction{Delta: -1}))
	assert.Equal(t, 1, h.state.ResultsPage)

	require.NoError(t, h.reduce(ResultsPageAction{Delta: 1}))
	assert.Equal(t, 2, h.state.ResultsPage)
	assert.Equal(t, "1", h.backend.lastResultsRequest().Params.Get("page"))

	require.NoError(t, h.reduce(ResultsPageAction{Delta: 1}))
	assert.Equal(t, 3, h.state.ResultsPage)
	assert.Equal(t, "2", h.backend.lastResultsRequest().Params.Get("page"))

	require.NoError(t, h.reduce(ResultsPageAction{Delta: 1}))
	assert.Equal(t, 3, h.state.ResultsPage)
	assert.Len(t, h.backend.resultsCalls, 3)
}

func TestPagingWithoutTotalStopsAfterShortPage(t *testing.T) {
	h := newHarness(t)
	full := fullPage(0)
	full.HasTotal = false
	h.backend.pages = []backend.ResultPage{full, {Results: results("마지막")}}
	require.NoError(t, h.reduce(OpenPageAction{Target: keywordTarget(t, query.CategorySymptom, "두통")}))

	require.NoError(t, h.reduce(ResultsPageAction{Delta: 1}))
	assert.Equal(t, 2, h.state.ResultsPage)
	assert.Len(t, h.state.Results, 1)

	require.NoError(t, h.reduce(ResultsPageAction{Delta: 1}))
	assert.Equal(t, 2, h.state.ResultsPage)
}

func TestResultSelectionScrollsAndOpensDetail(t *testing.T) {
	h := newHarness(t)
	h.backend.pages = []backend.ResultPage{fullPage(10)}
	h.state.ScreenHeight = 12 // seven body rows, three results
	require.NoError(t, h.reduce(OpenPageAction{Target: keywordTarget(t, query.CategorySymptom, "두통")}))
	require.Equal(t, 3, h.state.VisibleResultRows())

	require.NoError(t, h.reduce(MoveSelectionAction{Delta: -1}))
	assert.Equal(t, 0, h.state.ResultIndex)
	for i := 0; i < 4; i++ {
		require.NoError(t, h.reduce(MoveSelectionAction{Delta: 1}))
	}
	assert.Equal(t, 4, h.state.ResultIndex)
	assert.Equal(t, 2, h.state.ResultScroll)

	require.NoError(t, h.reduce(MoveSelectionAction{Delta: 100}))
	assert.Equal(t, 9, h.state.ResultIndex)

	require.NoError(t, h.reduce(ActivateSelectionAction{}))
	assert.Equal(t, "/drugs/D10", h.nav.last().String())

	require.NoError(t, h.reduce(ResultsOpenAction{Index: 1}))
	assert.Equal(t, "/drugs/D2", h.nav.last().String())
}

func TestDetailPageLoads(t *testing.T) {
	h := newHarness(t)
	h.backend.detail = backend.DrugDetail{DrugID: "D1", DrugName: "타이레놀정500밀리그람"}
	target, err := query.BuildDetailTarget("D1")
	require.NoError(t, err)

	require.NoError(t, h.reduce(OpenPageAction{Target: target}))
	assert.Equal(t, ViewDetail, h.state.View)
	assert.Equal(t, LoadReady, h.state.DetailStatus)
	require.NotNil(t, h.state.Detail)
	assert.Equal(t, "타이레놀정500밀리그람", h.state.Detail.DrugName)
	assert.Equal(t, []string{"D1"}, h.backend.detailCalls)
}

func TestDetailScrollClampsToRenderedHeight(t *testing.T) {
	h := newHarness(t)
	target, err := query.BuildDetailTarget("D1")
	require.NoError(t, err)
	require.NoError(t, h.reduce(OpenPageAction{Target: target}))
	h.state.DetailMaxScroll = 3

	require.NoError(t, h.reduce(MoveSelectionAction{Delta: 5}))
	assert.Equal(t, 3, h.state.DetailScroll)
	require.NoError(t, h.reduce(MoveSelectionAction{Delta: -10}))
	assert.Equal(t, 0, h.state.DetailScroll)
}

func TestDetailFailure(t *testing.T) {
	h := newHarness(t)
	h.backend.detailErr = &backend.StatusError{Code: 404, Method: "GET", URL: "/search/detail/X"}
	target, err := query.BuildDetailTarget("X")
	require.NoError(t, err)

	require.NoError(t, h.reduce(OpenPageAction{Target: target}))
	assert.Equal(t, LoadFailed, h.state.DetailStatus)
	assert.ErrorIs(t, h.state.DetailError, backend.ErrUnexpectedStatus)
	assert.Nil(t, h.state.Detail)
}

func TestStaleDetailIsDropped(t *testing.T) {
	h := newHarness(t)
	target, err := query.BuildDetailTarget("D1")
	require.NoError(t, err)
	require.NoError(t, h.reduce(OpenPageAction{Target: target}))

	require.NoError(t, h.reduce(DetailLoadedAction{Seq: h.state.detailSeq - 1, Detail: backend.DrugDetail{DrugName: "old"}}))
	assert.NotEqual(t, "old", h.state.Detail.DrugName)
}

func TestInvalidTargetIsRejected(t *testing.T) {
	h := newHarness(t)
	err := h.reduce(OpenPageAction{Target: query.NavigationTarget{Path: "/search/unknown", Params: query.Params{{Key: "q", Value: "x"}}}})
	require.ErrorIs(t, err, query.ErrInvalidTarget)
	assert.Equal(t, ViewHome, h.state.View)
}

func TestNavigateBack(t *testing.T) {
	h := newHarness(t)
	h.nav.canBack = true
	require.NoError(t, h.reduce(NavigateBackAction{}))
	assert.Equal(t, 1, h.nav.backs)
	assert.Empty(t, h.nav.targets)

	h.nav.canBack = false
	require.NoError(t, h.reduce(OpenPageAction{Target: keywordTarget(t, query.CategorySymptom, "두통")}))
	require.NoError(t, h.reduce(NavigateBackAction{}))
	assert.Equal(t, "/", h.nav.last().String())
}

func TestSubmitWithoutNavigatorOpensResultsInPlace(t *testing.T) {
	h := newHarness(t, withoutNavigator())
	h.backend.pages = []backend.ResultPage{fullPage(3)}
	h.focus()
	h.typeText("두통")

	require.NoError(t, h.reduce(EnterAction{}))
	assert.Equal(t, ViewResults, h.state.View)
	assert.Equal(t, LoadReady, h.state.ResultsStatus)
	assert.Equal(t, "/search/symptom?q=%EB%91%90%ED%86%B5&mode=keyword&type=symptom", h.state.Target.String())

	require.NoError(t, h.reduce(NavigateBackAction{}))
	assert.Equal(t, ViewHome, h.state.View)
	assert.Empty(t, h.state.Query)
	assert.Len(t, h.state.Recent, 1)
}
