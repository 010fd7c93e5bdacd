package app

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kk-code-lab/medfind/internal/query"
	statepkg "github.com/kk-code-lab/medfind/internal/state"
)

type openRecorder struct {
	opened []query.NavigationTarget
}

func (r *openRecorder) dispatch(action statepkg.Action) {
	if open, ok := action.(statepkg.OpenPageAction); ok {
		r.opened = append(r.opened, open.Target)
	}
}

func mustTarget(t *testing.T, mode query.Mode, category query.Category, text string) query.NavigationTarget {
	t.Helper()
	target, err := query.BuildSubmissionTarget(mode, category, text)
	require.NoError(t, err)
	return target
}

func TestRouterNavigatePushesAndOpens(t *testing.T) {
	rec := &openRecorder{}
	router := NewRouter(query.NavigationTarget{}, rec.dispatch)
	target := mustTarget(t, query.ModeKeyword, query.CategorySymptom, "두통")

	require.NoError(t, router.Navigate(target))

	assert.Equal(t, 2, router.Depth())
	assert.Equal(t, target.String(), router.Current().String())
	require.Len(t, rec.opened, 1)
	assert.Equal(t, target.String(), rec.opened[0].String())
}

func TestRouterRejectsInvalidTarget(t *testing.T) {
	rec := &openRecorder{}
	router := NewRouter(query.HomeTarget(), rec.dispatch)

	err := router.Navigate(query.NavigationTarget{Path: "/nowhere"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, query.ErrInvalidTarget))
	assert.Equal(t, 1, router.Depth())
	assert.Empty(t, rec.opened)
}

func TestRouterSameTargetReloadsWithoutGrowingHistory(t *testing.T) {
	rec := &openRecorder{}
	router := NewRouter(query.HomeTarget(), rec.dispatch)
	target := mustTarget(t, query.ModeFreeform, "", "열이 나요")

	require.NoError(t, router.Navigate(target))
	require.NoError(t, router.Navigate(target))

	assert.Equal(t, 2, router.Depth())
	assert.Len(t, rec.opened, 2)
}

func TestRouterBack(t *testing.T) {
	rec := &openRecorder{}
	router := NewRouter(query.HomeTarget(), rec.dispatch)
	results := mustTarget(t, query.ModeKeyword, query.CategoryName, "타이레놀")
	detail, err := query.BuildDetailTarget("D1")
	require.NoError(t, err)

	require.NoError(t, router.Navigate(results))
	require.NoError(t, router.Navigate(detail))

	require.True(t, router.Back())
	assert.Equal(t, results.String(), router.Current().String())
	require.True(t, router.Back())
	assert.Equal(t, query.HomeTarget().String(), router.Current().String())
	assert.False(t, router.Back(), "nothing before the first page")

	require.Len(t, rec.opened, 4)
	assert.Equal(t, query.HomeTarget().String(), rec.opened[3].String())
}

func TestRouterHistoryIsBounded(t *testing.T) {
	router := NewRouter(query.HomeTarget(), nil)
	for i := 0; i < maxHistory+10; i++ {
		target, err := query.BuildDetailTarget(string(rune('A' + i%26)) + string(rune('0'+i/26)))
		require.NoError(t, err)
		require.NoError(t, router.Navigate(target))
	}

	assert.Equal(t, maxHistory, router.Depth())
}
