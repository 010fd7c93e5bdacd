package render

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	searchpkg "github.com/kk-code-lab/medfind/internal/search"
	statepkg "github.com/kk-code-lab/medfind/internal/state"
)

var printer = message.NewPrinter(language.Korean)

// formatCount renders n with locale digit grouping.
func formatCount(n int) string {
	return printer.Sprintf("%d", n)
}

func formatResultsSummary(state *statepkg.AppState) string {
	if pages, ok := state.PageCount(); ok {
		return printer.Sprintf("총 %d건 · %d/%d 페이지", state.ResultsTotal, state.ResultsPage, pages)
	}
	return printer.Sprintf("%d 페이지", state.ResultsPage)
}

// formatSuggestStatus describes the suggestion fetch when the dropdown has
// nothing to show yet.
func formatSuggestStatus(state *statepkg.AppState) string {
	if !state.InputFocused || len(state.Suggestions) > 0 {
		return ""
	}
	switch state.SuggestStatus {
	case searchpkg.FetchInFlight:
		return "자동완성 불러오는 중…"
	case searchpkg.FetchErrored:
		return "자동완성을 불러오지 못했습니다"
	}
	return ""
}

func formatPageTitle(state *statepkg.AppState) string {
	switch state.View {
	case statepkg.ViewResults:
		parts := []string{"검색 결과"}
		if state.Page.Text != "" {
			parts = append(parts, state.Page.Text)
		}
		return strings.Join(parts, " · ")
	case statepkg.ViewDetail:
		if state.Detail != nil && state.Detail.DrugName != "" {
			return state.Detail.DrugName
		}
		return "약품 상세"
	}
	return "홈"
}

// formatCounter is the freeform length indicator, e.g. "7/20".
func formatCounter(length, limit int) string {
	return printer.Sprintf("%d/%d", length, limit)
}
