package render

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"

	"github.com/kk-code-lab/medfind/internal/query"
	"github.com/kk-code-lab/medfind/internal/recent"
	searchpkg "github.com/kk-code-lab/medfind/internal/search"
	statepkg "github.com/kk-code-lab/medfind/internal/state"
	textutil "github.com/kk-code-lab/medfind/internal/textutil"
)

// Renderer handles all UI rendering
type Renderer struct {
	screen           tcell.Screen
	theme            ColorTheme
	runeWidthCache   [128]int // ASCII cache (0-127)
	runeWidthCacheMu sync.RWMutex
	runeWidthWide    sync.Map // For non-ASCII runes
}

// NewRenderer creates a new renderer
func NewRenderer(screen tcell.Screen) *Renderer {
	return &Renderer{
		screen: screen,
		theme:  GetColorTheme(),
	}
}

// Render draws the entire UI based on state. It records the detail page's
// scroll limit on state once the record has been laid out.
func (r *Renderer) Render(state *statepkg.AppState) {
	r.screen.Clear()
	r.screen.HideCursor()

	w, h := r.screen.Size()
	if state == nil || w <= 0 || h <= 0 {
		r.screen.Show()
		return
	}

	if state.HelpVisible {
		r.drawHelpOverlay(state, w, h)
		r.screen.Show()
		return
	}

	r.drawHeader(state, w)
	r.drawModeBar(state, w)
	r.drawBody(state, w, h)
	r.drawStatusLine(state, w, h)
	// drawn last so the list overlays the body
	r.drawDropdown(state, w, h)
	r.drawInput(state, w)

	r.screen.Show()
}

// drawHeader renders the top bar with the app name and page title
func (r *Renderer) drawHeader(state *statepkg.AppState, w int) {
	headerStyle := tcell.StyleDefault.Background(r.theme.HeaderBg).Foreground(r.theme.HeaderFg)
	r.fillRow(0, headerRow, w, headerStyle)

	endX := r.drawTextLine(0, headerRow, w, " medfind", headerStyle.Bold(true))
	if endX >= w {
		return
	}
	endX = r.drawTextLine(endX, headerRow, w-endX, " › ", headerStyle)
	if endX >= w {
		return
	}
	title := textutil.SingleLine(formatPageTitle(state))
	title = r.truncateTextToWidth(title, w-endX)
	r.drawTextLine(endX, headerRow, w-endX, title, headerStyle.Bold(true))
}

// drawModeBar renders the mode tabs and, in keyword mode, the category tabs.
func (r *Renderer) drawModeBar(state *statepkg.AppState, w int) {
	base := tcell.StyleDefault.Background(r.theme.Background).Foreground(r.theme.TabInactiveFg)
	active := tcell.StyleDefault.Background(r.theme.TabActiveBg).Foreground(r.theme.TabActiveFg).Bold(true)
	r.fillRow(0, modeRow, w, base)

	x := inputPadding
	for _, mode := range []query.Mode{query.ModeKeyword, query.ModeFreeform} {
		style := base
		if mode == state.Mode {
			style = active
		}
		x = r.drawTab(x, w, mode.Label(), style)
	}
	if state.Mode != query.ModeKeyword || x >= w {
		return
	}

	x = r.drawTextLine(x, modeRow, w-x, " │", base)
	for _, category := range query.Categories() {
		style := base
		if category == state.Category {
			style = tcell.StyleDefault.Background(r.theme.BadgeBg).Foreground(r.theme.BadgeFg).Bold(true)
		}
		x = r.drawTab(x, w, category.Label(), style)
	}
}

func (r *Renderer) drawTab(x, w int, label string, style tcell.Style) int {
	if x >= w {
		return x
	}
	x = r.drawTextLine(x, modeRow, w-x, " ", tcell.StyleDefault)
	if x >= w {
		return x
	}
	return r.drawTextLine(x, modeRow, w-x, " "+label+" ", style)
}

// inputStart is the column where query text begins.
func (r *Renderer) inputStart() int {
	return inputPadding + r.measureTextWidth(inputPrompt)
}

// drawInput renders the prompt, the query scrolled so the cursor stays in
// view, and the freeform length counter.
func (r *Renderer) drawInput(state *statepkg.AppState, w int) {
	inputStyle := tcell.StyleDefault.Background(r.theme.InputBg).Foreground(r.theme.InputFg)
	r.fillRow(0, inputRow, w, inputStyle)

	promptStyle := inputStyle.Foreground(r.theme.MutedFg)
	if state.InputFocused {
		promptStyle = inputStyle.Foreground(r.theme.TitleFg).Bold(true)
	}
	x := r.drawTextLine(inputPadding, inputRow, w-inputPadding, inputPrompt, promptStyle)

	maxX := w - inputPadding
	if state.Mode == query.ModeFreeform {
		counter := formatCounter(utf8.RuneCountInString(state.Query), query.MaxFreeformLength)
		counterX := w - inputPadding - r.measureTextWidth(counter)
		if counterX > x+1 {
			counterStyle := inputStyle.Foreground(r.theme.CounterFg)
			if !query.FitsFreeform(state.Query) {
				counterStyle = inputStyle.Foreground(r.theme.ErrorFg)
			}
			r.drawTextLine(counterX, inputRow, w-counterX, counter, counterStyle)
			maxX = counterX - 1
		}
	}
	available := maxX - x
	if available <= 0 {
		return
	}

	if state.Query == "" {
		placeholder := r.truncateTextToWidth(query.Placeholder(state.Mode, state.Category), available)
		r.drawTextLine(x, inputRow, available, placeholder, inputStyle.Foreground(r.theme.PlaceholderFg))
		if state.InputFocused {
			r.screen.ShowCursor(x, inputRow)
		}
		return
	}

	runes := []rune(textutil.SanitizeTerminalText(state.Query))
	cursor := state.CursorPos
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(runes) {
		cursor = len(runes)
	}
	start := r.inputScrollStart(runes, cursor, available)
	r.drawTextLine(x, inputRow, available, string(runes[start:]), inputStyle)

	if state.InputFocused {
		r.screen.ShowCursor(x+r.measureTextWidth(string(runes[start:cursor])), inputRow)
	}
}

// inputScrollStart returns the first rune to draw so that the cursor and
// one cell after it fit in width.
func (r *Renderer) inputScrollStart(runes []rune, cursor, width int) int {
	start := 0
	for start < cursor && r.measureTextWidth(string(runes[start:cursor]))+1 > width {
		start++
	}
	return start
}

// drawDropdown renders the suggestion list under the input.
func (r *Renderer) drawDropdown(state *statepkg.AppState, w, h int) {
	rows := DropdownRows(state)
	if rows == 0 {
		if status := formatSuggestStatus(state); status != "" && dropdownTop < h-1 {
			style := tcell.StyleDefault.Background(r.theme.DropdownBg).Foreground(r.theme.MutedFg)
			r.fillRow(0, dropdownTop, w, style)
			r.drawTextLine(r.inputStart(), dropdownTop, w-r.inputStart(), r.truncateTextToWidth(status, w-r.inputStart()), style)
		}
		return
	}

	offset := dropdownOffset(state, rows)
	badge := ""
	if state.Mode == query.ModeKeyword {
		badge = " " + state.Category.Label() + " "
	}
	for row := 0; row < rows; row++ {
		index := offset + row
		y := dropdownTop + row
		suggestion := textutil.SingleLine(state.Suggestions[index])

		rowStyle := tcell.StyleDefault.Background(r.theme.DropdownBg).Foreground(r.theme.DropdownFg)
		matchStyle := rowStyle.Foreground(r.theme.MatchFg).Bold(true)
		if index == state.SelectedSuggestion {
			rowStyle = tcell.StyleDefault.Background(r.theme.SelectionBg).Foreground(r.theme.SelectionFg)
			matchStyle = rowStyle.Bold(true).Underline(true)
		}
		r.fillRow(0, y, w, rowStyle)

		x := r.inputStart()
		if badge != "" && x < w {
			badgeStyle := tcell.StyleDefault.Background(r.theme.BadgeBg).Foreground(r.theme.BadgeFg)
			x = r.drawTextLine(x, y, w-x, badge, badgeStyle)
			x = r.drawTextLine(x, y, w-x, " ", rowStyle)
		}
		if x >= w {
			continue
		}
		spans := searchpkg.HighlightSpans(suggestion, state.Query)
		r.drawHighlightedText(x, y, w-inputPadding, r.truncateTextToWidth(suggestion, w-inputPadding-x), spans, rowStyle, matchStyle)
	}
}

func (r *Renderer) drawBody(state *statepkg.AppState, w, h int) {
	bottom := bodyBottom(h)
	if statepkg.BodyTop >= bottom {
		return
	}
	switch state.View {
	case statepkg.ViewResults:
		r.drawResults(state, w, bottom)
	case statepkg.ViewDetail:
		r.drawDetail(state, w, bottom)
	default:
		r.drawRecent(state, w, bottom)
	}
}

func (r *Renderer) bodyMessage(y, w int, text string, fg tcell.Color) {
	style := tcell.StyleDefault.Foreground(fg)
	text = r.truncateTextToWidth(textutil.SingleLine(text), w-2*inputPadding)
	r.drawTextLine(inputPadding, y, w-inputPadding, text, style)
}

// drawRecent renders the recent searches on the home page.
func (r *Renderer) drawRecent(state *statepkg.AppState, w, bottom int) {
	y := statepkg.BodyTop
	r.bodyMessage(y, w, "최근 검색어", r.theme.TitleFg)
	y += recentTitleRows

	if len(state.Recent) == 0 {
		if y < bottom {
			r.bodyMessage(y, w, "최근 검색 기록이 없습니다", r.theme.MutedFg)
		}
		return
	}

	for i, entry := range state.Recent {
		if y >= bottom {
			break
		}
		rowStyle := tcell.StyleDefault
		if i == state.RecentIndex && !state.InputFocused {
			rowStyle = tcell.StyleDefault.Background(r.theme.SelectionBg).Foreground(r.theme.SelectionFg)
			r.fillRow(0, y, w, rowStyle)
		}
		x := inputPadding
		badgeStyle := tcell.StyleDefault.Background(r.theme.BadgeBg).Foreground(r.theme.BadgeFg)
		x = r.drawTextLine(x, y, w-x, " "+recentBadge(entry)+" ", badgeStyle)
		x = r.drawTextLine(x, y, w-x, " ", rowStyle)
		if x < w {
			text := r.truncateTextToWidth(textutil.SingleLine(entry.Query), w-inputPadding-x)
			r.drawTextLine(x, y, w-x, text, rowStyle)
		}
		y++
	}
}

func recentBadge(entry recent.Entry) string {
	if category, ok := entry.Category(); ok {
		return category.Label()
	}
	return entry.SearchMode().Label()
}

// drawResults renders the visible slice of the results list and a summary
// on the last body row.
func (r *Renderer) drawResults(state *statepkg.AppState, w, bottom int) {
	top := statepkg.BodyTop
	switch state.ResultsStatus {
	case statepkg.LoadLoading, statepkg.LoadIdle:
		r.bodyMessage(top, w, "검색 중…", r.theme.MutedFg)
		return
	case statepkg.LoadFailed:
		msg := "검색 결과를 불러오지 못했습니다"
		if state.ResultsError != nil {
			msg = state.ResultsError.Error()
		}
		r.bodyMessage(top, w, msg, r.theme.ErrorFg)
		if top+1 < bottom {
			r.bodyMessage(top+1, w, "r: 다시 시도", r.theme.MutedFg)
		}
		return
	}

	if len(state.Results) == 0 {
		r.bodyMessage(top, w, "검색 결과가 없습니다", r.theme.MutedFg)
	}

	visible := state.VisibleResultRows()
	for slot := 0; slot < visible; slot++ {
		index := state.ResultScroll + slot
		y := top + slot*statepkg.ResultRowHeight
		if index >= len(state.Results) || y+1 >= bottom {
			break
		}
		result := state.Results[index]
		selected := index == state.ResultIndex && !state.InputFocused

		nameStyle := tcell.StyleDefault.Bold(true)
		mutedStyle := tcell.StyleDefault.Foreground(r.theme.MutedFg)
		if selected {
			nameStyle = tcell.StyleDefault.Background(r.theme.SelectionBg).Foreground(r.theme.SelectionFg).Bold(true)
			mutedStyle = tcell.StyleDefault.Background(r.theme.SelectionBg).Foreground(r.theme.SelectionFg)
			r.fillRow(0, y, w, nameStyle)
			r.fillRow(0, y+1, w, mutedStyle)
		}

		x := inputPadding
		name := textutil.SingleLine(result.DrugName)
		x = r.drawTextLine(x, y, w-x, r.truncateTextToWidth(name, w-inputPadding-x), nameStyle)
		if company := textutil.SingleLine(result.Company); company != "" && x+3 < w {
			companyStyle := mutedStyle
			x = r.drawTextLine(x, y, w-x, "  ", companyStyle)
			r.drawTextLine(x, y, w-x, r.truncateTextToWidth(company, w-inputPadding-x), companyStyle)
		}

		efficacy := textutil.SingleLine(strings.Join(result.Efficacy, " "))
		r.drawTextLine(inputPadding+2, y+1, w-inputPadding-2, r.truncateTextToWidth(efficacy, w-2*inputPadding-2), mutedStyle)
	}

	if summaryY := bottom - 1; summaryY >= top {
		summary := formatResultsSummary(state)
		if state.HasNextPage() {
			summary += " · n: 다음"
		}
		if state.ResultsPage > 1 {
			summary += " · p: 이전"
		}
		r.bodyMessage(summaryY, w, summary, r.theme.MutedFg)
	}
}

// drawDetail renders the scrolled detail record.
func (r *Renderer) drawDetail(state *statepkg.AppState, w, bottom int) {
	top := statepkg.BodyTop
	switch {
	case state.DetailStatus == statepkg.LoadFailed:
		msg := "약품 정보를 불러오지 못했습니다"
		if state.DetailError != nil {
			msg = state.DetailError.Error()
		}
		r.bodyMessage(top, w, msg, r.theme.ErrorFg)
		state.DetailMaxScroll = 0
		return
	case state.Detail == nil:
		r.bodyMessage(top, w, "불러오는 중…", r.theme.MutedFg)
		state.DetailMaxScroll = 0
		return
	}

	lines := buildDetailLines(state.Detail, w-2*inputPadding)
	height := bottom - top
	maxScroll := len(lines) - height
	if maxScroll < 0 {
		maxScroll = 0
	}
	state.DetailMaxScroll = maxScroll
	scroll := state.DetailScroll
	if scroll > maxScroll {
		scroll = maxScroll
	}

	for row := 0; row < height && scroll+row < len(lines); row++ {
		line := lines[scroll+row]
		style := tcell.StyleDefault
		switch line.kind {
		case lineHeading:
			style = style.Foreground(r.theme.TitleFg).Bold(true)
		case lineMuted:
			style = style.Foreground(r.theme.MutedFg)
		}
		text := r.truncateTextToWidth(line.text, w-2*inputPadding)
		r.drawTextLine(inputPadding, top+row, w-inputPadding, text, style)
	}
}

// drawStatusLine renders the last row: an error, a notice or the key hints.
func (r *Renderer) drawStatusLine(state *statepkg.AppState, w, h int) {
	y := h - 1
	if y <= inputRow {
		return
	}
	normalStyle := tcell.StyleDefault.Background(r.theme.FooterBg).Foreground(r.theme.FooterFg)
	r.fillRow(0, y, w, normalStyle)

	var text string
	style := normalStyle
	switch {
	case state.LastError != nil:
		text = " ✗ " + textutil.SingleLine(state.LastError.Error())
		style = normalStyle.Foreground(r.theme.ErrorFg)
	case state.Notice != "":
		text = " " + textutil.SingleLine(state.Notice)
		style = normalStyle.Foreground(r.theme.NoticeFg)
	default:
		text = textutil.SanitizeTerminalText(buildFooterHelpText(state))
	}
	text = r.truncateTextToWidth(text, w)
	r.drawTextLine(0, y, w, text, style)
}
