package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/kk-code-lab/medfind/internal/backend"
	"github.com/kk-code-lab/medfind/internal/recent"
	"github.com/kk-code-lab/medfind/internal/search"
	"github.com/kk-code-lab/medfind/internal/textutil"
)

// printer styles plain-text output. Styles degrade to plain text when the
// writer is not a terminal.
type printer struct {
	w       io.Writer
	counts  *message.Printer
	title   lipgloss.Style
	match   lipgloss.Style
	muted   lipgloss.Style
	heading lipgloss.Style
	badge   lipgloss.Style
}

func newPrinter(w io.Writer) *printer {
	r := lipgloss.NewRenderer(w)
	return &printer{
		w:       w,
		counts:  message.NewPrinter(language.Korean),
		title:   r.NewStyle().Bold(true),
		match:   r.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		muted:   r.NewStyle().Foreground(lipgloss.Color("245")),
		heading: r.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
		badge:   r.NewStyle().Foreground(lipgloss.Color("111")),
	}
}

func (p *printer) line(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, format+"\n", args...)
}

// highlight renders text with the rune ranges matching typed emphasised.
func (p *printer) highlight(text, typed string) string {
	runes := []rune(text)
	var b strings.Builder
	pos := 0
	for _, span := range search.HighlightSpans(text, typed) {
		b.WriteString(string(runes[pos:span.Start]))
		b.WriteString(p.match.Render(string(runes[span.Start:span.End])))
		pos = span.End
	}
	b.WriteString(string(runes[pos:]))
	return b.String()
}

func (p *printer) suggestions(items []string, typed string) {
	if len(items) == 0 {
		p.line("%s", p.muted.Render("no suggestions"))
		return
	}
	for _, item := range items {
		p.line("%s", p.highlight(textutil.SingleLine(item), typed))
	}
}

func (p *printer) results(results []backend.Result, typed string, firstIndex int) {
	for i, result := range results {
		name := p.highlight(textutil.SingleLine(result.DrugName), typed)
		meta := ""
		if result.Company != "" {
			meta = " " + p.muted.Render(textutil.SingleLine(result.Company))
		}
		p.line("%3d. %s%s %s", firstIndex+i+1, p.title.Render(name), meta, p.badge.Render("#"+result.DrugID.String()))
		if len(result.Efficacy) > 0 {
			p.line("     %s", textutil.Truncate(textutil.SingleLine(strings.Join(result.Efficacy, " ")), 72))
		}
	}
}

func (p *printer) summary(total int, hasTotal bool, shown, firstPage, lastPage int) {
	pages := fmt.Sprintf("page %d", firstPage)
	if lastPage > firstPage {
		pages = fmt.Sprintf("pages %d-%d", firstPage, lastPage)
	}
	if hasTotal {
		p.line("%s", p.muted.Render(p.counts.Sprintf("%d of %d results · %s", shown, total, pages)))
		return
	}
	p.line("%s", p.muted.Render(p.counts.Sprintf("%d results · %s", shown, pages)))
}

func (p *printer) detail(d backend.DrugDetail) {
	p.line("%s", p.title.Render(textutil.SingleLine(d.DrugName)))
	meta := []string{}
	for _, part := range []string{d.Company, d.DispensingLabel(), d.OriginLabel()} {
		if part = textutil.SingleLine(part); part != "" {
			meta = append(meta, part)
		}
	}
	if len(meta) > 0 {
		p.line("%s", p.muted.Render(strings.Join(meta, " · ")))
	}
	if d.PermitDate != "" {
		p.line("허가일 %s", d.PermitDate)
	}
	if d.CancelDate != "" || d.CancelName != "" {
		p.line("%s", p.muted.Render(strings.TrimSpace("취소 "+d.CancelName+" "+d.CancelDate)))
	}
	p.section("효능·효과", d.Efficacy)
	p.section("용법·용량", d.Usage)
	materials := make([]string, 0, len(d.MaterialInfo))
	for _, m := range d.MaterialInfo {
		materials = append(materials, strings.TrimSpace(fmt.Sprintf("%s %s%s", m.Name, m.Amount, m.Unit)))
	}
	p.section("성분", materials)
	for _, key := range slices.Sorted(maps.Keys(d.Precaution)) {
		p.section("주의사항 · "+key, d.Precaution[key])
	}
	if d.StoreMethod != "" {
		p.section("저장방법", []string{d.StoreMethod})
	}
	if d.ValidTerm != "" {
		p.section("유효기간", []string{d.ValidTerm})
	}
	if d.ImageURL != "" {
		p.line("")
		p.line("%s", p.muted.Render(d.ImageURL))
	}
}

func (p *printer) section(title string, lines []string) {
	if len(lines) == 0 {
		return
	}
	p.line("")
	p.line("%s", p.heading.Render(title))
	for _, text := range lines {
		for _, wrapped := range textutil.Wrap(textutil.SingleLine(text), 76) {
			p.line("  %s", wrapped)
		}
	}
}

func (p *printer) recent(entries []recent.Entry) {
	if len(entries) == 0 {
		p.line("%s", p.muted.Render("no recent searches"))
		return
	}
	for i, entry := range entries {
		badge := entry.SearchMode().Label()
		if category, ok := entry.Category(); ok {
			badge = category.Label()
		}
		p.line("%d. %s %s", i+1, textutil.SingleLine(entry.Query), p.badge.Render("["+badge+"]"))
	}
}
