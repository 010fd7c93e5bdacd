package render

import (
	"maps"
	"slices"
	"strings"

	"github.com/kk-code-lab/medfind/internal/backend"
	textutil "github.com/kk-code-lab/medfind/internal/textutil"
)

type lineKind int

const (
	lineBody lineKind = iota
	lineHeading
	lineMuted
)

type bodyLine struct {
	text string
	kind lineKind
}

const detailIndent = "  "

// buildDetailLines lays a drug record out as wrapped lines of at most width cells.
func buildDetailLines(d *backend.DrugDetail, width int) []bodyLine {
	if d == nil {
		return nil
	}
	var lines []bodyLine
	add := func(kind lineKind, text string) {
		lines = append(lines, bodyLine{text: text, kind: kind})
	}
	paragraph := func(text string) {
		for _, line := range textutil.Wrap(text, width-len(detailIndent)) {
			add(lineBody, detailIndent+line)
		}
	}
	section := func(title string, items []string) {
		items = nonEmpty(items)
		if len(items) == 0 {
			return
		}
		add(lineBody, "")
		add(lineHeading, title)
		for _, item := range items {
			paragraph(item)
		}
	}

	add(lineHeading, textutil.SingleLine(d.DrugName))
	meta := []string{d.DispensingLabel(), d.OriginLabel()}
	if company := textutil.SingleLine(d.Company); company != "" {
		meta = append([]string{company}, meta...)
	}
	add(lineMuted, strings.Join(meta, " · "))
	if d.PermitDate != "" {
		add(lineMuted, "허가일 "+textutil.SingleLine(d.PermitDate))
	}
	if d.CancelDate != "" || d.CancelName != "" {
		add(lineMuted, strings.TrimSpace("취소 "+textutil.SingleLine(d.CancelName)+" "+textutil.SingleLine(d.CancelDate)))
	}

	section("효능·효과", d.Efficacy)
	section("용법·용량", d.Usage)

	if len(d.MaterialInfo) > 0 {
		materials := make([]string, 0, len(d.MaterialInfo))
		for _, m := range d.MaterialInfo {
			materials = append(materials, formatMaterial(m))
		}
		section("성분", materials)
	}

	if len(d.Precaution) > 0 {
		for _, title := range slices.Sorted(maps.Keys(d.Precaution)) {
			section("주의사항 · "+textutil.SingleLine(title), d.Precaution[title])
		}
	}

	section("저장방법", []string{d.StoreMethod})
	section("유효기간", []string{d.ValidTerm})

	return lines
}

func formatMaterial(m backend.Material) string {
	parts := nonEmpty([]string{m.Name, strings.TrimSpace(m.Amount + " " + m.Unit)})
	text := strings.Join(parts, " ")
	if m.Spec != "" {
		text += " (" + m.Spec + ")"
	}
	return text
}

func nonEmpty(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item) != "" {
			out = append(out, item)
		}
	}
	return out
}
