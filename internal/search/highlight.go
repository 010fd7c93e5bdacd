package search

import (
	"sort"
	"strings"
	"unicode"
)

// MatchSpan is a half-open rune range [Start, End).
type MatchSpan struct {
	Start int
	End   int
}

func MergeMatchSpans(spans []MatchSpan) []MatchSpan {
	if len(spans) == 0 {
		return nil
	}
	merged := make([]MatchSpan, 0, len(spans))
	current := spans[0]
	for i := 1; i < len(spans); i++ {
		next := spans[i]
		if next.Start <= current.End {
			if next.End > current.End {
				current.End = next.End
			}
			continue
		}
		merged = append(merged, current)
		current = next
	}
	merged = append(merged, current)
	return merged
}

// HighlightSpans returns the rune ranges of suggestion that match the typed
// text. Every whitespace-separated token is matched case-insensitively at
// all of its occurrences.
func HighlightSpans(suggestion, typed string) []MatchSpan {
	tokens := strings.Fields(typed)
	if len(tokens) == 0 || suggestion == "" {
		return nil
	}
	haystack := lowerRunes(suggestion)

	var spans []MatchSpan
	for _, token := range tokens {
		needle := lowerRunes(token)
		for i := 0; i+len(needle) <= len(haystack); i++ {
			if runesEqual(haystack[i:i+len(needle)], needle) {
				spans = append(spans, MatchSpan{Start: i, End: i + len(needle)})
			}
		}
	}
	if len(spans) == 0 {
		return nil
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
	return MergeMatchSpans(spans)
}

func runesEqual(a, b []rune) bool {
	for i := range b {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// lowerRunes keeps one output rune per input rune so span offsets stay
// aligned with the original text.
func lowerRunes(s string) []rune {
	runes := []rune(s)
	for i, r := range runes {
		runes[i] = unicode.ToLower(r)
	}
	return runes
}
