package query

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Mode selects how a query is routed to the backend.
type Mode string

const (
	ModeKeyword  Mode = "keyword"
	ModeFreeform Mode = "freeform"
)

// Category narrows a keyword query. It is ignored in freeform mode.
type Category string

const (
	CategorySymptom      Category = "symptom"
	CategoryIngredient   Category = "ingredient"
	CategoryName         Category = "name"
	CategoryManufacturer Category = "manufacturer"
)

// FreeformType is the "type" value carried by freeform targets and recent entries.
const FreeformType = "natural"

// MaxFreeformLength caps freeform input, in characters.
const MaxFreeformLength = 20

var (
	ErrInvalidMode     = errors.New("invalid search mode")
	ErrInvalidCategory = errors.New("invalid search category")
	ErrQueryTooLong    = errors.New("query exceeds freeform length limit")
)

var categoryOrder = []Category{
	CategorySymptom,
	CategoryIngredient,
	CategoryName,
	CategoryManufacturer,
}

var categoryLabels = map[Category]string{
	CategorySymptom:      "증상",
	CategoryIngredient:   "성분",
	CategoryName:         "약품명",
	CategoryManufacturer: "제조사",
}

var categoryPlaceholders = map[Category]string{
	CategorySymptom:      "증상을 입력하세요",
	CategoryIngredient:   "성분을 입력하세요",
	CategoryName:         "약품명을 입력하세요",
	CategoryManufacturer: "제조사를 입력하세요",
}

// Categories returns every keyword category in display order.
func Categories() []Category {
	out := make([]Category, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}

// ParseMode converts a wire value into a Mode.
func ParseMode(value string) (Mode, error) {
	mode := Mode(value)
	if err := mode.Validate(); err != nil {
		return "", err
	}
	return mode, nil
}

// ParseCategory converts a wire value into a Category.
func ParseCategory(value string) (Category, error) {
	category := Category(value)
	if err := category.Validate(); err != nil {
		return "", err
	}
	return category, nil
}

func (m Mode) Validate() error {
	switch m {
	case ModeKeyword, ModeFreeform:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidMode, string(m))
}

func (m Mode) Toggle() Mode {
	if m == ModeFreeform {
		return ModeKeyword
	}
	return ModeFreeform
}

// Label is the tab caption shown for the mode.
func (m Mode) Label() string {
	switch m {
	case ModeKeyword:
		return "키워드"
	case ModeFreeform:
		return "자연어"
	}
	return string(m)
}

func (c Category) Validate() error {
	if _, ok := categoryLabels[c]; ok {
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidCategory, string(c))
}

// Label returns the human-readable category name.
func (c Category) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}

// Next cycles through the categories in display order.
func (c Category) Next() Category {
	for i, candidate := range categoryOrder {
		if candidate == c {
			return categoryOrder[(i+1)%len(categoryOrder)]
		}
	}
	return categoryOrder[0]
}

// Placeholder is the hint drawn in an empty search input.
func Placeholder(mode Mode, category Category) string {
	if mode == ModeFreeform {
		return fmt.Sprintf("예) 머리가 아프고 열이 나요 (%d자 이내)", MaxFreeformLength)
	}
	if hint, ok := categoryPlaceholders[category]; ok {
		return hint
	}
	return "검색어를 입력하세요"
}

// Query is an immutable search request as typed by the user.
type Query struct {
	text     string
	category Category
	mode     Mode
}

// New validates and builds a Query. Freeform text longer than
// MaxFreeformLength is rejected rather than truncated.
func New(mode Mode, category Category, text string) (Query, error) {
	if err := mode.Validate(); err != nil {
		return Query{}, err
	}
	if mode == ModeKeyword {
		if err := category.Validate(); err != nil {
			return Query{}, err
		}
	} else {
		category = ""
		if !FitsFreeform(text) {
			return Query{}, fmt.Errorf("%w: %d > %d", ErrQueryTooLong, utf8.RuneCountInString(text), MaxFreeformLength)
		}
	}
	return Query{text: text, category: category, mode: mode}, nil
}

func (q Query) Text() string       { return q.text }
func (q Query) Category() Category { return q.category }
func (q Query) Mode() Mode         { return q.mode }

// Trimmed returns the text with surrounding whitespace removed.
func (q Query) Trimmed() string {
	return strings.TrimSpace(q.text)
}

// FitsFreeform reports whether text is within the freeform length cap.
func FitsFreeform(text string) bool {
	return utf8.RuneCountInString(text) <= MaxFreeformLength
}
