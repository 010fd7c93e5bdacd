package query

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	searchViewPath = "/search"
	detailViewPath = "/drugs"

	autocompletePath = "/autocomplete"
	searchPath       = "/search"
	detailPath       = "/search/detail"
)

// DefaultPageSize is the number of results requested per page.
const DefaultPageSize = 10

var ErrInvalidTarget = errors.New("invalid navigation target")

// ResultsBody is the JSON payload of a freeform results request.
type ResultsBody struct {
	Query string `json:"query"`
	Page  int    `json:"page"`
	Size  int    `json:"size"`
}

// BuildSuggestionRequest returns the autocomplete call for text in category.
func BuildSuggestionRequest(category Category, text string) (RequestDescriptor, error) {
	if err := category.Validate(); err != nil {
		return RequestDescriptor{}, fmt.Errorf("building suggestion request: %w", err)
	}
	return RequestDescriptor{
		Method: http.MethodGet,
		Path:   autocompletePath + "/" + string(category),
		Params: Params{{Key: "q", Value: text}},
	}, nil
}

// BuildSubmissionTarget returns the page a submitted query navigates to.
func BuildSubmissionTarget(mode Mode, category Category, text string) (NavigationTarget, error) {
	switch mode {
	case ModeFreeform:
		return NavigationTarget{
			Path: searchViewPath,
			Params: Params{
				{Key: "q", Value: text},
				{Key: "mode", Value: string(ModeFreeform)},
				{Key: "type", Value: FreeformType},
			},
		}, nil
	case ModeKeyword:
		if err := category.Validate(); err != nil {
			return NavigationTarget{}, fmt.Errorf("building submission target: %w", err)
		}
		return NavigationTarget{
			Path: searchViewPath + "/" + string(category),
			Params: Params{
				{Key: "q", Value: text},
				{Key: "mode", Value: string(ModeKeyword)},
				{Key: "type", Value: string(category)},
			},
		}, nil
	}
	return NavigationTarget{}, fmt.Errorf("building submission target: %w", mode.Validate())
}

// BuildResultsRequest returns the results call for one page. pageIndex is
// zero-based; use PageIndex to convert a displayed page number.
func BuildResultsRequest(mode Mode, category Category, text string, pageIndex, pageSize int) (RequestDescriptor, error) {
	if pageIndex < 0 {
		return RequestDescriptor{}, fmt.Errorf("building results request: negative page index %d", pageIndex)
	}
	if pageSize <= 0 {
		return RequestDescriptor{}, fmt.Errorf("building results request: page size must be positive, got %d", pageSize)
	}

	switch mode {
	case ModeFreeform:
		body, err := json.Marshal(ResultsBody{Query: text, Page: pageIndex, Size: pageSize})
		if err != nil {
			return RequestDescriptor{}, fmt.Errorf("encoding results body: %w", err)
		}
		return RequestDescriptor{
			Method: http.MethodPost,
			Path:   searchPath,
			Body:   body,
		}, nil
	case ModeKeyword:
		if err := category.Validate(); err != nil {
			return RequestDescriptor{}, fmt.Errorf("building results request: %w", err)
		}
		return RequestDescriptor{
			Method: http.MethodGet,
			Path:   searchPath + "/" + string(category),
			Params: Params{
				{Key: "q", Value: text},
				{Key: "page", Value: strconv.Itoa(pageIndex)},
				{Key: "size", Value: strconv.Itoa(pageSize)},
			},
		}, nil
	}
	return RequestDescriptor{}, fmt.Errorf("building results request: %w", mode.Validate())
}

// PageIndex converts a one-based displayed page number into the zero-based
// index the backend expects.
func PageIndex(displayPage int) int {
	if displayPage <= 1 {
		return 0
	}
	return displayPage - 1
}

// BuildDetailTarget returns the detail page for a drug.
func BuildDetailTarget(drugID string) (NavigationTarget, error) {
	if strings.TrimSpace(drugID) == "" {
		return NavigationTarget{}, fmt.Errorf("%w: empty drug id", ErrInvalidTarget)
	}
	return NavigationTarget{Path: detailViewPath + "/" + url.PathEscape(drugID)}, nil
}

// BuildDetailRequest returns the backend call for a drug's detail record.
func BuildDetailRequest(drugID string) (RequestDescriptor, error) {
	if strings.TrimSpace(drugID) == "" {
		return RequestDescriptor{}, fmt.Errorf("building detail request: empty drug id")
	}
	return RequestDescriptor{
		Method: http.MethodGet,
		Path:   detailPath + "/" + url.PathEscape(drugID),
	}, nil
}

// HomeTarget is the landing page.
func HomeTarget() NavigationTarget {
	return NavigationTarget{Path: "/"}
}

type PageKind int

const (
	PageHome PageKind = iota
	PageResults
	PageDetail
)

func (k PageKind) String() string {
	switch k {
	case PageHome:
		return "home"
	case PageResults:
		return "results"
	case PageDetail:
		return "detail"
	}
	return "unknown"
}

// Page is a parsed navigation target.
type Page struct {
	Kind     PageKind
	Mode     Mode
	Category Category
	Text     string
	DrugID   string
}

// ParseTarget is the inverse of the Build*Target helpers.
func ParseTarget(target NavigationTarget) (Page, error) {
	path := strings.TrimRight(target.Path, "/")
	switch {
	case path == "":
		return Page{Kind: PageHome}, nil

	case path == searchViewPath:
		mode := Mode(target.Params.Get("mode"))
		if err := mode.Validate(); err != nil {
			return Page{}, fmt.Errorf("%w: %s: %w", ErrInvalidTarget, target, err)
		}
		if mode != ModeFreeform {
			return Page{}, fmt.Errorf("%w: %s: keyword search needs a category path", ErrInvalidTarget, target)
		}
		return Page{Kind: PageResults, Mode: ModeFreeform, Text: target.Params.Get("q")}, nil

	case strings.HasPrefix(path, searchViewPath+"/"):
		category, err := ParseCategory(strings.TrimPrefix(path, searchViewPath+"/"))
		if err != nil {
			return Page{}, fmt.Errorf("%w: %s: %w", ErrInvalidTarget, target, err)
		}
		if mode := target.Params.Get("mode"); mode != "" && Mode(mode) != ModeKeyword {
			return Page{}, fmt.Errorf("%w: %s: category path with mode %q", ErrInvalidTarget, target, mode)
		}
		return Page{Kind: PageResults, Mode: ModeKeyword, Category: category, Text: target.Params.Get("q")}, nil

	case strings.HasPrefix(path, detailViewPath+"/"):
		id, err := url.PathUnescape(strings.TrimPrefix(path, detailViewPath+"/"))
		if err != nil || id == "" {
			return Page{}, fmt.Errorf("%w: %s: bad drug id", ErrInvalidTarget, target)
		}
		return Page{Kind: PageDetail, DrugID: id}, nil
	}
	return Page{}, fmt.Errorf("%w: %s", ErrInvalidTarget, target)
}
