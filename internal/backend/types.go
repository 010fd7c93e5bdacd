package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID accepts identifiers encoded either as JSON strings or numbers.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("drug id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Result is one row of a results page.
type Result struct {
	DrugID   ID       `json:"drugId"`
	DrugName string   `json:"drugName"`
	Company  string   `json:"company"`
	Efficacy []string `json:"efficacy"`
	ImageURL string   `json:"imageUrl,omitempty"`
}

// ResultPage is a decoded results response. Total is only meaningful when
// HasTotal is set; older backends omit the count.
type ResultPage struct {
	Results  []Result
	Total    int
	HasTotal bool
}

// Material is one row of a drug's composition table.
type Material struct {
	Name   string `json:"성분명"`
	Amount string `json:"분량"`
	Unit   string `json:"단위"`
	Total  string `json:"총량"`
	Spec   string `json:"규격"`
}

// DrugDetail is the full record behind a detail page.
type DrugDetail struct {
	DrugID       ID                  `json:"drugId"`
	DrugName     string              `json:"drugName"`
	Company      string              `json:"company"`
	Efficacy     []string            `json:"efficacy"`
	Usage        []string            `json:"usage"`
	ImageURL     string              `json:"imageUrl,omitempty"`
	IsGeneral    Flag                `json:"isGeneral"`
	IsHerbal     Flag                `json:"isHerbal"`
	PermitDate   string              `json:"permitDate"`
	StoreMethod  string              `json:"storeMethod"`
	ValidTerm    string              `json:"validTerm"`
	CancelDate   string              `json:"cancelDate"`
	CancelName   string              `json:"cancelName"`
	MaterialInfo []Material          `json:"materialInfo"`
	Precaution   map[string][]string `json:"precaution"`
}

type envelope[T any] struct {
	Data T `json:"data"`
}

type autocompleteData struct {
	AutoCompleteList []string `json:"autoCompleteList"`
}

type resultsData struct {
	SearchResponseList []Result `json:"searchResponseList"`
	TotalResponseCount *int     `json:"totalResponseCount"`
}

// Flag decodes booleans that some backend builds send as strings.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = Flag(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("flag: %w", err)
	}
	parsed, err := strconv.ParseBool(s)
	if err != nil {
		parsed = s == "Y" || s == "y"
	}
	*f = Flag(parsed)
	return nil
}

// DispensingLabel names the over-the-counter or prescription class.
func (d DrugDetail) DispensingLabel() string {
	if d.IsGeneral {
		return "일반의약품"
	}
	return "전문의약품"
}

// OriginLabel names the herbal or western class.
func (d DrugDetail) OriginLabel() string {
	if d.IsHerbal {
		return "한약"
	}
	return "양약"
}
