package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type SortOrder int

const (
	SortAscending  SortOrder = 0
	SortDescending SortOrder = 1
)

func (o SortOrder) String() string {
	if o == SortDescending {
		return "DESC"
	}
	return "ASC"
}

func (o *SortOrder) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		switch SortOrder(n) {
		case SortAscending, SortDescending:
			*o = SortOrder(n)
			return nil
		}
		return fmt.Errorf("sort order %d out of range", n)
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("sort order: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ascending", "asc", strconv.Itoa(int(SortAscending)):
		*o = SortAscending
	case "descending", "desc", strconv.Itoa(int(SortDescending)):
		*o = SortDescending
	default:
		return fmt.Errorf("unknown sort order %q", s)
	}
	return nil
}

// SortSpec names a field at query time. A nil Order is rejected when the spec is resolved.
type SortSpec struct {
	Property string     `json:"property"`
	Order    *SortOrder `json:"sortOrder"`
}

// ContainsFilter restricts results to rows whose designated text column contains Value.
// A blank Value disables filtering.
type ContainsFilter struct {
	Value string
}

func (f ContainsFilter) Active() bool {
	return strings.TrimSpace(f.Value) != ""
}

type HistoryQuery struct {
	Skip   int       `json:"skip"`
	Take   int       `json:"take"`
	Filter string    `json:"filter,omitempty"`
	Sort   *SortSpec `json:"sort,omitempty"`
}

type HistoryPage struct {
	Historicals []HistoricalEntry `json:"historicals"`
	TotalPages  int               `json:"totalPages"`
	Page        int               `json:"page"`
	PageSize    int               `json:"pageSize"`
}

// ReportColumns is the fixed column layout of an exported report. Headers only
// relabel those columns, so a non-empty Headers must have exactly this length.
const ReportColumns = 5

type ReportRequest struct {
	Headers []string  `json:"headers"`
	Filter  string    `json:"filter,omitempty"`
	Sort    *SortSpec `json:"sort,omitempty"`
}

type ReportResult struct {
	URL string `json:"url"`
}
