package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type HistoricalType int

const (
	HistoricalDocumentUpload  HistoricalType = 1
	HistoricalAIAnalysis      HistoricalType = 2
	HistoricalUserInteraction HistoricalType = 3
)

func (t HistoricalType) Valid() bool {
	switch t {
	case HistoricalDocumentUpload, HistoricalAIAnalysis, HistoricalUserInteraction:
		return true
	default:
		return false
	}
}

// DisplayName is the label used in exported reports.
func (t HistoricalType) DisplayName() string {
	switch t {
	case HistoricalDocumentUpload:
		return "Document Upload"
	case HistoricalAIAnalysis:
		return "IA"
	case HistoricalUserInteraction:
		return "User Interaction"
	default:
		return ""
	}
}

func (t HistoricalType) String() string {
	switch t {
	case HistoricalDocumentUpload:
		return "DocumentUpload"
	case HistoricalAIAnalysis:
		return "AIAnalysis"
	case HistoricalUserInteraction:
		return "UserInteraction"
	default:
		return "HistoricalType(" + strconv.Itoa(int(t)) + ")"
	}
}

// HistoricalEntry is an audit record. ID and CreatedAt are assigned by the store on commit.
type HistoricalEntry struct {
	ID          int64          `json:"id"`
	Type        HistoricalType `json:"historicalType"`
	Description string         `json:"description"`
	CreatedAt   time.Time      `json:"creationDate"`
}

type UserAction int

const (
	UserActionEnterAnalysisPage   UserAction = 1
	UserActionEnterHistoricalPage UserAction = 2
	UserActionFilterHistorical    UserAction = 3
	UserActionExportHistorical    UserAction = 4
)

func (a UserAction) Description() string {
	switch a {
	case UserActionEnterAnalysisPage:
		return "Entered the analysis page"
	case UserActionEnterHistoricalPage:
		return "Entered the historical page"
	case UserActionFilterHistorical:
		return "Filtered the historical"
	case UserActionExportHistorical:
		return "Exported the historical"
	default:
		return "Unknown action"
	}
}

// ParseUserAction accepts the numeric code or the case-insensitive action name.
func ParseUserAction(raw string) (UserAction, error) {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.Atoi(raw); err == nil {
		return UserAction(n), nil
	}
	switch strings.ToLower(raw) {
	case "enteranalysispage":
		return UserActionEnterAnalysisPage, nil
	case "enterhistoricalpage":
		return UserActionEnterHistoricalPage, nil
	case "filterhistorical":
		return UserActionFilterHistorical, nil
	case "exporthistorical":
		return UserActionExportHistorical, nil
	default:
		return 0, fmt.Errorf("unknown user action %q", raw)
	}
}

func (a *UserAction) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		*a = UserAction(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("user action: %w", err)
	}
	parsed, err := ParseUserAction(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
