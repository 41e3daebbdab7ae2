package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FileKind identifies how an uploaded document is presented to the model.
type FileKind string

const (
	FileKindImage   FileKind = "Image"
	FileKindPdf     FileKind = "Pdf"
	FileKindUnknown FileKind = "Unknown"
)

// Numeric codes accepted on the wire for clients that send the enum ordinal.
var fileKindCodes = map[int]FileKind{
	0: FileKindImage,
	1: FileKindPdf,
	2: FileKindUnknown,
}

func ParseFileKind(raw string) FileKind {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.Atoi(raw); err == nil {
		if kind, ok := fileKindCodes[n]; ok {
			return kind
		}
		return FileKindUnknown
	}
	switch strings.ToLower(raw) {
	case "pdf":
		return FileKindPdf
	case "image":
		return FileKindImage
	default:
		return FileKindUnknown
	}
}

func (k *FileKind) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		*k = ParseFileKind(strconv.Itoa(n))
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("file kind: %w", err)
	}
	*k = ParseFileKind(s)
	return nil
}

type DocumentKind string

const (
	DocumentKindUnset       DocumentKind = ""
	DocumentKindInvoice     DocumentKind = "Invoice"
	DocumentKindGeneralText DocumentKind = "GeneralText"
	DocumentKindOther       DocumentKind = "Other"
)

// ParseDocumentKind maps a model label onto a known kind. Unrecognised labels report false.
func ParseDocumentKind(label string) (DocumentKind, bool) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "invoice":
		return DocumentKindInvoice, true
	case "generaltext":
		return DocumentKindGeneralText, true
	case "other":
		return DocumentKindOther, true
	default:
		return DocumentKindUnset, false
	}
}

type AnalysisRequest struct {
	Base64File    string   `json:"base64File"`
	FileKind      FileKind `json:"fileType"`
	MediaTypeName string   `json:"fileTypeName"`
}

// Extension derives the stored file extension from the media type, e.g. "application/pdf" -> "pdf".
func (r AnalysisRequest) Extension() string {
	_, sub, ok := strings.Cut(r.MediaTypeName, "/")
	if !ok {
		return ""
	}
	if i := strings.IndexAny(sub, ";+"); i >= 0 {
		sub = sub[:i]
	}
	return strings.TrimSpace(sub)
}

// AnalysisResult is serialised verbatim into the AIAnalysis history entry, so its JSON
// keys must stay stable for report rendering.
type AnalysisResult struct {
	DocumentTypeName string       `json:"DocumentTypeName"`
	DocumentType     DocumentKind `json:"DocumentType"`
	Data             string       `json:"Data"`
	AdditionalData   string       `json:"AdditionalData"`
	FileName         string       `json:"FileName"`
}

type Invoice struct {
	ClientInfo    *string          `json:"ClientInfo"`
	ProviderInfo  *string          `json:"ProviderInfo"`
	InvoiceNumber *string          `json:"InvoiceNumber"`
	Date          *string          `json:"Date"`
	Products      []InvoiceProduct `json:"Products"`
	Total         *float64         `json:"Total"`
}

type InvoiceProduct struct {
	ProductName *string  `json:"ProductName"`
	Quantity    *float64 `json:"Quantity"`
	UnitPrice   *float64 `json:"UnitPrice"`
	Total       *float64 `json:"Total"`
}

type GeneralText struct {
	Description *string `json:"Description"`
	Summary     *string `json:"Summary"`
	Sentiment   *string `json:"Sentiment"`
}
