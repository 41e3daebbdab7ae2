package usecase

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/kirillkom/document-insight/internal/core/domain"
)

const (
	fenceJSON = "```json"
	fence     = "```"
)

// ParseAnalysis turns the model's reply into a result. Code fences are stripped, an
// unknown document label leaves the kind unset, and fileName is attached.
func ParseAnalysis(raw, fileName string) (domain.AnalysisResult, error) {
	body := strings.ReplaceAll(raw, fenceJSON, "")
	body = strings.TrimSpace(strings.ReplaceAll(body, fence, ""))
	if body == "" {
		return domain.AnalysisResult{}, domain.WrapError(domain.ErrMalformedModelReply, "parse analysis", errors.New("empty reply"))
	}

	var reply struct {
		DocumentTypeName string          `json:"DocumentTypeName"`
		Data             json.RawMessage `json:"Data"`
		AdditionalData   json.RawMessage `json:"AdditionalData"`
	}
	if err := json.Unmarshal([]byte(body), &reply); err != nil {
		return domain.AnalysisResult{}, domain.WrapError(domain.ErrMalformedModelReply, "parse analysis", err)
	}
	if bytes.Equal(bytes.TrimSpace([]byte(body)), []byte("null")) {
		return domain.AnalysisResult{}, domain.WrapError(domain.ErrMalformedModelReply, "parse analysis", errors.New("null reply"))
	}

	result := domain.AnalysisResult{
		DocumentTypeName: reply.DocumentTypeName,
		Data:             lenientString(reply.Data),
		AdditionalData:   lenientString(reply.AdditionalData),
		FileName:         fileName,
	}
	if kind, ok := domain.ParseDocumentKind(reply.DocumentTypeName); ok {
		result.DocumentType = kind
	}
	return result, nil
}

// lenientString accepts either a JSON string or any other JSON value, which is kept
// in its compact encoded form.
func lenientString(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, trimmed); err != nil {
		return string(trimmed)
	}
	return compact.String()
}
