package pdftext

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/kirillkom/document-insight/internal/core/domain"
)

type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract decodes a base64 PDF and concatenates the plain text of every page in order.
func (e *Extractor) Extract(ctx context.Context, base64PDF string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(base64PDF))
	if err != nil {
		return "", domain.WrapError(domain.ErrInvalidInput, "decode pdf", domain.ErrInvalidBase64)
	}

	text, err := readPages(ctx, raw)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", domain.ErrNoExtractableText
	}
	return text, nil
}

func readPages(ctx context.Context, raw []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = domain.WrapError(domain.ErrInvalidInput, "parse pdf", fmt.Errorf("%v", r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", domain.WrapError(domain.ErrInvalidInput, "open pdf", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extract text from page %d: %w", i, err)
		}
		b.WriteString(pageText)
	}
	return b.String(), nil
}
