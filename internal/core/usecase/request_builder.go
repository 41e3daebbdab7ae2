package usecase

import (
	"context"
	"strings"

	"github.com/kirillkom/document-insight/internal/core/domain"
	"github.com/kirillkom/document-insight/internal/core/ports"
)

const (
	DefaultModelName = "gpt-4-vision-preview"
	DefaultMaxTokens = 1000

	instructionToken = "#{replaceLine}"
	pdfSubject       = "the text in the following message"
	imageSubject     = "the image"
)

const analysisInstructions = `Based on the information in #{replaceLine}, return a JSON object with the following fields:
'DocumentTypeName': put 'Invoice' if it is an invoice or 'GeneralText' if it is general text. If it is neither, put 'Other' and ignore the remaining fields.
'Data': a string containing JSON that can later be parsed into an object with these fields.
For an invoice:
1. ClientInfo: the client's name and address.
2. ProviderInfo: the provider's name and address.
3. InvoiceNumber: the invoice number.
4. Date: the invoice date.
5. Products: an array of { 'ProductName': product name, 'Quantity': quantity, 'UnitPrice': unit price, 'Total': total for that product }. Include zero-cost products too.
6. Total: the invoice total.
7. Check that the sum of the product totals (ignoring nulls) equals the invoice total; if it does not, analyse again.
For 'GeneralText', 'Data' must contain:
1. Description: a description of the text.
2. Summary: a summary of the text.
3. Sentiment: the sentiment analysis of the text.
NOTES:
- If you cannot find information for a field, set it to null.
- Put any remarks in a string attribute of the same JSON called 'AdditionalData'. It must be a string, not an object.
- AdditionalData must contain your own observations about the information you received, not about these instructions.
- Return nothing except the requested JSON.
- Make sure 'Data' is a JSON string that can be parsed into an object.`

// RequestBuilder assembles the vision-model request for a validated analysis request.
type RequestBuilder struct {
	extractor ports.TextExtractor
	model     string
	maxTokens int
}

func NewRequestBuilder(extractor ports.TextExtractor, model string, maxTokens int) *RequestBuilder {
	if strings.TrimSpace(model) == "" {
		model = DefaultModelName
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &RequestBuilder{extractor: extractor, model: model, maxTokens: maxTokens}
}

func (b *RequestBuilder) Build(ctx context.Context, req domain.AnalysisRequest) (domain.ModelRequest, error) {
	var content []domain.ContentBlock
	switch req.FileKind {
	case domain.FileKindPdf:
		text, err := b.extractor.Extract(ctx, req.Base64File)
		if err != nil {
			return domain.ModelRequest{}, err
		}
		content = []domain.ContentBlock{
			domain.TextBlock{Text: instructionsFor(pdfSubject)},
			domain.TextBlock{Text: text},
		}
	case domain.FileKindImage:
		content = []domain.ContentBlock{
			domain.TextBlock{Text: instructionsFor(imageSubject)},
			domain.ImageBlock{URL: "data:" + req.MediaTypeName + ";base64," + req.Base64File},
		}
	default:
		return domain.ModelRequest{}, domain.WrapError(domain.ErrInvalidInput, "build model request", domain.ErrUnknownFileKind)
	}

	return domain.ModelRequest{
		Model:     b.model,
		Messages:  []domain.ModelMessage{{Role: domain.RoleUser, Content: content}},
		MaxTokens: b.maxTokens,
	}, nil
}

func instructionsFor(subject string) string {
	return strings.ReplaceAll(analysisInstructions, instructionToken, subject)
}
