package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/kirillkom/document-insight/internal/core/domain"
)

const invoiceSchema = `{
  "type": "object",
  "required": ["ClientInfo", "ProviderInfo", "InvoiceNumber", "Date", "Products", "Total"],
  "properties": {
    "ClientInfo": {"type": ["string", "null"]},
    "ProviderInfo": {"type": ["string", "null"]},
    "InvoiceNumber": {"type": ["string", "null"]},
    "Date": {"type": ["string", "null"]},
    "Products": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "required": ["ProductName", "Quantity", "UnitPrice", "Total"],
        "properties": {
          "ProductName": {"type": ["string", "null"]},
          "Quantity": {"type": ["number", "null"]},
          "UnitPrice": {"type": ["number", "null"]},
          "Total": {"type": ["number", "null"]}
        }
      }
    },
    "Total": {"type": ["number", "null"]}
  }
}`

const generalTextSchema = `{
  "type": "object",
  "required": ["Description", "Summary", "Sentiment"],
  "properties": {
    "Description": {"type": ["string", "null"]},
    "Summary": {"type": ["string", "null"]},
    "Sentiment": {"type": ["string", "null"]}
  }
}`

// totalTolerance absorbs rounding in model-produced amounts.
const totalTolerance = 0.01

// ResultValidator checks the Data sub-document of a parsed result against the schema
// of its document kind. Findings are advisory and never reject the result.
type ResultValidator struct {
	invoice     *jsonschema.Schema
	generalText *jsonschema.Schema
}

func NewResultValidator() (*ResultValidator, error) {
	invoice, err := compile("invoice.json", invoiceSchema)
	if err != nil {
		return nil, err
	}
	generalText, err := compile("general_text.json", generalTextSchema)
	if err != nil {
		return nil, err
	}
	return &ResultValidator{invoice: invoice, generalText: generalText}, nil
}

func compile(name, source string) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(source)); err != nil {
		return nil, fmt.Errorf("add schema %s: %w", name, err)
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return schema, nil
}

func (v *ResultValidator) Validate(result domain.AnalysisResult) []string {
	var schema *jsonschema.Schema
	switch result.DocumentType {
	case domain.DocumentKindInvoice:
		schema = v.invoice
	case domain.DocumentKindGeneralText:
		schema = v.generalText
	default:
		return nil
	}

	raw := strings.TrimSpace(result.Data)
	if raw == "" {
		return []string{"Data is empty"}
	}
	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return []string{"Data is not a JSON document: " + err.Error()}
	}
	if err := schema.Validate(doc); err != nil {
		return []string{"Data does not match the " + string(result.DocumentType) + " schema: " + err.Error()}
	}

	if result.DocumentType == domain.DocumentKindInvoice {
		var invoice domain.Invoice
		if err := json.Unmarshal([]byte(raw), &invoice); err != nil {
			return []string{"Data is not an invoice: " + err.Error()}
		}
		if problem := checkInvoiceTotal(invoice); problem != "" {
			return []string{problem}
		}
	}
	return nil
}

// checkInvoiceTotal verifies that non-null line totals add up to the invoice total.
func checkInvoiceTotal(invoice domain.Invoice) string {
	if invoice.Total == nil {
		return ""
	}
	var sum float64
	for _, p := range invoice.Products {
		if p.Total != nil {
			sum += *p.Total
		}
	}
	if math.Abs(sum-*invoice.Total) > totalTolerance {
		return fmt.Sprintf("line totals sum to %.2f but invoice total is %.2f", sum, *invoice.Total)
	}
	return ""
}
