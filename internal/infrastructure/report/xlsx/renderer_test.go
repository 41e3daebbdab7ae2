package xlsx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/document-insight/internal/core/domain"
)

func TestRenderWritesHistoricalsSheet(t *testing.T) {
	at := time.Date(2024, 3, 25, 14, 5, 0, 0, time.UTC)
	analysis, _ := json.Marshal(domain.AnalysisResult{
		DocumentTypeName: "Invoice",
		DocumentType:     domain.DocumentKindInvoice,
		Data:             `{"Total":3}`,
		AdditionalData:   "clear",
		FileName:         "a.pdf",
	})
	entries := []domain.HistoricalEntry{
		{ID: 1, Type: domain.HistoricalDocumentUpload, Description: "a.pdf", CreatedAt: at},
		{ID: 2, Type: domain.HistoricalAIAnalysis, Description: string(analysis), CreatedAt: at},
		{ID: 3, Type: domain.HistoricalUserInteraction, Description: "Filtered the historical", CreatedAt: at},
	}

	out, err := NewRenderer(slog.New(slog.NewTextHandler(io.Discard, nil))).
		Render(context.Background(), "https://files.example.com/", nil, entries)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	cell := func(name string) string {
		t.Helper()
		v, err := f.GetCellValue(SheetName, name)
		if err != nil {
			t.Fatalf("GetCellValue(%s) error = %v", name, err)
		}
		return v
	}

	if cell("A1") != "Id" || cell("E1") != "Detail" {
		t.Fatalf("unexpected header row")
	}
	if cell("A2") != "1" || cell("B2") != "Document Upload" || cell("C2") != "25/03/2024 14:05" {
		t.Fatalf("unexpected upload row: %q %q %q", cell("A2"), cell("B2"), cell("C2"))
	}
	ok, target, err := f.GetCellHyperLink(SheetName, "D2")
	if err != nil || !ok || target != "https://files.example.com/a.pdf" {
		t.Fatalf("unexpected upload link: %v %q %v", ok, target, err)
	}
	if cell("B3") != "IA" || cell("E3") != `Data: {"Total":3} AdditionalData: clear` {
		t.Fatalf("unexpected analysis row: %q %q", cell("B3"), cell("E3"))
	}
	if ok, _, _ := f.GetCellHyperLink(SheetName, "D3"); !ok {
		t.Fatalf("expected analysis row to link its file")
	}
	if cell("B4") != "User Interaction" || cell("D4") != "" || cell("E4") != "Filtered the historical" {
		t.Fatalf("unexpected interaction row")
	}
}

func TestRenderRelabelsFixedColumns(t *testing.T) {
	out, err := NewRenderer(nil).Render(context.Background(), "", []string{"#", "Kind", "When", "Link", "Notes"}, nil)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()
	if v, _ := f.GetCellValue(SheetName, "B1"); v != "Kind" {
		t.Fatalf("unexpected header %q", v)
	}
	if v, _ := f.GetCellValue(SheetName, "E1"); v != "Notes" {
		t.Fatalf("unexpected last header %q", v)
	}
}

func TestRenderRejectsHeaderCountThatDoesNotMatchColumns(t *testing.T) {
	for _, headers := range [][]string{{"#", "Kind"}, {"a", "b", "c", "d", "e", "f", "g"}} {
		_, err := NewRenderer(nil).Render(context.Background(), "", headers, nil)
		if !domain.IsKind(err, domain.ErrInvalidInput) || !errors.Is(err, domain.ErrHeaderCount) {
			t.Fatalf("headers %v: expected header count error, got %v", headers, err)
		}
	}
}
