// Package xlsx renders the audit trail as an Excel workbook.
package xlsx

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/document-insight/internal/core/domain"
)

const (
	SheetName  = "Historicals"
	dateLayout = "02/01/2006 15:04"
)

var DefaultHeaders = []string{"Id", "Type", "Date", "File", "Detail"}

type Renderer struct {
	logger *slog.Logger
}

func NewRenderer(logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{logger: logger}
}

// Render writes one row per entry: id, type label, creation date, a link to the stored
// file when there is one, and a detail column. headers relabel those five columns.
func (r *Renderer) Render(ctx context.Context, filesURL string, headers []string, entries []domain.HistoricalEntry) ([]byte, error) {
	start := time.Now()
	if len(headers) == 0 {
		headers = DefaultHeaders
	}
	if len(headers) != domain.ReportColumns {
		return nil, domain.WrapError(domain.ErrInvalidInput, "render report", domain.ErrHeaderCount)
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(SheetName, "A1", last, bold); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}

	for i, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := r.writeRow(f, i+2, filesURL, e); err != nil {
			return nil, fmt.Errorf("write row %d: %w", e.ID, err)
		}
	}

	_ = f.SetColWidth(SheetName, "A", "A", 8)
	_ = f.SetColWidth(SheetName, "B", "B", 18)
	_ = f.SetColWidth(SheetName, "C", "C", 18)
	_ = f.SetColWidth(SheetName, "D", "D", 40)
	_ = f.SetColWidth(SheetName, "E", "E", 80)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	r.logger.Info("report_rendered", "rows", len(entries), "elapsed_ms", time.Since(start).Milliseconds())
	return buf.Bytes(), nil
}

func (r *Renderer) writeRow(f *excelize.File, row int, filesURL string, e domain.HistoricalEntry) error {
	write := func(col int, v any) error {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		return f.SetCellValue(SheetName, cell, v)
	}
	if err := write(1, e.ID); err != nil {
		return err
	}
	if err := write(2, e.Type.DisplayName()); err != nil {
		return err
	}
	if err := write(3, e.CreatedAt.Format(dateLayout)); err != nil {
		return err
	}

	switch e.Type {
	case domain.HistoricalDocumentUpload:
		if err := r.link(f, row, filesURL, e.Description); err != nil {
			return err
		}
		return write(5, "")
	case domain.HistoricalAIAnalysis:
		var result domain.AnalysisResult
		if err := json.Unmarshal([]byte(e.Description), &result); err != nil {
			r.logger.Warn("report_entry_undecodable", "id", strconv.FormatInt(e.ID, 10), "error", err.Error())
			return write(5, e.Description)
		}
		if err := r.link(f, row, filesURL, result.FileName); err != nil {
			return err
		}
		return write(5, "Data: "+result.Data+" AdditionalData: "+result.AdditionalData)
	default:
		if err := write(4, ""); err != nil {
			return err
		}
		return write(5, e.Description)
	}
}

func (r *Renderer) link(f *excelize.File, row int, filesURL, name string) error {
	cell, _ := excelize.CoordinatesToCellName(4, row)
	if name == "" {
		return f.SetCellValue(SheetName, cell, "")
	}
	target := filesURL + name
	if err := f.SetCellValue(SheetName, cell, target); err != nil {
		return err
	}
	return f.SetCellHyperLink(SheetName, cell, target, "External", excelize.HyperlinkOpts{Display: &name})
}
