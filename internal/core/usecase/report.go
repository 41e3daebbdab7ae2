package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/kirillkom/document-insight/internal/core/domain"
	"github.com/kirillkom/document-insight/internal/core/ports"
)

const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var errReportURLsMissing = errors.New("configuration keys missing")

type ReportConfig struct {
	FilesURL   string
	ReportsURL string
}

// ReportUseCase exports the filtered audit trail as a workbook stored in the reports store.
type ReportUseCase struct {
	history  *HistoryUseCase
	renderer ports.ReportRenderer
	reports  ports.BlobStorage
	cfg      ReportConfig
}

func NewReportUseCase(history *HistoryUseCase, renderer ports.ReportRenderer, reports ports.BlobStorage, cfg ReportConfig) *ReportUseCase {
	return &ReportUseCase{history: history, renderer: renderer, reports: reports, cfg: cfg}
}

func (uc *ReportUseCase) GenerateReport(ctx context.Context, req domain.ReportRequest) (*domain.ReportResult, error) {
	const op = "generate report"
	if strings.TrimSpace(uc.cfg.FilesURL) == "" || strings.TrimSpace(uc.cfg.ReportsURL) == "" {
		return nil, domain.WrapError(domain.ErrConfigMissing, op, errReportURLsMissing)
	}

	if len(req.Headers) != 0 && len(req.Headers) != domain.ReportColumns {
		return nil, domain.WrapError(domain.ErrInvalidInput, op, domain.ErrHeaderCount)
	}

	entries, err := uc.history.GetAll(ctx, req.Filter, req.Sort)
	if err != nil {
		return nil, err
	}

	workbook, err := uc.renderer.Render(ctx, uc.cfg.FilesURL, req.Headers, entries)
	if err != nil {
		return nil, domain.WrapError(domain.ErrReportFailed, op, err)
	}

	if err := uc.history.AddUserInteraction(ctx, domain.UserActionExportHistorical); err != nil {
		return nil, domain.WrapError(domain.ErrReportFailed, op, err)
	}

	name, err := uc.reports.Upload(ctx, ports.BlobUpload{
		Data:        workbook,
		ContentType: XLSXContentType,
		Extension:   "xlsx",
	})
	if err != nil {
		return nil, domain.WrapError(domain.ErrReportFailed, op, err)
	}
	return &domain.ReportResult{URL: uc.cfg.ReportsURL + name}, nil
}
