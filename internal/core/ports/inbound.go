package ports

import (
	"context"

	"github.com/kirillkom/document-insight/internal/core/domain"
)

// DocumentAnalyzer is the inbound contract for the analysis pipeline.
type DocumentAnalyzer interface {
	Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error)
}

// HistoryService is the inbound read/write model for the audit trail.
type HistoryService interface {
	GetPaged(ctx context.Context, query domain.HistoryQuery) (*domain.HistoryPage, error)
	GetAll(ctx context.Context, filter string, sort *domain.SortSpec) ([]domain.HistoricalEntry, error)
	AddUserInteraction(ctx context.Context, action domain.UserAction) error
}

// ReportService exports the audit trail as a spreadsheet.
type ReportService interface {
	GenerateReport(ctx context.Context, req domain.ReportRequest) (*domain.ReportResult, error)
}
