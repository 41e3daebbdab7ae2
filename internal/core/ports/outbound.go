package ports

import (
	"context"
	"time"

	"github.com/kirillkom/document-insight/internal/core/domain"
)

type BlobUpload struct {
	Data        []byte
	ContentType string
	Extension   string
}

// BlobStorage stores uploaded documents and generated reports and returns the stored name.
type BlobStorage interface {
	Upload(ctx context.Context, blob BlobUpload) (string, error)
}

// TextExtractor turns a base64-encoded PDF into its concatenated page text.
type TextExtractor interface {
	Extract(ctx context.Context, base64PDF string) (string, error)
}

// ModelClient sends a chat-completions request. A nil response means the endpoint
// answered with a non-success status.
type ModelClient interface {
	Analyze(ctx context.Context, req domain.ModelRequest) (*domain.ModelResponse, error)
}

// HistoryRepository queries committed entries and stages new ones on its unit of work.
type HistoryRepository interface {
	GetPage(ctx context.Context, skip, take int, filter domain.ContainsFilter, sort *domain.SortSpec) ([]domain.HistoricalEntry, int, error)
	GetAll(ctx context.Context, filter domain.ContainsFilter, sort *domain.SortSpec) ([]domain.HistoricalEntry, error)
	Add(ctx context.Context, entry *domain.HistoricalEntry) error
}

// UnitOfWork owns one request's staged writes. Commit returns the number of rows written.
type UnitOfWork interface {
	History() HistoryRepository
	Commit(ctx context.Context) (int, error)
	Close() error
}

type UnitOfWorkFactory interface {
	Begin(ctx context.Context) (UnitOfWork, error)
}

// ResultValidator reports schema problems in a parsed result. Problems are advisory.
type ResultValidator interface {
	Validate(result domain.AnalysisResult) []string
}

// HistoryPublisher announces committed history entries.
type HistoryPublisher interface {
	PublishHistoryAppended(ctx context.Context, entries []domain.HistoricalEntry) error
}

// ReportRenderer renders history rows into a spreadsheet document. Stored file names
// are linked relative to filesURL.
type ReportRenderer interface {
	Render(ctx context.Context, filesURL string, headers []string, entries []domain.HistoricalEntry) ([]byte, error)
}

// AnalysisObserver receives pipeline outcomes for metrics.
type AnalysisObserver interface {
	ObserveAnalysis(kind domain.FileKind, outcome string, duration time.Duration)
	ObserveModelCall(outcome string)
}
