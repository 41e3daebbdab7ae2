package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kirillkom/document-insight/internal/core/domain"
	"github.com/kirillkom/document-insight/internal/core/ports"
)

// HistoryUseCase reads the audit trail and records user interactions.
type HistoryUseCase struct {
	uow       ports.UnitOfWorkFactory
	publisher ports.HistoryPublisher
	logger    *slog.Logger
}

func NewHistoryUseCase(uow ports.UnitOfWorkFactory, publisher ports.HistoryPublisher, logger *slog.Logger) *HistoryUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &HistoryUseCase{uow: uow, publisher: publisher, logger: logger}
}

func (uc *HistoryUseCase) GetPaged(ctx context.Context, query domain.HistoryQuery) (*domain.HistoryPage, error) {
	uow, err := uc.uow.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin unit of work: %w", err)
	}
	defer uow.Close()

	entries, total, err := uow.History().GetPage(ctx, query.Skip, query.Take, domain.ContainsFilter{Value: query.Filter}, query.Sort)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []domain.HistoricalEntry{}
	}
	return &domain.HistoryPage{
		Historicals: entries,
		TotalPages:  total,
		Page:        query.Skip,
		PageSize:    query.Take,
	}, nil
}

// GetAll returns every matching entry. A blank filter matches everything.
func (uc *HistoryUseCase) GetAll(ctx context.Context, filter string, sort *domain.SortSpec) ([]domain.HistoricalEntry, error) {
	uow, err := uc.uow.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin unit of work: %w", err)
	}
	defer uow.Close()

	return uow.History().GetAll(ctx, domain.ContainsFilter{Value: filter}, sort)
}

func (uc *HistoryUseCase) AddUserInteraction(ctx context.Context, action domain.UserAction) error {
	uow, err := uc.uow.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin unit of work: %w", err)
	}
	defer uow.Close()

	entry := &domain.HistoricalEntry{Type: domain.HistoricalUserInteraction, Description: action.Description()}
	if err := uow.History().Add(ctx, entry); err != nil {
		return fmt.Errorf("stage interaction: %w", err)
	}
	if _, err := uow.Commit(ctx); err != nil {
		return fmt.Errorf("commit interaction: %w", err)
	}

	if uc.publisher != nil {
		if err := uc.publisher.PublishHistoryAppended(ctx, []domain.HistoricalEntry{*entry}); err != nil {
			uc.logger.Warn("history_publish_failed", "error", err.Error())
		}
	}
	return nil
}
