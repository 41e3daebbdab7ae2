package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/kirillkom/document-insight/internal/core/domain"
	"github.com/kirillkom/document-insight/internal/infrastructure/repository/memory"
)

func seedHistory(t *testing.T, uc *HistoryUseCase, actions ...domain.UserAction) {
	t.Helper()
	for _, a := range actions {
		if err := uc.AddUserInteraction(context.Background(), a); err != nil {
			t.Fatalf("AddUserInteraction(%d) error = %v", a, err)
		}
	}
}

func TestAddUserInteractionRecordsLabel(t *testing.T) {
	store := memory.New()
	publisher := &publisherFake{}
	uc := NewHistoryUseCase(store, publisher, quietLogger())

	seedHistory(t, uc, domain.UserActionEnterAnalysisPage, domain.UserAction(99))

	entries := store.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Type != domain.HistoricalUserInteraction || entries[0].Description != "Entered the analysis page" {
		t.Fatalf("unexpected entry: %+v", entries[0])
	}
	if entries[1].Description != "Unknown action" {
		t.Fatalf("unexpected label for unknown action: %q", entries[1].Description)
	}
	if len(publisher.batches) != 2 || publisher.batches[0][0].ID != entries[0].ID {
		t.Fatalf("unexpected published batches: %+v", publisher.batches)
	}
}

func TestAddUserInteractionCommitFailure(t *testing.T) {
	store := memory.New()
	store.FailCommit = errors.New("readonly")
	uc := NewHistoryUseCase(store, nil, quietLogger())

	if err := uc.AddUserInteraction(context.Background(), domain.UserActionFilterHistorical); err == nil {
		t.Fatalf("expected commit error")
	}
}

func TestGetPagedEchoesPagingAndCountsTotal(t *testing.T) {
	uc := NewHistoryUseCase(memory.New(), nil, quietLogger())
	seedHistory(t, uc,
		domain.UserActionEnterAnalysisPage,
		domain.UserActionEnterHistoricalPage,
		domain.UserActionFilterHistorical,
		domain.UserActionExportHistorical,
	)
	desc := domain.SortDescending

	page, err := uc.GetPaged(context.Background(), domain.HistoryQuery{
		Skip:   1,
		Take:   1,
		Filter: "Entered",
		Sort:   &domain.SortSpec{Property: "Id", Order: &desc},
	})
	if err != nil {
		t.Fatalf("GetPaged() error = %v", err)
	}
	if page.TotalPages != 2 || page.Page != 1 || page.PageSize != 1 {
		t.Fatalf("unexpected page meta: %+v", page)
	}
	if len(page.Historicals) != 1 || page.Historicals[0].Description != "Entered the analysis page" {
		t.Fatalf("unexpected page items: %+v", page.Historicals)
	}
}

func TestGetPagedBlankFilterMatchesEverything(t *testing.T) {
	uc := NewHistoryUseCase(memory.New(), nil, quietLogger())
	seedHistory(t, uc, domain.UserActionEnterAnalysisPage, domain.UserActionExportHistorical)

	page, err := uc.GetPaged(context.Background(), domain.HistoryQuery{Take: 10, Filter: "   "})
	if err != nil {
		t.Fatalf("GetPaged() error = %v", err)
	}
	if page.TotalPages != 2 || len(page.Historicals) != 2 {
		t.Fatalf("expected all entries, got %+v", page)
	}
}

func TestGetPagedRejectsInvalidQueries(t *testing.T) {
	uc := NewHistoryUseCase(memory.New(), nil, quietLogger())
	asc := domain.SortAscending

	cases := []struct {
		name   string
		query  domain.HistoryQuery
		detail error
	}{
		{"negative skip", domain.HistoryQuery{Skip: -1, Take: 1}, domain.ErrNegativeSkip},
		{"negative take", domain.HistoryQuery{Take: -1}, domain.ErrNegativeTake},
		{"unknown field", domain.HistoryQuery{Take: 1, Sort: &domain.SortSpec{Property: "Colour", Order: &asc}}, domain.ErrSortFieldNotFound},
		{"missing order", domain.HistoryQuery{Take: 1, Sort: &domain.SortSpec{Property: "Id"}}, domain.ErrSortOrderUnset},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.GetPaged(context.Background(), tc.query)
			if !domain.IsKind(err, domain.ErrInvalidInput) || !errors.Is(err, tc.detail) {
				t.Fatalf("expected %v, got %v", tc.detail, err)
			}
		})
	}
}
