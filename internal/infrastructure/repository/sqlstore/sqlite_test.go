package sqlstore

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sync"
	"testing"

	"github.com/kirillkom/document-insight/internal/core/domain"
)

func newSQLiteStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	db, dialect, err := Open(ctx, "sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store := New(db, dialect)
	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}
	return store
}

func seed(t *testing.T, store *Store, entries ...domain.HistoricalEntry) {
	t.Helper()
	ctx := context.Background()
	uow, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	defer uow.Close()
	for i := range entries {
		if err := uow.History().Add(ctx, &entries[i]); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}
	if _, err := uow.Commit(ctx); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
}

func entryIDs(entries []domain.HistoricalEntry) []int64 {
	out := make([]int64, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}

func sortBy(field string, o domain.SortOrder) *domain.SortSpec {
	return &domain.SortSpec{Property: field, Order: &o}
}

func TestSQLiteGetPageCountsFilteredSetBeforeWindowing(t *testing.T) {
	store := newSQLiteStore(t)
	seed(t, store,
		domain.HistoricalEntry{Type: domain.HistoricalDocumentUpload, Description: "a1b2.pdf"},
		domain.HistoricalEntry{Type: domain.HistoricalUserInteraction, Description: "Entered the analysis page"},
		domain.HistoricalEntry{Type: domain.HistoricalDocumentUpload, Description: "c3d4.pdf"},
		domain.HistoricalEntry{Type: domain.HistoricalDocumentUpload, Description: "e5f6.png"},
	)

	uow, _ := store.Begin(context.Background())
	items, total, err := uow.History().GetPage(context.Background(), 1, 1, domain.ContainsFilter{Value: ".pdf"}, sortBy("Id", domain.SortAscending))
	if err != nil {
		t.Fatalf("GetPage() error = %v", err)
	}
	if total != 2 {
		t.Fatalf("expected filtered total 2, got %d", total)
	}
	if len(items) != 1 || items[0].Description != "c3d4.pdf" {
		t.Fatalf("unexpected page %+v", items)
	}
	if items[0].CreatedAt.IsZero() {
		t.Fatalf("expected creation date to be stored")
	}
}

func TestSQLiteGetPageSkipBeyondTotalReturnsEmptyPage(t *testing.T) {
	store := newSQLiteStore(t)
	seed(t, store, domain.HistoricalEntry{Type: domain.HistoricalDocumentUpload, Description: "only.pdf"})

	uow, _ := store.Begin(context.Background())
	items, total, err := uow.History().GetPage(context.Background(), 5, 10, domain.ContainsFilter{}, nil)
	if err != nil {
		t.Fatalf("GetPage() error = %v", err)
	}
	if total != 1 || len(items) != 0 {
		t.Fatalf("expected empty page with total 1, got %d items total %d", len(items), total)
	}
}

func TestSQLiteAscendingAndDescendingAreInverse(t *testing.T) {
	store := newSQLiteStore(t)
	seed(t, store,
		domain.HistoricalEntry{Type: domain.HistoricalUserInteraction, Description: "beta"},
		domain.HistoricalEntry{Type: domain.HistoricalDocumentUpload, Description: "alpha"},
		domain.HistoricalEntry{Type: domain.HistoricalAIAnalysis, Description: "beta"},
		domain.HistoricalEntry{Type: domain.HistoricalDocumentUpload, Description: "gamma"},
	)

	uow, _ := store.Begin(context.Background())
	for _, field := range []string{"Id", "HistoricalType", "Description", "CreationDate", "HistoricalType.DisplayName"} {
		asc, err := uow.History().GetAll(context.Background(), domain.ContainsFilter{}, sortBy(field, domain.SortAscending))
		if err != nil {
			t.Fatalf("GetAll(%s asc) error = %v", field, err)
		}
		desc, err := uow.History().GetAll(context.Background(), domain.ContainsFilter{}, sortBy(field, domain.SortDescending))
		if err != nil {
			t.Fatalf("GetAll(%s desc) error = %v", field, err)
		}
		reversed := entryIDs(desc)
		slices.Reverse(reversed)
		if !slices.Equal(entryIDs(asc), reversed) {
			t.Fatalf("%s: ascending %v is not the reverse of descending %v", field, entryIDs(asc), entryIDs(desc))
		}
	}
}

func TestSQLiteConcurrentCommitsKeepEntriesAdjacent(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			uow, err := store.Begin(ctx)
			if err != nil {
				errs <- err
				return
			}
			defer uow.Close()
			upload := &domain.HistoricalEntry{Type: domain.HistoricalDocumentUpload, Description: fmt.Sprintf("file-%d.pdf", i)}
			analysis := &domain.HistoricalEntry{Type: domain.HistoricalAIAnalysis, Description: fmt.Sprintf("result-%d", i)}
			_ = uow.History().Add(ctx, upload)
			_ = uow.History().Add(ctx, analysis)
			if _, err := uow.Commit(ctx); err != nil {
				errs <- err
				return
			}
			if analysis.ID != upload.ID+1 {
				errs <- fmt.Errorf("worker %d: ids %d and %d are not adjacent", i, upload.ID, analysis.ID)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}

	uow, _ := store.Begin(ctx)
	all, err := uow.History().GetAll(ctx, domain.ContainsFilter{}, nil)
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if len(all) != 2*workers {
		t.Fatalf("expected %d entries, got %d", 2*workers, len(all))
	}
}

func TestSQLiteGetPageClampsTakeBeyondRemainingEntries(t *testing.T) {
	store := newSQLiteStore(t)
	seed(t, store,
		domain.HistoricalEntry{Type: domain.HistoricalDocumentUpload, Description: "a.pdf"},
		domain.HistoricalEntry{Type: domain.HistoricalDocumentUpload, Description: "b.pdf"},
		domain.HistoricalEntry{Type: domain.HistoricalDocumentUpload, Description: "c.pdf"},
	)

	uow, _ := store.Begin(context.Background())
	items, total, err := uow.History().GetPage(context.Background(), 1, math.MaxInt, domain.ContainsFilter{}, nil)
	if err != nil {
		t.Fatalf("GetPage() error = %v", err)
	}
	if total != 3 || !slices.Equal(entryIDs(items), []int64{2, 3}) {
		t.Fatalf("unexpected page total=%d ids=%v", total, entryIDs(items))
	}
}
