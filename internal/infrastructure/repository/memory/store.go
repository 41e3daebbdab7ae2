// Package memory keeps the audit trail in process memory. It backs DB_DRIVER=memory
// and use case tests.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/kirillkom/document-insight/internal/core/domain"
	"github.com/kirillkom/document-insight/internal/core/ports"
	"github.com/kirillkom/document-insight/internal/core/sorting"
)

type Store struct {
	mu      sync.RWMutex
	entries []domain.HistoricalEntry
	nextID  int64
	schema  *sorting.Schema[domain.HistoricalEntry]
	now     func() time.Time

	// FailCommit makes every commit fail with the given error when set.
	FailCommit error
}

func New() *Store {
	return &Store{
		nextID: 1,
		schema: sorting.History(),
		now:    time.Now,
	}
}

func (s *Store) Begin(_ context.Context) (ports.UnitOfWork, error) {
	return &unitOfWork{store: s}, nil
}

// Entries returns a copy of everything committed, in id order.
func (s *Store) Entries() []domain.HistoricalEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.HistoricalEntry(nil), s.entries...)
}

func (s *Store) query(filter domain.ContainsFilter, sort *domain.SortSpec) ([]domain.HistoricalEntry, error) {
	ordering, err := s.schema.Resolve(sort)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	out := make([]domain.HistoricalEntry, 0, len(s.entries))
	for _, e := range s.entries {
		if filter.Active() && !strings.Contains(e.Description, filter.Value) {
			continue
		}
		out = append(out, e)
	}
	s.mu.RUnlock()

	ordering.Sort(out)
	return out, nil
}

func (s *Store) commit(staged []*domain.HistoricalEntry) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailCommit != nil {
		return 0, fmt.Errorf("commit: %w", s.FailCommit)
	}
	now := s.now().UTC()
	for _, e := range staged {
		e.ID = s.nextID
		e.CreatedAt = now
		s.nextID++
		s.entries = append(s.entries, *e)
	}
	return len(staged), nil
}

type unitOfWork struct {
	store *Store

	mu     sync.Mutex
	staged []*domain.HistoricalEntry
}

func (u *unitOfWork) History() ports.HistoryRepository {
	return historyRepository{uow: u}
}

func (u *unitOfWork) Commit(_ context.Context) (int, error) {
	u.mu.Lock()
	staged := u.staged
	u.staged = nil
	u.mu.Unlock()

	if len(staged) == 0 {
		return 0, nil
	}
	return u.store.commit(staged)
}

func (u *unitOfWork) Close() error {
	u.mu.Lock()
	u.staged = nil
	u.mu.Unlock()
	return nil
}

type historyRepository struct {
	uow *unitOfWork
}

func (r historyRepository) GetPage(_ context.Context, skip, take int, filter domain.ContainsFilter, sort *domain.SortSpec) ([]domain.HistoricalEntry, int, error) {
	if skip < 0 {
		return nil, 0, domain.WrapError(domain.ErrInvalidInput, "get page", domain.ErrNegativeSkip)
	}
	if take < 0 {
		return nil, 0, domain.WrapError(domain.ErrInvalidInput, "get page", domain.ErrNegativeTake)
	}
	all, err := r.uow.store.query(filter, sort)
	if err != nil {
		return nil, 0, err
	}
	total := len(all)
	if skip >= total {
		return []domain.HistoricalEntry{}, total, nil
	}
	end := total
	if take < total-skip {
		end = skip + take
	}
	return all[skip:end], total, nil
}

func (r historyRepository) GetAll(_ context.Context, filter domain.ContainsFilter, sort *domain.SortSpec) ([]domain.HistoricalEntry, error) {
	return r.uow.store.query(filter, sort)
}

func (r historyRepository) Add(_ context.Context, entry *domain.HistoricalEntry) error {
	if entry == nil {
		return domain.WrapError(domain.ErrInvalidInput, "add historicals", fmt.Errorf("entity is nil"))
	}
	r.uow.mu.Lock()
	defer r.uow.mu.Unlock()
	r.uow.staged = append(r.uow.staged, entry)
	return nil
}
