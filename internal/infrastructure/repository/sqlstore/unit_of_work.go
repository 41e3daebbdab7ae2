package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/kirillkom/document-insight/internal/core/domain"
	"github.com/kirillkom/document-insight/internal/core/ports"
)

// pendingInsert writes one row and returns the step that publishes its key to the
// caller's entity. That step only runs after the transaction commits.
type pendingInsert func(ctx context.Context, tx *sql.Tx, now time.Time) (func(), error)

// UnitOfWork collects staged inserts for one request and writes them in a single
// transaction. It is not shared between requests.
type UnitOfWork struct {
	db      *sql.DB
	dialect Dialect
	lockKey int64
	now     func() time.Time

	mu      sync.Mutex
	pending []pendingInsert
	closed  bool

	history *Repository[domain.HistoricalEntry]
}

func (u *UnitOfWork) History() ports.HistoryRepository {
	return u.history
}

func (u *UnitOfWork) stage(insert pendingInsert) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.pending = append(u.pending, insert)
}

// Commit writes every staged insert and returns how many were written. Staged
// inserts are discarded whether or not the commit succeeds.
func (u *UnitOfWork) Commit(ctx context.Context) (int, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.closed {
		return 0, fmt.Errorf("commit: unit of work is closed")
	}
	pending := u.pending
	u.pending = nil
	if len(pending) == 0 {
		return 0, nil
	}

	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin commit tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if lock := u.dialect.CommitLock(); lock != "" {
		if _, err := tx.ExecContext(ctx, u.dialect.Rebind(lock), u.lockKey); err != nil {
			return 0, fmt.Errorf("acquire commit lock: %w", err)
		}
	}

	now := u.now().UTC().Truncate(time.Microsecond)
	applied := make([]func(), 0, len(pending))
	for _, insert := range pending {
		apply, err := insert(ctx, tx, now)
		if err != nil {
			return 0, err
		}
		applied = append(applied, apply)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	for _, apply := range applied {
		apply()
	}
	return len(pending), nil
}

// Close discards anything still staged.
func (u *UnitOfWork) Close() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.pending = nil
	u.closed = true
	return nil
}
