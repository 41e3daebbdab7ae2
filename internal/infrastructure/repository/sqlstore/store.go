package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/kirillkom/document-insight/internal/core/domain"
	"github.com/kirillkom/document-insight/internal/core/ports"
)

// Advisory lock keys; commits and schema bootstrap use separate keys.
const (
	schemaLockKey int64 = 2024032501
	commitLockKey int64 = 2024032502
)

// Store hands out units of work over one database.
type Store struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect, now: time.Now}
}

// Open connects using the driver's dialect. SQLite is limited to one connection so
// that in-memory databases are shared and writers are serialised.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, Dialect, error) {
	dialect, err := DialectFor(driver)
	if err != nil {
		return nil, nil, err
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("sql open: %w", err)
	}
	if dialect.Name() == "sqlite" {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("db ping: %w", err)
	}
	for _, stmt := range dialect.InitStatements() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("init %s: %w", dialect.Name(), err)
		}
	}
	return db, dialect, nil
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across concurrent startups.
	if lock := s.dialect.CommitLock(); lock != "" {
		if _, err := tx.ExecContext(ctx, s.dialect.Rebind(lock), schemaLockKey); err != nil {
			return fmt.Errorf("acquire schema lock: %w", err)
		}
	}

	for _, stmt := range historySchemaDDL(s.dialect) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("execute schema ddl: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (s *Store) Begin(_ context.Context) (ports.UnitOfWork, error) {
	uow := &UnitOfWork{
		db:      s.db,
		dialect: s.dialect,
		lockKey: commitLockKey,
		now:     s.now,
	}
	uow.history = &Repository[domain.HistoricalEntry]{
		db:      s.db,
		dialect: s.dialect,
		mapping: historyMap,
		stage:   uow.stage,
	}
	return uow, nil
}
