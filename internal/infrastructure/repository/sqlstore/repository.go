package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/kirillkom/document-insight/internal/core/domain"
	"github.com/kirillkom/document-insight/internal/core/sorting"
)

type rowScanner interface {
	Scan(dest ...any) error
}

// Mapping describes how an entity type is stored. It is declared once per entity.
type Mapping[T any] struct {
	Table         string
	Columns       []string
	FilterColumn  string
	InsertColumns []string
	// CreatedColumn is written with the commit time on insert.
	CreatedColumn string
	Schema        *sorting.Schema[T]

	Scan         func(row rowScanner) (T, error)
	InsertValues func(entity *T) []any
	// Inserted receives the store-assigned key and insertion time.
	Inserted func(entity *T, id int64, at time.Time)
}

// Repository serves filtered, sorted and paged reads for one entity type and stages
// inserts on the unit of work it belongs to.
type Repository[T any] struct {
	db      *sql.DB
	dialect Dialect
	mapping Mapping[T]
	stage   func(insert pendingInsert)
}

func (r *Repository[T]) GetPage(ctx context.Context, skip, take int, filter domain.ContainsFilter, sort *domain.SortSpec) ([]T, int, error) {
	if skip < 0 {
		return nil, 0, domain.WrapError(domain.ErrInvalidInput, "get page", domain.ErrNegativeSkip)
	}
	if take < 0 {
		return nil, 0, domain.WrapError(domain.ErrInvalidInput, "get page", domain.ErrNegativeTake)
	}
	ordering, err := r.mapping.Schema.Resolve(sort)
	if err != nil {
		return nil, 0, err
	}

	where, args := r.where(filter)

	var total int
	countQuery := r.dialect.Rebind("SELECT COUNT(*) FROM " + r.mapping.Table + where)
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", r.mapping.Table, err)
	}
	if take == 0 || skip >= total {
		return []T{}, total, nil
	}

	query := r.selectSQL(where, ordering) + " LIMIT ? OFFSET ?"
	items, err := r.query(ctx, query, append(args, take, skip)...)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *Repository[T]) GetAll(ctx context.Context, filter domain.ContainsFilter, sort *domain.SortSpec) ([]T, error) {
	ordering, err := r.mapping.Schema.Resolve(sort)
	if err != nil {
		return nil, err
	}
	where, args := r.where(filter)
	return r.query(ctx, r.selectSQL(where, ordering), args...)
}

// Add stages entity for insertion on the next commit. Its key and timestamp are
// filled in once the commit succeeds.
func (r *Repository[T]) Add(_ context.Context, entity *T) error {
	if entity == nil {
		return domain.WrapError(domain.ErrInvalidInput, "add "+r.mapping.Table, fmt.Errorf("entity is nil"))
	}
	if r.stage == nil {
		return fmt.Errorf("add %s: repository is read-only", r.mapping.Table)
	}

	columns := append(append([]string{}, r.mapping.InsertColumns...), r.mapping.CreatedColumn)
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	query := r.dialect.Rebind(fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		r.mapping.Table, strings.Join(columns, ", "), placeholders,
	))
	values := r.mapping.InsertValues(entity)

	r.stage(func(ctx context.Context, tx *sql.Tx, now time.Time) (func(), error) {
		args := append(append([]any{}, values...), now)
		var id int64
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
			return nil, fmt.Errorf("insert %s: %w", r.mapping.Table, err)
		}
		return func() { r.mapping.Inserted(entity, id, now) }, nil
	})
	return nil
}

func (r *Repository[T]) where(filter domain.ContainsFilter) (string, []any) {
	if !filter.Active() || r.mapping.FilterColumn == "" {
		return "", nil
	}
	return " WHERE " + r.dialect.ContainsExpr(r.mapping.FilterColumn), []any{filter.Value}
}

func (r *Repository[T]) selectSQL(where string, ordering sorting.Ordering[T]) string {
	return "SELECT " + strings.Join(r.mapping.Columns, ", ") +
		" FROM " + r.mapping.Table + where +
		" ORDER BY " + ordering.Clause()
}

func (r *Repository[T]) query(ctx context.Context, query string, args ...any) ([]T, error) {
	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", r.mapping.Table, err)
	}
	defer rows.Close()

	items := make([]T, 0)
	for rows.Next() {
		item, err := r.mapping.Scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", r.mapping.Table, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", r.mapping.Table, err)
	}
	return items, nil
}
