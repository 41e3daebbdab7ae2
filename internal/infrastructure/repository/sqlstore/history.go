package sqlstore

import (
	"time"

	"github.com/kirillkom/document-insight/internal/core/domain"
	"github.com/kirillkom/document-insight/internal/core/sorting"
)

const historyTable = "historicals"

var historyMap = historyMapping()

func historyMapping() Mapping[domain.HistoricalEntry] {
	return Mapping[domain.HistoricalEntry]{
		Table:         historyTable,
		Columns:       []string{"id", "historical_type", "description", "creation_date"},
		FilterColumn:  "description",
		InsertColumns: []string{"historical_type", "description"},
		CreatedColumn: "creation_date",
		Schema:        sorting.History(),
		Scan: func(row rowScanner) (domain.HistoricalEntry, error) {
			var e domain.HistoricalEntry
			var kind int
			if err := row.Scan(&e.ID, &kind, &e.Description, &e.CreatedAt); err != nil {
				return domain.HistoricalEntry{}, err
			}
			e.Type = domain.HistoricalType(kind)
			e.CreatedAt = e.CreatedAt.UTC()
			return e, nil
		},
		InsertValues: func(e *domain.HistoricalEntry) []any {
			return []any{int(e.Type), e.Description}
		},
		Inserted: func(e *domain.HistoricalEntry, id int64, at time.Time) {
			e.ID = id
			e.CreatedAt = at
		},
	}
}

func historySchemaDDL(d Dialect) []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS historicals (
	id ` + d.SerialKey() + `,
	historical_type SMALLINT NOT NULL,
	description TEXT NOT NULL,
	creation_date ` + d.TimestampType() + ` NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_historicals_creation_date ON historicals(creation_date)`,
		`CREATE INDEX IF NOT EXISTS idx_historicals_type ON historicals(historical_type)`,
	}
}
