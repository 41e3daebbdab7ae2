package sorting

import (
	"time"

	"github.com/kirillkom/document-insight/internal/core/domain"
)

const historicalTypeDisplayExpr = "CASE historical_type WHEN 1 THEN 'Document Upload' WHEN 2 THEN 'IA' WHEN 3 THEN 'User Interaction' ELSE '' END"

// History is the sort schema for historical entries. Field names follow the wire
// names clients already send (Id, HistoricalType, Description, CreationDate).
func History() *Schema[domain.HistoricalEntry] {
	types := NewSchema("Value", Field[domain.HistoricalType]{
		Column:  "historical_type",
		Compare: By(func(t domain.HistoricalType) int { return int(t) }),
	}).Add("DisplayName", Field[domain.HistoricalType]{
		Column:  historicalTypeDisplayExpr,
		Compare: By(func(t domain.HistoricalType) string { return t.DisplayName() }),
	})

	s := NewSchema("Id", Field[domain.HistoricalEntry]{
		Column:  "id",
		Compare: By(func(e domain.HistoricalEntry) int64 { return e.ID }),
	}).Add("HistoricalType", Field[domain.HistoricalEntry]{
		Column:  "historical_type",
		Compare: By(func(e domain.HistoricalEntry) int { return int(e.Type) }),
	}).Add("Description", Field[domain.HistoricalEntry]{
		Column:  "description",
		Compare: By(func(e domain.HistoricalEntry) string { return e.Description }),
	}).Add("CreationDate", Field[domain.HistoricalEntry]{
		Column:  "creation_date",
		Compare: ByTime(func(e domain.HistoricalEntry) time.Time { return e.CreatedAt }),
	})
	return Nest(s, "HistoricalType", func(e domain.HistoricalEntry) domain.HistoricalType { return e.Type }, types)
}
