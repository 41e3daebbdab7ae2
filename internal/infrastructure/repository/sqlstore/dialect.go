package sqlstore

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect isolates the SQL differences between the supported databases.
// Queries are written with ? placeholders and rebound per dialect.
type Dialect interface {
	Name() string
	DriverName() string
	Rebind(query string) string
	// ContainsExpr returns a predicate testing that column contains the bound value.
	ContainsExpr(column string) string
	// CommitLock returns a statement serialising commits across processes, or "".
	CommitLock() string
	SerialKey() string
	TimestampType() string
	InitStatements() []string
}

func DialectFor(driver string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "postgres", "pgx":
		return postgresDialect{}, nil
	case "sqlite", "sqlite3":
		return sqliteDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

type postgresDialect struct{}

func (postgresDialect) Name() string       { return "postgres" }
func (postgresDialect) DriverName() string { return "pgx" }

func (postgresDialect) Rebind(query string) string {
	var b strings.Builder
	idx := 1
	for _, ch := range query {
		if ch == '?' {
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(idx))
			idx++
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

func (postgresDialect) ContainsExpr(column string) string {
	return "strpos(" + column + ", ?) > 0"
}

func (postgresDialect) CommitLock() string      { return "SELECT pg_advisory_xact_lock(?)" }
func (postgresDialect) SerialKey() string       { return "BIGSERIAL PRIMARY KEY" }
func (postgresDialect) TimestampType() string   { return "TIMESTAMPTZ" }
func (postgresDialect) InitStatements() []string { return nil }

type sqliteDialect struct{}

func (sqliteDialect) Name() string               { return "sqlite" }
func (sqliteDialect) DriverName() string         { return "sqlite" }
func (sqliteDialect) Rebind(query string) string { return query }

func (sqliteDialect) ContainsExpr(column string) string {
	return "instr(" + column + ", ?) > 0"
}

// SQLite runs with a single connection, which already serialises writers.
func (sqliteDialect) CommitLock() string    { return "" }
func (sqliteDialect) SerialKey() string     { return "INTEGER PRIMARY KEY AUTOINCREMENT" }
func (sqliteDialect) TimestampType() string { return "TIMESTAMP" }

func (sqliteDialect) InitStatements() []string {
	return []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
}
