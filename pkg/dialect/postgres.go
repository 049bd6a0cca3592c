package dialect

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/TechXTT/easyorm/internal/core"
)

var postgresColumns = map[core.TypeTag]string{
	core.Int16:    "SMALLINT",
	core.Int32:    "INTEGER",
	core.Int64:    "BIGINT",
	core.Bool:     "BOOLEAN",
	core.Byte:     "BYTEA",
	core.Char:     "CHAR(1)",
	core.DateTime: "TIMESTAMP",
	core.Decimal:  "NUMERIC",
	core.Double:   "DOUBLE PRECISION",
	core.String:   "TEXT",
	core.Opaque:   "BYTEA",
}

// SQLSTATE codes.
const (
	pgDuplicateTable = "42P07"
	pgUndefinedTable = "42P01"
)

type Postgres struct{}

func (Postgres) Name() string { return "postgres" }

func (Postgres) ColumnType(tag core.TypeTag) string { return columnType(postgresColumns, tag) }

func (Postgres) PrimaryKeyDef() string {
	return core.PrimaryKey + " SERIAL NOT NULL"
}

func (Postgres) PrimaryKeyConstraint() string {
	return "PRIMARY KEY (" + core.PrimaryKey + ")"
}

func (Postgres) Placeholder(_ string, n int) string { return fmt.Sprintf("$%d", n) }

func (Postgres) Arg(_ string, v any) any { return v }

func (Postgres) Limit(start, count int) string {
	return fmt.Sprintf("LIMIT %d OFFSET %d", count, start)
}

// Unqualified names resolve against the search path, so the schema stands in
// for MySQL's database.
func (Postgres) NamespaceQuery() string   { return "SELECT current_schema();" }
func (Postgres) DefaultNamespace() string { return "public" }

func (Postgres) Classify(err error) ErrorClass {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return ErrOther
	}
	switch pqErr.Code {
	case pgDuplicateTable:
		return ErrDuplicateTable
	case pgUndefinedTable:
		return ErrMissingTable
	default:
		return ErrOther
	}
}

const postgresReapQuery = `SELECT pid FROM (
  SELECT pid, pg_terminate_backend(pid) AS terminated
  FROM pg_stat_activity
  WHERE datname = current_database()
    AND pid <> pg_backend_pid()
    AND now() - COALESCE(query_start, backend_start) > make_interval(secs => $1)
) s WHERE terminated;`

func (Postgres) Reap(ctx context.Context, conn *sql.Conn, threshold time.Duration) ([]int64, error) {
	return queryIDs(ctx, conn, postgresReapQuery, threshold.Seconds())
}
