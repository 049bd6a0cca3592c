package dialect

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/TechXTT/easyorm/internal/core"
)

// Decimals are kept as TEXT: a DECIMAL column has numeric affinity and
// would round-trip through float64.
var sqliteColumns = map[core.TypeTag]string{
	core.Int16:    "SMALLINT",
	core.Int32:    "INTEGER",
	core.Int64:    "BIGINT",
	core.Bool:     "BOOLEAN",
	core.Byte:     "BLOB",
	core.Char:     "CHARACTER(1)",
	core.DateTime: "DATETIME",
	core.Decimal:  "TEXT",
	core.Double:   "DOUBLE",
	core.String:   "TEXT",
	core.Opaque:   "BLOB",
}

type SQLite struct{}

func (SQLite) Name() string { return "sqlite3" }

func (SQLite) ColumnType(tag core.TypeTag) string { return columnType(sqliteColumns, tag) }

// An INTEGER PRIMARY KEY column aliases the rowid; there is no separate
// table constraint.
func (SQLite) PrimaryKeyDef() string {
	return core.PrimaryKey + " INTEGER PRIMARY KEY AUTOINCREMENT"
}

func (SQLite) PrimaryKeyConstraint() string { return "" }

func (SQLite) Placeholder(column string, _ int) string { return "@" + column }

func (SQLite) Arg(column string, v any) any { return sql.Named(column, v) }

func (SQLite) Limit(start, count int) string {
	return fmt.Sprintf("LIMIT %d,%d", start, count)
}

func (SQLite) NamespaceQuery() string   { return "" }
func (SQLite) DefaultNamespace() string { return "main" }

func (SQLite) Classify(err error) ErrorClass {
	var sqlErr sqlite3.Error
	if !errors.As(err, &sqlErr) {
		return ErrOther
	}
	msg := strings.ToLower(sqlErr.Error())
	switch {
	case strings.Contains(msg, "already exists"):
		return ErrDuplicateTable
	case strings.Contains(msg, "no such table"):
		return ErrMissingTable
	default:
		return ErrOther
	}
}

// Reap is a no-op: an embedded database has no server sessions.
func (SQLite) Reap(context.Context, *sql.Conn, time.Duration) ([]int64, error) {
	return nil, nil
}
