// Package dialect holds the per-database pieces of SQL generation: column
// type tables, bind parameter syntax, pagination, driver error
// classification and session reaping.
package dialect

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/TechXTT/easyorm/internal/core"
)

// ErrorClass buckets driver errors that map onto a dedicated outcome.
type ErrorClass int

const (
	ErrOther ErrorClass = iota
	ErrDuplicateTable
	ErrMissingTable
)

// Dialect is everything EasyORM needs to know about one database engine.
type Dialect interface {
	core.Syntax

	// Name is the database/sql driver name.
	Name() string
	// NamespaceQuery returns the statement resolving the current database
	// (or schema). An empty string means DefaultNamespace is used as is.
	NamespaceQuery() string
	DefaultNamespace() string
	// Classify inspects a driver error.
	Classify(err error) ErrorClass
	// Reap terminates sessions older than threshold and returns their ids.
	Reap(ctx context.Context, conn *sql.Conn, threshold time.Duration) ([]int64, error)
}

// For returns the dialect registered under a driver name.
func For(driver string) (Dialect, error) {
	switch strings.ToLower(driver) {
	case "mysql", "":
		return MySQL{}, nil
	case "postgres", "postgresql", "pq":
		return Postgres{}, nil
	case "sqlite3", "sqlite":
		return SQLite{}, nil
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
}

// columnType looks a tag up in a static table, falling back to the opaque type.
func columnType(table map[core.TypeTag]string, tag core.TypeTag) string {
	if t, ok := table[tag]; ok {
		return t
	}
	return table[core.Opaque]
}
