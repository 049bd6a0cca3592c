package dialect

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/TechXTT/easyorm/internal/core"
)

var mysqlColumns = map[core.TypeTag]string{
	core.Int16:    "SMALLINT",
	core.Int32:    "INT",
	core.Int64:    "BIGINT",
	core.Bool:     "TINYINT(1)",
	core.Byte:     "BLOB",
	core.Char:     "CHAR(1)",
	core.DateTime: "DATETIME(6)",
	core.Decimal:  "DECIMAL(38,10)",
	core.Double:   "DOUBLE",
	core.String:   "TEXT",
	core.Opaque:   "LONGBLOB",
}

// MySQL server error numbers.
const (
	mysqlTableExists   = 1050
	mysqlNoSuchTable   = 1146
	mysqlUnknownThread = 1094
)

type MySQL struct{}

func (MySQL) Name() string { return "mysql" }

func (MySQL) ColumnType(tag core.TypeTag) string { return columnType(mysqlColumns, tag) }

func (MySQL) PrimaryKeyDef() string {
	return core.PrimaryKey + " INT NOT NULL AUTO_INCREMENT"
}

func (MySQL) PrimaryKeyConstraint() string {
	return "PRIMARY KEY (" + core.PrimaryKey + ")"
}

func (MySQL) Placeholder(string, int) string { return "?" }

func (MySQL) Arg(_ string, v any) any { return v }

func (MySQL) Limit(start, count int) string {
	return fmt.Sprintf("LIMIT %d,%d", start, count)
}

func (MySQL) NamespaceQuery() string   { return "SELECT DATABASE();" }
func (MySQL) DefaultNamespace() string { return "" }

func (MySQL) Classify(err error) ErrorClass {
	var myErr *mysql.MySQLError
	if !errors.As(err, &myErr) {
		return ErrOther
	}
	switch myErr.Number {
	case mysqlTableExists:
		return ErrDuplicateTable
	case mysqlNoSuchTable:
		return ErrMissingTable
	default:
		return ErrOther
	}
}

const mysqlReapQuery = "SELECT id FROM information_schema.processlist WHERE time > ? AND id <> CONNECTION_ID() AND command <> 'Daemon';"

func (MySQL) Reap(ctx context.Context, conn *sql.Conn, threshold time.Duration) ([]int64, error) {
	ids, err := queryIDs(ctx, conn, mysqlReapQuery, int64(threshold/time.Second))
	if err != nil {
		return nil, err
	}
	var (
		killed []int64
		errs   []error
	)
	for _, id := range ids {
		if _, err := conn.ExecContext(ctx, fmt.Sprintf("KILL %d;", id)); err != nil {
			var myErr *mysql.MySQLError
			if errors.As(err, &myErr) && myErr.Number == mysqlUnknownThread {
				continue
			}
			errs = append(errs, fmt.Errorf("kill %d: %w", id, err))
			continue
		}
		killed = append(killed, id)
	}
	return killed, errors.Join(errs...)
}

func queryIDs(ctx context.Context, conn *sql.Conn, query string, args ...any) ([]int64, error) {
	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
