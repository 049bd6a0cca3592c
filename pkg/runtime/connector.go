package runtime

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// NormalizeDSN applies per-driver defaults EasyORM relies on.
func NormalizeDSN(driver, dsn string) (string, error) {
	if dsn == "" {
		return "", fmt.Errorf("DSN is empty")
	}
	switch driver {
	case "mysql":
		// DATETIME columns must come back as time.Time.
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return "", fmt.Errorf("parse mysql DSN: %w", err)
		}
		cfg.ParseTime = true
		return cfg.FormatDSN(), nil
	case "postgres":
		// Ensure SSL mode is disabled by default if not specified.
		if (strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")) &&
			!strings.Contains(dsn, "sslmode=") {
			sep := "?"
			if strings.Contains(dsn, "?") {
				sep = "&"
			}
			dsn = dsn + sep + "sslmode=disable"
		}
		return dsn, nil
	default:
		return dsn, nil
	}
}

// Connect opens a database handle for driver using the given DSN.
func Connect(driver, dsn string) (*sql.DB, error) {
	dsn, err := NormalizeDSN(driver, dsn)
	if err != nil {
		return nil, err
	}
	return sql.Open(driver, dsn)
}
