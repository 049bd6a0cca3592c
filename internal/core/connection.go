// File: internal/core/connection.go
package core

import (
	"context"
	"database/sql"
)

// WithConn runs fn on a dedicated connection taken from db. The connection
// goes back to db on every path, including panics in fn.
func WithConn(ctx context.Context, db *sql.DB, fn func(conn *sql.Conn) error) error {
	conn, err := db.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()
	return fn(conn)
}
