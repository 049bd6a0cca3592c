package easyorm

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/TechXTT/easyorm/internal/core"
)

// CreateTable creates table with one column per persisted field of T plus
// the synthetic primary key.
func CreateTable[T any](ctx context.Context, c *Client, table string) (Outcome, error) {
	if err := c.check(table); err != nil {
		return Fail, err
	}
	desc, err := core.DescribeOf[T]()
	if err != nil {
		return Fail, err
	}
	return CreateTableFor(ctx, c, table, desc)
}

// CreateTableFor creates table from an explicit descriptor.
func CreateTableFor(ctx context.Context, c *Client, table string, desc Descriptor) (Outcome, error) {
	if err := c.check(table); err != nil {
		return Fail, err
	}
	if err := desc.Validate(); err != nil {
		return Fail, err
	}

	var query string
	err := core.WithConn(ctx, c.DB, func(conn *sql.Conn) error {
		ns, err := c.namespace(ctx, conn)
		if err != nil {
			return err
		}
		query, _ = core.NewCreateTable(c.Dialect, ns, table, desc).Build()
		c.logger.Debug("easyorm: create table", slog.String("sql", query))
		_, err = conn.ExecContext(ctx, query)
		return err
	})
	if err != nil {
		return c.fail("create table", table, query, err)
	}
	return Success, nil
}
