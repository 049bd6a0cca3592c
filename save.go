package easyorm

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/TechXTT/easyorm/internal/codec"
	"github.com/TechXTT/easyorm/internal/core"
	"github.com/TechXTT/easyorm/internal/plugin"
)

// Save inserts rec into table. Field values are always bound as statement
// parameters. The session reaper runs afterwards whatever the result; its
// own failures never change the returned outcome.
func Save[T any](ctx context.Context, c *Client, table string, rec T) (Outcome, error) {
	if err := c.check(table); err != nil {
		return Fail, err
	}
	desc, err := core.DescribeOf[T]()
	if err != nil {
		return Fail, err
	}

	rv := reflect.ValueOf(rec)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return Fail, &ArgumentError{Name: "record", Reason: "nil pointer"}
		}
		rv = rv.Elem()
	}
	// Work on an addressable copy so pointer-receiver hooks apply.
	ptr := reflect.New(desc.Type)
	ptr.Elem().Set(rv)
	if err := plugin.BeforeSave(ctx, ptr.Interface()); err != nil {
		return Fail, fmt.Errorf("easyorm: before save: %w", err)
	}

	vals, err := parameters(desc, ptr.Elem())
	if err != nil {
		return Fail, err
	}

	defer c.reap(ctx)
	var query string
	err = core.WithConn(ctx, c.DB, func(conn *sql.Conn) error {
		ns, err := c.namespace(ctx, conn)
		if err != nil {
			return err
		}
		var args []any
		query, args = core.NewInsert(c.Dialect, ns, table, desc).Values(vals...).Build()
		c.logger.Debug("easyorm: save", slog.String("sql", query), slog.Int("args", len(args)))
		_, err = conn.ExecContext(ctx, query, args...)
		return err
	})
	if err != nil {
		return c.fail("save", table, query, err)
	}
	return Success, nil
}

// parameters converts the fields of rv into bind values in descriptor order.
func parameters(desc Descriptor, rv reflect.Value) ([]any, error) {
	vals := make([]any, len(desc.Fields))
	for i, f := range desc.Fields {
		v, err := codec.ToParameter(f.Tag, rv.FieldByIndex(f.Index).Interface())
		if err != nil {
			return nil, fmt.Errorf("easyorm: field %s: %w", f.Name, err)
		}
		vals[i] = v
	}
	return vals, nil
}
