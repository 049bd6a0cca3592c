package easyorm

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/TechXTT/easyorm/internal/codec"
	"github.com/TechXTT/easyorm/internal/core"
	"github.com/TechXTT/easyorm/internal/plugin"
)

// Retrieve reads up to count rows of table starting at row start. A non-nil
// filter keeps only rows whose field equals the criterion.
//
// Records hydrated before a failure are returned together with the error.
// The session reaper runs afterwards whatever the result.
func Retrieve[T any](ctx context.Context, c *Client, table string, start, count int, filter *Filter) ([]T, error) {
	records := []T{}
	if err := c.check(table); err != nil {
		return records, err
	}
	if start < 0 {
		return records, &ArgumentError{Name: "start", Reason: "must not be negative"}
	}
	if count < 0 {
		return records, &ArgumentError{Name: "count", Reason: "must not be negative"}
	}
	desc, err := core.DescribeOf[T]()
	if err != nil {
		return records, err
	}
	var (
		filterCol string
		filterArg any
	)
	if filter != nil {
		f, err := filterField(desc, filter)
		if err != nil {
			return records, err
		}
		if filterArg, err = codec.ToParameter(f.Tag, filter.Criterion); err != nil {
			return records, fmt.Errorf("%w: %v", ErrCriteriaDataType, err)
		}
		filterCol = f.Column
	}

	defer c.reap(ctx)
	var query string
	err = core.WithConn(ctx, c.DB, func(conn *sql.Conn) error {
		ns, err := c.namespace(ctx, conn)
		if err != nil {
			return err
		}
		sb := core.NewSelect(c.Dialect, ns, table).Page(start, count)
		if filterCol != "" {
			sb.WhereEq(filterCol, filterArg)
		}
		var args []any
		query, args = sb.Build()
		c.logger.Debug("easyorm: retrieve", slog.String("sql", query))

		rows, err := conn.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		return hydrate(ctx, rows, desc, &records)
	})
	if err != nil {
		var rerr *recordError
		if errors.As(err, &rerr) {
			c.logger.Error("easyorm: retrieve failed", slog.String("table", table), slog.Any("err", rerr.err))
			return records, rerr.err
		}
		_, err = c.fail("retrieve", table, query, err)
		return records, err
	}
	return records, nil
}

// recordError marks a hydration failure that did not come from the driver.
type recordError struct{ err error }

func (e *recordError) Error() string { return e.err.Error() }
func (e *recordError) Unwrap() error { return e.err }

// hydrate scans every row into a new record, setting fields in descriptor
// order, and appends it to out.
func hydrate[T any](ctx context.Context, rows *sql.Rows, desc Descriptor, out *[]T) error {
	cols, err := rows.Columns()
	if err != nil {
		return err
	}
	pos := make([]int, len(desc.Fields))
	for i, f := range desc.Fields {
		pos[i] = -1
		for j, col := range cols {
			if strings.EqualFold(col, f.Column) {
				pos[i] = j
				break
			}
		}
		if pos[i] < 0 {
			return &recordError{fmt.Errorf("easyorm: column %q missing from result set", f.Column)}
		}
	}

	asPtr := reflect.TypeOf((*T)(nil)).Elem().Kind() == reflect.Ptr
	raw := make([]any, len(cols))
	dest := make([]any, len(cols))
	for i := range raw {
		dest[i] = &raw[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return err
		}
		ptr := reflect.New(desc.Type)
		elem := ptr.Elem()
		for i, f := range desc.Fields {
			if err := codec.FromColumn(f.Tag, raw[pos[i]], elem.FieldByIndex(f.Index)); err != nil {
				var derr *DeserializationError
				if errors.As(err, &derr) {
					derr.Field = f.Name
					return &recordError{derr}
				}
				return &recordError{fmt.Errorf("easyorm: field %s: %w", f.Name, err)}
			}
		}
		if err := plugin.AfterRetrieve(ctx, ptr.Interface()); err != nil {
			return &recordError{fmt.Errorf("easyorm: after retrieve: %w", err)}
		}
		if asPtr {
			*out = append(*out, ptr.Interface().(T))
		} else {
			*out = append(*out, elem.Interface().(T))
		}
	}
	return rows.Err()
}

// filterField resolves the filtered field and checks the criterion type.
func filterField(desc Descriptor, filter *Filter) (Field, error) {
	f, ok := desc.Lookup(filter.Field)
	if !ok {
		return Field{}, &ArgumentError{Name: "filter", Reason: fmt.Sprintf("unknown field %q", filter.Field)}
	}
	if filter.Criterion == nil {
		return Field{}, fmt.Errorf("%w: nil criterion for %s", ErrCriteriaDataType, f.Name)
	}
	if !criterionFits(f.Tag, core.TagOf(reflect.TypeOf(filter.Criterion))) {
		return Field{}, fmt.Errorf("%w: field %s is %s, criterion is %T",
			ErrCriteriaDataType, f.Name, f.Tag, filter.Criterion)
	}
	return f, nil
}

func criterionFits(field, crit core.TypeTag) bool {
	switch field {
	case core.Byte, core.Opaque:
		// envelopes are not comparable byte for byte
		return false
	case core.Int16, core.Int32, core.Int64:
		return crit == core.Int16 || crit == core.Int32 || crit == core.Int64
	case core.Char:
		return crit == core.Char || crit == core.Int32 || crit == core.String
	default:
		return field == crit
	}
}
