// File: internal/core/builder.go
package core

import (
	"fmt"
	"strings"
)

// Syntax is the part of a SQL dialect the statement builders need.
type Syntax interface {
	// ColumnType maps a TypeTag onto a column type. Unknown tags map to the
	// opaque blob type.
	ColumnType(tag TypeTag) string
	// PrimaryKeyDef is the column definition of the synthetic key.
	PrimaryKeyDef() string
	// PrimaryKeyConstraint is the trailing table constraint, or "".
	PrimaryKeyConstraint() string
	// Placeholder renders the n-th (1-based) bind parameter for column.
	Placeholder(column string, n int) string
	// Arg wraps a bound value the way the driver expects it.
	Arg(column string, v any) any
	// Limit renders the pagination clause.
	Limit(start, count int) string
}

func qualify(namespace, table string) string {
	if namespace == "" {
		return table
	}
	return namespace + "." + table
}

// CreateTableBuilder renders CREATE TABLE for a descriptor.
type CreateTableBuilder struct {
	syntax    Syntax
	namespace string
	table     string
	desc      Descriptor
}

func NewCreateTable(s Syntax, namespace, table string, d Descriptor) *CreateTableBuilder {
	return &CreateTableBuilder{syntax: s, namespace: namespace, table: table, desc: d}
}

// Build assembles the statement. CREATE TABLE takes no arguments.
func (b *CreateTableBuilder) Build() (string, []any) {
	defs := make([]string, 0, len(b.desc.Fields)+2)
	defs = append(defs, b.syntax.PrimaryKeyDef())
	for _, f := range b.desc.Fields {
		defs = append(defs, f.Column+" "+b.syntax.ColumnType(f.Tag))
	}
	if c := b.syntax.PrimaryKeyConstraint(); c != "" {
		defs = append(defs, c)
	}
	query := fmt.Sprintf("CREATE TABLE %s (%s);", qualify(b.namespace, b.table), strings.Join(defs, ", "))
	return query, nil
}

// InsertBuilder renders a parameterised INSERT for one record.
type InsertBuilder struct {
	syntax    Syntax
	namespace string
	table     string
	desc      Descriptor
	values    []any
}

func NewInsert(s Syntax, namespace, table string, d Descriptor) *InsertBuilder {
	return &InsertBuilder{syntax: s, namespace: namespace, table: table, desc: d}
}

// Values sets the wire values in descriptor order.
func (b *InsertBuilder) Values(vals ...any) *InsertBuilder {
	b.values = vals
	return b
}

// Build assembles the statement and its bound arguments.
func (b *InsertBuilder) Build() (string, []any) {
	cols := b.desc.Columns()
	params := make([]string, len(b.desc.Fields))
	args := make([]any, 0, len(b.values))
	for i, f := range b.desc.Fields {
		params[i] = b.syntax.Placeholder(f.Column, i+1)
		if i < len(b.values) {
			args = append(args, b.syntax.Arg(f.Column, b.values[i]))
		}
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s);",
		qualify(b.namespace, b.table), strings.Join(cols, ","), strings.Join(params, ","))
	return query, args
}

// SelectBuilder renders a paginated SELECT * with an optional equality filter.
type SelectBuilder struct {
	syntax    Syntax
	namespace string
	table     string
	where     string
	args      []any
	start     int
	count     int
}

func NewSelect(s Syntax, namespace, table string) *SelectBuilder {
	return &SelectBuilder{syntax: s, namespace: namespace, table: table}
}

// WhereEq restricts the result to rows whose column equals the bound value.
func (b *SelectBuilder) WhereEq(column string, v any) *SelectBuilder {
	b.where = column + " = " + b.syntax.Placeholder(column, 1)
	b.args = []any{b.syntax.Arg(column, v)}
	return b
}

// Page sets the pagination window.
func (b *SelectBuilder) Page(start, count int) *SelectBuilder {
	b.start = start
	b.count = count
	return b
}

// Build assembles the statement and its bound arguments.
func (b *SelectBuilder) Build() (string, []any) {
	parts := []string{"SELECT * FROM", qualify(b.namespace, b.table)}
	if b.where != "" {
		parts = append(parts, "WHERE", b.where)
	}
	parts = append(parts, b.syntax.Limit(b.start, b.count))
	return strings.Join(parts, " ") + ";", b.args
}
