// File: internal/core/descriptor.go
package core

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// PrimaryKey is the synthetic auto-increment column every table carries.
const PrimaryKey = "primaryId"

var (
	ErrNotStruct   = errors.New("record type must be a struct")
	ErrNoFields    = errors.New("record type has no persisted fields")
	ErrInvalidName = errors.New("invalid column name")
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidIdent reports whether s can be used unquoted as a table or column name.
func ValidIdent(s string) bool {
	return identRe.MatchString(s)
}

// Field is one persisted struct field.
type Field struct {
	Name   string  // Go struct field name
	Column string  // column name in SQL
	Tag    TypeTag // semantic type
	Index  []int   // reflect field index path
}

// Descriptor is the ordered field list of a record type. Schema creation,
// inserts and row hydration all iterate it in the same order.
type Descriptor struct {
	Type   reflect.Type
	Fields []Field
}

// Columns returns the column names in descriptor order.
func (d Descriptor) Columns() []string {
	cols := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		cols[i] = f.Column
	}
	return cols
}

// Lookup finds a field by Go name or column name, case-insensitively.
func (d Descriptor) Lookup(name string) (Field, bool) {
	for _, f := range d.Fields {
		if strings.EqualFold(f.Column, name) || strings.EqualFold(f.Name, name) {
			return f, true
		}
	}
	return Field{}, false
}

// Validate checks the column rules every descriptor must satisfy.
func (d Descriptor) Validate() error {
	if len(d.Fields) == 0 {
		return ErrNoFields
	}
	seen := make(map[string]bool, len(d.Fields))
	for _, f := range d.Fields {
		if !ValidIdent(f.Column) {
			return fmt.Errorf("%w: %q", ErrInvalidName, f.Column)
		}
		key := strings.ToLower(f.Column)
		if key == strings.ToLower(PrimaryKey) {
			return fmt.Errorf("%w: %q is reserved", ErrInvalidName, f.Column)
		}
		if seen[key] {
			return fmt.Errorf("%w: duplicate column %q", ErrInvalidName, f.Column)
		}
		seen[key] = true
	}
	return nil
}

// Describer is implemented by record types that declare their own
// descriptor instead of relying on reflection.
type Describer interface {
	Descriptor() Descriptor
}

var (
	timeType    = reflect.TypeOf(time.Time{})
	decimalType = reflect.TypeOf(decimal.Decimal{})
	describerT  = reflect.TypeOf((*Describer)(nil)).Elem()
)

var cache sync.Map // reflect.Type -> Descriptor

// DescribeOf returns the descriptor of T.
func DescribeOf[T any]() (Descriptor, error) {
	return Describe(reflect.TypeOf((*T)(nil)).Elem())
}

// Describe returns the descriptor of a struct type (or pointer to one).
// Results are cached, so repeated calls yield the identical field sequence.
func Describe(t reflect.Type) (Descriptor, error) {
	if t == nil {
		return Descriptor{}, ErrNotStruct
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return Descriptor{}, fmt.Errorf("%w: got %s", ErrNotStruct, t)
	}
	if d, ok := cache.Load(t); ok {
		return d.(Descriptor).clone(), nil
	}

	var d Descriptor
	switch {
	case t.Implements(describerT):
		d = reflect.Zero(t).Interface().(Describer).Descriptor()
	case reflect.PointerTo(t).Implements(describerT):
		d = reflect.New(t).Interface().(Describer).Descriptor()
	default:
		d = Descriptor{Fields: structFields(t)}
	}
	d.Type = t
	d.Fields = append([]Field(nil), d.Fields...)
	if err := resolveIndexes(t, d.Fields); err != nil {
		return Descriptor{}, fmt.Errorf("describe %s: %w", t, err)
	}
	if err := d.Validate(); err != nil {
		return Descriptor{}, fmt.Errorf("describe %s: %w", t, err)
	}
	actual, _ := cache.LoadOrStore(t, d)
	return actual.(Descriptor).clone(), nil
}

// clone copies the field list so callers cannot modify the cached entry.
func (d Descriptor) clone() Descriptor {
	fields := make([]Field, len(d.Fields))
	for i, f := range d.Fields {
		f.Index = append([]int(nil), f.Index...)
		fields[i] = f
	}
	d.Fields = fields
	return d
}

func structFields(t reflect.Type) []Field {
	var fields []Field
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name, opts := parseTag(sf.Tag.Get("orm"))
		if name == "-" && opts == "" {
			continue
		}
		if name == "" {
			name = sf.Name
		}
		tag := TagOf(sf.Type)
		if opts == "char" {
			tag = Char
		}
		fields = append(fields, Field{
			Name:   sf.Name,
			Column: name,
			Tag:    tag,
			Index:  sf.Index,
		})
	}
	return fields
}

// resolveIndexes fills in field indexes for hand-written descriptors.
func resolveIndexes(t reflect.Type, fields []Field) error {
	for i := range fields {
		f := &fields[i]
		if len(f.Index) > 0 {
			continue
		}
		sf, ok := t.FieldByName(f.Name)
		if !ok || !sf.IsExported() {
			return fmt.Errorf("%w: no exported field %q", ErrInvalidName, f.Name)
		}
		f.Index = sf.Index
		if f.Column == "" {
			f.Column = f.Name
		}
	}
	return nil
}

func parseTag(tag string) (string, string) {
	name, opts, _ := strings.Cut(tag, ",")
	return name, opts
}

// TagOf maps a Go type onto its TypeTag. Anything without a native column
// representation is Opaque.
func TagOf(t reflect.Type) TypeTag {
	switch t {
	case timeType:
		return DateTime
	case decimalType:
		return Decimal
	}
	switch t.Kind() {
	case reflect.Int16:
		return Int16
	case reflect.Int32:
		return Int32
	case reflect.Int, reflect.Int64:
		return Int64
	case reflect.Bool:
		return Bool
	case reflect.Uint8:
		return Byte
	case reflect.Float32, reflect.Float64:
		return Double
	case reflect.String:
		return String
	default:
		return Opaque
	}
}
