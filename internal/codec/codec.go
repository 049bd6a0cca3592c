// Package codec converts field values to bind parameters and driver column
// values back into fields.
package codec

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/TechXTT/easyorm/internal/core"
)

// ErrConvert is returned when a column value cannot be coerced into a field.
var ErrConvert = errors.New("cannot convert column value")

// DeserializationError reports an opaque column that could not be decoded
// into its field.
type DeserializationError struct {
	Field string
	Tag   core.TypeTag
	Err   error
}

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("deserialize %s field %q: %v", e.Tag, e.Field, e.Err)
}

func (e *DeserializationError) Unwrap() error { return e.Err }

// ToParameter converts a field value into the value bound for its column.
// Primitives pass through; Byte and Opaque values are wrapped in the opaque
// envelope. A nil pointer, slice, map or interface binds as NULL.
func ToParameter(tag core.TypeTag, v any) (any, error) {
	if isNil(v) {
		return nil, nil
	}
	if tag.Encoded() {
		return EncodeOpaque(v)
	}
	if tag != core.Char {
		return v, nil
	}
	// The zero character binds as the empty string.
	rv := reflect.ValueOf(v)
	switch {
	case rv.CanInt():
		if rv.Int() == 0 {
			return "", nil
		}
		return string(rune(rv.Int())), nil
	case rv.Kind() == reflect.String:
		return rv.String(), nil
	}
	return nil, fmt.Errorf("%w: %T is not a character", ErrConvert, v)
}

// FromColumn coerces a raw driver value into dst, which must be settable.
// NULL leaves dst at its zero value.
func FromColumn(tag core.TypeTag, raw any, dst reflect.Value) error {
	if raw == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}
	switch tag {
	case core.Int16, core.Int32, core.Int64:
		n, err := toInt64(raw)
		if err != nil {
			return err
		}
		return setInt(dst, n)
	case core.Bool:
		b, err := toBool(raw)
		if err != nil {
			return err
		}
		return set(dst, reflect.ValueOf(b))
	case core.Char:
		r, err := toRune(raw)
		if err != nil {
			return err
		}
		if dst.Kind() == reflect.String {
			if r == 0 {
				dst.SetString("")
			} else {
				dst.SetString(string(r))
			}
			return nil
		}
		return setInt(dst, int64(r))
	case core.DateTime:
		t, err := toTime(raw)
		if err != nil {
			return err
		}
		return set(dst, reflect.ValueOf(t))
	case core.Decimal:
		d, err := toDecimal(raw)
		if err != nil {
			return err
		}
		return set(dst, reflect.ValueOf(d))
	case core.Double:
		f, err := toFloat(raw)
		if err != nil {
			return err
		}
		if !dst.CanFloat() {
			return fmt.Errorf("%w: float into %s", ErrConvert, dst.Type())
		}
		dst.SetFloat(f)
		return nil
	case core.String:
		return set(dst, reflect.ValueOf(toString(raw)))
	default:
		return decodeInto(tag, raw, dst)
	}
}

func decodeInto(tag core.TypeTag, raw any, dst reflect.Value) error {
	var b []byte
	switch v := raw.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return &DeserializationError{Tag: tag, Err: fmt.Errorf("%w: %T is not a byte sequence", ErrConvert, raw)}
	}
	target := reflect.New(dst.Type())
	if err := DecodeOpaque(b, target.Interface()); err != nil {
		return &DeserializationError{Tag: tag, Err: err}
	}
	dst.Set(target.Elem())
	return nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Map, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

func set(dst, v reflect.Value) error {
	switch {
	case v.Type().AssignableTo(dst.Type()):
		dst.Set(v)
	case v.Type().ConvertibleTo(dst.Type()):
		dst.Set(v.Convert(dst.Type()))
	default:
		return fmt.Errorf("%w: %s into %s", ErrConvert, v.Type(), dst.Type())
	}
	return nil
}

func setInt(dst reflect.Value, n int64) error {
	switch {
	case dst.CanInt():
		if dst.OverflowInt(n) {
			return fmt.Errorf("%w: %d overflows %s", ErrConvert, n, dst.Type())
		}
		dst.SetInt(n)
	case dst.CanUint():
		if n < 0 || dst.OverflowUint(uint64(n)) {
			return fmt.Errorf("%w: %d overflows %s", ErrConvert, n, dst.Type())
		}
		dst.SetUint(uint64(n))
	default:
		return fmt.Errorf("%w: integer into %s", ErrConvert, dst.Type())
	}
	return nil
}

func toInt64(raw any) (int64, error) {
	switch v := raw.(type) {
	case []byte:
		return strconv.ParseInt(strings.TrimSpace(string(v)), 10, 64)
	case string:
		return strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	}
	rv := reflect.ValueOf(raw)
	switch {
	case rv.CanInt():
		return rv.Int(), nil
	case rv.CanUint():
		return int64(rv.Uint()), nil
	case rv.CanFloat():
		f := rv.Float()
		if f != float64(int64(f)) {
			return 0, fmt.Errorf("%w: %v is not integral", ErrConvert, f)
		}
		return int64(f), nil
	}
	return 0, fmt.Errorf("%w: %T to integer", ErrConvert, raw)
}

func toBool(raw any) (bool, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case []byte:
		return strconv.ParseBool(string(v))
	case string:
		return strconv.ParseBool(v)
	}
	n, err := toInt64(raw)
	if err != nil {
		return false, err
	}
	return n != 0, nil
}

func toRune(raw any) (rune, error) {
	switch v := raw.(type) {
	case string:
		if v == "" {
			return 0, nil
		}
		r, size := utf8.DecodeRuneInString(v)
		if r == utf8.RuneError && size <= 1 {
			return 0, fmt.Errorf("%w: %q is not valid UTF-8", ErrConvert, v)
		}
		return r, nil
	case []byte:
		return toRune(string(v))
	}
	n, err := toInt64(raw)
	return rune(n), err
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

func toTime(raw any) (time.Time, error) {
	var s string
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case []byte:
		s = string(v)
	case string:
		s = v
	default:
		return time.Time{}, fmt.Errorf("%w: %T to time", ErrConvert, raw)
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognised time %q", ErrConvert, s)
}

func toDecimal(raw any) (decimal.Decimal, error) {
	switch v := raw.(type) {
	case decimal.Decimal:
		return v, nil
	case []byte:
		return decimal.NewFromString(string(v))
	case string:
		return decimal.NewFromString(v)
	case float64:
		return decimal.NewFromFloat(v), nil
	case float32:
		return decimal.NewFromFloat32(v), nil
	}
	n, err := toInt64(raw)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return decimal.NewFromInt(n), nil
}

func toFloat(raw any) (float64, error) {
	switch v := raw.(type) {
	case []byte:
		return strconv.ParseFloat(string(v), 64)
	case string:
		return strconv.ParseFloat(v, 64)
	case decimal.Decimal:
		f, _ := v.Float64()
		return f, nil
	}
	rv := reflect.ValueOf(raw)
	switch {
	case rv.CanFloat():
		return rv.Float(), nil
	case rv.CanInt():
		return float64(rv.Int()), nil
	case rv.CanUint():
		return float64(rv.Uint()), nil
	}
	return 0, fmt.Errorf("%w: %T to float", ErrConvert, raw)
}

func toString(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
