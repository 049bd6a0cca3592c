package easyorm

import (
	"errors"
	"fmt"

	"github.com/TechXTT/easyorm/internal/codec"
)

var (
	// ErrConnectionUndefined is returned when an operation runs on a nil
	// client or a client without a database handle. No SQL is issued.
	ErrConnectionUndefined = errors.New("easyorm: connection undefined")

	// ErrCriteriaDataType is returned when a filter criterion does not match
	// the type of the field it filters on.
	ErrCriteriaDataType = errors.New("easyorm: criteria data type mismatch")
)

// DeserializationError reports an opaque column that could not be decoded
// into its field.
type DeserializationError = codec.DeserializationError

// ArgumentError reports an invalid operation argument. No SQL is issued.
type ArgumentError struct {
	Name   string
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("easyorm: invalid argument %s: %s", e.Name, e.Reason)
}

// DriverError wraps a failure raised by the database driver.
type DriverError struct {
	Op        string
	Table     string
	Statement string
	Outcome   Outcome
	Err       error
}

func (e *DriverError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("easyorm: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("easyorm: %s %s: %v", e.Op, e.Table, e.Err)
}

func (e *DriverError) Unwrap() error { return e.Err }
