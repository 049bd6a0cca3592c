package easyorm

import "github.com/TechXTT/easyorm/internal/core"

type (
	// Descriptor is the ordered list of persisted fields of a record type.
	Descriptor = core.Descriptor
	Field      = core.Field
	TypeTag    = core.TypeTag

	// Describer lets a record type declare its descriptor instead of having
	// it derived by reflection.
	Describer = core.Describer
)

const (
	Int16    = core.Int16
	Int32    = core.Int32
	Int64    = core.Int64
	Bool     = core.Bool
	Byte     = core.Byte
	Char     = core.Char
	DateTime = core.DateTime
	Decimal  = core.Decimal
	Double   = core.Double
	String   = core.String
	Opaque   = core.Opaque
)

// PrimaryKey is the synthetic auto-increment column added to every table.
const PrimaryKey = core.PrimaryKey

// Describe returns the descriptor of T.
func Describe[T any]() (Descriptor, error) {
	return core.DescribeOf[T]()
}

// Filter restricts a read to rows whose field equals Criterion.
type Filter struct {
	Field     string
	Criterion any
}
