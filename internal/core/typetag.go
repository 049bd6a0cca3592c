// File: internal/core/typetag.go
package core

// TypeTag is the semantic kind of a persisted field.
type TypeTag int

const (
	Int16 TypeTag = iota
	Int32
	Int64
	Bool
	Byte
	Char
	DateTime
	Decimal
	Double
	String
	Opaque
)

var tagNames = [...]string{
	Int16:    "Int16",
	Int32:    "Int32",
	Int64:    "Int64",
	Bool:     "Bool",
	Byte:     "Byte",
	Char:     "Char",
	DateTime: "DateTime",
	Decimal:  "Decimal",
	Double:   "Double",
	String:   "String",
	Opaque:   "Opaque",
}

func (t TypeTag) String() string {
	if t < 0 || int(t) >= len(tagNames) {
		return "Opaque"
	}
	return tagNames[t]
}

// Encoded reports whether values of this tag are stored as an opaque envelope.
func (t TypeTag) Encoded() bool {
	switch t {
	case Int16, Int32, Int64, Bool, Char, DateTime, Decimal, Double, String:
		return false
	default:
		return true
	}
}
