package crunch

import "fmt"

// A Kind identifies the category of a codec Error. There are no
// user-defined kinds; only the values enumerated below are valid.
type Kind uint8

const (
	// KindIntegrity means the checksum trailer did not match the
	// decoded payload.
	KindIntegrity Kind = iota + 1
	// KindDeserialization means the wire bytes were structurally
	// malformed: truncated buffer, bad varint, unknown field id, wrong
	// wire type, or a length that overflows the buffer.
	KindDeserialization
	// KindValidation means a validator, presence check, or cross-field
	// invariant rejected a value.
	KindValidation
	// KindInvalidMessageID means a header's message id did not match
	// the expected type, or matched no type known to a Decoder.
	KindInvalidMessageID
	// KindInvalidFormat means a header's format byte did not match the
	// serdes policy in use.
	KindInvalidFormat
	// KindCapacityExceeded means an operation would exceed a
	// compile-time capacity: an array Add, a map Insert, a String Set,
	// or a decoded length greater than the declared maximum.
	KindCapacityExceeded

	minKind = KindIntegrity
	maxKind = KindCapacityExceeded
)

// String returns the kind's name. Hand-written rather than generated by
// stringer, to avoid adding a code-generation dependency for six
// constants.
func (k Kind) String() string {
	switch k {
	case KindIntegrity:
		return "Integrity"
	case KindDeserialization:
		return "Deserialization"
	case KindValidation:
		return "Validation"
	case KindInvalidMessageID:
		return "InvalidMessageId"
	case KindInvalidFormat:
		return "InvalidFormat"
	case KindCapacityExceeded:
		return "CapacityExceeded"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

func (k Kind) valid() bool {
	return k >= minKind && k <= maxKind
}
