package crunch

// Enum is a convenience constraint documenting the "enumeration whose
// underlying representation is 32-bit signed" contract, grounded on the
// original library's crunch_enum.hpp. It doesn't add anything Number
// doesn't already provide — Go's `~int32` constraint term matches any
// named type whose underlying type is int32 — but it gives schema
// authors a name to reach for instead of writing out ~int32 themselves.
type Enum interface {
	~int32
}

// NewEnumField is NewScalarField specialized for enum-backed fields; it
// exists purely for readability at call sites that declare an
// enumerated field.
func NewEnumField[T Enum](id FieldId, presence Presence, inner *Scalar[T]) *ScalarField[T] {
	return NewScalarField(id, presence, inner)
}
