package crunch

import (
	"math"
	"reflect"
)

// ScalarType is the set of value types a Scalar field may hold: any
// integer width, either float width, bool, or a named type whose
// underlying type is one of those (an Enum, see enum.go).
type ScalarType interface {
	Number | ~bool
}

// Scalar owns a value of primitive type T and the validators that
// govern it — the unwrapped inner value a ScalarField presence-wraps.
type Scalar[T ScalarType] struct {
	validators []Validator[T]
	value      T
}

// NewScalar constructs a Scalar with the given validators, applied in
// order on every Set.
func NewScalar[T ScalarType](validators ...Validator[T]) *Scalar[T] {
	return &Scalar[T]{validators: validators}
}

// Get returns the current value, whether or not it has been Set.
func (s *Scalar[T]) Get() T { return s.value }

// Set runs the validators against value and, if they all pass, stores
// it. On failure the prior value is preserved.
func (s *Scalar[T]) Set(value T, id FieldId) error {
	if err := runValidators(s.validators, value, id); err != nil {
		return err
	}
	s.value = value
	return nil
}

// SetWithoutValidation stores value unconditionally. It exists solely
// for the deserialization path, which validates the whole message only
// after every field has been populated from untrusted bytes.
func (s *Scalar[T]) SetWithoutValidation(value T) {
	s.value = value
}

// Validate re-runs this scalar's validators against its current value.
func (s *Scalar[T]) Validate(id FieldId) error {
	return runValidators(s.validators, s.value, id)
}

// ScalarField wraps a Scalar with a stable id, a presence policy, and
// an is-set flag.
type ScalarField[T ScalarType] struct {
	id         FieldId
	presence   Presence
	inner      *Scalar[T]
	isSet      bool
	byteWidth  int
	reflectKind reflect.Kind
}

// NewScalarField builds a presence-wrapped scalar field. byteWidth and
// the value's reflect.Kind are resolved once here, at schema
// construction, rather than on every encode/decode — the closest Go
// analogue to the original library's compile-time size computation.
func NewScalarField[T ScalarType](id FieldId, presence Presence, inner *Scalar[T]) *ScalarField[T] {
	var zero T
	kind := reflect.TypeOf(zero).Kind()
	return &ScalarField[T]{
		id:          id,
		presence:    presence,
		inner:       inner,
		byteWidth:   scalarKindWidth(kind),
		reflectKind: kind,
	}
}

// reflectKindOf reports v's reflect.Kind. It's a small generic wrapper
// so callers with only a zero value of a type parameter (as in
// NewMapField and the string/submessage map constructors) don't each
// repeat reflect.TypeOf.
func reflectKindOf[T any](v T) reflect.Kind {
	return reflect.TypeOf(v).Kind()
}

func scalarKindWidth(kind reflect.Kind) int {
	switch kind {
	case reflect.Bool, reflect.Int8, reflect.Uint8:
		return 1
	case reflect.Int16, reflect.Uint16:
		return 2
	case reflect.Int32, reflect.Uint32, reflect.Float32:
		return 4
	case reflect.Int64, reflect.Uint64, reflect.Float64:
		return 8
	}
	panic("crunch: unsupported scalar kind " + kind.String())
}

// ID implements Field.
func (f *ScalarField[T]) ID() FieldId { return f.id }

// FieldKind implements Field.
func (f *ScalarField[T]) FieldKind() FieldKind { return KindScalarField }

// ValidatePresence implements Field.
func (f *ScalarField[T]) ValidatePresence() error {
	return f.presence.checkPresence(f.isSet, f.id)
}

// Validate implements Field. An unset optional scalar's zero value is
// never checked against its validators — there's nothing meaningful to
// validate until the caller sets one.
func (f *ScalarField[T]) Validate() error {
	if !f.isSet {
		return nil
	}
	return f.inner.Validate(f.id)
}

// Submessage implements Field; scalars are never submessages.
func (f *ScalarField[T]) Submessage() (Message, bool) { return nil, false }

// Get returns the value and whether it has been set.
func (f *ScalarField[T]) Get() (T, bool) {
	if !f.isSet {
		var zero T
		return zero, false
	}
	return f.inner.Get(), true
}

// IsSet reports whether the field has a value.
func (f *ScalarField[T]) IsSet() bool { return f.isSet }

// Set validates and stores value.
func (f *ScalarField[T]) Set(value T) error {
	if err := f.inner.Set(value, f.id); err != nil {
		return err
	}
	f.isSet = true
	return nil
}

// SetWithoutValidation stores value unconditionally and marks the field
// set; used only by deserialization.
func (f *ScalarField[T]) SetWithoutValidation(value T) {
	f.inner.SetWithoutValidation(value)
	f.isSet = true
}

// ByteWidth returns the scalar's wire width in bytes: 1, 2, 4, or 8.
func (f *ScalarField[T]) ByteWidth() int { return f.byteWidth }

// bits returns the current value's bit pattern in a uint64 (signed
// integers sign-extended, every other type zero-extended), and setBits
// sets it back from one. Every scalar field's wire representation
// funnels through here regardless of its concrete Go type, using
// reflect to bridge the type parameter to the runtime width computed
// in NewScalarField. Array and map elements pay the same reflection
// cost through their own accessors (elementBits, bitsOfScalar); a
// scalar field pays it once per encode/decode rather than once per
// byte.
func (f *ScalarField[T]) bits() uint64 {
	v := reflect.ValueOf(f.inner.Get())
	switch v.Kind() {
	case reflect.Bool:
		if v.Bool() {
			return 1
		}
		return 0
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return uint64(v.Int())
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint()
	case reflect.Float32:
		return uint64(math.Float32bits(float32(v.Float())))
	case reflect.Float64:
		return math.Float64bits(v.Float())
	}
	panic("crunch: unsupported scalar kind " + v.Kind().String())
}

func (f *ScalarField[T]) setBits(bits uint64) {
	var value T
	rv := reflect.ValueOf(&value).Elem()
	switch rv.Kind() {
	case reflect.Bool:
		rv.SetBool(bits != 0)
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		rv.SetInt(signExtend(bits, f.byteWidth))
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		rv.SetUint(bits)
	case reflect.Float32:
		rv.SetFloat(float64(math.Float32frombits(uint32(bits))))
	case reflect.Float64:
		rv.SetFloat(math.Float64frombits(bits))
	default:
		panic("crunch: unsupported scalar kind " + rv.Kind().String())
	}
	f.SetWithoutValidation(value)
}

// clear resets the field to its zero value and unset state, for a
// decode that finds this field absent from the payload it's reading
// into a message object that may already hold a value from an earlier
// decode.
func (f *ScalarField[T]) clear() {
	var zero T
	f.inner.SetWithoutValidation(zero)
	f.isSet = false
}

func signExtend(bits uint64, width int) int64 {
	shift := uint(64 - width*8)
	return int64(bits<<shift) >> shift
}
