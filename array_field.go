package crunch

import (
	"math"
	"reflect"
)

// ArrayField owns a fixed-capacity sequence of scalar elements with a
// current length, for a scalar Element type. There is no presence flag:
// "set" means length > 0, and that's expressed, if desired, with a
// LengthAtLeast(1) size validator rather than a separate flag.
//
// The fixed capacity is realized the way Go idiomatically expresses
// "no growth allowed": elements is a slice pre-allocated to cap
// maxSize that Add never grows past.
type ArrayField[T ScalarType] struct {
	id                FieldId
	maxSize           int
	elements          []T
	elementValidators []Validator[T]
	sizeValidators    []SizeValidator
	unique            func([]T, FieldId) error
	byteWidth         int
}

// ArrayFieldOption configures an ArrayField at construction.
type ArrayFieldOption[T ScalarType] func(*ArrayField[T])

// WithElementValidators runs each validator against every element
// during Validate, in addition to the array's own container-level
// checks.
func WithElementValidators[T ScalarType](validators ...Validator[T]) ArrayFieldOption[T] {
	return func(f *ArrayField[T]) { f.elementValidators = validators }
}

// WithSizeValidators attaches Length/LengthAtLeast/LengthAtMost checks
// against the array's current length.
func WithSizeValidators[T ScalarType](validators ...SizeValidator) ArrayFieldOption[T] {
	return func(f *ArrayField[T]) { f.sizeValidators = validators }
}

// WithUnique requires every element to be pairwise distinct.
func WithUnique[T ScalarType]() ArrayFieldOption[T] {
	return func(f *ArrayField[T]) { f.unique = Unique[T]() }
}

// NewArrayField constructs an empty array field with the given
// capacity.
func NewArrayField[T ScalarType](id FieldId, maxSize int, opts ...ArrayFieldOption[T]) *ArrayField[T] {
	var zero T
	f := &ArrayField[T]{
		id:        id,
		maxSize:   maxSize,
		elements:  make([]T, 0, maxSize),
		byteWidth: scalarKindWidth(reflect.TypeOf(zero).Kind()),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ID implements Field.
func (f *ArrayField[T]) ID() FieldId { return f.id }

// FieldKind implements Field.
func (f *ArrayField[T]) FieldKind() FieldKind { return KindArrayField }

// ValidatePresence implements Field; arrays have no presence concept.
func (f *ArrayField[T]) ValidatePresence() error { return nil }

// Validate implements Field: container-level size and uniqueness
// checks, then each element's own validators.
func (f *ArrayField[T]) Validate() error {
	if err := runSizeValidators(f.sizeValidators, len(f.elements), f.id); err != nil {
		return err
	}
	if f.unique != nil {
		if err := f.unique(f.elements, f.id); err != nil {
			return err
		}
	}
	for _, e := range f.elements {
		if err := runValidators(f.elementValidators, e, f.id); err != nil {
			return err
		}
	}
	return nil
}

// Submessage implements Field; scalar arrays are never submessages.
func (f *ArrayField[T]) Submessage() (Message, bool) { return nil, false }

// Get returns a read-only view of the active prefix.
func (f *ArrayField[T]) Get() []T { return f.elements[:len(f.elements):len(f.elements)] }

// Len returns the current element count.
func (f *ArrayField[T]) Len() int { return len(f.elements) }

// MaxSize returns the declared capacity.
func (f *ArrayField[T]) MaxSize() int { return f.maxSize }

// ByteWidth returns each element's wire width in bytes.
func (f *ArrayField[T]) ByteWidth() int { return f.byteWidth }

// Add appends value, failing with CapacityExceeded once the array is
// full.
func (f *ArrayField[T]) Add(value T) error {
	if len(f.elements) >= f.maxSize {
		return errorf(KindCapacityExceeded, f.id, "array is at capacity %d", f.maxSize)
	}
	f.elements = append(f.elements, value)
	return nil
}

// addWithoutValidation is used by deserialization, which has already
// bounds-checked the decoded count against maxSize.
func (f *ArrayField[T]) addWithoutValidation(value T) {
	f.elements = append(f.elements, value)
}

// reset clears the array back to empty, for deserialization to
// overwrite a field that's being decoded into fresh.
func (f *ArrayField[T]) reset() { f.elements = f.elements[:0] }

// elementBits returns element i's little-endian bit pattern, using the
// same reflect-based bridge ScalarField.bits uses.
func (f *ArrayField[T]) elementBits(i int) uint64 {
	v := reflect.ValueOf(f.elements[i])
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
	panic("crunch: unsupported array element kind " + v.Kind().String())
}

// appendElementBits decodes bits into a T and appends it, without
// running validators; used only by deserialization.
func (f *ArrayField[T]) appendElementBits(bits uint64) {
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
		panic("crunch: unsupported array element kind " + rv.Kind().String())
	}
	f.addWithoutValidation(value)
}
