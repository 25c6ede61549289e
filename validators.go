package crunch

import "math"

// Number is the set of scalar types crunch's numeric validators accept:
// every signed/unsigned integer width plus both float widths. Named
// enum types satisfy this too as long as their underlying type is one
// of these (see Enum in enum.go).
type Number interface {
	~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Integer is the integer subset of Number.
type Integer interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Float is the floating-point subset of Number.
type Float interface {
	~float32 | ~float64
}

// Ordered is any type usable with the relational operators, backing
// the LessThan/GreaterThan family of validators. Defined locally rather than
// pulled from golang.org/x/exp/constraints, since crunch only needs a
// handful of these and taking the whole constraints module for it isn't
// worth the dependency.
type Ordered interface {
	Number | ~string
}

// Validator is a pure predicate over a field's value and id, composed
// by ordered conjunction: a field's validators run in declaration
// order and the first failure wins.
type Validator[T any] func(value T, id FieldId) error

// None always succeeds. It exists so a field can spell out "no
// validation" explicitly rather than passing an empty validator list.
func None[T any]() Validator[T] {
	return func(T, FieldId) error { return nil }
}

// Positive requires value >= 0. Its contract targets signed integers
// and floats; applying it to an unsigned type is
// harmless but redundant.
func Positive[T Number]() Validator[T] {
	return func(value T, id FieldId) error {
		if value < 0 {
			return NewValidationError(id, "value must be positive")
		}
		return nil
	}
}

// Negative requires value < 0.
func Negative[T Number]() Validator[T] {
	return func(value T, id FieldId) error {
		if value >= 0 {
			return NewValidationError(id, "value must be negative")
		}
		return nil
	}
}

// NotZero requires value != 0.
func NotZero[T Number]() Validator[T] {
	return func(value T, id FieldId) error {
		if value == 0 {
			return NewValidationError(id, "value must not be zero")
		}
		return nil
	}
}

// Even requires an even integer.
func Even[T Integer]() Validator[T] {
	return func(value T, id FieldId) error {
		if value%2 != 0 {
			return NewValidationError(id, "value must be even")
		}
		return nil
	}
}

// Odd requires an odd integer.
func Odd[T Integer]() Validator[T] {
	return func(value T, id FieldId) error {
		if value%2 == 0 {
			return NewValidationError(id, "value must be odd")
		}
		return nil
	}
}

// LessThan requires value < threshold.
func LessThan[T Ordered](threshold T) Validator[T] {
	return func(value T, id FieldId) error {
		if !(value < threshold) {
			return errorf(KindValidation, id, "value must be less than %v", threshold)
		}
		return nil
	}
}

// LessThanOrEqualTo requires value <= threshold.
func LessThanOrEqualTo[T Ordered](threshold T) Validator[T] {
	return func(value T, id FieldId) error {
		if !(value <= threshold) {
			return errorf(KindValidation, id, "value must be less than or equal to %v", threshold)
		}
		return nil
	}
}

// GreaterThan requires value > threshold.
func GreaterThan[T Ordered](threshold T) Validator[T] {
	return func(value T, id FieldId) error {
		if !(value > threshold) {
			return errorf(KindValidation, id, "value must be greater than %v", threshold)
		}
		return nil
	}
}

// GreaterThanOrEqualTo requires value >= threshold.
func GreaterThanOrEqualTo[T Ordered](threshold T) Validator[T] {
	return func(value T, id FieldId) error {
		if !(value >= threshold) {
			return errorf(KindValidation, id, "value must be greater than or equal to %v", threshold)
		}
		return nil
	}
}

// EqualTo requires value == want.
func EqualTo[T comparable](want T) Validator[T] {
	return func(value T, id FieldId) error {
		if value != want {
			return errorf(KindValidation, id, "value must equal %v", want)
		}
		return nil
	}
}

// NotEqualTo requires value != avoid.
func NotEqualTo[T comparable](avoid T) Validator[T] {
	return func(value T, id FieldId) error {
		if value == avoid {
			return errorf(KindValidation, id, "value must not equal %v", avoid)
		}
		return nil
	}
}

// OneOf requires value to be one of the given options.
func OneOf[T comparable](options ...T) Validator[T] {
	return func(value T, id FieldId) error {
		for _, opt := range options {
			if value == opt {
				return nil
			}
		}
		return errorf(KindValidation, id, "value %v is not one of %v", value, options)
	}
}

// IsFinite requires a floating-point value that is neither NaN nor
// infinite.
func IsFinite[T Float]() Validator[T] {
	return func(value T, id FieldId) error {
		f := float64(value)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return NewValidationError(id, "value must be finite")
		}
		return nil
	}
}

// Around requires |value - target| <= tolerance.
func Around[T Float](target, tolerance T) Validator[T] {
	return func(value T, id FieldId) error {
		diff := value - target
		if diff < 0 {
			diff = -diff
		}
		if diff > tolerance {
			return errorf(KindValidation, id, "value %v is not within %v of %v", value, tolerance, target)
		}
		return nil
	}
}

// True requires a boolean field to be true.
func True() Validator[bool] {
	return func(value bool, id FieldId) error {
		if !value {
			return NewValidationError(id, "value must be true")
		}
		return nil
	}
}

// False requires a boolean field to be false.
func False() Validator[bool] {
	return func(value bool, id FieldId) error {
		if value {
			return NewValidationError(id, "value must be false")
		}
		return nil
	}
}

// StringEquals requires an exact string match.
func StringEquals(want string) Validator[string] {
	return func(value string, id FieldId) error {
		if value != want {
			return errorf(KindValidation, id, "string must equal %q", want)
		}
		return nil
	}
}

// StringNotEquals forbids an exact string match.
func StringNotEquals(avoid string) Validator[string] {
	return func(value string, id FieldId) error {
		if value == avoid {
			return errorf(KindValidation, id, "string must not equal %q", avoid)
		}
		return nil
	}
}

// NullTerminated requires the value's last byte to be zero. This only
// inspects the final byte; it does not detect an embedded null earlier
// in the string. That is the
// original C++ library's documented behavior and is intentionally not
// "fixed" here.
func NullTerminated() Validator[string] {
	return func(value string, id FieldId) error {
		if len(value) == 0 || value[len(value)-1] != 0 {
			return NewValidationError(id, "string must be null terminated")
		}
		return nil
	}
}

// runValidators applies each validator in order, returning the first
// failure.
func runValidators[T any](validators []Validator[T], value T, id FieldId) error {
	for _, v := range validators {
		if err := v(value, id); err != nil {
			return err
		}
	}
	return nil
}

// SizeValidator constrains the element/entry/byte count of a
// container-shaped field: String, ArrayField, or MapField.
type SizeValidator func(size int, id FieldId) error

// Length requires an exact size.
func Length(n int) SizeValidator {
	return func(size int, id FieldId) error {
		if size != n {
			return errorf(KindValidation, id, "length must be %d, got %d", n, size)
		}
		return nil
	}
}

// LengthAtLeast requires size >= n.
func LengthAtLeast(n int) SizeValidator {
	return func(size int, id FieldId) error {
		if size < n {
			return errorf(KindValidation, id, "length must be at least %d, got %d", n, size)
		}
		return nil
	}
}

// LengthAtMost requires size <= n.
func LengthAtMost(n int) SizeValidator {
	return func(size int, id FieldId) error {
		if size > n {
			return errorf(KindValidation, id, "length must be at most %d, got %d", n, size)
		}
		return nil
	}
}

func runSizeValidators(validators []SizeValidator, size int, id FieldId) error {
	for _, v := range validators {
		if err := v(size, id); err != nil {
			return err
		}
	}
	return nil
}

// Unique requires every element of an array field to be pairwise
// distinct. Implemented as a plain O(n²) scan; arrays are small and
// fixed-capacity, so this never runs unbounded.
func Unique[T comparable]() func(elements []T, id FieldId) error {
	return func(elements []T, id FieldId) error {
		for i := 0; i < len(elements); i++ {
			for j := i + 1; j < len(elements); j++ {
				if elements[i] == elements[j] {
					return errorf(KindValidation, id, "elements at %d and %d are not unique", i, j)
				}
			}
		}
		return nil
	}
}
