package crunch

import (
	"math"
	"reflect"
)

// mapEntry is one key/value pair of a MapField, kept in insertion
// order.
type mapEntry[K, V ScalarType] struct {
	key   K
	value V
}

// MapField owns a fixed-capacity list of (key, value) pairs with keys
// unique under equality, for scalar Key and Value types. Iteration
// follows insertion order, but two MapFields compare equal (via Equal)
// if they hold the same set of pairs regardless of order, since
// duplicate keys are rejected at Insert and comparison need not
// deduplicate.
//
// MapField itself covers the scalar/scalar case, where both key and
// value have a fixed bit-pattern width. StringValueMapField and
// SubmessageValueMapField (string_value_map_field.go,
// submessage_value_map_field.go) cover a scalar key paired with a
// string or nested-message value, whose wire representation is a
// variable-length byte slice instead. A message-typed key isn't
// supported: Go's built-in equality doesn't recurse into a
// pointer-based struct's fields, so a submessage key would need its
// own value-equality comparator, which nothing in this schema surface
// currently supplies; see DESIGN.md.
type MapField[K, V ScalarType] struct {
	id              FieldId
	maxSize         int
	entries         []mapEntry[K, V]
	keyValidators   []Validator[K]
	valueValidators []Validator[V]
	sizeValidators  []SizeValidator
	keyByteWidth    int
	valueByteWidth  int
}

// MapFieldOption configures a MapField at construction.
type MapFieldOption[K, V ScalarType] func(*MapField[K, V])

// WithKeyValidators runs each validator against a key on Insert.
func WithKeyValidators[K, V ScalarType](validators ...Validator[K]) MapFieldOption[K, V] {
	return func(f *MapField[K, V]) { f.keyValidators = validators }
}

// WithValueValidators runs each validator against a value on Insert.
func WithValueValidators[K, V ScalarType](validators ...Validator[V]) MapFieldOption[K, V] {
	return func(f *MapField[K, V]) { f.valueValidators = validators }
}

// WithMapSizeValidators attaches Length/LengthAtLeast/LengthAtMost
// checks against the map's current entry count.
func WithMapSizeValidators[K, V ScalarType](validators ...SizeValidator) MapFieldOption[K, V] {
	return func(f *MapField[K, V]) { f.sizeValidators = validators }
}

// NewMapField constructs an empty map field with the given capacity.
func NewMapField[K, V ScalarType](id FieldId, maxSize int, opts ...MapFieldOption[K, V]) *MapField[K, V] {
	var zeroK K
	var zeroV V
	f := &MapField[K, V]{
		id:             id,
		maxSize:        maxSize,
		entries:        make([]mapEntry[K, V], 0, maxSize),
		keyByteWidth:   scalarKindWidth(reflectKindOf(zeroK)),
		valueByteWidth: scalarKindWidth(reflectKindOf(zeroV)),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ID implements Field.
func (f *MapField[K, V]) ID() FieldId { return f.id }

// FieldKind implements Field.
func (f *MapField[K, V]) FieldKind() FieldKind { return KindMapField }

// ValidatePresence implements Field; maps have no presence concept.
func (f *MapField[K, V]) ValidatePresence() error { return nil }

// Validate implements Field: the container-level size checks, then
// every key's and value's validators, so entries added by
// deserialization without validation are checked too.
func (f *MapField[K, V]) Validate() error {
	if err := runSizeValidators(f.sizeValidators, len(f.entries), f.id); err != nil {
		return err
	}
	for _, e := range f.entries {
		if err := runValidators(f.keyValidators, e.key, f.id); err != nil {
			return err
		}
		if err := runValidators(f.valueValidators, e.value, f.id); err != nil {
			return err
		}
	}
	return nil
}

// Submessage implements Field; maps are never submessages.
func (f *MapField[K, V]) Submessage() (Message, bool) { return nil, false }

// Len returns the current entry count.
func (f *MapField[K, V]) Len() int { return len(f.entries) }

// MaxSize returns the declared capacity.
func (f *MapField[K, V]) MaxSize() int { return f.maxSize }

// KeyByteWidth and ValueByteWidth report each element's wire width.
func (f *MapField[K, V]) KeyByteWidth() int   { return f.keyByteWidth }
func (f *MapField[K, V]) ValueByteWidth() int { return f.valueByteWidth }

// At looks up key, returning its value and whether it was present.
func (f *MapField[K, V]) At(key K) (V, bool) {
	for _, e := range f.entries {
		if e.key == key {
			return e.value, true
		}
	}
	var zero V
	return zero, false
}

// Entries returns a read-only view of the pairs in insertion order.
func (f *MapField[K, V]) Entries() []mapEntry[K, V] {
	return f.entries[:len(f.entries):len(f.entries)]
}

// Key and Value are exported accessors for iterating Entries() from
// outside the package.
func (e mapEntry[K, V]) Key() K   { return e.key }
func (e mapEntry[K, V]) Value() V { return e.value }

// Insert validates key and value, rejects a duplicate key, and fails
// with CapacityExceeded once the map is full.
func (f *MapField[K, V]) Insert(key K, value V) error {
	if err := runValidators(f.keyValidators, key, f.id); err != nil {
		return err
	}
	if err := runValidators(f.valueValidators, value, f.id); err != nil {
		return err
	}
	for _, e := range f.entries {
		if e.key == key {
			return errorf(KindValidation, f.id, "duplicate map key %v", key)
		}
	}
	if len(f.entries) >= f.maxSize {
		return errorf(KindCapacityExceeded, f.id, "map is at capacity %d", f.maxSize)
	}
	f.entries = append(f.entries, mapEntry[K, V]{key: key, value: value})
	return nil
}

// insertWithoutValidation is used by deserialization.
func (f *MapField[K, V]) insertWithoutValidation(key K, value V) {
	f.entries = append(f.entries, mapEntry[K, V]{key: key, value: value})
}

// reset clears the map back to empty.
func (f *MapField[K, V]) reset() { f.entries = f.entries[:0] }

// Remove deletes key's entry, shifting the remaining pairs down to
// close the gap, and reports whether it was present.
func (f *MapField[K, V]) Remove(key K) bool {
	for i, e := range f.entries {
		if e.key == key {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			return true
		}
	}
	return false
}

func bitsOfScalar(v reflect.Value) uint64 {
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
	panic("crunch: unsupported map element kind " + v.Kind().String())
}

func scalarFromBits(dst reflect.Value, bits uint64, width int) {
	switch dst.Kind() {
	case reflect.Bool:
		dst.SetBool(bits != 0)
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		dst.SetInt(signExtend(bits, width))
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		dst.SetUint(bits)
	case reflect.Float32:
		dst.SetFloat(float64(math.Float32frombits(uint32(bits))))
	case reflect.Float64:
		dst.SetFloat(math.Float64frombits(bits))
	default:
		panic("crunch: unsupported map element kind " + dst.Kind().String())
	}
}

// entryBits returns entry i's key and value as little-endian bit
// patterns, using the same reflect-based bridge ScalarField.bits uses.
func (f *MapField[K, V]) entryBits(i int) (keyBits, valueBits uint64) {
	e := f.entries[i]
	return bitsOfScalar(reflect.ValueOf(e.key)), bitsOfScalar(reflect.ValueOf(e.value))
}

// insertEntryBits decodes a key/value pair from bit patterns and
// appends it, without running validators or duplicate checks; used
// only by deserialization, which has already bounds-checked the
// decoded count against maxSize.
func (f *MapField[K, V]) insertEntryBits(keyBits, valueBits uint64) {
	var key K
	var value V
	scalarFromBits(reflect.ValueOf(&key).Elem(), keyBits, f.keyByteWidth)
	scalarFromBits(reflect.ValueOf(&value).Elem(), valueBits, f.valueByteWidth)
	f.insertWithoutValidation(key, value)
}

// Equal reports whether f and other hold the same set of pairs,
// ignoring insertion order.
func (f *MapField[K, V]) Equal(other *MapField[K, V]) bool {
	if len(f.entries) != len(other.entries) {
		return false
	}
	for _, e := range f.entries {
		v, ok := other.At(e.key)
		if !ok || v != e.value {
			return false
		}
	}
	return true
}
