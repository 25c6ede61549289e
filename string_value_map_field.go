package crunch

import "reflect"

// stringValueMapEntry is one key/value pair of a StringValueMapField.
type stringValueMapEntry[K ScalarType] struct {
	key   K
	value string
}

// Key and Value are exported accessors for iterating Entries() from
// outside the package.
func (e stringValueMapEntry[K]) Key() K        { return e.key }
func (e stringValueMapEntry[K]) Value() string { return e.value }

// StringValueMapField owns a fixed-capacity list of (scalar key,
// string value) pairs with keys unique under equality, mirroring
// MapField except that a string value has no fixed bit pattern the
// way a ScalarType value does. This field kind is driven through
// byteMapWire (field_wire.go), which pairs a bit-pattern key with a
// byte-slice value.
type StringValueMapField[K ScalarType] struct {
	id              FieldId
	maxSize         int
	valueMaxSize    int
	entries         []stringValueMapEntry[K]
	keyValidators   []Validator[K]
	valueValidators []Validator[string]
	sizeValidators  []SizeValidator
	keyByteWidth    int
}

// StringValueMapFieldOption configures a StringValueMapField at construction.
type StringValueMapFieldOption[K ScalarType] func(*StringValueMapField[K])

// WithStringMapKeyValidators runs each validator against a key on Insert.
func WithStringMapKeyValidators[K ScalarType](validators ...Validator[K]) StringValueMapFieldOption[K] {
	return func(f *StringValueMapField[K]) { f.keyValidators = validators }
}

// WithStringMapValueValidators runs each validator against a value on Insert.
func WithStringMapValueValidators[K ScalarType](validators ...Validator[string]) StringValueMapFieldOption[K] {
	return func(f *StringValueMapField[K]) { f.valueValidators = validators }
}

// WithStringMapSizeValidators attaches Length/LengthAtLeast/LengthAtMost
// checks against the map's current entry count.
func WithStringMapSizeValidators[K ScalarType](validators ...SizeValidator) StringValueMapFieldOption[K] {
	return func(f *StringValueMapField[K]) { f.sizeValidators = validators }
}

// NewStringValueMapField builds an empty map with room for maxSize
// pairs, each value capped at valueMaxSize bytes.
func NewStringValueMapField[K ScalarType](id FieldId, maxSize, valueMaxSize int, opts ...StringValueMapFieldOption[K]) *StringValueMapField[K] {
	var zeroK K
	f := &StringValueMapField[K]{
		id:           id,
		maxSize:      maxSize,
		valueMaxSize: valueMaxSize,
		entries:      make([]stringValueMapEntry[K], 0, maxSize),
		keyByteWidth: scalarKindWidth(reflectKindOf(zeroK)),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ID implements Field.
func (f *StringValueMapField[K]) ID() FieldId { return f.id }

// FieldKind implements Field.
func (f *StringValueMapField[K]) FieldKind() FieldKind { return KindMapField }

// ValidatePresence implements Field; maps have no presence concept.
func (f *StringValueMapField[K]) ValidatePresence() error { return nil }

// Validate implements Field: the container-level size checks, then
// every key's and value's validators.
func (f *StringValueMapField[K]) Validate() error {
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
func (f *StringValueMapField[K]) Submessage() (Message, bool) { return nil, false }

// Len returns the current entry count.
func (f *StringValueMapField[K]) Len() int { return len(f.entries) }

// MaxSize returns the declared capacity.
func (f *StringValueMapField[K]) MaxSize() int { return f.maxSize }

// KeyByteWidth reports the key's wire width.
func (f *StringValueMapField[K]) KeyByteWidth() int { return f.keyByteWidth }

// ValueMaxSize returns each value's declared byte capacity.
func (f *StringValueMapField[K]) ValueMaxSize() int { return f.valueMaxSize }

// At looks up key, returning its value and whether it was present.
func (f *StringValueMapField[K]) At(key K) (string, bool) {
	for _, e := range f.entries {
		if e.key == key {
			return e.value, true
		}
	}
	return "", false
}

// Entries returns a read-only view of the pairs in insertion order.
func (f *StringValueMapField[K]) Entries() []stringValueMapEntry[K] {
	return f.entries[:len(f.entries):len(f.entries)]
}

// Insert validates key and value, rejects a duplicate key, and fails
// with CapacityExceeded once the map is full or value exceeds
// ValueMaxSize.
func (f *StringValueMapField[K]) Insert(key K, value string) error {
	if err := runValidators(f.keyValidators, key, f.id); err != nil {
		return err
	}
	if len(value) > f.valueMaxSize {
		return errorf(KindCapacityExceeded, f.id, "value length %d exceeds max size %d", len(value), f.valueMaxSize)
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
	f.entries = append(f.entries, stringValueMapEntry[K]{key: key, value: value})
	return nil
}

func (f *StringValueMapField[K]) insertWithoutValidation(key K, value string) {
	f.entries = append(f.entries, stringValueMapEntry[K]{key: key, value: value})
}

func (f *StringValueMapField[K]) reset() { f.entries = f.entries[:0] }

// Remove deletes key's entry, shifting the remaining pairs down to
// close the gap, and reports whether it was present.
func (f *StringValueMapField[K]) Remove(key K) bool {
	for i, e := range f.entries {
		if e.key == key {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			return true
		}
	}
	return false
}

// entryKeyBits and entryValueBytes satisfy byteMapWire, pairing a
// bit-pattern key with a byte-slice value.
func (f *StringValueMapField[K]) entryKeyBits(i int) uint64 {
	return bitsOfScalar(reflect.ValueOf(f.entries[i].key))
}

func (f *StringValueMapField[K]) entryValueBytes(i int) []byte {
	return []byte(f.entries[i].value)
}

// insertEntry decodes a key from keyBits and appends the pair with
// value verbatim, without running validators or duplicate checks;
// used only by deserialization, which has already bounds-checked the
// decoded count against maxSize.
func (f *StringValueMapField[K]) insertEntry(keyBits uint64, value []byte) {
	var key K
	scalarFromBits(reflect.ValueOf(&key).Elem(), keyBits, f.keyByteWidth)
	f.insertWithoutValidation(key, string(value))
}
