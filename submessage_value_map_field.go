package crunch

import "reflect"

// submessageValueMapEntry is one key/value pair of a
// SubmessageValueMapField.
type submessageValueMapEntry[K ScalarType, M Message] struct {
	key   K
	value M
}

// Key and Value are exported accessors for iterating Entries() from
// outside the package.
func (e submessageValueMapEntry[K, M]) Key() K   { return e.key }
func (e submessageValueMapEntry[K, M]) Value() M { return e.value }

// SubmessageValueMapField owns a fixed-capacity list of (scalar key,
// nested message value) pairs with keys unique under equality. Like
// SubmessageArrayField, a fresh value for decoding or zero-filling a
// padding slot is built through factory rather than a zero value.
type SubmessageValueMapField[K ScalarType, M Message] struct {
	id             FieldId
	maxSize        int
	factory        func() M
	entries        []submessageValueMapEntry[K, M]
	keyValidators  []Validator[K]
	sizeValidators []SizeValidator
	keyByteWidth   int
}

// SubmessageValueMapFieldOption configures a SubmessageValueMapField at construction.
type SubmessageValueMapFieldOption[K ScalarType, M Message] func(*SubmessageValueMapField[K, M])

// WithSubmessageMapKeyValidators runs each validator against a key on Insert.
func WithSubmessageMapKeyValidators[K ScalarType, M Message](validators ...Validator[K]) SubmessageValueMapFieldOption[K, M] {
	return func(f *SubmessageValueMapField[K, M]) { f.keyValidators = validators }
}

// WithSubmessageMapSizeValidators attaches Length/LengthAtLeast/LengthAtMost
// checks against the map's current entry count.
func WithSubmessageMapSizeValidators[K ScalarType, M Message](validators ...SizeValidator) SubmessageValueMapFieldOption[K, M] {
	return func(f *SubmessageValueMapField[K, M]) { f.sizeValidators = validators }
}

// NewSubmessageValueMapField builds an empty map with room for
// maxSize pairs, each value constructed on demand by factory.
func NewSubmessageValueMapField[K ScalarType, M Message](id FieldId, maxSize int, factory func() M, opts ...SubmessageValueMapFieldOption[K, M]) *SubmessageValueMapField[K, M] {
	var zeroK K
	f := &SubmessageValueMapField[K, M]{
		id:           id,
		maxSize:      maxSize,
		factory:      factory,
		entries:      make([]submessageValueMapEntry[K, M], 0, maxSize),
		keyByteWidth: scalarKindWidth(reflectKindOf(zeroK)),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ID implements Field.
func (f *SubmessageValueMapField[K, M]) ID() FieldId { return f.id }

// FieldKind implements Field.
func (f *SubmessageValueMapField[K, M]) FieldKind() FieldKind { return KindMapField }

// ValidatePresence implements Field; maps have no presence concept.
func (f *SubmessageValueMapField[K, M]) ValidatePresence() error { return nil }

// Validate runs the map's own size validators, then each key's
// validators and a recursion into every value's own presence and
// cross-field invariants, the map equivalent of ValidateMessage's
// submessage recursion.
func (f *SubmessageValueMapField[K, M]) Validate() error {
	if err := runSizeValidators(f.sizeValidators, len(f.entries), f.id); err != nil {
		return err
	}
	for _, e := range f.entries {
		if err := runValidators(f.keyValidators, e.key, f.id); err != nil {
			return err
		}
		if err := ValidateMessage(e.value); err != nil {
			return err
		}
	}
	return nil
}

// Submessage implements Field; a submessage-valued map is never
// itself a single submessage.
func (f *SubmessageValueMapField[K, M]) Submessage() (Message, bool) { return nil, false }

// Len returns the current entry count.
func (f *SubmessageValueMapField[K, M]) Len() int { return len(f.entries) }

// MaxSize returns the declared capacity.
func (f *SubmessageValueMapField[K, M]) MaxSize() int { return f.maxSize }

// KeyByteWidth reports the key's wire width.
func (f *SubmessageValueMapField[K, M]) KeyByteWidth() int { return f.keyByteWidth }

// At looks up key, returning its value and whether it was present.
func (f *SubmessageValueMapField[K, M]) At(key K) (M, bool) {
	for _, e := range f.entries {
		if e.key == key {
			return e.value, true
		}
	}
	var zero M
	return zero, false
}

// Entries returns a read-only view of the pairs in insertion order.
func (f *SubmessageValueMapField[K, M]) Entries() []submessageValueMapEntry[K, M] {
	return f.entries[:len(f.entries):len(f.entries)]
}

// Insert validates key, rejects a duplicate, and fails with
// CapacityExceeded once the map is full.
func (f *SubmessageValueMapField[K, M]) Insert(key K, value M) error {
	if err := runValidators(f.keyValidators, key, f.id); err != nil {
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
	f.entries = append(f.entries, submessageValueMapEntry[K, M]{key: key, value: value})
	return nil
}

func (f *SubmessageValueMapField[K, M]) reset() { f.entries = f.entries[:0] }

// Remove deletes key's entry, shifting the remaining pairs down to
// close the gap, and reports whether it was present.
func (f *SubmessageValueMapField[K, M]) Remove(key K) bool {
	for i, e := range f.entries {
		if e.key == key {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			return true
		}
	}
	return false
}

func (f *SubmessageValueMapField[K, M]) entryKeyBits(i int) uint64 {
	return bitsOfScalar(reflect.ValueOf(f.entries[i].key))
}

// entryValueMessage returns entry i's value as a Message, for the
// layouts to size and write regardless of M's concrete type.
func (f *SubmessageValueMapField[K, M]) entryValueMessage(i int) Message { return f.entries[i].value }

// templateValueMessage builds a throwaway value purely to walk its
// schema shape, for sizing the field and for zero-filling padding
// slots.
func (f *SubmessageValueMapField[K, M]) templateValueMessage() Message { return f.factory() }

// newEntry decodes a key from keyBits, constructs a fresh value via
// factory, appends the pair, and returns the value as a Message for
// the layout to decode fields into in place.
func (f *SubmessageValueMapField[K, M]) newEntry(keyBits uint64) Message {
	var key K
	scalarFromBits(reflect.ValueOf(&key).Elem(), keyBits, f.keyByteWidth)
	value := f.factory()
	f.entries = append(f.entries, submessageValueMapEntry[K, M]{key: key, value: value})
	return value
}
