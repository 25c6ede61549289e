package crunch

// The layouts (static_layout.go, tlv_layout.go) need to read and write
// bytes for a Field without knowing its concrete generic
// instantiation. Rather than type-switch over every possible
// ScalarField[int8], ScalarField[uint16], ... instantiation, each
// generic field kind exposes a small set of already-defined methods
// (some exported for callers, some package-private) that happen to
// satisfy one of these narrower interfaces regardless of its type
// parameter. This is the Go stand-in for kind-tag dispatch over field
// kinds without an exhaustive generic type switch.

// scalarWire is satisfied by every ScalarField[T].
type scalarWire interface {
	Field
	ByteWidth() int
	IsSet() bool
	bits() uint64
	setBits(uint64)
	clear()
}

// arrayWire is satisfied by every ArrayField[T].
type arrayWire interface {
	Field
	ByteWidth() int
	Len() int
	MaxSize() int
	elementBits(i int) uint64
	appendElementBits(uint64)
	reset()
}

// mapWire is satisfied by every MapField[K, V].
type mapWire interface {
	Field
	KeyByteWidth() int
	ValueByteWidth() int
	Len() int
	MaxSize() int
	entryBits(i int) (uint64, uint64)
	insertEntryBits(uint64, uint64)
	reset()
}

// submessageWire is satisfied by every SubmessageField[M].
type submessageWire interface {
	Field
	IsSet() bool
	innerMessage() Message
	markSet()
	clearSet()
}

// byteArrayWire is satisfied by an array field whose elements are
// variable-length byte sequences (StringArrayField) rather than a
// fixed bit pattern.
type byteArrayWire interface {
	Field
	Len() int
	MaxSize() int
	ElementMaxSize() int
	elementBytes(i int) []byte
	appendElementBytes([]byte)
	reset()
}

// submessageArrayWire is satisfied by an array field whose elements
// are nested messages (SubmessageArrayField[M]), recursed into
// field-by-field the way a single submessageWire field is.
type submessageArrayWire interface {
	Field
	Len() int
	MaxSize() int
	elementMessage(i int) Message
	templateMessage() Message
	newElementMessage() Message
	reset()
}

// byteMapWire is satisfied by a map field whose values are
// variable-length byte sequences (StringValueMapField[K]) paired with
// a bit-pattern key.
type byteMapWire interface {
	Field
	KeyByteWidth() int
	ValueMaxSize() int
	Len() int
	MaxSize() int
	entryKeyBits(i int) uint64
	entryValueBytes(i int) []byte
	insertEntry(uint64, []byte)
	reset()
}

// submessageMapWire is satisfied by a map field whose values are
// nested messages (SubmessageValueMapField[K, M]) paired with a
// bit-pattern key.
type submessageMapWire interface {
	Field
	KeyByteWidth() int
	Len() int
	MaxSize() int
	entryKeyBits(i int) uint64
	entryValueMessage(i int) Message
	templateValueMessage() Message
	newEntry(uint64) Message
	reset()
}

var (
	_ = (scalarWire)(nil)
	_ = (arrayWire)(nil)
	_ = (mapWire)(nil)
	_ = (submessageWire)(nil)
	_ = (byteArrayWire)(nil)
	_ = (submessageArrayWire)(nil)
	_ = (byteMapWire)(nil)
	_ = (submessageMapWire)(nil)
)

// resetFields restores every field in fields to its zero, unset state:
// scalars and strings lose their stored value and is-set flag, arrays
// and maps are truncated to empty, and submessages are cleared
// recursively. TLVLayout.Deserialize calls this before applying the
// incoming tags, since TLV simply omits an unset field from the wire
// rather than writing an explicit is-set byte the way StaticLayout
// does, so a field absent from the payload would otherwise keep
// whatever value msg already held.
func resetFields(fields []Field) {
	for _, f := range fields {
		resetField(f)
	}
}

func resetField(f Field) {
	switch v := f.(type) {
	case scalarWire:
		v.clear()
	case *StringField:
		v.clear()
	case arrayWire:
		v.reset()
	case byteArrayWire:
		v.reset()
	case submessageArrayWire:
		v.reset()
	case mapWire:
		v.reset()
	case byteMapWire:
		v.reset()
	case submessageMapWire:
		v.reset()
	case submessageWire:
		resetFields(v.innerMessage().Fields())
		v.clearSet()
	}
}
