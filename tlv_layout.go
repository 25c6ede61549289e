package crunch

import (
	"fmt"

	"github.com/sam-w-yellin/crunch/internal/endian"
	"github.com/sam-w-yellin/crunch/internal/varint"
)

// The two TLV wire types this layout defines. Unlike the static
// layout's alignment values, these are part of the wire contract
// itself and are read back on decode to detect a schema/data mismatch.
const (
	wireTypeVarint          = 0
	wireTypeLengthDelimited = 1
)

// TLVLayout is the self-describing tag-length-value serialization
// policy. Every present field writes its own tag, so unset optional
// fields and empty arrays/maps cost nothing on the wire, unlike
// StaticLayout's fixed slots.
type TLVLayout struct{}

// NewTLVLayout builds a TLVLayout. It takes no configuration: unlike
// StaticLayout there's no alignment mode to choose.
func NewTLVLayout() *TLVLayout { return &TLVLayout{} }

// Format implements Serdes.
func (t *TLVLayout) Format() Format { return FormatTLV }

func tlvTag(id FieldId, wireType uint64) uint64 {
	return uint64(id)<<3 | wireType
}

// maskBits truncates bits to width bytes before it is varint-encoded, so
// a negative fixed-width integer's two's-complement pattern is carried
// on the wire rather than its Go int64 sign extension, which would
// otherwise always cost the varint's full 10 bytes.
func maskBits(bits uint64, width int) uint64 {
	if width >= 8 {
		return bits
	}
	return bits & (1<<(uint(width)*8) - 1)
}

// Size implements Serdes.
func (t *TLVLayout) Size(msg Message) int {
	return 4 + tlvFieldsSize(msg.Fields())
}

func tlvFieldsSize(fields []Field) int {
	n := 0
	for _, f := range fields {
		n += tlvFieldSize(f)
	}
	return n
}

func tlvFieldSize(f Field) int {
	switch v := f.(type) {
	case scalarWire:
		if !v.IsSet() {
			return 0
		}
		value := varint.Len(maskBits(v.bits(), v.ByteWidth()))
		return varint.Len(tlvTag(f.ID(), wireTypeVarint)) + value
	case *StringField:
		if !v.IsSet() {
			return 0
		}
		value, _ := v.Get()
		return varint.Len(tlvTag(f.ID(), wireTypeLengthDelimited)) + varint.Len(uint64(len(value))) + len(value)
	case arrayWire:
		if v.Len() == 0 {
			return 0
		}
		body := arrayBodySize(v)
		return varint.Len(tlvTag(f.ID(), wireTypeLengthDelimited)) + varint.Len(uint64(body)) + body
	case mapWire:
		if v.Len() == 0 {
			return 0
		}
		body := mapBodySize(v)
		return varint.Len(tlvTag(f.ID(), wireTypeLengthDelimited)) + varint.Len(uint64(body)) + body
	case submessageWire:
		if !v.IsSet() {
			return 0
		}
		body := tlvFieldsSize(v.innerMessage().Fields())
		return varint.Len(tlvTag(f.ID(), wireTypeLengthDelimited)) + varint.Len(uint64(body)) + body
	case byteArrayWire:
		if v.Len() == 0 {
			return 0
		}
		body := byteArrayBodySize(v)
		return varint.Len(tlvTag(f.ID(), wireTypeLengthDelimited)) + varint.Len(uint64(body)) + body
	case submessageArrayWire:
		if v.Len() == 0 {
			return 0
		}
		body := submessageArrayBodySize(v)
		return varint.Len(tlvTag(f.ID(), wireTypeLengthDelimited)) + varint.Len(uint64(body)) + body
	case byteMapWire:
		if v.Len() == 0 {
			return 0
		}
		body := byteMapBodySize(v)
		return varint.Len(tlvTag(f.ID(), wireTypeLengthDelimited)) + varint.Len(uint64(body)) + body
	case submessageMapWire:
		if v.Len() == 0 {
			return 0
		}
		body := submessageMapBodySize(v)
		return varint.Len(tlvTag(f.ID(), wireTypeLengthDelimited)) + varint.Len(uint64(body)) + body
	}
	panic(fmt.Sprintf("crunch: tlv layout cannot size field kind %s", f.FieldKind()))
}

// arrayBodySize and mapBodySize compute the packed, tag-free body an
// array or map field's single length-delimited value carries: each
// element (or key/value pair) is a bare varint with no per-element tag,
// the same "packed repeated field" trick protobuf uses.
func arrayBodySize(v arrayWire) int {
	width := v.ByteWidth()
	n := 0
	for i := 0; i < v.Len(); i++ {
		n += varint.Len(maskBits(v.elementBits(i), width))
	}
	return n
}

func mapBodySize(v mapWire) int {
	n := 0
	for i := 0; i < v.Len(); i++ {
		keyBits, valueBits := v.entryBits(i)
		n += varint.Len(maskBits(keyBits, v.KeyByteWidth()))
		n += varint.Len(maskBits(valueBits, v.ValueByteWidth()))
	}
	return n
}

// byteArrayBodySize, submessageArrayBodySize, byteMapBodySize, and
// submessageMapBodySize are arrayBodySize/mapBodySize's counterparts
// for non-scalar elements: each element (or value) is length-delimited
// rather than a bare varint, but still carries no per-element tag —
// the length prefix alone delimits it within the packed body.
func byteArrayBodySize(v byteArrayWire) int {
	n := 0
	for i := 0; i < v.Len(); i++ {
		b := v.elementBytes(i)
		n += varint.Len(uint64(len(b))) + len(b)
	}
	return n
}

func submessageArrayBodySize(v submessageArrayWire) int {
	n := 0
	for i := 0; i < v.Len(); i++ {
		body := tlvFieldsSize(v.elementMessage(i).Fields())
		n += varint.Len(uint64(body)) + body
	}
	return n
}

func byteMapBodySize(v byteMapWire) int {
	n := 0
	for i := 0; i < v.Len(); i++ {
		n += varint.Len(maskBits(v.entryKeyBits(i), v.KeyByteWidth()))
		val := v.entryValueBytes(i)
		n += varint.Len(uint64(len(val))) + len(val)
	}
	return n
}

func submessageMapBodySize(v submessageMapWire) int {
	n := 0
	for i := 0; i < v.Len(); i++ {
		n += varint.Len(maskBits(v.entryKeyBits(i), v.KeyByteWidth()))
		body := tlvFieldsSize(v.entryValueMessage(i).Fields())
		n += varint.Len(uint64(body)) + body
	}
	return n
}

// Serialize implements Serdes. Rather than the reserve-ten-bytes,
// backpatch, and shift technique a streaming encoder needs when it
// doesn't know a body's length up front, this computes every
// length-delimited field's exact body size with the same walk Size
// uses, then writes the length varint followed immediately by the body
// in one forward pass — GetBuffer has already sized dst to fit
// exactly, so there's nothing to shift.
func (t *TLVLayout) Serialize(msg Message, dst []byte) (int, *Error) {
	w := &tlvWriter{dst: dst, pos: 4}
	w.writeFields(msg.Fields())
	endian.PutUint32(dst[0:4], uint32(w.pos-4))
	return w.pos, nil
}

type tlvWriter struct {
	dst []byte
	pos int
}

func (w *tlvWriter) putVarint(v uint64) {
	out := varint.Append(w.dst[w.pos:w.pos], v)
	w.pos += len(out)
}

func (w *tlvWriter) putBytes(b []byte) {
	copy(w.dst[w.pos:w.pos+len(b)], b)
	w.pos += len(b)
}

func (w *tlvWriter) writeFields(fields []Field) {
	for _, f := range fields {
		w.writeField(f)
	}
}

func (w *tlvWriter) writeField(f Field) {
	switch v := f.(type) {
	case scalarWire:
		if !v.IsSet() {
			return
		}
		w.putVarint(tlvTag(f.ID(), wireTypeVarint))
		w.putVarint(maskBits(v.bits(), v.ByteWidth()))
	case *StringField:
		if !v.IsSet() {
			return
		}
		value, _ := v.Get()
		w.putVarint(tlvTag(f.ID(), wireTypeLengthDelimited))
		w.putVarint(uint64(len(value)))
		w.putBytes([]byte(value))
	case arrayWire:
		if v.Len() == 0 {
			return
		}
		width := v.ByteWidth()
		w.putVarint(tlvTag(f.ID(), wireTypeLengthDelimited))
		w.putVarint(uint64(arrayBodySize(v)))
		for i := 0; i < v.Len(); i++ {
			w.putVarint(maskBits(v.elementBits(i), width))
		}
	case mapWire:
		if v.Len() == 0 {
			return
		}
		w.putVarint(tlvTag(f.ID(), wireTypeLengthDelimited))
		w.putVarint(uint64(mapBodySize(v)))
		for i := 0; i < v.Len(); i++ {
			keyBits, valueBits := v.entryBits(i)
			w.putVarint(maskBits(keyBits, v.KeyByteWidth()))
			w.putVarint(maskBits(valueBits, v.ValueByteWidth()))
		}
	case submessageWire:
		if !v.IsSet() {
			return
		}
		inner := v.innerMessage()
		w.putVarint(tlvTag(f.ID(), wireTypeLengthDelimited))
		w.putVarint(uint64(tlvFieldsSize(inner.Fields())))
		w.writeFields(inner.Fields())
	case byteArrayWire:
		if v.Len() == 0 {
			return
		}
		w.putVarint(tlvTag(f.ID(), wireTypeLengthDelimited))
		w.putVarint(uint64(byteArrayBodySize(v)))
		for i := 0; i < v.Len(); i++ {
			b := v.elementBytes(i)
			w.putVarint(uint64(len(b)))
			w.putBytes(b)
		}
	case submessageArrayWire:
		if v.Len() == 0 {
			return
		}
		w.putVarint(tlvTag(f.ID(), wireTypeLengthDelimited))
		w.putVarint(uint64(submessageArrayBodySize(v)))
		for i := 0; i < v.Len(); i++ {
			fields := v.elementMessage(i).Fields()
			w.putVarint(uint64(tlvFieldsSize(fields)))
			w.writeFields(fields)
		}
	case byteMapWire:
		if v.Len() == 0 {
			return
		}
		w.putVarint(tlvTag(f.ID(), wireTypeLengthDelimited))
		w.putVarint(uint64(byteMapBodySize(v)))
		for i := 0; i < v.Len(); i++ {
			w.putVarint(maskBits(v.entryKeyBits(i), v.KeyByteWidth()))
			val := v.entryValueBytes(i)
			w.putVarint(uint64(len(val)))
			w.putBytes(val)
		}
	case submessageMapWire:
		if v.Len() == 0 {
			return
		}
		w.putVarint(tlvTag(f.ID(), wireTypeLengthDelimited))
		w.putVarint(uint64(submessageMapBodySize(v)))
		for i := 0; i < v.Len(); i++ {
			w.putVarint(maskBits(v.entryKeyBits(i), v.KeyByteWidth()))
			fields := v.entryValueMessage(i).Fields()
			w.putVarint(uint64(tlvFieldsSize(fields)))
			w.writeFields(fields)
		}
	default:
		panic(fmt.Sprintf("crunch: tlv layout cannot write field kind %s", f.FieldKind()))
	}
}

// Deserialize implements Serdes. Every field of msg is reset to its
// zero, unset state before the tags in src are applied: TLV simply
// omits an absent field from the wire rather than writing an
// explicit is-set byte, so without this a field msg already held from
// an earlier decode would survive being missing from this payload.
func (t *TLVLayout) Deserialize(src []byte, msg Message) *Error {
	if len(src) < 4 {
		return NewDeserializationError("buffer too small for tlv payload length")
	}
	payloadLen := int(endian.Uint32(src[0:4]))
	if 4+payloadLen > len(src) {
		return NewDeserializationError("tlv length exceeds buffer")
	}
	body := src[4 : 4+payloadLen]
	resetFields(msg.Fields())
	fields := indexFieldsByID(msg.Fields())
	return decodeTLVFields(body, fields)
}

// indexFieldsByID builds an id-to-Field lookup for decode dispatch,
// since TLV field order on the wire need not match the schema's
// declaration order.
func indexFieldsByID(fields []Field) map[FieldId]Field {
	m := make(map[FieldId]Field, len(fields))
	for _, f := range fields {
		m[f.ID()] = f
	}
	return m
}

// decodeTLVFields consumes tag/value pairs from body until exhausted.
// A tag naming a field id absent from the schema, or one whose wire
// type doesn't match the field it names, fails with Deserialization. A
// field id that repeats overwrites the previous value: TLV has no
// notion of "already decoded this field" beyond whatever the field
// itself does on a second Set/Insert/Add.
func decodeTLVFields(body []byte, fields map[FieldId]Field) *Error {
	for len(body) > 0 {
		tagValue, n, ok := varint.Decode(body)
		if !ok {
			return NewDeserializationError("malformed tlv tag")
		}
		body = body[n:]
		id := FieldId(tagValue >> 3)
		wireType := tagValue & 0x7
		f, known := fields[id]
		if !known {
			return errorf(KindDeserialization, id, "unknown field id %d in tlv payload", id)
		}
		rest, err := decodeTLVField(f, wireType, body)
		if err != nil {
			return err
		}
		body = rest
	}
	return nil
}

func decodeTLVField(f Field, wireType uint64, body []byte) ([]byte, *Error) {
	switch v := f.(type) {
	case scalarWire:
		if wireType != wireTypeVarint {
			return nil, errorf(KindDeserialization, f.ID(), "field %d: expected varint wire type, got %d", f.ID(), wireType)
		}
		bits, n, ok := varint.Decode(body)
		if !ok {
			return nil, errorf(KindDeserialization, f.ID(), "field %d: malformed varint", f.ID())
		}
		v.setBits(bits)
		return body[n:], nil
	case *StringField:
		if wireType != wireTypeLengthDelimited {
			return nil, errorf(KindDeserialization, f.ID(), "field %d: expected length-delimited wire type, got %d", f.ID(), wireType)
		}
		content, rest, err := consumeLengthDelimited(f.ID(), body)
		if err != nil {
			return nil, err
		}
		if len(content) > v.MaxSize() {
			return nil, errorf(KindCapacityExceeded, f.ID(), "decoded string length %d exceeds max size %d", len(content), v.MaxSize())
		}
		v.SetWithoutValidation(string(content))
		return rest, nil
	case arrayWire:
		if wireType != wireTypeLengthDelimited {
			return nil, errorf(KindDeserialization, f.ID(), "field %d: expected length-delimited wire type, got %d", f.ID(), wireType)
		}
		content, rest, err := consumeLengthDelimited(f.ID(), body)
		if err != nil {
			return nil, err
		}
		v.reset()
		width := v.ByteWidth()
		for len(content) > 0 {
			bits, n, ok := varint.Decode(content)
			if !ok {
				return nil, errorf(KindDeserialization, f.ID(), "field %d: malformed packed element", f.ID())
			}
			if v.Len() >= v.MaxSize() {
				return nil, errorf(KindCapacityExceeded, f.ID(), "decoded array length exceeds max size %d", v.MaxSize())
			}
			v.appendElementBits(maskBits(bits, width))
			content = content[n:]
		}
		return rest, nil
	case mapWire:
		if wireType != wireTypeLengthDelimited {
			return nil, errorf(KindDeserialization, f.ID(), "field %d: expected length-delimited wire type, got %d", f.ID(), wireType)
		}
		content, rest, err := consumeLengthDelimited(f.ID(), body)
		if err != nil {
			return nil, err
		}
		v.reset()
		for len(content) > 0 {
			keyBits, n, ok := varint.Decode(content)
			if !ok {
				return nil, errorf(KindDeserialization, f.ID(), "field %d: malformed packed key", f.ID())
			}
			content = content[n:]
			valueBits, n, ok := varint.Decode(content)
			if !ok {
				return nil, errorf(KindDeserialization, f.ID(), "field %d: malformed packed value", f.ID())
			}
			content = content[n:]
			if v.Len() >= v.MaxSize() {
				return nil, errorf(KindCapacityExceeded, f.ID(), "decoded map length exceeds max size %d", v.MaxSize())
			}
			v.insertEntryBits(maskBits(keyBits, v.KeyByteWidth()), maskBits(valueBits, v.ValueByteWidth()))
		}
		return rest, nil
	case submessageWire:
		if wireType != wireTypeLengthDelimited {
			return nil, errorf(KindDeserialization, f.ID(), "field %d: expected length-delimited wire type, got %d", f.ID(), wireType)
		}
		content, rest, err := consumeLengthDelimited(f.ID(), body)
		if err != nil {
			return nil, err
		}
		inner := v.innerMessage()
		if derr := decodeTLVFields(content, indexFieldsByID(inner.Fields())); derr != nil {
			return nil, derr
		}
		v.markSet()
		return rest, nil
	case byteArrayWire:
		if wireType != wireTypeLengthDelimited {
			return nil, errorf(KindDeserialization, f.ID(), "field %d: expected length-delimited wire type, got %d", f.ID(), wireType)
		}
		content, rest, err := consumeLengthDelimited(f.ID(), body)
		if err != nil {
			return nil, err
		}
		v.reset()
		elemMax := v.ElementMaxSize()
		for len(content) > 0 {
			elem, elemRest, derr := consumeLengthDelimited(f.ID(), content)
			if derr != nil {
				return nil, derr
			}
			if len(elem) > elemMax {
				return nil, errorf(KindCapacityExceeded, f.ID(), "decoded element length %d exceeds max size %d", len(elem), elemMax)
			}
			if v.Len() >= v.MaxSize() {
				return nil, errorf(KindCapacityExceeded, f.ID(), "decoded array length exceeds max size %d", v.MaxSize())
			}
			v.appendElementBytes(elem)
			content = elemRest
		}
		return rest, nil
	case submessageArrayWire:
		if wireType != wireTypeLengthDelimited {
			return nil, errorf(KindDeserialization, f.ID(), "field %d: expected length-delimited wire type, got %d", f.ID(), wireType)
		}
		content, rest, err := consumeLengthDelimited(f.ID(), body)
		if err != nil {
			return nil, err
		}
		v.reset()
		for len(content) > 0 {
			elemBody, elemRest, derr := consumeLengthDelimited(f.ID(), content)
			if derr != nil {
				return nil, derr
			}
			if v.Len() >= v.MaxSize() {
				return nil, errorf(KindCapacityExceeded, f.ID(), "decoded array length exceeds max size %d", v.MaxSize())
			}
			elem := v.newElementMessage()
			if derr := decodeTLVFields(elemBody, indexFieldsByID(elem.Fields())); derr != nil {
				return nil, derr
			}
			content = elemRest
		}
		return rest, nil
	case byteMapWire:
		if wireType != wireTypeLengthDelimited {
			return nil, errorf(KindDeserialization, f.ID(), "field %d: expected length-delimited wire type, got %d", f.ID(), wireType)
		}
		content, rest, err := consumeLengthDelimited(f.ID(), body)
		if err != nil {
			return nil, err
		}
		v.reset()
		valueMax := v.ValueMaxSize()
		for len(content) > 0 {
			keyBits, n, ok := varint.Decode(content)
			if !ok {
				return nil, errorf(KindDeserialization, f.ID(), "field %d: malformed packed key", f.ID())
			}
			content = content[n:]
			val, valRest, derr := consumeLengthDelimited(f.ID(), content)
			if derr != nil {
				return nil, derr
			}
			if len(val) > valueMax {
				return nil, errorf(KindCapacityExceeded, f.ID(), "decoded value length %d exceeds max size %d", len(val), valueMax)
			}
			if v.Len() >= v.MaxSize() {
				return nil, errorf(KindCapacityExceeded, f.ID(), "decoded map length exceeds max size %d", v.MaxSize())
			}
			v.insertEntry(maskBits(keyBits, v.KeyByteWidth()), val)
			content = valRest
		}
		return rest, nil
	case submessageMapWire:
		if wireType != wireTypeLengthDelimited {
			return nil, errorf(KindDeserialization, f.ID(), "field %d: expected length-delimited wire type, got %d", f.ID(), wireType)
		}
		content, rest, err := consumeLengthDelimited(f.ID(), body)
		if err != nil {
			return nil, err
		}
		v.reset()
		for len(content) > 0 {
			keyBits, n, ok := varint.Decode(content)
			if !ok {
				return nil, errorf(KindDeserialization, f.ID(), "field %d: malformed packed key", f.ID())
			}
			content = content[n:]
			valBody, valRest, derr := consumeLengthDelimited(f.ID(), content)
			if derr != nil {
				return nil, derr
			}
			if v.Len() >= v.MaxSize() {
				return nil, errorf(KindCapacityExceeded, f.ID(), "decoded map length exceeds max size %d", v.MaxSize())
			}
			val := v.newEntry(maskBits(keyBits, v.KeyByteWidth()))
			if derr := decodeTLVFields(valBody, indexFieldsByID(val.Fields())); derr != nil {
				return nil, derr
			}
			content = valRest
		}
		return rest, nil
	}
	return nil, errorf(KindDeserialization, f.ID(), "field %d: unsupported field kind %s", f.ID(), f.FieldKind())
}

func consumeLengthDelimited(id FieldId, body []byte) (content, rest []byte, err *Error) {
	length, n, ok := varint.Decode(body)
	if !ok {
		return nil, nil, errorf(KindDeserialization, id, "field %d: malformed length prefix", id)
	}
	body = body[n:]
	if uint64(len(body)) < length {
		return nil, nil, errorf(KindDeserialization, id, "field %d: length-delimited value exceeds buffer", id)
	}
	return body[:length], body[length:], nil
}
