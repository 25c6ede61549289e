package crunch

import (
	"fmt"

	"github.com/sam-w-yellin/crunch/internal/endian"
)

// StaticLayout is the fixed-offset serialization policy: every field's
// position is fully determined by the schema and
// the alignment mode, so the payload carries no tags and only the
// length prefixes strings, arrays, and maps need for their
// bounded-but-variable contents. Packed, Aligned4, and Aligned8 are all
// the same walk parameterized by one alignment value.
type StaticLayout struct {
	format Format
	align  int
}

// NewStaticLayout builds a StaticLayout for FormatPacked, FormatAligned4,
// or FormatAligned8. It panics for FormatTLV, which has no static
// alignment (see Format.alignment).
func NewStaticLayout(format Format) *StaticLayout {
	return &StaticLayout{format: format, align: format.alignment()}
}

// Format implements Serdes.
func (s *StaticLayout) Format() Format { return s.format }

func alignUp(offset, align int) int {
	if align <= 1 {
		return offset
	}
	if rem := offset % align; rem != 0 {
		return offset + (align - rem)
	}
	return offset
}

// Size implements Serdes. The returned count is measured from the byte
// immediately after the StandardHeader, matching what Serialize writes
// into dst; it includes the leading alignment padding between the
// header and the first field.
func (s *StaticLayout) Size(msg Message) int {
	offset := alignUp(headerSize, s.align)
	offset = s.sizeFields(msg.Fields(), offset)
	return offset - headerSize
}

func (s *StaticLayout) sizeFields(fields []Field, offset int) int {
	for _, f := range fields {
		offset = s.sizeField(f, offset)
	}
	return offset
}

func (s *StaticLayout) sizeField(f Field, offset int) int {
	switch v := f.(type) {
	case arrayWire:
		offset = alignUp(offset, min(4, s.align))
		return offset + 4 + v.MaxSize()*v.ByteWidth()
	case mapWire:
		offset = alignUp(offset, min(4, s.align))
		return offset + 4 + v.MaxSize()*(v.KeyByteWidth()+v.ValueByteWidth())
	case submessageWire:
		offset++
		offset = alignUp(offset, s.align)
		offset += 4
		return s.sizeFields(v.innerMessage().Fields(), offset)
	case scalarWire:
		offset++
		offset = alignUp(offset, min(v.ByteWidth(), s.align))
		return offset + v.ByteWidth()
	case *StringField:
		offset++
		offset = alignUp(offset, min(4, s.align))
		return offset + 4 + v.MaxSize()
	case byteArrayWire:
		offset = alignUp(offset, min(4, s.align))
		elemWidth := 4 + v.ElementMaxSize()
		return offset + 4 + v.MaxSize()*elemWidth
	case submessageArrayWire:
		offset = alignUp(offset, min(4, s.align))
		offset += 4
		tmpl := v.templateMessage()
		for i := 0; i < v.MaxSize(); i++ {
			offset = alignUp(offset, s.align)
			offset += 4
			offset = s.sizeFields(tmpl.Fields(), offset)
		}
		return offset
	case byteMapWire:
		offset = alignUp(offset, min(4, s.align))
		pairWidth := v.KeyByteWidth() + 4 + v.ValueMaxSize()
		return offset + 4 + v.MaxSize()*pairWidth
	case submessageMapWire:
		offset = alignUp(offset, min(4, s.align))
		offset += 4
		tmpl := v.templateValueMessage()
		for i := 0; i < v.MaxSize(); i++ {
			offset += v.KeyByteWidth()
			offset = alignUp(offset, s.align)
			offset += 4
			offset = s.sizeFields(tmpl.Fields(), offset)
		}
		return offset
	}
	panic(fmt.Sprintf("crunch: static layout cannot size field kind %s", f.FieldKind()))
}

// Serialize implements Serdes.
func (s *StaticLayout) Serialize(msg Message, dst []byte) (int, *Error) {
	w := &staticWriter{align: s.align, dst: dst, global: headerSize}
	w.padTo(s.align)
	if err := w.writeFields(msg.Fields()); err != nil {
		return 0, err
	}
	return w.global - headerSize, nil
}

type staticWriter struct {
	align  int
	dst    []byte
	global int // offset measured from the start of the StandardHeader
}

func (w *staticWriter) local() int { return w.global - headerSize }

func (w *staticWriter) padTo(align int) {
	target := alignUp(w.global, align)
	for w.global < target {
		w.dst[w.local()] = 0
		w.global++
	}
}

func (w *staticWriter) zeroFill(n int) {
	buf := w.dst[w.local() : w.local()+n]
	for i := range buf {
		buf[i] = 0
	}
	w.global += n
}

func (w *staticWriter) putByte(b byte) {
	w.dst[w.local()] = b
	w.global++
}

func (w *staticWriter) putUint32(v uint32) {
	endian.PutUint32(w.dst[w.local():], v)
	w.global += 4
}

func (w *staticWriter) putBits(bits uint64, width int) {
	buf := w.dst[w.local() : w.local()+width]
	switch width {
	case 1:
		buf[0] = byte(bits)
	case 2:
		endian.PutUint16(buf, uint16(bits))
	case 4:
		endian.PutUint32(buf, uint32(bits))
	case 8:
		endian.PutUint64(buf, bits)
	}
	w.global += width
}

func (w *staticWriter) putString(value string, maxSize int) {
	buf := w.dst[w.local() : w.local()+maxSize]
	for i := range buf {
		buf[i] = 0
	}
	copy(buf, value)
	w.global += maxSize
}

func (w *staticWriter) putBytesFixed(value []byte, maxSize int) {
	buf := w.dst[w.local() : w.local()+maxSize]
	for i := range buf {
		buf[i] = 0
	}
	copy(buf, value)
	w.global += maxSize
}

func (w *staticWriter) writeFields(fields []Field) *Error {
	for _, f := range fields {
		if err := w.writeField(f); err != nil {
			return err
		}
	}
	return nil
}

func (w *staticWriter) writeField(f Field) *Error {
	switch v := f.(type) {
	case arrayWire:
		w.padTo(min(4, w.align))
		w.putUint32(uint32(v.Len()))
		width := v.ByteWidth()
		for i := 0; i < v.Len(); i++ {
			w.putBits(v.elementBits(i), width)
		}
		w.zeroFill((v.MaxSize() - v.Len()) * width)
		return nil
	case mapWire:
		w.padTo(min(4, w.align))
		w.putUint32(uint32(v.Len()))
		pairWidth := v.KeyByteWidth() + v.ValueByteWidth()
		for i := 0; i < v.Len(); i++ {
			keyBits, valueBits := v.entryBits(i)
			w.putBits(keyBits, v.KeyByteWidth())
			w.putBits(valueBits, v.ValueByteWidth())
		}
		w.zeroFill((v.MaxSize() - v.Len()) * pairWidth)
		return nil
	case submessageWire:
		if v.IsSet() {
			w.putByte(1)
		} else {
			w.putByte(0)
		}
		w.padTo(w.align)
		inner := v.innerMessage()
		w.putUint32(uint32(inner.MessageID()))
		return w.writeFields(inner.Fields())
	case scalarWire:
		if v.IsSet() {
			w.putByte(1)
		} else {
			w.putByte(0)
		}
		width := v.ByteWidth()
		w.padTo(min(width, w.align))
		w.putBits(v.bits(), width)
		return nil
	case *StringField:
		if v.IsSet() {
			w.putByte(1)
		} else {
			w.putByte(0)
		}
		w.padTo(min(4, w.align))
		value, _ := v.Get()
		w.putUint32(uint32(len(value)))
		w.putString(value, v.MaxSize())
		return nil
	case byteArrayWire:
		w.padTo(min(4, w.align))
		w.putUint32(uint32(v.Len()))
		elemMax := v.ElementMaxSize()
		for i := 0; i < v.Len(); i++ {
			b := v.elementBytes(i)
			w.putUint32(uint32(len(b)))
			w.putBytesFixed(b, elemMax)
		}
		w.zeroFill((v.MaxSize() - v.Len()) * (4 + elemMax))
		return nil
	case submessageArrayWire:
		w.padTo(min(4, w.align))
		w.putUint32(uint32(v.Len()))
		for i := 0; i < v.Len(); i++ {
			w.padTo(w.align)
			elem := v.elementMessage(i)
			w.putUint32(uint32(elem.MessageID()))
			if err := w.writeFields(elem.Fields()); err != nil {
				return err
			}
		}
		blank := v.templateMessage()
		for i := v.Len(); i < v.MaxSize(); i++ {
			w.padTo(w.align)
			start := w.local()
			w.putUint32(uint32(blank.MessageID()))
			if err := w.writeFields(blank.Fields()); err != nil {
				return err
			}
			for j := start; j < w.local(); j++ {
				w.dst[j] = 0
			}
		}
		return nil
	case byteMapWire:
		w.padTo(min(4, w.align))
		w.putUint32(uint32(v.Len()))
		valueMax := v.ValueMaxSize()
		pairWidth := v.KeyByteWidth() + 4 + valueMax
		for i := 0; i < v.Len(); i++ {
			w.putBits(v.entryKeyBits(i), v.KeyByteWidth())
			val := v.entryValueBytes(i)
			w.putUint32(uint32(len(val)))
			w.putBytesFixed(val, valueMax)
		}
		w.zeroFill((v.MaxSize() - v.Len()) * pairWidth)
		return nil
	case submessageMapWire:
		w.padTo(min(4, w.align))
		w.putUint32(uint32(v.Len()))
		for i := 0; i < v.Len(); i++ {
			w.putBits(v.entryKeyBits(i), v.KeyByteWidth())
			w.padTo(w.align)
			val := v.entryValueMessage(i)
			w.putUint32(uint32(val.MessageID()))
			if err := w.writeFields(val.Fields()); err != nil {
				return err
			}
		}
		blank := v.templateValueMessage()
		for i := v.Len(); i < v.MaxSize(); i++ {
			w.putBits(0, v.KeyByteWidth())
			w.padTo(w.align)
			start := w.local()
			w.putUint32(uint32(blank.MessageID()))
			if err := w.writeFields(blank.Fields()); err != nil {
				return err
			}
			for j := start; j < w.local(); j++ {
				w.dst[j] = 0
			}
		}
		return nil
	}
	panic(fmt.Sprintf("crunch: static layout cannot write field kind %s", f.FieldKind()))
}

// Deserialize implements Serdes.
func (s *StaticLayout) Deserialize(src []byte, msg Message) *Error {
	r := &staticReader{align: s.align, src: src, global: headerSize}
	if err := r.padTo(s.align); err != nil {
		return err
	}
	return r.readFields(msg.Fields())
}

type staticReader struct {
	align  int
	src    []byte
	global int
}

func (r *staticReader) local() int { return r.global - headerSize }

func (r *staticReader) need(n int) *Error {
	if r.local()+n > len(r.src) {
		return NewDeserializationError("buffer too small for static payload")
	}
	return nil
}

func (r *staticReader) padTo(align int) *Error {
	target := alignUp(r.global, align)
	if err := r.need(target - r.global); err != nil {
		return err
	}
	r.global = target
	return nil
}

func (r *staticReader) getByte() (byte, *Error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	b := r.src[r.local()]
	r.global++
	return b, nil
}

func (r *staticReader) getUint32() (uint32, *Error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := endian.Uint32(r.src[r.local():])
	r.global += 4
	return v, nil
}

func (r *staticReader) getBits(width int) (uint64, *Error) {
	if err := r.need(width); err != nil {
		return 0, err
	}
	buf := r.src[r.local() : r.local()+width]
	var v uint64
	switch width {
	case 1:
		v = uint64(buf[0])
	case 2:
		v = uint64(endian.Uint16(buf))
	case 4:
		v = uint64(endian.Uint32(buf))
	case 8:
		v = endian.Uint64(buf)
	}
	r.global += width
	return v, nil
}

func (r *staticReader) getString(maxSize int) (string, *Error) {
	if err := r.need(maxSize); err != nil {
		return "", err
	}
	buf := r.src[r.local() : r.local()+maxSize]
	r.global += maxSize
	return string(buf), nil
}

func (r *staticReader) getBytesFixed(maxSize int) ([]byte, *Error) {
	if err := r.need(maxSize); err != nil {
		return nil, err
	}
	buf := r.src[r.local() : r.local()+maxSize]
	r.global += maxSize
	return buf, nil
}

func (r *staticReader) skip(n int) *Error {
	if err := r.need(n); err != nil {
		return err
	}
	r.global += n
	return nil
}

func (r *staticReader) readFields(fields []Field) *Error {
	for _, f := range fields {
		if err := r.readField(f); err != nil {
			return err
		}
	}
	return nil
}

func (r *staticReader) readField(f Field) *Error {
	switch v := f.(type) {
	case arrayWire:
		if err := r.padTo(min(4, r.align)); err != nil {
			return err
		}
		count, err := r.getUint32()
		if err != nil {
			return err
		}
		if int(count) > v.MaxSize() {
			return errorf(KindCapacityExceeded, f.ID(), "decoded array length %d exceeds max size %d", count, v.MaxSize())
		}
		v.reset()
		width := v.ByteWidth()
		for i := uint32(0); i < count; i++ {
			bits, err := r.getBits(width)
			if err != nil {
				return err
			}
			v.appendElementBits(bits)
		}
		return r.skip((v.MaxSize() - int(count)) * width)
	case mapWire:
		if err := r.padTo(min(4, r.align)); err != nil {
			return err
		}
		count, err := r.getUint32()
		if err != nil {
			return err
		}
		if int(count) > v.MaxSize() {
			return errorf(KindCapacityExceeded, f.ID(), "decoded map length %d exceeds max size %d", count, v.MaxSize())
		}
		v.reset()
		pairWidth := v.KeyByteWidth() + v.ValueByteWidth()
		for i := uint32(0); i < count; i++ {
			keyBits, err := r.getBits(v.KeyByteWidth())
			if err != nil {
				return err
			}
			valueBits, err := r.getBits(v.ValueByteWidth())
			if err != nil {
				return err
			}
			v.insertEntryBits(keyBits, valueBits)
		}
		return r.skip((v.MaxSize() - int(count)) * pairWidth)
	case submessageWire:
		isSet, err := r.getByte()
		if err != nil {
			return err
		}
		if err := r.padTo(r.align); err != nil {
			return err
		}
		msgID, err := r.getUint32()
		if err != nil {
			return err
		}
		inner := v.innerMessage()
		if isSet != 0 && MessageId(msgID) != inner.MessageID() {
			return errorf(KindInvalidMessageID, f.ID(), "field %d: nested message id %d does not match expected %d", f.ID(), msgID, inner.MessageID())
		}
		if err := r.readFields(inner.Fields()); err != nil {
			return err
		}
		if isSet != 0 {
			v.markSet()
		} else {
			v.clearSet()
		}
		return nil
	case scalarWire:
		isSet, err := r.getByte()
		if err != nil {
			return err
		}
		width := v.ByteWidth()
		if err := r.padTo(min(width, r.align)); err != nil {
			return err
		}
		bits, err := r.getBits(width)
		if err != nil {
			return err
		}
		// The writer always emits the full slot, zero-valued when unset;
		// only apply the bits just read when the encoder actually set
		// this field, and otherwise clear it, so the decoded field's
		// IsSet matches the source regardless of what msg held before
		// this call.
		if isSet != 0 {
			v.setBits(bits)
		} else {
			v.clear()
		}
		return nil
	case *StringField:
		isSet, err := r.getByte()
		if err != nil {
			return err
		}
		if err := r.padTo(min(4, r.align)); err != nil {
			return err
		}
		length, err := r.getUint32()
		if err != nil {
			return err
		}
		if int(length) > v.MaxSize() {
			return errorf(KindCapacityExceeded, f.ID(), "decoded string length %d exceeds max size %d", length, v.MaxSize())
		}
		full, err := r.getString(v.MaxSize())
		if err != nil {
			return err
		}
		if isSet != 0 {
			v.SetWithoutValidation(full[:length])
		} else {
			v.clear()
		}
		return nil
	case byteArrayWire:
		if err := r.padTo(min(4, r.align)); err != nil {
			return err
		}
		count, err := r.getUint32()
		if err != nil {
			return err
		}
		if int(count) > v.MaxSize() {
			return errorf(KindCapacityExceeded, f.ID(), "decoded array length %d exceeds max size %d", count, v.MaxSize())
		}
		v.reset()
		elemMax := v.ElementMaxSize()
		for i := uint32(0); i < count; i++ {
			length, err := r.getUint32()
			if err != nil {
				return err
			}
			if int(length) > elemMax {
				return errorf(KindCapacityExceeded, f.ID(), "decoded element length %d exceeds max size %d", length, elemMax)
			}
			full, err := r.getBytesFixed(elemMax)
			if err != nil {
				return err
			}
			v.appendElementBytes(full[:length])
		}
		return r.skip((v.MaxSize() - int(count)) * (4 + elemMax))
	case submessageArrayWire:
		if err := r.padTo(min(4, r.align)); err != nil {
			return err
		}
		count, err := r.getUint32()
		if err != nil {
			return err
		}
		if int(count) > v.MaxSize() {
			return errorf(KindCapacityExceeded, f.ID(), "decoded array length %d exceeds max size %d", count, v.MaxSize())
		}
		v.reset()
		for i := uint32(0); i < count; i++ {
			if err := r.padTo(r.align); err != nil {
				return err
			}
			msgID, err := r.getUint32()
			if err != nil {
				return err
			}
			elem := v.newElementMessage()
			if MessageId(msgID) != elem.MessageID() {
				return errorf(KindInvalidMessageID, f.ID(), "field %d: array element message id %d does not match expected %d", f.ID(), msgID, elem.MessageID())
			}
			if err := r.readFields(elem.Fields()); err != nil {
				return err
			}
		}
		blank := v.templateMessage()
		for i := count; i < uint32(v.MaxSize()); i++ {
			if err := r.padTo(r.align); err != nil {
				return err
			}
			if _, err := r.getUint32(); err != nil {
				return err
			}
			if err := r.readFields(blank.Fields()); err != nil {
				return err
			}
		}
		return nil
	case byteMapWire:
		if err := r.padTo(min(4, r.align)); err != nil {
			return err
		}
		count, err := r.getUint32()
		if err != nil {
			return err
		}
		if int(count) > v.MaxSize() {
			return errorf(KindCapacityExceeded, f.ID(), "decoded map length %d exceeds max size %d", count, v.MaxSize())
		}
		v.reset()
		valueMax := v.ValueMaxSize()
		pairWidth := v.KeyByteWidth() + 4 + valueMax
		for i := uint32(0); i < count; i++ {
			keyBits, err := r.getBits(v.KeyByteWidth())
			if err != nil {
				return err
			}
			length, err := r.getUint32()
			if err != nil {
				return err
			}
			if int(length) > valueMax {
				return errorf(KindCapacityExceeded, f.ID(), "decoded value length %d exceeds max size %d", length, valueMax)
			}
			full, err := r.getBytesFixed(valueMax)
			if err != nil {
				return err
			}
			v.insertEntry(keyBits, full[:length])
		}
		return r.skip((v.MaxSize() - int(count)) * pairWidth)
	case submessageMapWire:
		if err := r.padTo(min(4, r.align)); err != nil {
			return err
		}
		count, err := r.getUint32()
		if err != nil {
			return err
		}
		if int(count) > v.MaxSize() {
			return errorf(KindCapacityExceeded, f.ID(), "decoded map length %d exceeds max size %d", count, v.MaxSize())
		}
		v.reset()
		for i := uint32(0); i < count; i++ {
			keyBits, err := r.getBits(v.KeyByteWidth())
			if err != nil {
				return err
			}
			if err := r.padTo(r.align); err != nil {
				return err
			}
			msgID, err := r.getUint32()
			if err != nil {
				return err
			}
			val := v.newEntry(keyBits)
			if MessageId(msgID) != val.MessageID() {
				return errorf(KindInvalidMessageID, f.ID(), "field %d: map value message id %d does not match expected %d", f.ID(), msgID, val.MessageID())
			}
			if err := r.readFields(val.Fields()); err != nil {
				return err
			}
		}
		blank := v.templateValueMessage()
		for i := count; i < uint32(v.MaxSize()); i++ {
			if _, err := r.getBits(v.KeyByteWidth()); err != nil {
				return err
			}
			if err := r.padTo(r.align); err != nil {
				return err
			}
			if _, err := r.getUint32(); err != nil {
				return err
			}
			if err := r.readFields(blank.Fields()); err != nil {
				return err
			}
		}
		return nil
	}
	panic(fmt.Sprintf("crunch: static layout cannot read field kind %s", f.FieldKind()))
}
