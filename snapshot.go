package crunch

import "strconv"

// FieldSnapshot returns f's current value as a plain Go value suitable
// for logging or JSON encoding: a string field's value directly, a
// {bits, byteWidth} map for a scalar, an {elements, byteWidth} map for
// a scalar array, a slice of {key, value} bit-pattern pairs for a
// scalar map, and a nested snapshot for a set submessage. It returns
// nil for an unset scalar, string, or submessage, and for string and
// submessage arrays and maps, which it does not walk. It exists for
// introspect.Dump, which has no access to this package's unexported
// wire-dispatch interfaces.
func FieldSnapshot(f Field) any {
	if f.FieldKind() == KindSubmessageField {
		sub, isSet := f.Submessage()
		if !isSet {
			return nil
		}
		return MessageSnapshot(sub)
	}
	switch v := f.(type) {
	case scalarWire:
		if !v.IsSet() {
			return nil
		}
		return scalarSnapshotValue(v)
	case *StringField:
		val, ok := v.Get()
		if !ok {
			return nil
		}
		return val
	case arrayWire:
		return arraySnapshotValue(v)
	case mapWire:
		return mapSnapshotValue(v)
	}
	return nil
}

func scalarSnapshotValue(v scalarWire) any {
	// bits() already bridges every scalar Go type to a uint64; for
	// introspection purposes reporting the raw bit pattern alongside
	// the width is enough to reconstruct the original value without
	// this package needing a reflect.Value round trip just to log it.
	return map[string]any{"bits": v.bits(), "byteWidth": v.ByteWidth()}
}

func arraySnapshotValue(v arrayWire) any {
	width := v.ByteWidth()
	elements := make([]uint64, v.Len())
	for i := range elements {
		elements[i] = v.elementBits(i)
	}
	return map[string]any{"elements": elements, "byteWidth": width}
}

func mapSnapshotValue(v mapWire) any {
	pairs := make([]map[string]uint64, v.Len())
	for i := range pairs {
		key, value := v.entryBits(i)
		pairs[i] = map[string]uint64{"key": key, "value": value}
	}
	return pairs
}

// MessageSnapshot walks msg's fields into a plain map keyed by field id,
// the shape introspect.Dump marshals to JSON.
func MessageSnapshot(msg Message) map[string]any {
	out := make(map[string]any, len(msg.Fields()))
	for _, f := range msg.Fields() {
		out[fieldSnapshotKey(f.ID())] = FieldSnapshot(f)
	}
	return out
}

func fieldSnapshotKey(id FieldId) string {
	return "field_" + strconv.FormatInt(int64(id), 10)
}
