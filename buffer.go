package crunch

// Buffer holds one encoded message: a byte array sized exactly to its
// contents at construction and never grown afterward. There is no
// append-style API — GetBuffer computes the required size once, from
// the schema and the message's current field values, and hands back a
// zeroed Buffer of that size for Serialize to fill.
type Buffer struct {
	bytes []byte
}

// Bytes returns the buffer's contents. The caller must not retain a
// mutable view past the Buffer's own lifetime expectations; Bytes
// itself never copies.
func (b *Buffer) Bytes() []byte { return b.bytes }

// Len returns the number of bytes the buffer holds.
func (b *Buffer) Len() int { return len(b.bytes) }

// GetBuffer computes msg's total encoded size under serdes and
// integrity, allocates exactly that many bytes once via make, and
// returns a Buffer wrapping them. It does not itself validate or
// serialize msg; call Serialize (or Validate then
// SerializeWithoutValidation) to fill the buffer's contents.
func GetBuffer[M Message](serdes Serdes, integrity Integrity, msg M) *Buffer {
	n := headerSize + serdes.Size(msg) + integrity.Size()
	return &Buffer{bytes: make([]byte, n)}
}
