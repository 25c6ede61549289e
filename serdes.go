package crunch

// Serdes is a serialization policy: it knows how large a message's
// payload will be and how to write and read that payload. It says
// nothing about the StandardHeader or the integrity trailer, which
// Serialize and Deserialize (codec.go) layer on top of any Serdes.
//
// The two concrete Serdes implementations are StaticLayout
// (Packed/Aligned4/Aligned8) and TLVLayout.
type Serdes interface {
	// Format identifies which policy this is, written into the
	// StandardHeader's format byte and checked back on decode.
	Format() Format
	// Size returns the exact number of payload bytes Serialize will
	// write for msg's current field values, measured from the byte
	// immediately after the StandardHeader.
	Size(msg Message) int
	// Serialize writes msg's payload into dst, which must have length
	// at least Size(msg), and returns the number of bytes written.
	Serialize(msg Message, dst []byte) (int, *Error)
	// Deserialize reads a payload from the front of src into msg's
	// fields using SetWithoutValidation throughout. The caller
	// validates msg afterward; Deserialize itself only rejects
	// structurally malformed input.
	Deserialize(src []byte, msg Message) *Error
}
