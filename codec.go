package crunch

import "bytes"

// Validate runs msg's presence checks, field validators, and cross-field
// invariant, recursing into any set submessage. It's exposed on its own
// so callers can validate a message they built by hand without going
// through Serialize.
func Validate(msg Message) error {
	return ValidateMessage(msg)
}

// Serialize validates msg, then encodes it into buf using serdes and
// appends integrity's trailer. buf must have been sized by GetBuffer
// for this exact serdes/integrity/msg combination. A larger buffer
// makes Serialize return a Deserialization error, since the payload
// written is shorter than the space left for it; a smaller one can
// panic on an out-of-range write.
func Serialize[M Message](serdes Serdes, integrity Integrity, msg M, buf *Buffer) error {
	if err := ValidateMessage(msg); err != nil {
		return err
	}
	return SerializeWithoutValidation(serdes, integrity, msg, buf)
}

// SerializeWithoutValidation is Serialize without the upfront Validate
// call, for callers that already know msg is valid (for example, a
// message decoded from another buffer and passed straight through) and
// want to skip re-running every validator.
func SerializeWithoutValidation[M Message](serdes Serdes, integrity Integrity, msg M, buf *Buffer) error {
	dst := buf.bytes
	writeHeader(dst[:headerSize], serdes.Format(), msg.MessageID())
	payload := dst[headerSize : len(dst)-integrity.Size()]
	n, err := serdes.Serialize(msg, payload)
	if err != nil {
		return err
	}
	if n != len(payload) {
		return NewDeserializationError("serdes wrote a payload of unexpected length")
	}
	trailer := integrity.Calculate(dst[:headerSize+n])
	copy(dst[headerSize+n:], trailer)
	return nil
}

// Deserialize checks integrity's trailer, validates the header against
// serdes's format and msg's message id, decodes the payload into msg's
// fields, and finally validates the fully populated msg. On any failure
// msg's fields may hold partially decoded data; callers must not trust
// msg's contents after a non-nil error.
func Deserialize[M Message](serdes Serdes, integrity Integrity, src []byte, msg M) error {
	trailerSize := integrity.Size()
	if len(src) < headerSize+trailerSize {
		return NewDeserializationError("buffer too small for header and integrity trailer")
	}
	covered := src[:len(src)-trailerSize]
	trailer := src[len(covered):]
	want := integrity.Calculate(covered)
	if !bytes.Equal(want, trailer) {
		return NewIntegrityError("integrity check failed")
	}
	if _, err := readHeader(src, serdes.Format(), msg.MessageID()); err != nil {
		return err
	}
	payload := src[headerSize : len(src)-trailerSize]
	if err := serdes.Deserialize(payload, msg); err != nil {
		return err
	}
	return ValidateMessage(msg)
}
