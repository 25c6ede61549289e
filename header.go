package crunch

import "github.com/sam-w-yellin/crunch/internal/endian"

// protocolVersion is the current wire version. Decoding rejects any
// other value; this codec makes no attempt at cross-version
// compatibility (spec Non-goals).
const protocolVersion uint8 = 3

// headerSize is the fixed size in bytes of a StandardHeader:
// version(1) + format(1) + message id(4, little-endian).
const headerSize = 6

// standardHeader is the fixed 6-byte prefix every encoded message
// carries ahead of its serdes payload.
type standardHeader struct {
	version   uint8
	format    Format
	messageID MessageId
}

func writeHeader(dst []byte, format Format, id MessageId) {
	_ = dst[headerSize-1] // bounds check hint
	dst[0] = protocolVersion
	dst[1] = uint8(format)
	endian.PutUint32(dst[2:6], uint32(id))
}

// readHeader parses and validates a StandardHeader against the format
// and message id an operation expects.
func readHeader(src []byte, wantFormat Format, wantID MessageId) (standardHeader, *Error) {
	if len(src) < headerSize {
		return standardHeader{}, NewDeserializationError("buffer too small for header")
	}
	h := standardHeader{
		version:   src[0],
		format:    Format(src[1]),
		messageID: MessageId(endian.Uint32(src[2:6])),
	}
	if h.version != protocolVersion {
		return h, errorf(KindDeserialization, noField, "unsupported protocol version %d", h.version)
	}
	if h.format != wantFormat {
		return h, errorf(KindInvalidFormat, noField, "header format %s does not match expected %s", h.format, wantFormat)
	}
	if h.messageID != wantID {
		return h, errorf(KindInvalidMessageID, noField, "header message id %d does not match expected %d", h.messageID, wantID)
	}
	return h, nil
}

// peekHeader parses a StandardHeader without validating format or
// message id, for use by the multi-message Decoder, which must inspect
// the id before it knows which type to validate against.
func peekHeader(src []byte) (standardHeader, *Error) {
	if len(src) < headerSize {
		return standardHeader{}, NewDeserializationError("buffer too small for header")
	}
	h := standardHeader{
		version:   src[0],
		format:    Format(src[1]),
		messageID: MessageId(endian.Uint32(src[2:6])),
	}
	if h.version != protocolVersion {
		return h, errorf(KindDeserialization, noField, "unsupported protocol version %d", h.version)
	}
	return h, nil
}
