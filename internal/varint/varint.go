// Package varint implements the unsigned-LEB128 primitive this codec
// treats as an external collaborator, specified only by its
// encode/decode contract: maximum 10 bytes, encoding zero as a single
// zero byte, and decode failures on a truncated input or a value
// requiring more than 64 bits.
//
// The wire bytes this package produces are the same unsigned LEB128
// google.golang.org/protobuf uses for its own varint fields, so rather
// than hand-roll the bit-shuffling this package wraps
// google.golang.org/protobuf/encoding/protowire's exported Append/Consume
// helpers, which already implement the exact contract above. The TLV
// tag scheme built on top of these varints (field id and wire type
// packed together) is spec-defined and does not reuse protowire's own
// tag helpers — see ../../tlv_layout.go.
package varint

import "google.golang.org/protobuf/encoding/protowire"

// MaxLen is the longest a varint encoding of a uint64 can be.
const MaxLen = 10

// Append encodes v and appends it to dst, returning the extended slice.
func Append(dst []byte, v uint64) []byte {
	return protowire.AppendVarint(dst, v)
}

// Decode reads a varint from the front of src, returning the decoded
// value and the number of bytes consumed. ok is false if src is
// truncated mid-varint or encodes a value that doesn't fit in 64 bits.
func Decode(src []byte) (value uint64, consumed int, ok bool) {
	v, n := protowire.ConsumeVarint(src)
	if n < 0 {
		return 0, 0, false
	}
	return v, n, true
}

// Len reports how many bytes Append(nil, v) would produce, without
// allocating, so callers can size a buffer before encoding into it.
func Len(v uint64) int {
	return protowire.SizeVarint(v)
}
