// Package endian centralizes the little-endian-on-wire conversions the
// static and TLV layouts both need, mirroring the original crunch
// library's crunch_endian.hpp: every scalar write or read funnels
// through one helper instead of each field kind reimplementing
// encoding/binary calls. Go's supported build targets (amd64, arm64,
// ...) are little-endian, so these helpers never actually swap bytes,
// but keeping the seam means a big-endian target only needs changes
// here.
package endian

import "encoding/binary"

// PutUint16 writes v little-endian into dst.
func PutUint16(dst []byte, v uint16) { binary.LittleEndian.PutUint16(dst, v) }

// PutUint32 writes v little-endian into dst.
func PutUint32(dst []byte, v uint32) { binary.LittleEndian.PutUint32(dst, v) }

// PutUint64 writes v little-endian into dst.
func PutUint64(dst []byte, v uint64) { binary.LittleEndian.PutUint64(dst, v) }

// Uint16 reads a little-endian uint16 from src.
func Uint16(src []byte) uint16 { return binary.LittleEndian.Uint16(src) }

// Uint32 reads a little-endian uint32 from src.
func Uint32(src []byte) uint32 { return binary.LittleEndian.Uint32(src) }

// Uint64 reads a little-endian uint64 from src.
func Uint64(src []byte) uint64 { return binary.LittleEndian.Uint64(src) }
