package crunch

import (
	"testing"

	"github.com/sam-w-yellin/crunch/internal/assert"
)

func TestCRC16CCITTCheckStringVector(t *testing.T) {
	// The standard CRC-16/CCITT-FALSE check value for the ASCII bytes
	// "123456789" is 0x29B1.
	got := crc16CCITT([]byte("123456789"))
	assert.Equal(t, got, uint16(0x29B1))
}

func TestCRC16IntegrityTrailerIsBigEndian(t *testing.T) {
	trailer := CRC16Integrity{}.Calculate([]byte("123456789"))
	assert.Equal(t, trailer, []byte{0x29, 0xB1})
}

func TestParityIntegrityDetectsCorruption(t *testing.T) {
	msg := newMyMessage()
	assert.Nil(t, msg.Field1.Set(5))
	serdes := NewStaticLayout(FormatAligned4)
	buf := GetBuffer(serdes, ParityIntegrity{}, msg)
	assert.Nil(t, Serialize(serdes, ParityIntegrity{}, msg, buf))

	corrupted := append([]byte(nil), buf.Bytes()...)
	corrupted[8] ^= 0xFF

	decoded := newMyMessage()
	err := Deserialize(serdes, ParityIntegrity{}, corrupted, decoded)
	assert.NotNil(t, err)
	kind, ok := ErrorKind(err)
	assert.True(t, ok)
	assert.Equal(t, kind, KindIntegrity)
}

func TestNoIntegrityAppendsNothing(t *testing.T) {
	msg := newMyMessage()
	assert.Nil(t, msg.Field1.Set(5))
	serdes := NewStaticLayout(FormatPacked)
	buf := GetBuffer(serdes, NoIntegrity{}, msg)
	assert.Equal(t, buf.Len(), headerSize+serdes.Size(msg))
}
