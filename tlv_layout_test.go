package crunch

import (
	"encoding/binary"
	"testing"

	"github.com/sam-w-yellin/crunch/internal/assert"
)

func TestTLVLayoutDecodesKnownBytes(t *testing.T) {
	// A message with a single required int32 field id 2, wire type
	// varint, holding the value 42. tag = (2<<3)|0 = 0x10.
	msg := newOtherMessageWithFieldID(2)

	payload := []byte{0x10, 0x2a}
	src := make([]byte, headerSize+4+len(payload))
	writeHeader(src, FormatTLV, msg.MessageID())
	binary.LittleEndian.PutUint32(src[headerSize:], uint32(len(payload)))
	copy(src[headerSize+4:], payload)

	serdes := NewTLVLayout()
	decoded := newOtherMessageWithFieldID(2)
	assert.Nil(t, Deserialize(serdes, NoIntegrity{}, src, decoded))
	v, ok := decoded.Field1.Get()
	assert.True(t, ok)
	assert.Equal(t, v, int32(42))
}

func TestTLVLayoutRejectsUnknownFieldID(t *testing.T) {
	msg := newOtherMessageWithFieldID(2)
	// tag names field id 9, which the schema doesn't declare.
	payload := []byte{0x48, 0x2a}
	src := make([]byte, headerSize+4+len(payload))
	writeHeader(src, FormatTLV, msg.MessageID())
	binary.LittleEndian.PutUint32(src[headerSize:], uint32(len(payload)))
	copy(src[headerSize+4:], payload)

	serdes := NewTLVLayout()
	decoded := newOtherMessageWithFieldID(2)
	err := Deserialize(serdes, NoIntegrity{}, src, decoded)
	assert.NotNil(t, err)
	kind, ok := ErrorKind(err)
	assert.True(t, ok)
	assert.Equal(t, kind, KindDeserialization)
}

func TestTLVLayoutRejectsLengthExceedingBuffer(t *testing.T) {
	msg := newOtherMessageWithFieldID(2)
	src := make([]byte, headerSize+4)
	writeHeader(src, FormatTLV, msg.MessageID())
	binary.LittleEndian.PutUint32(src[headerSize:], 100)

	serdes := NewTLVLayout()
	decoded := newOtherMessageWithFieldID(2)
	err := Deserialize(serdes, NoIntegrity{}, src, decoded)
	assert.NotNil(t, err)
	kind, ok := ErrorKind(err)
	assert.True(t, ok)
	assert.Equal(t, kind, KindDeserialization)
}

func TestTLVLayoutRoundTripsKitchen(t *testing.T) {
	k := newKitchen()
	assert.Nil(t, k.Count.Set(-9))
	assert.Nil(t, k.Name.Set("kettle"))
	assert.Nil(t, k.Tags.Add(-1))
	assert.Nil(t, k.Tags.Add(300))
	assert.Nil(t, k.Scores.Insert(7, 1.5))
	assert.Nil(t, k.Home.Inner().City.Set("Ames"))
	k.Home.Set(k.Home.Inner())

	serdes := NewTLVLayout()
	buf := GetBuffer(serdes, CRC16Integrity{}, k)
	assert.Nil(t, Serialize(serdes, CRC16Integrity{}, k, buf))

	decoded := newKitchen()
	assert.Nil(t, Deserialize(serdes, CRC16Integrity{}, buf.Bytes(), decoded))

	count, _ := decoded.Count.Get()
	assert.Equal(t, count, int32(-9))
	assert.Equal(t, decoded.Tags.Get(), []int16{-1, 300})
	v, ok := decoded.Scores.At(7)
	assert.True(t, ok)
	assert.Equal(t, v, float32(1.5))
	home, ok := decoded.Home.Get()
	assert.True(t, ok)
	city, _ := home.City.Get()
	assert.Equal(t, city, "Ames")
}

func TestTLVLayoutDecodeClearsFieldsAbsentFromSource(t *testing.T) {
	serdes := NewTLVLayout()

	full := newKitchen()
	assert.Nil(t, full.Count.Set(9))
	assert.Nil(t, full.Name.Set("kettle"))
	assert.Nil(t, full.Tags.Add(1))
	assert.Nil(t, full.Scores.Insert(1, 2.5))
	assert.Nil(t, full.Home.Inner().City.Set("Ames"))
	full.Home.Set(full.Home.Inner())
	fullBuf := GetBuffer(serdes, NoIntegrity{}, full)
	assert.Nil(t, Serialize(serdes, NoIntegrity{}, full, fullBuf))

	// Decode the fully populated message into a reused object first, so
	// it starts with every optional field set and non-empty.
	reused := newKitchen()
	assert.Nil(t, Deserialize(serdes, NoIntegrity{}, fullBuf.Bytes(), reused))
	assert.True(t, reused.Count.IsSet())
	assert.True(t, reused.Name.IsSet())
	assert.True(t, reused.Home.IsSet())
	assert.Equal(t, reused.Tags.Len(), 1)
	assert.Equal(t, reused.Scores.Len(), 1)

	// TLV omits every unset optional field entirely; decoding one into
	// the same object must still clear the fields the new payload
	// leaves out, not just skip over them.
	empty := newKitchen()
	emptyBuf := GetBuffer(serdes, NoIntegrity{}, empty)
	assert.Nil(t, Serialize(serdes, NoIntegrity{}, empty, emptyBuf))
	assert.Nil(t, Deserialize(serdes, NoIntegrity{}, emptyBuf.Bytes(), reused))

	assert.False(t, reused.Count.IsSet())
	assert.False(t, reused.Name.IsSet())
	assert.False(t, reused.Home.IsSet())
	assert.Equal(t, reused.Tags.Len(), 0)
	assert.Equal(t, reused.Scores.Len(), 0)
}

func TestTLVLayoutCrewRoundTrip(t *testing.T) {
	c := newCrew()
	assert.Nil(t, c.Nicknames.Add("Ace"))
	assert.Nil(t, c.Nicknames.Add("Duke"))
	assert.Nil(t, c.Waypoints.Add(newAddress()))
	assert.Nil(t, c.Waypoints.Get()[0].City.Set("Ames"))
	assert.Nil(t, c.Callsigns.Insert(1, "tango"))
	base := newAddress()
	assert.Nil(t, base.City.Set("Reno"))
	assert.Nil(t, c.Bases.Insert(9, base))

	serdes := NewTLVLayout()
	buf := GetBuffer(serdes, CRC16Integrity{}, c)
	assert.Nil(t, Serialize(serdes, CRC16Integrity{}, c, buf))

	decoded := newCrew()
	assert.Nil(t, Deserialize(serdes, CRC16Integrity{}, buf.Bytes(), decoded))

	assert.Equal(t, decoded.Nicknames.Get(), []string{"Ace", "Duke"})
	assert.Equal(t, decoded.Waypoints.Len(), 1)
	city, _ := decoded.Waypoints.Get()[0].City.Get()
	assert.Equal(t, city, "Ames")
	v, ok := decoded.Callsigns.At(1)
	assert.True(t, ok)
	assert.Equal(t, v, "tango")
	home, ok := decoded.Bases.At(9)
	assert.True(t, ok)
	homeCity, _ := home.City.Get()
	assert.Equal(t, homeCity, "Reno")
}

func TestTLVLayoutDecodeClearsCrewFieldsAbsentFromSource(t *testing.T) {
	serdes := NewTLVLayout()

	full := newCrew()
	assert.Nil(t, full.Nicknames.Add("Ace"))
	assert.Nil(t, full.Waypoints.Add(newAddress()))
	assert.Nil(t, full.Callsigns.Insert(1, "tango"))
	assert.Nil(t, full.Bases.Insert(1, newAddress()))
	fullBuf := GetBuffer(serdes, NoIntegrity{}, full)
	assert.Nil(t, Serialize(serdes, NoIntegrity{}, full, fullBuf))

	reused := newCrew()
	assert.Nil(t, Deserialize(serdes, NoIntegrity{}, fullBuf.Bytes(), reused))
	assert.Equal(t, reused.Nicknames.Len(), 1)
	assert.Equal(t, reused.Waypoints.Len(), 1)
	assert.Equal(t, reused.Callsigns.Len(), 1)
	assert.Equal(t, reused.Bases.Len(), 1)

	empty := newCrew()
	emptyBuf := GetBuffer(serdes, NoIntegrity{}, empty)
	assert.Nil(t, Serialize(serdes, NoIntegrity{}, empty, emptyBuf))
	assert.Nil(t, Deserialize(serdes, NoIntegrity{}, emptyBuf.Bytes(), reused))

	assert.Equal(t, reused.Nicknames.Len(), 0)
	assert.Equal(t, reused.Waypoints.Len(), 0)
	assert.Equal(t, reused.Callsigns.Len(), 0)
	assert.Equal(t, reused.Bases.Len(), 0)
}

func TestTLVLayoutOmitsUnsetOptionalFields(t *testing.T) {
	k := newKitchen()
	serdes := NewTLVLayout()
	// Every field is optional and unset; the whole payload is the
	// 4-byte length prefix declaring zero bytes of fields.
	assert.Equal(t, serdes.Size(k), 4)
}

// newOtherMessageWithFieldID builds a variant of OtherMessage whose sole
// field carries the given id, for tests that need to control the exact
// tag byte on the wire.
func newOtherMessageWithFieldID(id FieldId) *OtherMessage {
	m := &OtherMessage{
		Field1: NewScalarField(id, Required{}, NewScalar[int32]()),
	}
	MustHaveUniqueFieldIDs(m.Fields())
	return m
}
