package crunch

import (
	"encoding/binary"
	"testing"

	"github.com/sam-w-yellin/crunch/internal/assert"
)

func TestStaticLayoutAligned4ByteLayout(t *testing.T) {
	msg := newMyMessage()
	assert.Nil(t, msg.Field1.Set(42))
	assert.Nil(t, msg.Field2.Set(-15))

	serdes := NewStaticLayout(FormatAligned4)
	buf := GetBuffer(serdes, NoIntegrity{}, msg)
	assert.Equal(t, buf.Len(), 20)
	assert.Nil(t, Serialize(serdes, NoIntegrity{}, msg, buf))

	bytes := buf.Bytes()
	// header padding: offset 6 is zero-filled up to the 4-aligned
	// payload start at offset 8.
	assert.Equal(t, bytes[6], byte(0))
	assert.Equal(t, bytes[7], byte(0))
	// Field1's is-set byte lands at 8, then offset 9-11 pad to align
	// its int32 value to offset 12.
	assert.Equal(t, bytes[8], byte(1))
	assert.Equal(t, bytes[9], byte(0))
	assert.Equal(t, bytes[10], byte(0))
	assert.Equal(t, bytes[11], byte(0))
	// Field2's is-set byte at 16, then offset 17 pads to align its
	// int16 value to offset 18.
	assert.Equal(t, bytes[16], byte(1))
	assert.Equal(t, bytes[17], byte(0))

	decoded := newMyMessage()
	err := Deserialize(serdes, NoIntegrity{}, bytes, decoded)
	assert.Nil(t, err)
	v1, ok1 := decoded.Field1.Get()
	assert.True(t, ok1)
	assert.Equal(t, v1, int32(42))
	v2, ok2 := decoded.Field2.Get()
	assert.True(t, ok2)
	assert.Equal(t, v2, int16(-15))
}

func TestStaticLayoutPackedHasNoPadding(t *testing.T) {
	msg := newMyMessage()
	assert.Nil(t, msg.Field1.Set(1))

	serdes := NewStaticLayout(FormatPacked)
	// Size excludes the header: isset(1) + int32(4) + isset(1) + int16(2)
	// = 8, no padding (14 bytes with the 6-byte header).
	assert.Equal(t, serdes.Size(msg), 8)
}

func TestStaticLayoutWrongFormatIsRejected(t *testing.T) {
	msg := newMyMessage()
	assert.Nil(t, msg.Field1.Set(7))

	packed := NewStaticLayout(FormatPacked)
	buf := GetBuffer(packed, NoIntegrity{}, msg)
	assert.Nil(t, Serialize(packed, NoIntegrity{}, msg, buf))

	aligned4 := NewStaticLayout(FormatAligned4)
	decoded := newMyMessage()
	err := Deserialize(aligned4, NoIntegrity{}, buf.Bytes(), decoded)
	assert.NotNil(t, err)
	kind, ok := ErrorKind(err)
	assert.True(t, ok)
	assert.Equal(t, kind, KindInvalidFormat)
}

func TestStaticLayoutWrongMessageIDIsRejected(t *testing.T) {
	my := newMyMessage()
	assert.Nil(t, my.Field1.Set(7))
	serdes := NewStaticLayout(FormatAligned4)
	buf := GetBuffer(serdes, NoIntegrity{}, my)
	assert.Nil(t, Serialize(serdes, NoIntegrity{}, my, buf))

	other := newOtherMessage()
	err := Deserialize(serdes, NoIntegrity{}, buf.Bytes(), other)
	assert.NotNil(t, err)
	kind, ok := ErrorKind(err)
	assert.True(t, ok)
	assert.Equal(t, kind, KindInvalidMessageID)
}

func TestStaticLayoutRejectsMismatchedNestedMessageID(t *testing.T) {
	k := newKitchen()
	assert.Nil(t, k.Home.Inner().City.Set("Ames"))
	k.Home.Set(k.Home.Inner())

	serdes := NewStaticLayout(FormatAligned4)
	buf := GetBuffer(serdes, NoIntegrity{}, k)
	assert.Nil(t, Serialize(serdes, NoIntegrity{}, k, buf))

	bytes := buf.Bytes()
	// Under Aligned4, Home's is-set byte lands at offset 71; its nested
	// message id occupies the 4 (already-aligned) bytes right after it.
	assert.Equal(t, bytes[71], byte(1))
	binary.LittleEndian.PutUint32(bytes[72:76], 999)

	decoded := newKitchen()
	err := Deserialize(serdes, NoIntegrity{}, bytes, decoded)
	assert.NotNil(t, err)
	kind, ok := ErrorKind(err)
	assert.True(t, ok)
	assert.Equal(t, kind, KindInvalidMessageID)
}

func TestStaticLayoutDecodeClearsFieldsAbsentFromSource(t *testing.T) {
	serdes := NewStaticLayout(FormatAligned4)

	full := newKitchen()
	assert.Nil(t, full.Count.Set(9))
	assert.Nil(t, full.Name.Set("kettle"))
	assert.Nil(t, full.Home.Inner().City.Set("Ames"))
	full.Home.Set(full.Home.Inner())
	fullBuf := GetBuffer(serdes, NoIntegrity{}, full)
	assert.Nil(t, Serialize(serdes, NoIntegrity{}, full, fullBuf))

	// Decode the fully populated message into a reused object first, so
	// it starts with every optional field set.
	reused := newKitchen()
	assert.Nil(t, Deserialize(serdes, NoIntegrity{}, fullBuf.Bytes(), reused))
	assert.True(t, reused.Count.IsSet())
	assert.True(t, reused.Name.IsSet())
	assert.True(t, reused.Home.IsSet())

	// Now decode a message that leaves every optional field unset into
	// the same object; the stale values and is-set flags must clear.
	empty := newKitchen()
	emptyBuf := GetBuffer(serdes, NoIntegrity{}, empty)
	assert.Nil(t, Serialize(serdes, NoIntegrity{}, empty, emptyBuf))
	assert.Nil(t, Deserialize(serdes, NoIntegrity{}, emptyBuf.Bytes(), reused))

	assert.False(t, reused.Count.IsSet())
	assert.False(t, reused.Name.IsSet())
	assert.False(t, reused.Home.IsSet())
}

func TestStaticLayoutCrewRoundTrip(t *testing.T) {
	for _, format := range []Format{FormatPacked, FormatAligned4, FormatAligned8} {
		format := format
		t.Run(format.String(), func(t *testing.T) {
			c := newCrew()
			assert.Nil(t, c.Nicknames.Add("Ace"))
			assert.Nil(t, c.Nicknames.Add("Duke"))
			assert.Nil(t, c.Waypoints.Add(newAddress()))
			assert.Nil(t, c.Waypoints.Get()[0].City.Set("Ames"))
			assert.Nil(t, c.Callsigns.Insert(1, "tango"))
			base := newAddress()
			assert.Nil(t, base.City.Set("Reno"))
			assert.Nil(t, c.Bases.Insert(9, base))

			serdes := NewStaticLayout(format)
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
		})
	}
}

func TestStaticLayoutRejectsMismatchedSubmessageArrayElementID(t *testing.T) {
	c := newCrew()
	assert.Nil(t, c.Waypoints.Add(newAddress()))

	serdes := NewStaticLayout(FormatPacked)
	buf := GetBuffer(serdes, NoIntegrity{}, c)
	assert.Nil(t, Serialize(serdes, NoIntegrity{}, c, buf))

	// Nicknames occupies offset 6..6+4+3*(4+8)=46; Waypoints' count
	// prefix follows at 46, then its first element's message id at 50.
	bytes := buf.Bytes()
	binary.LittleEndian.PutUint32(bytes[50:54], 999)

	decoded := newCrew()
	err := Deserialize(serdes, NoIntegrity{}, bytes, decoded)
	assert.NotNil(t, err)
	kind, ok := ErrorKind(err)
	assert.True(t, ok)
	assert.Equal(t, kind, KindInvalidMessageID)
}

func TestStaticLayoutDecodeClearsCrewFieldsAbsentFromSource(t *testing.T) {
	serdes := NewStaticLayout(FormatAligned4)

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

func TestStaticLayoutKitchenRoundTrip(t *testing.T) {
	for _, format := range []Format{FormatPacked, FormatAligned4, FormatAligned8} {
		format := format
		t.Run(format.String(), func(t *testing.T) {
			k := newKitchen()
			assert.Nil(t, k.Count.Set(9))
			assert.Nil(t, k.Name.Set("kettle"))
			assert.Nil(t, k.Tags.Add(1))
			assert.Nil(t, k.Tags.Add(2))
			assert.Nil(t, k.Scores.Insert(1, 9.5))
			assert.Nil(t, k.Scores.Insert(2, 4.25))
			assert.Nil(t, k.Home.Inner().City.Set("Ames"))
			k.Home.Set(k.Home.Inner())

			serdes := NewStaticLayout(format)
			buf := GetBuffer(serdes, CRC16Integrity{}, k)
			assert.Nil(t, Serialize(serdes, CRC16Integrity{}, k, buf))

			decoded := newKitchen()
			assert.Nil(t, Deserialize(serdes, CRC16Integrity{}, buf.Bytes(), decoded))

			count, _ := decoded.Count.Get()
			assert.Equal(t, count, int32(9))
			name, _ := decoded.Name.Get()
			assert.Equal(t, name, "kettle")
			assert.Equal(t, decoded.Tags.Get(), []int16{1, 2})
			v1, ok := decoded.Scores.At(1)
			assert.True(t, ok)
			assert.Equal(t, v1, float32(9.5))
			home, ok := decoded.Home.Get()
			assert.True(t, ok)
			city, _ := home.City.Get()
			assert.Equal(t, city, "Ames")
		})
	}
}
