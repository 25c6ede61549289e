package crunch

import (
	"testing"

	"github.com/sam-w-yellin/crunch/internal/assert"
)

func TestDecoderDispatchesByMessageID(t *testing.T) {
	serdes := NewStaticLayout(FormatAligned4)
	decoder := NewDecoder(serdes, NoIntegrity{},
		func() Message { return newMyMessage() },
		func() Message { return newOtherMessage() },
	)

	my := newMyMessage()
	assert.Nil(t, my.Field1.Set(3))
	buf := GetBuffer(serdes, NoIntegrity{}, my)
	assert.Nil(t, Serialize(serdes, NoIntegrity{}, my, buf))

	decoded, err := decoder.Decode(buf.Bytes())
	assert.Nil(t, err)
	got, ok := decoded.(*MyMessage)
	assert.True(t, ok)
	v, _ := got.Field1.Get()
	assert.Equal(t, v, int32(3))
}

func TestDecoderRejectsUnregisteredMessageID(t *testing.T) {
	serdes := NewStaticLayout(FormatAligned4)
	decoder := NewDecoder(serdes, NoIntegrity{},
		func() Message { return newMyMessage() },
	)

	other := newOtherMessage()
	assert.Nil(t, other.Field1.Set(1))
	buf := GetBuffer(serdes, NoIntegrity{}, other)
	assert.Nil(t, Serialize(serdes, NoIntegrity{}, other, buf))

	_, err := decoder.Decode(buf.Bytes())
	assert.NotNil(t, err)
	kind, ok := ErrorKind(err)
	assert.True(t, ok)
	assert.Equal(t, kind, KindInvalidMessageID)
}

func TestNewDecoderPanicsOnDuplicateMessageID(t *testing.T) {
	serdes := NewStaticLayout(FormatAligned4)
	assert.Panics(t, func() {
		NewDecoder(serdes, NoIntegrity{},
			func() Message { return newMyMessage() },
			func() Message { return newMyMessage() },
		)
	})
}
