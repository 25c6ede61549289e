package crunch

import (
	"testing"

	"github.com/sam-w-yellin/crunch/internal/assert"
)

func TestArrayFieldEnforcesCapacity(t *testing.T) {
	f := NewArrayField[int32](1, 2)
	assert.Nil(t, f.Add(1))
	assert.Nil(t, f.Add(2))
	err := f.Add(3)
	assert.NotNil(t, err)
	kind, ok := ErrorKind(err)
	assert.True(t, ok)
	assert.Equal(t, kind, KindCapacityExceeded)
}

func TestArrayFieldLengthAtLeastValidator(t *testing.T) {
	f := NewArrayField[int32](1, 4, WithSizeValidators[int32](LengthAtLeast(2)))
	assert.Nil(t, f.Add(1))
	err := f.Validate()
	assert.NotNil(t, err)
	kind, ok := ErrorKind(err)
	assert.True(t, ok)
	assert.Equal(t, kind, KindValidation)

	assert.Nil(t, f.Add(2))
	assert.Nil(t, f.Validate())
}

func TestArrayFieldUniqueRejectsDuplicates(t *testing.T) {
	f := NewArrayField[int32](1, 4, WithUnique[int32]())
	assert.Nil(t, f.Add(1))
	assert.Nil(t, f.Add(1))
	err := f.Validate()
	assert.NotNil(t, err)
	kind, ok := ErrorKind(err)
	assert.True(t, ok)
	assert.Equal(t, kind, KindValidation)
}

func TestArrayFieldElementValidators(t *testing.T) {
	f := NewArrayField[int32](1, 4, WithElementValidators[int32](Positive[int32]()))
	assert.Nil(t, f.Add(1))
	assert.Nil(t, f.Add(-1))
	err := f.Validate()
	assert.NotNil(t, err)
}

func TestMapFieldRejectsDuplicateKey(t *testing.T) {
	f := NewMapField[uint8, int32](1, 4)
	assert.Nil(t, f.Insert(1, 10))
	err := f.Insert(1, 20)
	assert.NotNil(t, err)
	kind, ok := ErrorKind(err)
	assert.True(t, ok)
	assert.Equal(t, kind, KindValidation)
}

func TestMapFieldEnforcesCapacity(t *testing.T) {
	f := NewMapField[uint8, int32](1, 1)
	assert.Nil(t, f.Insert(1, 10))
	err := f.Insert(2, 20)
	assert.NotNil(t, err)
	kind, ok := ErrorKind(err)
	assert.True(t, ok)
	assert.Equal(t, kind, KindCapacityExceeded)
}

func TestMapFieldEqualIgnoresOrder(t *testing.T) {
	a := NewMapField[uint8, int32](1, 4)
	b := NewMapField[uint8, int32](1, 4)
	assert.Nil(t, a.Insert(1, 10))
	assert.Nil(t, a.Insert(2, 20))
	assert.Nil(t, b.Insert(2, 20))
	assert.Nil(t, b.Insert(1, 10))
	assert.True(t, a.Equal(b))
}

func TestStringArrayFieldEnforcesElementAndArrayCapacity(t *testing.T) {
	f := NewStringArrayField(1, 2, 4)
	assert.Nil(t, f.Add("ab"))
	err := f.Add("toolong")
	assert.NotNil(t, err)
	kind, ok := ErrorKind(err)
	assert.True(t, ok)
	assert.Equal(t, kind, KindCapacityExceeded)

	assert.Nil(t, f.Add("cd"))
	err = f.Add("ef")
	assert.NotNil(t, err)
	kind, ok = ErrorKind(err)
	assert.True(t, ok)
	assert.Equal(t, kind, KindCapacityExceeded)
}

func TestStringArrayFieldUniqueRejectsDuplicates(t *testing.T) {
	f := NewStringArrayField(1, 4, 8, WithUniqueStrings())
	assert.Nil(t, f.Add("a"))
	assert.Nil(t, f.Add("a"))
	err := f.Validate()
	assert.NotNil(t, err)
	kind, ok := ErrorKind(err)
	assert.True(t, ok)
	assert.Equal(t, kind, KindValidation)
}

func TestSubmessageArrayFieldEnforcesCapacityAndValidatesElements(t *testing.T) {
	f := NewSubmessageArrayField[*Address](1, 1, func() *Address { return newAddress() })
	assert.Nil(t, f.Add(newAddress()))
	err := f.Add(newAddress())
	assert.NotNil(t, err)
	kind, ok := ErrorKind(err)
	assert.True(t, ok)
	assert.Equal(t, kind, KindCapacityExceeded)

	bad := newAddress()
	assert.Nil(t, bad.Zip.Set(0))
	f2 := NewSubmessageArrayField[*Address](1, 2, func() *Address { return newAddress() })
	assert.Nil(t, f2.Add(bad))
	assert.Nil(t, f2.Validate())
}

func TestStringValueMapFieldRejectsDuplicateKeyAndEnforcesCapacity(t *testing.T) {
	f := NewStringValueMapField[uint8](1, 1, 8)
	assert.Nil(t, f.Insert(1, "hello"))
	err := f.Insert(1, "world")
	assert.NotNil(t, err)
	kind, ok := ErrorKind(err)
	assert.True(t, ok)
	assert.Equal(t, kind, KindValidation)

	err = f.Insert(2, "world")
	assert.NotNil(t, err)
	kind, ok = ErrorKind(err)
	assert.True(t, ok)
	assert.Equal(t, kind, KindCapacityExceeded)
}

func TestSubmessageValueMapFieldRejectsDuplicateKeyAndLooksUpValue(t *testing.T) {
	f := NewSubmessageValueMapField[uint8, *Address](1, 2, func() *Address { return newAddress() })
	assert.Nil(t, f.Insert(1, newAddress()))
	err := f.Insert(1, newAddress())
	assert.NotNil(t, err)
	kind, ok := ErrorKind(err)
	assert.True(t, ok)
	assert.Equal(t, kind, KindValidation)

	v, ok := f.At(1)
	assert.True(t, ok)
	assert.Equal(t, v.MessageID(), MessageId(300))
}
