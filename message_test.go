package crunch

import (
	"testing"

	"github.com/sam-w-yellin/crunch/internal/assert"
)

func TestValidateMessageRequiresRequiredFields(t *testing.T) {
	msg := newMyMessage()
	err := ValidateMessage(msg)
	assert.NotNil(t, err)
	kind, ok := ErrorKind(err)
	assert.True(t, ok)
	assert.Equal(t, kind, KindValidation)
}

func TestValidateMessageRunsFieldValidators(t *testing.T) {
	msg := newMyMessage()
	// Positive() rejects a negative value at Set time, so force one in
	// through the unvalidated path to exercise Validate's own check.
	msg.Field1.SetWithoutValidation(-1)
	err := ValidateMessage(msg)
	assert.NotNil(t, err)
	kind, ok := ErrorKind(err)
	assert.True(t, ok)
	assert.Equal(t, kind, KindValidation)
}

func TestValidateMessageRecursesIntoSetSubmessage(t *testing.T) {
	k := newKitchen()
	// Home is optional and unset: no recursion, no error from it.
	assert.Nil(t, ValidateMessage(k))

	k.Home.Inner().Zip.SetWithoutValidation(0)
	k.Home.Set(k.Home.Inner())
	assert.Nil(t, ValidateMessage(k))
}

func TestMustHaveUniqueFieldIDsPanicsOnDuplicate(t *testing.T) {
	assert.Panics(t, func() {
		MustHaveUniqueFieldIDs([]Field{
			NewScalarField(1, Optional{}, NewScalar[int32]()),
			NewScalarField(1, Optional{}, NewScalar[int32]()),
		})
	})
}
