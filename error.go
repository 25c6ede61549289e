package crunch

import (
	"errors"
	"fmt"
)

// A FieldId identifies a field within a message. The wire format's TLV
// tag reserves its low three bits for the wire type, so a FieldId's
// compile-time maximum is 2^29-1.
type FieldId int32

// MaxFieldId is the largest FieldId the TLV tag encoding can represent.
const MaxFieldId FieldId = 1<<29 - 1

// noField is used for errors that aren't associated with any field, such
// as an integrity failure over the whole payload.
const noField FieldId = 0

// A MessageId uniquely identifies a message type within any one Decoder.
type MessageId int32

// Error is the codec's single error type. Every failure path in this
// package returns one of these rather than an ad-hoc error value, so
// callers can always recover the Kind and, when applicable, the
// offending FieldId.
type Error struct {
	kind    Kind
	fieldID FieldId
	message string
}

// Error implements the standard library's error interface.
func (e *Error) Error() string {
	if e.fieldID != noField {
		return fmt.Sprintf("%s: %s (field %d)", e.kind, e.message, e.fieldID)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.message)
}

// Kind reports the error's category.
func (e *Error) Kind() Kind { return e.kind }

// FieldID reports the field associated with the error, or 0 if the error
// isn't tied to a particular field.
func (e *Error) FieldID() FieldId { return e.fieldID }

// Is supports errors.Is against another *Error compared by kind and
// field id alone, so callers can write errors.Is(err, crunch.NewValidationError(0, "")).
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.kind == other.kind && e.fieldID == other.fieldID
}

// NewIntegrityError reports a checksum mismatch on decode.
func NewIntegrityError(message string) *Error {
	return &Error{kind: KindIntegrity, fieldID: noField, message: message}
}

// NewDeserializationError reports a structural decode failure.
func NewDeserializationError(message string) *Error {
	return &Error{kind: KindDeserialization, fieldID: noField, message: message}
}

// NewValidationError reports a validator, presence, or cross-field
// rejection for the given field. Pass 0 for cross-field errors that
// aren't attributable to a single field.
func NewValidationError(id FieldId, message string) *Error {
	return &Error{kind: KindValidation, fieldID: id, message: message}
}

// NewInvalidMessageIDError reports a header message-id mismatch.
func NewInvalidMessageIDError(message string) *Error {
	return &Error{kind: KindInvalidMessageID, fieldID: noField, message: message}
}

// NewInvalidFormatError reports a header format-byte mismatch.
func NewInvalidFormatError(message string) *Error {
	return &Error{kind: KindInvalidFormat, fieldID: noField, message: message}
}

// NewCapacityExceededError reports an attempt to exceed a compile-time
// capacity.
func NewCapacityExceededError(id FieldId, message string) *Error {
	return &Error{kind: KindCapacityExceeded, fieldID: id, message: message}
}

// ErrorKind returns err's Kind if it is or wraps a *crunch.Error, and
// false otherwise. Mirrors connect-go's CodeOf helper.
func ErrorKind(err error) (Kind, bool) {
	type kindErr interface{ Kind() Kind }
	var ke kindErr
	if errors.As(err, &ke) {
		return ke.Kind(), true
	}
	return 0, false
}

func errorf(kind Kind, id FieldId, template string, args ...any) *Error {
	return &Error{kind: kind, fieldID: id, message: fmt.Sprintf(template, args...)}
}
