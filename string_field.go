package crunch

// StringValue owns a string capped at MaxSize bytes plus the validators
// that govern it. Go's strings are immutable value types, so unlike a
// fixed byte buffer, StringValue doesn't hold zero-padding in memory —
// the static layout writes that padding only when it serializes the
// field onto the wire.
type StringValue struct {
	maxSize        int
	validators     []Validator[string]
	sizeValidators []SizeValidator
	value          string
}

// NewStringValue constructs a StringValue with a byte capacity and a
// mix of value validators (StringEquals, NullTerminated, ...) and size
// validators (Length, LengthAtLeast, LengthAtMost).
func NewStringValue(maxSize int, validators []Validator[string], sizeValidators []SizeValidator) *StringValue {
	return &StringValue{maxSize: maxSize, validators: validators, sizeValidators: sizeValidators}
}

// MaxSize returns the field's declared byte capacity.
func (s *StringValue) MaxSize() int { return s.maxSize }

// Get returns the current value.
func (s *StringValue) Get() string { return s.value }

// Set enforces the capacity, runs validators, and stores value on
// success. On failure the prior value is preserved.
func (s *StringValue) Set(value string, id FieldId) error {
	if len(value) > s.maxSize {
		return errorf(KindCapacityExceeded, id, "string length %d exceeds max size %d", len(value), s.maxSize)
	}
	if err := runSizeValidators(s.sizeValidators, len(value), id); err != nil {
		return err
	}
	if err := runValidators(s.validators, value, id); err != nil {
		return err
	}
	s.value = value
	return nil
}

// SetWithoutValidation stores value unconditionally, used only by
// deserialization (which has already bounds-checked the length against
// MaxSize while reading it off the wire).
func (s *StringValue) SetWithoutValidation(value string) {
	s.value = value
}

// Validate re-runs this string's validators against its current value.
func (s *StringValue) Validate(id FieldId) error {
	if err := runSizeValidators(s.sizeValidators, len(s.value), id); err != nil {
		return err
	}
	return runValidators(s.validators, s.value, id)
}

// StringField wraps a StringValue with a stable id, a presence policy,
// and an is-set flag.
type StringField struct {
	id       FieldId
	presence Presence
	inner    *StringValue
	isSet    bool
}

// NewStringField builds a presence-wrapped string field.
func NewStringField(id FieldId, presence Presence, inner *StringValue) *StringField {
	return &StringField{id: id, presence: presence, inner: inner}
}

// ID implements Field.
func (f *StringField) ID() FieldId { return f.id }

// FieldKind implements Field.
func (f *StringField) FieldKind() FieldKind { return KindStringField }

// ValidatePresence implements Field.
func (f *StringField) ValidatePresence() error {
	return f.presence.checkPresence(f.isSet, f.id)
}

// Validate implements Field.
func (f *StringField) Validate() error {
	if !f.isSet {
		return nil
	}
	return f.inner.Validate(f.id)
}

// Submessage implements Field; strings are never submessages.
func (f *StringField) Submessage() (Message, bool) { return nil, false }

// Get returns the value view and whether it has been set.
func (f *StringField) Get() (string, bool) {
	if !f.isSet {
		return "", false
	}
	return f.inner.Get(), true
}

// IsSet reports whether the field has a value.
func (f *StringField) IsSet() bool { return f.isSet }

// MaxSize returns the field's declared byte capacity.
func (f *StringField) MaxSize() int { return f.inner.MaxSize() }

// Set validates and stores value.
func (f *StringField) Set(value string) error {
	if err := f.inner.Set(value, f.id); err != nil {
		return err
	}
	f.isSet = true
	return nil
}

// SetWithoutValidation stores value unconditionally and marks the field
// set; used only by deserialization.
func (f *StringField) SetWithoutValidation(value string) {
	f.inner.SetWithoutValidation(value)
	f.isSet = true
}

// clear resets the field to its zero value and unset state, mirroring
// ScalarField.clear.
func (f *StringField) clear() {
	f.inner.SetWithoutValidation("")
	f.isSet = false
}
