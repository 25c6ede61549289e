package crunch

// SubmessageField wraps an inner Message value with a presence policy,
// for the case of a Field whose Inner is itself a Message. The field
// stores the M value it was built with — typically a pointer to a
// caller-constructed struct — so constructing a SubmessageField copies
// nothing, and the inner message is shared with whoever else holds
// that pointer.
type SubmessageField[M Message] struct {
	id       FieldId
	presence Presence
	inner    M
	isSet    bool
}

// NewSubmessageField builds a presence-wrapped submessage field around
// an already-constructed message value (typically a pointer to a
// caller-owned struct implementing Message).
func NewSubmessageField[M Message](id FieldId, presence Presence, inner M) *SubmessageField[M] {
	return &SubmessageField[M]{id: id, presence: presence, inner: inner}
}

// ID implements Field.
func (f *SubmessageField[M]) ID() FieldId { return f.id }

// FieldKind implements Field.
func (f *SubmessageField[M]) FieldKind() FieldKind { return KindSubmessageField }

// ValidatePresence implements Field.
func (f *SubmessageField[M]) ValidatePresence() error {
	return f.presence.checkPresence(f.isSet, f.id)
}

// Validate implements Field. Submessage recursion is driven by
// ValidateMessage, gated on IsSet — this method itself does nothing.
func (f *SubmessageField[M]) Validate() error { return nil }

// Submessage implements Field: it returns the inner message and true
// only when the field has been set.
func (f *SubmessageField[M]) Submessage() (Message, bool) {
	if !f.isSet {
		return nil, false
	}
	return f.inner, true
}

// Get returns the inner message and whether it has been set.
func (f *SubmessageField[M]) Get() (M, bool) {
	if !f.isSet {
		var zero M
		return zero, false
	}
	return f.inner, true
}

// IsSet reports whether the field has a value.
func (f *SubmessageField[M]) IsSet() bool { return f.isSet }

// Set stores msg and marks the field set. Submessages have no
// validators of their own to run here — validation happens by
// recursing into msg's own Validate via ValidateMessage.
func (f *SubmessageField[M]) Set(msg M) {
	f.inner = msg
	f.isSet = true
}

// SetWithoutValidation is Set under another name, kept for symmetry
// with the other field kinds' deserialization entry points; a
// submessage has no scalar/string validators to skip.
func (f *SubmessageField[M]) SetWithoutValidation(msg M) {
	f.Set(msg)
}

// Inner returns the field's message value. The caller constructs this
// value up front (typically a pointer to a struct implementing
// Message) when building the SubmessageField; deserialization decodes
// directly into it and then calls markSet, rather than replacing it
// wholesale.
func (f *SubmessageField[M]) Inner() M {
	return f.inner
}

// markSet flips the is-set flag without touching inner, for
// deserialization to call once it has decoded fields directly into
// Inner().
func (f *SubmessageField[M]) markSet() { f.isSet = true }

// clearSet flips the is-set flag off, the converse of markSet, for a
// decode that finds this field absent or unset in the payload it's
// reading into a message object that may already hold a value from an
// earlier decode.
func (f *SubmessageField[M]) clearSet() { f.isSet = false }

// innerMessage returns the inner value as a Message, for the layouts to
// recurse into regardless of M's concrete type.
func (f *SubmessageField[M]) innerMessage() Message { return f.inner }
