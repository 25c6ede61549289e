package crunch

import "fmt"

// FieldKind tags which of the five field families a Field belongs to,
// so generic code (the message-validation walk, the static and TLV
// layouts) can dispatch without type-switching on every concrete
// generic instantiation. This is the Go stand-in for compile-time
// dispatch over field kinds.
type FieldKind uint8

const (
	KindScalarField FieldKind = iota + 1
	KindStringField
	KindArrayField
	KindMapField
	KindSubmessageField
)

func (k FieldKind) String() string {
	switch k {
	case KindScalarField:
		return "Scalar"
	case KindStringField:
		return "String"
	case KindArrayField:
		return "Array"
	case KindMapField:
		return "Map"
	case KindSubmessageField:
		return "Submessage"
	}
	return fmt.Sprintf("FieldKind(%d)", uint8(k))
}

// Field is the uniform contract every field kind satisfies so a
// Message's fields can be walked generically by validation and by both
// serialization policies.
type Field interface {
	// ID returns the field's stable identifier.
	ID() FieldId
	// FieldKind reports which family this field belongs to.
	FieldKind() FieldKind
	// ValidatePresence checks the field's presence policy (Required
	// fails if unset; Optional and container kinds always succeed).
	ValidatePresence() error
	// Validate runs this field's own validators: value validators for
	// scalar/string, container and element validators for array/map.
	// For submessage fields it does nothing — recursion into the inner
	// message is the caller's (Validate's) job, gated on presence.
	Validate() error
	// Submessage returns the field's inner message and true if this
	// field is a submessage kind and currently set. Every other kind
	// returns (nil, false).
	Submessage() (Message, bool)
}

// Message is an ordered tuple of fields with a message identifier and
// an optional cross-field invariant hook.
type Message interface {
	// MessageID returns the message's unique wire identifier.
	MessageID() MessageId
	// Fields returns the message's fields in declaration order. The
	// slice's field ids must be pairwise distinct; see
	// MustHaveUniqueFieldIDs.
	Fields() []Field
	// Validate runs any cross-field invariant the message declares,
	// after every field has individually validated successfully.
	// Messages with no cross-field invariant embed BaseMessage, whose
	// Validate always succeeds.
	Validate() error
}

// BaseMessage is embedded by message types with no cross-field
// invariant, so they don't each need to write a trivial Validate.
type BaseMessage struct{}

// Validate implements Message for messages with no cross-field
// invariant.
func (BaseMessage) Validate() error { return nil }

// MustHaveUniqueFieldIDs panics if any two fields share an id. The
// original C++ library rejects duplicate field ids at compile time;
// Go generics have no equivalent compile-time hook, so schema
// constructors call this once, at construction, as the closest
// practical analogue — a schema authoring bug surfaces immediately
// rather than silently corrupting the wire format.
func MustHaveUniqueFieldIDs(fields []Field) {
	seen := make(map[FieldId]struct{}, len(fields))
	for _, f := range fields {
		if _, dup := seen[f.ID()]; dup {
			panic(fmt.Sprintf("crunch: duplicate field id %d in message schema", f.ID()))
		}
		seen[f.ID()] = struct{}{}
	}
}

// ValidateMessage walks msg's fields in declaration order: presence
// first, then either submessage recursion or the field's own Validate,
// then the message's cross-field Validate. The first failure anywhere
// stops the walk.
func ValidateMessage(msg Message) error {
	for _, f := range msg.Fields() {
		if err := f.ValidatePresence(); err != nil {
			return err
		}
		if inner, isSet := f.Submessage(); f.FieldKind() == KindSubmessageField {
			if isSet {
				if err := ValidateMessage(inner); err != nil {
					return err
				}
			}
			continue
		}
		if err := f.Validate(); err != nil {
			return err
		}
	}
	return msg.Validate()
}
