package crunch

// Presence is a per-field policy checked before any value validators
// run. It is a disjoint kind from Validator: its signature takes the
// field's is-set flag rather than its value.
type Presence interface {
	checkPresence(isSet bool, id FieldId) error
}

// Required fields must be set; decoding or building a message that
// leaves one unset is a Validation error.
type Required struct{}

func (Required) checkPresence(isSet bool, id FieldId) error {
	if !isSet {
		return NewValidationError(id, "required field is not set")
	}
	return nil
}

// Optional fields may be left unset.
type Optional struct{}

func (Optional) checkPresence(bool, FieldId) error { return nil }
