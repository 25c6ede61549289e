package crunch

// StringArrayField owns a fixed-capacity sequence of strings, each
// capped at its own declared byte width. A string element has no
// fixed bit pattern the way a ScalarType element does, so this field
// kind is driven through byteArrayWire (field_wire.go) rather than
// arrayWire: every layout reads and writes each element as a
// length-prefixed byte slice instead of a fixed-width bit pattern.
type StringArrayField struct {
	id                FieldId
	maxSize           int
	elementMaxSize    int
	elements          []string
	elementValidators []Validator[string]
	sizeValidators    []SizeValidator
	unique            bool
}

// StringArrayFieldOption configures a StringArrayField at construction.
type StringArrayFieldOption func(*StringArrayField)

// WithStringElementValidators runs each validator against every element
// during Validate.
func WithStringElementValidators(validators ...Validator[string]) StringArrayFieldOption {
	return func(f *StringArrayField) { f.elementValidators = validators }
}

// WithStringArraySizeValidators attaches Length/LengthAtLeast/LengthAtMost
// checks against the array's current element count.
func WithStringArraySizeValidators(validators ...SizeValidator) StringArrayFieldOption {
	return func(f *StringArrayField) { f.sizeValidators = validators }
}

// WithUniqueStrings requires every element to be pairwise distinct.
func WithUniqueStrings() StringArrayFieldOption {
	return func(f *StringArrayField) { f.unique = true }
}

// NewStringArrayField builds an empty string array with room for
// maxSize elements, each capped at elementMaxSize bytes.
func NewStringArrayField(id FieldId, maxSize, elementMaxSize int, opts ...StringArrayFieldOption) *StringArrayField {
	f := &StringArrayField{
		id:             id,
		maxSize:        maxSize,
		elementMaxSize: elementMaxSize,
		elements:       make([]string, 0, maxSize),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ID implements Field.
func (f *StringArrayField) ID() FieldId { return f.id }

// FieldKind implements Field.
func (f *StringArrayField) FieldKind() FieldKind { return KindArrayField }

// ValidatePresence implements Field; arrays have no presence concept.
func (f *StringArrayField) ValidatePresence() error { return nil }

// Validate implements Field.
func (f *StringArrayField) Validate() error {
	if err := runSizeValidators(f.sizeValidators, len(f.elements), f.id); err != nil {
		return err
	}
	if f.unique {
		for i := 0; i < len(f.elements); i++ {
			for j := i + 1; j < len(f.elements); j++ {
				if f.elements[i] == f.elements[j] {
					return errorf(KindValidation, f.id, "elements at %d and %d are not unique", i, j)
				}
			}
		}
	}
	for _, e := range f.elements {
		if err := runValidators(f.elementValidators, e, f.id); err != nil {
			return err
		}
	}
	return nil
}

// Submessage implements Field; string arrays are never submessages.
func (f *StringArrayField) Submessage() (Message, bool) { return nil, false }

// Get returns a read-only view of the current elements.
func (f *StringArrayField) Get() []string { return f.elements[:len(f.elements):len(f.elements)] }

// Len returns the current element count.
func (f *StringArrayField) Len() int { return len(f.elements) }

// MaxSize returns the declared element capacity.
func (f *StringArrayField) MaxSize() int { return f.maxSize }

// ElementMaxSize returns each element's declared byte capacity.
func (f *StringArrayField) ElementMaxSize() int { return f.elementMaxSize }

// Add appends value, or fails with CapacityExceeded once the array is
// full or the element exceeds ElementMaxSize. Element validators are
// not run here; Validate runs them.
func (f *StringArrayField) Add(value string) error {
	if len(value) > f.elementMaxSize {
		return errorf(KindCapacityExceeded, f.id, "element length %d exceeds max size %d", len(value), f.elementMaxSize)
	}
	if len(f.elements) >= f.maxSize {
		return errorf(KindCapacityExceeded, f.id, "array is at capacity %d", f.maxSize)
	}
	f.elements = append(f.elements, value)
	return nil
}

func (f *StringArrayField) addWithoutValidation(value string) {
	f.elements = append(f.elements, value)
}

func (f *StringArrayField) reset() { f.elements = f.elements[:0] }

// elementBytes and appendElementBytes satisfy byteArrayWire, the
// layouts' variable-length element accessor.
func (f *StringArrayField) elementBytes(i int) []byte { return []byte(f.elements[i]) }

func (f *StringArrayField) appendElementBytes(b []byte) { f.addWithoutValidation(string(b)) }
