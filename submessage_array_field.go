package crunch

// SubmessageArrayField owns a fixed-capacity sequence of nested
// messages. Every element shares schema M, so a fresh element for
// decoding or for zero-filling a padding slot is built through
// factory rather than through a zero value: M is typically a pointer
// to a struct, and its zero value is nil. factory plays the same role
// here that MessageFactory plays for Decoder.
type SubmessageArrayField[M Message] struct {
	id             FieldId
	maxSize        int
	factory        func() M
	elements       []M
	sizeValidators []SizeValidator
}

// SubmessageArrayFieldOption configures a SubmessageArrayField at construction.
type SubmessageArrayFieldOption[M Message] func(*SubmessageArrayField[M])

// WithSubmessageArraySizeValidators attaches Length/LengthAtLeast/LengthAtMost
// checks against the array's current element count.
func WithSubmessageArraySizeValidators[M Message](validators ...SizeValidator) SubmessageArrayFieldOption[M] {
	return func(f *SubmessageArrayField[M]) { f.sizeValidators = validators }
}

// NewSubmessageArrayField builds an empty submessage array with room
// for maxSize elements, each constructed on demand by factory.
func NewSubmessageArrayField[M Message](id FieldId, maxSize int, factory func() M, opts ...SubmessageArrayFieldOption[M]) *SubmessageArrayField[M] {
	f := &SubmessageArrayField[M]{
		id:       id,
		maxSize:  maxSize,
		factory:  factory,
		elements: make([]M, 0, maxSize),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ID implements Field.
func (f *SubmessageArrayField[M]) ID() FieldId { return f.id }

// FieldKind implements Field.
func (f *SubmessageArrayField[M]) FieldKind() FieldKind { return KindArrayField }

// ValidatePresence implements Field; arrays have no presence concept.
func (f *SubmessageArrayField[M]) ValidatePresence() error { return nil }

// Validate runs the array's own size validators, then recurses into
// every element's own presence and cross-field invariants — the array
// equivalent of ValidateMessage's submessage recursion, since a
// SubmessageArrayField reports KindArrayField rather than
// KindSubmessageField and so isn't recursed into by that walk itself.
func (f *SubmessageArrayField[M]) Validate() error {
	if err := runSizeValidators(f.sizeValidators, len(f.elements), f.id); err != nil {
		return err
	}
	for _, e := range f.elements {
		if err := ValidateMessage(e); err != nil {
			return err
		}
	}
	return nil
}

// Submessage implements Field; a submessage array itself is never a
// single submessage.
func (f *SubmessageArrayField[M]) Submessage() (Message, bool) { return nil, false }

// Get returns a read-only view of the current elements.
func (f *SubmessageArrayField[M]) Get() []M { return f.elements[:len(f.elements):len(f.elements)] }

// Len returns the current element count.
func (f *SubmessageArrayField[M]) Len() int { return len(f.elements) }

// MaxSize returns the declared element capacity.
func (f *SubmessageArrayField[M]) MaxSize() int { return f.maxSize }

// Add appends value, or fails with CapacityExceeded once the array is full.
func (f *SubmessageArrayField[M]) Add(value M) error {
	if len(f.elements) >= f.maxSize {
		return errorf(KindCapacityExceeded, f.id, "array is at capacity %d", f.maxSize)
	}
	f.elements = append(f.elements, value)
	return nil
}

func (f *SubmessageArrayField[M]) reset() { f.elements = f.elements[:0] }

// elementMessage returns element i as a Message, for the layouts to
// size and write regardless of M's concrete type.
func (f *SubmessageArrayField[M]) elementMessage(i int) Message { return f.elements[i] }

// templateMessage builds a throwaway element purely to walk its
// schema shape, for sizing the field and for zero-filling padding
// slots; its value is never observed by the caller.
func (f *SubmessageArrayField[M]) templateMessage() Message { return f.factory() }

// newElementMessage constructs a fresh element via factory, appends
// it, and returns it as a Message for the layout to decode fields
// into in place.
func (f *SubmessageArrayField[M]) newElementMessage() Message {
	m := f.factory()
	f.elements = append(f.elements, m)
	return m
}
