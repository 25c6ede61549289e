package crunch

// Test fixtures shared across this package's test files. MyMessage and
// OtherMessage mirror a two-field message walked through byte-by-byte
// under the static layout below; Kitchen exercises every field
// kind together for round-trip coverage.

type MyMessage struct {
	BaseMessage
	Field1 *ScalarField[int32]
	Field2 *ScalarField[int16]
}

func newMyMessage() *MyMessage {
	m := &MyMessage{
		Field1: NewScalarField(1, Required{}, NewScalar[int32](Positive[int32]())),
		Field2: NewScalarField(2, Optional{}, NewScalar[int16]()),
	}
	MustHaveUniqueFieldIDs(m.Fields())
	return m
}

func (m *MyMessage) MessageID() MessageId { return 100 }
func (m *MyMessage) Fields() []Field      { return []Field{m.Field1, m.Field2} }

type OtherMessage struct {
	BaseMessage
	Field1 *ScalarField[int32]
}

func newOtherMessage() *OtherMessage {
	m := &OtherMessage{
		Field1: NewScalarField(1, Required{}, NewScalar[int32]()),
	}
	MustHaveUniqueFieldIDs(m.Fields())
	return m
}

func (m *OtherMessage) MessageID() MessageId { return 200 }
func (m *OtherMessage) Fields() []Field      { return []Field{m.Field1} }

type Address struct {
	BaseMessage
	City *StringField
	Zip  *ScalarField[uint32]
}

func newAddress() *Address {
	a := &Address{
		City: NewStringField(1, Optional{}, NewStringValue(32, nil, nil)),
		Zip:  NewScalarField(2, Optional{}, NewScalar[uint32]()),
	}
	MustHaveUniqueFieldIDs(a.Fields())
	return a
}

func (a *Address) MessageID() MessageId { return 300 }
func (a *Address) Fields() []Field      { return []Field{a.City, a.Zip} }

// Kitchen exercises a scalar, a string, an array, a map, and a
// submessage together, one field of each kind.
type Kitchen struct {
	BaseMessage
	Count   *ScalarField[int32]
	Name    *StringField
	Tags    *ArrayField[int16]
	Scores  *MapField[uint8, float32]
	Home    *SubmessageField[*Address]
}

func newKitchen() *Kitchen {
	k := &Kitchen{
		Count:  NewScalarField(1, Optional{}, NewScalar[int32]()),
		Name:   NewStringField(2, Optional{}, NewStringValue(16, nil, nil)),
		Tags:   NewArrayField[int16](3, 4),
		Scores: NewMapField[uint8, float32](4, 3),
		Home:   NewSubmessageField[*Address](5, Optional{}, newAddress()),
	}
	MustHaveUniqueFieldIDs(k.Fields())
	return k
}

func (k *Kitchen) MessageID() MessageId { return 400 }
func (k *Kitchen) Fields() []Field {
	return []Field{k.Count, k.Name, k.Tags, k.Scores, k.Home}
}

// Crew exercises the non-scalar array and map field kinds: an array
// of strings, an array of submessages, a map with a string value, and
// a map with a submessage value.
type Crew struct {
	BaseMessage
	Nicknames *StringArrayField
	Waypoints *SubmessageArrayField[*Address]
	Callsigns *StringValueMapField[uint8]
	Bases     *SubmessageValueMapField[uint8, *Address]
}

func newCrew() *Crew {
	c := &Crew{
		Nicknames: NewStringArrayField(1, 3, 8),
		Waypoints: NewSubmessageArrayField[*Address](2, 2, func() *Address { return newAddress() }),
		Callsigns: NewStringValueMapField[uint8](3, 4, 10),
		Bases:     NewSubmessageValueMapField[uint8, *Address](4, 2, func() *Address { return newAddress() }),
	}
	MustHaveUniqueFieldIDs(c.Fields())
	return c
}

func (c *Crew) MessageID() MessageId { return 500 }
func (c *Crew) Fields() []Field {
	return []Field{c.Nicknames, c.Waypoints, c.Callsigns, c.Bases}
}
