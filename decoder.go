package crunch

// MessageFactory constructs a fresh, empty instance of one message type,
// ready to be decoded into.
type MessageFactory func() Message

// Decoder dispatches an incoming buffer to one of several known message
// types by the message id in its StandardHeader. It's the entry point
// for a component that receives more than one message type over the
// same channel and can't know which one is coming until it looks at
// the header.
type Decoder struct {
	serdes    Serdes
	integrity Integrity
	factories map[MessageId]MessageFactory
}

// NewDecoder builds a Decoder for serdes/integrity over the given
// message factories, keyed by each factory's own MessageID. It panics
// if two factories share a message id, the same authoring-time
// safeguard MustHaveUniqueFieldIDs applies within a single message.
func NewDecoder(serdes Serdes, integrity Integrity, factories ...MessageFactory) *Decoder {
	d := &Decoder{
		serdes:    serdes,
		integrity: integrity,
		factories: make(map[MessageId]MessageFactory, len(factories)),
	}
	for _, factory := range factories {
		id := factory().MessageID()
		if _, dup := d.factories[id]; dup {
			panic("crunch: duplicate message id registered with the same Decoder")
		}
		d.factories[id] = factory
	}
	return d
}

// Decode peeks src's header for a message id, constructs the matching
// factory's message, and fully decodes and validates it. An id no
// factory registered fails with InvalidMessageId before the integrity
// trailer or the payload is inspected; only the header's length and
// version are checked ahead of it.
func (d *Decoder) Decode(src []byte) (Message, error) {
	header, err := peekHeader(src)
	if err != nil {
		return nil, err
	}
	factory, known := d.factories[header.messageID]
	if !known {
		return nil, errorf(KindInvalidMessageID, noField, "no message registered for id %d", header.messageID)
	}
	msg := factory()
	if err := Deserialize(d.serdes, d.integrity, src, msg); err != nil {
		return nil, err
	}
	return msg, nil
}
