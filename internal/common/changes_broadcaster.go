package common

// ChangeVariant names the kind of change emitted by a storage.
type ChangeVariant string

// ChannelVariant names the SSE channel on which changes of a storage are published.
type ChannelVariant string

type Change interface {
	Variant() ChangeVariant
}

type ChangesBroadcaster[CT Change] struct {
	*Broadcaster[CT]
}

func NewChangesBroadcaster[CT Change]() *ChangesBroadcaster[CT] {
	return &ChangesBroadcaster[CT]{
		NewBroadcaster[CT](),
	}
}

// SubscriberFunc adapts a plain callback to the Subscriber interface.
type SubscriberFunc[CT any] func(change CT)

func (f SubscriberFunc[CT]) Receive(change CT) {
	f(change)
}
