package common

import (
	"sync"
)

type Subscriber[CT any] interface {
	Receive(change CT)
}

type Broadcaster[CT any] struct {
	changes      chan CT
	lock         *sync.RWMutex
	subscriberID int
	subscribers  map[int]Subscriber[CT]
}

func NewBroadcaster[CT any]() *Broadcaster[CT] {
	return &Broadcaster[CT]{
		changes:     make(chan CT),
		lock:        &sync.RWMutex{},
		subscribers: map[int]Subscriber[CT]{},
	}
}

// Subscribe adds subscriber to the broadcast list.
// Returned function removes the subscriber, after which it will not receive any further changes.
func (cb *Broadcaster[CT]) Subscribe(sub Subscriber[CT]) func() {
	cb.lock.Lock()
	defer cb.lock.Unlock()

	id := cb.subscriberID
	cb.subscriberID++
	cb.subscribers[id] = sub

	return func() {
		cb.lock.Lock()
		defer cb.lock.Unlock()

		delete(cb.subscribers, id)
	}
}

func (cb *Broadcaster[CT]) Send(payload CT) {
	cb.changes <- payload
}

func (cb *Broadcaster[CT]) Broadcast() {
	go func() {
		for {
			change, more := <-cb.changes
			if !more {
				return
			}

			cb.lock.RLock()
			for _, subscriber := range cb.subscribers {
				subscriber.Receive(change)
			}
			cb.lock.RUnlock()
		}
	}()
}

// Close stops broadcasting. Send must not be called after Close.
func (cb *Broadcaster[CT]) Close() {
	close(cb.changes)
}
