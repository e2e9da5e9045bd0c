package sse

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/sarpt/mpv-music-api/internal/common"
)

const (
	replayEvent = "replay"

	observerChangesBuffer = 64
)

type stateChange interface {
	Variant() common.ChangeVariant
	MarshalJSON() ([]byte, error)
}

type channel interface {
	AddObserver(address string)
	RemoveObserver(address string)
	Replay(res ResponseWriter) error
	ServeObserver(address string, res ResponseWriter, done <-chan struct{}) error
	Variant() common.ChannelVariant
}

// stateChannel distributes changes of a single storage to every observer of the channel.
type stateChannel[CT stateChange] struct {
	errLog    *log.Logger
	lock      *sync.RWMutex
	observers map[string]chan CT
	state     json.Marshaler
	variant   common.ChannelVariant
}

func newStateChannel[CT stateChange](variant common.ChannelVariant, state json.Marshaler, errLog *log.Logger) *stateChannel[CT] {
	return &stateChannel[CT]{
		errLog:    errLog,
		lock:      &sync.RWMutex{},
		observers: map[string]chan CT{},
		state:     state,
		variant:   variant,
	}
}

func (st *stateChannel[CT]) AddObserver(address string) {
	st.lock.Lock()
	defer st.lock.Unlock()

	st.observers[address] = make(chan CT, observerChangesBuffer)
}

func (st *stateChannel[CT]) RemoveObserver(address string) {
	st.lock.Lock()
	defer st.lock.Unlock()

	changes, ok := st.observers[address]
	if !ok {
		return
	}

	close(changes)
	delete(st.observers, address)
}

// Replay sends the whole state of the storage.
func (st *stateChannel[CT]) Replay(res ResponseWriter) error {
	return res.SendChange(st.state, st.variant, replayEvent)
}

// ServeObserver writes changes to the observer until done is closed or the observer is removed.
func (st *stateChannel[CT]) ServeObserver(address string, res ResponseWriter, done <-chan struct{}) error {
	st.lock.RLock()
	changes, ok := st.observers[address]
	st.lock.RUnlock()
	if !ok {
		return errNoObserver
	}

	for {
		select {
		case <-done:
			return nil
		case change, more := <-changes:
			if !more {
				return nil
			}

			err := res.SendChange(change, st.variant, string(change.Variant()))
			if err != nil {
				return err
			}
		}
	}
}

// BroadcastToChannelObservers passes change to every observer. Observers lagging behind do not receive the change.
func (st *stateChannel[CT]) BroadcastToChannelObservers(change CT) {
	st.lock.RLock()
	defer st.lock.RUnlock()

	for address, observer := range st.observers {
		select {
		case observer <- change:
		default:
			st.errLog.Printf("observer %s of %s channel is lagging, dropping %s change\n", address, st.variant, change.Variant())
		}
	}
}

func (st *stateChannel[CT]) Variant() common.ChannelVariant {
	return st.variant
}
