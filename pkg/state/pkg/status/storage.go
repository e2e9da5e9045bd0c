package status

import (
	"encoding/json"
	"sync"

	"github.com/sarpt/mpv-music-api/internal/common"
)

const (
	// ClientObserverAdded notifies about addition of new client observer.
	ClientObserverAdded common.ChangeVariant = "client-observer-added"

	// ClientObserverRemoved notifies about removal of connected client observer.
	ClientObserverRemoved common.ChangeVariant = "client-observer-removed"

	// DeviceConnectionChanged notifies about audio device becoming available or unavailable (mpv restart, forced close etc.).
	DeviceConnectionChanged common.ChangeVariant = "device-connection-changed"
)

type SubscriberCB = func(change Change)

// storageJSON is a status information in JSON form.
type storageJSON struct {
	DeviceConnected    bool                               `json:"DeviceConnected"`
	ObservingAddresses map[string][]common.ChannelVariant `json:"ObservingAddresses"`
}

// Change holds information about changes to the server misc status.
type Change struct {
	ChangeVariant common.ChangeVariant
	storage       *Storage
}

// MarshalJSON returns whole status after the change. Satisfies json.Marshaller.
func (c Change) MarshalJSON() ([]byte, error) {
	return c.storage.MarshalJSON()
}

func (c Change) Variant() common.ChangeVariant {
	return c.ChangeVariant
}

// Storage holds information about server misc status.
type Storage struct {
	broadcaster        *common.ChangesBroadcaster[Change]
	deviceConnected    bool
	observingAddresses map[string][]common.ChannelVariant
	lock               *sync.RWMutex
}

// NewStorage constructs Status state.
func NewStorage(broadcaster *common.ChangesBroadcaster[Change]) *Storage {
	return &Storage{
		broadcaster:        broadcaster,
		observingAddresses: map[string][]common.ChannelVariant{},
		lock:               &sync.RWMutex{},
	}
}

// ObservingAddresses returns a mapping of a remote address to the channel variants.
func (s *Storage) ObservingAddresses() map[string][]common.ChannelVariant {
	s.lock.RLock()
	defer s.lock.RUnlock()

	addresses := map[string][]common.ChannelVariant{}
	for addr, variants := range s.observingAddresses {
		addresses[addr] = append([]common.ChannelVariant{}, variants...)
	}

	return addresses
}

// AddObservingAddress adds remote address listening on specific channel variant to the status state.
func (s *Storage) AddObservingAddress(remoteAddr string, observerVariant common.ChannelVariant) {
	s.lock.Lock()
	s.observingAddresses[remoteAddr] = append(s.observingAddresses[remoteAddr], observerVariant)
	s.lock.Unlock()

	s.broadcaster.Send(Change{
		ChangeVariant: ClientObserverAdded,
		storage:       s,
	})
}

// RemoveObservingAddress removes remote address listening on specific channel variant from the state.
func (s *Storage) RemoveObservingAddress(remoteAddr string, observerVariant common.ChannelVariant) {
	s.lock.Lock()
	observers, ok := s.observingAddresses[remoteAddr]
	if !ok {
		s.lock.Unlock()

		return
	}

	filteredObservers := []common.ChannelVariant{}
	for _, observer := range observers {
		if observer != observerVariant {
			filteredObservers = append(filteredObservers, observer)
		}
	}

	if len(filteredObservers) == 0 {
		delete(s.observingAddresses, remoteAddr)
	} else {
		s.observingAddresses[remoteAddr] = filteredObservers
	}
	s.lock.Unlock()

	s.broadcaster.Send(Change{
		ChangeVariant: ClientObserverRemoved,
		storage:       s,
	})
}

// DeviceConnected informs whether the audio device accepts commands.
func (s *Storage) DeviceConnected() bool {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.deviceConnected
}

// SetDeviceConnected changes audio device availability.
func (s *Storage) SetDeviceConnected(connected bool) {
	s.lock.Lock()
	if s.deviceConnected == connected {
		s.lock.Unlock()

		return
	}
	s.deviceConnected = connected
	s.lock.Unlock()

	s.broadcaster.Send(Change{
		ChangeVariant: DeviceConnectionChanged,
		storage:       s,
	})
}

// MarshalJSON satisfies json.Marshaller.
func (s *Storage) MarshalJSON() ([]byte, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	sJSON := storageJSON{
		DeviceConnected:    s.deviceConnected,
		ObservingAddresses: s.observingAddresses,
	}
	return json.Marshal(&sJSON)
}

func (s *Storage) Subscribe(cb SubscriberCB) func() {
	return s.broadcaster.Subscribe(common.SubscriberFunc[Change](cb))
}
