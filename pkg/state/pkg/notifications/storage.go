package notifications

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/sarpt/mpv-music-api/internal/common"
	"github.com/sarpt/mpv-music-api/pkg/state/internal/revision"
)

const (
	// NotificationAdded notifies about a new user-facing notification.
	NotificationAdded common.ChangeVariant = "added"

	historySize = 20
)

type SubscriberCB = func(change Change)

// Notification is a user-facing message about a successful operation.
type Notification struct {
	CreatedAt   time.Time `json:"CreatedAt"`
	Description string    `json:"Description"`
	Title       string    `json:"Title"`
}

// Change holds the notification which was just added.
type Change struct {
	Notification Notification
}

// MarshalJSON returns change items in JSON format. Satisfies json.Marshaller.
func (c Change) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Notification)
}

func (c Change) Variant() common.ChangeVariant {
	return NotificationAdded
}

// Storage keeps recent notifications and publishes new ones to its subscribers.
// Storage satisfies notify.Notifier.
type Storage struct {
	broadcaster *common.ChangesBroadcaster[Change]
	items       []Notification
	lock        *sync.RWMutex
	revision    *revision.Storage
}

func NewStorage(broadcaster *common.ChangesBroadcaster[Change]) *Storage {
	return &Storage{
		broadcaster: broadcaster,
		items:       []Notification{},
		lock:        &sync.RWMutex{},
		revision:    revision.NewStorage(),
	}
}

// Notify stores notification, dropping the oldest one when history is full.
func (s *Storage) Notify(title string, description string) {
	notification := Notification{
		CreatedAt:   time.Now(),
		Description: description,
		Title:       title,
	}

	s.lock.Lock()
	s.items = append(s.items, notification)
	if len(s.items) > historySize {
		s.items = s.items[len(s.items)-historySize:]
	}
	s.lock.Unlock()

	s.revision.Tick()
	s.broadcaster.Send(Change{
		Notification: notification,
	})
}

// All returns recent notifications, oldest first.
func (s *Storage) All() []Notification {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return append([]Notification{}, s.items...)
}

// MarshalJSON satisifes json.Marshaller.
func (s *Storage) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.All())
}

func (s *Storage) Revision() revision.Identifier {
	return s.revision.Revision()
}

func (s *Storage) Subscribe(cb SubscriberCB) func() {
	return s.broadcaster.Subscribe(common.SubscriberFunc[Change](cb))
}
