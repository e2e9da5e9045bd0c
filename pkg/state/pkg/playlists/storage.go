package playlists

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sarpt/mpv-music-api/internal/common"
	"github.com/sarpt/mpv-music-api/pkg/notify"
	"github.com/sarpt/mpv-music-api/pkg/state/internal/revision"
	"github.com/sarpt/mpv-music-api/pkg/state/pkg/library"
)

const (
	// PlaylistAdded notifies of a new playlist being created.
	PlaylistAdded common.ChangeVariant = "added"

	// PlaylistTracksChange notifies about changes to the tracks in a playlist.
	PlaylistTracksChange common.ChangeVariant = "tracksChange"

	// PlaylistRemoved notifies about deletion of a playlist.
	PlaylistRemoved common.ChangeVariant = "removed"
)

const (
	createdTitle = "Playlist created"
	addedTitle   = "Track added"
	removedTitle = "Track removed"
	deletedTitle = "Playlist deleted"

	removedDescription = "Track has been removed from the playlist."
	deletedDescription = "Playlist has been deleted successfully."
)

var (
	ErrEmptyPlaylistName            = errors.New("playlist name cannot be empty")
	ErrPlaylistWithUUIDDoesNotExist = errors.New("playlist with provided uuid does not exist")
)

type SubscriberCB = func(change Change)

// Change is used to inform about changes to the playlists.
type Change struct {
	ChangeVariant common.ChangeVariant
	Playlist      *Playlist
}

// MarshalJSON returns change items in JSON format. Satisfies json.Marshaller.
func (c Change) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Playlist)
}

func (c Change) Variant() common.ChangeVariant {
	return c.ChangeVariant
}

// Storage is a session-scoped registry of playlists. Every successful mutation is announced with notifier.
type Storage struct {
	broadcaster *common.ChangesBroadcaster[Change]
	items       map[string]*Playlist
	lock        *sync.RWMutex
	notifier    notify.Notifier
	order       []string
	revision    *revision.Storage
}

func NewStorage(broadcaster *common.ChangesBroadcaster[Change], notifier notify.Notifier) *Storage {
	return &Storage{
		broadcaster: broadcaster,
		items:       map[string]*Playlist{},
		lock:        &sync.RWMutex{},
		notifier:    notifier,
		revision:    revision.NewStorage(),
	}
}

// All returns all playlists in order of creation.
func (p *Storage) All() []*Playlist {
	p.lock.RLock()
	defer p.lock.RUnlock()

	allPlaylists := make([]*Playlist, 0, len(p.order))
	for _, uuid := range p.order {
		allPlaylists = append(allPlaylists, p.items[uuid])
	}

	return allPlaylists
}

func (p *Storage) ByUUID(uuid string) (*Playlist, error) {
	p.lock.RLock()
	defer p.lock.RUnlock()

	playlist, ok := p.items[uuid]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPlaylistWithUUIDDoesNotExist, uuid)
	}

	return playlist, nil
}

// Create adds a new, empty playlist. Name is trimmed and cannot be empty.
func (p *Storage) Create(name string) (*Playlist, error) {
	return p.Import(name, nil)
}

// Import adds a new playlist with the provided tracks.
func (p *Storage) Import(name string, tracks []library.Track) (*Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyPlaylistName
	}

	playlist := NewPlaylist(Config{
		Name:   name,
		Tracks: tracks,
	})

	p.lock.Lock()
	p.items[playlist.UUID()] = playlist
	p.order = append(p.order, playlist.UUID())
	p.lock.Unlock()

	p.changed(Change{
		ChangeVariant: PlaylistAdded,
		Playlist:      playlist,
	})
	p.notifier.Notify(createdTitle, fmt.Sprintf("\"%s\" has been created successfully.", name))

	return playlist, nil
}

// AddTrack appends track to the playlist with uuid.
func (p *Storage) AddTrack(uuid string, track library.Track) error {
	playlist, err := p.ByUUID(uuid)
	if err != nil {
		return err
	}

	playlist.appendTrack(track)

	p.changed(Change{
		ChangeVariant: PlaylistTracksChange,
		Playlist:      playlist,
	})
	p.notifier.Notify(addedTitle, fmt.Sprintf("\"%s\" has been added to the playlist.", track.Title))

	return nil
}

// RemoveTrack removes all occurrences of track with trackID from the playlist with uuid.
// Returns number of removed entries.
func (p *Storage) RemoveTrack(uuid string, trackID string) (int, error) {
	playlist, err := p.ByUUID(uuid)
	if err != nil {
		return 0, err
	}

	removed := playlist.removeTrack(trackID)

	p.changed(Change{
		ChangeVariant: PlaylistTracksChange,
		Playlist:      playlist,
	})
	p.notifier.Notify(removedTitle, removedDescription)

	return removed, nil
}

// Delete removes the playlist with uuid from the registry.
func (p *Storage) Delete(uuid string) error {
	p.lock.Lock()
	playlist, ok := p.items[uuid]
	if !ok {
		p.lock.Unlock()

		return fmt.Errorf("%w: %s", ErrPlaylistWithUUIDDoesNotExist, uuid)
	}

	delete(p.items, uuid)
	order := make([]string, 0, len(p.order))
	for _, id := range p.order {
		if id != uuid {
			order = append(order, id)
		}
	}
	p.order = order
	p.lock.Unlock()

	p.changed(Change{
		ChangeVariant: PlaylistRemoved,
		Playlist:      playlist,
	})
	p.notifier.Notify(deletedTitle, deletedDescription)

	return nil
}

// MarshalJSON satisifes json.Marshaller.
func (p *Storage) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.All())
}

func (p *Storage) Revision() revision.Identifier {
	return p.revision.Revision()
}

func (p *Storage) Subscribe(cb SubscriberCB) func() {
	return p.broadcaster.Subscribe(common.SubscriberFunc[Change](cb))
}

func (p *Storage) changed(change Change) {
	p.revision.Tick()
	p.broadcaster.Send(change)
}
