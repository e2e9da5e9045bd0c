package library

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/sarpt/mpv-music-api/internal/common"
	"github.com/sarpt/mpv-music-api/pkg/state/internal/revision"
)

const (
	// TracksAdded notifies about addition of tracks to the catalog.
	TracksAdded common.ChangeVariant = "added"

	// TracksRemoved notifies about removal of tracks from the catalog.
	TracksRemoved common.ChangeVariant = "removed"

	// DirectoriesChanged notifies about changes to the library directories.
	DirectoriesChanged common.ChangeVariant = "directoriesChanged"
)

var (
	ErrTrackNotFound     = errors.New("track with provided id does not exist")
	ErrDirectoryNotFound = errors.New("directory is not a part of the library")
)

type SubscriberCB = func(change Change)

// Change holds information about tracks added to or removed from the catalog.
type Change struct {
	ChangeVariant common.ChangeVariant
	Tracks        []Track
	Directories   []common.Directory
}

// MarshalJSON returns change items in JSON format. Satisfies json.Marshaller.
func (c Change) MarshalJSON() ([]byte, error) {
	if c.ChangeVariant == DirectoriesChanged {
		return json.Marshal(c.Directories)
	}

	return json.Marshal(c.Tracks)
}

func (c Change) Variant() common.ChangeVariant {
	return c.ChangeVariant
}

// Storage holds the catalog of tracks available for playback.
// Tracks are kept in order of addition.
type Storage struct {
	broadcaster *common.ChangesBroadcaster[Change]
	directories map[string]common.Directory
	ids         []string
	items       map[string]Track
	lock        *sync.RWMutex
	revision    *revision.Storage
}

type storageJSON struct {
	Directories []common.Directory `json:"Directories"`
	Tracks      []Track            `json:"Tracks"`
}

// NewStorage constructs catalog Storage.
func NewStorage(broadcaster *common.ChangesBroadcaster[Change]) *Storage {
	return &Storage{
		broadcaster: broadcaster,
		directories: map[string]common.Directory{},
		items:       map[string]Track{},
		lock:        &sync.RWMutex{},
		revision:    revision.NewStorage(),
	}
}

// Add adds tracks to the catalog. Tracks with ids already present replace previous entries in place.
func (s *Storage) Add(tracks ...Track) {
	if len(tracks) == 0 {
		return
	}

	s.lock.Lock()
	for _, track := range tracks {
		if _, ok := s.items[track.ID]; !ok {
			s.ids = append(s.ids, track.ID)
		}

		s.items[track.ID] = track
	}
	s.lock.Unlock()

	s.revision.Tick()
	s.broadcaster.Send(Change{
		ChangeVariant: TracksAdded,
		Tracks:        tracks,
	})
}

// All returns a copy of the catalog.
func (s *Storage) All() []Track {
	s.lock.RLock()
	defer s.lock.RUnlock()

	tracks := make([]Track, 0, len(s.ids))
	for _, id := range s.ids {
		tracks = append(tracks, s.items[id])
	}

	return tracks
}

// ByID returns a track with the provided id.
func (s *Storage) ByID(id string) (Track, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	track, ok := s.items[id]
	if !ok {
		return Track{}, fmt.Errorf("%w: %s", ErrTrackNotFound, id)
	}

	return track, nil
}

// ByAudioURL returns the first track that is sourced from the provided audio url.
func (s *Storage) ByAudioURL(audioURL string) (Track, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	for _, id := range s.ids {
		track := s.items[id]
		if track.AudioURL == audioURL {
			return track, true
		}
	}

	return Track{}, false
}

// Take removes all tracks sourced from the audio url (or from any file inside it when it's a directory).
// Returns removed tracks.
func (s *Storage) Take(audioURL string) []Track {
	removed := []Track{}

	s.lock.Lock()
	ids := []string{}
	for _, id := range s.ids {
		track := s.items[id]
		if track.AudioURL == audioURL || common.IsInDirectory(track.AudioURL, audioURL) {
			removed = append(removed, track)
			delete(s.items, id)

			continue
		}

		ids = append(ids, id)
	}
	s.ids = ids
	s.lock.Unlock()

	if len(removed) == 0 {
		return removed
	}

	s.revision.Tick()
	s.broadcaster.Send(Change{
		ChangeVariant: TracksRemoved,
		Tracks:        removed,
	})

	return removed
}

// AddDirectory marks directory as a source of tracks in the library.
func (s *Storage) AddDirectory(dir common.Directory) {
	dir.Path = common.EnsureDirectoryPath(dir.Path)

	s.lock.Lock()
	s.directories[dir.Path] = dir
	s.lock.Unlock()

	s.revision.Tick()
	s.broadcaster.Send(Change{
		ChangeVariant: DirectoriesChanged,
		Directories:   s.Directories(),
	})
}

// TakeDirectory removes directory from the library together with all tracks sourced from it.
func (s *Storage) TakeDirectory(path string) (common.Directory, error) {
	path = common.EnsureDirectoryPath(path)

	s.lock.Lock()
	dir, ok := s.directories[path]
	if !ok {
		s.lock.Unlock()

		return dir, fmt.Errorf("%w: %s", ErrDirectoryNotFound, path)
	}
	delete(s.directories, path)
	s.lock.Unlock()

	s.Take(path)

	s.revision.Tick()
	s.broadcaster.Send(Change{
		ChangeVariant: DirectoriesChanged,
		Directories:   s.Directories(),
	})

	return dir, nil
}

// Directories returns library directories.
func (s *Storage) Directories() []common.Directory {
	s.lock.RLock()
	defer s.lock.RUnlock()

	dirs := []common.Directory{}
	for _, dir := range s.directories {
		dirs = append(dirs, dir)
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Path < dirs[j].Path })

	return dirs
}

// MarshalJSON satisifes json.Marshaller.
func (s *Storage) MarshalJSON() ([]byte, error) {
	return json.Marshal(storageJSON{
		Directories: s.Directories(),
		Tracks:      s.All(),
	})
}

func (s *Storage) Revision() revision.Identifier {
	return s.revision.Revision()
}

func (s *Storage) Subscribe(cb SubscriberCB) func() {
	return s.broadcaster.Subscribe(common.SubscriberFunc[Change](cb))
}
