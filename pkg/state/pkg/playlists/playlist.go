package playlists

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sarpt/mpv-music-api/pkg/state/pkg/library"
)

// Playlist is a user-named, ordered collection of tracks. The same track may be present more than once.
type Playlist struct {
	coverImage string
	createdAt  time.Time
	lock       *sync.RWMutex
	name       string
	tracks     []library.Track
	uuid       string
}

type playlistJSON struct {
	CoverImage string          `json:"CoverImage,omitempty"`
	CreatedAt  time.Time       `json:"CreatedAt"`
	Name       string          `json:"Name"`
	Tracks     []library.Track `json:"Tracks"`
	UUID       string          `json:"UUID"`
}

type Config struct {
	CoverImage string
	Name       string
	Tracks     []library.Track
}

// NewPlaylist constructs Playlist with a new UUID and current time as creation time.
func NewPlaylist(cfg Config) *Playlist {
	return &Playlist{
		coverImage: cfg.CoverImage,
		createdAt:  time.Now(),
		lock:       &sync.RWMutex{},
		name:       cfg.Name,
		tracks:     append([]library.Track{}, cfg.Tracks...),
		uuid:       uuid.NewString(),
	}
}

// Tracks returns a copy of tracks in the playlist.
func (p *Playlist) Tracks() []library.Track {
	p.lock.RLock()
	defer p.lock.RUnlock()

	return append([]library.Track{}, p.tracks...)
}

func (p *Playlist) CoverImage() string {
	return p.coverImage
}

func (p *Playlist) CreatedAt() time.Time {
	return p.createdAt
}

// MarshalJSON satisifes json.Marshaller.
func (p *Playlist) MarshalJSON() ([]byte, error) {
	p.lock.RLock()
	pJSON := playlistJSON{
		CoverImage: p.coverImage,
		CreatedAt:  p.createdAt,
		Name:       p.name,
		Tracks:     p.tracks,
		UUID:       p.uuid,
	}
	p.lock.RUnlock()

	return json.Marshal(pJSON)
}

func (p *Playlist) Name() string {
	return p.name
}

func (p *Playlist) UUID() string {
	return p.uuid
}

func (p *Playlist) appendTrack(track library.Track) {
	p.lock.Lock()
	defer p.lock.Unlock()

	p.tracks = append(p.tracks, track)
}

// removeTrack removes every occurrence of the track and returns the number of removed entries.
func (p *Playlist) removeTrack(trackID string) int {
	p.lock.Lock()
	defer p.lock.Unlock()

	tracks := make([]library.Track, 0, len(p.tracks))
	for _, track := range p.tracks {
		if track.ID != trackID {
			tracks = append(tracks, track)
		}
	}

	removed := len(p.tracks) - len(tracks)
	p.tracks = tracks

	return removed
}
