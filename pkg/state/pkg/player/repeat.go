package player

import (
	"encoding/json"
	"fmt"
)

// RepeatMode governs end of track and queue boundary behaviour.
type RepeatMode uint8

const (
	RepeatNone RepeatMode = iota
	RepeatPlaylist
	RepeatTrack
	repeatLen
)

var repeatModeNames = map[RepeatMode]string{
	RepeatNone:     "none",
	RepeatPlaylist: "playlist",
	RepeatTrack:    "track",
}

// Cycle returns the next mode: none -> playlist -> track -> none.
func (m RepeatMode) Cycle() RepeatMode {
	return (m + 1) % repeatLen
}

func (m RepeatMode) String() string {
	name, ok := repeatModeNames[m]
	if !ok {
		return fmt.Sprintf("RepeatMode(%d)", m)
	}

	return name
}

// MarshalJSON satisfies json.Marshaller.
func (m RepeatMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}
