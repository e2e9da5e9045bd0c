package player

import (
	"github.com/sarpt/mpv-music-api/pkg/state/pkg/library"
)

const (
	defaultVolume = 1
)

// State is a snapshot of the player.
// When CurrentTrack is not nil, Queue[CurrentIdx] holds the same track.
type State struct {
	CurrentTrack *library.Track  `json:"CurrentTrack"`
	CurrentIdx   int             `json:"CurrentIdx"`
	LastError    string          `json:"LastError,omitempty"`
	Playing      bool            `json:"Playing"`
	Position     float64         `json:"Position"`
	Queue        []library.Track `json:"Queue"`
	Repeat       RepeatMode      `json:"Repeat"`
	Shuffle      bool            `json:"Shuffle"`
	ShuffleOrder []int           `json:"ShuffleOrder,omitempty"`
	ShuffleSeed  int64           `json:"-"`
	Volume       float64         `json:"Volume"`
}

// NewState returns neutral state of the player at the start of the session.
func NewState() State {
	return State{
		Queue:  []library.Track{},
		Repeat: RepeatNone,
		Volume: defaultVolume,
	}
}

// Copy returns the state with slices and current track not shared with the receiver.
func (s State) Copy() State {
	result := s
	if s.CurrentTrack != nil {
		track := *s.CurrentTrack
		result.CurrentTrack = &track
	}

	result.Queue = append([]library.Track{}, s.Queue...)
	if s.ShuffleOrder != nil {
		result.ShuffleOrder = append([]int{}, s.ShuffleOrder...)
	}

	return result
}

// AtQueueEnd reports whether advancing forward would not move to another track.
func (s State) AtQueueEnd() bool {
	if len(s.Queue) == 0 {
		return true
	}

	if s.Repeat == RepeatPlaylist {
		return false
	}

	if s.Shuffle && len(s.ShuffleOrder) == len(s.Queue) {
		return orderPosition(s.ShuffleOrder, s.CurrentIdx) == len(s.ShuffleOrder)-1
	}

	return s.CurrentIdx >= len(s.Queue)-1
}
