package player

import (
	"errors"
	"fmt"
	"math"

	"github.com/sarpt/mpv-music-api/internal/common"
	"github.com/sarpt/mpv-music-api/pkg/state/pkg/library"
)

const (
	PlayTrackVariant      common.ChangeVariant = "playTrack"
	PauseVariant          common.ChangeVariant = "pause"
	ResumeVariant         common.ChangeVariant = "resume"
	StopVariant           common.ChangeVariant = "stop"
	SetVolumeVariant      common.ChangeVariant = "setVolume"
	SeekVariant           common.ChangeVariant = "seek"
	UpdatePositionVariant common.ChangeVariant = "updatePosition"
	ToggleShuffleVariant  common.ChangeVariant = "toggleShuffle"
	CycleRepeatVariant    common.ChangeVariant = "cycleRepeat"
	NextTrackVariant      common.ChangeVariant = "nextTrack"
	PreviousTrackVariant  common.ChangeVariant = "previousTrack"
	PlaybackFailedVariant common.ChangeVariant = "playbackFailed"
)

var (
	ErrVolumeOutOfRange = errors.New("volume should be between 0 and 1")
	ErrQueueIdxInvalid  = errors.New("queue index out of range")
	ErrQueueMismatch    = errors.New("track is not present in the queue under provided index")
)

// Action transitions the player State. Actions are applied only by the Storage dispatch loop.
type Action interface {
	Variant() common.ChangeVariant
}

// PlayTrack starts playing Track. When Queue is nil, the queue consists of Track alone.
type PlayTrack struct {
	Track library.Track
	Queue []library.Track
	Index int
}

type Pause struct{}

type Resume struct{}

type Stop struct{}

type SetVolume struct {
	Volume float64
}

type Seek struct {
	Position float64
}

// UpdatePosition reports playback progress of the audio device.
type UpdatePosition struct {
	Position float64
}

// ToggleShuffle turns shuffling on or off. Seed decides the play order when shuffling is turned on.
type ToggleShuffle struct {
	Seed int64
}

type CycleRepeat struct{}

type NextTrack struct{}

type PreviousTrack struct{}

// PlaybackFailed reports that the audio device could not play the current track.
type PlaybackFailed struct {
	Reason string
}

func (PlayTrack) Variant() common.ChangeVariant      { return PlayTrackVariant }
func (Pause) Variant() common.ChangeVariant          { return PauseVariant }
func (Resume) Variant() common.ChangeVariant         { return ResumeVariant }
func (Stop) Variant() common.ChangeVariant           { return StopVariant }
func (SetVolume) Variant() common.ChangeVariant      { return SetVolumeVariant }
func (Seek) Variant() common.ChangeVariant           { return SeekVariant }
func (UpdatePosition) Variant() common.ChangeVariant { return UpdatePositionVariant }
func (ToggleShuffle) Variant() common.ChangeVariant  { return ToggleShuffleVariant }
func (CycleRepeat) Variant() common.ChangeVariant    { return CycleRepeatVariant }
func (NextTrack) Variant() common.ChangeVariant      { return NextTrackVariant }
func (PreviousTrack) Variant() common.ChangeVariant  { return PreviousTrackVariant }
func (PlaybackFailed) Variant() common.ChangeVariant { return PlaybackFailedVariant }

// Validate checks preconditions of the action which do not depend on the state.
func Validate(action Action) error {
	switch a := action.(type) {
	case PlayTrack:
		if a.Queue == nil {
			if a.Index != 0 {
				return fmt.Errorf("%w: %d for a single track queue", ErrQueueIdxInvalid, a.Index)
			}

			return nil
		}

		if a.Index < 0 || a.Index >= len(a.Queue) {
			return fmt.Errorf("%w: %d for a queue of %d tracks", ErrQueueIdxInvalid, a.Index, len(a.Queue))
		}

		if a.Queue[a.Index].ID != a.Track.ID {
			return fmt.Errorf("%w: %s at %d", ErrQueueMismatch, a.Track.ID, a.Index)
		}
	case SetVolume:
		if math.IsNaN(a.Volume) || a.Volume < 0 || a.Volume > 1 {
			return fmt.Errorf("%w: %f", ErrVolumeOutOfRange, a.Volume)
		}
	case nil:
		return errors.New("no action provided")
	}

	return nil
}
