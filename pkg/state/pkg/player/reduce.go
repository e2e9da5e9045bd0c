package player

import (
	"math"

	"github.com/sarpt/mpv-music-api/pkg/state/pkg/library"
)

// Reduce returns the state resulting from applying action to state.
// The second result reports whether the state changed; when it's false, the returned state is the provided one.
// Reduce does not modify slices held by the provided state or action.
func Reduce(state State, action Action) (State, bool) {
	switch a := action.(type) {
	case PlayTrack:
		return playTrack(state, a), true
	case Pause:
		if !state.Playing {
			return state, false
		}

		state.Playing = false
		return state, true
	case Resume:
		if state.CurrentTrack == nil || state.Playing {
			return state, false
		}

		state.Playing = true
		state.LastError = ""
		return state, true
	case Stop:
		if !state.Playing && state.Position == 0 {
			return state, false
		}

		state.Playing = false
		state.Position = 0
		return state, true
	case SetVolume:
		if state.Volume == a.Volume {
			return state, false
		}

		state.Volume = a.Volume
		return state, true
	case Seek:
		return setPosition(state, a.Position)
	case UpdatePosition:
		return setPosition(state, a.Position)
	case ToggleShuffle:
		state.Shuffle = !state.Shuffle
		if state.Shuffle {
			state.ShuffleSeed = a.Seed
			state.ShuffleOrder = shuffleOrder(len(state.Queue), state.CurrentIdx, state.ShuffleSeed)
		} else {
			state.ShuffleOrder = nil
		}

		return state, true
	case CycleRepeat:
		state.Repeat = state.Repeat.Cycle()
		return state, true
	case NextTrack:
		return step(state, 1)
	case PreviousTrack:
		return step(state, -1)
	case PlaybackFailed:
		if !state.Playing && state.LastError == a.Reason {
			return state, false
		}

		state.Playing = false
		state.LastError = a.Reason
		return state, true
	}

	return state, false
}

func playTrack(state State, action PlayTrack) State {
	queue := action.Queue
	if queue == nil {
		queue = []library.Track{action.Track}
	}

	track := action.Track
	state.CurrentTrack = &track
	state.CurrentIdx = action.Index
	state.Queue = append([]library.Track{}, queue...)
	state.Playing = true
	state.Position = 0
	state.LastError = ""

	if state.Shuffle {
		state.ShuffleOrder = shuffleOrder(len(state.Queue), state.CurrentIdx, state.ShuffleSeed)
	}

	return state
}

func setPosition(state State, position float64) (State, bool) {
	position = clampPosition(state.CurrentTrack, position)
	if state.Position == position {
		return state, false
	}

	state.Position = position
	return state, true
}

// clampPosition keeps position in [0, duration]. Tracks with unknown (zero) duration are bounded only from below.
func clampPosition(track *library.Track, position float64) float64 {
	if math.IsNaN(position) || position < 0 {
		return 0
	}

	if track != nil && track.Duration > 0 && position > float64(track.Duration) {
		return float64(track.Duration)
	}

	return position
}

func step(state State, direction int) (State, bool) {
	if len(state.Queue) == 0 {
		return state, false
	}

	idx := nextIdx(state, direction)
	if state.CurrentTrack != nil && idx == state.CurrentIdx && state.Position == 0 {
		return state, false
	}

	track := state.Queue[idx]
	state.CurrentTrack = &track
	state.CurrentIdx = idx
	state.Position = 0

	return state, true
}

func nextIdx(state State, direction int) int {
	if state.Shuffle && len(state.ShuffleOrder) == len(state.Queue) {
		position := orderPosition(state.ShuffleOrder, state.CurrentIdx)

		return state.ShuffleOrder[boundedIdx(position+direction, len(state.ShuffleOrder), state.Repeat)]
	}

	return boundedIdx(state.CurrentIdx+direction, len(state.Queue), state.Repeat)
}

// boundedIdx wraps idx around the queue only when the whole playlist is repeated, otherwise idx is clamped.
func boundedIdx(idx int, length int, repeat RepeatMode) int {
	if idx >= length {
		if repeat == RepeatPlaylist {
			return 0
		}

		return length - 1
	}

	if idx < 0 {
		if repeat == RepeatPlaylist {
			return length - 1
		}

		return 0
	}

	return idx
}
