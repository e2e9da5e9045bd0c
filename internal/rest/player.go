package rest

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/sarpt/mpv-music-api/internal/common"
	"github.com/sarpt/mpv-music-api/pkg/state/pkg/library"
	"github.com/sarpt/mpv-music-api/pkg/state/pkg/player"
)

const (
	fuzzyArg        = "fuzzy"
	nextArg         = "next"
	pauseArg        = "pause"
	playlistUUIDArg = "playlistUUID"
	previousArg     = "previous"
	queryArg        = "query"
	repeatArg       = "repeat"
	seekArg         = "seek"
	shuffleArg      = "shuffle"
	stopArg         = "stop"
	trackIDArg      = "trackId"
	volumeArg       = "volume"
)

var (
	// ErrTrackNotInQueue occurs when the selected track is not a part of the requested queue.
	ErrTrackNotInQueue = errors.New("track is not present in the requested queue")
)

func (s *Server) getPlayerHandler(res http.ResponseWriter, req *http.Request) {
	playerStorage := s.statesRepository.Player()
	writeRevisioned(res, req, playerStorage.Revision(), func() interface{} {
		return playerStorage.State()
	})
}

// trackIDHandler starts playing the selected track, with the queue being either the playlist or the (filtered) catalog.
// Selecting the current track toggles between pause and resume instead.
func (s *Server) trackIDHandler(req *http.Request) (common.Payload, error) {
	trackID := req.PostFormValue(trackIDArg)

	current := s.statesRepository.Player().State()
	if current.CurrentTrack != nil && current.CurrentTrack.ID == trackID {
		if current.Playing {
			return s.dispatch(req, player.Pause{})
		}

		return s.dispatch(req, player.Resume{})
	}

	queue, err := s.requestedQueue(req)
	if err != nil {
		return nil, err
	}

	for idx, track := range queue {
		if track.ID == trackID {
			s.outLog.Printf("playing track '%s' due to request from %s\n", track.Title, req.RemoteAddr)

			return s.dispatch(req, player.PlayTrack{
				Track: track,
				Queue: queue,
				Index: idx,
			})
		}
	}

	if _, err := s.statesRepository.Library().ByID(trackID); err != nil {
		return nil, err
	}

	return nil, fmt.Errorf("%w: %s", ErrTrackNotInQueue, trackID)
}

// requestedQueue returns tracks of the playlist when playlistUUID is provided, or the catalog filtered by the query otherwise.
func (s *Server) requestedQueue(req *http.Request) ([]library.Track, error) {
	playlistUUID := req.PostFormValue(playlistUUIDArg)
	if playlistUUID != "" {
		playlist, err := s.statesRepository.Playlists().ByUUID(playlistUUID)
		if err != nil {
			return nil, err
		}

		return playlist.Tracks(), nil
	}

	fuzzy, _ := strconv.ParseBool(req.PostFormValue(fuzzyArg))
	return searchTracks(s.statesRepository.Library().All(), req.PostFormValue(queryArg), fuzzy), nil
}

func (s *Server) pauseHandler(req *http.Request) (common.Payload, error) {
	pause, err := strconv.ParseBool(req.PostFormValue(pauseArg))
	if err != nil {
		return nil, err
	}

	s.outLog.Printf("changing pause to %t due to request from %s\n", pause, req.RemoteAddr)
	if pause {
		return s.dispatch(req, player.Pause{})
	}

	return s.dispatch(req, player.Resume{})
}

func (s *Server) stopHandler(req *http.Request) (common.Payload, error) {
	return s.flagHandler(req, stopArg, player.Stop{})
}

func (s *Server) volumeHandler(req *http.Request) (common.Payload, error) {
	volume, err := strconv.ParseFloat(req.PostFormValue(volumeArg), 64)
	if err != nil {
		return nil, err
	}

	s.outLog.Printf("changing volume to %.2f due to request from %s\n", volume, req.RemoteAddr)
	return s.dispatch(req, player.SetVolume{Volume: volume})
}

func (s *Server) seekHandler(req *http.Request) (common.Payload, error) {
	position, err := strconv.ParseFloat(req.PostFormValue(seekArg), 64)
	if err != nil {
		return nil, err
	}

	s.outLog.Printf("seeking to %.1f due to request from %s\n", position, req.RemoteAddr)
	return s.dispatch(req, player.Seek{Position: position})
}

func (s *Server) shuffleHandler(req *http.Request) (common.Payload, error) {
	return s.flagHandler(req, shuffleArg, player.ToggleShuffle{Seed: time.Now().UnixNano()})
}

func (s *Server) repeatHandler(req *http.Request) (common.Payload, error) {
	return s.flagHandler(req, repeatArg, player.CycleRepeat{})
}

func (s *Server) nextHandler(req *http.Request) (common.Payload, error) {
	return s.flagHandler(req, nextArg, player.NextTrack{})
}

func (s *Server) previousHandler(req *http.Request) (common.Payload, error) {
	return s.flagHandler(req, previousArg, player.PreviousTrack{})
}

// flagHandler dispatches action when the boolean argument is true.
func (s *Server) flagHandler(req *http.Request, arg string, action player.Action) (common.Payload, error) {
	enabled, err := strconv.ParseBool(req.PostFormValue(arg))
	if err != nil {
		return nil, err
	}

	if !enabled {
		return nil, nil
	}

	s.outLog.Printf("dispatching %s due to request from %s\n", action.Variant(), req.RemoteAddr)
	return s.dispatch(req, action)
}

func (s *Server) dispatch(req *http.Request, action player.Action) (common.Payload, error) {
	state, err := s.statesRepository.Player().Dispatch(req.Context(), action)
	if err != nil {
		return nil, err
	}

	return state, nil
}

func (s *Server) postPlayerFormArgumentsHandlers() map[string]common.FormArgument {
	return map[string]common.FormArgument{
		fuzzyArg: {
			Validate: validateBool(fuzzyArg),
		},
		nextArg: {
			Handle:   s.nextHandler,
			Validate: validateBool(nextArg),
		},
		pauseArg: {
			Handle:   s.pauseHandler,
			Validate: validateBool(pauseArg),
		},
		playlistUUIDArg: {},
		previousArg: {
			Handle:   s.previousHandler,
			Validate: validateBool(previousArg),
		},
		queryArg: {},
		repeatArg: {
			Handle:   s.repeatHandler,
			Validate: validateBool(repeatArg),
		},
		seekArg: {
			Handle:   s.seekHandler,
			Validate: validateFloat(seekArg),
		},
		shuffleArg: {
			Handle:   s.shuffleHandler,
			Validate: validateBool(shuffleArg),
		},
		stopArg: {
			Handle:   s.stopHandler,
			Validate: validateBool(stopArg),
		},
		trackIDArg: {
			Handle:   s.trackIDHandler,
			Validate: validateNotEmpty(trackIDArg),
		},
		volumeArg: {
			Handle: s.volumeHandler,
			Validate: func(req *http.Request) error {
				volume, err := strconv.ParseFloat(req.PostFormValue(volumeArg), 64)
				if err != nil {
					return err
				}

				return player.Validate(player.SetVolume{Volume: volume})
			},
		},
	}
}
