package rest

import (
	"errors"
	"net/http"

	"github.com/sarpt/mpv-music-api/internal/common"
	"github.com/sarpt/mpv-music-api/pkg/probe"
	"github.com/sarpt/mpv-music-api/pkg/state/pkg/library"
	"github.com/sarpt/mpv-music-api/pkg/state/pkg/playlists"
)

// writeError responds with 404 for resources that do not exist, and with 500 otherwise.
func writeError(res http.ResponseWriter, err error) {
	status := 500
	if isNotFound(err) {
		status = 404
	}

	common.WriteJSON(res, status, common.HandlerErrors{
		GeneralError: err.Error(),
	})
}

func isNotFound(err error) bool {
	return errors.Is(err, library.ErrTrackNotFound) ||
		errors.Is(err, library.ErrDirectoryNotFound) ||
		errors.Is(err, playlists.ErrPlaylistWithUUIDDoesNotExist) ||
		errors.Is(err, probe.ErrNoPicture)
}
