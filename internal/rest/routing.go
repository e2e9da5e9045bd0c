package rest

import (
	"net/http"

	"github.com/sarpt/mpv-music-api/internal/common"
	"github.com/sarpt/mpv-music-api/pkg/probe"
)

const (
	directoriesPath    = "/rest/directories"
	playerPath         = "/rest/player"
	playlistsPath      = "/rest/playlists"
	playlistM3UPath    = "/rest/playlists/m3u"
	playlistTracksPath = "/rest/playlists/tracks"
	tracksPath         = "/rest/tracks"
	albumArtPath       = probe.AlbumArtPath
)

// Handler returns http.Handler responsible for REST handling subtree.
func (s *Server) Handler() http.Handler {
	playerHandlers := map[string]http.HandlerFunc{
		http.MethodGet:  s.getPlayerHandler,
		http.MethodPost: common.CreateFormHandler(s.postPlayerFormArgumentsHandlers()),
	}

	playlistsHandlers := map[string]http.HandlerFunc{
		http.MethodGet:    s.getPlaylistsHandler,
		http.MethodPost:   common.CreateFormHandler(s.postPlaylistsFormArgumentsHandlers()),
		http.MethodDelete: s.deletePlaylistsHandler,
	}

	playlistTracksHandlers := map[string]http.HandlerFunc{
		http.MethodPut:    common.CreateFormHandler(s.putPlaylistTracksFormArgumentsHandlers()),
		http.MethodDelete: s.deletePlaylistTracksHandler,
	}

	playlistM3UHandlers := map[string]http.HandlerFunc{
		http.MethodGet: s.getPlaylistM3UHandler,
	}

	tracksHandlers := map[string]http.HandlerFunc{
		http.MethodGet: s.getTracksHandler,
	}

	albumArtHandlers := map[string]http.HandlerFunc{
		http.MethodGet: s.getAlbumArtHandler,
	}

	directoriesHandlers := map[string]http.HandlerFunc{
		http.MethodGet:    s.getDirectoriesHandler,
		http.MethodPut:    common.CreateFormHandler(s.putDirectoriesFormArgumentsHandlers()),
		http.MethodDelete: s.deleteDirectoriesHandler,
	}

	allHandlers := map[string]common.MethodHandlers{
		albumArtPath:       albumArtHandlers,
		directoriesPath:    directoriesHandlers,
		playerPath:         playerHandlers,
		playlistM3UPath:    playlistM3UHandlers,
		playlistsPath:      playlistsHandlers,
		playlistTracksPath: playlistTracksHandlers,
		tracksPath:         tracksHandlers,
	}

	mux := http.NewServeMux()
	for path, methodHandlers := range allHandlers {
		cfg := common.PathHandlerConfig{
			AllowCORS:      s.allowCORS,
			MethodHandlers: methodHandlers,
		}
		mux.HandleFunc(path, common.PathHandler(cfg))
	}

	return mux
}
