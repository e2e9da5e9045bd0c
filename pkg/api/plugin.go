package api

import (
	"io"
	"net/http"

	"github.com/sarpt/mpv-music-api/internal/common"
	"github.com/sarpt/mpv-music-api/pkg/probe"
	"github.com/sarpt/mpv-music-api/pkg/state"
	"github.com/sarpt/mpv-music-api/pkg/state/pkg/playlists"
)

// PluginApi is a part of the Server available to plugins.
type PluginApi interface {
	AddDirectories(dirs []common.Directory)
	AlbumArt(trackID string) (probe.Picture, error)
	ExportPlaylist(uuid string, w io.Writer) error
	ImportPlaylist(name string, r io.Reader) (*playlists.Playlist, error)
	StatesRepository() state.Repository
	TakeDirectory(path string) (common.Directory, error)
}

// Plugin handles requests under its own path base, eg. "/rest/...".
type Plugin interface {
	Handler() http.Handler
	Init(apiServer PluginApi) error
	Name() string
	PathBase() string
	Shutdown()
}
