package sse

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/sarpt/mpv-music-api/internal/common"
	"github.com/sarpt/mpv-music-api/pkg/api"
	"github.com/sarpt/mpv-music-api/pkg/state"
	"github.com/sarpt/mpv-music-api/pkg/state/pkg/library"
	"github.com/sarpt/mpv-music-api/pkg/state/pkg/notifications"
	"github.com/sarpt/mpv-music-api/pkg/state/pkg/player"
	"github.com/sarpt/mpv-music-api/pkg/state/pkg/playlists"
	"github.com/sarpt/mpv-music-api/pkg/state/pkg/status"
)

const (
	logPrefix = "sse.Server#"

	name     = "SSE Server"
	pathBase = "sse"

	libraryChannelVariant       common.ChannelVariant = "library"
	notificationsChannelVariant common.ChannelVariant = "notifications"
	playerChannelVariant        common.ChannelVariant = "player"
	playlistsChannelVariant     common.ChannelVariant = "playlists"
	statusChannelVariant        common.ChannelVariant = "status"
)

var (
	registerPath = fmt.Sprintf("/%s/channels", pathBase)
)

// Server holds information about handled SSE connections and their observers.
type Server struct {
	cancel           context.CancelFunc
	channels         map[common.ChannelVariant]channel
	ctx              context.Context
	errLog           *log.Logger
	outLog           *log.Logger
	statesRepository state.Repository
	unsubscribers    []func()
}

// Config controls behaviour of the SSE server.
type Config struct {
	ErrWriter io.Writer
	OutWriter io.Writer
}

// NewServer prepares and returns SSE server to handle SSE connections and observers.
func NewServer(cfg Config) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		cancel:   cancel,
		channels: map[common.ChannelVariant]channel{},
		ctx:      ctx,
		errLog:   log.New(cfg.ErrWriter, logPrefix, log.LstdFlags),
		outLog:   log.New(cfg.OutWriter, logPrefix, log.LstdFlags),
	}
}

// Handler returns the handler of SSE channels registration.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(registerPath, s.createSseRegisterHandler())

	return mux
}

// Init creates channels for every storage of the repository and starts distributing their changes.
func (s *Server) Init(apiServer api.PluginApi) error {
	s.statesRepository = apiServer.StatesRepository()

	libraryChannel := newStateChannel[library.Change](libraryChannelVariant, s.statesRepository.Library(), s.errLog)
	notificationsChannel := newStateChannel[notifications.Change](notificationsChannelVariant, s.statesRepository.Notifications(), s.errLog)
	playerChannel := newStateChannel[player.Change](playerChannelVariant, s.statesRepository.Player(), s.errLog)
	playlistsChannel := newStateChannel[playlists.Change](playlistsChannelVariant, s.statesRepository.Playlists(), s.errLog)
	statusChannel := newStateChannel[status.Change](statusChannelVariant, s.statesRepository.Status(), s.errLog)

	for _, ch := range []channel{libraryChannel, notificationsChannel, playerChannel, playlistsChannel, statusChannel} {
		s.channels[ch.Variant()] = ch
	}

	s.unsubscribers = []func(){
		s.statesRepository.Library().Subscribe(libraryChannel.BroadcastToChannelObservers),
		s.statesRepository.Notifications().Subscribe(notificationsChannel.BroadcastToChannelObservers),
		s.statesRepository.Player().Subscribe(playerChannel.BroadcastToChannelObservers),
		s.statesRepository.Playlists().Subscribe(playlistsChannel.BroadcastToChannelObservers),
		s.statesRepository.Status().Subscribe(statusChannel.BroadcastToChannelObservers),
	}

	return nil
}

func (s *Server) Name() string {
	return name
}

func (s *Server) PathBase() string {
	return pathBase
}

// Shutdown closes all SSE connections and stops receiving state changes.
func (s *Server) Shutdown() {
	s.cancel()

	for _, unsubscribe := range s.unsubscribers {
		unsubscribe()
	}
}
