package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sarpt/mpv-music-api/pkg/bridge"
	"github.com/sarpt/mpv-music-api/pkg/mpv"
	"github.com/sarpt/mpv-music-api/pkg/notify"
	"github.com/sarpt/mpv-music-api/pkg/probe"
	"github.com/sarpt/mpv-music-api/pkg/state"
)

const (
	logPrefix = "api.Server#"
	appName   = "mpv-music-api"

	deviceConnectionCheckInterval = time.Second
	shutdownTimeout               = 5 * time.Second
)

// Server is used to serve API and hold state accessible to the API.
type Server struct {
	address          string
	bridge           *bridge.Bridge
	errLog           *log.Logger
	fsWatcher        *fsnotify.Watcher
	mpvManager       *mpv.Manager
	outLog           *log.Logger
	plugins          []Plugin
	statesRepository state.Repository
	tracksCache      *tracksCache
	watchedDirs      map[string][]string
	watchedDirsLock  *sync.Mutex
}

// Config controls behaviour of the api server.
type Config struct {
	Address                 string
	CacheDir                string
	DesktopNotifications    bool
	ErrWriter               io.Writer
	MpvSocketPath           string
	OutWriter               io.Writer
	Plugins                 []Plugin
	SocketConnectionTimeout time.Duration
	StartMpvInstance        bool
}

// NewServer prepares and returns a server that can be used to handle API calls.
func NewServer(cfg Config) (*Server, error) {
	if cfg.OutWriter == nil {
		cfg.OutWriter = os.Stdout
	}
	if cfg.ErrWriter == nil {
		cfg.ErrWriter = os.Stderr
	}

	errLog := log.New(cfg.ErrWriter, logPrefix, log.LstdFlags)
	outLog := log.New(cfg.OutWriter, logPrefix, log.LstdFlags)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("could not initialize filesystem watcher: %w", err)
	}

	notifiers := []notify.Notifier{notify.NewLog(cfg.OutWriter)}
	if cfg.DesktopNotifications {
		desktopNotifier, err := notify.NewDBus(notify.DBusConfig{
			AppName:   appName,
			ErrWriter: cfg.ErrWriter,
		})
		if err != nil {
			errLog.Printf("desktop notifications are disabled: %s\n", err)
		} else {
			notifiers = append(notifiers, desktopNotifier)
		}
	}

	statesRepository := state.NewRepository(state.RepositoryConfig{
		Notifiers: notifiers,
	})

	mpvManager := mpv.NewManager(mpv.ManagerConfig{
		ErrWriter:               cfg.ErrWriter,
		MpvSocketPath:           cfg.MpvSocketPath,
		OutWriter:               cfg.OutWriter,
		SocketConnectionTimeout: cfg.SocketConnectionTimeout,
		StartMpvInstance:        cfg.StartMpvInstance,
	})

	device := mpv.NewDevice(mpv.DeviceConfig{
		ErrWriter: cfg.ErrWriter,
		Manager:   mpvManager,
	})

	server := &Server{
		address: cfg.Address,
		bridge: bridge.NewBridge(bridge.Config{
			Device:    device,
			ErrWriter: cfg.ErrWriter,
			OutWriter: cfg.OutWriter,
			Player:    statesRepository.Player(),
		}),
		errLog:           errLog,
		fsWatcher:        watcher,
		mpvManager:       mpvManager,
		outLog:           outLog,
		plugins:          cfg.Plugins,
		statesRepository: statesRepository,
		watchedDirs:      map[string][]string{},
		watchedDirsLock:  &sync.Mutex{},
	}

	if cfg.CacheDir != "" {
		cache, err := loadTracksCache(cfg.CacheDir)
		if err != nil {
			errLog.Printf("starting with empty tracks cache: %s\n", err)
		}

		server.tracksCache = cache
	}

	for _, plugin := range server.plugins {
		err := plugin.Init(server)
		if err != nil {
			return nil, fmt.Errorf("could not initialize plugin %s: %w", plugin.Name(), err)
		}
	}

	return server, nil
}

// Serve starts handling API endpoints of all plugins, together with the player, the audio device and the library watcher.
// Blocks until ctx is done or either of the components stops serving with an error.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errs := make(chan error, 4)

	go func() {
		errs <- s.statesRepository.Player().Serve(ctx)
	}()

	go func() {
		errs <- s.bridge.Serve(ctx)
	}()

	go func() {
		errs <- s.mpvManager.Serve(ctx)
	}()

	go s.watchForFsChanges(ctx)
	go s.watchDeviceConnection(ctx)

	serv := http.Server{
		Addr:    s.address,
		Handler: s.mainHandler(),
	}

	go func() {
		s.outLog.Printf("running server at %s\n", s.address)
		err := serv.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	var err error
	select {
	case <-ctx.Done():
	case err = <-errs:
	}
	cancel()

	for _, plugin := range s.plugins {
		plugin.Shutdown()
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	serv.Shutdown(shutdownCtx)

	s.Close()
	return err
}

// Close cleans up server's resources.
func (s *Server) Close() {
	s.fsWatcher.Close()
	s.mpvManager.Close()

	if s.tracksCache == nil {
		return
	}

	if err := s.tracksCache.save(); err != nil {
		s.errLog.Printf("could not save tracks cache: %s\n", err)
	}
}

// probeCache returns the tracks cache, or nil when tracks are not cached.
func (s *Server) probeCache() probe.Cache {
	if s.tracksCache == nil {
		return nil
	}

	return s.tracksCache
}

// StatesRepository returns storages of the server.
func (s *Server) StatesRepository() state.Repository {
	return s.statesRepository
}

func (s *Server) mainHandler() *http.ServeMux {
	mux := http.NewServeMux()
	for _, plugin := range s.plugins {
		s.outLog.Printf("serving %s under /%s/\n", plugin.Name(), plugin.PathBase())
		mux.Handle(fmt.Sprintf("/%s/", plugin.PathBase()), plugin.Handler())
	}

	return mux
}

// watchDeviceConnection reflects availability of mpv in the status storage.
// Player state is applied again to mpv whenever it becomes available.
func (s *Server) watchDeviceConnection(ctx context.Context) {
	ticker := time.NewTicker(deviceConnectionCheckInterval)
	defer ticker.Stop()

	status := s.statesRepository.Status()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			connected := s.mpvManager.Connected()
			if connected == status.DeviceConnected() {
				continue
			}

			status.SetDeviceConnected(connected)
			if connected {
				s.outLog.Println("mpv connected, resynchronizing player")
				s.bridge.Resync()
			} else {
				s.errLog.Println("mpv disconnected")
			}
		}
	}
}
