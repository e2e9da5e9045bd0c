package rest

import (
	"io"
	"log"

	"github.com/sarpt/mpv-music-api/pkg/api"
	"github.com/sarpt/mpv-music-api/pkg/state"
)

const (
	logPrefix = "rest.Server#"

	name     = "REST Server"
	pathBase = "rest"
)

// Config controls behaviour of the REST server.
type Config struct {
	AllowCORS bool
	ErrWriter io.Writer
	OutWriter io.Writer
}

// Server is responsible for creating REST handlers, argument parsing and validation.
type Server struct {
	allowCORS        bool
	apiServer        api.PluginApi
	errLog           *log.Logger
	outLog           *log.Logger
	statesRepository state.Repository
}

// NewServer returns rest.Server instance.
func NewServer(cfg Config) *Server {
	return &Server{
		allowCORS: cfg.AllowCORS,
		errLog:    log.New(cfg.ErrWriter, logPrefix, log.LstdFlags),
		outLog:    log.New(cfg.OutWriter, logPrefix, log.LstdFlags),
	}
}

func (s *Server) Init(apiServer api.PluginApi) error {
	s.apiServer = apiServer
	s.statesRepository = apiServer.StatesRepository()

	return nil
}

func (s *Server) Name() string {
	return name
}

func (s *Server) PathBase() string {
	return pathBase
}

func (s *Server) Shutdown() {}
