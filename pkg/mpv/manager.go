package mpv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os/exec"
	"time"

	"github.com/sarpt/mpv-music-api/internal/common"
)

const (
	mpvName           = "mpv"
	idleArg           = "--idle"
	noVideoArg        = "--no-video"
	inputIpcServerArg = "--input-ipc-server"

	managerLogPrefix = "mpv.Manager#"
)

// ManagerConfig controls the connection to mpv and, optionally, the lifetime of mpv process.
type ManagerConfig struct {
	MpvSocketPath           string
	ErrWriter               io.Writer
	OutWriter               io.Writer
	SocketConnectionTimeout time.Duration
	StartMpvInstance        bool
}

// Manager handles dispatching of commands, while exposing MPV command API as a facade.
type Manager struct {
	cd               *commandDispatcher
	errLog           *log.Logger
	outLog           *log.Logger
	socketPath       string
	startMpvInstance bool
}

// NewManager instantiates new command dispatcher, preparing new Manager for use.
// Neither connection nor mpv process are started before Serve is called.
func NewManager(cfg ManagerConfig) *Manager {
	errLog := log.New(cfg.ErrWriter, managerLogPrefix, log.LstdFlags)
	outLog := log.New(cfg.OutWriter, managerLogPrefix, log.LstdFlags)

	cdCfg := commandDispatcherConfig{
		connectionTimeout: cfg.SocketConnectionTimeout,
		errWriter:         errLog.Writer(),
		socketPath:        cfg.MpvSocketPath,
		outWriter:         outLog.Writer(),
	}

	return &Manager{
		cd:               newCommandDispatcher(cdCfg),
		errLog:           errLog,
		outLog:           outLog,
		socketPath:       cfg.MpvSocketPath,
		startMpvInstance: cfg.StartMpvInstance,
	}
}

// ChangePause instructs mpv to change the pause state.
// Paused argument specifies whether playback should be paused or unpaused.
func (m *Manager) ChangePause(paused bool) error {
	_, err := m.SetProperty(PauseProperty, paused)

	return err
}

// Close cleans up manager's resources.
func (m *Manager) Close() {
	m.cd.Close()
}

// Connected informs whether Manager is able to send commands to mpv.
func (m *Manager) Connected() bool {
	return m.cd.Connected()
}

// GetProperty returns the current value of a property.
func (m *Manager) GetProperty(property string) (Response, error) {
	cmd := command{
		name:     getPropertyCommand,
		elements: []interface{}{property},
	}

	return m.cd.Request(cmd)
}

// LoadFile instructs mpv to start playing the file from provided filepath.
// Second argument (append) controls whether filepath playback should be appended to the current playlist (instead of playback replacement).
// Returned id is the playlist entry id assigned by mpv, or UnknownEntryID when mpv does not report one.
func (m *Manager) LoadFile(filePath string, append bool) (int, error) {
	loadFileArg := ReplaceValue
	if append {
		loadFileArg = AppendValue
	}

	cmd := command{
		name:     loadfileCommand,
		elements: []interface{}{filePath, loadFileArg},
	}
	res, err := m.cd.Request(cmd)
	if err != nil {
		return UnknownEntryID, err
	}

	return playlistEntryID(res.Data), nil
}

func playlistEntryID(data interface{}) int {
	fields, ok := data.(map[string]interface{})
	if !ok {
		return UnknownEntryID
	}

	id, ok := fields[playlistEntryIDField].(float64)
	if !ok {
		return UnknownEntryID
	}

	return int(id)
}

// Seek changes the position of the playback to the provided number of seconds from the beginning of the file.
func (m *Manager) Seek(position float64) error {
	cmd := command{
		name:     seekCommand,
		elements: []interface{}{position, AbsoluteValue},
	}
	_, err := m.cd.Request(cmd)

	return err
}

// Serve starts handling requests to and responses from mpv until ctx is done.
// The connection is restored every time mpv closes the socket.
// If necessary, Serve also spawns and restarts mpv process.
func (m *Manager) Serve(ctx context.Context) error {
	mpvErrors := make(chan error, 1)
	cdErrors := make(chan error, 1)

	if m.startMpvInstance {
		go common.RestartWithContext(ctx, func() error {
			return m.runOwnMpvProcess(ctx)
		}, func() {
			m.outLog.Println("restarting mpv process...")
		}, mpvErrors)
	}

	go common.RestartWithContext(ctx, m.serveCommandDispatcher, func() {
		m.outLog.Println("reconnecting command dispatcher...")
	}, cdErrors)

	var err error
	select {
	case err = <-mpvErrors:
	case err = <-cdErrors:
	}

	m.cd.Close()
	return err
}

// SetProperty sets the value of a property.
// Value is of any type since various mpv commands expect different types of values.
func (m *Manager) SetProperty(property string, value interface{}) (Response, error) {
	cmd := command{
		name:     setPropertyCommand,
		elements: []interface{}{property, value},
	}

	return m.cd.Request(cmd)
}

// Stop instructs mpv to stop the playback without quitting.
func (m *Manager) Stop() error {
	cmd := command{
		name:     stopCommand,
		elements: []interface{}{},
	}
	_, err := m.cd.Request(cmd)

	return err
}

// SubscribeToEvent sends mpv events with the provided name on the out channel.
func (m *Manager) SubscribeToEvent(event string, out chan<- EventResponse) int {
	return m.cd.SubscribeToEvent(event, out)
}

// SubscribeToProperty instructs mpv to listen on property changes and send those changes on the out channel.
func (m *Manager) SubscribeToProperty(propertyName string, out chan<- ObservePropertyResponse) (int, error) {
	return m.cd.SubscribeToProperty(propertyName, out)
}

// UnobserveProperty stops sending property changes for the subscription id.
func (m *Manager) UnobserveProperty(propertyName string, id int) error {
	return m.cd.UnobserveProperty(propertyName, id)
}

// UnsubscribeFromEvent stops sending events for the subscription id.
func (m *Manager) UnsubscribeFromEvent(id int) error {
	return m.cd.UnsubscribeFromEvent(id)
}

// runOwnMpvProcess starts mpv and waits for it to exit.
// mpv closed by user without an error is restarted.
func (m *Manager) runOwnMpvProcess(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, mpvName, idleArg, noVideoArg, fmt.Sprintf("%s=%s", inputIpcServerArg, m.socketPath))
	err := cmd.Start()
	if err != nil {
		return fmt.Errorf("could not start mpv process: %w", err)
	}

	m.outLog.Println("mpv process started, watching for its exit...")

	err = cmd.Wait()
	if ctx.Err() != nil {
		return nil
	}

	if err != nil {
		return fmt.Errorf("mpv process finished with error: %w", err)
	}

	m.outLog.Println("mpv process finished successfully (closed by user)")
	return nil
}

func (m *Manager) serveCommandDispatcher() error {
	m.outLog.Println("connecting command dispatcher...")

	err := m.cd.Connect()
	if errors.Is(err, ErrConnectionTimeout) {
		return nil
	} else if err != nil {
		return err
	}

	return m.cd.Serve()
}
