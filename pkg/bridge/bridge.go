package bridge

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/sarpt/mpv-music-api/pkg/state/pkg/player"
)

const (
	logPrefix = "bridge.Bridge#"

	deviceEventsSize = 16
)

// Player is the state store mirrored by the Bridge.
type Player interface {
	State() player.State
	Post(ctx context.Context, action player.Action) error
	Subscribe(cb player.SubscriberCB) func()
}

// Config controls behaviour of the Bridge.
type Config struct {
	Device    Device
	ErrWriter io.Writer
	OutWriter io.Writer
	Player    Player
}

// Bridge mirrors player state onto the audio device and device events back onto the player.
// Device is used only from the Serve goroutine.
type Bridge struct {
	device  Device
	errLog  *log.Logger
	outLog  *log.Logger
	pending chan struct{}
	player  Player

	syncLock    *sync.Mutex
	seekTo      *float64
	restartNext bool
	reloadNext  bool
}

func NewBridge(cfg Config) *Bridge {
	return &Bridge{
		device:   cfg.Device,
		errLog:   log.New(cfg.ErrWriter, logPrefix, log.LstdFlags),
		outLog:   log.New(cfg.OutWriter, logPrefix, log.LstdFlags),
		pending:  make(chan struct{}, 1),
		player:   cfg.Player,
		syncLock: &sync.Mutex{},
	}
}

// Serve listens to player changes and device events until ctx is done.
// Both listeners are removed before Serve returns.
func (b *Bridge) Serve(ctx context.Context) error {
	unsubscribePlayer := b.player.Subscribe(b.Receive)
	defer unsubscribePlayer()

	events := make(chan Event, deviceEventsSize)
	unsubscribeDevice, err := b.device.Subscribe(events)
	if err != nil {
		return err
	}
	defer unsubscribeDevice()

	b.outLog.Println("mirroring player state onto the audio device")
	b.schedule()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-b.pending:
			b.sync(ctx)
		case event := <-events:
			b.handleEvent(ctx, event)
		}
	}
}

// Receive marks the device as requiring synchronization with the state after the change.
// Receive does not block, consecutive changes are synchronized at once.
func (b *Bridge) Receive(change player.Change) {
	switch change.Action.(type) {
	case player.UpdatePosition, player.ToggleShuffle, player.CycleRepeat, player.PlaybackFailed:
		return
	case player.Seek:
		b.requestSeek(change.State.Position)
	case player.Stop:
		b.requestSeek(0)
	case player.PlayTrack, player.NextTrack, player.PreviousTrack:
		b.syncLock.Lock()
		b.restartNext = true
		b.syncLock.Unlock()
	}

	b.schedule()
}

// Resync schedules loading the current track again at the current position,
// eg. after the device lost its state due to a restart.
func (b *Bridge) Resync() {
	position := b.player.State().Position

	b.syncLock.Lock()
	b.reloadNext = true
	b.seekTo = &position
	b.syncLock.Unlock()

	b.schedule()
}

func (b *Bridge) requestSeek(position float64) {
	b.syncLock.Lock()
	defer b.syncLock.Unlock()

	b.seekTo = &position
}

func (b *Bridge) schedule() {
	select {
	case b.pending <- struct{}{}:
	default:
	}
}

func (b *Bridge) takeRequests() (*float64, bool, bool) {
	b.syncLock.Lock()
	defer b.syncLock.Unlock()

	seekTo, restart, reload := b.seekTo, b.restartNext, b.reloadNext
	b.seekTo = nil
	b.restartNext = false
	b.reloadNext = false

	return seekTo, restart, reload
}

// sync applies the latest player state to the device.
func (b *Bridge) sync(ctx context.Context) {
	state := b.player.State()
	seekTo, restart, reload := b.takeRequests()

	if state.CurrentTrack == nil {
		return
	}

	source := state.CurrentTrack.AudioURL
	if reload || b.device.Source() != source {
		b.outLog.Printf("loading '%s'\n", source)
		if err := b.device.Load(source); err != nil {
			b.fail(ctx, err)

			return
		}
	} else if restart && seekTo == nil {
		zero := float64(0)
		seekTo = &zero
	}

	if seekTo != nil {
		if err := b.device.Seek(*seekTo); err != nil {
			b.errLog.Printf("could not seek to %f: %s\n", *seekTo, err)
		}
	}

	if err := b.device.SetVolume(state.Volume); err != nil {
		b.errLog.Printf("could not set volume to %f: %s\n", state.Volume, err)
	}

	if !state.Playing {
		if err := b.device.Pause(); err != nil {
			b.errLog.Printf("could not pause: %s\n", err)
		}

		return
	}

	if err := b.device.Play(); err != nil {
		b.fail(ctx, err)
	}
}

func (b *Bridge) handleEvent(ctx context.Context, event Event) {
	switch event.Variant {
	case ProgressEvent:
		b.post(ctx, player.UpdatePosition{Position: event.Position})
	case EndedEvent:
		b.handleEnded(ctx, event.Source)
	case FailedEvent:
		b.handleFailed(ctx, event)
	}
}

// isCurrent reports whether source belongs to the current track.
// Events of sources replaced in the meantime are stale.
func isCurrent(state player.State, source string) bool {
	return state.CurrentTrack != nil && state.CurrentTrack.AudioURL == source
}

func (b *Bridge) handleFailed(ctx context.Context, event Event) {
	if !isCurrent(b.player.State(), event.Source) {
		return
	}

	reason := event.Err
	if reason == "" {
		reason = "unknown error"
	}

	b.fail(ctx, fmt.Errorf("could not play '%s': %s", event.Source, reason))
}

func (b *Bridge) handleEnded(ctx context.Context, source string) {
	state := b.player.State()
	if !isCurrent(state, source) {
		return
	}

	if state.Repeat == player.RepeatTrack {
		b.restartTrack(ctx, state.CurrentTrack.AudioURL)

		return
	}

	b.post(ctx, player.NextTrack{})
	if state.AtQueueEnd() {
		b.post(ctx, player.Stop{})
	}
}

// restartTrack plays the current track again from the beginning without changing the state.
func (b *Bridge) restartTrack(ctx context.Context, source string) {
	if b.device.Source() != source {
		if err := b.device.Load(source); err != nil {
			b.fail(ctx, err)

			return
		}
	}

	if err := b.device.Seek(0); err != nil {
		b.errLog.Printf("could not restart track: %s\n", err)
	}

	if err := b.device.Play(); err != nil {
		b.fail(ctx, err)
	}
}

// fail reports device failure to the player as a forced pause.
func (b *Bridge) fail(ctx context.Context, err error) {
	b.errLog.Printf("playback failed: %s\n", err)
	b.post(ctx, player.PlaybackFailed{Reason: err.Error()})
}

func (b *Bridge) post(ctx context.Context, action player.Action) {
	err := b.player.Post(ctx, action)
	if err != nil {
		b.errLog.Printf("could not post %s action: %s\n", action.Variant(), err)
	}
}
