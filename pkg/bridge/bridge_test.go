package bridge_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/go-test/deep"
	"github.com/golang/mock/gomock"
	"github.com/sarpt/mpv-music-api/internal/common"
	"github.com/sarpt/mpv-music-api/internal/mocks"
	"github.com/sarpt/mpv-music-api/pkg/bridge"
	"github.com/sarpt/mpv-music-api/pkg/state/pkg/library"
	"github.com/sarpt/mpv-music-api/pkg/state/pkg/player"
)

var (
	trackA = library.Track{ID: "a", Title: "Airbag", Duration: 284, AudioURL: "/music/airbag.flac"}
	trackB = library.Track{ID: "b", Title: "Let Down", Duration: 299, AudioURL: "/music/let_down.flac"}
)

// deviceRecorder keeps state of the mocked device and the calls made to it.
type deviceRecorder struct {
	calls      []string
	events     chan<- bridge.Event
	lock       *sync.Mutex
	playErr    error
	source     string
	subscribed chan struct{}
}

func (r *deviceRecorder) record(call string) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.calls = append(r.calls, call)
}

func (r *deviceRecorder) Calls() []string {
	r.lock.Lock()
	defer r.lock.Unlock()

	return append([]string{}, r.calls...)
}

func (r *deviceRecorder) emit(event bridge.Event) {
	r.lock.Lock()
	events := r.events
	r.lock.Unlock()

	events <- event
}

func newDevice(ctrl *gomock.Controller, rec *deviceRecorder) *mocks.MockDevice {
	device := mocks.NewMockDevice(ctrl)

	device.EXPECT().Subscribe(gomock.Any()).DoAndReturn(func(events chan<- bridge.Event) (func(), error) {
		rec.lock.Lock()
		rec.events = events
		rec.lock.Unlock()
		close(rec.subscribed)

		return func() { rec.record("unsubscribe") }, nil
	}).Times(1)
	device.EXPECT().Source().DoAndReturn(func() string {
		rec.lock.Lock()
		defer rec.lock.Unlock()

		return rec.source
	}).AnyTimes()
	device.EXPECT().Load(gomock.Any()).DoAndReturn(func(source string) error {
		rec.record(fmt.Sprintf("load %s", source))
		rec.lock.Lock()
		rec.source = source
		rec.lock.Unlock()

		return nil
	}).AnyTimes()
	device.EXPECT().Play().DoAndReturn(func() error {
		rec.record("play")
		rec.lock.Lock()
		defer rec.lock.Unlock()

		return rec.playErr
	}).AnyTimes()
	device.EXPECT().Pause().DoAndReturn(func() error {
		rec.record("pause")
		return nil
	}).AnyTimes()
	device.EXPECT().Seek(gomock.Any()).DoAndReturn(func(position float64) error {
		rec.record(fmt.Sprintf("seek %g", position))
		return nil
	}).AnyTimes()
	device.EXPECT().SetVolume(gomock.Any()).DoAndReturn(func(volume float64) error {
		rec.record(fmt.Sprintf("volume %g", volume))
		return nil
	}).AnyTimes()

	return device
}

type fixture struct {
	bridge   *bridge.Bridge
	cancel   context.CancelFunc
	player   *player.Storage
	recorder *deviceRecorder
	served   chan error
}

func setup(t *testing.T, playErr error) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	broadcaster := common.NewChangesBroadcaster[player.Change]()
	broadcaster.Broadcast()
	playerStorage := player.NewStorage(broadcaster)

	rec := &deviceRecorder{
		lock:       &sync.Mutex{},
		playErr:    playErr,
		subscribed: make(chan struct{}),
	}

	uut := bridge.NewBridge(bridge.Config{
		Device:    newDevice(ctrl, rec),
		ErrWriter: io.Discard,
		OutWriter: io.Discard,
		Player:    playerStorage,
	})

	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go playerStorage.Serve(ctx)
	go func() {
		served <- uut.Serve(ctx)
	}()

	select {
	case <-rec.subscribed:
	case <-time.After(time.Second):
		t.Fatalf("Bridge did not subscribe to device events")
	}

	t.Cleanup(cancel)

	return fixture{
		bridge:   uut,
		cancel:   cancel,
		player:   playerStorage,
		recorder: rec,
		served:   served,
	}
}

func eventually(t *testing.T, description string, condition func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}

		time.Sleep(5 * time.Millisecond)
	}

	t.Fatalf("Timed out waiting for: %s", description)
}

func callsContain(calls []string, expected string) bool {
	for _, call := range calls {
		if call == expected {
			return true
		}
	}

	return false
}

func TestPlayTrack_LoadsSourceAndPlays(t *testing.T) {
	// given
	f := setup(t, nil)

	// when
	_, err := f.player.Dispatch(context.Background(), player.PlayTrack{Track: trackA})
	if err != nil {
		t.Fatalf("Unexpected dispatch error: %s", err)
	}

	// then
	eventually(t, "play call", func() bool { return callsContain(f.recorder.Calls(), "play") })

	expected := []string{"load /music/airbag.flac", "volume 1", "play"}
	if diff := deep.Equal(f.recorder.Calls(), expected); diff != nil {
		t.Error(diff)
	}
}

func TestPause_PausesDevice(t *testing.T) {
	// given
	f := setup(t, nil)
	ctx := context.Background()
	f.player.Dispatch(ctx, player.PlayTrack{Track: trackA})
	eventually(t, "play call", func() bool { return callsContain(f.recorder.Calls(), "play") })

	// when
	f.player.Dispatch(ctx, player.Pause{})

	// then
	eventually(t, "pause call", func() bool { return callsContain(f.recorder.Calls(), "pause") })

	loads := 0
	for _, call := range f.recorder.Calls() {
		if call == "load /music/airbag.flac" {
			loads++
		}
	}

	if loads != 1 {
		t.Errorf("Expected source to be loaded once, loaded %d times", loads)
	}
}

func TestSeek_WritesPositionToDevice(t *testing.T) {
	// given
	f := setup(t, nil)
	ctx := context.Background()
	f.player.Dispatch(ctx, player.PlayTrack{Track: trackA})
	eventually(t, "play call", func() bool { return callsContain(f.recorder.Calls(), "play") })

	// when
	f.player.Dispatch(ctx, player.Seek{Position: 1000})

	// then
	eventually(t, "clamped seek", func() bool { return callsContain(f.recorder.Calls(), "seek 284") })
}

func TestPlayFailure_ForcesPause(t *testing.T) {
	// given
	f := setup(t, errors.New("autoplay blocked"))

	// when
	f.player.Dispatch(context.Background(), player.PlayTrack{Track: trackA})

	// then
	eventually(t, "playback failure in state", func() bool {
		state := f.player.State()
		return !state.Playing && state.LastError == "autoplay blocked"
	})
}

func TestProgress_UpdatesPosition(t *testing.T) {
	// given
	f := setup(t, nil)
	f.player.Dispatch(context.Background(), player.PlayTrack{Track: trackA})

	// when
	f.recorder.emit(bridge.Event{Variant: bridge.ProgressEvent, Position: 12.5})

	// then
	eventually(t, "position update", func() bool { return f.player.State().Position == 12.5 })
}

func TestEnded_AdvancesQueue(t *testing.T) {
	// given
	f := setup(t, nil)
	f.player.Dispatch(context.Background(), player.PlayTrack{Track: trackA, Queue: []library.Track{trackA, trackB}})
	eventually(t, "play call", func() bool { return callsContain(f.recorder.Calls(), "play") })

	// when
	f.recorder.emit(bridge.Event{Variant: bridge.EndedEvent, Source: trackA.AudioURL})

	// then
	eventually(t, "next track", func() bool {
		state := f.player.State()
		return state.CurrentIdx == 1 && state.Playing
	})
	eventually(t, "next source load", func() bool { return callsContain(f.recorder.Calls(), "load /music/let_down.flac") })
}

func TestEnded_StopsAtQueueEnd(t *testing.T) {
	// given
	f := setup(t, nil)
	f.player.Dispatch(context.Background(), player.PlayTrack{Track: trackA})
	f.player.Dispatch(context.Background(), player.UpdatePosition{Position: 284})
	eventually(t, "play call", func() bool { return callsContain(f.recorder.Calls(), "play") })

	// when
	f.recorder.emit(bridge.Event{Variant: bridge.EndedEvent, Source: trackA.AudioURL})

	// then
	eventually(t, "stopped player", func() bool {
		state := f.player.State()
		return !state.Playing && state.Position == 0 && state.CurrentIdx == 0
	})
}

func TestEnded_RepeatsTrack(t *testing.T) {
	// given
	f := setup(t, nil)
	ctx := context.Background()
	f.player.Dispatch(ctx, player.PlayTrack{Track: trackA, Queue: []library.Track{trackA, trackB}})
	f.player.Dispatch(ctx, player.CycleRepeat{})
	f.player.Dispatch(ctx, player.CycleRepeat{})
	eventually(t, "play call", func() bool { return callsContain(f.recorder.Calls(), "play") })
	callsBefore := len(f.recorder.Calls())

	// when
	f.recorder.emit(bridge.Event{Variant: bridge.EndedEvent, Source: trackA.AudioURL})

	// then
	eventually(t, "restart of the track", func() bool {
		calls := f.recorder.Calls()
		return len(calls) >= callsBefore+2 && calls[len(calls)-2] == "seek 0" && calls[len(calls)-1] == "play"
	})

	state := f.player.State()
	if state.CurrentIdx != 0 || !state.Playing || state.Repeat != player.RepeatTrack {
		t.Errorf("Expected repeated track to leave the state intact, got %+v", state)
	}
}

func TestServe_UnsubscribesOnCancel(t *testing.T) {
	// given
	f := setup(t, nil)

	// when
	f.cancel()

	// then
	select {
	case err := <-f.served:
		if err != nil {
			t.Errorf("Unexpected serve error: %s", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("Bridge did not stop serving")
	}

	if !callsContain(f.recorder.Calls(), "unsubscribe") {
		t.Errorf("Expected device listener to be removed")
	}
}

func TestResync_ReloadsCurrentTrackAtPosition(t *testing.T) {
	// given
	f := setup(t, nil)
	ctx := context.Background()
	f.player.Dispatch(ctx, player.PlayTrack{Track: trackA})
	f.player.Dispatch(ctx, player.UpdatePosition{Position: 30})
	eventually(t, "play call", func() bool { return callsContain(f.recorder.Calls(), "play") })
	callsBefore := len(f.recorder.Calls())

	// when
	f.bridge.Resync()

	// then
	eventually(t, "reload of the track", func() bool {
		calls := f.recorder.Calls()
		return len(calls) >= callsBefore+4
	})

	expected := []string{"load /music/airbag.flac", "seek 30", "volume 1", "play"}
	if diff := deep.Equal(f.recorder.Calls()[callsBefore:callsBefore+4], expected); diff != nil {
		t.Error(diff)
	}
}

func TestEnded_IgnoresReplacedSource(t *testing.T) {
	// given
	f := setup(t, nil)
	ctx := context.Background()
	f.player.Dispatch(ctx, player.PlayTrack{Track: trackA, Queue: []library.Track{trackA, trackB}})
	f.player.Dispatch(ctx, player.PlayTrack{Track: trackB, Queue: []library.Track{trackA, trackB}})
	eventually(t, "next source load", func() bool { return callsContain(f.recorder.Calls(), "load /music/let_down.flac") })

	// when
	f.recorder.emit(bridge.Event{Variant: bridge.EndedEvent, Source: trackA.AudioURL})
	f.recorder.emit(bridge.Event{Variant: bridge.ProgressEvent, Position: 5})

	// then
	eventually(t, "position update", func() bool { return f.player.State().Position == 5 })

	state := f.player.State()
	if state.CurrentIdx != 1 || !state.Playing {
		t.Errorf("Expected replaced track end to leave the state intact, got %+v", state)
	}
}

func TestFailed_ForcesPauseWithReason(t *testing.T) {
	// given
	f := setup(t, nil)
	f.player.Dispatch(context.Background(), player.PlayTrack{Track: trackA})
	eventually(t, "play call", func() bool { return callsContain(f.recorder.Calls(), "play") })

	// when
	f.recorder.emit(bridge.Event{Variant: bridge.FailedEvent, Source: trackA.AudioURL, Err: "loading failed"})

	// then
	expectedErr := "could not play '/music/airbag.flac': loading failed"
	eventually(t, "playback failure in state", func() bool {
		state := f.player.State()
		return !state.Playing && state.LastError == expectedErr
	})
}

func TestFailed_ResumeLoadsSourceAgain(t *testing.T) {
	// given
	f := setup(t, nil)
	ctx := context.Background()
	f.player.Dispatch(ctx, player.PlayTrack{Track: trackA})
	eventually(t, "play call", func() bool { return callsContain(f.recorder.Calls(), "play") })

	f.recorder.lock.Lock()
	f.recorder.source = ""
	f.recorder.lock.Unlock()
	f.recorder.emit(bridge.Event{Variant: bridge.FailedEvent, Source: trackA.AudioURL})
	eventually(t, "playback failure in state", func() bool { return f.player.State().LastError != "" })

	// when
	f.player.Dispatch(ctx, player.Resume{})

	// then
	eventually(t, "second source load", func() bool {
		loads := 0
		for _, call := range f.recorder.Calls() {
			if call == "load /music/airbag.flac" {
				loads++
			}
		}

		return loads == 2
	})
}

func TestFailed_IgnoresReplacedSource(t *testing.T) {
	// given
	f := setup(t, nil)
	ctx := context.Background()
	f.player.Dispatch(ctx, player.PlayTrack{Track: trackA, Queue: []library.Track{trackA, trackB}})
	f.player.Dispatch(ctx, player.PlayTrack{Track: trackB, Queue: []library.Track{trackA, trackB}})
	eventually(t, "next source load", func() bool { return callsContain(f.recorder.Calls(), "load /music/let_down.flac") })

	// when
	f.recorder.emit(bridge.Event{Variant: bridge.FailedEvent, Source: trackA.AudioURL, Err: "loading failed"})
	f.recorder.emit(bridge.Event{Variant: bridge.ProgressEvent, Position: 5})

	// then
	eventually(t, "position update", func() bool { return f.player.State().Position == 5 })

	state := f.player.State()
	if !state.Playing || state.LastError != "" {
		t.Errorf("Expected failure of a replaced track to be ignored, got %+v", state)
	}
}
