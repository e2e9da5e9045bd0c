package status_test

import (
	"testing"

	"github.com/go-test/deep"
	"github.com/sarpt/mpv-music-api/internal/common"
	"github.com/sarpt/mpv-music-api/pkg/state/pkg/status"
)

func newStorage() *status.Storage {
	broadcaster := common.NewChangesBroadcaster[status.Change]()
	broadcaster.Broadcast()

	return status.NewStorage(broadcaster)
}

func TestObservingAddresses_AddAndRemove(t *testing.T) {
	// given
	uut := newStorage()
	uut.AddObservingAddress("127.0.0.1:5000", "player")
	uut.AddObservingAddress("127.0.0.1:5000", "playlists")
	uut.AddObservingAddress("127.0.0.1:6000", "status")

	// when
	uut.RemoveObservingAddress("127.0.0.1:5000", "player")
	uut.RemoveObservingAddress("127.0.0.1:6000", "status")

	// then
	expected := map[string][]common.ChannelVariant{
		"127.0.0.1:5000": {"playlists"},
	}
	if diff := deep.Equal(uut.ObservingAddresses(), expected); diff != nil {
		t.Error(diff)
	}
}

func TestSetDeviceConnected_BroadcastsOnlyChanges(t *testing.T) {
	// given
	uut := newStorage()
	changes := make(chan status.Change, 2)
	unsubscribe := uut.Subscribe(func(change status.Change) {
		changes <- change
	})
	defer unsubscribe()

	// when
	uut.SetDeviceConnected(false)
	uut.SetDeviceConnected(true)

	// then
	change := <-changes
	if change.Variant() != status.DeviceConnectionChanged {
		t.Errorf("Expected change variant %s, got %s", status.DeviceConnectionChanged, change.Variant())
	}

	if len(changes) != 0 {
		t.Errorf("Expected a single change, got %d more", len(changes))
	}

	if !uut.DeviceConnected() {
		t.Errorf("Expected device to be connected")
	}
}
