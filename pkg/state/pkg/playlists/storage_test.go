package playlists_test

import (
	"errors"
	"testing"

	"github.com/go-test/deep"
	"github.com/golang/mock/gomock"
	"github.com/sarpt/mpv-music-api/internal/common"
	"github.com/sarpt/mpv-music-api/internal/mocks"
	"github.com/sarpt/mpv-music-api/pkg/state/pkg/library"
	"github.com/sarpt/mpv-music-api/pkg/state/pkg/playlists"
)

var (
	money     = library.Track{ID: "money", Title: "Money", Artist: "Pink Floyd"}
	timeTrack = library.Track{ID: "time", Title: "Time", Artist: "Pink Floyd"}
)

func newStorage(notifier *mocks.MockNotifier) *playlists.Storage {
	broadcaster := common.NewChangesBroadcaster[playlists.Change]()
	broadcaster.Broadcast()

	return playlists.NewStorage(broadcaster, notifier)
}

func TestCreate_EmptyNameIsRejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// given
	notifier := mocks.NewMockNotifier(ctrl)
	notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Times(0)
	uut := newStorage(notifier)

	for _, name := range []string{"", "   ", "\t\n"} {
		// when
		playlist, err := uut.Create(name)

		// then
		if !errors.Is(err, playlists.ErrEmptyPlaylistName) {
			t.Errorf("Expected ErrEmptyPlaylistName for %q, got %v", name, err)
		}

		if playlist != nil {
			t.Errorf("Expected no playlist to be returned for %q", name)
		}
	}

	if len(uut.All()) != 0 {
		t.Errorf("Expected registry to remain empty, got %d playlists", len(uut.All()))
	}
}

func TestCreate_AddsEmptyPlaylistWithUniqueUUID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// given
	notifier := mocks.NewMockNotifier(ctrl)
	notifier.EXPECT().Notify("Playlist created", "\"Chill\" has been created successfully.").Times(1)
	notifier.EXPECT().Notify("Playlist created", "\"Road Trip\" has been created successfully.").Times(1)
	uut := newStorage(notifier)

	existing, err := uut.Create("Chill")
	if err != nil {
		t.Fatalf("Unexpected error when creating playlist: %s", err)
	}

	// when
	playlist, err := uut.Create("  Road Trip ")

	// then
	if err != nil {
		t.Fatalf("Unexpected error when creating playlist: %s", err)
	}

	if playlist.Name() != "Road Trip" {
		t.Errorf("Expected name %q, got %q", "Road Trip", playlist.Name())
	}

	if len(playlist.Tracks()) != 0 {
		t.Errorf("Expected new playlist to be empty")
	}

	if playlist.UUID() == "" || playlist.UUID() == existing.UUID() {
		t.Errorf("Expected unique UUID, got %q", playlist.UUID())
	}

	if playlist.CreatedAt().IsZero() {
		t.Errorf("Expected creation time to be set")
	}

	all := uut.All()
	if len(all) != 2 || all[0] != existing || all[1] != playlist {
		t.Errorf("Expected playlists in order of creation")
	}
}

func TestAddTrackRemoveTrack_RoundTrip(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// given
	notifier := mocks.NewMockNotifier(ctrl)
	notifier.EXPECT().Notify("Playlist created", gomock.Any()).AnyTimes()
	notifier.EXPECT().Notify("Track added", "\"Money\" has been added to the playlist.").Times(1)
	notifier.EXPECT().Notify("Track added", "\"Time\" has been added to the playlist.").Times(2)
	notifier.EXPECT().Notify("Track removed", "Track has been removed from the playlist.").Times(1)
	uut := newStorage(notifier)

	playlist, _ := uut.Create("Dark Side")
	uut.AddTrack(playlist.UUID(), timeTrack)
	uut.AddTrack(playlist.UUID(), timeTrack)
	before := playlist.Tracks()

	// when
	err := uut.AddTrack(playlist.UUID(), money)
	if err != nil {
		t.Fatalf("Unexpected error when adding track: %s", err)
	}

	removed, err := uut.RemoveTrack(playlist.UUID(), money.ID)

	// then
	if err != nil {
		t.Fatalf("Unexpected error when removing track: %s", err)
	}

	if removed != 1 {
		t.Errorf("Expected 1 removed track, got %d", removed)
	}

	if diff := deep.Equal(playlist.Tracks(), before); diff != nil {
		t.Error(diff)
	}
}

func TestRemoveTrack_RemovesAllOccurrences(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// given
	notifier := mocks.NewMockNotifier(ctrl)
	notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).AnyTimes()
	uut := newStorage(notifier)

	playlist, _ := uut.Import("Mixed", []library.Track{money, timeTrack, money})

	// when
	removed, err := uut.RemoveTrack(playlist.UUID(), money.ID)

	// then
	if err != nil {
		t.Fatalf("Unexpected error when removing track: %s", err)
	}

	if removed != 2 {
		t.Errorf("Expected 2 removed tracks, got %d", removed)
	}

	if diff := deep.Equal(playlist.Tracks(), []library.Track{timeTrack}); diff != nil {
		t.Error(diff)
	}
}

func TestUnknownPlaylist(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// given
	notifier := mocks.NewMockNotifier(ctrl)
	notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Times(0)
	uut := newStorage(notifier)

	tests := map[string]func() error{
		"AddTrack": func() error { return uut.AddTrack("missing", money) },
		"RemoveTrack": func() error {
			_, err := uut.RemoveTrack("missing", money.ID)
			return err
		},
		"Delete": func() error { return uut.Delete("missing") },
	}

	for name, operation := range tests {
		t.Run(name, func(t *testing.T) {
			// when
			err := operation()

			// then
			if !errors.Is(err, playlists.ErrPlaylistWithUUIDDoesNotExist) {
				t.Errorf("Expected ErrPlaylistWithUUIDDoesNotExist, got %v", err)
			}
		})
	}
}

func TestDelete_RemovesPlaylist(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// given
	notifier := mocks.NewMockNotifier(ctrl)
	notifier.EXPECT().Notify("Playlist created", gomock.Any()).Times(2)
	notifier.EXPECT().Notify("Playlist deleted", "Playlist has been deleted successfully.").Times(1)
	uut := newStorage(notifier)

	first, _ := uut.Create("First")
	second, _ := uut.Create("Second")

	// when
	err := uut.Delete(first.UUID())

	// then
	if err != nil {
		t.Fatalf("Unexpected error when deleting playlist: %s", err)
	}

	if _, err := uut.ByUUID(first.UUID()); !errors.Is(err, playlists.ErrPlaylistWithUUIDDoesNotExist) {
		t.Errorf("Expected deleted playlist to be missing")
	}

	all := uut.All()
	if len(all) != 1 || all[0] != second {
		t.Errorf("Expected only the second playlist to remain")
	}

	if uut.Revision() != 3 {
		t.Errorf("Expected revision 3, got %d", uut.Revision())
	}
}
