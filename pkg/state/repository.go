package state

import (
	"github.com/sarpt/mpv-music-api/internal/common"
	"github.com/sarpt/mpv-music-api/pkg/notify"
	"github.com/sarpt/mpv-music-api/pkg/state/pkg/library"
	"github.com/sarpt/mpv-music-api/pkg/state/pkg/notifications"
	"github.com/sarpt/mpv-music-api/pkg/state/pkg/player"
	"github.com/sarpt/mpv-music-api/pkg/state/pkg/playlists"
	"github.com/sarpt/mpv-music-api/pkg/state/pkg/status"
)

type Repository interface {
	Library() *library.Storage
	Notifications() *notifications.Storage
	Player() *player.Storage
	Playlists() *playlists.Storage
	Status() *status.Storage
}

// RepositoryConfig controls construction of the repository.
type RepositoryConfig struct {
	// Notifiers receive every notification in addition to the notifications storage.
	Notifiers []notify.Notifier
}

type inMemoryRepository struct {
	library       *library.Storage
	notifications *notifications.Storage
	player        *player.Storage
	playlists     *playlists.Storage
	status        *status.Storage
}

func (r *inMemoryRepository) Library() *library.Storage {
	return r.library
}

func (r *inMemoryRepository) Notifications() *notifications.Storage {
	return r.notifications
}

func (r *inMemoryRepository) Player() *player.Storage {
	return r.player
}

func (r *inMemoryRepository) Playlists() *playlists.Storage {
	return r.playlists
}

func (r *inMemoryRepository) Status() *status.Storage {
	return r.status
}

// NewRepository constructs storages of the session.
// Player storage needs to be served separately with player.Storage.Serve.
func NewRepository(cfg RepositoryConfig) Repository {
	libraryBroadcaster := createAndInitChangesBroadcaster[library.Change]()
	notificationsBroadcaster := createAndInitChangesBroadcaster[notifications.Change]()
	playerBroadcaster := createAndInitChangesBroadcaster[player.Change]()
	playlistsBroadcaster := createAndInitChangesBroadcaster[playlists.Change]()
	statusBroadcaster := createAndInitChangesBroadcaster[status.Change]()

	notificationsStorage := notifications.NewStorage(notificationsBroadcaster)
	notifier := append(notify.Multi{notificationsStorage}, cfg.Notifiers...)

	return &inMemoryRepository{
		library:       library.NewStorage(libraryBroadcaster),
		notifications: notificationsStorage,
		player:        player.NewStorage(playerBroadcaster),
		playlists:     playlists.NewStorage(playlistsBroadcaster, notifier),
		status:        status.NewStorage(statusBroadcaster),
	}
}

func createAndInitChangesBroadcaster[Change common.Change]() *common.ChangesBroadcaster[Change] {
	broadcaster := common.NewChangesBroadcaster[Change]()
	broadcaster.Broadcast()

	return broadcaster
}
