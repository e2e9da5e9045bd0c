package probe

import (
	"os"
	"time"

	"github.com/sarpt/mpv-music-api/pkg/state/pkg/library"
)

// Cache keeps previously probed tracks, valid as long as the file was not modified since.
type Cache interface {
	Track(path string, modTime time.Time) (library.Track, bool)
	Put(path string, modTime time.Time, track library.Track)
}

// CachedFile returns the cached track when the file was not modified since it was cached, probing the file otherwise.
// Nil cache always probes the file.
func CachedFile(path string, cache Cache) (library.Track, error) {
	if cache == nil {
		return File(path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return library.Track{}, err
	}

	if track, ok := cache.Track(path, info.ModTime()); ok {
		return track, nil
	}

	track, err := File(path)
	if err != nil {
		return track, err
	}

	cache.Put(path, info.ModTime(), track)
	return track, nil
}
