package api

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"sync"
	"time"

	"github.com/sarpt/mpv-music-api/pkg/state/pkg/library"
)

const (
	tracksCacheName = "tracks"
)

// tracksCache keeps probed tracks between server runs, so unchanged files are not probed again.
type tracksCache struct {
	Tracks map[string]cachedTrack `json:"Tracks"`
	dir    string
	lock   *sync.RWMutex
}

type cachedTrack struct {
	Mtime time.Time     `json:"Mtime"`
	Track library.Track `json:"Track"`
}

// loadTracksCache reads the cache from the directory.
// The returned cache is usable, although empty, even when reading fails.
func loadTracksCache(cacheDir string) (*tracksCache, error) {
	cache := &tracksCache{
		Tracks: map[string]cachedTrack{},
		dir:    cacheDir,
		lock:   &sync.RWMutex{},
	}

	tracksCacheJson, err := os.ReadFile(path.Join(cacheDir, tracksCacheName))
	if err != nil {
		return cache, fmt.Errorf("could not open cache file: %w", err)
	}

	err = json.Unmarshal(tracksCacheJson, cache)
	if err != nil {
		cache.Tracks = map[string]cachedTrack{}
		return cache, fmt.Errorf("parsing cache entry failed: %w", err)
	}

	if cache.Tracks == nil {
		cache.Tracks = map[string]cachedTrack{}
	}

	return cache, nil
}

// Track returns the cached track when the file was not modified after it was cached.
func (c *tracksCache) Track(path string, modTime time.Time) (library.Track, bool) {
	c.lock.RLock()
	defer c.lock.RUnlock()

	entry, ok := c.Tracks[path]
	if !ok || modTime.After(entry.Mtime) {
		return library.Track{}, false
	}

	return entry.Track, true
}

func (c *tracksCache) Put(path string, modTime time.Time, track library.Track) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.Tracks[path] = cachedTrack{
		Mtime: modTime,
		Track: track,
	}
}

func (c *tracksCache) save() error {
	err := os.MkdirAll(c.dir, 0750)
	if err != nil {
		return fmt.Errorf("could not create cache dir at path \"%s\": %w", c.dir, err)
	}

	c.lock.RLock()
	tracksCacheJson, err := json.Marshal(c)
	c.lock.RUnlock()
	if err != nil {
		return fmt.Errorf("could not marshall cache as a JSON: %w", err)
	}

	tracksCachePath := path.Join(c.dir, tracksCacheName)
	err = os.WriteFile(tracksCachePath, tracksCacheJson, 0640)
	if err != nil {
		return fmt.Errorf("could not write tracks cache contents to a file \"%s\": %w", tracksCachePath, err)
	}

	return nil
}
