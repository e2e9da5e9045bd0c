package probe

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sarpt/mpv-music-api/pkg/state/pkg/library"
)

// SkippedFile holds information about the path of file that is skipped from probing results and the reason for why it's skipped
type SkippedFile struct {
	Path string
	Err  error
}

// Directory walks the directory and probes every audio file found inside, including subdirectories.
// Files not modified since they were put in the cache are not probed again.
func Directory(path string, cache Cache) ([]library.Track, []SkippedFile) {
	var tracks []library.Track
	var skippedFiles []SkippedFile

	filepath.Walk(path, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			skippedFiles = append(skippedFiles, SkippedFile{
				Path: path,
				Err:  err,
			})
			return nil
		}

		if info.IsDir() || !IsAudioFile(path) {
			return nil
		}

		track, err := CachedFile(path, cache)
		if err != nil {
			skippedFiles = append(skippedFiles, SkippedFile{
				Path: path,
				Err:  fmt.Errorf("file probing unsuccessful: %w", err),
			})
			return nil
		}

		tracks = append(tracks, track)
		return nil
	})

	return tracks, skippedFiles
}
