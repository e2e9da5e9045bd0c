package probe

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
	"github.com/google/uuid"
	"github.com/sarpt/mpv-music-api/pkg/state/pkg/library"
)

const (
	// AlbumArtPath is the path under which album art of a track is served, with track id as the "id" query argument.
	AlbumArtPath = "/rest/tracks/art"
)

var (
	// ErrNotAudioFile informs about file extension not matching any of supported audio formats.
	ErrNotAudioFile = errors.New("file is not an audio file")

	audioExtensions = map[string]bool{
		".aac":  true,
		".flac": true,
		".m4a":  true,
		".mp3":  true,
		".ogg":  true,
		".opus": true,
		".wav":  true,
	}
)

// IsAudioFile checks by extension whether path points to a supported audio file.
func IsAudioFile(path string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(path))]
}

// File reads tags of the audio file into a catalog Track.
// Id of the track is a checksum of the audio data, which does not change when tags are edited.
// Files without recognized tags are still returned, titled by their base name.
// Duration is 0 when it cannot be probed.
func File(path string) (library.Track, error) {
	if !IsAudioFile(path) {
		return library.Track{}, fmt.Errorf("%w: %s", ErrNotAudioFile, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return library.Track{}, err
	}
	defer f.Close()

	track := library.Track{
		AudioURL: path,
	}

	metadata, err := tag.ReadFrom(f)
	if err == nil {
		track.Title = metadata.Title()
		track.Artist = metadata.Artist()
		track.Album = metadata.Album()
		track.Genre = metadata.Genre()
		track.Year = metadata.Year()
	}

	if track.Title == "" {
		track.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	track.ID = trackID(f, path)

	if HasPicture(path, metadata) {
		track.AlbumArt = AlbumArtURL(track.ID)
	}

	if duration, err := Duration(path); err == nil {
		track.Duration = duration
	}

	return track, nil
}

// AlbumArtURL returns the url under which album art of the track with id is served.
func AlbumArtURL(id string) string {
	return fmt.Sprintf("%s?%s", AlbumArtPath, url.Values{"id": []string{id}}.Encode())
}

func trackID(f *os.File, path string) string {
	if _, err := f.Seek(0, io.SeekStart); err == nil {
		if sum, err := tag.Sum(f); err == nil {
			return sum
		}
	}

	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(path)).String()
}
