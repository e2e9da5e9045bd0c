package api

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sarpt/mpv-music-api/pkg/probe"
	"github.com/sarpt/mpv-music-api/pkg/state/pkg/library"
	"github.com/sarpt/mpv-music-api/pkg/state/pkg/playlists"
	"github.com/ushis/m3u"
)

const (
	m3uExtension = ".m3u"
)

var (
	// ErrInvalidM3U occurs when imported playlist cannot be parsed as M3U.
	ErrInvalidM3U = errors.New("playlist is not a valid m3u file")
)

// ExportPlaylist writes the playlist with uuid as M3U.
func (s *Server) ExportPlaylist(uuid string, w io.Writer) error {
	playlist, err := s.statesRepository.Playlists().ByUUID(uuid)
	if err != nil {
		return err
	}

	tracks := playlist.Tracks()
	list := make(m3u.Playlist, 0, len(tracks))
	for _, track := range tracks {
		list = append(list, m3u.Track{
			Path:  track.AudioURL,
			Title: m3uTitle(track),
			Time:  int64(track.Duration),
		})
	}

	_, err = list.WriteTo(w)
	return err
}

// ImportPlaylist creates a playlist with tracks listed in M3U.
// Entries are resolved to library tracks by path. Entries outside the library are probed, or created from the M3U entry when probing fails.
func (s *Server) ImportPlaylist(name string, r io.Reader) (*playlists.Playlist, error) {
	list, err := m3u.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidM3U, err)
	}

	tracks := make([]library.Track, 0, len(list))
	for _, entry := range list {
		tracks = append(tracks, s.resolveM3UTrack(entry))
	}

	return s.statesRepository.Playlists().Import(name, tracks)
}

// ImportPlaylistFiles imports every M3U file inside the directory, named after the file.
func (s *Server) ImportPlaylistFiles(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		s.errLog.Printf("could not read playlists directory '%s': %s\n", dir, err)

		return
	}

	for _, entry := range entries {
		if entry.IsDir() || strings.ToLower(filepath.Ext(entry.Name())) != m3uExtension {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		err := s.importPlaylistFile(path)
		if err != nil {
			s.errLog.Printf("could not import playlist '%s': %s\n", path, err)
		}
	}
}

func (s *Server) importPlaylistFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	playlist, err := s.ImportPlaylist(name, f)
	if err != nil {
		return err
	}

	s.outLog.Printf("imported playlist '%s' with %d tracks\n", playlist.Name(), len(playlist.Tracks()))
	return nil
}

func (s *Server) resolveM3UTrack(entry m3u.Track) library.Track {
	if track, ok := s.statesRepository.Library().ByAudioURL(entry.Path); ok {
		return track
	}

	if track, err := probe.CachedFile(entry.Path, s.probeCache()); err == nil {
		return track
	}

	title := entry.Title
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(entry.Path), filepath.Ext(entry.Path))
	}

	return library.Track{
		ID:       uuid.NewSHA1(uuid.NameSpaceURL, []byte(entry.Path)).String(),
		Title:    title,
		Duration: int(entry.Time),
		AudioURL: entry.Path,
	}
}

func m3uTitle(track library.Track) string {
	if track.Artist == "" {
		return track.Title
	}

	return fmt.Sprintf("%s - %s", track.Artist, track.Title)
}
