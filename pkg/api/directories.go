package api

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sarpt/mpv-music-api/internal/common"
	"github.com/sarpt/mpv-music-api/pkg/probe"
	"github.com/sarpt/mpv-music-api/pkg/state/pkg/library"
)

var (
	// ErrPathNotDirectory occurs when provided path is not pointing to a directory.
	ErrPathNotDirectory = errors.New("path does not point to a directory")
)

// AddDirectories adds directories with audio files to the library.
// Directories are added independently, failures are only logged.
func (s *Server) AddDirectories(dirs []common.Directory) {
	for _, dir := range dirs {
		err := s.AddDirectory(dir)
		if err != nil {
			s.errLog.Printf("could not add directory '%s': %s\n", dir.Path, err)
		}
	}
}

// AddDirectory probes audio files inside the directory and its subdirectories, adding them to the library.
// If the directory is already present, it is overwritten along with its properties.
// Watched directory, including its subdirectories, is watched for added and removed files.
func (s *Server) AddDirectory(dir common.Directory) error {
	dir.Path = common.EnsureDirectoryPath(dir.Path)

	info, err := os.Stat(dir.Path)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrPathNotDirectory, dir.Path)
	}

	s.unwatchDirectory(dir.Path)
	if dir.Watched {
		err := s.watchDirectory(dir.Path, dir.Path)
		if err != nil {
			return err
		}
	}

	s.outLog.Printf("reading directory %s\n", dir.Path)
	tracks, skippedFiles := probe.Directory(dir.Path, s.probeCache())
	for _, skipped := range skippedFiles {
		s.errLog.Printf("skipping '%s': %s\n", skipped.Path, skipped.Err)
	}

	s.addTracks(tracks...)
	s.statesRepository.Library().AddDirectory(dir)
	s.outLog.Printf("directory added %s with %d tracks\n", dir.Path, len(tracks))

	return nil
}

// TakeDirectory removes the directory from the library, along with all tracks sourced from it.
func (s *Server) TakeDirectory(path string) (common.Directory, error) {
	dir, err := s.statesRepository.Library().TakeDirectory(path)
	if err != nil {
		return dir, fmt.Errorf("could not take directory '%s': %w", path, err)
	}

	s.unwatchDirectory(dir.Path)
	s.outLog.Printf("deleted directory '%s'\n", dir.Path)

	return dir, nil
}

// addTracks adds tracks to the library. Tracks which audio files changed their content replace previous tracks.
func (s *Server) addTracks(tracks ...library.Track) {
	lib := s.statesRepository.Library()
	for _, track := range tracks {
		if previous, ok := lib.ByAudioURL(track.AudioURL); ok && previous.ID != track.ID {
			lib.Take(track.AudioURL)
		}
	}

	lib.Add(tracks...)
}

// watchDirectory adds path and its subdirectories to the watcher, as a part of the root directory.
func (s *Server) watchDirectory(root string, path string) error {
	var watched []string
	walkErr := filepath.WalkDir(path, func(entryPath string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !entry.IsDir() {
			return nil
		}

		err = s.fsWatcher.Add(entryPath)
		if err != nil {
			return fmt.Errorf("could not watch directory '%s': %w", entryPath, err)
		}

		watched = append(watched, entryPath)
		return nil
	})

	s.watchedDirsLock.Lock()
	s.watchedDirs[root] = append(s.watchedDirs[root], watched...)
	s.watchedDirsLock.Unlock()

	return walkErr
}

func (s *Server) unwatchDirectory(root string) {
	s.watchedDirsLock.Lock()
	watched := s.watchedDirs[root]
	delete(s.watchedDirs, root)
	s.watchedDirsLock.Unlock()

	for _, path := range watched {
		// Removed directories are not watched anymore.
		s.fsWatcher.Remove(path)
	}
}

// watchedRoot returns watched root directory containing the path.
func (s *Server) watchedRoot(path string) (string, bool) {
	s.watchedDirsLock.Lock()
	defer s.watchedDirsLock.Unlock()

	for root := range s.watchedDirs {
		if common.IsInDirectory(path, root) {
			return root, true
		}
	}

	return "", false
}
