package api

import (
	"context"
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/sarpt/mpv-music-api/pkg/probe"
)

func (s *Server) handleFsEvent(event fsnotify.Event) error {
	if shouldRemoveMediaPath(event.Op) {
		removed := s.statesRepository.Library().Take(event.Name)
		if len(removed) != 0 {
			s.outLog.Printf("removed %d tracks from '%s'\n", len(removed), event.Name)
		}

		return nil
	}

	if !shouldProbeMediaPath(event.Op) {
		return nil
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		return err
	}

	if info.IsDir() {
		return s.handleCreatedDirectory(event.Name)
	}

	if !probe.IsAudioFile(event.Name) {
		return nil
	}

	track, err := probe.CachedFile(event.Name, s.probeCache())
	if err != nil {
		return err
	}

	s.outLog.Printf("adding track '%s'\n", event.Name)
	s.addTracks(track)

	return nil
}

func (s *Server) handleCreatedDirectory(path string) error {
	root, ok := s.watchedRoot(path)
	if !ok {
		return nil
	}

	err := s.watchDirectory(root, path)
	if err != nil {
		return err
	}

	tracks, _ := probe.Directory(path, s.probeCache())
	s.addTracks(tracks...)

	return nil
}

func (s *Server) watchForFsChanges(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-s.fsWatcher.Events:
			if !ok {
				return
			}

			err := s.handleFsEvent(event)
			if err != nil {
				s.errLog.Printf("could not handle event '%s' due to an error: %s\n", event, err)
			}
		case err, ok := <-s.fsWatcher.Errors:
			if !ok {
				return
			}

			s.errLog.Printf("fs watcher returned an error: %s\n", err)
		}
	}
}

func shouldProbeMediaPath(op fsnotify.Op) bool {
	return op&(fsnotify.Create|fsnotify.Write) != 0
}

func shouldRemoveMediaPath(op fsnotify.Op) bool {
	return op&(fsnotify.Rename|fsnotify.Remove) != 0
}
