package api

import (
	"github.com/sarpt/mpv-music-api/pkg/probe"
)

// AlbumArt returns album art of the library track with id.
func (s *Server) AlbumArt(trackID string) (probe.Picture, error) {
	track, err := s.statesRepository.Library().ByID(trackID)
	if err != nil {
		return probe.Picture{}, err
	}

	return probe.AlbumArt(track.AudioURL)
}
