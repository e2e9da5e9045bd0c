package rest

import (
	"net/http"
	"strconv"

	"github.com/sarpt/mpv-music-api/pkg/state/pkg/library"
)

const (
	idArg = "id"
)

type trackResponse struct {
	library.Track
	FormattedDuration string `json:"FormattedDuration"`
}

type getTracksResponse struct {
	Tracks []trackResponse `json:"tracks"`
}

func (s *Server) getTracksHandler(res http.ResponseWriter, req *http.Request) {
	query := req.URL.Query()
	fuzzy, _ := strconv.ParseBool(query.Get(fuzzyArg))

	lib := s.statesRepository.Library()
	writeRevisioned(res, req, lib.Revision(), func() interface{} {
		tracks := searchTracks(lib.All(), query.Get(queryArg), fuzzy)

		response := getTracksResponse{
			Tracks: make([]trackResponse, 0, len(tracks)),
		}
		for _, track := range tracks {
			response.Tracks = append(response.Tracks, trackResponse{
				Track:             track,
				FormattedDuration: library.FormatDuration(track.Duration),
			})
		}

		return response
	})
}

func (s *Server) getAlbumArtHandler(res http.ResponseWriter, req *http.Request) {
	picture, err := s.apiServer.AlbumArt(req.URL.Query().Get(idArg))
	if err != nil {
		writeError(res, err)
		return
	}

	res.Header().Set("Content-Type", picture.MIMEType)
	res.WriteHeader(200)
	res.Write(picture.Data)
}

func searchTracks(tracks []library.Track, query string, fuzzy bool) []library.Track {
	if fuzzy {
		return library.FuzzySearch(tracks, query)
	}

	return library.Search(tracks, query)
}
