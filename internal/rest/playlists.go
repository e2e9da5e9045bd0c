package rest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sarpt/mpv-music-api/internal/common"
	"github.com/sarpt/mpv-music-api/pkg/state/pkg/playlists"
)

const (
	m3uArg  = "m3u"
	nameArg = "name"
	uuidArg = "uuid"

	m3uContentType = "audio/x-mpegurl"
)

type getPlaylistsResponse struct {
	Playlists []*playlists.Playlist `json:"playlists"`
}

type deletePlaylistTracksResponse struct {
	Removed int `json:"removed"`
}

func (s *Server) getPlaylistsHandler(res http.ResponseWriter, req *http.Request) {
	playlistsStorage := s.statesRepository.Playlists()
	writeRevisioned(res, req, playlistsStorage.Revision(), func() interface{} {
		return getPlaylistsResponse{
			Playlists: playlistsStorage.All(),
		}
	})
}

func (s *Server) nameHandler(req *http.Request) (common.Payload, error) {
	if formHasArgument(req, m3uArg) {
		return nil, nil
	}

	name := req.PostFormValue(nameArg)
	s.outLog.Printf("creating playlist '%s' due to request from %s\n", name, req.RemoteAddr)

	return s.statesRepository.Playlists().Create(name)
}

// m3uHandler imports the playlist from either an uploaded file or the form field, named after the name argument.
func (s *Server) m3uHandler(req *http.Request) (common.Payload, error) {
	var content io.Reader
	file, _, err := req.FormFile(m3uArg)
	if err == nil {
		defer file.Close()
		content = file
	} else if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		content = strings.NewReader(req.PostFormValue(m3uArg))
	} else {
		return nil, err
	}

	name := req.PostFormValue(nameArg)
	s.outLog.Printf("importing playlist '%s' due to request from %s\n", name, req.RemoteAddr)

	return s.apiServer.ImportPlaylist(name, content)
}

func (s *Server) deletePlaylistsHandler(res http.ResponseWriter, req *http.Request) {
	uuid := req.URL.Query().Get(uuidArg)
	s.outLog.Printf("deleting playlist '%s' due to request from %s\n", uuid, req.RemoteAddr)

	err := s.statesRepository.Playlists().Delete(uuid)
	if err != nil {
		writeError(res, err)
		return
	}

	common.WriteJSON(res, 200, common.HandlerErrors{})
}

func (s *Server) playlistTrackIDHandler(req *http.Request) (common.Payload, error) {
	uuid := req.PostFormValue(uuidArg)
	track, err := s.statesRepository.Library().ByID(req.PostFormValue(trackIDArg))
	if err != nil {
		return nil, err
	}

	s.outLog.Printf("adding track '%s' to playlist '%s' due to request from %s\n", track.ID, uuid, req.RemoteAddr)
	err = s.statesRepository.Playlists().AddTrack(uuid, track)
	if err != nil {
		return nil, err
	}

	return track, nil
}

func (s *Server) deletePlaylistTracksHandler(res http.ResponseWriter, req *http.Request) {
	query := req.URL.Query()
	uuid := query.Get(uuidArg)
	trackID := query.Get(trackIDArg)
	s.outLog.Printf("removing track '%s' from playlist '%s' due to request from %s\n", trackID, uuid, req.RemoteAddr)

	removed, err := s.statesRepository.Playlists().RemoveTrack(uuid, trackID)
	if err != nil {
		writeError(res, err)
		return
	}

	common.WriteJSON(res, 200, deletePlaylistTracksResponse{
		Removed: removed,
	})
}

func (s *Server) getPlaylistM3UHandler(res http.ResponseWriter, req *http.Request) {
	uuid := req.URL.Query().Get(uuidArg)

	out := &bytes.Buffer{}
	err := s.apiServer.ExportPlaylist(uuid, out)
	if err != nil {
		writeError(res, err)
		return
	}

	res.Header().Set("Content-Type", m3uContentType)
	res.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.m3u\"", uuid))
	res.WriteHeader(200)
	res.Write(out.Bytes())
}

func (s *Server) postPlaylistsFormArgumentsHandlers() map[string]common.FormArgument {
	return map[string]common.FormArgument{
		m3uArg: {
			Handle: s.m3uHandler,
		},
		nameArg: {
			Handle: s.nameHandler,
		},
	}
}

func (s *Server) putPlaylistTracksFormArgumentsHandlers() map[string]common.FormArgument {
	return map[string]common.FormArgument{
		trackIDArg: {
			Handle:   s.playlistTrackIDHandler,
			Validate: validateNotEmpty(trackIDArg),
		},
		uuidArg: {
			Validate: validateNotEmpty(uuidArg),
		},
	}
}

func formHasArgument(req *http.Request, arg string) bool {
	if _, ok := req.PostForm[arg]; ok {
		return true
	}

	if req.MultipartForm == nil {
		return false
	}

	_, ok := req.MultipartForm.File[arg]
	return ok
}
