package rest

import (
	"net/http"
	"strconv"

	"github.com/sarpt/mpv-music-api/internal/common"
)

const (
	pathArg    = "path"
	watchedArg = "watched"
)

type getDirectoriesResponse struct {
	Directories []common.Directory `json:"directories"`
}

func (s *Server) getDirectoriesHandler(res http.ResponseWriter, req *http.Request) {
	lib := s.statesRepository.Library()
	writeRevisioned(res, req, lib.Revision(), func() interface{} {
		return getDirectoriesResponse{
			Directories: lib.Directories(),
		}
	})
}

func (s *Server) deleteDirectoriesHandler(res http.ResponseWriter, req *http.Request) {
	dirPath := req.URL.Query().Get(pathArg)
	s.outLog.Printf("removing directory %s due to request from %s\n", dirPath, req.RemoteAddr)

	dir, err := s.apiServer.TakeDirectory(dirPath)
	if err != nil {
		writeError(res, err)
		return
	}

	common.WriteJSON(res, 200, dir)
}

func (s *Server) directoriesPathHandler(req *http.Request) (common.Payload, error) {
	dirPath := req.PostFormValue(pathArg)
	watched, _ := strconv.ParseBool(req.PostFormValue(watchedArg))
	s.outLog.Printf("adding directory %s due to request from %s\n", dirPath, req.RemoteAddr)

	s.apiServer.AddDirectories([]common.Directory{
		{
			Path:    dirPath,
			Watched: watched,
		},
	})

	return nil, nil
}

func (s *Server) putDirectoriesFormArgumentsHandlers() map[string]common.FormArgument {
	return map[string]common.FormArgument{
		pathArg: {
			Handle:   s.directoriesPathHandler,
			Validate: validateNotEmpty(pathArg),
		},
		watchedArg: {
			Validate: validateBool(watchedArg),
		},
	}
}
