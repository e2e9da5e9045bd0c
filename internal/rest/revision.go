package rest

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/sarpt/mpv-music-api/internal/common"
)

const (
	revisionHeader = "Etag"
)

func checkRevisionIsSame(stateRevision uint64, req *http.Request) bool {
	if len(req.Header[revisionHeader]) != 1 {
		return false
	}

	providedRevision, err := strconv.ParseUint(req.Header[revisionHeader][0], 10, 64)
	return err == nil && providedRevision == stateRevision
}

func setRevisionInResponse(stateRevision uint64, res http.ResponseWriter) {
	res.Header().Add(revisionHeader, fmt.Sprintf("%d", stateRevision))
}

// writeRevisioned responds with 304 when the client already has the revision, otherwise with the payload.
// The payload is prepared only when it needs to be sent.
func writeRevisioned(res http.ResponseWriter, req *http.Request, stateRevision uint64, payload func() interface{}) {
	if checkRevisionIsSame(stateRevision, req) {
		res.WriteHeader(304)
		res.Write(nil)
		return
	}

	setRevisionInResponse(stateRevision, res)
	common.WriteJSON(res, 200, payload())
}
