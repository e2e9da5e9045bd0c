package sse

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/sarpt/mpv-music-api/internal/common"
)

var (
	sseEventEnd = []byte("\n\n")

	errResponseJSONCreationFailed = errors.New("could not create JSON for response")
	errClientWritingFailed        = errors.New("could not write to the client")
	errConvertToFlusherFailed     = errors.New("could not instantiate http sse flusher")
	errNoObserver                 = errors.New("no observer found for provided address")
)

const (
	replaySseStateArg = "replay"
	sseChannelArg     = "channel"
)

func (s *Server) createSseRegisterHandler() http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		var requestedChannels []channel
		for _, reqChannel := range req.URL.Query()[sseChannelArg] {
			channel, ok := s.channels[common.ChannelVariant(reqChannel)]
			if !ok {
				continue
			}

			requestedChannels = append(requestedChannels, channel)
		}

		if len(requestedChannels) == 0 {
			res.WriteHeader(400)
			res.Write([]byte(fmt.Sprintf("none of the requested channels %v exist\n", req.URL.Query()[sseChannelArg])))

			return
		}

		sseResWriter, err := sseResponseWriter(res)
		if err != nil {
			res.WriteHeader(400)
			return
		}

		wg := &sync.WaitGroup{}
		for _, channel := range requestedChannels {
			wg.Add(1)
			go s.observeChannelVariant(sseResWriter, req, channel, wg)
		}

		wg.Wait()
		s.outLog.Printf("all sse channels closed for %s", req.RemoteAddr)
	}
}

func (s *Server) observeChannelVariant(res ResponseWriter, req *http.Request, sseChannel channel, wg *sync.WaitGroup) {
	defer wg.Done()

	remoteAddr := req.RemoteAddr
	sseChannel.AddObserver(remoteAddr)
	s.statesRepository.Status().AddObservingAddress(remoteAddr, sseChannel.Variant())
	s.outLog.Printf("added %s observer with addr %s\n", sseChannel.Variant(), remoteAddr)

	defer func() {
		sseChannel.RemoveObserver(remoteAddr)
		s.statesRepository.Status().RemoveObservingAddress(remoteAddr, sseChannel.Variant())
		s.outLog.Printf("removing %s observer with addr %s\n", sseChannel.Variant(), remoteAddr)
	}()

	if replaySseState(req) {
		err := sseChannel.Replay(res)
		if err != nil {
			s.errLog.Printf("could not replay data on sse: %s\n", err)
		}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)

		select {
		case <-req.Context().Done():
		case <-s.ctx.Done():
		}
	}()

	err := sseChannel.ServeObserver(remoteAddr, res, done)
	if err != nil {
		s.errLog.Printf("sse observation on channel %s failed for %s: %s\n", sseChannel.Variant(), remoteAddr, err)
	}
}

func sseResponseWriter(res http.ResponseWriter) (ResponseWriter, error) {
	flusher, ok := res.(http.Flusher)
	if !ok {
		return ResponseWriter{}, errConvertToFlusherFailed
	}

	res.Header().Set("Connection", "keep-alive")
	res.Header().Set("Content-Type", "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Access-Control-Allow-Origin", "*")
	res.WriteHeader(200)
	flusher.Flush()

	sseFlusher := ResponseWriter{
		res:     res,
		flusher: flusher,
		lock:    &sync.Mutex{},
	}
	return sseFlusher, nil
}

func replaySseState(req *http.Request) bool {
	replay, ok := req.URL.Query()[replaySseStateArg]

	return ok && len(replay) > 0 && replay[0] == "true"
}

func formatSseEvent(channel common.ChannelVariant, eventName string, data []byte) []byte {
	var out []byte

	channelEvent := fmt.Sprintf("%s.%s", channel, eventName)
	out = append(out, []byte(fmt.Sprintf("event:%s\n", channelEvent))...)

	dataEntries := bytes.Split(data, []byte("\n"))
	for _, dataEntry := range dataEntries {
		out = append(out, []byte(fmt.Sprintf("data:%s\n", dataEntry))...)
	}

	out = append(out, sseEventEnd...)
	return out
}
