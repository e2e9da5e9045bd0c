package mpv

import (
	"bytes"
	"encoding/json"
	"net"
)

const (
	bufSize = 512
)

type responsesIterator struct {
	conn        net.Conn
	accumulator []byte
}

// NewResponsesIterator creates an iterator which returns ResponsePayload processed from
// provided connection.
func NewResponsesIterator(conn net.Conn) *responsesIterator {
	return &responsesIterator{
		conn: conn,
	}
}

// Next returns ResponsePayload fetched from a mpv socket connection.
// It blocks until a valid, newline-separated JSON is provided through the connection.
// Newline-separated chunks not forming a valid JSON are aggregated until they do.
// When a previous read fetched more than one payload, Next does not read from the socket.
func (ri *responsesIterator) Next() (ResponsePayload, error) {
	var payload []byte

	for {
		chunk, err := ri.getNonEmptyChunkFromAccumulator()
		if err != nil {
			return ResponsePayload{}, err
		}

		payload = append(payload, chunk...)
		if json.Valid(payload) {
			break
		}
	}

	return getResponsePayload(payload)
}

func (ri *responsesIterator) fetchIntoAccumulator() (int, error) {
	buf := make([]byte, bufSize)

	nRead, err := ri.conn.Read(buf)
	if nRead > 0 {
		ri.accumulator = append(ri.accumulator, buf[:nRead]...)
	}

	return nRead, err
}

// getNonEmptyChunkFromAccumulator reads accumulator until newline-separated non-empty chunk can be returned.
// When accumulator does not contain any newlines, socket is read until it does.
func (ri *responsesIterator) getNonEmptyChunkFromAccumulator() ([]byte, error) {
	searchFrom := 0

	for {
		newlineIdx := bytes.Index(ri.accumulator[searchFrom:], newline)
		if newlineIdx != -1 {
			chunk := ri.takeFromAccumulator(searchFrom + newlineIdx)
			searchFrom = 0
			if len(chunk) == 0 {
				continue // consecutive newlines
			}

			return chunk, nil
		}

		searchFrom = len(ri.accumulator)
		_, err := ri.fetchIntoAccumulator()
		if err != nil {
			return []byte{}, err
		}
	}
}

// takeFromAccumulator returns bytes preceding newlineIdx and discards them from accumulator, along with the newline.
func (ri *responsesIterator) takeFromAccumulator(newlineIdx int) []byte {
	result := append([]byte(nil), ri.accumulator[:newlineIdx]...)
	ri.accumulator = append([]byte(nil), ri.accumulator[newlineIdx+1:]...)

	return result
}
