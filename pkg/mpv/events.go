package mpv

const (
	// EndFileEvent is emitted by mpv after the file was unloaded.
	EndFileEvent = "end-file"

	// StartFileEvent is emitted by mpv right before the file starts loading.
	StartFileEvent = "start-file"

	propertyChangeEvent = "property-change"
)

const (
	// EOFReason informs that the file has been played to the end.
	EOFReason = "eof"

	// StopReason informs that the playback was stopped by a command, eg. by loading another file.
	StopReason = "stop"

	// ErrorReason informs that the file could not be played.
	ErrorReason = "error"
)

// UnknownEntryID marks a file whose playlist entry id was not reported by mpv.
// mpv numbers playlist entries starting from 1.
const UnknownEntryID = 0

const playlistEntryIDField = "playlist_entry_id"

// EventResponse is an event emitted by mpv, unrelated to any request.
type EventResponse struct {
	Event   string
	Reason  string
	Err     string
	EntryID int
}
