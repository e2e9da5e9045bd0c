package bridge

// EventVariant specifies what happened on the audio device.
type EventVariant string

const (
	// ProgressEvent informs about change of the playback position.
	ProgressEvent EventVariant = "progress"

	// EndedEvent informs about the loaded source being played to the end.
	EndedEvent EventVariant = "ended"

	// FailedEvent informs that the loaded source could not be played after it was accepted by Load.
	FailedEvent EventVariant = "failed"
)

// Event is emitted by the Device.
// Source is set for EndedEvent and FailedEvent, Err only for FailedEvent.
type Event struct {
	Variant  EventVariant
	Position float64
	Source   string
	Err      string
}

// Device plays a single audio source at a time.
type Device interface {
	Load(source string) error
	Play() error
	Pause() error
	Position() (float64, error)
	Seek(position float64) error
	Volume() (float64, error)
	SetVolume(volume float64) error
	// Source returns currently loaded source, or an empty string when nothing is loaded
	// or the source has ended or failed.
	Source() string
	// Subscribe starts sending device events on the channel until the returned function is called.
	Subscribe(events chan<- Event) (func(), error)
}
