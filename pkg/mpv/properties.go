package mpv

const (
	// PathProperty is used to inform about path to file currently being played by mpv.
	PathProperty = "path"

	// PauseProperty is used for pausing or unpausing playback.
	PauseProperty = "pause"

	// PlaybackTimeProperty is used for reading current time of playback in seconds.
	PlaybackTimeProperty = "playback-time"

	// VolumeProperty is used for reading and setting the software volume, in range of 0 to 100.
	VolumeProperty = "volume"
)

var (
	// ObservableProperties specifies collection of properties that can be observed by 'property-change' event.
	ObservableProperties = []string{
		PathProperty,
		PauseProperty,
		PlaybackTimeProperty,
		VolumeProperty,
	}
)
