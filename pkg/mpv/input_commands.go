package mpv

const (
	getPropertyCommand       = "get_property"
	loadfileCommand          = "loadfile"
	observePropertyCommand   = "observe_property"
	seekCommand              = "seek"
	setPropertyCommand       = "set_property"
	stopCommand              = "stop"
	unobservePropertyCommand = "unobserve_property"
)
