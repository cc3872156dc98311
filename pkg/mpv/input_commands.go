package mpv

const (
	getPropertyCommand     = "get_property"
	loadfileCommand        = "loadfile"
	observePropertyCommand = "observe_property_string"
	setPropertyCommand     = "set_property"
	stopCommand            = "stop"
)
