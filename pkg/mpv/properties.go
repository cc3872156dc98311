package mpv

const (
	// ABLoopAProperty is used for setting custom looping in the specified timeframe. A is the start of the time range.
	ABLoopAProperty = "ab-loop-a"

	// ABLoopBProperty is used for setting custom looping in the specified timeframe. B is the end of the time range.
	ABLoopBProperty = "ab-loop-b"

	// DurationProperty is used for reading duration of the currently played file in seconds.
	DurationProperty = "duration"

	// PathProperty is used to inform about path to the file currently being played by mpv.
	PathProperty = "path"

	// PauseProperty is used for pausing or unpausing playback.
	PauseProperty = "pause"

	// PlaybackTimeProperty is used for reading and setting current time of playback in seconds.
	PlaybackTimeProperty = "playback-time"

	// SpeedProperty is used for setting the playback speed multiplier.
	SpeedProperty = "speed"
)

var (
	// ObservableProperties specifies collection of properties that can be observed by the 'property-change' event.
	ObservableProperties = []string{
		PathProperty,
		PauseProperty,
	}
)
