package clock

// Handle represents media decoded and owned by an audio engine.
// A handle stays usable until released through Engine.Release.
type Handle interface {
	// Duration returns the length of the decoded media in seconds.
	Duration() float64
}

// Engine is the audio-rendering collaborator wrapped by the Clock.
// The clock is the exclusive owner of handles it obtains from Decode and is
// responsible for releasing them.
type Engine interface {
	// Decode prepares media under the provided path for playback.
	Decode(path string) (Handle, error)

	// Start begins or resumes rendering of the handle's media.
	Start(handle Handle) error

	// Stop suspends rendering of the handle's media.
	Stop(handle Handle) error

	// SetRate changes the playback speed multiplier for the handle.
	SetRate(handle Handle, rate float64) error

	// SetLoop switches engine-native looping between the provided bounds.
	// With enabled false the bounds are meaningless.
	SetLoop(handle Handle, enabled bool, start float64, end float64) error

	// Now returns the current playback position of the handle in seconds.
	Now(handle Handle) (float64, error)

	// Release frees all resources tied to the handle.
	Release(handle Handle)
}
