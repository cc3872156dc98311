package api

import (
	"github.com/sarpt/loop-web-api/pkg/clock"
)

// LoadFile replaces the current playback with media under the provided path.
// Blocks while the media is being decoded. Decode failures are surfaced to the
// caller and leave the session without loaded media. When the load got
// superseded by a newer one, session state is left for the newer call to settle.
func (s *Server) LoadFile(path string) error {
	err := s.clock.Load(path)
	if err != nil {
		s.statesRepository.Playback().Stop()

		return err
	}

	if s.clock.MediaPath() != path {
		return nil
	}

	duration := s.clock.Duration()
	playback := s.statesRepository.Playback()
	playback.SetMediaFile(path, duration)
	playback.SetPause(true)

	s.clampLoopToDuration(duration)

	return nil
}

// Play resumes rendering. A silent no-op when no media is loaded.
func (s *Server) Play() {
	s.clock.Play()

	if s.clock.State() == clock.StatePlaying {
		s.statesRepository.Playback().SetPause(false)
	}
}

// Pause suspends rendering. A silent no-op when playback is not running.
func (s *Server) Pause() {
	s.clock.Pause()

	if s.clock.State() == clock.StatePaused {
		s.statesRepository.Playback().SetPause(true)
	}
}

// SetPlaybackRate changes the playback speed multiplier.
// Returns false for rates not greater than zero, keeping the previous rate.
func (s *Server) SetPlaybackRate(rate float64) bool {
	if rate <= 0 {
		return false
	}

	s.clock.SetRate(rate)
	s.statesRepository.Playback().SetRate(rate)

	return true
}

// StopPlayback unloads the current media, keeping the session usable for a fresh load.
func (s *Server) StopPlayback() {
	s.clock.Unload()
	s.statesRepository.Playback().Stop()
}
