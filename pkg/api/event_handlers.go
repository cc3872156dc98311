package api

import (
	"github.com/sarpt/loop-web-api/pkg/mpv"
)

// handlePauseEvent keeps the session state in sync with pause changes initiated
// inside mpv itself (end of file, user interaction with an mpv window etc.).
// The clock transitions are idempotent, so echoing a pause the server itself
// requested is harmless.
func (s *Server) handlePauseEvent(res mpv.ObservePropertyResponse) error {
	paused, ok := res.Data.(string)
	if !ok {
		return mpv.ErrPropertyDataUnexpectedFormat
	}

	if paused == mpv.YesValue {
		s.clock.Pause()
	} else {
		s.clock.Play()
	}

	s.statesRepository.Playback().SetPause(paused == mpv.YesValue)

	return nil
}

// handlePathEvent detects media being loaded into mpv from outside the API.
// Such loads bypass decode validation, so they are only reported, not adopted
// into session state.
func (s *Server) handlePathEvent(res mpv.ObservePropertyResponse) error {
	path, ok := res.Data.(string)
	if !ok {
		return mpv.ErrPropertyDataUnexpectedFormat
	}

	if path == "" || path == s.clock.MediaPath() {
		return nil
	}

	s.outLog.Printf("mpv reported playback of a file not loaded through the API: '%s'\n", path)

	return nil
}
