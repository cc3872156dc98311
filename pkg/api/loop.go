package api

import (
	"github.com/sarpt/loop-web-api/pkg/loop"
)

// SetLoopPoints replaces both loop bounds at once.
// Returns false when the bounds do not hold against the current media duration,
// keeping the previous window.
func (s *Server) SetLoopPoints(start float64, end float64) bool {
	return s.updateWindow(func(window loop.Window, duration float64) (loop.Window, bool) {
		return window.SetPoints(start, end, duration)
	})
}

// SetLoopStart replaces the loop start, preserving the end.
func (s *Server) SetLoopStart(start float64) bool {
	return s.updateWindow(func(window loop.Window, duration float64) (loop.Window, bool) {
		return window.SetStart(start)
	})
}

// SetLoopEnd replaces the loop end, preserving the start.
func (s *Server) SetLoopEnd(end float64) bool {
	return s.updateWindow(func(window loop.Window, duration float64) (loop.Window, bool) {
		return window.SetEnd(end, duration)
	})
}

// MoveLoop shifts the loop window by one window length in the provided direction.
func (s *Server) MoveLoop(direction loop.Direction) bool {
	return s.updateWindow(func(window loop.Window, duration float64) (loop.Window, bool) {
		return window.Move(direction, duration)
	})
}

// ScaleLoop multiplies the loop window length by the provided factor, anchored at start.
func (s *Server) ScaleLoop(factor float64) bool {
	return s.updateWindow(func(window loop.Window, duration float64) (loop.Window, bool) {
		return window.Scale(factor, duration)
	})
}

// ExtendLoopStart shifts the loop start by a signed delta in seconds.
func (s *Server) ExtendLoopStart(delta float64) bool {
	return s.updateWindow(func(window loop.Window, duration float64) (loop.Window, bool) {
		return window.ExtendStart(delta)
	})
}

// ExtendLoopEnd shifts the loop end by a signed delta in seconds.
func (s *Server) ExtendLoopEnd(delta float64) bool {
	return s.updateWindow(func(window loop.Window, duration float64) (loop.Window, bool) {
		return window.ExtendEnd(delta, duration)
	})
}

// ClearLoop unsets the loop window, which also disables engine-native looping.
func (s *Server) ClearLoop() {
	s.statesRepository.Loop().SetWindow(loop.Window{})
	s.pushLoopToClock()
}

// SetBPM changes the quantization tempo.
// Returns false for tempos outside (0, loop.MaxBPM], keeping the previous tempo.
// While auto quantization is in effect a tempo change triggers a quantize pass.
func (s *Server) SetBPM(bpm int) bool {
	loopState := s.statesRepository.Loop()

	settings, ok := loopState.Settings().SetBPM(bpm)
	if !ok {
		return false
	}

	loopState.SetSettings(settings)
	if settings.Enabled() {
		s.QuantizeNow()
	}

	return true
}

// SetAutoQuantize switches auto quantization.
// Enabling triggers one immediate quantize pass when both tempo and window are
// already set; enabling without a tempo is accepted but has no effect.
func (s *Server) SetAutoQuantize(enabled bool) {
	loopState := s.statesRepository.Loop()

	settings := loopState.Settings().SetEnabled(enabled)
	loopState.SetSettings(settings)

	if settings.Enabled() {
		s.QuantizeNow()
	}
}

// QuantizeNow snaps the loop window length to the nearest beat multiple.
// Returns false when no tempo is set, the window is unset, or not even a single
// beat fits the media - the previous window is kept in all those cases.
func (s *Server) QuantizeNow() bool {
	loopState := s.statesRepository.Loop()

	bpm, ok := loopState.Settings().BPM()
	if !ok {
		return false
	}

	duration := s.statesRepository.Playback().Duration()
	window, ok := loop.Quantize(loopState.Window(), bpm, duration)
	if !ok {
		return false
	}

	loopState.SetWindow(window)
	s.pushLoopToClock()

	return true
}

// ToggleLooping switches engine-native looping over the current loop window.
// Enabling without a set window is rejected; disabling always succeeds.
func (s *Server) ToggleLooping(enabled bool) bool {
	if enabled && !s.statesRepository.Loop().Window().IsSet() {
		return false
	}

	s.statesRepository.Playback().SetLooping(enabled)
	s.pushLoopToClock()

	return true
}

// updateWindow applies a pure window operation against the current media duration
// and, when accepted, stores the result and re-pushes loop bounds to the engine.
func (s *Server) updateWindow(operation func(window loop.Window, duration float64) (loop.Window, bool)) bool {
	loopState := s.statesRepository.Loop()
	duration := s.statesRepository.Playback().Duration()

	window, ok := operation(loopState.Window(), duration)
	if !ok {
		return false
	}

	loopState.SetWindow(window)
	s.pushLoopToClock()

	return true
}

// clampLoopToDuration revalidates the loop window against a freshly loaded
// media duration, clearing bounds that can no longer hold.
func (s *Server) clampLoopToDuration(duration float64) {
	loopState := s.statesRepository.Loop()

	window := loopState.Window()
	clamped := window.Clamp(duration)
	if clamped != window {
		loopState.SetWindow(clamped)
	}

	s.pushLoopToClock()
}

// pushLoopToClock wires the current loop window into the engine's native looping.
// Looping is only in effect when both switched on and backed by a set window.
func (s *Server) pushLoopToClock() {
	window := s.statesRepository.Loop().Window()
	looping := s.statesRepository.Playback().Looping()

	start, end, set := window.Bounds()
	if looping && !set {
		looping = false
		s.statesRepository.Playback().SetLooping(false)
	}

	s.clock.SetLoopPoints(looping && set, start, end)
}
