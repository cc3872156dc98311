package loop

// Direction specifies which way a window should be moved along the track.
type Direction int

const (
	// TowardsStart moves the window towards the beginning of the track.
	TowardsStart Direction = -1

	// TowardsEnd moves the window towards the end of the track.
	TowardsEnd Direction = 1
)

// Window describes the A-B range repeated during looped playback of a single track.
// A zero-value Window is unset - it holds no bounds until SetPoints accepts a pair.
// Whenever the window is set, 0 <= start < end <= duration holds against the track
// duration it was validated with.
// All operations are pure - they return the resulting window together with a flag
// reporting whether the operation was accepted. A rejected operation returns the
// receiver unchanged, which keeps the previous bounds authoritative for the caller.
type Window struct {
	set   bool
	start float64
	end   float64
}

// IsSet informs whether the window holds bounds.
func (w Window) IsSet() bool {
	return w.set
}

// Bounds returns both ends of the window. The flag is false when the window is unset,
// in which case both returned values are meaningless.
func (w Window) Bounds() (float64, float64, bool) {
	return w.start, w.end, w.set
}

// Length returns the distance between the window ends, 0 for an unset window.
func (w Window) Length() float64 {
	if !w.set {
		return 0
	}

	return w.end - w.start
}

// SetPoints replaces both bounds at once.
// Accepted only when 0 <= start < end <= duration.
func (w Window) SetPoints(start float64, end float64, duration float64) (Window, bool) {
	if start < 0 || start >= end || end > duration {
		return w, false
	}

	return Window{set: true, start: start, end: end}, true
}

// SetStart replaces the start bound, preserving the end.
// Accepted only when the window is set and 0 <= start < end.
func (w Window) SetStart(start float64) (Window, bool) {
	if !w.set || start < 0 || start >= w.end {
		return w, false
	}

	return Window{set: true, start: start, end: w.end}, true
}

// SetEnd replaces the end bound, preserving the start.
// Accepted only when the window is set and start < end <= duration.
func (w Window) SetEnd(end float64, duration float64) (Window, bool) {
	if !w.set || end <= w.start || end > duration {
		return w, false
	}

	return Window{set: true, start: w.start, end: end}, true
}

// Move shifts both bounds by one window length in the provided direction.
// When the shifted pair would leave [0, duration] the whole window is translated
// back to the nearest boundary - length is always preserved, never truncated.
// Rejected when the window is unset or direction is not one of the two variants.
func (w Window) Move(direction Direction, duration float64) (Window, bool) {
	if !w.set || (direction != TowardsStart && direction != TowardsEnd) {
		return w, false
	}

	length := w.end - w.start
	start := w.start + float64(direction)*length
	end := w.end + float64(direction)*length

	if start < 0 {
		start = 0
		end = length
	} else if end > duration {
		end = duration
		start = duration - length
	}

	if start < 0 || end > duration {
		return w, false
	}

	return Window{set: true, start: start, end: end}, true
}

// Scale multiplies the window length by factor, anchored at start.
// The end is clamped to duration; rejected when factor is not positive or the
// clamped length would collapse to zero or below.
func (w Window) Scale(factor float64, duration float64) (Window, bool) {
	if !w.set || factor <= 0 {
		return w, false
	}

	end := w.start + (w.end-w.start)*factor
	if end > duration {
		end = duration
	}

	if end <= w.start {
		return w, false
	}

	return Window{set: true, start: w.start, end: end}, true
}

// ExtendStart shifts the start bound by a signed delta in seconds.
// Rejected when the result would violate 0 <= start < end.
func (w Window) ExtendStart(delta float64) (Window, bool) {
	if !w.set {
		return w, false
	}

	start := w.start + delta
	if start < 0 || start >= w.end {
		return w, false
	}

	return Window{set: true, start: start, end: w.end}, true
}

// ExtendEnd shifts the end bound by a signed delta in seconds.
// Rejected when the result would violate start < end <= duration.
func (w Window) ExtendEnd(delta float64, duration float64) (Window, bool) {
	if !w.set {
		return w, false
	}

	end := w.end + delta
	if end <= w.start || end > duration {
		return w, false
	}

	return Window{set: true, start: w.start, end: end}, true
}

// Clamp revalidates the window against a new track duration.
// The window is cleared when its bounds cannot hold against the provided duration.
func (w Window) Clamp(duration float64) Window {
	if !w.set || w.start < 0 || w.end > duration || w.start >= w.end {
		return Window{}
	}

	return w
}
