package loop

import "math"

const (
	// MaxBPM is the highest tempo accepted by Settings.
	MaxBPM = 300

	secondsInMinute = 60
)

// Settings describe tempo quantization of the loop window.
// BPM is optional - enabling auto quantization is only meaningful once a tempo
// is known, so enabling without a BPM set is accepted but has no effect.
type Settings struct {
	bpm     int
	bpmSet  bool
	enabled bool
}

// BPM returns the configured tempo. The flag is false when no tempo is set.
func (s Settings) BPM() (int, bool) {
	return s.bpm, s.bpmSet
}

// Enabled informs whether auto quantization is in effect.
// Auto quantization without a known tempo is never in effect.
func (s Settings) Enabled() bool {
	return s.enabled && s.bpmSet
}

// SetBPM replaces the tempo. Accepted for positive tempos up to MaxBPM.
func (s Settings) SetBPM(bpm int) (Settings, bool) {
	if bpm <= 0 || bpm > MaxBPM {
		return s, false
	}

	return Settings{bpm: bpm, bpmSet: true, enabled: s.enabled}, true
}

// ClearBPM removes the tempo, which also takes auto quantization out of effect.
func (s Settings) ClearBPM() Settings {
	return Settings{enabled: s.enabled}
}

// SetEnabled switches auto quantization.
func (s Settings) SetEnabled(enabled bool) Settings {
	return Settings{bpm: s.bpm, bpmSet: s.bpmSet, enabled: enabled}
}

// BeatDuration returns the duration of a single beat in seconds for the provided tempo.
func BeatDuration(bpm int) float64 {
	return secondsInMinute / float64(bpm)
}

// Quantize snaps the window length to the nearest positive multiple of the beat
// duration derived from bpm, rounding half up, with a minimum of one beat.
// The start bound is held fixed. When the snapped end would exceed duration, the
// length is reduced to the largest beat multiple that still fits. Rejected when
// the window is unset, bpm is not positive, or not even a single beat fits.
func Quantize(w Window, bpm int, duration float64) (Window, bool) {
	if !w.set || bpm <= 0 {
		return w, false
	}

	beat := BeatDuration(bpm)
	beats := math.Floor(w.Length()/beat + 0.5)
	if beats < 1 {
		beats = 1
	}

	end := w.start + beats*beat
	for end > duration && beats > 1 {
		beats--
		end = w.start + beats*beat
	}

	if end > duration {
		return w, false
	}

	return Window{set: true, start: w.start, end: end}, true
}
