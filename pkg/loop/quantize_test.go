package loop_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarpt/loop-web-api/pkg/loop"
)

func TestSettings_BPM(t *testing.T) {
	t.Parallel()

	var settings loop.Settings

	_, set := settings.BPM()
	assert.False(t, set)

	settings, ok := settings.SetBPM(120)
	require.True(t, ok)

	bpm, set := settings.BPM()
	require.True(t, set)
	assert.Equal(t, 120, bpm)

	_, ok = settings.SetBPM(0)
	assert.False(t, ok)

	_, ok = settings.SetBPM(-10)
	assert.False(t, ok)

	_, ok = settings.SetBPM(loop.MaxBPM + 1)
	assert.False(t, ok)

	settings, ok = settings.SetBPM(loop.MaxBPM)
	require.True(t, ok)

	bpm, set = settings.BPM()
	require.True(t, set)
	assert.Equal(t, loop.MaxBPM, bpm)
}

func TestSettings_EnabledRequiresBPM(t *testing.T) {
	t.Parallel()

	var settings loop.Settings

	settings = settings.SetEnabled(true)
	assert.False(t, settings.Enabled())

	settings, ok := settings.SetBPM(90)
	require.True(t, ok)
	assert.True(t, settings.Enabled())

	settings = settings.ClearBPM()
	assert.False(t, settings.Enabled())

	settings, ok = settings.SetBPM(90)
	require.True(t, ok)
	assert.True(t, settings.Enabled())

	settings = settings.SetEnabled(false)
	assert.False(t, settings.Enabled())
}

func TestBeatDuration(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.5, loop.BeatDuration(120), 1e-9)
	assert.InDelta(t, 1, loop.BeatDuration(60), 1e-9)
	assert.InDelta(t, 0.2, loop.BeatDuration(300), 1e-9)
}

func TestQuantize(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name          string
		start         float64
		end           float64
		bpm           int
		duration      float64
		accepted      bool
		expectedStart float64
		expectedEnd   float64
	}{
		{
			name:  "rounds length up to nearest beat multiple",
			start: 10, end: 12.3, bpm: 120, duration: 100,
			accepted: true, expectedStart: 10, expectedEnd: 12.5,
		},
		{
			name:  "rounds length down to nearest beat multiple",
			start: 10, end: 12.2, bpm: 120, duration: 100,
			accepted: true, expectedStart: 10, expectedEnd: 12,
		},
		{
			name:  "half length rounds up",
			start: 10, end: 12.25, bpm: 120, duration: 100,
			accepted: true, expectedStart: 10, expectedEnd: 12.5,
		},
		{
			name:  "already aligned length is kept",
			start: 10, end: 12.5, bpm: 120, duration: 100,
			accepted: true, expectedStart: 10, expectedEnd: 12.5,
		},
		{
			name:  "tiny window snaps up to one beat",
			start: 10, end: 10.1, bpm: 120, duration: 100,
			accepted: true, expectedStart: 10, expectedEnd: 10.5,
		},
		{
			name:  "snapped end clamped to largest fitting multiple",
			start: 8.25, end: 9.75, bpm: 60, duration: 10,
			accepted: true, expectedStart: 8.25, expectedEnd: 9.25,
		},
		{
			name:  "rejected when not even one beat fits",
			start: 99.9, end: 99.95, bpm: 120, duration: 100,
			accepted: false,
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			window, ok := loop.Window{}.SetPoints(testCase.start, testCase.end, testCase.duration)
			require.True(t, ok)

			quantized, ok := loop.Quantize(window, testCase.bpm, testCase.duration)
			assert.Equal(t, testCase.accepted, ok)

			if !testCase.accepted {
				assert.Equal(t, window, quantized)

				return
			}

			start, end, set := quantized.Bounds()
			require.True(t, set)
			assert.InDelta(t, testCase.expectedStart, start, 1e-9)
			assert.InDelta(t, testCase.expectedEnd, end, 1e-9)
		})
	}
}

func TestQuantize_RejectsUnsetWindowAndInvalidTempo(t *testing.T) {
	t.Parallel()

	_, ok := loop.Quantize(loop.Window{}, 120, 100)
	assert.False(t, ok)

	window, ok := loop.Window{}.SetPoints(10, 20, 100)
	require.True(t, ok)

	_, ok = loop.Quantize(window, 0, 100)
	assert.False(t, ok)

	_, ok = loop.Quantize(window, -60, 100)
	assert.False(t, ok)
}
