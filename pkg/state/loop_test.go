package state_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarpt/loop-web-api/pkg/loop"
	"github.com/sarpt/loop-web-api/pkg/state"
)

func TestLoop_SetWindow(t *testing.T) {
	t.Parallel()

	loopState := state.NewLoop()

	changes := make(chan state.LoopChange, 1)
	cancel := loopState.Subscribe(func(change state.LoopChange) {
		changes <- change
	})
	defer cancel()

	window, ok := loop.Window{}.SetPoints(10, 20, 100)
	require.True(t, ok)

	loopState.SetWindow(window)

	change := awaitChange(t, changes)
	assert.Equal(t, state.WindowChange, change.Variant)
	assert.Equal(t, window, loopState.Window())
}

func TestLoop_SetSettings(t *testing.T) {
	t.Parallel()

	loopState := state.NewLoop()

	changes := make(chan state.LoopChange, 1)
	cancel := loopState.Subscribe(func(change state.LoopChange) {
		changes <- change
	})
	defer cancel()

	settings, ok := loop.Settings{}.SetBPM(120)
	require.True(t, ok)
	settings = settings.SetEnabled(true)

	loopState.SetSettings(settings)

	change := awaitChange(t, changes)
	assert.Equal(t, state.QuantizationChange, change.Variant)
	assert.Equal(t, settings, loopState.Settings())
}

func TestLoop_MarshalJSON(t *testing.T) {
	t.Parallel()

	loopState := state.NewLoop()

	window, ok := loop.Window{}.SetPoints(10, 12.5, 100)
	require.True(t, ok)
	loopState.SetWindow(window)

	settings, ok := loop.Settings{}.SetBPM(120)
	require.True(t, ok)
	loopState.SetSettings(settings.SetEnabled(true))

	out, err := json.Marshal(loopState)
	require.NoError(t, err)

	var payload struct {
		Set          bool
		Start        float64
		End          float64
		BPM          int
		BPMSet       bool
		AutoQuantize bool
	}
	require.NoError(t, json.Unmarshal(out, &payload))

	assert.True(t, payload.Set)
	assert.InDelta(t, 10, payload.Start, 1e-9)
	assert.InDelta(t, 12.5, payload.End, 1e-9)
	assert.Equal(t, 120, payload.BPM)
	assert.True(t, payload.BPMSet)
	assert.True(t, payload.AutoQuantize)
}
