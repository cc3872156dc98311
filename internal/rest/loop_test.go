package rest_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarpt/loop-web-api/internal/rest"
	"github.com/sarpt/loop-web-api/pkg/loop"
	"github.com/sarpt/loop-web-api/pkg/state"
)

type callbacksRecorder struct {
	clearLoopCalls     int
	moveDirections     []loop.Direction
	quantizeNowCalls   int
	scaleFactors       []float64
	setAutoQuantize    []bool
	setBPMs            []int
	setLoopEnds        []float64
	setLoopPointsPairs [][2]float64
	setLoopStarts      []float64
	toggleLooping      []bool
}

func (cr *callbacksRecorder) callbacks() rest.Callbacks {
	return rest.Callbacks{
		ClearLoop: func() { cr.clearLoopCalls++ },
		ExtendLoopEnd: func(delta float64) bool {
			return true
		},
		ExtendLoopStart: func(delta float64) bool {
			return true
		},
		LoadFile: func(path string) error { return nil },
		MoveLoop: func(direction loop.Direction) bool {
			cr.moveDirections = append(cr.moveDirections, direction)
			return true
		},
		Pause: func() {},
		Play:  func() {},
		QuantizeNow: func() bool {
			cr.quantizeNowCalls++
			return true
		},
		ScaleLoop: func(factor float64) bool {
			cr.scaleFactors = append(cr.scaleFactors, factor)
			return true
		},
		SetAutoQuantize: func(enabled bool) {
			cr.setAutoQuantize = append(cr.setAutoQuantize, enabled)
		},
		SetBPM: func(bpm int) bool {
			cr.setBPMs = append(cr.setBPMs, bpm)
			return true
		},
		SetLoopEnd: func(end float64) bool {
			cr.setLoopEnds = append(cr.setLoopEnds, end)
			return true
		},
		SetLoopPoints: func(start float64, end float64) bool {
			cr.setLoopPointsPairs = append(cr.setLoopPointsPairs, [2]float64{start, end})
			return true
		},
		SetLoopStart: func(start float64) bool {
			cr.setLoopStarts = append(cr.setLoopStarts, start)
			return true
		},
		SetPlaybackRate: func(rate float64) bool { return true },
		StopPlayback:    func() {},
		ToggleLooping: func(enabled bool) bool {
			cr.toggleLooping = append(cr.toggleLooping, enabled)
			return true
		},
	}
}

func newTestServer(t *testing.T, recorder *callbacksRecorder) *rest.Server {
	t.Helper()

	return rest.NewServer(rest.Config{
		Callbacks:        recorder.callbacks(),
		ErrWriter:        io.Discard,
		OutWriter:        io.Discard,
		StatesRepository: state.NewRepository(),
	})
}

func postLoopForm(t *testing.T, server *rest.Server, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/rest/loop", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res := httptest.NewRecorder()
	server.Handler().ServeHTTP(res, req)

	return res
}

func TestPostLoop_BothBoundsReplaceWindowAtOnce(t *testing.T) {
	t.Parallel()

	recorder := &callbacksRecorder{}
	server := newTestServer(t, recorder)

	res := postLoopForm(t, server, url.Values{
		"start": []string{"01:05.500"},
		"end":   []string{"01:30.250"},
	})

	require.Equal(t, 200, res.Code)
	require.Len(t, recorder.setLoopPointsPairs, 1)
	assert.InDelta(t, 65.5, recorder.setLoopPointsPairs[0][0], 1e-9)
	assert.InDelta(t, 90.25, recorder.setLoopPointsPairs[0][1], 1e-9)
	assert.Empty(t, recorder.setLoopStarts)
	assert.Empty(t, recorder.setLoopEnds)
}

func TestPostLoop_SingleBound(t *testing.T) {
	t.Parallel()

	recorder := &callbacksRecorder{}
	server := newTestServer(t, recorder)

	res := postLoopForm(t, server, url.Values{"start": []string{"30"}})
	require.Equal(t, 200, res.Code)
	require.Len(t, recorder.setLoopStarts, 1)
	assert.InDelta(t, 30, recorder.setLoopStarts[0], 1e-9)

	res = postLoopForm(t, server, url.Values{"end": []string{"0:45.5"}})
	require.Equal(t, 200, res.Code)
	require.Len(t, recorder.setLoopEnds, 1)
	assert.InDelta(t, 45.5, recorder.setLoopEnds[0], 1e-9)

	assert.Empty(t, recorder.setLoopPointsPairs)
}

func TestPostLoop_MalformedTimeTextRejectedWithoutSideEffects(t *testing.T) {
	t.Parallel()

	recorder := &callbacksRecorder{}
	server := newTestServer(t, recorder)

	res := postLoopForm(t, server, url.Values{"start": []string{"1:2:3"}})

	require.Equal(t, 400, res.Code)

	var payload struct {
		ArgumentErrors map[string]string `json:"argumentErrors"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	assert.Contains(t, payload.ArgumentErrors, "start")

	assert.Empty(t, recorder.setLoopStarts)
	assert.Empty(t, recorder.setLoopPointsPairs)
}

func TestPostLoop_Transforms(t *testing.T) {
	t.Parallel()

	recorder := &callbacksRecorder{}
	server := newTestServer(t, recorder)

	res := postLoopForm(t, server, url.Values{"move": []string{"1"}})
	require.Equal(t, 200, res.Code)

	res = postLoopForm(t, server, url.Values{"move": []string{"-1"}})
	require.Equal(t, 200, res.Code)

	require.Equal(t, []loop.Direction{loop.TowardsEnd, loop.TowardsStart}, recorder.moveDirections)

	res = postLoopForm(t, server, url.Values{"scale": []string{"0.5"}})
	require.Equal(t, 200, res.Code)
	require.Equal(t, []float64{0.5}, recorder.scaleFactors)
}

func TestPostLoop_MoveRejectsUnknownDirection(t *testing.T) {
	t.Parallel()

	recorder := &callbacksRecorder{}
	server := newTestServer(t, recorder)

	res := postLoopForm(t, server, url.Values{"move": []string{"2"}})

	require.Equal(t, 400, res.Code)
	assert.Empty(t, recorder.moveDirections)
}

func TestPostLoop_Quantization(t *testing.T) {
	t.Parallel()

	recorder := &callbacksRecorder{}
	server := newTestServer(t, recorder)

	res := postLoopForm(t, server, url.Values{"bpm": []string{"120"}})
	require.Equal(t, 200, res.Code)
	require.Equal(t, []int{120}, recorder.setBPMs)

	res = postLoopForm(t, server, url.Values{"autoQuantize": []string{"true"}})
	require.Equal(t, 200, res.Code)
	require.Equal(t, []bool{true}, recorder.setAutoQuantize)

	res = postLoopForm(t, server, url.Values{"quantize": []string{"true"}})
	require.Equal(t, 200, res.Code)
	assert.Equal(t, 1, recorder.quantizeNowCalls)

	res = postLoopForm(t, server, url.Values{"quantize": []string{"false"}})
	require.Equal(t, 200, res.Code)
	assert.Equal(t, 1, recorder.quantizeNowCalls)
}

func TestPostLoop_LoopingAndClear(t *testing.T) {
	t.Parallel()

	recorder := &callbacksRecorder{}
	server := newTestServer(t, recorder)

	res := postLoopForm(t, server, url.Values{"looping": []string{"true"}})
	require.Equal(t, 200, res.Code)
	require.Equal(t, []bool{true}, recorder.toggleLooping)

	res = postLoopForm(t, server, url.Values{"clear": []string{"true"}})
	require.Equal(t, 200, res.Code)
	assert.Equal(t, 1, recorder.clearLoopCalls)

	res = postLoopForm(t, server, url.Values{"clear": []string{"false"}})
	require.Equal(t, 200, res.Code)
	assert.Equal(t, 1, recorder.clearLoopCalls)
}

func TestPostLoop_UnknownArgument(t *testing.T) {
	t.Parallel()

	recorder := &callbacksRecorder{}
	server := newTestServer(t, recorder)

	res := postLoopForm(t, server, url.Values{"unknown": []string{"1"}})

	require.Equal(t, 400, res.Code)

	var payload struct {
		ArgumentErrors map[string]string `json:"argumentErrors"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	assert.Contains(t, payload.ArgumentErrors, "unknown")
}

func TestGetLoop_MarshalsState(t *testing.T) {
	t.Parallel()

	recorder := &callbacksRecorder{}
	server := newTestServer(t, recorder)

	req := httptest.NewRequest(http.MethodGet, "/rest/loop", nil)
	res := httptest.NewRecorder()
	server.Handler().ServeHTTP(res, req)

	require.Equal(t, 200, res.Code)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	assert.Contains(t, payload, "Set")
}
