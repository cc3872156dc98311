package clock_test

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarpt/loop-web-api/internal/mocks"
	"github.com/sarpt/loop-web-api/pkg/clock"
)

const testMediaPath = "/media/track.flac"

func newTestClock(engine clock.Engine, pollInterval time.Duration) *clock.Clock {
	return clock.NewClock(clock.Config{
		Engine:       engine,
		ErrWriter:    io.Discard,
		OutWriter:    io.Discard,
		PollInterval: pollInterval,
	})
}

func TestLoad_TransitionsToReady(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// given
	engine := mocks.NewMockEngine(ctrl)
	handle := mocks.NewMockHandle(ctrl)
	handle.EXPECT().Duration().Return(240.0).AnyTimes()

	engine.EXPECT().Decode(testMediaPath).Return(handle, nil).Times(1)
	engine.EXPECT().SetRate(handle, 1.0).Return(nil).Times(1)
	engine.EXPECT().SetLoop(handle, false, 0.0, 0.0).Return(nil).Times(1)
	engine.EXPECT().Release(handle).Times(1)

	uut := newTestClock(engine, time.Hour)
	defer uut.Dispose()

	require.Equal(t, clock.StateEmpty, uut.State())

	// when
	err := uut.Load(testMediaPath)

	// then
	require.NoError(t, err)
	assert.Equal(t, clock.StateReady, uut.State())
	assert.Equal(t, testMediaPath, uut.MediaPath())
	assert.Equal(t, 240.0, uut.Duration())
}

func TestLoad_DecodeFailureRevertsToEmpty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// given
	engine := mocks.NewMockEngine(ctrl)
	engine.EXPECT().Decode(testMediaPath).Return(nil, errors.New("unsupported codec")).Times(1)

	uut := newTestClock(engine, time.Hour)
	defer uut.Dispose()

	// when
	err := uut.Load(testMediaPath)

	// then
	require.Error(t, err)
	assert.ErrorIs(t, err, clock.ErrDecode)
	assert.Equal(t, clock.StateEmpty, uut.State())
	assert.Empty(t, uut.MediaPath())
	assert.Zero(t, uut.Duration())
}

func TestLoad_LastLoadWins(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// given
	engine := mocks.NewMockEngine(ctrl)
	slowHandle := mocks.NewMockHandle(ctrl)
	fastHandle := mocks.NewMockHandle(ctrl)

	slowDecodeStarted := make(chan struct{})
	slowDecodeProceed := make(chan struct{})

	engine.EXPECT().
		Decode("/media/slow.flac").
		DoAndReturn(func(path string) (clock.Handle, error) {
			close(slowDecodeStarted)
			<-slowDecodeProceed

			return slowHandle, nil
		}).
		Times(1)

	engine.EXPECT().Decode("/media/fast.flac").Return(fastHandle, nil).Times(1)
	engine.EXPECT().SetRate(fastHandle, 1.0).Return(nil).Times(1)
	engine.EXPECT().SetLoop(fastHandle, false, 0.0, 0.0).Return(nil).Times(1)

	// The superseded handle is released right away, the winning one on dispose.
	engine.EXPECT().Release(slowHandle).Times(1)
	engine.EXPECT().Release(fastHandle).Times(1)

	uut := newTestClock(engine, time.Hour)
	defer uut.Dispose()

	// when
	slowLoadDone := make(chan error)
	go func() {
		slowLoadDone <- uut.Load("/media/slow.flac")
	}()

	<-slowDecodeStarted

	err := uut.Load("/media/fast.flac")
	require.NoError(t, err)

	close(slowDecodeProceed)

	// then
	select {
	case err := <-slowLoadDone:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatalf("superseded load did not finish")
	}

	assert.Equal(t, clock.StateReady, uut.State())
	assert.Equal(t, "/media/fast.flac", uut.MediaPath())
}

func TestPlayAndPause(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// given
	engine := mocks.NewMockEngine(ctrl)
	handle := mocks.NewMockHandle(ctrl)

	engine.EXPECT().Decode(testMediaPath).Return(handle, nil).Times(1)
	engine.EXPECT().SetRate(handle, 1.0).Return(nil).Times(1)
	engine.EXPECT().SetLoop(handle, false, 0.0, 0.0).Return(nil).Times(1)
	engine.EXPECT().Start(handle).Return(nil).Times(2)
	engine.EXPECT().Stop(handle).Return(nil).Times(1)
	engine.EXPECT().Release(handle).Times(1)

	uut := newTestClock(engine, time.Hour)
	defer uut.Dispose()

	require.NoError(t, uut.Load(testMediaPath))

	// when
	uut.Play()

	// then
	assert.Equal(t, clock.StatePlaying, uut.State())

	// when
	uut.Pause()

	// then
	assert.Equal(t, clock.StatePaused, uut.State())

	// when
	uut.Play()

	// then
	assert.Equal(t, clock.StatePlaying, uut.State())
}

func TestPlay_NoopWithoutMedia(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// given
	engine := mocks.NewMockEngine(ctrl)

	uut := newTestClock(engine, time.Hour)
	defer uut.Dispose()

	// when
	uut.Play()
	uut.Pause()

	// then
	assert.Equal(t, clock.StateEmpty, uut.State())
}

func TestPause_NoopWhenNotPlaying(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// given
	engine := mocks.NewMockEngine(ctrl)
	handle := mocks.NewMockHandle(ctrl)

	engine.EXPECT().Decode(testMediaPath).Return(handle, nil).Times(1)
	engine.EXPECT().SetRate(handle, 1.0).Return(nil).Times(1)
	engine.EXPECT().SetLoop(handle, false, 0.0, 0.0).Return(nil).Times(1)
	engine.EXPECT().Release(handle).Times(1)

	uut := newTestClock(engine, time.Hour)
	defer uut.Dispose()

	require.NoError(t, uut.Load(testMediaPath))

	// when
	uut.Pause()

	// then
	assert.Equal(t, clock.StateReady, uut.State())
}

func TestUnload_ReturnsToEmpty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// given
	engine := mocks.NewMockEngine(ctrl)
	handle := mocks.NewMockHandle(ctrl)

	engine.EXPECT().Decode(testMediaPath).Return(handle, nil).Times(1)
	engine.EXPECT().SetRate(handle, 1.0).Return(nil).Times(1)
	engine.EXPECT().SetLoop(handle, false, 0.0, 0.0).Return(nil).Times(1)
	engine.EXPECT().Release(handle).Times(1)

	uut := newTestClock(engine, time.Hour)
	defer uut.Dispose()

	require.NoError(t, uut.Load(testMediaPath))

	// when
	uut.Unload()

	// then
	assert.Equal(t, clock.StateEmpty, uut.State())
	assert.Empty(t, uut.MediaPath())
	assert.Zero(t, uut.Duration())
}

func TestDispose_Idempotent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// given
	engine := mocks.NewMockEngine(ctrl)
	handle := mocks.NewMockHandle(ctrl)

	engine.EXPECT().Decode(testMediaPath).Return(handle, nil).Times(1)
	engine.EXPECT().SetRate(handle, 1.0).Return(nil).Times(1)
	engine.EXPECT().SetLoop(handle, false, 0.0, 0.0).Return(nil).Times(1)
	engine.EXPECT().Release(handle).Times(1)

	uut := newTestClock(engine, time.Hour)

	require.NoError(t, uut.Load(testMediaPath))

	// when
	uut.Dispose()
	uut.Dispose()

	// then
	assert.Equal(t, clock.StateDisposed, uut.State())

	err := uut.Load(testMediaPath)
	assert.ErrorIs(t, err, clock.ErrDisposed)

	uut.Play()
	assert.Equal(t, clock.StateDisposed, uut.State())
}

func TestLoad_AppliesRememberedRateAndLoop(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// given
	engine := mocks.NewMockEngine(ctrl)
	handle := mocks.NewMockHandle(ctrl)

	engine.EXPECT().Decode(testMediaPath).Return(handle, nil).Times(1)
	engine.EXPECT().SetRate(handle, 1.5).Return(nil).Times(1)
	engine.EXPECT().SetLoop(handle, true, 2.0, 4.5).Return(nil).Times(1)
	engine.EXPECT().Release(handle).Times(1)

	uut := newTestClock(engine, time.Hour)
	defer uut.Dispose()

	// when
	uut.SetRate(1.5)
	uut.SetLoopPoints(true, 2, 4.5)

	require.NoError(t, uut.Load(testMediaPath))

	// then
	assert.Equal(t, clock.StateReady, uut.State())
}

func TestSetRate_IgnoresNonPositiveRates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// given
	engine := mocks.NewMockEngine(ctrl)
	handle := mocks.NewMockHandle(ctrl)

	engine.EXPECT().Decode(testMediaPath).Return(handle, nil).Times(1)
	engine.EXPECT().SetRate(handle, 1.0).Return(nil).Times(1)
	engine.EXPECT().SetLoop(handle, false, 0.0, 0.0).Return(nil).Times(1)
	engine.EXPECT().Release(handle).Times(1)

	uut := newTestClock(engine, time.Hour)
	defer uut.Dispose()

	// when
	uut.SetRate(0)
	uut.SetRate(-2)

	require.NoError(t, uut.Load(testMediaPath))

	// then
	assert.Equal(t, clock.StateReady, uut.State())
}

func TestOnTime_PublishesClampedPosition(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// given
	engine := mocks.NewMockEngine(ctrl)
	handle := mocks.NewMockHandle(ctrl)
	handle.EXPECT().Duration().Return(100.0).AnyTimes()

	engine.EXPECT().Decode(testMediaPath).Return(handle, nil).Times(1)
	engine.EXPECT().SetRate(handle, 1.0).Return(nil).Times(1)
	engine.EXPECT().SetLoop(handle, false, 0.0, 0.0).Return(nil).Times(1)
	engine.EXPECT().Now(handle).Return(150.0, nil).AnyTimes()
	engine.EXPECT().Release(handle).Times(1)

	uut := newTestClock(engine, time.Millisecond)
	defer uut.Dispose()

	published := make(chan float64, 1)
	cancel := uut.OnTime(func(currentTime float64) {
		select {
		case published <- currentTime:
		default:
		}
	})
	defer cancel()

	// when
	require.NoError(t, uut.Load(testMediaPath))

	// then
	select {
	case currentTime := <-published:
		assert.Equal(t, 100.0, currentTime)
	case <-time.After(time.Second):
		t.Fatalf("no playback position published")
	}
}

func TestOnTime_ReplacesPreviousCallback(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// given
	engine := mocks.NewMockEngine(ctrl)
	handle := mocks.NewMockHandle(ctrl)
	handle.EXPECT().Duration().Return(100.0).AnyTimes()

	engine.EXPECT().Decode(testMediaPath).Return(handle, nil).Times(1)
	engine.EXPECT().SetRate(handle, 1.0).Return(nil).Times(1)
	engine.EXPECT().SetLoop(handle, false, 0.0, 0.0).Return(nil).Times(1)
	engine.EXPECT().Now(handle).Return(10.0, nil).AnyTimes()
	engine.EXPECT().Release(handle).Times(1)

	uut := newTestClock(engine, time.Millisecond)
	defer uut.Dispose()

	replacedPublished := make(chan float64, 1)
	cancelReplaced := uut.OnTime(func(currentTime float64) {
		select {
		case replacedPublished <- currentTime:
		default:
		}
	})

	published := make(chan float64, 1)
	uut.OnTime(func(currentTime float64) {
		select {
		case published <- currentTime:
		default:
		}
	})

	// Cancelling a replaced registration must not affect the current one.
	cancelReplaced()

	// when
	require.NoError(t, uut.Load(testMediaPath))

	// then
	select {
	case currentTime := <-published:
		assert.Equal(t, 10.0, currentTime)
	case <-time.After(time.Second):
		t.Fatalf("no playback position published")
	}

	select {
	case <-replacedPublished:
		t.Fatalf("replaced callback still receives playback positions")
	default:
	}
}
