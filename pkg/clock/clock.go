package clock

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"
)

// State specifies the lifecycle phase of the Clock.
type State string

const (
	// StateEmpty is the initial state, also entered after a failed load.
	StateEmpty State = "empty"

	// StateLoading is in effect while a decode is pending.
	StateLoading State = "loading"

	// StateReady means media is decoded and playback can be started.
	StateReady State = "ready"

	// StatePlaying means the engine is rendering audio.
	StatePlaying State = "playing"

	// StatePaused means rendering is suspended but media stays loaded.
	StatePaused State = "paused"

	// StateDisposed is terminal - all operations on a disposed clock are no-ops.
	StateDisposed State = "disposed"
)

const (
	// DefaultPollInterval matches roughly 60 samples of engine time per second.
	DefaultPollInterval = 16 * time.Millisecond

	defaultRate = 1.0

	logPrefix = "clock.Clock#"
)

var (
	// ErrDecode informs about the engine failing to decode media during Load.
	ErrDecode = errors.New("media could not be decoded")

	// ErrDisposed informs about an operation being attempted on a disposed clock.
	ErrDisposed = errors.New("clock is disposed")
)

// TimeCallback receives playback position updates published by the polling cycle.
type TimeCallback func(currentTime float64)

// Config controls behaviour of the Clock.
type Config struct {
	Engine       Engine
	ErrWriter    io.Writer
	OutWriter    io.Writer
	PollInterval time.Duration
}

// Clock bridges the engine's pull-based playback position to push-based observers
// and guards the load/play/pause/dispose lifecycle around engine handles.
// All public operations are safe for concurrent use - a single mutex serializes
// them against in-flight polling ticks, so a tick never reads a released handle.
type Clock struct {
	engine       Engine
	errLog       *log.Logger
	outLog       *log.Logger
	pollInterval time.Duration

	lock        sync.Mutex
	state       State
	handle      Handle
	mediaPath   string
	generation  int
	pollCancel  context.CancelFunc
	rate        float64
	loopEnabled bool
	loopStart   float64
	loopEnd     float64
	onTime      TimeCallback
	callbackID  int
}

// NewClock constructs a Clock in the Empty state.
func NewClock(cfg Config) *Clock {
	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}

	return &Clock{
		engine:       cfg.Engine,
		errLog:       log.New(cfg.ErrWriter, logPrefix, log.LstdFlags),
		outLog:       log.New(cfg.OutWriter, logPrefix, log.LstdFlags),
		pollInterval: pollInterval,
		state:        StateEmpty,
		rate:         defaultRate,
	}
}

// State returns the current lifecycle phase.
func (c *Clock) State() State {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.state
}

// Duration returns the duration of the loaded media in seconds, 0 when nothing is loaded.
func (c *Clock) Duration() float64 {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.handle == nil {
		return 0
	}

	return c.handle.Duration()
}

// Load decodes media under the provided path, replacing whatever was loaded before.
// Any in-flight polling is cancelled and the previous handle released before decoding.
// On success the clock transitions to Ready and polling starts; on decode failure the
// clock reverts to Empty and the error is surfaced wrapped in ErrDecode.
// A Load superseded by a newer Load call is discarded silently - last load wins.
func (c *Clock) Load(path string) error {
	c.lock.Lock()
	if c.state == StateDisposed {
		c.lock.Unlock()

		return ErrDisposed
	}

	c.generation++
	generation := c.generation
	c.stopPolling()
	c.releaseHandle()
	c.state = StateLoading
	c.lock.Unlock()

	c.outLog.Printf("loading media from '%s'\n", path)
	handle, err := c.engine.Decode(path)

	c.lock.Lock()
	defer c.lock.Unlock()

	if c.generation != generation || c.state == StateDisposed {
		if handle != nil {
			c.engine.Release(handle)
		}

		c.outLog.Printf("discarding superseded load of '%s'\n", path)
		return nil
	}

	if err != nil {
		c.state = StateEmpty

		return fmt.Errorf("%w: %s", ErrDecode, err)
	}

	c.handle = handle
	c.mediaPath = path
	c.applyRemembered()
	c.state = StateReady
	c.startPolling()

	return nil
}

// MediaPath returns the path of the currently loaded media, empty when nothing is loaded.
func (c *Clock) MediaPath() string {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.handle == nil {
		return ""
	}

	return c.mediaPath
}

// Unload cancels polling and releases the engine handle, returning the clock
// to the Empty state. A no-op on a disposed or already empty clock.
func (c *Clock) Unload() {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.state == StateDisposed || c.state == StateEmpty {
		return
	}

	c.generation++
	c.stopPolling()
	c.releaseHandle()
	c.state = StateEmpty
}

// Play starts rendering. Valid from Ready and Paused; a no-op otherwise -
// in particular when no media is loaded.
func (c *Clock) Play() {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.handle == nil || (c.state != StateReady && c.state != StatePaused) {
		return
	}

	err := c.engine.Start(c.handle)
	if err != nil {
		c.errLog.Printf("could not start playback: %s\n", err)

		return
	}

	c.state = StatePlaying
}

// Pause suspends rendering. Valid from Playing; a no-op otherwise.
func (c *Clock) Pause() {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.handle == nil || c.state != StatePlaying {
		return
	}

	err := c.engine.Stop(c.handle)
	if err != nil {
		c.errLog.Printf("could not pause playback: %s\n", err)

		return
	}

	c.state = StatePaused
}

// SetRate changes the playback speed multiplier.
// The rate is remembered and reapplied to handles of subsequent loads.
// Rates not greater than zero are ignored.
func (c *Clock) SetRate(rate float64) {
	if rate <= 0 {
		return
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	c.rate = rate
	if c.handle == nil {
		return
	}

	err := c.engine.SetRate(c.handle, rate)
	if err != nil {
		c.errLog.Printf("could not change playback rate: %s\n", err)
	}
}

// SetLoopPoints switches engine-native looping between the provided bounds,
// or off when enabled is false. Callable at any state - the configuration is
// remembered and reapplied to handles of subsequent loads.
func (c *Clock) SetLoopPoints(enabled bool, start float64, end float64) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.loopEnabled = enabled
	c.loopStart = start
	c.loopEnd = end
	if c.handle == nil {
		return
	}

	err := c.engine.SetLoop(c.handle, enabled, start, end)
	if err != nil {
		c.errLog.Printf("could not change loop configuration: %s\n", err)
	}
}

// OnTime registers the callback receiving playback position updates from the
// polling cycle. Only one registration is honored at a time - registering
// replaces the previous callback. The returned function cancels the
// registration; it has no effect once another callback has been registered.
func (c *Clock) OnTime(callback TimeCallback) func() {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.callbackID++
	id := c.callbackID
	c.onTime = callback

	return func() {
		c.lock.Lock()
		defer c.lock.Unlock()

		if c.callbackID == id {
			c.onTime = nil
		}
	}
}

// Dispose cancels polling, releases the engine handle and renders the clock unusable.
// Idempotent.
func (c *Clock) Dispose() {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.state == StateDisposed {
		return
	}

	c.generation++
	c.stopPolling()
	c.releaseHandle()
	c.state = StateDisposed
}

// applyRemembered pushes the remembered rate and loop configuration to a freshly
// decoded handle. Engine errors here are not fatal to the load.
func (c *Clock) applyRemembered() {
	err := c.engine.SetRate(c.handle, c.rate)
	if err != nil {
		c.errLog.Printf("could not apply playback rate to loaded media: %s\n", err)
	}

	err = c.engine.SetLoop(c.handle, c.loopEnabled, c.loopStart, c.loopEnd)
	if err != nil {
		c.errLog.Printf("could not apply loop configuration to loaded media: %s\n", err)
	}
}

func (c *Clock) releaseHandle() {
	if c.handle == nil {
		return
	}

	c.engine.Release(c.handle)
	c.handle = nil
}

func (c *Clock) startPolling() {
	ctx, cancel := context.WithCancel(context.Background())
	c.pollCancel = cancel

	go c.poll(ctx, c.generation)
}

func (c *Clock) stopPolling() {
	if c.pollCancel == nil {
		return
	}

	c.pollCancel()
	c.pollCancel = nil
}

func (c *Clock) poll(ctx context.Context, generation int) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.publishTime(generation)
		}
	}
}

// publishTime samples the engine position and pushes it to the registered callback.
// The generation check under the lock guarantees a tick scheduled before
// cancellation never reads a handle released by a newer load or dispose.
func (c *Clock) publishTime(generation int) {
	c.lock.Lock()
	if c.generation != generation || c.handle == nil {
		c.lock.Unlock()

		return
	}

	currentTime, err := c.engine.Now(c.handle)
	duration := c.handle.Duration()
	callback := c.onTime
	c.lock.Unlock()

	if err != nil {
		c.errLog.Printf("could not read current playback position: %s\n", err)

		return
	}

	if currentTime > duration {
		currentTime = duration
	}
	if currentTime < 0 {
		currentTime = 0
	}

	if callback != nil {
		callback(currentTime)
	}
}
