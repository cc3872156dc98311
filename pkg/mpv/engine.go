package mpv

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/sarpt/loop-web-api/pkg/clock"
	"github.com/sarpt/loop-web-api/pkg/probe"
)

const (
	engineLogPrefix = "mpv.Engine#"
)

var (
	// ErrNotAMediaFile informs about a decode attempt on a path that does not hold decodable media with audio.
	ErrNotAMediaFile = errors.New("path does not point to a decodable media file with audio")
)

// EngineConfig controls behaviour of the mpv-backed engine.
type EngineConfig struct {
	Manager   *Manager
	ErrWriter io.Writer
	OutWriter io.Writer
}

// Engine satisfies clock.Engine on top of a single mpv instance.
// mpv plays one file at a time, so only the handle of the most recent Decode
// is live - which matches the clock's last-load-wins contract, since the clock
// releases the previous handle before decoding a new one.
type Engine struct {
	manager *Manager
	errLog  *log.Logger
	outLog  *log.Logger
}

type engineHandle struct {
	path     string
	duration float64
}

// Duration returns the probed duration of the media in seconds.
func (h *engineHandle) Duration() float64 {
	return h.duration
}

// NewEngine constructs an Engine dispatching to the provided manager.
func NewEngine(cfg EngineConfig) *Engine {
	return &Engine{
		manager: cfg.Manager,
		errLog:  log.New(cfg.ErrWriter, engineLogPrefix, log.LstdFlags),
		outLog:  log.New(cfg.OutWriter, engineLogPrefix, log.LstdFlags),
	}
}

// Decode validates media under the path with ffprobe and instructs mpv to load it paused.
// Probing failures and files without an audio stream are decode errors.
func (e *Engine) Decode(path string) (clock.Handle, error) {
	result, err := probe.File(path)
	if err != nil {
		return nil, err
	}

	if !result.IsMediaFile() {
		return nil, fmt.Errorf("%w: '%s'", ErrNotAMediaFile, path)
	}

	err = e.manager.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not load media file '%s' into mpv: %w", path, err)
	}

	e.outLog.Printf("decoded media file '%s' (%f seconds)\n", path, result.DurationSeconds)
	return &engineHandle{
		path:     path,
		duration: result.DurationSeconds,
	}, nil
}

// Start resumes rendering of the handle's media.
func (e *Engine) Start(handle clock.Handle) error {
	if _, err := e.liveHandle(handle); err != nil {
		return err
	}

	return e.manager.ChangePause(false)
}

// Stop suspends rendering of the handle's media.
func (e *Engine) Stop(handle clock.Handle) error {
	if _, err := e.liveHandle(handle); err != nil {
		return err
	}

	return e.manager.ChangePause(true)
}

// SetRate changes the playback speed multiplier.
func (e *Engine) SetRate(handle clock.Handle, rate float64) error {
	if _, err := e.liveHandle(handle); err != nil {
		return err
	}

	return e.manager.SetSpeed(rate)
}

// SetLoop switches mpv's native A-B looping between the provided bounds.
func (e *Engine) SetLoop(handle clock.Handle, enabled bool, start float64, end float64) error {
	if _, err := e.liveHandle(handle); err != nil {
		return err
	}

	if !enabled {
		return e.manager.ClearABLoop()
	}

	return e.manager.SetABLoop(start, end)
}

// Now returns the current playback position of the handle's media in seconds.
func (e *Engine) Now(handle clock.Handle) (float64, error) {
	if _, err := e.liveHandle(handle); err != nil {
		return 0, err
	}

	return e.manager.PlaybackTime()
}

// Release unloads the handle's media from mpv.
func (e *Engine) Release(handle clock.Handle) {
	if _, err := e.liveHandle(handle); err != nil {
		return
	}

	err := e.manager.Stop()
	if err != nil {
		e.errLog.Printf("could not unload media during handle release: %s\n", err)
	}
}

func (e *Engine) liveHandle(handle clock.Handle) (*engineHandle, error) {
	live, ok := handle.(*engineHandle)
	if !ok || live == nil {
		return nil, fmt.Errorf("handle was not produced by this engine")
	}

	return live, nil
}
