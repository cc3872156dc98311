package rest

import (
	"io"
	"log"

	"github.com/sarpt/loop-web-api/pkg/loop"
	"github.com/sarpt/loop-web-api/pkg/state"
)

const (
	logPrefix = "rest.Server#"
)

// Callbacks are session mutators provided by the owner of the session state.
// Mutators returning bool report whether the argument was accepted - a false
// result means the previous state was kept and is not an error.
type Callbacks struct {
	ClearLoop       func()
	ExtendLoopEnd   func(delta float64) bool
	ExtendLoopStart func(delta float64) bool
	LoadFile        func(path string) error
	MoveLoop        func(direction loop.Direction) bool
	Pause           func()
	Play            func()
	QuantizeNow     func() bool
	ScaleLoop       func(factor float64) bool
	SetAutoQuantize func(enabled bool)
	SetBPM          func(bpm int) bool
	SetLoopEnd      func(end float64) bool
	SetLoopPoints   func(start float64, end float64) bool
	SetLoopStart    func(start float64) bool
	SetPlaybackRate func(rate float64) bool
	StopPlayback    func()
	ToggleLooping   func(enabled bool) bool
}

// Server is responsible for creating REST handlers, argument parsing and validation.
type Server struct {
	allowCORS        bool
	callbacks        Callbacks
	errLog           *log.Logger
	outLog           *log.Logger
	statesRepository state.Repository
}

// Config controls behaviour of the REST server.
type Config struct {
	AllowCORS        bool
	Callbacks        Callbacks
	ErrWriter        io.Writer
	OutWriter        io.Writer
	StatesRepository state.Repository
}

// NewServer returns rest.Server instance.
func NewServer(cfg Config) *Server {
	return &Server{
		allowCORS:        cfg.AllowCORS,
		callbacks:        cfg.Callbacks,
		errLog:           log.New(cfg.ErrWriter, logPrefix, log.LstdFlags),
		outLog:           log.New(cfg.OutWriter, logPrefix, log.LstdFlags),
		statesRepository: cfg.StatesRepository,
	}
}
