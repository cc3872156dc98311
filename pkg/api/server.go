package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sarpt/loop-web-api/internal/rest"
	"github.com/sarpt/loop-web-api/internal/sse"
	"github.com/sarpt/loop-web-api/pkg/clock"
	"github.com/sarpt/loop-web-api/pkg/mpv"
	"github.com/sarpt/loop-web-api/pkg/state"
)

const (
	logPrefix = "api.Server#"
)

type observePropertyHandler = func(res mpv.ObservePropertyResponse) error

// Server is the session-scoped controller - it exclusively owns the playback
// clock together with its engine, holds all observable session state, and
// exposes the mutator surface consumed by the HTTP layers.
type Server struct {
	address          string
	clock            *clock.Clock
	errLog           *log.Logger
	fsWatcher        *fsnotify.Watcher
	mpvManager       *mpv.Manager
	outLog           *log.Logger
	restServer       *rest.Server
	sseServer        *sse.Server
	statesRepository state.Repository
}

// Config controls behaviour of the api server.
type Config struct {
	Address                 string
	AllowCORS               bool
	ErrWriter               io.Writer
	MpvSocketPath           string
	OutWriter               io.Writer
	PollInterval            time.Duration
	SocketConnectionTimeout time.Duration
	StartMpvInstance        bool
}

// NewServer prepares and returns a server that can be used to handle API calls.
func NewServer(cfg Config) (*Server, error) {
	if cfg.OutWriter == nil {
		cfg.OutWriter = os.Stdout
	}
	if cfg.ErrWriter == nil {
		cfg.ErrWriter = os.Stderr
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("could not initialize filesystem watcher: %w", err)
	}

	managerCfg := mpv.ManagerConfig{
		ErrWriter:               cfg.ErrWriter,
		MpvSocketPath:           cfg.MpvSocketPath,
		OutWriter:               cfg.OutWriter,
		SocketConnectionTimeout: cfg.SocketConnectionTimeout,
		StartMpvInstance:        cfg.StartMpvInstance,
	}
	mpvManager := mpv.NewManager(managerCfg)

	engine := mpv.NewEngine(mpv.EngineConfig{
		Manager:   mpvManager,
		ErrWriter: cfg.ErrWriter,
		OutWriter: cfg.OutWriter,
	})

	playbackClock := clock.NewClock(clock.Config{
		Engine:       engine,
		ErrWriter:    cfg.ErrWriter,
		OutWriter:    cfg.OutWriter,
		PollInterval: cfg.PollInterval,
	})

	statesRepository := state.NewRepository()

	sseServer := sse.NewServer(sse.Config{
		ErrWriter:        cfg.ErrWriter,
		OutWriter:        cfg.OutWriter,
		StatesRepository: statesRepository,
	})

	server := &Server{
		address:          cfg.Address,
		clock:            playbackClock,
		errLog:           log.New(cfg.ErrWriter, logPrefix, log.LstdFlags),
		fsWatcher:        watcher,
		mpvManager:       mpvManager,
		outLog:           log.New(cfg.OutWriter, logPrefix, log.LstdFlags),
		sseServer:        sseServer,
		statesRepository: statesRepository,
	}

	server.restServer = rest.NewServer(rest.Config{
		AllowCORS:        cfg.AllowCORS,
		ErrWriter:        cfg.ErrWriter,
		OutWriter:        cfg.OutWriter,
		StatesRepository: statesRepository,
		Callbacks:        server.restCallbacks(),
	})

	err = server.initWatchers()
	if err != nil {
		return server, errors.New("could not start watching for properties")
	}

	return server, nil
}

// Serve starts handling API endpoints - both REST and SSE.
// It also starts the mpv manager.
// Blocks until either the mpv manager or the http server stops serving (with error or nil).
func (s *Server) Serve() error {
	s.watchForFsChanges()

	mpvManagerErr := make(chan error)
	httpServErr := make(chan error)

	serv := http.Server{
		Addr:    s.address,
		Handler: s.mainHandler(),
	}

	go func() {
		mpvManagerErr <- s.mpvManager.Serve()

		close(mpvManagerErr)
	}()

	go func() {
		s.outLog.Printf("running server at %s\n", s.address)
		err := serv.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			httpServErr <- err
		}

		close(httpServErr)
	}()

	select {
	case err := <-mpvManagerErr:
		serv.Shutdown(context.Background())
		return err
	case err := <-httpServErr:
		s.Close()
		return err
	}
}

// Close disposes the playback clock and releases all resources held by the server.
func (s *Server) Close() {
	s.clock.Dispose()
	s.fsWatcher.Close()
	s.mpvManager.Close()
}

func (s *Server) mainHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/rest/", s.restServer.Handler())
	mux.Handle("/sse/", s.sseServer.Handler())

	return mux
}

func (s *Server) initWatchers() error {
	s.clock.OnTime(func(currentTime float64) {
		s.statesRepository.Playback().SetPlaybackTime(currentTime)
	})

	observePropertyResponses := make(chan mpv.ObservePropertyResponse)
	observePropertyHandlers := map[string]observePropertyHandler{
		mpv.PathProperty:  s.handlePathEvent,
		mpv.PauseProperty: s.handlePauseEvent,
	}
	go s.watchObservePropertyResponses(observePropertyHandlers, observePropertyResponses)

	return s.subscribeToMpvProperties(observePropertyResponses)
}

func (s *Server) watchObservePropertyResponses(handlers map[string]observePropertyHandler, responses chan mpv.ObservePropertyResponse) {
	for {
		observePropertyResponse, open := <-responses
		if !open {
			return
		}

		observeHandler, ok := handlers[observePropertyResponse.Property]
		if !ok {
			continue
		}

		err := observeHandler(observePropertyResponse)
		if err != nil {
			s.errLog.Printf("error during '%s' property observer handling: %s\n", observePropertyResponse.Property, err)
		}
	}
}

func (s *Server) subscribeToMpvProperties(observeResponses chan mpv.ObservePropertyResponse) error {
	for _, propertyName := range mpv.ObservableProperties {
		_, err := s.mpvManager.SubscribeToProperty(propertyName, observeResponses)
		if err != nil {
			return fmt.Errorf("could not initialize watchers due to error when observing property: %w", err)
		}
	}

	return nil
}

func (s *Server) restCallbacks() rest.Callbacks {
	return rest.Callbacks{
		ClearLoop:       s.ClearLoop,
		ExtendLoopEnd:   s.ExtendLoopEnd,
		ExtendLoopStart: s.ExtendLoopStart,
		LoadFile:        s.LoadFile,
		MoveLoop:        s.MoveLoop,
		Pause:           s.Pause,
		Play:            s.Play,
		QuantizeNow:     s.QuantizeNow,
		ScaleLoop:       s.ScaleLoop,
		SetAutoQuantize: s.SetAutoQuantize,
		SetBPM:          s.SetBPM,
		SetLoopEnd:      s.SetLoopEnd,
		SetLoopPoints:   s.SetLoopPoints,
		SetLoopStart:    s.SetLoopStart,
		SetPlaybackRate: s.SetPlaybackRate,
		StopPlayback:    s.StopPlayback,
		ToggleLooping:   s.ToggleLooping,
	}
}
