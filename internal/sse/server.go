package sse

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"

	"github.com/sarpt/loop-web-api/pkg/state"
)

const (
	logPrefix = "sse.Server#"

	registerPath = "/sse/channels"

	replaySseStateArg = "replay"
	sseChannelArg     = "channel"
)

// Server holds information about handled SSE connections and their observers.
type Server struct {
	channels         map[ChannelVariant]channel
	errLog           *log.Logger
	outLog           *log.Logger
	statesRepository state.Repository
}

// Config controls behaviour of the SSE server.
type Config struct {
	ErrWriter        io.Writer
	OutWriter        io.Writer
	StatesRepository state.Repository
}

// NewServer prepares and returns SSE server to handle SSE connections and observers.
// The returned server is already subscribed to the state storages.
func NewServer(cfg Config) *Server {
	server := &Server{
		channels:         map[ChannelVariant]channel{},
		errLog:           log.New(cfg.ErrWriter, logPrefix, log.LstdFlags),
		outLog:           log.New(cfg.OutWriter, logPrefix, log.LstdFlags),
		statesRepository: cfg.StatesRepository,
	}

	loopChannel := newLoopChannel(cfg.StatesRepository.Loop())
	cfg.StatesRepository.Loop().Subscribe(loopChannel.BroadcastToChannelObservers)
	server.channels[loopChannel.Variant()] = loopChannel

	mediaFilesChannel := newMediaFilesChannel(cfg.StatesRepository.MediaFiles())
	cfg.StatesRepository.MediaFiles().Subscribe(mediaFilesChannel.BroadcastToChannelObservers)
	server.channels[mediaFilesChannel.Variant()] = mediaFilesChannel

	playbackChannel := newPlaybackChannel(cfg.StatesRepository.Playback())
	cfg.StatesRepository.Playback().Subscribe(playbackChannel.BroadcastToChannelObservers)
	server.channels[playbackChannel.Variant()] = playbackChannel

	return server
}

// Handler returns http.Handler responsible for SSE handling subtree.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(registerPath, s.createSseRegisterHandler())

	return mux
}

func (s *Server) createSseRegisterHandler() http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		sseResWriter, err := sseResponseWriter(res)
		if err != nil {
			res.WriteHeader(400)
			return
		}

		wg := &sync.WaitGroup{}

		channelVariants := req.URL.Query()[sseChannelArg]
		for _, reqChannel := range channelVariants {
			channelVariant := ChannelVariant(reqChannel)

			sseChannel, ok := s.channels[channelVariant]
			if !ok {
				continue
			}

			wg.Add(1)
			go s.observeChannelVariant(sseResWriter, req, sseChannel, wg)
		}

		wg.Wait()
		s.outLog.Printf("all sse channels closed for %s", req.RemoteAddr)
	}
}

func (s *Server) observeChannelVariant(res ResponseWriter, req *http.Request, sseChannel channel, wg *sync.WaitGroup) {
	defer wg.Done()

	s.outLog.Printf("added %s observer with addr %s\n", sseChannel.Variant(), req.RemoteAddr)

	if replaySseState(req) {
		err := sseChannel.Replay(res)
		if err != nil {
			s.errLog.Println(fmt.Sprintf("could not replay data on sse: %s", err.Error()))
		}
	}

	err := sseChannel.ServeObserver(req, res)
	if err != nil {
		s.errLog.Println(err.Error())
	}

	s.outLog.Printf("removing %s observer with addr %s\n", sseChannel.Variant(), req.RemoteAddr)
}

func replaySseState(req *http.Request) bool {
	replay, ok := req.URL.Query()[replaySseStateArg]

	return ok && len(replay) > 0 && replay[0] == "true"
}
