package rest

import (
	"net/http"

	"github.com/sarpt/loop-web-api/internal/common"
)

const (
	loopPath       = "/rest/loop"
	mediaFilesPath = "/rest/media-files"
	playbackPath   = "/rest/playback"
)

// Handler returns http.Handler responsible for REST handling subtree.
func (s *Server) Handler() http.Handler {
	playbackHandlers := map[string]http.HandlerFunc{
		http.MethodPost: common.CreateFormHandler(s.postPlaybackFormArgumentsHandlers()),
		http.MethodGet:  s.getPlaybackHandler,
	}

	loopHandlers := map[string]http.HandlerFunc{
		http.MethodPost: common.CreateFormHandler(s.postLoopFormArgumentsHandlers()),
		http.MethodGet:  s.getLoopHandler,
	}

	mediaFilesHandlers := map[string]http.HandlerFunc{
		http.MethodGet: s.getMediaFilesHandler,
	}

	allHandlers := map[string]common.MethodHandlers{
		loopPath:       loopHandlers,
		mediaFilesPath: mediaFilesHandlers,
		playbackPath:   playbackHandlers,
	}

	mux := http.NewServeMux()
	for path, methodHandlers := range allHandlers {
		cfg := common.PathHandlerConfig{
			AllowCORS:      s.allowCORS,
			MethodHandlers: methodHandlers,
		}
		mux.HandleFunc(path, common.PathHandler(cfg))
	}

	return mux
}
