package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/sarpt/loop-web-api/internal/common"
)

const (
	pathArg  = "path"
	pauseArg = "pause"
	rateArg  = "rate"
	stopArg  = "stop"
)

func (s *Server) getPlaybackHandler(res http.ResponseWriter, req *http.Request) {
	out, err := json.Marshal(s.statesRepository.Playback())
	if err != nil {
		res.WriteHeader(500)
		res.Write([]byte(fmt.Sprintf("could not marshal playback state to JSON: %s\n", err)))

		return
	}

	res.WriteHeader(200)
	res.Write(out)
}

func (s *Server) pathHandler(res http.ResponseWriter, req *http.Request) error {
	filePath := req.PostFormValue(pathArg)

	s.outLog.Printf("loading file '%s' due to request from %s\n", filePath, req.RemoteAddr)

	return s.callbacks.LoadFile(filePath)
}

func (s *Server) pauseHandler(res http.ResponseWriter, req *http.Request) error {
	pause, err := strconv.ParseBool(req.PostFormValue(pauseArg))
	if err != nil {
		return err
	}

	s.outLog.Printf("changing pause to %t due to request from %s\n", pause, req.RemoteAddr)
	if pause {
		s.callbacks.Pause()
	} else {
		s.callbacks.Play()
	}

	return nil
}

func (s *Server) rateHandler(res http.ResponseWriter, req *http.Request) error {
	rate, err := strconv.ParseFloat(req.PostFormValue(rateArg), 64)
	if err != nil {
		return err
	}

	s.outLog.Printf("changing playback rate to %f due to request from %s\n", rate, req.RemoteAddr)
	if !s.callbacks.SetPlaybackRate(rate) {
		s.outLog.Printf("playback rate %f rejected, previous rate kept\n", rate)
	}

	return nil
}

func (s *Server) stopHandler(res http.ResponseWriter, req *http.Request) error {
	stop, err := strconv.ParseBool(req.PostFormValue(stopArg))
	if err != nil {
		return err
	}

	if !stop {
		return nil
	}

	s.outLog.Printf("stopping playback due to request from %s\n", req.RemoteAddr)
	s.callbacks.StopPlayback()

	return nil
}

func (s *Server) postPlaybackFormArgumentsHandlers() map[string]common.FormArgument {
	return map[string]common.FormArgument{
		pathArg: {
			Handle: s.pathHandler,
		},
		pauseArg: {
			Handle: s.pauseHandler,
			Validate: func(req *http.Request) error {
				_, err := strconv.ParseBool(req.PostFormValue(pauseArg))
				return err
			},
		},
		rateArg: {
			Handle: s.rateHandler,
			Validate: func(req *http.Request) error {
				_, err := strconv.ParseFloat(req.PostFormValue(rateArg), 64)
				return err
			},
		},
		stopArg: {
			Handle: s.stopHandler,
			Validate: func(req *http.Request) error {
				_, err := strconv.ParseBool(req.PostFormValue(stopArg))
				return err
			},
		},
	}
}
