package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/sarpt/loop-web-api/internal/common"
	"github.com/sarpt/loop-web-api/pkg/loop"
	"github.com/sarpt/loop-web-api/pkg/timecodec"
)

const (
	autoQuantizeArg = "autoQuantize"
	bpmArg          = "bpm"
	clearArg        = "clear"
	endArg          = "end"
	extendEndArg    = "extendEnd"
	extendStartArg  = "extendStart"
	loopingArg      = "looping"
	moveArg         = "move"
	quantizeArg     = "quantize"
	scaleArg        = "scale"
	startArg        = "start"
)

var (
	errMalformedTimeText  = fmt.Errorf("text does not specify time in any of the accepted forms")
	errMalformedDirection = fmt.Errorf("direction is neither -1 nor 1")
)

func (s *Server) getLoopHandler(res http.ResponseWriter, req *http.Request) {
	out, err := json.Marshal(s.statesRepository.Loop())
	if err != nil {
		res.WriteHeader(500)
		res.Write([]byte(fmt.Sprintf("could not marshal loop state to JSON: %s\n", err)))

		return
	}

	res.WriteHeader(200)
	res.Write(out)
}

// startHandler sets the loop start. When the same request also carries the end
// argument, both bounds are replaced at once and the end handler backs off.
func (s *Server) startHandler(res http.ResponseWriter, req *http.Request) error {
	start, ok := timecodec.Parse(req.PostFormValue(startArg))
	if !ok {
		return errMalformedTimeText
	}

	if req.PostForm.Has(endArg) {
		end, ok := timecodec.Parse(req.PostFormValue(endArg))
		if !ok {
			return errMalformedTimeText
		}

		s.outLog.Printf("setting loop points to (%s, %s) due to request from %s\n", timecodec.Format(start), timecodec.Format(end), req.RemoteAddr)
		s.noteRejection(startArg, s.callbacks.SetLoopPoints(start, end))

		return nil
	}

	s.outLog.Printf("setting loop start to %s due to request from %s\n", timecodec.Format(start), req.RemoteAddr)
	s.noteRejection(startArg, s.callbacks.SetLoopStart(start))

	return nil
}

func (s *Server) endHandler(res http.ResponseWriter, req *http.Request) error {
	if req.PostForm.Has(startArg) {
		return nil // both bounds already handled by startHandler.
	}

	end, ok := timecodec.Parse(req.PostFormValue(endArg))
	if !ok {
		return errMalformedTimeText
	}

	s.outLog.Printf("setting loop end to %s due to request from %s\n", timecodec.Format(end), req.RemoteAddr)
	s.noteRejection(endArg, s.callbacks.SetLoopEnd(end))

	return nil
}

func (s *Server) moveHandler(res http.ResponseWriter, req *http.Request) error {
	direction, err := parseDirection(req.PostFormValue(moveArg))
	if err != nil {
		return err
	}

	s.outLog.Printf("moving loop window in direction %d due to request from %s\n", direction, req.RemoteAddr)
	s.noteRejection(moveArg, s.callbacks.MoveLoop(direction))

	return nil
}

func (s *Server) scaleHandler(res http.ResponseWriter, req *http.Request) error {
	factor, err := strconv.ParseFloat(req.PostFormValue(scaleArg), 64)
	if err != nil {
		return err
	}

	s.outLog.Printf("scaling loop window by %f due to request from %s\n", factor, req.RemoteAddr)
	s.noteRejection(scaleArg, s.callbacks.ScaleLoop(factor))

	return nil
}

func (s *Server) extendStartHandler(res http.ResponseWriter, req *http.Request) error {
	delta, err := strconv.ParseFloat(req.PostFormValue(extendStartArg), 64)
	if err != nil {
		return err
	}

	s.outLog.Printf("extending loop start by %f seconds due to request from %s\n", delta, req.RemoteAddr)
	s.noteRejection(extendStartArg, s.callbacks.ExtendLoopStart(delta))

	return nil
}

func (s *Server) extendEndHandler(res http.ResponseWriter, req *http.Request) error {
	delta, err := strconv.ParseFloat(req.PostFormValue(extendEndArg), 64)
	if err != nil {
		return err
	}

	s.outLog.Printf("extending loop end by %f seconds due to request from %s\n", delta, req.RemoteAddr)
	s.noteRejection(extendEndArg, s.callbacks.ExtendLoopEnd(delta))

	return nil
}

func (s *Server) bpmHandler(res http.ResponseWriter, req *http.Request) error {
	bpm, err := strconv.Atoi(req.PostFormValue(bpmArg))
	if err != nil {
		return err
	}

	s.outLog.Printf("changing quantization tempo to %d bpm due to request from %s\n", bpm, req.RemoteAddr)
	s.noteRejection(bpmArg, s.callbacks.SetBPM(bpm))

	return nil
}

func (s *Server) autoQuantizeHandler(res http.ResponseWriter, req *http.Request) error {
	enabled, err := strconv.ParseBool(req.PostFormValue(autoQuantizeArg))
	if err != nil {
		return err
	}

	s.outLog.Printf("switching auto quantization to %t due to request from %s\n", enabled, req.RemoteAddr)
	s.callbacks.SetAutoQuantize(enabled)

	return nil
}

func (s *Server) quantizeHandler(res http.ResponseWriter, req *http.Request) error {
	quantize, err := strconv.ParseBool(req.PostFormValue(quantizeArg))
	if err != nil {
		return err
	}

	if !quantize {
		return nil
	}

	s.outLog.Printf("quantizing loop window due to request from %s\n", req.RemoteAddr)
	s.noteRejection(quantizeArg, s.callbacks.QuantizeNow())

	return nil
}

func (s *Server) loopingHandler(res http.ResponseWriter, req *http.Request) error {
	enabled, err := strconv.ParseBool(req.PostFormValue(loopingArg))
	if err != nil {
		return err
	}

	s.outLog.Printf("switching looping to %t due to request from %s\n", enabled, req.RemoteAddr)
	s.noteRejection(loopingArg, s.callbacks.ToggleLooping(enabled))

	return nil
}

func (s *Server) clearHandler(res http.ResponseWriter, req *http.Request) error {
	clear, err := strconv.ParseBool(req.PostFormValue(clearArg))
	if err != nil {
		return err
	}

	if !clear {
		return nil
	}

	s.outLog.Printf("clearing loop window due to request from %s\n", req.RemoteAddr)
	s.callbacks.ClearLoop()

	return nil
}

// noteRejection logs arguments refused by the session. Rejections keep the
// previous state in effect and are deliberately not surfaced as request errors.
func (s *Server) noteRejection(argument string, accepted bool) {
	if accepted {
		return
	}

	s.outLog.Printf("'%s' argument rejected, previous state kept\n", argument)
}

func (s *Server) postLoopFormArgumentsHandlers() map[string]common.FormArgument {
	return map[string]common.FormArgument{
		autoQuantizeArg: {
			Handle: s.autoQuantizeHandler,
			Validate: func(req *http.Request) error {
				_, err := strconv.ParseBool(req.PostFormValue(autoQuantizeArg))
				return err
			},
		},
		bpmArg: {
			Handle: s.bpmHandler,
			Validate: func(req *http.Request) error {
				_, err := strconv.Atoi(req.PostFormValue(bpmArg))
				return err
			},
		},
		clearArg: {
			Handle: s.clearHandler,
			Validate: func(req *http.Request) error {
				_, err := strconv.ParseBool(req.PostFormValue(clearArg))
				return err
			},
		},
		endArg: {
			Handle: s.endHandler,
			Validate: func(req *http.Request) error {
				return validateTimeText(req.PostFormValue(endArg))
			},
		},
		extendEndArg: {
			Handle: s.extendEndHandler,
			Validate: func(req *http.Request) error {
				_, err := strconv.ParseFloat(req.PostFormValue(extendEndArg), 64)
				return err
			},
		},
		extendStartArg: {
			Handle: s.extendStartHandler,
			Validate: func(req *http.Request) error {
				_, err := strconv.ParseFloat(req.PostFormValue(extendStartArg), 64)
				return err
			},
		},
		loopingArg: {
			Handle: s.loopingHandler,
			Validate: func(req *http.Request) error {
				_, err := strconv.ParseBool(req.PostFormValue(loopingArg))
				return err
			},
		},
		moveArg: {
			Handle: s.moveHandler,
			Validate: func(req *http.Request) error {
				_, err := parseDirection(req.PostFormValue(moveArg))
				return err
			},
		},
		quantizeArg: {
			Handle: s.quantizeHandler,
			Validate: func(req *http.Request) error {
				_, err := strconv.ParseBool(req.PostFormValue(quantizeArg))
				return err
			},
		},
		scaleArg: {
			Handle: s.scaleHandler,
			Validate: func(req *http.Request) error {
				_, err := strconv.ParseFloat(req.PostFormValue(scaleArg), 64)
				return err
			},
		},
		startArg: {
			Handle: s.startHandler,
			Validate: func(req *http.Request) error {
				return validateTimeText(req.PostFormValue(startArg))
			},
		},
	}
}

func validateTimeText(text string) error {
	_, ok := timecodec.Parse(text)
	if !ok {
		return errMalformedTimeText
	}

	return nil
}

func parseDirection(text string) (loop.Direction, error) {
	value, err := strconv.Atoi(text)
	if err != nil {
		return 0, err
	}

	direction := loop.Direction(value)
	if direction != loop.TowardsStart && direction != loop.TowardsEnd {
		return 0, errMalformedDirection
	}

	return direction, nil
}
