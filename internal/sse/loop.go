package sse

import (
	"github.com/sarpt/loop-web-api/pkg/state"
)

const (
	loopChannelVariant ChannelVariant = "loop"

	loopReplaySseEvent = "replay"
)

func newLoopChannel(storage *state.Loop) *StateChannel[state.LoopChange] {
	changeHandler := func(res ResponseWriter, change state.LoopChange) error {
		return res.SendChange(storage, loopChannelVariant, string(change.Variant))
	}

	replayHandler := func(res ResponseWriter) error {
		return res.SendChange(storage, loopChannelVariant, loopReplaySseEvent)
	}

	return NewStateChannel(loopChannelVariant, changeHandler, replayHandler)
}
