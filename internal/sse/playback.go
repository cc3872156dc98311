package sse

import (
	"github.com/sarpt/loop-web-api/pkg/state"
)

const (
	playbackChannelVariant ChannelVariant = "playback"

	playbackReplaySseEvent = "replay"
)

func newPlaybackChannel(storage *state.Playback) *StateChannel[state.PlaybackChange] {
	changeHandler := func(res ResponseWriter, change state.PlaybackChange) error {
		if storage.Stopped() {
			return res.SendEmptyChange(playbackChannelVariant, string(change.Variant))
		}

		return res.SendChange(storage, playbackChannelVariant, string(change.Variant))
	}

	replayHandler := func(res ResponseWriter) error {
		return res.SendChange(storage, playbackChannelVariant, playbackReplaySseEvent)
	}

	return NewStateChannel(playbackChannelVariant, changeHandler, replayHandler)
}
