package sse

import (
	"github.com/sarpt/loop-web-api/pkg/state"
)

const (
	mediaFilesChannelVariant ChannelVariant = "mediaFiles"
)

func newMediaFilesChannel(storage *state.MediaFiles) *StateChannel[state.MediaFilesChange] {
	changeHandler := func(res ResponseWriter, change state.MediaFilesChange) error {
		return res.SendChange(change, mediaFilesChannelVariant, string(change.Variant))
	}

	replayHandler := func(res ResponseWriter) error {
		return res.SendChange(storage, mediaFilesChannelVariant, string(state.AddedMediaFilesChange))
	}

	return NewStateChannel(mediaFilesChannelVariant, changeHandler, replayHandler)
}
