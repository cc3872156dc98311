package sse

import (
	"net/http"
	"sync"
)

// ChannelVariant specifies the SSE channel a change event belongs to.
type ChannelVariant string

type channel interface {
	Replay(res ResponseWriter) error
	ServeObserver(req *http.Request, res ResponseWriter) error
	Variant() ChannelVariant
}

type changeHandler[CT any] func(res ResponseWriter, change CT) error
type replayHandler func(res ResponseWriter) error

// StateChannel distributes changes of a single state storage to its SSE observers.
type StateChannel[CT any] struct {
	changeHandler changeHandler[CT]
	lock          *sync.RWMutex
	observers     map[string]chan CT
	replayHandler replayHandler
	variant       ChannelVariant
}

func NewStateChannel[CT any](variant ChannelVariant, change changeHandler[CT], replay replayHandler) *StateChannel[CT] {
	return &StateChannel[CT]{
		changeHandler: change,
		lock:          &sync.RWMutex{},
		observers:     map[string]chan CT{},
		replayHandler: replay,
		variant:       variant,
	}
}

// BroadcastToChannelObservers is a fan-out dispatcher notifying all channel observers about a state change.
func (sc *StateChannel[CT]) BroadcastToChannelObservers(change CT) {
	sc.lock.RLock()
	defer sc.lock.RUnlock()

	for _, observer := range sc.observers {
		select {
		case observer <- change:
		default: // observer being removed or not keeping up, drop instead of blocking the dispatcher.
		}
	}
}

func (sc *StateChannel[CT]) Replay(res ResponseWriter) error {
	return sc.replayHandler(res)
}

// ServeObserver streams changes of the channel's state to a single observer until its request is done.
func (sc *StateChannel[CT]) ServeObserver(req *http.Request, res ResponseWriter) error {
	remoteAddr := req.RemoteAddr
	// Buffer of 1 so that the fan-out dispatcher holding a read lock is not blocked
	// by an observer that is already past its last select iteration.
	changes := make(chan CT, 1)

	sc.lock.Lock()
	sc.observers[remoteAddr] = changes
	sc.lock.Unlock()

	defer func() {
		sc.lock.Lock()
		delete(sc.observers, remoteAddr)
		sc.lock.Unlock()
	}()

	for {
		select {
		case change := <-changes:
			err := sc.changeHandler(res, change)
			if err != nil {
				return err
			}
		case <-req.Context().Done():
			return nil
		}
	}
}

func (sc *StateChannel[CT]) Variant() ChannelVariant {
	return sc.variant
}
