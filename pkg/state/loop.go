package state

import (
	"encoding/json"
	"sync"

	"github.com/sarpt/loop-web-api/internal/common"
	"github.com/sarpt/loop-web-api/pkg/loop"
)

// LoopChangeVariant specifies type of change that happened to the loop session state.
type LoopChangeVariant string

const (
	// WindowChange notifies about the loop window bounds being replaced or cleared.
	WindowChange LoopChangeVariant = "windowChange"

	// QuantizationChange notifies about changes to tempo or auto quantization.
	QuantizationChange LoopChangeVariant = "quantizationChange"
)

// LoopChange is used to inform about changes to the Loop state.
type LoopChange struct {
	Variant LoopChangeVariant
}

// Loop is the session-scoped holder of the loop window and quantization settings.
// The pure operations on both live in pkg/loop - this storage only keeps the
// current values and notifies subscribers on replacement.
type Loop struct {
	broadcaster *common.Broadcaster[LoopChange]
	lock        *sync.RWMutex
	settings    loop.Settings
	window      loop.Window
}

type loopJSON struct {
	Set          bool    `json:"Set"`
	Start        float64 `json:"Start"`
	End          float64 `json:"End"`
	BPM          int     `json:"BPM"`
	BPMSet       bool    `json:"BPMSet"`
	AutoQuantize bool    `json:"AutoQuantize"`
}

// NewLoop constructs Loop state.
func NewLoop() *Loop {
	broadcaster := common.NewBroadcaster[LoopChange]()
	broadcaster.Broadcast()

	return &Loop{
		broadcaster: broadcaster,
		lock:        &sync.RWMutex{},
	}
}

// Subscribe registers a subscriber notified about changes to the loop state.
// The returned function cancels the subscription.
func (l *Loop) Subscribe(sub func(change LoopChange)) func() {
	return l.broadcaster.Subscribe(sub)
}

// MarshalJSON satisfies json.Marshaller.
func (l *Loop) MarshalJSON() ([]byte, error) {
	l.lock.RLock()
	start, end, set := l.window.Bounds()
	bpm, bpmSet := l.settings.BPM()
	lJSON := loopJSON{
		Set:          set,
		Start:        start,
		End:          end,
		BPM:          bpm,
		BPMSet:       bpmSet,
		AutoQuantize: l.settings.Enabled(),
	}
	l.lock.RUnlock()

	return json.Marshal(lJSON)
}

// Window returns the current loop window.
func (l *Loop) Window() loop.Window {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return l.window
}

// Settings returns the current quantization settings.
func (l *Loop) Settings() loop.Settings {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return l.settings
}

// SetWindow replaces the loop window.
func (l *Loop) SetWindow(window loop.Window) {
	l.lock.Lock()
	l.window = window
	l.lock.Unlock()

	l.broadcaster.Send(LoopChange{Variant: WindowChange})
}

// SetSettings replaces the quantization settings.
func (l *Loop) SetSettings(settings loop.Settings) {
	l.lock.Lock()
	l.settings = settings
	l.lock.Unlock()

	l.broadcaster.Send(LoopChange{Variant: QuantizationChange})
}
