package state

import (
	"encoding/json"
	"sync"

	"github.com/sarpt/loop-web-api/internal/common"
)

// PlaybackChangeVariant specifies type of change that happened to playback.
type PlaybackChangeVariant string

const (
	// MediaFileChange notifies about change of currently played media file.
	MediaFileChange PlaybackChangeVariant = "mediaFileChange"

	// PauseChange notifies about change to the playback pause state.
	PauseChange PlaybackChangeVariant = "pauseChange"

	// PlaybackRateChange notifies about change of the playback speed.
	PlaybackRateChange PlaybackChangeVariant = "playbackRateChange"

	// PlaybackStoppedChange notifies about playback being stopped completely.
	PlaybackStoppedChange PlaybackChangeVariant = "playbackStoppedChange"

	// PlaybackTimeChange notifies about current timestamp change.
	PlaybackTimeChange PlaybackChangeVariant = "playbackTimeChange"

	// LoopingChange notifies about engine-native looping being switched.
	LoopingChange PlaybackChangeVariant = "loopingChange"
)

// PlaybackChange is used to inform about changes to the Playback.
type PlaybackChange struct {
	Variant PlaybackChangeVariant
}

// Playback contains information about the currently played media file.
// Any modification done on the state should be done by exposed methods which
// guarantee goroutine access safety and notification of subscribers.
type Playback struct {
	broadcaster   *common.Broadcaster[PlaybackChange]
	currentTime   float64
	duration      float64
	lock          *sync.RWMutex
	looping       bool
	mediaFilePath string
	paused        bool
	rate          float64
	stopped       bool
}

type playbackJSON struct {
	CurrentTime   float64 `json:"CurrentTime"`
	Duration      float64 `json:"Duration"`
	Looping       bool    `json:"Looping"`
	MediaFilePath string  `json:"MediaFilePath"`
	Paused        bool    `json:"Paused"`
	Rate          float64 `json:"Rate"`
	Stopped       bool    `json:"Stopped"`
}

// NewPlayback constructs Playback state.
func NewPlayback() *Playback {
	broadcaster := common.NewBroadcaster[PlaybackChange]()
	broadcaster.Broadcast()

	return &Playback{
		broadcaster: broadcaster,
		lock:        &sync.RWMutex{},
		paused:      true,
		rate:        1,
		stopped:     true,
	}
}

// Subscribe registers a subscriber notified about changes to the playback.
// The returned function cancels the subscription.
func (p *Playback) Subscribe(sub func(change PlaybackChange)) func() {
	return p.broadcaster.Subscribe(sub)
}

// MarshalJSON satisfies json.Marshaller.
func (p *Playback) MarshalJSON() ([]byte, error) {
	p.lock.RLock()
	pJSON := playbackJSON{
		CurrentTime:   p.currentTime,
		Duration:      p.duration,
		Looping:       p.looping,
		MediaFilePath: p.mediaFilePath,
		Paused:        p.paused,
		Rate:          p.rate,
		Stopped:       p.stopped,
	}
	p.lock.RUnlock()

	return json.Marshal(pJSON)
}

// CurrentTime returns the most recently published playback timestamp.
func (p *Playback) CurrentTime() float64 {
	p.lock.RLock()
	defer p.lock.RUnlock()

	return p.currentTime
}

// Duration returns duration of the currently played media file.
// Zero when playback is stopped.
func (p *Playback) Duration() float64 {
	p.lock.RLock()
	defer p.lock.RUnlock()

	return p.duration
}

// Looping informs whether engine-native looping is switched on.
func (p *Playback) Looping() bool {
	p.lock.RLock()
	defer p.lock.RUnlock()

	return p.looping
}

// MediaFilePath returns path to the currently played media file.
func (p *Playback) MediaFilePath() string {
	p.lock.RLock()
	defer p.lock.RUnlock()

	return p.mediaFilePath
}

// Paused informs whether playback is paused.
func (p *Playback) Paused() bool {
	p.lock.RLock()
	defer p.lock.RUnlock()

	return p.paused
}

// Rate returns the playback speed multiplier.
func (p *Playback) Rate() float64 {
	p.lock.RLock()
	defer p.lock.RUnlock()

	return p.rate
}

// Stopped informs whether any media file is being played at all.
func (p *Playback) Stopped() bool {
	p.lock.RLock()
	defer p.lock.RUnlock()

	return p.stopped
}

// SetMediaFile changes the currently played media file, changing playback to not stopped.
func (p *Playback) SetMediaFile(path string, duration float64) {
	p.lock.Lock()
	p.mediaFilePath = path
	p.duration = duration
	p.currentTime = 0
	p.stopped = false
	p.lock.Unlock()

	p.broadcaster.Send(PlaybackChange{Variant: MediaFileChange})
}

// SetLooping changes whether engine-native looping is switched on.
func (p *Playback) SetLooping(looping bool) {
	p.lock.Lock()
	p.looping = looping
	p.lock.Unlock()

	p.broadcaster.Send(PlaybackChange{Variant: LoopingChange})
}

// SetPause changes whether playback is paused.
func (p *Playback) SetPause(paused bool) {
	p.lock.Lock()
	p.paused = paused
	p.lock.Unlock()

	p.broadcaster.Send(PlaybackChange{Variant: PauseChange})
}

// SetPlaybackTime changes current time of a playback.
func (p *Playback) SetPlaybackTime(time float64) {
	p.lock.Lock()
	p.currentTime = time
	p.lock.Unlock()

	p.broadcaster.Send(PlaybackChange{Variant: PlaybackTimeChange})
}

// SetRate changes the playback speed multiplier.
func (p *Playback) SetRate(rate float64) {
	p.lock.Lock()
	p.rate = rate
	p.lock.Unlock()

	p.broadcaster.Send(PlaybackChange{Variant: PlaybackRateChange})
}

// Stop clears outdated playback information related to the played media file
// and sets playback to stopped.
func (p *Playback) Stop() {
	p.lock.Lock()
	p.mediaFilePath = ""
	p.duration = 0
	p.currentTime = 0
	p.paused = true
	p.stopped = true
	p.lock.Unlock()

	p.broadcaster.Send(PlaybackChange{Variant: PlaybackStoppedChange})
}
