package state

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/sarpt/loop-web-api/internal/common"
)

var (
	// ErrNoMediaFileAvailable occurs when a media file with the specified path does not exist.
	ErrNoMediaFileAvailable = errors.New("media file with specified path does not exist")
)

const (
	// AddedMediaFilesChange notifies about addition of media files to the list of media files handled by the application.
	AddedMediaFilesChange MediaFilesChangeVariant = "added"

	// RemovedMediaFilesChange notifies about removal of media files from the list.
	RemovedMediaFilesChange MediaFilesChangeVariant = "removed"
)

// MediaFilesChangeVariant specifies what type of change to media files list items belong to in a MediaFilesChange type.
type MediaFilesChangeVariant string

// MediaFilesChange holds information about changes to the list of media files being served.
type MediaFilesChange struct {
	Variant MediaFilesChangeVariant
	Items   map[string]MediaFile
}

// MarshalJSON returns change items in JSON format. Satisfies json.Marshaller.
func (mc MediaFilesChange) MarshalJSON() ([]byte, error) {
	return json.Marshal(mc.Items)
}

// MediaFile specifies a loadable media file found under one of the watched directories.
type MediaFile struct {
	uuid            string
	path            string
	durationSeconds float64
}

type mediaFileJSON struct {
	UUID            string  `json:"Uuid"`
	Path            string  `json:"Path"`
	DurationSeconds float64 `json:"DurationSeconds"`
}

// NewMediaFile constructs a MediaFile with a fresh identity.
func NewMediaFile(path string, durationSeconds float64) MediaFile {
	return MediaFile{
		uuid:            uuid.NewString(),
		path:            path,
		durationSeconds: durationSeconds,
	}
}

// Path returns the filesystem path of the media file.
func (m MediaFile) Path() string {
	return m.path
}

// DurationSeconds returns the probed duration of the media file.
func (m MediaFile) DurationSeconds() float64 {
	return m.durationSeconds
}

// MarshalJSON satisfies json.Marshaller.
func (m MediaFile) MarshalJSON() ([]byte, error) {
	return json.Marshal(mediaFileJSON{
		UUID:            m.uuid,
		Path:            m.path,
		DurationSeconds: m.durationSeconds,
	})
}

// MediaFiles is an aggregate state of the media files being served by the server instance.
// Any modification done on the state should be done by exposed methods which should guarantee goroutine access safety.
type MediaFiles struct {
	broadcaster *common.Broadcaster[MediaFilesChange]
	items       map[string]MediaFile
	lock        *sync.RWMutex
}

// NewMediaFiles constructs MediaFiles state.
func NewMediaFiles() *MediaFiles {
	broadcaster := common.NewBroadcaster[MediaFilesChange]()
	broadcaster.Broadcast()

	return &MediaFiles{
		broadcaster: broadcaster,
		items:       map[string]MediaFile{},
		lock:        &sync.RWMutex{},
	}
}

// Subscribe registers a subscriber notified about changes to the media files list.
// The returned function cancels the subscription.
func (m *MediaFiles) Subscribe(sub func(change MediaFilesChange)) func() {
	return m.broadcaster.Subscribe(sub)
}

// MarshalJSON satisfies json.Marshaller.
func (m *MediaFiles) MarshalJSON() ([]byte, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	return json.Marshal(m.items)
}

// Add appends a media file to the list of media files served on current server instance.
func (m *MediaFiles) Add(mediaFile MediaFile) {
	path := mediaFile.path

	m.lock.Lock()
	if _, ok := m.items[path]; ok {
		m.lock.Unlock()

		return
	}

	m.items[path] = mediaFile
	m.lock.Unlock()

	m.broadcaster.Send(MediaFilesChange{
		Variant: AddedMediaFilesChange,
		Items: map[string]MediaFile{
			path: mediaFile,
		},
	})
}

// ByPath returns a media file with the provided path.
func (m *MediaFiles) ByPath(path string) (MediaFile, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	mediaFile, ok := m.items[path]
	if !ok {
		return MediaFile{}, ErrNoMediaFileAvailable
	}

	return mediaFile, nil
}

// All returns a copy of all media files being served.
func (m *MediaFiles) All() map[string]MediaFile {
	m.lock.RLock()
	defer m.lock.RUnlock()

	all := map[string]MediaFile{}
	for path, mediaFile := range m.items {
		all[path] = mediaFile
	}

	return all
}

// Take removes a media file with the provided path from the list, returning the removed entry.
func (m *MediaFiles) Take(path string) (MediaFile, error) {
	m.lock.Lock()
	mediaFile, ok := m.items[path]
	if !ok {
		m.lock.Unlock()

		return MediaFile{}, ErrNoMediaFileAvailable
	}

	delete(m.items, path)
	m.lock.Unlock()

	m.broadcaster.Send(MediaFilesChange{
		Variant: RemovedMediaFilesChange,
		Items: map[string]MediaFile{
			path: mediaFile,
		},
	})

	return mediaFile, nil
}
