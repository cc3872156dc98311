package state

// Repository gives access to all session-scoped state storages.
type Repository interface {
	Loop() *Loop
	MediaFiles() *MediaFiles
	Playback() *Playback
}

type repository struct {
	loop       *Loop
	mediaFiles *MediaFiles
	playback   *Playback
}

// NewRepository constructs all state storages for a single session.
func NewRepository() Repository {
	return &repository{
		loop:       NewLoop(),
		mediaFiles: NewMediaFiles(),
		playback:   NewPlayback(),
	}
}

func (r *repository) Loop() *Loop {
	return r.loop
}

func (r *repository) MediaFiles() *MediaFiles {
	return r.mediaFiles
}

func (r *repository) Playback() *Playback {
	return r.playback
}
