package api

import (
	"errors"

	"github.com/fsnotify/fsnotify"

	"github.com/sarpt/loop-web-api/pkg/state"
)

func shouldProbeMediaPath(op fsnotify.Op) bool {
	return op&fsnotify.Create == fsnotify.Create || op&fsnotify.Write == fsnotify.Write
}

func shouldRemoveMediaPath(op fsnotify.Op) bool {
	return op&fsnotify.Remove == fsnotify.Remove || op&fsnotify.Rename == fsnotify.Rename
}

func (s *Server) handleFsEvent(event fsnotify.Event) error {
	if shouldRemoveMediaPath(event.Op) {
		_, err := s.statesRepository.MediaFiles().Take(event.Name)
		if errors.Is(err, state.ErrNoMediaFileAvailable) {
			return nil // a path that never probed as media, nothing to remove.
		}

		s.outLog.Printf("removing media file '%s'\n", event.Name)
		return err
	}

	if shouldProbeMediaPath(event.Op) {
		go s.probeFile(event.Name)
	}

	return nil
}

func (s *Server) watchForFsChanges() {
	go func() {
		for {
			select {
			case event, ok := <-s.fsWatcher.Events:
				if !ok {
					return
				}

				err := s.handleFsEvent(event)
				if err != nil {
					s.errLog.Printf("could not handle filesystem event for '%s': %s\n", event.Name, err)
				}
			case err, ok := <-s.fsWatcher.Errors:
				if !ok {
					return
				}

				s.errLog.Printf("filesystem watcher error: %s\n", err)
			}
		}
	}()
}
