package api

import (
	"fmt"
	"os"

	"github.com/sarpt/loop-web-api/pkg/probe"
	"github.com/sarpt/loop-web-api/pkg/state"
)

var (
	// ErrPathNotDirectory occurs when a provided path is not pointing to a directory.
	ErrPathNotDirectory = fmt.Errorf("path does not point to a directory")
)

// AddDirectories starts watching the provided directories for media files.
// Contents of every directory are probed upfront, further additions and
// removals are tracked through filesystem notifications.
func (s *Server) AddDirectories(directories []string) error {
	for _, directory := range directories {
		info, err := os.Stat(directory)
		if err != nil {
			return fmt.Errorf("could not add directory '%s': %w", directory, err)
		}

		if !info.IsDir() {
			return fmt.Errorf("could not add directory '%s': %w", directory, ErrPathNotDirectory)
		}

		err = s.fsWatcher.Add(directory)
		if err != nil {
			return fmt.Errorf("could not watch directory '%s': %w", directory, err)
		}

		go s.probeDirectory(directory)
	}

	return nil
}

func (s *Server) probeDirectory(directory string) {
	s.outLog.Printf("probing directory %s\n", directory)

	results := make(chan probe.Result)

	go probe.Directory(directory, results)
	for probeResult := range results {
		if !probeResult.IsMediaFile() {
			continue
		}

		s.statesRepository.MediaFiles().Add(state.NewMediaFile(probeResult.Path, probeResult.DurationSeconds))
	}

	s.outLog.Printf("finished probing directory %s\n", directory)
}

func (s *Server) probeFile(path string) {
	probeResult, err := probe.File(path)
	if err != nil || !probeResult.IsMediaFile() {
		return
	}

	s.statesRepository.MediaFiles().Add(state.NewMediaFile(probeResult.Path, probeResult.DurationSeconds))
}
