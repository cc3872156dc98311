package probe

import (
	"os"
	"path/filepath"
)

// Directory probes all regular files under the provided directory, sending
// results on the out channel. The channel is closed when the walk finishes.
// Files that could not be probed are skipped.
func Directory(directory string, out chan<- Result) {
	defer close(out)

	filepath.Walk(directory, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}

		if info.IsDir() {
			return nil
		}

		result, err := File(path)
		if err != nil {
			return nil
		}

		out <- result

		return nil
	})
}
