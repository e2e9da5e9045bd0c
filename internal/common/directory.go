package common

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Directory describes a library directory from which audio files are sourced.
type Directory struct {
	Path    string
	Watched bool
}

// EnsureDirectoryPath appends a trailing separator to path when it is missing.
func EnsureDirectoryPath(path string) string {
	if path == "" || path[len(path)-1] == filepath.Separator {
		return path
	}

	return fmt.Sprintf("%s%c", path, filepath.Separator)
}

// IsInDirectory reports whether path lies under directory dir.
func IsInDirectory(path string, dir string) bool {
	return strings.HasPrefix(path, EnsureDirectoryPath(dir))
}
