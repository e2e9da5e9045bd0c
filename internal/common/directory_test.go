package common_test

import (
	"path/filepath"
	"testing"

	"github.com/sarpt/mpv-music-api/internal/common"
)

func TestIsInDirectory(t *testing.T) {
	sep := string(filepath.Separator)
	music := filepath.Join(sep, "home", "music")

	tests := []struct {
		name     string
		path     string
		dir      string
		expected bool
	}{
		{name: "file directly in directory", path: filepath.Join(music, "a.mp3"), dir: music, expected: true},
		{name: "file in nested directory", path: filepath.Join(music, "album", "a.mp3"), dir: music + sep, expected: true},
		{name: "sibling with common prefix", path: filepath.Join(sep, "home", "musicals", "a.mp3"), dir: music, expected: false},
		{name: "unrelated path", path: filepath.Join(sep, "tmp", "a.mp3"), dir: music, expected: false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := common.IsInDirectory(test.path, test.dir)
			if result != test.expected {
				t.Errorf("unexpected result for %s in %s: expected %t, got %t", test.path, test.dir, test.expected, result)
			}
		})
	}
}

func TestEnsureDirectoryPath(t *testing.T) {
	sep := string(filepath.Separator)

	if result := common.EnsureDirectoryPath("music"); result != "music"+sep {
		t.Errorf("separator not appended: got %q", result)
	}

	if result := common.EnsureDirectoryPath("music" + sep); result != "music"+sep {
		t.Errorf("separator appended twice: got %q", result)
	}

	if result := common.EnsureDirectoryPath(""); result != "" {
		t.Errorf("empty path changed: got %q", result)
	}
}
