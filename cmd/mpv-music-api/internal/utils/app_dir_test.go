package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sarpt/mpv-music-api/cmd/mpv-music-api/internal/utils"
)

func TestHandleAppDir_CreatesPlaylistsDir(t *testing.T) {
	// given
	appDir := filepath.Join(t.TempDir(), "app")

	// when
	result, err := utils.HandleAppDir(appDir)

	// then
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	if result != appDir {
		t.Errorf("Expected app dir %s, got %s", appDir, result)
	}

	info, err := os.Stat(utils.PlaylistsDir(appDir))
	if err != nil || !info.IsDir() {
		t.Errorf("Expected playlists directory to be created: %v", err)
	}
}

func TestGetCachePath_ProvidedDir(t *testing.T) {
	// given
	dir := t.TempDir()

	// when
	result, err := utils.GetCachePath(dir)

	// then
	if err != nil || result != dir {
		t.Errorf("Expected provided cache dir %s, got %s (%v)", dir, result, err)
	}
}
