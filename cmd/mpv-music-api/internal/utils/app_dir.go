package utils

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
)

const (
	playlistsSubdir = "playlists"
)

var (
	appDirId          = "mma"
	defaultAppDirName = fmt.Sprintf(".%s", appDirId)
	subdirs           = []string{
		playlistsSubdir,
	}
)

// HandleAppDir ensures the application directory with its subdirectories exists.
// Empty appDir resolves to ".mma" in the user's home directory.
func HandleAppDir(appDir string) (string, error) {
	if appDir == "" {
		appDir = getDefaultAppDir()
	}

	err := ensureAppDirs(appDir)
	return appDir, err
}

// PlaylistsDir returns the directory with M3U playlists imported on startup.
func PlaylistsDir(appDir string) string {
	return filepath.Join(appDir, playlistsSubdir)
}

func ensureAppDirs(basePath string) error {
	for _, subdir := range subdirs {
		dirPath := filepath.Join(basePath, subdir)
		err := os.MkdirAll(dirPath, 0750)
		if err != nil {
			return err
		}
	}

	return nil
}

func getDefaultAppDir() string {
	var appPathDefaultBase string
	homeDir, err := os.UserHomeDir()
	if err != nil {
		appPathDefaultBase = os.TempDir()
	} else {
		appPathDefaultBase = homeDir
	}

	return filepath.Join(appPathDefaultBase, defaultAppDirName)
}

// GetCachePath returns dir, or the application directory inside the user's cache directory when dir is empty.
func GetCachePath(dir string) (string, error) {
	if len(dir) > 0 {
		return dir, nil
	}

	cacheDirPath, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("could not open user cache dir: %w", err)
	}

	return path.Join(cacheDirPath, appDirId), nil
}
