package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/sarpt/goutils/pkg/listflag"

	"github.com/sarpt/mpv-music-api/cmd/mpv-music-api/internal/utils"
	"github.com/sarpt/mpv-music-api/internal/common"
	"github.com/sarpt/mpv-music-api/internal/rest"
	"github.com/sarpt/mpv-music-api/internal/sse"
	"github.com/sarpt/mpv-music-api/pkg/api"
)

const (
	defaultAddress       = "localhost:3001"
	defaultMpvSocketPath = "/tmp/mpvsocket"
	defaultSocketTimeout = 15 * time.Second

	addrFlag                 = "addr"
	allowCorsFlag            = "allow-cors"
	appDirFlag               = "app-dir"
	cacheDirFlag             = "cache-dir"
	desktopNotificationsFlag = "desktop-notifications"
	dirFlag                  = "dir"
	mpvSocketPathFlag        = "mpv-socket-path"
	socketTimeoutFlag        = "socket-timeout"
	startMpvInstanceFlag     = "start-mpv-instance"
	watchFlag                = "watch"
)

var (
	address              *string
	allowCORS            *bool
	appDir               *string
	cacheDir             *string
	desktopNotifications *bool
	dir                  *listflag.StringList
	mpvSocketPath        *string
	socketTimeout        *time.Duration
	startMpvInstance     *bool
	watch                *bool
)

func init() {
	dir = listflag.NewStringList([]string{})

	flag.Var(dir, dirFlag, "directory containing audio files. can be provided multiple times. when left empty, current working directory will be used")
	address = flag.String(addrFlag, defaultAddress, "address on which server should listen on")
	allowCORS = flag.Bool(allowCorsFlag, false, "when not provided, Cross Origin Site Requests will be rejected")
	appDir = flag.String(appDirFlag, "", "directory with application files. M3U playlists inside its playlists subdirectory are imported on start. ~/.mma is used when left empty")
	cacheDir = flag.String(cacheDirFlag, "", "directory in which probed tracks are cached between runs. user cache directory is used when left empty")
	desktopNotifications = flag.Bool(desktopNotificationsFlag, false, "when provided, notifications are also shown on the desktop through dbus")
	mpvSocketPath = flag.String(mpvSocketPathFlag, defaultMpvSocketPath, "path to the mpv JSON IPC socket")
	socketTimeout = flag.Duration(socketTimeoutFlag, defaultSocketTimeout, "how long to wait for the mpv socket before trying again")
	startMpvInstance = flag.Bool(startMpvInstanceFlag, true, "when true, mpv instance is started and restarted by the server. otherwise an instance listening on the socket is expected")
	watch = flag.Bool(watchFlag, false, "when provided, directories are watched for added and removed audio files")

	flag.Parse()
}

func main() {
	appDirPath, err := utils.HandleAppDir(*appDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not prepare app directory: %s\n", err)
	}

	cachePath, err := utils.GetCachePath(*cacheDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tracks will not be cached: %s\n", err)
	}

	restServer := rest.NewServer(rest.Config{
		AllowCORS: *allowCORS,
		ErrWriter: os.Stderr,
		OutWriter: os.Stdout,
	})
	sseServer := sse.NewServer(sse.Config{
		ErrWriter: os.Stderr,
		OutWriter: os.Stdout,
	})

	cfg := api.Config{
		Address:                 *address,
		CacheDir:                cachePath,
		DesktopNotifications:    *desktopNotifications,
		ErrWriter:               os.Stderr,
		MpvSocketPath:           *mpvSocketPath,
		OutWriter:               os.Stdout,
		Plugins:                 []api.Plugin{restServer, sseServer},
		SocketConnectionTimeout: *socketTimeout,
		StartMpvInstance:        *startMpvInstance,
	}
	server, err := api.NewServer(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)

		return
	}

	dirs := libraryDirectories(dir.Values(), *watch)
	var paths []string
	for _, d := range dirs {
		paths = append(paths, d.Path)
	}
	fmt.Fprintf(os.Stdout, "directories being read for audio files:\n%s\n", strings.Join(paths, "\n"))
	server.AddDirectories(dirs)

	if appDirPath != "" {
		server.ImportPlaylistFiles(utils.PlaylistsDir(appDirPath))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = server.Serve(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)

		return
	}
}

func libraryDirectories(paths []string, watched bool) []common.Directory {
	if len(paths) == 0 {
		wd, err := os.Getwd()
		if err != nil {
			return nil
		}

		paths = []string{wd}
	}

	var dirs []common.Directory
	for _, path := range paths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			absPath = path
		}

		dirs = append(dirs, common.Directory{
			Path:    common.EnsureDirectoryPath(absPath),
			Watched: watched,
		})
	}

	return dirs
}
