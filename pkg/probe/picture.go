package probe

import (
	"errors"
	"io/ioutil"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
)

// Sorted by priority, following mpv's external cover lookup.
var coverFiles = []string{
	"AlbumArt.jpg",
	"Album.jpg",
	"cover.jpg",
	"cover.png",
	"front.jpg",
	"front.png",
	"Cover.jpg",
	"Folder.jpg",
	"Folder.png",
}

var (
	// ErrNoPicture informs about audio file having neither embedded nor external album art.
	ErrNoPicture = errors.New("no album art found for the file")
)

// Picture is an album art image.
type Picture struct {
	Data     []byte
	MIMEType string
}

// AlbumArt returns album art of the audio file.
// External cover files in the same directory take precedence over the embedded picture.
func AlbumArt(path string) (Picture, error) {
	if coverPath, ok := coverFile(path); ok {
		data, err := ioutil.ReadFile(coverPath)
		if err != nil {
			return Picture{}, err
		}

		return Picture{
			Data:     data,
			MIMEType: mime.TypeByExtension(strings.ToLower(filepath.Ext(coverPath))),
		}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return Picture{}, err
	}
	defer f.Close()

	metadata, err := tag.ReadFrom(f)
	if err != nil {
		return Picture{}, ErrNoPicture
	}

	pic := metadata.Picture()
	if pic == nil {
		return Picture{}, ErrNoPicture
	}

	mimeType := pic.MIMEType
	if mimeType == "" {
		mimeType = mime.TypeByExtension("." + pic.Ext)
	}

	return Picture{
		Data:     pic.Data,
		MIMEType: mimeType,
	}, nil
}

// HasPicture checks whether album art is available for the audio file with already read metadata.
func HasPicture(path string, metadata tag.Metadata) bool {
	if _, ok := coverFile(path); ok {
		return true
	}

	return metadata != nil && metadata.Picture() != nil
}

func coverFile(path string) (string, bool) {
	dir := filepath.Dir(path)

	for _, name := range coverFiles {
		coverPath := filepath.Join(dir, name)
		if info, err := os.Stat(coverPath); err == nil && !info.IsDir() {
			return coverPath, true
		}
	}

	return "", false
}
