package probe_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-test/deep"
	"github.com/sarpt/mpv-music-api/pkg/probe"
	"github.com/sarpt/mpv-music-api/pkg/state/pkg/library"
)

func id3Frame(id string, text string) []byte {
	data := append([]byte{0x00}, []byte(text)...)
	size := len(data)

	frame := []byte(id)
	frame = append(frame, byte(size>>24), byte(size>>16), byte(size>>8), byte(size))
	frame = append(frame, 0x00, 0x00)

	return append(frame, data...)
}

// taggedMp3 returns ID3v2.3 tag with provided frames, followed by mpeg frame headers.
func taggedMp3(frames ...[]byte) []byte {
	body := bytes.Join(frames, nil)
	size := len(body)

	header := []byte{'I', 'D', '3', 0x03, 0x00, 0x00, byte(size >> 21 & 0x7f), byte(size >> 14 & 0x7f), byte(size >> 7 & 0x7f), byte(size & 0x7f)}
	audio := bytes.Repeat([]byte{0xff, 0xfb, 0x90, 0x00}, 128)

	return bytes.Join([][]byte{header, body, audio}, nil)
}

func airbagMp3() []byte {
	return taggedMp3(
		id3Frame("TIT2", "Airbag"),
		id3Frame("TPE1", "Radiohead"),
		id3Frame("TALB", "OK Computer"),
		id3Frame("TYER", "1997"),
	)
}

func writeFile(t *testing.T, path string, data []byte) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Could not create directory for %s: %s", path, err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("Could not write %s: %s", path, err)
	}

	return path
}

func TestIsAudioFile(t *testing.T) {
	testCases := map[string]bool{
		"/music/airbag.mp3":      true,
		"/music/Let Down.FLAC":   true,
		"/music/karma.opus":      true,
		"/music/cover.jpg":       false,
		"/music/playlist.m3u":    false,
		"/music/no_extension":    false,
		"/music/exit_music.m4a":  true,
		"/music/lucky.ogg":       true,
		"/music/the_tourist.wav": true,
	}

	for path, expected := range testCases {
		t.Run(path, func(t *testing.T) {
			if result := probe.IsAudioFile(path); result != expected {
				t.Errorf("Expected %t for %s, got %t", expected, path, result)
			}
		})
	}
}

func TestFile_ReadsTags(t *testing.T) {
	// given
	path := writeFile(t, filepath.Join(t.TempDir(), "airbag.mp3"), airbagMp3())

	// when
	track, err := probe.File(path)

	// then
	if err != nil {
		t.Fatalf("Unexpected probe error: %s", err)
	}

	if track.ID == "" {
		t.Errorf("Expected track to have an id")
	}

	if diff := deep.Equal(
		[]interface{}{track.Title, track.Artist, track.Album, track.Year, track.AudioURL, track.AlbumArt},
		[]interface{}{"Airbag", "Radiohead", "OK Computer", 1997, path, ""},
	); diff != nil {
		t.Error(diff)
	}

	again, _ := probe.File(path)
	if again.ID != track.ID {
		t.Errorf("Expected id to be stable, got %s and %s", track.ID, again.ID)
	}
}

func TestFile_UntaggedFallsBackToBaseName(t *testing.T) {
	// given
	path := writeFile(t, filepath.Join(t.TempDir(), "01 - intro.flac"), []byte("not really flac"))

	// when
	track, err := probe.File(path)

	// then
	if err != nil {
		t.Fatalf("Unexpected probe error: %s", err)
	}

	if track.Title != "01 - intro" {
		t.Errorf("Expected title to fall back to base name, got %s", track.Title)
	}

	if track.ID == "" {
		t.Errorf("Expected track to have an id")
	}
}

func TestFile_NotAudioFile(t *testing.T) {
	// given
	path := writeFile(t, filepath.Join(t.TempDir(), "notes.txt"), []byte("lyrics"))

	// when
	_, err := probe.File(path)

	// then
	if !errors.Is(err, probe.ErrNotAudioFile) {
		t.Errorf("Expected not audio file error, got %v", err)
	}
}

func TestAlbumArt_CoverFile(t *testing.T) {
	// given
	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, "airbag.mp3"), airbagMp3())
	cover := []byte{0xff, 0xd8, 0xff, 0xe0}
	writeFile(t, filepath.Join(dir, "cover.jpg"), cover)

	// when
	track, err := probe.File(path)
	if err != nil {
		t.Fatalf("Unexpected probe error: %s", err)
	}
	picture, err := probe.AlbumArt(path)

	// then
	if err != nil {
		t.Fatalf("Unexpected album art error: %s", err)
	}

	if track.AlbumArt != probe.AlbumArtURL(track.ID) {
		t.Errorf("Expected album art url %s, got %s", probe.AlbumArtURL(track.ID), track.AlbumArt)
	}

	expected := probe.Picture{Data: cover, MIMEType: "image/jpeg"}
	if diff := deep.Equal(picture, expected); diff != nil {
		t.Error(diff)
	}
}

func TestAlbumArt_Missing(t *testing.T) {
	// given
	path := writeFile(t, filepath.Join(t.TempDir(), "airbag.mp3"), airbagMp3())

	// when
	_, err := probe.AlbumArt(path)

	// then
	if !errors.Is(err, probe.ErrNoPicture) {
		t.Errorf("Expected no picture error, got %v", err)
	}
}

func TestAlbumArtURL(t *testing.T) {
	expected := "/rest/tracks/art?id=a%2Fb"
	if url := probe.AlbumArtURL("a/b"); url != expected {
		t.Errorf("Expected %s, got %s", expected, url)
	}
}

func TestDirectory_ProbesAudioFilesRecursively(t *testing.T) {
	// given
	dir := t.TempDir()
	airbag := writeFile(t, filepath.Join(dir, "airbag.mp3"), airbagMp3())
	writeFile(t, filepath.Join(dir, "notes.txt"), []byte("lyrics"))
	intro := writeFile(t, filepath.Join(dir, "bonus", "intro.flac"), []byte("not really flac"))

	// when
	tracks, skipped := probe.Directory(dir, nil)

	// then
	if len(skipped) != 0 {
		t.Errorf("Expected no skipped files, got %v", skipped)
	}

	var paths []string
	for _, track := range tracks {
		paths = append(paths, track.AudioURL)
	}

	if diff := deep.Equal(paths, []string{airbag, intro}); diff != nil {
		t.Error(diff)
	}
}

type mapCache map[string]library.Track

func (c mapCache) Track(path string, modTime time.Time) (library.Track, bool) {
	track, ok := c[path]
	return track, ok
}

func (c mapCache) Put(path string, modTime time.Time, track library.Track) {
	c[path] = track
}

func TestCachedFile(t *testing.T) {
	dir := t.TempDir()
	airbag := writeFile(t, filepath.Join(dir, "airbag.mp3"), airbagMp3())

	t.Run("cached track is returned without probing", func(t *testing.T) {
		// given
		cached := library.Track{ID: "cached", Title: "Cached Airbag", AudioURL: airbag}
		cache := mapCache{airbag: cached}

		// when
		track, err := probe.CachedFile(airbag, cache)

		// then
		if err != nil {
			t.Fatalf("Unexpected error: %s", err)
		}

		if diff := deep.Equal(track, cached); diff != nil {
			t.Error(diff)
		}
	})

	t.Run("probed track is put in the cache", func(t *testing.T) {
		// given
		cache := mapCache{}

		// when
		track, err := probe.CachedFile(airbag, cache)

		// then
		if err != nil {
			t.Fatalf("Unexpected error: %s", err)
		}

		if diff := deep.Equal(cache[airbag], track); diff != nil {
			t.Error(diff)
		}
	})
}
