package rest_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-test/deep"
	"github.com/golang/mock/gomock"
	"github.com/sarpt/mpv-music-api/internal/common"
	"github.com/sarpt/mpv-music-api/internal/mocks"
	"github.com/sarpt/mpv-music-api/internal/rest"
	"github.com/sarpt/mpv-music-api/pkg/probe"
	"github.com/sarpt/mpv-music-api/pkg/state"
	"github.com/sarpt/mpv-music-api/pkg/state/pkg/library"
	"github.com/sarpt/mpv-music-api/pkg/state/pkg/playlists"
)

var (
	airbag   = library.Track{ID: "a", Title: "Airbag", Artist: "Radiohead", Album: "OK Computer", Duration: 284, AudioURL: "/music/airbag.flac"}
	letDown  = library.Track{ID: "b", Title: "Let Down", Artist: "Radiohead", Album: "OK Computer", Duration: 299, AudioURL: "/music/let down.flac"}
	teardrop = library.Track{ID: "c", Title: "Teardrop", Artist: "Massive Attack", Album: "Mezzanine", Duration: 330, AudioURL: "/music/teardrop.flac"}
)

type fixture struct {
	apiServer  *mocks.MockPluginApi
	handler    http.Handler
	repository state.Repository
}

func setup(t *testing.T) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	repository := state.NewRepository(state.RepositoryConfig{})
	repository.Library().Add(airbag, letDown, teardrop)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go repository.Player().Serve(ctx)

	apiServer := mocks.NewMockPluginApi(ctrl)
	apiServer.EXPECT().StatesRepository().Return(repository)

	server := rest.NewServer(rest.Config{
		ErrWriter: io.Discard,
		OutWriter: io.Discard,
	})
	if err := server.Init(apiServer); err != nil {
		t.Fatalf("Could not initialize server: %s", err)
	}

	return fixture{
		apiServer:  apiServer,
		handler:    server.Handler(),
		repository: repository,
	}
}

func (f fixture) send(method string, target string, form url.Values) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	res := httptest.NewRecorder()
	f.handler.ServeHTTP(res, req)

	return res
}

func decodeFormResponse(t *testing.T, res *httptest.ResponseRecorder) common.FormResponse {
	t.Helper()

	var response common.FormResponse
	if err := json.Unmarshal(res.Body.Bytes(), &response); err != nil {
		t.Fatalf("Could not decode response '%s': %s", res.Body.String(), err)
	}

	return response
}

func TestGetPlayer_RevisionMatches(t *testing.T) {
	// given
	f := setup(t)
	first := f.send(http.MethodGet, "/rest/player", nil)
	revision := first.Header().Get("Etag")

	// when
	req := httptest.NewRequest(http.MethodGet, "/rest/player", nil)
	req.Header.Set("Etag", revision)
	res := httptest.NewRecorder()
	f.handler.ServeHTTP(res, req)

	// then
	if first.Code != 200 {
		t.Errorf("Expected first response to be 200, got %d", first.Code)
	}

	if res.Code != 304 {
		t.Errorf("Expected 304 for the same revision, got %d", res.Code)
	}
}

func TestPostPlayer_TrackID(t *testing.T) {
	type test struct {
		name          string
		form          func(f fixture) url.Values
		expectedQueue []library.Track
		expectedIdx   int
	}

	tests := []test{
		{
			name: "plays the track within the whole catalog",
			form: func(f fixture) url.Values {
				return url.Values{"trackId": {"b"}}
			},
			expectedQueue: []library.Track{airbag, letDown, teardrop},
			expectedIdx:   1,
		},
		{
			name: "plays the track within the filtered catalog",
			form: func(f fixture) url.Values {
				return url.Values{"trackId": {"b"}, "query": {"radiohead"}}
			},
			expectedQueue: []library.Track{airbag, letDown},
			expectedIdx:   1,
		},
		{
			name: "plays the track within the playlist",
			form: func(f fixture) url.Values {
				playlist, _ := f.repository.Playlists().Import("mix", []library.Track{teardrop, letDown})
				return url.Values{"trackId": {"b"}, "playlistUUID": {playlist.UUID()}}
			},
			expectedQueue: []library.Track{teardrop, letDown},
			expectedIdx:   1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// given
			f := setup(t)

			// when
			res := f.send(http.MethodPost, "/rest/player", tc.form(f))

			// then
			if res.Code != 200 {
				t.Fatalf("Expected 200, got %d: %s", res.Code, res.Body.String())
			}

			playerState := f.repository.Player().State()
			if !playerState.Playing || playerState.CurrentIdx != tc.expectedIdx {
				t.Errorf("Expected playing track at %d, got playing %t at %d", tc.expectedIdx, playerState.Playing, playerState.CurrentIdx)
			}

			if diff := deep.Equal(playerState.Queue, tc.expectedQueue); diff != nil {
				t.Error(diff)
			}
		})
	}
}

func TestPostPlayer_CurrentTrackTogglesPause(t *testing.T) {
	// given
	f := setup(t)
	f.send(http.MethodPost, "/rest/player", url.Values{"trackId": {"a"}})

	// when
	f.send(http.MethodPost, "/rest/player", url.Values{"trackId": {"a"}})
	paused := f.repository.Player().State()
	f.send(http.MethodPost, "/rest/player", url.Values{"trackId": {"a"}})
	resumed := f.repository.Player().State()

	// then
	if paused.Playing {
		t.Errorf("Expected selecting current track to pause the playback")
	}

	if !resumed.Playing {
		t.Errorf("Expected selecting paused track to resume the playback")
	}

	if resumed.CurrentTrack == nil || resumed.CurrentTrack.ID != "a" {
		t.Errorf("Expected current track to stay unchanged, got %v", resumed.CurrentTrack)
	}
}

func TestPostPlayer_UnknownTrack(t *testing.T) {
	// given
	f := setup(t)

	// when
	res := f.send(http.MethodPost, "/rest/player", url.Values{"trackId": {"unknown"}})

	// then
	if res.Code != 500 {
		t.Errorf("Expected 500, got %d", res.Code)
	}

	response := decodeFormResponse(t, res)
	if !strings.Contains(response.GeneralError, library.ErrTrackNotFound.Error()) {
		t.Errorf("Expected track not found error, got '%s'", response.GeneralError)
	}
}

func TestPostPlayer_Arguments(t *testing.T) {
	type test struct {
		name         string
		form         url.Values
		expectedCode int
		verify       func(t *testing.T, f fixture)
	}

	tests := []test{
		{
			name:         "volume in range is applied",
			form:         url.Values{"volume": {"0.25"}},
			expectedCode: 200,
			verify: func(t *testing.T, f fixture) {
				if volume := f.repository.Player().State().Volume; volume != 0.25 {
					t.Errorf("Expected volume 0.25, got %f", volume)
				}
			},
		},
		{
			name:         "volume out of range is rejected",
			form:         url.Values{"volume": {"1.5"}},
			expectedCode: 400,
			verify: func(t *testing.T, f fixture) {
				if volume := f.repository.Player().State().Volume; volume != 1 {
					t.Errorf("Expected volume to stay 1, got %f", volume)
				}
			},
		},
		{
			name:         "seek which is not a number is rejected",
			form:         url.Values{"seek": {"later"}},
			expectedCode: 400,
		},
		{
			name:         "repeat is cycled",
			form:         url.Values{"repeat": {"true"}},
			expectedCode: 200,
			verify: func(t *testing.T, f fixture) {
				if repeat := f.repository.Player().State().Repeat.String(); repeat != "playlist" {
					t.Errorf("Expected repeat playlist, got %s", repeat)
				}
			},
		},
		{
			name:         "shuffle set to false does nothing",
			form:         url.Values{"shuffle": {"false"}},
			expectedCode: 200,
			verify: func(t *testing.T, f fixture) {
				if f.repository.Player().State().Shuffle {
					t.Errorf("Expected shuffle to stay off")
				}
			},
		},
		{
			name:         "unknown argument is rejected",
			form:         url.Values{"fullscreen": {"true"}},
			expectedCode: 400,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// given
			f := setup(t)

			// when
			res := f.send(http.MethodPost, "/rest/player", tc.form)

			// then
			if res.Code != tc.expectedCode {
				t.Errorf("Expected %d, got %d: %s", tc.expectedCode, res.Code, res.Body.String())
			}

			if tc.verify != nil {
				tc.verify(t, f)
			}
		})
	}
}

func TestPostPlaylists_EmptyName(t *testing.T) {
	// given
	f := setup(t)

	// when
	res := f.send(http.MethodPost, "/rest/playlists", url.Values{"name": {"   "}})

	// then
	if res.Code != 500 {
		t.Errorf("Expected 500, got %d", res.Code)
	}

	response := decodeFormResponse(t, res)
	if response.GeneralError != playlists.ErrEmptyPlaylistName.Error() {
		t.Errorf("Expected empty name error, got '%s'", response.GeneralError)
	}

	if all := f.repository.Playlists().All(); len(all) != 0 {
		t.Errorf("Expected no playlists, got %d", len(all))
	}
}

func TestPostPlaylists_CreatesPlaylist(t *testing.T) {
	// given
	f := setup(t)

	// when
	res := f.send(http.MethodPost, "/rest/playlists", url.Values{"name": {"Road trip"}})

	// then
	if res.Code != 200 {
		t.Fatalf("Expected 200, got %d: %s", res.Code, res.Body.String())
	}

	all := f.repository.Playlists().All()
	if len(all) != 1 || all[0].Name() != "Road trip" {
		t.Errorf("Expected 'Road trip' playlist, got %v", all)
	}
}

func TestPostPlaylists_ImportsM3U(t *testing.T) {
	// given
	f := setup(t)
	content := "#EXTM3U\n#EXTINF:284,Radiohead - Airbag\n/music/airbag.flac\n"
	imported := playlists.NewPlaylist(playlists.Config{Name: "Road trip"})
	f.apiServer.EXPECT().ImportPlaylist("Road trip", gomock.Any()).DoAndReturn(func(name string, r io.Reader) (*playlists.Playlist, error) {
		received, _ := io.ReadAll(r)
		if string(received) != content {
			t.Errorf("Expected m3u content to be passed, got '%s'", received)
		}

		return imported, nil
	})

	// when
	res := f.send(http.MethodPost, "/rest/playlists", url.Values{"name": {"Road trip"}, "m3u": {content}})

	// then
	if res.Code != 200 {
		t.Errorf("Expected 200, got %d: %s", res.Code, res.Body.String())
	}

	if all := f.repository.Playlists().All(); len(all) != 0 {
		t.Errorf("Expected name argument not to create a separate playlist, got %d playlists", len(all))
	}
}

func TestPlaylistTracks_AddAndRemove(t *testing.T) {
	// given
	f := setup(t)
	playlist, _ := f.repository.Playlists().Create("Road trip")
	form := url.Values{"uuid": {playlist.UUID()}, "trackId": {"a"}}
	f.send(http.MethodPut, "/rest/playlists/tracks", form)
	f.send(http.MethodPut, "/rest/playlists/tracks", form)

	// when
	res := f.send(http.MethodDelete, "/rest/playlists/tracks?"+form.Encode(), nil)

	// then
	if res.Code != 200 {
		t.Fatalf("Expected 200, got %d: %s", res.Code, res.Body.String())
	}

	if diff := deep.Equal(res.Body.String(), `{"removed":2}`); diff != nil {
		t.Error(diff)
	}

	if tracks := playlist.Tracks(); len(tracks) != 0 {
		t.Errorf("Expected playlist to be empty, got %v", tracks)
	}
}

func TestDeletePlaylists_UnknownPlaylist(t *testing.T) {
	// given
	f := setup(t)

	// when
	res := f.send(http.MethodDelete, "/rest/playlists?uuid=unknown", nil)

	// then
	if res.Code != 404 {
		t.Errorf("Expected 404, got %d", res.Code)
	}
}

func TestGetPlaylistM3U(t *testing.T) {
	// given
	f := setup(t)
	content := "#EXTM3U\n#EXTINF:284,Radiohead - Airbag\n/music/airbag.flac\n"
	f.apiServer.EXPECT().ExportPlaylist("some-uuid", gomock.Any()).DoAndReturn(func(uuid string, w io.Writer) error {
		_, err := io.WriteString(w, content)
		return err
	})

	// when
	res := f.send(http.MethodGet, "/rest/playlists/m3u?uuid=some-uuid", nil)

	// then
	if res.Code != 200 {
		t.Fatalf("Expected 200, got %d", res.Code)
	}

	if res.Body.String() != content {
		t.Errorf("Expected exported playlist, got '%s'", res.Body.String())
	}

	if contentType := res.Header().Get("Content-Type"); contentType != "audio/x-mpegurl" {
		t.Errorf("Expected m3u content type, got %s", contentType)
	}
}

func TestGetTracks_Search(t *testing.T) {
	type test struct {
		name        string
		query       url.Values
		expectedIDs []string
	}

	tests := []test{
		{name: "all tracks without query", query: url.Values{}, expectedIDs: []string{"a", "b", "c"}},
		{name: "substring search", query: url.Values{"query": {"MEZZ"}}, expectedIDs: []string{"c"}},
		{name: "fuzzy search", query: url.Values{"query": {"ok cmptr"}, "fuzzy": {"true"}}, expectedIDs: []string{"a", "b"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// given
			f := setup(t)

			// when
			res := f.send(http.MethodGet, "/rest/tracks?"+tc.query.Encode(), nil)

			// then
			var response struct {
				Tracks []struct {
					ID                string
					FormattedDuration string
				} `json:"tracks"`
			}
			if err := json.Unmarshal(res.Body.Bytes(), &response); err != nil {
				t.Fatalf("Could not decode response: %s", err)
			}

			var ids []string
			for _, track := range response.Tracks {
				ids = append(ids, track.ID)
			}

			if diff := deep.Equal(ids, tc.expectedIDs); diff != nil {
				t.Error(diff)
			}

			if response.Tracks[0].FormattedDuration == "" {
				t.Errorf("Expected formatted duration to be present")
			}
		})
	}
}

func TestGetAlbumArt(t *testing.T) {
	// given
	f := setup(t)
	f.apiServer.EXPECT().AlbumArt("a").Return(probe.Picture{Data: []byte("jpeg"), MIMEType: "image/jpeg"}, nil)
	f.apiServer.EXPECT().AlbumArt("c").Return(probe.Picture{}, probe.ErrNoPicture)

	// when
	found := f.send(http.MethodGet, "/rest/tracks/art?id=a", nil)
	missing := f.send(http.MethodGet, "/rest/tracks/art?id=c", nil)

	// then
	if found.Code != 200 || found.Body.String() != "jpeg" || found.Header().Get("Content-Type") != "image/jpeg" {
		t.Errorf("Expected jpeg picture, got %d '%s'", found.Code, found.Body.String())
	}

	if missing.Code != 404 {
		t.Errorf("Expected 404 for missing picture, got %d", missing.Code)
	}
}

func TestDirectories_AddAndRemove(t *testing.T) {
	// given
	f := setup(t)
	dir := common.Directory{Path: "/music", Watched: true}
	f.apiServer.EXPECT().AddDirectories([]common.Directory{dir})
	f.apiServer.EXPECT().TakeDirectory("/music").Return(dir, nil)

	// when
	added := f.send(http.MethodPut, "/rest/directories", url.Values{"path": {"/music"}, "watched": {"true"}})
	removed := f.send(http.MethodDelete, "/rest/directories?path=%2Fmusic", nil)

	// then
	if added.Code != 200 {
		t.Errorf("Expected directory to be added, got %d: %s", added.Code, added.Body.String())
	}

	if removed.Code != 200 {
		t.Errorf("Expected directory to be removed, got %d: %s", removed.Code, removed.Body.String())
	}
}
