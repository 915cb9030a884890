package enrich

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testClient(server *httptest.Server) *Client {
	c := NewClient()
	c.httpClient = server.Client()
	c.iTunesBase = server.URL
	c.deezerBase = server.URL
	c.musicBrainzBase = server.URL
	c.sleep = func(time.Duration) {}
	return c
}

// =============================================================================
// iTunes
// =============================================================================

func TestFromITunes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{
			"resultCount": 2,
			"results": [
				{"artistName": "Tribute Band", "trackName": "Radio Ga Ga (Cover)",
				 "collectionName": "Covers", "releaseDate": "2019-01-01", "trackTimeMillis": 340000,
				 "primaryGenreName": "Pop"},
				{"artistName": "Queen", "trackName": "Radio Ga Ga",
				 "collectionName": "The Works", "releaseDate": "1984-02-27", "trackTimeMillis": 348000,
				 "primaryGenreName": "Rock"}
			]
		}`))
	}))
	defer server.Close()

	m, err := testClient(server).FromITunes(context.Background(), "Queen", "Radio Ga Ga")
	if err != nil {
		t.Fatalf("FromITunes() error = %v", err)
	}
	if m.Album != "The Works" {
		t.Errorf("Album = %q, want The Works (artist-matched candidate)", m.Album)
	}
	if m.ReleaseYear != 1984 {
		t.Errorf("ReleaseYear = %d, want 1984", m.ReleaseYear)
	}
	if m.DurationMS != 348000 {
		t.Errorf("DurationMS = %d, want 348000", m.DurationMS)
	}
	if len(m.GenresRaw) != 1 || m.GenresRaw[0] != "Rock" {
		t.Errorf("GenresRaw = %v, want [Rock]", m.GenresRaw)
	}
}

func TestFromITunes_NoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"resultCount": 0, "results": []}`))
	}))
	defer server.Close()

	m, err := testClient(server).FromITunes(context.Background(), "Nobody", "Nothing")
	if err != nil {
		t.Fatalf("FromITunes() error = %v", err)
	}
	if !m.IsEmpty() {
		t.Errorf("FromITunes() = %+v, want empty metadata", m)
	}
}

// =============================================================================
// Deezer
// =============================================================================

func TestFromDeezer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search":
			w.Write([]byte(`{"data": [{"duration": 348, "album": {"id": 42, "title": "The Works"}}]}`))
		case "/album/42":
			w.Write([]byte(`{"genres": {"data": [{"name": "Rock"}, {"name": "Pop"}]}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	m, err := testClient(server).FromDeezer(context.Background(), "Queen", "Radio Ga Ga")
	if err != nil {
		t.Fatalf("FromDeezer() error = %v", err)
	}
	if m.Album != "The Works" {
		t.Errorf("Album = %q, want The Works", m.Album)
	}
	if m.DurationMS != 348000 {
		t.Errorf("DurationMS = %d, want 348000", m.DurationMS)
	}
	if len(m.GenresRaw) != 2 {
		t.Errorf("GenresRaw = %v, want album genres", m.GenresRaw)
	}
}

// =============================================================================
// MusicBrainz
// =============================================================================

func TestFromMusicBrainz(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ws/2/recording/":
			w.Write([]byte(`{"recordings": [{
				"id": "rec-1",
				"releases": [{"date": "1984-02-27"}],
				"artist-credit": [{"artist": {"id": "artist-1"}}],
				"relations": [{"type": "work", "work": {"id": "work-1"}}]
			}]}`))
		case "/ws/2/artist/artist-1":
			w.Write([]byte(`{"area": {"iso_3166_1_codes": ["GB"]}}`))
		case "/ws/2/work/work-1":
			w.Write([]byte(`{"relations": [
				{"type": "composer", "artist": {"name": "Roger Taylor"}},
				{"type": "lyricist", "artist": {"name": "Roger Taylor"}},
				{"type": "producer", "artist": {"name": "Somebody Else"}}
			]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	m, err := testClient(server).FromMusicBrainz(context.Background(), "Queen", "Radio Ga Ga")
	if err != nil {
		t.Fatalf("FromMusicBrainz() error = %v", err)
	}
	if m.ReleaseYear != 1984 {
		t.Errorf("ReleaseYear = %d, want 1984", m.ReleaseYear)
	}
	if m.ArtistCountry != "GB" {
		t.Errorf("ArtistCountry = %q, want GB", m.ArtistCountry)
	}
	if len(m.Composers) != 1 || m.Composers[0] != "Roger Taylor" {
		t.Errorf("Composers = %v, want [Roger Taylor]", m.Composers)
	}
	if len(m.Lyricists) != 1 {
		t.Errorf("Lyricists = %v, want [Roger Taylor]", m.Lyricists)
	}
	if len(m.Writers) != 0 {
		t.Errorf("Writers = %v, want none", m.Writers)
	}
}

func TestFromMusicBrainz_NoRecordings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"recordings": []}`))
	}))
	defer server.Close()

	m, err := testClient(server).FromMusicBrainz(context.Background(), "Nobody", "Nothing")
	if err != nil {
		t.Fatalf("FromMusicBrainz() error = %v", err)
	}
	if !m.IsEmpty() {
		t.Errorf("FromMusicBrainz() = %+v, want empty metadata", m)
	}
}
