package enrich

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/Devis28/melody-now/pkg/logger"
)

const mbUserAgent = "melody-now/1.0 (contact: example@example.com)"

// Client queries the metadata sources. Base URLs are fields so tests can
// point them at httptest servers.
type Client struct {
	httpClient *http.Client
	log        *logger.Logger

	iTunesBase      string
	deezerBase      string
	musicBrainzBase string

	// sleep paces MusicBrainz calls; tests replace it.
	sleep func(time.Duration)
}

// NewClient creates a metadata client with the public API endpoints.
func NewClient() *Client {
	return &Client{
		httpClient:      &http.Client{Timeout: 20 * time.Second},
		log:             logger.NewDefault("enrich"),
		iTunesBase:      "https://itunes.apple.com",
		deezerBase:      "https://api.deezer.com",
		musicBrainzBase: "https://musicbrainz.org",
		sleep:           time.Sleep,
	}
}

func (c *Client) getJSON(ctx context.Context, rawURL string, userAgent string) (gjson.Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("failed to create request: %w", err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return gjson.Result{}, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("failed to read response: %w", err)
	}
	return gjson.ParseBytes(body), nil
}

// FromITunes looks the track up in the iTunes search API, preferring the
// candidate whose artist and title match after cleaning.
func (c *Client) FromITunes(ctx context.Context, artist, title string) (Metadata, error) {
	q := url.QueryEscape(artist + " " + title)
	j, err := c.getJSON(ctx, fmt.Sprintf("%s/search?term=%s&entity=song&limit=3&country=sk", c.iTunesBase, q), "")
	if err != nil {
		return Metadata{}, err
	}
	if j.Get("resultCount").Int() == 0 {
		return Metadata{}, nil
	}

	aNorm, tNorm := CleanArtist(artist), CleanTitle(title)
	results := j.Get("results").Array()

	var cand gjson.Result
	for _, x := range results {
		if strings.Contains(CleanArtist(x.Get("artistName").String()), aNorm) {
			cand = x
			if strings.Contains(CleanTitle(x.Get("trackName").String()), tNorm) {
				break
			}
		}
	}
	if !cand.Exists() {
		cand = results[0]
	}

	m := Metadata{
		Album:       cand.Get("collectionName").String(),
		ReleaseYear: yearFromDate(cand.Get("releaseDate").String()),
		DurationMS:  int(cand.Get("trackTimeMillis").Int()),
	}
	if g := cand.Get("primaryGenreName").String(); g != "" {
		m.GenresRaw = []string{g}
	}
	return m, nil
}

// FromDeezer looks the track up in the Deezer search API, pulling album
// genres from the album endpoint when available.
func (c *Client) FromDeezer(ctx context.Context, artist, title string) (Metadata, error) {
	q := url.QueryEscape(fmt.Sprintf(`artist:"%s" track:"%s"`, artist, title))
	j, err := c.getJSON(ctx, fmt.Sprintf("%s/search?q=%s", c.deezerBase, q), "")
	if err != nil {
		return Metadata{}, err
	}

	data := j.Get("data").Array()
	if len(data) == 0 {
		return Metadata{}, nil
	}
	x := data[0]

	m := Metadata{
		Album: x.Get("album.title").String(),
	}
	if d := x.Get("duration").Int(); d > 0 {
		m.DurationMS = int(d) * 1000
	}

	if albumID := x.Get("album.id").Int(); albumID > 0 {
		aj, err := c.getJSON(ctx, fmt.Sprintf("%s/album/%d", c.deezerBase, albumID), "")
		if err == nil {
			for _, g := range aj.Get("genres.data.#.name").Array() {
				if name := g.String(); name != "" {
					m.GenresRaw = append(m.GenresRaw, name)
				}
			}
		}
	}
	return m, nil
}

// FromMusicBrainz looks the track up in MusicBrainz: release year from the
// first release, artist country from the credited artist's area, and
// composer/lyricist/writer credits from the recording's works. MusicBrainz
// rate limits aggressively, so calls are paced.
func (c *Client) FromMusicBrainz(ctx context.Context, artist, title string) (Metadata, error) {
	q := url.QueryEscape(fmt.Sprintf(`recording:"%s" AND artist:"%s"`, title, artist))
	j, err := c.getJSON(ctx, fmt.Sprintf("%s/ws/2/recording/?query=%s&fmt=json&limit=3", c.musicBrainzBase, q), mbUserAgent)
	if err != nil {
		return Metadata{}, err
	}

	recs := j.Get("recordings").Array()
	if len(recs) == 0 {
		return Metadata{}, nil
	}
	rec := recs[0]

	var m Metadata
	if releases := rec.Get("releases").Array(); len(releases) > 0 {
		m.ReleaseYear = yearFromDate(releases[0].Get("date").String())
	}

	if artistID := rec.Get("artist-credit.0.artist.id").String(); artistID != "" {
		c.sleep(350 * time.Millisecond)
		if cc := c.artistCountry(ctx, artistID); cc != "" {
			m.ArtistCountry = cc
		}
	}

	workIDs := workIDsFrom(rec)
	if len(workIDs) == 0 {
		detail, err := c.getJSON(ctx, fmt.Sprintf(
			"%s/ws/2/recording/%s?inc=work-rels+artist-credits+releases&fmt=json",
			c.musicBrainzBase, rec.Get("id").String()), mbUserAgent)
		if err == nil {
			workIDs = workIDsFrom(detail)
			if m.ArtistCountry == "" {
				if artistID := detail.Get("artist-credit.0.artist.id").String(); artistID != "" {
					c.sleep(350 * time.Millisecond)
					m.ArtistCountry = c.artistCountry(ctx, artistID)
				}
			}
			if m.ReleaseYear == 0 {
				if releases := detail.Get("releases").Array(); len(releases) > 0 {
					m.ReleaseYear = yearFromDate(releases[0].Get("date").String())
				}
			}
		}
	}

	if len(workIDs) > 2 {
		workIDs = workIDs[:2]
	}
	for _, workID := range workIDs {
		people, err := c.workPeople(ctx, workID)
		if err != nil {
			continue
		}
		m.Composers = unionSorted(m.Composers, people.Composers)
		m.Lyricists = unionSorted(m.Lyricists, people.Lyricists)
		m.Writers = unionSorted(m.Writers, people.Writers)
		c.sleep(350 * time.Millisecond)
	}
	return m, nil
}

func (c *Client) artistCountry(ctx context.Context, artistID string) string {
	j, err := c.getJSON(ctx, fmt.Sprintf("%s/ws/2/artist/%s?fmt=json", c.musicBrainzBase, artistID), mbUserAgent)
	if err != nil {
		return ""
	}
	if codes := j.Get("area.iso_3166_1_codes").Array(); len(codes) > 0 {
		return codes[0].String()
	}
	return j.Get("country").String()
}

func (c *Client) workPeople(ctx context.Context, workID string) (Metadata, error) {
	j, err := c.getJSON(ctx, fmt.Sprintf("%s/ws/2/work/%s?inc=artist-rels&fmt=json", c.musicBrainzBase, workID), mbUserAgent)
	if err != nil {
		return Metadata{}, err
	}

	var people Metadata
	for _, rel := range j.Get("relations").Array() {
		name := rel.Get("artist.name").String()
		if name == "" {
			continue
		}
		switch rel.Get("type").String() {
		case "composer":
			people.Composers = append(people.Composers, name)
		case "lyricist":
			people.Lyricists = append(people.Lyricists, name)
		case "writer":
			people.Writers = append(people.Writers, name)
		}
	}
	people.Composers = unionSorted(nil, people.Composers)
	people.Lyricists = unionSorted(nil, people.Lyricists)
	people.Writers = unionSorted(nil, people.Writers)
	return people, nil
}

func workIDsFrom(rec gjson.Result) []string {
	var ids []string
	for _, rel := range rec.Get("relations").Array() {
		if rel.Get("type").String() != "work" {
			continue
		}
		if id := rel.Get("work.id").String(); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func yearFromDate(s string) int {
	if len(s) < 4 {
		return 0
	}
	var year int
	if _, err := fmt.Sscanf(s[:4], "%d", &year); err != nil {
		return 0
	}
	return year
}
