// Package melody implements the now-playing core for Rádio Melody: fetching
// the station playlist page, parsing the currently playing track, and
// estimating the live listener count from a deterministic daily curve.
package melody

import (
	"sync"
	"time"
)

// Track is one playlist entry as served by the API and pushed over the
// websocket stream.
type Track struct {
	Station   string `json:"station,omitempty"`
	Title     string `json:"title"`
	Artist    string `json:"artist"`
	Date      string `json:"date"` // dd.mm.yyyy
	Time      string `json:"time"` // HH:MM
	Listeners int    `json:"listeners"`
}

// Key returns the stable identity of a track: a later scrape of the same
// playlist row must produce the same key.
func (t Track) Key() string {
	return t.Artist + "|" + t.Title + "|" + t.Date + "|" + t.Time
}

// At returns the track's air time in the station's timezone.
func (t Track) At() (time.Time, error) {
	return time.ParseInLocation("02.01.2006 15:04", t.Date+" "+t.Time, Timezone())
}

var (
	tzOnce sync.Once
	tz     *time.Location
)

// Timezone returns the station's timezone (Europe/Bratislava). If the zone
// database is unavailable it falls back to a fixed CET offset.
func Timezone() *time.Location {
	tzOnce.Do(func() {
		loc, err := time.LoadLocation("Europe/Bratislava")
		if err != nil {
			loc = time.FixedZone("CET", 60*60)
		}
		tz = loc
	})
	return tz
}

// FormatDate renders a date the way the playlist stores it.
func FormatDate(t time.Time) string {
	return t.Format("02.01.2006")
}
