// Package store persists the scraped playlist archive as a JSON file.
// New entries are merged newest-first with a stable dedupe key, and the
// archive is capped so unattended scraping cannot grow it without bound.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Devis28/melody-now/internal/melody"
	"github.com/Devis28/melody-now/pkg/logger"
)

// DefaultLimit caps the number of archived entries.
const DefaultLimit = 50000

// Entry is one archived playlist row. The metadata fields are filled by the
// enrichment pass; a field that could not be resolved stays an explicit
// null so consumers can tell "looked up, unknown" from a missing key.
type Entry struct {
	Station   string `json:"station,omitempty"`
	Title     string `json:"title"`
	Artist    string `json:"artist"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Listeners int    `json:"listeners"`

	Album         *string  `json:"album"`
	ReleaseYear   *int     `json:"release_year"`
	DurationMS    *int     `json:"duration_ms"`
	ArtistCountry *string  `json:"artist_country"`
	Composers     []string `json:"composers"`
	Lyricists     []string `json:"lyricists"`
	Writers       []string `json:"writers"`
	Genres        []string `json:"genres"`
}

// Key returns the dedupe key: a row is unique per (date, time, artist, title).
func (e Entry) Key() string {
	return e.Date + "|" + e.Time + "|" + e.Artist + "|" + e.Title
}

// FromTrack converts a scraped track into an archive entry.
func FromTrack(t melody.Track) Entry {
	return Entry{
		Station:   t.Station,
		Title:     t.Title,
		Artist:    t.Artist,
		Date:      t.Date,
		Time:      t.Time,
		Listeners: t.Listeners,
	}
}

// Archive is a JSON-file-backed playlist archive.
type Archive struct {
	path  string
	limit int
	log   *logger.Logger
}

// New creates an archive at path. A limit of 0 applies DefaultLimit; a
// negative limit disables the cap.
func New(path string, limit int) *Archive {
	if limit == 0 {
		limit = DefaultLimit
	}
	return &Archive{
		path:  path,
		limit: limit,
		log:   logger.NewDefault("store"),
	}
}

// Path returns the archive file path.
func (a *Archive) Path() string { return a.path }

// Load reads the archive. A missing or unreadable file yields an empty
// archive rather than an error, so a fresh deployment starts clean.
func (a *Archive) Load() []Entry {
	data, err := os.ReadFile(a.path)
	if err != nil {
		if !os.IsNotExist(err) {
			a.log.WithField("error", err).Warn("failed to read archive, starting empty")
		}
		return nil
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		a.log.WithField("error", err).Warn("failed to parse archive, starting empty")
		return nil
	}
	return entries
}

// Save writes entries to the archive file, creating parent directories and
// replacing the file atomically.
func (a *Archive) Save(entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal archive: %w", err)
	}

	dir := filepath.Dir(a.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create archive directory: %w", err)
		}
	}

	tmp := a.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write archive: %w", err)
	}
	if err := os.Rename(tmp, a.path); err != nil {
		return fmt.Errorf("failed to replace archive: %w", err)
	}
	return nil
}

// Merge prepends tracks not already present and saves. Returns how many
// entries were added and the resulting total.
func (a *Archive) Merge(tracks []melody.Track) (added, total int, err error) {
	existing := a.Load()

	seen := make(map[string]bool, len(existing))
	for _, e := range existing {
		seen[e.Key()] = true
	}

	var toAdd []Entry
	for _, t := range tracks {
		e := FromTrack(t)
		if seen[e.Key()] {
			continue
		}
		seen[e.Key()] = true
		toAdd = append(toAdd, e)
	}

	if len(toAdd) == 0 {
		return 0, len(existing), nil
	}

	merged := append(toAdd, existing...)
	if a.limit > 0 && len(merged) > a.limit {
		merged = merged[:a.limit]
	}

	if err := a.Save(merged); err != nil {
		return 0, 0, err
	}
	return len(toAdd), len(merged), nil
}
