// Package config loads the station profile from config/station.yaml,
// falling back to compiled defaults when the file is absent.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Station describes the radio station the service watches.
type Station struct {
	// Name is the fallback station name when the playlist page does not
	// expose one.
	Name string `yaml:"name"`

	// PlaylistURL is the page scraped for playlist rows.
	PlaylistURL string `yaml:"playlist_url"`

	// RefreshSeconds is how often the websocket stream re-reads the
	// now-playing track.
	RefreshSeconds int `yaml:"refresh_seconds"`

	// ArchivePath is where the playlist archive is written.
	ArchivePath string `yaml:"archive_path"`

	// ScrapeSchedule is a cron expression for background playlist
	// archiving. Empty disables archiving.
	ScrapeSchedule string `yaml:"scrape_schedule"`
}

// RefreshInterval returns the websocket refresh period.
func (s *Station) RefreshInterval() time.Duration {
	if s.RefreshSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.RefreshSeconds) * time.Second
}

type stationFile struct {
	Station Station `yaml:"station"`
}

// DefaultStation returns the compiled-in profile for Rádio Melody.
func DefaultStation() *Station {
	return &Station{
		Name:           "Rádio Melody",
		PlaylistURL:    "https://www.radia.sk/radia/melody/playlist",
		RefreshSeconds: 30,
		ArchivePath:    filepath.Join("data", "playlist.json"),
	}
}

// LoadStation loads a station profile from a YAML file.
func LoadStation(path string) (*Station, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read station config: %w", err)
	}

	var f stationFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse station config: %w", err)
	}

	st := f.Station
	def := DefaultStation()
	if st.Name == "" {
		st.Name = def.Name
	}
	if st.PlaylistURL == "" {
		st.PlaylistURL = def.PlaylistURL
	}
	if st.RefreshSeconds <= 0 {
		st.RefreshSeconds = def.RefreshSeconds
	}
	if st.ArchivePath == "" {
		st.ArchivePath = def.ArchivePath
	}
	return &st, nil
}

// LoadStationOrDefault loads config/station.yaml, or the default profile if
// the file is missing or unreadable.
func LoadStationOrDefault() *Station {
	st, err := LoadStation(filepath.Join("config", "station.yaml"))
	if err != nil {
		return DefaultStation()
	}
	return st
}
