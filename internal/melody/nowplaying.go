package melody

import (
	"context"
	"fmt"
	"time"
)

// Core ties the fetcher, parser and estimator together. It is the object the
// HTTP layer and the CLI tools call into.
type Core struct {
	fetcher         *Fetcher
	estimator       *Estimator
	fallbackStation string
	now             func() time.Time
}

// CoreConfig configures a Core.
type CoreConfig struct {
	Fetcher         *Fetcher
	Params          Params
	FallbackStation string

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// NewCore creates the now-playing core.
func NewCore(cfg CoreConfig) *Core {
	fetcher := cfg.Fetcher
	if fetcher == nil {
		fetcher = NewFetcher(FetcherConfig{})
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Core{
		fetcher:         fetcher,
		estimator:       NewEstimator(cfg.Params),
		fallbackStation: cfg.FallbackStation,
		now:             now,
	}
}

// NowPlaying fetches the playlist page and returns the currently playing
// track with its listener estimate.
func (c *Core) NowPlaying(ctx context.Context) (Track, error) {
	html, err := c.fetcher.Fetch(ctx)
	if err != nil {
		return Track{}, fmt.Errorf("failed to fetch playlist: %w", err)
	}

	now := c.now()
	track, ok := ParseFirstRow(html, now)
	if !ok {
		return Track{}, fmt.Errorf("no playable row found on playlist page")
	}

	track.Station = c.stationName(html)

	airedAt, err := track.At()
	if err != nil {
		airedAt = now
	}
	track.Listeners = c.estimator.Estimate(airedAt, track.Key(), now)
	return track, nil
}

// ScrapePage fetches the playlist page with retries and returns every
// parseable row, each with a listener estimate seeded by its air time.
func (c *Core) ScrapePage(ctx context.Context) ([]Track, error) {
	html, err := c.fetcher.FetchWithRetry(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch playlist: %w", err)
	}

	now := c.now()
	tracks := ParseRows(html, now)
	station := c.stationName(html)

	for i := range tracks {
		tracks[i].Station = station
		airedAt, err := tracks[i].At()
		if err != nil {
			airedAt = now
		}
		tracks[i].Listeners = c.estimator.Estimate(airedAt, tracks[i].Date+" "+tracks[i].Time, now)
	}
	return tracks, nil
}

func (c *Core) stationName(html string) string {
	if name := ParseStationName(html); name != "" {
		return name
	}
	return c.fallbackStation
}
