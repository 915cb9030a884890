// Package app is the melody-now web service: the default "app:app" target
// the bootstrapper launches. It serves the live now-playing track over HTTP
// and websocket, and optionally archives the playlist on a schedule.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Devis28/melody-now/internal/config"
	"github.com/Devis28/melody-now/internal/melody"
	"github.com/Devis28/melody-now/internal/registry"
	"github.com/Devis28/melody-now/internal/store"
	"github.com/Devis28/melody-now/pkg/logger"
)

func init() {
	registry.Register("app", "app", func() (registry.Service, error) {
		return New()
	})
}

// Service implements registry.Service.
type Service struct {
	log     *logger.Logger
	station *config.Station
	core    *melody.Core
	hub     *hub
	cron    *cron.Cron
	archive *store.Archive

	mu       sync.Mutex
	last     []byte
	lastErr  error
	stopOnce sync.Once
	done     chan struct{}
}

// New builds the service from the station profile and environment.
func New() (*Service, error) {
	log := logger.NewDefault("app")
	station := config.LoadStationOrDefault()

	params, err := melody.ParamsFromEnv()
	if err != nil {
		return nil, fmt.Errorf("invalid estimator parameters: %w", err)
	}

	core := melody.NewCore(melody.CoreConfig{
		Fetcher: melody.NewFetcher(melody.FetcherConfig{
			URL:    station.PlaylistURL,
			Logger: logger.NewDefault("app.fetch"),
		}),
		Params:          params,
		FallbackStation: station.Name,
	})

	s := &Service{
		log:     log,
		station: station,
		core:    core,
		hub:     newHub(log),
		done:    make(chan struct{}),
	}

	schedule := station.ScrapeSchedule
	if env := os.Getenv("SCRAPE_SCHEDULE"); env != "" {
		schedule = env
	}
	if schedule != "" {
		s.archive = store.New(station.ArchivePath, archiveLimitFromEnv())
		s.cron = cron.New()
		if _, err := s.cron.AddFunc(schedule, s.archivePlaylist); err != nil {
			return nil, fmt.Errorf("invalid scrape schedule %q: %w", schedule, err)
		}
	}

	return s, nil
}

// Start launches the websocket refresh loop and the archive schedule.
func (s *Service) Start(ctx context.Context) error {
	go s.refreshLoop(ctx)
	if s.cron != nil {
		s.cron.Start()
		s.log.WithField("archive", s.archive.Path()).Info("playlist archiving scheduled")
	}
	return nil
}

// Stop tears down the cron schedule and disconnects websocket clients.
func (s *Service) Stop() error {
	s.stopOnce.Do(func() {
		close(s.done)
		if s.cron != nil {
			<-s.cron.Stop().Done()
		}
		s.hub.close()
	})
	return nil
}

// HealthCheck reports the most recent refresh error, if any. The service
// stays healthy until a refresh has actually failed; a cold start with no
// data yet is not an error.
func (s *Service) HealthCheck() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// refreshLoop periodically refreshes the now-playing payload and pushes it
// to websocket subscribers. Fetching is skipped while nobody is connected.
func (s *Service) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(s.station.RefreshInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-ticker.C:
			if s.hub.clientCount() == 0 {
				continue
			}
			payload, err := s.refresh(ctx)
			if err != nil {
				s.log.WithField("error", err).Warn("now-playing refresh failed")
				continue
			}
			s.hub.broadcast(payload)
		}
	}
}

// refresh fetches the current track and caches the serialized payload.
func (s *Service) refresh(ctx context.Context) ([]byte, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, 25*time.Second)
	defer cancel()

	track, err := s.core.NowPlaying(fetchCtx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(track)
	if err != nil {
		return nil, err
	}
	s.last = payload
	return payload, nil
}

func (s *Service) lastPayload() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// archivePlaylist scrapes the full playlist page into the archive.
func (s *Service) archivePlaylist() {
	scrapesTotal.Inc()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	tracks, err := s.core.ScrapePage(ctx)
	if err != nil {
		scrapeFailures.Inc()
		s.log.WithField("error", err).Warn("playlist archive scrape failed")
		return
	}

	added, total, err := s.archive.Merge(tracks)
	if err != nil {
		scrapeFailures.Inc()
		s.log.WithField("error", err).Warn("playlist archive merge failed")
		return
	}
	s.log.LogWithFields(map[string]interface{}{
		"added": added,
		"total": total,
	}).Info("playlist archived")
}

func archiveLimitFromEnv() int {
	raw := os.Getenv("PLAYLIST_LIMIT")
	if raw == "" {
		return 0
	}
	var limit int
	if _, err := fmt.Sscanf(raw, "%d", &limit); err != nil {
		return 0
	}
	return limit
}
