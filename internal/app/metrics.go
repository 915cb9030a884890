package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collectors are package-level so multiple service instances in one process
// share them; per-instance registration would collide in the default
// registry.
var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "melodynow",
		Name:      "http_requests_total",
		Help:      "HTTP requests served, by route and status code.",
	}, []string{"route", "code"})

	scrapesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "melodynow",
		Name:      "playlist_scrapes_total",
		Help:      "Playlist page scrapes attempted.",
	})

	scrapeFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "melodynow",
		Name:      "playlist_scrape_failures_total",
		Help:      "Playlist page scrapes that failed.",
	})

	wsClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "melodynow",
		Name:      "ws_clients",
		Help:      "Currently connected websocket clients.",
	})
)
