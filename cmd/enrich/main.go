// Package main enriches archive entries with track metadata from
// MusicBrainz, iTunes and Deezer, caching lookups between runs.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/Devis28/melody-now/internal/config"
	"github.com/Devis28/melody-now/internal/enrich"
	"github.com/Devis28/melody-now/internal/store"
)

func main() {
	playlistPath := flag.String("playlist", "", "Archive path (default from station config)")
	cachePath := flag.String("cache", filepath.Join("data", "meta_cache.json"), "Lookup cache path")
	flag.Parse()

	// Environment variable overrides
	if v := os.Getenv("PLAYLIST_PATH"); v != "" {
		*playlistPath = v
	}
	if v := os.Getenv("CACHE_PATH"); v != "" {
		*cachePath = v
	}
	if *playlistPath == "" {
		*playlistPath = config.LoadStationOrDefault().ArchivePath
	}

	archive := store.New(*playlistPath, -1)
	entries := archive.Load()

	cache := enrich.LoadCache(*cachePath)
	enricher := enrich.NewEnricher(enrich.NewClient(), cache)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	touched, updated, err := enricher.Run(ctx, entries)
	if err != nil {
		log.Fatalf("Enrichment failed: %v", err)
	}

	if updated > 0 {
		if err := archive.Save(entries); err != nil {
			log.Fatalf("Failed to save archive: %v", err)
		}
	}
	fmt.Printf("keys touched: %d, items updated: %d, cache size: %d\n", touched, updated, cache.Len())
}
