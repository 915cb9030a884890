// Package main scrapes the station playlist page and merges the rows into
// the JSON archive. Intended to run on a schedule next to the server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/Devis28/melody-now/internal/config"
	"github.com/Devis28/melody-now/internal/melody"
	"github.com/Devis28/melody-now/internal/store"
)

func main() {
	outPath := flag.String("out", "", "Archive path (default from station config)")
	limit := flag.Int("limit", store.DefaultLimit, "Maximum archived entries, 0 for default")
	flag.Parse()

	// Environment variable overrides
	if v := os.Getenv("OUT_PATH"); v != "" {
		*outPath = v
	}
	if v := os.Getenv("PLAYLIST_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			log.Fatalf("Invalid PLAYLIST_LIMIT %q: %v", v, err)
		}
		*limit = n
	}

	station := config.LoadStationOrDefault()
	if *outPath == "" {
		*outPath = station.ArchivePath
	}

	params, err := melody.ParamsFromEnv()
	if err != nil {
		log.Fatalf("Invalid estimator parameters: %v", err)
	}

	core := melody.NewCore(melody.CoreConfig{
		Fetcher:         melody.NewFetcher(melody.FetcherConfig{URL: station.PlaylistURL}),
		Params:          params,
		FallbackStation: station.Name,
	})

	tracks, err := core.ScrapePage(context.Background())
	if err != nil {
		log.Printf("Scrape failed: %v", err)
		tracks = nil
	}

	if len(tracks) == 0 {
		archive := store.New(*outPath, *limit)
		fmt.Printf("added 0 items, total %d\n", len(archive.Load()))
		return
	}

	archive := store.New(*outPath, *limit)
	added, total, err := archive.Merge(tracks)
	if err != nil {
		log.Fatalf("Failed to update archive: %v", err)
	}
	fmt.Printf("added %d items, total %d\n", added, total)
}
