// Package main backfills listener counts for archive entries that predate
// estimation, using the simulated daily profile. Entries that already carry
// a count are left untouched.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/Devis28/melody-now/internal/config"
	"github.com/Devis28/melody-now/internal/melody"
	"github.com/Devis28/melody-now/internal/store"
)

func main() {
	path := flag.String("path", "", "Archive path (default from station config)")
	flag.Parse()

	if v := os.Getenv("OUT_PATH"); v != "" {
		*path = v
	}
	if *path == "" {
		*path = config.LoadStationOrDefault().ArchivePath
	}

	archive := store.New(*path, -1)
	entries := archive.Load()

	changed := 0
	for i := range entries {
		if entries[i].Listeners > 0 {
			continue
		}
		track := melody.Track{
			Artist: entries[i].Artist,
			Title:  entries[i].Title,
			Date:   entries[i].Date,
			Time:   entries[i].Time,
		}
		airedAt, err := track.At()
		if err != nil {
			log.Printf("Skipping entry with unparseable time %s %s: %v", entries[i].Date, entries[i].Time, err)
			continue
		}
		entries[i].Listeners = melody.EstimateFromCurve(airedAt, track.Key())
		changed++
	}

	if changed > 0 {
		if err := archive.Save(entries); err != nil {
			log.Fatalf("Failed to save archive: %v", err)
		}
	}
	fmt.Printf("Backfilled %d items into %s\n", changed, *path)
}
