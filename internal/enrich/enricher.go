package enrich

import (
	"context"
	"sort"
	"time"

	"github.com/Devis28/melody-now/internal/store"
	"github.com/Devis28/melody-now/pkg/logger"
)

// Enricher drives the metadata backfill over archive entries: collect the
// (artist, title) pairs still missing fields, resolve them through the
// sources (cache first), then write the full metadata schema back into each
// entry with explicit nulls for fields no source could answer.
type Enricher struct {
	client *Client
	cache  *Cache
	log    *logger.Logger
	sleep  func(time.Duration)
}

// NewEnricher creates an enricher over the given client and cache.
func NewEnricher(client *Client, cache *Cache) *Enricher {
	return &Enricher{
		client: client,
		cache:  cache,
		log:    logger.NewDefault("enrich"),
		sleep:  time.Sleep,
	}
}

// EnrichPair resolves metadata for one (artist, title) pair across all
// sources. Source failures degrade to whatever the remaining sources know.
func (e *Enricher) EnrichPair(ctx context.Context, artist, title string) Metadata {
	mb, err := e.client.FromMusicBrainz(ctx, artist, title)
	if err != nil {
		e.log.LogWithFields(map[string]interface{}{"artist": artist, "title": title, "error": err}).
			Warn("musicbrainz lookup failed")
	}
	e.sleep(350 * time.Millisecond)

	it, err := e.client.FromITunes(ctx, artist, title)
	if err != nil {
		e.log.LogWithFields(map[string]interface{}{"artist": artist, "title": title, "error": err}).
			Warn("itunes lookup failed")
	}
	e.sleep(200 * time.Millisecond)

	dz, err := e.client.FromDeezer(ctx, artist, title)
	if err != nil {
		e.log.LogWithFields(map[string]interface{}{"artist": artist, "title": title, "error": err}).
			Warn("deezer lookup failed")
	}

	return Merge(mb, it, dz)
}

// Run enriches entries in place. Returns the number of pairs looked at and
// the number of entries whose fields changed. The cache is saved whenever
// new pairs were resolved.
func (e *Enricher) Run(ctx context.Context, entries []store.Entry) (touched, updated int, err error) {
	needKeys := make(map[string]bool)
	for i := range entries {
		if NeedsMetadata(entries[i]) {
			needKeys[NormKey(entries[i].Artist, entries[i].Title)] = true
		}
	}

	keys := make([]string, 0, len(needKeys))
	for k := range needKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if ctx.Err() != nil {
			return touched, updated, ctx.Err()
		}
		touched++
		if _, ok := e.cache.Get(key); ok {
			continue
		}
		artist, title := splitNormKey(key)
		e.cache.Put(key, e.EnrichPair(ctx, artist, title))
		e.sleep(250 * time.Millisecond)
	}

	if touched > 0 {
		if err := e.cache.Save(); err != nil {
			return touched, updated, err
		}
	}

	for i := range entries {
		meta, _ := e.cache.Get(NormKey(entries[i].Artist, entries[i].Title))
		if ApplyWithNulls(&entries[i], meta) {
			updated++
		}
	}
	return touched, updated, nil
}

// NeedsMetadata reports whether any metadata field on the entry is still
// unresolved.
func NeedsMetadata(e store.Entry) bool {
	return strPtrEmpty(e.Album) || intPtrEmpty(e.ReleaseYear) || intPtrEmpty(e.DurationMS) ||
		strPtrEmpty(e.ArtistCountry) || len(e.Composers) == 0 || len(e.Lyricists) == 0 ||
		len(e.Writers) == 0 || len(e.Genres) == 0
}

// ApplyWithNulls writes meta into the entry: scalars only fill empty slots,
// lists union with whatever the entry already has. Fields that remain
// unknown stay nil, which the archive serializes as explicit null. Returns
// whether anything changed.
func ApplyWithNulls(e *store.Entry, meta Metadata) bool {
	changed := false

	if strPtrEmpty(e.Album) && meta.Album != "" {
		e.Album = &meta.Album
		changed = true
	}
	if intPtrEmpty(e.ReleaseYear) && meta.ReleaseYear != 0 {
		e.ReleaseYear = &meta.ReleaseYear
		changed = true
	}
	if intPtrEmpty(e.DurationMS) && meta.DurationMS != 0 {
		e.DurationMS = &meta.DurationMS
		changed = true
	}
	if strPtrEmpty(e.ArtistCountry) && meta.ArtistCountry != "" {
		e.ArtistCountry = &meta.ArtistCountry
		changed = true
	}

	if merged := unionSorted(e.Composers, meta.Composers); len(merged) != len(e.Composers) {
		e.Composers = merged
		changed = true
	}
	if merged := unionSorted(e.Lyricists, meta.Lyricists); len(merged) != len(e.Lyricists) {
		e.Lyricists = merged
		changed = true
	}
	if merged := unionSorted(e.Writers, meta.Writers); len(merged) != len(e.Writers) {
		e.Writers = merged
		changed = true
	}
	if merged := unionSorted(e.Genres, meta.Genres); len(merged) != len(e.Genres) {
		e.Genres = merged
		changed = true
	}
	return changed
}

func splitNormKey(key string) (artist, title string) {
	for i := 0; i < len(key); i++ {
		if key[i] == '|' {
			return key[:i], key[i+1:]
		}
	}
	return key, ""
}

func strPtrEmpty(p *string) bool { return p == nil || *p == "" }
func intPtrEmpty(p *int) bool    { return p == nil || *p == 0 }
