package enrich

import "sort"

// Metadata is what a lookup learned about a track. Zero values mean the
// source had nothing; GenresRaw carries source genres prior to
// normalization.
type Metadata struct {
	Album         string   `json:"album,omitempty"`
	ReleaseYear   int      `json:"release_year,omitempty"`
	DurationMS    int      `json:"duration_ms,omitempty"`
	ArtistCountry string   `json:"artist_country,omitempty"`
	Composers     []string `json:"composers,omitempty"`
	Lyricists     []string `json:"lyricists,omitempty"`
	Writers       []string `json:"writers,omitempty"`
	Genres        []string `json:"genres,omitempty"`

	GenresRaw []string `json:"-"`
}

// IsEmpty reports whether the lookup learned nothing at all.
func (m Metadata) IsEmpty() bool {
	return m.Album == "" && m.ReleaseYear == 0 && m.DurationMS == 0 &&
		m.ArtistCountry == "" && len(m.Composers) == 0 && len(m.Lyricists) == 0 &&
		len(m.Writers) == 0 && len(m.Genres) == 0 && len(m.GenresRaw) == 0
}

// Merge combines metadata from multiple sources: scalars keep the first
// non-zero value in argument order, name lists union, and raw genres are
// normalized into the canonical buckets.
func Merge(parts ...Metadata) Metadata {
	var out Metadata
	var rawGenres []string

	for _, p := range parts {
		if out.Album == "" {
			out.Album = p.Album
		}
		if out.ReleaseYear == 0 {
			out.ReleaseYear = p.ReleaseYear
		}
		if out.DurationMS == 0 {
			out.DurationMS = p.DurationMS
		}
		if out.ArtistCountry == "" {
			out.ArtistCountry = p.ArtistCountry
		}
		out.Composers = unionSorted(out.Composers, p.Composers)
		out.Lyricists = unionSorted(out.Lyricists, p.Lyricists)
		out.Writers = unionSorted(out.Writers, p.Writers)
		out.Genres = unionSorted(out.Genres, p.Genres)
		rawGenres = append(rawGenres, p.GenresRaw...)
	}

	if norm := NormalizeGenres(rawGenres); len(norm) > 0 {
		out.Genres = unionSorted(out.Genres, norm)
	}
	return out
}

func unionSorted(a, b []string) []string {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	set := make(map[string]bool, len(a)+len(b))
	for _, v := range a {
		set[v] = true
	}
	for _, v := range b {
		set[v] = true
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
