// Package enrich backfills track metadata (album, release year, duration,
// writers, genres, artist country) from MusicBrainz, iTunes and Deezer,
// caching lookups so repeated runs stay cheap and polite.
package enrich

import (
	"regexp"
	"sort"
	"strings"
)

var (
	titleSuffixRe = regexp.MustCompile(`\s*-\s*(remaster(?:ed)?(?: \d{4})?|mono|stereo|single|version|mix|edit|radio edit).*`)
	titleFeatRe   = regexp.MustCompile(`\s*\((?:feat\.?|featuring|with)\s+[^)]*\)`)
	titleParenRe  = regexp.MustCompile(`\s*\((?:live|remaster(?:ed)?|version|mix|edit|radio edit|mono|stereo)[^)]*\)`)
	artistSplitRe = regexp.MustCompile(`\s+(?:feat\.?|&|and)\s+.*`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
)

// CleanTitle strips remaster/version/feat decorations from a track title so
// lookups across sources hit the same recording.
func CleanTitle(s string) string {
	s = strings.ToLower(s)
	s = titleSuffixRe.ReplaceAllString(s, "")
	s = titleFeatRe.ReplaceAllString(s, "")
	s = titleParenRe.ReplaceAllString(s, "")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// CleanArtist strips featured-artist suffixes from an artist name.
func CleanArtist(s string) string {
	s = strings.ToLower(s)
	s = artistSplitRe.ReplaceAllString(s, "")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// NormKey is the cache key for an (artist, title) pair.
func NormKey(artist, title string) string {
	return CleanArtist(artist) + "|" + CleanTitle(title)
}

// Canonical genre buckets and their aliases, matched exactly first and then
// by substring fallback.
var canonicalGenres = map[string][]string{
	"pop": {"pop", "k-pop", "kpop", "j-pop", "jpop", "mandopop", "cantopop", "europop",
		"french pop", "international pop", "latin pop", "synthpop", "indie pop",
		"dance pop", "pop rock"},
	"rock":       {"rock", "hard rock", "soft rock", "alternative rock", "alt rock", "classic rock", "indie rock", "punk rock", "metalcore"},
	"hip-hop":    {"hip hop", "hip-hop", "rap", "trap"},
	"r&b":        {"r&b", "r&b/soul", "soul", "neo-soul", "contemporary r&b"},
	"electronic": {"electronic", "edm", "dance", "house", "techno", "trance", "electro", "drum and bass", "dnb", "dubstep"},
	"metal":      {"metal", "heavy metal", "thrash metal", "death metal"},
	"classical":  {"classical", "orchestral", "baroque", "symphony"},
	"jazz":       {"jazz", "smooth jazz", "acid jazz"},
	"blues":      {"blues"},
	"country":    {"country"},
	"folk":       {"folk", "singer-songwriter"},
	"reggae":     {"reggae", "dancehall", "ska"},
}

var genreFallbacks = []struct{ needle, canon string }{
	{"hip hop", "hip-hop"}, {"hip-hop", "hip-hop"}, {"rap", "hip-hop"},
	{"r&b", "r&b"}, {"soul", "r&b"},
	{"rock", "rock"}, {"metal", "metal"}, {"jazz", "jazz"}, {"blues", "blues"},
	{"country", "country"}, {"folk", "folk"}, {"reggae", "reggae"},
	{"dance", "electronic"}, {"edm", "electronic"}, {"house", "electronic"},
	{"techno", "electronic"}, {"trance", "electronic"},
	{"electro", "electronic"}, {"drum and bass", "electronic"}, {"dubstep", "electronic"},
}

// NormalizeGenres maps raw source genres into the canonical buckets, sorted
// and deduplicated. Unmappable genres are dropped.
func NormalizeGenres(genres []string) []string {
	mapped := make(map[string]bool)
	for _, g := range genres {
		s := strings.ToLower(strings.TrimSpace(g))
		if s == "" {
			continue
		}
		canon := matchGenre(s)
		if canon != "" {
			mapped[canon] = true
		}
	}

	out := make([]string, 0, len(mapped))
	for canon := range mapped {
		out = append(out, displayGenre(canon))
	}
	sort.Strings(out)
	return out
}

func matchGenre(s string) string {
	for canon, aliases := range canonicalGenres {
		for _, alias := range aliases {
			if s == alias {
				return canon
			}
		}
	}
	for _, fb := range genreFallbacks {
		if strings.Contains(s, fb.needle) {
			return fb.canon
		}
	}
	return ""
}

func displayGenre(canon string) string {
	switch canon {
	case "hip-hop":
		return "Hip-Hop"
	case "r&b":
		return "R&B"
	default:
		return strings.ToUpper(canon[:1]) + canon[1:]
	}
}
