package melody

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

var (
	wsRe    = regexp.MustCompile(`\s+`)
	dateRe  = regexp.MustCompile(`(\d{1,2})\.(\d{1,2})(?:\.(\d{2,4}))?`)
	timeRe  = regexp.MustCompile(`(\d{1,2}):(\d{2})`)
	titleRe = regexp.MustCompile(`^(.*?)(?:\s*[-–|].*)?$`)
)

// Selectors used on radia.sk playlist pages. The markup has shifted between
// redesigns, so each field accepts the historical class variants.
const (
	rowSelector     = "div.row.data, div.row_data"
	rowFallback     = "div.row, .row"
	dateSelector    = ".datum, .play_datum, .pl_datum"
	timeSelector    = ".cas, .play_cas, .pl_cas"
	artistSelector  = ".interpret, .play_interpret, .pl_interpret"
	titleSelector   = ".titul, .play_titul, .pl_titul"
	stationSelector = "h1.radio_nazov, .radio_nazov"
	logoSelector    = "img.radio_logo_obrazok"
)

// ParseDateLabel resolves a playlist date label ("Dnes", "Včera" or
// "dd.mm.yyyy") against now in the station timezone. Unparseable labels
// fall back to today's date.
func ParseDateLabel(label string, now time.Time) time.Time {
	s := strings.ToLower(strings.TrimSpace(label))
	today := now.In(Timezone())
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, Timezone())

	if strings.HasPrefix(s, "dnes") {
		return today
	}
	if strings.HasPrefix(s, "včera") || strings.HasPrefix(s, "vcera") {
		return today.AddDate(0, 0, -1)
	}

	if m := dateRe.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year := today.Year()
		if m[3] != "" {
			y, _ := strconv.Atoi(m[3])
			if len(m[3]) == 2 {
				y += 2000
			}
			year = y
		}
		return time.Date(year, time.Month(month), day, 0, 0, 0, 0, Timezone())
	}

	return today
}

// ParseStationName extracts the station name from the playlist page:
// the station heading, the logo's alt text, or the page title prefix.
func ParseStationName(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	if el := doc.Find(stationSelector).First(); el.Length() > 0 {
		return wsRe.ReplaceAllString(strings.TrimSpace(el.Text()), " ")
	}

	if logo := doc.Find(logoSelector).First(); logo.Length() > 0 {
		alt, _ := logo.Attr("alt")
		if alt == "" {
			alt, _ = logo.Attr("title")
		}
		if alt = strings.TrimSpace(alt); alt != "" {
			return alt
		}
	}

	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		if m := titleRe.FindStringSubmatch(title); m != nil {
			return strings.TrimSpace(m[1])
		}
		return title
	}

	return ""
}

// ParseFirstRow extracts the first (currently playing) playlist row.
// Returns false if the page has no parseable row.
func ParseFirstRow(html string, now time.Time) (Track, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Track{}, false
	}

	row := doc.Find(rowSelector).First()
	if row.Length() == 0 {
		row = doc.Find(rowFallback).First()
	}
	if row.Length() == 0 {
		return Track{}, false
	}
	return parseRow(row, now)
}

// ParseRows extracts every parseable playlist row on the page, newest first.
func ParseRows(html string, now time.Time) []Track {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var tracks []Track
	doc.Find(rowSelector).Each(func(_ int, row *goquery.Selection) {
		if track, ok := parseRow(row, now); ok {
			tracks = append(tracks, track)
		}
	})
	return tracks
}

func parseRow(row *goquery.Selection, now time.Time) (Track, bool) {
	dateText := row.Find(dateSelector).First().Text()
	timeText := row.Find(timeSelector).First().Text()
	artist := strings.TrimSpace(row.Find(artistSelector).First().Text())
	title := strings.TrimSpace(row.Find(titleSelector).First().Text())

	if dateText == "" || timeText == "" || artist == "" || title == "" {
		return Track{}, false
	}

	m := timeRe.FindStringSubmatch(timeText)
	if m == nil {
		return Track{}, false
	}
	hh, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])

	day := ParseDateLabel(dateText, now)
	return Track{
		Title:  title,
		Artist: artist,
		Date:   FormatDate(day),
		Time:   twoDigit(hh) + ":" + twoDigit(mm),
	}, true
}

func twoDigit(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
