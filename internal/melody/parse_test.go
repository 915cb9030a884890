package melody

import (
	"testing"
	"time"
)

const playlistFixture = `<!DOCTYPE html>
<html>
<head><title>Rádio Melody - playlist skladieb</title></head>
<body>
<h1 class="radio_nazov">Rádio   Melody</h1>
<img class="radio_logo_obrazok" src="/logo.png" alt="Rádio Melody">
<div class="playlist">
  <div class="row data">
    <span class="datum">Dnes</span>
    <span class="cas">14:32</span>
    <span class="interpret">Queen</span>
    <span class="titul">Radio Ga Ga</span>
  </div>
  <div class="row data">
    <span class="datum">Dnes</span>
    <span class="cas">14:28</span>
    <span class="interpret">ABBA</span>
    <span class="titul">Waterloo</span>
  </div>
  <div class="row data">
    <span class="datum">Včera</span>
    <span class="cas">23:55</span>
    <span class="interpret">Elán</span>
    <span class="titul">Tanečnice z Lúčnice</span>
  </div>
</div>
</body>
</html>`

var fixtureNow = time.Date(2025, 10, 12, 15, 0, 0, 0, Timezone())

// =============================================================================
// Row parsing
// =============================================================================

func TestParseFirstRow(t *testing.T) {
	track, ok := ParseFirstRow(playlistFixture, fixtureNow)
	if !ok {
		t.Fatal("ParseFirstRow() found no row")
	}
	if track.Artist != "Queen" {
		t.Errorf("Artist = %q, want Queen", track.Artist)
	}
	if track.Title != "Radio Ga Ga" {
		t.Errorf("Title = %q, want Radio Ga Ga", track.Title)
	}
	if track.Date != "12.10.2025" {
		t.Errorf("Date = %q, want 12.10.2025", track.Date)
	}
	if track.Time != "14:32" {
		t.Errorf("Time = %q, want 14:32", track.Time)
	}
}

func TestParseRows(t *testing.T) {
	tracks := ParseRows(playlistFixture, fixtureNow)
	if len(tracks) != 3 {
		t.Fatalf("ParseRows() returned %d tracks, want 3", len(tracks))
	}
	if tracks[2].Date != "11.10.2025" {
		t.Errorf("yesterday row Date = %q, want 11.10.2025", tracks[2].Date)
	}
	if tracks[2].Time != "23:55" {
		t.Errorf("yesterday row Time = %q, want 23:55", tracks[2].Time)
	}
}

func TestParseFirstRow_NoRows(t *testing.T) {
	if _, ok := ParseFirstRow("<html><body><p>nothing</p></body></html>", fixtureNow); ok {
		t.Error("ParseFirstRow() = ok on a page without rows")
	}
}

// =============================================================================
// Station name
// =============================================================================

func TestParseStationName_Heading(t *testing.T) {
	if got := ParseStationName(playlistFixture); got != "Rádio Melody" {
		t.Errorf("ParseStationName() = %q, want Rádio Melody", got)
	}
}

func TestParseStationName_LogoAlt(t *testing.T) {
	html := `<html><head><title>x</title></head><body>
		<img class="radio_logo_obrazok" alt="Rádio Melody"></body></html>`
	if got := ParseStationName(html); got != "Rádio Melody" {
		t.Errorf("ParseStationName() = %q, want Rádio Melody", got)
	}
}

func TestParseStationName_TitlePrefix(t *testing.T) {
	html := `<html><head><title>Rádio Melody - playlist | radia.sk</title></head><body></body></html>`
	if got := ParseStationName(html); got != "Rádio Melody" {
		t.Errorf("ParseStationName() = %q, want Rádio Melody", got)
	}
}

// =============================================================================
// Date labels
// =============================================================================

func TestParseDateLabel(t *testing.T) {
	now := time.Date(2025, 10, 12, 15, 0, 0, 0, Timezone())

	cases := []struct {
		label string
		want  string
	}{
		{"Dnes", "12.10.2025"},
		{"dnes 14:32", "12.10.2025"},
		{"Včera", "11.10.2025"},
		{"vcera", "11.10.2025"},
		{"5.3.2024", "05.03.2024"},
		{"05.03.24", "05.03.2024"},
		{"12.10.", "12.10.2025"},
		{"garbage", "12.10.2025"},
		{"", "12.10.2025"},
	}

	for _, tc := range cases {
		got := FormatDate(ParseDateLabel(tc.label, now))
		if got != tc.want {
			t.Errorf("ParseDateLabel(%q) = %s, want %s", tc.label, got, tc.want)
		}
	}
}

func TestTrackAt(t *testing.T) {
	track := Track{Date: "12.10.2025", Time: "14:32"}
	at, err := track.At()
	if err != nil {
		t.Fatalf("At() error = %v", err)
	}
	if at.Hour() != 14 || at.Minute() != 32 || at.Day() != 12 {
		t.Errorf("At() = %v, want 2025-10-12 14:32", at)
	}
}

func TestTrackKey(t *testing.T) {
	track := Track{Artist: "Queen", Title: "Radio Ga Ga", Date: "12.10.2025", Time: "14:32"}
	want := "Queen|Radio Ga Ga|12.10.2025|14:32"
	if track.Key() != want {
		t.Errorf("Key() = %q, want %q", track.Key(), want)
	}
}
