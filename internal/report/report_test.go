package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/randomdance/api/internal/model"
)

func segment(title string) model.SongSegment {
	return model.SongSegment{
		YoutubeURL: "https://www.youtube.com/watch?v=abc123",
		Title:      title,
		StartTime:  "0:30",
		EndTime:    "1:30",
	}
}

func TestParseTitle_DashSeparator(t *testing.T) {
	performer, title := parseTitle("BLACKPINK - Pink Venom (MV)")
	if performer != "BLACKPINK" {
		t.Errorf("performer = %q, want %q", performer, "BLACKPINK")
	}
	if title != "Pink Venom" {
		t.Errorf("title = %q, want %q", title, "Pink Venom")
	}
}

func TestParseTitle_ColonSeparator(t *testing.T) {
	performer, title := parseTitle("NewJeans : Super Shy [Official Audio]")
	if performer != "NewJeans" {
		t.Errorf("performer = %q, want %q", performer, "NewJeans")
	}
	if title != "Super Shy" {
		t.Errorf("title = %q, want %q", title, "Super Shy")
	}
}

func TestParseTitle_BareDash(t *testing.T) {
	performer, title := parseTitle("IVE-After LIKE")
	if performer != "IVE" {
		t.Errorf("performer = %q, want %q", performer, "IVE")
	}
	if title != "After LIKE" {
		t.Errorf("title = %q, want %q", title, "After LIKE")
	}
}

func TestParseTitle_SpacedDashWins(t *testing.T) {
	// " - " has precedence over the bare "-" inside the title
	performer, title := parseTitle("aespa - Life's Too Short-English Ver.")
	if performer != "aespa" {
		t.Errorf("performer = %q, want %q", performer, "aespa")
	}
	if title != "Life's Too Short-English Ver." {
		t.Errorf("title = %q, want %q", title, "Life's Too Short-English Ver.")
	}
}

func TestParseTitle_NoSeparator(t *testing.T) {
	performer, title := parseTitle("  Gangnam Style  ")
	if performer != "Unknown" {
		t.Errorf("performer = %q, want %q", performer, "Unknown")
	}
	if title != "Gangnam Style" {
		t.Errorf("title = %q, want %q", title, "Gangnam Style")
	}
}

func TestParseTitle_EmptyTitle(t *testing.T) {
	performer, title := parseTitle("")
	if performer != "Unknown" {
		t.Errorf("performer = %q, want %q", performer, "Unknown")
	}
	if title != "" {
		t.Errorf("title = %q, want empty", title)
	}
}

func TestParseTitle_AnnotationOnlyRemainder(t *testing.T) {
	// Stripping annotations would leave nothing; keep the raw remainder
	performer, title := parseTitle("IU - (Official)")
	if performer != "IU" {
		t.Errorf("performer = %q, want %q", performer, "IU")
	}
	if title != "(Official)" {
		t.Errorf("title = %q, want %q", title, "(Official)")
	}
}

func TestBuild_PlaylistOrder(t *testing.T) {
	segments := []model.SongSegment{
		segment("BLACKPINK - Pink Venom (MV)"),
		segment("TWICE - FANCY"),
		segment("BLACKPINK - DDU-DU DDU-DU"),
	}

	report := Build(segments)

	if len(report.Playlist) != 3 {
		t.Fatalf("playlist length = %d, want 3", len(report.Playlist))
	}
	for i, item := range report.Playlist {
		if item.Order != i+1 {
			t.Errorf("playlist[%d].Order = %d, want %d", i, item.Order, i+1)
		}
	}
	if report.Playlist[0].Performer != "BLACKPINK" || report.Playlist[0].Title != "Pink Venom" {
		t.Errorf("playlist[0] = %+v", report.Playlist[0])
	}
	if report.Playlist[0].StartTime != "0:30" || report.Playlist[0].EndTime != "1:30" {
		t.Errorf("playlist[0] times = %q-%q", report.Playlist[0].StartTime, report.Playlist[0].EndTime)
	}
}

func TestBuild_StatisticsIndependentRounding(t *testing.T) {
	// Three distinct performers: each rounds to 33% independently,
	// the total is not forced to 100
	segments := []model.SongSegment{
		segment("BLACKPINK - Pink Venom"),
		segment("TWICE - FANCY"),
		segment("IVE - After LIKE"),
	}

	report := Build(segments)

	for _, performer := range []string{"BLACKPINK", "TWICE", "IVE"} {
		if got := report.Statistics[performer]; got != "33%" {
			t.Errorf("statistics[%q] = %q, want %q", performer, got, "33%")
		}
	}
}

func TestBuild_StatisticsCounts(t *testing.T) {
	segments := []model.SongSegment{
		segment("BLACKPINK - Pink Venom"),
		segment("BLACKPINK - DDU-DU DDU-DU"),
		segment("TWICE - FANCY"),
	}

	report := Build(segments)

	if got := report.Statistics["BLACKPINK"]; got != "67%" {
		t.Errorf("statistics[BLACKPINK] = %q, want %q", got, "67%")
	}
	if got := report.Statistics["TWICE"]; got != "33%" {
		t.Errorf("statistics[TWICE] = %q, want %q", got, "33%")
	}
}

func TestBuild_FallbackTitle(t *testing.T) {
	report := Build([]model.SongSegment{segment("")})

	if report.Playlist[0].Performer != "Unknown" {
		t.Errorf("performer = %q, want Unknown", report.Playlist[0].Performer)
	}
	if got := report.Statistics["Unknown"]; got != "100%" {
		t.Errorf("statistics[Unknown] = %q, want 100%%", got)
	}
}

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	report := Build([]model.SongSegment{segment("BLACKPINK - Pink Venom")})

	if err := Write(report, path); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}

	var decoded model.Report
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if len(decoded.Playlist) != 1 || decoded.Playlist[0].Performer != "BLACKPINK" {
		t.Errorf("decoded report = %+v", decoded)
	}
}
