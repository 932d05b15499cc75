package report

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"regexp"
	"strings"

	"github.com/randomdance/api/internal/model"
)

var annotationPattern = regexp.MustCompile(`\[.*?\]|\(.*?\)`)

// separators tried in order; first match wins.
var separators = []string{" - ", " : ", "-"}

// parseTitle splits a display title into performer and song title using
// separator heuristics. This is best-effort: hyphenated performer names
// and multi-dash titles can split wrong.
func parseTitle(videoTitle string) (performer, title string) {
	for _, sep := range separators {
		if !strings.Contains(videoTitle, sep) {
			continue
		}
		parts := strings.Split(videoTitle, sep)
		if len(parts) < 2 {
			continue
		}

		performer = strings.TrimSpace(parts[0])
		// Rejoin in case the title itself contained the separator
		title = strings.TrimSpace(strings.Join(parts[1:], sep))

		// Strip annotations like "[MV]" or "(Official Audio)"
		clean := strings.TrimSpace(annotationPattern.ReplaceAllString(title, ""))
		if clean != "" {
			title = clean
		}
		return performer, title
	}

	return "Unknown", strings.TrimSpace(videoTitle)
}

// Build derives the playlist report from the submitted segment list. The
// playlist preserves submission order; statistics hold each performer's
// share of segments as an independently rounded percentage.
func Build(segments []model.SongSegment) *model.Report {
	playlist := make([]model.ReportItem, 0, len(segments))
	counts := make(map[string]int)

	for i, segment := range segments {
		performer, title := parseTitle(segment.Title)

		playlist = append(playlist, model.ReportItem{
			Order:     i + 1,
			Performer: performer,
			Title:     title,
			StartTime: segment.StartTime,
			EndTime:   segment.EndTime,
		})
		counts[performer]++
	}

	statistics := make(model.ReportStats, len(counts))
	total := len(segments)
	for performer, count := range counts {
		pct := int(math.Round(float64(count) / float64(total) * 100))
		statistics[performer] = fmt.Sprintf("%d%%", pct)
	}

	return &model.Report{Playlist: playlist, Statistics: statistics}
}

// Write persists a report as indented JSON.
func Write(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
