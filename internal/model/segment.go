package model

import (
	"fmt"
	"strconv"
	"strings"
)

// SongSegment represents one requested clip of a source video
type SongSegment struct {
	YoutubeURL string `json:"youtubeUrl" validate:"required,url"`
	Title      string `json:"title"`
	StartTime  string `json:"startTime" validate:"required"`
	EndTime    string `json:"endTime" validate:"required"`
}

// GenerateRequest represents the request to start a generation job
type GenerateRequest struct {
	Segments []SongSegment `json:"segments" validate:"required,min=1,dive"`
}

// GenerateResponse represents the response when starting a generation
type GenerateResponse struct {
	JobID string `json:"jobId"`
}

// ParseTimestamp parses "M:SS", "MM:SS" or "H:MM:SS" into seconds.
func ParseTimestamp(ts string) (int, error) {
	parts := strings.Split(ts, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", ts)
	}

	total := 0
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid timestamp %q", ts)
		}
		total = total*60 + n
	}
	return total, nil
}

// FormatTimestamp formats seconds as "M:SS" or "H:MM:SS".
func FormatTimestamp(seconds int) string {
	hrs := seconds / 3600
	mins := (seconds % 3600) / 60
	secs := seconds % 60

	if hrs > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hrs, mins, secs)
	}
	return fmt.Sprintf("%d:%02d", mins, secs)
}
