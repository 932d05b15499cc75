package model

// ReportItem is one entry of the playlist report
type ReportItem struct {
	Order     int    `json:"order"`
	Performer string `json:"performer"`
	Title     string `json:"title"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// ReportStats maps performer to a rounded percentage string ("33%").
// Percentages are rounded independently and need not sum to 100.
type ReportStats map[string]string

// Report is the playlist report generated alongside the final audio
type Report struct {
	Playlist   []ReportItem `json:"playlist"`
	Statistics ReportStats  `json:"statistics"`
}

// TopSong is an aggregate row for the most requested songs
type TopSong struct {
	Title      string `json:"title"`
	YoutubeURL string `json:"youtubeUrl"`
	Count      int    `json:"count"`
}

// StatsResponse holds usage statistics for the admin page
type StatsResponse struct {
	TotalVisits      int       `json:"totalVisits"`
	TotalGenerations int       `json:"totalGenerations"`
	TopSongs         []TopSong `json:"topSongs"`
}
