package model

// VideoInfo holds metadata extracted from a source video
type VideoInfo struct {
	Title     string `json:"title"`
	Duration  int    `json:"duration"` // seconds
	Thumbnail string `json:"thumbnail"`
	Channel   string `json:"channel"`
}

// SearchResult is one candidate source returned by a video search
type SearchResult struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	Title     string `json:"title"`
	Duration  int    `json:"duration"`
	Thumbnail string `json:"thumbnail"`
	Channel   string `json:"channel"`
}
