package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	"github.com/randomdance/api/internal/config"
	"github.com/randomdance/api/internal/model"
)

// MediaInfoProvider fetches metadata for a video reference and searches
// for candidate sources.
type MediaInfoProvider interface {
	FetchInfo(ctx context.Context, url string) (*model.VideoInfo, error)
	Search(ctx context.Context, query string, limit int) ([]model.SearchResult, error)
}

// SegmentDownloader extracts the audio of a single time window from a
// video reference into a local file.
type SegmentDownloader interface {
	DownloadSegment(ctx context.Context, url, startTime, endTime, outputPath string) error
}

// YtdlpClient wraps the yt-dlp binary for metadata lookup, search and
// audio segment extraction.
type YtdlpClient struct {
	path   string
	logger zerolog.Logger
}

func NewYtdlpClient(cfg *config.ToolsConfig, logger zerolog.Logger) *YtdlpClient {
	return &YtdlpClient{path: cfg.YtdlpPath, logger: logger}
}

// FetchInfo extracts video metadata using yt-dlp --dump-json.
func (c *YtdlpClient) FetchInfo(ctx context.Context, url string) (*model.VideoInfo, error) {
	stdout, err := c.run(ctx, "--dump-json", "--no-download", url)
	if err != nil {
		return nil, err
	}
	return parseVideoInfo(stdout)
}

// Search runs a yt-dlp flat-playlist search and returns up to limit
// resolvable results.
func (c *YtdlpClient) Search(ctx context.Context, query string, limit int) ([]model.SearchResult, error) {
	stdout, err := c.run(ctx,
		"--dump-json",
		"--no-download",
		"--flat-playlist",
		fmt.Sprintf("ytsearch%d:%s", limit, query),
	)
	if err != nil {
		return nil, err
	}
	return parseSearchResults(stdout)
}

// DownloadSegment downloads the audio of one time window. yt-dlp's
// --download-sections avoids fetching the whole video.
func (c *YtdlpClient) DownloadSegment(ctx context.Context, url, startTime, endTime, outputPath string) error {
	c.logger.Debug().
		Str("url", url).
		Str("start", startTime).
		Str("end", endTime).
		Msg("downloading segment")

	_, err := c.run(ctx,
		"--download-sections", fmt.Sprintf("*%s-%s", startTime, endTime),
		"-x",
		"--audio-format", "mp3",
		"-o", outputPath,
		"--no-playlist",
		"--quiet",
		url,
	)
	return err
}

// Check verifies the yt-dlp binary is available.
func (c *YtdlpClient) Check(ctx context.Context) error {
	if _, err := c.run(ctx, "--version"); err != nil {
		return fmt.Errorf("yt-dlp not available at %q: %w", c.path, err)
	}
	return nil
}

func (c *YtdlpClient) run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, c.path, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("yt-dlp failed: %s", msg)
	}
	return stdout.Bytes(), nil
}

// videoMetadata is the subset of yt-dlp's JSON output we consume.
type videoMetadata struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Duration  float64 `json:"duration"`
	Thumbnail string  `json:"thumbnail"`
	Channel   string  `json:"channel"`
	Uploader  string  `json:"uploader"`
}

func (m *videoMetadata) channelName() string {
	if m.Channel != "" {
		return m.Channel
	}
	if m.Uploader != "" {
		return m.Uploader
	}
	return "Unknown"
}

func parseVideoInfo(data []byte) (*model.VideoInfo, error) {
	var meta videoMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse video info: %w", err)
	}

	title := meta.Title
	if title == "" {
		title = "Unknown Title"
	}

	return &model.VideoInfo{
		Title:     title,
		Duration:  int(meta.Duration),
		Thumbnail: meta.Thumbnail,
		Channel:   meta.channelName(),
	}, nil
}

// parseSearchResults parses the JSON-lines output of a flat-playlist
// search, one result per line.
func parseSearchResults(data []byte) ([]model.SearchResult, error) {
	results := []model.SearchResult{}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var meta videoMetadata
		if err := json.Unmarshal(line, &meta); err != nil {
			return nil, fmt.Errorf("failed to parse search result: %w", err)
		}
		if meta.ID == "" {
			continue
		}

		results = append(results, model.SearchResult{
			ID:        meta.ID,
			URL:       "https://www.youtube.com/watch?v=" + meta.ID,
			Title:     meta.Title,
			Duration:  int(meta.Duration),
			Thumbnail: meta.Thumbnail,
			Channel:   meta.channelName(),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse search results: %w", err)
	}

	return results, nil
}
