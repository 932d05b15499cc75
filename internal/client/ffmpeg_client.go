package client

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	"github.com/randomdance/api/internal/config"
)

// AudioAssembler concatenates audio segments with a countdown cue before
// each one and produces a single loudness-normalized output file.
type AudioAssembler interface {
	ConcatWithCountdown(ctx context.Context, segmentPaths []string, countdownPath, outputPath string) error
	EnsureCountdown(ctx context.Context, path string) error
}

// FFmpegClient wraps the ffmpeg binary for concatenation, loudness
// normalization and countdown generation.
type FFmpegClient struct {
	path   string
	logger zerolog.Logger
}

func NewFFmpegClient(cfg *config.ToolsConfig, logger zerolog.Logger) *FFmpegClient {
	return &FFmpegClient{path: cfg.FFmpegPath, logger: logger}
}

// ConcatWithCountdown builds [countdown, seg1, countdown, seg2, ...] via
// ffmpeg's concat demuxer, then applies EBU R128 loudness normalization
// (I=-16 LUFS, TP=-1.5 dB, LRA=11 LU) in a second pass. The intermediate
// concatenation file is removed once normalization succeeds; on failure
// no partial output is left behind.
func (c *FFmpegClient) ConcatWithCountdown(ctx context.Context, segmentPaths []string, countdownPath, outputPath string) error {
	if len(segmentPaths) == 0 {
		return fmt.Errorf("no segments provided")
	}

	fileListPath := strings.TrimSuffix(outputPath, ".mp3") + "_filelist.txt"
	tempConcatPath := strings.TrimSuffix(outputPath, ".mp3") + "_temp.mp3"

	fileList := buildConcatList(segmentPaths, countdownPath)
	if err := os.WriteFile(fileListPath, []byte(fileList), 0o644); err != nil {
		return fmt.Errorf("failed to write concat file list: %w", err)
	}
	defer os.Remove(fileListPath)

	// Pass 1: concatenate all files into one stream
	if err := c.run(ctx,
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", fileListPath,
		"-c:a", "libmp3lame",
		"-q:a", "2",
		"-ar", "44100",
		"-ac", "2",
		tempConcatPath,
	); err != nil {
		os.Remove(tempConcatPath)
		return fmt.Errorf("ffmpeg concatenation failed: %s", err)
	}
	defer os.Remove(tempConcatPath)

	c.logger.Debug().Str("output", outputPath).Msg("normalizing audio")

	// Pass 2: loudness normalization, re-encoded with the same settings
	if err := c.run(ctx,
		"-y",
		"-i", tempConcatPath,
		"-af", "loudnorm=I=-16:TP=-1.5:LRA=11",
		"-c:a", "libmp3lame",
		"-q:a", "2",
		"-ar", "44100",
		"-ac", "2",
		outputPath,
	); err != nil {
		os.Remove(outputPath)
		return fmt.Errorf("ffmpeg normalization failed: %s", err)
	}

	return nil
}

// EnsureCountdown generates the countdown asset if it does not exist yet.
func (c *FFmpegClient) EnsureCountdown(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	c.logger.Info().Str("path", path).Msg("countdown audio not found, generating")
	return c.GenerateCountdown(ctx, path)
}

// GenerateCountdown creates the fixed countdown cue: four short 880 Hz
// beeps one second apart followed by a longer 1760 Hz beep.
func (c *FFmpegClient) GenerateCountdown(ctx context.Context, outputPath string) error {
	args := []string{
		"-y",
		"-f", "lavfi", "-i", "sine=frequency=880:duration=0.15",
		"-f", "lavfi", "-i", "anullsrc=r=44100:cl=stereo:d=0.85",
		"-f", "lavfi", "-i", "sine=frequency=880:duration=0.15",
		"-f", "lavfi", "-i", "anullsrc=r=44100:cl=stereo:d=0.85",
		"-f", "lavfi", "-i", "sine=frequency=880:duration=0.15",
		"-f", "lavfi", "-i", "anullsrc=r=44100:cl=stereo:d=0.85",
		"-f", "lavfi", "-i", "sine=frequency=880:duration=0.15",
		"-f", "lavfi", "-i", "anullsrc=r=44100:cl=stereo:d=0.85",
		"-f", "lavfi", "-i", "sine=frequency=1760:duration=0.3",
		"-filter_complex", "[0][1][2][3][4][5][6][7][8]concat=n=9:v=0:a=1[out]",
		"-map", "[out]",
		"-c:a", "libmp3lame",
		"-q:a", "2",
		"-ar", "44100",
		"-ac", "2",
		outputPath,
	}

	if err := c.run(ctx, args...); err != nil {
		return fmt.Errorf("failed to generate countdown: %s", err)
	}
	return nil
}

// Check verifies the ffmpeg binary is available.
func (c *FFmpegClient) Check(ctx context.Context) error {
	if err := c.run(ctx, "-version"); err != nil {
		return fmt.Errorf("ffmpeg not available at %q: %s", c.path, err)
	}
	return nil
}

func (c *FFmpegClient) run(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, c.path, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return fmt.Errorf("%s", msg)
	}
	return nil
}

// buildConcatList renders the concat demuxer file list, placing the
// countdown before every segment including the first one.
func buildConcatList(segmentPaths []string, countdownPath string) string {
	lines := make([]string, 0, 2*len(segmentPaths))
	for _, segPath := range segmentPaths {
		lines = append(lines, fmt.Sprintf("file '%s'", countdownPath))
		lines = append(lines, fmt.Sprintf("file '%s'", segPath))
	}
	return strings.Join(lines, "\n") + "\n"
}
