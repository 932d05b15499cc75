package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/randomdance/api/internal/client"
	"github.com/randomdance/api/internal/model"
	"github.com/randomdance/api/internal/report"
	"github.com/randomdance/api/internal/service"
	"github.com/randomdance/api/internal/store"
)

// GenerateWorker drives one generation job to completion: it downloads
// each segment in submission order, assembles them with a countdown cue
// before every segment, writes the playlist report and flips the job to
// complete. Any failure marks the job errored and removes intermediate
// segment files.
type GenerateWorker struct {
	store         store.JobStore
	downloader    client.SegmentDownloader
	assembler     client.AudioAssembler
	tempDir       string
	countdownPath string
	logger        zerolog.Logger
}

func NewGenerateWorker(jobStore store.JobStore, downloader client.SegmentDownloader, assembler client.AudioAssembler, tempDir, countdownPath string, logger zerolog.Logger) *GenerateWorker {
	return &GenerateWorker{
		store:         jobStore,
		downloader:    downloader,
		assembler:     assembler,
		tempDir:       tempDir,
		countdownPath: countdownPath,
		logger:        logger,
	}
}

// ProcessTask handles one generation task. Failures are terminal: the
// job record carries the error and the task is never retried.
func (w *GenerateWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload service.GenerateTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal task payload: %w", err)
	}

	w.logger.Info().
		Str("job_id", payload.JobID).
		Int("segments", len(payload.Segments)).
		Msg("starting generation job")

	if err := w.process(ctx, payload.JobID, payload.Segments); err != nil {
		w.logger.Error().Err(err).Str("job_id", payload.JobID).Msg("generation job failed")
		w.failJob(ctx, payload.JobID, err.Error())
		return nil
	}

	w.logger.Info().Str("job_id", payload.JobID).Msg("generation job completed")
	return nil
}

func (w *GenerateWorker) process(ctx context.Context, jobID string, segments []model.SongSegment) (err error) {
	segmentPaths := make([]string, 0, len(segments))
	defer func() {
		if err != nil {
			w.cleanup(segmentPaths)
		}
	}()

	// Acquire segments strictly in order; countdown placement and the
	// report depend on it, and extraction is too heavy to parallelize.
	for i, segment := range segments {
		w.setProgress(ctx, jobID, fmt.Sprintf("Downloading segment %d/%d: %s", i+1, len(segments), segment.Title))

		segPath := filepath.Join(w.tempDir, fmt.Sprintf("%s_segment_%d.mp3", jobID, i))
		if err = w.downloader.DownloadSegment(ctx, segment.YoutubeURL, segment.StartTime, segment.EndTime, segPath); err != nil {
			return fmt.Errorf("download segment %d: %w", i+1, err)
		}
		segmentPaths = append(segmentPaths, segPath)
	}

	w.setProgress(ctx, jobID, "Combining audio...")

	outputFilename := fmt.Sprintf("output_%s.mp3", jobID)
	outputPath := filepath.Join(w.tempDir, outputFilename)
	if err = w.assembler.ConcatWithCountdown(ctx, segmentPaths, w.countdownPath, outputPath); err != nil {
		return err
	}

	w.cleanup(segmentPaths)
	segmentPaths = nil

	reportFilename := fmt.Sprintf("%s_report.json", jobID)
	if err = report.Write(report.Build(segments), filepath.Join(w.tempDir, reportFilename)); err != nil {
		return err
	}

	// The task context may have expired by now; the record write must
	// still land or the job is stuck in processing.
	storeCtx := context.WithoutCancel(ctx)
	job, err := w.store.Get(storeCtx, jobID)
	if err != nil {
		return fmt.Errorf("load job: %w", err)
	}

	now := time.Now()
	job.Status = model.JobStatusComplete
	job.Progress = ""
	job.Filename = outputFilename
	job.ReportFilename = reportFilename
	job.CompletedAt = &now

	if err = w.store.Update(storeCtx, job); err != nil {
		return fmt.Errorf("save job: %w", err)
	}
	return nil
}

func (w *GenerateWorker) setProgress(ctx context.Context, jobID, progress string) {
	ctx = context.WithoutCancel(ctx)
	job, err := w.store.Get(ctx, jobID)
	if err != nil {
		w.logger.Warn().Err(err).Str("job_id", jobID).Msg("failed to load job for progress update")
		return
	}
	job.Progress = progress
	if err := w.store.Update(ctx, job); err != nil {
		w.logger.Warn().Err(err).Str("job_id", jobID).Msg("failed to update progress")
	}
}

func (w *GenerateWorker) failJob(ctx context.Context, jobID, errMsg string) {
	// Cancellation is a common cause of the failure being recorded, so
	// the write must not run on the canceled task context.
	ctx = context.WithoutCancel(ctx)
	job, err := w.store.Get(ctx, jobID)
	if err != nil {
		w.logger.Warn().Err(err).Str("job_id", jobID).Msg("failed to load job for error update")
		return
	}

	now := time.Now()
	job.Status = model.JobStatusError
	job.Progress = ""
	job.Error = errMsg
	job.CompletedAt = &now

	if err := w.store.Update(ctx, job); err != nil {
		w.logger.Warn().Err(err).Str("job_id", jobID).Msg("failed to mark job as errored")
	}
}

// cleanup removes intermediate segment files. Best-effort: removal
// failures never escalate into the job's error state.
func (w *GenerateWorker) cleanup(paths []string) {
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			w.logger.Warn().Err(err).Str("path", path).Msg("failed to remove temp file")
		}
	}
}
