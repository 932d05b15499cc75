package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/randomdance/api/internal/config"
	"github.com/randomdance/api/internal/model"
	"github.com/randomdance/api/internal/store"
)

const TaskTypeGenerate = "generate:process"

// GenerateTaskPayload is the task body handed to the background worker.
type GenerateTaskPayload struct {
	JobID    string              `json:"jobId"`
	Segments []model.SongSegment `json:"segments"`
}

// TaskEnqueuer schedules a background task. Satisfied by *asynq.Client.
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// GenerateService owns the job lifecycle: it validates submissions,
// creates job records and schedules the background generation task.
type GenerateService struct {
	store     store.JobStore
	enqueuer  TaskEnqueuer
	analytics *AnalyticsService
	paths     *config.PathsConfig
	logger    zerolog.Logger
}

func NewGenerateService(jobStore store.JobStore, enqueuer TaskEnqueuer, analytics *AnalyticsService, paths *config.PathsConfig, logger zerolog.Logger) *GenerateService {
	return &GenerateService{
		store:     jobStore,
		enqueuer:  enqueuer,
		analytics: analytics,
		paths:     paths,
		logger:    logger,
	}
}

// Submit validates the segment list, creates a processing job record and
// schedules the background task. It returns the job id without waiting
// for any of the work.
func (s *GenerateService) Submit(ctx context.Context, segments []model.SongSegment) (string, error) {
	if len(segments) == 0 {
		return "", &ValidationError{Reason: "no segments provided"}
	}

	for i, seg := range segments {
		start, err := model.ParseTimestamp(seg.StartTime)
		if err != nil {
			return "", &ValidationError{Reason: fmt.Sprintf("segment %d: invalid startTime %q", i+1, seg.StartTime)}
		}
		end, err := model.ParseTimestamp(seg.EndTime)
		if err != nil {
			return "", &ValidationError{Reason: fmt.Sprintf("segment %d: invalid endTime %q", i+1, seg.EndTime)}
		}
		if end <= start {
			return "", &ValidationError{Reason: fmt.Sprintf("segment %d: endTime must be after startTime", i+1)}
		}
	}

	jobID := uuid.New().String()
	job := &model.Job{
		ID:        jobID,
		Status:    model.JobStatusProcessing,
		Progress:  "Starting...",
		CreatedAt: time.Now(),
	}

	if err := s.store.Create(ctx, job); err != nil {
		return "", fmt.Errorf("failed to save job: %w", err)
	}

	payload, err := json.Marshal(GenerateTaskPayload{JobID: jobID, Segments: segments})
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	task := asynq.NewTask(TaskTypeGenerate, payload)
	if _, err := s.enqueuer.Enqueue(task,
		asynq.Queue("generate"),
		asynq.MaxRetry(0),
		asynq.Timeout(30*time.Minute),
	); err != nil {
		return "", fmt.Errorf("failed to enqueue task: %w", err)
	}

	if s.analytics != nil {
		s.analytics.LogGeneration(ctx, jobID, segments)
	}

	s.logger.Info().Str("job_id", jobID).Int("segments", len(segments)).Msg("generation job submitted")
	return jobID, nil
}

// Status returns a snapshot of the job record.
func (s *GenerateService) Status(ctx context.Context, jobID string) (*model.Job, error) {
	job, err := s.store.Get(ctx, jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return job, nil
}

// OutputPath returns the path of the final audio artifact once the job
// has completed.
func (s *GenerateService) OutputPath(ctx context.Context, jobID string) (string, error) {
	job, err := s.Status(ctx, jobID)
	if err != nil {
		return "", err
	}
	if job.Status != model.JobStatusComplete || job.Filename == "" {
		return "", ErrJobNotReady
	}
	return filepath.Join(s.paths.TempDir, job.Filename), nil
}

// ReportPath returns the path of the JSON report artifact once the job
// has completed.
func (s *GenerateService) ReportPath(ctx context.Context, jobID string) (string, error) {
	job, err := s.Status(ctx, jobID)
	if err != nil {
		return "", err
	}
	if job.Status != model.JobStatusComplete || job.ReportFilename == "" {
		return "", ErrJobNotReady
	}
	return filepath.Join(s.paths.TempDir, job.ReportFilename), nil
}
