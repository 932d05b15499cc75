package worker

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// LocalRunner executes generation tasks in-process on a goroutine per
// job. It stands in for the asynq queue when Redis is unavailable, at
// the cost of losing queued jobs on restart.
type LocalRunner struct {
	worker *GenerateWorker
	logger zerolog.Logger
}

func NewLocalRunner(worker *GenerateWorker, logger zerolog.Logger) *LocalRunner {
	return &LocalRunner{worker: worker, logger: logger}
}

// Enqueue spawns the job's background task immediately. Options are
// accepted for interface compatibility and ignored.
func (r *LocalRunner) Enqueue(task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	go func() {
		if err := r.worker.ProcessTask(context.Background(), task); err != nil {
			r.logger.Error().Err(err).Msg("local task failed")
		}
	}()
	return &asynq.TaskInfo{}, nil
}
