package store

import (
	"context"
	"errors"

	"github.com/randomdance/api/internal/model"
)

// ErrNotFound is returned when no job record exists for an id.
var ErrNotFound = errors.New("job not found")

// JobStore persists job records keyed by job id. Each record is owned by
// the background task driving that job: the owner replaces the whole
// record on every update, readers always see a complete snapshot.
type JobStore interface {
	Create(ctx context.Context, job *model.Job) error
	Get(ctx context.Context, jobID string) (*model.Job, error)
	Update(ctx context.Context, job *model.Job) error
}
