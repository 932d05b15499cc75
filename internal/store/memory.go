package store

import (
	"context"
	"sync"

	"github.com/randomdance/api/internal/model"
)

// MemoryStore holds job records in a concurrent map. Every write
// replaces the entry atomically and reads return copies, so the owning
// task can mutate its record without a lock around individual fields.
type MemoryStore struct {
	jobs sync.Map // job id -> model.Job
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Create(_ context.Context, job *model.Job) error {
	s.jobs.Store(job.ID, *job)
	return nil
}

func (s *MemoryStore) Update(_ context.Context, job *model.Job) error {
	s.jobs.Store(job.ID, *job)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, jobID string) (*model.Job, error) {
	val, ok := s.jobs.Load(jobID)
	if !ok {
		return nil, ErrNotFound
	}
	job := val.(model.Job)
	return &job, nil
}
