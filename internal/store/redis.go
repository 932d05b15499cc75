package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/randomdance/api/internal/model"
)

// RedisStore keeps job records as JSON values under "job:<id>". Records
// are written without a TTL; the core never deletes jobs.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Create(ctx context.Context, job *model.Job) error {
	return s.save(ctx, job)
}

func (s *RedisStore) Update(ctx context.Context, job *model.Job) error {
	return s.save(ctx, job)
}

func (s *RedisStore) Get(ctx context.Context, jobID string) (*model.Job, error) {
	data, err := s.client.Get(ctx, jobKey(jobID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get job: %w", err)
	}

	var job model.Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("unmarshal job: %w", err)
	}
	return &job, nil
}

func (s *RedisStore) save(ctx context.Context, job *model.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	if err := s.client.Set(ctx, jobKey(job.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("save job: %w", err)
	}
	return nil
}

func jobKey(jobID string) string {
	return "job:" + jobID
}
