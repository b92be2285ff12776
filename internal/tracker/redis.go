package tracker

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const taskHashKey = "scan_tasks"

// RedisStore keeps task state in a Redis hash so status queries survive
// process restarts and server replicas share one view of running scans.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(addr string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Save(ctx context.Context, t *Task) error {
	taskJSON, err := t.ToJSON()
	if err != nil {
		return err
	}

	return s.client.HSet(ctx, taskHashKey, t.ID, taskJSON).Err()
}

func (s *RedisStore) Get(ctx context.Context, taskID string) (*Task, error) {
	taskJSON, err := s.client.HGet(ctx, taskHashKey, taskID).Result()
	if err == redis.Nil {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	if err != nil {
		return nil, err
	}

	return TaskFromJSON(taskJSON)
}

// Update applies mutate to the stored task and writes it back as one HSET.
// Each task has a single writer, so read-modify-write is safe here; readers
// only ever decode fully written JSON values.
func (s *RedisStore) Update(ctx context.Context, taskID string, mutate func(*Task) error) (*Task, error) {
	t, err := s.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if err := mutate(t); err != nil {
		return nil, err
	}

	if err := s.Save(ctx, t); err != nil {
		return nil, err
	}

	return t, nil
}

func (s *RedisStore) All(ctx context.Context) ([]*Task, error) {
	taskMap, err := s.client.HGetAll(ctx, taskHashKey).Result()
	if err != nil {
		return nil, err
	}

	tasks := make([]*Task, 0, len(taskMap))
	for _, taskJSON := range taskMap {
		t, err := TaskFromJSON(taskJSON)
		if err != nil {
			continue
		}
		tasks = append(tasks, t)
	}

	return tasks, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
