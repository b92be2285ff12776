package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	ErrTaskNotFound = errors.New("task not found")

	// ErrTaskTerminal rejects writes to a task that already reached a final
	// state.
	ErrTaskTerminal = errors.New("task is in a terminal state")
)

// TaskStore keeps task state keyed by task id. Readers always get snapshots;
// each task has a single writer (its pipeline run), so Update does not need
// cross-writer coordination beyond atomic replacement of the stored value.
type TaskStore interface {
	Save(ctx context.Context, t *Task) error
	Get(ctx context.Context, taskID string) (*Task, error)
	Update(ctx context.Context, taskID string, mutate func(*Task) error) (*Task, error)
	All(ctx context.Context) ([]*Task, error)
	Close() error
}

// MemoryStore is an in-process TaskStore used when no Redis is configured and
// in tests.
type MemoryStore struct {
	mu    sync.RWMutex
	tasks map[string]*Task
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tasks: make(map[string]*Task)}
}

func (s *MemoryStore) Save(_ context.Context, t *Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks[t.ID] = t.clone()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, taskID string) (*Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[taskID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}

	return t.clone(), nil
}

func (s *MemoryStore) Update(_ context.Context, taskID string, mutate func(*Task) error) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[taskID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}

	updated := t.clone()
	if err := mutate(updated); err != nil {
		return nil, err
	}

	s.tasks[taskID] = updated
	return updated.clone(), nil
}

func (s *MemoryStore) All(_ context.Context) ([]*Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := make([]*Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		tasks = append(tasks, t.clone())
	}

	return tasks, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
