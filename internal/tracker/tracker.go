package tracker

import (
	"context"
	"fmt"
	"time"
)

// Tracker applies lifecycle transitions to tasks held in a TaskStore. The
// valid per-task flow is processing → completed | partial_failure | failed;
// terminal states are immutable.
type Tracker struct {
	store TaskStore
}

func NewTracker(store TaskStore) *Tracker {
	return &Tracker{store: store}
}

func (tr *Tracker) Create(ctx context.Context, t *Task) error {
	return tr.store.Save(ctx, t)
}

func (tr *Tracker) Get(ctx context.Context, taskID string) (*Task, error) {
	return tr.store.Get(ctx, taskID)
}

func (tr *Tracker) All(ctx context.Context) ([]*Task, error) {
	return tr.store.All(ctx)
}

// MarkBatchSent records a server acknowledgment for one batch. When every
// batch is sent the task completes.
func (tr *Tracker) MarkBatchSent(ctx context.Context, taskID string, batchNumber int) (*Task, error) {
	return tr.store.Update(ctx, taskID, func(t *Task) error {
		if t.Terminal() {
			return ErrTaskTerminal
		}

		state, err := batchState(t, batchNumber)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		state.Status = BatchSent
		state.SentAt = &now

		if t.ProcessedBatches() == t.TotalBatches {
			t.Status = StatusCompleted
			t.CompletedAt = &now
		}

		return nil
	})
}

// MarkBatchFailed records a batch that exhausted retries or hit a
// non-retryable rejection. The task ends in partial_failure; batches after
// this one are never attempted.
func (tr *Tracker) MarkBatchFailed(ctx context.Context, taskID string, batchNumber int, reason string) (*Task, error) {
	return tr.store.Update(ctx, taskID, func(t *Task) error {
		if t.Terminal() {
			return ErrTaskTerminal
		}

		state, err := batchState(t, batchNumber)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		state.Status = BatchFailed
		state.Error = reason

		t.Status = StatusPartialFailure
		t.CompletedAt = &now
		t.Error = fmt.Sprintf("batch %d failed: %s", batchNumber, reason)

		return nil
	})
}

// Fail marks a task that could not run at all, before any batch outcome.
func (tr *Tracker) Fail(ctx context.Context, taskID string, reason string) (*Task, error) {
	return tr.store.Update(ctx, taskID, func(t *Task) error {
		if t.Terminal() {
			return ErrTaskTerminal
		}

		now := time.Now().UTC()
		t.Status = StatusFailed
		t.CompletedAt = &now
		t.Error = reason

		return nil
	})
}

// StatusReport is the read model served to status queries.
type StatusReport struct {
	TaskID           string       `json:"taskId"`
	Directory        string       `json:"directory"`
	Strategy         string       `json:"strategy"`
	Status           TaskStatus   `json:"status"`
	TotalFiles       int          `json:"totalFiles"`
	ProcessedBatches int          `json:"processedBatches"`
	TotalBatches     int          `json:"totalBatches"`
	Batches          []BatchState `json:"perBatchStatus"`
	CreatedAt        time.Time    `json:"createdAt"`
	CompletedAt      *time.Time   `json:"completedAt,omitempty"`
	Error            string       `json:"error,omitempty"`
}

func (tr *Tracker) Status(ctx context.Context, taskID string) (*StatusReport, error) {
	t, err := tr.store.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}

	return &StatusReport{
		TaskID:           t.ID,
		Directory:        t.Directory,
		Strategy:         t.Strategy,
		Status:           t.Status,
		TotalFiles:       t.TotalFiles,
		ProcessedBatches: t.ProcessedBatches(),
		TotalBatches:     t.TotalBatches,
		Batches:          t.Batches,
		CreatedAt:        t.CreatedAt,
		CompletedAt:      t.CompletedAt,
		Error:            t.Error,
	}, nil
}

func batchState(t *Task, batchNumber int) (*BatchState, error) {
	if batchNumber < 1 || batchNumber > len(t.Batches) {
		return nil, fmt.Errorf("batch number %d out of range for task %s", batchNumber, t.ID)
	}

	return &t.Batches[batchNumber-1], nil
}
