// Package tracker owns the lifecycle state of directory-scan tasks and the
// store abstraction they are kept in.
package tracker

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type (
	TaskStatus  string
	BatchStatus string
)

const (
	StatusProcessing     TaskStatus = "processing"
	StatusCompleted      TaskStatus = "completed"
	StatusPartialFailure TaskStatus = "partial_failure"
	StatusFailed         TaskStatus = "failed"
)

const (
	BatchPending BatchStatus = "pending"
	BatchSent    BatchStatus = "sent"
	BatchFailed  BatchStatus = "failed"
)

// BatchState tracks one batch's delivery outcome within a task.
type BatchState struct {
	Number     int         `json:"number"`
	EntryCount int         `json:"entryCount"`
	Status     BatchStatus `json:"status"`
	Error      string      `json:"error,omitempty"`
	SentAt     *time.Time  `json:"sentAt,omitempty"`
}

// Task is one end-to-end scan-and-deliver run over a single root directory.
// It is mutated only through the tracker; terminal statuses are final.
type Task struct {
	ID           string       `json:"taskId"`
	Directory    string       `json:"directory"`
	Strategy     string       `json:"strategy"`
	TotalFiles   int          `json:"totalFiles"`
	TotalBatches int          `json:"totalBatches"`
	Batches      []BatchState `json:"batches"`
	Status       TaskStatus   `json:"status"`
	CreatedAt    time.Time    `json:"createdAt"`
	CompletedAt  *time.Time   `json:"completedAt,omitempty"`
	Error        string       `json:"error,omitempty"`
}

// NewTask builds a processing task with one pending batch state per batch.
// Zero batches leave the task completed on creation: an empty directory has
// nothing to deliver.
func NewTask(directory, strategy string, totalFiles int, batchSizes []int) *Task {
	now := time.Now().UTC()
	t := &Task{
		ID:           uuid.New().String(),
		Directory:    directory,
		Strategy:     strategy,
		TotalFiles:   totalFiles,
		TotalBatches: len(batchSizes),
		Batches:      make([]BatchState, len(batchSizes)),
		Status:       StatusProcessing,
		CreatedAt:    now,
	}

	for i, size := range batchSizes {
		t.Batches[i] = BatchState{Number: i + 1, EntryCount: size, Status: BatchPending}
	}

	if t.TotalBatches == 0 {
		t.Status = StatusCompleted
		t.CompletedAt = &now
	}

	return t
}

// Terminal reports whether the task reached a final state.
func (t *Task) Terminal() bool {
	switch t.Status {
	case StatusCompleted, StatusPartialFailure, StatusFailed:
		return true
	default:
		return false
	}
}

// ProcessedBatches counts batches acknowledged by the remote store.
func (t *Task) ProcessedBatches() int {
	count := 0
	for _, b := range t.Batches {
		if b.Status == BatchSent {
			count++
		}
	}

	return count
}

func (t *Task) ToJSON() (string, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

func TaskFromJSON(data string) (*Task, error) {
	var task Task
	if err := json.Unmarshal([]byte(data), &task); err != nil {
		return nil, err
	}

	return &task, nil
}

// clone returns a deep copy so store readers never observe in-flight writes.
func (t *Task) clone() *Task {
	cp := *t
	cp.Batches = make([]BatchState, len(t.Batches))
	copy(cp.Batches, t.Batches)
	return &cp
}
