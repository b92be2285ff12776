package repository

import (
	"context"
	"time"

	"github.com/parakeep/parascan/internal/tracker"
)

// ScanRepository persists scan history and per-batch delivery logs. A nil
// repository disables history without changing pipeline behavior.
type ScanRepository interface {
	SaveScan(ctx context.Context, t *tracker.Task) error
	LogBatch(ctx context.Context, entry BatchLogEntry) error
	GetRecentScans(ctx context.Context, limit int) ([]ScanSummary, error)
	GetScanStats(ctx context.Context, hours int) ([]ScanStats, error)
	Close() error
}

// BatchLogEntry records one batch's final delivery outcome.
type BatchLogEntry struct {
	TaskID      string
	BatchNumber int
	Status      string
	Attempts    int
	DurationMs  int64
	ErrorMsg    string
}

type ScanSummary struct {
	TaskID           string     `json:"task_id"`
	Directory        string     `json:"directory"`
	Strategy         string     `json:"strategy"`
	Status           string     `json:"status"`
	TotalFiles       int        `json:"total_files"`
	ProcessedBatches int        `json:"processed_batches"`
	TotalBatches     int        `json:"total_batches"`
	CreatedAt        time.Time  `json:"created_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	Error            string     `json:"error,omitempty"`
}

type ScanStats struct {
	Status        string  `json:"status"`
	Count         int     `json:"count"`
	AvgFiles      float64 `json:"avg_files"`
	AvgBatches    float64 `json:"avg_batches"`
	AvgDurationMs float64 `json:"avg_duration_ms"`
}
