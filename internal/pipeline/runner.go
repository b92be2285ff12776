// Package pipeline orchestrates a full scan run: directory traversal,
// metadata extraction, PARA classification, batching and sequential delivery.
package pipeline

import (
	"context"
	"log"
	"time"

	"github.com/parakeep/parascan/internal/batch"
	"github.com/parakeep/parascan/internal/delivery"
	"github.com/parakeep/parascan/internal/extract"
	"github.com/parakeep/parascan/internal/metrics"
	"github.com/parakeep/parascan/internal/notify"
	"github.com/parakeep/parascan/internal/record"
	"github.com/parakeep/parascan/internal/repository"
	"github.com/parakeep/parascan/internal/scan"
	"github.com/parakeep/parascan/internal/tracker"
)

// Deliverer sends one batch and reports its final outcome.
type Deliverer interface {
	Deliver(ctx context.Context, req *delivery.Request) delivery.Result
}

// RunnerConfig wires the runner's collaborators. Repository and Notifier are
// optional; the rest are required.
type RunnerConfig struct {
	Tracker    *tracker.Tracker
	Registry   *extract.Registry
	Client     Deliverer
	Repository repository.ScanRepository
	Notifier   notify.Notifier
	UserID     string
}

// Runner executes scan tasks. Submit validates and walks synchronously, then
// delivers batches in the background one at a time.
type Runner struct {
	cfg RunnerConfig
}

func NewRunner(cfg RunnerConfig) *Runner {
	return &Runner{cfg: cfg}
}

// Submission summarizes an accepted scan request.
type Submission struct {
	TaskID       string `json:"taskId"`
	Directory    string `json:"directory"`
	Strategy     string `json:"strategy"`
	TotalFiles   int    `json:"totalFiles"`
	TotalBatches int    `json:"totalBatches"`
}

// Submit resolves the root, walks it, extracts and classifies every record,
// builds batches and registers the task. Delivery runs on its own goroutine;
// the returned submission is available immediately.
func (r *Runner) Submit(ctx context.Context, rawPath, rawStrategy string) (*Submission, error) {
	root, err := scan.Resolve(rawPath)
	if err != nil {
		return nil, err
	}

	records, err := scan.Walk(root)
	if err != nil {
		return nil, err
	}

	for i := range records {
		r.enrich(ctx, &records[i])
	}

	strategy := batch.ParseStrategy(rawStrategy)
	batches := batch.Build(records, strategy.Size())

	sizes := make([]int, len(batches))
	for i, b := range batches {
		sizes[i] = len(b.Records)
	}

	task := tracker.NewTask(root, string(strategy), len(records), sizes)
	if err := r.cfg.Tracker.Create(ctx, task); err != nil {
		return nil, err
	}

	metrics.RecordScanSubmitted(string(strategy), len(records))
	log.Printf("Scan %s submitted: %s (%d files, %d batches, strategy %s)",
		task.ID, root, len(records), len(batches), strategy)

	if len(batches) == 0 {
		r.finish(context.WithoutCancel(ctx), task)
	} else {
		go r.deliverAll(context.WithoutCancel(ctx), task, batches)
	}

	return &Submission{
		TaskID:       task.ID,
		Directory:    root,
		Strategy:     string(strategy),
		TotalFiles:   len(records),
		TotalBatches: len(batches),
	}, nil
}

// enrich runs extraction on regular files and classifies every record.
// Directories carry no keywords but are classified like files.
func (r *Runner) enrich(ctx context.Context, rec *record.FileRecord) {
	if !rec.IsDirectory && rec.FileType != record.TypeUnknown {
		insights := r.cfg.Registry.Dispatch(ctx, rec.AbsolutePath, rec.FileType)
		rec.Keywords = insights.Keywords
		rec.Caption = insights.Caption
		rec.Confidence = insights.Confidence
	}

	rec.Bucket = record.Classify(rec.IsDevelopment, rec.Keywords)
}

// deliverAll sends batches strictly in order. The first batch that fails
// ends the task in partial_failure; later batches are never attempted.
func (r *Runner) deliverAll(ctx context.Context, task *tracker.Task, batches []batch.Batch) {
	for _, b := range batches {
		start := time.Now()
		result := r.cfg.Client.Deliver(ctx, &delivery.Request{
			TaskID:       task.ID,
			BatchNumber:  b.Number,
			TotalBatches: b.Total,
			Directory:    task.Directory,
			UserID:       r.cfg.UserID,
			Strategy:     task.Strategy,
			GeneratedAt:  time.Now().UTC(),
			Entries:      b.Records,
		})
		elapsed := time.Since(start)

		r.logBatch(ctx, task.ID, b.Number, result, elapsed)

		if result.Kind != delivery.Accepted {
			metrics.RecordBatchFailed(string(result.Kind), result.Attempts, elapsed)

			updated, err := r.cfg.Tracker.MarkBatchFailed(ctx, task.ID, b.Number, result.Reason)
			if err != nil {
				log.Printf("Failed to record batch %d failure for task %s: %v", b.Number, task.ID, err)
				return
			}

			log.Printf("Scan %s aborted at batch %d/%d: %s (%s)",
				task.ID, b.Number, b.Total, result.Kind, result.Reason)
			r.finish(ctx, updated)
			return
		}

		metrics.RecordBatchDelivered(result.Attempts, elapsed)

		updated, err := r.cfg.Tracker.MarkBatchSent(ctx, task.ID, b.Number)
		if err != nil {
			log.Printf("Failed to record batch %d for task %s: %v", b.Number, task.ID, err)
			return
		}

		if updated.Terminal() {
			log.Printf("Scan %s completed: %d/%d batches delivered", task.ID, b.Number, b.Total)
			r.finish(ctx, updated)
			return
		}
	}
}

func (r *Runner) logBatch(ctx context.Context, taskID string, batchNumber int, result delivery.Result, elapsed time.Duration) {
	if r.cfg.Repository == nil {
		return
	}

	status := "sent"
	if result.Kind != delivery.Accepted {
		status = "failed"
	}

	err := r.cfg.Repository.LogBatch(ctx, repository.BatchLogEntry{
		TaskID:      taskID,
		BatchNumber: batchNumber,
		Status:      status,
		Attempts:    result.Attempts,
		DurationMs:  elapsed.Milliseconds(),
		ErrorMsg:    result.Reason,
	})
	if err != nil {
		log.Printf("Failed to log batch %d for task %s: %v", batchNumber, taskID, err)
	}
}

// finish records terminal-state side effects: metrics, scan history and the
// optional completion report.
func (r *Runner) finish(ctx context.Context, task *tracker.Task) {
	metrics.RecordScanFinished(task.Status)

	if r.cfg.Repository != nil {
		if err := r.cfg.Repository.SaveScan(ctx, task); err != nil {
			log.Printf("Failed to persist scan %s: %v", task.ID, err)
		}
	}

	if r.cfg.Notifier != nil {
		if err := r.cfg.Notifier.ScanFinished(task); err != nil {
			log.Printf("Failed to send completion report for scan %s: %v", task.ID, err)
		}
	}
}
