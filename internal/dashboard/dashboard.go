// Package dashboard implements the monitoring endpoints for scan activity.
package dashboard

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/parakeep/parascan/internal/httputil"
	"github.com/parakeep/parascan/internal/tracker"
)

type Dashboard struct {
	tracker *tracker.Tracker
}

type Stats struct {
	TotalScans          int            `json:"total_scans"`
	ProcessingScans     int            `json:"processing_scans"`
	CompletedScans      int            `json:"completed_scans"`
	PartialFailureScans int            `json:"partial_failure_scans"`
	FailedScans         int            `json:"failed_scans"`
	ScansByStrategy     map[string]int `json:"scans_by_strategy"`
	TotalFilesScanned   int            `json:"total_files_scanned"`
	AverageScanDuration string         `json:"average_scan_duration"`
	LastUpdated         time.Time      `json:"last_updated"`
}

type ScanHistory struct {
	TaskID           string             `json:"task_id"`
	Directory        string             `json:"directory"`
	Strategy         string             `json:"strategy"`
	Status           tracker.TaskStatus `json:"status"`
	TotalFiles       int                `json:"total_files"`
	ProcessedBatches int                `json:"processed_batches"`
	TotalBatches     int                `json:"total_batches"`
	CreatedAt        time.Time          `json:"created_at"`
	CompletedAt      *time.Time         `json:"completed_at"`
	Duration         string             `json:"duration"`
}

func NewDashboard(tr *tracker.Tracker) *Dashboard {
	return &Dashboard{tracker: tr}
}

func (d *Dashboard) GetStats(w http.ResponseWriter, r *http.Request) {
	tasks, err := d.tracker.All(r.Context())
	if err != nil {
		httputil.WriteJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	stats := Stats{
		TotalScans:      len(tasks),
		ScansByStrategy: make(map[string]int),
		LastUpdated:     time.Now(),
	}

	var totalDuration time.Duration
	durationCount := 0

	for _, task := range tasks {
		switch task.Status {
		case tracker.StatusProcessing:
			stats.ProcessingScans++
		case tracker.StatusCompleted:
			stats.CompletedScans++
		case tracker.StatusPartialFailure:
			stats.PartialFailureScans++
		case tracker.StatusFailed:
			stats.FailedScans++
		}

		stats.ScansByStrategy[task.Strategy]++
		stats.TotalFilesScanned += task.TotalFiles

		if task.CompletedAt != nil {
			totalDuration += task.CompletedAt.Sub(task.CreatedAt)
			durationCount++
		}
	}

	if durationCount > 0 {
		avg := totalDuration / time.Duration(durationCount)
		stats.AverageScanDuration = avg.Round(time.Millisecond).String()
	} else {
		stats.AverageScanDuration = "N/A"
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		httputil.WriteJSONError(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

func (d *Dashboard) GetRecentScans(w http.ResponseWriter, r *http.Request) {
	tasks, err := d.tracker.All(r.Context())
	if err != nil {
		httputil.WriteJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	cutoff := time.Now().Add(-24 * time.Hour)
	history := []ScanHistory{}

	for _, task := range tasks {
		if task.CompletedAt == nil {
			continue
		}
		if task.CompletedAt.Before(cutoff) {
			continue
		}

		duration := task.CompletedAt.Sub(task.CreatedAt).Round(time.Millisecond).String()

		history = append(history, ScanHistory{
			TaskID:           task.ID,
			Directory:        task.Directory,
			Strategy:         task.Strategy,
			Status:           task.Status,
			TotalFiles:       task.TotalFiles,
			ProcessedBatches: task.ProcessedBatches(),
			TotalBatches:     task.TotalBatches,
			CreatedAt:        task.CreatedAt,
			CompletedAt:      task.CompletedAt,
			Duration:         duration,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(history); err != nil {
		httputil.WriteJSONError(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}
