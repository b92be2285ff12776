package main

import (
	"context"
	"log"
	"time"

	"github.com/parakeep/parascan/internal/metrics"
	"github.com/parakeep/parascan/internal/tracker"
)

func startMetricsCollector(tr *tracker.Tracker) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		updateScanMetrics(tr)
	}
}

func updateScanMetrics(tr *tracker.Tracker) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tasks, err := tr.All(ctx)
	if err != nil {
		log.Printf("Failed to get tasks for metrics: %v", err)
		return
	}

	countsByStatus := make(map[tracker.TaskStatus]int)
	for _, t := range tasks {
		countsByStatus[t.Status]++
	}

	metrics.UpdateScanGauges(countsByStatus)
}
