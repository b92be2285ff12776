package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/parakeep/parascan/internal/delivery"
	"github.com/parakeep/parascan/internal/extract"
	"github.com/parakeep/parascan/internal/pipeline"
	"github.com/parakeep/parascan/internal/tracker"
)

func main() {
	strategy := flag.String("strategy", "standard", "batching strategy: standard, compact or bulk")
	keywords := flag.Int("keywords", extract.DefaultMaxKeywords, "maximum keywords per file")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <directory>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}

	serverURL := os.Getenv("SERVER_URL")
	if serverURL == "" {
		log.Fatal("SERVER_URL is required")
	}

	userID := os.Getenv("USER_ID")
	if userID == "" {
		userID = "default"
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := extract.Default()
	registry.SetMaxKeywords(*keywords)

	tr := tracker.NewTracker(tracker.NewMemoryStore())
	runner := pipeline.NewRunner(pipeline.RunnerConfig{
		Tracker:  tr,
		Registry: registry,
		Client:   delivery.NewClient(delivery.Config{BaseURL: serverURL, UserID: userID}),
		UserID:   userID,
	})

	sub, err := runner.Submit(ctx, flag.Arg(0), *strategy)
	if err != nil {
		log.Fatal(err)
	}

	log.Printf("Scanning %s: %d files in %d batches", sub.Directory, sub.TotalFiles, sub.TotalBatches)

	task := waitForCompletion(ctx, tr, sub.TaskID)
	if task == nil {
		log.Fatal("Interrupted before the scan finished")
	}

	fmt.Printf("Status:    %s\n", task.Status)
	fmt.Printf("Files:     %d\n", task.TotalFiles)
	fmt.Printf("Batches:   %d/%d delivered\n", task.ProcessedBatches(), task.TotalBatches)
	if task.Error != "" {
		fmt.Printf("Error:     %s\n", task.Error)
	}

	if task.Status != tracker.StatusCompleted {
		os.Exit(1)
	}
}

func waitForCompletion(ctx context.Context, tr *tracker.Tracker, taskID string) *tracker.Task {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			task, err := tr.Get(ctx, taskID)
			if err != nil {
				log.Printf("Failed to read task state: %v", err)
				continue
			}
			if task.Terminal() {
				return task
			}
		}
	}
}
