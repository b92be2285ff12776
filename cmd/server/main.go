package main

import (
	"log"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/parakeep/parascan/internal/api"
	"github.com/parakeep/parascan/internal/delivery"
	"github.com/parakeep/parascan/internal/extract"
	"github.com/parakeep/parascan/internal/metrics"
	"github.com/parakeep/parascan/internal/middleware"
	"github.com/parakeep/parascan/internal/notify"
	"github.com/parakeep/parascan/internal/pipeline"
	"github.com/parakeep/parascan/internal/record"
	"github.com/parakeep/parascan/internal/repository"
	"github.com/parakeep/parascan/internal/tracker"
)

func main() {
	serverURL := os.Getenv("SERVER_URL")
	if serverURL == "" {
		log.Fatal("SERVER_URL is required")
	}

	userID := os.Getenv("USER_ID")
	if userID == "" {
		userID = "default"
	}

	store := newTaskStore()
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("failed to close task store: %v", err)
		}
	}()

	tr := tracker.NewTracker(store)

	var repo repository.ScanRepository
	if dsn := os.Getenv("POSTGRES_DSN"); dsn != "" {
		pg, err := repository.NewPostgresScanRepository(dsn)
		if err != nil {
			log.Fatal(err)
		}
		defer func() {
			if err := pg.Close(); err != nil {
				log.Printf("failed to close Postgres repository: %v", err)
			}
		}()
		repo = pg
		log.Println("Scan history persistence enabled")
	}

	var notifier notify.Notifier
	if apiKey := os.Getenv("EMAIL_API_KEY"); apiKey != "" {
		notifier = notify.NewEmailNotifier(
			apiKey,
			os.Getenv("FROM_NAME"),
			os.Getenv("FROM_ADDRESS"),
			os.Getenv("REPORT_RECIPIENT"),
		)
		log.Println("Completion reports enabled")
	}

	registry := extract.Default()
	registry.SetFailureHook(func(fileType record.FileType) {
		metrics.RecordExtractionFailure(string(fileType))
	})

	runner := pipeline.NewRunner(pipeline.RunnerConfig{
		Tracker:    tr,
		Registry:   registry,
		Client:     delivery.NewClient(delivery.Config{BaseURL: serverURL, UserID: userID}),
		Repository: repo,
		Notifier:   notifier,
		UserID:     userID,
	})

	apiHandler := api.NewAPI(runner, tr, repo)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", middleware.MetricsMiddleware(apiHandler))

	go startMetricsCollector(tr)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on :%s", port)
	log.Printf("Delivering snapshots to %s", serverURL)

	if err := http.ListenAndServe(":"+port, mux); err != nil {
		log.Fatal(err)
	}
}

func newTaskStore() tracker.TaskStore {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		log.Println("REDIS_ADDR not set, tracking tasks in memory")
		return tracker.NewMemoryStore()
	}

	store, err := tracker.NewRedisStore(redisAddr)
	if err != nil {
		log.Fatal(err)
	}

	log.Printf("Connected to Redis at %s", redisAddr)
	return store
}
