// Package api exposes the HTTP surface for submitting scans and querying
// their progress.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/parakeep/parascan/internal/dashboard"
	"github.com/parakeep/parascan/internal/httputil"
	"github.com/parakeep/parascan/internal/pipeline"
	"github.com/parakeep/parascan/internal/repository"
	"github.com/parakeep/parascan/internal/scan"
	"github.com/parakeep/parascan/internal/tracker"
)

type API struct {
	runner  *pipeline.Runner
	tracker *tracker.Tracker
	repo    repository.ScanRepository
	mux     *http.ServeMux
}

type CreateScanRequest struct {
	Path     string `json:"path"`
	Strategy string `json:"strategy"`
}

// NewAPI builds the router. repo is optional; without it the persisted
// history endpoints respond 404.
func NewAPI(runner *pipeline.Runner, tr *tracker.Tracker, repo repository.ScanRepository) *API {
	api := &API{
		runner:  runner,
		tracker: tr,
		repo:    repo,
		mux:     http.NewServeMux(),
	}

	api.setupRoutes()
	return api
}

func (a *API) setupRoutes() {
	a.mux.HandleFunc("/api/scans", a.handleScans)
	a.mux.HandleFunc("/api/scans/", a.handleScanByID)

	dash := dashboard.NewDashboard(a.tracker)
	a.mux.HandleFunc("/api/dashboard/stats", dash.GetStats)
	a.mux.HandleFunc("/api/dashboard/history", dash.GetRecentScans)

	if a.repo != nil {
		a.mux.HandleFunc("/api/history", a.getHistory)
		a.mux.HandleFunc("/api/history/stats", a.getHistoryStats)
	}
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

func (a *API) handleScans(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.createScan(w, r)
	case http.MethodGet:
		a.listScans(w, r)
	default:
		httputil.WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (a *API) createScan(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		httputil.WriteJSONError(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	defer func() {
		if err := r.Body.Close(); err != nil {
			log.Printf("failed to close request body: %v", err)
		}
	}()

	var req CreateScanRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httputil.WriteJSONError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.Path) == "" {
		httputil.WriteJSONError(w, "Path is required", http.StatusBadRequest)
		return
	}

	submission, err := a.runner.Submit(r.Context(), req.Path, req.Strategy)
	if err != nil {
		var invalid *scan.ErrInvalidRoot
		if errors.As(err, &invalid) {
			httputil.WriteJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		httputil.WriteJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	httputil.WriteJSON(w, http.StatusAccepted, submission)
}

func (a *API) listScans(w http.ResponseWriter, r *http.Request) {
	tasks, err := a.tracker.All(r.Context())
	if err != nil {
		httputil.WriteJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, tasks)
}

func (a *API) handleScanByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	taskID := strings.TrimPrefix(r.URL.Path, "/api/scans/")
	if taskID == "" {
		httputil.WriteJSONError(w, "Task ID is required", http.StatusBadRequest)
		return
	}

	report, err := a.tracker.Status(r.Context(), taskID)
	if err != nil {
		if errors.Is(err, tracker.ErrTaskNotFound) {
			httputil.WriteJSONError(w, "Scan not found", http.StatusNotFound)
			return
		}
		httputil.WriteJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, report)
}

func (a *API) getHistory(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			httputil.WriteJSONError(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	scans, err := a.repo.GetRecentScans(r.Context(), limit)
	if err != nil {
		httputil.WriteJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if scans == nil {
		scans = []repository.ScanSummary{}
	}

	httputil.WriteJSON(w, http.StatusOK, scans)
}

func (a *API) getHistoryStats(w http.ResponseWriter, r *http.Request) {
	hours := 24
	if raw := r.URL.Query().Get("hours"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			httputil.WriteJSONError(w, "Invalid hours", http.StatusBadRequest)
			return
		}
		hours = parsed
	}

	stats, err := a.repo.GetScanStats(r.Context(), hours)
	if err != nil {
		httputil.WriteJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if stats == nil {
		stats = []repository.ScanStats{}
	}

	httputil.WriteJSON(w, http.StatusOK, stats)
}
