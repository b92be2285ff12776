package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parakeep/parascan/internal/tracker"
)

func setupDashboard(t *testing.T) (*Dashboard, *tracker.Tracker) {
	t.Helper()

	tr := tracker.NewTracker(tracker.NewMemoryStore())
	return NewDashboard(tr), tr
}

func TestGetStats(t *testing.T) {
	dash, tr := setupDashboard(t)
	ctx := context.Background()

	running := tracker.NewTask("/data/a", "standard", 100, []int{100})
	require.NoError(t, tr.Create(ctx, running))

	done := tracker.NewTask("/data/b", "compact", 30, []int{30})
	require.NoError(t, tr.Create(ctx, done))
	_, err := tr.MarkBatchSent(ctx, done.ID, 1)
	require.NoError(t, err)

	failed := tracker.NewTask("/data/c", "standard", 50, []int{50})
	require.NoError(t, tr.Create(ctx, failed))
	_, err = tr.MarkBatchFailed(ctx, failed.ID, 1, "retries exhausted after 3 attempts")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	dash.GetStats(w, httptest.NewRequest(http.MethodGet, "/api/dashboard/stats", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var stats Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 3, stats.TotalScans)
	assert.Equal(t, 1, stats.ProcessingScans)
	assert.Equal(t, 1, stats.CompletedScans)
	assert.Equal(t, 1, stats.PartialFailureScans)
	assert.Equal(t, 180, stats.TotalFilesScanned)
	assert.Equal(t, 2, stats.ScansByStrategy["standard"])
	assert.Equal(t, 1, stats.ScansByStrategy["compact"])
	assert.NotEqual(t, "N/A", stats.AverageScanDuration)
}

func TestGetStatsEmpty(t *testing.T) {
	dash, _ := setupDashboard(t)

	w := httptest.NewRecorder()
	dash.GetStats(w, httptest.NewRequest(http.MethodGet, "/api/dashboard/stats", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var stats Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 0, stats.TotalScans)
	assert.Equal(t, "N/A", stats.AverageScanDuration)
}

func TestGetRecentScans(t *testing.T) {
	dash, tr := setupDashboard(t)
	ctx := context.Background()

	inFlight := tracker.NewTask("/data/a", "standard", 100, []int{100})
	require.NoError(t, tr.Create(ctx, inFlight))

	done := tracker.NewTask("/data/b", "compact", 30, []int{30})
	require.NoError(t, tr.Create(ctx, done))
	_, err := tr.MarkBatchSent(ctx, done.ID, 1)
	require.NoError(t, err)

	stale := tracker.NewTask("/data/c", "standard", 10, []int{10})
	stale.Status = tracker.StatusCompleted
	old := time.Now().Add(-48 * time.Hour)
	stale.CompletedAt = &old
	require.NoError(t, tr.Create(ctx, stale))

	w := httptest.NewRecorder()
	dash.GetRecentScans(w, httptest.NewRequest(http.MethodGet, "/api/dashboard/history", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var history []ScanHistory
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	require.Len(t, history, 1)
	assert.Equal(t, done.ID, history[0].TaskID)
	assert.Equal(t, 1, history[0].ProcessedBatches)
	assert.NotEmpty(t, history[0].Duration)
}
