package repository

import (
	"context"

	"github.com/parakeep/parascan/internal/tracker"
)

// MockScanRepository records calls for tests that do not need a real database.
type MockScanRepository struct {
	SavedScans    []*tracker.Task
	LoggedBatches []BatchLogEntry
	RecentScans   []ScanSummary
	Stats         []ScanStats

	SaveScanErr error
	LogBatchErr error
	RecentErr   error
	StatsErr    error

	Closed bool
}

func NewMockScanRepository() *MockScanRepository {
	return &MockScanRepository{}
}

func (m *MockScanRepository) SaveScan(_ context.Context, t *tracker.Task) error {
	if m.SaveScanErr != nil {
		return m.SaveScanErr
	}
	m.SavedScans = append(m.SavedScans, t)
	return nil
}

func (m *MockScanRepository) LogBatch(_ context.Context, entry BatchLogEntry) error {
	if m.LogBatchErr != nil {
		return m.LogBatchErr
	}
	m.LoggedBatches = append(m.LoggedBatches, entry)
	return nil
}

func (m *MockScanRepository) GetRecentScans(_ context.Context, limit int) ([]ScanSummary, error) {
	if m.RecentErr != nil {
		return nil, m.RecentErr
	}
	if limit < len(m.RecentScans) {
		return m.RecentScans[:limit], nil
	}
	return m.RecentScans, nil
}

func (m *MockScanRepository) GetScanStats(_ context.Context, _ int) ([]ScanStats, error) {
	if m.StatsErr != nil {
		return nil, m.StatsErr
	}
	return m.Stats, nil
}

func (m *MockScanRepository) Close() error {
	m.Closed = true
	return nil
}
