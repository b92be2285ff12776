// Package repository provides PostgreSQL persistence for scan history.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/parakeep/parascan/internal/tracker"
)

type PostgresScanRepository struct {
	db *sql.DB
}

func NewPostgresScanRepository(connectionString string) (*PostgresScanRepository, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &PostgresScanRepository{db: db}, nil
}

func (r *PostgresScanRepository) SaveScan(ctx context.Context, t *tracker.Task) error {
	query := `
		INSERT INTO scan_history (
			task_id, directory, strategy, total_files, total_batches,
			processed_batches, status, error, created_at, completed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (task_id) DO UPDATE SET
			processed_batches = EXCLUDED.processed_batches,
			status = EXCLUDED.status,
			error = EXCLUDED.error,
			completed_at = EXCLUDED.completed_at
	`

	var completedAt any
	if t.CompletedAt != nil {
		completedAt = *t.CompletedAt
	}

	_, err := r.db.ExecContext(
		ctx,
		query,
		t.ID,
		t.Directory,
		t.Strategy,
		t.TotalFiles,
		t.TotalBatches,
		t.ProcessedBatches(),
		t.Status,
		t.Error,
		t.CreatedAt,
		completedAt,
	)

	return err
}

func (r *PostgresScanRepository) LogBatch(ctx context.Context, entry BatchLogEntry) error {
	query := `
		INSERT INTO batch_log (
			task_id, batch_number, status, attempts, duration_ms, error_message, logged_at
		) VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		entry.TaskID,
		entry.BatchNumber,
		entry.Status,
		entry.Attempts,
		entry.DurationMs,
		entry.ErrorMsg,
	)

	return err
}

func (r *PostgresScanRepository) GetRecentScans(ctx context.Context, limit int) ([]ScanSummary, error) {
	query := `
		SELECT task_id, directory, strategy, status, total_files,
		       processed_batches, total_batches, created_at, completed_at, error
		FROM scan_history
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var scans []ScanSummary
	for rows.Next() {
		var s ScanSummary
		var completedAt sql.NullTime
		var errMsg sql.NullString

		if err := rows.Scan(
			&s.TaskID,
			&s.Directory,
			&s.Strategy,
			&s.Status,
			&s.TotalFiles,
			&s.ProcessedBatches,
			&s.TotalBatches,
			&s.CreatedAt,
			&completedAt,
			&errMsg,
		); err != nil {
			return nil, err
		}

		if completedAt.Valid {
			s.CompletedAt = &completedAt.Time
		}
		if errMsg.Valid {
			s.Error = errMsg.String
		}

		scans = append(scans, s)
	}

	return scans, rows.Err()
}

func (r *PostgresScanRepository) GetScanStats(ctx context.Context, hours int) ([]ScanStats, error) {
	query := `
		SELECT status,
		       COUNT(*) AS count,
		       COALESCE(AVG(total_files), 0) AS avg_files,
		       COALESCE(AVG(total_batches), 0) AS avg_batches,
		       COALESCE(AVG(EXTRACT(EPOCH FROM (completed_at - created_at)) * 1000), 0) AS avg_duration_ms
		FROM scan_history
		WHERE created_at > NOW() - ($1 || ' hours')::INTERVAL
		GROUP BY status
		ORDER BY count DESC
	`

	rows, err := r.db.QueryContext(ctx, query, hours)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var stats []ScanStats
	for rows.Next() {
		var s ScanStats
		if err := rows.Scan(&s.Status, &s.Count, &s.AvgFiles, &s.AvgBatches, &s.AvgDurationMs); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}

func (r *PostgresScanRepository) Close() error {
	return r.db.Close()
}
