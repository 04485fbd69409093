package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ashfall/tdx/internal/models"
)

// CycleRepository implements models.Repository[*models.CycleRecord] for the
// refresh cycle journal.
type CycleRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.CycleRecord] = (*CycleRepository)(nil)

// NewCycleRepository creates a new CycleRepository with the given database connection
func NewCycleRepository(db *sql.DB) *CycleRepository {
	return &CycleRepository{db: db}
}

// Create inserts a new [models.CycleRecord] with a generated sequence number.
func (r *CycleRepository) Create(record *models.CycleRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "cycles")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}
	record.Sequence = sequence

	query := `
		INSERT INTO cycles (id, sequence, trigger_kind, outcome, error_category, error_message,
			reading_count, anomaly_count, duration_ms, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		record.ID,
		record.Sequence,
		string(record.Trigger),
		string(record.Outcome),
		record.ErrorCategory,
		record.ErrorMessage,
		record.ReadingCount,
		record.AnomalyCount,
		record.Duration.Milliseconds(),
		record.StartedAt,
		record.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert cycle: %w", err)
	}

	return nil
}

// Get retrieves a cycle record by ID.
func (r *CycleRepository) Get(id string) (*models.CycleRecord, error) {
	query := `
		SELECT id, sequence, trigger_kind, outcome, error_category, error_message,
			reading_count, anomaly_count, duration_ms, started_at, finished_at
		FROM cycles
		WHERE id = ?
	`

	record, err := scanCycle(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("cycle not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan cycle: %w", err)
	}

	return record, nil
}

// List retrieves the most recent cycle records, newest first.
func (r *CycleRepository) List(limit int) ([]*models.CycleRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, sequence, trigger_kind, outcome, error_category, error_message,
			reading_count, anomaly_count, duration_ms, started_at, finished_at
		FROM cycles
		ORDER BY sequence DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query cycles: %w", err)
	}
	defer rows.Close()

	var records []*models.CycleRecord
	for rows.Next() {
		record, err := scanCycle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cycle: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

// PruneBefore deletes journal rows older than the cutoff and returns how
// many were removed.
func (r *CycleRepository) PruneBefore(cutoff time.Time) (int64, error) {
	result, err := r.db.Exec("DELETE FROM cycles WHERE started_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune cycles: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return rows, nil
}

// scanner abstracts *sql.Row and *sql.Rows for scanCycle.
type scanner interface {
	Scan(dest ...any) error
}

func scanCycle(s scanner) (*models.CycleRecord, error) {
	var (
		record     models.CycleRecord
		trigger    string
		outcome    string
		durationMS int64
	)

	err := s.Scan(
		&record.ID,
		&record.Sequence,
		&trigger,
		&outcome,
		&record.ErrorCategory,
		&record.ErrorMessage,
		&record.ReadingCount,
		&record.AnomalyCount,
		&durationMS,
		&record.StartedAt,
		&record.FinishedAt,
	)
	if err != nil {
		return nil, err
	}

	record.Trigger = models.CycleTrigger(trigger)
	record.Outcome = models.CycleOutcome(outcome)
	record.Duration = time.Duration(durationMS) * time.Millisecond

	return &record, nil
}
