// Package tracker owns the collection of tracking jobs and their lifecycle.
package tracker

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/pricewatch/internal/database"
	"github.com/aristath/pricewatch/internal/domain"
)

// Repository handles tracking job storage.
// All updates are single-statement, so a job's fields change as one unit.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new tracking job repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "tracker").Logger(),
	}
}

// Create inserts a new tracking job and returns its id
func (r *Repository) Create(owner, url string, targetPrice float64, initialName string, initialPrice *float64) (string, error) {
	id := uuid.NewString()
	now := time.Now().Unix()

	_, err := r.db.Exec(`
		INSERT INTO tracking_jobs (id, owner, url, target_price, status, last_name, last_price, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, id, owner, url, targetPrice, string(domain.StatusTracking), initialName, initialPrice, now)
	if err != nil {
		return "", fmt.Errorf("failed to create tracking job: %w", err)
	}

	r.log.Debug().Str("job_id", id).Str("url", url).Msg("Tracking job created")
	return id, nil
}

// Get returns a single job by id
func (r *Repository) Get(id string) (*domain.TrackingJob, error) {
	row := r.db.QueryRow(`
		SELECT id, owner, url, target_price, status, last_name, last_price, created_at
		FROM tracking_jobs
		WHERE id = ?
	`, id)

	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job %s: %w", id, err)
	}
	return job, nil
}

// ListActive returns the jobs still in tracking state. The single SELECT
// gives a consistent snapshot: a job appears at most once per listing.
func (r *Repository) ListActive() ([]domain.TrackingJob, error) {
	return r.list(`
		SELECT id, owner, url, target_price, status, last_name, last_price, created_at
		FROM tracking_jobs
		WHERE status = ?
		ORDER BY created_at ASC, id ASC
	`, string(domain.StatusTracking))
}

// ListForOwner returns all jobs for an owner, for dashboard display
func (r *Repository) ListForOwner(owner string) ([]domain.TrackingJob, error) {
	return r.list(`
		SELECT id, owner, url, target_price, status, last_name, last_price, created_at
		FROM tracking_jobs
		WHERE owner = ?
		ORDER BY created_at ASC, id ASC
	`, owner)
}

// RecordCheck stores a successful reading. The COALESCE guard keeps a nil
// price from overwriting the last good value.
func (r *Repository) RecordCheck(id, name string, price *float64) error {
	_, err := r.db.Exec(`
		UPDATE tracking_jobs
		SET last_name = ?, last_price = COALESCE(?, last_price)
		WHERE id = ?
	`, name, price, id)
	if err != nil {
		return fmt.Errorf("failed to record check for job %s: %w", id, err)
	}
	return nil
}

// MarkAlerted transitions a job from tracking to alerted. The conditional
// update makes the transition happen at most once; a second call is a no-op.
func (r *Repository) MarkAlerted(id string) error {
	result, err := r.db.Exec(`
		UPDATE tracking_jobs
		SET status = ?
		WHERE id = ? AND status = ?
	`, string(domain.StatusAlerted), id, string(domain.StatusTracking))
	if err != nil {
		return fmt.Errorf("failed to mark job %s alerted: %w", id, err)
	}

	if changed, err := result.RowsAffected(); err == nil && changed == 0 {
		r.log.Debug().Str("job_id", id).Msg("Job already alerted or missing, transition skipped")
	}
	return nil
}

// Remove deletes a job after verifying ownership. Deleting another owner's
// job is rejected with ErrForbidden. Returns the removed job so callers can
// clean up associated history.
func (r *Repository) Remove(id, owner string) (*domain.TrackingJob, error) {
	var removed *domain.TrackingJob

	err := database.WithTransaction(r.db, func(tx *sql.Tx) error {
		row := tx.QueryRow(`
			SELECT id, owner, url, target_price, status, last_name, last_price, created_at
			FROM tracking_jobs
			WHERE id = ?
		`, id)

		job, err := scanJob(row)
		if err == sql.ErrNoRows {
			return domain.ErrNotFound
		}
		if err != nil {
			return err
		}

		if job.Owner != owner {
			return domain.ErrForbidden
		}

		if _, err := tx.Exec(`DELETE FROM tracking_jobs WHERE id = ?`, id); err != nil {
			return err
		}

		removed = job
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.log.Debug().Str("job_id", id).Str("owner", owner).Msg("Tracking job removed")
	return removed, nil
}

// CountByStatus returns job counts per status, for the status endpoint
func (r *Repository) CountByStatus() (map[domain.JobStatus]int, error) {
	rows, err := r.db.Query(`SELECT status, COUNT(*) FROM tracking_jobs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count jobs: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.JobStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan job count: %w", err)
		}
		counts[domain.JobStatus(status)] = count
	}
	return counts, rows.Err()
}

func (r *Repository) list(query string, args ...interface{}) ([]domain.TrackingJob, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer rows.Close()

	var jobs []domain.TrackingJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, *job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating jobs: %w", err)
	}
	return jobs, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row rowScanner) (*domain.TrackingJob, error) {
	var job domain.TrackingJob
	var status string
	var lastPrice sql.NullFloat64
	var createdUnix int64

	err := row.Scan(&job.ID, &job.Owner, &job.URL, &job.TargetPrice, &status, &job.LastName, &lastPrice, &createdUnix)
	if err != nil {
		return nil, err
	}

	job.Status = domain.JobStatus(status)
	if lastPrice.Valid {
		job.LastPrice = &lastPrice.Float64
	}
	job.CreatedAt = time.Unix(createdUnix, 0).UTC()

	return &job, nil
}
