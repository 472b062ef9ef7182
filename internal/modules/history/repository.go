// Package history provides the append-only ledger of price observations.
// Observations are keyed by (url, owner) so two owners tracking the same
// page keep independent series.
package history

import (
	"fmt"
	"time"

	"database/sql"

	"github.com/rs/zerolog"

	"github.com/aristath/pricewatch/internal/domain"
)

// Repository handles price observation storage
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new history repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "history").Logger(),
	}
}

// Append records a single observation. Multiple observations per day are
// allowed; the check cycle naturally bounds them to one per tick.
func (r *Repository) Append(url, owner string, price float64, when time.Time) error {
	_, err := r.db.Exec(`
		INSERT INTO price_observations (url, owner, price, observed_at)
		VALUES (?, ?, ?, ?)
	`, url, owner, price, when.Unix())
	if err != nil {
		return fmt.Errorf("failed to append observation: %w", err)
	}
	return nil
}

// Series returns all observations for a (url, owner) pair, ascending by time
func (r *Repository) Series(url, owner string) ([]domain.PriceObservation, error) {
	rows, err := r.db.Query(`
		SELECT url, owner, price, observed_at
		FROM price_observations
		WHERE url = ? AND owner = ?
		ORDER BY observed_at ASC, id ASC
	`, url, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to query observations: %w", err)
	}
	defer rows.Close()

	var series []domain.PriceObservation
	for rows.Next() {
		var obs domain.PriceObservation
		var observedUnix int64

		if err := rows.Scan(&obs.URL, &obs.Owner, &obs.Price, &observedUnix); err != nil {
			return nil, fmt.Errorf("failed to scan observation: %w", err)
		}
		obs.ObservedAt = time.Unix(observedUnix, 0).UTC()
		series = append(series, obs)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating observations: %w", err)
	}

	return series, nil
}

// DeleteFor removes all observations for a (url, owner) pair.
// Used when the owning job is removed.
func (r *Repository) DeleteFor(url, owner string) error {
	result, err := r.db.Exec(`
		DELETE FROM price_observations WHERE url = ? AND owner = ?
	`, url, owner)
	if err != nil {
		return fmt.Errorf("failed to delete observations: %w", err)
	}

	if deleted, err := result.RowsAffected(); err == nil && deleted > 0 {
		r.log.Debug().
			Str("url", url).
			Str("owner", owner).
			Int64("deleted", deleted).
			Msg("Removed observation history")
	}

	return nil
}
