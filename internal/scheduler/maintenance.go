package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/pricewatch/internal/database"
)

// MaintenanceJob keeps the SQLite database healthy: integrity check, WAL
// checkpoint, and pruning of price observations whose tracking job is gone.
type MaintenanceJob struct {
	ctx context.Context
	db  *database.DB
	log zerolog.Logger
}

// MaintenanceConfig holds configuration for the maintenance job
type MaintenanceConfig struct {
	Ctx context.Context
	DB  *database.DB
	Log zerolog.Logger
}

// NewMaintenanceJob creates a new maintenance job
func NewMaintenanceJob(cfg MaintenanceConfig) *MaintenanceJob {
	ctx := cfg.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return &MaintenanceJob{
		ctx: ctx,
		db:  cfg.DB,
		log: cfg.Log.With().Str("job", "maintenance").Logger(),
	}
}

// Name returns the job name
func (j *MaintenanceJob) Name() string {
	return "maintenance"
}

// Run executes the maintenance pass
func (j *MaintenanceJob) Run() error {
	j.log.Info().Msg("Starting database maintenance")
	startTime := time.Now()

	// Corruption is critical, everything else is best effort
	if err := j.db.HealthCheck(j.ctx); err != nil {
		j.log.Error().Err(err).Msg("Database integrity check failed")
		return err
	}

	j.checkpointWAL()
	j.pruneOrphanedObservations()

	j.log.Info().
		Dur("duration", time.Since(startTime)).
		Msg("Maintenance completed")

	return nil
}

// checkpointWAL monitors WAL checkpoint status
func (j *MaintenanceJob) checkpointWAL() {
	var busy, frames, checkpointed int
	err := j.db.Conn().QueryRowContext(j.ctx, "PRAGMA wal_checkpoint(PASSIVE)").
		Scan(&busy, &frames, &checkpointed)
	if err != nil {
		j.log.Warn().Err(err).Msg("Failed to checkpoint WAL")
		return
	}

	if frames > 1000 {
		j.log.Warn().
			Int("wal_frames", frames).
			Int("checkpointed", checkpointed).
			Msg("WAL file is large, checkpoint may be needed")
	} else {
		j.log.Debug().Int("wal_frames", frames).Msg("WAL checkpoint status OK")
	}
}

// pruneOrphanedObservations removes history rows whose (url, owner) pair no
// longer has any tracking job. Job removal deletes its history inline; this
// sweep catches rows left behind by crashes between the two writes.
func (j *MaintenanceJob) pruneOrphanedObservations() {
	res, err := j.db.Conn().ExecContext(j.ctx, `
		DELETE FROM price_observations
		WHERE NOT EXISTS (
			SELECT 1 FROM tracking_jobs t
			WHERE t.url = price_observations.url
			  AND t.owner = price_observations.owner
		)`)
	if err != nil {
		j.log.Error().Err(err).Msg("Failed to prune orphaned observations")
		return
	}

	if n, err := res.RowsAffected(); err == nil && n > 0 {
		j.log.Info().Int64("rows", n).Msg("Pruned orphaned price observations")
	}
}
