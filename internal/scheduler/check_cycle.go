package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/pricewatch/internal/domain"
	"github.com/aristath/pricewatch/internal/events"
	"github.com/aristath/pricewatch/internal/notify"
	"github.com/aristath/pricewatch/internal/scraper"
)

// JobStore is the slice of the tracker repository the check cycle needs
type JobStore interface {
	ListActive() ([]domain.TrackingJob, error)
	RecordCheck(id, name string, price *float64) error
	MarkAlerted(id string) error
}

// HistoryStore records price observations
type HistoryStore interface {
	Append(url, owner string, price float64, when time.Time) error
}

// PageChecker fetches a product page and extracts a reading
type PageChecker interface {
	CheckPage(ctx context.Context, url string) (scraper.Result, error)
}

// CheckCycleJob is the recurring price check: each run snapshots the active
// jobs, scrapes every page, records history, and drives the alert state
// machine. Faults are isolated per job so one broken page never stops the
// rest of the cycle.
type CheckCycleJob struct {
	ctx      context.Context
	jobs     JobStore
	history  HistoryStore
	checker  PageChecker
	notifier notify.Notifier
	events   *events.Manager
	perJob   time.Duration
	log      zerolog.Logger
}

// CheckCycleConfig holds configuration for the check cycle job
type CheckCycleConfig struct {
	Ctx           context.Context // cancelled on shutdown; the cycle stops at job boundaries
	Jobs          JobStore
	History       HistoryStore
	Checker       PageChecker
	Notifier      notify.Notifier
	Events        *events.Manager
	PerJobTimeout time.Duration
	Log           zerolog.Logger
}

// NewCheckCycleJob creates a new check cycle job
func NewCheckCycleJob(cfg CheckCycleConfig) *CheckCycleJob {
	ctx := cfg.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	perJob := cfg.PerJobTimeout
	if perJob <= 0 {
		perJob = 60 * time.Second
	}

	return &CheckCycleJob{
		ctx:      ctx,
		jobs:     cfg.Jobs,
		history:  cfg.History,
		checker:  cfg.Checker,
		notifier: cfg.Notifier,
		events:   cfg.Events,
		perJob:   perJob,
		log:      cfg.Log.With().Str("job", "check_cycle").Logger(),
	}
}

// Name returns the job name
func (j *CheckCycleJob) Name() string {
	return "check_cycle"
}

// Run executes one check cycle
func (j *CheckCycleJob) Run() error {
	// A missing mail configuration must not be mistaken for "all prices
	// above target": skip the whole cycle and touch no job.
	if !j.notifier.Enabled() {
		j.log.Warn().Msg("Mail credentials not configured, skipping check cycle")
		return nil
	}

	active, err := j.jobs.ListActive()
	if err != nil {
		j.events.EmitError("check_cycle", err, nil)
		return err
	}

	j.log.Info().Int("jobs", len(active)).Msg("Starting check cycle")
	startTime := time.Now()

	checked := 0
	alerted := 0
	failed := 0

	for _, job := range active {
		// Stop cleanly at a job boundary on shutdown
		select {
		case <-j.ctx.Done():
			j.log.Info().Msg("Check cycle cancelled")
			return j.ctx.Err()
		default:
		}

		switch j.checkJob(job) {
		case checkAlerted:
			alerted++
			checked++
		case checkOK:
			checked++
		case checkFailed:
			failed++
		}
	}

	j.events.Emit(events.CheckCycleComplete, "check_cycle", map[string]interface{}{
		"jobs":    len(active),
		"checked": checked,
		"alerted": alerted,
		"failed":  failed,
	})

	j.log.Info().
		Int("checked", checked).
		Int("alerted", alerted).
		Int("failed", failed).
		Dur("duration", time.Since(startTime)).
		Msg("Check cycle completed")

	return nil
}

type checkOutcome int

const (
	checkOK checkOutcome = iota
	checkAlerted
	checkFailed
)

// checkJob processes a single tracking job. All failure modes leave the job
// in tracking state so it is retried on the next cycle.
func (j *CheckCycleJob) checkJob(job domain.TrackingJob) checkOutcome {
	log := j.log.With().Str("job_id", job.ID).Str("url", job.URL).Logger()

	ctx, cancel := context.WithTimeout(j.ctx, j.perJob)
	defer cancel()

	result, err := j.checker.CheckPage(ctx, job.URL)
	if err != nil {
		// Fetch fault: systemic breakage, distinct from "no price listed"
		log.Warn().Err(err).Msg("Page fetch failed, will retry next cycle")
		return checkFailed
	}

	if result.Price == nil {
		// Extraction fault: expected outcome, no history entry, last price
		// keeps its previous value
		log.Debug().Str("product", result.Name).Msg("No price found on page")
		return checkFailed
	}

	price := *result.Price

	if err := j.history.Append(job.URL, job.Owner, price, time.Now()); err != nil {
		log.Error().Err(err).Msg("Failed to append price observation")
		return checkFailed
	}

	if err := j.jobs.RecordCheck(job.ID, result.Name, result.Price); err != nil {
		log.Error().Err(err).Msg("Failed to record check result")
		return checkFailed
	}

	j.events.Emit(events.PriceChecked, "check_cycle", map[string]interface{}{
		"job_id":  job.ID,
		"product": result.Name,
		"price":   price,
	})

	if !job.DropReached(price) {
		return checkOK
	}

	j.events.Emit(events.PriceDropDetected, "check_cycle", map[string]interface{}{
		"job_id":       job.ID,
		"price":        price,
		"target_price": job.TargetPrice,
	})

	alert := notify.PriceAlert{
		ProductName: result.Name,
		Price:       price,
		TargetPrice: job.TargetPrice,
		URL:         job.URL,
	}

	if err := j.notifier.Notify(ctx, job.Owner, alert); err != nil {
		// The job stays tracking: an unconfirmed notification must be
		// retried (and possibly re-sent) rather than silently lost.
		log.Error().Err(err).Msg("Alert notification failed, job stays tracking")
		return checkFailed
	}

	// Only after confirmed dispatch - the last mutation of the cycle
	if err := j.jobs.MarkAlerted(job.ID); err != nil {
		log.Error().Err(err).Msg("Failed to mark job alerted")
		return checkFailed
	}

	j.events.Emit(events.AlertSent, "check_cycle", map[string]interface{}{
		"job_id":    job.ID,
		"recipient": job.Owner,
		"price":     price,
	})

	log.Info().Float64("price", price).Float64("target", job.TargetPrice).Msg("Price drop alert delivered")
	return checkAlerted
}
