package tracker

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aristath/pricewatch/internal/domain"
	"github.com/aristath/pricewatch/internal/events"
)

// HistoryCleaner removes the observation series tied to a job
type HistoryCleaner interface {
	DeleteFor(url, owner string) error
}

// Service wraps the repository with validation and event emission
type Service struct {
	repo    *Repository
	history HistoryCleaner
	events  *events.Manager
	log     zerolog.Logger
}

// NewService creates a new tracker service
func NewService(repo *Repository, history HistoryCleaner, eventManager *events.Manager, log zerolog.Logger) *Service {
	return &Service{
		repo:    repo,
		history: history,
		events:  eventManager,
		log:     log.With().Str("service", "tracker").Logger(),
	}
}

// CreateJob validates input and creates a new tracking job
func (s *Service) CreateJob(owner, url string, targetPrice float64) (string, error) {
	owner = strings.TrimSpace(owner)
	url = strings.TrimSpace(url)

	if owner == "" {
		return "", fmt.Errorf("owner is required")
	}
	if url == "" {
		return "", fmt.Errorf("url is required")
	}
	if targetPrice <= 0 {
		return "", fmt.Errorf("target_price must be positive")
	}

	id, err := s.repo.Create(owner, url, targetPrice, "", nil)
	if err != nil {
		return "", err
	}

	s.events.Emit(events.JobCreated, "tracker", map[string]interface{}{
		"job_id":       id,
		"owner":        owner,
		"url":          url,
		"target_price": targetPrice,
	})

	return id, nil
}

// GetJob returns a single job
func (s *Service) GetJob(id string) (*domain.TrackingJob, error) {
	return s.repo.Get(id)
}

// ListJobs returns all jobs for an owner
func (s *Service) ListJobs(owner string) ([]domain.TrackingJob, error) {
	return s.repo.ListForOwner(owner)
}

// RemoveJob deletes a job and its observation history. Ownership is
// verified at the repository boundary; a mismatch surfaces as ErrForbidden.
func (s *Service) RemoveJob(id, owner string) error {
	removed, err := s.repo.Remove(id, owner)
	if err != nil {
		return err
	}

	// History cleanup is best-effort: the job itself is already gone
	if err := s.history.DeleteFor(removed.URL, removed.Owner); err != nil {
		s.log.Warn().Err(err).Str("job_id", id).Msg("Failed to remove observation history")
	}

	s.events.Emit(events.JobRemoved, "tracker", map[string]interface{}{
		"job_id": id,
		"owner":  owner,
		"url":    removed.URL,
	})

	return nil
}
