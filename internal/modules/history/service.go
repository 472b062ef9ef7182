package history

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/pricewatch/internal/domain"
	"github.com/aristath/pricewatch/pkg/formulas"
)

// Service exposes history queries and derived statistics
type Service struct {
	repo *Repository
	log  zerolog.Logger
}

// NewService creates a new history service
func NewService(repo *Repository, log zerolog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With().Str("service", "history").Logger(),
	}
}

// Append records an observation
func (s *Service) Append(url, owner string, price float64, when time.Time) error {
	return s.repo.Append(url, owner, price, when)
}

// Series returns the observation series ascending by time
func (s *Service) Series(url, owner string) ([]domain.PriceObservation, error) {
	return s.repo.Series(url, owner)
}

// DeleteFor removes the series for a (url, owner) pair
func (s *Service) DeleteFor(url, owner string) error {
	return s.repo.DeleteFor(url, owner)
}

// Stats computes min/max/avg and the daily trend over all observations for
// the pair. An empty series yields nil aggregates, not an error.
func (s *Service) Stats(url, owner string) (domain.PriceStats, error) {
	series, err := s.repo.Series(url, owner)
	if err != nil {
		return domain.PriceStats{}, err
	}

	stats := domain.PriceStats{Count: len(series)}
	if len(series) == 0 {
		return stats, nil
	}

	prices := make([]float64, len(series))
	times := make([]time.Time, len(series))
	for i, obs := range series {
		prices[i] = obs.Price
		times[i] = obs.ObservedAt
	}

	min := formulas.Min(prices)
	max := formulas.Max(prices)
	avg := formulas.Mean(prices)

	stats.Min = &min
	stats.Max = &max
	stats.Avg = &avg
	stats.TrendPerDay = formulas.TrendPerDay(times, prices)

	return stats, nil
}
