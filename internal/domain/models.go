// Package domain contains the core types of the price tracking engine.
// It has no infrastructure dependencies.
package domain

import (
	"errors"
	"time"
)

// JobStatus represents the lifecycle state of a tracking job
type JobStatus string

const (
	// StatusTracking - the job is active and checked every cycle
	StatusTracking JobStatus = "tracking"
	// StatusAlerted - the drop was confirmed and notified; terminal
	StatusAlerted JobStatus = "alerted"
)

// UnknownProduct is the name used when no title could be extracted from a page
const UnknownProduct = "Unknown Product"

// Sentinel errors surfaced at the store boundary
var (
	// ErrNotFound is returned when a job does not exist
	ErrNotFound = errors.New("job not found")
	// ErrForbidden is returned when an owner tries to act on another owner's job
	ErrForbidden = errors.New("job belongs to a different owner")
)

// TrackingJob represents a single price watch on a product page.
// A job delivers at most one alert notification over its lifetime.
type TrackingJob struct {
	ID          string    `json:"id"`
	Owner       string    `json:"owner"`
	URL         string    `json:"url"`
	TargetPrice float64   `json:"target_price"`
	Status      JobStatus `json:"status"`
	LastName    string    `json:"last_name,omitempty"`
	LastPrice   *float64  `json:"last_price,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Active reports whether the job should still be checked
func (j *TrackingJob) Active() bool {
	return j.Status == StatusTracking
}

// DropReached reports whether a freshly observed price satisfies the alert
// condition. Equality counts as a drop.
func (j *TrackingJob) DropReached(price float64) bool {
	return price <= j.TargetPrice
}

// PriceObservation is a single historical price reading for a (url, owner)
// pair. Observations are append-only.
type PriceObservation struct {
	URL        string    `json:"url"`
	Owner      string    `json:"owner"`
	Price      float64   `json:"price"`
	ObservedAt time.Time `json:"observed_at"`
}

// PriceStats summarizes the observation history of a (url, owner) pair.
// Min/Max/Avg are nil when no observations exist.
type PriceStats struct {
	Count       int      `json:"count"`
	Min         *float64 `json:"min,omitempty"`
	Max         *float64 `json:"max,omitempty"`
	Avg         *float64 `json:"avg,omitempty"`
	TrendPerDay float64  `json:"trend_per_day"`
}
