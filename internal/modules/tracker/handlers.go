package tracker

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/pricewatch/internal/domain"
)

// Handlers contains HTTP handlers for the tracking job API
type Handlers struct {
	service *Service
	log     zerolog.Logger
}

// NewHandlers creates a new tracker handlers instance
func NewHandlers(service *Service, log zerolog.Logger) *Handlers {
	return &Handlers{
		service: service,
		log:     log.With().Str("handler", "tracker").Logger(),
	}
}

type createJobRequest struct {
	Owner       string  `json:"owner"`
	URL         string  `json:"url"`
	TargetPrice float64 `json:"target_price"`
}

// HandleCreateJob creates a new tracking job
// POST /api/jobs
func (h *Handlers) HandleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req createJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	id, err := h.service.CreateJob(req.Owner, req.URL, req.TargetPrice)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// HandleListJobs returns all jobs for an owner
// GET /api/jobs?owner=...
func (h *Handlers) HandleListJobs(w http.ResponseWriter, r *http.Request) {
	owner := r.URL.Query().Get("owner")
	if owner == "" {
		http.Error(w, "owner is required", http.StatusBadRequest)
		return
	}

	jobs, err := h.service.ListJobs(owner)
	if err != nil {
		h.log.Error().Err(err).Str("owner", owner).Msg("Failed to list jobs")
		http.Error(w, "Failed to list jobs", http.StatusInternalServerError)
		return
	}

	if jobs == nil {
		jobs = []domain.TrackingJob{}
	}
	h.writeJSON(w, http.StatusOK, jobs)
}

// HandleGetJob returns a single job
// GET /api/jobs/{jobID}
func (h *Handlers) HandleGetJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "jobID")

	job, err := h.service.GetJob(id)
	if errors.Is(err, domain.ErrNotFound) {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("job_id", id).Msg("Failed to get job")
		http.Error(w, "Failed to get job", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, job)
}

// HandleRemoveJob deletes a job owned by the caller
// DELETE /api/jobs/{jobID}?owner=...
func (h *Handlers) HandleRemoveJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "jobID")
	owner := r.URL.Query().Get("owner")
	if owner == "" {
		http.Error(w, "owner is required", http.StatusBadRequest)
		return
	}

	err := h.service.RemoveJob(id, owner)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, "Job not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrForbidden):
		http.Error(w, "Forbidden", http.StatusForbidden)
	case err != nil:
		h.log.Error().Err(err).Str("job_id", id).Msg("Failed to remove job")
		http.Error(w, "Failed to remove job", http.StatusInternalServerError)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// writeJSON writes a JSON response
func (h *Handlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
