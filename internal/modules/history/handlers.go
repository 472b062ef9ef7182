package history

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Handlers contains HTTP handlers for the price history API
type Handlers struct {
	service *Service
	log     zerolog.Logger
}

// NewHandlers creates a new history handlers instance
func NewHandlers(service *Service, log zerolog.Logger) *Handlers {
	return &Handlers{
		service: service,
		log:     log.With().Str("handler", "history").Logger(),
	}
}

// seriesPoint is the chart-friendly view of an observation
type seriesPoint struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

// HandleGetSeries returns the observation series for a (url, owner) pair
// GET /api/history?url=...&owner=...
func (h *Handlers) HandleGetSeries(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	owner := r.URL.Query().Get("owner")
	if url == "" || owner == "" {
		http.Error(w, "url and owner are required", http.StatusBadRequest)
		return
	}

	series, err := h.service.Series(url, owner)
	if err != nil {
		h.log.Error().Err(err).Str("url", url).Msg("Failed to get history series")
		http.Error(w, "Failed to get history", http.StatusInternalServerError)
		return
	}

	points := make([]seriesPoint, 0, len(series))
	for _, obs := range series {
		points = append(points, seriesPoint{
			Date:  obs.ObservedAt.UTC().Format(time.DateOnly),
			Price: obs.Price,
		})
	}

	h.writeJSON(w, points)
}

// HandleGetStats returns min/max/avg/trend for a (url, owner) pair
// GET /api/history/stats?url=...&owner=...
func (h *Handlers) HandleGetStats(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	owner := r.URL.Query().Get("owner")
	if url == "" || owner == "" {
		http.Error(w, "url and owner are required", http.StatusBadRequest)
		return
	}

	stats, err := h.service.Stats(url, owner)
	if err != nil {
		h.log.Error().Err(err).Str("url", url).Msg("Failed to compute history stats")
		http.Error(w, "Failed to compute stats", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, stats)
}

// writeJSON writes a JSON response
func (h *Handlers) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
