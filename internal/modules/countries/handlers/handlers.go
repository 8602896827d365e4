// Package handlers provides HTTP handlers for country reference data.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/fairlens/fairlens/internal/domain"
	"github.com/fairlens/fairlens/internal/modules/countries"
	"github.com/fairlens/fairlens/internal/modules/scoring"
)

// Handler provides HTTP handlers for country endpoints.
type Handler struct {
	repo *countries.Repository
	log  zerolog.Logger
}

// NewHandler creates a new countries handler.
func NewHandler(repo *countries.Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With().Str("handler", "countries").Logger(),
	}
}

// countryResponse is a country plus its score under default weights,
// for list views that have no session context.
type countryResponse struct {
	domain.Country
	DefaultScore float64         `json:"default_score"`
	DefaultBand  domain.RiskBand `json:"default_band"`
	DefaultColor string          `json:"default_color"`
}

func scored(c domain.Country) countryResponse {
	score := scoring.ScoreCountry(c, domain.DefaultWeights())
	return countryResponse{
		Country:      c,
		DefaultScore: score,
		DefaultBand:  scoring.RiskBand(score),
		DefaultColor: scoring.RiskColor(score),
	}
}

// HandleList handles GET /api/countries
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	all, err := h.repo.All()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list countries")
		http.Error(w, "Failed to list countries", http.StatusInternalServerError)
		return
	}

	out := make([]countryResponse, 0, len(all))
	for _, c := range all {
		out = append(out, scored(c))
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode countries response")
	}
}

// HandleGet handles GET /api/countries/{iso}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	iso := chi.URLParam(r, "iso")
	c, err := h.repo.Get(iso)
	if err != nil {
		h.log.Error().Err(err).Str("iso", iso).Msg("Failed to get country")
		http.Error(w, "Failed to get country", http.StatusInternalServerError)
		return
	}
	if c == nil {
		http.Error(w, "Country not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(scored(*c)); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode country response")
	}
}
