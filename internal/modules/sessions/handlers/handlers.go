// Package handlers provides HTTP handlers for session lifecycle,
// mutation, risk, budget and optimization endpoints.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/fairlens/fairlens/internal/domain"
	"github.com/fairlens/fairlens/internal/modules/optimization"
	"github.com/fairlens/fairlens/internal/modules/sessions"
	"github.com/fairlens/fairlens/internal/modules/settings"
)

// Handler provides HTTP handlers for session endpoints.
type Handler struct {
	service  *sessions.Service
	settings *settings.Repository
	log      zerolog.Logger
}

// NewHandler creates a new sessions handler.
func NewHandler(service *sessions.Service, settingsRepo *settings.Repository, log zerolog.Logger) *Handler {
	return &Handler{
		service:  service,
		settings: settingsRepo,
		log:      log.With().Str("handler", "sessions").Logger(),
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// sessionResponse is the full session state plus its derived results.
type sessionResponse struct {
	ID               string                      `json:"id"`
	Name             string                      `json:"name"`
	CreatedAt        string                      `json:"created_at"`
	UpdatedAt        string                      `json:"updated_at"`
	Volumes          map[string]float64          `json:"volumes"`
	Weights          domain.WeightVector         `json:"weights"`
	Strategy         domain.Strategy             `json:"strategy"`
	Effectiveness    domain.EffectivenessVectors `json:"effectiveness"`
	Focus            float64                     `json:"focus"`
	Costs            domain.CostAssumptions      `json:"costs"`
	LastOptimization *domain.OptimizationResult  `json:"last_optimization,omitempty"`
	Risk             *sessions.RiskSummary       `json:"risk"`
	Budget           *domain.BudgetSummary       `json:"budget"`
}

func (h *Handler) sessionResponseFor(id string) (*sessionResponse, error) {
	session, err := h.service.Get(id)
	if err != nil {
		return nil, err
	}
	risk, err := h.service.Risk(id)
	if err != nil {
		return nil, err
	}
	budget, err := h.service.Budget(id)
	if err != nil {
		return nil, err
	}
	return &sessionResponse{
		ID:               session.ID,
		Name:             session.Name,
		CreatedAt:        session.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:        session.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
		Volumes:          session.Selection.Volumes(),
		Weights:          session.Weights,
		Strategy:         session.Strategy,
		Effectiveness:    session.Effectiveness,
		Focus:            session.Focus,
		Costs:            session.Costs,
		LastOptimization: session.LastOptimization,
		Risk:             risk,
		Budget:           budget,
	}, nil
}

// HandleCreate handles POST /api/sessions
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	// An empty body means an unnamed session, not an error.
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.Name == "" {
		req.Name = "Untitled analysis"
	}

	session, err := h.service.Create(req.Name)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to create session")
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	if err := h.settings.Set(settings.KeyLastSessionID, session.ID); err != nil {
		h.log.Warn().Err(err).Msg("Failed to record last session id")
	}

	resp, err := h.sessionResponseFor(session.ID)
	if err != nil {
		http.Error(w, "Failed to build session response", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusCreated, resp)
}

// HandleList handles GET /api/sessions
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list sessions")
		http.Error(w, "Failed to list sessions", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []sessions.StoredSession{}
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessions":        list,
		"last_session_id": h.settings.GetString(settings.KeyLastSessionID, ""),
	})
}

// HandleGet handles GET /api/sessions/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	resp, err := h.sessionResponseFor(id)
	if err != nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// HandleDelete handles DELETE /api/sessions/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.Delete(id); err != nil {
		h.log.Error().Err(err).Str("session_id", id).Msg("Failed to delete session")
		http.Error(w, "Failed to delete session", http.StatusInternalServerError)
		return
	}
	if h.settings.GetString(settings.KeyLastSessionID, "") == id {
		if err := h.settings.Delete(settings.KeyLastSessionID); err != nil {
			h.log.Warn().Err(err).Msg("Failed to clear last session id")
		}
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// HandleSave handles POST /api/sessions/{id}/save
func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.Save(id); err != nil {
		h.log.Error().Err(err).Str("session_id", id).Msg("Failed to save session")
		http.Error(w, "Failed to save session", http.StatusInternalServerError)
		return
	}
	if err := h.settings.Set(settings.KeyLastSessionID, id); err != nil {
		h.log.Warn().Err(err).Msg("Failed to record last session id")
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

// mutation wraps the set-and-recompute endpoints: decode the body,
// apply the mutation, return the fresh risk summary.
func (h *Handler) mutation(
	w http.ResponseWriter,
	r *http.Request,
	what string,
	apply func(id string) (*sessions.RiskSummary, error),
) {
	id := chi.URLParam(r, "id")
	summary, err := apply(id)
	if err != nil {
		h.log.Error().Err(err).Str("session_id", id).Str("field", what).Msg("Failed to apply session mutation")
		http.Error(w, "Failed to update session", http.StatusBadRequest)
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

// HandleSetWeights handles PUT /api/sessions/{id}/weights
func (h *Handler) HandleSetWeights(w http.ResponseWriter, r *http.Request) {
	var weights domain.WeightVector
	if err := json.NewDecoder(r.Body).Decode(&weights); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	h.mutation(w, r, "weights", func(id string) (*sessions.RiskSummary, error) {
		return h.service.SetWeights(id, weights)
	})
}

// HandleSetSelection handles PUT /api/sessions/{id}/selection
func (h *Handler) HandleSetSelection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Volumes map[string]float64 `json:"volumes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	h.mutation(w, r, "selection", func(id string) (*sessions.RiskSummary, error) {
		return h.service.SetSelection(id, req.Volumes)
	})
}

// HandleSetStrategy handles PUT /api/sessions/{id}/strategy
func (h *Handler) HandleSetStrategy(w http.ResponseWriter, r *http.Request) {
	var strategy domain.Strategy
	if err := json.NewDecoder(r.Body).Decode(&strategy); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	h.mutation(w, r, "strategy", func(id string) (*sessions.RiskSummary, error) {
		return h.service.SetStrategy(id, strategy)
	})
}

// HandleSetEffectiveness handles PUT /api/sessions/{id}/effectiveness
func (h *Handler) HandleSetEffectiveness(w http.ResponseWriter, r *http.Request) {
	var eff domain.EffectivenessVectors
	if err := json.NewDecoder(r.Body).Decode(&eff); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	h.mutation(w, r, "effectiveness", func(id string) (*sessions.RiskSummary, error) {
		return h.service.SetEffectiveness(id, eff)
	})
}

// HandleSetFocus handles PUT /api/sessions/{id}/focus
func (h *Handler) HandleSetFocus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Focus float64 `json:"focus"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	h.mutation(w, r, "focus", func(id string) (*sessions.RiskSummary, error) {
		return h.service.SetFocus(id, req.Focus)
	})
}

// HandleSetCosts handles PUT /api/sessions/{id}/costs
func (h *Handler) HandleSetCosts(w http.ResponseWriter, r *http.Request) {
	var costs domain.CostAssumptions
	if err := json.NewDecoder(r.Body).Decode(&costs); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	h.mutation(w, r, "costs", func(id string) (*sessions.RiskSummary, error) {
		return h.service.SetCosts(id, costs)
	})
}

// HandleRisk handles GET /api/sessions/{id}/risk
func (h *Handler) HandleRisk(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	summary, err := h.service.Risk(id)
	if err != nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

// HandleBudget handles GET /api/sessions/{id}/budget
func (h *Handler) HandleBudget(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	summary, err := h.service.Budget(id)
	if err != nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

// HandleOptimize handles POST /api/sessions/{id}/optimize
func (h *Handler) HandleOptimize(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Mode        string                         `json:"mode"`
		Constraints domain.OptimizationConstraints `json:"constraints"`
	}
	// Empty body: default constraints, configured default mode.
	_ = json.NewDecoder(r.Body).Decode(&req)

	mode := optimization.Mode(req.Mode)
	if mode == "" {
		mode = optimization.Mode(h.settings.GetString(
			settings.KeyOptimizerMode,
			string(optimization.ModeBudgetNeutral),
		))
	}
	switch mode {
	case optimization.ModeBudgetNeutral, optimization.ModePerDollar:
	default:
		http.Error(w, "Unknown optimization mode", http.StatusBadRequest)
		return
	}

	result, err := h.service.Optimize(id, req.Constraints, mode)
	if err != nil {
		h.log.Error().Err(err).Str("session_id", id).Msg("Optimization request failed")
		http.Error(w, "Optimization failed", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}
