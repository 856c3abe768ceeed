package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/trogers1052/investment-tracker/internal/dashboard"
	"github.com/trogers1052/investment-tracker/internal/models"
)

// Portfolio is the pipeline the handlers drive
type Portfolio interface {
	Refresh(ctx context.Context) (*dashboard.Snapshot, error)
	Submit(ctx context.Context, in models.PositionInput) (*dashboard.Snapshot, error)
}

// maxPositionBody caps the size of a POST /positions request body
const maxPositionBody = 1 << 16

// Handler holds dependencies for HTTP handlers
type Handler struct {
	portfolio Portfolio
	log       zerolog.Logger
}

// NewHandler creates a new Handler
func NewHandler(portfolio Portfolio, log zerolog.Logger) *Handler {
	return &Handler{
		portfolio: portfolio,
		log:       log.With().Str("component", "api").Logger(),
	}
}

// GetPortfolio handles GET /portfolio and POST /portfolio/refresh
func (h *Handler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	snap, err := h.portfolio.Refresh(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build portfolio")
		respondError(w, http.StatusInternalServerError, "failed to load portfolio")
		return
	}

	respondJSON(w, http.StatusOK, snap)
}

// AddPosition handles POST /positions
func (h *Handler) AddPosition(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPositionBody)

	var req models.PositionInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	snap, err := h.portfolio.Submit(r.Context(), req)
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			respondJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Error(), Field: verr.Field})
			return
		}
		h.log.Error().Err(err).Msg("Failed to add position")
		respondError(w, http.StatusInternalServerError, "failed to save position")
		return
	}

	respondJSON(w, http.StatusCreated, snap)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorResponse{Error: msg})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
