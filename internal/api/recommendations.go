package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nyashahama/shopping-agent-backend/internal/store"
)

// ─── GET /api/recommendations/{id} ───────────────────────────────────────────

// handleGetRecommendation serves a previously recorded result.
func (s *Server) handleGetRecommendation(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, http.StatusBadRequest, "invalid recommendation id")
		return
	}

	rec, err := s.svc.Recommendation(r.Context(), id)
	if errors.Is(err, store.ErrRecommendationNotFound) {
		respondErr(w, http.StatusNotFound, "recommendation not found")
		return
	}
	if err != nil {
		s.respondInternalErr(w, r, fmt.Errorf("get recommendation: %w", err))
		return
	}

	respond(w, http.StatusOK, rec)
}
