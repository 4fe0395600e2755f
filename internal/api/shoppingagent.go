package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/nyashahama/shopping-agent-backend/internal/history"
	"github.com/nyashahama/shopping-agent-backend/internal/service"
	"github.com/nyashahama/shopping-agent-backend/internal/shopping"
)

// ─── GET /api/shoppingagent ──────────────────────────────────────────────────

// handleRecommend runs one recommendation for ?user_id= (or the configured
// default buyer). The body is the pipeline result; the stored record's ID is
// returned in X-Recommendation-ID when the result was recorded.
//
// Returns 404 for an unknown buyer and 502 when the AI provider fails.
func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))

	rec, err := s.svc.Recommend(r.Context(), userID)
	switch {
	case errors.Is(err, history.ErrUnknownBuyer):
		respondErr(w, http.StatusNotFound, "unknown buyer")
		return
	case errors.Is(err, service.ErrPipeline):
		s.logger.Error("recommendation failed",
			"error", err,
			"user_id", userID,
			"request_id", middleware.GetReqID(r.Context()),
		)
		respondErr(w, http.StatusBadGateway, "recommendation service unavailable")
		return
	case err != nil:
		s.respondInternalErr(w, r, err)
		return
	}

	if rec.ID != uuid.Nil {
		w.Header().Set("X-Recommendation-ID", rec.ID.String())
	}
	respond(w, http.StatusOK, rec.Result)
}

// ─── POST /api/shoppingagent ─────────────────────────────────────────────────

type addPurchaseResponse struct {
	Message string        `json:"message"`
	Item    shopping.Item `json:"item"`
}

// handleAddPurchase appends the posted item to the buyer's history. With a
// JWT secret configured the buyer is always the token subject; otherwise it
// is ?user_id= or the default.
func (s *Server) handleAddPurchase(w http.ResponseWriter, r *http.Request) {
	var item shopping.Item
	if !decode(w, r, &item) {
		return
	}

	userID := subject(r)
	if userID == "" {
		userID = strings.TrimSpace(r.URL.Query().Get("user_id"))
	}

	_, err := s.svc.AddPurchase(r.Context(), userID, item)
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		respondErr(w, http.StatusBadRequest, verr.Err.Error())
		return
	case errors.Is(err, history.ErrUnknownBuyer):
		respondErr(w, http.StatusNotFound, "unknown buyer")
		return
	case err != nil:
		s.respondInternalErr(w, r, err)
		return
	}

	respond(w, http.StatusOK, addPurchaseResponse{
		Message: "Purchase added successfully",
		Item:    item,
	})
}

// ─── GET /api/categories ─────────────────────────────────────────────────────

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.svc.Categories(r.Context())
	if err != nil {
		s.respondInternalErr(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string][]string{"categories": categories})
}
