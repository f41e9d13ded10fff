package api

import (
	"net/http"
	"strings"

	"tipster/domain/entities"

	"github.com/go-chi/chi/v5"
)

type resultRequest struct {
	Result string `json:"result"`
}

type accountRequest struct {
	Pseudo string `json:"pseudo"`
	Email  string `json:"email"`
}

type pseudoRequest struct {
	Pseudo string `json:"pseudo"`
}

type emailRequest struct {
	Email string `json:"email"`
}

func (s *Server) handleSubmitPrediction(w http.ResponseWriter, r *http.Request) {
	author := actorFromRequest(r).UserID
	if author == "" {
		writeServiceError(w, r, entities.ErrForbidden("submitting requires the "+HeaderUserID+" header"))
		return
	}

	var req entities.SubmitPredictionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	// The author is always the caller, whatever the body claims
	req.UserID = author

	prediction, err := s.predictions.SubmitPrediction(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, prediction)
}

func (s *Server) handleDeletePrediction(w http.ResponseWriter, r *http.Request) {
	owner := actorFromRequest(r).UserID
	if err := s.predictions.DeletePrediction(r.Context(), chi.URLParam(r, "id"), owner); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListActive(w http.ResponseWriter, r *http.Request) {
	predictions, err := s.predictions.ListActive(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"predictions": orEmpty(predictions)})
}

func (s *Server) handleListByUser(w http.ResponseWriter, r *http.Request) {
	predictions, err := s.predictions.ListByUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"predictions": orEmpty(predictions)})
}

func (s *Server) handleListPending(w http.ResponseWriter, r *http.Request) {
	predictions, err := s.predictions.ListPending(r.Context(), actorFromRequest(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"predictions": orEmpty(predictions)})
}

func (s *Server) handleListWaiting(w http.ResponseWriter, r *http.Request) {
	predictions, err := s.predictions.ListWaitingResults(r.Context(), actorFromRequest(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"predictions": orEmpty(predictions)})
}

func (s *Server) handleValidatePrediction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.predictions.ValidatePrediction(r.Context(), id, actorFromRequest(r)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "status": entities.PredictionStatusActive})
}

func (s *Server) handleRejectPrediction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.predictions.RejectPrediction(r.Context(), id, actorFromRequest(r)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "deleted": true})
}

func (s *Server) handleRecordResult(w http.ResponseWriter, r *http.Request) {
	var req resultRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	id := chi.URLParam(r, "id")
	outcome := entities.Result(strings.TrimSpace(req.Result))
	if err := s.predictions.RecordResult(r.Context(), id, outcome, actorFromRequest(r)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "status": outcome})
}

func (s *Server) handleSweep(w http.ResponseWriter, r *http.Request) {
	if err := s.requireModerator(r.Context(), actorFromRequest(r)); err != nil {
		writeServiceError(w, r, err)
		return
	}

	promoted, err := s.predictions.SweepExpiredActive(r.Context(), s.now())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"promoted": promoted})
}

func (s *Server) handleUserStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.stats.GetUserStats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleUserProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.stats.GetUserProfile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params, err := entities.ParseLeaderboardParams(q.Get("mode"), q.Get("odds_range"), q.Get("sport"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	entries, err := s.stats.GetLeaderboard(r.Context(), params)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"params": params, "entries": orEmpty(entries)})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	user, err := s.users.Register(r.Context(), req.Pseudo, req.Email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) handleAvailability(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	availability, err := s.users.CheckAvailability(r.Context(), req.Pseudo, req.Email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, availability)
}

func (s *Server) handleResolvePseudo(w http.ResponseWriter, r *http.Request) {
	var req pseudoRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	email, err := s.users.ResolvePseudo(r.Context(), req.Pseudo)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"email": email})
}

func (s *Server) handleSetEmail(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if actorFromRequest(r).UserID != userID {
		writeServiceError(w, r, entities.ErrForbidden("an account can only change its own email"))
		return
	}

	var req emailRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	if err := s.users.SetEmail(r.Context(), userID, req.Email); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": userID, "email": strings.TrimSpace(req.Email)})
}

// orEmpty keeps empty listings encoded as [] rather than null
func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
