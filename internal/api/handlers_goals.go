package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"nestegg/internal/auth"
	"nestegg/internal/core"
	"nestegg/internal/storage"
)

type createGoalRequest struct {
	Name         string  `json:"name"`
	TargetAmount float64 `json:"targetAmount"`
	TimeFrame    int     `json:"timeFrame"`
	Progress     float64 `json:"progress"`
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return
	}

	var req createGoalRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	// Field rules are shared with the planner so both surfaces reject
	// the same inputs.
	draft := core.Goal{
		Name:         strings.TrimSpace(req.Name),
		TargetAmount: req.TargetAmount,
		TimeFrame:    req.TimeFrame,
		Progress:     req.Progress,
	}
	if err := draft.Validate(); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}

	goal, err := s.repo.UpsertGoal(r.Context(), storage.Goal{
		UserID:       userID,
		ClientID:     uuid.NewString(),
		Name:         draft.Name,
		TargetAmount: draft.TargetAmount,
		TimeFrame:    int64(draft.TimeFrame),
		Progress:     draft.Progress,
	})
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to store goal", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	s.goalCache.Delete(goalCacheKey(userID))
	writeJSON(w, http.StatusCreated, goal)
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return
	}

	requested, err := strconv.ParseInt(r.PathValue("userId"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid user id"})
		return
	}
	// Own data only. Tokens grant no visibility into other accounts.
	if requested != userID {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "forbidden"})
		return
	}

	key := goalCacheKey(userID)
	if goals, ok := s.goalCache.Get(key); ok {
		writeJSON(w, http.StatusOK, goals)
		return
	}

	goals, err := s.repo.ListGoalsByUser(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list goals", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	s.goalCache.Set(key, goals)
	writeJSON(w, http.StatusOK, goals)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return
	}

	goalID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid goal id"})
		return
	}

	err = s.repo.DeleteGoal(r.Context(), goalID, userID)
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "goal not found"})
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to delete goal", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	s.goalCache.Delete(goalCacheKey(userID))
	w.WriteHeader(http.StatusNoContent)
}

func goalCacheKey(userID int64) string {
	return strconv.FormatInt(userID, 10)
}
