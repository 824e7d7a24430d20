package http

import (
	"log/slog"
	"net/http"

	"nestegg/internal/kv"
	"nestegg/internal/store"
)

type incomeRequest struct {
	Income float64 `json:"income"`
}

type goalRequest struct {
	Name         string  `json:"name"`
	TargetAmount float64 `json:"targetAmount"`
	TimeFrame    int     `json:"timeFrame"`
}

type themeRequest struct {
	Theme string `json:"theme"`
}

// planResponse carries a snapshot plus an optional warning when the
// mutation was applied but its durability write failed.
type planResponse struct {
	store.Snapshot
	Warning string `json:"warning,omitempty"`
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, planResponse{Snapshot: s.store.Snapshot()})
}

func (s *Server) handleSetIncome(w http.ResponseWriter, r *http.Request) {
	var req incomeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	snap, err := s.store.SetIncome(r.Context(), req.Income)
	s.writeSnapshot(w, r, http.StatusOK, snap, err)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	snap, err := s.store.AddGoal(r.Context(), req.Name, req.TargetAmount, req.TimeFrame)
	s.writeSnapshot(w, r, http.StatusCreated, snap, err)
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	snap, err := s.store.EditGoal(r.Context(), r.PathValue("id"), req.Name, req.TargetAmount, req.TimeFrame)
	s.writeSnapshot(w, r, http.StatusOK, snap, err)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	_, err := s.store.DeleteGoal(r.Context(), r.PathValue("id"))
	if warning, ok := persistenceWarning(err); ok {
		slog.WarnContext(r.Context(), "Goal deleted but not persisted", "error", warning)
	} else if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetTheme(w http.ResponseWriter, r *http.Request) {
	theme, ok, err := s.prefs.Get(r.Context(), kv.KeyUserTheme)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !ok {
		theme = "light"
	}
	writeJSON(w, http.StatusOK, themeRequest{Theme: theme})
}

func (s *Server) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	var req themeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Theme != "light" && req.Theme != "dark" {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "theme must be \"light\" or \"dark\""})
		return
	}
	if err := s.prefs.Set(r.Context(), kv.KeyUserTheme, req.Theme); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// writeSnapshot renders a mutation result. A persistence failure is
// reported as a warning on an otherwise successful response: the in-memory
// state did change and the caller should see it.
func (s *Server) writeSnapshot(w http.ResponseWriter, r *http.Request, status int, snap store.Snapshot, err error) {
	if warning, ok := persistenceWarning(err); ok {
		slog.WarnContext(r.Context(), "State changed but durability write failed", "error", warning)
		writeJSON(w, status, planResponse{Snapshot: snap, Warning: warning})
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, status, planResponse{Snapshot: snap})
}
