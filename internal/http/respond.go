package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"nestegg/internal/core"
)

const maxBodyBytes = 1 << 16

type errorResponse struct {
	Error     string  `json:"error"`
	Field     string  `json:"field,omitempty"`
	Needed    float64 `json:"needed,omitempty"`
	Leftover  float64 `json:"leftover,omitempty"`
	Shortfall float64 `json:"shortfall,omitempty"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		vErr  *core.ValidationError
		gErr  *core.InvalidGoalError
		iErr  *core.InsufficientIncomeError
		nfErr *core.NotFoundError
	)
	switch {
	case errors.As(err, &vErr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: vErr.Error(), Field: vErr.Field})
	case errors.As(err, &gErr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: gErr.Error()})
	case errors.As(err, &iErr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:     iErr.Error(),
			Needed:    iErr.Needed,
			Leftover:  iErr.Leftover,
			Shortfall: iErr.Shortfall(),
		})
	case errors.As(err, &nfErr):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: nfErr.Error()})
	default:
		slog.ErrorContext(r.Context(), "Unhandled error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

// persistenceWarning reports whether err is a persistence failure that left
// the in-memory mutation applied, returning its message if so.
func persistenceWarning(err error) (string, bool) {
	var pErr *core.PersistenceError
	if errors.As(err, &pErr) {
		return pErr.Error(), true
	}
	return "", false
}
