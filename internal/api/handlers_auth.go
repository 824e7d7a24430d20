package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"nestegg/internal/auth"
	"nestegg/internal/storage"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token  string `json:"token"`
	UserID int64  `json:"userId"`
}

type whoamiResponse struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
}

func validCredentials(c credentialsRequest) (string, bool) {
	username := strings.TrimSpace(c.Username)
	if username == "" || utf8.RuneCountInString(username) > 64 {
		return "username must be 1 to 64 characters", false
	}
	if len(c.Password) < 8 || len(c.Password) > 72 {
		return "password must be 8 to 72 bytes", false
	}
	return "", true
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if reason, ok := validCredentials(req); !ok {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: reason})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to hash password", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	user, err := s.repo.CreateUser(r.Context(), strings.TrimSpace(req.Username), string(hash))
	if errors.Is(err, storage.ErrUsernameTaken) {
		writeJSON(w, http.StatusConflict, errorResponse{Error: "username already taken"})
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to create user", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	s.issueToken(w, r, user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := s.repo.GetUserByUsername(r.Context(), strings.TrimSpace(req.Username))
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "wrong username or password"})
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to look up user", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "wrong username or password"})
		return
	}

	s.issueToken(w, r, user)
}

// handleAuthTest echoes the authenticated identity, a cheap way for a
// client to verify a stored token before relying on it.
func (s *Server) handleAuthTest(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return
	}
	user, err := s.repo.GetUserByID(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return
	}
	writeJSON(w, http.StatusOK, whoamiResponse{UserID: user.ID, Username: user.Username})
}

func (s *Server) issueToken(w http.ResponseWriter, r *http.Request, user storage.User) {
	token, err := auth.GenerateToken(s.jwtSecret, user.ID, s.tokenTTL)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to sign token", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token, UserID: user.ID})
}
