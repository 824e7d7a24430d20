// Package http serves the planner's local JSON API, the seam the mobile UI
// talks to. Every route goes through the GoalStore; no allocation logic
// lives in the handlers.
package http

import (
	"context"
	"net/http"
	"sync"

	"github.com/rs/cors"

	"nestegg/internal/kv"
	"nestegg/internal/middleware"
	"nestegg/internal/store"
)

type Server struct {
	http.Server
	store        *store.GoalStore
	prefs        kv.Store
	limiter      *middleware.Limiter
	shutdownOnce sync.Once
}

// NewServer wires routes, middleware and CORS, returning a ready-to-run
// server.
func NewServer(addr string, goals *store.GoalStore, prefs kv.Store, allowedOrigins []string) *Server {
	s := &Server{
		store:   goals,
		prefs:   prefs,
		limiter: middleware.NewLimiter(60),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleHealth)
	mux.HandleFunc("GET /plan", s.handlePlan)
	mux.HandleFunc("PUT /income", s.handleSetIncome)
	mux.HandleFunc("POST /goals", s.handleCreateGoal)
	mux.HandleFunc("PUT /goals/{id}", s.handleUpdateGoal)
	mux.HandleFunc("DELETE /goals/{id}", s.handleDeleteGoal)
	mux.HandleFunc("GET /theme", s.handleGetTheme)
	mux.HandleFunc("PUT /theme", s.handleSetTheme)

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type"},
	})

	var handler http.Handler = mux
	handler = middleware.SecurityHeaders(handler)
	handler = s.limiter.Wrap(handler)
	handler = middleware.Trace(handler)
	handler = c.Handler(handler)

	s.Server = http.Server{Addr: addr, Handler: handler}
	return s
}

// Shutdown stops the rate limiter sweeper along with the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
