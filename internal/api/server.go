// Package api is the account-facing backend: registration, login and
// per-user access to the mirrored goal rows. It never runs the allocation
// engine; suggestions are the planner's job.
package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/cors"

	"nestegg/internal/auth"
	"nestegg/internal/cache"
	"nestegg/internal/middleware"
	"nestegg/internal/storage"
)

const (
	goalCacheSize = 256
	goalCacheTTL  = 30 * time.Second
)

type Server struct {
	http.Server
	repo         *storage.Repository
	jwtSecret    []byte
	tokenTTL     time.Duration
	goalCache    *cache.LRU[[]storage.Goal]
	limiter      *middleware.Limiter
	shutdownOnce sync.Once
}

func NewServer(addr string, repo *storage.Repository, jwtSecret []byte, tokenTTL time.Duration, allowedOrigins []string) *Server {
	s := &Server{
		repo:      repo,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		goalCache: cache.New[[]storage.Goal](goalCacheSize, goalCacheTTL),
		limiter:   middleware.NewLimiter(120),
	}

	authn := auth.NewMiddleware(jwtSecret)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("POST /auth/register", s.handleRegister)
	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.HandleFunc("POST /auth/test", authn.Wrap(s.handleAuthTest))
	mux.HandleFunc("POST /goals", authn.Wrap(s.handleCreateGoal))
	mux.HandleFunc("GET /goals/{userId}", authn.Wrap(s.handleListGoals))
	mux.HandleFunc("DELETE /goals/{id}", authn.Wrap(s.handleDeleteGoal))

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})

	var handler http.Handler = mux
	handler = middleware.SecurityHeaders(handler)
	handler = s.limiter.Wrap(handler)
	handler = middleware.Trace(handler)
	handler = c.Handler(handler)

	s.Server = http.Server{Addr: addr, Handler: handler}
	return s
}

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
