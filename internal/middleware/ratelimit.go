package middleware

import (
	"net/http"
	"sync"
	"time"
)

// Limiter is a fixed-window per-client rate limiter. Stale client entries
// are swept by a background goroutine until Stop is called.
type Limiter struct {
	mu      sync.Mutex
	clients map[string]*window

	requestsPerMinute int
	stop              chan struct{}
	stopOnce          sync.Once
}

type window struct {
	start    time.Time
	requests int
}

// NewLimiter creates a limiter allowing requestsPerMinute per client IP.
func NewLimiter(requestsPerMinute int) *Limiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}
	l := &Limiter{
		clients:           make(map[string]*window),
		requestsPerMinute: requestsPerMinute,
		stop:              make(chan struct{}),
	}
	go l.sweep()
	return l
}

// Allow reports whether a request from clientIP fits the current window.
func (l *Limiter) Allow(clientIP string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w, ok := l.clients[clientIP]
	if !ok || now.Sub(w.start) > time.Minute {
		l.clients[clientIP] = &window{start: now, requests: 1}
		return true
	}
	w.requests++
	return w.requests <= l.requestsPerMinute
}

// Wrap rejects over-limit requests with 429 before calling next.
func (l *Limiter) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(ClientIP(r)) {
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Stop terminates the background sweeper. Safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func (l *Limiter) sweep() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-10 * time.Minute)
			l.mu.Lock()
			for ip, w := range l.clients {
				if w.start.Before(cutoff) {
					delete(l.clients, ip)
				}
			}
			l.mu.Unlock()
		case <-l.stop:
			return
		}
	}
}
