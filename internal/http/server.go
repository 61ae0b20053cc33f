// Package http exposes the ledger over a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"kopilka/internal/cache"
	"kopilka/internal/ledger"
	"kopilka/internal/middleware/trace"
	"kopilka/internal/provider"
)

type Server struct {
	http.Server
	provider    provider.Provider
	rateLimiter *rateLimiter

	// Analytics responses are cached; every write flushes both caches.
	topCache    *cache.LRUCache[[]ledger.CategorySpend]
	seriesCache *cache.LRUCache[[]ledger.BucketTotal]
	caches      *cache.Manager

	// now is swapped in tests to pin period filtering.
	now func() time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, p provider.Provider) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr: addr,
		},
		provider:    p,
		rateLimiter: newRateLimiter(),
		topCache:    cache.NewLRUCache[[]ledger.CategorySpend](100, 5*time.Minute),
		seriesCache: cache.NewLRUCache[[]ledger.BucketTotal](100, 5*time.Minute),
		caches:      cache.NewManager(),
		now:         time.Now,
	}

	s.caches.Register(s.topCache)
	s.caches.Register(s.seriesCache)
	s.caches.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/accounts", s.secure(s.handleListAccounts))
	mux.HandleFunc("POST /api/accounts", s.secure(s.handleCreateAccount))
	mux.HandleFunc("GET /api/accounts/{id}", s.secure(s.handleGetAccount))
	mux.HandleFunc("PUT /api/accounts/{id}", s.secure(s.handleUpdateAccount))
	mux.HandleFunc("DELETE /api/accounts/{id}", s.secure(s.handleDeleteAccount))
	mux.HandleFunc("GET /api/accounts/{id}/balance", s.secure(s.handleAccountBalance))

	mux.HandleFunc("GET /api/categories", s.secure(s.handleListCategories))
	mux.HandleFunc("POST /api/categories", s.secure(s.handleCreateCategory))
	mux.HandleFunc("PUT /api/categories/{id}", s.secure(s.handleUpdateCategory))
	mux.HandleFunc("DELETE /api/categories/{id}", s.secure(s.handleDeleteCategory))

	mux.HandleFunc("GET /api/transactions", s.secure(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.secure(s.handleCreateTransaction))
	mux.HandleFunc("PUT /api/transactions/{id}", s.secure(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.secure(s.handleDeleteTransaction))
	mux.HandleFunc("GET /api/transactions/days", s.secure(s.handleTransactionDays))

	mux.HandleFunc("POST /api/transfers", s.secure(s.handleCreateTransfer))

	mux.HandleFunc("GET /api/balance", s.secure(s.handleTotalBalance))

	mux.HandleFunc("GET /api/settings/defaultCurrency", s.secure(s.handleGetDefaultCurrency))
	mux.HandleFunc("PUT /api/settings/defaultCurrency", s.secure(s.handleSetDefaultCurrency))

	mux.HandleFunc("GET /api/analytics/top-categories", s.secure(s.handleTopCategories))
	mux.HandleFunc("GET /api/analytics/series", s.secure(s.handleSeries))
	mux.HandleFunc("GET /api/analytics/today", s.secure(s.handleToday))

	traced := trace.NewMiddleware(extractClientIP)
	s.Handler = traced.Middleware(mux)

	return s
}

// secure adds security headers and rate limiting for mutating methods.
func (s *Server) secure(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && !s.rateLimiter.allow(extractClientIP(r)) {
			w.Header().Set("Retry-After", "60")
			writeJSON(w, http.StatusTooManyRequests,
				errorResponse{Error: "rate limit exceeded, try again later"})
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'none'")

		next(w, r)
	}
}

func extractClientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

// flushAnalytics drops cached analytics after any ledger mutation.
func (s *Server) flushAnalytics() {
	s.topCache.Flush()
	s.seriesCache.Flush()
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	// Readiness is backed by a cheap provider read.
	if _, err := s.provider.DefaultCurrency(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "backend not ready"})
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Shutdown stops background goroutines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		if s.caches != nil {
			s.caches.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
