// Package api is the thin HTTP presentation layer over the ranking
// service.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/draftedge/prospect-rank/internal/service"
)

// Options tunes the router middleware.
type Options struct {
	RateLimit float64 // requests per second; 0 disables limiting
	RateBurst int
}

// NewRouter builds the HTTP routes over a ranking service.
func NewRouter(svc *service.Ranking, opts Options) chi.Router {
	r := chi.NewRouter()

	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	if opts.RateLimit > 0 {
		r.Use(rateLimiter(rate.NewLimiter(rate.Limit(opts.RateLimit), opts.RateBurst)))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/rankings", handleRankings(svc))
		r.Post("/rankings/invalidate", handleInvalidate(svc))
	})

	return r
}

func handleRankings(svc *service.Ranking) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := parseQueryParams(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		page, err := svc.Query(r.Context(), params)
		if err != nil {
			var verr *service.ValidationError
			if errors.As(err, &verr) {
				writeError(w, http.StatusBadRequest, verr)
				return
			}
			zap.L().Error("api: ranking query failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, errors.New("ranking computation failed"))
			return
		}

		writeJSON(w, http.StatusOK, page)
	}
}

func handleInvalidate(svc *service.Ranking) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		svc.Invalidate()
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "invalidated"})
	}
}

// parseQueryParams reads the query string without clamping; malformed
// numbers are rejected here, range checks happen in the service.
func parseQueryParams(r *http.Request) (service.QueryParams, error) {
	q := r.URL.Query()
	params := service.QueryParams{
		Position:     q.Get("position"),
		Organization: q.Get("organization"),
		Level:        q.Get("level"),
		Sort:         q.Get("sort"),
	}

	for _, f := range []struct {
		name string
		dst  *int
	}{
		{"page", &params.Page},
		{"page_size", &params.PageSize},
		{"limit", &params.Limit},
	} {
		raw := q.Get(f.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return params, errors.New(f.name + " must be an integer")
		}
		*f.dst = n
	}

	return params, nil
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		zap.L().Info("api: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

func rateLimiter(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				writeError(w, http.StatusTooManyRequests, errors.New("rate limit exceeded"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
