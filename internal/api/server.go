// Package api serves the phrase query pipeline over HTTP.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/findings-cli/internal/query"
)

const maxBodyBytes = 64 << 10

// QueryProcessor runs a phrase through match and execute.
type QueryProcessor interface {
	Process(ctx context.Context, phrase string) *query.Response
	Matcher() *query.Matcher
}

// Counter reports the number of stored findings for health checks.
type Counter interface {
	CountFindings(ctx context.Context) (int, error)
}

// Options configures the router.
type Options struct {
	RatePerSec  float64  // 0 disables rate limiting
	Burst       int      // default 1 when rate limiting is on
	CORSOrigins []string // default "*"
}

// Server holds the handler dependencies.
type Server struct {
	processor QueryProcessor
	counter   Counter
	opts      Options
}

// NewServer creates a Server. counter may be nil.
func NewServer(p QueryProcessor, counter Counter, opts Options) *Server {
	return &Server{processor: p, counter: counter, opts: opts}
}

// Router builds the chi router with CORS and rate limiting applied.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	origins := s.opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	if s.opts.RatePerSec > 0 {
		burst := s.opts.Burst
		if burst <= 0 {
			burst = 1
		}
		r.Use(rateLimit(rate.NewLimiter(rate.Limit(s.opts.RatePerSec), burst)))
	}

	r.Get("/health", s.handleHealth)
	r.Get("/patterns", s.handlePatterns)
	r.Post("/query", s.handleQuery)
	return r
}

type queryRequest struct {
	Query string `json:"query"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	resp := s.processor.Process(r.Context(), req.Query)
	status := http.StatusOK
	if resp.Type == query.TypeNoMatch {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, resp)
}

type patternInfo struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Priority int      `json:"priority"`
	Regex    string   `json:"regex"`
	Examples []string `json:"examples,omitempty"`
}

func (s *Server) handlePatterns(w http.ResponseWriter, _ *http.Request) {
	patterns := s.processor.Matcher().Patterns()
	out := make([]patternInfo, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, patternInfo{
			ID:       p.ID,
			Name:     p.Name,
			Category: string(p.Category),
			Priority: p.Priority,
			Regex:    p.Regex.String(),
			Examples: p.Examples,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{"status": "ok"}
	if s.counter != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		n, err := s.counter.CountFindings(ctx)
		if err != nil {
			zap.L().Warn("api: health check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "error": err.Error()})
			return
		}
		body["findings"] = n
	}
	writeJSON(w, http.StatusOK, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("api: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
