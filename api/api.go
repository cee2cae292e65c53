// Package api exposes the harvest service over HTTP: triggering scans,
// reading stats and run history, and serving the latest written result
// sets.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hazyhaar/glane/classify"
	"github.com/hazyhaar/glane/harvest"
	"github.com/hazyhaar/glane/kit"
)

// Server binds the harvest service to an HTTP surface.
type Server struct {
	svc        *harvest.Service
	factory    harvest.SourceFactory
	classifier *classify.Classifier // nil disables enrichment
	dataDir    string
	logger     *slog.Logger
}

// New creates an API server. classifier may be nil when enrichment is
// not configured.
func New(svc *harvest.Service, factory harvest.SourceFactory, classifier *classify.Classifier, dataDir string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		svc:        svc,
		factory:    factory,
		classifier: classifier,
		dataDir:    dataDir,
		logger:     logger,
	}
}

// Router builds the chi router with all endpoints mounted.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLog)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/scan/profile", s.handleScanProfile)
		r.Post("/scan/trends", s.handleScanTrends)
		r.Get("/stats", s.handleStats)
		r.Get("/runs", s.handleRuns)
		r.Get("/results/{entity}/latest", s.handleLatestResult)
	})

	return r
}

// requestLog records method, path, status and duration per request.
func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		ctx := kit.WithRequestID(r.Context(), middleware.GetReqID(r.Context()))
		ctx = kit.WithRemoteAddr(ctx, r.RemoteAddr)
		next.ServeHTTP(ww, r.WithContext(ctx))
		s.logger.Info("api: request",
			"method", r.Method, "path", r.URL.Path,
			"status", ww.Status(), "duration", time.Since(start))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
