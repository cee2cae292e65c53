package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hazyhaar/glane/content"
	"github.com/hazyhaar/glane/harvest"
)

// ScanProfileRequest is the body for POST /api/v1/scan/profile.
type ScanProfileRequest struct {
	Handle     string `json:"handle"`
	Posts      int    `json:"posts"`
	Exhaustive bool   `json:"exhaustive"`
	DryRun     bool   `json:"dry_run"`
	Classify   bool   `json:"classify"`
}

func (s *Server) handleScanProfile(w http.ResponseWriter, r *http.Request) {
	var req ScanProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Handle == "" {
		writeError(w, http.StatusBadRequest, "handle required")
		return
	}

	rs, err := s.svc.ScanHandle(r.Context(), s.factory, req.Handle, harvest.ProfileOptions{
		Posts:      req.Posts,
		Exhaustive: req.Exhaustive,
		DryRun:     req.DryRun,
	})
	if err != nil {
		s.scanError(w, err)
		return
	}

	s.persist(rs, req.DryRun)

	if req.Classify && s.classifier != nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"source_entity": rs.SourceEntity,
			"generated_at":  rs.GeneratedAt,
			"strategy":      rs.Strategy,
			"params":        rs.Params,
			"records":       s.classifier.Annotate(r.Context(), rs.Records),
		})
		return
	}
	writeJSON(w, http.StatusOK, rs)
}

// ScanTrendsRequest is the body for POST /api/v1/scan/trends.
type ScanTrendsRequest struct {
	Category       string  `json:"category"`
	MaxItems       int     `json:"max_items"`
	MaxHours       float64 `json:"max_hours"`
	TargetNewCount int     `json:"target_new_count"`
	DryRun         bool    `json:"dry_run"`
}

func (s *Server) handleScanTrends(w http.ResponseWriter, r *http.Request) {
	var req ScanTrendsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Category == "" {
		writeError(w, http.StatusBadRequest, "category required")
		return
	}

	rs, err := s.svc.ScanCategory(r.Context(), s.factory, req.Category, harvest.TrendsOptions{
		MaxItems:       req.MaxItems,
		MaxAge:         time.Duration(req.MaxHours * float64(time.Hour)),
		TargetNewCount: req.TargetNewCount,
		DryRun:         req.DryRun,
	})
	if err != nil {
		s.scanError(w, err)
		return
	}

	s.persist(rs, req.DryRun)
	writeJSON(w, http.StatusOK, rs)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := s.svc.RecentRuns(r.Context(), r.URL.Query().Get("entity"), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

// handleLatestResult serves the newest result file written for an
// entity.
func (s *Server) handleLatestResult(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")
	dir := filepath.Join(s.dataDir, entity)

	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) == 0 {
		writeError(w, http.StatusNotFound, "no results for entity")
		return
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".json" {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		writeError(w, http.StatusNotFound, "no results for entity")
		return
	}
	// File names embed the timestamp, so lexical order is time order.
	sort.Strings(names)

	w.Header().Set("Content-Type", "application/json")
	http.ServeFile(w, r, filepath.Join(dir, names[len(names)-1]))
}

func (s *Server) scanError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, harvest.ErrInvalidEntity), errors.Is(err, harvest.ErrNoCollector):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusBadGateway, err.Error())
	}
}

// persist writes the result set to the data dir. Failures are logged,
// the response still carries the records.
func (s *Server) persist(rs *content.ResultSet, dryRun bool) {
	if dryRun || s.dataDir == "" {
		return
	}
	path, err := harvest.WriteResult(s.dataDir, rs)
	if err != nil {
		s.logger.Warn("api: result write failed", "entity", rs.SourceEntity, "error", err)
		return
	}
	s.logger.Info("api: result written", "path", path)
}
