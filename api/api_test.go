package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hazyhaar/glane/content"
	"github.com/hazyhaar/glane/dbopen"
	"github.com/hazyhaar/glane/harvest"

	_ "modernc.org/sqlite"
)

type stubCollector struct{ batches [][]string }

func (c *stubCollector) NextBatch(_ context.Context, _ string, round int) ([]string, error) {
	if round <= len(c.batches) {
		return c.batches[round-1], nil
	}
	return nil, nil
}

type stubDetails struct{ ts string }

func (d *stubDetails) FetchDetails(_ context.Context, ref content.CandidateRef) (*content.RawFields, error) {
	return &content.RawFields{Timestamp: d.ts, Text: "a caption", LikesText: "10", CommText: "2"}, nil
}

type stubFactory struct{ src harvest.Source }

func (f *stubFactory) ProfileSource(_ context.Context, handle string) (harvest.Source, func(), error) {
	f.src.Entity = handle
	return f.src, func() {}, nil
}

func (f *stubFactory) TrendsSource(_ context.Context, category string, _ []string) (harvest.Source, func(), error) {
	f.src.Entity = "cat:" + category
	return f.src, func() {}, nil
}

func newTestAPI(t *testing.T) (*Server, string) {
	t.Helper()
	db := dbopen.OpenMemory(t)
	svc, err := harvest.New(db, harvest.Config{}, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("harvest.New: %v", err)
	}
	factory := &stubFactory{src: harvest.Source{
		Collector: &stubCollector{batches: [][]string{{
			"https://example.test/p/a/",
			"https://example.test/reel/b/",
		}}},
		Details: &stubDetails{ts: "2026-08-30T09:00:00Z"},
	}}
	dataDir := t.TempDir()
	return New(svc, factory, nil, dataDir, slog.New(slog.DiscardHandler)), dataDir
}

func TestScanProfileEndpoint(t *testing.T) {
	srv, _ := newTestAPI(t)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/v1/scan/profile", "application/json",
		strings.NewReader(`{"handle":"acme","posts":5}`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var rs content.ResultSet
	if err := json.NewDecoder(resp.Body).Decode(&rs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rs.SourceEntity != "acme" || len(rs.Records) != 2 {
		t.Fatalf("result = entity %q, %d records", rs.SourceEntity, len(rs.Records))
	}
}

func TestScanProfileEndpoint_MissingHandle(t *testing.T) {
	srv, _ := newTestAPI(t)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/v1/scan/profile", "application/json",
		strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestStatsAndRunsEndpoints(t *testing.T) {
	srv, _ := newTestAPI(t)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	// One scan populates both stats and the run log.
	resp, _ := http.Post(ts.URL+"/api/v1/scan/profile", "application/json",
		strings.NewReader(`{"handle":"acme"}`))
	resp.Body.Close()

	resp, err := http.Get(ts.URL + "/api/v1/stats")
	if err != nil {
		t.Fatalf("GET stats: %v", err)
	}
	var stats []harvest.EntityStats
	json.NewDecoder(resp.Body).Decode(&stats)
	resp.Body.Close()
	if len(stats) != 1 || stats[0].Entity != "acme" || stats[0].Seen != 2 {
		t.Fatalf("stats = %v", stats)
	}

	resp, err = http.Get(ts.URL + "/api/v1/runs?entity=acme")
	if err != nil {
		t.Fatalf("GET runs: %v", err)
	}
	var runs []harvest.RunEntry
	json.NewDecoder(resp.Body).Decode(&runs)
	resp.Body.Close()
	if len(runs) != 1 || runs[0].Strategy != "chronological" {
		t.Fatalf("runs = %v", runs)
	}
}

func TestLatestResultEndpoint(t *testing.T) {
	srv, _ := newTestAPI(t)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, _ := http.Get(ts.URL + "/api/v1/results/acme/latest")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("empty data dir: status = %d, want 404", resp.StatusCode)
	}

	// A scan writes the result file the endpoint then serves.
	resp, _ = http.Post(ts.URL+"/api/v1/scan/profile", "application/json",
		strings.NewReader(`{"handle":"acme"}`))
	resp.Body.Close()

	resp, err := http.Get(ts.URL + "/api/v1/results/acme/latest")
	if err != nil {
		t.Fatalf("GET latest: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var rs content.ResultSet
	if err := json.NewDecoder(resp.Body).Decode(&rs); err != nil {
		t.Fatalf("decode served file: %v", err)
	}
	if rs.SourceEntity != "acme" {
		t.Fatalf("served entity = %q", rs.SourceEntity)
	}
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestAPI(t)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}
