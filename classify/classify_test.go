package classify

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hazyhaar/glane/content"
)

// fakeModel serves a canned chat completion whose message content is
// the given JSON payload.
func fakeModel(t *testing.T, payload string, gotBody *chatRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if gotBody != nil {
			json.NewDecoder(r.Body).Decode(gotBody)
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": payload}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func testConfig(endpoint string, mode Mode) Config {
	return Config{Endpoint: endpoint, Mode: mode, Gap: time.Millisecond}
}

func TestAnnotate_BasicModeStripsProFields(t *testing.T) {
	var got chatRequest
	srv := fakeModel(t, `{"sentiment":"POSITIVE","themes":["food","service"],"key_comments":["great"],"insight":"secret"}`, &got)
	defer srv.Close()

	c := New(testConfig(srv.URL, ModeBasic), slog.New(slog.DiscardHandler))
	out := c.Annotate(context.Background(), []content.Record{{ID: "p1", Text: "Lovely dinner #food"}})
	if len(out) != 1 {
		t.Fatalf("annotated = %d", len(out))
	}
	ann := out[0].Annotation
	if ann.Sentiment != "positive" {
		t.Errorf("sentiment = %q, want positive (lowercased)", ann.Sentiment)
	}
	if len(ann.Themes) != 2 {
		t.Errorf("themes = %v", ann.Themes)
	}
	if ann.KeyComments != nil {
		t.Errorf("basic mode kept key_comments: %v", ann.KeyComments)
	}
	if !strings.Contains(ann.Insight, "PRO") {
		t.Errorf("basic mode insight = %q", ann.Insight)
	}
	if got.Temperature != 0.2 || got.ResponseFormat.Type != "json_object" {
		t.Errorf("request params: temp=%v format=%v", got.Temperature, got.ResponseFormat.Type)
	}
}

func TestAnnotate_ProModeKeepsInsight(t *testing.T) {
	srv := fakeModel(t, `{"sentiment":"negative","themes":["waiting"],"key_comments":["45 min for a table"],"insight":"Reservations overflow on weekends."}`, nil)
	defer srv.Close()

	c := New(testConfig(srv.URL, ModePro), slog.New(slog.DiscardHandler))
	out := c.Annotate(context.Background(), []content.Record{{ID: "p1", Text: "busy night"}})
	ann := out[0].Annotation
	if ann.Sentiment != "negative" || len(ann.KeyComments) != 1 {
		t.Errorf("annotation = %+v", ann)
	}
	if ann.Insight != "Reservations overflow on weekends." {
		t.Errorf("insight = %q", ann.Insight)
	}
}

func TestAnnotate_InvalidSentimentBecomesMixed(t *testing.T) {
	srv := fakeModel(t, `{"sentiment":"enthusiastic","themes":[]}`, nil)
	defer srv.Close()

	c := New(testConfig(srv.URL, ModePro), slog.New(slog.DiscardHandler))
	out := c.Annotate(context.Background(), []content.Record{{ID: "p1", Text: "hello"}})
	if out[0].Annotation.Sentiment != "mixed" {
		t.Errorf("sentiment = %q, want mixed", out[0].Annotation.Sentiment)
	}
}

func TestAnnotate_EmptyTextSkipsModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("model should not be called for empty text")
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL, ModeBasic), slog.New(slog.DiscardHandler))
	out := c.Annotate(context.Background(), []content.Record{{ID: "p1", Text: "   "}})
	ann := out[0].Annotation
	if ann.Sentiment != "mixed" || len(ann.Themes) != 1 || ann.Themes[0] != "no_text" {
		t.Errorf("annotation = %+v", ann)
	}
}

func TestAnnotate_ServerErrorFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL, ModePro), slog.New(slog.DiscardHandler))
	out := c.Annotate(context.Background(), []content.Record{{ID: "p1", Text: "hello"}})
	ann := out[0].Annotation
	if ann.Sentiment != "mixed" || len(ann.Themes) != 1 || ann.Themes[0] != "fallback" {
		t.Errorf("fallback annotation = %+v", ann)
	}
}

func TestAnnotate_TruncatesAtCutMarker(t *testing.T) {
	var got chatRequest
	srv := fakeModel(t, `{"sentiment":"positive","themes":["a"]}`, &got)
	defer srv.Close()

	c := New(testConfig(srv.URL, ModeBasic), slog.New(slog.DiscardHandler))
	c.Annotate(context.Background(), []content.Record{{
		ID:   "p1",
		Text: "Great pasta here. More posts from someone else entirely",
	}})

	user := got.Messages[1].Content
	if !strings.Contains(user, "Great pasta here.") {
		t.Errorf("prompt lost caption: %q", user)
	}
	if strings.Contains(user, "More posts from") {
		t.Errorf("prompt kept trailing page furniture: %q", user)
	}
}
