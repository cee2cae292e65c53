package collect

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hazyhaar/glane/content"
)

func TestLikesText(t *testing.T) {
	cases := []struct {
		body string
		want string
	}{
		{"liked by many. 12,345 likes and counting", "12,345"},
		{"4.5M Likes", "4.5M"},
		{"12,3K likes something", "12,3K"},
		{"no counters here", ""},
	}
	for _, c := range cases {
		if got := likesText(c.body); got != c.want {
			t.Errorf("likesText(%q) = %q, want %q", c.body, got, c.want)
		}
	}
}

func TestCommentsText(t *testing.T) {
	if got := commentsText("view 847 comments below"); got != "847" {
		t.Errorf("commentsText = %q, want 847", got)
	}
	if got := commentsText("847 likes"); got != "" {
		t.Errorf("commentsText matched likes counter: %q", got)
	}
}

func TestShortcode(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://www.instagram.com/reel/Cx1yZ/", "Cx1yZ"},
		{"https://www.instagram.com/p/AbC123/", "AbC123"},
		{"https://www.instagram.com/someone/", ""},
	}
	for _, c := range cases {
		if got := Shortcode(c.url); got != c.want {
			t.Errorf("Shortcode(%q) = %q, want %q", c.url, got, c.want)
		}
	}
}

func TestCandidateURLs(t *testing.T) {
	base := "https://www.instagram.com"
	hrefs := []string{
		"/p/abc/",
		"/reel/def/",
		"/explore/",
		"https://www.instagram.com/p/ghi/",
		"",
	}
	got := candidateURLs(base, hrefs)
	want := []string{
		"https://www.instagram.com/p/abc/",
		"https://www.instagram.com/reel/def/",
		"https://www.instagram.com/p/ghi/",
	}
	if len(got) != len(want) {
		t.Fatalf("candidateURLs = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("candidateURLs[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestHTTPDetails_FetchDetails(t *testing.T) {
	page := `<html><body>
		<article>
			<time datetime="2026-08-30T09:00:00.000Z">1 day ago</time>
			<p>Fresh sourdough out of the oven #bakery</p>
			<span>1.2K likes</span>
			<span>34 comments</span>
		</article>
	</body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()

	d := NewHTTPDetails(HTTPConfig{AllowPrivateHosts: true})
	raw, err := d.FetchDetails(context.Background(), content.CandidateRef{ID: srv.URL + "/p/abc/"})
	if err != nil {
		t.Fatalf("FetchDetails: %v", err)
	}
	if raw.Timestamp != "2026-08-30T09:00:00.000Z" {
		t.Errorf("timestamp = %q", raw.Timestamp)
	}
	if !strings.Contains(raw.Text, "Fresh sourdough") {
		t.Errorf("text lost caption: %q", raw.Text)
	}
	if raw.LikesText != "1.2K" || raw.CommText != "34" {
		t.Errorf("counters = %q/%q, want 1.2K/34", raw.LikesText, raw.CommText)
	}
}

func TestHTTPDetails_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	d := NewHTTPDetails(HTTPConfig{AllowPrivateHosts: true})
	if _, err := d.FetchDetails(context.Background(), content.CandidateRef{ID: srv.URL + "/p/x/"}); err == nil {
		t.Fatal("expected error on HTTP 429")
	}
}

func TestCheckFetchURL(t *testing.T) {
	cases := []struct {
		url     string
		wantErr error
	}{
		{"https://www.instagram.com/p/abc/", nil},
		{"ftp://example.com/file", ErrBadScheme},
		{"http://127.0.0.1/p/abc/", ErrPrivateHost},
		{"http://10.1.2.3/", ErrPrivateHost},
		{"http://[::1]/", ErrPrivateHost},
	}
	for _, c := range cases {
		err := checkFetchURL(c.url)
		if c.wantErr == nil {
			if err != nil {
				t.Errorf("checkFetchURL(%q) = %v, want nil", c.url, err)
			}
			continue
		}
		if !errors.Is(err, c.wantErr) {
			t.Errorf("checkFetchURL(%q) = %v, want %v", c.url, err, c.wantErr)
		}
	}
}

func TestBoundedReadAll(t *testing.T) {
	if _, err := boundedReadAll(strings.NewReader("0123456789"), 4); err == nil {
		t.Fatal("expected error when body exceeds cap")
	}
	data, err := boundedReadAll(strings.NewReader("0123"), 4)
	if err != nil || string(data) != "0123" {
		t.Fatalf("boundedReadAll = %q, %v", data, err)
	}
}
